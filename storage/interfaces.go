package storage

import "reviews-mapper/models"

// PlaceWriter is the interface any storage backend must satisfy.
type PlaceWriter interface {
	Write(places []*models.Place) error
	Close() error
}

// PlaceReader retrieves the stored aggregate table for reporting.
type PlaceReader interface {
	FetchAll() ([]*models.Place, error)
}

var (
	_ PlaceWriter = (*CSVWriter)(nil)
	_ PlaceWriter = (*PostgresWriter)(nil)
	_ PlaceReader = (*PostgresWriter)(nil)
)
