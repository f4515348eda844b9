package models

import "time"

// RawPlace holds one establishment record as returned by the Places API,
// before any cleaning. The same place id may appear many times across
// neighbouring grid-point queries.
type RawPlace struct {
	PlaceID     string
	Name        string
	Vicinity    string
	Rating      float64
	ReviewCount int
	PriceLevel  int
	Latitude    float64
	Longitude   float64
	Types       []string
	FetchedAt   time.Time
}

// Place is the cleaned, deduplicated record ready for storage and
// aggregation. A Rating of 0 means the provider reported none; valid
// ratings are in the 1.0-5.0 range.
type Place struct {
	ID          int64
	PlaceID     string
	Name        string
	Vicinity    string
	Rating      float64
	ReviewCount int
	PriceLevel  int
	Latitude    float64
	Longitude   float64
	Types       []string
	CreatedAt   time.Time
}

// Rated reports whether the place carries a usable rating.
func (p *Place) Rated() bool {
	return p.Rating > 0
}

// HasType reports whether the given category tag is among the place's types.
func (p *Place) HasType(t string) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}
