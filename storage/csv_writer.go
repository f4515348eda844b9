package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"reviews-mapper/models"
)

// CSVWriter writes the flat deduplicated place table to a CSV file, the
// shape external visualization tools expect.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"place_id", "name", "vicinity", "rating", "user_ratings_total",
		"price_level", "latitude", "longitude", "types",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per place. An absent rating is written as an
// empty field rather than 0.
func (c *CSVWriter) Write(places []*models.Place) error {
	for _, p := range places {
		rating := ""
		if p.Rated() {
			rating = strconv.FormatFloat(p.Rating, 'f', -1, 64)
		}

		row := []string{
			p.PlaceID,
			p.Name,
			p.Vicinity,
			rating,
			strconv.Itoa(p.ReviewCount),
			strconv.Itoa(p.PriceLevel),
			strconv.FormatFloat(p.Latitude, 'f', 7, 64),
			strconv.FormatFloat(p.Longitude, 'f', 7, 64),
			strings.Join(p.Types, ","),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
