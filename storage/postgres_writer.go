package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"reviews-mapper/models"
)

// PostgresWriter persists the deduplicated place table to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS establishments (
			id                 SERIAL PRIMARY KEY,
			place_id           TEXT         UNIQUE NOT NULL,
			name               TEXT         NOT NULL,
			vicinity           TEXT         NOT NULL DEFAULT '',
			rating             NUMERIC(3,1) NOT NULL DEFAULT 0,
			user_ratings_total INTEGER      NOT NULL DEFAULT 0,
			price_level        INTEGER      NOT NULL DEFAULT 0,
			latitude           DOUBLE PRECISION NOT NULL,
			longitude          DOUBLE PRECISION NOT NULL,
			types              TEXT         NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_establishments_rating  ON establishments(rating);
		CREATE INDEX IF NOT EXISTS idx_establishments_reviews ON establishments(user_ratings_total);
		CREATE INDEX IF NOT EXISTS idx_establishments_name    ON establishments(name);
	`)
	return err
}

// Clear deletes all existing rows from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM establishments")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the full deduplicated table, clearing old data first.
// One run owns the table; there is no cross-run merge.
func (pw *PostgresWriter) Write(places []*models.Place) error {
	if len(places) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(places); i += batchSize {
		end := i + batchSize
		if end > len(places) {
			end = len(places)
		}
		if err := pw.insertBatch(places[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Place) error {
	const cols = 9
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, p := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			p.PlaceID, p.Name, p.Vicinity, p.Rating, p.ReviewCount,
			p.PriceLevel, p.Latitude, p.Longitude, strings.Join(p.Types, ","))
	}

	query := fmt.Sprintf(`
		INSERT INTO establishments (place_id, name, vicinity, rating, user_ratings_total,
		                            price_level, latitude, longitude, types)
		VALUES %s
		ON CONFLICT (place_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored places for the stats service.
func (pw *PostgresWriter) FetchAll() ([]*models.Place, error) {
	rows, err := pw.db.Query(`
		SELECT id, place_id, name, vicinity, rating, user_ratings_total,
		       price_level, latitude, longitude, types, created_at
		FROM establishments
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var places []*models.Place
	for rows.Next() {
		p := &models.Place{}
		var types string
		if err := rows.Scan(
			&p.ID, &p.PlaceID, &p.Name, &p.Vicinity, &p.Rating, &p.ReviewCount,
			&p.PriceLevel, &p.Latitude, &p.Longitude, &types, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if types != "" {
			p.Types = strings.Split(types, ",")
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
