// Package database mirrors a crawled collection into a SQLite file.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"raisonne/pkg/models"

	_ "modernc.org/sqlite" // SQLite driver
)

// CatalogDB stores artwork records in SQLite
type CatalogDB struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the database at path, creating its directory
func Open(path string) (*CatalogDB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CatalogDB{db: db, dbPath: path}
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection
func (cdb *CatalogDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path
func (cdb *CatalogDB) Path() string {
	return cdb.dbPath
}

func (cdb *CatalogDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artworks (
		artwork_id INTEGER PRIMARY KEY,
		year INTEGER NOT NULL,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		description TEXT NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		source_id INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_artworks_year ON artworks(year, position);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCollection replaces the stored artworks with collection in one
// transaction. A failed save leaves the previous contents in place.
func (cdb *CatalogDB) SaveCollection(ctx context.Context, collection models.Collection) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM artworks"); err != nil {
		return fmt.Errorf("failed to clear previous artworks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artworks (artwork_id, year, position, url, description, width, height, source_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, year := range collection.Years() {
		for position, r := range collection[year] {
			if _, err := stmt.ExecContext(ctx,
				r.ArtworkID, year, position, r.ImageURL, r.Description,
				r.Dimensions.Width(), r.Dimensions.Height(), r.SourceID,
			); err != nil {
				return fmt.Errorf("failed to save artwork %d: %w", r.ArtworkID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// LoadCollection rebuilds the year buckets in stored order
func (cdb *CatalogDB) LoadCollection(ctx context.Context) (models.Collection, error) {
	rows, err := cdb.db.QueryContext(ctx, `
		SELECT artwork_id, year, url, description, width, height, source_id
		FROM artworks
		ORDER BY year, position, artwork_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artworks: %w", err)
	}
	defer rows.Close()

	collection := models.NewCollection()
	for rows.Next() {
		var r models.ArtworkRecord
		var width, height int
		if err := rows.Scan(&r.ArtworkID, &r.Year, &r.ImageURL, &r.Description, &width, &height, &r.SourceID); err != nil {
			return nil, fmt.Errorf("failed to scan artwork: %w", err)
		}
		r.Dimensions = models.Dimensions{width, height}
		collection.Append(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artworks: %w", err)
	}

	return collection, nil
}

// Count returns the number of stored artworks
func (cdb *CatalogDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artworks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count artworks: %w", err)
	}
	return n, nil
}
