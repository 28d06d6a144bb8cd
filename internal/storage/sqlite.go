package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/rwascore/internal/models"
)

// SQLiteStore implements AssetStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	path          TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	format        TEXT NOT NULL DEFAULT '',
	extract_error TEXT NOT NULL DEFAULT '',
	size          INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets(created_at);
`

const assetColumns = `id, filename, path, content, format, extract_error, size, created_at`

// SaveAsset upserts asset. CreatedAt is set when zero.
func (s *SQLiteStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (`+assetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			path = excluded.path,
			content = excluded.content,
			format = excluded.format,
			extract_error = excluded.extract_error,
			size = excluded.size`,
		asset.ID, asset.Filename, asset.Path, asset.Content, asset.Format, asset.ExtractError, asset.Size, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save asset %s: %w", asset.ID, err)
	}
	return nil
}

// GetAsset returns an asset by ID, or ErrAssetNotFound.
func (s *SQLiteStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// DeleteAsset removes an asset record. The blob on disk is left in place.
func (s *SQLiteStore) DeleteAsset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return nil
}

// ListAssets returns assets newest first.
func (s *SQLiteStore) ListAssets(ctx context.Context, offset, limit int) ([]*models.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// CountAssets returns the number of catalogued assets.
func (s *SQLiteStore) CountAssets(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(r rowScanner) (*models.Asset, error) {
	var a models.Asset
	if err := r.Scan(&a.ID, &a.Filename, &a.Path, &a.Content, &a.Format, &a.ExtractError, &a.Size, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
