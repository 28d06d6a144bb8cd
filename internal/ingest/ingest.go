// Package ingest stores documents, extracts their text, and catalogs them as assets.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/rwascore/internal/extract"
	"github.com/hyperjump/rwascore/internal/metrics"
	"github.com/hyperjump/rwascore/internal/models"
	"github.com/hyperjump/rwascore/internal/storage"
)

// Ingestion sources, used as metric labels.
const (
	SourceUpload = "upload"
	SourceInbox  = "inbox"
)

const fileIDPrefix = "file:"

// Service ingests uploads and inbox files.
type Service struct {
	store          storage.AssetStore
	blobs          *storage.BlobStore
	extractor      *extract.Extractor
	maxUploadBytes int64
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records ingestion counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxUploadBytes caps upload size (0 means unlimited).
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) { s.maxUploadBytes = n }
}

// NewService creates an ingestion service.
func NewService(store storage.AssetStore, blobs *storage.BlobStore, extractor *extract.Extractor, opts ...Option) *Service {
	s := &Service{
		store:     store,
		blobs:     blobs,
		extractor: extractor,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores r as a new blob under a fresh UUID, extracts its text, and catalogs it.
// Extraction failure does not fail the upload: the asset is saved with empty content and the
// cause in ExtractError.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*models.Asset, error) {
	id := uuid.NewString()
	path, size, err := s.blobs.Save(id, filename, r, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	asset := s.catalogEntry(id, storage.SafeName(filename), path, size)
	if err := s.store.SaveAsset(ctx, asset); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	s.metrics.ObserveIngest(SourceUpload, errorOf(asset))
	s.logger.Info("asset uploaded",
		zap.String("asset_id", id),
		zap.String("filename", asset.Filename),
		zap.Int64("size", size),
		zap.String("format", asset.Format),
		zap.String("extract_error", asset.ExtractError))
	return asset, nil
}

// IngestFile catalogs a file in place under its path-derived ID, replacing any earlier record.
func (s *Service) IngestFile(ctx context.Context, path string) (*models.Asset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}
	asset := s.catalogEntry(FileID(abs), filepath.Base(abs), abs, info.Size())
	if err := s.store.SaveAsset(ctx, asset); err != nil {
		return nil, err
	}
	s.metrics.ObserveIngest(SourceInbox, errorOf(asset))
	s.logger.Debug("inbox file ingested", zap.String("asset_id", asset.ID), zap.String("path", abs))
	return asset, nil
}

// IngestPath is IngestFile without the result, for the inbox.
func (s *Service) IngestPath(ctx context.Context, path string) error {
	_, err := s.IngestFile(ctx, path)
	return err
}

// ForgetPath removes the catalog record of a file ingested by IngestFile. Unknown files are ignored.
func (s *Service) ForgetPath(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	err = s.store.DeleteAsset(ctx, FileID(abs))
	if err != nil && !errors.Is(err, storage.ErrAssetNotFound) {
		return err
	}
	s.logger.Debug("inbox file removed", zap.String("path", abs))
	return nil
}

// Asset returns the catalog record for id. Blobs present on disk but missing from the catalog
// (for example after the database was reset) are extracted and catalogued on demand.
func (s *Service) Asset(ctx context.Context, id string) (*models.Asset, error) {
	asset, err := s.store.GetAsset(ctx, id)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, storage.ErrAssetNotFound) || s.blobs == nil {
		return nil, err
	}
	path, ferr := s.blobs.Find(id)
	if ferr != nil {
		return nil, err
	}
	info, serr := os.Stat(path)
	if serr != nil {
		return nil, err
	}
	name := filepath.Base(path)[len(id)+1:]
	asset = s.catalogEntry(id, name, path, info.Size())
	if err := s.store.SaveAsset(ctx, asset); err != nil {
		s.logger.Warn("recatalog asset failed", zap.String("asset_id", id), zap.Error(err))
	}
	return asset, nil
}

func (s *Service) catalogEntry(id, filename, path string, size int64) *models.Asset {
	res := s.extractor.Text(path)
	asset := &models.Asset{
		ID:       id,
		Filename: filename,
		Path:     path,
		Content:  res.Text,
		Format:   res.Format,
		Size:     size,
	}
	if res.Err != nil {
		asset.ExtractError = res.Err.Error()
		s.logger.Warn("text extraction failed", zap.String("asset_id", id), zap.String("path", path), zap.Error(res.Err))
	}
	return asset
}

// FileID returns a stable asset ID for an absolute path.
func FileID(absolutePath string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(absolutePath)))
	return fileIDPrefix + hex.EncodeToString(hash[:16])
}

func errorOf(a *models.Asset) error {
	if a.ExtractError == "" {
		return nil
	}
	return errors.New(a.ExtractError)
}
