package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/rwascore/internal/models"
	"github.com/hyperjump/rwascore/internal/scoring"
	"github.com/hyperjump/rwascore/internal/storage"
	"github.com/hyperjump/rwascore/pkg/utils"
)

const (
	previewRunes    = 1000
	multipartMemory = 8 << 20
	// multipart framing allowance on top of the file size limit
	formOverhead = 1 << 20
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "rwascore",
		"version": s.version,
		"endpoints": []string{
			"POST /upload", "POST /score", "POST /tokenize",
			"GET /api/v1/assets/{id}", "GET /api/v1/status", "GET /health", "GET /metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	asset, err := s.assets.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.logger.Error("upload failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	s.respondJSON(w, http.StatusOK, models.UploadResponse{
		AssetID:       asset.ID,
		Filename:      asset.Filename,
		ExtractedText: utils.TruncateRunes(asset.Content, previewRunes),
		Format:        asset.Format,
		ExtractError:  asset.ExtractError,
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	text := req.RawText
	if req.AssetID != "" {
		asset, err := s.assets.Asset(ctx, req.AssetID)
		if err != nil {
			if errors.Is(err, storage.ErrAssetNotFound) {
				s.respondError(w, http.StatusNotFound, "asset not found")
				return
			}
			s.logger.Error("score: load asset failed", zap.String("asset_id", req.AssetID), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "failed to load asset")
			return
		}
		text = asset.Content
	}

	meta, ok := req.MetadataMap()
	if !ok && len(req.Metadata) > 0 && string(req.Metadata) != "null" {
		s.logger.Debug("score: metadata is not a JSON object, ignoring")
	}

	scorer, err := s.registry.Resolve(req.Strategy, req.Profile)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	start := time.Now()
	res, err := scorer.Score(ctx, text, meta)
	var score float64
	if res != nil {
		score = res.Score
	}
	s.metrics.ObserveScore(scorer.Name(), time.Since(start), score, err)
	if err != nil {
		status := statusFor(err)
		s.logger.Error("scoring failed",
			zap.String("strategy", scorer.Name()),
			zap.Int("status", status),
			zap.Error(err))
		s.respondError(w, status, err.Error())
		return
	}

	resp := models.NewScoreResponse(res, scorer, req.AssetID)
	s.logger.Debug("score computed",
		zap.String("strategy", resp.Strategy),
		zap.String("asset_id", req.AssetID),
		zap.Float64("score", resp.Score))
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var req models.TokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := models.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("tokenize request", zap.String("asset_id", req.AssetID), zap.String("symbol", req.TokenSymbol))
	s.respondJSON(w, http.StatusOK, models.NewTokenizeResponse(&req))
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	asset, err := s.assets.Asset(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			s.respondError(w, http.StatusNotFound, "asset not found")
			return
		}
		s.logger.Error("get asset failed", zap.String("asset_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, asset)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountAssets(r.Context())
	if err != nil {
		s.logger.Error("status: count assets failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := models.Status{
		Assets:          count,
		DefaultStrategy: s.registry.DefaultStrategy(),
		ModelConfigured: s.registry.HasModel(),
		Version:         s.version,
	}
	if s.model != nil {
		status.ModelLoaded = s.model.Loaded()
	}
	diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Storage.UploadsDir)
	if err == nil {
		status.DiskUsageBytes = diskBytes
	}
	s.respondJSON(w, http.StatusOK, status)
}

// statusFor maps scoring errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scoring.ErrUnknownStrategy), errors.Is(err, scoring.ErrUnknownProfile):
		return http.StatusBadRequest
	case errors.Is(err, scoring.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, scoring.ErrModelOutputInvalid):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
