package models

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hyperjump/rwascore/internal/scoring"
	"github.com/hyperjump/rwascore/pkg/utils"
)

// ErrNoInput is returned when a score request carries neither an asset ID nor text.
var ErrNoInput = errors.New("provide asset_id or raw_text")

// ScoreRequest is the body of POST /score. AssetID takes precedence over RawText.
type ScoreRequest struct {
	AssetID  string          `json:"asset_id,omitempty" validate:"omitempty,max=128"`
	RawText  string          `json:"raw_text,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
	Strategy string          `json:"strategy,omitempty" validate:"omitempty,oneof=heuristic model"`
	Profile  string          `json:"profile,omitempty" validate:"omitempty,oneof=points weighted"`
}

// Validate checks field constraints and that some input was supplied.
func (r *ScoreRequest) Validate() error {
	r.AssetID = strings.TrimSpace(r.AssetID)
	r.Strategy = strings.ToLower(strings.TrimSpace(r.Strategy))
	r.Profile = strings.ToLower(strings.TrimSpace(r.Profile))
	if r.AssetID == "" && r.RawText == "" {
		return ErrNoInput
	}
	return Validate(r)
}

// MetadataMap decodes Metadata. ok is false when metadata is absent, null, or not a JSON object.
func (r *ScoreRequest) MetadataMap() (meta scoring.Metadata, ok bool) {
	raw := strings.TrimSpace(string(r.Metadata))
	if raw == "" || raw == "null" {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(r.Metadata, &m); err != nil {
		return nil, false
	}
	return scoring.Metadata(m), true
}

// ScoreResponse is returned by POST /score.
type ScoreResponse struct {
	Score     float64         `json:"score"`
	Breakdown []scoring.Entry `json:"breakdown"`
	Pretty    string          `json:"pretty"`
	Strategy  string          `json:"strategy"`
	Profile   string          `json:"profile,omitempty"`
	AssetID   string          `json:"asset_id,omitempty"`
}

// NewScoreResponse shapes a scorer result for output. The score is rounded to 3 decimals.
func NewScoreResponse(res *scoring.Result, scorer scoring.Scorer, assetID string) *ScoreResponse {
	resp := &ScoreResponse{
		Score:     utils.Round(res.Score, 3),
		Breakdown: res.Breakdown,
		Pretty:    scoring.Pretty(res.Breakdown),
		Strategy:  scorer.Name(),
		AssetID:   assetID,
	}
	if h, ok := scorer.(*scoring.HeuristicScorer); ok {
		resp.Profile = h.Profile()
	}
	return resp
}
