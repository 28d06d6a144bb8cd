// Package scoring turns document text and optional metadata into a bounded score with an
// ordered, auditable breakdown. All strategies report scores on a closed [0, 100] scale.
package scoring

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// MaxScore is the upper bound of every strategy's score.
const MaxScore = 100.0

// Strategy names.
const (
	StrategyHeuristic = "heuristic"
	StrategyModel     = "model"
)

// Heuristic profile names.
const (
	ProfilePoints   = "points"
	ProfileWeighted = "weighted"
)

// Breakdown reason tags.
const (
	ReasonNoText                   = "no_text"
	ReasonKeywordPresence          = "keyword_presence"
	ReasonNumericEntities          = "numeric_entities"
	ReasonDatePresence             = "date_presence"
	ReasonMetadataVerifiedOffchain = "metadata_verified_offchain"
	ReasonMetadataAudited          = "metadata_audited"

	ReasonKeywordScore   = "keyword_score"
	ReasonNumericScore   = "numeric_score"
	ReasonStructureScore = "structure_score"
	ReasonMetadataBonus  = "metadata_bonus"

	ReasonModelProbability = "model_probability"
	ReasonNumEntities      = "num_entities"
	ReasonHasDate          = "has_date"
	ReasonHasSignature     = "has_signature"
)

// Metadata keys the heuristic understands.
const (
	MetaVerifiedOffchain = "verified_offchain"
	MetaAudited          = "audited"
)

// Entry is one contribution to a score.
type Entry struct {
	// Reason is a stable identifier for the contributing feature.
	Reason string `json:"reason"`
	// Value is the raw feature value, when the feature has one.
	Value any `json:"value,omitempty"`
	// Detail holds per-keyword hits (keyword_presence only).
	Detail map[string]int `json:"detail,omitempty"`
	// Score is the contribution in points.
	Score float64 `json:"score"`
}

// Result is the output of a scoring call.
type Result struct {
	Score     float64 `json:"score"`
	Breakdown []Entry `json:"breakdown"`
}

// Scorer is implemented by every scoring strategy.
type Scorer interface {
	// Score computes the score and breakdown for text. meta may be nil.
	Score(ctx context.Context, text string, meta Metadata) (*Result, error)
	// Name returns the strategy name for logging and responses.
	Name() string
}

// Metadata is optional structured input supplied alongside the text.
type Metadata map[string]any

// Flag interprets key as a boolean. ok is false when the key is absent or its value has a shape
// that cannot be read as a boolean (nil, list, object, unparsable string); such keys are ignored.
func (m Metadata) Flag(key string) (value bool, ok bool) {
	v, present := m[key]
	if !present {
		return false, false
	}
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, false
		}
		return b, true
	case float64:
		return x != 0, true
	case float32:
		return x != 0, true
	case int:
		return x != 0, true
	case int64:
		return x != 0, true
	case int32:
		return x != 0, true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return false, false
		}
		return f != 0, true
	default:
		return false, false
	}
}

// noTextResult is returned by every strategy for empty or whitespace-only text.
func noTextResult() *Result {
	return &Result{
		Score:     0,
		Breakdown: []Entry{{Reason: ReasonNoText, Score: 0}},
	}
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
