package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/hyperjump/rwascore/internal/features"
	"github.com/hyperjump/rwascore/pkg/utils"
	"go.uber.org/zap"
)

// HeuristicScorer is the deterministic rule-based strategy. It never returns an error.
type HeuristicScorer struct {
	config  *HeuristicConfig
	profile string
	logger  *zap.Logger
}

// NewHeuristicScorer creates a heuristic scorer using config.Profile. A nil config uses defaults.
func NewHeuristicScorer(config *HeuristicConfig, opts ...Option) (*HeuristicScorer, error) {
	if config == nil {
		config = DefaultHeuristicConfig()
	}
	config.ApplyDefaults()
	if err := validProfile(config.Profile); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &HeuristicScorer{config: config, profile: config.Profile, logger: o.logger}, nil
}

// WithProfile returns a scorer sharing this scorer's weights but using profile.
func (s *HeuristicScorer) WithProfile(profile string) (*HeuristicScorer, error) {
	if err := validProfile(profile); err != nil {
		return nil, err
	}
	return &HeuristicScorer{config: s.config, profile: profile, logger: s.logger}, nil
}

// Name returns the strategy name.
func (s *HeuristicScorer) Name() string {
	return StrategyHeuristic
}

// Profile returns the active profile name.
func (s *HeuristicScorer) Profile() string {
	return s.profile
}

// Score computes the heuristic score of text.
func (s *HeuristicScorer) Score(_ context.Context, text string, meta Metadata) (*Result, error) {
	if isBlank(text) {
		return noTextResult(), nil
	}
	if s.profile == ProfileWeighted {
		return s.scoreWeighted(text, meta), nil
	}
	return s.scorePoints(text, meta), nil
}

// scorePoints starts from the base and adds keyword, numeric, date, and metadata points.
func (s *HeuristicScorer) scorePoints(text string, meta Metadata) *Result {
	cfg := s.config
	total := cfg.Base
	breakdown := make([]Entry, 0, 5)

	presence, found := features.KeywordPresence(text, cfg.Keywords)
	total += float64(presence)
	breakdown = append(breakdown, Entry{
		Reason: ReasonKeywordPresence,
		Detail: found,
		Score:  float64(presence),
	})

	count := len(features.NumericEntities(text))
	numScore := math.Min(float64(count)*cfg.NumericEntityPoints, cfg.NumericEntityCap)
	total += numScore
	breakdown = append(breakdown, Entry{
		Reason: ReasonNumericEntities,
		Value:  count,
		Score:  numScore,
	})

	hasDate := features.HasDate(text)
	dateScore := pointsIf(hasDate, cfg.DatePoints)
	total += dateScore
	breakdown = append(breakdown, Entry{
		Reason: ReasonDatePresence,
		Value:  hasDate,
		Score:  dateScore,
	})

	if s.flag(meta, MetaVerifiedOffchain) {
		total += cfg.VerifiedOffchainPoints
		breakdown = append(breakdown, Entry{Reason: ReasonMetadataVerifiedOffchain, Score: cfg.VerifiedOffchainPoints})
	}
	if s.flag(meta, MetaAudited) {
		total += cfg.AuditedPoints
		breakdown = append(breakdown, Entry{Reason: ReasonMetadataAudited, Score: cfg.AuditedPoints})
	}

	return &Result{Score: clamp(total, 0, MaxScore), Breakdown: breakdown}
}

// scoreWeighted combines saturating keyword, numeric-density, and length features into a weighted
// sum on [0, 1], then scales it to points.
func (s *HeuristicScorer) scoreWeighted(text string, meta Metadata) *Result {
	cfg := s.config
	set := features.Extract(text)

	keyword := math.Min(float64(set.AssetTermHits)/cfg.KeywordSaturation, 1)
	numeric := math.Min(set.NumericDensity*cfg.NumericDensityScale, 1)
	structure := math.Min(float64(set.Length)/cfg.StructureLength, 1)
	bonus := 0.0
	if len(meta) > 0 {
		bonus = math.Min(float64(len(meta))/cfg.MetadataKeySaturation, 1) * cfg.MetadataBonus
	}

	sum := cfg.KeywordWeight*keyword + cfg.NumericWeight*numeric + cfg.StructureWeight*structure + bonus
	score := clamp(sum, 0, 1) * MaxScore

	breakdown := []Entry{
		{Reason: ReasonKeywordScore, Value: set.AssetTermHits, Score: points(cfg.KeywordWeight * keyword)},
		{Reason: ReasonNumericScore, Value: utils.Round(set.NumericDensity, 3), Score: points(cfg.NumericWeight * numeric)},
		{Reason: ReasonStructureScore, Value: set.Length, Score: points(cfg.StructureWeight * structure)},
		{Reason: ReasonMetadataBonus, Value: len(meta), Score: points(bonus)},
	}
	return &Result{Score: utils.Round(score, 3), Breakdown: breakdown}
}

func (s *HeuristicScorer) flag(meta Metadata, key string) bool {
	v, ok := meta.Flag(key)
	if !ok {
		if _, present := meta[key]; present {
			s.logger.Debug("ignoring malformed metadata value", zap.String("key", key), zap.Any("value", meta[key]))
		}
		return false
	}
	return v
}

// points converts a [0, 1] contribution to the [0, 100] scale.
func points(x float64) float64 {
	return utils.Round(x*MaxScore, 3)
}

func validProfile(profile string) error {
	switch profile {
	case ProfilePoints, ProfileWeighted:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
}
