package scoring

import (
	"fmt"
	"strings"
)

// Registry resolves a strategy name and optional heuristic profile to a Scorer.
type Registry struct {
	heuristic       *HeuristicScorer
	model           Scorer
	defaultStrategy string
}

// NewRegistry creates a registry. model may be nil when no model is configured; defaultStrategy
// is used for requests that do not name one.
func NewRegistry(heuristic *HeuristicScorer, model Scorer, defaultStrategy string) (*Registry, error) {
	if heuristic == nil {
		return nil, fmt.Errorf("heuristic scorer is required")
	}
	if defaultStrategy == "" {
		defaultStrategy = StrategyHeuristic
	}
	r := &Registry{heuristic: heuristic, model: model, defaultStrategy: defaultStrategy}
	switch defaultStrategy {
	case StrategyHeuristic, StrategyModel:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, defaultStrategy)
	}
	return r, nil
}

// DefaultStrategy returns the strategy used when a request names none.
func (r *Registry) DefaultStrategy() string {
	return r.defaultStrategy
}

// HasModel reports whether the model-assisted strategy is configured.
func (r *Registry) HasModel() bool {
	return r.model != nil
}

// Resolve returns the scorer for strategy and profile. Empty values select the defaults.
// A profile is only meaningful for the heuristic strategy.
func (r *Registry) Resolve(strategy, profile string) (Scorer, error) {
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	profile = strings.ToLower(strings.TrimSpace(profile))
	if strategy == "" {
		strategy = r.defaultStrategy
	}
	switch strategy {
	case StrategyHeuristic:
		if profile == "" || profile == r.heuristic.Profile() {
			return r.heuristic, nil
		}
		return r.heuristic.WithProfile(profile)
	case StrategyModel:
		if profile != "" {
			return nil, fmt.Errorf("%w: %q does not apply to the model strategy", ErrUnknownProfile, profile)
		}
		if r.model == nil {
			return nil, fmt.Errorf("%w: no model configured", ErrModelUnavailable)
		}
		return r.model, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
