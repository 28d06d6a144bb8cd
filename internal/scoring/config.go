package scoring

import (
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/rwascore/internal/features"
)

// HeuristicConfig holds the weights of both heuristic profiles.
type HeuristicConfig struct {
	// Profile selects the default profile: "points" or "weighted".
	Profile string `yaml:"profile"` // default: points

	// Points profile
	Base                   float64            `yaml:"base"`                     // default: 10
	Keywords               []features.Keyword `yaml:"keywords"`                 // default: features.PresenceKeywords
	NumericEntityPoints    float64            `yaml:"numeric_entity_points"`    // default: 2
	NumericEntityCap       float64            `yaml:"numeric_entity_cap"`       // default: 20
	DatePoints             float64            `yaml:"date_points"`              // default: 5
	VerifiedOffchainPoints float64            `yaml:"verified_offchain_points"` // default: 20
	AuditedPoints          float64            `yaml:"audited_points"`           // default: 10

	// Weighted profile
	KeywordWeight         float64 `yaml:"keyword_weight"`          // default: 0.3
	NumericWeight         float64 `yaml:"numeric_weight"`          // default: 0.3
	StructureWeight       float64 `yaml:"structure_weight"`        // default: 0.4
	KeywordSaturation     float64 `yaml:"keyword_saturation"`      // default: 6 hits
	NumericDensityScale   float64 `yaml:"numeric_density_scale"`   // default: 10
	StructureLength       float64 `yaml:"structure_length"`        // default: 5000 runes
	MetadataKeySaturation float64 `yaml:"metadata_key_saturation"` // default: 5 keys
	MetadataBonus         float64 `yaml:"metadata_bonus"`          // default: 0.1

	// decoded is set when the config came from YAML. Missing keys were seeded with defaults
	// there, so a zero that survives decoding was written on purpose.
	decoded bool
}

// DefaultHeuristicConfig returns the default heuristic configuration.
func DefaultHeuristicConfig() *HeuristicConfig {
	keywords := make([]features.Keyword, len(features.PresenceKeywords))
	copy(keywords, features.PresenceKeywords)
	return &HeuristicConfig{
		Profile: ProfilePoints,

		Base:                   10,
		Keywords:               keywords,
		NumericEntityPoints:    2,
		NumericEntityCap:       20,
		DatePoints:             5,
		VerifiedOffchainPoints: 20,
		AuditedPoints:          10,

		KeywordWeight:         0.3,
		NumericWeight:         0.3,
		StructureWeight:       0.4,
		KeywordSaturation:     6,
		NumericDensityScale:   10,
		StructureLength:       5000,
		MetadataKeySaturation: 5,
		MetadataBonus:         0.1,
	}
}

// UnmarshalYAML decodes value on top of the defaults, so an explicit 0 such as
// "verified_offchain_points: 0" disables that contribution instead of falling back.
func (c *HeuristicConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain HeuristicConfig
	seeded := (*plain)(DefaultHeuristicConfig())
	if err := value.Decode(seeded); err != nil {
		return err
	}
	*c = HeuristicConfig(*seeded)
	c.decoded = true
	return nil
}

// ApplyDefaults fills in unset values with defaults. For a config built in code zero means unset;
// for a decoded one only the profile, the keyword list and the saturation divisors are filled.
func (c *HeuristicConfig) ApplyDefaults() {
	defaults := DefaultHeuristicConfig()

	if c.Profile == "" {
		c.Profile = defaults.Profile
	}
	if len(c.Keywords) == 0 {
		c.Keywords = defaults.Keywords
	}
	if c.KeywordSaturation <= 0 {
		c.KeywordSaturation = defaults.KeywordSaturation
	}
	if c.StructureLength <= 0 {
		c.StructureLength = defaults.StructureLength
	}
	if c.MetadataKeySaturation <= 0 {
		c.MetadataKeySaturation = defaults.MetadataKeySaturation
	}
	if c.decoded {
		return
	}

	if c.Base == 0 {
		c.Base = defaults.Base
	}
	if c.NumericEntityPoints == 0 {
		c.NumericEntityPoints = defaults.NumericEntityPoints
	}
	if c.NumericEntityCap == 0 {
		c.NumericEntityCap = defaults.NumericEntityCap
	}
	if c.DatePoints == 0 {
		c.DatePoints = defaults.DatePoints
	}
	if c.VerifiedOffchainPoints == 0 {
		c.VerifiedOffchainPoints = defaults.VerifiedOffchainPoints
	}
	if c.AuditedPoints == 0 {
		c.AuditedPoints = defaults.AuditedPoints
	}

	if c.KeywordWeight == 0 {
		c.KeywordWeight = defaults.KeywordWeight
	}
	if c.NumericWeight == 0 {
		c.NumericWeight = defaults.NumericWeight
	}
	if c.StructureWeight == 0 {
		c.StructureWeight = defaults.StructureWeight
	}
	if c.NumericDensityScale == 0 {
		c.NumericDensityScale = defaults.NumericDensityScale
	}
	if c.MetadataBonus == 0 {
		c.MetadataBonus = defaults.MetadataBonus
	}
}

// ModelScorerConfig holds the auxiliary feature points of the model-assisted strategy.
type ModelScorerConfig struct {
	// AddAuxiliaryBonuses adds the auxiliary entries into the returned score. When false
	// (default) they are reported in the breakdown only and the score is the model score.
	AddAuxiliaryBonuses bool    `yaml:"add_auxiliary_bonuses"`
	NumericEntityPoints float64 `yaml:"numeric_entity_points"` // default: 2
	NumericEntityCap    float64 `yaml:"numeric_entity_cap"`    // default: 20
	DatePoints          float64 `yaml:"date_points"`           // default: 5
	SignaturePoints     float64 `yaml:"signature_points"`      // default: 5

	decoded bool
}

// DefaultModelScorerConfig returns the default auxiliary points.
func DefaultModelScorerConfig() *ModelScorerConfig {
	return &ModelScorerConfig{
		NumericEntityPoints: 2,
		NumericEntityCap:    20,
		DatePoints:          5,
		SignaturePoints:     5,
	}
}

// UnmarshalYAML decodes value on top of the defaults; an explicit 0 is kept.
func (c *ModelScorerConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ModelScorerConfig
	seeded := (*plain)(DefaultModelScorerConfig())
	if err := value.Decode(seeded); err != nil {
		return err
	}
	*c = ModelScorerConfig(*seeded)
	c.decoded = true
	return nil
}

// ApplyDefaults fills in zero values with defaults unless the config was decoded from YAML.
func (c *ModelScorerConfig) ApplyDefaults() {
	if c.decoded {
		return
	}
	defaults := DefaultModelScorerConfig()
	if c.NumericEntityPoints == 0 {
		c.NumericEntityPoints = defaults.NumericEntityPoints
	}
	if c.NumericEntityCap == 0 {
		c.NumericEntityCap = defaults.NumericEntityCap
	}
	if c.DatePoints == 0 {
		c.DatePoints = defaults.DatePoints
	}
	if c.SignaturePoints == 0 {
		c.SignaturePoints = defaults.SignaturePoints
	}
}
