package sdruntime

// Stock run parameters.
const (
	DefaultSteps             = 20
	DefaultConditioningScale = 0.95
	DefaultStrength          = 1.0
	DefaultGuidanceScale     = 14.0
)

// Config carries the sampling parameters for one run. It is a value type:
// Update returns a modified copy and never touches the receiver.
// Ranges are not validated here; the backend may reject what it cannot use.
type Config struct {
	Strength          float64
	GuidanceScale     float64
	Steps             int
	ConditioningScale float64
	Seed              int64 // Negative asks for a random seed
}

// DefaultConfig returns the stock parameters.
func DefaultConfig() Config {
	return Config{
		Strength:          DefaultStrength,
		GuidanceScale:     DefaultGuidanceScale,
		Steps:             DefaultSteps,
		ConditioningScale: DefaultConditioningScale,
		Seed:              -1,
	}
}

// Update overwrites strength, guidance scale and steps. A nil condScale keeps
// the current conditioning scale.
func (c Config) Update(strength, guidanceScale float64, steps int, condScale *float64) Config {
	c.Strength = strength
	c.GuidanceScale = guidanceScale
	c.Steps = steps
	if condScale != nil {
		c.ConditioningScale = *condScale
	}
	return c
}

// WithSeed returns a copy using seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = seed
	return c
}
