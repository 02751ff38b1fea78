package strength

import (
	"fmt"
	"strings"
)

// Default parameters for threshold computation
const (
	DefaultWindow        = Window60
	DefaultMinHistory    = 20
	DefaultOIHighPct     = 80.0
	DefaultOILowPct      = 40.0
	DefaultChangeHighPct = 80.0
	DefaultChangeLowPct  = 20.0
)

// Method selects how a percentile is read off the sorted window
type Method string

const (
	// MethodLinear interpolates between the two closest order statistics
	MethodLinear Method = "linear"
	// MethodLower takes the order statistic at or below the percentile position
	MethodLower Method = "lower"
	// MethodNearest takes the order statistic closest to the percentile position
	MethodNearest Method = "nearest"
)

// CombineMode selects the truth table used to merge OI and change strength
type CombineMode string

const (
	// CombineMin keeps the OI direction and takes the weaker of the two tiers
	CombineMin CombineMode = "min"
	// CombineDirectional weighs the sign of the OI change against the OI direction
	CombineDirectional CombineMode = "directional"
)

// PoolMode selects which observations feed a segment's thresholds
type PoolMode string

const (
	// PoolSeparate computes thresholds from the segment's own window
	PoolSeparate PoolMode = "separate"
	// PoolJointOptions computes CALL and PUT thresholds from both windows together
	PoolJointOptions PoolMode = "joint"
	// PoolParticipants computes thresholds from FII, PRO and CLIENT windows
	// together: CALL and PUT as one options pool, other segments per segment
	PoolParticipants PoolMode = "participants"
)

// PooledInstitutions are the participants unioned under PoolParticipants
var PooledInstitutions = []Institution{FII, PRO, CLIENT}

// Percentiles is an upper/lower percentile pair in the range [0, 100]
type Percentiles struct {
	High float64 `json:"high" yaml:"high"`
	Low  float64 `json:"low" yaml:"low"`
}

// Config holds the classifier parameters
type Config struct {
	Window            Window      `json:"window"`
	MinHistory        int         `json:"min_history"`
	OIPercentiles     Percentiles `json:"oi_percentiles"`
	ChangePercentiles Percentiles `json:"change_percentiles"`
	PutSegments       []Segment   `json:"put_segments"`
	Method            Method      `json:"method"`
	Combine           CombineMode `json:"combine"`
	Pool              PoolMode    `json:"pool"`
}

// DefaultConfig returns the 60-session, 80/40 and 80/20 configuration
func DefaultConfig() Config {
	return Config{
		Window:            DefaultWindow,
		MinHistory:        DefaultMinHistory,
		OIPercentiles:     Percentiles{High: DefaultOIHighPct, Low: DefaultOILowPct},
		ChangePercentiles: Percentiles{High: DefaultChangeHighPct, Low: DefaultChangeLowPct},
		PutSegments:       []Segment{PutOptions},
		Method:            MethodLinear,
		Combine:           CombineMin,
		Pool:              PoolSeparate,
	}
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	if c.Window.Days() < 1 {
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, c.Window.Days())
	}
	if c.MinHistory < 1 || c.MinHistory > c.Window.Days() {
		return fmt.Errorf("%w: min history must be in [1, %d], got %d", ErrInvalidConfig, c.Window.Days(), c.MinHistory)
	}
	if err := c.OIPercentiles.validate("oi"); err != nil {
		return err
	}
	if err := c.ChangePercentiles.validate("change"); err != nil {
		return err
	}
	switch c.Method {
	case MethodLinear, MethodLower, MethodNearest:
	default:
		return fmt.Errorf("%w: unknown percentile method %q", ErrInvalidConfig, c.Method)
	}
	switch c.Combine {
	case CombineMin, CombineDirectional:
	default:
		return fmt.Errorf("%w: unknown combine mode %q", ErrInvalidConfig, c.Combine)
	}
	switch c.Pool {
	case PoolSeparate, PoolJointOptions, PoolParticipants:
	default:
		return fmt.Errorf("%w: unknown pool mode %q", ErrInvalidConfig, c.Pool)
	}
	return nil
}

func (p Percentiles) validate(name string) error {
	if p.Low < 0 || p.High > 100 || p.Low > p.High {
		return fmt.Errorf("%w: %s percentiles must satisfy 0 <= low <= high <= 100, got low=%g high=%g",
			ErrInvalidConfig, name, p.Low, p.High)
	}
	return nil
}

// IsPut reports whether direction is inverted for the segment
func (c Config) IsPut(seg Segment) bool {
	for _, s := range c.PutSegments {
		if s == seg {
			return true
		}
	}
	return false
}

// ParseMethod parses a percentile method name
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodLinear, MethodLower, MethodNearest:
		return m, nil
	case "":
		return MethodLinear, nil
	}
	return "", fmt.Errorf("%w: unknown percentile method %q", ErrInvalidConfig, s)
}

// ParseCombineMode parses a combine mode name
func ParseCombineMode(s string) (CombineMode, error) {
	m := CombineMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case CombineMin, CombineDirectional:
		return m, nil
	case "":
		return CombineMin, nil
	}
	return "", fmt.Errorf("%w: unknown combine mode %q", ErrInvalidConfig, s)
}

// ParsePoolMode parses a pool mode name
func ParsePoolMode(s string) (PoolMode, error) {
	m := PoolMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PoolSeparate, PoolJointOptions, PoolParticipants:
		return m, nil
	case "":
		return PoolSeparate, nil
	}
	return "", fmt.Errorf("%w: unknown pool mode %q", ErrInvalidConfig, s)
}
