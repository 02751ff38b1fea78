package strength

import (
	"fmt"
	"strings"
)

// Tier is the magnitude component of a strength label, ordered MILD < MEDIUM < STRONG
type Tier int

const (
	TierNone Tier = iota
	TierMild
	TierMedium
	TierStrong
)

func (t Tier) String() string {
	switch t {
	case TierMild:
		return "MILD"
	case TierMedium:
		return "MEDIUM"
	case TierStrong:
		return "STRONG"
	default:
		return "NONE"
	}
}

// Direction is the bias component of a strength label
type Direction int

const (
	Indecisive Direction = iota
	Bullish
	Bearish
	// Volatile and Neutral only appear in net options labels
	Volatile
	Neutral
)

func (d Direction) String() string {
	switch d {
	case Bullish:
		return "BULLISH"
	case Bearish:
		return "BEARISH"
	case Volatile:
		return "VOLATILE"
	case Neutral:
		return "NEUTRAL"
	default:
		return "INDECISIVE"
	}
}

// Invert swaps BULLISH and BEARISH and leaves every other direction untouched
func (d Direction) Invert() Direction {
	switch d {
	case Bullish:
		return Bearish
	case Bearish:
		return Bullish
	default:
		return d
	}
}

// Label is a tier/direction pair such as MILD BULLISH
type Label struct {
	Tier      Tier
	Direction Direction
}

// IndecisiveLabel is the label for observations with no usable bias
var IndecisiveLabel = Label{}

// NewLabel builds a label, collapsing directions without a tier to their bare form
func NewLabel(t Tier, d Direction) Label {
	if d == Indecisive || d == Volatile || d == Neutral {
		return Label{Direction: d}
	}
	return Label{Tier: t, Direction: d}
}

// IsDirectional reports whether the label carries a BULLISH or BEARISH bias
func (l Label) IsDirectional() bool {
	return l.Direction == Bullish || l.Direction == Bearish
}

func (l Label) String() string {
	if !l.IsDirectional() {
		return l.Direction.String()
	}
	return l.Tier.String() + " " + l.Direction.String()
}

// MarshalText renders the label as its display string
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses the display string produced by MarshalText
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel parses "STRONG BULLISH", "INDECISIVE", "VOLATILE" and friends.
// Matching is case-insensitive and an empty string is INDECISIVE.
func ParseLabel(s string) (Label, error) {
	fields := strings.Fields(strings.ToUpper(s))
	switch len(fields) {
	case 0:
		return IndecisiveLabel, nil
	case 1:
		switch fields[0] {
		case "INDECISIVE":
			return IndecisiveLabel, nil
		case "VOLATILE":
			return Label{Direction: Volatile}, nil
		case "NEUTRAL":
			return Label{Direction: Neutral}, nil
		}
	case 2:
		tier, ok := parseTier(fields[0])
		if !ok {
			break
		}
		switch fields[1] {
		case "BULLISH":
			return Label{Tier: tier, Direction: Bullish}, nil
		case "BEARISH":
			return Label{Tier: tier, Direction: Bearish}, nil
		}
	}
	return IndecisiveLabel, fmt.Errorf("invalid strength label %q", s)
}

func parseTier(s string) (Tier, bool) {
	switch s {
	case "MILD":
		return TierMild, true
	case "MEDIUM":
		return TierMedium, true
	case "STRONG":
		return TierStrong, true
	}
	return TierNone, false
}
