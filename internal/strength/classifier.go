package strength

import (
	"errors"
	"fmt"
	"time"
)

// Classifier assigns strength labels to observations held in a History.
// It performs no I/O and no logging; every failure is returned to the caller.
type Classifier struct {
	history *History
	cfg     Config
}

// NewClassifier creates a classifier over h with the given configuration
func NewClassifier(h *History, cfg Config) (*Classifier, error) {
	if h == nil {
		return nil, errors.New("strength: nil history")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{history: h, cfg: cfg}, nil
}

// Config returns the classifier configuration
func (c *Classifier) Config() Config {
	return c.cfg
}

// History returns the underlying store
func (c *Classifier) History() *History {
	return c.history
}

// Classify labels the observation for (inst, seg) on date. A missing
// observation yields ErrNotFound; a short lookback yields ErrInsufficientHistory.
func (c *Classifier) Classify(inst Institution, seg Segment, date time.Time) (Result, error) {
	today, err := c.history.Observation(inst, seg, date)
	if err != nil {
		return Result{}, err
	}

	th, n, err := c.Thresholds(inst, seg, date)
	if err != nil {
		return Result{}, err
	}

	res := c.ClassifyObservation(today, th)
	res.WindowSize = n
	return res, nil
}

// Thresholds computes the cut-offs for (inst, seg) as of date along with the
// number of observations they were drawn from.
func (c *Classifier) Thresholds(inst Institution, seg Segment, date time.Time) (Thresholds, int, error) {
	window, err := c.window(inst, seg, date)
	if err != nil {
		return Thresholds{}, 0, err
	}

	switch {
	case c.cfg.Pool == PoolParticipants:
		return c.participantThresholds(inst, seg, date, window)
	case c.cfg.Pool == PoolJointOptions && isOption(seg):
		partner := optionPartner(seg)
		other, err := c.window(inst, partner, date)
		if err != nil {
			return Thresholds{}, 0, fmt.Errorf("joint %s pool: %w", partner, err)
		}
		window = append(window, other...)
	}

	return ComputeThresholds(window, c.cfg), len(window), nil
}

// participantThresholds pools the classified institution's own window with
// every PooledInstitutions window of the same segment group. Pool members
// lacking history are left out; only the classified key must meet MinHistory.
func (c *Classifier) participantThresholds(inst Institution, seg Segment, date time.Time, own []Observation) (Thresholds, int, error) {
	segs := []Segment{seg}
	if isOption(seg) {
		segs = []Segment{CallOptions, PutOptions}
	}

	var netOI, changes []int64
	add := func(window []Observation) {
		for _, o := range window {
			netOI = append(netOI, o.NetOI)
			changes = append(changes, o.OIChange)
		}
	}
	add(own)

	members := PooledInstitutions
	if !containsInstitution(members, inst) {
		members = append([]Institution{inst}, members...)
	}
	for _, m := range members {
		for _, s := range segs {
			if m == inst && s == seg {
				continue
			}
			window, err := c.history.Window(m, s, date, c.cfg.Window.Days(), 1)
			if err != nil {
				if errors.Is(err, ErrInsufficientHistory) {
					continue
				}
				return Thresholds{}, 0, fmt.Errorf("participant %s/%s pool: %w", m, s, err)
			}
			add(window)
		}
	}

	return ThresholdsFromValues(netOI, changes, c.cfg), len(netOI), nil
}

func isOption(seg Segment) bool {
	return seg == CallOptions || seg == PutOptions
}

func optionPartner(seg Segment) Segment {
	if seg == CallOptions {
		return PutOptions
	}
	return CallOptions
}

func containsInstitution(list []Institution, inst Institution) bool {
	for _, i := range list {
		if i == inst {
			return true
		}
	}
	return false
}

func (c *Classifier) window(inst Institution, seg Segment, date time.Time) ([]Observation, error) {
	return c.history.Window(inst, seg, date, c.cfg.Window.Days(), c.cfg.MinHistory)
}

// ClassifyObservation labels today against precomputed thresholds
func (c *Classifier) ClassifyObservation(today Observation, th Thresholds) Result {
	return classify(today, th, c.cfg)
}

func classify(today Observation, th Thresholds, cfg Config) Result {
	put := cfg.IsPut(today.Segment)

	oiTier := TierFor(absFloat(today.NetOI), th.OIHigh, th.OILow)
	changeTier := TierFor(absFloat(today.OIChange), th.ChangeHigh, th.ChangeLow)

	oiLabel := Label{Tier: oiTier, Direction: DirectionOf(today.NetOI, put)}
	changeLabel := Label{Tier: changeTier, Direction: DirectionOf(today.OIChange, put)}

	final := Combine(cfg.Combine, oiLabel, changeLabel)
	if today.NetOI == 0 && today.OIChange == 0 {
		final = IndecisiveLabel
	}

	return Result{
		Date:           today.Date,
		Institution:    today.Institution,
		Segment:        today.Segment,
		NetOI:          today.NetOI,
		OIChange:       today.OIChange,
		Thresholds:     th,
		OIStrength:     oiLabel,
		ChangeStrength: changeLabel,
		Label:          final,
	}
}

// TierFor buckets an absolute value against a high and low cut-off.
// Values on a boundary take the higher tier.
func TierFor(abs, high, low float64) Tier {
	switch {
	case abs >= high:
		return TierStrong
	case abs >= low:
		return TierMedium
	default:
		return TierMild
	}
}

// DirectionOf maps the sign of v to a direction, inverted for put segments
func DirectionOf(v int64, put bool) Direction {
	var d Direction
	switch {
	case v > 0:
		d = Bullish
	case v < 0:
		d = Bearish
	default:
		return Indecisive
	}
	if put {
		return d.Invert()
	}
	return d
}
