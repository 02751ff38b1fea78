package strength

// Directional labels
var (
	StrongBullish = Label{Tier: TierStrong, Direction: Bullish}
	MediumBullish = Label{Tier: TierMedium, Direction: Bullish}
	MildBullish   = Label{Tier: TierMild, Direction: Bullish}
	StrongBearish = Label{Tier: TierStrong, Direction: Bearish}
	MediumBearish = Label{Tier: TierMedium, Direction: Bearish}
	MildBearish   = Label{Tier: TierMild, Direction: Bearish}

	VolatileLabel = Label{Direction: Volatile}
	NeutralLabel  = Label{Direction: Neutral}
)

type tierPair struct {
	oi, change Tier
}

// minTierTable is the weaker of the OI and change tiers
var minTierTable = map[tierPair]Tier{
	{TierStrong, TierStrong}: TierStrong,
	{TierStrong, TierMedium}: TierMedium,
	{TierStrong, TierMild}:   TierMild,
	{TierMedium, TierStrong}: TierMedium,
	{TierMedium, TierMedium}: TierMedium,
	{TierMedium, TierMild}:   TierMild,
	{TierMild, TierStrong}:   TierMild,
	{TierMild, TierMedium}:   TierMild,
	{TierMild, TierMild}:     TierMild,
}

// CombineTiers returns the weaker of two tiers
func CombineTiers(oi, change Tier) Tier {
	return minTierTable[tierPair{oi, change}]
}

type labelPair struct {
	first, second Label
}

// directionalTable pairs the OI label with the change label, where the change
// carries its own sign. Agreement keeps the stronger reading, disagreement
// either cancels out or lets a strong change overturn a mild position.
var directionalTable = map[labelPair]Label{
	{StrongBullish, StrongBullish}: StrongBullish,
	{StrongBullish, MediumBullish}: StrongBullish,
	{StrongBullish, MildBullish}:   StrongBullish,
	{StrongBullish, StrongBearish}: IndecisiveLabel,
	{StrongBullish, MediumBearish}: IndecisiveLabel,
	{StrongBullish, MildBearish}:   StrongBullish,

	{MediumBullish, StrongBullish}: StrongBullish,
	{MediumBullish, MediumBullish}: MediumBullish,
	{MediumBullish, MildBullish}:   MediumBullish,
	{MediumBullish, StrongBearish}: IndecisiveLabel,
	{MediumBullish, MediumBearish}: IndecisiveLabel,
	{MediumBullish, MildBearish}:   MediumBullish,

	{MildBullish, StrongBullish}: MediumBullish,
	{MildBullish, MediumBullish}: MildBullish,
	{MildBullish, MildBullish}:   MildBullish,
	{MildBullish, StrongBearish}: MediumBearish,
	{MildBullish, MediumBearish}: IndecisiveLabel,
	{MildBullish, MildBearish}:   IndecisiveLabel,

	{StrongBearish, StrongBullish}: IndecisiveLabel,
	{StrongBearish, MediumBullish}: IndecisiveLabel,
	{StrongBearish, MildBullish}:   StrongBearish,
	{StrongBearish, StrongBearish}: StrongBearish,
	{StrongBearish, MediumBearish}: StrongBearish,
	{StrongBearish, MildBearish}:   StrongBearish,

	{MediumBearish, StrongBullish}: IndecisiveLabel,
	{MediumBearish, MediumBullish}: IndecisiveLabel,
	{MediumBearish, MildBullish}:   MediumBearish,
	{MediumBearish, StrongBearish}: StrongBearish,
	{MediumBearish, MediumBearish}: MediumBearish,
	{MediumBearish, MildBearish}:   MediumBearish,

	{MildBearish, StrongBullish}: MediumBullish,
	{MildBearish, MediumBullish}: IndecisiveLabel,
	{MildBearish, MildBullish}:   IndecisiveLabel,
	{MildBearish, StrongBearish}: MediumBearish,
	{MildBearish, MediumBearish}: MildBearish,
	{MildBearish, MildBearish}:   MildBearish,
}

// Combine merges the OI and change labels under the given mode.
//
// CombineMin keeps the OI direction and takes the weaker tier; the change
// direction is ignored. CombineDirectional looks the pair up in the
// directional table and, when the change has no sign, falls back to
// CombineMin. An indecisive OI label is indecisive under both modes.
func Combine(mode CombineMode, oi, change Label) Label {
	if !oi.IsDirectional() {
		return IndecisiveLabel
	}
	if mode == CombineDirectional && change.IsDirectional() {
		if l, ok := directionalTable[labelPair{oi, change}]; ok {
			return l
		}
		return IndecisiveLabel
	}
	return NewLabel(CombineTiers(oi.Tier, change.Tier), oi.Direction)
}
