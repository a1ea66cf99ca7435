package progression

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// tierThresholds maps each tier to its entry level. Bands are contiguous:
// bronze [1,3), silver [3,10), gold [10,20), platinum [20, ∞).
var tierThresholds = []struct {
	Tier     Tier
	MinLevel int
}{
	{TierBronze, 1},
	{TierSilver, 3},
	{TierGold, 10},
	{TierPlatinum, 20},
}

// TierForLevel returns the band whose range contains the level.
func TierForLevel(level int) Tier {
	if level < 1 {
		level = 1
	}
	current := tierThresholds[0].Tier
	for _, t := range tierThresholds {
		if level >= t.MinLevel {
			current = t.Tier
		}
	}
	return current
}

// NextTierLevel returns the entry level of the next tier, or false if the
// level is already in the top band.
func NextTierLevel(level int) (int, bool) {
	for _, t := range tierThresholds {
		if level < t.MinLevel {
			return t.MinLevel, true
		}
	}
	return 0, false
}

// TotalXPForLevel returns the cumulative XP needed to reach targetLevel
// from scratch: the sum of every per-level requirement below it.
func TotalXPForLevel(targetLevel int) int {
	total := 0
	for l := 1; l < targetLevel; l++ {
		total += XPForLevel(l)
	}
	return total
}

// TierProgress measures progress toward the next tier boundary as a share
// of the cumulative XP span between the current tier's entry level and the
// next tier's. Returns 100 in the terminal tier.
func TierProgress(level, totalXP int) float64 {
	nextLevel, ok := NextTierLevel(level)
	if !ok {
		return 100
	}

	entryLevel := 1
	for _, t := range tierThresholds {
		if level >= t.MinLevel {
			entryLevel = t.MinLevel
		}
	}

	span := TotalXPForLevel(nextLevel) - TotalXPForLevel(entryLevel)
	earned := totalXP - TotalXPForLevel(entryLevel)
	return clampPercent(float64(earned) / float64(span) * 100)
}

// TierColors pairs each tier with its display colors. Presentation only;
// kept here so every surface renders tiers the same way.
type TierColors struct {
	Text string `json:"text"`
	Bg   string `json:"bg"`
}

var Colors = map[Tier]TierColors{
	TierBronze:   {Text: "text-orange-700", Bg: "bg-orange-700"},
	TierSilver:   {Text: "text-slate-400", Bg: "bg-slate-400"},
	TierGold:     {Text: "text-yellow-500", Bg: "bg-yellow-500"},
	TierPlatinum: {Text: "text-cyan-100", Bg: "bg-cyan-100"},
}
