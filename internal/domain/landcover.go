package domain

// ForestGroup buckets catchments by forest cover.
type ForestGroup string

const (
	ForestLow    ForestGroup = "low"
	ForestMedium ForestGroup = "medium"
	ForestHigh   ForestGroup = "high"
)

// ForestGroups lists groups in ascending order of forest cover.
var ForestGroups = []ForestGroup{ForestLow, ForestMedium, ForestHigh}

// Label returns a display label such as "Low forest (<10%)".
func (g ForestGroup) Label() string {
	switch g {
	case ForestLow:
		return "Low forest (<10%)"
	case ForestMedium:
		return "Medium forest (10-30%)"
	case ForestHigh:
		return "High forest (>30%)"
	default:
		return string(g)
	}
}

// ForestPerc is the combined deciduous and evergreen woodland percentage.
func ForestPerc(lc LandCover) float64 {
	return valueOrZero(lc.DeciduousWoodland) + valueOrZero(lc.EvergreenWoodland)
}

// ForestGroupOf classifies a forest percentage: below 10 is low, above 30 is
// high, anything in between (inclusive) is medium.
func ForestGroupOf(perc float64) ForestGroup {
	switch {
	case perc < 10:
		return ForestLow
	case perc > 30:
		return ForestHigh
	default:
		return ForestMedium
	}
}

// AttachLandCover sets the forest fields of a summary.
func AttachLandCover(s CatchmentSummary, lc LandCover) CatchmentSummary {
	s.ForestPerc = ForestPerc(lc)
	s.ForestGroup = ForestGroupOf(s.ForestPerc)
	s.HasLandCover = true
	return s
}

// GroupRunoffRatios collects runoff ratios per forest group. Summaries without
// land cover are skipped. Every group is present in the result, possibly empty.
func GroupRunoffRatios(summaries []CatchmentSummary) map[ForestGroup][]float64 {
	groups := make(map[ForestGroup][]float64, len(ForestGroups))
	for _, g := range ForestGroups {
		groups[g] = nil
	}
	for _, s := range summaries {
		if !s.HasLandCover {
			continue
		}
		groups[s.ForestGroup] = append(groups[s.ForestGroup], s.RunoffRatio)
	}
	return groups
}
