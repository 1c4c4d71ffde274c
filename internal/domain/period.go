package domain

import "time"

// Season is a meteorological season label.
type Season string

const (
	SeasonDJF Season = "DJF"
	SeasonMAM Season = "MAM"
	SeasonJJA Season = "JJA"
	SeasonSON Season = "SON"
)

// Seasons lists seasons in season-year order (September start).
var Seasons = []Season{SeasonSON, SeasonDJF, SeasonMAM, SeasonJJA}

func (s Season) order() int {
	switch s {
	case SeasonSON:
		return 1
	case SeasonDJF:
		return 2
	case SeasonMAM:
		return 3
	case SeasonJJA:
		return 4
	default:
		return 0
	}
}

// SeasonOf maps a calendar month to its meteorological season.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonDJF
	case time.March, time.April, time.May:
		return SeasonMAM
	case time.June, time.July, time.August:
		return SeasonJJA
	default:
		return SeasonSON
	}
}

// WaterYear returns the October–September water year containing t, labelled
// by its end year.
func WaterYear(t time.Time) int {
	return periodEndYear(t, time.September)
}

// SeasonYear returns the September–August season year containing t, labelled
// by its end year. December therefore shares a season year with the January
// and February that follow it.
func SeasonYear(t time.Time) int {
	return periodEndYear(t, time.August)
}

// periodEndYear returns the end year of the annual period anchored at the end
// of the given month.
func periodEndYear(t time.Time, endMonth time.Month) int {
	if t.Month() > endMonth {
		return t.Year() + 1
	}
	return t.Year()
}
