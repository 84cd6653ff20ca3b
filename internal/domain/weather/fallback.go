package weather

import "time"

type seasonEstimate struct {
	icon        string
	description string
	minC        float64
	maxC        float64
}

var (
	winterEstimate = seasonEstimate{icon: "snow", description: "Cold winter weather expected", minC: -2, maxC: 6}
	springEstimate = seasonEstimate{icon: "cloud.sun.fill", description: "Mild spring weather expected", minC: 8, maxC: 18}
	summerEstimate = seasonEstimate{icon: "sun.max.fill", description: "Warm summer weather expected", minC: 20, maxC: 30}
	autumnEstimate = seasonEstimate{icon: "cloud.fill", description: "Cool autumn weather expected", minC: 7, maxC: 16}
)

// fallbackSummary estimates the weather from the calendar month alone.
func fallbackSummary(date time.Time, units Units) Summary {
	est := estimateFor(date.Month())
	low := convertCelsius(est.minC, units)
	high := convertCelsius(est.maxC, units)
	return Summary{
		Icon:        est.icon,
		Description: est.description,
		Min:         &low,
		Max:         &high,
		Units:       units,
		Source:      SourceFallback,
	}
}

func estimateFor(month time.Month) seasonEstimate {
	switch month {
	case time.December, time.January, time.February:
		return winterEstimate
	case time.March, time.April, time.May:
		return springEstimate
	case time.June, time.July, time.August:
		return summerEstimate
	default:
		return autumnEstimate
	}
}

func convertCelsius(value float64, units Units) float64 {
	if units == UnitsImperial {
		return value*9/5 + 32
	}
	return value
}
