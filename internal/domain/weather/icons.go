package weather

import "strings"

const defaultIcon = "cloud.sun.fill"

// iconFor maps an upstream condition group to an icon identifier.
func iconFor(main string) string {
	switch strings.ToLower(strings.TrimSpace(main)) {
	case "clear":
		return "sun.max.fill"
	case "clouds":
		return "cloud.fill"
	case "rain", "drizzle":
		return "cloud.rain.fill"
	case "thunderstorm":
		return "cloud.bolt.rain.fill"
	case "snow":
		return "snow"
	case "mist", "fog", "haze":
		return "cloud.fog.fill"
	default:
		return defaultIcon
	}
}
