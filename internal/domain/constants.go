package domain

import "strings"

// City identifies a municipality whose announcement pages are supported.
type City string

const (
	CitySPB City = "SPB"
	CityRND City = "RND"
)

// DisplayName returns the human-readable city name used in URL templates
// and outgoing messages.
func (c City) DisplayName() string {
	switch c {
	case CitySPB:
		return "Санкт-Петербург"
	case CityRND:
		return "Ростов-на-Дону"
	default:
		return string(c)
	}
}

// Service identifies a utility service monitored for maintenance windows.
type Service string

const (
	ServiceElectricity Service = "ELECTRICITY"
	ServiceColdWater   Service = "COLD_WATER"
	ServiceHotWater    Service = "HOT_WATER"
)

// Services lists all supported services in reporting order.
func Services() []Service {
	return []Service{ServiceElectricity, ServiceHotWater, ServiceColdWater}
}

// ParseService resolves a case-insensitive service name ("electricity",
// "HOT_WATER") to its identifier.
func ParseService(raw string) (Service, bool) {
	candidate := Service(strings.ToUpper(strings.TrimSpace(raw)))
	for _, service := range Services() {
		if candidate == service {
			return service, true
		}
	}
	return "", false
}
