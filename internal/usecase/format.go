package usecase

import (
	"fmt"
	"strings"

	"ShutdownScanner/internal/domain"
)

// ServiceTitle returns the user-facing name of a service.
func ServiceTitle(service domain.Service) string {
	switch service {
	case domain.ServiceElectricity:
		return "💡 Электричество"
	case domain.ServiceHotWater:
		return "🚿 Горячая вода"
	case domain.ServiceColdWater:
		return "🚰 Холодная вода"
	default:
		return string(service)
	}
}

// FormatReport renders grouped shutdowns as one chat message. Error-carrying
// records come out as "unable to get" lines so the reader can tell a failed
// check from an empty schedule.
func FormatReport(byService []domain.ShutDownByServiceInfo) string {
	var b strings.Builder
	for _, group := range byService {
		if len(group.Shutdowns) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ServiceTitle(group.Service))
		b.WriteString("\n")
		for _, info := range group.Shutdowns {
			if info.Err != "" {
				fmt.Fprintf(&b, " ⚠︎ %s\n", info)
				continue
			}
			fmt.Fprintf(&b, " ⚠︎ %s\n   - Начало: %s\n   - Окончание: %s\n",
				info.RawAddress, info.StartRepr(), info.EndRepr())
		}
	}
	if b.Len() == 0 {
		return "Отключений не найдено 🙂"
	}
	return strings.TrimRight(b.String(), "\n")
}
