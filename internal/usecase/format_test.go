package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ShutdownScanner/internal/domain"
)

func TestFormatReport(t *testing.T) {
	t.Parallel()

	byService := []domain.ShutDownByServiceInfo{
		{
			Service: domain.ServiceElectricity,
			Shutdowns: []domain.ShutDownInfo{{
				Range: domain.DateRange{
					Start:      time.Date(2024, time.July, 2, 10, 0, 0, 0, time.UTC),
					End:        time.Date(2024, time.July, 2, 18, 0, 0, 0, time.UTC),
					StartBound: domain.BoundDateTime,
					EndBound:   domain.BoundDateTime,
				},
				RawAddress: "ул. Садовая, д.25",
				City:       domain.CitySPB,
			}},
		},
		{
			Service: domain.ServiceColdWater,
			Shutdowns: []domain.ShutDownInfo{{
				RawAddress: "ул. Садовая, д.25",
				City:       domain.CitySPB,
				Err:        "status 503",
			}},
		},
	}

	want := "💡 Электричество\n" +
		" ⚠︎ ул. Садовая, д.25\n" +
		"   - Начало: 02.07.2024 10:00\n" +
		"   - Окончание: 02.07.2024 18:00\n" +
		"\n" +
		"🚰 Холодная вода\n" +
		" ⚠︎ ул. Садовая, д.25: unable to get (status 503)"
	require.Equal(t, want, FormatReport(byService))
}

func TestFormatReportEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Отключений не найдено 🙂", FormatReport(nil))
	require.Equal(t, "Отключений не найдено 🙂",
		FormatReport([]domain.ShutDownByServiceInfo{{Service: domain.ServiceElectricity}}))
}

func TestServiceTitle(t *testing.T) {
	t.Parallel()

	require.Equal(t, "💡 Электричество", ServiceTitle(domain.ServiceElectricity))
	require.Equal(t, "🚿 Горячая вода", ServiceTitle(domain.ServiceHotWater))
	require.Equal(t, "🚰 Холодная вода", ServiceTitle(domain.ServiceColdWater))
	require.Equal(t, "GAS", ServiceTitle(domain.Service("GAS")))
}
