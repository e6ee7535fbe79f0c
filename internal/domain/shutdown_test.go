package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShutDownInfoString(t *testing.T) {
	t.Parallel()

	info := ShutDownInfo{
		Range: DateRange{
			Start:      time.Date(2024, time.July, 2, 10, 0, 0, 0, time.UTC),
			End:        time.Date(2024, time.July, 2, 18, 0, 0, 0, time.UTC),
			StartBound: BoundDateTime,
			EndBound:   BoundDateTime,
		},
		RawAddress: "ул. Садовая, д.25",
		City:       CitySPB,
	}
	require.Equal(t, "ул. Садовая, д.25: 02.07.2024 10:00 - 02.07.2024 18:00", info.String())

	failed := ShutDownInfo{RawAddress: "ул. Садовая, д.25", City: CitySPB, Err: "status 503"}
	require.Equal(t, "ул. Садовая, д.25: unable to get (status 503)", failed.String())

	undated := ShutDownInfo{RawAddress: "ул. Садовая, д.25", City: CitySPB}
	require.Equal(t, "ул. Садовая, д.25: - - -", undated.String())
}

func TestNotificationKey(t *testing.T) {
	t.Parallel()

	info := ShutDownInfo{
		Range: DateRange{
			Start:      time.Date(2024, time.July, 2, 10, 0, 0, 0, time.UTC),
			End:        time.Date(2024, time.July, 2, 18, 0, 0, 0, time.UTC),
			StartBound: BoundDateTime,
			EndBound:   BoundDateTime,
		},
		RawAddress: "ул. Садовая, д.25",
		City:       CitySPB,
	}

	key := NotificationKey(ServiceElectricity, info)
	require.Len(t, key, 64)
	require.Equal(t, key, NotificationKey(ServiceElectricity, info), "key must be stable")

	require.NotEqual(t, key, NotificationKey(ServiceHotWater, info))

	shifted := info
	shifted.Range.End = shifted.Range.End.Add(time.Hour)
	require.NotEqual(t, key, NotificationKey(ServiceElectricity, shifted))
}

func TestServicesOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t, []Service{ServiceElectricity, ServiceHotWater, ServiceColdWater}, Services())
}

func TestParseService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Service
		ok   bool
	}{
		{raw: "electricity", want: ServiceElectricity, ok: true},
		{raw: "hot_water", want: ServiceHotWater, ok: true},
		{raw: "cold_water", want: ServiceColdWater, ok: true},
		{raw: "ELECTRICITY", want: ServiceElectricity, ok: true},
		{raw: " Electricity ", want: ServiceElectricity, ok: true},
		{raw: "gas", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseService(tt.raw)
		require.Equal(t, tt.ok, ok, "raw %q", tt.raw)
		require.Equal(t, tt.want, got, "raw %q", tt.raw)
	}
}
