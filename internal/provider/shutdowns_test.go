package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/domain"
	"ShutdownScanner/internal/parsing"
)

// stubParser serves canned results per raw address and counts calls.
type stubParser struct {
	service domain.Service
	results map[string]map[domain.Address]domain.DateRangeSet
	err     error
	calls   int
}

func (s *stubParser) Service() domain.Service { return s.service }

func (s *stubParser) Parse(_ context.Context, user domain.Address) (map[domain.Address]domain.DateRangeSet, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results[user.Raw], nil
}

func newProvider(parsers ...parsing.Parser) *ShutDownProvider {
	registry := parsing.NewRegistry()
	for _, p := range parsers {
		registry.Register(p)
	}
	return New(registry, address.NewParser(nil), nil)
}

func rangeSet(ranges ...domain.DateRange) domain.DateRangeSet {
	set := domain.DateRangeSet{}
	for _, r := range ranges {
		set.Add(r)
	}
	return set
}

func datedRange(day int) domain.DateRange {
	return domain.DateRange{
		Start:      time.Date(2024, time.July, day, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2024, time.July, day, 18, 0, 0, 0, time.UTC),
		StartBound: domain.BoundDateTime,
		EndBound:   domain.BoundDateTime,
	}
}

func TestForAddress(t *testing.T) {
	t.Parallel()

	key := domain.Address{City: domain.CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 25, Raw: "ул. Садовая, д.25"}
	p := newProvider(&stubParser{
		service: domain.ServiceElectricity,
		results: map[string]map[domain.Address]domain.DateRangeSet{
			"ул. Садовая, д.25": {key: rangeSet(datedRange(2))},
		},
	})

	got := p.ForAddress(context.Background(), domain.CitySPB, "ул. Садовая, д.25", domain.ServiceElectricity)
	require.Equal(t, []domain.ShutDownInfo{{
		Range:      datedRange(2),
		RawAddress: "ул. Садовая, д.25",
		City:       domain.CitySPB,
	}}, got)
}

func TestForAddressParserError(t *testing.T) {
	t.Parallel()

	p := newProvider(&stubParser{service: domain.ServiceElectricity, err: errors.New("status 503")})

	got := p.ForAddress(context.Background(), domain.CitySPB, "ул. Садовая, д.25", domain.ServiceElectricity)
	require.Len(t, got, 1)
	require.Equal(t, "status 503", got[0].Err)
	require.Equal(t, "ул. Садовая, д.25", got[0].RawAddress)
	require.Equal(t, domain.BoundNone, got[0].Range.StartBound)
	require.Equal(t, domain.BoundNone, got[0].Range.EndBound)
}

func TestForAddressNotConfigured(t *testing.T) {
	t.Parallel()

	p := newProvider(&stubParser{service: domain.ServiceElectricity, err: parsing.ErrNotConfigured})

	got := p.ForAddress(context.Background(), domain.CitySPB, "ул. Садовая, д.25", domain.ServiceElectricity)
	require.Empty(t, got, "skip condition must not produce an error record")
}

func TestForAddressNormalizedServiceName(t *testing.T) {
	t.Parallel()

	p := newProvider(&stubParser{service: domain.ServiceElectricity})

	// The lowercase command-line spelling must reach the registry as the
	// uppercase identifier, not as an unknown service.
	service, ok := domain.ParseService("electricity")
	require.True(t, ok)

	got := p.ForAddress(context.Background(), domain.CitySPB, "ул. Садовая, д.25", service)
	require.Empty(t, got, "a registered service with no announcements must not yield an error record")
}

func TestForAddressUnknownService(t *testing.T) {
	t.Parallel()

	p := newProvider()
	got := p.ForAddress(context.Background(), domain.CitySPB, "ул. Садовая, д.25", domain.ServiceHotWater)
	require.Len(t, got, 1)
	require.NotEmpty(t, got[0].Err)
}

func TestForAddressesGroupsAndSorts(t *testing.T) {
	t.Parallel()

	late := domain.Address{City: domain.CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 25, Raw: "поздний"}
	early := domain.Address{City: domain.CitySPB, StreetName: "Тихая", StreetPrefix: "ул", House: 1, Raw: "ранний"}
	undated := domain.Address{City: domain.CitySPB, StreetName: "Тихая", StreetPrefix: "ул", House: 1, Raw: "без дат"}

	electricity := &stubParser{
		service: domain.ServiceElectricity,
		results: map[string]map[domain.Address]domain.DateRangeSet{
			"ул. Садовая, д.25": {late: rangeSet(datedRange(20))},
			"ул. Тихая, д.1": {
				early:   rangeSet(datedRange(2)),
				undated: rangeSet(domain.DateRange{}),
			},
		},
	}
	hot := &stubParser{service: domain.ServiceHotWater}

	p := newProvider(electricity, hot)
	got := p.ForAddresses(context.Background(), domain.CitySPB,
		[]string{"ул. Садовая, д.25", "ул. Тихая, д.1"})

	// The hot-water group is empty and must be dropped entirely.
	require.Len(t, got, 1)
	require.Equal(t, domain.ServiceElectricity, got[0].Service)

	raws := make([]string, 0, len(got[0].Shutdowns))
	for _, info := range got[0].Shutdowns {
		raws = append(raws, info.RawAddress)
	}
	require.Equal(t, []string{"без дат", "ранний", "поздний"}, raws)
}

func TestForAddressesShortCircuitsFailingService(t *testing.T) {
	t.Parallel()

	failing := &stubParser{service: domain.ServiceElectricity, err: errors.New("status 503")}
	p := newProvider(failing)

	got := p.ForAddresses(context.Background(), domain.CitySPB,
		[]string{"ул. Садовая, д.25", "ул. Тихая, д.1", "ул. Дальняя, д.3"})

	require.Len(t, got, 1)
	require.Len(t, got[0].Shutdowns, 1, "remaining addresses must be skipped")
	require.Equal(t, 1, failing.calls, "a failing upstream must not be re-fetched within one batch")
}
