package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"ShutdownScanner/internal/domain"
)

var pipelineNow = time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	byService []domain.ShutDownByServiceInfo
	calls     int
}

func (s *stubSource) ForAddress(context.Context, domain.City, string, domain.Service) []domain.ShutDownInfo {
	return nil
}

func (s *stubSource) ForAddresses(context.Context, domain.City, []string) []domain.ShutDownByServiceInfo {
	s.calls++
	return s.byService
}

type stubRepository struct {
	stored []domain.UserAddress
}

func (r *stubRepository) UpsertUser(context.Context, int64, string) error { return nil }

func (r *stubRepository) AddAddress(_ context.Context, chatID int64, city domain.City, raw string) (domain.UserAddress, error) {
	addr := domain.UserAddress{ID: uuid.New(), ChatID: chatID, City: city, Raw: raw}
	r.stored = append(r.stored, addr)
	return addr, nil
}

func (r *stubRepository) Addresses(context.Context, int64) ([]domain.UserAddress, error) {
	return r.stored, nil
}

func (r *stubRepository) AllAddresses(context.Context) ([]domain.UserAddress, error) {
	return r.stored, nil
}

func (r *stubRepository) RemoveAddress(context.Context, int64, uuid.UUID) error { return nil }

type memLog struct {
	seen map[string]bool
}

func (l *memLog) AlreadyNotified(_ context.Context, _ int64, keys []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, key := range keys {
		if l.seen[key] {
			out[key] = true
		}
	}
	return out, nil
}

func (l *memLog) MarkNotified(_ context.Context, _ int64, key string) error {
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	l.seen[key] = true
	return nil
}

type stubNotifier struct {
	messages []string
	chats    []int64
}

func (n *stubNotifier) Notify(_ context.Context, chatID int64, text string) error {
	n.chats = append(n.chats, chatID)
	n.messages = append(n.messages, text)
	return nil
}

func upcoming(raw string) domain.ShutDownInfo {
	return domain.ShutDownInfo{
		Range: domain.DateRange{
			Start:      pipelineNow.Add(24 * time.Hour),
			End:        pipelineNow.Add(32 * time.Hour),
			StartBound: domain.BoundDateTime,
			EndBound:   domain.BoundDateTime,
		},
		RawAddress: raw,
		City:       domain.CitySPB,
	}
}

func expired(raw string) domain.ShutDownInfo {
	info := upcoming(raw)
	info.Range.Start = pipelineNow.Add(-48 * time.Hour)
	info.Range.End = pipelineNow.Add(-40 * time.Hour)
	return info
}

func newTestPipeline(source *stubSource, log *memLog, notifier *stubNotifier, debug bool) *Pipeline {
	repo := &stubRepository{stored: []domain.UserAddress{
		{ID: uuid.New(), ChatID: 42, City: domain.CitySPB, Raw: "ул. Садовая, д.25"},
	}}
	return NewPipeline(PipelineDeps{
		Source:     source,
		Repository: repo,
		Log:        log,
		Notifier:   notifier,
		Clock:      clockwork.NewFakeClockAt(pipelineNow),
		Debug:      debug,
	})
}

func TestPipelineNotifiesOnceAndDeduplicates(t *testing.T) {
	t.Parallel()

	source := &stubSource{byService: []domain.ShutDownByServiceInfo{{
		Service: domain.ServiceElectricity,
		Shutdowns: []domain.ShutDownInfo{
			upcoming("ул. Садовая, д.25"),
			expired("ул. Садовая, д.20"),
			{RawAddress: "ул. Садовая, д.25", City: domain.CitySPB, Err: "status 503"},
		},
	}}}
	log := &memLog{}
	notifier := &stubNotifier{}
	p := newTestPipeline(source, log, notifier, false)

	ctx := context.Background()
	require.NoError(t, p.ProcessAll(ctx))

	require.Equal(t, []int64{42}, notifier.chats)
	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "ул. Садовая, д.25")
	require.NotContains(t, notifier.messages[0], "д.20", "expired windows must be dropped")
	require.NotContains(t, notifier.messages[0], "unable to get", "error records must not be pushed")
	require.Len(t, log.seen, 1)

	// A second round delivers nothing new.
	require.NoError(t, p.ProcessAll(ctx))
	require.Len(t, notifier.messages, 1)
	require.Equal(t, 2, source.calls)
}

func TestPipelineDebugKeepsUndated(t *testing.T) {
	t.Parallel()

	undated := domain.ShutDownInfo{RawAddress: "ул. Садовая, д.25", City: domain.CitySPB}
	source := &stubSource{byService: []domain.ShutDownByServiceInfo{{
		Service:   domain.ServiceElectricity,
		Shutdowns: []domain.ShutDownInfo{undated},
	}}}
	log := &memLog{}
	notifier := &stubNotifier{}

	p := newTestPipeline(source, log, notifier, true)
	require.NoError(t, p.ProcessAll(context.Background()))
	require.Len(t, notifier.messages, 1)

	// Without debug the same record is not upcoming.
	notifier2 := &stubNotifier{}
	p2 := newTestPipeline(source, &memLog{}, notifier2, false)
	require.NoError(t, p2.ProcessAll(context.Background()))
	require.Empty(t, notifier2.messages)
}

func TestPipelineEmptyRepository(t *testing.T) {
	t.Parallel()

	source := &stubSource{}
	p := NewPipeline(PipelineDeps{
		Source:     source,
		Repository: &stubRepository{},
		Log:        &memLog{},
		Notifier:   &stubNotifier{},
		Clock:      clockwork.NewFakeClockAt(pipelineNow),
	})

	require.NoError(t, p.ProcessAll(context.Background()))
	require.Zero(t, source.calls)
}

func TestGroupByChat(t *testing.T) {
	t.Parallel()

	stored := []domain.UserAddress{
		{ChatID: 2, City: domain.CitySPB, Raw: "а"},
		{ChatID: 1, City: domain.CitySPB, Raw: "б"},
		{ChatID: 2, City: domain.CitySPB, Raw: "в"},
		{ChatID: 2, City: domain.CityRND, Raw: "г"},
	}

	batches := groupByChat(stored)
	require.Len(t, batches, 3)
	require.Equal(t, int64(1), batches[0].chatID)
	require.Equal(t, []string{"б"}, batches[0].addresses)
	require.Equal(t, []string{"г"}, batches[1].addresses)
	require.Equal(t, []string{"а", "в"}, batches[2].addresses)
}
