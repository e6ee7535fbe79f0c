package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"

	"ShutdownScanner/internal/domain"
	"ShutdownScanner/internal/metrics"
	"ShutdownScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the notification pipeline.
type PipelineDeps struct {
	Source     ports.ShutdownSource
	Repository ports.SubscriptionRepository
	Log        ports.NotificationLog
	Notifier   ports.Notifier
	Clock      clockwork.Clock
	// Debug makes every interval count as upcoming; see the date-range
	// comparison semantics.
	Debug  bool
	Logger *slog.Logger
}

// Pipeline checks every stored address against every service and pushes fresh
// shutdown records to their chats, deduplicating on notification keys.
type Pipeline struct {
	source     ports.ShutdownSource
	repository ports.SubscriptionRepository
	log        ports.NotificationLog
	notifier   ports.Notifier
	clock      clockwork.Clock
	debug      bool
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		log:        deps.Log,
		notifier:   deps.Notifier,
		clock:      clock,
		debug:      deps.Debug,
		logger:     logger,
	}
}

// ProcessAll runs one notification round across all stored addresses.
func (p *Pipeline) ProcessAll(ctx context.Context) error {
	if p.source == nil || p.repository == nil {
		return nil
	}

	stored, err := p.repository.AllAddresses(ctx)
	if err != nil {
		return fmt.Errorf("load addresses: %w", err)
	}
	if len(stored) == 0 {
		return nil
	}

	for _, batch := range groupByChat(stored) {
		if err := p.processChat(ctx, batch); err != nil {
			p.logger.Warn("chat processing failed", "chat_id", batch.chatID, "error", err)
		}
	}
	return nil
}

type chatBatch struct {
	chatID    int64
	city      domain.City
	addresses []string
}

// groupByChat splits stored addresses into per-chat, per-city batches with a
// deterministic order.
func groupByChat(stored []domain.UserAddress) []chatBatch {
	type key struct {
		chatID int64
		city   domain.City
	}
	index := map[key]int{}
	var batches []chatBatch
	for _, addr := range stored {
		k := key{chatID: addr.ChatID, city: addr.City}
		i, ok := index[k]
		if !ok {
			i = len(batches)
			index[k] = i
			batches = append(batches, chatBatch{chatID: addr.ChatID, city: addr.City})
		}
		batches[i].addresses = append(batches[i].addresses, addr.Raw)
	}
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].chatID != batches[j].chatID {
			return batches[i].chatID < batches[j].chatID
		}
		return batches[i].city < batches[j].city
	})
	return batches
}

func (p *Pipeline) processChat(ctx context.Context, batch chatBatch) error {
	byService := p.source.ForAddresses(ctx, batch.city, batch.addresses)
	if len(byService) == 0 {
		return nil
	}

	fresh, keys, err := p.selectFresh(ctx, batch.chatID, byService)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, batch.chatID, FormatReport(fresh)); err != nil {
			metrics.NotificationCounter.WithLabelValues("failure").Inc()
			return fmt.Errorf("notify chat %d: %w", batch.chatID, err)
		}
		metrics.NotificationCounter.WithLabelValues("success").Inc()
	}

	if p.log != nil {
		for _, key := range keys {
			if err := p.log.MarkNotified(ctx, batch.chatID, key); err != nil {
				return fmt.Errorf("mark notified: %w", err)
			}
		}
	}
	return nil
}

// selectFresh drops error records, past windows and everything this chat was
// already notified about, returning the remaining groups plus their keys.
func (p *Pipeline) selectFresh(ctx context.Context, chatID int64, byService []domain.ShutDownByServiceInfo) ([]domain.ShutDownByServiceInfo, []string, error) {
	now := p.clock.Now()

	var candidateKeys []string
	for _, group := range byService {
		for _, info := range group.Shutdowns {
			if info.Err != "" || !info.Range.EndsAfter(now, p.debug) {
				continue
			}
			candidateKeys = append(candidateKeys, domain.NotificationKey(group.Service, info))
		}
	}
	if len(candidateKeys) == 0 {
		return nil, nil, nil
	}

	seen := map[string]bool{}
	var err error
	if p.log != nil {
		seen, err = p.log.AlreadyNotified(ctx, chatID, candidateKeys)
		if err != nil {
			return nil, nil, fmt.Errorf("load notified: %w", err)
		}
	}

	var fresh []domain.ShutDownByServiceInfo
	var keys []string
	for _, group := range byService {
		var shutdowns []domain.ShutDownInfo
		for _, info := range group.Shutdowns {
			if info.Err != "" || !info.Range.EndsAfter(now, p.debug) {
				continue
			}
			key := domain.NotificationKey(group.Service, info)
			if seen[key] {
				continue
			}
			shutdowns = append(shutdowns, info)
			keys = append(keys, key)
		}
		if len(shutdowns) > 0 {
			fresh = append(fresh, domain.ShutDownByServiceInfo{Service: group.Service, Shutdowns: shutdowns})
		}
	}
	return fresh, keys, nil
}
