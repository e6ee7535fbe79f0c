package provider

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/domain"
	"ShutdownScanner/internal/metrics"
	"ShutdownScanner/internal/parsing"
)

// ShutDownProvider resolves service parsers through the registry and converts
// their output, and their failures, into plain data. Nothing below this layer
// surfaces an error to callers: a failing upstream becomes an error-carrying
// ShutDownInfo so rendering never needs exception handling.
type ShutDownProvider struct {
	registry *parsing.Registry
	addr     *address.Parser
	logger   *slog.Logger
}

// New wires the provider dependencies.
func New(registry *parsing.Registry, addr *address.Parser, logger *slog.Logger) *ShutDownProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShutDownProvider{registry: registry, addr: addr, logger: logger}
}

// ForAddress checks one service for one raw user address. A missing city
// configuration yields an empty result; any other failure yields exactly one
// record with Err set and absent bounds.
func (p *ShutDownProvider) ForAddress(ctx context.Context, city domain.City, rawAddress string, service domain.Service) []domain.ShutDownInfo {
	user := p.addr.AddressFor(city, rawAddress)

	parser, err := p.registry.Resolve(service)
	if err != nil {
		return []domain.ShutDownInfo{errorInfo(city, rawAddress, err)}
	}

	found, err := parser.Parse(ctx, user)
	if errors.Is(err, parsing.ErrNotConfigured) {
		p.logger.Info("service not configured, skipping", "city", city, "service", service)
		metrics.ParseCounter.WithLabelValues(string(service), "skipped").Inc()
		return nil
	}
	if err != nil {
		p.logger.Warn("parser failed", "city", city, "service", service, "address", rawAddress, "error", err)
		metrics.ParseCounter.WithLabelValues(string(service), "failure").Inc()
		return []domain.ShutDownInfo{errorInfo(city, rawAddress, err)}
	}
	metrics.ParseCounter.WithLabelValues(string(service), "success").Inc()

	var result []domain.ShutDownInfo
	for addr, ranges := range found {
		for _, r := range ranges.Sorted() {
			result = append(result, domain.ShutDownInfo{
				Range:      r,
				RawAddress: addr.Raw,
				City:       city,
			})
		}
	}
	return result
}

// ForAddresses checks every registered service against every address and
// groups non-empty results by service, each group sorted by start ascending
// with undated records first. When the first result for a service carries an
// error the remaining addresses are skipped for that service: the upstream is
// already failing and re-fetching it within one batch only hammers it.
func (p *ShutDownProvider) ForAddresses(ctx context.Context, city domain.City, addresses []string) []domain.ShutDownByServiceInfo {
	var out []domain.ShutDownByServiceInfo
	for _, service := range p.registry.Services() {
		var shutdowns []domain.ShutDownInfo
		for _, raw := range addresses {
			found := p.ForAddress(ctx, city, raw, service)
			shutdowns = append(shutdowns, found...)
			if len(found) > 0 && found[0].Err != "" {
				break
			}
		}
		if len(shutdowns) == 0 {
			continue
		}
		sortShutdowns(shutdowns)
		out = append(out, domain.ShutDownByServiceInfo{Service: service, Shutdowns: shutdowns})
	}
	return out
}

func sortShutdowns(shutdowns []domain.ShutDownInfo) {
	sort.SliceStable(shutdowns, func(i, j int) bool {
		undatedI := shutdowns[i].Range.StartBound == domain.BoundNone
		undatedJ := shutdowns[j].Range.StartBound == domain.BoundNone
		if undatedI != undatedJ {
			return undatedI
		}
		return shutdowns[i].Range.Start.Before(shutdowns[j].Range.Start)
	})
}

func errorInfo(city domain.City, rawAddress string, err error) domain.ShutDownInfo {
	return domain.ShutDownInfo{City: city, RawAddress: rawAddress, Err: err.Error()}
}
