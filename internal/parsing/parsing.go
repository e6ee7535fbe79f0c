package parsing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/domain"
)

// ErrNotConfigured signals that no announcement URL exists for the requested
// city/service pair. It is a skip condition, not a failure: the provider turns
// it into an empty result instead of an error record.
var ErrNotConfigured = errors.New("service is not configured for the city")

const dateFormat = "02.01.2006"

// Parser extracts maintenance windows announced for one utility service.
//
// Parse fetches the announcement page for the user's city and date window,
// extracts every announced address with its set of intervals, and returns only
// the entries that fuzzily match the user's address.
type Parser interface {
	Service() domain.Service
	Parse(ctx context.Context, user domain.Address) (map[domain.Address]domain.DateRangeSet, error)
}

// Fetcher supplies raw page content for a fully built URL. Implementations own
// transport concerns (TLS toggles, caching); parsers only see the text.
type Fetcher interface {
	Fetch(ctx context.Context, service domain.Service, pageURL string) (string, error)
}

// Config carries scraping settings shared by all service parsers.
type Config struct {
	// URLs maps city → service → URL template. Templates may reference
	// {city}, {street_name}, {street_prefix}, {house}, {date_start} and
	// {date_finish} placeholders.
	URLs map[domain.City]map[domain.Service]string
	// DaysBefore and DaysAfter bound the announcement window around now.
	DaysBefore int
	DaysAfter  int
}

// base implements the fetch/extract/filter skeleton shared by every parser.
type base struct {
	cfg     Config
	fetcher Fetcher
	addr    *address.Parser
	clock   clockwork.Clock
	logger  *slog.Logger
}

func newBase(cfg Config, fetcher Fetcher, addr *address.Parser, clock clockwork.Clock, logger *slog.Logger) base {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return base{cfg: cfg, fetcher: fetcher, addr: addr, clock: clock, logger: logger}
}

// run fetches the page for the user's city, hands the document to extract and
// filters the result down to addresses matching the user's.
func (b *base) run(
	ctx context.Context,
	service domain.Service,
	user domain.Address,
	extract func(doc *goquery.Document) map[domain.Address]domain.DateRangeSet,
) (map[domain.Address]domain.DateRangeSet, error) {
	content, err := b.content(ctx, service, user)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	parsed := extract(doc)
	b.logger.Debug("page extracted", "service", service, "addresses", len(parsed))

	found := map[domain.Address]domain.DateRangeSet{}
	for addr, ranges := range parsed {
		if addr.Matches(user) {
			found[addr] = ranges
		}
	}
	return found, nil
}

func (b *base) content(ctx context.Context, service domain.Service, user domain.Address) (string, error) {
	tmpl := b.cfg.URLs[user.City][service]
	if tmpl == "" {
		return "", fmt.Errorf("%s/%s: %w", user.City, service, ErrNotConfigured)
	}

	start, finish := b.window()
	pageURL := buildURL(tmpl, user, start, finish)
	b.logger.Debug("fetching page", "service", service, "url", pageURL)
	return b.fetcher.Fetch(ctx, service, pageURL)
}

// window returns the lookback/lookahead date bounds measured from now.
func (b *base) window() (time.Time, time.Time) {
	start := b.clock.Now().UTC().AddDate(0, 0, -b.cfg.DaysBefore)
	return start, start.AddDate(0, 0, b.cfg.DaysAfter)
}

func buildURL(tmpl string, user domain.Address, start, finish time.Time) string {
	house := ""
	if user.House != 0 {
		house = fmt.Sprint(user.House)
	}
	replacer := strings.NewReplacer(
		"{city}", url.QueryEscape(user.City.DisplayName()),
		"{street_name}", url.QueryEscape(user.StreetName),
		"{street_prefix}", url.QueryEscape(user.StreetPrefix),
		"{house}", house,
		"{date_start}", start.Format(dateFormat),
		"{date_finish}", finish.Format(dateFormat),
	)
	return replacer.Replace(tmpl)
}

// clearString flattens scraped cell text into a single trimmed line.
func clearString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", ""))
}

func addRange(m map[domain.Address]domain.DateRangeSet, key domain.Address, r domain.DateRange) {
	set, ok := m[key]
	if !ok {
		set = domain.DateRangeSet{}
		m[key] = set
	}
	set.Add(r)
}
