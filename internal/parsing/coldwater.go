package parsing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"golang.org/x/net/html"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/domain"
)

// ColdWaterParser reads the water utility's press-release page. The markup has
// no table: each record is a block whose bold labels ("Начало", "Окончание",
// "Адрес") are followed by plain sibling text, and the address text does not
// cleanly separate the street from surrounding description, so matching
// against the user's street is substring-based.
type ColdWaterParser struct {
	base
}

type coldWaterRecord struct {
	street      string
	periodStart string
	periodEnd   string
}

// NewColdWaterParser wires the shared scraping dependencies.
func NewColdWaterParser(cfg Config, fetcher Fetcher, addr *address.Parser, clock clockwork.Clock, logger *slog.Logger) *ColdWaterParser {
	return &ColdWaterParser{base: newBase(cfg, fetcher, addr, clock, logger)}
}

// Service identifies the parser inside the registry.
func (p *ColdWaterParser) Service() domain.Service {
	return domain.ServiceColdWater
}

// Parse fetches the press-release page and returns records mentioning the
// user's street.
func (p *ColdWaterParser) Parse(ctx context.Context, user domain.Address) (map[domain.Address]domain.DateRangeSet, error) {
	return p.run(ctx, p.Service(), user, func(doc *goquery.Document) map[domain.Address]domain.DateRangeSet {
		return p.extract(doc, user)
	})
}

func (p *ColdWaterParser) extract(doc *goquery.Document, user domain.Address) map[domain.Address]domain.DateRangeSet {
	result := map[domain.Address]domain.DateRangeSet{}

	rows := doc.Find("div.listplan-item")
	if rows.Length() == 0 {
		p.logger.Info("no rows found", "service", p.Service())
		return result
	}

	userStreet := strings.ToLower(user.StreetName)
	rows.Each(func(_ int, row *goquery.Selection) {
		rec, ok := p.extractInfoTags(row)
		if !ok {
			p.logger.Debug("unparsable row", "service", p.Service(),
				"text", clearString(row.Text()))
			return
		}
		if rec.street == "" {
			p.logger.Debug("row without street", "service", p.Service())
			return
		}

		start, startBound := p.prepareDate(rec.periodStart)
		end, endBound := p.prepareDate(rec.periodEnd)

		if !strings.Contains(strings.ToLower(rec.street), userStreet) {
			return
		}
		// The page text carries no parseable house, so the key reuses the
		// user's own street structure and keeps the page text as raw.
		key := domain.Address{
			City:         user.City,
			StreetName:   user.StreetName,
			StreetPrefix: user.StreetPrefix,
			House:        user.House,
			Raw:          rec.street,
		}
		addRange(result, key, domain.DateRange{Start: start, End: end, StartBound: startBound, EndBound: endBound})
	})

	if len(result) == 0 {
		p.logger.Info("no records for address", "service", p.Service(), "address", user.Raw)
	}
	return result
}

// extractInfoTags scans the bold labels of one record block. All three labels
// must be present for the record to count.
func (p *ColdWaterParser) extractInfoTags(row *goquery.Selection) (coldWaterRecord, bool) {
	var rec coldWaterRecord

	tags := row.Find("div strong")
	if tags.Length() == 0 {
		return rec, false
	}

	tags.EachWithBreak(func(_ int, tag *goquery.Selection) bool {
		label := strings.ToLower(tag.Text())
		switch {
		case strings.Contains(label, "начало"):
			rec.periodStart = tailText(tag)
		case strings.Contains(label, "окончание"):
			rec.periodEnd = tailText(tag)
		case strings.Contains(label, "адрес"):
			rec.street = tailText(tag)
		}
		return rec.periodStart == "" || rec.periodEnd == "" || rec.street == ""
	})

	if rec.periodStart == "" || rec.periodEnd == "" || rec.street == "" {
		return coldWaterRecord{}, false
	}
	return rec, true
}

// prepareDate handles both forms seen on the page: "2 июля 2024 10:30" and
// the date-only "2 июля 2024" with a localized month name.
func (p *ColdWaterParser) prepareDate(raw string) (time.Time, domain.Bound) {
	if strings.TrimSpace(raw) == "" {
		p.logger.Warn("missing date", "service", p.Service())
		return time.Time{}, domain.BoundNone
	}
	t, withTime, err := parseRussianDate(raw)
	if err != nil {
		p.logger.Error("unable to get date", "service", p.Service(), "raw", raw, "error", err)
		return time.Time{}, domain.BoundNone
	}
	if withTime {
		return t, domain.BoundDateTime
	}
	return t, domain.BoundDate
}

// tailText returns the trimmed text node immediately following the tag, i.e.
// the value printed after a bold label.
func tailText(tag *goquery.Selection) string {
	if tag.Length() == 0 {
		return ""
	}
	for n := tag.Get(0).NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				return text
			}
			continue
		}
		break
	}
	return ""
}
