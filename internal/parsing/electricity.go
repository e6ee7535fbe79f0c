package parsing

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/domain"
)

const electricityTimeFormat = "02-01-2006T15:04"

// ElectricityParser reads the planned-work table of the grid operator. Each
// row lists one or more street mentions sharing a single maintenance window
// with full date+time bounds.
type ElectricityParser struct {
	base
}

// NewElectricityParser wires the shared scraping dependencies.
func NewElectricityParser(cfg Config, fetcher Fetcher, addr *address.Parser, clock clockwork.Clock, logger *slog.Logger) *ElectricityParser {
	return &ElectricityParser{base: newBase(cfg, fetcher, addr, clock, logger)}
}

// Service identifies the parser inside the registry.
func (p *ElectricityParser) Service() domain.Service {
	return domain.ServiceElectricity
}

// Parse fetches the planned-work page and returns announced addresses that
// match the user's address.
func (p *ElectricityParser) Parse(ctx context.Context, user domain.Address) (map[domain.Address]domain.DateRangeSet, error) {
	return p.run(ctx, p.Service(), user, func(doc *goquery.Document) map[domain.Address]domain.DateRangeSet {
		return p.extract(doc, user.City)
	})
}

func (p *ElectricityParser) extract(doc *goquery.Document, city domain.City) map[domain.Address]domain.DateRangeSet {
	result := map[domain.Address]domain.DateRangeSet{}

	rows := doc.Find("table tbody tr")
	if rows.Length() == 0 {
		p.logger.Info("no rows found", "service", p.Service())
		return result
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		streetCell := row.Find("td.rowStreets").First()
		if streetCell.Length() == 0 {
			p.logger.Debug("row without street cell", "service", p.Service())
			return
		}

		cells := row.Find("td")
		if cells.Length() < 7 {
			p.logger.Warn("row with unexpected cell count", "service", p.Service(), "cells", cells.Length())
			return
		}
		// Columns 3..6 carry start date, start time, end date, end time.
		start, startBound := p.prepareTime(clearString(cells.Eq(3).Text()), clearString(cells.Eq(4).Text()))
		end, endBound := p.prepareTime(clearString(cells.Eq(5).Text()), clearString(cells.Eq(6).Text()))
		window := domain.DateRange{Start: start, End: end, StartBound: startBound, EndBound: endBound}

		for _, mention := range streetMentions(streetCell) {
			parsed := p.addr.Parse(clearString(mention))
			if len(parsed.Houses) == 0 {
				p.logger.Warn("no houses in street mention", "service", p.Service(), "raw", mention)
				continue
			}
			for _, house := range parsed.Houses {
				key := domain.Address{
					City:         city,
					StreetName:   parsed.StreetName,
					StreetPrefix: parsed.StreetPrefix,
					House:        house,
					Raw:          clearString(mention),
				}
				addRange(result, key, window)
			}
		}
	})

	return result
}

func (p *ElectricityParser) prepareTime(date, clock string) (time.Time, domain.Bound) {
	if date == "" || clock == "" {
		p.logger.Warn("missing date or time", "date", date, "time", clock)
		return time.Time{}, domain.BoundNone
	}
	t, err := time.Parse(electricityTimeFormat, date+"T"+clock)
	if err != nil {
		p.logger.Warn("incorrect date or time", "date", date, "time", clock)
		return time.Time{}, domain.BoundNone
	}
	return t, domain.BoundDateTime
}

// streetMentions returns the independent street fragments of one table cell.
// The cell usually holds one span per street, but a single span may still
// join several streets with commas.
func streetMentions(cell *goquery.Selection) []string {
	var texts []string
	cell.Find("span").Each(func(_ int, span *goquery.Selection) {
		texts = append(texts, span.Text())
	})
	if len(texts) == 0 {
		texts = []string{cell.Text()}
	}

	var mentions []string
	for _, text := range texts {
		mentions = append(mentions, splitStreets(text)...)
	}
	return mentions
}

// splitStreets splits a comma-joined multi-street string into independent
// fragments, re-attaching pieces that only continue the previous street
// (house tokens such as "д.5" or bare numbers).
func splitStreets(raw string) []string {
	var fragments []string
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if len(fragments) > 0 && continuesStreet(piece) {
			fragments[len(fragments)-1] += ", " + piece
			continue
		}
		fragments = append(fragments, piece)
	}
	return fragments
}

func continuesStreet(piece string) bool {
	if strings.HasPrefix(piece, "д.") || strings.HasPrefix(piece, "д ") ||
		strings.HasPrefix(piece, "дом") || strings.HasPrefix(piece, "корп.") {
		return true
	}
	r := []rune(piece)
	return len(r) > 0 && unicode.IsDigit(r[0])
}
