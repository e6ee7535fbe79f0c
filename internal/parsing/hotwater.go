package parsing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/domain"
)

const hotWaterDateFormat = "02.01.2006"

// HotWaterParser reads the seasonal hot-water disconnection schedule: a table
// where each row carries district, street, a single house, optional building
// letters and two candidate maintenance periods in date-only form.
type HotWaterParser struct {
	base
}

// NewHotWaterParser wires the shared scraping dependencies.
func NewHotWaterParser(cfg Config, fetcher Fetcher, addr *address.Parser, clock clockwork.Clock, logger *slog.Logger) *HotWaterParser {
	return &HotWaterParser{base: newBase(cfg, fetcher, addr, clock, logger)}
}

// Service identifies the parser inside the registry.
func (p *HotWaterParser) Service() domain.Service {
	return domain.ServiceHotWater
}

// Parse fetches the disconnection schedule and returns announced addresses
// that match the user's address.
func (p *HotWaterParser) Parse(ctx context.Context, user domain.Address) (map[domain.Address]domain.DateRangeSet, error) {
	return p.run(ctx, p.Service(), user, func(doc *goquery.Document) map[domain.Address]domain.DateRangeSet {
		return p.extract(doc, user.City)
	})
}

func (p *HotWaterParser) extract(doc *goquery.Document, city domain.City) map[domain.Address]domain.DateRangeSet {
	result := map[domain.Address]domain.DateRangeSet{}

	rows := doc.Find("table.graph tbody tr")
	if rows.Length() == 0 {
		p.logger.Info("no rows found", "service", p.Service())
		return result
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			p.logger.Info("row without cells", "service", p.Service())
			return
		}

		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, cell.Text())
		})

		// Expected shape: index, district, street, house, optional letter
		// cells, period one, period two.
		if len(texts) < 6 {
			p.logger.Warn("unparsable row", "service", p.Service(), "cells", len(texts))
			return
		}
		district := clearString(texts[1])
		street := clearString(texts[2])
		house, err := strconv.Atoi(strings.TrimSpace(texts[3]))
		if err != nil {
			p.logger.Warn("unparsable house", "service", p.Service(), "raw", texts[3])
			return
		}
		letters := clearString(strings.Join(texts[4:len(texts)-2], ""))
		periods := [2]string{texts[len(texts)-2], texts[len(texts)-1]}

		rawAddress := strings.TrimSpace(fmt.Sprintf("%s, %d %s", street, house, letters))
		p.logger.Debug("row parsed", "service", p.Service(), "district", district,
			"street", street, "house", house, "letters", letters)

		parsed := p.addr.Parse(street)
		key := domain.Address{
			City:         city,
			StreetName:   parsed.StreetName,
			StreetPrefix: parsed.StreetPrefix,
			House:        house,
			Raw:          rawAddress,
		}
		for _, period := range periods {
			addRange(result, key, p.prepareDates(period))
		}
	})

	return result
}

// prepareDates parses one "start - end" period of date-only bounds. The start
// counts from midnight and the end runs to the end of its day, since the page
// gives no times.
func (p *HotWaterParser) prepareDates(period string) domain.DateRange {
	var window domain.DateRange

	parts := strings.SplitN(period, " - ", 2)
	if len(parts) != 2 {
		p.logger.Warn("unparsable period", "service", p.Service(), "raw", period)
		return window
	}

	if day, err := time.Parse(hotWaterDateFormat, strings.TrimSpace(parts[0])); err == nil {
		window.Start = day
		window.StartBound = domain.BoundDateTime
	} else {
		p.logger.Warn("incorrect date", "service", p.Service(), "raw", parts[0])
	}
	if day, err := time.Parse(hotWaterDateFormat, strings.TrimSpace(parts[1])); err == nil {
		window.End = day.Add(24*time.Hour - time.Second)
		window.EndBound = domain.BoundDateTime
	} else {
		p.logger.Warn("incorrect date", "service", p.Service(), "raw", parts[1])
	}
	return window
}
