package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/config"
	"ShutdownScanner/internal/domain"
	"ShutdownScanner/internal/infrastructure/fetch"
	"ShutdownScanner/internal/logging"
	"ShutdownScanner/internal/parsing"
	"ShutdownScanner/internal/provider"
	"ShutdownScanner/internal/usecase"
)

// checkaddress runs the scraping stack for a single address from the command
// line, without the bot or the database. Handy for checking new URL templates.
func main() {
	var (
		cityFlag    = flag.String("city", "", "city code, defaults to the configured one")
		addressFlag = flag.String("address", "", "address to check, e.g. 'ул. Садовая, д.25'")
		serviceFlag = flag.String("service", "", "check a single service: electricity, hot_water or cold_water")
	)
	flag.Parse()

	if *addressFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: checkaddress -address 'ул. Садовая, д.25' [-city spb] [-service electricity]")
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	city := cfg.Parsing.City()
	if *cityFlag != "" {
		city = domain.City(*cityFlag)
	}

	clock := clockwork.NewRealClock()
	addrParser := address.NewParser(cfg.Parsing.PrefixOverrides)
	fetcher := fetch.NewClient(cfg.Parsing.CacheDir, !cfg.Parsing.SkipSSLVerify, clock, logger.With("component", "fetch"))

	parseCfg := parsing.Config{
		URLs:       cfg.Parsing.URLTable(),
		DaysBefore: cfg.Parsing.DaysBefore,
		DaysAfter:  cfg.Parsing.DaysAfter,
	}

	registry := parsing.NewRegistry()
	registry.Register(parsing.NewElectricityParser(parseCfg, fetcher, addrParser, clock, logger.With("component", "parser.electricity")))
	registry.Register(parsing.NewHotWaterParser(parseCfg, fetcher, addrParser, clock, logger.With("component", "parser.hotwater")))
	registry.Register(parsing.NewColdWaterParser(parseCfg, fetcher, addrParser, clock, logger.With("component", "parser.coldwater")))

	source := provider.New(registry, addrParser, logger.With("component", "provider"))
	ctx := context.Background()

	if *serviceFlag != "" {
		service, ok := domain.ParseService(*serviceFlag)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown service %q; use electricity, hot_water or cold_water\n", *serviceFlag)
			os.Exit(2)
		}
		shutdowns := source.ForAddress(ctx, city, *addressFlag, service)
		if len(shutdowns) == 0 {
			fmt.Println("nothing found")
			return
		}
		for _, info := range shutdowns {
			fmt.Println(info.String())
		}
		return
	}

	byService := source.ForAddresses(ctx, city, []string{*addressFlag})
	fmt.Println(usecase.FormatReport(byService))
}
