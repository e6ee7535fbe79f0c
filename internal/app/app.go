package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"

	"ShutdownScanner/internal/address"
	"ShutdownScanner/internal/config"
	"ShutdownScanner/internal/infrastructure/fetch"
	"ShutdownScanner/internal/infrastructure/scheduler"
	"ShutdownScanner/internal/infrastructure/storage"
	"ShutdownScanner/internal/infrastructure/telegram"
	"ShutdownScanner/internal/logging"
	"ShutdownScanner/internal/metrics"
	"ShutdownScanner/internal/parsing"
	"ShutdownScanner/internal/ports"
	"ShutdownScanner/internal/provider"
	"ShutdownScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	bot      *telegram.Bot
	pipeline *usecase.Pipeline
	driver   ports.Scheduler
}

// New builds the full dependency graph: parsers, providers, storage, the bot
// and the notification pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	clock := clockwork.NewRealClock()
	addrParser := address.NewParser(cfg.Parsing.PrefixOverrides)
	fetcher := fetch.NewClient(cfg.Parsing.CacheDir, !cfg.Parsing.SkipSSLVerify, clock, baseLogger.With("component", "fetch"))

	parseCfg := parsing.Config{
		URLs:       cfg.Parsing.URLTable(),
		DaysBefore: cfg.Parsing.DaysBefore,
		DaysAfter:  cfg.Parsing.DaysAfter,
	}

	registry := parsing.NewRegistry()
	registry.Register(parsing.NewElectricityParser(parseCfg, fetcher, addrParser, clock, baseLogger.With("component", "parser.electricity")))
	registry.Register(parsing.NewHotWaterParser(parseCfg, fetcher, addrParser, clock, baseLogger.With("component", "parser.hotwater")))
	registry.Register(parsing.NewColdWaterParser(parseCfg, fetcher, addrParser, clock, baseLogger.With("component", "parser.coldwater")))

	source := provider.New(registry, addrParser, baseLogger.With("component", "provider"))

	pool, err := pgxpool.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	repo := storage.NewPostgresRepository(pool)

	bot, err := telegram.NewBot(cfg.Telegram.BotToken, repo, source, cfg.Parsing.City(), baseLogger.With("component", "telegram"))
	if err != nil {
		pool.Close()
		return nil, err
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repo,
		Log:        repo,
		Notifier:   bot,
		Clock:      clock,
		Debug:      cfg.Parsing.DebugShutdowns,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pool:     pool,
		bot:      bot,
		pipeline: pipeline,
		driver:   scheduler.NewIntervalScheduler(cfg.Scheduler.Every()),
	}, nil
}

// Run starts the bot, the notification scheduler and the metrics listener and
// blocks until the context is canceled or one of them fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.pool.Close()

	job := func(time.Time) {
		if err := a.pipeline.ProcessAll(ctx); err != nil {
			a.logger.Warn("notification round failed", "error", err)
		}
	}
	if err := a.driver.Start(ctx, job); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		if err := a.driver.Stop(context.Background()); err != nil {
			a.logger.Warn("scheduler stop failed", "error", err)
		}
	}()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.bot.Run(ctx); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("telegram bot: %w", err)
		}
	}()

	if a.cfg.Metrics.Addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(a.cfg.Metrics.Addr, a.logger.With("component", "metrics")); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("metrics listener: %w", err)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
