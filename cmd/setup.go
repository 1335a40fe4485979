package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/config"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/coordinator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/delivery"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/export"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/logging"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/metrics"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/progression"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
)

// runtime is everything a command needs to talk to the service.
type runtime struct {
	cfg      config.Config
	logger   *zap.Logger
	service  evaluator.Service
	progress *progression.State
	timeline *timeline.Timeline
	coord    *coordinator.Coordinator
	exporter *export.Pipeline
	closers  []func() error
}

// Close releases the metrics server, cache connection and logger.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadConfig resolves the configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("service-url") {
		cfg.Service.URL, _ = flags.GetString("service-url")
	}
	if flags.Changed("mode") {
		cfg.Service.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup builds the core from configuration: logger, service client with
// its cache and logging decorators, metrics, and the core components.
// tweaks adjust the coordinator options before it is created.
func setup(cmd *cobra.Command, tweaks ...func(*coordinator.Options)) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	logger, err := logging.New(logging.Config{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	rt.logger = logger
	rt.closers = append(rt.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	if err := rt.build(cmd.Context(), tweaks); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) build(ctx context.Context, tweaks []func(*coordinator.Options)) error {
	cfg := rt.cfg

	cat, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("build level catalog: %w", err)
	}

	mode, err := evaluator.ParseMode(cfg.Service.Mode)
	if err != nil {
		return err
	}
	client := evaluator.NewClient(
		evaluator.WithBaseURL(cfg.Service.URL),
		evaluator.WithMode(mode),
		evaluator.WithTimeout(cfg.Service.Timeout),
	)
	svc := evaluator.WithRetry(client, evaluator.DefaultRetryConfig())

	cache, err := rt.openCache(ctx)
	if err != nil {
		return err
	}
	if cache != nil {
		svc = evaluator.WithCache(svc, cache, cfg.Cache.TTL, rt.logger)
	}
	rt.service = evaluator.WithLogging(svc, rt.logger)

	rec := metrics.Nop()
	if cfg.Metrics.Addr != "" {
		prom := metrics.NewPrometheusRecorder()
		srv, err := metrics.Start(cfg.Metrics.Addr, prom.Registry(), rt.logger)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		rt.closers = append(rt.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
		rec = prom
	}

	rt.progress = progression.New(cat)
	rt.timeline = timeline.New()

	opts := coordinator.DefaultOptions()
	opts.StatusSignals = cfg.Features.StatusSignals
	opts.StatusHold = cfg.Features.StatusHold
	opts.Logger = rt.logger
	opts.Metrics = rec
	for _, tweak := range tweaks {
		tweak(&opts)
	}
	rt.coord = coordinator.New(rt.progress, rt.timeline, rt.service, opts)

	if cfg.Features.Export {
		rt.exporter = export.New(rt.service, delivery.NewFileDeliverer(cfg.Export.Dir), export.Options{
			Filename: cfg.Export.Filename,
			Logger:   rt.logger,
			Metrics:  rec,
		})
	}

	rt.logger.Info("client ready",
		zap.String("service_url", cfg.Service.URL),
		zap.String("mode", string(mode)),
		zap.String("cache", cfg.Cache.Backend),
		zap.Bool("export", cfg.Features.Export),
		zap.Int("levels", cat.Len()))
	return nil
}

// openCache returns the configured answer cache, or nil when caching is off.
func (rt *runtime) openCache(ctx context.Context) (evaluator.Cache, error) {
	c := rt.cfg.Cache
	switch c.Backend {
	case config.CacheMemory:
		return evaluator.NewMemoryCache(), nil
	case config.CacheRedis:
		rc, err := evaluator.NewRedisCache(ctx, &goredis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("open answer cache: %w", err)
		}
		rt.closers = append(rt.closers, rc.Close)
		return rc, nil
	default:
		return nil, nil
	}
}
