package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/linkstash/internal/bridge"
	"github.com/MrSnakeDoc/linkstash/internal/config"
	"github.com/MrSnakeDoc/linkstash/internal/fetcher"
	"github.com/MrSnakeDoc/linkstash/internal/httpserver"
	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkstash/internal/logger"
	"github.com/MrSnakeDoc/linkstash/internal/redis"
	"github.com/MrSnakeDoc/linkstash/internal/scheduler"
	"github.com/MrSnakeDoc/linkstash/internal/service"
	"github.com/MrSnakeDoc/linkstash/internal/sources/homepage"
	"github.com/MrSnakeDoc/linkstash/internal/store/file"
	redisstore "github.com/MrSnakeDoc/linkstash/internal/store/redis"
	"github.com/MrSnakeDoc/linkstash/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	refresher   *scheduler.StatusRefresher
	importer    *scheduler.Importer
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	fsys := afero.NewOsFs()
	store, err := file.New(fsys, cfg.DataFile, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", cfg.DataFile, err)
	}
	loggerClient.Info("collection store ready", logger.String("path", store.Path()))

	probe := fetcher.NewHTTP(fetcher.Options{
		UserAgent:     cfg.FetchUserAgent,
		MaxBody:       cfg.FetchMaxBody,
		MaxRedirects:  cfg.MaxRedirects,
		SkipTLSVerify: cfg.SkipTLSVerify,
	}, loggerClient)

	// The fetch cache is optional: without Redis every add fetches.
	var enrich fetcher.Fetcher = probe
	var fetchCache deps.Pinger
	redisClient, err := connectCache(cfg, loggerClient)
	switch {
	case errors.Is(err, redis.ErrDisabled):
		loggerClient.Info("no redis address configured, fetch cache disabled")
	case err != nil:
		loggerClient.Warn("fetch cache disabled", logger.Error(err))
	}
	if redisClient != nil {
		cache := redisstore.NewStore(redisClient, cfg.FetchCacheTTL)
		if cfg.FlushFetchCache {
			flushCache(cache, loggerClient)
		}
		enrich = fetcher.NewCached(probe, cache, loggerClient)
		fetchCache = cache
	}

	svc := service.New(store, enrich, loggerClient,
		service.WithProbe(probe),
		service.WithFetchTimeout(cfg.FetchTimeout),
		service.WithWorkers(cfg.RefreshWorkers),
	)

	refreshTrigger := make(chan struct{}, 1)
	refresher := scheduler.NewStatusRefresher(svc, loggerClient, cfg.RefreshInterval, refreshTrigger)

	var importer *scheduler.Importer
	var importTrigger chan struct{}
	if sources := importSources(cfg, fsys); len(sources) > 0 {
		importTrigger = make(chan struct{}, 1)
		importer = scheduler.NewImporter(sources, svc, loggerClient, cfg.ImportInterval, importTrigger)
	} else {
		loggerClient.Info("no import file configured, import disabled")
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		Service:        svc,
		Bridge:         bridge.New(svc),
		DataFile:       store.Path(),
		FetchCache:     fetchCache,
		ImportTrigger:  importTrigger,
		RefreshTrigger: refreshTrigger,
		MaxBodyBytes:   cfg.MaxRequestBodyKB << 10,
		WriteBurst:     cfg.WriteRateBurst,
		WritePerMin:    cfg.WriteRatePerMin,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		refresher:   refresher,
		importer:    importer,
	}, nil
}

func connectCache(cfg *config.Config, log logger.Logger) (*goredis.Client, error) {
	if !cfg.RedisEnabled() {
		return nil, redis.ErrDisabled
	}
	log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	return redis.Connect(context.Background(), redis.OptionsFromConfig(cfg), log)
}

func flushCache(cache *redisstore.Store, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n, err := cache.FlushCache(ctx)
	if err != nil {
		log.Warn("failed to flush fetch cache", logger.Error(err))
		return
	}
	log.Info("fetch cache flushed", logger.Int("dropped", n))
}

func importSources(cfg *config.Config, fsys afero.Fs) []scheduler.Source {
	var sources []scheduler.Source
	if cfg.ImportFile != "" {
		sources = append(sources, homepage.NewLoader(fsys, cfg.ImportFile, homepage.KindBookmarks))
	}
	if cfg.ImportServices != "" {
		sources = append(sources, homepage.NewLoader(fsys, cfg.ImportServices, homepage.KindServices))
	}
	return sources
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkstash %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.importer != nil {
		a.importer.Start(ctx)
		a.logger.Info("importer started", logger.Duration("interval", a.cfg.ImportInterval))
	}

	a.refresher.Start(ctx)
	a.logger.Info("status refresher started", logger.Duration("interval", a.cfg.RefreshInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.refresher.Stop()
	if a.importer != nil {
		a.importer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	var errs []error
	if err := a.server.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	_ = a.logger.Sync()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.logger.Info("✅ linkstash stopped cleanly")
	return nil
}
