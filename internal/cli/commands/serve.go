package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/cache"
	"github.com/splashsync/connector/internal/cli/config"
	"github.com/splashsync/connector/internal/cli/ui"
	"github.com/splashsync/connector/internal/commit"
	"github.com/splashsync/connector/internal/logging"
	"github.com/splashsync/connector/internal/store"
	"github.com/splashsync/connector/internal/web/api"
	"github.com/splashsync/connector/internal/web/profiling"
	"github.com/splashsync/connector/internal/web/ratelimit"
	"github.com/splashsync/connector/internal/web/server"
	"github.com/splashsync/connector/internal/web/websocket"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the token, field and commit API over HTTP",
		Long: `Start the HTTP API: token inspection, stored fields resolved through
a cache, queued commits flushed periodically to websocket subscribers.

Settings come from splash.yml and SPLASH_* environment variables.`,
		Example: `  splash serve
  splash serve --port 9000
  SPLASH_CACHE_BACKEND=redis splash serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(configPath(cmd))
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor(cmd)))
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides server.port)")
	return cmd
}

// serve runs the API until ctx is done
func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	fieldCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer fieldCache.Close()
	repo := store.NewCached(db, fieldCache, cfg.Cache.TTL, logger)

	limiter, closeLimiter, err := newCommitLimiter(cfg.Commit.RateLimit, fieldCache)
	if err != nil {
		return err
	}
	defer closeLimiter()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(logger)
	go hub.Run(hubCtx)

	commits := commit.NewManager(hub, logger)
	commitsDone := make(chan struct{})
	go func() {
		defer close(commitsDone)
		commits.Run(ctx, cfg.Commit.FlushInterval)
	}()

	handler := api.New(api.Options{
		Repository:    repo,
		Commits:       commits,
		Feed:          websocket.NewHandler(hub, nil),
		CommitLimiter: limiter,
		Logger:        logger,
		Prefix:        cfg.Server.APIPrefix,
	}).Handler()

	srv, err := server.New(server.DefaultConfig(cfg.Server.Address(), handler), logger)
	if err != nil {
		return err
	}
	// The final commit flush publishes to the hub, so the hub stops after it.
	srv.OnShutdown(func(ctx context.Context) error {
		select {
		case <-commitsDone:
		case <-ctx.Done():
		}
		stopHub()
		return nil
	})

	if cfg.Server.PprofAddr != "" {
		go serveProfiling(ctx, cfg.Server.PprofAddr, logger)
	}

	logger.Info("starting splash API",
		zap.String("address", cfg.Server.Address()),
		zap.String("database", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Backend),
	)
	return srv.Run(ctx)
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	base := cache.DefaultConfig()
	if cfg.TTL != 0 {
		base.DefaultTTL = cfg.TTL
	}

	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:  cfg.RedisAddr,
			DB:    cfg.RedisDB,
			Cache: base,
		})
	default:
		return cache.NewMemoryCacheWithConfig(base), nil
	}
}

// newCommitLimiter shares Redis with the cache when the cache lives there,
// so every instance counts against the same limit.
func newCommitLimiter(perMinute int, c cache.Cache) (ratelimit.Limiter, func(), error) {
	if perMinute == 0 {
		return nil, func() {}, nil
	}

	if rc, ok := c.(*cache.RedisCache); ok {
		l, err := ratelimit.NewRedisLimiter(rc.Client(), ratelimit.RedisConfig{
			Limit:  perMinute,
			Window: time.Minute,
			Prefix: "splash:ratelimit:",
		})
		return l, func() {}, err
	}

	tb := ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{
		Capacity:        perMinute,
		Period:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	})
	return tb, func() { tb.Close() }, nil
}

func serveProfiling(ctx context.Context, addr string, logger *zap.Logger) {
	scfg := server.DefaultConfig(addr, profiling.Handler(profiling.Config{}))
	// /profile and /trace stream for up to 30s by default
	scfg.WriteTimeout = 2 * time.Minute

	srv, err := server.New(scfg, logger.Named("pprof"))
	if err == nil {
		err = srv.Run(ctx)
	}
	if err != nil {
		logger.Error("profiling server failed", zap.String("address", addr), zap.Error(err))
	}
}
