package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"example.com/meme-sphinx/internal/auth"
	"example.com/meme-sphinx/internal/chat"
	"example.com/meme-sphinx/internal/config"
	"example.com/meme-sphinx/internal/game"
	"example.com/meme-sphinx/internal/httpapi"
	"example.com/meme-sphinx/internal/identity"
	"example.com/meme-sphinx/internal/llm"
	"example.com/meme-sphinx/internal/reward"
)

type App struct {
	cfg config.Config
	log *zap.Logger

	rdb *redis.Client

	engine *game.Engine
	srv    *http.Server
}

// Options replaces collaborators, mainly for tests. Nil fields get the
// production implementation built from cfg.
type Options struct {
	Generator game.Generator
	Rewarder  game.Rewarder
	Resolver  game.Resolver
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts Options) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// --- Sessions ---
	var (
		rdb      *redis.Client
		sessions game.SessionStore
		stats    game.StatsStore
	)
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		sessions = game.NewRedisSessionStore(rdb, cfg.Redis.SessionTTL, cfg.Game.MaxAttempts)
		stats = game.NewRedisStatsStore(rdb)
		log.Info("sessions in redis", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.SessionTTL))
	} else {
		sessions = game.NewInMemorySessionStore(cfg.Game.MaxAttempts)
		stats = game.NewStatsTracker()
		log.Info("sessions in process memory")
	}

	// --- Collaborators ---
	if opts.Generator == nil {
		opts.Generator = llm.New(llm.Config{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		}, log)
	}
	if opts.Rewarder == nil {
		opts.Rewarder = reward.New(cfg.Reward.URL, cfg.Reward.Timeout, log)
	}
	if opts.Resolver == nil {
		opts.Resolver = identity.NewAddressResolver(log)
	}

	// --- Game ---
	engine := game.NewEngine(game.Config{
		Rules:  game.Rules{MaxAttempts: cfg.Game.MaxAttempts, Cooldown: cfg.Game.Cooldown},
		Reward: game.Reward{Amount: cfg.Reward.Amount, Symbol: cfg.Reward.Symbol},
	}, game.Deps{
		Store:     sessions,
		Stats:     stats,
		Generator: opts.Generator,
		Resolver:  opts.Resolver,
		Rewarder:  opts.Rewarder,
		Logger:    log,
	})

	// --- Auth ---
	authSvc := auth.NewService([]byte(cfg.Auth.Secret))

	turnsH := &httpapi.TurnsHandler{Turns: engine, Stats: engine}
	chatSrv := chat.NewServer(engine, authSvc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpapi.Healthz(func(r *http.Request) error {
		if rdb == nil {
			return nil
		}
		return rdb.Ping(r.Context()).Err()
	}))
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	// --- turn routes ---
	mux.Handle("/api/turns", httpapi.AuthMiddleware(authSvc)(http.HandlerFunc(turnsH.Submit)))
	mux.Handle("/api/me/stats", httpapi.AuthMiddleware(authSvc)(http.HandlerFunc(turnsH.MyStats)))
	chatSrv.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.RequestLogger(log)(mux),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return &App{cfg: cfg, log: log, rdb: rdb, engine: engine, srv: srv}, nil
}

// Handler exposes the routed mux without starting a listener.
func (a *App) Handler() http.Handler {
	return a.srv.Handler
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", zap.String("addr", a.cfg.HTTP.Addr))

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.log.Sync()
	return nil
}
