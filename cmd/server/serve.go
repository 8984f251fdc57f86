package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/admin_console/internal/announce"
	"github.com/Skotchmaster/admin_console/internal/content"
	"github.com/Skotchmaster/admin_console/internal/events"
	"github.com/Skotchmaster/admin_console/internal/handlers"
	"github.com/Skotchmaster/admin_console/internal/metrics"
	"github.com/Skotchmaster/admin_console/internal/middleware/csrf"
	"github.com/Skotchmaster/admin_console/internal/oplog"
	"github.com/Skotchmaster/admin_console/internal/permission"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service/auth"
	"github.com/Skotchmaster/admin_console/internal/service/system"
	"github.com/Skotchmaster/admin_console/internal/session"
	httpserver "github.com/Skotchmaster/admin_console/internal/transport/http"
	"github.com/Skotchmaster/admin_console/pkg/tokens"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(gdb, logger)
	store := &repo.GormRepo{DB: gdb}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := announce.NewHub(logger.With("component", "announce"))
	hub.OnCount = m.SetClients

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}()

	sysSvc := &system.SystemService{Repo: store, Hub: hub}
	recorder := &oplog.Recorder{Store: store, Publisher: publisher, Timeout: 5 * time.Second}
	if len(cfg.ESAddresses) > 0 {
		es, err := oplog.NewES(oplog.ESConfig{
			Addresses: cfg.ESAddresses,
			Username:  cfg.ESUser,
			Password:  cfg.ESPassword,
			Index:     cfg.ESIndex,
		})
		if err != nil {
			return err
		}
		if err := es.Ping(ctx); err != nil {
			logger.Warn("elasticsearch_unavailable", "error", err)
		}
		recorder.Indexer = es
		sysSvc.Search = es
	}

	issuer := tokens.NewIssuer(cfg.JWTSecret)
	issuer.TTL = cfg.TokenTTL

	authSvc := auth.NewAuthService(store, issuer, permission.NewBuilder(store), store)
	authSvc.Metrics = m

	deps := &httpserver.Deps{
		Logger: logger,
		Auth: &handlers.AuthHandler{
			Svc:     authSvc,
			Content: content.NewJuejinClient(cfg.JuejinURL, cfg.JuejinTimeout),
		},
		System:   &handlers.SystemHandler{Svc: sysSvc},
		Sessions: session.NewRedisStore(rdb, cfg.SessionTTL),
		Cookie:   session.CookieOptions{Secure: cfg.CookieSecure, MaxAge: int(cfg.SessionTTL.Seconds())},
		Tokens:   issuer,
		Hub:      hub,
		Metrics:  m,
		Recorder: recorder,
		Ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
	}
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		c.SkipPrefixes = []string{"/ws/"}
		deps.CSRF = &c
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpserver.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	logger.Info("shutdown_complete")
	return nil
}
