package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/inkwell-cms/inkwell/internal/app"
	"github.com/inkwell-cms/inkwell/internal/audit"
	audithttp "github.com/inkwell-cms/inkwell/internal/audit/http"
	"github.com/inkwell-cms/inkwell/internal/guard"
	"github.com/inkwell-cms/inkwell/internal/identity"
	"github.com/inkwell-cms/inkwell/internal/observability"
	"github.com/inkwell-cms/inkwell/internal/platform/cache"
	"github.com/inkwell-cms/inkwell/internal/platform/db"
	"github.com/inkwell-cms/inkwell/internal/tenant"
	"github.com/inkwell-cms/inkwell/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	decoder, err := identity.NewDecoder(cfg.AuthRolesClaim)
	if err != nil {
		logger.Error("init claims decoder", slog.Any("error", err))
		os.Exit(1)
	}

	principals := identity.NewCachedLookup(identity.NewPGStore(pool), redisClient, cfg.PrincipalCacheTTL, logger)

	var resolver tenant.Resolver = tenant.HeaderResolver{Header: cfg.TenantHeader}
	if cfg.TenantBaseDomain != "" {
		resolver = tenant.SubdomainResolver{
			BaseDomain: cfg.TenantBaseDomain,
			Directory:  tenant.NewPGDirectory(pool),
		}
	}

	metrics := observability.NewMetrics()
	stage := &tenant.Stage{
		Resolver: resolver,
		Lookup:   principals,
		Decoder:  decoder,
		Logger:   logger,
	}
	authzGuard := guard.Guard{Logger: logger, Metrics: metrics}

	auditRepo := audit.NewPGRepository(pool)
	bus := audit.NewBus(logger)
	audit.NewListener(auditRepo, logger).Register(bus)
	auditHandler := audithttp.NewHandler(audit.NewService(auditRepo), logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Tenant:       stage,
		Guard:        authzGuard,
		AuditHandler: auditHandler,
		JobHandler:   jobHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
		}
		bus.Drain()
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
