package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/andalib/andalib-backend/api/routes"
	"github.com/andalib/andalib-backend/internal/admins"
	"github.com/andalib/andalib-backend/internal/auth"
	"github.com/andalib/andalib-backend/internal/books"
	"github.com/andalib/andalib-backend/internal/cron"
	"github.com/andalib/andalib-backend/internal/loans"
	"github.com/andalib/andalib-backend/internal/members"
	"github.com/andalib/andalib-backend/internal/notifications"
	"github.com/andalib/andalib-backend/internal/returns"
	"github.com/andalib/andalib-backend/pkg/config"
	"github.com/andalib/andalib-backend/pkg/db"
	"github.com/andalib/andalib-backend/pkg/instance"
	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/metrics"
	"github.com/andalib/andalib-backend/pkg/migrate"
	"github.com/andalib/andalib-backend/pkg/pubsub"
	"github.com/andalib/andalib-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	created, err := auth.EnsureBootstrapAdmin(ctx, dbClient, cfg.Bootstrap)
	if err != nil {
		logg.Error(ctx, "failed to seed bootstrap admin", err)
		os.Exit(1)
	}
	if created {
		logg.Info(logg.WithField(ctx, "email", cfg.Bootstrap.AdminEmail), "bootstrap admin created")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	var (
		pusher     notifications.Pusher
		pushCloser func()
		psClient   *pubsub.Client
	)
	if cfg.GCP.ProjectID != "" {
		psClient, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		if p := notifications.NewPubSubPusher(psClient.NotificationPublisher()); p != nil {
			pusher = p
			pushCloser = p.Close
		}
	} else {
		logg.Info(ctx, "push channel disabled: no gcp project configured")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dispatchMetrics := metrics.NewDispatchMetrics(reg)

	adminRepo := admins.NewRepository(dbClient.DB())
	loanRepo := loans.NewRepository(dbClient.DB())
	bookRepo := books.NewRepository(dbClient.DB())
	memberRepo := members.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	fanout, err := notifications.NewFanout(notifications.FanoutParams{
		DB:          dbClient,
		Admins:      adminRepo,
		Repository:  notificationRepo,
		Pusher:      pusher,
		Logger:      logg,
		Metrics:     dispatchMetrics,
		PushTimeout: cfg.Notifications.PushTimeout,
	})
	exitOnErr(ctx, logg, "failed to create notification fanout", err)

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Notifier:  fanout,
		Logger:    logg,
		Metrics:   dispatchMetrics,
		QueueSize: cfg.Notifications.QueueSize,
		Workers:   cfg.Notifications.Workers,
	})
	exitOnErr(ctx, logg, "failed to create notification dispatcher", err)
	dispatcher.Start(ctx)

	authService, err := auth.NewService(auth.ServiceParams{
		AdminRepo: adminRepo,
		JWTConfig: cfg.JWT,
	})
	exitOnErr(ctx, logg, "failed to create auth service", err)

	returnsService, err := returns.NewService(returns.ServiceParams{
		DB:       dbClient,
		Returns:  returns.NewRepository(dbClient.DB()),
		Loans:    loanRepo,
		Books:    bookRepo,
		Members:  memberRepo,
		Notifier: dispatcher,
		Logger:   logg,
	})
	exitOnErr(ctx, logg, "failed to create returns service", err)

	loansService, err := loans.NewService(loans.ServiceParams{
		DB:      dbClient,
		Loans:   loanRepo,
		Members: memberRepo,
		Books:   bookRepo,
		Logger:  logg,
	})
	exitOnErr(ctx, logg, "failed to create loans service", err)

	membersService, err := members.NewService(memberRepo, dispatcher, logg)
	exitOnErr(ctx, logg, "failed to create members service", err)

	notificationsService, err := notifications.NewService(notificationRepo)
	exitOnErr(ctx, logg, "failed to create notifications service", err)

	janitorDone := make(chan struct{})
	if cfg.FeatureFlags.InProcessJanitor {
		janitor, err := cron.NewNotificationJanitor(cron.JanitorParams{
			Logger:     logg,
			DB:         dbClient,
			Repository: notificationRepo,
			Metrics:    metrics.NewCronJobMetrics(reg),
			Retention:  cfg.Notifications.Retention,
			Interval:   cfg.Notifications.SweepInterval,
			Redis:      redisClient,
		})
		exitOnErr(ctx, logg, "failed to create notification janitor", err)
		go func() {
			defer close(janitorDone)
			if err := janitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "notification janitor stopped unexpectedly", err)
			}
		}()
	} else {
		close(janitorDone)
	}

	readiness := readinessChecks(dbClient, redisClient, psClient)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			Gatherer:      reg,
			Metrics:       metrics.NewHTTPMetrics(reg),
			Readiness:     readiness,
			Auth:          authService,
			Returns:       returnsService,
			Loans:         loansService,
			Members:       membersService,
			Notifications: notificationsService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
	case runErr = <-serveErr:
		logg.Error(logCtx, "api server stopped unexpectedly", runErr)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	<-janitorDone
	shutdownErr = multierr.Append(shutdownErr, dispatcher.Close(shutdownCtx))
	if pushCloser != nil {
		pushCloser()
	}
	if shutdownErr != nil {
		logg.Error(logCtx, "graceful shutdown incomplete", shutdownErr)
	}

	if runErr != nil || shutdownErr != nil {
		os.Exit(1)
	}
	logg.Info(logCtx, "api server stopped")
}

func exitOnErr(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
