package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/internal/analytics"
	"github.com/angelmondragon/urgency-engine/internal/cron"
	"github.com/angelmondragon/urgency-engine/internal/fulfillment"
	"github.com/angelmondragon/urgency-engine/internal/insights"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/internal/suggestions"
	"github.com/angelmondragon/urgency-engine/internal/trends"
	"github.com/angelmondragon/urgency-engine/internal/trends/tiktok"
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/db"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/metrics"
	"github.com/angelmondragon/urgency-engine/pkg/migrate"
	"github.com/angelmondragon/urgency-engine/pkg/redis"
)

const (
	lockKeyFormat       = "urgency:cron-worker:lock:%s"
	metricsReadTimeout  = 5 * time.Second
	metricsShutdownWait = 5 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	if err := run(); err != nil {
		logg.Error(context.Background(), "cron worker exited", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = "cron-worker"

	logg := logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer closeQuietly(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer closeQuietly(logg, "redis", redisClient.Close)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.RegisterDBPool(reg, dbClient); err != nil {
		logg.WarnErr(ctx, "db pool metrics unavailable", err)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		return fmt.Errorf("cron lock: %w", err)
	}
	registry, err := buildRegistry(ctx, cfg, logg, reg, dbClient, redisClient)
	if err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		return fmt.Errorf("cron service: %w", err)
	}

	if cfg.Cron.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Cron.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: metricsReadTimeout,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics listener stopped", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownWait)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        len(registry.Entries()),
	})
	logg.Info(runCtx, "starting cron worker")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("cron service stopped: %w", err)
	}
	logg.Info(runCtx, "cron worker shutting down gracefully")
	return nil
}

func closeQuietly(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}

func buildRegistry(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, dbClient *db.Client, redisClient *redis.Client) (*cron.Registry, error) {
	conn := dbClient.DB()

	var kv kvstore.Store = redis.NewKVStore(redisClient)
	if cfg.FeatureFlags.InMemoryKV {
		kv = kvstore.NewMemory()
	}

	productRepo := products.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	notifier, err := notifications.NewService(kv, cfg.Cron.AlertRecipient)
	if err != nil {
		return nil, err
	}
	orderSvc, err := orders.NewService(ordersRepo)
	if err != nil {
		return nil, err
	}
	fulfillmentSvc, err := fulfillment.NewService(fulfillment.ServiceParams{
		Config:       cfg.Fulfillment,
		Repo:         fulfillment.NewRepository(conn),
		Orders:       ordersRepo,
		OrderService: orderSvc,
		Products:     productRepo,
		Tx:           dbClient,
		Notifier:     notifier,
		Metrics:      metrics.NewFulfillmentMetrics(reg),
		Logger:       logg,
	})
	if err != nil {
		return nil, err
	}

	policy := ai.NewPolicy(ai.NewAnthropicClient(cfg.Anthropic), logg)
	insightsSvc, err := insights.NewService(insights.ServiceParams{
		Analytics: analytics.NewRepository(conn),
		Products:  productRepo,
		Signals:   insights.NewRepository(conn),
		Policy:    policy,
	})
	if err != nil {
		return nil, err
	}

	queueJob, err := cron.NewFulfillmentQueueJob(cron.FulfillmentQueueJobParams{
		Logger:    logg,
		Processor: fulfillmentSvc,
		Enabled:   cfg.Fulfillment.AutoFulfillEnabled,
	})
	if err != nil {
		return nil, err
	}
	alertsJob, err := cron.NewAnomalyAlertsJob(cron.AnomalyAlertsJobParams{
		Logger:   logg,
		Source:   insightsSvc,
		Notifier: notifier,
		Seen:     kv,
	})
	if err != nil {
		return nil, err
	}

	trendParams := cron.TrendRefreshJobParams{Logger: logg}
	if source := tiktok.NewClient(cfg.RapidAPI); source != nil {
		refresher, err := trends.NewRefresher(source, ai.NewService(policy), trends.NewRepository(conn), suggestions.NewRepository(conn), logg)
		if err != nil {
			return nil, err
		}
		trendParams.Refresher = refresher
	} else {
		logg.Warn(ctx, "rapidapi key not configured; trend refresh runs will be skipped")
	}
	trendJob, err := cron.NewTrendRefreshJob(trendParams)
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()
	if err := registry.Register(cfg.Cron.FulfillmentQueueSchedule, queueJob); err != nil {
		return nil, err
	}
	if err := registry.Register(cfg.Cron.AnomalyAlertsSchedule, alertsJob); err != nil {
		return nil, err
	}
	if err := registry.Register(cfg.Cron.TrendRefreshSchedule, trendJob); err != nil {
		return nil, err
	}
	return registry, nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
