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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/urgency-engine/api/controllers"
	"github.com/angelmondragon/urgency-engine/api/routes"
	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/internal/analytics"
	"github.com/angelmondragon/urgency-engine/internal/auth"
	"github.com/angelmondragon/urgency-engine/internal/chatbot"
	"github.com/angelmondragon/urgency-engine/internal/checkout"
	"github.com/angelmondragon/urgency-engine/internal/fulfillment"
	"github.com/angelmondragon/urgency-engine/internal/imports"
	"github.com/angelmondragon/urgency-engine/internal/insights"
	"github.com/angelmondragon/urgency-engine/internal/integrations"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/internal/settings"
	"github.com/angelmondragon/urgency-engine/internal/social"
	"github.com/angelmondragon/urgency-engine/internal/suggestions"
	"github.com/angelmondragon/urgency-engine/internal/trends"
	stripewebhook "github.com/angelmondragon/urgency-engine/internal/webhooks/stripe"
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/db"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/metrics"
	"github.com/angelmondragon/urgency-engine/pkg/migrate"
	"github.com/angelmondragon/urgency-engine/pkg/redis"
	"github.com/angelmondragon/urgency-engine/pkg/security"
	"github.com/angelmondragon/urgency-engine/pkg/stripe"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	deps, err := buildDeps(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Deps, error) {
	ctx := context.Background()
	conn := dbClient.DB()

	var kv kvstore.Store = redis.NewKVStore(redisClient)
	if cfg.FeatureFlags.InMemoryKV {
		logg.Warn(ctx, "using in-memory kv store; chat sessions and notifications will not survive restarts")
		kv = kvstore.NewMemory()
	}

	reg := prometheus.DefaultRegisterer
	if err := metrics.RegisterDBPool(reg, dbClient); err != nil {
		logg.WarnErr(ctx, "db pool metrics unavailable", err)
	}
	deps := routes.Deps{
		Readiness: []controllers.ReadinessCheck{
			{Name: "database", Pinger: dbClient},
			{Name: "redis", Pinger: redisClient},
		},
		HTTPMetrics:      metrics.NewHTTPMetrics(reg),
		MetricsHandler:   promhttp.Handler(),
		RateLimitStore:   redisClient,
		IdempotencyStore: redisClient,
	}

	productRepo := products.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	suggestionRepo := suggestions.NewRepository(conn)
	analyticsRepo := analytics.NewRepository(conn)
	fulfillmentRepo := fulfillment.NewRepository(conn)

	var err error
	if deps.Auth, err = auth.NewService(auth.ServiceParams{Admin: cfg.Admin, JWTConfig: cfg.JWT, Password: cfg.Password, Logger: logg}); err != nil {
		return deps, err
	}
	if deps.Products, err = products.NewService(productRepo); err != nil {
		return deps, err
	}
	if deps.Settings, err = settings.NewService(settings.NewRepository(conn)); err != nil {
		return deps, err
	}
	if deps.Suggestions, err = suggestions.NewService(suggestionRepo, productRepo, dbClient); err != nil {
		return deps, err
	}
	if deps.Orders, err = orders.NewService(ordersRepo); err != nil {
		return deps, err
	}
	if deps.Analytics, err = analytics.NewService(analyticsRepo); err != nil {
		return deps, err
	}
	if deps.Imports, err = imports.NewService(productRepo); err != nil {
		return deps, err
	}
	if deps.Trends, err = trends.NewService(trends.NewRepository(conn), productRepo, dbClient); err != nil {
		return deps, err
	}

	notificationSvc, err := notifications.NewService(kv, cfg.Cron.AlertRecipient)
	if err != nil {
		return deps, err
	}
	deps.Notifications = notificationSvc

	policy := ai.NewPolicy(ai.NewAnthropicClient(cfg.Anthropic), logg)
	if !policy.Enabled() {
		logg.Warn(ctx, "anthropic api key not configured; content generation uses heuristics")
	}
	deps.AI = ai.NewService(policy)
	if deps.Social, err = social.NewService(productRepo, policy); err != nil {
		return deps, err
	}
	if deps.Insights, err = insights.NewService(insights.ServiceParams{
		Analytics: analyticsRepo,
		Products:  productRepo,
		Signals:   insights.NewRepository(conn),
		Policy:    policy,
	}); err != nil {
		return deps, err
	}
	if deps.Chatbot, err = chatbot.NewService(chatbot.ServiceParams{
		Store:    kv,
		Policy:   policy,
		Orders:   ordersRepo,
		Products: productRepo,
		Notifier: notificationSvc,
		Logger:   logg,
	}); err != nil {
		return deps, err
	}

	if deps.Fulfillment, err = fulfillment.NewService(fulfillment.ServiceParams{
		Config:       cfg.Fulfillment,
		Repo:         fulfillmentRepo,
		Orders:       ordersRepo,
		OrderService: deps.Orders,
		Products:     productRepo,
		Tx:           dbClient,
		Notifier:     notificationSvc,
		Metrics:      metrics.NewFulfillmentMetrics(reg),
		Logger:       logg,
	}); err != nil {
		return deps, err
	}
	if deps.Rules, err = fulfillment.NewRulesService(fulfillmentRepo, ordersRepo, productRepo); err != nil {
		return deps, err
	}
	if err := seedRules(ctx, deps.Rules, logg); err != nil {
		return deps, err
	}

	sealer, err := security.NewSealer(cfg.Encryption)
	if err != nil {
		return deps, err
	}
	if deps.Integrations, err = integrations.NewService(integrations.ServiceParams{
		Repo:     integrations.NewRepository(conn),
		Products: productRepo,
		Tx:       dbClient,
		Sealer:   sealer,
		Notifier: notificationSvc,
		Logger:   logg,
	}); err != nil {
		return deps, err
	}

	deps.StripeVerifier = stripe.NewVerifier(cfg.Stripe.WebhookSecret, cfg.Stripe.WebhookTolerance)
	if !deps.StripeVerifier.Configured() {
		logg.Warn(ctx, "stripe webhook secret not configured; webhook deliveries will be rejected")
	}

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.WarnErr(ctx, "stripe not configured; checkout is disabled", err)
	} else {
		if deps.Checkout, err = checkout.NewService(checkout.ServiceParams{
			Products:    productRepo,
			Stripe:      stripeClient,
			FrontendURL: cfg.App.FrontendURL,
			Logger:      logg,
		}); err != nil {
			return deps, err
		}
	}

	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Orders:   ordersRepo,
		Products: productRepo,
		Notifier: notificationSvc,
		Logger:   logg,
	})
	if err != nil {
		return deps, err
	}
	deps.StripeWebhookService = webhookSvc
	guard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "stripe")
	if err != nil {
		return deps, err
	}
	deps.StripeWebhookGuard = guard

	return deps, nil
}

// seedRules installs the default fulfillment rules on an empty rules table.
func seedRules(ctx context.Context, rules fulfillment.RulesService, logg *logger.Logger) error {
	seeded, err := rules.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	if seeded > 0 {
		logg.Info(logg.WithField(ctx, "rules", seeded), "seeded default fulfillment rules")
	}
	return nil
}
