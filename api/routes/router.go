package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/controllers"
	analyticscontrollers "github.com/angelmondragon/urgency-engine/api/controllers/analytics"
	ordercontrollers "github.com/angelmondragon/urgency-engine/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/urgency-engine/api/controllers/webhooks"
	"github.com/angelmondragon/urgency-engine/api/middleware"
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
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/metrics"
	pkgredis "github.com/angelmondragon/urgency-engine/pkg/redis"
)

// RateLimitStore backs the login and chat throttles.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps carries everything the router mounts. Nil services answer with a 500
// from their controllers; nil stores disable the middleware that needs them.
// Leave interface fields unset rather than assigning typed nil pointers.
type Deps struct {
	Readiness        []controllers.ReadinessCheck
	HTTPMetrics      *metrics.HTTPMetrics
	MetricsHandler   http.Handler
	RateLimitStore   RateLimitStore
	IdempotencyStore pkgredis.IdempotencyStore

	Auth          auth.Service
	Products      products.Service
	Checkout      checkout.Service
	Settings      settings.Service
	Suggestions   suggestions.Service
	Orders        orders.Service
	Analytics     analytics.Service
	Fulfillment   fulfillment.Service
	Rules         fulfillment.RulesService
	Imports       imports.Service
	Insights      insights.Service
	Integrations  integrations.Service
	Notifications notifications.Service
	Trends        trends.Service
	AI            ai.Service
	Social        social.Service
	Chatbot       chatbot.Service

	StripeVerifier       webhookcontrollers.EventVerifier
	StripeWebhookService webhookcontrollers.StripeWebhookService
	StripeWebhookGuard   webhookcontrollers.StripeWebhookGuard
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewRateLimitPolicy("admin_login", cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginIPLimit).
		ByField("email", cfg.RateLimit.LoginEmailLimit)
	chatPolicy := middleware.NewRateLimitPolicy("chatbot_message", cfg.RateLimit.ChatWindow, cfg.RateLimit.ChatIPLimit).
		ByField("session_id", cfg.RateLimit.ChatSessionLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.IdempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{slug}", controllers.GetProduct(deps.Products, logg))
			r.Post("/{slug}/view", controllers.RecordProductView(deps.Products, logg))
		})
		r.Post("/checkout", controllers.CreateCheckout(deps.Checkout, logg))
		r.Get("/settings", controllers.GetSettings(deps.Settings, logg))
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhookService, deps.StripeVerifier, deps.StripeWebhookGuard, logg))

		r.Route("/chatbot", func(r chi.Router) {
			r.With(middleware.RateLimit(chatPolicy, deps.RateLimitStore, logg)).Post("/message", controllers.ChatbotMessage(deps.Chatbot, logg))
			r.Get("/session/{sessionID}/history", controllers.ChatbotHistory(deps.Chatbot, logg))
			r.Post("/session/{sessionID}/escalate", controllers.ChatbotEscalate(deps.Chatbot, logg))
			r.Get("/faq", controllers.ChatbotFAQTopics(deps.Chatbot, logg))
			r.Get("/faq/{topic}", controllers.ChatbotFAQ(deps.Chatbot, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, deps.RateLimitStore, logg)).Post("/login", controllers.AdminAuthLogin(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AdminAuthMe(logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.AdminRoleAdmin))
		r.Use(middleware.Idempotency(deps.IdempotencyStore, logg))

		r.Get("/stats", analyticscontrollers.Stats(deps.Analytics, logg))

		r.Route("/queue", func(r chi.Router) {
			r.Get("/", controllers.AdminListQueue(deps.Suggestions, logg))
			r.Post("/{id}/approve", controllers.AdminApproveSuggestion(deps.Suggestions, logg))
			r.Post("/{id}/reject", controllers.AdminRejectSuggestion(deps.Suggestions, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/{id}", ordercontrollers.Detail(deps.Orders, logg))
			r.Patch("/{id}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
			r.Post("/{id}/tracking", ordercontrollers.AddTracking(deps.Orders, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Patch("/{id}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Delete("/{id}", controllers.AdminDeleteProduct(deps.Products, logg))
		})

		r.Put("/settings", controllers.AdminUpdateSettings(deps.Settings, logg))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", analyticscontrollers.Overview(deps.Analytics, logg))
			r.Get("/revenue", analyticscontrollers.Revenue(deps.Analytics, logg))
			r.Get("/orders", analyticscontrollers.Orders(deps.Analytics, logg))
			r.Get("/top-products", analyticscontrollers.TopProducts(deps.Analytics, logg))
			r.Get("/conversion-funnel", analyticscontrollers.Funnel(deps.Analytics, logg))
		})

		r.Route("/fulfillment", func(r chi.Router) {
			r.Route("/orders/{id}", func(r chi.Router) {
				r.Get("/eligibility", controllers.FulfillmentEligibility(deps.Fulfillment, logg))
				r.Post("/auto-fulfill", controllers.FulfillmentAutoOrder(deps.Fulfillment, logg))
				r.Post("/tracking", controllers.FulfillmentTracking(deps.Fulfillment, logg))
				r.Post("/mark-delivered", controllers.FulfillmentMarkDelivered(deps.Fulfillment, logg))
				r.Get("/supplier-availability", controllers.FulfillmentSupplierAvailability(deps.Fulfillment, logg))
			})
			r.Post("/process-queue", controllers.FulfillmentProcessQueue(deps.Fulfillment, logg))

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", controllers.ListSuppliers(deps.Fulfillment, logg))
				r.Post("/", controllers.CreateSupplier(deps.Fulfillment, logg))
				r.Get("/{id}", controllers.GetSupplier(deps.Fulfillment, logg))
				r.Put("/{id}", controllers.UpdateSupplier(deps.Fulfillment, logg))
				r.Delete("/{id}", controllers.DeactivateSupplier(deps.Fulfillment, logg))
			})
			r.Route("/products/{id}/suppliers", func(r chi.Router) {
				r.Get("/", controllers.ListProductSuppliers(deps.Fulfillment, logg))
				r.Post("/", controllers.LinkProductSupplier(deps.Fulfillment, logg))
				r.Delete("/{supplierID}", controllers.UnlinkProductSupplier(deps.Fulfillment, logg))
			})

			r.Route("/rules", func(r chi.Router) {
				r.Get("/", controllers.ListRules(deps.Rules, logg))
				r.Post("/", controllers.CreateRule(deps.Rules, logg))
				r.Put("/{id}", controllers.UpdateRule(deps.Rules, logg))
				r.Post("/{id}/toggle", controllers.ToggleRule(deps.Rules, logg))
				r.Delete("/{id}", controllers.DeleteRule(deps.Rules, logg))
			})
			r.Post("/evaluate/{id}", controllers.EvaluateRules(deps.Rules, logg))
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/parse-url", controllers.ImportParseURL(deps.Imports, logg))
			r.Post("/create-product", controllers.ImportCreateProduct(deps.Imports, logg))
			r.Get("/supported-platforms", controllers.ImportSupportedPlatforms(deps.Imports, logg))
		})

		r.Route("/insights", func(r chi.Router) {
			r.Get("/daily-digest", controllers.InsightsDailyDigest(deps.Insights, logg))
			r.Get("/product/{id}", controllers.InsightsProduct(deps.Insights, logg))
			r.Get("/anomalies", controllers.InsightsAnomalies(deps.Insights, logg))
			r.Get("/predictions", controllers.InsightsPredictions(deps.Insights, logg))
			r.Get("/price-optimization", controllers.InsightsPriceOptimization(deps.Insights, logg))
			r.Get("/summary", controllers.InsightsSummary(deps.Insights, logg))
		})

		r.Route("/integrations", func(r chi.Router) {
			r.Get("/platforms", controllers.IntegrationPlatforms(deps.Integrations, logg))
			r.Get("/", controllers.ListIntegrations(deps.Integrations, logg))
			r.Post("/connect", controllers.ConnectIntegration(deps.Integrations, logg))
			r.Get("/{id}", controllers.GetIntegration(deps.Integrations, logg))
			r.Patch("/{id}", controllers.UpdateIntegration(deps.Integrations, logg))
			r.Delete("/{id}", controllers.DisconnectIntegration(deps.Integrations, logg))
			r.Post("/{id}/test", controllers.TestIntegration(deps.Integrations, logg))
			r.Post("/{id}/sync", controllers.SyncIntegration(deps.Integrations, logg))
			r.Get("/{id}/stats", controllers.IntegrationStats(deps.Integrations, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/", controllers.CreateNotification(deps.Notifications, logg))
			r.Get("/stats", controllers.NotificationStats(deps.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
			r.Put("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Post("/demo/generate", controllers.GenerateDemoNotifications(deps.Notifications, logg))
			r.Put("/{id}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Delete("/{id}", controllers.DeleteNotification(deps.Notifications, logg))
		})

		r.Route("/trends", func(r chi.Router) {
			r.Get("/products", controllers.ListTrendProducts(deps.Trends, logg))
			r.Get("/products/{id}", controllers.GetTrendProduct(deps.Trends, logg))
			r.Post("/import", controllers.ImportTrendProduct(deps.Trends, logg))
			r.Post("/seed", controllers.SeedTrendProducts(deps.Trends, logg))
			r.Get("/categories", controllers.TrendCategories(deps.Trends, logg))
			r.Get("/stats", controllers.TrendStats(deps.Trends, logg))
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate-description", controllers.AIGenerateDescription(deps.AI, logg))
			r.Post("/generate-ad-copy", controllers.AIGenerateAdCopy(deps.AI, logg))
			r.Post("/recommend-pricing", controllers.AIRecommendPricing(deps.AI, logg))
			r.Post("/generate-bulk", controllers.AIGenerateBulk(deps.AI, logg))
			r.Get("/health", controllers.AIHealth(deps.AI, logg))
		})

		r.Route("/social", func(r chi.Router) {
			r.Post("/generate/instagram", controllers.SocialInstagram(deps.Social, logg))
			r.Post("/generate/tiktok", controllers.SocialTikTok(deps.Social, logg))
			r.Post("/generate/facebook", controllers.SocialFacebook(deps.Social, logg))
			r.Post("/generate/twitter", controllers.SocialTwitter(deps.Social, logg))
			r.Post("/generate/pinterest", controllers.SocialPinterest(deps.Social, logg))
			r.Post("/generate/all", controllers.SocialGenerateAll(deps.Social, logg))
			r.Get("/trending-hashtags", controllers.SocialTrendingHashtags(deps.Social, logg))
			r.Get("/best-times", controllers.SocialBestTimes(deps.Social, logg))
		})

		r.Route("/chatbot", func(r chi.Router) {
			r.Get("/sessions", controllers.ChatbotSessions(deps.Chatbot, logg))
			r.Get("/sessions/stats", controllers.ChatbotStats(deps.Chatbot, logg))
			r.Post("/session/{sessionID}/resolve", controllers.ChatbotResolve(deps.Chatbot, logg))
			r.Post("/session/{sessionID}/agent-message", controllers.ChatbotAgentMessage(deps.Chatbot, logg))
		})
	})

	return r
}
