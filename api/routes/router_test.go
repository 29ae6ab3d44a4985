package routes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/urgency-engine/api/controllers"
	"github.com/angelmondragon/urgency-engine/internal/analytics"
	"github.com/angelmondragon/urgency-engine/internal/auth"
	"github.com/angelmondragon/urgency-engine/internal/checkout"
	"github.com/angelmondragon/urgency-engine/internal/products"
	pkgAuth "github.com/angelmondragon/urgency-engine/pkg/auth"
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubAuthService struct{}

func (stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "token", TokenType: "bearer", Email: req.Email, Role: enums.AdminRoleAdmin}, nil
}

type stubProductService struct {
	listCalls int
}

func (s *stubProductService) List(context.Context, products.ListInput) ([]products.ProductDTO, error) {
	s.listCalls++
	return []products.ProductDTO{{ID: 1, Slug: "led-lamp", Name: "LED Lamp"}}, nil
}

func (s *stubProductService) GetBySlug(_ context.Context, slug string) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: 1, Slug: slug}, nil
}

func (s *stubProductService) RecordView(context.Context, string, *string) error {
	return nil
}

func (s *stubProductService) Create(_ context.Context, input products.CreateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: 2}, nil
}

func (s *stubProductService) Update(_ context.Context, id int64, _ products.UpdateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: id}, nil
}

func (s *stubProductService) Delete(context.Context, int64, bool) error {
	return nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) AdminStats(context.Context) (*analytics.AdminStats, error) {
	return &analytics.AdminStats{OrdersToday: 3}, nil
}

func (stubAnalyticsService) Overview(context.Context, int) (*analytics.Overview, error) {
	return &analytics.Overview{}, nil
}

func (stubAnalyticsService) RevenueSeries(context.Context, int) ([]analytics.RevenuePoint, error) {
	return nil, nil
}

func (stubAnalyticsService) OrdersSeries(context.Context, int) ([]analytics.OrdersPoint, error) {
	return nil, nil
}

func (stubAnalyticsService) TopProducts(context.Context, int, int) ([]analytics.TopProduct, error) {
	return nil, nil
}

func (stubAnalyticsService) Funnel(context.Context, int) (*analytics.Funnel, error) {
	return &analytics.Funnel{}, nil
}

type stubCheckoutService struct {
	mu    sync.Mutex
	calls int
}

func (s *stubCheckoutService) CreateSession(_ context.Context, input checkout.Input) (*checkout.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &checkout.Result{CheckoutURL: "https://checkout.stripe.test/" + input.ProductSlug, SessionID: fmt.Sprintf("cs_%d", s.calls)}, nil
}

type memoryIdempotencyStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: map[string]string{}}
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func testDeps() Deps {
	return Deps{
		Readiness: []controllers.ReadinessCheck{{Name: "database", Pinger: stubPinger{}}},
		Auth:      stubAuthService{},
		Products:  &stubProductService{},
		Checkout:  &stubCheckoutService{},
		Analytics: stubAnalyticsService{},
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.AdminRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		Email: "owner@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthRoutes(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, testLogger(), testDeps())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	if resp.Header().Get("X-Urgency-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-Urgency-Env"))
	}

	deps := testDeps()
	deps.Readiness = []controllers.ReadinessCheck{{Name: "redis", Pinger: stubPinger{err: errors.New("connection refused")}}}
	router = NewRouter(cfg, testLogger(), deps)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when a dependency is down got %d", resp.Code)
	}
}

func TestPublicProductsDoNotRequireAuth(t *testing.T) {
	deps := testDeps()
	productsSvc := &stubProductService{}
	deps.Products = productsSvc
	router := NewRouter(testConfig(), testLogger(), deps)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=5", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if productsSvc.listCalls != 1 {
		t.Fatalf("expected list to reach the service once, got %d", productsSvc.listCalls)
	}
	if !strings.Contains(resp.Body.String(), `"slug":"led-lamp"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestAdminLoginIsPublic(t *testing.T) {
	router := NewRouter(testConfig(), testLogger(), testDeps())
	body := `{"email":"owner@example.com","password":"hunter2hunter2"}`
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"access_token":"token"`) {
		t.Fatalf("expected token in body, got %s", resp.Body.String())
	}
	if resp.Header().Get("Cache-Control") != "no-store" {
		t.Fatal("login response must not be cached")
	}
}

func TestAdminGroupRejectsMissingJWT(t *testing.T) {
	router := NewRouter(testConfig(), testLogger(), testDeps())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/v1/stats", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, testLogger(), testDeps())

	viewer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stats", nil)
	viewer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AdminRoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, viewer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stats", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AdminRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"orders_today":3`) {
		t.Fatalf("unexpected stats body %s", resp.Body.String())
	}
}

func TestAdminRouteWithoutServiceFailsClosed(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, testLogger(), testDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AdminRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 with no notifications service got %d", resp.Code)
	}
}

func TestCheckoutReplaysIdempotentRequests(t *testing.T) {
	deps := testDeps()
	checkoutSvc := &stubCheckoutService{}
	deps.Checkout = checkoutSvc
	deps.IdempotencyStore = newMemoryIdempotencyStore()
	router := NewRouter(testConfig(), testLogger(), deps)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"product_slug":"led-lamp"}`))
		req.Header.Set("Idempotency-Key", "abc-123")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	first := send()
	second := send()
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("unexpected statuses %d / %d", first.Code, second.Code)
	}
	if checkoutSvc.calls != 1 {
		t.Fatalf("expected one checkout session, got %d", checkoutSvc.calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected replayed body, got %s vs %s", first.Body.String(), second.Body.String())
	}
}

func TestOrderStatusRequiresIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	deps := testDeps()
	deps.IdempotencyStore = newMemoryIdempotencyStore()
	router := NewRouter(cfg, testLogger(), deps)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/1/status", strings.NewReader(`{"status":"shipped"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.AdminRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	deps := testDeps()
	deps.HTTPMetrics = metrics.NewHTTPMetrics(reg)
	deps.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	router := NewRouter(testConfig(), testLogger(), deps)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in exposition, got %s", resp.Body.String())
	}
}
