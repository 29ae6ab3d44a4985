package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	internalanalytics "github.com/angelmondragon/urgency-engine/internal/analytics"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

type stubAnalyticsService struct {
	days  []int
	limit int
}

func (s *stubAnalyticsService) AdminStats(context.Context) (*internalanalytics.AdminStats, error) {
	return &internalanalytics.AdminStats{OrdersToday: 4, LiveProducts: 2}, nil
}

func (s *stubAnalyticsService) Overview(_ context.Context, days int) (*internalanalytics.Overview, error) {
	s.days = append(s.days, days)
	return &internalanalytics.Overview{TotalOrders: 9}, nil
}

func (s *stubAnalyticsService) RevenueSeries(_ context.Context, days int) ([]internalanalytics.RevenuePoint, error) {
	s.days = append(s.days, days)
	return []internalanalytics.RevenuePoint{{Date: "2026-01-01"}}, nil
}

func (s *stubAnalyticsService) OrdersSeries(_ context.Context, days int) ([]internalanalytics.OrdersPoint, error) {
	s.days = append(s.days, days)
	return nil, nil
}

func (s *stubAnalyticsService) TopProducts(_ context.Context, days, limit int) ([]internalanalytics.TopProduct, error) {
	s.days = append(s.days, days)
	s.limit = limit
	return []internalanalytics.TopProduct{{ProductID: 3, Name: "Lamp"}}, nil
}

func (s *stubAnalyticsService) Funnel(_ context.Context, days int) (*internalanalytics.Funnel, error) {
	s.days = append(s.days, days)
	return &internalanalytics.Funnel{Views: 10}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestWindowDefaults(t *testing.T) {
	stub := &stubAnalyticsService{}
	cases := []struct {
		handler http.HandlerFunc
		want    int
	}{
		{Overview(stub, testLogger()), defaultWindowDays},
		{Revenue(stub, testLogger()), defaultWindowDays},
		{Funnel(stub, testLogger()), defaultFunnelDays},
	}
	for i, tc := range cases {
		resp := httptest.NewRecorder()
		tc.handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("case %d: unexpected status %d", i, resp.Code)
		}
		if got := stub.days[len(stub.days)-1]; got != tc.want {
			t.Fatalf("case %d: expected %d days, got %d", i, tc.want, got)
		}
	}
}

func TestDaysOutOfRangeRejected(t *testing.T) {
	stub := &stubAnalyticsService{}
	resp := httptest.NewRecorder()
	Funnel(stub, testLogger()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?days=120", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for days above funnel max, got %d", resp.Code)
	}
	if len(stub.days) != 0 {
		t.Fatal("service should not be invoked on invalid query")
	}
}

func TestTopProductsPassesLimit(t *testing.T) {
	stub := &stubAnalyticsService{}
	resp := httptest.NewRecorder()
	TopProducts(stub, testLogger()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?days=14&limit=5", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if stub.days[0] != 14 || stub.limit != 5 {
		t.Fatalf("unexpected args days=%v limit=%d", stub.days, stub.limit)
	}

	var envelope struct {
		Data []internalanalytics.TopProduct `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ProductID != 3 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestStatsNilService(t *testing.T) {
	resp := httptest.NewRecorder()
	Stats(nil, testLogger()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without service, got %d", resp.Code)
	}
}
