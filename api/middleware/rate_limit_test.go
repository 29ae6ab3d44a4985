package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newCountingStore() *countingStore {
	return &countingStore{counts: map[string]int64{}}
}

func (s *countingStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func chatRequest(body, forwardedFor string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chatbot/message", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:4100"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	return req
}

func passThrough() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitHandlerStillReadsBody(t *testing.T) {
	policy := NewRateLimitPolicy("chatbot_message", time.Minute, 5).ByField("session_id", 5)
	var seen string
	handler := RateLimit(policy, newCountingStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))

	body := `{"session_id":"abc-123","message":"where is my order"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, chatRequest(body, ""))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, body, seen)
}

func TestRateLimitSessionCounter(t *testing.T) {
	store := newCountingStore()
	policy := NewRateLimitPolicy("chatbot_message", 30*time.Second, 0).ByField("session_id", 2)
	handler := RateLimit(policy, store, nil)(passThrough())

	// Session ids are compared after trimming and lowercasing.
	sessions := []string{"Abc-123", " abc-123", "ABC-123"}
	codes := make([]int, 0, len(sessions))
	var last *httptest.ResponseRecorder
	for _, session := range sessions {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, chatRequest(`{"session_id":"`+session+`"}`, ""))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "30", last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), `"code":"RATE_LIMIT_EXCEEDED"`)
	require.Len(t, store.counts, 1)
	for key := range store.counts {
		assert.True(t, strings.HasPrefix(key, "urgency:rl:chatbot_message:session_id:"), key)
		assert.NotContains(t, key, "abc-123")
	}
}

func TestRateLimitClientIP(t *testing.T) {
	cases := []struct {
		name      string
		forwarded string
		realIP    string
		want      string
	}{
		{name: "first forwarded hop", forwarded: "198.51.100.4, 10.0.0.1", want: "198.51.100.4"},
		{name: "real ip header", realIP: "198.51.100.9", want: "198.51.100.9"},
		{name: "remote addr", want: "203.0.113.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := chatRequest(`{}`, tc.forwarded)
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			assert.Equal(t, tc.want, clientIP(req))
		})
	}
}

func TestRateLimitPerIP(t *testing.T) {
	store := newCountingStore()
	handler := RateLimit(NewRateLimitPolicy("chatbot_message", time.Minute, 1), store, nil)(passThrough())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, chatRequest(`{}`, "198.51.100.4, 10.0.0.1"))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, chatRequest(`{}`, "198.51.100.4"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.EqualValues(t, 2, store.counts["urgency:rl:chatbot_message:ip:198.51.100.4"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, chatRequest(`{}`, "198.51.100.5"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitStoreFailure(t *testing.T) {
	store := newCountingStore()
	store.err = errors.New("redis: connection refused")
	handler := RateLimit(NewRateLimitPolicy("chatbot_message", time.Minute, 3), store, nil)(passThrough())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, chatRequest(`{}`, ""))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	cases := map[string]struct {
		policy RateLimitPolicy
		store  rateLimiterStore
	}{
		"zero window": {policy: NewRateLimitPolicy("chatbot_message", 0, 1), store: newCountingStore()},
		"no limits":   {policy: NewRateLimitPolicy("chatbot_message", time.Minute, 0), store: newCountingStore()},
		"nil store":   {policy: NewRateLimitPolicy("chatbot_message", time.Minute, 1)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := RateLimit(tc.policy, tc.store, nil)(passThrough())
			for i := 0; i < 3; i++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, chatRequest(`{}`, ""))
				assert.Equal(t, http.StatusNoContent, rec.Code)
			}
			if counting, ok := tc.store.(*countingStore); ok {
				assert.Empty(t, counting.counts)
			}
		})
	}
}
