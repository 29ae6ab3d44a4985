package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/urgency-engine/api/middleware"
	"github.com/angelmondragon/urgency-engine/internal/auth"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
)

type stubAuthService struct {
	resp  *auth.LoginResponse
	err   error
	calls []auth.LoginRequest
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.calls = append(s.calls, req)
	return s.resp, s.err
}

func postLogin(svc auth.Service, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AdminAuthLogin(svc, testLogger()).ServeHTTP(resp, req)
	return resp
}

func TestAdminAuthLoginSuccess(t *testing.T) {
	stub := &stubAuthService{resp: &auth.LoginResponse{
		AccessToken: "token-123",
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
		Email:       "ops@example.com",
		Role:        enums.AdminRoleAdmin,
	}}

	resp := postLogin(stub, `{"email":"ops@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
	require.Len(t, stub.calls, 1)
	assert.Equal(t, "ops@example.com", stub.calls[0].Email)

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "token-123", envelope.Data.AccessToken)
	assert.Equal(t, enums.AdminRoleAdmin, envelope.Data.Role)
}

func TestAdminAuthLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubAuthService
		body   string
		status int
		called bool
	}{
		{
			name:   "bad credentials",
			stub:   &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")},
			body:   `{"email":"ops@example.com","password":"wrong"}`,
			status: http.StatusUnauthorized,
			called: true,
		},
		{
			name:   "invalid email",
			stub:   &stubAuthService{},
			body:   `{"email":"not-an-email"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			stub:   &stubAuthService{},
			body:   `{"email":"ops@example.com","password":"x","role":"admin"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postLogin(tt.stub, tt.body)
			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, tt.called, len(tt.stub.calls) > 0)
			assert.Empty(t, resp.Header().Get("Cache-Control"))
		})
	}
}

func TestAdminAuthLoginWithoutService(t *testing.T) {
	resp := postLogin(nil, `{"email":"ops@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestAdminAuthMe(t *testing.T) {
	handler := AdminAuthMe(testLogger())

	anonymous := httptest.NewRecorder()
	handler.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/api/admin/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/auth/me", nil)
	req = req.WithContext(middleware.WithOperator(req.Context(), middleware.Operator{
		Email:   "ops@example.com",
		Role:    enums.AdminRoleAdmin,
		TokenID: "jti-9",
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":{"email":"ops@example.com","role":"admin","token_id":"jti-9"}}`, resp.Body.String())
}
