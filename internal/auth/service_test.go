package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/urgency-engine/pkg/auth"
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "urgency-engine",
	ExpirationMinutes: 30,
}

func TestServiceLoginMintsAdminToken(t *testing.T) {
	svc := buildTestService(t, config.AdminConfig{
		Email:        "Ops@Example.com",
		PasswordHash: mustHashPassword(t, "launch-day"),
	})
	fixed := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return fixed }

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " ops@example.com ", Password: "launch-day"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.TokenType != "bearer" || resp.Email != "ops@example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !resp.ExpiresAt.Equal(fixed.Add(30 * time.Minute)) {
		t.Fatalf("expected expiry 30m after login, got %s", resp.ExpiresAt)
	}

	svc.(*service).now = time.Now
	resp, err = svc.Login(context.Background(), LoginRequest{Email: "ops@example.com", Password: "launch-day"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.AdminRoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
	if claims.Email != "ops@example.com" {
		t.Fatalf("unexpected email claim %s", claims.Email)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := buildTestService(t, config.AdminConfig{
		Email:        "ops@example.com",
		PasswordHash: mustHashPassword(t, "launch-day"),
	})

	cases := []LoginRequest{
		{Email: "ops@example.com", Password: "wrong"},
		{Email: "intruder@example.com", Password: "launch-day"},
		{Email: "", Password: "launch-day"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
	}
}

func TestServiceLoginWithoutConfiguredAdmin(t *testing.T) {
	svc := buildTestService(t, config.AdminConfig{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ops@example.com", Password: "anything"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without jwt secret")
	}
}

func TestNewServiceRejectsMalformedAdminHash(t *testing.T) {
	_, err := NewService(ServiceParams{
		Admin:     config.AdminConfig{Email: "ops@example.com", PasswordHash: "plaintext-oops"},
		JWTConfig: testJWT,
	})
	if err == nil {
		t.Fatal("expected malformed hash to fail construction")
	}
}

func buildTestService(t *testing.T, admin config.AdminConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Admin: admin, JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}
