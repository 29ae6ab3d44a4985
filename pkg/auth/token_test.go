package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "urgency-engine",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		Email: " Owner@Example.com ",
		Role:  enums.AdminRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Email != "owner@example.com" {
		t.Fatalf("expected normalized email, got %s", claims.Email)
	}
	if claims.Role != enums.AdminRoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be generated")
	}
	wantExpiry := now.Add(30 * time.Minute).Unix()
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() != wantExpiry {
		t.Fatalf("expected expiry %d, got %v", wantExpiry, claims.ExpiresAt)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "urgency-engine", ExpirationMinutes: 5}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Email: "a@b.co", Role: enums.AdminRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "urgency-engine", ExpirationMinutes: 1}
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{Email: "a@b.co", Role: enums.AdminRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = ParseAccessToken(cfg, token)
	if !errors.Is(err, ErrTokenExpired) || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestMintAccessTokenValidatesPayload(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "urgency-engine", ExpirationMinutes: 5}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.AdminRoleAdmin}); err == nil {
		t.Fatal("expected missing email error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Email: "a@b.co", Role: "root"}); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestParseAccessTokenToleratesSmallSkew(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "urgency-engine", ExpirationMinutes: 1}
	token, err := MintAccessToken(cfg, time.Now().Add(-70*time.Second), AccessTokenPayload{Email: "a@b.co", Role: enums.AdminRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err != nil {
		t.Fatalf("expected token within leeway to parse, got %v", err)
	}
}

func TestParseAccessTokenRejectsForeignIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "urgency-engine", ExpirationMinutes: 5}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Email: "a@b.co", Role: enums.AdminRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected issuer mismatch to be invalid, got %v", err)
	}
}
