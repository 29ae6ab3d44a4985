package security_test

import (
	"errors"
	"testing"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/security"
)

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := security.NewSealer(config.EncryptionConfig{Secret: "top-secret"})
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	token, err := sealer.SealMap(map[string]string{"access_token": "shpat_123"})
	if err != nil {
		t.Fatalf("SealMap: %v", err)
	}
	if token == "" || token == "shpat_123" {
		t.Fatalf("expected ciphertext, got %q", token)
	}

	values, err := sealer.OpenMap(token)
	if err != nil {
		t.Fatalf("OpenMap: %v", err)
	}
	if values["access_token"] != "shpat_123" {
		t.Fatalf("unexpected credentials %v", values)
	}
}

func TestSealerRejectsForeignKey(t *testing.T) {
	a, _ := security.NewSealer(config.EncryptionConfig{Secret: "one"})
	b, _ := security.NewSealer(config.EncryptionConfig{Secret: "two"})

	token, err := a.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := b.Open(token); !errors.Is(err, security.ErrDecryptFailed) {
		t.Fatalf("expected decrypt failure, got %v", err)
	}
	if _, err := a.Open("plaintext"); !errors.Is(err, security.ErrMalformedCiphertext) {
		t.Fatalf("expected malformed ciphertext, got %v", err)
	}
}

func TestNewSealerRequiresSecret(t *testing.T) {
	if _, err := security.NewSealer(config.EncryptionConfig{}); !errors.Is(err, security.ErrSealerSecretRequired) {
		t.Fatalf("expected secret required, got %v", err)
	}
}

func TestMask(t *testing.T) {
	if got := security.Mask("ck_1234567890"); got != "*********7890" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := security.Mask("abc"); got != "***" {
		t.Fatalf("unexpected short mask %q", got)
	}
}
