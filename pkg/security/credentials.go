package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"
)

const (
	sealedPrefix     = "v1:"
	keyDerivationIts = 100000
	nonceSize        = 24
	keySize          = 32
)

var (
	ErrSealerSecretRequired = errors.New("encryption secret is required")
	ErrMalformedCiphertext  = errors.New("malformed ciphertext")
	ErrDecryptFailed        = errors.New("decryption failed")
)

// Sealer encrypts integration credentials at rest with secretbox using a
// PBKDF2-SHA256 key derived from the configured secret.
type Sealer struct {
	key [keySize]byte
}

func NewSealer(cfg config.EncryptionConfig) (*Sealer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSealerSecretRequired
	}
	salt := cfg.Salt
	if salt == "" {
		salt = "urgency-engine-credentials"
	}
	derived := pbkdf2.Key([]byte(secret), []byte(salt), keyDerivationIts, keySize, sha256.New)
	s := &Sealer{}
	copy(s.key[:], derived)
	return s, nil
}

// Seal encrypts plaintext and returns a printable token.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal.
func (s *Sealer) Open(token string) ([]byte, error) {
	if !strings.HasPrefix(token, sealedPrefix) {
		return nil, ErrMalformedCiphertext
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, sealedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrMalformedCiphertext
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

// SealMap encrypts a credential map as JSON.
func (s *Sealer) SealMap(values map[string]string) (string, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}
	return s.Seal(payload)
}

// OpenMap decrypts a token produced by SealMap.
func (s *Sealer) OpenMap(token string) (map[string]string, error) {
	plain, err := s.Open(token)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := json.Unmarshal(plain, &out); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return out, nil
}

// Mask keeps the last four characters of a secret for display.
func Mask(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
