package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	pkgredis "github.com/angelmondragon/urgency-engine/pkg/redis"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255

	standardReplayTTL = 24 * time.Hour
	fulfillReplayTTL  = 7 * 24 * time.Hour
	inFlightTTL       = time.Minute
)

// replayRule marks a write endpoint whose response is stored and replayed
// under the caller's Idempotency-Key.
type replayRule struct {
	method   string
	prefix   string
	suffix   string
	ttl      time.Duration
	optional bool
}

func (r replayRule) matches(method, path string) bool {
	if r.method != method {
		return false
	}
	if r.suffix == "" {
		return path == r.prefix
	}
	return strings.HasPrefix(path, r.prefix) && strings.HasSuffix(path, r.suffix) && len(path) > len(r.prefix)+len(r.suffix)
}

var replayRules = []replayRule{
	{method: http.MethodPost, prefix: "/api/v1/checkout", ttl: standardReplayTTL, optional: true},
	{method: http.MethodPatch, prefix: "/api/admin/v1/orders/", suffix: "/status", ttl: standardReplayTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/orders/", suffix: "/tracking", ttl: standardReplayTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/fulfillment/orders/", suffix: "/tracking", ttl: standardReplayTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/fulfillment/orders/", suffix: "/mark-delivered", ttl: standardReplayTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/import/create-product", ttl: standardReplayTTL, optional: true},
	{method: http.MethodPost, prefix: "/api/admin/v1/trends/import", ttl: standardReplayTTL, optional: true},
	{method: http.MethodPost, prefix: "/api/admin/v1/fulfillment/orders/", suffix: "/auto-fulfill", ttl: fulfillReplayTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/fulfillment/process-queue", ttl: fulfillReplayTTL, optional: true},
	{method: http.MethodPost, prefix: "/api/admin/v1/queue/", suffix: "/approve", ttl: fulfillReplayTTL, optional: true},
}

// storedResponse is what lands in redis. A record without Status is a
// reservation held while the first request is still running.
type storedResponse struct {
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body,omitempty"`
	RequestHash string `json:"request_hash"`
	StoredAt    string `json:"stored_at"`
}

func (s storedResponse) completed() bool { return s.Status != 0 }

// Idempotency replays the first response for a repeated Idempotency-Key on
// the write endpoints listed in replayRules. Server errors are not stored so
// the caller can retry with the same key.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := ruleFor(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if clientKey == "" && rule.optional {
				next.ServeHTTP(w, r)
				return
			}
			if clientKey == "" || len(clientKey) > maxIdempotencyKeyLength {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required").
					WithDetails(map[string]any{"header": IdempotencyKeyHeader, "max_length": maxIdempotencyKeyLength}))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
						WithDetails(map[string]any{"max_bytes": tooLarge.Limit}))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := requestHash(r.Method, r.URL.Path, body)
			key := store.IdempotencyKey(replayScope(r), clientKey)

			reserved, err := reserve(r.Context(), store, key, hash)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				handleExisting(r.Context(), store, logg, w, key, hash)
				return
			}

			var captured bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&captured)
			next.ServeHTTP(ww, r)

			ctx := context.WithoutCancel(r.Context())
			status := statusOf(ww)
			if status >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil {
					logError(ctx, logg, "idempotency.release_failed", err)
				}
				return
			}
			record := storedResponse{
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(captured.Bytes()),
				RequestHash: hash,
				StoredAt:    time.Now().UTC().Format(time.RFC3339),
			}
			// overwrite the reservation so the key stays held
			if err := save(ctx, store, key, record, rule.ttl); err != nil {
				logError(ctx, logg, "idempotency.persist_failed", err)
				if err := store.Del(ctx, key); err != nil {
					logError(ctx, logg, "idempotency.release_failed", err)
				}
			}
		})
	}
}

func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string) (bool, error) {
	payload, err := json.Marshal(storedResponse{RequestHash: hash, StoredAt: time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(payload), inFlightTTL)
}

func save(ctx context.Context, store pkgredis.IdempotencyStore, key string, record storedResponse, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(payload), ttl)
}

func handleExisting(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, w http.ResponseWriter, key, hash string) {
	raw, err := store.Get(ctx, key)
	if err != nil && !pkgredis.IsNil(err) {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}
	if raw == "" {
		// reservation expired between SetNX and Get
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this Idempotency-Key is still in progress"))
		return
	}

	var record storedResponse
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != hash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key reused with a different request"))
		return
	}
	if !record.completed() {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this Idempotency-Key is still in progress"))
		return
	}

	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(IdempotencyReplayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(body)
}

// replayScope keeps keys from different admins and endpoints apart.
func replayScope(r *http.Request) string {
	actor := AdminEmailFromContext(r.Context())
	if actor == "" {
		actor = "public"
	}
	return strings.Join([]string{actor, r.Method, r.URL.Path}, "|")
}

func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	_, _ = io.WriteString(h, method+" "+path+"\n")
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func ruleFor(r *http.Request) (replayRule, bool) {
	if r == nil {
		return replayRule{}, false
	}
	path := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil {
		// group middleware only sees a partial pattern ending in "/*"
		if pattern := rc.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "*") {
			path = pattern
		}
	}
	return matchReplayRule(r.Method, path)
}

func matchReplayRule(method, path string) (replayRule, bool) {
	for _, rule := range replayRules {
		if rule.matches(method, path) {
			return rule, true
		}
	}
	return replayRule{}, false
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
