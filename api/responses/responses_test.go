package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/types"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCreated(w, map[string]string{"slug": "led-lamp"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"slug":"led-lamp"}}`, w.Body.String())
}

func TestWriteErrorKeepsValidationDetailsAndRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set(RequestIDHeader, "req-42")
	err := pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
		WithDetails(map[string]any{"valid_values": []string{"pending", "shipped"}})
	WriteError(context.Background(), nil, w, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, string(pkgerrors.CodeValidation), apiErr.Code)
	assert.Equal(t, "invalid status", apiErr.Message)
	assert.NotNil(t, apiErr.Details)
	assert.Equal(t, "req-42", apiErr.RequestID)
}

func TestWriteErrorHidesUntypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("dial tcp 10.0.0.5:5432: refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, string(pkgerrors.CodeInternal), apiErr.Code)
	assert.NotContains(t, apiErr.Message, "10.0.0.5")
	assert.Nil(t, apiErr.Details)
}

func TestWriteErrorLogLevelFollowsStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{Output: buf})

	WriteError(context.Background(), logg, httptest.NewRecorder(),
		pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"step": "load_product"}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "request.rejected", entry["message"])
	assert.Equal(t, "load_product", entry["step"])

	buf.Reset()
	WriteError(context.Background(), logg, httptest.NewRecorder(),
		pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("timeout"), "call supplier"))
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "request.error", entry["message"])
}

func TestWriteJSONFallsBackWhenEncodingFails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]any{"bad": make(chan int)})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(pkgerrors.CodeInternal), decodeError(t, w).Code)
}
