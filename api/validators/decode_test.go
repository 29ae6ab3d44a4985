package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
)

type lineItem struct {
	SKU string `json:"sku" validate:"required"`
}

type orderPayload struct {
	Email string     `json:"email" validate:"required,email"`
	Items []lineItem `json:"items" validate:"required,min=1,dive"`
}

func decodeBody(body string) (orderPayload, *pkgerrors.Error) {
	var payload orderPayload
	err := DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(body)), &payload)
	return payload, pkgerrors.As(err)
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty", "", "request body required"},
		{"truncated", `{"email":"a@b.co"`, "malformed JSON"},
		{"syntax", `{"email":}`, "malformed JSON"},
		{"wrong type", `{"email":"a@b.co","items":"sku-1"}`, "invalid request body"},
		{"unknown field", `{"email":"a@b.co","coupon":"X"}`, "invalid request body"},
		{"trailing object", `{"email":"a@b.co","items":[{"sku":"1"}]}{"email":"x"}`, "request body must contain a single JSON object"},
		{"too large", `{"email":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, "request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, typed := decodeBody(tt.body)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, tt.message, typed.Message())
		})
	}
}

func TestDecodeJSONBodyNamesNestedFields(t *testing.T) {
	_, typed := decodeBody(`{"email":"a@b.co","items":[{"sku":""}]}`)
	require.NotNil(t, typed)

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "details %T", typed.Details())
	assert.Equal(t, "is required", details["items[0].sku"])
}

func TestDecodeJSONBodyAcceptsTrailingWhitespace(t *testing.T) {
	payload, typed := decodeBody("{\"email\":\"a@b.co\",\"items\":[{\"sku\":\"lamp-1\"}]}\n\n")
	require.Nil(t, typed)
	assert.Equal(t, "lamp-1", payload.Items[0].SKU)
}

func TestParseQueryEnum(t *testing.T) {
	req := httptest.NewRequest("GET", "/?status=SHIPPED&bad=lost", nil)

	got, err := ParseQueryEnum(req, "status", "pending", "shipped")
	require.NoError(t, err)
	assert.Equal(t, "shipped", got)

	got, err = ParseQueryEnum(req, "absent", "pending")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseQueryEnum(req, "bad", "pending", "shipped")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseLimitOffset(t *testing.T) {
	page, err := ParseLimitOffset(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 50, page.Limit)
	assert.Zero(t, page.Offset)

	page, err = ParseLimitOffset(httptest.NewRequest("GET", "/?limit=10&offset=20", nil))
	require.NoError(t, err)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 20, page.Offset)

	_, err = ParseLimitOffset(httptest.NewRequest("GET", "/?limit=500", nil))
	assert.Error(t, err)
	_, err = ParseLimitOffset(httptest.NewRequest("GET", "/?offset=-1", nil))
	assert.Error(t, err)
}
