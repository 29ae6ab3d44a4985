package validators

import (
	"cmp"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

// maxOffset bounds deep paging on offset listings.
const maxOffset = 1_000_000

func queryParam(r *http.Request, key string) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	return raw, raw != ""
}

func invalidQuery(key, msg string, extra map[string]any) *pkgerrors.Error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// parseRanged parses raw and checks it falls inside [min, max].
func parseRanged[T cmp.Ordered](key, raw string, parse func(string) (T, error), min, max T) (T, error) {
	var zero T
	value, err := parse(raw)
	if err != nil {
		return zero, invalidQuery(key, "query parameter must be numeric", nil)
	}
	if value < min || value > max {
		return zero, invalidQuery(key, "query parameter out of range", map[string]any{"min": min, "max": max})
	}
	return value, nil
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw, ok := queryParam(r, key)
	if !ok {
		return defaultVal, nil
	}
	return parseRanged(key, raw, strconv.Atoi, min, max)
}

// ParseQueryOptionalFloat returns nil when the parameter is absent.
func ParseQueryOptionalFloat(r *http.Request, key string, min, max float64) (*float64, error) {
	raw, ok := queryParam(r, key)
	if !ok {
		return nil, nil
	}
	value, err := parseRanged(key, raw, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }, min, max)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// ParseQueryOptionalInt64 returns nil when the parameter is absent.
func ParseQueryOptionalInt64(r *http.Request, key string) (*int64, error) {
	raw, ok := queryParam(r, key)
	if !ok {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return nil, invalidQuery(key, "query parameter must be a non-negative integer", nil)
	}
	return &value, nil
}

func ParseQueryBool(r *http.Request, key string, defaultVal bool) (bool, error) {
	raw, ok := queryParam(r, key)
	if !ok {
		return defaultVal, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidQuery(key, "query parameter must be a boolean", nil)
	}
	return value, nil
}

// ParseQueryEnum accepts one of allowed, case-insensitively. An absent
// parameter yields the empty string.
func ParseQueryEnum(r *http.Request, key string, allowed ...string) (string, error) {
	raw, ok := queryParam(r, key)
	if !ok {
		return "", nil
	}
	for _, candidate := range allowed {
		if strings.EqualFold(raw, candidate) {
			return candidate, nil
		}
	}
	return "", invalidQuery(key, "query parameter has an unsupported value", map[string]any{"valid_values": allowed})
}

// ParseLimitOffset reads limit and offset with the shared paging defaults.
func ParseLimitOffset(r *http.Request) (pagination.Params, error) {
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	offset, err := ParseQueryInt(r, "offset", 0, 0, maxOffset)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Offset: offset}, nil
}

// ParsePathID parses a positive integer id from a URL path segment.
func ParsePathID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
