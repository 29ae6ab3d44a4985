package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
)

func TestIsSlug(t *testing.T) {
	valid := []string{"led-lamp", "abc", "a1-b2-c3", strings.Repeat("a", 100)}
	for _, s := range valid {
		if !IsSlug(s) {
			t.Fatalf("expected %q to be a valid slug", s)
		}
	}
	invalid := []string{"ab", "Led-Lamp", "led--lamp", "-led", "led-", "led lamp", strings.Repeat("a", 101), "led_lamp"}
	for _, s := range invalid {
		if IsSlug(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

type slugPayload struct {
	Slug  string `json:"slug" validate:"required,slug"`
	Image string `json:"image,omitempty" validate:"omitempty,httpurl"`
}

func TestDecodeJSONBodyCustomTags(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"slug":"Bad Slug","image":"ftp://x"}`))
	var payload slugPayload
	err := DecodeJSONBody(req, &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if _, ok := details["slug"]; !ok {
		t.Fatalf("expected slug detail, got %v", details)
	}
	if _, ok := details["image"]; !ok {
		t.Fatalf("expected image detail, got %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"slug":"good-slug","extra":1}`))
	var payload slugPayload
	if err := DecodeJSONBody(req, &payload); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?days=30&bad=x&big=999", nil)
	if v, err := ParseQueryInt(req, "days", 7, 1, 365); err != nil || v != 30 {
		t.Fatalf("expected 30, got %d err=%v", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 7, 1, 365); err != nil || v != 7 {
		t.Fatalf("expected default 7, got %d err=%v", v, err)
	}
	if _, err := ParseQueryInt(req, "bad", 7, 1, 365); err == nil {
		t.Fatal("expected numeric error")
	}
	if _, err := ParseQueryInt(req, "big", 7, 1, 365); err == nil {
		t.Fatal("expected range error")
	}
}

func TestParseQueryBoolAndFloat(t *testing.T) {
	req := httptest.NewRequest("GET", "/?unread_only=true&min=12.5", nil)
	if v, err := ParseQueryBool(req, "unread_only", false); err != nil || !v {
		t.Fatalf("expected true, got %v err=%v", v, err)
	}
	f, err := ParseQueryOptionalFloat(req, "min", 0, 100)
	if err != nil || f == nil || *f != 12.5 {
		t.Fatalf("expected 12.5, got %v err=%v", f, err)
	}
	f, err = ParseQueryOptionalFloat(req, "absent", 0, 100)
	if err != nil || f != nil {
		t.Fatalf("expected nil, got %v err=%v", f, err)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc.def"); err != nil || tok != "abc.def" {
		t.Fatalf("unexpected token %q err=%v", tok, err)
	}
	if _, err := BearerToken("Basic abc"); err == nil {
		t.Fatal("expected basic auth rejected")
	}
	if _, err := BearerToken("Bearer   "); err == nil {
		t.Fatal("expected empty bearer rejected")
	}
	if tok, err := BearerToken("  bearer   abc.def "); err != nil || tok != "abc.def" {
		t.Fatalf("expected lenient scheme parsing, got %q err=%v", tok, err)
	}
	if _, err := BearerToken("Bearer abc def"); err == nil {
		t.Fatal("expected token with spaces rejected")
	}
}

func TestParsePathID(t *testing.T) {
	if id, err := ParsePathID("42", "order_id"); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d err=%v", id, err)
	}
	if _, err := ParsePathID("0", "order_id"); err == nil {
		t.Fatal("expected zero rejected")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  flash sale  ", 0); got != "flash sale" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := SanitizeString("ñandú lamp", 5); got != "ñandú" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if got := SanitizeString("abc def", 4); got != "abc" {
		t.Fatalf("expected trailing space trimmed after cap, got %q", got)
	}
}

func TestNormalizeToken(t *testing.T) {
	if got := NormalizeToken("  Shipped "); got != "shipped" {
		t.Fatalf("expected shipped, got %q", got)
	}
}
