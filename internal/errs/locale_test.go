package errs

import (
	"errors"
	"testing"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"context deadline exceeded", "provider_timeout"},
		{"Get https://x: net/http: timeout awaiting headers", "provider_timeout"},
		{"unexpected status 429", "rate_limited"},
		{"upstream said Too Many Requests", "rate_limited"},
		{"unexpected status 404", "not_found"},
		{"video not found", "not_found"},
		{"This video is unavailable", "video_unavailable"},
		{"something completely different", "upstream_failed"},
	}

	for _, tt := range tests {
		if got := KeyFor(tt.raw); got != tt.want {
			t.Errorf("KeyFor(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestLocalize_FallsBackToArabic(t *testing.T) {
	if Localize("not_found", "ar") == "" {
		t.Error("arabic message should not be empty")
	}
	if Localize("not_found", "") == Localize("not_found", "en") {
		t.Error("default language should be arabic, not english")
	}
	if Localize("no-such-key", "en") != Localize("internal", "en") {
		t.Error("unknown keys should resolve to the generic message")
	}
}

func TestLocalizeError_Aggregate(t *testing.T) {
	ag := &AggregateError{
		Op:     "search",
		Stages: []string{"innertube", "invidious", "piped"},
		Last:   errors.New("unexpected status 429"),
	}
	got := LocalizeError(ag, "en")
	want := Localize("rate_limited", "en")
	if got != want {
		t.Errorf("LocalizeError = %q, want %q", got, want)
	}
}

func TestLocalizeError_NeverLeaksRawText(t *testing.T) {
	raw := "pgx: connection refused at 10.0.0.5"
	msg := LocalizeError(errors.New(raw), "en")
	if msg == raw {
		t.Error("raw error text must never reach users")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Provider("innertube", cause)
	if !errors.Is(err, cause) {
		t.Error("Provider error should wrap its cause")
	}
	if _, ok := AsKind(err); !ok {
		t.Error("AsKind should find classified error")
	}
}
