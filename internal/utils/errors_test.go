package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestUserMessage(t *testing.T) {
	base := errors.New("dial tcp: refused")
	wrapped := fmt.Errorf("predict: %w", NewAppError("predict", "Model artifacts not loaded.", base))

	if got := UserMessage(wrapped, "fallback"); got != "Model artifacts not loaded." {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("AppError must unwrap to its cause")
	}
	if got := UserMessage(base, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
