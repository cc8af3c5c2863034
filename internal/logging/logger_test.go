package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"unknown", zerolog.WarnLevel},
		{"", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Out: &buf})
	log.Debug().Str("series", "income").Msg("hello")

	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "{") {
		t.Fatalf("expected json output, got %q", out)
	}
	if !strings.Contains(out, `"series":"income"`) {
		t.Errorf("missing field in %q", out)
	}
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "console", Out: &buf})
	log.Info().Msg("quiet")
	log.Warn().Msg("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn line missing: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no color codes for non-terminal writer: %q", out)
	}
}
