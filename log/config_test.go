package log

import (
	"bytes"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"warn+2", Level(slog.LevelWarn + 2)},
		{"debug-4", LevelTrace},
		{"", DefaultLevel},
		{"verbose", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"", DefaultFormat},
		{"logfmt", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelsAndFormats(t *testing.T) {
	t.Parallel()

	levelNames := slices.Collect(Levels())
	if diff := cmp.Diff([]string{"trace", "debug", "info", "warn", "error"}, levelNames); diff != "" {
		t.Errorf("Levels() mismatch (-want +got):\n%s", diff)
	}

	// Every listed name must parse back to a distinct level.
	seen := map[Level]bool{}

	for _, name := range levelNames {
		seen[ParseLevel(name)] = true
	}

	if len(seen) != len(levelNames) {
		t.Errorf("Levels() names parse to %d levels, want %d", len(seen), len(levelNames))
	}

	formatNames := slices.Collect(Formats())
	if diff := cmp.Diff([]string{"json", "text"}, formatNames); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}

	// Consumers stop early without a panic.
	for range Levels() {
		break
	}
}

func TestLevelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want string
	}{
		{slog.Level(LevelTrace), "TRACE"},
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelError, "ERROR"},
		{slog.LevelWarn + 2, "WARN+2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := levelName(tt.in); got != tt.want {
				t.Errorf("levelName(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"RFC3339", time.RFC3339},
		{"rfc3339-nano", time.RFC3339Nano},
		{"RFC3339Nano", time.RFC3339Nano},
		{"date_time", time.DateTime},
		{"Kitchen", time.Kitchen},
		{"none", ""},
		{"", ""},
		{"15:04", "15:04"},
		{"2006/01/02", "2006/01/02"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := timeLayout(tt.in); got != tt.want {
				t.Errorf("timeLayout(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfig_With(t *testing.T) {
	t.Parallel()

	base := defaults(nil)

	got := base.with(
		WithLevel(LevelTrace),
		WithFormat(FormatText),
		WithTimeLayout("kitchen"),
		WithCaller(true),
		WithPretty(false),
	)

	if got.level != LevelTrace || got.format != FormatText ||
		got.layout != time.Kitchen || !got.caller || got.pretty {
		t.Errorf("with() = %+v", got)
	}

	// The receiver is a copy; options never reach the original.
	if base.level != DefaultLevel || base.format != DefaultFormat ||
		base.layout != DefaultTimeLayout || base.caller || !base.pretty {
		t.Errorf("with() modified its receiver: %+v", base)
	}

	if base.with(WithOutput(nil)).output == nil {
		t.Error("WithOutput(nil) left a nil writer")
	}
}

func TestConfig_ReplaceAttr(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	tests := []struct {
		name   string
		layout string
		groups []string
		in     slog.Attr
		want   slog.Attr
	}{
		{
			name:   "time formatted",
			layout: time.DateTime,
			in:     slog.Time(slog.TimeKey, stamp),
			want:   slog.String(slog.TimeKey, "2026-03-14 15:09:26"),
		},
		{
			name: "time dropped",
			in:   slog.Time(slog.TimeKey, stamp),
			want: slog.Attr{},
		},
		{
			name: "level named",
			in:   slog.Any(slog.LevelKey, slog.Level(LevelTrace)),
			want: slog.String(slog.LevelKey, "TRACE"),
		},
		{
			name:   "grouped attrs untouched",
			groups: []string{"g"},
			in:     slog.Time(slog.TimeKey, stamp),
			want:   slog.Time(slog.TimeKey, stamp),
		},
		{
			name: "other attrs untouched",
			in:   slog.String("source", "x = 1"),
			want: slog.String("source", "x = 1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := defaults(nil).with(WithTimeLayout(tt.layout))

			if got := c.replaceAttr(tt.groups, tt.in); !got.Equal(tt.want) {
				t.Errorf("replaceAttr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Handler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   []Option
		assert func(slog.Handler) bool
	}{
		{"pretty json", nil, func(h slog.Handler) bool {
			_, ok := h.(*prettyJSONHandler)

			return ok
		}},
		{"pretty text", []Option{WithFormat(FormatText)}, func(h slog.Handler) bool {
			_, ok := h.(*prettyTextHandler)

			return ok
		}},
		{"plain json", []Option{WithPretty(false)}, func(h slog.Handler) bool {
			_, ok := h.(*slog.JSONHandler)

			return ok
		}},
		{"plain text", []Option{WithPretty(false), WithFormat(FormatText)}, func(h slog.Handler) bool {
			_, ok := h.(*slog.TextHandler)

			return ok
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := defaults(new(bytes.Buffer)).with(tt.opts...).handler()
			if !tt.assert(h) {
				t.Errorf("handler() = %T", h)
			}
		})
	}
}
