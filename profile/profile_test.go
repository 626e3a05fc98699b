package profile

import (
	"context"
	"runtime/pprof"
	"testing"
)

func TestProfiler_StartDisabled(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{"empty mode", Profiler{}},
		{"unknown mode", Profiler{Mode: "nope", Path: t.TempDir(), Quiet: true}},
		{"quiet is not a mode", Profiler{Mode: "quiet", Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop := tt.p.Start()
			if _, ok := stop.(ignore); !ok {
				t.Errorf("Start() = %T, want no-op", stop)
			}

			stop.Stop()
		})
	}
}

func TestEnabled_MatchesModes(t *testing.T) {
	if Enabled() != (len(Modes()) > 0) {
		t.Errorf("Enabled() = %v with modes %v", Enabled(), Modes())
	}

	for _, m := range Modes() {
		if m == "quiet" {
			t.Error("Modes() lists quiet")
		}
	}
}

func TestDo_LabelsContext(t *testing.T) {
	var (
		got string
		ok  bool
	)

	Do(context.Background(), "gear * 2", func(ctx context.Context) {
		got, ok = pprof.Label(ctx, LabelExpression)
	})

	if !ok || got != "gear * 2" {
		t.Errorf("label = %q, %v; want %q", got, ok, "gear * 2")
	}
}
