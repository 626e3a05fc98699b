package log_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/scopexpr/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger.Info("scope loaded", slog.String("path", "model.yaml"))
	logger.Debug("not written")
	// Output:
	// level=INFO msg="scope loaded" path=model.yaml
}

func Example_json() {
	logger := log.Make(os.Stdout, log.WithPretty(false), log.WithTimeLayout("none"))

	logger.Warn("attribute is private", slog.String("scope", "comp"))
	// Output:
	// {"level":"WARN","msg":"attribute is private","scope":"comp"}
}

func Example_trace() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger.TraceContext(context.Background(), "expression compiled",
		slog.String("source", "velocity * 2"))
	// Output:
	// level=TRACE msg="expression compiled" source="velocity * 2"
}

func ExampleLogger_With() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	comp := logger.With(slog.String("scope", "comp"))
	comp.Info("evaluate", slog.Float64("result", 2.5))
	logger.Info("done")
	// Output:
	// level=INFO msg=evaluate scope=comp result=2.5
	// level=INFO msg=done
}

func ExampleLogger_Wrap() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger.Info("dropped")
	logger.Wrap(log.WithLevel(log.LevelInfo)).Info("kept")
	// Output:
	// level=INFO msg=kept
}

func ExampleParseLevel() {
	for _, name := range []string{"trace", "WARN", "warn+2", "bogus"} {
		fmt.Printf("%s -> %v\n", name, log.ParseLevel(name))
	}
	// Output:
	// trace -> trace
	// WARN -> warn
	// warn+2 -> Level(6)
	// bogus -> info
}
