package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

// initContext parses args against cli with the config path var set.
func initContext(t *testing.T, cli any, confPath string, args ...string) context.Context {
	t.Helper()

	parser, err := kong.New(cli, kong.Vars{
		ConfigIdentifier:    confPath,
		NamespaceIdentifier: "config",
	})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	existing := func(t *testing.T, path string) {
		if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string)
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, setup: existing},
		{name: "fail_without_force", setup: existing, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			var cli struct {
				At string `name:"at"`
			}

			ctx := initContext(t, &cli, confPath, "--at=comp")

			err := (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) || (err == nil) != (tt.wantErr == nil) {
				t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				if !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
				}

				return
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, content)
			}

			if diff := cmp.Diff(map[string]any{"at": "comp"}, got["config"]); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestInitDocument tests that document keeps flag order and drops empty
// values.
func TestInitDocument(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool     `name:"verbose"`
		Output  string   `name:"output"`
		Count   int      `name:"count"`
		Empty   string   `name:"empty"`
		Tags    []string `name:"tags"`
		Secret  string   `name:"secret"  hidden:""`
	}

	ctx := initContext(t, &cli, "unused",
		"--verbose", "--output=test.txt", "--count=5", "--tags=a,b", "--secret=x")

	doc := (&Init{}).document(ctx)
	if len(doc) != 1 || doc[0].Key != "config" {
		t.Fatalf("document() = %v, want one config namespace", doc)
	}

	flags, ok := doc[0].Value.(yaml.MapSlice)
	if !ok {
		t.Fatalf("namespace value is %T, want yaml.MapSlice", doc[0].Value)
	}

	want := yaml.MapSlice{
		{Key: "verbose", Value: true},
		{Key: "output", Value: "test.txt"},
		{Key: "count", Value: 5},
		{Key: "tags", Value: []string{"a", "b"}},
	}

	if diff := cmp.Diff(want, flags); diff != "" {
		t.Errorf("document() mismatch (-want +got):\n%s", diff)
	}
}

func TestInitFlagValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"string", "test", "test"},
		{"empty slice", []string{}, nil},
		{"slice", []string{"a"}, []string{"a"}},
		{"bool", true, true},
		{"int", 42, 42},
		{"float", 3.14, 3.14},
		{"stringer", logStringer("debug"), "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, flagValue(tt.in)); diff != "" {
				t.Errorf("flagValue() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type logStringer string

func (s logStringer) String() string { return string(s) }

// TestInitWithInvalidPath tests init with a config path whose directory
// does not exist.
func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	var cli struct{}

	confPath := filepath.Join(t.TempDir(), "nonexistent", "config.yaml")
	ctx := initContext(t, &cli, confPath)

	if err := (&Init{}).Run(ctx); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}
