package cmd

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/scopexpr/log"
	"github.com/ardnew/scopexpr/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, i.document(ctx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// document builds the configuration file contents from current flag values,
// in flag order, under the configured namespace key.
func (i *Init) document(ctx context.Context) yaml.MapSlice {
	ktx := kongContextFrom(ctx)

	namespace, ok := ktx.Model.Vars()[NamespaceIdentifier]
	if !ok {
		namespace = ConfigIdentifier
	}

	ignore := []string{"help", "version", profile.Tag}

	skip := func(flag *kong.Flag) bool {
		return flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		})
	}

	var flags yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if skip(flag) {
			continue
		}

		if v := flagValue(ktx.FlagValue(flag)); v != nil {
			flags = append(flags, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return yaml.MapSlice{{Key: namespace, Value: flags}}
}

// flagValue returns the value written for a flag, or nil to omit it.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case bool, int, int64, uint, uint64, float64:
		return v

	default:
		if s, ok := val.(interface{ String() string }); ok {
			return s.String()
		}

		return val
	}
}
