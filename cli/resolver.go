package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/scopexpr/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML config files. Flag
// values are read from the mapping stored under the top-level key name:
//
//	config:
//	  log-level: debug
//	  log_pretty: false
//	  log:
//	    format: text
//	  scope: ~/models/gearbox.yaml
//
// Nested mappings are joined with hyphens, so log.format configures
// --log-format. Underscores may stand in for hyphens. Numbers are passed
// to kong as strings and sequences as comma-separated lists.
//
// A malformed file is reported at warn level and otherwise ignored, so
// "init --force" can still replace it. Command-line flags override config
// file values.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).Decode(&doc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("ignoring configuration",
					slog.String("error", err.Error()))
			}

			return config{}, nil
		}

		flags, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", flags)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flat map of flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}

func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := value.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = flagValue(value)
	}
}

// flagValue converts a decoded YAML value to a form kong's mappers accept.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(flagValue(item))
		}

		return strings.Join(items, ",")

	default:
		return v
	}
}
