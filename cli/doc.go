// Package cli contains the command line interface for scopexpr.
//
// # Usage
//
// Every command reads its scope tree from the YAML file named by --scope:
//
//	scopexpr --scope gearbox.yaml 'gear * 2'
//	scopexpr --scope gearbox.yaml eval --at comp 'velocity * gear'
//	scopexpr --scope gearbox.yaml repl
//
// Eval is the default command, so an expression alone is evaluated in the
// root container.
//
// # Configuration
//
// Flag defaults are read from $XDG_CONFIG_HOME/scopexpr/config.yaml. Flags
// are nested under the top-level "config" key, with nested mappings joined
// by '-' to form the flag name:
//
//	config:
//	  scope: ~/models/gearbox.yaml
//	  log:
//	    level: debug
//	    format: text
//
// The init command writes the current flag values in this layout.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output when writing to a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default
//     ~/.cache/scopexpr/pprof)
//
// # Examples
//
//	# Debug logging while evaluating in a nested container
//	scopexpr --log-level=debug -s gearbox.yaml eval -a comp.sub 'v * velocity'
//
//	# CPU profile of an evaluation
//	scopexpr --pprof-mode=cpu -s gearbox.yaml 'hypot(3, 4)'
package cli
