// Package cmd implements the scopexpr subcommands.
//
// Every command but init loads the scope tree named by --scope and works on
// the container selected with --at:
//
//	scopexpr --scope gearbox.yaml eval --at comp 'velocity * gear'
//	scopexpr --scope gearbox.yaml set --at comp 'a.b[1]' '2 * gear'
//	scopexpr --scope gearbox.yaml inspect --at comp --format yaml 'y = x**2'
//	scopexpr --scope gearbox.yaml repl --at comp
//
// The root container also provides math functions (sqrt, sin, atan2, ...)
// and pi unless the scope file declares the same names.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// NamespaceIdentifier is the kong variable identifier containing the key
	// of the flag mapping in the configuration file.
	NamespaceIdentifier = "namespace"
)
