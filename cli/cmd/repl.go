package cmd

import (
	"context"

	"github.com/ardnew/scopexpr/cli/cmd/repl"
	"github.com/ardnew/scopexpr/log"
)

// Repl starts an interactive session over the scope tree.
type Repl struct {
	At string `help:"Dotted path of the starting container" placeholder:"PATH" short:"a"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, repl.Config{
		Load:     loadScope,
		Out:      outputFrom(ctx),
		Logger:   log.Default(),
		File:     editableFile(ctx),
		At:       r.At,
		CacheDir: cacheDir,
	})
}

// editableFile returns the scope file path if it names a regular file the
// REPL can open in an editor.
func editableFile(ctx context.Context) string {
	path, _ := ctx.Value(scopeFileKey{}).(string)
	if path == stdinSource {
		return ""
	}

	return path
}
