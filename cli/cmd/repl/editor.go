package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/scopexpr/log"
	"github.com/ardnew/scopexpr/scope"
)

const defaultEditor = "vi"

// editScopeCommand implements [tea.ExecCommand]. It opens the scope file in
// the user's editor and reloads the tree from it, offering to edit again
// while the file does not load.
type editScopeCommand struct {
	ctx    context.Context
	load   Loader
	logger log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	path   string
	root   *scope.Container
}

// SetStdin sets the stdin reader for the command.
func (c *editScopeCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editScopeCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editScopeCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run edits and reloads until the file loads or the user declines, in
// which case it returns [ErrEditDeclined].
func (c *editScopeCommand) Run() error {
	for {
		if err := runEditor(c.ctx, c.stdin, c.stdout, c.stderr, c.path); err != nil {
			return err
		}

		root, err := c.load(c.ctx)

		c.logger.TraceContext(c.ctx, "editor reload",
			slog.String("file", c.path),
			slog.Bool("success", err == nil))

		if err == nil {
			c.root = root

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor runs $EDITOR, or vi, on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr

	return cmd.Run()
}
