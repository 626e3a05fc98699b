// Package repl implements the interactive scopexpr session.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/scopexpr/lang"
	"github.com/ardnew/scopexpr/log"
	"github.com/ardnew/scopexpr/profile"
	"github.com/ardnew/scopexpr/scope"
)

// Loader builds a fresh scope tree.
type Loader func(context.Context) (*scope.Container, error)

// Config describes a session.
type Config struct {
	Load     Loader    // builds the tree; called again after "edit"
	In       io.Reader // defaults to os.Stdin
	Out      io.Writer // defaults to os.Stdout
	Logger   log.Logger
	File     string // scope file opened by "edit"; empty disables it
	At       string // dotted path of the starting container
	CacheDir string // directory of the history file; empty keeps it in memory
}

// reloadMsg is sent when the scope file was edited and loaded.
type reloadMsg struct{ root *scope.Container }

// editDeclinedMsg is sent when the user gave up on a file that would not
// load.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not run.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help      Print this message
  list      List the names of the current container
  cd PATH   Change container (".." for the parent, "/" for the root)
  edit      Edit the scope file in $EDITOR and reload it
  clear     Clear screen
  quit      Exit

Usage:
  Type an expression to evaluate it, or NAME = EXPR to assign
  Names not in the current container resolve in its parent
  Completions appear as you type; Tab / Shift-Tab cycle through them
  Press Space or Enter to accept the current candidate
  Use Up/Down for history
  Press Ctrl+C on an empty line or Ctrl+D to exit`

// inputMode is what a submitted line is: an expression or a command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

func (m inputMode) tag() string {
	if m == modeCtrl {
		return "C:"
	}

	return "E:"
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	pathStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	load         Loader
	root         *scope.Container
	at           *scope.Container
	history      *History
	input        textinput.Model
	logger       log.Logger
	file         string
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	historyIdx   int
	preTabCursor int    // cursor position before tab-cycling began
	preTabText   string // input text before tab-cycling began
	width        int    // terminal width for ellipsization
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
	mode         inputMode
	tabActive    bool // whether user is tab-cycling
	quitting     bool
}

// Run starts a session on the container at cfg.At. If the input is not a
// terminal, each line is evaluated in turn and the first failure ends the
// session.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.In == nil {
		cfg.In = os.Stdin
	}

	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	root, err := cfg.Load(ctx)
	if err != nil {
		return err
	}

	at, err := root.Lookup(cfg.At)
	if err != nil {
		return err
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.String("at", at.Path()),
		slog.Bool("terminal", isTerminal(cfg.In)),
	)

	if !isTerminal(cfg.In) {
		return runLines(ctx, cfg.In, cfg.Out, at, cfg.Logger)
	}

	var history *History
	if cfg.CacheDir != "" {
		history = NewHistory(filepath.Join(cfg.CacheDir, baseHistory))
	} else {
		history = NewHistory("")
	}

	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("error", err.Error()))
	}

	m := newModel(ctx, cfg, root, at, history)

	_, err = tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(cfg.In),
		tea.WithOutput(cfg.Out),
	).Run()

	return err
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// runLines evaluates each non-blank line of r in c and prints the results.
func runLines(
	ctx context.Context,
	r io.Reader,
	w io.Writer,
	c *scope.Container,
	logger log.Logger,
) error {
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		out, err := evaluate(ctx, c, line, logger)
		if err != nil {
			return lang.WrapError(err).With(slog.Int("line", n))
		}

		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// evaluate compiles line against c and returns its formatted result.
func evaluate(
	ctx context.Context,
	c *scope.Container,
	line string,
	logger log.Logger,
) (string, error) {
	x, err := lang.New(ctx, line, lang.Weak(c), lang.WithLogger(logger))
	if err != nil {
		return "", err
	}

	var result any

	profile.Do(ctx, line, func(ctx context.Context) {
		result, err = x.Evaluate(ctx)
	})

	if err != nil {
		return "", err
	}

	return lang.FormatResult(result), nil
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	cfg Config,
	root, at *scope.Container,
	history *History,
) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		load:       cfg.Load,
		root:       root,
		at:         at,
		history:    history,
		input:      ti,
		logger:     cfg.Logger,
		file:       cfg.File,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}

	m.input.Prompt = m.prompt()

	return m
}

// prompt returns the prompt for the current mode, led by the path of the
// current container.
func (m model) prompt() string {
	if m.mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	path := m.at.Path()
	if path == "" {
		return promptStyle.Render(evalPrompt)
	}

	return pathStyle.Render(path+" ") + promptStyle.Render(evalPrompt)
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(m.input.Prompt) - 2

		return m, nil

	case reloadMsg:
		return m.reload(msg.root)

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit abandoned; keeping the loaded scope"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// reload replaces the tree, keeping the current container if its path
// still exists.
func (m model) reload(root *scope.Container) (model, tea.Cmd) {
	at, err := root.Lookup(m.at.Path())
	if err != nil {
		at = root
	}

	m.root, m.at = root, at
	m.input.Prompt = m.prompt()

	m.logger.TraceContext(m.ctxFunc(), "repl reload",
		slog.String("at", at.Path()),
		slog.Int("names", len(at.Names())),
	)

	return m, tea.Println(resultStyle.Render("scope reloaded"))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type an expression or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case call.inCall && m.mode == modeEval && len(m.matches) == 0:
		if params, ok := signature(m.at, call.name); ok {
			b.WriteString(renderSignatureHint(call.name, params, call.argIndex))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(
			m.matches, m.suggIdx, m.tabActive, m.width, m.callable,
		))
	}

	b.WriteString("\n")

	return b.String()
}

// callable reports whether name resolves to a function from the current
// container.
func (m model) callable(name string) bool {
	if m.mode != modeEval {
		return false
	}

	prefix := parentPath(m.input.Value(), m.wordStart)
	if prefix != "" {
		name = prefix + "." + name
	}

	_, ok := signature(m.at, name)

	return ok
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			refreshMatches(&m, true)

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1), nil

	case tea.KeyDown:
		return m.historyStep(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Editing and cursor keys never auto-complete.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around. A single match
// is completed at once.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word with replacement and moves
// the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the matches for the input. With autoConfirm
// set, a word that already equals its only match is accepted; deletions and
// cursor movement pass false so editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if word := m.input.Value()[m.wordStart:m.wordEnd]; word == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.String("error", err.Error()))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	out, err := evaluate(m.ctxFunc(), m.at, input, m.logger)
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl eval failed",
			slog.String("input", input),
			slog.String("error", err.Error()))

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", cmd),
		slog.String("arg", arg))

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list", "ls":
		return m, tea.Sequence(echo, tea.Println(listNames(m.at)))

	case "cd":
		next, err := changeDir(m.root, m.at, arg)
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		m.at = next
		m.input.Prompt = m.prompt()

		return m, echo

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		if m.file == "" {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+ErrNoScopeFile.Error())))
		}

		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(errorStyle.Render("unknown command: " + cmd + " (try 'help')"))
	}
}

// edit suspends the program to edit the scope file.
func (m model) edit() tea.Cmd {
	cmd := &editScopeCommand{
		ctx:    m.ctxFunc(),
		load:   m.load,
		logger: m.logger,
		path:   m.file,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}

		case err != nil:
			return editErrorMsg{err: err}
		}

		return reloadMsg{root: cmd.root}
	})
}

// changeDir returns the container reached from at by arg: a dotted path
// below at, ".." for the parent, or "/" or nothing for the root.
func changeDir(root, at *scope.Container, arg string) (*scope.Container, error) {
	switch arg {
	case "", "/":
		return root, nil

	case "..":
		if p, ok := at.Parent().(*scope.Container); ok && p != nil {
			return p, nil
		}

		return at, nil
	}

	if path, ok := strings.CutPrefix(arg, "/"); ok {
		return root.Lookup(path)
	}

	return at.Lookup(arg)
}

// listNames renders the names of c with a preview of each value.
func listNames(c *scope.Container) string {
	var b strings.Builder

	for _, name := range c.Names() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(c, name)))
	}

	return b.String()
}

func preview(c *scope.Container, name string) string {
	if child, ok := c.Child(name); ok {
		return fmt.Sprintf("{ %d names }", len(child.Names()))
	}

	if t, err := c.Signature(name); err == nil {
		return "(" + strings.Join(parameters(t), ", ") + ")"
	}

	v, err := c.Get(name)
	if err != nil {
		return "<" + err.Error() + ">"
	}

	const maxPreview = 40

	s := lang.FormatResult(v)
	if len(s) > maxPreview {
		return s[:maxPreview-3] + "..."
	}

	return s
}

func (m model) historyStep(step int) model {
	i := m.historyIdx + step

	if i < 0 {
		return m
	}

	if i >= m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)

		return m
	}

	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.historyIdx = i

	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// switchToMode switches to mode, keeping each mode's unsubmitted input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	m.input.Prompt = m.prompt()

	if mode == modeEval {
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
