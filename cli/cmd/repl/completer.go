package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/scopexpr/scope"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "cd", "edit", "clear", "quit"}

// isWordBoundary reports whether r delimits a word for completion: blanks,
// the member-access dot, operators and brackets.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']',
		'+', '-', '*', '/',
		'=', ',':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted path in front of the word starting at
// wordStart. For "x + comp.sub.v" and the word "v" it is "comp.sub"; for a
// top-level word it is empty.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]

	chain, ok := strings.CutSuffix(prefix, ".")
	if !ok {
		return ""
	}

	pos := len(chain)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(chain[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return chain[pos:]
}

// candidates returns the completions for words under parent as seen from c.
// At the top level they are the names of c and of its parent, the latter
// being where foreign names resolve. Under a parent path they are the
// members of the container or mapping reached by it.
func candidates(c *scope.Container, parent string) []string {
	if c == nil {
		return nil
	}

	if parent == "" {
		names := c.Names()

		if p, ok := c.Parent().(*scope.Container); ok && p != nil {
			names = append(names, p.Names()...)
		}

		slices.Sort(names)

		return slices.Compact(names)
	}

	for _, from := range lookupOrder(c) {
		if names := members(from, parent); len(names) > 0 {
			return names
		}
	}

	return nil
}

// lookupOrder lists c then its parent, the order names resolve in.
func lookupOrder(c *scope.Container) []*scope.Container {
	order := []*scope.Container{c}
	if p, ok := c.Parent().(*scope.Container); ok && p != nil {
		order = append(order, p)
	}

	return order
}

func members(c *scope.Container, path string) []string {
	if child, err := c.Lookup(path); err == nil {
		return child.Names()
	}

	v, err := c.Get(path)
	if err != nil {
		return nil
	}

	if m, ok := v.(map[string]any); ok {
		return slices.Sorted(maps.Keys(m))
	}

	return nil
}

// computeMatches ranks the candidates for the word at the cursor. An empty
// top-level word has no matches, so the hint line stays visible; an empty
// word after a dot lists every member.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var list []string

	if m.mode == modeCtrl {
		if word == "" {
			return nil, wordStart, wordEnd
		}

		list = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		list = candidates(m.at, parent)

		if word == "" {
			if parent == "" {
				return nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(list))
			for i, c := range list {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	return fuzzy.Find(word, list), wordStart, wordEnd
}

// renderCandidateBar renders the matches on one line, cut with an ellipsis
// at width. The selected match is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	callable func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(ellipsis) + lipgloss.Width(sep)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, callable(match.Str))

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && used+w+reserve > width && !(last && used+w <= width) {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a match with its matched characters in bold.
// Functions get a "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, bold := suggestionStyle, matchStyle
	if selected {
		base, bold = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(bold.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
