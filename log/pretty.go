package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of one pretty handler. Styles are bound to a
// renderer for the handler's writer, so colour is dropped when the writer
// is not a terminal.
type palette struct {
	key      lipgloss.Style
	str      lipgloss.Style
	num      lipgloss.Style
	yes      lipgloss.Style
	no       lipgloss.Style
	duration lipgloss.Style
	time     lipgloss.Style
	trace    lipgloss.Style
	debug    lipgloss.Style
	info     lipgloss.Style
	warn     lipgloss.Style
	err      lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:      fg("8"),
		str:      fg("6"),
		num:      fg("3"),
		yes:      fg("2"),
		no:       fg("1"),
		duration: fg("5"),
		time:     fg("4"),
		trace:    fg("8"),
		debug:    fg("4"),
		info:     fg("2"),
		warn:     fg("3").Bold(true),
		err:      fg("1").Bold(true),
	}
}

func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

func (p palette) level(l slog.Level) string {
	return p.levelStyle(l).Render(levelName(l))
}

// prettyTextHandler writes colourized key=value lines.
type prettyTextHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    palette
	attrs  []slog.Attr
	groups []string
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(w),
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if ts := h.timestamp(r.Time); ts != "" {
		h.writeKey(buf, slog.TimeKey)
		buf.WriteString(h.pal.time.Render(ts))
	}

	h.writeKey(buf, slog.LevelKey)
	buf.WriteString(h.pal.level(r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeKey(buf, slog.SourceKey)
			buf.WriteString(h.pal.str.Render(fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	h.writeKey(buf, slog.MessageKey)
	buf.WriteString(h.pal.str.Render(r.Message))

	prefix := strings.Join(h.groups, ".")

	for _, a := range h.attrs {
		h.writeAttr(buf, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// timestamp applies the configured time replacement, which may drop the
// time entirely.
func (h *prettyTextHandler) timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	a := slog.Time(slog.TimeKey, t)
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return ""
	}

	return a.Value.String()
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := strings.Join(h.groups, ".")
	merged := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(merged, h.attrs)

	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		merged = append(merged, a)
	}

	return &prettyTextHandler{
		opts:   h.opts,
		mu:     h.mu,
		w:      h.w,
		pal:    h.pal,
		attrs:  merged,
		groups: h.groups,
	}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{
		opts:   h.opts,
		mu:     h.mu,
		w:      h.w,
		pal:    h.pal,
		attrs:  h.attrs,
		groups: append(h.groups[:len(h.groups):len(h.groups)], name),
	}
}

func (h *prettyTextHandler) writeKey(buf *bytes.Buffer, key string) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(h.pal.key.Render(key))
	buf.WriteByte('=')
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, key, ga)
		}

		return
	}

	h.writeKey(buf, key)
	buf.WriteString(h.pal.value(a.Value))
}

func (p palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.duration.Render(v.Duration().String())

	case slog.KindTime:
		return p.time.Render(v.Time().Format(time.RFC3339))

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			return p.level(level)
		}
	}

	return p.str.Render(v.String())
}

// prettyJSONHandler writes one indented, colourized object per record.
type prettyJSONHandler struct {
	opts  slog.HandlerOptions
	mu    *sync.Mutex
	w     io.Writer
	pal   palette
	attrs []slog.Attr
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(w),
	}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{")

	first := true

	if !r.Time.IsZero() {
		a := slog.Time(slog.TimeKey, r.Time)
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			h.writeField(buf, a.Key, h.pal.time.Render(strconv.Quote(a.Value.String())), &first)
		}
	}

	h.writeField(buf, slog.LevelKey,
		h.pal.levelStyle(r.Level).Render(strconv.Quote(levelName(r.Level))), &first)

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeField(buf, slog.SourceKey,
				h.pal.str.Render(strconv.Quote(fmt.Sprintf("%s:%d", src.File, src.Line))),
				&first)
		}
	}

	h.writeField(buf, slog.MessageKey, h.pal.str.Render(strconv.Quote(r.Message)), &first)

	for _, a := range h.attrs {
		h.writeAttr(buf, a, &first)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, a, &first)

		return true
	})

	buf.WriteString("\n}\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{
		opts:  h.opts,
		mu:    h.mu,
		w:     h.w,
		pal:   h.pal,
		attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

func (h *prettyJSONHandler) WithGroup(string) slog.Handler {
	return &prettyJSONHandler{
		opts:  h.opts,
		mu:    h.mu,
		w:     h.w,
		pal:   h.pal,
		attrs: h.attrs,
	}
}

func (h *prettyJSONHandler) writeField(
	buf *bytes.Buffer,
	key string,
	rendered string,
	first *bool,
) {
	if !*first {
		buf.WriteByte(',')
	}

	*first = false

	buf.WriteString("\n  ")
	buf.WriteString(h.pal.key.Render(strconv.Quote(key)))
	buf.WriteString(": ")
	buf.WriteString(rendered)
}

func (h *prettyJSONHandler) writeAttr(buf *bytes.Buffer, a slog.Attr, first *bool) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			ga.Key = a.Key + "." + ga.Key
			h.writeAttr(buf, ga, first)
		}

		return
	}

	h.writeField(buf, a.Key, h.jsonValue(a.Value), first)
}

func (h *prettyJSONHandler) jsonValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.pal.str.Render(strconv.Quote(v.String()))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		return h.pal.value(v)

	case slog.KindAny:
		if v.Any() == nil {
			return h.pal.key.Render("null")
		}
	}

	return h.pal.str.Render(strconv.Quote(v.String()))
}
