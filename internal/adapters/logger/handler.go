package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/twig/internal/ui/output"
	"go.trai.ch/twig/internal/ui/style"
)

// gitOutputPrefix marks debug lines relayed from a git subprocess.
const gitOutputPrefix = "git: "

// mark is the symbol and color a level is printed with.
type mark struct {
	symbol string
	color  lipgloss.Color
}

var levelMarks = map[slog.Level]mark{
	slog.LevelDebug: {symbol: style.Dot, color: style.Slate},
	slog.LevelInfo:  {color: style.Iris},
	slog.LevelWarn:  {symbol: style.Warning, color: style.Yellow},
	slog.LevelError: {symbol: style.Cross, color: style.Red},
}

// PrettyHandler is a slog.Handler writing one colored line per record.
// Multi-line messages are indented under their level mark, and git output
// relayed at debug level is shown in a gutter.
type PrettyHandler struct {
	out   *termenv.Output
	mu    *sync.Mutex
	level slog.Leveler
	attrs []string
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		mu:    &sync.Mutex{},
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	m, ok := levelMarks[r.Level]
	if !ok {
		m = levelMarks[slog.LevelInfo]
	}

	prefix := ""
	if m.symbol != "" {
		prefix = m.symbol + " "
	}
	msg := r.Message
	if r.Level == slog.LevelDebug {
		if line, ok := strings.CutPrefix(msg, gitOutputPrefix); ok {
			prefix, msg = "  │ ", line
		}
	}

	attrs := h.attrs
	if r.NumAttrs() > 0 {
		attrs = append(attrs[:len(attrs):len(attrs)], make([]string, 0, r.NumAttrs())...)
		r.Attrs(func(attr slog.Attr) bool {
			attrs = append(attrs, formatAttr(h.group, attr))
			return true
		})
	}

	lines := strings.Split(msg, "\n")
	if len(attrs) > 0 {
		lines[0] += " " + strings.Join(attrs, " ")
	}
	indent := strings.Repeat(" ", len([]rune(prefix)))
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}

	text := prefix + strings.Join(lines, "\n")
	styled := h.out.String(text).Foreground(termenv.RGBColor(string(m.color)))

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]string, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, attr := range attrs {
		next.attrs = append(next.attrs, formatAttr(h.group, attr))
	}
	return &next
}

// WithGroup returns a new Handler qualifying later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}

// formatAttr renders attr as key=value, quoting values that contain spaces.
func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	value := attr.Value.Resolve().String()
	if value == "" || strings.ContainsAny(value, " \t\n\"") {
		value = strconv.Quote(value)
	}
	return key + "=" + value
}
