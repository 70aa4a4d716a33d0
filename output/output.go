// Package output is the single channel for user-facing text.
//
// Handlers and the dispatcher never write to os.Stdout or os.Stderr directly;
// they receive an Output. Terminal renders messages for a person, Recorder
// keeps them for tests.
package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a user-facing message.
type Level int

const (
	LevelPlain Level = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "plain"
	}
}

// Output is a leveled message sink.
type Output interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
	// Write emits s verbatim, without a trailing newline.
	Write(s string)
	// Writeln emits s followed by a newline.
	Writeln(s string)
}

// Colors used by Terminal.
var (
	ColorSuccess = lipgloss.Color("#10B981")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorError   = lipgloss.Color("#EF4444")
)

// Terminal writes messages to an io.Writer, styled when color is enabled.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer

	color    bool
	success  lipgloss.Style
	warning  lipgloss.Style
	errStyle lipgloss.Style
}

// NewTerminal returns a Terminal writing to w.
func NewTerminal(w io.Writer, color bool) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w:        w,
		color:    color,
		success:  r.NewStyle().Foreground(ColorSuccess),
		warning:  r.NewStyle().Foreground(ColorWarning),
		errStyle: r.NewStyle().Foreground(ColorError).Bold(true),
	}
}

func (t *Terminal) Info(format string, args ...any) {
	t.line(LevelInfo, fmt.Sprintf(format, args...))
}

func (t *Terminal) Success(format string, args ...any) {
	t.line(LevelSuccess, fmt.Sprintf(format, args...))
}

func (t *Terminal) Warning(format string, args ...any) {
	t.line(LevelWarning, "WARN: "+fmt.Sprintf(format, args...))
}

func (t *Terminal) Error(format string, args ...any) {
	t.line(LevelError, "ERROR: "+fmt.Sprintf(format, args...))
}

func (t *Terminal) Write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, s)
}

func (t *Terminal) Writeln(s string) {
	t.line(LevelPlain, s)
}

func (t *Terminal) line(level Level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, t.render(level, msg)+"\n")
}

func (t *Terminal) render(level Level, msg string) string {
	if !t.color {
		return msg
	}
	var style lipgloss.Style
	switch level {
	case LevelSuccess:
		style = t.success
	case LevelWarning:
		style = t.warning
	case LevelError:
		style = t.errStyle
	default:
		return msg
	}
	// style each line so multi-line messages keep their layout
	lines := strings.Split(msg, "\n")
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	return strings.Join(lines, "\n")
}

// Writer adapts out to an io.Writer; every write goes through out.Write.
func Writer(out Output) io.Writer { return sinkWriter{out} }

type sinkWriter struct{ out Output }

func (w sinkWriter) Write(b []byte) (int, error) {
	w.out.Write(string(b))
	return len(b), nil
}
