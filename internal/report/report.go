// Package report writes the tagged console lines that make up the
// simulator's user-visible output.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Tag identifies the component a line belongs to.
type Tag string

// Component tags.
const (
	TagMic       Tag = "Mic"
	TagProcessor Tag = "Processor"
	TagMonitor   Tag = "Monitor"
)

var tagColors = map[Tag]lipgloss.Color{
	TagMic:       lipgloss.Color("39"),
	TagProcessor: lipgloss.Color("212"),
	TagMonitor:   lipgloss.Color("78"),
}

// Reporter serializes lines from concurrent components onto one writer.
type Reporter struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[Tag]lipgloss.Style
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithColor renders tags in colour. The line text is unchanged.
func WithColor() Option {
	return func(r *Reporter) {
		renderer := lipgloss.NewRenderer(r.w)
		r.styles = make(map[Tag]lipgloss.Style, len(tagColors))
		for tag, color := range tagColors {
			r.styles[tag] = renderer.NewStyle().Bold(true).Foreground(color)
		}
	}
}

// New creates a reporter writing plain lines to w.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stdout returns a reporter on os.Stdout, coloured when stdout is a terminal.
func Stdout() *Reporter {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return New(os.Stdout, WithColor())
	}
	return New(os.Stdout)
}

// Report writes "[tag] message".
func (r *Reporter) Report(tag Tag, format string, args ...any) {
	label := "[" + string(tag) + "]"
	if style, ok := r.styles[tag]; ok {
		label = style.Render(label)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "%s %s\n", label, fmt.Sprintf(format, args...))
}

// Println writes an untagged line.
func (r *Reporter) Println(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.w, msg)
}
