package report

import (
	"bytes"
	"strings"
	"sync"
)

// Recorder is an in-memory sink for reporter output, safe for concurrent use.
// Tests use it to count the lines each component produced.
type Recorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewRecorder returns a plain reporter and the recorder capturing its output.
func NewRecorder() (*Reporter, *Recorder) {
	rec := &Recorder{}
	return New(rec), rec
}

// Write implements io.Writer.
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// Lines returns every recorded line.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := strings.TrimRight(r.buf.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Count returns how many lines start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
