package output

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one recorded message.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is an Output that keeps every message in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	raw     strings.Builder
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Info(format string, args ...any) {
	r.add(LevelInfo, fmt.Sprintf(format, args...))
}

func (r *Recorder) Success(format string, args ...any) {
	r.add(LevelSuccess, fmt.Sprintf(format, args...))
}

func (r *Recorder) Warning(format string, args ...any) {
	r.add(LevelWarning, fmt.Sprintf(format, args...))
}

func (r *Recorder) Error(format string, args ...any) {
	r.add(LevelError, fmt.Sprintf(format, args...))
}

func (r *Recorder) Write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw.WriteString(s)
}

func (r *Recorder) Writeln(s string) {
	r.add(LevelPlain, s)
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
	r.raw.WriteString(msg + "\n")
}

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the recorded messages of the given level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Text returns everything written, in order, as plain text.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.raw.String()
}
