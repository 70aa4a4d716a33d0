// Package registry maps public command names to handlers.
//
// Commands are registered explicitly with a Builder as (name, doc, handler)
// candidates. Build applies the inclusion rules (no internal "_" prefix, a
// non-empty doc that is not marked HIDDEN), rewrites internal names to their
// public form and fails on public name collisions. The resulting Registry is
// read-only.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// InternalPrefix marks helper names that are never exposed.
	InternalPrefix = "_"
	// HiddenMarker at the start of a doc keeps a command out of the registry.
	HiddenMarker = "HIDDEN"
)

// DefaultRenames maps internal command names to their public spelling.
var DefaultRenames = map[string]string{
	"export_pkg": "export-pkg",
}

// ErrDuplicateCommand is returned by Build when two candidates share a public name.
var ErrDuplicateCommand = errors.New("duplicate command name")

// Handler runs one command with the arguments that follow the command token.
// The returned value is informational; the dispatcher ignores it.
type Handler interface {
	Run(ctx context.Context, args []string) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, args []string) (any, error)

func (f HandlerFunc) Run(ctx context.Context, args []string) (any, error) { return f(ctx, args) }

// Command is a registered, documented operation.
type Command struct {
	Name    string
	Summary string
	Doc     string
	Handler Handler
}

type candidate struct {
	name    string
	doc     string
	handler Handler
}

// Builder collects candidates in registration order.
type Builder struct {
	candidates []candidate
	renames    map[string]string
}

// NewBuilder returns a builder using DefaultRenames.
func NewBuilder() *Builder {
	renames := make(map[string]string, len(DefaultRenames))
	for k, v := range DefaultRenames {
		renames[k] = v
	}
	return &Builder{renames: renames}
}

// Register adds a candidate. Whether it becomes a command is decided by Build.
func (b *Builder) Register(name, doc string, h Handler) *Builder {
	b.candidates = append(b.candidates, candidate{name: name, doc: doc, handler: h})
	return b
}

// Rename exposes the internal name under public instead.
func (b *Builder) Rename(internal, public string) *Builder {
	b.renames[internal] = public
	return b
}

// Build returns the registry for the registered candidates. It does not
// modify the builder and can be called any number of times.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{commands: make(map[string]*Command, len(b.candidates))}

	for _, c := range b.candidates {
		if !eligible(c.name, c.doc) || c.handler == nil {
			continue
		}
		name := c.name
		if public, ok := b.renames[name]; ok {
			name = public
		}
		if _, exists := r.commands[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCommand, name)
		}
		r.commands[name] = &Command{
			Name:    name,
			Summary: summary(c.doc),
			Doc:     strings.TrimSpace(c.doc),
			Handler: c.handler,
		}
		r.order = append(r.order, name)
	}
	sort.Strings(r.order)
	return r, nil
}

func eligible(name, doc string) bool {
	if name == "" || strings.HasPrefix(name, InternalPrefix) {
		return false
	}
	doc = strings.TrimSpace(doc)
	return doc != "" && !strings.HasPrefix(doc, HiddenMarker)
}

// summary returns the first non-empty line of doc.
func summary(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Registry is an immutable name → command mapping.
type Registry struct {
	commands map[string]*Command
	order    []string
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Names returns the public command names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Commands returns the commands sorted by name.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Len returns the number of commands.
func (r *Registry) Len() int { return len(r.order) }
