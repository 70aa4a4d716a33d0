package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct{ name string }

func (s *stubHandler) Run(ctx context.Context, args []string) (any, error) { return s.name, nil }

func TestBuildExcludesHiddenCandidates(t *testing.T) {
	b := NewBuilder().
		Register("a", "docs", &stubHandler{"a"}).
		Register("b", "HIDDEN: docs", &stubHandler{"b"}).
		Register("c", "more docs", &stubHandler{"c"})

	r, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, r.Names())
	_, ok := r.Lookup("b")
	assert.False(t, ok)
}

func TestBuildInclusionRules(t *testing.T) {
	tests := []struct {
		name    string
		cmdName string
		doc     string
		want    bool
	}{
		{"documented", "install", "Installs a package.", true},
		{"internal prefix", "_commands", "Returns the commands.", false},
		{"empty doc", "inspect", "", false},
		{"blank doc", "inspect", "  \n\t", false},
		{"hidden after whitespace", "run", "\n    HIDDEN: entry point", false},
		{"hidden in the middle is fine", "get", "Gets a file. Not HIDDEN.", true},
		{"empty name", "", "docs", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewBuilder().Register(tt.cmdName, tt.doc, &stubHandler{}).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Len() == 1)
		})
	}
}

func TestBuildSkipsNilHandler(t *testing.T) {
	r, err := NewBuilder().Register("inspect", "Inspects.", nil).Build()
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestBuildRenamesExportPkg(t *testing.T) {
	r, err := NewBuilder().
		Register("export_pkg", "Exports a recipe and a package.", &stubHandler{}).
		Build()
	require.NoError(t, err)

	_, ok := r.Lookup("export-pkg")
	assert.True(t, ok)
	_, ok = r.Lookup("export_pkg")
	assert.False(t, ok)
}

func TestBuildCustomRename(t *testing.T) {
	r, err := NewBuilder().
		Register("build_info", "Prints build info.", &stubHandler{}).
		Rename("build_info", "build-info").
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"build-info"}, r.Names())
}

func TestBuildFailsOnCollision(t *testing.T) {
	_, err := NewBuilder().
		Register("export-pkg", "Exports.", &stubHandler{}).
		Register("export_pkg", "Exports too.", &stubHandler{}).
		Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCommand))
	assert.Contains(t, err.Error(), "export-pkg")
}

func TestBuildIsIdempotent(t *testing.T) {
	inspect := &stubHandler{"inspect"}
	build := &stubHandler{"build"}
	b := NewBuilder().
		Register("inspect", "Displays recipe attributes.", inspect).
		Register("build", "Calls the build method.", build).
		Register("_helper", "internal", &stubHandler{})

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, first.Names(), second.Names())
	for _, name := range first.Names() {
		c1, _ := first.Lookup(name)
		c2, _ := second.Lookup(name)
		assert.Same(t, c1.Handler, c2.Handler, name)
	}
	got, _ := first.Lookup("inspect")
	assert.Same(t, inspect, got.Handler)
}

func TestSummaryIsFirstDocLine(t *testing.T) {
	doc := `
        Calls your local recipe 'source()' method.

        Usually downloads and uncompresses the package sources.
        `
	r, err := NewBuilder().Register("source", doc, &stubHandler{}).Build()
	require.NoError(t, err)

	c, ok := r.Lookup("source")
	require.True(t, ok)
	assert.Equal(t, "Calls your local recipe 'source()' method.", c.Summary)
	assert.Contains(t, c.Doc, "Usually downloads")
}

func TestCommandsSortedByName(t *testing.T) {
	r, err := NewBuilder().
		Register("upload", "Uploads.", &stubHandler{}).
		Register("build", "Builds.", &stubHandler{}).
		Register("inspect", "Inspects.", &stubHandler{}).
		Build()
	require.NoError(t, err)

	var names []string
	for _, c := range r.Commands() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"build", "inspect", "upload"}, names)
}

func TestHandlerFunc(t *testing.T) {
	h := HandlerFunc(func(ctx context.Context, args []string) (any, error) { return len(args), nil })
	got, err := h.Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
