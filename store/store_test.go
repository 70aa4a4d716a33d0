package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "home", "editables.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestAddGetList(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	require.NoError(t, s.Add(ctx, Editable{Reference: "zlib/1.3@", Path: "/src/zlib"}))
	require.NoError(t, s.Add(ctx, Editable{Reference: "bzip2/1.0@", Path: "/src/bzip2", Layout: "layout.ini"}))

	e, ok := s.Get("zlib/1.3@")
	require.True(t, ok)
	assert.Equal(t, "/src/zlib", e.Path)
	assert.False(t, e.CreatedAt.IsZero())

	var refs []string
	for _, e := range s.List() {
		refs = append(refs, e.Reference)
	}
	assert.Equal(t, []string{"bzip2/1.0@", "zlib/1.3@"}, refs)
}

func TestAddReplaces(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	require.NoError(t, s.Add(ctx, Editable{Reference: "zlib/1.3@", Path: "/old"}))
	require.NoError(t, s.Add(ctx, Editable{Reference: "zlib/1.3@", Path: "/new"}))

	e, ok := s.Get("zlib/1.3@")
	require.True(t, ok)
	assert.Equal(t, "/new", e.Path)
	assert.Len(t, s.List(), 1)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Add(ctx, Editable{Reference: "zlib/1.3@", Path: "/src/zlib"}))

	removed, err := s.Remove(ctx, "zlib/1.3@")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, "zlib/1.3@")
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok := s.Get("zlib/1.3@")
	assert.False(t, ok)
}

func TestReopenLoadsRows(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Add(ctx, Editable{Reference: "zlib/1.3@", Path: "/src/zlib", Layout: "l.ini", CreatedAt: created}))
	require.NoError(t, s.Close())

	again, err := Open(ctx, path)
	require.NoError(t, err)
	defer again.Close()

	e, ok := again.Get("zlib/1.3@")
	require.True(t, ok)
	assert.Equal(t, Editable{Reference: "zlib/1.3@", Path: "/src/zlib", Layout: "l.ini", CreatedAt: created}, e)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Memory)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Add(ctx, Editable{Reference: "a/1.0@", Path: "/a"}))
	assert.Len(t, s.List(), 1)
}
