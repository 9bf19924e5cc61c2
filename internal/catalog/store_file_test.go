package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSnapshotter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	s := NewFileSnapshotter(path)
	ctx := context.Background()

	seed := []Product{product("2", "B", 1, 1), product("1", "A", 10, 3)}
	require.NoError(t, s.Save(ctx, seed))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileSnapshotter_EmptySavesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	s := NewFileSnapshotter(path)

	require.NoError(t, s.Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestFileSnapshotter_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := NewFileSnapshotter(filepath.Join(dir, "missing.json")).Load(ctx)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o644))
	_, err = NewFileSnapshotter(bad).Load(ctx)
	assert.ErrorContains(t, err, "decode")
}

func TestFileSnapshotter_Ping(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	assert.NoError(t, NewFileSnapshotter(filepath.Join(dir, "p.json")).Ping(ctx))
	assert.Error(t, NewFileSnapshotter(filepath.Join(dir, "nope", "p.json")).Ping(ctx))
}

func TestStore_FileBackedSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	ctx := context.Background()

	f := newFixture(t)
	f.svc.store = NewStore(ctx, NewFileSnapshotter(path), f.store.log)
	created, err := f.svc.Create(ctx, CreateInput{Name: "Lamp", Price: 3, Quantity: 2})
	require.NoError(t, err)

	reopened := NewStore(ctx, NewFileSnapshotter(path), f.store.log)
	assert.Equal(t, []Product{created}, reopened.Snapshot())
}
