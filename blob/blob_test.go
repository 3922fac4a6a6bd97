package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graftdb/graft"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestPut_RoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	content := []byte("hello, blob store")
	h, err := s.Put(ctx, bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, graft.HashBytes(content), h)

	rc, err := s.Open(h)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestPut_IdempotentOnContent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	h1, err := s.Put(ctx, strings.NewReader("bar"))
	require.NoError(t, err)
	h2, err := s.Put(ctx, strings.NewReader("bar"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// One content entry, no temp leftovers.
	dir := filepath.Dir(filepath.Dir(s.path(h1)))
	blobs, err := os.ReadDir(filepath.Join(dir, "blobs"))
	require.NoError(t, err)
	assert.Len(t, blobs, 1)
	tmps, err := os.ReadDir(filepath.Join(dir, "tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmps)
}

func TestPut_LargeContentStreams(t *testing.T) {
	s := openStore(t)
	content := bytes.Repeat([]byte("0123456789abcdef"), 64*1024) // 1 MiB, several chunks

	h, err := s.Put(context.Background(), bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, graft.HashBytes(content), h)
}

func TestPut_ReadFailureLeavesNothingVisible(t *testing.T) {
	s := openStore(t)
	boom := errors.New("boom")

	_, err := s.Put(context.Background(), io.MultiReader(
		strings.NewReader("partial"),
		&failingReader{err: boom},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The partial bytes never became addressable content.
	ok, err := s.Has(graft.HashBytes([]byte("partial")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPut_CancelledContext(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, strings.NewReader("never stored"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	ok, err := s.Has(graft.HashBytes([]byte("never stored")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_MissingHashIsNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.Open(graft.HashBytes([]byte("nothing here")))
	require.Error(t, err)
	assert.True(t, graft.IsNotFound(err))
}

func TestOpen_RejectsUnknownLayout(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layout"), []byte("99\n"), 0o644))

	_, err = Open(dir)
	require.Error(t, err)
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }
