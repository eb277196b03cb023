package snapshot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLocal(t *testing.T) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := NewLocal(dir, testLogger())
	require.NoError(t, err)
	return l, dir
}

func TestNewLocal_MissingDir(t *testing.T) {
	_, err := NewLocal(filepath.Join(t.TempDir(), "nope"), testLogger())
	assert.Error(t, err)
}

func TestNewLocal_NotADir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := NewLocal(path, testLogger())
	assert.Error(t, err)
}

func TestLocal_Latest(t *testing.T) {
	l, dir := newTestLocal(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cams", "kitchen"), 0o755))
	want := []byte("jpeg bytes")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cams", "kitchen", "latest.jpg"), want, 0o644))

	data, contentType, err := l.Latest(context.Background(), "cams/kitchen/latest.jpg")
	require.NoError(t, err)
	assert.Equal(t, want, data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestLocal_Latest_UnknownExtension(t *testing.T) {
	l, dir := newTestLocal(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame.zzz"), []byte("x"), 0o644))

	_, contentType, err := l.Latest(context.Background(), "frame.zzz")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", contentType)
}

func TestLocal_Latest_NotFound(t *testing.T) {
	l, _ := newTestLocal(t)

	_, _, err := l.Latest(context.Background(), "cams/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "cams/missing.jpg", serr.Key)
}

func TestLocal_Latest_RejectsTraversal(t *testing.T) {
	l, _ := newTestLocal(t)

	for _, key := range []string{"", "../etc/passwd", "cams/../../etc/passwd"} {
		_, _, err := l.Latest(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestLocal_Latest_CancelledContext(t *testing.T) {
	l, _ := newTestLocal(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := l.Latest(ctx, "cams/kitchen/latest.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}
