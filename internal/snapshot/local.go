package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Local reads snapshots from a directory on disk. Intended for development
// and for deployments where a camera service writes the latest frame per
// zone to a shared directory.
type Local struct {
	baseDir string
	logger  *slog.Logger
}

// NewLocal creates a Local source rooted at baseDir. The directory must
// already exist.
func NewLocal(baseDir string, logger *slog.Logger) (*Local, error) {
	stat, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("snapshot directory: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("snapshot path %q is not a directory", baseDir)
	}

	return &Local{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Latest reads the snapshot file at the key.
func (l *Local) Latest(ctx context.Context, key string) ([]byte, string, error) {
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	path, err := l.resolvePath(key)
	if err != nil {
		return nil, "", &Error{Key: key, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", &Error{Key: key, Err: ErrNotFound}
		}
		return nil, "", &Error{Key: key, Err: fmt.Errorf("read file: %w", err)}
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	l.logger.Debug("read snapshot", "key", key, "size", len(data))
	return data, contentType, nil
}

// resolvePath joins the key onto the base directory, rejecting keys that
// would escape it.
func (l *Local) resolvePath(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}

	path := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(l.baseDir)+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return path, nil
}
