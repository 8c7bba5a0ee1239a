package jsonstorage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// JSONStorage keeps the document in a single file. Every save goes to a
// sibling .tmp file first, is synced and then renamed over the document,
// so a crash never leaves a half written document behind.
type JSONStorage struct {
	path string
}

func New(path string) *JSONStorage {
	return &JSONStorage{path: filepath.Clean(path)}
}

func (s *JSONStorage) Path() string {
	return s.path
}

func (s *JSONStorage) Load(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "could not read file %s", s.path)
	}

	return b, nil
}

func (s *JSONStorage) Save(ctx context.Context, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "could not create directory %s", dir)
		}
	}

	tmpName := s.path + ".tmp"
	tmpF, err := os.OpenFile(tmpName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "could not create %s file", tmpName)
	}

	n, err := tmpF.Write(document)
	if err == nil && n != len(document) {
		err = errors.Errorf("short write: %d of %d bytes", n, len(document))
	}

	if err == nil {
		err = tmpF.Sync()
	}

	if closeErr := tmpF.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "could not write into %s file", tmpName)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "could not swap %s file for %s", s.path, tmpName)
	}

	return nil
}

func (s *JSONStorage) Close() error {
	return nil
}
