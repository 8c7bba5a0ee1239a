package jsonstorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStorage_Load(t *testing.T) {
	t.Run("missing file reads as nothing stored", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "todos.json"))

		b, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("existing file is read as is", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"eip155:84532:0xabc":[]}`), 0o644))

		b, err := New(path).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"eip155:84532:0xabc":[]}`, string(b))
	})

	t.Run("directory in place of the document is an error", func(t *testing.T) {
		dir := t.TempDir()

		_, err := New(dir).Load(context.Background())
		require.Error(t, err)
	})
}

func TestJSONStorage_Save(t *testing.T) {
	t.Run("it creates missing directories and replaces the document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "nested", "todos.json")
		s := New(path)

		require.NoError(t, s.Save(context.Background(), []byte(`{"a":[]}`)))
		require.NoError(t, s.Save(context.Background(), []byte(`{"b":[]}`)))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"b":[]}`, string(b))

		assert.NoFileExists(t, path+".tmp")
	})

	t.Run("cancelled context does not touch the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.json")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := New(path).Save(ctx, []byte(`{}`))
		require.ErrorIs(t, err, context.Canceled)
		assert.NoFileExists(t, path)
	})

	t.Run("path is cleaned", func(t *testing.T) {
		s := New("./data/../data/todos.json")
		assert.Equal(t, filepath.Join("data", "todos.json"), s.Path())
	})
}
