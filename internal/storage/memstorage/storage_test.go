package memstorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorage(t *testing.T) {
	t.Run("empty storage loads nothing", func(t *testing.T) {
		b, err := New().Load(context.Background())
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("saved document is copied", func(t *testing.T) {
		s := New()
		doc := []byte(`{"k":[]}`)
		require.NoError(t, s.Save(context.Background(), doc))
		doc[2] = 'x'

		b, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"k":[]}`, string(b))
		assert.Equal(t, 1, s.Saves())
	})

	t.Run("seeded document", func(t *testing.T) {
		s := NewWithDocument([]byte(`{}`))
		b, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(b))
		assert.Equal(t, 0, s.Saves())
	})
}
