package todostore_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/denismitr/todostore"
	"github.com/denismitr/todostore/internal/storage/memstorage"
	"github.com/stretchr/testify/require"
)

const (
	baseSepolia  = "eip155:84532"
	solanaDevnet = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
)

func sequentialIDs() func() string {
	var n int64
	return func() string {
		return fmt.Sprintf("todo-%d", atomic.AddInt64(&n, 1))
	}
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(ms)
	}
}

func openMemStore(t *testing.T, cfg *todostore.Config) (*todostore.Store, *memstorage.MemStorage) {
	t.Helper()

	backend := memstorage.New()
	s, closer, err := todostore.Open(context.Background(), backend, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = closer()
	})

	return s, backend
}
