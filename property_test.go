package todostore_test

import (
	"context"
	"testing"

	"github.com/denismitr/todostore"
	"github.com/denismitr/todostore/internal/storage/memstorage"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type modelTodo struct {
	id        string
	text      string
	completed bool
}

// TestStore_BehavesLikeAModel drives random operations against the store and
// a per identity slice model and checks every identity after each step.
func TestStore_BehavesLikeAModel(t *testing.T) {
	networks := []string{baseSepolia, solanaDevnet, ""}
	wallets := []string{"0xAbC", "0xabc", "0xDEF", "Wallet9"}

	rapid.Check(t, func(rt *rapid.T) {
		backend := memstorage.New()
		ctx := context.Background()
		s, closer, err := todostore.Open(ctx, backend, nil)
		require.NoError(rt, err)
		defer closer()

		model := make(map[string][]modelTodo)
		keyOf := func(network, wallet string) string {
			id, err := todostore.NewIdentity(network, wallet)
			require.NoError(rt, err)
			return id.Key()
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			network := rapid.SampledFrom(networks).Draw(rt, "network")
			wallet := rapid.SampledFrom(wallets).Draw(rt, "wallet")
			key := keyOf(network, wallet)

			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				text := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "text")
				created, err := s.Create(ctx, network, wallet, text)
				require.NoError(rt, err)
				model[key] = append(model[key], modelTodo{id: created.ID, text: text})
			case 1:
				if len(model[key]) == 0 {
					continue
				}
				i := rapid.IntRange(0, len(model[key])-1).Draw(rt, "toggle")
				done := !model[key][i].completed
				_, err := s.Update(ctx, network, wallet, model[key][i].id, todostore.Patch{Completed: &done})
				require.NoError(rt, err)
				model[key][i].completed = done
			case 2:
				if len(model[key]) == 0 {
					removed, err := s.Delete(ctx, network, wallet, "missing")
					require.NoError(rt, err)
					require.False(rt, removed)
					continue
				}
				i := rapid.IntRange(0, len(model[key])-1).Draw(rt, "delete")
				removed, err := s.Delete(ctx, network, wallet, model[key][i].id)
				require.NoError(rt, err)
				require.True(rt, removed)
				model[key] = append(model[key][:i], model[key][i+1:]...)
			}

			for _, n := range networks {
				for _, w := range wallets {
					todos, err := s.List(ctx, n, w)
					require.NoError(rt, err)

					want := model[keyOf(n, w)]
					require.Len(rt, todos, len(want))
					for j := range want {
						require.Equal(rt, want[j].id, todos[j].ID)
						require.Equal(rt, want[j].text, todos[j].Text)
						require.Equal(rt, want[j].completed, todos[j].Completed)
					}
				}
			}
		}

		// a second store opened on the persisted bytes sees the same lists
		data, err := backend.Load(ctx)
		require.NoError(rt, err)
		reopened, closeReopened, err := todostore.Open(ctx, memstorage.NewWithDocument(data), nil)
		require.NoError(rt, err)
		defer closeReopened()

		for _, n := range networks {
			for _, w := range wallets {
				before, err := s.List(ctx, n, w)
				require.NoError(rt, err)
				after, err := reopened.List(ctx, n, w)
				require.NoError(rt, err)
				require.Equal(rt, before, after)
			}
		}
	})
}

func TestIdentity_KeyIsCaseInsensitive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		network := rapid.SampledFrom([]string{baseSepolia, solanaDevnet, "eip155:1"}).Draw(rt, "network")
		wallet := rapid.StringMatching(`0x[0-9a-fA-F]{40}`).Draw(rt, "wallet")

		a, err := todostore.NewIdentity(network, wallet)
		require.NoError(rt, err)

		b, err := todostore.NewIdentity(network, swapCase(wallet))
		require.NoError(rt, err)

		require.Equal(rt, a.Key(), b.Key())

		parsed, err := todostore.ParseKey(a.Key())
		require.NoError(rt, err)
		require.Equal(rt, a, parsed)
	})
}

func swapCase(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			out[i] = c - 'A' + 'a'
		}
	}

	return string(out)
}
