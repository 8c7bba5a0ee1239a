package todostore_test

import (
	"testing"

	"github.com/denismitr/todostore"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchFromJSON(t *testing.T) {
	done := true
	notDone := false
	text := "Buy oat milk"

	tt := []struct {
		name  string
		body  string
		patch todostore.Patch
		fails bool
	}{
		{name: "completed with id", body: `{"id":"abc","completed":true}`, patch: todostore.Patch{Completed: &done}},
		{name: "uncompleted", body: `{"completed":false}`, patch: todostore.Patch{Completed: &notDone}},
		{name: "text", body: `{"id":"abc","text":"Buy oat milk"}`, patch: todostore.Patch{Text: &text}},
		{name: "both", body: `{"text":"Buy oat milk","completed":true}`, patch: todostore.Patch{Text: &text, Completed: &done}},
		{name: "only id", body: `{"id":"abc"}`, patch: todostore.Patch{}},
		{name: "created at is not patchable", body: `{"id":"abc","createdAt":1}`, fails: true},
		{name: "unknown field", body: `{"id":"abc","owner":"0xdef"}`, fails: true},
		{name: "completed as string", body: `{"completed":"true"}`, fails: true},
		{name: "text as number", body: `{"text":42}`, fails: true},
		{name: "empty text", body: `{"text":"  "}`, fails: true},
		{name: "array", body: `[{"completed":true}]`, fails: true},
		{name: "broken json", body: `{"completed":`, fails: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			p, err := todostore.PatchFromJSON([]byte(tc.body))
			if tc.fails {
				require.Error(t, err)
				assert.True(t, errors.Is(err, todostore.ErrInvalidPatch))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.patch, p)
		})
	}
}

func TestPatch_IsEmpty(t *testing.T) {
	assert.True(t, todostore.Patch{}.IsEmpty())

	done := true
	assert.False(t, todostore.Patch{Completed: &done}.IsEmpty())
}
