package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Validate(t *testing.T) {
	v, err := Document()
	require.NoError(t, err)

	valid := []string{
		`{}`,
		`{"eip155:84532:0xabc":[]}`,
		`{"eip155:84532:0xabc":[{"id":"1","text":"Buy milk","completed":false,"createdAt":1700000000000}]}`,
	}

	for _, doc := range valid {
		t.Run("valid "+doc, func(t *testing.T) {
			assert.NoError(t, v.Validate([]byte(doc)))
		})
	}

	invalid := []string{
		`[]`,
		`{"k":{}}`,
		`{"k":[{"id":"1","text":"x","completed":"no","createdAt":1}]}`,
		`{"k":[{"id":"","text":"x","completed":false,"createdAt":1}]}`,
		`{"k":[{"id":"1","text":"x","completed":false}]}`,
		`{"k":[{"id":"1","text":"x","completed":false,"createdAt":1.5}]}`,
		`{"k":[`,
	}

	for _, doc := range invalid {
		t.Run("invalid "+doc, func(t *testing.T) {
			err := v.Validate([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDocumentInvalid)
		})
	}
}
