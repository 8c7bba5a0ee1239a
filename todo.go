package todostore

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

type Todo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"`
}

// Patch lists the only fields an update may touch. Nil means untouched.
type Patch struct {
	Text      *string
	Completed *bool
}

func (p Patch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

func (p Patch) apply(t Todo) Todo {
	if p.Text != nil {
		t.Text = *p.Text
	}

	if p.Completed != nil {
		t.Completed = *p.Completed
	}

	return t
}

func (p Patch) validate() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return errors.Wrap(ErrInvalidPatch, "text must not be empty")
	}

	return nil
}

// fields a client may send in an update body; id selects the todo and is
// never written
var patchableFields = map[string]bool{"id": true, "text": true, "completed": true}

// PatchFromJSON builds a patch out of a raw update body such as
// {"id":"...","completed":true}. Fields other than id, text and completed,
// createdAt included, are rejected.
func PatchFromJSON(body []byte) (Patch, error) {
	if !gjson.ValidBytes(body) {
		return Patch{}, errors.Wrap(ErrInvalidPatch, "body is not valid json")
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Patch{}, errors.Wrap(ErrInvalidPatch, "body must be a json object")
	}

	var p Patch
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if !patchableFields[name] {
			err = errors.Wrapf(ErrInvalidPatch, "field %s cannot be updated", name)
			return false
		}

		switch name {
		case "text":
			if value.Type != gjson.String {
				err = errors.Wrap(ErrInvalidPatch, "text must be a string")
				return false
			}
			text := value.String()
			p.Text = &text
		case "completed":
			if value.Type != gjson.True && value.Type != gjson.False {
				err = errors.Wrap(ErrInvalidPatch, "completed must be a boolean")
				return false
			}
			completed := value.Bool()
			p.Completed = &completed
		}

		return true
	})

	if err != nil {
		return Patch{}, err
	}

	if err := p.validate(); err != nil {
		return Patch{}, err
	}

	return p, nil
}
