// Package schema validates the persisted todo document before it is trusted.
package schema

import (
	"bytes"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var ErrDocumentInvalid = errors.New("document does not match schema")

const documentSchemaURL = "todostore-document.schema.json"

const documentSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "text", "completed", "createdAt"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"text": {"type": "string"},
				"completed": {"type": "boolean"},
				"createdAt": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

type Validator struct {
	sch *jsonschema.Schema
}

var (
	compileOnce sync.Once
	compiled    *Validator
	compileErr  error
)

// Document returns the shared validator of the todo document.
func Document() (*Validator, error) {
	compileOnce.Do(func() {
		compiled, compileErr = compile(documentSchemaURL, documentSchema)
	})

	return compiled, compileErr
}

func compile(url, source string) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(source))
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse schema %s", url)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, errors.Wrapf(err, "could not add schema %s", url)
	}

	sch, err := c.Compile(url)
	if err != nil {
		return nil, errors.Wrapf(err, "could not compile schema %s", url)
	}

	return &Validator{sch: sch}, nil
}

// Validate checks raw JSON against the schema.
func (v *Validator) Validate(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(ErrDocumentInvalid, err.Error())
	}

	if err := v.sch.Validate(inst); err != nil {
		return errors.Wrap(ErrDocumentInvalid, err.Error())
	}

	return nil
}
