package httpapi

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

const createTodoSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string"}
	}
}`

// unknown fields pass here, PatchFromJSON decides what may be updated
const updateTodoSchema = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"text": {"type": "string"},
		"completed": {"type": "boolean"}
	}
}`

var errInvalidJSON = errors.New("invalid JSON body")

// bodySchema validates a request body and reports the first offending field.
type bodySchema struct {
	schema *gojsonschema.Schema
}

func mustCompile(source string) *bodySchema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("could not compile body schema: %v", err))
	}

	return &bodySchema{schema: s}
}

var (
	createTodoBody = mustCompile(createTodoSchema)
	updateTodoBody = mustCompile(updateTodoSchema)
)

type fieldError struct {
	field       string
	description string
}

func (e fieldError) Error() string {
	return e.field + ": " + e.description
}

func (bs *bodySchema) validate(body []byte) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return errInvalidJSON
	}

	result, err := bs.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errInvalidJSON
	}

	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	return fieldError{field: fieldOf(first), description: first.Description()}
}

func fieldOf(e gojsonschema.ResultError) string {
	if e.Type() == "required" {
		if p, ok := e.Details()["property"]; ok {
			return fmt.Sprint(p)
		}
	}

	f := strings.TrimPrefix(e.Context().String(), "(root)")
	return strings.TrimPrefix(f, ".")
}
