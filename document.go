package todostore

import (
	"encoding/json"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

// document is an immutable committed state: identity key -> todos in
// insertion order. Writers never modify a document in place, they build
// the next one.
type document struct {
	lists map[string][]Todo
}

func emptyDocument() *document {
	return &document{lists: make(map[string][]Todo)}
}

func decodeDocument(data []byte) (*document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return emptyDocument(), nil
	}

	lists := make(map[string][]Todo)
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, errors.Wrap(ErrDocumentInvalid, err.Error())
	}

	if lists == nil {
		// the literal null
		lists = make(map[string][]Todo)
	}

	return &document{lists: lists}, nil
}

func (d *document) encode() ([]byte, error) {
	out := make(map[string][]Todo, len(d.lists))
	for k, l := range d.lists {
		if l == nil {
			l = []Todo{}
		}
		out[k] = l
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal todo document")
	}

	return b, nil
}

func (d *document) list(key string) []Todo {
	return d.lists[key]
}

// with builds the next document out of d and the lists replaced by a
// transaction. Untouched lists are shared, they are never written to.
func (d *document) with(dirty map[string][]Todo) *document {
	next := &document{lists: make(map[string][]Todo, len(d.lists)+len(dirty))}
	for k, l := range d.lists {
		next.lists[k] = l
	}

	for k, l := range dirty {
		next.lists[k] = l
	}

	return next
}

// count skips identities whose list is empty.
func (d *document) count() (identities, todos int) {
	for _, l := range d.lists {
		if len(l) == 0 {
			continue
		}
		identities++
		todos += len(l)
	}

	return
}

func cloneTodos(src []Todo) []Todo {
	dst := make([]Todo, 0, len(src))
	if len(src) == 0 {
		return dst
	}

	if err := copier.Copy(&dst, &src); err != nil {
		panic("could not copy todos: " + err.Error())
	}

	return dst
}

// keyIndex keeps identity keys ordered so they can be scanned by network.
type keyIndex struct {
	tree *btree.BTree
}

func byIdentityKey(a, b interface{}) bool {
	return a.(string) < b.(string)
}

func newKeyIndex(d *document) *keyIndex {
	idx := &keyIndex{tree: btree.NewNonConcurrent(byIdentityKey)}
	for k := range d.lists {
		idx.tree.Set(k)
	}

	return idx
}

func (idx *keyIndex) add(keys ...string) {
	for _, k := range keys {
		idx.tree.Set(k)
	}
}

func (idx *keyIndex) len() int {
	return idx.tree.Len()
}

// scan walks keys starting with prefix in ascending order.
func (idx *keyIndex) scan(prefix string, fn func(key string) bool) {
	var pivot interface{}
	if prefix != "" {
		pivot = prefix
	}

	idx.tree.Ascend(pivot, func(i interface{}) bool {
		k := i.(string)
		if !strings.HasPrefix(k, prefix) {
			return false
		}

		return fn(k)
	})
}
