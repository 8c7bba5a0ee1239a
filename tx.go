package todostore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Tx sees the snapshot it was started on plus its own changes. Lists are
// copied the first time a write transaction touches them.
type Tx struct {
	ctx      context.Context
	readOnly bool
	base     *document
	dirty    map[string][]Todo
	cfg      *Config
}

func newTx(ctx context.Context, base *document, readOnly bool, cfg *Config) *Tx {
	return &Tx{
		ctx:      ctx,
		readOnly: readOnly,
		base:     base,
		dirty:    make(map[string][]Todo),
		cfg:      cfg,
	}
}

func (tx *Tx) Context() context.Context {
	return tx.ctx
}

func (tx *Tx) current(key string) []Todo {
	if l, ok := tx.dirty[key]; ok {
		return l
	}

	return tx.base.list(key)
}

func (tx *Tx) writable(key string) ([]Todo, error) {
	if tx.readOnly {
		return nil, ErrTxIsReadOnly
	}

	if l, ok := tx.dirty[key]; ok {
		return l, nil
	}

	l := cloneTodos(tx.base.list(key))
	tx.dirty[key] = l
	return l, nil
}

// List returns a copy of the identity's todos in insertion order.
func (tx *Tx) List(id Identity) []Todo {
	return cloneTodos(tx.current(id.Key()))
}

func (tx *Tx) Find(id Identity, todoID string) (Todo, error) {
	for _, t := range tx.current(id.Key()) {
		if t.ID == todoID {
			return t, nil
		}
	}

	return Todo{}, errors.Wrapf(ErrTodoNotFound, "%s in %s", todoID, id.Key())
}

func (tx *Tx) Create(id Identity, text string) (Todo, error) {
	if strings.TrimSpace(text) == "" {
		return Todo{}, ErrEmptyText
	}

	key := id.Key()
	l, err := tx.writable(key)
	if err != nil {
		return Todo{}, err
	}

	t := Todo{
		ID:        tx.cfg.IDGenerator(),
		Text:      text,
		Completed: false,
		CreatedAt: tx.cfg.Clock().UnixMilli(),
	}

	for _, existing := range l {
		if existing.ID == t.ID {
			return Todo{}, errors.Errorf("generated todo id %s already exists in %s", t.ID, key)
		}
	}

	tx.dirty[key] = append(l, t)
	return t, nil
}

func (tx *Tx) Update(id Identity, todoID string, p Patch) (Todo, error) {
	if todoID == "" {
		return Todo{}, ErrEmptyID
	}

	if err := p.validate(); err != nil {
		return Todo{}, err
	}

	if tx.readOnly {
		return Todo{}, ErrTxIsReadOnly
	}

	key := id.Key()
	i := indexOf(tx.current(key), todoID)
	if i == -1 {
		return Todo{}, errors.Wrapf(ErrTodoNotFound, "%s in %s", todoID, key)
	}

	l, err := tx.writable(key)
	if err != nil {
		return Todo{}, err
	}

	l[i] = p.apply(l[i])
	return l[i], nil
}

// Delete reports whether a todo was removed. A miss leaves the
// transaction clean so nothing gets persisted.
func (tx *Tx) Delete(id Identity, todoID string) (bool, error) {
	if tx.readOnly {
		return false, ErrTxIsReadOnly
	}

	key := id.Key()
	i := indexOf(tx.current(key), todoID)
	if i == -1 {
		return false, nil
	}

	l, err := tx.writable(key)
	if err != nil {
		return false, err
	}

	tx.dirty[key] = append(l[:i], l[i+1:]...)
	return true, nil
}

func (tx *Tx) changed() bool {
	return len(tx.dirty) > 0
}

func (tx *Tx) touchedKeys() []string {
	keys := make([]string, 0, len(tx.dirty))
	for k := range tx.dirty {
		keys = append(keys, k)
	}

	return keys
}

func indexOf(l []Todo, todoID string) int {
	for i := range l {
		if l[i].ID == todoID {
			return i
		}
	}

	return -1
}
