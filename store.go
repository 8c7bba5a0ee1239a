package todostore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/denismitr/todostore/internal/schema"
	"github.com/denismitr/todostore/internal/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type UserCallback func(tx *Tx) error

type Closer func() error

func NullCloser() error { return nil }

// Store is the wallet scoped todo store. Writers are serialized by one
// mutex around the whole load-modify-persist cycle. Readers use the last
// committed snapshot and never wait for a writer.
type Store struct {
	backend storage.Backend
	cfg     *Config
	log     *zap.Logger

	wmu  sync.Mutex
	snap atomic.Pointer[document]

	// xxhash of the bytes last written or loaded, guarded by wmu
	lastSum uint64

	imu sync.RWMutex
	idx *keyIndex

	watcher *watcher
	closed  atomic.Bool
}

// OpenDSN opens a store on the backend selected by dsn, see storage.Open.
func OpenDSN(ctx context.Context, dsn string, cfg *Config) (*Store, Closer, error) {
	b, err := storage.Open(dsn)
	if err != nil {
		return nil, NullCloser, err
	}

	s, closer, err := Open(ctx, b, cfg)
	if err != nil {
		_ = b.Close()
		return nil, NullCloser, err
	}

	return s, closer, nil
}

func Open(ctx context.Context, b storage.Backend, cfg *Config) (*Store, Closer, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()

	s := &Store{backend: b, cfg: cfg, log: cfg.Logger}

	doc, sum, err := s.load(ctx)
	if err != nil {
		return nil, NullCloser, err
	}

	s.lastSum = sum
	s.snap.Store(doc)
	s.idx = newKeyIndex(doc)

	if cfg.Watch {
		pp, ok := b.(storage.PathProvider)
		if !ok {
			return nil, NullCloser, errors.New("watch requires a file backed store")
		}

		w, err := newWatcher(s, pp.Path())
		if err != nil {
			return nil, NullCloser, err
		}
		s.watcher = w
	}

	return s, s.close, nil
}

func (s *Store) close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStoreClosed
	}

	if s.watcher != nil {
		s.watcher.stop()
	}

	// let an in flight writer finish
	s.wmu.Lock()
	defer s.wmu.Unlock()

	return s.backend.Close()
}

// load reads the document honouring the read failure policy.
func (s *Store) load(ctx context.Context) (*document, uint64, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		return s.tolerate(errors.Wrap(ErrStorageRead, err.Error()))
	}

	if len(data) > 0 && !s.cfg.SkipSchemaValidation {
		v, err := schema.Document()
		if err != nil {
			return nil, 0, err
		}

		if err := v.Validate(data); err != nil {
			return s.tolerate(errors.Wrap(ErrDocumentInvalid, err.Error()))
		}
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return s.tolerate(err)
	}

	return doc, xxhash.Sum64(data), nil
}

func (s *Store) tolerate(err error) (*document, uint64, error) {
	if !s.cfg.TolerateCorruptDocument {
		return nil, 0, err
	}

	s.log.Warn("todo document could not be loaded, starting empty", zap.Error(err))
	return emptyDocument(), 0, nil
}

// View runs cb against the last committed snapshot.
func (s *Store) View(ctx context.Context, cb UserCallback) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	tx := newTx(ctx, s.snap.Load(), true, s.cfg)
	if err := cb(tx); err != nil {
		return errors.Wrap(err, "todo store read failed")
	}

	return nil
}

// Mutate runs cb in a write transaction. If cb fails nothing is persisted.
// A transaction that changed nothing is not persisted either.
func (s *Store) Mutate(ctx context.Context, cb UserCallback) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	tx := newTx(ctx, s.snap.Load(), false, s.cfg)
	if err := cb(tx); err != nil {
		return errors.Wrap(err, "todo store write failed. rolled back")
	}

	if !tx.changed() {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "todo store write cancelled. rolled back")
	}

	next := tx.base.with(tx.dirty)
	data, err := next.encode()
	if err != nil {
		return errors.Wrap(ErrStorageWrite, err.Error())
	}

	if err := s.backend.Save(ctx, data); err != nil {
		return errors.Wrap(ErrStorageWrite, err.Error())
	}

	s.lastSum = xxhash.Sum64(data)
	s.snap.Store(next)

	keys := tx.touchedKeys()
	s.imu.Lock()
	s.idx.add(keys...)
	s.imu.Unlock()

	if s.cfg.OnChange != nil {
		s.cfg.OnChange(keys)
	}

	return nil
}

// Reload replaces the snapshot with what the backend holds now. It is a
// no-op when the stored bytes are the ones this store wrote last.
func (s *Store) Reload(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	doc, sum, err := s.load(ctx)
	if err != nil {
		return err
	}

	if sum != 0 && sum == s.lastSum {
		return nil
	}

	s.lastSum = sum
	s.snap.Store(doc)

	idx := newKeyIndex(doc)
	s.imu.Lock()
	s.idx = idx
	s.imu.Unlock()

	s.log.Info("todo document reloaded")
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(nil)
	}

	return nil
}

func (s *Store) List(ctx context.Context, network, wallet string) ([]Todo, error) {
	id, err := NewIdentity(network, wallet)
	if err != nil {
		return nil, err
	}

	var todos []Todo
	err = s.View(ctx, func(tx *Tx) error {
		todos = tx.List(id)
		return nil
	})

	return todos, err
}

func (s *Store) Create(ctx context.Context, network, wallet, text string) (Todo, error) {
	id, err := NewIdentity(network, wallet)
	if err != nil {
		return Todo{}, err
	}

	var created Todo
	err = s.Mutate(ctx, func(tx *Tx) error {
		t, err := tx.Create(id, text)
		if err != nil {
			return err
		}

		created = t
		return nil
	})

	return created, err
}

func (s *Store) Update(ctx context.Context, network, wallet, todoID string, p Patch) (Todo, error) {
	id, err := NewIdentity(network, wallet)
	if err != nil {
		return Todo{}, err
	}

	var updated Todo
	err = s.Mutate(ctx, func(tx *Tx) error {
		t, err := tx.Update(id, todoID, p)
		if err != nil {
			return err
		}

		updated = t
		return nil
	})

	return updated, err
}

func (s *Store) Delete(ctx context.Context, network, wallet, todoID string) (bool, error) {
	id, err := NewIdentity(network, wallet)
	if err != nil {
		return false, err
	}

	var removed bool
	err = s.Mutate(ctx, func(tx *Tx) error {
		ok, err := tx.Delete(id, todoID)
		removed = ok
		return err
	})

	return removed, err
}

// Identities lists identities holding at least one todo, in key order. An
// empty network lists all. A deleted identity keeps its empty list in the
// document but is not listed.
func (s *Store) Identities(network string) []Identity {
	prefix := ""
	if network != "" {
		prefix = network + keySeparator
	}

	doc := s.snap.Load()

	s.imu.RLock()
	defer s.imu.RUnlock()

	result := make([]Identity, 0)
	s.idx.scan(prefix, func(key string) bool {
		id, err := ParseKey(key)
		if err != nil {
			s.log.Warn("skipping malformed identity key", zap.String("key", key))
			return true
		}

		if network != "" && id.Network != network {
			return true
		}

		if len(doc.list(key)) == 0 {
			return true
		}

		result = append(result, id)
		return true
	})

	return result
}

type Stats struct {
	Identities int `json:"identities"`
	Todos      int `json:"todos"`
}

func (s *Store) Stats() Stats {
	identities, todos := s.snap.Load().count()
	return Stats{Identities: identities, Todos: todos}
}
