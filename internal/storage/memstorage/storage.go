package memstorage

import (
	"context"
	"sync"
)

type MemStorage struct {
	mu       sync.Mutex
	document []byte
	saves    int
}

func New() *MemStorage {
	return &MemStorage{}
}

// NewWithDocument starts from an already persisted document.
func NewWithDocument(document []byte) *MemStorage {
	return &MemStorage{document: clone(document)}
}

func (s *MemStorage) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.document), nil
}

func (s *MemStorage) Save(ctx context.Context, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = clone(document)
	s.saves++
	return nil
}

// Saves reports how many times the document was written.
func (s *MemStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemStorage) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}

	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
