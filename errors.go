package todostore

import "github.com/pkg/errors"

var (
	ErrEmptyWallet  = errors.New("wallet address is required")
	ErrEmptyText    = errors.New("todo text is required")
	ErrEmptyID      = errors.New("todo id is required")
	ErrInvalidPatch = errors.New("invalid todo patch")
	ErrTodoNotFound = errors.New("todo not found")
)

var (
	ErrStorageRead     = errors.New("todo document read failed")
	ErrStorageWrite    = errors.New("todo document write failed")
	ErrDocumentInvalid = errors.New("todo document is invalid")
	ErrStoreClosed     = errors.New("todo store already closed")
	ErrTxIsReadOnly    = errors.New("transaction is read only")
)
