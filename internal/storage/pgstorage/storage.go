package pgstorage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	defaultTableName   = "todostore_documents"
	defaultDocumentKey = "todos"
	operationTimeout   = 5 * time.Second
)

var ErrEmptyDSN = errors.New("postgres dsn is empty")

type sqlOpenFunc func(driverName, dsn string) (*sql.DB, error)

// PGStorage keeps the document as one row of a key/document table.
type PGStorage struct {
	dsn         string
	tableName   string
	documentKey string
	openDB      sqlOpenFunc

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

func New(dsn string) (*PGStorage, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	return &PGStorage{
		dsn:         dsn,
		tableName:   defaultTableName,
		documentKey: defaultDocumentKey,
		openDB:      sql.Open,
	}, nil
}

func (s *PGStorage) Load(ctx context.Context) ([]byte, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT document FROM %s WHERE doc_key = $1", quoteIdentifier(s.tableName))
	var document string
	err := s.db.QueryRowContext(ctx, query, s.documentKey).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Wrapf(err, "could not select document %s", s.documentKey)
	}

	return []byte(document), nil
}

func (s *PGStorage) Save(ctx context.Context, document []byte) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (doc_key, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (doc_key)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`, quoteIdentifier(s.tableName))
	if _, err := s.db.ExecContext(ctx, query, s.documentKey, string(document)); err != nil {
		return errors.Wrapf(err, "could not upsert document %s", s.documentKey)
	}

	return nil
}

func (s *PGStorage) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *PGStorage) ensureReady(ctx context.Context) error {
	s.initOnce.Do(func() {
		db, err := s.openDB("postgres", s.dsn)
		if err != nil {
			s.initErr = errors.Wrap(err, "could not open postgres")
			return
		}

		ctx, cancel := context.WithTimeout(ctx, operationTimeout)
		defer cancel()

		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				doc_key TEXT PRIMARY KEY,
				document TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, quoteIdentifier(s.tableName))
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			s.initErr = errors.Wrapf(err, "could not create table %s", s.tableName)
			return
		}

		s.db = db
	})

	return s.initErr
}

func quoteIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return `""`
	}

	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
