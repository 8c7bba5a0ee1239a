package pgstorage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New("   ")
	require.ErrorIs(t, err, ErrEmptyDSN)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"todostore_documents"`, quoteIdentifier("todostore_documents"))
	assert.Equal(t, `"we""ird"`, quoteIdentifier(`we"ird`))
	assert.Equal(t, `""`, quoteIdentifier(" "))
}

func TestPGStorage_RoundTrip(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("TODOSTORE_TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("TODOSTORE_TEST_POSTGRES_DSN is not set")
	}

	s, err := New(dsn)
	require.NoError(t, err)
	s.tableName = fmt.Sprintf("todostore_documents_it_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		dropTable(t, dsn, s.tableName)
		_ = s.Close()
	})

	ctx := context.Background()

	b, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, b)

	require.NoError(t, s.Save(ctx, []byte(`{"eip155:84532:0xabc":[]}`)))
	require.NoError(t, s.Save(ctx, []byte(`{"eip155:84532:0xdef":[]}`)))

	b, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"eip155:84532:0xdef":[]}`, string(b))
}

func dropTable(t *testing.T, dsn, table string) {
	t.Helper()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Logf("could not open postgres to drop %s: %v", table, err)
		return
	}
	defer db.Close()

	if _, err := db.Exec("DROP TABLE IF EXISTS " + quoteIdentifier(table)); err != nil {
		t.Logf("could not drop %s: %v", table, err)
	}
}
