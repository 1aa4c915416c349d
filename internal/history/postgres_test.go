package history

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPostgresStore runs against a real database when MOCK_INTERVIEWER_TEST_PG_DSN is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("MOCK_INTERVIEWER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("MOCK_INTERVIEWER_TEST_PG_DSN is not set")
	}

	store, err := NewPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// isolate from earlier runs
	_, err = store.db.Exec(`DELETE FROM evaluation_history WHERE user_email IN ($1, $2, $3)`,
		"alice@example.com", "bob@example.com", "nobody@example.com")
	require.NoError(t, err)

	exerciseStore(t, store)
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), "  ")
	require.Error(t, err)
}
