package bus

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bus.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestQueue_SendReceiveDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	q, err := OpenQueue(ctx, db, "eval-jobs")
	require.NoError(t, err)

	require.NoError(t, q.Send(ctx, []byte(`{"repo":"NixOS/nixpkgs"}`)))

	msg, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"repo":"NixOS/nixpkgs"}`, string(msg.body))

	require.NoError(t, q.Delete(ctx, msg))

	_, err = q.Receive(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestQueue_SendJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	q, err := OpenQueue(ctx, db, "build-inputs-x86_64-linux")
	require.NoError(t, err)

	type payload struct {
		Attribute string `json:"attribute"`
	}
	require.NoError(t, q.SendJSON(ctx, payload{Attribute: "firefox"}))

	msg, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"attribute":"firefox"}`, string(msg.body))
}

func TestOpenQueue_ReopeningSameNameTolerated(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := OpenQueue(ctx, db, "eval-jobs")
	require.NoError(t, err)
	_, err = OpenQueue(ctx, db, "eval-jobs")
	require.NoError(t, err)
}
