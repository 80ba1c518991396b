package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/genflow/internal/durable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SnapshotStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSnapshotStore(db, "generate_state:alice", SnapshotStoreOptions{Timeout: time.Second}), mock
}

func TestSnapshotStore_Read(t *testing.T) {
	t.Parallel()

	t.Run("returns the payload", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT payload FROM generate_snapshots").
			WithArgs("generate_state:alice").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"savedState":{}}`)))

		raw, err := store.Read()
		require.NoError(t, err)
		assert.JSONEq(t, `{"savedState":{}}`, string(raw))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT payload FROM generate_snapshots").
			WithArgs("generate_state:alice").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))

		_, err := store.Read()
		assert.True(t, durable.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing table is unavailable", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT payload FROM generate_snapshots").
			WillReturnError(&pgconn.PgError{Code: undefinedTableCode, Message: "relation does not exist"})

		_, err := store.Read()
		assert.ErrorIs(t, err, durable.ErrUnavailable)

		var storeErr *durable.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, durable.OpRead, storeErr.Op)
	})
}

func TestSnapshotStore_Write(t *testing.T) {
	t.Parallel()

	t.Run("upserts the payload", func(t *testing.T) {
		store, mock := newMockStore(t)
		raw := []byte(`{"currentTask":null}`)
		mock.ExpectExec("INSERT INTO generate_snapshots").
			WithArgs("generate_state:alice", raw, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Write(raw))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("program limit maps to quota exceeded", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO generate_snapshots").
			WillReturnError(&pgconn.PgError{Code: programLimitExceededCode})

		err := store.Write([]byte(`{}`))
		assert.ErrorIs(t, err, durable.ErrQuotaExceeded)
	})

	t.Run("connection failure maps to unavailable", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO generate_snapshots").
			WillReturnError(&pgconn.PgError{Code: "08006"})

		err := store.Write([]byte(`{}`))
		assert.ErrorIs(t, err, durable.ErrUnavailable)
	})
}

func TestSnapshotStore_Erase(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM generate_snapshots").
		WithArgs("generate_state:alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.Erase(), "erasing an absent row succeeds")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSnapshots(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	newer := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery("SELECT key, octet_length\\(payload\\), updated_at FROM generate_snapshots").
		WillReturnRows(sqlmock.NewRows([]string{"key", "octet_length", "updated_at"}).
			AddRow("generate_state:bob", 42, newer).
			AddRow("generate_state:alice", 7, older))

	infos, err := ListSnapshots(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, SnapshotInfo{Key: "generate_state:bob", Size: 42, UpdatedAt: newer}, infos[0])
	assert.Equal(t, "generate_state:alice", infos[1].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}
