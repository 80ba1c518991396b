//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/genflow/internal/durable"
	"github.com/phrazzld/genflow/internal/generate"
	"github.com/phrazzld/genflow/internal/platform/postgres"
	"github.com/phrazzld/genflow/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_Integration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	t.Run("read missing key", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			store := postgres.NewSnapshotStore(tx, "generate_state:missing", postgres.SnapshotStoreOptions{})

			_, err := store.Read()
			require.Error(t, err)
			assert.True(t, durable.IsNotFound(err))
		})
	})

	t.Run("write read erase", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			store := postgres.NewSnapshotStore(tx, "generate_state:crud", postgres.SnapshotStoreOptions{})

			require.NoError(t, store.Write([]byte(`{"currentTask":null}`)))
			require.NoError(t, store.Write([]byte(`{"currentTask":null,"taskHistory":[]}`)))

			raw, err := store.Read()
			require.NoError(t, err)
			assert.Equal(t, `{"currentTask":null,"taskHistory":[]}`, string(raw))

			infos, err := postgres.ListSnapshots(context.Background(), tx)
			require.NoError(t, err)
			var found bool
			for _, info := range infos {
				if info.Key == "generate_state:crud" {
					found = true
					assert.Equal(t, len(raw), info.Size)
				}
			}
			assert.True(t, found, "snapshot should be listed")

			require.NoError(t, store.Erase())
			require.NoError(t, store.Erase())

			_, err = store.Read()
			assert.True(t, durable.IsNotFound(err))
		})
	})

	t.Run("manager survives restart", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			factory := postgres.SnapshotFactory(tx, postgres.SnapshotStoreOptions{})
			key := durable.ContextKey("integration")

			first := generate.NewManager(factory(key), nil)
			task := first.StartTask(generate.KindFunctionPoints, "p-1")
			first.CompleteTask([]byte(`{"count":3}`))

			second := generate.NewManager(factory(key), nil)
			history := second.History()
			require.Len(t, history, 1)
			assert.Equal(t, task.ID, history[0].ID)
			assert.Equal(t, generate.StatusCompleted, history[0].Status)
			assert.JSONEq(t, `{"count":3}`, string(history[0].Result))
		})
	})
}
