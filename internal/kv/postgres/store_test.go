package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/snapedit/backend/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, zerolog.Nop()), mock
}

func TestStore_UpdateGetPut(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT value FROM kv_entries WHERE key = \\$1 FOR UPDATE").
		WithArgs("accounts/alice").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"schema":1}`)))
	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("accounts/alice", `{"schema":1,"x":2}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Update(ctx, func(tx kv.Tx) error {
		v, err := tx.Get(ctx, "accounts/alice")
		if err != nil {
			return err
		}
		assert.Equal(t, `{"schema":1}`, string(v))
		return tx.Put(ctx, "accounts/alice", []byte(`{"schema":1,"x":2}`))
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT value FROM kv_entries WHERE key = \\$1").
		WithArgs("accounts/ghost").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectCommit()

	err := store.View(ctx, func(tx kv.Tx) error {
		_, err := tx.Get(ctx, "accounts/ghost")
		assert.ErrorIs(t, err, kv.ErrNotFound)
		return nil
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RollbackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv_entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.Update(ctx, func(tx kv.Tx) error {
		if err := tx.Put(ctx, "k", []byte("1")); err != nil {
			return err
		}
		return errors.New("insufficient balance")
	})
	assert.EqualError(t, err, "insufficient balance")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RetriesSerializationFailure(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv_entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv_entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	calls := 0
	err := store.Update(ctx, func(tx kv.Tx) error {
		calls++
		return tx.Put(ctx, "k", []byte("1"))
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GivesUpAfterMaxAttempts(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	for i := 0; i < defaultMaxAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40P01"})
	}

	err := store.Update(ctx, func(tx kv.Tx) error { return nil })
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Scan(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT key, value FROM kv_entries WHERE key LIKE \\$1").
		WithArgs(`transactions/al\_ice/%`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("transactions/al_ice/00000000000000000001", []byte("a")).
			AddRow("transactions/al_ice/00000000000000000002", []byte("b")))
	mock.ExpectCommit()

	err := store.View(ctx, func(tx kv.Tx) error {
		entries, err := tx.Scan(ctx, "transactions/al_ice/")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "b", string(entries[1].Value))
		return nil
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, `accounts/%`, likePrefix("accounts/"))
	assert.Equal(t, `a\%b\_c\\%`, likePrefix(`a%b_c\`))
}
