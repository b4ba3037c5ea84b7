package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAccount() *Account {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Account{
		Username:     "alice",
		PasswordHash: "c2FsdA==$aGFzaA==",
		Balance:      decimal.NewFromFloat(10.5),
		Role:         RoleUser,
		Status:       AccountStatusApproved,
		Seq:          2,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestEncodeDecode_Account(t *testing.T) {
	raw, err := Encode(KindAccount, sampleAccount())
	require.NoError(t, err)

	var got Account
	require.NoError(t, Decode(raw, KindAccount, &got))
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.Balance.Equal(decimal.NewFromFloat(10.5)))
	assert.Equal(t, AccountStatusApproved, got.Status)
}

func TestDecode_Rejects(t *testing.T) {
	validAccount, err := Encode(KindAccount, sampleAccount())
	require.NoError(t, err)

	t.Run("wrong kind", func(t *testing.T) {
		var rec TransactionRecord
		err := Decode(validAccount, KindTransaction, &rec)
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})

	t.Run("legacy unversioned blob", func(t *testing.T) {
		var acc Account
		err := Decode([]byte(`{"password":"admin","balance":9999,"role":"admin","status":"approved"}`), KindAccount, &acc)
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})

	t.Run("future schema", func(t *testing.T) {
		var acc Account
		err := Decode([]byte(`{"schema":2,"kind":"account","data":{}}`), KindAccount, &acc)
		assert.ErrorIs(t, err, ErrCorruptRecord)
		assert.Contains(t, err.Error(), "schema 2")
	})

	t.Run("not json", func(t *testing.T) {
		var acc Account
		assert.ErrorIs(t, Decode([]byte("{"), KindAccount, &acc), ErrCorruptRecord)
	})

	t.Run("unknown status", func(t *testing.T) {
		acc := sampleAccount()
		acc.Status = "frozen"
		raw, err := Encode(KindAccount, acc)
		require.NoError(t, err)

		var got Account
		assert.ErrorIs(t, Decode(raw, KindAccount, &got), ErrCorruptRecord)
	})

	t.Run("non positive transaction amount", func(t *testing.T) {
		rec := TransactionRecord{
			ID:        "tx-1",
			Seq:       1,
			Username:  "alice",
			Type:      TransactionCredit,
			Amount:    decimal.Zero,
			Timestamp: time.Now(),
		}
		raw, err := Encode(KindTransaction, rec)
		require.NoError(t, err)

		var got TransactionRecord
		assert.ErrorIs(t, Decode(raw, KindTransaction, &got), ErrCorruptRecord)
	})

	t.Run("pending deposit with resolution time", func(t *testing.T) {
		now := time.Now()
		dep := DepositRequest{
			ID:         "dep-1",
			Seq:        1,
			Username:   "bob",
			Amount:     decimal.NewFromInt(20),
			Timestamp:  now,
			Status:     DepositStatusPending,
			ResolvedAt: &now,
		}
		raw, err := Encode(KindDeposit, dep)
		require.NoError(t, err)

		var got DepositRequest
		assert.ErrorIs(t, Decode(raw, KindDeposit, &got), ErrCorruptRecord)
	})
}

func TestTransactionRecord_Signed(t *testing.T) {
	credit := TransactionRecord{Type: TransactionCredit, Amount: decimal.NewFromInt(5)}
	debit := TransactionRecord{Type: TransactionDebit, Amount: decimal.NewFromInt(5)}

	assert.True(t, credit.Signed().Equal(decimal.NewFromInt(5)))
	assert.True(t, debit.Signed().Equal(decimal.NewFromInt(-5)))
}

func TestAccount_SnapshotExcludesCredential(t *testing.T) {
	snap := sampleAccount().Snapshot()
	assert.Equal(t, "alice", snap.Username)
	assert.Equal(t, RoleUser, snap.Role)
}
