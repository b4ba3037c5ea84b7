package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/snapedit/backend/internal/kv"
	"github.com/snapedit/backend/internal/models"
)

const (
	transactionPrefix   = "transactions/"
	transactionSequence = "transactions"
)

// TransactionLog is the append-only record of balance changes, keyed per user.
type TransactionLog struct{}

func NewTransactionLog() *TransactionLog {
	return &TransactionLog{}
}

func transactionKey(username string, seq int64) string {
	return fmt.Sprintf("%s%s/%020d", transactionPrefix, username, seq)
}

// Append writes one record. Amount is the absolute value and must be positive.
func (l *TransactionLog) Append(ctx context.Context, tx kv.Tx, username string, typ models.TransactionType, amount decimal.Decimal, description string, now time.Time) (*models.TransactionRecord, error) {
	if !amount.IsPositive() {
		return nil, newError(KindInvalidInput, "Amount must be positive.")
	}

	seq, err := kv.NextSequence(ctx, tx, transactionSequence)
	if err != nil {
		return nil, storeFailure("allocate transaction sequence", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeFailure("generate transaction id", err)
	}

	rec := &models.TransactionRecord{
		ID:          id.String(),
		Seq:         seq,
		Username:    username,
		Type:        typ,
		Amount:      amount,
		Description: description,
		Timestamp:   now,
	}

	raw, err := models.Encode(models.KindTransaction, rec)
	if err != nil {
		return nil, storeFailure("encode transaction", err)
	}
	if err := tx.Put(ctx, transactionKey(username, seq), raw); err != nil {
		return nil, storeFailure("write transaction", err)
	}
	return rec, nil
}

// Query returns the user's records, newest first. Corrupt records fail the whole read.
func (l *TransactionLog) Query(ctx context.Context, tx kv.Tx, username string) ([]models.TransactionRecord, error) {
	entries, err := tx.Scan(ctx, transactionPrefix+username+"/")
	if err != nil {
		return nil, storeFailure("scan transactions", err)
	}

	records := make([]models.TransactionRecord, 0, len(entries))
	for _, e := range entries {
		var rec models.TransactionRecord
		if err := models.Decode(e.Value, models.KindTransaction, &rec); err != nil {
			return nil, storeFailure("decode transaction "+e.Key, err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].Seq > records[j].Seq
	})
	return records, nil
}

// Sum returns the signed total of records.
func Sum(records []models.TransactionRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Signed())
	}
	return total
}
