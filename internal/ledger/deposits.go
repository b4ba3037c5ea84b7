package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/snapedit/backend/internal/kv"
	"github.com/snapedit/backend/internal/models"
)

const (
	depositPrefix   = "deposits/"
	depositSequence = "deposits"
)

// DepositQueue holds deposit requests. Requests are never deleted.
type DepositQueue struct{}

func NewDepositQueue() *DepositQueue {
	return &DepositQueue{}
}

func depositKey(id string) string {
	return depositPrefix + id
}

// Submit records a pending request
func (q *DepositQueue) Submit(ctx context.Context, tx kv.Tx, username string, amount decimal.Decimal, now time.Time) (*models.DepositRequest, error) {
	if !amount.IsPositive() {
		return nil, newError(KindInvalidInput, "Amount must be positive.")
	}

	seq, err := kv.NextSequence(ctx, tx, depositSequence)
	if err != nil {
		return nil, storeFailure("allocate deposit sequence", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeFailure("generate deposit id", err)
	}

	req := &models.DepositRequest{
		ID:        id.String(),
		Seq:       seq,
		Username:  username,
		Amount:    amount,
		Timestamp: now,
		Status:    models.DepositStatusPending,
	}
	if err := q.save(ctx, tx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (q *DepositQueue) Get(ctx context.Context, tx kv.Tx, id string) (*models.DepositRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, newError(KindNotFound, "Deposit request %q not found.", id)
	}

	raw, err := tx.Get(ctx, depositKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, newError(KindNotFound, "Deposit request %q not found.", id)
	}
	if err != nil {
		return nil, storeFailure("read deposit", err)
	}

	var req models.DepositRequest
	if err := models.Decode(raw, models.KindDeposit, &req); err != nil {
		return nil, storeFailure("decode deposit "+id, err)
	}
	return &req, nil
}

// Resolve moves a pending request to approved or rejected. Resolved requests are KindAlreadyResolved.
func (q *DepositQueue) Resolve(ctx context.Context, tx kv.Tx, id string, status models.DepositStatus, actor string, now time.Time) (*models.DepositRequest, error) {
	if status != models.DepositStatusApproved && status != models.DepositStatusRejected {
		return nil, newError(KindInvalidInput, "Deposit resolution must be approved or rejected.")
	}

	req, err := q.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.DepositStatusPending {
		return nil, newError(KindAlreadyResolved, "Deposit request %s is already %s.", id, req.Status)
	}

	resolvedAt := now
	req.Status = status
	req.ResolvedBy = actor
	req.ResolvedAt = &resolvedAt
	if err := q.save(ctx, tx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// List returns every request in submission order. Undecodable records are reported in skipped.
func (q *DepositQueue) List(ctx context.Context, tx kv.Tx) (requests []*models.DepositRequest, skipped []string, err error) {
	entries, err := tx.Scan(ctx, depositPrefix)
	if err != nil {
		return nil, nil, storeFailure("scan deposits", err)
	}

	requests = make([]*models.DepositRequest, 0, len(entries))
	for _, e := range entries {
		var req models.DepositRequest
		if err := models.Decode(e.Value, models.KindDeposit, &req); err != nil {
			skipped = append(skipped, e.Key)
			continue
		}
		requests = append(requests, &req)
	}
	sortBySeq(requests, func(r *models.DepositRequest) int64 { return r.Seq })
	return requests, skipped, nil
}

func (q *DepositQueue) save(ctx context.Context, tx kv.Tx, req *models.DepositRequest) error {
	raw, err := models.Encode(models.KindDeposit, req)
	if err != nil {
		return storeFailure("encode deposit", err)
	}
	if err := tx.Put(ctx, depositKey(req.ID), raw); err != nil {
		return storeFailure("write deposit", err)
	}
	return nil
}
