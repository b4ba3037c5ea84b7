package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus represents deposit request state
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
	DepositStatusRejected DepositStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s DepositStatus) Valid() bool {
	switch s {
	case DepositStatusPending, DepositStatusApproved, DepositStatusRejected:
		return true
	}
	return false
}

// DepositRequest is a user's claim of an off-band payment.
// @Description Deposit request awaiting or after admin resolution
type DepositRequest struct {
	ID         string          `json:"id" validate:"required" example:"0192f1c4-7a1e-7c3b-9d2e-5f6a7b8c9d0e"`
	Seq        int64           `json:"seq" validate:"gt=0"`
	Username   string          `json:"username" validate:"required" example:"alice"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"50"`
	Timestamp  time.Time       `json:"timestamp" validate:"required"`
	Status     DepositStatus   `json:"status" validate:"required,oneof=pending approved rejected" example:"pending"`
	ResolvedBy string          `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// Check enforces invariants the validator cannot express.
func (d DepositRequest) Check() error {
	if !d.Amount.IsPositive() {
		return errors.New("deposit amount must be positive")
	}
	if d.Status == DepositStatusPending && d.ResolvedAt != nil {
		return errors.New("pending deposit cannot carry a resolution time")
	}
	return nil
}
