package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType encodes the ledger sign of a record
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// TransactionRecord is one immutable balance change.
// @Description Balance change record, newest first in listings
type TransactionRecord struct {
	ID          string          `json:"id" validate:"required" example:"0192f1c4-7a1e-7c3b-9d2e-5f6a7b8c9d0e"`
	Seq         int64           `json:"seq" validate:"gt=0"`
	Username    string          `json:"username" validate:"required" example:"alice"`
	Type        TransactionType `json:"type" validate:"required,oneof=credit debit" example:"credit"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"10"`
	Description string          `json:"description" example:"Account approved - Welcome bonus"`
	Timestamp   time.Time       `json:"timestamp" validate:"required"`
}

// Signed returns the amount with the sign implied by Type.
func (r TransactionRecord) Signed() decimal.Decimal {
	if r.Type == TransactionDebit {
		return r.Amount.Neg()
	}
	return r.Amount
}

// Check enforces invariants the validator cannot express.
func (r TransactionRecord) Check() error {
	if !r.Amount.IsPositive() {
		return errors.New("transaction amount must be positive")
	}
	return nil
}
