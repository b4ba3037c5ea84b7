package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is fixed at account creation
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AccountStatus represents account lifecycle state
type AccountStatus string

// AccountStatus values
const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusApproved AccountStatus = "approved"
	AccountStatusBlocked  AccountStatus = "blocked"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusPending, AccountStatusApproved, AccountStatusBlocked:
		return true
	}
	return false
}

// Account is the stored account record. Balance is a cached projection of the
// account's transaction records.
type Account struct {
	Username     string          `json:"username" validate:"required"`
	PasswordHash string          `json:"password_hash" validate:"required"`
	Balance      decimal.Decimal `json:"balance"`
	Role         Role            `json:"role" validate:"required,oneof=user admin"`
	Status       AccountStatus   `json:"status" validate:"required,oneof=pending approved blocked"`
	Seq          int64           `json:"seq" validate:"gt=0"`
	CreatedAt    time.Time       `json:"created_at" validate:"required"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Snapshot returns the account without its credential.
func (a *Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		Username:  a.Username,
		Balance:   a.Balance,
		Role:      a.Role,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

// AccountSnapshot is the account view returned to callers
// @Description Account without its password credential
type AccountSnapshot struct {
	Username  string          `json:"username" example:"alice"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string" example:"10"`
	Role      Role            `json:"role" example:"user"`
	Status    AccountStatus   `json:"status" example:"approved"`
	CreatedAt time.Time       `json:"created_at"`
}
