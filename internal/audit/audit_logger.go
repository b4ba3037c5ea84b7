package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventAccountRegistered = "ACCOUNT_REGISTERED"
	EventAccountApproved   = "ACCOUNT_APPROVED"
	EventStatusChanged     = "ACCOUNT_STATUS_CHANGED"
	EventBalanceMutated    = "BALANCE_MUTATED"
	EventDepositSubmitted  = "DEPOSIT_SUBMITTED"
	EventDepositResolved   = "DEPOSIT_RESOLVED"
	EventError             = "ERROR"
)

type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Actor     string            `json:"actor,omitempty"`
	Username  string            `json:"username"`
	Reference string            `json:"reference,omitempty"`
	Amount    string            `json:"amount,omitempty"`
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
}

// Logger is what the ledger records audit events through
type Logger interface {
	LogAccount(eventType, actor, username, status string)
	LogBalance(reference, username string, delta decimal.Decimal, balance decimal.Decimal, description string)
	LogDeposit(eventType, actor, depositID, username string, amount decimal.Decimal, status string)
	LogError(operation, username string, err error)
}

type AuditLogger struct {
	log zerolog.Logger
	now func() time.Time
}

func NewAuditLogger(log zerolog.Logger) *AuditLogger {
	return &AuditLogger{
		log: log.With().Str("component", "audit").Logger(),
		now: time.Now,
	}
}

func (a *AuditLogger) LogAccount(eventType, actor, username, status string) {
	a.emit(AuditEvent{
		EventType: eventType,
		Actor:     actor,
		Username:  username,
		Status:    status,
	})
}

func (a *AuditLogger) LogBalance(reference, username string, delta, balance decimal.Decimal, description string) {
	a.emit(AuditEvent{
		EventType: EventBalanceMutated,
		Username:  username,
		Reference: reference,
		Amount:    delta.String(),
		Status:    "SUCCESS",
		Details: map[string]string{
			"balance":     balance.String(),
			"description": description,
		},
	})
}

func (a *AuditLogger) LogDeposit(eventType, actor, depositID, username string, amount decimal.Decimal, status string) {
	a.emit(AuditEvent{
		EventType: eventType,
		Actor:     actor,
		Username:  username,
		Reference: depositID,
		Amount:    amount.String(),
		Status:    status,
	})
}

func (a *AuditLogger) LogError(operation, username string, err error) {
	a.emit(AuditEvent{
		EventType: EventError,
		Username:  username,
		Status:    "FAILED",
		Details: map[string]string{
			"operation": operation,
			"error":     err.Error(),
		},
	})
}

func (a *AuditLogger) emit(event AuditEvent) {
	event.Timestamp = a.now().UTC()
	a.log.Info().Interface("audit", event).Msg("AUDIT")
}

// Nop discards events
type Nop struct{}

func (Nop) LogAccount(string, string, string, string) {}
func (Nop) LogBalance(string, string, decimal.Decimal, decimal.Decimal, string) {}
func (Nop) LogDeposit(string, string, string, string, decimal.Decimal, string) {}
func (Nop) LogError(string, string, error) {}
