package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) LogAccount(eventType, actor, username, status string) {
	m.Called(eventType, actor, username, status)
}

func (m *MockAuditLogger) LogBalance(reference, username string, delta, balance decimal.Decimal, description string) {
	m.Called(reference, username, delta, balance, description)
}

func (m *MockAuditLogger) LogDeposit(eventType, actor, depositID, username string, amount decimal.Decimal, status string) {
	m.Called(eventType, actor, depositID, username, amount, status)
}

func (m *MockAuditLogger) LogError(operation, username string, err error) {
	m.Called(operation, username, err)
}

// decEq matches a decimal argument by value rather than by representation.
func decEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
