package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/snapedit/backend/internal/audit"
	"github.com/snapedit/backend/internal/config"
	"github.com/snapedit/backend/internal/kv/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuditedService(t *testing.T) (*Service, *memory.Store, *MockAuditLogger) {
	t.Helper()
	auditor := new(MockAuditLogger)
	auditor.On("LogBalance", mock.Anything, "admin", decEq("9999"), decEq("9999"), "Initial admin balance").Once()

	store := memory.New()
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(store, NewArgon2Hasher(testArgon2), config.DefaultLedgerConfig(),
		WithClock(clock.Now),
		WithAuditLogger(auditor),
	)
	require.NoError(t, svc.SeedAdmin(context.Background()))
	return svc, store, auditor
}

func TestAudit_EventsFollowCommittedChanges(t *testing.T) {
	ctx := context.Background()
	svc, _, auditor := newAuditedService(t)

	auditor.On("LogAccount", audit.EventAccountRegistered, "alice", "alice", "pending").Once()
	auditor.On("LogAccount", audit.EventAccountApproved, "admin", "alice", "approved").Once()
	auditor.On("LogBalance", mock.Anything, "alice", decEq("10"), decEq("10"), "Account approved - Welcome bonus").Once()
	auditor.On("LogBalance", mock.Anything, "alice", decEq("-1"), decEq("9"), "Image Generation").Once()
	auditor.On("LogDeposit", audit.EventDepositSubmitted, "alice", mock.Anything, "alice", decEq("50"), "pending").Once()
	auditor.On("LogDeposit", audit.EventDepositResolved, "admin", mock.Anything, "alice", decEq("50"), "approved").Once()
	auditor.On("LogBalance", mock.Anything, "alice", decEq("50"), decEq("59"), "Deposit approved by admin").Once()

	alice := approvedUser(t, svc, "alice")
	_, err := svc.ChargeForGeneration(ctx, alice, dec("1"))
	require.NoError(t, err)

	req, err := svc.SubmitDepositRequest(ctx, alice, dec("50"))
	require.NoError(t, err)
	_, err = svc.ApproveDeposit(ctx, adminPrincipal, req.ID)
	require.NoError(t, err)

	auditor.AssertExpectations(t)
}

func TestAudit_RejectedOperationsEmitNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, auditor := newAuditedService(t)

	auditor.On("LogAccount", audit.EventAccountRegistered, "bob", "bob", "pending").Once()
	_, err := svc.Register(ctx, "bob", "secret")
	require.NoError(t, err)

	bob := Principal{Username: "bob"}
	_, err = svc.ChargeForGeneration(ctx, bob, dec("1"))
	assertKind(t, err, KindPendingApproval)

	_, err = svc.ApproveAccount(ctx, bob, "bob")
	assertKind(t, err, KindUnauthorized)

	_, err = svc.AdminAdjustBalance(ctx, adminPrincipal, "bob", dec("0"))
	assertKind(t, err, KindInvalidInput)

	auditor.AssertExpectations(t)
	auditor.AssertNotCalled(t, "LogBalance", mock.Anything, "bob", mock.Anything, mock.Anything, mock.Anything)
	auditor.AssertNotCalled(t, "LogError", mock.Anything, mock.Anything, mock.Anything)
}

func TestAudit_StoreFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	svc, store, auditor := newAuditedService(t)
	require.NoError(t, store.Close())

	auditor.On("LogError", "charge_for_generation", "alice", mock.Anything).Once()

	_, err := svc.ChargeForGeneration(ctx, Principal{Username: "alice"}, dec("1"))
	assertKind(t, err, KindStoreFailure)

	auditor.AssertExpectations(t)
}
