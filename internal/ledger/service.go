// Package ledger implements accounts, balances and deposit requests on top of a kv.Store.
// Every operation runs as one atomic unit, and a balance only changes together with
// the transaction record that explains it.
package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/snapedit/backend/internal/audit"
	"github.com/snapedit/backend/internal/config"
	"github.com/snapedit/backend/internal/kv"
	"github.com/snapedit/backend/internal/metrics"
	"github.com/snapedit/backend/internal/models"
)

const (
	descriptionWelcomeBonus    = "Account approved - Welcome bonus"
	descriptionGeneration      = "Image Generation"
	descriptionManualCredit    = "Manual credit by admin"
	descriptionManualDebit     = "Manual debit by admin"
	descriptionDepositApproved = "Deposit approved by admin"
	descriptionAdminSeed       = "Initial admin balance"
)

// Principal is the caller of an operation, as carried by a session.
type Principal struct {
	Username string
	Role     models.Role
}

// Reconciliation compares an account's cached balance with its ledger.
type Reconciliation struct {
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string"`
	LedgerSum decimal.Decimal `json:"ledger_sum" swaggertype:"string"`
	Drift     decimal.Decimal `json:"drift" swaggertype:"string"`
	Records   int             `json:"records"`
}

// Consistent reports whether the balance equals the ledger sum.
func (r Reconciliation) Consistent() bool {
	return r.Drift.IsZero()
}

type Service struct {
	store    kv.Store
	accounts *AccountDirectory
	txlog    *TransactionLog
	deposits *DepositQueue
	hasher   PasswordHasher
	cfg      config.LedgerConfig
	audit    audit.Logger
	metrics  *metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithAuditLogger(a audit.Logger) Option {
	return func(s *Service) { s.audit = a }
}

// WithMetrics records operation outcomes. A nil recorder disables metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "ledger").Logger() }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store kv.Store, hasher PasswordHasher, cfg config.LedgerConfig, opts ...Option) *Service {
	s := &Service{
		store:    store,
		accounts: NewAccountDirectory(hasher, cfg.AdminUsername, cfg.MinPasswordLength),
		txlog:    NewTransactionLog(),
		deposits: NewDepositQueue(),
		hasher:   hasher,
		cfg:      cfg,
		audit:    audit.Nop{},
		log:      zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// effects are side effects that only happen once the atomic unit commits.
type effects struct {
	fns []func()
}

func (e *effects) add(fn func()) {
	e.fns = append(e.fns, fn)
}

func (e *effects) run() {
	for _, fn := range e.fns {
		fn()
	}
}

func (s *Service) update(ctx context.Context, op, subject string, fn func(tx kv.Tx, fx *effects) error) error {
	var fx *effects
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		// the store may retry fn, so effects start over on every attempt
		fx = &effects{}
		return fn(tx, fx)
	})
	if err != nil {
		return s.fail(op, subject, err)
	}
	fx.run()
	s.metrics.LedgerOp(op, "success")
	return nil
}

func (s *Service) view(ctx context.Context, op, subject string, fn func(tx kv.Tx) error) error {
	if err := s.store.View(ctx, fn); err != nil {
		return s.fail(op, subject, err)
	}
	s.metrics.LedgerOp(op, "success")
	return nil
}

func (s *Service) fail(op, subject string, err error) error {
	le := asError(op, err)
	s.metrics.LedgerOp(op, string(le.Kind))
	if le.Kind == KindStoreFailure {
		s.log.Error().Err(le).Str("operation", op).Str("username", subject).Msg("store failure")
		s.audit.LogError(op, subject, le)
	} else {
		s.log.Debug().Str("operation", op).Str("username", subject).Str("kind", string(le.Kind)).Msg(le.Message)
	}
	return le
}

// mutateBalance is the only way a balance changes. A zero delta writes nothing.
func (s *Service) mutateBalance(ctx context.Context, tx kv.Tx, fx *effects, username string, delta decimal.Decimal, description string) (*models.Account, error) {
	acc, err := s.accounts.Get(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return acc, nil
	}

	typ := models.TransactionCredit
	if delta.IsNegative() {
		typ = models.TransactionDebit
	}

	now := s.now()
	rec, err := s.txlog.Append(ctx, tx, username, typ, delta.Abs(), description, now)
	if err != nil {
		return nil, err
	}

	acc.Balance = acc.Balance.Add(delta)
	acc.UpdatedAt = now
	if err := s.accounts.Save(ctx, tx, acc); err != nil {
		return nil, err
	}

	balance := acc.Balance
	fx.add(func() {
		s.audit.LogBalance(rec.ID, username, delta, balance, description)
		s.metrics.BalanceMutation(string(typ), delta.Abs().InexactFloat64())
	})
	return acc, nil
}

// requireAdmin re-reads the actor so a stale session cannot act with revoked authority.
func (s *Service) requireAdmin(ctx context.Context, tx kv.Tx, actor Principal) error {
	acc, err := s.accounts.Get(ctx, tx, actor.Username)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return newError(KindUnauthorized, "Admin privileges required.")
		}
		return err
	}
	if acc.Role != models.RoleAdmin || acc.Status != models.AccountStatusApproved {
		return newError(KindUnauthorized, "Admin privileges required.")
	}
	return nil
}

// SeedAdmin creates the reserved admin account on first start. Existing data is left alone.
func (s *Service) SeedAdmin(ctx context.Context) error {
	hash, err := s.hasher.Hash(s.cfg.AdminPassword)
	if err != nil {
		return s.fail("seed_admin", s.cfg.AdminUsername, err)
	}

	created := false
	err = s.update(ctx, "seed_admin", s.cfg.AdminUsername, func(tx kv.Tx, fx *effects) error {
		created = false
		exists, err := s.accounts.Exists(ctx, tx, s.cfg.AdminUsername)
		if err != nil || exists {
			return err
		}
		if _, err := s.accounts.Create(ctx, tx, s.cfg.AdminUsername, hash, models.RoleAdmin, models.AccountStatusApproved, s.now()); err != nil {
			return err
		}
		if _, err := s.mutateBalance(ctx, tx, fx, s.cfg.AdminUsername, s.cfg.AdminBalance, descriptionAdminSeed); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return err
	}
	if created {
		s.log.Info().Str("username", s.cfg.AdminUsername).Msg("admin account seeded")
	}
	return nil
}

// Register creates a pending user account and returns the confirmation message.
// Checks run in order: username, uniqueness, password strength.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	const op = "register"
	if err := s.accounts.CheckUsername(username); err != nil {
		return "", s.fail(op, username, err)
	}

	var exists bool
	err := s.view(ctx, op, username, func(tx kv.Tx) error {
		var err error
		exists, err = s.accounts.Exists(ctx, tx, username)
		return err
	})
	if err != nil {
		return "", err
	}
	if exists {
		return "", s.fail(op, username, newError(KindDuplicateUsername, "Username already exists."))
	}
	if err := s.accounts.CheckPassword(password); err != nil {
		return "", s.fail(op, username, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", s.fail(op, username, err)
	}

	err = s.update(ctx, op, username, func(tx kv.Tx, fx *effects) error {
		if _, err := s.accounts.Create(ctx, tx, username, hash, models.RoleUser, models.AccountStatusPending, s.now()); err != nil {
			return err
		}
		fx.add(func() {
			s.audit.LogAccount(audit.EventAccountRegistered, username, username, string(models.AccountStatusPending))
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return "Registration successful! Your account is now pending approval.", nil
}

// Login verifies credentials. Only approved accounts may log in.
func (s *Service) Login(ctx context.Context, username, password string) (models.AccountSnapshot, error) {
	var snap models.AccountSnapshot
	err := s.view(ctx, "login", username, func(tx kv.Tx) error {
		acc, err := s.accounts.Authenticate(ctx, tx, username, password)
		if err != nil {
			return err
		}
		snap = acc.Snapshot()
		return nil
	})
	return snap, err
}

// Session returns the caller's current snapshot. Accounts that lost approval are rejected.
func (s *Service) Session(ctx context.Context, actor Principal) (models.AccountSnapshot, error) {
	var snap models.AccountSnapshot
	err := s.view(ctx, "session", actor.Username, func(tx kv.Tx) error {
		acc, err := s.accounts.Get(ctx, tx, actor.Username)
		if err != nil {
			if KindOf(err) == KindNotFound {
				return newError(KindUnauthorized, "Session is no longer valid.")
			}
			return err
		}
		if err := checkActive(acc); err != nil {
			return err
		}
		snap = acc.Snapshot()
		return nil
	})
	return snap, err
}

// ApproveAccount moves a pending account to approved and credits the welcome bonus.
func (s *Service) ApproveAccount(ctx context.Context, actor Principal, username string) (models.AccountSnapshot, error) {
	var snap models.AccountSnapshot
	err := s.update(ctx, "approve_account", username, func(tx kv.Tx, fx *effects) error {
		if err := s.requireAdmin(ctx, tx, actor); err != nil {
			return err
		}
		if _, err := s.accounts.Approve(ctx, tx, username, s.now()); err != nil {
			return err
		}
		acc, err := s.mutateBalance(ctx, tx, fx, username, s.cfg.WelcomeBonus, descriptionWelcomeBonus)
		if err != nil {
			return err
		}
		snap = acc.Snapshot()
		fx.add(func() {
			s.audit.LogAccount(audit.EventAccountApproved, actor.Username, username, string(models.AccountStatusApproved))
		})
		return nil
	})
	return snap, err
}

// SetAccountStatus sets approved or blocked. No transaction record is written.
func (s *Service) SetAccountStatus(ctx context.Context, actor Principal, username string, status models.AccountStatus) (models.AccountSnapshot, error) {
	var snap models.AccountSnapshot
	err := s.update(ctx, "set_account_status", username, func(tx kv.Tx, fx *effects) error {
		if err := s.requireAdmin(ctx, tx, actor); err != nil {
			return err
		}
		acc, err := s.accounts.SetStatus(ctx, tx, username, status, s.now())
		if err != nil {
			return err
		}
		snap = acc.Snapshot()
		fx.add(func() {
			s.audit.LogAccount(audit.EventStatusChanged, actor.Username, username, string(status))
		})
		return nil
	})
	return snap, err
}

// AdminAdjustBalance applies delta with no floor. A zero delta is rejected.
func (s *Service) AdminAdjustBalance(ctx context.Context, actor Principal, username string, delta decimal.Decimal) (models.AccountSnapshot, error) {
	const op = "admin_adjust_balance"
	if delta.IsZero() {
		return models.AccountSnapshot{}, s.fail(op, username, newError(KindInvalidInput, "Amount must not be zero."))
	}
	if err := checkAmount(delta, s.cfg.MaxAmount); err != nil {
		return models.AccountSnapshot{}, s.fail(op, username, err)
	}

	description := descriptionManualCredit
	if delta.IsNegative() {
		description = descriptionManualDebit
	}

	var snap models.AccountSnapshot
	err := s.update(ctx, op, username, func(tx kv.Tx, fx *effects) error {
		if err := s.requireAdmin(ctx, tx, actor); err != nil {
			return err
		}
		acc, err := s.mutateBalance(ctx, tx, fx, username, delta, description)
		if err != nil {
			return err
		}
		snap = acc.Snapshot()
		return nil
	})
	return snap, err
}

// ChargeForGeneration deducts cost from the caller. The balance check and the
// deduction happen in one atomic unit, so concurrent charges never overdraw.
func (s *Service) ChargeForGeneration(ctx context.Context, actor Principal, cost decimal.Decimal) (models.AccountSnapshot, error) {
	const op = "charge_for_generation"
	if !cost.IsPositive() {
		return models.AccountSnapshot{}, s.fail(op, actor.Username, newError(KindInvalidInput, "Amount must be positive."))
	}
	if err := checkAmount(cost, s.cfg.MaxAmount); err != nil {
		return models.AccountSnapshot{}, s.fail(op, actor.Username, err)
	}

	var snap models.AccountSnapshot
	err := s.update(ctx, op, actor.Username, func(tx kv.Tx, fx *effects) error {
		acc, err := s.accounts.Get(ctx, tx, actor.Username)
		if err != nil {
			return err
		}
		if err := checkActive(acc); err != nil {
			return err
		}
		if acc.Balance.LessThan(cost) {
			shortfall := cost.Sub(acc.Balance)
			return &Error{
				Kind: KindInsufficientBalance,
				Message: "Insufficient balance. You need " + cost.String() + " credit(s). Your balance is " +
					acc.Balance.StringFixed(2) + " (short by " + shortfall.StringFixed(2) + ").",
				Details: map[string]string{
					"required":  cost.String(),
					"balance":   acc.Balance.String(),
					"shortfall": shortfall.String(),
				},
			}
		}
		acc, err = s.mutateBalance(ctx, tx, fx, actor.Username, cost.Neg(), descriptionGeneration)
		if err != nil {
			return err
		}
		snap = acc.Snapshot()
		return nil
	})
	return snap, err
}

// SubmitDepositRequest queues a claim for admin review. Blocked accounts cannot submit.
func (s *Service) SubmitDepositRequest(ctx context.Context, actor Principal, amount decimal.Decimal) (*models.DepositRequest, error) {
	const op = "submit_deposit"
	if !amount.IsPositive() {
		return nil, s.fail(op, actor.Username, newError(KindInvalidInput, "Amount must be positive."))
	}
	if err := checkAmount(amount, s.cfg.MaxAmount); err != nil {
		return nil, s.fail(op, actor.Username, err)
	}

	var req *models.DepositRequest
	err := s.update(ctx, op, actor.Username, func(tx kv.Tx, fx *effects) error {
		acc, err := s.accounts.Get(ctx, tx, actor.Username)
		if err != nil {
			return err
		}
		if acc.Status == models.AccountStatusBlocked {
			return checkActive(acc)
		}
		req, err = s.deposits.Submit(ctx, tx, actor.Username, amount, s.now())
		if err != nil {
			return err
		}
		submitted := *req
		fx.add(func() {
			s.audit.LogDeposit(audit.EventDepositSubmitted, actor.Username, submitted.ID, submitted.Username, submitted.Amount, string(submitted.Status))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveDeposit resolves a pending request and credits its amount in the same atomic unit.
func (s *Service) ApproveDeposit(ctx context.Context, actor Principal, id string) (*models.DepositRequest, error) {
	return s.resolveDeposit(ctx, "approve_deposit", actor, id, models.DepositStatusApproved)
}

// RejectDeposit resolves a pending request without touching any balance.
func (s *Service) RejectDeposit(ctx context.Context, actor Principal, id string) (*models.DepositRequest, error) {
	return s.resolveDeposit(ctx, "reject_deposit", actor, id, models.DepositStatusRejected)
}

func (s *Service) resolveDeposit(ctx context.Context, op string, actor Principal, id string, status models.DepositStatus) (*models.DepositRequest, error) {
	var req *models.DepositRequest
	err := s.update(ctx, op, actor.Username, func(tx kv.Tx, fx *effects) error {
		if err := s.requireAdmin(ctx, tx, actor); err != nil {
			return err
		}
		var err error
		req, err = s.deposits.Resolve(ctx, tx, id, status, actor.Username, s.now())
		if err != nil {
			return err
		}
		if status == models.DepositStatusApproved {
			if _, err := s.mutateBalance(ctx, tx, fx, req.Username, req.Amount, descriptionDepositApproved); err != nil {
				return err
			}
		}
		resolved := *req
		fx.add(func() {
			s.audit.LogDeposit(audit.EventDepositResolved, actor.Username, resolved.ID, resolved.Username, resolved.Amount, string(resolved.Status))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListAccounts returns user accounts, excluding the reserved admin. On a store
// failure the result is an empty list alongside the error.
func (s *Service) ListAccounts(ctx context.Context, actor Principal, q AccountQuery) ([]models.AccountSnapshot, error) {
	out := []models.AccountSnapshot{}
	err := s.view(ctx, "list_accounts", actor.Username, func(tx kv.Tx) error {
		if err := s.requireAdmin(ctx, tx, actor); err != nil {
			return err
		}
		accounts, skipped, err := s.accounts.List(ctx, tx)
		if err != nil {
			return err
		}
		s.warnSkipped("list_accounts", skipped)

		users := accounts[:0]
		for _, acc := range accounts {
			if acc.Username != s.cfg.AdminUsername {
				users = append(users, acc)
			}
		}
		users, err = q.apply(users)
		if err != nil {
			return err
		}
		for _, acc := range users {
			out = append(out, acc.Snapshot())
		}
		return nil
	})
	if err != nil {
		return []models.AccountSnapshot{}, err
	}
	return out, nil
}

// ListDepositRequests returns deposit requests, newest first unless q says otherwise.
func (s *Service) ListDepositRequests(ctx context.Context, actor Principal, q DepositQuery) ([]models.DepositRequest, error) {
	out := []models.DepositRequest{}
	err := s.view(ctx, "list_deposits", actor.Username, func(tx kv.Tx) error {
		if err := s.requireAdmin(ctx, tx, actor); err != nil {
			return err
		}
		requests, skipped, err := s.deposits.List(ctx, tx)
		if err != nil {
			return err
		}
		s.warnSkipped("list_deposits", skipped)

		requests, err = q.apply(requests)
		if err != nil {
			return err
		}
		for _, req := range requests {
			out = append(out, *req)
		}
		return nil
	})
	if err != nil {
		return []models.DepositRequest{}, err
	}
	return out, nil
}

// ListTransactions returns username's records, newest first. Admins may read any
// account, users only their own and only while approved.
func (s *Service) ListTransactions(ctx context.Context, actor Principal, username string) ([]models.TransactionRecord, error) {
	out := []models.TransactionRecord{}
	err := s.view(ctx, "list_transactions", username, func(tx kv.Tx) error {
		self := actor.Username == username
		if !self {
			if err := s.requireAdmin(ctx, tx, actor); err != nil {
				return err
			}
		}
		acc, err := s.accounts.Get(ctx, tx, username)
		if err != nil {
			return err
		}
		if self {
			if err := checkActive(acc); err != nil {
				return err
			}
		}
		records, err := s.txlog.Query(ctx, tx, username)
		if err != nil {
			return err
		}
		out = records
		return nil
	})
	if err != nil {
		return []models.TransactionRecord{}, err
	}
	return out, nil
}

// Reconcile recomputes username's ledger sum and reports drift from the cached balance.
func (s *Service) Reconcile(ctx context.Context, actor Principal, username string) (Reconciliation, error) {
	var rec Reconciliation
	err := s.view(ctx, "reconcile", username, func(tx kv.Tx) error {
		if err := s.requireAdmin(ctx, tx, actor); err != nil {
			return err
		}
		acc, err := s.accounts.Get(ctx, tx, username)
		if err != nil {
			return err
		}
		records, err := s.txlog.Query(ctx, tx, username)
		if err != nil {
			return err
		}
		sum := Sum(records)
		rec = Reconciliation{
			Username:  username,
			Balance:   acc.Balance,
			LedgerSum: sum,
			Drift:     acc.Balance.Sub(sum),
			Records:   len(records),
		}
		return nil
	})
	if err == nil && !rec.Consistent() {
		s.log.Warn().Str("username", username).Str("drift", rec.Drift.String()).Msg("balance drift detected")
	}
	return rec, err
}

func (s *Service) warnSkipped(op string, keys []string) {
	if len(keys) == 0 {
		return
	}
	s.log.Warn().Str("operation", op).Strs("keys", keys).Msg("skipping corrupt records")
}
