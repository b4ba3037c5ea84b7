package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/snapedit/backend/internal/kv"
	"github.com/snapedit/backend/internal/models"
)

const (
	accountPrefix     = "accounts/"
	accountSequence   = "accounts"
	maxUsernameLength = 64
)

// AccountDirectory owns account records and their lifecycle.
type AccountDirectory struct {
	hasher         PasswordHasher
	reserved       string
	minPasswordLen int
}

func NewAccountDirectory(hasher PasswordHasher, reservedUsername string, minPasswordLen int) *AccountDirectory {
	return &AccountDirectory{
		hasher:         hasher,
		reserved:       reservedUsername,
		minPasswordLen: minPasswordLen,
	}
}

func accountKey(username string) string {
	return accountPrefix + username
}

// CheckUsername rejects the reserved name and anything that cannot be used as a key segment.
func (d *AccountDirectory) CheckUsername(username string) error {
	if username == "" || username == d.reserved || len(username) > maxUsernameLength {
		return newError(KindInvalidUsername, "This username is reserved or invalid.")
	}
	for _, r := range username {
		if r == '/' || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return newError(KindInvalidUsername, "This username is reserved or invalid.")
		}
	}
	return nil
}

func (d *AccountDirectory) CheckPassword(password string) error {
	if len(password) < d.minPasswordLen {
		return newError(KindWeakPassword, "Password must be at least %d characters long.", d.minPasswordLen)
	}
	return nil
}

// Exists reports whether username is taken.
func (d *AccountDirectory) Exists(ctx context.Context, tx kv.Tx, username string) (bool, error) {
	_, err := tx.Get(ctx, accountKey(username))
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return false, nil
	case err != nil:
		return false, storeFailure("read account", err)
	}
	return true, nil
}

// Get loads an account. A missing account is KindNotFound.
func (d *AccountDirectory) Get(ctx context.Context, tx kv.Tx, username string) (*models.Account, error) {
	raw, err := tx.Get(ctx, accountKey(username))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, newError(KindNotFound, "Account %q not found.", username)
	}
	if err != nil {
		return nil, storeFailure("read account", err)
	}

	var acc models.Account
	if err := models.Decode(raw, models.KindAccount, &acc); err != nil {
		return nil, storeFailure("decode account "+username, err)
	}
	return &acc, nil
}

func (d *AccountDirectory) Save(ctx context.Context, tx kv.Tx, acc *models.Account) error {
	raw, err := models.Encode(models.KindAccount, acc)
	if err != nil {
		return storeFailure("encode account", err)
	}
	if err := tx.Put(ctx, accountKey(acc.Username), raw); err != nil {
		return storeFailure("write account", err)
	}
	return nil
}

// Create stores a new account with zero balance. The password must already be hashed.
func (d *AccountDirectory) Create(ctx context.Context, tx kv.Tx, username, passwordHash string, role models.Role, status models.AccountStatus, now time.Time) (*models.Account, error) {
	exists, err := d.Exists(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newError(KindDuplicateUsername, "Username already exists.")
	}

	seq, err := kv.NextSequence(ctx, tx, accountSequence)
	if err != nil {
		return nil, storeFailure("allocate account sequence", err)
	}

	acc := &models.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      decimal.Zero,
		Role:         role,
		Status:       status,
		Seq:          seq,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.Save(ctx, tx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Authenticate checks credentials, then status. Unknown user and wrong password are indistinguishable.
func (d *AccountDirectory) Authenticate(ctx context.Context, tx kv.Tx, username, password string) (*models.Account, error) {
	acc, err := d.Get(ctx, tx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(KindInvalidCredentials, "Invalid username or password.")
		}
		return nil, err
	}
	if !d.hasher.Verify(password, acc.PasswordHash) {
		return nil, newError(KindInvalidCredentials, "Invalid username or password.")
	}
	if err := checkActive(acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Approve moves a pending account to approved. Any other state is KindInvalidTransition.
func (d *AccountDirectory) Approve(ctx context.Context, tx kv.Tx, username string, now time.Time) (*models.Account, error) {
	acc, err := d.Get(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if acc.Status != models.AccountStatusPending {
		return nil, newError(KindInvalidTransition, "Account %q is %s, only pending accounts can be approved.", username, acc.Status)
	}
	acc.Status = models.AccountStatusApproved
	acc.UpdatedAt = now
	if err := d.Save(ctx, tx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// SetStatus sets approved or blocked from any state without a welcome bonus.
// Setting the current status is a no-op.
func (d *AccountDirectory) SetStatus(ctx context.Context, tx kv.Tx, username string, status models.AccountStatus, now time.Time) (*models.Account, error) {
	if status != models.AccountStatusApproved && status != models.AccountStatusBlocked {
		return nil, newError(KindInvalidInput, "Status must be approved or blocked.")
	}
	if username == d.reserved {
		return nil, newError(KindInvalidInput, "The %s account status cannot be changed.", d.reserved)
	}

	acc, err := d.Get(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if acc.Status == status {
		return acc, nil
	}
	acc.Status = status
	acc.UpdatedAt = now
	if err := d.Save(ctx, tx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// List returns every account in creation order. Undecodable records are reported in skipped.
func (d *AccountDirectory) List(ctx context.Context, tx kv.Tx) (accounts []*models.Account, skipped []string, err error) {
	entries, err := tx.Scan(ctx, accountPrefix)
	if err != nil {
		return nil, nil, storeFailure("scan accounts", err)
	}

	accounts = make([]*models.Account, 0, len(entries))
	for _, e := range entries {
		var acc models.Account
		if err := models.Decode(e.Value, models.KindAccount, &acc); err != nil {
			skipped = append(skipped, e.Key)
			continue
		}
		accounts = append(accounts, &acc)
	}
	sortBySeq(accounts, func(a *models.Account) int64 { return a.Seq })
	return accounts, skipped, nil
}

func checkActive(acc *models.Account) error {
	switch acc.Status {
	case models.AccountStatusApproved:
		return nil
	case models.AccountStatusPending:
		return newError(KindPendingApproval, "Your account is pending approval by an administrator.")
	case models.AccountStatusBlocked:
		return newError(KindBlocked, "Your account has been blocked. Please contact support.")
	}
	return storeFailure("check account", fmt.Errorf("unknown status %q", acc.Status))
}
