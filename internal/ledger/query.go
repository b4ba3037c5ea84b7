package ledger

import (
	"sort"
	"strings"

	"github.com/snapedit/backend/internal/models"
)

// AccountQuery filters and orders the admin account listing.
type AccountQuery struct {
	// Status filters by account status; empty or "all" keeps every account.
	Status string
	// SortBy is username, status or balance. Defaults to username.
	SortBy string
	Desc   bool
}

// DepositQuery filters and orders the admin deposit listing.
type DepositQuery struct {
	Status string
	// SortBy is username, amount or timestamp. Defaults to timestamp, newest first.
	SortBy string
	Desc   bool
}

// ParseSortOrder reports whether order requests descending sort.
func ParseSortOrder(order string) (desc bool, err error) {
	switch strings.ToLower(order) {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, newError(KindInvalidInput, "Sort order must be asc or desc.")
}

func sortBySeq[T any](items []T, seq func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool { return seq(items[i]) < seq(items[j]) })
}

func (q AccountQuery) apply(accounts []*models.Account) ([]*models.Account, error) {
	status := strings.ToLower(q.Status)
	if status != "" && status != "all" && !models.AccountStatus(status).Valid() {
		return nil, newError(KindInvalidInput, "Unknown account status %q.", q.Status)
	}

	var compare func(a, b *models.Account) int
	switch strings.ToLower(q.SortBy) {
	case "", "username":
		compare = func(a, b *models.Account) int { return strings.Compare(a.Username, b.Username) }
	case "status":
		compare = func(a, b *models.Account) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case "balance":
		compare = func(a, b *models.Account) int { return a.Balance.Cmp(b.Balance) }
	default:
		return nil, newError(KindInvalidInput, "Accounts can be sorted by username, status or balance.")
	}

	out := make([]*models.Account, 0, len(accounts))
	for _, acc := range accounts {
		if status == "" || status == "all" || string(acc.Status) == status {
			out = append(out, acc)
		}
	}
	sortStable(out, compare, q.Desc)
	return out, nil
}

func (q DepositQuery) apply(requests []*models.DepositRequest) ([]*models.DepositRequest, error) {
	status := strings.ToLower(q.Status)
	if status != "" && status != "all" && !models.DepositStatus(status).Valid() {
		return nil, newError(KindInvalidInput, "Unknown deposit status %q.", q.Status)
	}

	desc := q.Desc
	var compare func(a, b *models.DepositRequest) int
	switch strings.ToLower(q.SortBy) {
	case "":
		desc = true
		fallthrough
	case "timestamp":
		compare = func(a, b *models.DepositRequest) int { return a.Timestamp.Compare(b.Timestamp) }
	case "username":
		compare = func(a, b *models.DepositRequest) int { return strings.Compare(a.Username, b.Username) }
	case "amount":
		compare = func(a, b *models.DepositRequest) int { return a.Amount.Cmp(b.Amount) }
	default:
		return nil, newError(KindInvalidInput, "Deposits can be sorted by username, amount or timestamp.")
	}

	out := make([]*models.DepositRequest, 0, len(requests))
	for _, req := range requests {
		if status == "" || status == "all" || string(req.Status) == status {
			out = append(out, req)
		}
	}
	sortStable(out, compare, desc)
	return out, nil
}

// sortStable orders by cmp, keeping the incoming order for ties in both directions.
func sortStable[T any](items []T, cmp func(a, b T) int, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}
