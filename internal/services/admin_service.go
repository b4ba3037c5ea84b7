package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/models"
)

// AdminService exposes the admin dashboard operations. Authorization is
// enforced by the ledger against the stored account of the caller.
type AdminService struct {
	ledger   *ledger.Service
	validate *ValidationHelper
}

// StatusRequest sets an account status
// @Description Account status change
type StatusRequest struct {
	Status models.AccountStatus `json:"status" validate:"required,oneof=approved blocked" example:"blocked"`
}

// BalanceAdjustmentRequest applies a signed delta to a balance
// @Description Manual balance adjustment; negative values debit
type BalanceAdjustmentRequest struct {
	Delta decimal.Decimal `json:"delta" swaggertype:"string" example:"-5"`
}

// AccountResponse wraps an account after an admin change
// @Description Account after an admin operation
type AccountResponse struct {
	Success bool                   `json:"success" example:"true"`
	Message string                 `json:"message" example:"Account approved."`
	Account models.AccountSnapshot `json:"account"`
}

// DepositResolutionResponse wraps a resolved deposit request
// @Description Deposit request after approval or rejection
type DepositResolutionResponse struct {
	Success bool                  `json:"success" example:"true"`
	Message string                `json:"message" example:"Deposit approved."`
	Deposit models.DepositRequest `json:"deposit"`
}

func NewAdminService(ledgerService *ledger.Service) *AdminService {
	return &AdminService{
		ledger:   ledgerService,
		validate: NewValidationHelper(),
	}
}

// ListAccounts returns all user accounts
// @Summary List accounts
// @Description All non-admin accounts, filtered and sorted
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, blocked or all"
// @Param sort query string false "username, status or balance"
// @Param order query string false "asc or desc"
// @Success 200 {array} models.AccountSnapshot "Accounts"
// @Failure 403 {object} ErrorResponse "Admin privileges required"
// @Router /admin/accounts [get]
func (s *AdminService) ListAccounts(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	desc, err := ledger.ParseSortOrder(q.Get("order"))
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}

	accounts, err := s.ledger.ListAccounts(r.Context(), principal, ledger.AccountQuery{
		Status: q.Get("status"),
		SortBy: q.Get("sort"),
		Desc:   desc,
	})
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// ApproveAccount approves a pending account
// @Summary Approve account
// @Description Approve a pending account and credit the welcome bonus
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} AccountResponse "Approved"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 409 {object} ErrorResponse "Account is not pending"
// @Router /admin/accounts/{username}/approve [post]
func (s *AdminService) ApproveAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	snap, err := s.ledger.ApproveAccount(r.Context(), principal, chi.URLParam(r, "username"))
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Success: true, Message: "Account approved.", Account: snap})
}

// SetStatus approves or blocks an account
// @Summary Set account status
// @Description Set an account to approved or blocked. No transaction is recorded.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} AccountResponse "Status updated"
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Router /admin/accounts/{username}/status [put]
func (s *AdminService) SetStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if !s.validate.DecodeJSON(w, r, &req) {
		return
	}

	snap, err := s.ledger.SetAccountStatus(r.Context(), principal, chi.URLParam(r, "username"), req.Status)
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Success: true, Message: "Account status updated to " + string(snap.Status) + ".", Account: snap})
}

// AdjustBalance applies a manual credit or debit
// @Summary Adjust balance
// @Description Apply a signed delta to an account balance. No floor is enforced.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body BalanceAdjustmentRequest true "Delta"
// @Success 200 {object} AccountResponse "Balance updated"
// @Failure 400 {object} ErrorResponse "Zero delta"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Router /admin/accounts/{username}/balance [post]
func (s *AdminService) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req BalanceAdjustmentRequest
	if !s.validate.DecodeJSON(w, r, &req) {
		return
	}

	snap, err := s.ledger.AdminAdjustBalance(r.Context(), principal, chi.URLParam(r, "username"), req.Delta)
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{Success: true, Message: "Balance updated.", Account: snap})
}

// AccountTransactions lists an account's transactions
// @Summary List account transactions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {array} models.TransactionRecord "Transactions, newest first"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Router /admin/accounts/{username}/transactions [get]
func (s *AdminService) AccountTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	records, err := s.ledger.ListTransactions(r.Context(), principal, chi.URLParam(r, "username"))
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Reconcile compares balance and ledger sum
// @Summary Reconcile account
// @Description Recompute the ledger sum and report drift from the cached balance
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} ledger.Reconciliation "Reconciliation"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Router /admin/accounts/{username}/reconcile [get]
func (s *AdminService) Reconcile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	rec, err := s.ledger.Reconcile(r.Context(), principal, chi.URLParam(r, "username"))
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListDeposits returns deposit requests
// @Summary List deposit requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, rejected or all"
// @Param sort query string false "username, amount or timestamp (default, newest first)"
// @Param order query string false "asc or desc"
// @Success 200 {array} models.DepositRequest "Deposit requests"
// @Failure 403 {object} ErrorResponse "Admin privileges required"
// @Router /admin/deposits [get]
func (s *AdminService) ListDeposits(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	desc, err := ledger.ParseSortOrder(q.Get("order"))
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}

	deposits, err := s.ledger.ListDepositRequests(r.Context(), principal, ledger.DepositQuery{
		Status: q.Get("status"),
		SortBy: q.Get("sort"),
		Desc:   desc,
	})
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deposits)
}

// ApproveDeposit approves a pending deposit request
// @Summary Approve deposit
// @Description Approve a pending deposit request and credit its amount
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deposit request ID"
// @Success 200 {object} DepositResolutionResponse "Approved"
// @Failure 404 {object} ErrorResponse "Deposit request not found"
// @Failure 409 {object} ErrorResponse "Already resolved"
// @Router /admin/deposits/{id}/approve [post]
func (s *AdminService) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	req, err := s.ledger.ApproveDeposit(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DepositResolutionResponse{Success: true, Message: "Deposit approved.", Deposit: *req})
}

// RejectDeposit rejects a pending deposit request
// @Summary Reject deposit
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deposit request ID"
// @Success 200 {object} DepositResolutionResponse "Rejected"
// @Failure 404 {object} ErrorResponse "Deposit request not found"
// @Failure 409 {object} ErrorResponse "Already resolved"
// @Router /admin/deposits/{id}/reject [post]
func (s *AdminService) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	req, err := s.ledger.RejectDeposit(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DepositResolutionResponse{Success: true, Message: "Deposit rejected.", Deposit: *req})
}
