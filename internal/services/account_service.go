package services

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/logger"
	"github.com/snapedit/backend/internal/models"
)

// AccountService serves the signed-in user's own balance, history and deposits.
type AccountService struct {
	ledger         *ledger.Service
	generationCost decimal.Decimal
	validate       *ValidationHelper
}

// ChargeResponse is returned after a successful generation charge
// @Description Result of charging for one image generation
type ChargeResponse struct {
	Success bool                   `json:"success" example:"true"`
	Message string                 `json:"message" example:"Generation charged."`
	Cost    decimal.Decimal        `json:"cost" swaggertype:"string" example:"1"`
	Account models.AccountSnapshot `json:"account"`
}

// DepositRequestBody is the payload of a deposit claim
// @Description Deposit request payload
type DepositRequestBody struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"50"`
}

// DepositResponse is returned after a deposit request is queued
// @Description Submitted deposit request
type DepositResponse struct {
	Success bool                  `json:"success" example:"true"`
	Message string                `json:"message" example:"Deposit request submitted. An admin will review it shortly."`
	Deposit models.DepositRequest `json:"deposit"`
}

func NewAccountService(ledgerService *ledger.Service, generationCost decimal.Decimal) *AccountService {
	return &AccountService{
		ledger:         ledgerService,
		generationCost: generationCost,
		validate:       NewValidationHelper(),
	}
}

// ChargeGeneration debits the cost of one image generation
// @Summary Charge for a generation
// @Description Atomically check and deduct the configured generation cost from the caller's balance
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ChargeResponse "Charged"
// @Failure 402 {object} ErrorResponse "Insufficient balance"
// @Failure 403 {object} ErrorResponse "Account pending or blocked"
// @Router /generations/charge [post]
func (s *AccountService) ChargeGeneration(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	snap, err := s.ledger.ChargeForGeneration(r.Context(), principal, s.generationCost)
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}

	lg := logger.Component(logger.FromContext(r.Context()), "account")
	lg.Info().
		Str("username", principal.Username).
		Str("balance", snap.Balance.String()).
		Msg("generation charged")

	writeJSON(w, http.StatusOK, ChargeResponse{
		Success: true,
		Message: "Generation charged.",
		Cost:    s.generationCost,
		Account: snap,
	})
}

// ListTransactions returns the caller's transaction history
// @Summary List own transactions
// @Description Transaction records of the caller, newest first
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TransactionRecord "Transactions"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /transactions [get]
func (s *AccountService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	records, err := s.ledger.ListTransactions(r.Context(), principal, principal.Username)
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// SubmitDeposit queues a deposit claim for admin review
// @Summary Submit a deposit request
// @Description Claim an off-platform payment. The balance changes only when an admin approves it.
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DepositRequestBody true "Deposit amount"
// @Success 201 {object} DepositResponse "Submitted"
// @Failure 400 {object} ErrorResponse "Amount must be positive"
// @Failure 403 {object} ErrorResponse "Account blocked"
// @Router /deposits [post]
func (s *AccountService) SubmitDeposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var body DepositRequestBody
	if !s.validate.DecodeJSON(w, r, &body) {
		return
	}

	req, err := s.ledger.SubmitDepositRequest(r.Context(), principal, body.Amount)
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, DepositResponse{
		Success: true,
		Message: "Deposit request submitted. An admin will review it shortly.",
		Deposit: *req,
	})
}
