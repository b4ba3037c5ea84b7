package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_ChargeGeneration(t *testing.T) {
	h := newHarness(t, nil, nil)
	token := h.approvedUser(t, "alice")

	t.Run("charges configured cost", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/generations/charge", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ChargeResponse](t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "1", resp.Cost.String())
		assert.Equal(t, "9", resp.Account.Balance.String())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := h.ledger.AdminAdjustBalance(t.Context(), adminActor, "alice", h.mustDecimal(t, "-8.5"))
		require.NoError(t, err)

		w := h.do(t, http.MethodPost, "/generations/charge", token, nil)

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "insufficient_balance", resp.Code)
		assert.Equal(t, "Insufficient balance. You need 1 credit(s). Your balance is 0.50 (short by 0.50).", resp.Error)
		assert.Equal(t, "0.5", resp.Details["shortfall"])
	})

	t.Run("requires authentication", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/generations/charge", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccountService_ListTransactions(t *testing.T) {
	h := newHarness(t, nil, nil)
	token := h.approvedUser(t, "bob")

	w := h.do(t, http.MethodPost, "/generations/charge", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	records := decode[[]models.TransactionRecord](t, w)
	require.Len(t, records, 2)
	assert.Equal(t, "Image Generation", records[0].Description)
	assert.Equal(t, models.TransactionDebit, records[0].Type)
	assert.Equal(t, "Account approved - Welcome bonus", records[1].Description)
}

func TestAccountService_SubmitDeposit(t *testing.T) {
	h := newHarness(t, nil, nil)
	token := h.approvedUser(t, "carol")

	t.Run("submitted", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/deposits", token, `{"amount":"50"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decode[DepositResponse](t, w)
		assert.Equal(t, models.DepositStatusPending, resp.Deposit.Status)
		assert.Equal(t, "carol", resp.Deposit.Username)
		assert.Equal(t, "50", resp.Deposit.Amount.String())
	})

	t.Run("numeric amount", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/deposits", token, `{"amount":12.5}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "12.5", decode[DepositResponse](t, w).Deposit.Amount.String())
	})

	for _, body := range []string{
		`{"amount":"0"}`,
		`{"amount":"-3"}`,
		`{}`,
		`{"amount":"1e100000000"}`,
		`{"amount":1e-100000000}`,
		`{"amount":"0.000000001"}`,
		`{"amount":"1000000.01"}`,
	} {
		t.Run("rejects "+body, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/deposits", token, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("balance untouched until approval", func(t *testing.T) {
		snap, err := h.ledger.Session(t.Context(), userActor("carol"))
		require.NoError(t, err)
		assert.Equal(t, "10", snap.Balance.String())
	})
}

func TestAccountService_ListTransactionsBlocked(t *testing.T) {
	h := newHarness(t, nil, nil)
	token := h.approvedUser(t, "nora")

	_, err := h.ledger.SetAccountStatus(context.Background(), adminActor, "nora", models.AccountStatusBlocked)
	require.NoError(t, err)

	w := h.do(t, http.MethodGet, "/transactions", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(ledger.KindBlocked), decode[ErrorResponse](t, w).Code)
}
