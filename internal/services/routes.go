package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mount registers the API routes on r. requireAuth guards everything except
// registration and login.
func Mount(r chi.Router, auth *AuthService, account *AccountService, admin *AdminService, requireAuth func(http.Handler) http.Handler) {
	// Public endpoints (no auth required)
	r.Post("/auth/register", auth.Register)
	r.Post("/auth/login", auth.Login)

	// Protected endpoints (auth required)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/auth/logout", auth.Logout)
		r.Get("/auth/session", auth.Session)

		r.Post("/generations/charge", account.ChargeGeneration)
		r.Get("/transactions", account.ListTransactions)
		r.Post("/deposits", account.SubmitDeposit)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/accounts", admin.ListAccounts)
			r.Post("/accounts/{username}/approve", admin.ApproveAccount)
			r.Put("/accounts/{username}/status", admin.SetStatus)
			r.Post("/accounts/{username}/balance", admin.AdjustBalance)
			r.Get("/accounts/{username}/transactions", admin.AccountTransactions)
			r.Get("/accounts/{username}/reconcile", admin.Reconcile)

			r.Get("/deposits", admin.ListDeposits)
			r.Post("/deposits/{id}/approve", admin.ApproveDeposit)
			r.Post("/deposits/{id}/reject", admin.RejectDeposit)
		})
	})
}
