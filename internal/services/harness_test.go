package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/snapedit/backend/internal/config"
	"github.com/snapedit/backend/internal/kv/memory"
	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/middleware"
	"github.com/snapedit/backend/internal/models"
	"github.com/snapedit/backend/internal/session"
	"github.com/stretchr/testify/require"
)

var (
	testNow    = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	testArgon2 = config.Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLength: 32, SaltLength: 16}
	adminActor = ledger.Principal{Username: "admin", Role: models.RoleAdmin}
)

type harness struct {
	ledger   *ledger.Service
	sessions *session.Manager
	router   chi.Router
}

// newHarness wires the real ledger over a memory store. sessionRedis and
// guardRedis may be nil.
func newHarness(t *testing.T, sessionRedis, guardRedis *redis.Client) *harness {
	t.Helper()
	cfg := config.DefaultLedgerConfig()
	svc := ledger.NewService(memory.New(), ledger.NewArgon2Hasher(testArgon2), cfg)
	require.NoError(t, svc.SeedAdmin(context.Background()))

	sessions := session.NewManager("test-secret", 24*time.Hour, sessionRedis, zerolog.Nop(), session.WithClock(func() time.Time { return testNow }))
	guard := session.NewLoginGuard(guardRedis, 3, 15*time.Minute)

	router := chi.NewRouter()
	Mount(router,
		NewAuthService(svc, sessions, guard),
		NewAccountService(svc, cfg.GenerationCost),
		NewAdminService(svc),
		middleware.AuthMiddleware(sessions),
	)
	return &harness{ledger: svc, sessions: sessions, router: router}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, r)
	return w
}

// tokenFor issues a token directly, bypassing the login endpoint.
func (h *harness) tokenFor(t *testing.T, username string, role models.Role) string {
	t.Helper()
	token, _, err := h.sessions.Issue(models.AccountSnapshot{Username: username, Role: role})
	require.NoError(t, err)
	return token
}

// approvedUser registers and approves username through the ledger and returns a token.
func (h *harness) approvedUser(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()
	_, err := h.ledger.Register(ctx, username, "secret")
	require.NoError(t, err)
	_, err = h.ledger.ApproveAccount(ctx, adminActor, username)
	require.NoError(t, err)
	return h.tokenFor(t, username, models.RoleUser)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (h *harness) mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func userActor(username string) ledger.Principal {
	return ledger.Principal{Username: username, Role: models.RoleUser}
}
