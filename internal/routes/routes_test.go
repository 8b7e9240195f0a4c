package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/auth"
	"github.com/congo-pay/congo_wallet/internal/config"
	"github.com/congo-pay/congo_wallet/internal/logging"
	"github.com/congo-pay/congo_wallet/internal/middleware"
	"github.com/congo-pay/congo_wallet/internal/store"
	"github.com/congo-pay/congo_wallet/internal/wallet"
)

const secret = "routes-test-secret"

type api struct {
	t   *testing.T
	app *fiber.App
	mem *store.Memory
}

func newAPI(t *testing.T) *api {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	cfg := config.Config{
		AppName:        "test",
		AppEnv:         "development",
		JWTSecret:      secret,
		IdempotencyTTL: time.Minute,
		LockTimeout:    time.Second,
		TransferLimit:  100,
	}
	mem := store.NewMemory()
	logger := logging.Discard()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	require.NoError(t, Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logger, Store: mem}))
	return &api{t: t, app: app, mem: mem}
}

func (a *api) do(method, path string, p *account.Principal, body string) (int, map[string]any) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("Idempotency-Key", uuid.NewString())
	if p != nil {
		token, err := auth.SignToken(*p, []byte(secret), time.Minute)
		require.NoError(a.t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := a.app.Test(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (a *api) register(role string) account.Principal {
	a.t.Helper()
	id := uuid.NewString()
	status, body := a.do(http.MethodPost, "/api/v1/accounts", nil, `{"id":"`+id+`","role":"`+role+`"}`)
	require.Equal(a.t, http.StatusCreated, status, body)
	r, _ := account.ParseRole(role)
	return account.Principal{ID: id, Role: r}
}

func TestWalletFlow(t *testing.T) {
	a := newAPI(t)
	alice := a.register("USER")
	carol := a.register("user")
	agent := a.register("AGENT")

	status, body := a.do(http.MethodPost, "/api/v1/wallet/add-money", &alice, `{"amount":100}`)
	require.Equal(t, http.StatusCreated, status, body)

	status, body = a.do(http.MethodPost, "/api/v1/wallet/transfers/"+carol.ID, &alice, `{"amount":30,"type":"send_money"}`)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "A user successfully send_money 30 money to user", body["message"])

	status, body = a.do(http.MethodGet, "/api/v1/wallet/history", &alice, "")
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body["total"])
	items := body["items"].([]any)
	assert.Equal(t, "ADD_MONEY", items[0].(map[string]any)["type"])
	assert.Equal(t, "SEND_MONEY", items[1].(map[string]any)["type"])

	status, body = a.do(http.MethodGet, "/api/v1/wallet", &carol, "")
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 30, body["wallet"].(map[string]any)["balance"])

	status, _ = a.do(http.MethodPost, "/api/v1/wallet/transfers/"+agent.ID, &alice, `{"amount":10,"type":"CASH_OUT"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(http.MethodPost, "/api/v1/wallet/transfers/"+carol.ID, &alice, `{"amount":1000,"type":"SEND_MONEY"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = a.do(http.MethodPost, "/api/v1/wallet/transfers/"+carol.ID, &alice, `{"amount":10,"type":"REFUND"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(http.MethodPost, "/api/v1/wallet/transfers/"+uuid.NewString(), &alice, `{"amount":10,"type":"SEND_MONEY"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminStatusFlow(t *testing.T) {
	a := newAPI(t)
	alice := a.register("USER")
	bob := a.register("USER")

	now := time.Now().UTC()
	adminAcct := account.Account{ID: uuid.NewString(), Role: account.RoleAdmin, WalletID: uuid.NewString(), Active: true, CreatedAt: now}
	require.NoError(t, a.mem.Create(context.Background(), adminAcct, wallet.New(adminAcct.WalletID, adminAcct.ID, now)))
	admin := account.Principal{ID: adminAcct.ID, Role: account.RoleAdmin}

	path := "/api/v1/admin/wallets/" + bob.ID + "/status"
	status, _ := a.do(http.MethodPatch, path, &alice, `{"status":"BLOCKED"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(http.MethodPatch, path, &admin, `{"status":"FROZEN"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := a.do(http.MethodPatch, path, &admin, `{"status":"SUSPENDED"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "SUSPENDED", body["wallet"].(map[string]any)["status"])

	status, _ = a.do(http.MethodPost, "/api/v1/wallet/add-money", &alice, `{"amount":50}`)
	require.Equal(t, http.StatusCreated, status)
	status, body = a.do(http.MethodPost, "/api/v1/wallet/transfers/"+bob.ID, &alice, `{"amount":10,"type":"SEND_MONEY"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "receiver wallet is suspended", body["message"])

	status, _ = a.do(http.MethodGet, "/api/v1/wallet/history", &bob, "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newAPI(t)
	status, _ := a.do(http.MethodGet, "/api/v1/wallet/history", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterRejectsAdministrators(t *testing.T) {
	a := newAPI(t)
	status, _ := a.do(http.MethodPost, "/api/v1/accounts", nil, `{"role":"ADMIN"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	status, body := a.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"].(map[string]any)["redis"])
}

func TestSetupRequiresBackendsOutsideDevelopment(t *testing.T) {
	app := fiber.New()
	err := Setup(app, Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	require.Error(t, err)
}
