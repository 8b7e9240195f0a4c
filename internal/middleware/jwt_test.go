package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/auth"
	"github.com/congo-pay/congo_wallet/internal/logging"
)

const testSecret = "jwt-test-secret"

func jwtApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Use(JWTAuth(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		p, err := auth.MustPrincipal(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": p.ID, "role": p.Role})
	})
	return app
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token, err := auth.SignToken(account.Principal{ID: "acct-1", Role: account.RoleAgent}, []byte(testSecret), time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := jwtApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTAuthRejects(t *testing.T) {
	wrongKey, err := auth.SignToken(account.Principal{ID: "acct-1", Role: account.RoleUser}, []byte("other"), time.Minute)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-token",
		"wrong key":      "Bearer " + wrongKey,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set(fiber.HeaderAuthorization, header)
			}
			resp, err := jwtApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
