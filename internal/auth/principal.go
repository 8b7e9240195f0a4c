package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/congo_wallet/internal/account"
)

const principalKey = "principal"

// SetPrincipal stores p on the request.
func SetPrincipal(c *fiber.Ctx, p account.Principal) {
	c.Locals(principalKey, p)
}

// PrincipalFrom returns the principal stored on the request, if any.
func PrincipalFrom(c *fiber.Ctx) (account.Principal, bool) {
	p, ok := c.Locals(principalKey).(account.Principal)
	return p, ok
}

// MustPrincipal returns the request principal or a 401 error.
func MustPrincipal(c *fiber.Ctx) (account.Principal, error) {
	p, ok := PrincipalFrom(c)
	if !ok || p.ID == "" {
		return account.Principal{}, fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return p, nil
}
