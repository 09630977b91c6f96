// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret string
	// path yang tidak butuh token (mis. health check di grup yang sama)
	SkipPaths []string
}

// AuthJWT: verifikasi Bearer token lalu isi c.Locals user_id & role.
// Role di locals hanya informasi; service tetap membaca role dari row user.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}
	skip := make(map[string]struct{}, len(o.SkipPaths))
	for _, p := range o.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		raw := helperAuth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		claims, err := helperAuth.ParseAccessToken(secret, raw)
		if err != nil {
			log.Printf("[AUTH] token ditolak %s %s: %v", c.Method(), c.OriginalURL(), err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals(helper.LocUserID, claims.UserID.String())
		c.Locals(helper.LocRole, claims.Role)
		return c.Next()
	}
}
