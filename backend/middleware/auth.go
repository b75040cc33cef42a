package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/holopack/backend/utils"
)

// AdminRequired guards admin routes with a static bearer token. With no token
// configured the admin routes are closed.
func AdminRequired(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return utils.SendForbidden(c, "Admin API is disabled")
		}

		given, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			slog.Warn("Admin required: invalid token",
				slog.String("type", "http"),
				slog.String("ip", utils.GetIPAddress(c)),
				slog.String("path", c.Path()))
			return utils.SendForbidden(c, "Admin access required")
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
