package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/holopack/backend/utils"
	"github.com/ellavondegurechaff/holopack/internal/domain"
)

// CustomErrorHandler renders every error as the JSON envelope. Domain
// sentinels pick the status; a short catalog is an operator problem and is
// logged at error level.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	status, _ := utils.ErrorStatus(err)

	switch {
	case errors.Is(err, domain.ErrInsufficientCatalog):
		slog.Error("Catalog cannot fill pack",
			slog.String("type", "shop"),
			slog.String("path", c.Path()),
			slog.Any("error", err))
	case status >= http.StatusInternalServerError:
		slog.Error("Unhandled request error",
			slog.String("type", "error"),
			slog.String("request_id", utils.GetRequestID(c)),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
	}

	return utils.SendDomainError(c, err)
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		return c.Next()
	}
}
