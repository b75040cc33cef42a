package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ellavondegurechaff/holopack/backend/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestObserver receives one observation per finished request, typically
// the prometheus recorder.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, took time.Duration)
}

// RequestID tags each request with an id, reusing the caller's X-Request-ID
// when it looks like a uuid.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// LoggingMiddleware logs HTTP requests in a structured format. Errors are
// rendered here through the app error handler so the logged status is the
// one the client sees.
func LoggingMiddleware(observer RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		// Route() is the matched pattern, which keeps metric label cardinality bounded.
		route := c.Route().Path
		if observer != nil {
			observer.ObserveRequest(c.Method(), route, statusCode, duration)
		}

		logLevel := slog.LevelInfo
		if statusCode >= 400 && statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if statusCode >= 500 {
			logLevel = slog.LevelError
		}

		logger := slog.With(
			slog.String("type", "http"),
			slog.String("request_id", utils.GetRequestID(c)),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", route),
			slog.Int("status", statusCode),
			slog.Duration("took", duration),
			slog.String("ip", utils.GetIPAddress(c)),
			slog.String("user_agent", utils.GetUserAgent(c)),
			slog.Int("size", len(c.Response().Body())),
		)
		if q := c.Request().URI().QueryArgs().String(); q != "" {
			logger = logger.With(slog.String("query", q))
		}

		logger.Log(c.Context(), logLevel, "HTTP request processed")
		return nil
	}
}
