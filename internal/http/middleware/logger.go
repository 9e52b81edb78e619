package middleware

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"studymate/internal/logging"
)

// Logger logs one JSON line per request with request_id, method, path, status
// and latency in milliseconds.
func Logger(log *logging.Logger) fiber.Handler {
	log = log.With("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		level := "info"
		if status >= fiber.StatusInternalServerError {
			level = "error"
		}

		log.Log(level, "http_request", map[string]any{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		})
		return err
	}
}

// LoggerWithWriter is Logger writing to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if w == nil {
		w = os.Stdout
	}
	return Logger(logging.New(w, loc))
}
