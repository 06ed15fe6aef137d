package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"articles-service/models"
	"articles-service/repository"

	"github.com/gofiber/fiber/v2"
)

const idempotencyHeader = "Idempotency-Key"

// Idempotency processes Idempotency-Key for mutating HTTP methods.
// The first request with a key runs the handler and stores status, Location and body; later
// requests with the same key and payload replay them. Reusing a key with a different payload,
// or while the first request is still running, is a conflict.
func Idempotency(store repository.IdempotencyRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		ctx := c.UserContext()
		path := c.OriginalURL() // includes query string

		reqHash := requestHash(method, path, c.Body())

		rec, created, err := store.Reserve(ctx, models.IdempotencyKey{
			Key:         key,
			RequestHash: reqHash,
			Method:      method,
			Path:        path,
		})
		if err != nil {
			return err
		}

		if !created {
			if rec.RequestHash != reqHash {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
			}
			if rec.Pending() {
				return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
			}
			if rec.ResponseLocation != "" {
				c.Location(rec.ResponseLocation)
			}
			c.Set("Idempotent-Replayed", "true")
			if len(rec.ResponseBody) > 0 {
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			}
			return c.Status(rec.ResponseStatus).Send([]byte(rec.ResponseBody))
		}

		if err := c.Next(); err != nil {
			release(c, store, key)
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			release(c, store, key)
			return nil
		}

		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		location := string(c.Response().Header.Peek(fiber.HeaderLocation))

		// best-effort: don't break the successful response
		if err := store.Complete(ctx, key, status, location, blob); err != nil {
			slog.WarnContext(ctx, "storing idempotent response failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
}

// requestHash is the sha256 of method|path|body.
func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func release(c *fiber.Ctx, store repository.IdempotencyRepository, key string) {
	if err := store.Release(c.UserContext(), key); err != nil {
		slog.WarnContext(c.UserContext(), "releasing idempotency key failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
