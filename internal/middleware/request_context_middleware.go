package middleware

import (
	"context"

	"github.com/fadilmartias/skillwise/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestContext copies the request id set by the requestid middleware into
// the user context so services can log with it.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if id != "" {
			c.SetUserContext(context.WithValue(c.UserContext(), logger.RequestIDKey, id))
		}
		return c.Next()
	}
}
