package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	applog "dealcore/internal/log"
	"dealcore/internal/services"
)

const callerKey = "caller"

// RequireCaller enforces the identity headers on write routes and stores the
// parsed caller in Locals. needToken also demands Auth-Token, for routes that
// call the profile service on the caller's behalf. admins marks configured
// admin ids.
func RequireCaller(needToken bool, admins map[string]bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := writeCaller(c, needToken)
		if err != nil {
			return err
		}
		caller.Admin = admins[caller.UserID]
		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// RequireAdmin runs after RequireCaller and turns away everyone else.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := callerFrom(c)
		if !caller.Admin {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": caller.UserID})
			return domain.ErrUnsupportedUserType.With("admin only")
		}
		return c.Next()
	}
}

func callerFrom(c *fiber.Ctx) services.Caller {
	caller, _ := c.Locals(callerKey).(services.Caller)
	return caller
}
