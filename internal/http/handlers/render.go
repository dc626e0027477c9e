package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// request id lets an operator match the page to the log lines behind it
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	data["DisplayZone"] = displayLoc(c).String()
	return c.Render(tmpl, data)
}
