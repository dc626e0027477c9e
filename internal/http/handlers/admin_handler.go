package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "dealcore/internal/log"
	"dealcore/internal/services"
)

// AdminHandler triggers the scheduled jobs on demand. Both jobs are guarded by
// singleflight, so a trigger that races the cron run joins it.
type AdminHandler struct {
	DOTD      *services.DealsOfTheDayService
	Reconcile *services.ReconcileService
}

// POST /api/v1/admin/jobs/deals-of-the-day
func (h *AdminHandler) RefreshDealsOfTheDay(c *fiber.Ctx) error {
	res, err := h.DOTD.Refresh(c.UserContext())
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.job.deals_of_the_day", map[string]any{"date": res.Date, "inserted": res.Inserted})
	return c.JSON(res)
}

// POST /api/v1/admin/jobs/reconcile
func (h *AdminHandler) RunReconcile(c *fiber.Ctx) error {
	res, err := h.Reconcile.Run(c.UserContext())
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.job.reconcile", map[string]any{"scanned": res.Scanned, "changed": len(res.Changed)})
	return c.JSON(res)
}
