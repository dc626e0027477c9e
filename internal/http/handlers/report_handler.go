package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	"dealcore/internal/services"
)

type ReportHandler struct {
	Summary *services.SummaryService
	Reports *services.ReportService
}

// GET /api/v1/summary/today?userType=MERCHANT|BANK
func (h *ReportHandler) Today(c *fiber.Ctx) error {
	caller, err := readCaller(c)
	if err != nil {
		return err
	}
	kind := domain.OwnerKind(c.Query("userType", string(domain.OwnerMerchant)))
	s, err := h.Summary.Today(c.UserContext(), caller, kind)
	if err != nil {
		return err
	}
	return c.JSON(s)
}

func reportQuery(c *fiber.Ctx) services.ReportQuery {
	return services.ReportQuery{
		Range:  c.Query("range"),
		Start:  c.Query("start"),
		End:    c.Query("end"),
		Limit:  c.QueryInt("limit", 10),
		Offset: c.QueryInt("offset", 0),
	}
}

// GET /api/v1/reports/top-deals?range|start&end
func (h *ReportHandler) TopDeals(c *fiber.Ctx) error {
	q := reportQuery(c)
	if q.Limit < 1 || q.Limit > 100 || q.Offset < 0 {
		return domain.ErrInvalidPagination
	}
	rows, err := h.Reports.TopDeals(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// GET /api/v1/reports/top-categories?range|start&end
func (h *ReportHandler) TopCategories(c *fiber.Ctx) error {
	q := reportQuery(c)
	if q.Limit < 1 || q.Limit > 100 || q.Offset < 0 {
		return domain.ErrInvalidPagination
	}
	rows, err := h.Reports.TopCategories(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// GET /dashboard/summary
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Summary.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "summary", fiber.Map{"Dashboard": d})
}
