package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	"dealcore/internal/services"
)

type DealsOfTheDayHandler struct {
	DOTD *services.DealsOfTheDayService
}

type DealOfTheDayView struct {
	domain.DealOfTheDayIndex
	DisplayExpiredOn string `json:"displayExpiredOn"`
}

// GET /api/v1/deals-of-the-day?categoryId&merchantId&searchTerm
func (h *DealsOfTheDayHandler) Search(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	categoryID, err := optionalID(c, "categoryId")
	if err != nil {
		return err
	}
	merchantID, err := optionalID(c, "merchantId")
	if err != nil {
		return err
	}
	q, err := searchTerm(c)
	if err != nil {
		return err
	}
	p, err := h.DOTD.Search(c.UserContext(), categoryID, merchantID, q, page)
	if err != nil {
		return err
	}
	loc := displayLoc(c)
	views := make([]DealOfTheDayView, 0, len(p.Content))
	for _, d := range p.Content {
		views = append(views, DealOfTheDayView{
			DealOfTheDayIndex: d,
			DisplayExpiredOn:  d.ExpiredOn.Display(loc),
		})
	}
	return sendPage(c, domain.Page[DealOfTheDayView]{
		Content: views, Page: p.Page, Size: p.Size, TotalElements: p.TotalElements, TotalPages: p.TotalPages,
	})
}
