package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	applog "dealcore/internal/log"
	"dealcore/internal/services"
)

type MappingHandler struct {
	Mappings *services.MappingService
}

// POST /api/v1/merchant-mappings
func (h *MappingHandler) Create(c *fiber.Ctx) error {
	var in services.MappingInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	m, err := h.Mappings.Create(c.UserContext(), callerFrom(c), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "mapping.create", map[string]any{"merchant_id": m.MerchantID})
	return c.Status(fiber.StatusCreated).JSON(m)
}

// PUT /api/v1/merchant-mappings/:merchantId
func (h *MappingHandler) Update(c *fiber.Ctx) error {
	merchantID, err := pathID(c, "merchantId", domain.ErrInvalidMapping)
	if err != nil {
		return err
	}
	var in services.MappingInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	m, err := h.Mappings.Update(c.UserContext(), callerFrom(c), merchantID, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "mapping.update", map[string]any{"merchant_id": merchantID})
	return c.JSON(m)
}

// DELETE /api/v1/merchant-mappings/:merchantId
func (h *MappingHandler) Delete(c *fiber.Ctx) error {
	merchantID, err := pathID(c, "merchantId", domain.ErrInvalidMapping)
	if err != nil {
		return err
	}
	if err := h.Mappings.Delete(c.UserContext(), merchantID); err != nil {
		return err
	}
	applog.Audit(c, "mapping.delete", map[string]any{"merchant_id": merchantID})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/merchant-mappings/:merchantId
func (h *MappingHandler) Get(c *fiber.Ctx) error {
	merchantID, err := pathID(c, "merchantId", domain.ErrInvalidMapping)
	if err != nil {
		return err
	}
	m, err := h.Mappings.Get(c.UserContext(), merchantID)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

// GET /api/v1/merchant-mappings/search?categoryId&brandId&searchTerm
func (h *MappingHandler) Search(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	categoryID, err := optionalID(c, "categoryId")
	if err != nil {
		return err
	}
	brandID, err := optionalID(c, "brandId")
	if err != nil {
		return err
	}
	q, err := searchTerm(c)
	if err != nil {
		return err
	}
	p, err := h.Mappings.Search(c.UserContext(), categoryID, brandID, q, page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

// GET /api/v1/banks?searchTerm
func (h *MappingHandler) Banks(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	q, err := searchTerm(c)
	if err != nil {
		return err
	}
	p, err := h.Mappings.BankList(c.UserContext(), q, page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}
