package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	applog "dealcore/internal/log"
	"dealcore/internal/services"
)

// RequestHandler serves credit-card applications and RequestADeal submissions.
type RequestHandler struct {
	Cards *services.CreditCardService
	Deals *services.DealRequestService
}

// POST /api/v1/credit-card-requests
func (h *RequestHandler) CreateCard(c *fiber.Ctx) error {
	var in services.CreditCardInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	r, err := h.Cards.Create(c.UserContext(), callerFrom(c), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "card_request.create", map[string]any{"request_id": r.ID, "bank_id": r.BankID})
	return c.Status(fiber.StatusCreated).JSON(r)
}

// GET /api/v1/credit-card-requests/:id
func (h *RequestHandler) GetCard(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidCardRequest)
	if err != nil {
		return err
	}
	r, err := h.Cards.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// GET /api/v1/credit-card-requests/search?bankId&searchTerm
func (h *RequestHandler) SearchCards(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	bankID, err := optionalID(c, "bankId")
	if err != nil {
		return err
	}
	q, err := searchTerm(c)
	if err != nil {
		return err
	}
	p, err := h.Cards.Search(c.UserContext(), bankID, q, page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

// GET /api/v1/credit-card-requests/combined
func (h *RequestHandler) CombinedCards(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	p, err := h.Cards.Combined(c.UserContext(), page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

// POST /api/v1/deal-requests
func (h *RequestHandler) CreateDealRequest(c *fiber.Ctx) error {
	var in services.DealRequestInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	r, err := h.Deals.Create(c.UserContext(), callerFrom(c), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "deal_request.create", map[string]any{"request_id": r.ID, "target": r.TargetOwnerID})
	return c.Status(fiber.StatusCreated).JSON(r)
}

// DELETE /api/v1/deal-requests/:id
func (h *RequestHandler) DeleteDealRequest(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidDealRequest)
	if err != nil {
		return err
	}
	if err := h.Deals.Delete(c.UserContext(), callerFrom(c), id); err != nil {
		return err
	}
	applog.Audit(c, "deal_request.delete", map[string]any{"request_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/deal-requests/:id
func (h *RequestHandler) GetDealRequest(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidDealRequest)
	if err != nil {
		return err
	}
	r, err := h.Deals.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// GET /api/v1/deal-requests/search?ownerId&categoryId&brandId&searchTerm
//
// ownerId scopes the results to requests aimed at one merchant or bank.
func (h *RequestHandler) SearchDealRequests(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	ownerID, err := optionalID(c, "ownerId")
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
	p, err := h.Deals.Search(c.UserContext(), ownerID, categoryID, brandID, q, page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

// GET /api/v1/deal-requests/combined?userType=MERCHANT|BANK
func (h *RequestHandler) CombinedDealRequests(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	kind := domain.OwnerKind(c.Query("userType", string(domain.OwnerMerchant)))
	p, err := h.Deals.Combined(c.UserContext(), kind, page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}
