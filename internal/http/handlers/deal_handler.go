package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	applog "dealcore/internal/log"
	"dealcore/internal/services"
)

type DealHandler struct {
	Deals    *services.DealService
	Approval *services.ApprovalService
}

// DealView adds the caller-local display dates to a deal.
type DealView struct {
	domain.Deal
	DisplayValidFrom string `json:"displayValidFrom"`
	DisplayExpiredOn string `json:"displayExpiredOn"`
}

type DealIndexView struct {
	domain.DealIndex
	DisplayValidFrom string `json:"displayValidFrom"`
	DisplayExpiredOn string `json:"displayExpiredOn"`
}

func dealView(c *fiber.Ctx, d domain.Deal) DealView {
	loc := displayLoc(c)
	return DealView{Deal: d, DisplayValidFrom: d.ValidFrom.Display(loc), DisplayExpiredOn: d.ExpiredOn.Display(loc)}
}

func dealIndexViews(c *fiber.Ctx, p domain.Page[domain.DealIndex]) domain.Page[DealIndexView] {
	loc := displayLoc(c)
	out := make([]DealIndexView, 0, len(p.Content))
	for _, d := range p.Content {
		out = append(out, DealIndexView{DealIndex: d, DisplayValidFrom: d.ValidFrom.Display(loc), DisplayExpiredOn: d.ExpiredOn.Display(loc)})
	}
	return domain.Page[DealIndexView]{
		Content: out, Page: p.Page, Size: p.Size, TotalElements: p.TotalElements, TotalPages: p.TotalPages,
	}
}

// POST /api/v1/deals
func (h *DealHandler) Create(c *fiber.Ctx) error {
	var in services.DealInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	d, err := h.Deals.Create(c.UserContext(), callerFrom(c), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "deal.create", map[string]any{"deal_id": d.ID, "code": d.DealCode, "owner_kind": d.OwnerKind})
	return c.Status(fiber.StatusCreated).JSON(dealView(c, d))
}

// PUT /api/v1/deals/:id
func (h *DealHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidDeal)
	if err != nil {
		return err
	}
	var in services.DealInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	d, err := h.Deals.Update(c.UserContext(), callerFrom(c), id, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "deal.update", map[string]any{"deal_id": id})
	return c.JSON(dealView(c, d))
}

// DELETE /api/v1/deals/:id
func (h *DealHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidDeal)
	if err != nil {
		return err
	}
	if err := h.Deals.Delete(c.UserContext(), callerFrom(c), id); err != nil {
		return err
	}
	applog.Audit(c, "deal.delete", map[string]any{"deal_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/deals/:id
func (h *DealHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidDeal)
	if err != nil {
		return err
	}
	d, err := h.Deals.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dealView(c, d))
}

// GET /api/v1/deals/mine?userType=MERCHANT|BANK
func (h *DealHandler) Mine(c *fiber.Ctx) error {
	caller, err := readCaller(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	kind := domain.OwnerKind(c.Query("userType", string(domain.OwnerMerchant)))
	p, err := h.Deals.ListMine(c.UserContext(), kind, caller.UserID, page)
	if err != nil {
		return err
	}
	views := make([]DealView, 0, len(p.Content))
	for _, d := range p.Content {
		views = append(views, dealView(c, d))
	}
	return sendPage(c, domain.Page[DealView]{
		Content: views, Page: p.Page, Size: p.Size, TotalElements: p.TotalElements, TotalPages: p.TotalPages,
	})
}

// GET /api/v1/deals/search
func (h *DealHandler) Search(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	var params services.DealSearchParams
	if params.CategoryID, err = optionalID(c, "categoryId"); err != nil {
		return err
	}
	if params.MerchantID, err = optionalID(c, "merchantId"); err != nil {
		return err
	}
	if params.BrandID, err = optionalID(c, "brandId"); err != nil {
		return err
	}
	if params.SearchTerm, err = searchTerm(c); err != nil {
		return err
	}
	p, err := h.Deals.Search(c.UserContext(), params, page)
	if err != nil {
		return err
	}
	return sendPage(c, dealIndexViews(c, p))
}

type approvalBody struct {
	Status  domain.ApprovalStatus `json:"status"`
	Comment string                `json:"comment"`
}

// POST /api/v1/deals/:id/approval
func (h *DealHandler) Decide(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidDeal)
	if err != nil {
		return err
	}
	var body approvalBody
	if err := parseBody(c, &body); err != nil {
		return err
	}
	d, err := h.Approval.Decide(c.UserContext(), callerFrom(c), id, body.Status, body.Comment)
	if err != nil {
		return err
	}
	applog.Audit(c, "deal.approval", map[string]any{"deal_id": id, "status": d.ApprovalStatus})
	return c.JSON(dealView(c, d))
}
