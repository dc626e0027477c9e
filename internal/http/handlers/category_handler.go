package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	applog "dealcore/internal/log"
	"dealcore/internal/services"
)

// CatalogHandler serves categories, brands and offer types.
type CatalogHandler struct {
	Categories *services.CategoryService
	Brands     *services.BrandService
	OfferTypes *services.OfferTypeService
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cat, err := h.Categories.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "category.create", map[string]any{"category_id": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidCategory)
	if err != nil {
		return err
	}
	var in services.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cat, err := h.Categories.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "category.update", map[string]any{"category_id": id})
	return c.JSON(cat)
}

// DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidCategory)
	if err != nil {
		return err
	}
	if err := h.Categories.Delete(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "category.delete", map[string]any{"category_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/categories/:id
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidCategory)
	if err != nil {
		return err
	}
	cat, err := h.Categories.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

// GET /api/v1/categories?searchTerm=
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	q, err := searchTerm(c)
	if err != nil {
		return err
	}
	p, err := h.Categories.List(c.UserContext(), q, page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

// GET /api/v1/categories/popular
func (h *CatalogHandler) Popular(c *fiber.Ctx) error {
	cats, err := h.Categories.Popular(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

// POST /api/v1/brands
func (h *CatalogHandler) CreateBrand(c *fiber.Ctx) error {
	var in services.BrandInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	b, err := h.Brands.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "brand.create", map[string]any{"brand_id": b.ID})
	return c.Status(fiber.StatusCreated).JSON(b)
}

// PUT /api/v1/brands/:id
func (h *CatalogHandler) UpdateBrand(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidBrand)
	if err != nil {
		return err
	}
	var in services.BrandInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	b, err := h.Brands.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "brand.update", map[string]any{"brand_id": id})
	return c.JSON(b)
}

// DELETE /api/v1/brands/:id
func (h *CatalogHandler) DeleteBrand(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidBrand)
	if err != nil {
		return err
	}
	if err := h.Brands.Delete(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "brand.delete", map[string]any{"brand_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/brands/:id
func (h *CatalogHandler) GetBrand(c *fiber.Ctx) error {
	id, err := pathID(c, "id", domain.ErrInvalidBrand)
	if err != nil {
		return err
	}
	b, err := h.Brands.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

// GET /api/v1/brands?searchTerm=
func (h *CatalogHandler) ListBrands(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	q, err := searchTerm(c)
	if err != nil {
		return err
	}
	p, err := h.Brands.List(c.UserContext(), q, page)
	if err != nil {
		return err
	}
	return sendPage(c, p)
}

type offerTypeBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// POST /api/v1/offer-types
func (h *CatalogHandler) CreateOfferType(c *fiber.Ctx) error {
	var body offerTypeBody
	if err := parseBody(c, &body); err != nil {
		return err
	}
	ot, err := h.OfferTypes.Create(c.UserContext(), body.Name, body.Description)
	if err != nil {
		return err
	}
	applog.Audit(c, "offer_type.create", map[string]any{"offer_type_id": ot.ID})
	return c.Status(fiber.StatusCreated).JSON(ot)
}

// GET /api/v1/offer-types
func (h *CatalogHandler) ListOfferTypes(c *fiber.Ctx) error {
	ots, err := h.OfferTypes.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ots)
}
