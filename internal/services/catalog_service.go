package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
	"dealcore/internal/validate"
)

type CategoryInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        domain.CategoryType `json:"type"`
	ExpiryDate  *time.Time          `json:"expiryDate"`
	IsPopular   bool                `json:"isPopular"`
	RelatedIDs  []string            `json:"relatedCategoryIds"`
}

type CategoryService struct {
	Store *repos.Store
	Cats  *repos.CategoryRepo
	Clock clock.Clock
}

func NewCategoryService(store *repos.Store, c clock.Clock) *CategoryService {
	return &CategoryService{Store: store, Cats: repos.NewCategoryRepo(store.DB), Clock: c}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (domain.Category, error) {
	c, err := s.validate(ctx, "", in)
	if err != nil {
		return c, err
	}
	now := domain.NewTime(s.Clock.Now())
	c.ID = newID("CAT")
	c.CreatedAt, c.UpdatedAt = now, now
	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		return repos.NewCategoryRepo(tx).Insert(ctx, c)
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return cur, err
	}
	c, err := s.validate(ctx, id, in)
	if err != nil {
		return c, err
	}
	c.ID = id
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = domain.NewTime(s.Clock.Now())
	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		return repos.NewCategoryRepo(tx).Update(ctx, c)
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	return c, nil
}

// Delete removes a category that no mapping uses and no other category lists
// as related.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	used, err := s.Cats.UsedByMapping(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrCannotDelete.With("category %s is used by a merchant mapping", id)
	}
	related, err := s.Cats.IsRelatedTarget(ctx, id)
	if err != nil {
		return err
	}
	if related {
		return domain.ErrCannotDelete.With("category %s is related to another category", id)
	}
	return s.Cats.Delete(ctx, id)
}

func (s *CategoryService) Get(ctx context.Context, id string) (domain.Category, error) {
	c, err := s.Cats.Get(ctx, id)
	if repos.IsNotFound(err) {
		return c, domain.ErrInvalidCategory.With("category %s", id)
	}
	return c, err
}

func (s *CategoryService) List(ctx context.Context, search string, page domain.PageRequest) (domain.Page[domain.Category], error) {
	items, total, err := s.Cats.List(ctx, search, page)
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

// Popular lists popular categories; seasonal ones drop out after expiry.
func (s *CategoryService) Popular(ctx context.Context) ([]domain.Category, error) {
	out, err := s.Cats.Popular(ctx, domain.NewTime(s.Clock.Now()))
	if out == nil {
		out = []domain.Category{}
	}
	return out, err
}

func (s *CategoryService) validate(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	var (
		c  domain.Category
		ok bool
	)
	if c.Name, ok = validate.Name(in.Name); !ok {
		return c, domain.ErrValidation.With("name")
	}
	if c.Description, ok = validate.Text(in.Description, 1000); !ok {
		return c, domain.ErrValidation.With("description")
	}
	c.IsPopular = in.IsPopular
	switch in.Type {
	case "", domain.CategoryNormal:
		c.Type = domain.CategoryNormal
	case domain.CategorySeasonal:
		c.Type = domain.CategorySeasonal
		if in.ExpiryDate == nil || !in.ExpiryDate.After(s.Clock.Now()) {
			return c, domain.ErrInvalidDates.With("seasonal categories need a future expiryDate")
		}
		exp := domain.NewTime(*in.ExpiryDate)
		c.ExpiryDate = &exp
	default:
		return c, domain.ErrValidation.With("type %q", in.Type)
	}

	c.RelatedIDs = dedupe(in.RelatedIDs)
	for _, rel := range c.RelatedIDs {
		if rel == id {
			return c, domain.ErrInvalidCategory.With("a category cannot relate to itself")
		}
	}
	known, err := s.Cats.Names(ctx, c.RelatedIDs)
	if err != nil {
		return c, err
	}
	for _, rel := range c.RelatedIDs {
		if _, ok := known[rel]; !ok {
			return c, domain.ErrInvalidCategory.With("related category %s", rel)
		}
	}

	taken, err := s.Cats.NameTaken(ctx, c.Name, id)
	if err != nil {
		return c, err
	}
	if taken {
		return c, domain.ErrAlreadyExists.With("category %q", c.Name)
	}
	return c, nil
}

type BrandInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type BrandService struct {
	Brands *repos.BrandRepo
	Clock  clock.Clock
}

func NewBrandService(store *repos.Store, c clock.Clock) *BrandService {
	return &BrandService{Brands: repos.NewBrandRepo(store.DB), Clock: c}
}

func (s *BrandService) Create(ctx context.Context, in BrandInput) (domain.Brand, error) {
	b, err := s.validate(ctx, "", in)
	if err != nil {
		return b, err
	}
	now := domain.NewTime(s.Clock.Now())
	b.ID = newID("BRAND")
	b.CreatedAt, b.UpdatedAt = now, now
	if err := s.Brands.Insert(ctx, b); err != nil {
		return domain.Brand{}, err
	}
	return b, nil
}

func (s *BrandService) Update(ctx context.Context, id string, in BrandInput) (domain.Brand, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return cur, err
	}
	b, err := s.validate(ctx, id, in)
	if err != nil {
		return b, err
	}
	b.ID, b.CreatedAt = id, cur.CreatedAt
	b.UpdatedAt = domain.NewTime(s.Clock.Now())
	if err := s.Brands.Update(ctx, b); err != nil {
		return domain.Brand{}, fmt.Errorf("update brand %s: %w", id, err)
	}
	return b, nil
}

// Delete removes a brand that no merchant mapping references.
func (s *BrandService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	used, err := s.Brands.UsedByMapping(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrCannotDelete.With("brand %s is used by a merchant mapping", id)
	}
	return s.Brands.Delete(ctx, id)
}

func (s *BrandService) Get(ctx context.Context, id string) (domain.Brand, error) {
	b, err := s.Brands.Get(ctx, id)
	if repos.IsNotFound(err) {
		return b, domain.ErrInvalidBrand.With("brand %s", id)
	}
	return b, err
}

func (s *BrandService) List(ctx context.Context, search string, page domain.PageRequest) (domain.Page[domain.Brand], error) {
	items, total, err := s.Brands.List(ctx, search, page)
	if err != nil {
		return domain.Page[domain.Brand]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

func (s *BrandService) validate(ctx context.Context, id string, in BrandInput) (domain.Brand, error) {
	var (
		b  domain.Brand
		ok bool
	)
	if b.Name, ok = validate.Name(in.Name); !ok {
		return b, domain.ErrValidation.With("name")
	}
	if b.Description, ok = validate.Text(in.Description, 1000); !ok {
		return b, domain.ErrValidation.With("description")
	}
	if b.Image, ok = validate.Text(in.Image, 500); !ok {
		return b, domain.ErrValidation.With("image")
	}
	taken, err := s.Brands.NameTaken(ctx, b.Name, id)
	if err != nil {
		return b, err
	}
	if taken {
		return b, domain.ErrAlreadyExists.With("brand %q", b.Name)
	}
	return b, nil
}

type OfferTypeService struct {
	OfferTypes *repos.OfferTypeRepo
	Clock      clock.Clock
}

func NewOfferTypeService(store *repos.Store, c clock.Clock) *OfferTypeService {
	return &OfferTypeService{OfferTypes: repos.NewOfferTypeRepo(store.DB), Clock: c}
}

func (s *OfferTypeService) Create(ctx context.Context, name, description string) (domain.OfferType, error) {
	var (
		o  domain.OfferType
		ok bool
	)
	if o.Name, ok = validate.Name(name); !ok {
		return o, domain.ErrValidation.With("name")
	}
	if o.Description, ok = validate.Text(description, 1000); !ok {
		return o, domain.ErrValidation.With("description")
	}
	taken, err := s.OfferTypes.NameTaken(ctx, o.Name)
	if err != nil {
		return o, err
	}
	if taken {
		return o, domain.ErrAlreadyExists.With("offer type %q", o.Name)
	}
	o.ID = newID("OT")
	o.CreatedAt = domain.NewTime(s.Clock.Now())
	if err := s.OfferTypes.Insert(ctx, o); err != nil {
		return domain.OfferType{}, err
	}
	return o, nil
}

func (s *OfferTypeService) List(ctx context.Context) ([]domain.OfferType, error) {
	out, err := s.OfferTypes.List(ctx)
	if out == nil {
		out = []domain.OfferType{}
	}
	return out, err
}
