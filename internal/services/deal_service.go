package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/filter"
	"dealcore/internal/repos"
	"dealcore/internal/validate"
)

// DealInput is the writable part of a deal as submitted by its owner.
type DealInput struct {
	OwnerKind           domain.OwnerKind     `json:"ownerKind"`
	OwnerID             string               `json:"ownerId"`
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Description         string               `json:"description"`
	Terms               string               `json:"terms"`
	Images              []string             `json:"images"`
	Price               decimal.Decimal      `json:"price"`
	DeductionType       domain.DeductionType `json:"deductionType"`
	DeductionAmount     decimal.NullDecimal  `json:"deductionAmount"`
	DeductionPercentage decimal.NullDecimal  `json:"deductionPercentage"`
	ValidFrom           time.Time            `json:"validFrom"`
	ExpiredOn           time.Time            `json:"expiredOn"`
	CategoryIDs         []string             `json:"categoryIds"`
	BrandIDs            []string             `json:"brandIds"`
	OfferTypeID         string               `json:"offerTypeId"`
}

var hundred = decimal.NewFromInt(100)

type DealService struct {
	Store    *repos.Store
	Deals    *repos.DealRepo
	Index    *repos.DealIndexRepo
	Profiles ProfileService
	Codes    *DealCodeService
	Sync     *IndexSync
	Clock    clock.Clock
}

func NewDealService(store *repos.Store, profiles ProfileService, codes *DealCodeService, sync *IndexSync, c clock.Clock) *DealService {
	return &DealService{
		Store:    store,
		Deals:    repos.NewDealRepo(store.DB),
		Index:    repos.NewDealIndexRepo(store.DB),
		Profiles: profiles,
		Codes:    codes,
		Sync:     sync,
		Clock:    c,
	}
}

// Create validates in, verifies the owner with the profile service and writes
// the deal, its code and its index row in one transaction. New deals start PENDING.
func (s *DealService) Create(ctx context.Context, caller Caller, in DealInput) (domain.Deal, error) {
	if in.OwnerID == "" {
		in.OwnerID = caller.UserID
	}
	// only admins create deals on another owner's behalf
	if in.OwnerID != caller.UserID && !caller.Admin {
		return domain.Deal{}, domain.ErrNotOwner
	}
	if !in.OwnerKind.Valid() {
		return domain.Deal{}, domain.ErrUnsupportedUserType.With("ownerKind %q", in.OwnerKind)
	}
	d, err := s.validate(in)
	if err != nil {
		return domain.Deal{}, err
	}
	if err := s.checkRefs(ctx, d); err != nil {
		return domain.Deal{}, err
	}
	profile, err := ownerProfile(ctx, s.Profiles, d.OwnerKind, caller.AuthToken, d.OwnerID)
	if err != nil {
		return domain.Deal{}, err
	}

	now := domain.NewTime(s.Clock.Now())
	d.ID = newID("DEAL")
	d.ApprovalStatus = domain.StatusPending
	d.CreatedBy = caller.UserID
	d.CreatedAt = now
	d.UpdatedAt = now

	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		code, err := s.Codes.Generate(ctx, tx, d.OwnerKind)
		if err != nil {
			return err
		}
		d.DealCode = code
		if err := repos.NewDealRepo(tx).Insert(ctx, &d); err != nil {
			return err
		}
		return s.Sync.DealCreated(ctx, tx, d, profile.Display())
	})
	if err != nil {
		return domain.Deal{}, fmt.Errorf("create deal: %w", err)
	}
	return d, nil
}

// Update replaces the content of a PENDING deal. The status check comes first
// so a non-PENDING deal is rejected whatever the payload.
func (s *DealService) Update(ctx context.Context, caller Caller, id string, in DealInput) (domain.Deal, error) {
	cur, err := s.load(ctx, id)
	if err != nil {
		return domain.Deal{}, err
	}
	if !owns(caller, cur) {
		return domain.Deal{}, domain.ErrNotOwner
	}
	if cur.ApprovalStatus != domain.StatusPending {
		return domain.Deal{}, domain.ErrUnsupportedUpdate.With("deal %s is %s", id, cur.ApprovalStatus)
	}
	in.OwnerKind, in.OwnerID = cur.OwnerKind, cur.OwnerID
	d, err := s.validate(in)
	if err != nil {
		return domain.Deal{}, err
	}
	if err := s.checkRefs(ctx, d); err != nil {
		return domain.Deal{}, err
	}

	d.ID = cur.ID
	d.ApprovalStatus = cur.ApprovalStatus
	d.Comment = cur.Comment
	d.DealCode = cur.DealCode
	d.CreatedBy = cur.CreatedBy
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = domain.NewTime(s.Clock.Now())

	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewDealRepo(tx).UpdateContent(ctx, &d); err != nil {
			return err
		}
		return s.Sync.DealUpdated(ctx, tx, d)
	})
	if err != nil {
		return domain.Deal{}, fmt.Errorf("update deal %s: %w", id, err)
	}
	return d, nil
}

// Delete soft-deletes a deal in the primary table and every index serving it.
func (s *DealService) Delete(ctx context.Context, caller Caller, id string) error {
	d, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !owns(caller, d) {
		return domain.ErrNotOwner
	}
	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewDealRepo(tx).MarkDeleted(ctx, id, domain.NewTime(s.Clock.Now())); err != nil {
			return err
		}
		d.IsDeleted = true
		return s.Sync.DealDeleted(ctx, tx, d)
	})
	if err != nil {
		return fmt.Errorf("delete deal %s: %w", id, err)
	}
	return nil
}

func (s *DealService) Get(ctx context.Context, id string) (domain.Deal, error) {
	return s.load(ctx, id)
}

// ListMine pages an owner's live deals from the primary table.
func (s *DealService) ListMine(ctx context.Context, kind domain.OwnerKind, ownerID string, page domain.PageRequest) (domain.Page[domain.Deal], error) {
	if !kind.Valid() {
		return domain.Page[domain.Deal]{}, domain.ErrUnsupportedUserType.With("ownerKind %q", kind)
	}
	items, total, err := s.Deals.ListByOwner(ctx, kind, ownerID, page)
	if err != nil {
		return domain.Page[domain.Deal]{}, fmt.Errorf("list deals of %s: %w", ownerID, err)
	}
	return domain.NewPage(items, page, total), nil
}

// DealSearchParams are the optional dimensions of a deal search; "ALL" or
// empty leaves a dimension unfiltered.
type DealSearchParams struct {
	CategoryID string
	MerchantID string
	BrandID    string
	SearchTerm string
}

// Search serves approved, live, unexpired deals from the deal index.
func (s *DealService) Search(ctx context.Context, p DealSearchParams, page domain.PageRequest) (domain.Page[domain.DealIndex], error) {
	q, err := filter.DealSearch.Resolve(map[filter.Dimension]filter.Value{
		filter.Category: filter.Of(p.CategoryID),
		filter.Merchant: filter.Of(p.MerchantID),
		filter.Brand:    filter.Of(p.BrandID),
		filter.Search:   filter.Of(p.SearchTerm),
	})
	if err != nil {
		return domain.Page[domain.DealIndex]{}, err
	}
	items, total, err := s.Index.Search(ctx, q, domain.NewTime(s.Clock.Now()), page)
	if err != nil {
		return domain.Page[domain.DealIndex]{}, fmt.Errorf("search deals %s: %w", q.Key, err)
	}
	return domain.NewPage(items, page, total), nil
}

func (s *DealService) load(ctx context.Context, id string) (domain.Deal, error) {
	d, err := s.Deals.Get(ctx, id)
	if repos.IsNotFound(err) {
		return d, domain.ErrInvalidDeal.With("deal %s", id)
	}
	if err != nil {
		return d, fmt.Errorf("load deal %s: %w", id, err)
	}
	return d, nil
}

func owns(c Caller, d domain.Deal) bool {
	return c.UserID != "" && (c.UserID == d.CreatedBy || c.UserID == d.OwnerID)
}

func (s *DealService) validate(in DealInput) (domain.Deal, error) {
	var (
		d  domain.Deal
		ok bool
	)
	d.OwnerKind = in.OwnerKind
	if d.OwnerID, ok = validate.ID(in.OwnerID); !ok {
		return d, domain.ErrValidation.With("ownerId")
	}
	if d.Title, ok = validate.Name(in.Title); !ok {
		return d, domain.ErrValidation.With("title")
	}
	if d.Subtitle, ok = validate.Text(in.Subtitle, 200); !ok {
		return d, domain.ErrValidation.With("subtitle")
	}
	if d.Description, ok = validate.Text(in.Description, 4000); !ok {
		return d, domain.ErrValidation.With("description")
	}
	if d.Terms, ok = validate.Text(in.Terms, 4000); !ok {
		return d, domain.ErrValidation.With("terms")
	}
	if len(in.Images) > 10 {
		return d, domain.ErrValidation.With("at most 10 images")
	}
	d.Images = dedupe(in.Images)

	if in.Price.IsNegative() {
		return d, domain.ErrInvalidPrice
	}
	d.Price = in.Price

	switch in.DeductionType {
	case domain.DeductionPercentage:
		p := in.DeductionPercentage
		if !p.Valid || in.DeductionAmount.Valid || !p.Decimal.IsPositive() || p.Decimal.GreaterThan(hundred) {
			return d, domain.ErrInvalidDeduction
		}
	case domain.DeductionAmount:
		a := in.DeductionAmount
		if !a.Valid || in.DeductionPercentage.Valid || !a.Decimal.IsPositive() {
			return d, domain.ErrInvalidDeduction
		}
	default:
		return d, domain.ErrInvalidDeduction.With("deductionType %q", in.DeductionType)
	}
	d.DeductionType = in.DeductionType
	d.DeductionAmount = in.DeductionAmount
	d.DeductionPercentage = in.DeductionPercentage

	if in.ValidFrom.IsZero() || in.ExpiredOn.IsZero() {
		return d, domain.ErrInvalidDates
	}
	if !in.ValidFrom.After(s.Clock.Now()) || !in.ValidFrom.Before(in.ExpiredOn) {
		return d, domain.ErrInvalidDates
	}
	d.ValidFrom = domain.NewTime(in.ValidFrom)
	d.ExpiredOn = domain.NewTime(in.ExpiredOn)

	d.CategoryIDs = dedupe(in.CategoryIDs)
	if len(d.CategoryIDs) == 0 {
		return d, domain.ErrInvalidCategory.With("at least one category is required")
	}
	d.BrandIDs = dedupe(in.BrandIDs)
	for _, id := range append(append([]string{}, d.CategoryIDs...), d.BrandIDs...) {
		if _, ok := validate.ID(id); !ok {
			return d, domain.ErrValidation.With("malformed id %q", id)
		}
	}
	if in.OfferTypeID != "" {
		if d.OfferTypeID, ok = validate.ID(in.OfferTypeID); !ok {
			return d, domain.ErrInvalidOfferType
		}
	}
	return d, nil
}

// checkRefs verifies that every referenced category, brand and offer type exists.
func (s *DealService) checkRefs(ctx context.Context, d domain.Deal) error {
	db := s.Store.DB
	cats, err := repos.NewCategoryRepo(db).Names(ctx, d.CategoryIDs)
	if err != nil {
		return err
	}
	for _, id := range d.CategoryIDs {
		if _, ok := cats[id]; !ok {
			return domain.ErrInvalidCategory.With("category %s", id)
		}
	}
	brands, err := repos.NewBrandRepo(db).Names(ctx, d.BrandIDs)
	if err != nil {
		return err
	}
	for _, id := range d.BrandIDs {
		if _, ok := brands[id]; !ok {
			return domain.ErrInvalidBrand.With("brand %s", id)
		}
	}
	if d.OfferTypeID != "" {
		_, err := repos.NewOfferTypeRepo(db).Get(ctx, d.OfferTypeID)
		if repos.IsNotFound(err) {
			return domain.ErrInvalidOfferType.With("offer type %s", d.OfferTypeID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
