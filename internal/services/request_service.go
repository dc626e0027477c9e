package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/filter"
	"dealcore/internal/repos"
	"dealcore/internal/validate"
)

type CreditCardInput struct {
	BankID         string          `json:"bankId"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	MobileNo       string          `json:"mobileNo"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	EmploymentType string          `json:"employmentType"`
	CardType       string          `json:"cardType"`
}

type CreditCardService struct {
	Requests *repos.CreditCardRepo
	Profiles ProfileService
	Clock    clock.Clock
}

func NewCreditCardService(store *repos.Store, profiles ProfileService, c clock.Clock) *CreditCardService {
	return &CreditCardService{Requests: repos.NewCreditCardRepo(store.DB), Profiles: profiles, Clock: c}
}

func (s *CreditCardService) Create(ctx context.Context, caller Caller, in CreditCardInput) (domain.CreditCardRequest, error) {
	var (
		r  domain.CreditCardRequest
		ok bool
	)
	if r.BankID, ok = validate.ID(in.BankID); !ok {
		return r, domain.ErrInvalidBank.With("bankId")
	}
	if r.FullName, ok = validate.Name(in.FullName); !ok {
		return r, domain.ErrValidation.With("fullName")
	}
	if r.Email, ok = validate.Email(in.Email); !ok {
		return r, domain.ErrValidation.With("email")
	}
	if r.MobileNo, ok = validate.Mobile(in.MobileNo); !ok {
		return r, domain.ErrValidation.With("mobileNo")
	}
	if in.MonthlyIncome.IsNegative() {
		return r, domain.ErrValidation.With("monthlyIncome")
	}
	r.MonthlyIncome = in.MonthlyIncome
	if r.EmploymentType, ok = validate.Text(in.EmploymentType, 50); !ok {
		return r, domain.ErrValidation.With("employmentType")
	}
	if r.CardType, ok = validate.Text(in.CardType, 50); !ok {
		return r, domain.ErrValidation.With("cardType")
	}
	if _, err := s.Profiles.BankByID(ctx, caller.AuthToken, r.BankID); err != nil {
		return r, err
	}
	r.ID = newID("CCR")
	r.UserID = caller.UserID
	r.CreatedAt = domain.NewTime(s.Clock.Now())
	if err := s.Requests.Insert(ctx, r); err != nil {
		return domain.CreditCardRequest{}, err
	}
	return r, nil
}

func (s *CreditCardService) Get(ctx context.Context, id string) (domain.CreditCardRequest, error) {
	r, err := s.Requests.Get(ctx, id)
	if repos.IsNotFound(err) {
		return r, domain.ErrInvalidCardRequest.With("request %s", id)
	}
	return r, err
}

func (s *CreditCardService) Search(ctx context.Context, bankID, term string, page domain.PageRequest) (domain.Page[domain.CreditCardRequest], error) {
	q, err := filter.CreditCardRequests.Resolve(map[filter.Dimension]filter.Value{
		filter.Bank:   filter.Of(bankID),
		filter.Search: filter.Of(term),
	})
	if err != nil {
		return domain.Page[domain.CreditCardRequest]{}, err
	}
	items, total, err := s.Requests.Search(ctx, q, page)
	if err != nil {
		return domain.Page[domain.CreditCardRequest]{}, fmt.Errorf("search card requests %s: %w", q.Key, err)
	}
	return domain.NewPage(items, page, total), nil
}

func (s *CreditCardService) Combined(ctx context.Context, page domain.PageRequest) (domain.Page[domain.CombinedCreditCardRequest], error) {
	items, total, err := s.Requests.Combined(ctx, page)
	if err != nil {
		return domain.Page[domain.CombinedCreditCardRequest]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

// DealRequestInput is a buyer's RequestADeal submission.
type DealRequestInput struct {
	CategoryID     string           `json:"categoryId"`
	BrandID        string           `json:"brandId"`
	OfferTypeID    string           `json:"offerTypeId"`
	TargetUserType domain.OwnerKind `json:"targetUserType"`
	TargetOwnerID  string           `json:"targetOwnerId"`
	Description    string           `json:"description"`
}

type DealRequestService struct {
	Store    *repos.Store
	Requests *repos.DealRequestRepo
	Index    *repos.DealRequestIndexRepo
	Profiles ProfileService
	Sync     *IndexSync
	Clock    clock.Clock
}

func NewDealRequestService(store *repos.Store, profiles ProfileService, idx *IndexSync, c clock.Clock) *DealRequestService {
	return &DealRequestService{
		Store:    store,
		Requests: repos.NewDealRequestRepo(store.DB),
		Index:    repos.NewDealRequestIndexRepo(store.DB),
		Profiles: profiles,
		Sync:     idx,
		Clock:    c,
	}
}

func (s *DealRequestService) Create(ctx context.Context, caller Caller, in DealRequestInput) (domain.DealRequest, error) {
	r, err := s.validate(ctx, in)
	if err != nil {
		return r, err
	}
	owner, err := ownerProfile(ctx, s.Profiles, r.TargetUserType, caller.AuthToken, r.TargetOwnerID)
	if err != nil {
		return r, err
	}
	requester, err := s.Profiles.UserByID(ctx, caller.AuthToken, caller.UserID)
	if err != nil {
		return r, err
	}
	now := domain.NewTime(s.Clock.Now())
	r.ID = newID("RAD")
	r.RequesterID = caller.UserID
	r.CreatedAt, r.UpdatedAt = now, now

	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewDealRequestRepo(tx).Insert(ctx, r); err != nil {
			return err
		}
		return s.Sync.RequestCreated(ctx, tx, r, requester.FullName, owner.Display())
	})
	if err != nil {
		return domain.DealRequest{}, fmt.Errorf("create deal request: %w", err)
	}
	return r, nil
}

// Delete soft-deletes the caller's own request in both stores.
func (s *DealRequestService) Delete(ctx context.Context, caller Caller, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.RequesterID != caller.UserID {
		return domain.ErrNotOwner
	}
	now := domain.NewTime(s.Clock.Now())
	return s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewDealRequestRepo(tx).MarkDeleted(ctx, id, now); err != nil {
			return err
		}
		return s.Sync.RequestDeleted(ctx, tx, id)
	})
}

func (s *DealRequestService) Get(ctx context.Context, id string) (domain.DealRequest, error) {
	r, err := s.Requests.Get(ctx, id)
	if repos.IsNotFound(err) {
		return r, domain.ErrInvalidDealRequest.With("request %s", id)
	}
	return r, err
}

// Search pages live requests; ownerID scopes to one target when set.
func (s *DealRequestService) Search(ctx context.Context, ownerID, categoryID, brandID, term string, page domain.PageRequest) (domain.Page[domain.DealRequestIndex], error) {
	q, err := filter.DealRequests.Resolve(map[filter.Dimension]filter.Value{
		filter.Category: filter.Of(categoryID),
		filter.Brand:    filter.Of(brandID),
		filter.Search:   filter.Of(term),
	})
	if err != nil {
		return domain.Page[domain.DealRequestIndex]{}, err
	}
	owner, _ := filter.Of(ownerID).Get()
	items, total, err := s.Index.Search(ctx, q, owner, page)
	if err != nil {
		return domain.Page[domain.DealRequestIndex]{}, fmt.Errorf("search deal requests %s: %w", q.Key, err)
	}
	return domain.NewPage(items, page, total), nil
}

func (s *DealRequestService) Combined(ctx context.Context, kind domain.OwnerKind, page domain.PageRequest) (domain.Page[domain.CombinedDealRequest], error) {
	if !kind.Valid() {
		return domain.Page[domain.CombinedDealRequest]{}, domain.ErrUnsupportedUserType.With("userType %q", kind)
	}
	items, total, err := s.Index.Combined(ctx, kind, page)
	if err != nil {
		return domain.Page[domain.CombinedDealRequest]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

func (s *DealRequestService) validate(ctx context.Context, in DealRequestInput) (domain.DealRequest, error) {
	var (
		r  domain.DealRequest
		ok bool
	)
	if !in.TargetUserType.Valid() {
		return r, domain.ErrUnsupportedUserType.With("targetUserType %q", in.TargetUserType)
	}
	r.TargetUserType = in.TargetUserType
	if r.TargetOwnerID, ok = validate.ID(in.TargetOwnerID); !ok {
		return r, domain.ErrValidation.With("targetOwnerId")
	}
	if r.Description, ok = validate.Text(in.Description, 1000); !ok {
		return r, domain.ErrValidation.With("description")
	}
	db := s.Store.DB
	if r.CategoryID, ok = validate.ID(in.CategoryID); !ok {
		return r, domain.ErrInvalidCategory.With("categoryId")
	}
	if _, err := repos.NewCategoryRepo(db).Get(ctx, r.CategoryID); err != nil {
		if repos.IsNotFound(err) {
			return r, domain.ErrInvalidCategory.With("category %s", r.CategoryID)
		}
		return r, err
	}
	if in.BrandID != "" {
		r.BrandID = in.BrandID
		if _, err := repos.NewBrandRepo(db).Get(ctx, r.BrandID); err != nil {
			if repos.IsNotFound(err) {
				return r, domain.ErrInvalidBrand.With("brand %s", r.BrandID)
			}
			return r, err
		}
	}
	if in.OfferTypeID != "" {
		r.OfferTypeID = in.OfferTypeID
		if _, err := repos.NewOfferTypeRepo(db).Get(ctx, r.OfferTypeID); err != nil {
			if repos.IsNotFound(err) {
				return r, domain.ErrInvalidOfferType.With("offer type %s", r.OfferTypeID)
			}
			return r, err
		}
	}
	return r, nil
}
