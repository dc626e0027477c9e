package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/filter"
	"dealcore/internal/repos"
	"dealcore/internal/validate"
)

// MappingInput declares which categories and brands a merchant or bank deals in.
type MappingInput struct {
	MerchantID  string           `json:"merchantId"`
	OwnerKind   domain.OwnerKind `json:"ownerKind"`
	CategoryIDs []string         `json:"categoryIds"`
	BrandIDs    []string         `json:"brandIds"`
}

// MappingService manages CategoryBrandMerchant rows and their merchant index.
type MappingService struct {
	Store    *repos.Store
	Mappings *repos.MappingRepo
	Index    *repos.MerchantIndexRepo
	Banks    *repos.BankMerchantIndexRepo
	Profiles ProfileService
	Sync     *IndexSync
	Clock    clock.Clock
}

func NewMappingService(store *repos.Store, profiles ProfileService, idx *IndexSync, c clock.Clock) *MappingService {
	return &MappingService{
		Store:    store,
		Mappings: repos.NewMappingRepo(store.DB),
		Index:    repos.NewMerchantIndexRepo(store.DB),
		Banks:    repos.NewBankMerchantIndexRepo(store.DB),
		Profiles: profiles,
		Sync:     idx,
		Clock:    c,
	}
}

func (s *MappingService) Create(ctx context.Context, caller Caller, in MappingInput) (domain.MerchantMapping, error) {
	m, err := s.validate(ctx, in)
	if err != nil {
		return m, err
	}
	_, err = s.Mappings.GetByMerchant(ctx, m.MerchantID)
	if err == nil {
		return m, domain.ErrAlreadyExists.With("mapping for %s", m.MerchantID)
	}
	if !repos.IsNotFound(err) {
		return m, err
	}
	profile, err := ownerProfile(ctx, s.Profiles, m.OwnerKind, caller.AuthToken, m.MerchantID)
	if err != nil {
		return m, err
	}
	now := domain.NewTime(s.Clock.Now())
	m.ID = newID("CBM")
	m.MerchantActive = profile.Active
	m.MerchantApprovalStatus = profile.ApprovalStatus
	m.CreatedBy = caller.UserID
	m.CreatedAt, m.UpdatedAt = now, now

	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewMappingRepo(tx).Insert(ctx, m); err != nil {
			return err
		}
		return s.Sync.MappingSaved(ctx, tx, m, profile.Display())
	})
	if err != nil {
		return domain.MerchantMapping{}, fmt.Errorf("create mapping %s: %w", m.MerchantID, err)
	}
	return m, nil
}

// Update replaces the category and brand sets of an existing mapping and
// refreshes the merchant snapshot.
func (s *MappingService) Update(ctx context.Context, caller Caller, merchantID string, in MappingInput) (domain.MerchantMapping, error) {
	cur, err := s.Get(ctx, merchantID)
	if err != nil {
		return cur, err
	}
	in.MerchantID, in.OwnerKind = cur.MerchantID, cur.OwnerKind
	m, err := s.validate(ctx, in)
	if err != nil {
		return m, err
	}
	profile, err := ownerProfile(ctx, s.Profiles, m.OwnerKind, caller.AuthToken, m.MerchantID)
	if err != nil {
		return m, err
	}
	m.ID = cur.ID
	m.MerchantActive = profile.Active
	m.MerchantApprovalStatus = profile.ApprovalStatus
	m.CreatedBy, m.CreatedAt = cur.CreatedBy, cur.CreatedAt
	m.UpdatedAt = domain.NewTime(s.Clock.Now())

	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewMappingRepo(tx).Update(ctx, m); err != nil {
			return err
		}
		return s.Sync.MappingSaved(ctx, tx, m, profile.Display())
	})
	if err != nil {
		return domain.MerchantMapping{}, fmt.Errorf("update mapping %s: %w", merchantID, err)
	}
	return m, nil
}

func (s *MappingService) Delete(ctx context.Context, merchantID string) error {
	m, err := s.Get(ctx, merchantID)
	if err != nil {
		return err
	}
	return s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewMappingRepo(tx).Delete(ctx, m.ID); err != nil {
			return err
		}
		return s.Sync.MappingDeleted(ctx, tx, m.ID)
	})
}

func (s *MappingService) Get(ctx context.Context, merchantID string) (domain.MerchantMapping, error) {
	m, err := s.Mappings.GetByMerchant(ctx, merchantID)
	if repos.IsNotFound(err) {
		return m, domain.ErrInvalidMapping.With("merchant %s", merchantID)
	}
	return m, err
}

// Search finds active merchants by category or by brand, optionally narrowed
// by name. Category and brand together is rejected by the filter family.
func (s *MappingService) Search(ctx context.Context, categoryID, brandID, term string, page domain.PageRequest) (domain.Page[domain.MerchantIndex], error) {
	q, err := filter.MerchantIndex.Resolve(map[filter.Dimension]filter.Value{
		filter.Category: filter.Of(categoryID),
		filter.Brand:    filter.Of(brandID),
		filter.Search:   filter.Of(term),
	})
	if err != nil {
		return domain.Page[domain.MerchantIndex]{}, err
	}
	items, total, err := s.Index.Search(ctx, q, page)
	if err != nil {
		return domain.Page[domain.MerchantIndex]{}, fmt.Errorf("search merchants %s: %w", q.Key, err)
	}
	return domain.NewPage(items, page, total), nil
}

// BankList pages banks that currently have approved live deals.
func (s *MappingService) BankList(ctx context.Context, term string, page domain.PageRequest) (domain.Page[domain.BankMerchantIndex], error) {
	items, total, err := s.Banks.List(ctx, term, page)
	if err != nil {
		return domain.Page[domain.BankMerchantIndex]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

func (s *MappingService) validate(ctx context.Context, in MappingInput) (domain.MerchantMapping, error) {
	var (
		m  domain.MerchantMapping
		ok bool
	)
	if m.MerchantID, ok = validate.ID(in.MerchantID); !ok {
		return m, domain.ErrValidation.With("merchantId")
	}
	if !in.OwnerKind.Valid() {
		return m, domain.ErrUnsupportedUserType.With("ownerKind %q", in.OwnerKind)
	}
	m.OwnerKind = in.OwnerKind
	m.CategoryIDs = dedupe(in.CategoryIDs)
	m.BrandIDs = dedupe(in.BrandIDs)
	if len(m.CategoryIDs) == 0 {
		return m, domain.ErrInvalidCategory.With("at least one category is required")
	}
	cats, err := repos.NewCategoryRepo(s.Store.DB).Names(ctx, m.CategoryIDs)
	if err != nil {
		return m, err
	}
	for _, id := range m.CategoryIDs {
		if _, ok := cats[id]; !ok {
			return m, domain.ErrInvalidCategory.With("category %s", id)
		}
	}
	brands, err := repos.NewBrandRepo(s.Store.DB).Names(ctx, m.BrandIDs)
	if err != nil {
		return m, err
	}
	for _, id := range m.BrandIDs {
		if _, ok := brands[id]; !ok {
			return m, domain.ErrInvalidBrand.With("brand %s", id)
		}
	}
	return m, nil
}
