package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

// IndexSync keeps the denormalized search indexes consistent with the primary
// tables. Every method runs on the caller's transaction so the primary write
// and its index writes commit or fail together.
type IndexSync struct {
	Store *repos.Store
	Clock clock.Clock
}

func NewIndexSync(store *repos.Store, c clock.Clock) *IndexSync {
	return &IndexSync{Store: store, Clock: c}
}

func (s *IndexSync) now() domain.Time { return domain.NewTime(s.Clock.Now()) }

// DealCreated writes the deal's index row. New deals are PENDING, so the bank
// aggregate is left alone until approval.
func (s *IndexSync) DealCreated(ctx context.Context, tx *sqlx.Tx, d domain.Deal, owner domain.OwnerDisplay) error {
	row := domain.DealIndex{
		ID:           d.ID,
		OwnerKind:    d.OwnerKind,
		OwnerID:      d.OwnerID,
		OwnerDisplay: owner,
		CreatedAt:    d.CreatedAt,
	}
	if err := s.applyDeal(ctx, tx, &row, d); err != nil {
		return err
	}
	return repos.NewDealIndexRepo(tx).Insert(ctx, row)
}

// DealUpdated loads the index row by the shared id and patches it in place.
func (s *IndexSync) DealUpdated(ctx context.Context, tx *sqlx.Tx, d domain.Deal) error {
	idx := repos.NewDealIndexRepo(tx)
	row, err := idx.Get(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("load deal index %s: %w", d.ID, err)
	}
	if err := s.applyDeal(ctx, tx, &row, d); err != nil {
		return err
	}
	return idx.Save(ctx, row)
}

// DealApproved patches approval status and comment, then refreshes the bank
// aggregate when the owner is a bank.
func (s *IndexSync) DealApproved(ctx context.Context, tx *sqlx.Tx, d domain.Deal) error {
	idx := repos.NewDealIndexRepo(tx)
	row, err := idx.Get(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("load deal index %s: %w", d.ID, err)
	}
	row.ApprovalStatus = d.ApprovalStatus
	row.Comment = d.Comment
	row.UpdatedAt = s.now()
	if err := idx.Save(ctx, row); err != nil {
		return err
	}
	if d.OwnerKind == domain.OwnerBank {
		return s.RefreshBank(ctx, tx, d.OwnerID, row.OwnerDisplay)
	}
	return nil
}

// DealDeleted hides the deal from every index that can serve it.
func (s *IndexSync) DealDeleted(ctx context.Context, tx *sqlx.Tx, d domain.Deal) error {
	now := s.now()
	idx := repos.NewDealIndexRepo(tx)
	// an expired, decided deal may already have been purged from the index
	row, err := idx.Get(ctx, d.ID)
	if err != nil && !repos.IsNotFound(err) {
		return fmt.Errorf("load deal index %s: %w", d.ID, err)
	}
	if err := idx.MarkDeleted(ctx, d.ID, now); err != nil {
		return err
	}
	if err := repos.NewDealOfTheDayIndexRepo(tx).DeleteByDeal(ctx, d.ID); err != nil {
		return err
	}
	if err := repos.NewDealOfTheDayRepo(tx).DeactivateDeal(ctx, d.ID); err != nil {
		return err
	}
	if d.OwnerKind == domain.OwnerBank {
		return s.RefreshBank(ctx, tx, d.OwnerID, row.OwnerDisplay)
	}
	return nil
}

func (s *IndexSync) applyDeal(ctx context.Context, tx *sqlx.Tx, row *domain.DealIndex, d domain.Deal) error {
	catNames, err := repos.NewCategoryRepo(tx).Names(ctx, d.CategoryIDs)
	if err != nil {
		return err
	}
	brandNames, err := repos.NewBrandRepo(tx).Names(ctx, d.BrandIDs)
	if err != nil {
		return err
	}
	row.Title = d.Title
	row.Subtitle = d.Subtitle
	row.Price = d.Price
	row.DeductionType = d.DeductionType
	row.DeductionAmount = d.DeductionAmount
	row.DeductionPercentage = d.DeductionPercentage
	row.ValidFrom = d.ValidFrom
	row.ExpiredOn = d.ExpiredOn
	row.ApprovalStatus = d.ApprovalStatus
	row.Comment = d.Comment
	row.DealCode = d.DealCode
	row.CategoryIDs = repos.JoinIDs(d.CategoryIDs)
	row.CategoryNames = repos.JoinNames(namesInOrder(d.CategoryIDs, catNames))
	row.BrandIDs = repos.JoinIDs(d.BrandIDs)
	row.BrandNames = repos.JoinNames(namesInOrder(d.BrandIDs, brandNames))
	row.IsDeleted = d.IsDeleted
	row.UpdatedAt = s.now()
	return nil
}

// RefreshBank recomputes the bank aggregate from its live approved deals. A
// bank with no such deals has no aggregate row.
func (s *IndexSync) RefreshBank(ctx context.Context, tx *sqlx.Tx, bankID string, owner domain.OwnerDisplay) error {
	now := s.now()
	deals, err := repos.NewDealRepo(tx).LiveApprovedByOwner(ctx, domain.OwnerBank, bankID, now)
	if err != nil {
		return err
	}
	bank := repos.NewBankMerchantIndexRepo(tx)
	if len(deals) == 0 {
		return bank.Delete(ctx, bankID)
	}
	if owner == (domain.OwnerDisplay{}) {
		if cur, err := bank.Get(ctx, bankID); err == nil {
			owner = cur.OwnerDisplay
		}
	}
	var catIDs []string
	for _, d := range deals {
		catIDs = append(catIDs, d.CategoryIDs...)
	}
	catIDs = dedupe(catIDs)
	names, err := repos.NewCategoryRepo(tx).Names(ctx, catIDs)
	if err != nil {
		return err
	}
	return bank.Upsert(ctx, domain.BankMerchantIndex{
		ID:            bankID,
		OwnerID:       bankID,
		OwnerDisplay:  owner,
		DealCount:     len(deals),
		CategoryIDs:   repos.JoinIDs(catIDs),
		CategoryNames: repos.JoinNames(namesInOrder(catIDs, names)),
		UpdatedAt:     now,
	})
}

// MappingSaved writes the merchant index row for a CategoryBrandMerchant.
func (s *IndexSync) MappingSaved(ctx context.Context, tx *sqlx.Tx, m domain.MerchantMapping, owner domain.OwnerDisplay) error {
	catNames, err := repos.NewCategoryRepo(tx).Names(ctx, m.CategoryIDs)
	if err != nil {
		return err
	}
	brandNames, err := repos.NewBrandRepo(tx).Names(ctx, m.BrandIDs)
	if err != nil {
		return err
	}
	return repos.NewMerchantIndexRepo(tx).Upsert(ctx, domain.MerchantIndex{
		ID:            m.ID,
		OwnerID:       m.MerchantID,
		OwnerKind:     m.OwnerKind,
		OwnerDisplay:  owner,
		CategoryIDs:   repos.JoinIDs(m.CategoryIDs),
		CategoryNames: repos.JoinNames(namesInOrder(m.CategoryIDs, catNames)),
		BrandIDs:      repos.JoinIDs(m.BrandIDs),
		BrandNames:    repos.JoinNames(namesInOrder(m.BrandIDs, brandNames)),
		UpdatedAt:     s.now(),
	})
}

func (s *IndexSync) MappingDeleted(ctx context.Context, tx *sqlx.Tx, id string) error {
	return repos.NewMerchantIndexRepo(tx).Delete(ctx, id)
}

// RequestCreated writes the request index row with cached display names.
func (s *IndexSync) RequestCreated(ctx context.Context, tx *sqlx.Tx, r domain.DealRequest, requesterName string, owner domain.OwnerDisplay) error {
	row := domain.DealRequestIndex{
		ID:             r.ID,
		RequesterID:    r.RequesterID,
		RequesterName:  requesterName,
		CategoryID:     r.CategoryID,
		BrandID:        r.BrandID,
		OfferTypeID:    r.OfferTypeID,
		TargetUserType: r.TargetUserType,
		OwnerID:        r.TargetOwnerID,
		OwnerDisplay:   owner,
		Description:    r.Description,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	cats, err := repos.NewCategoryRepo(tx).Names(ctx, []string{r.CategoryID})
	if err != nil {
		return err
	}
	row.CategoryName = cats[r.CategoryID]
	if r.BrandID != "" {
		brands, err := repos.NewBrandRepo(tx).Names(ctx, []string{r.BrandID})
		if err != nil {
			return err
		}
		row.BrandName = brands[r.BrandID]
	}
	if r.OfferTypeID != "" {
		ot, err := repos.NewOfferTypeRepo(tx).Get(ctx, r.OfferTypeID)
		if err != nil {
			return err
		}
		row.OfferTypeName = ot.Name
	}
	return repos.NewDealRequestIndexRepo(tx).Insert(ctx, row)
}

func (s *IndexSync) RequestDeleted(ctx context.Context, tx *sqlx.Tx, id string) error {
	return repos.NewDealRequestIndexRepo(tx).MarkDeleted(ctx, id, s.now())
}

// PatchResult counts rows rewritten per index table.
type PatchResult map[string]int64

// PatchOwners pushes fresh owner snapshots into every index table that caches
// them, plus the status snapshot on the primary mapping row. Each owner is
// patched in its own transaction; a failure stops the run and leaves later
// owners for the next one.
func (s *IndexSync) PatchOwners(ctx context.Context, changed map[string]domain.OwnerDisplay) (PatchResult, error) {
	res := PatchResult{}
	now := s.now()
	for ownerID, d := range changed {
		err := s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
			patchers := []struct {
				table string
				patch func(context.Context, string, domain.OwnerDisplay, domain.Time) (int64, error)
			}{
				{"deal_search_index", repos.NewDealIndexRepo(tx).PatchOwner},
				{"deal_of_the_day_search_index", repos.NewDealOfTheDayIndexRepo(tx).PatchOwner},
				{"category_brand_merchant_index", repos.NewMerchantIndexRepo(tx).PatchOwner},
				{"bank_merchant_search_index", repos.NewBankMerchantIndexRepo(tx).PatchOwner},
				{"request_a_deal_search_index", repos.NewDealRequestIndexRepo(tx).PatchOwner},
			}
			for _, p := range patchers {
				n, err := p.patch(ctx, ownerID, d, now)
				if err != nil {
					return err
				}
				res[p.table] += n
			}
			return repos.NewMappingRepo(tx).UpdateSnapshot(ctx, ownerID, d.Active, d.ApprovalStatus, now)
		})
		if err != nil {
			return res, fmt.Errorf("patch owner %s: %w", ownerID, err)
		}
	}
	return res, nil
}

// PurgeExpired drops deal index rows that can no longer be served or patched,
// then recomputes every bank aggregate so expired bank deals stop counting.
func (s *IndexSync) PurgeExpired(ctx context.Context) (int64, error) {
	var n int64
	err := s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if n, err = repos.NewDealIndexRepo(tx).Purge(ctx, s.now()); err != nil {
			return err
		}
		banks, err := repos.NewBankMerchantIndexRepo(tx).IDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range banks {
			if err := s.RefreshBank(ctx, tx, id, domain.OwnerDisplay{}); err != nil {
				return fmt.Errorf("refresh bank %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge deal index: %w", err)
	}
	return n, nil
}
