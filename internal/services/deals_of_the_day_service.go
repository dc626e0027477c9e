package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/filter"
	"dealcore/internal/repos"
)

// RefreshResult summarises one deals-of-the-day rebuild.
type RefreshResult struct {
	Date        string                   `json:"date"`
	Deactivated int64                    `json:"deactivated"`
	Removed     int64                    `json:"removedIndexRows"`
	Inserted    map[domain.OwnerKind]int `json:"inserted"`
}

// DealsOfTheDayService rebuilds the daily promoted set and serves searches
// over it.
type DealsOfTheDayService struct {
	Store *repos.Store
	Index *repos.DealOfTheDayIndexRepo
	Clock clock.Clock
	Loc   *time.Location
	Limit int

	group singleflight.Group
}

func NewDealsOfTheDayService(store *repos.Store, c clock.Clock, loc *time.Location, limit int) *DealsOfTheDayService {
	return &DealsOfTheDayService{
		Store: store,
		Index: repos.NewDealOfTheDayIndexRepo(store.DB),
		Clock: c,
		Loc:   loc,
		Limit: limit,
	}
}

// Refresh is a full replace: every active record is deactivated, the search
// index is emptied, and a fresh random sample of up to Limit valid deals per
// owner kind is promoted. It all commits together. Overlapping callers share
// one run.
func (s *DealsOfTheDayService) Refresh(ctx context.Context) (RefreshResult, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return RefreshResult{}, err
	}
	return v.(RefreshResult), nil
}

func (s *DealsOfTheDayService) refresh(ctx context.Context) (RefreshResult, error) {
	now := domain.NewTime(s.Clock.Now())
	res := RefreshResult{
		Date:     clock.Today(s.Clock, s.Loc).Format(domain.DateLayout),
		Inserted: map[domain.OwnerKind]int{},
	}
	err := s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		records := repos.NewDealOfTheDayRepo(tx)
		index := repos.NewDealOfTheDayIndexRepo(tx)
		var err error
		if res.Deactivated, err = records.DeactivateAll(ctx); err != nil {
			return err
		}
		if res.Removed, err = index.DeleteAll(ctx); err != nil {
			return err
		}
		for _, kind := range []domain.OwnerKind{domain.OwnerMerchant, domain.OwnerBank} {
			deals, err := repos.NewDealRepo(tx).SampleValid(ctx, kind, now, s.Limit)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(deals))
			for _, d := range deals {
				ids = append(ids, d.ID)
			}
			cached, err := repos.NewDealIndexRepo(tx).ByIDs(ctx, ids)
			if err != nil {
				return err
			}
			for _, d := range deals {
				rec := domain.DealOfTheDay{
					ID:        newID("DOTD"),
					DealID:    d.ID,
					OwnerKind: kind,
					DealDate:  res.Date,
					IsActive:  true,
					CreatedAt: now,
				}
				if err := records.Insert(ctx, rec); err != nil {
					return fmt.Errorf("insert deal of the day %s: %w", d.ID, err)
				}
				if err := index.Insert(ctx, dealOfTheDayRow(rec, d, cached[d.ID], now)); err != nil {
					return err
				}
				res.Inserted[kind]++
			}
		}
		return nil
	})
	if err != nil {
		return RefreshResult{}, fmt.Errorf("refresh deals of the day: %w", err)
	}
	return res, nil
}

func dealOfTheDayRow(rec domain.DealOfTheDay, d domain.Deal, cached domain.DealIndex, now domain.Time) domain.DealOfTheDayIndex {
	return domain.DealOfTheDayIndex{
		ID:                  rec.ID,
		DealID:              d.ID,
		DealDate:            rec.DealDate,
		OwnerKind:           d.OwnerKind,
		OwnerID:             d.OwnerID,
		OwnerDisplay:        cached.OwnerDisplay,
		Title:               d.Title,
		Subtitle:            d.Subtitle,
		Price:               d.Price,
		DeductionType:       d.DeductionType,
		DeductionAmount:     d.DeductionAmount,
		DeductionPercentage: d.DeductionPercentage,
		ExpiredOn:           d.ExpiredOn,
		DealCode:            d.DealCode,
		CategoryIDs:         repos.JoinIDs(d.CategoryIDs),
		CategoryNames:       cached.CategoryNames,
		UpdatedAt:           now,
	}
}

func (s *DealsOfTheDayService) Search(ctx context.Context, categoryID, merchantID, term string, page domain.PageRequest) (domain.Page[domain.DealOfTheDayIndex], error) {
	q, err := filter.DealsOfTheDay.Resolve(map[filter.Dimension]filter.Value{
		filter.Category: filter.Of(categoryID),
		filter.Merchant: filter.Of(merchantID),
		filter.Search:   filter.Of(term),
	})
	if err != nil {
		return domain.Page[domain.DealOfTheDayIndex]{}, err
	}
	items, total, err := s.Index.Search(ctx, q, page)
	if err != nil {
		return domain.Page[domain.DealOfTheDayIndex]{}, fmt.Errorf("search deals of the day %s: %w", q.Key, err)
	}
	return domain.NewPage(items, page, total), nil
}

// Active lists the active promotion records.
func (s *DealsOfTheDayService) Active(ctx context.Context) ([]domain.DealOfTheDay, error) {
	return repos.NewDealOfTheDayRepo(s.Store.DB).Active(ctx)
}
