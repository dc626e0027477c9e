package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
	"dealcore/internal/filter"
)

// DealOfTheDayIndexRepo is the deal_of_the_day_search_index read model; row id
// equals the deals_of_the_day record id.
type DealOfTheDayIndexRepo struct{ db sqlx.ExtContext }

func NewDealOfTheDayIndexRepo(db sqlx.ExtContext) *DealOfTheDayIndexRepo {
	return &DealOfTheDayIndexRepo{db: db}
}

const dotdIndexColumns = `
    id, deal_id, deal_date, owner_kind, owner_id, owner_name, owner_image, owner_approval_status, owner_active,
    title, subtitle, price, deduction_type, deduction_amount, deduction_percentage,
    expired_on, deal_code, category_ids, category_names, updated_at`

var dotdSearch = newSearchQueries(filter.DealsOfTheDay,
	[]filter.Dimension{filter.Category, filter.Merchant, filter.Search},
	map[filter.Dimension]string{
		filter.Category: `category_ids ` + predContains,
		filter.Merchant: `owner_id = ?`,
		filter.Search:   `LOWER(title || ' ' || subtitle || ' ' || owner_name) ` + likeSearch,
	})

func (r *DealOfTheDayIndexRepo) Insert(ctx context.Context, row domain.DealOfTheDayIndex) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO deal_of_the_day_search_index(`+dotdIndexColumns+`)
  VALUES(:id, :deal_id, :deal_date, :owner_kind, :owner_id, :owner_name, :owner_image, :owner_approval_status, :owner_active,
    :title, :subtitle, :price, :deduction_type, :deduction_amount, :deduction_percentage,
    :expired_on, :deal_code, :category_ids, :category_names, :updated_at)`, row)
	if err != nil {
		return fmt.Errorf("insert deal-of-the-day index %s: %w", row.ID, err)
	}
	return nil
}

func (r *DealOfTheDayIndexRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := exec(ctx, r.db, `DELETE FROM deal_of_the_day_search_index`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByDeal removes the rows promoting dealID.
func (r *DealOfTheDayIndexRepo) DeleteByDeal(ctx context.Context, dealID string) error {
	_, err := exec(ctx, r.db, `DELETE FROM deal_of_the_day_search_index WHERE deal_id = ?`, dealID)
	return err
}

func (r *DealOfTheDayIndexRepo) Search(ctx context.Context, q filter.Query, page domain.PageRequest) ([]domain.DealOfTheDayIndex, int, error) {
	where, args, err := dotdSearch.where(q, `deal_of_the_day_search_index WHERE 1=1`)
	if err != nil {
		return nil, 0, err
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.DealOfTheDayIndex
	err = sel(ctx, r.db, &out, `SELECT `+dotdIndexColumns+` FROM `+where+`
  ORDER BY owner_kind DESC, title, id LIMIT ? OFFSET ?`, append(args, page.Size, page.Offset())...)
	return out, total, err
}

func (r *DealOfTheDayIndexRepo) PatchOwner(ctx context.Context, ownerID string, d domain.OwnerDisplay, now domain.Time) (int64, error) {
	return patchOwnerDisplay(ctx, r.db, "deal_of_the_day_search_index", ownerID, d, now)
}
