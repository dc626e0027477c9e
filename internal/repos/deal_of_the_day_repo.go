package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

type DealOfTheDayRepo struct{ db sqlx.ExtContext }

func NewDealOfTheDayRepo(db sqlx.ExtContext) *DealOfTheDayRepo { return &DealOfTheDayRepo{db: db} }

// DeactivateAll flips every active row to inactive and returns how many changed.
func (r *DealOfTheDayRepo) DeactivateAll(ctx context.Context) (int64, error) {
	res, err := exec(ctx, r.db, `UPDATE deals_of_the_day SET is_active = FALSE WHERE is_active = TRUE`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DealOfTheDayRepo) DeactivateDeal(ctx context.Context, dealID string) error {
	_, err := exec(ctx, r.db, `UPDATE deals_of_the_day SET is_active = FALSE WHERE deal_id = ?`, dealID)
	return err
}

func (r *DealOfTheDayRepo) Insert(ctx context.Context, d domain.DealOfTheDay) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO deals_of_the_day(id, deal_id, owner_kind, deal_date, is_active, created_at)
  VALUES(:id, :deal_id, :owner_kind, :deal_date, :is_active, :created_at)`, d)
	return err
}

func (r *DealOfTheDayRepo) Active(ctx context.Context) ([]domain.DealOfTheDay, error) {
	var out []domain.DealOfTheDay
	err := sel(ctx, r.db, &out, `
  SELECT id, deal_id, owner_kind, deal_date, is_active, created_at
  FROM deals_of_the_day WHERE is_active = TRUE
  ORDER BY owner_kind, created_at, id`)
	return out, err
}

func (r *DealOfTheDayRepo) CountActive(ctx context.Context, kind domain.OwnerKind) (int, error) {
	return count(ctx, r.db, `deals_of_the_day WHERE is_active = TRUE AND owner_kind = ?`, kind)
}
