package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

type DealCodeRepo struct{ db sqlx.ExtContext }

func NewDealCodeRepo(db sqlx.ExtContext) *DealCodeRepo { return &DealCodeRepo{db: db} }

// Next atomically increments and returns the counter for (date, dealType).
// The first call for a new date returns 1.
func (r *DealCodeRepo) Next(ctx context.Context, date, dealType string) (int, error) {
	var n int
	err := get(ctx, r.db, &n, `
  INSERT INTO deal_code_counters(deal_date, deal_type, last_number) VALUES(?, ?, 1)
  ON CONFLICT(deal_date, deal_type) DO UPDATE SET last_number = deal_code_counters.last_number + 1
  RETURNING last_number`, date, dealType)
	if err != nil {
		return 0, fmt.Errorf("next deal number %s/%s: %w", date, dealType, err)
	}
	return n, nil
}

func (r *DealCodeRepo) Record(ctx context.Context, c domain.DealCode) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO deal_codes(code, deal_date, deal_number_for_the_day, deal_type, created_at)
  VALUES(:code, :deal_date, :deal_number_for_the_day, :deal_type, :created_at)`, c)
	return err
}

// ForDate lists the codes issued on date, newest first.
func (r *DealCodeRepo) ForDate(ctx context.Context, date string) ([]domain.DealCode, error) {
	var out []domain.DealCode
	err := sel(ctx, r.db, &out, `
  SELECT code, deal_date, deal_number_for_the_day, deal_type, created_at
  FROM deal_codes WHERE deal_date = ?
  ORDER BY deal_type, deal_number_for_the_day DESC`, date)
	return out, err
}
