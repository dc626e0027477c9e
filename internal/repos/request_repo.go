package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
	"dealcore/internal/filter"
)

type CreditCardRepo struct{ db sqlx.ExtContext }

func NewCreditCardRepo(db sqlx.ExtContext) *CreditCardRepo { return &CreditCardRepo{db: db} }

const creditCardColumns = `id, user_id, bank_id, full_name, email, mobile_no, monthly_income, employment_type, card_type, created_at`

var creditCardSearch = newSearchQueries(filter.CreditCardRequests,
	[]filter.Dimension{filter.Bank, filter.Search},
	map[filter.Dimension]string{
		filter.Bank:   `bank_id = ?`,
		filter.Search: `LOWER(full_name || ' ' || email) ` + likeSearch,
	})

func (r *CreditCardRepo) Insert(ctx context.Context, c domain.CreditCardRequest) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO credit_card_requests(`+creditCardColumns+`)
  VALUES(:id, :user_id, :bank_id, :full_name, :email, :mobile_no, :monthly_income, :employment_type, :card_type, :created_at)`, c)
	if err != nil {
		return fmt.Errorf("insert credit card request: %w", err)
	}
	return nil
}

func (r *CreditCardRepo) Get(ctx context.Context, id string) (domain.CreditCardRequest, error) {
	var c domain.CreditCardRequest
	err := get(ctx, r.db, &c, `SELECT `+creditCardColumns+` FROM credit_card_requests WHERE id = ?`, id)
	return c, err
}

func (r *CreditCardRepo) Search(ctx context.Context, q filter.Query, page domain.PageRequest) ([]domain.CreditCardRequest, int, error) {
	where, args, err := creditCardSearch.where(q, `credit_card_requests WHERE 1=1`)
	if err != nil {
		return nil, 0, err
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.CreditCardRequest
	err = sel(ctx, r.db, &out, `SELECT `+creditCardColumns+` FROM `+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, page.Size, page.Offset())...)
	return out, total, err
}

// Combined groups requests per bank.
func (r *CreditCardRepo) Combined(ctx context.Context, page domain.PageRequest) ([]domain.CombinedCreditCardRequest, int, error) {
	total, err := count(ctx, r.db, `(SELECT DISTINCT bank_id FROM credit_card_requests) banks`)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.CombinedCreditCardRequest
	err = sel(ctx, r.db, &out, `
  SELECT bank_id, COUNT(*) AS request_count, MAX(created_at) AS latest_at
  FROM credit_card_requests
  GROUP BY bank_id
  ORDER BY request_count DESC, bank_id
  LIMIT ? OFFSET ?`, page.Size, page.Offset())
	return out, total, err
}

func (r *CreditCardRepo) CountForBankSince(ctx context.Context, bankID string, since domain.Time) (int, error) {
	return count(ctx, r.db, `credit_card_requests WHERE bank_id = ? AND created_at >= ?`, bankID, since)
}

type DealRequestRepo struct{ db sqlx.ExtContext }

func NewDealRequestRepo(db sqlx.ExtContext) *DealRequestRepo { return &DealRequestRepo{db: db} }

const dealRequestColumns = `id, requester_id, category_id, brand_id, offer_type_id, target_user_type, target_owner_id, description, is_deleted, created_at, updated_at`

func (r *DealRequestRepo) Insert(ctx context.Context, d domain.DealRequest) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO request_a_deals(`+dealRequestColumns+`)
  VALUES(:id, :requester_id, :category_id, :brand_id, :offer_type_id, :target_user_type, :target_owner_id, :description, :is_deleted, :created_at, :updated_at)`, d)
	if err != nil {
		return fmt.Errorf("insert deal request: %w", err)
	}
	return nil
}

func (r *DealRequestRepo) Get(ctx context.Context, id string) (domain.DealRequest, error) {
	var d domain.DealRequest
	err := get(ctx, r.db, &d, `SELECT `+dealRequestColumns+` FROM request_a_deals WHERE id = ? AND is_deleted = FALSE`, id)
	return d, err
}

func (r *DealRequestRepo) MarkDeleted(ctx context.Context, id string, now domain.Time) error {
	_, err := exec(ctx, r.db, `UPDATE request_a_deals SET is_deleted = TRUE, updated_at = ? WHERE id = ?`, now, id)
	return err
}
