package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

// BankMerchantIndexRepo is keyed by bank id and aggregates the bank's deals.
type BankMerchantIndexRepo struct{ db sqlx.ExtContext }

func NewBankMerchantIndexRepo(db sqlx.ExtContext) *BankMerchantIndexRepo {
	return &BankMerchantIndexRepo{db: db}
}

const bankIndexColumns = `
    id, owner_id, owner_name, owner_image, owner_approval_status, owner_active,
    deal_count, category_ids, category_names, updated_at`

func (r *BankMerchantIndexRepo) Upsert(ctx context.Context, row domain.BankMerchantIndex) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO bank_merchant_search_index(`+bankIndexColumns+`)
  VALUES(:id, :owner_id, :owner_name, :owner_image, :owner_approval_status, :owner_active,
    :deal_count, :category_ids, :category_names, :updated_at)
  ON CONFLICT(id) DO UPDATE SET
    owner_name = excluded.owner_name, owner_image = excluded.owner_image,
    owner_approval_status = excluded.owner_approval_status, owner_active = excluded.owner_active,
    deal_count = excluded.deal_count, category_ids = excluded.category_ids,
    category_names = excluded.category_names, updated_at = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert bank index %s: %w", row.ID, err)
	}
	return nil
}

func (r *BankMerchantIndexRepo) Get(ctx context.Context, bankID string) (domain.BankMerchantIndex, error) {
	var row domain.BankMerchantIndex
	err := get(ctx, r.db, &row, `SELECT `+bankIndexColumns+` FROM bank_merchant_search_index WHERE id = ?`, bankID)
	return row, err
}

func (r *BankMerchantIndexRepo) Delete(ctx context.Context, bankID string) error {
	_, err := exec(ctx, r.db, `DELETE FROM bank_merchant_search_index WHERE id = ?`, bankID)
	return err
}

// IDs returns every bank that currently has an aggregate row.
func (r *BankMerchantIndexRepo) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := sel(ctx, r.db, &ids, `SELECT id FROM bank_merchant_search_index ORDER BY id`)
	return ids, err
}

// List pages banks with live deals, optionally filtered by bank name.
func (r *BankMerchantIndexRepo) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.BankMerchantIndex, int, error) {
	where, args := `bank_merchant_search_index WHERE owner_active = TRUE`, []any{}
	if search != "" {
		where += ` AND LOWER(owner_name) ` + likeSearch
		args = append(args, search)
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.BankMerchantIndex
	err = sel(ctx, r.db, &out, `SELECT `+bankIndexColumns+` FROM `+where+`
  ORDER BY deal_count DESC, owner_name, id LIMIT ? OFFSET ?`, append(args, page.Size, page.Offset())...)
	return out, total, err
}

func (r *BankMerchantIndexRepo) PatchOwner(ctx context.Context, ownerID string, d domain.OwnerDisplay, now domain.Time) (int64, error) {
	return patchOwnerDisplay(ctx, r.db, "bank_merchant_search_index", ownerID, d, now)
}
