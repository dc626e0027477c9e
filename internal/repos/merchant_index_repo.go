package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
	"dealcore/internal/filter"
)

// MerchantIndexRepo is the category_brand_merchant_index read model; row id
// equals the CategoryBrandMerchant id.
type MerchantIndexRepo struct{ db sqlx.ExtContext }

func NewMerchantIndexRepo(db sqlx.ExtContext) *MerchantIndexRepo { return &MerchantIndexRepo{db: db} }

const merchantIndexColumns = `
    id, owner_id, owner_kind, owner_name, owner_image, owner_approval_status, owner_active,
    category_ids, category_names, brand_ids, brand_names, updated_at`

var merchantSearch = newSearchQueries(filter.MerchantIndex,
	[]filter.Dimension{filter.Category, filter.Brand, filter.Search},
	map[filter.Dimension]string{
		filter.Category: `category_ids ` + predContains,
		filter.Brand:    `brand_ids ` + predContains,
		filter.Search:   `LOWER(owner_name) ` + likeSearch,
	})

func (r *MerchantIndexRepo) Upsert(ctx context.Context, row domain.MerchantIndex) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO category_brand_merchant_index(`+merchantIndexColumns+`)
  VALUES(:id, :owner_id, :owner_kind, :owner_name, :owner_image, :owner_approval_status, :owner_active,
    :category_ids, :category_names, :brand_ids, :brand_names, :updated_at)
  ON CONFLICT(id) DO UPDATE SET
    owner_name = excluded.owner_name, owner_image = excluded.owner_image,
    owner_approval_status = excluded.owner_approval_status, owner_active = excluded.owner_active,
    category_ids = excluded.category_ids, category_names = excluded.category_names,
    brand_ids = excluded.brand_ids, brand_names = excluded.brand_names, updated_at = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert merchant index %s: %w", row.ID, err)
	}
	return nil
}

func (r *MerchantIndexRepo) GetByOwner(ctx context.Context, ownerID string) (domain.MerchantIndex, error) {
	var row domain.MerchantIndex
	err := get(ctx, r.db, &row, `SELECT `+merchantIndexColumns+` FROM category_brand_merchant_index WHERE owner_id = ?`, ownerID)
	return row, err
}

func (r *MerchantIndexRepo) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db, `DELETE FROM category_brand_merchant_index WHERE id = ?`, id)
	return err
}

func (r *MerchantIndexRepo) Search(ctx context.Context, q filter.Query, page domain.PageRequest) ([]domain.MerchantIndex, int, error) {
	where, args, err := merchantSearch.where(q, `category_brand_merchant_index WHERE owner_active = TRUE`)
	if err != nil {
		return nil, 0, err
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.MerchantIndex
	err = sel(ctx, r.db, &out, `SELECT `+merchantIndexColumns+` FROM `+where+`
  ORDER BY owner_name, id LIMIT ? OFFSET ?`, append(args, page.Size, page.Offset())...)
	return out, total, err
}

// Page returns a stable slice of every row, for full scans.
func (r *MerchantIndexRepo) Page(ctx context.Context, offset, limit int) ([]domain.MerchantIndex, error) {
	var out []domain.MerchantIndex
	err := sel(ctx, r.db, &out, `SELECT `+merchantIndexColumns+` FROM category_brand_merchant_index
  ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	return out, err
}

func (r *MerchantIndexRepo) PatchOwner(ctx context.Context, ownerID string, d domain.OwnerDisplay, now domain.Time) (int64, error) {
	return patchOwnerDisplay(ctx, r.db, "category_brand_merchant_index", ownerID, d, now)
}
