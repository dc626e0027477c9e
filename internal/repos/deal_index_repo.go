package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
	"dealcore/internal/filter"
)

// DealIndexRepo is the deal_search_index read model; row id equals deal id.
type DealIndexRepo struct{ db sqlx.ExtContext }

func NewDealIndexRepo(db sqlx.ExtContext) *DealIndexRepo { return &DealIndexRepo{db: db} }

const dealIndexColumns = `
    id, owner_kind, owner_id, owner_name, owner_image, owner_approval_status, owner_active,
    title, subtitle, price, deduction_type, deduction_amount, deduction_percentage,
    valid_from, expired_on, approval_status, comment, deal_code,
    category_ids, category_names, brand_ids, brand_names, is_deleted, created_at, updated_at`

var dealSearch = newSearchQueries(filter.DealSearch,
	[]filter.Dimension{filter.Category, filter.Merchant, filter.Brand, filter.Search},
	map[filter.Dimension]string{
		filter.Category: `category_ids ` + predContains,
		filter.Merchant: `owner_id = ?`,
		filter.Brand:    `brand_ids ` + predContains,
		filter.Search:   `LOWER(title || ' ' || subtitle || ' ' || owner_name) ` + likeSearch,
	})

func (r *DealIndexRepo) Insert(ctx context.Context, row domain.DealIndex) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO deal_search_index(`+dealIndexColumns+`)
  VALUES(:id, :owner_kind, :owner_id, :owner_name, :owner_image, :owner_approval_status, :owner_active,
    :title, :subtitle, :price, :deduction_type, :deduction_amount, :deduction_percentage,
    :valid_from, :expired_on, :approval_status, :comment, :deal_code,
    :category_ids, :category_names, :brand_ids, :brand_names, :is_deleted, :created_at, :updated_at)`, row)
	if err != nil {
		return fmt.Errorf("insert deal index %s: %w", row.ID, err)
	}
	return nil
}

// Save rewrites an existing row in place; the id never changes.
func (r *DealIndexRepo) Save(ctx context.Context, row domain.DealIndex) error {
	res, err := sqlx.NamedExecContext(ctx, r.db, `
  UPDATE deal_search_index SET
    owner_name = :owner_name, owner_image = :owner_image,
    owner_approval_status = :owner_approval_status, owner_active = :owner_active,
    title = :title, subtitle = :subtitle, price = :price, deduction_type = :deduction_type,
    deduction_amount = :deduction_amount, deduction_percentage = :deduction_percentage,
    valid_from = :valid_from, expired_on = :expired_on, approval_status = :approval_status,
    comment = :comment, category_ids = :category_ids, category_names = :category_names,
    brand_ids = :brand_ids, brand_names = :brand_names, is_deleted = :is_deleted, updated_at = :updated_at
  WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("save deal index %s: %w", row.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save deal index %s: row missing", row.ID)
	}
	return nil
}

func (r *DealIndexRepo) Get(ctx context.Context, id string) (domain.DealIndex, error) {
	var row domain.DealIndex
	err := get(ctx, r.db, &row, `SELECT `+dealIndexColumns+` FROM deal_search_index WHERE id = ?`, id)
	return row, err
}

func (r *DealIndexRepo) MarkDeleted(ctx context.Context, id string, now domain.Time) error {
	_, err := exec(ctx, r.db, `UPDATE deal_search_index SET is_deleted = TRUE, updated_at = ? WHERE id = ?`, now, id)
	return err
}

// Search returns approved, live, unexpired deals matching the resolved filter.
func (r *DealIndexRepo) Search(ctx context.Context, q filter.Query, now domain.Time, page domain.PageRequest) ([]domain.DealIndex, int, error) {
	where, args, err := dealSearch.where(q,
		`deal_search_index WHERE is_deleted = FALSE AND approval_status = 'APPROVED' AND expired_on > ?`, now)
	if err != nil {
		return nil, 0, err
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.DealIndex
	err = sel(ctx, r.db, &out, `SELECT `+dealIndexColumns+` FROM `+where+`
  ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, append(args, page.Size, page.Offset())...)
	return out, total, err
}

// ByIDs loads live rows for the given ids, keyed by id.
func (r *DealIndexRepo) ByIDs(ctx context.Context, ids []string) (map[string]domain.DealIndex, error) {
	out := map[string]domain.DealIndex{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := inQuery(r.db, `SELECT `+dealIndexColumns+` FROM deal_search_index WHERE is_deleted = FALSE AND id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.DealIndex
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// Purge removes rows that are deleted, or expired and already decided. Expired
// PENDING rows stay because approval still patches them.
func (r *DealIndexRepo) Purge(ctx context.Context, now domain.Time) (int64, error) {
	res, err := exec(ctx, r.db, `
  DELETE FROM deal_search_index
  WHERE is_deleted = TRUE OR (expired_on <= ? AND approval_status <> 'PENDING')`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DealIndexRepo) PatchOwner(ctx context.Context, ownerID string, d domain.OwnerDisplay, now domain.Time) (int64, error) {
	return patchOwnerDisplay(ctx, r.db, "deal_search_index", ownerID, d, now)
}
