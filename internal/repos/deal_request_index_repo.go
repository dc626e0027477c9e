package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
	"dealcore/internal/filter"
)

// DealRequestIndexRepo is the request_a_deal_search_index read model; row id
// equals the request id.
type DealRequestIndexRepo struct{ db sqlx.ExtContext }

func NewDealRequestIndexRepo(db sqlx.ExtContext) *DealRequestIndexRepo {
	return &DealRequestIndexRepo{db: db}
}

const requestIndexColumns = `
    id, requester_id, requester_name, category_id, category_name, brand_id, brand_name,
    offer_type_id, offer_type_name, target_user_type, owner_id, owner_name, owner_image,
    owner_approval_status, owner_active, description, is_deleted, created_at, updated_at`

var requestSearch = newSearchQueries(filter.DealRequests,
	[]filter.Dimension{filter.Category, filter.Brand, filter.Search},
	map[filter.Dimension]string{
		filter.Category: `category_id = ?`,
		filter.Brand:    `brand_id = ?`,
		filter.Search:   `LOWER(description || ' ' || requester_name || ' ' || category_name) ` + likeSearch,
	})

func (r *DealRequestIndexRepo) Insert(ctx context.Context, row domain.DealRequestIndex) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO request_a_deal_search_index(`+requestIndexColumns+`)
  VALUES(:id, :requester_id, :requester_name, :category_id, :category_name, :brand_id, :brand_name,
    :offer_type_id, :offer_type_name, :target_user_type, :owner_id, :owner_name, :owner_image,
    :owner_approval_status, :owner_active, :description, :is_deleted, :created_at, :updated_at)`, row)
	if err != nil {
		return fmt.Errorf("insert request index %s: %w", row.ID, err)
	}
	return nil
}

func (r *DealRequestIndexRepo) MarkDeleted(ctx context.Context, id string, now domain.Time) error {
	_, err := exec(ctx, r.db, `UPDATE request_a_deal_search_index SET is_deleted = TRUE, updated_at = ? WHERE id = ?`, now, id)
	return err
}

// Search pages live requests. ownerID, when set, scopes to one target merchant/bank.
func (r *DealRequestIndexRepo) Search(ctx context.Context, q filter.Query, ownerID string, page domain.PageRequest) ([]domain.DealRequestIndex, int, error) {
	base, baseArgs := `request_a_deal_search_index WHERE is_deleted = FALSE`, []any{}
	if ownerID != "" {
		base += ` AND owner_id = ?`
		baseArgs = append(baseArgs, ownerID)
	}
	where, args, err := requestSearch.where(q, base, baseArgs...)
	if err != nil {
		return nil, 0, err
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.DealRequestIndex
	err = sel(ctx, r.db, &out, `SELECT `+requestIndexColumns+` FROM `+where+`
  ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, append(args, page.Size, page.Offset())...)
	return out, total, err
}

// Combined groups live requests by target owner.
func (r *DealRequestIndexRepo) Combined(ctx context.Context, kind domain.OwnerKind, page domain.PageRequest) ([]domain.CombinedDealRequest, int, error) {
	total, err := count(ctx, r.db, `(SELECT DISTINCT owner_id FROM request_a_deal_search_index
  WHERE is_deleted = FALSE AND target_user_type = ?) owners`, kind)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.CombinedDealRequest
	err = sel(ctx, r.db, &out, `
  SELECT owner_id, target_user_type, MAX(owner_name) AS owner_name,
         COUNT(*) AS request_count, MAX(created_at) AS latest_at
  FROM request_a_deal_search_index
  WHERE is_deleted = FALSE AND target_user_type = ?
  GROUP BY owner_id, target_user_type
  ORDER BY request_count DESC, owner_id
  LIMIT ? OFFSET ?`, kind, page.Size, page.Offset())
	return out, total, err
}

func (r *DealRequestIndexRepo) CountForOwnerSince(ctx context.Context, ownerID string, since domain.Time) (int, error) {
	return count(ctx, r.db, `request_a_deal_search_index WHERE is_deleted = FALSE AND owner_id = ? AND created_at >= ?`, ownerID, since)
}

func (r *DealRequestIndexRepo) PatchOwner(ctx context.Context, ownerID string, d domain.OwnerDisplay, now domain.Time) (int64, error) {
	return patchOwnerDisplay(ctx, r.db, "request_a_deal_search_index", ownerID, d, now)
}
