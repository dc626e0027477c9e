package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

type DealRepo struct{ db sqlx.ExtContext }

func NewDealRepo(db sqlx.ExtContext) *DealRepo { return &DealRepo{db: db} }

const dealColumns = `
    id, owner_kind, owner_id, title, subtitle, description, terms, images_json,
    price, deduction_type, deduction_amount, deduction_percentage, valid_from, expired_on,
    approval_status, comment, is_deleted, deal_code, offer_type_id, created_by, created_at, updated_at`

func (r *DealRepo) Insert(ctx context.Context, d *domain.Deal) error {
	images, err := json.Marshal(d.Images)
	if err != nil {
		return err
	}
	d.ImagesJSON = string(images)
	_, err = sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO deals(`+dealColumns+`)
  VALUES(:id, :owner_kind, :owner_id, :title, :subtitle, :description, :terms, :images_json,
    :price, :deduction_type, :deduction_amount, :deduction_percentage, :valid_from, :expired_on,
    :approval_status, :comment, :is_deleted, :deal_code, :offer_type_id, :created_by, :created_at, :updated_at)`, d)
	if err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	return r.replaceLinks(ctx, d)
}

// UpdateContent rewrites the editable fields and link sets of a deal.
func (r *DealRepo) UpdateContent(ctx context.Context, d *domain.Deal) error {
	images, err := json.Marshal(d.Images)
	if err != nil {
		return err
	}
	d.ImagesJSON = string(images)
	_, err = sqlx.NamedExecContext(ctx, r.db, `
  UPDATE deals SET
    title = :title, subtitle = :subtitle, description = :description, terms = :terms,
    images_json = :images_json, price = :price, deduction_type = :deduction_type,
    deduction_amount = :deduction_amount, deduction_percentage = :deduction_percentage,
    valid_from = :valid_from, expired_on = :expired_on, offer_type_id = :offer_type_id,
    updated_at = :updated_at
  WHERE id = :id`, d)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	return r.replaceLinks(ctx, d)
}

func (r *DealRepo) replaceLinks(ctx context.Context, d *domain.Deal) error {
	if _, err := exec(ctx, r.db, `DELETE FROM deal_categories WHERE deal_id = ?`, d.ID); err != nil {
		return err
	}
	if _, err := exec(ctx, r.db, `DELETE FROM deal_brands WHERE deal_id = ?`, d.ID); err != nil {
		return err
	}
	for _, c := range d.CategoryIDs {
		if _, err := exec(ctx, r.db, `INSERT INTO deal_categories(deal_id, category_id) VALUES(?,?)`, d.ID, c); err != nil {
			return fmt.Errorf("link category %s: %w", c, err)
		}
	}
	for _, b := range d.BrandIDs {
		if _, err := exec(ctx, r.db, `INSERT INTO deal_brands(deal_id, brand_id) VALUES(?,?)`, d.ID, b); err != nil {
			return fmt.Errorf("link brand %s: %w", b, err)
		}
	}
	return nil
}

// SetApproval decides a PENDING deal. A deal that another decision already
// moved out of PENDING fails with ErrUnsupportedApproval, so the caller's
// transaction rolls back instead of overwriting the index.
func (r *DealRepo) SetApproval(ctx context.Context, id string, status domain.ApprovalStatus, comment string, now domain.Time) error {
	res, err := exec(ctx, r.db, `
  UPDATE deals SET approval_status = ?, comment = ?, updated_at = ?
  WHERE id = ? AND approval_status = 'PENDING' AND is_deleted = FALSE`, status, comment, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUnsupportedApproval.With("deal %s is no longer PENDING", id)
	}
	return nil
}

func (r *DealRepo) MarkDeleted(ctx context.Context, id string, now domain.Time) error {
	_, err := exec(ctx, r.db, `UPDATE deals SET is_deleted = TRUE, updated_at = ? WHERE id = ?`, now, id)
	return err
}

// Get returns a live (not deleted) deal with its category and brand ids.
func (r *DealRepo) Get(ctx context.Context, id string) (domain.Deal, error) {
	var d domain.Deal
	if err := get(ctx, r.db, &d, `SELECT `+dealColumns+` FROM deals WHERE id = ? AND is_deleted = FALSE`, id); err != nil {
		return d, err
	}
	if err := r.loadLinks(ctx, &d); err != nil {
		return d, err
	}
	return d, nil
}

func (r *DealRepo) loadLinks(ctx context.Context, d *domain.Deal) error {
	if d.ImagesJSON != "" {
		_ = json.Unmarshal([]byte(d.ImagesJSON), &d.Images)
	}
	if d.Images == nil {
		d.Images = []string{}
	}
	d.CategoryIDs = []string{}
	if err := sel(ctx, r.db, &d.CategoryIDs, `SELECT category_id FROM deal_categories WHERE deal_id = ? ORDER BY category_id`, d.ID); err != nil {
		return err
	}
	d.BrandIDs = []string{}
	return sel(ctx, r.db, &d.BrandIDs, `SELECT brand_id FROM deal_brands WHERE deal_id = ? ORDER BY brand_id`, d.ID)
}

// ListByOwner pages through an owner's live deals straight from the primary table.
func (r *DealRepo) ListByOwner(ctx context.Context, kind domain.OwnerKind, ownerID string, page domain.PageRequest) ([]domain.Deal, int, error) {
	const where = `deals WHERE owner_kind = ? AND owner_id = ? AND is_deleted = FALSE`
	total, err := count(ctx, r.db, where, kind, ownerID)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.Deal
	err = sel(ctx, r.db, &out, `SELECT `+dealColumns+` FROM `+where+`
  ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, kind, ownerID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadLinks(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// SampleValid draws up to limit random approved, live, currently valid deals.
func (r *DealRepo) SampleValid(ctx context.Context, kind domain.OwnerKind, now domain.Time, limit int) ([]domain.Deal, error) {
	var out []domain.Deal
	err := sel(ctx, r.db, &out, `SELECT `+dealColumns+` FROM deals
  WHERE owner_kind = ? AND approval_status = 'APPROVED' AND is_deleted = FALSE
    AND valid_from <= ? AND expired_on > ?
  ORDER BY RANDOM() LIMIT ?`, kind, now, now, limit)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadLinks(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LiveApprovedByOwner returns every approved, live, unexpired deal of one owner.
func (r *DealRepo) LiveApprovedByOwner(ctx context.Context, kind domain.OwnerKind, ownerID string, now domain.Time) ([]domain.Deal, error) {
	var out []domain.Deal
	err := sel(ctx, r.db, &out, `SELECT `+dealColumns+` FROM deals
  WHERE owner_kind = ? AND owner_id = ? AND approval_status = 'APPROVED' AND is_deleted = FALSE AND expired_on > ?
  ORDER BY created_at`, kind, ownerID, now)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadLinks(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type StatusCount struct {
	Status domain.ApprovalStatus `db:"approval_status" json:"status"`
	Count  int                   `db:"n" json:"count"`
}

// CountByStatus summarises an owner's live deals; empty ownerID counts all owners of kind.
func (r *DealRepo) CountByStatus(ctx context.Context, kind domain.OwnerKind, ownerID string) ([]StatusCount, error) {
	q := `SELECT approval_status, COUNT(*) AS n FROM deals WHERE owner_kind = ? AND is_deleted = FALSE`
	args := []any{kind}
	if ownerID != "" {
		q += ` AND owner_id = ?`
		args = append(args, ownerID)
	}
	var out []StatusCount
	err := sel(ctx, r.db, &out, q+` GROUP BY approval_status ORDER BY approval_status`, args...)
	return out, err
}

// CountCreatedSince counts live deals of kind created at or after since.
func (r *DealRepo) CountCreatedSince(ctx context.Context, kind domain.OwnerKind, ownerID string, since domain.Time) (int, error) {
	if ownerID == "" {
		return count(ctx, r.db, `deals WHERE owner_kind = ? AND is_deleted = FALSE AND created_at >= ?`, kind, since)
	}
	return count(ctx, r.db, `deals WHERE owner_kind = ? AND owner_id = ? AND is_deleted = FALSE AND created_at >= ?`, kind, ownerID, since)
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
