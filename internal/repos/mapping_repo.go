package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

// MappingRepo persists CategoryBrandMerchant rows and their link tables.
type MappingRepo struct{ db sqlx.ExtContext }

func NewMappingRepo(db sqlx.ExtContext) *MappingRepo { return &MappingRepo{db: db} }

const mappingColumns = `id, merchant_id, owner_kind, merchant_active, merchant_approval_status, created_by, created_at, updated_at`

func (r *MappingRepo) Insert(ctx context.Context, m domain.MerchantMapping) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO category_brand_merchants(`+mappingColumns+`)
  VALUES(:id, :merchant_id, :owner_kind, :merchant_active, :merchant_approval_status, :created_by, :created_at, :updated_at)`, m)
	if err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	return r.replaceLinks(ctx, m)
}

func (r *MappingRepo) Update(ctx context.Context, m domain.MerchantMapping) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  UPDATE category_brand_merchants SET
    merchant_active = :merchant_active, merchant_approval_status = :merchant_approval_status, updated_at = :updated_at
  WHERE id = :id`, m)
	if err != nil {
		return fmt.Errorf("update mapping: %w", err)
	}
	return r.replaceLinks(ctx, m)
}

func (r *MappingRepo) replaceLinks(ctx context.Context, m domain.MerchantMapping) error {
	if _, err := exec(ctx, r.db, `DELETE FROM cbm_categories WHERE cbm_id = ?`, m.ID); err != nil {
		return err
	}
	if _, err := exec(ctx, r.db, `DELETE FROM cbm_brands WHERE cbm_id = ?`, m.ID); err != nil {
		return err
	}
	for _, c := range m.CategoryIDs {
		if _, err := exec(ctx, r.db, `INSERT INTO cbm_categories(cbm_id, category_id) VALUES(?,?)`, m.ID, c); err != nil {
			return err
		}
	}
	for _, b := range m.BrandIDs {
		if _, err := exec(ctx, r.db, `INSERT INTO cbm_brands(cbm_id, brand_id) VALUES(?,?)`, m.ID, b); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSnapshot refreshes the cached merchant status on the primary row.
func (r *MappingRepo) UpdateSnapshot(ctx context.Context, merchantID string, active bool, approval string, now domain.Time) error {
	_, err := exec(ctx, r.db, `
  UPDATE category_brand_merchants SET merchant_active = ?, merchant_approval_status = ?, updated_at = ?
  WHERE merchant_id = ?`, active, approval, now, merchantID)
	return err
}

func (r *MappingRepo) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db, `DELETE FROM category_brand_merchants WHERE id = ?`, id)
	return err
}

func (r *MappingRepo) GetByMerchant(ctx context.Context, merchantID string) (domain.MerchantMapping, error) {
	var m domain.MerchantMapping
	if err := get(ctx, r.db, &m, `SELECT `+mappingColumns+` FROM category_brand_merchants WHERE merchant_id = ?`, merchantID); err != nil {
		return m, err
	}
	m.CategoryIDs, m.BrandIDs = []string{}, []string{}
	if err := sel(ctx, r.db, &m.CategoryIDs, `SELECT category_id FROM cbm_categories WHERE cbm_id = ? ORDER BY category_id`, m.ID); err != nil {
		return m, err
	}
	err := sel(ctx, r.db, &m.BrandIDs, `SELECT brand_id FROM cbm_brands WHERE cbm_id = ? ORDER BY brand_id`, m.ID)
	return m, err
}
