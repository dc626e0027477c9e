package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

type BrandRepo struct{ db sqlx.ExtContext }

func NewBrandRepo(db sqlx.ExtContext) *BrandRepo { return &BrandRepo{db: db} }

const brandColumns = `id, name, description, image, created_at, updated_at`

func (r *BrandRepo) Insert(ctx context.Context, b domain.Brand) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO brands(`+brandColumns+`)
  VALUES(:id, :name, :description, :image, :created_at, :updated_at)`, b)
	if err != nil {
		return fmt.Errorf("insert brand: %w", err)
	}
	return nil
}

func (r *BrandRepo) Update(ctx context.Context, b domain.Brand) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  UPDATE brands SET name = :name, description = :description, image = :image, updated_at = :updated_at
  WHERE id = :id`, b)
	return err
}

func (r *BrandRepo) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db, `DELETE FROM brands WHERE id = ?`, id)
	return err
}

func (r *BrandRepo) Get(ctx context.Context, id string) (domain.Brand, error) {
	var b domain.Brand
	err := get(ctx, r.db, &b, `SELECT `+brandColumns+` FROM brands WHERE id = ?`, id)
	return b, err
}

func (r *BrandRepo) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Brand, int, error) {
	where, args := `brands WHERE 1=1`, []any{}
	if search != "" {
		where += ` AND LOWER(name) ` + likeSearch
		args = append(args, search)
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.Brand
	err = sel(ctx, r.db, &out, `SELECT `+brandColumns+` FROM `+where+` ORDER BY name LIMIT ? OFFSET ?`,
		append(args, page.Size, page.Offset())...)
	return out, total, err
}

func (r *BrandRepo) Names(ctx context.Context, ids []string) (map[string]string, error) {
	return names(ctx, r.db, "brands", ids)
}

func (r *BrandRepo) NameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	n, err := count(ctx, r.db, `brands WHERE LOWER(name) = LOWER(?) AND id <> ?`, name, exceptID)
	return n > 0, err
}

func (r *BrandRepo) UsedByMapping(ctx context.Context, id string) (bool, error) {
	n, err := count(ctx, r.db, `cbm_brands WHERE brand_id = ?`, id)
	return n > 0, err
}
