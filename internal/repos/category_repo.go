package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryColumns = `id, name, description, type, expiry_date, is_popular, created_at, updated_at`

func (r *CategoryRepo) Insert(ctx context.Context, c domain.Category) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO categories(`+categoryColumns+`)
  VALUES(:id, :name, :description, :type, :expiry_date, :is_popular, :created_at, :updated_at)`, c)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return r.SetRelated(ctx, c.ID, c.RelatedIDs)
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  UPDATE categories SET
    name = :name, description = :description, type = :type, expiry_date = :expiry_date,
    is_popular = :is_popular, updated_at = :updated_at
  WHERE id = :id`, c)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return r.SetRelated(ctx, c.ID, c.RelatedIDs)
}

// SetRelated replaces id's related set. Edges are stored in both directions.
func (r *CategoryRepo) SetRelated(ctx context.Context, id string, related []string) error {
	if _, err := exec(ctx, r.db, `DELETE FROM category_relations WHERE category_id = ? OR related_id = ?`, id, id); err != nil {
		return err
	}
	for _, rel := range related {
		if _, err := exec(ctx, r.db, `INSERT INTO category_relations(category_id, related_id) VALUES(?,?),(?,?)`, id, rel, rel, id); err != nil {
			return fmt.Errorf("relate %s-%s: %w", id, rel, err)
		}
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	if err := get(ctx, r.db, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id); err != nil {
		return c, err
	}
	c.RelatedIDs = []string{}
	err := sel(ctx, r.db, &c.RelatedIDs, `SELECT related_id FROM category_relations WHERE category_id = ? ORDER BY related_id`, id)
	return c, err
}

// List pages categories, optionally filtered by a name substring.
func (r *CategoryRepo) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Category, int, error) {
	where, args := `categories WHERE 1=1`, []any{}
	if search != "" {
		where += ` AND LOWER(name) ` + likeSearch
		args = append(args, search)
	}
	total, err := count(ctx, r.db, where, args...)
	if err != nil {
		return nil, 0, err
	}
	var out []domain.Category
	err = sel(ctx, r.db, &out, `SELECT `+categoryColumns+` FROM `+where+` ORDER BY name LIMIT ? OFFSET ?`,
		append(args, page.Size, page.Offset())...)
	return out, total, err
}

// Popular lists popular categories that have not expired.
func (r *CategoryRepo) Popular(ctx context.Context, now domain.Time) ([]domain.Category, error) {
	var out []domain.Category
	err := sel(ctx, r.db, &out, `SELECT `+categoryColumns+` FROM categories
  WHERE is_popular = TRUE AND (expiry_date IS NULL OR expiry_date > ?)
  ORDER BY name`, now)
	return out, err
}

// Names maps ids to names; unknown ids are absent.
func (r *CategoryRepo) Names(ctx context.Context, ids []string) (map[string]string, error) {
	return names(ctx, r.db, "categories", ids)
}

func (r *CategoryRepo) NameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	n, err := count(ctx, r.db, `categories WHERE LOWER(name) = LOWER(?) AND id <> ?`, name, exceptID)
	return n > 0, err
}

// IsRelatedTarget reports whether another category lists id as related.
func (r *CategoryRepo) IsRelatedTarget(ctx context.Context, id string) (bool, error) {
	n, err := count(ctx, r.db, `category_relations WHERE related_id = ?`, id)
	return n > 0, err
}

// UsedByMapping reports whether any CategoryBrandMerchant row references id.
func (r *CategoryRepo) UsedByMapping(ctx context.Context, id string) (bool, error) {
	n, err := count(ctx, r.db, `cbm_categories WHERE category_id = ?`, id)
	return n > 0, err
}

type idName struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func names(ctx context.Context, q sqlx.ExtContext, table string, ids []string) (map[string]string, error) {
	out := map[string]string{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := inQuery(q, `SELECT id, name FROM `+table+` WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []idName
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.Name
	}
	return out, nil
}
