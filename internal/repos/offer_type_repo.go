package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/domain"
)

type OfferTypeRepo struct{ db sqlx.ExtContext }

func NewOfferTypeRepo(db sqlx.ExtContext) *OfferTypeRepo { return &OfferTypeRepo{db: db} }

func (r *OfferTypeRepo) Insert(ctx context.Context, o domain.OfferType) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO offer_types(id, name, description, created_at)
  VALUES(:id, :name, :description, :created_at)`, o)
	return err
}

func (r *OfferTypeRepo) Get(ctx context.Context, id string) (domain.OfferType, error) {
	var o domain.OfferType
	err := get(ctx, r.db, &o, `SELECT id, name, description, created_at FROM offer_types WHERE id = ?`, id)
	return o, err
}

func (r *OfferTypeRepo) List(ctx context.Context) ([]domain.OfferType, error) {
	var out []domain.OfferType
	err := sel(ctx, r.db, &out, `SELECT id, name, description, created_at FROM offer_types ORDER BY name`)
	return out, err
}

func (r *OfferTypeRepo) NameTaken(ctx context.Context, name string) (bool, error) {
	n, err := count(ctx, r.db, `offer_types WHERE LOWER(name) = LOWER(?)`, name)
	return n > 0, err
}
