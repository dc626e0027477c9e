package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcore/internal/domain"
)

func TestCategoryDeleteGuardedByRelation(t *testing.T) {
	e := newEnv(t)
	a := e.category(t, "A")
	b, err := e.cats.Create(e.ctx, CategoryInput{Name: "B", RelatedIDs: []string{a.ID}})
	require.NoError(t, err)

	// relations are symmetric
	got, err := e.cats.Get(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got.RelatedIDs)

	assert.ErrorIs(t, e.cats.Delete(e.ctx, a.ID), domain.ErrCannotDelete)
	_, err = e.cats.Get(e.ctx, a.ID)
	require.NoError(t, err)

	_, err = e.cats.Update(e.ctx, b.ID, CategoryInput{Name: "B"})
	require.NoError(t, err)
	require.NoError(t, e.cats.Delete(e.ctx, a.ID))

	_, err = e.cats.Get(e.ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestCategoryDeleteGuardedByMapping(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	_, err := e.mappings.Create(e.ctx, e.caller("ADMIN-1"), MappingInput{
		MerchantID: "M-1", OwnerKind: domain.OwnerMerchant, CategoryIDs: []string{cat.ID},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.cats.Delete(e.ctx, cat.ID), domain.ErrCannotDelete)

	require.NoError(t, e.mappings.Delete(e.ctx, "M-1"))
	assert.NoError(t, e.cats.Delete(e.ctx, cat.ID))
}

func TestCategoryValidation(t *testing.T) {
	e := newEnv(t)
	food := e.category(t, "Food")

	_, err := e.cats.Create(e.ctx, CategoryInput{Name: "Food"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = e.cats.Update(e.ctx, food.ID, CategoryInput{Name: "Food", RelatedIDs: []string{food.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = e.cats.Create(e.ctx, CategoryInput{Name: "Eid", RelatedIDs: []string{"CAT-missing"}})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = e.cats.Create(e.ctx, CategoryInput{Name: "Eid", Type: domain.CategorySeasonal})
	assert.ErrorIs(t, err, domain.ErrInvalidDates)

	// renaming to its own name is not a clash
	_, err = e.cats.Update(e.ctx, food.ID, CategoryInput{Name: "Food", Description: "Restaurants"})
	assert.NoError(t, err)
}

func TestPopularCategoriesDropExpiredSeasonal(t *testing.T) {
	e := newEnv(t)
	expiry := e.clock.Now().Add(48 * time.Hour)
	_, err := e.cats.Create(e.ctx, CategoryInput{Name: "Eid", Type: domain.CategorySeasonal, ExpiryDate: &expiry, IsPopular: true})
	require.NoError(t, err)
	_, err = e.cats.Create(e.ctx, CategoryInput{Name: "Food", IsPopular: true})
	require.NoError(t, err)
	e.category(t, "Travel")

	popular, err := e.cats.Popular(e.ctx)
	require.NoError(t, err)
	assert.Len(t, popular, 2)

	e.clock.Advance(72 * time.Hour)
	popular, err = e.cats.Popular(e.ctx)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "Food", popular[0].Name)
}

func TestBrandDeleteGuardedByMapping(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	br := e.brand(t, "Coke")
	_, err := e.mappings.Create(e.ctx, e.caller("ADMIN-1"), MappingInput{
		MerchantID: "M-1", OwnerKind: domain.OwnerMerchant, CategoryIDs: []string{cat.ID}, BrandIDs: []string{br.ID},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.brands.Delete(e.ctx, br.ID), domain.ErrCannotDelete)

	_, err = e.mappings.Update(e.ctx, e.caller("ADMIN-1"), "M-1", MappingInput{CategoryIDs: []string{cat.ID}})
	require.NoError(t, err)
	assert.NoError(t, e.brands.Delete(e.ctx, br.ID))

	_, err = e.brands.Create(e.ctx, BrandInput{Name: "Pepsi"})
	require.NoError(t, err)
	_, err = e.brands.Create(e.ctx, BrandInput{Name: "Pepsi"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestOfferTypesSeededAndUnique(t *testing.T) {
	e := newEnv(t)
	ots := NewOfferTypeService(e.store, e.clock)

	list, err := ots.List(e.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	_, err = ots.Create(e.ctx, "Cashback", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = ots.Create(e.ctx, "Free delivery", "orders over 500")
	require.NoError(t, err)
}

func TestMappingSearchByCategoryOrBrand(t *testing.T) {
	e := newEnv(t)
	food := e.category(t, "Food")
	coke := e.brand(t, "Coke")
	_, err := e.mappings.Create(e.ctx, e.caller("ADMIN-1"), MappingInput{
		MerchantID: "M-1", OwnerKind: domain.OwnerMerchant, CategoryIDs: []string{food.ID}, BrandIDs: []string{coke.ID},
	})
	require.NoError(t, err)
	_, err = e.mappings.Create(e.ctx, e.caller("ADMIN-1"), MappingInput{
		MerchantID: "M-2", OwnerKind: domain.OwnerMerchant, CategoryIDs: []string{food.ID},
	})
	require.NoError(t, err)

	_, err = e.mappings.Create(e.ctx, e.caller("ADMIN-1"), MappingInput{
		MerchantID: "M-2", OwnerKind: domain.OwnerMerchant, CategoryIDs: []string{food.ID},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	p, err := e.mappings.Search(e.ctx, food.ID, "ALL", "", firstPage)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalElements)

	p, err = e.mappings.Search(e.ctx, "ALL", coke.ID, "", firstPage)
	require.NoError(t, err)
	require.Len(t, p.Content, 1)
	assert.Equal(t, "Pizza Palace", p.Content[0].Name)

	p, err = e.mappings.Search(e.ctx, food.ID, "ALL", "burger", firstPage)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalElements)

	_, err = e.mappings.Get(e.ctx, "M-9")
	assert.ErrorIs(t, err, domain.ErrInvalidMapping)
}
