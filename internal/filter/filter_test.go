package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfTreatsAllAndBlankAsUnset(t *testing.T) {
	for _, raw := range []string{"", "ALL", "  ALL "} {
		assert.True(t, Of(raw).IsAll(), "raw=%q", raw)
	}
	v, ok := Of(" CAT-1 ").Get()
	assert.True(t, ok)
	assert.Equal(t, "CAT-1", v)

	// only the upper-case literal is the sentinel
	v, ok = Of("all").Get()
	assert.True(t, ok)
	assert.Equal(t, "all", v)
}

func TestResolveCategoryOnlySelectsCategoryVariant(t *testing.T) {
	q, err := DealSearch.Resolve(map[Dimension]Value{
		Category: Of("CAT-1"),
		Merchant: Of("ALL"),
		Brand:    Of("ALL"),
		Search:   Of(""),
	})
	require.NoError(t, err)
	assert.Equal(t, V(Category), q.Variant)
	assert.Equal(t, "CATEGORY_ALL_ALL_ALL", q.Key)
	assert.Equal(t, []any{"CAT-1"}, q.Args(Category, Merchant, Brand, Search))
}

func TestResolveAllUnsetIsUnfiltered(t *testing.T) {
	q, err := DealsOfTheDay.Resolve(map[Dimension]Value{Category: Of("ALL"), Merchant: Of("ALL"), Search: Of("")})
	require.NoError(t, err)
	assert.Equal(t, Unfiltered, q.Variant)
	assert.Empty(t, q.Args(Category, Merchant, Search))
}

func TestResolveKeepsFamilyArgOrder(t *testing.T) {
	q, err := DealSearch.Resolve(map[Dimension]Value{
		Search:   Some("pizza"),
		Brand:    Some("BR-1"),
		Category: Some("CAT-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CATEGORY_ALL_BRAND_SEARCH", q.Key)
	assert.Equal(t, []any{"CAT-1", "BR-1", "pizza"}, q.Args(Category, Merchant, Brand, Search))
}

func TestMerchantIndexRejectsCategoryAndBrandTogether(t *testing.T) {
	_, err := MerchantIndex.Resolve(map[Dimension]Value{Category: Some("CAT-1"), Brand: Some("BR-1")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnanticipated))

	_, err = MerchantIndex.Resolve(map[Dimension]Value{Category: Some("CAT-1"), Brand: Of("ALL"), Search: Some("x")})
	assert.NoError(t, err)
}

func TestResolveRejectsForeignDimension(t *testing.T) {
	_, err := CreditCardRequests.Resolve(map[Dimension]Value{Merchant: Some("M-1")})
	assert.ErrorIs(t, err, ErrUnanticipated)
}

func TestFamiliesSupportExpectedVariantCounts(t *testing.T) {
	cases := map[*Family]int{
		DealSearch:         16,
		DealsOfTheDay:      8,
		CreditCardRequests: 4,
		MerchantIndex:      6,
		DealRequests:       8,
	}
	for f, n := range cases {
		assert.Len(t, f.Supported(), n, f.Name)
	}
}
