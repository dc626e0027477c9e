package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

func TestDealCreateStartsPendingWithCodeAndIndexRow(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")

	d := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)

	assert.Equal(t, domain.StatusPending, d.ApprovalStatus)
	assert.Equal(t, "260310M0001", d.DealCode)
	assert.Equal(t, "M-1", d.CreatedBy)

	row, err := repos.NewDealIndexRepo(e.store.DB).Get(e.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza Palace", row.Name)
	assert.Equal(t, ","+cat.ID+",", row.CategoryIDs)
	assert.Equal(t, "Food", row.CategoryNames)
	assert.Equal(t, domain.StatusPending, row.ApprovalStatus)
}

func TestDealCreateRejectsUnknownOwner(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")

	_, err := e.deals.Create(e.ctx, e.caller("M-9"), e.dealInput(domain.OwnerMerchant, "M-9", cat.ID))
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = e.deals.Create(e.ctx, e.caller("B-9"), e.dealInput(domain.OwnerBank, "B-9", cat.ID))
	assert.ErrorIs(t, err, domain.ErrInvalidBank)
}

func TestDealCreateForAnotherOwnerNeedsAdmin(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")

	_, err := e.deals.Create(e.ctx, e.caller("U-1"), e.dealInput(domain.OwnerMerchant, "M-2", cat.ID))
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), e.dealInput(domain.OwnerMerchant, "M-2", cat.ID))
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	d, err := e.deals.Create(e.ctx, e.caller("ADMIN-1"), e.dealInput(domain.OwnerMerchant, "M-2", cat.ID))
	require.NoError(t, err)
	assert.Equal(t, "M-2", d.OwnerID)

	// an empty owner means the caller
	in := e.dealInput(domain.OwnerMerchant, "", cat.ID)
	d, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	require.NoError(t, err)
	assert.Equal(t, "M-1", d.OwnerID)
}

func TestDealCreateRejectsBadReferences(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")

	_, err := e.deals.Create(e.ctx, e.caller("M-1"), e.dealInput(domain.OwnerMerchant, "M-1", "CAT-missing"))
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	in := e.dealInput(domain.OwnerMerchant, "M-1", cat.ID)
	in.BrandIDs = []string{"BR-missing"}
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidBrand)

	in = e.dealInput(domain.OwnerMerchant, "M-1", cat.ID)
	in.OfferTypeID = "OT-missing"
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidOfferType)

	in.OfferTypeID = "OT-BOGO"
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.NoError(t, err)
}

func TestDealDeductionValidation(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	pct := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

	cases := []struct {
		name   string
		typ    domain.DeductionType
		amount decimal.NullDecimal
		pct    decimal.NullDecimal
		ok     bool
	}{
		{"percentage in range", domain.DeductionPercentage, decimal.NullDecimal{}, pct(20), true},
		{"percentage of 100", domain.DeductionPercentage, decimal.NullDecimal{}, pct(100), true},
		{"percentage over 100", domain.DeductionPercentage, decimal.NullDecimal{}, pct(101), false},
		{"percentage zero", domain.DeductionPercentage, decimal.NullDecimal{}, pct(0), false},
		{"percentage missing", domain.DeductionPercentage, decimal.NullDecimal{}, decimal.NullDecimal{}, false},
		{"percentage with amount", domain.DeductionPercentage, pct(50), pct(20), false},
		{"amount positive", domain.DeductionAmount, pct(150), decimal.NullDecimal{}, true},
		{"amount zero", domain.DeductionAmount, pct(0), decimal.NullDecimal{}, false},
		{"amount with percentage", domain.DeductionAmount, pct(150), pct(10), false},
		{"unknown type", "FREEBIE", decimal.NullDecimal{}, decimal.NullDecimal{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := e.dealInput(domain.OwnerMerchant, "M-1", cat.ID)
			in.DeductionType = tc.typ
			in.DeductionAmount = tc.amount
			in.DeductionPercentage = tc.pct
			_, err := e.deals.Create(e.ctx, e.caller("M-1"), in)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidDeduction)
			}
		})
	}
}

func TestDealDateAndPriceValidation(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")

	in := e.dealInput(domain.OwnerMerchant, "M-1", cat.ID)
	in.ValidFrom = e.clock.Now().Add(-time.Hour)
	_, err := e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidDates)

	in = e.dealInput(domain.OwnerMerchant, "M-1", cat.ID)
	in.ExpiredOn = in.ValidFrom
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidDates)

	in = e.dealInput(domain.OwnerMerchant, "M-1", cat.ID)
	in.Price = decimal.NewFromInt(-1)
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	in = e.dealInput(domain.OwnerMerchant, "M-1")
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	in = e.dealInput("SHOP", "M-1", cat.ID)
	_, err = e.deals.Create(e.ctx, e.caller("M-1"), in)
	assert.ErrorIs(t, err, domain.ErrUnsupportedUserType)
}

func TestDealUpdateOnlyWhilePending(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	d := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)

	in := e.dealInput(domain.OwnerMerchant, "M-1", cat.ID)
	in.Title = "Two for one"
	updated, err := e.deals.Update(e.ctx, e.caller("M-1"), d.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Two for one", updated.Title)
	assert.Equal(t, d.DealCode, updated.DealCode)

	row, err := repos.NewDealIndexRepo(e.store.DB).Get(e.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Two for one", row.Title)

	e.approve(t, d.ID)

	// rejected before the payload is even looked at
	_, err = e.deals.Update(e.ctx, e.caller("M-1"), d.ID, DealInput{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedUpdate)
}

func TestDealUpdateAndDeleteRequireOwner(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	d := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)

	_, err := e.deals.Update(e.ctx, e.caller("M-2"), d.ID, e.dealInput(domain.OwnerMerchant, "M-1", cat.ID))
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.ErrorIs(t, e.deals.Delete(e.ctx, e.caller("M-2"), d.ID), domain.ErrNotOwner)
	_, err = e.deals.Get(e.ctx, "DEAL-missing")
	assert.ErrorIs(t, err, domain.ErrInvalidDeal)
}

func TestDealSoftDeleteHidesEverywhere(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	d := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	e.approve(t, d.ID)

	e.clock.Advance(36 * time.Hour)
	_, err := e.dotd.Refresh(e.ctx)
	require.NoError(t, err)

	search := func() int {
		p, err := e.deals.Search(e.ctx, DealSearchParams{CategoryID: cat.ID}, firstPage)
		require.NoError(t, err)
		return p.TotalElements
	}
	dotd := func() int {
		p, err := e.dotd.Search(e.ctx, "ALL", "ALL", "", firstPage)
		require.NoError(t, err)
		return p.TotalElements
	}
	require.Equal(t, 1, search())
	require.Equal(t, 1, dotd())

	require.NoError(t, e.deals.Delete(e.ctx, e.caller("M-1"), d.ID))

	_, err = e.deals.Get(e.ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidDeal)
	assert.Equal(t, 0, search())
	assert.Equal(t, 0, dotd())
	mine, err := e.deals.ListMine(e.ctx, domain.OwnerMerchant, "M-1", firstPage)
	require.NoError(t, err)
	assert.Empty(t, mine.Content)
	active, err := e.dotd.Active(e.ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDealSearchServesApprovedLiveDealsOnly(t *testing.T) {
	e := newEnv(t)
	food := e.category(t, "Food")
	travel := e.category(t, "Travel")
	pizza := e.createDeal(t, domain.OwnerMerchant, "M-1", food.ID)
	burger := e.createDeal(t, domain.OwnerMerchant, "M-2", food.ID, travel.ID)
	e.createDeal(t, domain.OwnerMerchant, "M-2", travel.ID)
	e.approve(t, pizza.ID)
	e.approve(t, burger.ID)

	p, err := e.deals.Search(e.ctx, DealSearchParams{CategoryID: food.ID}, firstPage)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalElements)

	p, err = e.deals.Search(e.ctx, DealSearchParams{CategoryID: travel.ID, MerchantID: "ALL"}, firstPage)
	require.NoError(t, err)
	require.Len(t, p.Content, 1)
	assert.Equal(t, burger.ID, p.Content[0].ID)

	p, err = e.deals.Search(e.ctx, DealSearchParams{SearchTerm: "burger barn"}, firstPage)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalElements)

	e.clock.Advance(11 * 24 * time.Hour)
	p, err = e.deals.Search(e.ctx, DealSearchParams{}, firstPage)
	require.NoError(t, err)
	assert.Zero(t, p.TotalElements, "expired deals drop out of search")
}

func TestDealCodesCountPerDayAndKind(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")

	a := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	b := e.createDeal(t, domain.OwnerMerchant, "M-2", cat.ID)
	c := e.createDeal(t, domain.OwnerBank, "B-1", cat.ID)
	assert.Equal(t, "260310M0001", a.DealCode)
	assert.Equal(t, "260310M0002", b.DealCode)
	assert.Equal(t, "260310B0001", c.DealCode)

	e.clock.Advance(24 * time.Hour)
	d := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	assert.Equal(t, "260311M0001", d.DealCode)

	codes, err := repos.NewDealCodeRepo(e.store.DB).ForDate(e.ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Len(t, codes, 3)
}

func TestDealCodeDayFollowsConfiguredZone(t *testing.T) {
	e := newEnv(t)
	// 20:00 UTC is already the next day in Dhaka
	e.clock.Set(time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, "260311M0007", e.codes.Format(time.Date(2026, 3, 11, 0, 0, 0, 0, dhaka), domain.OwnerMerchant, 7))

	cat := e.category(t, "Food")
	d := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	assert.Equal(t, "260311M0001", d.DealCode)
}

func TestDealCodeTemplateTokens(t *testing.T) {
	s := NewDealCodeService(nil, time.UTC, "DL-{YYYY}{MM}{DD}-{T}-{NNNN}")
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "DL-20260102-B-0042", s.Format(day, domain.OwnerBank, 42))
}
