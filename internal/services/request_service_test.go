package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcore/internal/domain"
)

func cardInput(bank string) CreditCardInput {
	return CreditCardInput{
		BankID:         bank,
		FullName:       "Rafi Ahmed",
		Email:          "rafi@example.com",
		MobileNo:       "+8801711000000",
		MonthlyIncome:  decimal.NewFromInt(85000),
		EmploymentType: "SALARIED",
		CardType:       "GOLD",
	}
}

func TestCreditCardRequestLifecycle(t *testing.T) {
	e := newEnv(t)
	r, err := e.cards.Create(e.ctx, e.caller("U-1"), cardInput("B-1"))
	require.NoError(t, err)
	assert.Equal(t, "U-1", r.UserID)

	got, err := e.cards.Get(e.ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.MonthlyIncome.Equal(decimal.NewFromInt(85000)))

	p, err := e.cards.Search(e.ctx, "B-1", "rafi", firstPage)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalElements)

	combined, err := e.cards.Combined(e.ctx, firstPage)
	require.NoError(t, err)
	require.Len(t, combined.Content, 1)
	assert.Equal(t, 1, combined.Content[0].RequestCount)

	_, err = e.cards.Get(e.ctx, "CCR-missing")
	assert.ErrorIs(t, err, domain.ErrInvalidCardRequest)
}

func TestCreditCardRequestValidation(t *testing.T) {
	e := newEnv(t)
	cases := map[string]struct {
		mutate func(*CreditCardInput)
		want   error
	}{
		"unknown bank":    {func(in *CreditCardInput) { in.BankID = "B-9" }, domain.ErrInvalidBank},
		"bad email":       {func(in *CreditCardInput) { in.Email = "rafi@" }, domain.ErrValidation},
		"bad mobile":      {func(in *CreditCardInput) { in.MobileNo = "call me" }, domain.ErrValidation},
		"negative income": {func(in *CreditCardInput) { in.MonthlyIncome = decimal.NewFromInt(-1) }, domain.ErrValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := cardInput("B-1")
			tc.mutate(&in)
			_, err := e.cards.Create(e.ctx, e.caller("U-1"), in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDealRequestIndexedWithNames(t *testing.T) {
	e := newEnv(t)
	food := e.category(t, "Food")
	coke := e.brand(t, "Coke")
	r, err := e.requests.Create(e.ctx, e.caller("U-1"), DealRequestInput{
		CategoryID:     food.ID,
		BrandID:        coke.ID,
		OfferTypeID:    "OT-BOGO",
		TargetUserType: domain.OwnerMerchant,
		TargetOwnerID:  "M-1",
		Description:    "Family pizza combo",
	})
	require.NoError(t, err)
	assert.Equal(t, "U-1", r.RequesterID)

	p, err := e.requests.Search(e.ctx, "M-1", "ALL", "ALL", "combo", firstPage)
	require.NoError(t, err)
	require.Len(t, p.Content, 1)
	row := p.Content[0]
	assert.Equal(t, "Rafi", row.RequesterName)
	assert.Equal(t, "Food", row.CategoryName)
	assert.Equal(t, "Coke", row.BrandName)
	assert.Equal(t, "Buy One Get One", row.OfferTypeName)
	assert.Equal(t, "Pizza Palace", row.Name)

	p, err = e.requests.Search(e.ctx, "M-2", "ALL", "ALL", "", firstPage)
	require.NoError(t, err)
	assert.Zero(t, p.TotalElements)
}

func TestDealRequestRejectsBadReferences(t *testing.T) {
	e := newEnv(t)
	food := e.category(t, "Food")
	base := DealRequestInput{CategoryID: food.ID, TargetUserType: domain.OwnerBank, TargetOwnerID: "B-1", Description: "EMI on laptops"}

	in := base
	in.CategoryID = "CAT-missing"
	_, err := e.requests.Create(e.ctx, e.caller("U-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	in = base
	in.OfferTypeID = "OT-missing"
	_, err = e.requests.Create(e.ctx, e.caller("U-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidOfferType)

	in = base
	in.TargetOwnerID = "B-9"
	_, err = e.requests.Create(e.ctx, e.caller("U-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidBank)

	in = base
	in.TargetUserType = "ADMIN"
	_, err = e.requests.Create(e.ctx, e.caller("U-1"), in)
	assert.ErrorIs(t, err, domain.ErrUnsupportedUserType)

	_, err = e.requests.Create(e.ctx, e.caller("U-404"), base)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestDealRequestDeleteAndCombined(t *testing.T) {
	e := newEnv(t)
	food := e.category(t, "Food")
	in := DealRequestInput{CategoryID: food.ID, TargetUserType: domain.OwnerMerchant, TargetOwnerID: "M-1"}
	first, err := e.requests.Create(e.ctx, e.caller("U-1"), in)
	require.NoError(t, err)
	_, err = e.requests.Create(e.ctx, e.caller("U-1"), in)
	require.NoError(t, err)
	in.TargetOwnerID = "M-2"
	_, err = e.requests.Create(e.ctx, e.caller("U-1"), in)
	require.NoError(t, err)

	c, err := e.requests.Combined(e.ctx, domain.OwnerMerchant, firstPage)
	require.NoError(t, err)
	require.Len(t, c.Content, 2)
	assert.Equal(t, "M-1", c.Content[0].OwnerID)
	assert.Equal(t, 2, c.Content[0].RequestCount)

	assert.ErrorIs(t, e.requests.Delete(e.ctx, e.caller("M-1"), first.ID), domain.ErrNotOwner)
	require.NoError(t, e.requests.Delete(e.ctx, e.caller("U-1"), first.ID))

	c, err = e.requests.Combined(e.ctx, domain.OwnerMerchant, firstPage)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Content[0].RequestCount)

	p, err := e.requests.Search(e.ctx, "", food.ID, "ALL", "", firstPage)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalElements)

	_, err = e.requests.Combined(e.ctx, "ADMIN", firstPage)
	assert.ErrorIs(t, err, domain.ErrUnsupportedUserType)
}
