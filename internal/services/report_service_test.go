package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcore/internal/clients"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

func TestResolveRange(t *testing.T) {
	// 02:00 on the 10th in Dhaka, still the 9th in UTC
	now := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	cases := []struct {
		name, start, end string
		from, to         string
	}{
		{name: "TODAY", from: "2026-03-10", to: "2026-03-10"},
		{name: "yesterday", from: "2026-03-09", to: "2026-03-09"},
		{name: "", from: "2026-03-04", to: "2026-03-10"},
		{name: "LAST_30_DAYS", from: "2026-02-09", to: "2026-03-10"},
		{name: "THIS_MONTH", from: "2026-03-01", to: "2026-03-10"},
		{name: "LAST_MONTH", from: "2026-02-01", to: "2026-02-28"},
		{start: "2026-01-01T00:00:00Z", end: "2026-01-31T00:00:00Z", from: "2026-01-01", to: "2026-01-31"},
	}
	for _, tc := range cases {
		r, err := ResolveRange(now, dhaka, tc.name, tc.start, tc.end)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.from, r.Start.Format(domain.DateLayout), tc.name)
		assert.Equal(t, tc.to, r.End.Format(domain.DateLayout), tc.name)
	}

	_, err := ResolveRange(now, dhaka, "", "2026-02-01T00:00:00Z", "2026-01-01T00:00:00Z")
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	_, err = ResolveRange(now, dhaka, "", "2026-02-01", "")
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	_, err = ResolveRange(now, dhaka, "FOREVER", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestTopDealsKeepsRankAndSkipsDeleted(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	a := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	b := e.createDeal(t, domain.OwnerMerchant, "M-2", cat.ID)
	gone := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	require.NoError(t, e.deals.Delete(e.ctx, e.caller("M-1"), gone.ID))

	e.analytic.Rows = []clients.ReportRow{
		{Dimensions: map[string]string{"dealId": b.ID}, Metrics: map[string]int64{"eventCount": 90}},
		{Dimensions: map[string]string{"dealId": gone.ID}, Metrics: map[string]int64{"eventCount": 70}},
		{Dimensions: map[string]string{"dealId": "DEAL-unknown"}, Metrics: map[string]int64{"eventCount": 50}},
		{Dimensions: map[string]string{"dealId": a.ID}, Metrics: map[string]int64{"eventCount": 10}},
	}
	top, err := e.reports.TopDeals(e.ctx, ReportQuery{Range: RangeToday})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b.ID, top[0].ID)
	assert.EqualValues(t, 90, top[0].Views)
	assert.Equal(t, a.ID, top[1].ID)

	assert.Equal(t, "2026-03-10", e.analytic.Last.StartDate)
	assert.Equal(t, 10, e.analytic.Last.Limit)
	assert.Equal(t, "deal_view", e.analytic.Last.Filters["eventName"])
}

func TestTopCategoriesResolvesNames(t *testing.T) {
	e := newEnv(t)
	food := e.category(t, "Food")
	e.analytic.Rows = []clients.ReportRow{
		{Dimensions: map[string]string{"categoryId": "CAT-gone"}, Metrics: map[string]int64{"eventCount": 8}},
		{Dimensions: map[string]string{"categoryId": food.ID}, Metrics: map[string]int64{"eventCount": 5}},
	}
	top, err := e.reports.TopCategories(e.ctx, ReportQuery{Limit: 3, Offset: 3})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, TopCategory{CategoryID: food.ID, Name: "Food", Views: 5}, top[0])
	assert.Equal(t, 3, e.analytic.Last.Offset)
	assert.Equal(t, []string{"categoryId"}, e.analytic.Last.Dimensions)
}

func TestTodaySummaryCountsSinceLocalMidnight(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	e.profiles.Counters = map[string]int{"profileViews": 4}
	d := e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	e.approve(t, d.ID)
	e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	e.createDeal(t, domain.OwnerMerchant, "M-2", cat.ID)

	s, err := e.summary.Today(e.ctx, e.caller("M-1"), domain.OwnerMerchant)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", s.Date)
	assert.Equal(t, 4, s.Profile["profileViews"])
	assert.Equal(t, 2, s.Local["dealsCreated"])
	assert.Equal(t, 1, s.Local["dealsAPPROVED"])
	assert.Equal(t, 1, s.Local["dealsPENDING"])
	assert.NotContains(t, s.Local, "creditCardRequests")

	// 18:00 UTC is past midnight in Dhaka, so yesterday's deals drop out
	e.clock.Advance(14 * time.Hour)
	s, err = e.summary.Today(e.ctx, e.caller("M-1"), domain.OwnerMerchant)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", s.Date)
	assert.Zero(t, s.Local["dealsCreated"])

	_, err = e.summary.Today(e.ctx, e.caller("M-1"), domain.OwnerKind("ADMIN"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedUserType)
}

func TestDashboardCountsPerKind(t *testing.T) {
	e := newEnv(t)
	cat := e.category(t, "Food")
	e.createDeal(t, domain.OwnerMerchant, "M-1", cat.ID)
	e.createDeal(t, domain.OwnerBank, "B-1", cat.ID)

	d, err := e.summary.Dashboard(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, "10 Mar 2026", d.Date)
	require.Len(t, d.Kinds, 2)
	assert.Equal(t, domain.OwnerMerchant, d.Kinds[0].Kind)
	assert.Equal(t, 1, d.Kinds[0].CreatedToday)
	assert.Equal(t, []repos.StatusCount{{Status: domain.StatusPending, Count: 1}}, d.Kinds[1].ByStatus)
	assert.Zero(t, d.Kinds[1].DealsOfTheDay)
}
