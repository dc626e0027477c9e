package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"dealcore/internal/clients/clientstest"
	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

var dhaka = time.FixedZone("Asia/Dhaka", 6*60*60)

// env wires every service against one in-memory store, a fake clock and fake
// downstream services.
type env struct {
	ctx      context.Context
	store    *repos.Store
	clock    *clock.FakeClock
	profiles *clientstest.Profiles
	notifier *clientstest.Notifier
	analytic *clientstest.Analytics

	sync      *IndexSync
	codes     *DealCodeService
	deals     *DealService
	approval  *ApprovalService
	cats      *CategoryService
	brands    *BrandService
	mappings  *MappingService
	requests  *DealRequestService
	cards     *CreditCardService
	dotd      *DealsOfTheDayService
	reconcile *ReconcileService
	summary   *SummaryService
	reports   *ReportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{
		ctx:      context.Background(),
		store:    repos.NewStore(db),
		clock:    clock.NewFake(time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)),
		profiles: clientstest.NewProfiles(),
		notifier: &clientstest.Notifier{},
		analytic: &clientstest.Analytics{},
	}
	e.sync = NewIndexSync(e.store, e.clock)
	e.codes = NewDealCodeService(e.clock, dhaka, "")
	e.deals = NewDealService(e.store, e.profiles, e.codes, e.sync, e.clock)
	e.approval = NewApprovalService(e.store, e.profiles, e.notifier, e.sync, e.clock)
	e.cats = NewCategoryService(e.store, e.clock)
	e.brands = NewBrandService(e.store, e.clock)
	e.mappings = NewMappingService(e.store, e.profiles, e.sync, e.clock)
	e.requests = NewDealRequestService(e.store, e.profiles, e.sync, e.clock)
	e.cards = NewCreditCardService(e.store, e.profiles, e.clock)
	e.dotd = NewDealsOfTheDayService(e.store, e.clock, dhaka, 2)
	e.reconcile = NewReconcileService(e.store, e.profiles, e.sync, 2)
	e.summary = NewSummaryService(e.store, e.profiles, e.clock, dhaka)
	e.reports = NewReportService(e.store, e.analytic, e.clock, dhaka)

	e.profiles.AddMerchant("M-1", "Pizza Palace")
	e.profiles.AddMerchant("M-2", "Burger Barn")
	e.profiles.AddBank("B-1", "City Bank")
	e.profiles.AddUser(domain.User{ID: "U-1", FullName: "Rafi", Email: "rafi@example.com", MobileNo: "01711000000"})
	e.profiles.AddUser(domain.User{ID: "M-1", FullName: "Pizza Owner", Email: "owner@pizza.example"})
	return e
}

// caller builds a write caller; ids starting with ADMIN- are admins.
func (e *env) caller(id string) Caller {
	return Caller{UserID: id, AuthToken: "tok", Location: dhaka, Admin: strings.HasPrefix(id, "ADMIN-")}
}

func (e *env) category(t *testing.T, name string) domain.Category {
	t.Helper()
	c, err := e.cats.Create(e.ctx, CategoryInput{Name: name, Type: domain.CategoryNormal})
	require.NoError(t, err)
	return c
}

func (e *env) brand(t *testing.T, name string) domain.Brand {
	t.Helper()
	b, err := e.brands.Create(e.ctx, BrandInput{Name: name})
	require.NoError(t, err)
	return b
}

// dealInput is a valid percentage deal starting tomorrow and running ten days.
func (e *env) dealInput(kind domain.OwnerKind, owner string, cats ...string) DealInput {
	now := e.clock.Now()
	return DealInput{
		OwnerKind:           kind,
		OwnerID:             owner,
		Title:               "Half price pizza",
		Subtitle:            "Weekdays only",
		Description:         "Any large pizza",
		Price:               decimal.NewFromInt(1000),
		DeductionType:       domain.DeductionPercentage,
		DeductionPercentage: decimal.NewNullDecimal(decimal.NewFromInt(50)),
		ValidFrom:           now.Add(24 * time.Hour),
		ExpiredOn:           now.Add(10 * 24 * time.Hour),
		CategoryIDs:         cats,
	}
}

func (e *env) createDeal(t *testing.T, kind domain.OwnerKind, owner string, cats ...string) domain.Deal {
	t.Helper()
	d, err := e.deals.Create(e.ctx, e.caller(owner), e.dealInput(kind, owner, cats...))
	require.NoError(t, err)
	return d
}

func (e *env) approve(t *testing.T, id string) domain.Deal {
	t.Helper()
	d, err := e.approval.Decide(e.ctx, e.caller("ADMIN-1"), id, domain.StatusApproved, "looks good")
	require.NoError(t, err)
	e.approval.Wait()
	return d
}

var firstPage = domain.PageRequest{Page: 0, Size: 20}
