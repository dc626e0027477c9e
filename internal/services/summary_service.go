package services

import (
	"context"
	"fmt"
	"time"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

// TodaySummary merges the profile service's activity counters with the
// counts this service owns.
type TodaySummary struct {
	UserID   string           `json:"userId"`
	UserType domain.OwnerKind `json:"userType"`
	Date     string           `json:"date"`
	Profile  map[string]int   `json:"profileCounters"`
	Local    map[string]int   `json:"counters"`
}

// KindStats is one owner kind's row on the dashboard.
type KindStats struct {
	Kind          domain.OwnerKind
	ByStatus      []repos.StatusCount
	CreatedToday  int
	DealsOfTheDay int
}

type Dashboard struct {
	Date        string
	GeneratedAt string
	Kinds       []KindStats
}

type SummaryService struct {
	Deals    *repos.DealRepo
	DOTD     *repos.DealOfTheDayRepo
	Requests *repos.DealRequestIndexRepo
	Cards    *repos.CreditCardRepo
	Profiles ProfileService
	Clock    clock.Clock
	Loc      *time.Location
}

func NewSummaryService(store *repos.Store, profiles ProfileService, c clock.Clock, loc *time.Location) *SummaryService {
	return &SummaryService{
		Deals:    repos.NewDealRepo(store.DB),
		DOTD:     repos.NewDealOfTheDayRepo(store.DB),
		Requests: repos.NewDealRequestIndexRepo(store.DB),
		Cards:    repos.NewCreditCardRepo(store.DB),
		Profiles: profiles,
		Clock:    c,
		Loc:      loc,
	}
}

// Today counts the caller's activity since midnight in the caller's zone.
func (s *SummaryService) Today(ctx context.Context, caller Caller, kind domain.OwnerKind) (TodaySummary, error) {
	if !kind.Valid() {
		return TodaySummary{}, domain.ErrUnsupportedUserType.With("userType %q", kind)
	}
	loc := caller.Location
	if loc == nil {
		loc = s.Loc
	}
	midnight := clock.Today(s.Clock, loc)
	since := domain.NewTime(midnight)

	remote, err := s.Profiles.TodaySummary(ctx, caller.UserID, string(kind))
	if err != nil {
		return TodaySummary{}, err
	}
	out := TodaySummary{
		UserID:   caller.UserID,
		UserType: kind,
		Date:     midnight.Format(domain.DateLayout),
		Profile:  remote.Counters,
		Local:    map[string]int{},
	}
	if out.Profile == nil {
		out.Profile = map[string]int{}
	}

	if out.Local["dealsCreated"], err = s.Deals.CountCreatedSince(ctx, kind, caller.UserID, since); err != nil {
		return out, fmt.Errorf("count deals: %w", err)
	}
	if out.Local["dealRequests"], err = s.Requests.CountForOwnerSince(ctx, caller.UserID, since); err != nil {
		return out, fmt.Errorf("count deal requests: %w", err)
	}
	if kind == domain.OwnerBank {
		if out.Local["creditCardRequests"], err = s.Cards.CountForBankSince(ctx, caller.UserID, since); err != nil {
			return out, fmt.Errorf("count card requests: %w", err)
		}
	}
	statuses, err := s.Deals.CountByStatus(ctx, kind, caller.UserID)
	if err != nil {
		return out, err
	}
	for _, sc := range statuses {
		out.Local["deals"+string(sc.Status)] = sc.Count
	}
	return out, nil
}

// Dashboard gathers platform-wide counts for the HTML summary page.
func (s *SummaryService) Dashboard(ctx context.Context) (Dashboard, error) {
	midnight := clock.Today(s.Clock, s.Loc)
	since := domain.NewTime(midnight)
	d := Dashboard{
		Date:        midnight.Format("02 Jan 2006"),
		GeneratedAt: s.Clock.Now().In(s.Loc).Format("15:04 MST"),
	}
	for _, kind := range []domain.OwnerKind{domain.OwnerMerchant, domain.OwnerBank} {
		var (
			ks  = KindStats{Kind: kind}
			err error
		)
		if ks.ByStatus, err = s.Deals.CountByStatus(ctx, kind, ""); err != nil {
			return d, err
		}
		if ks.CreatedToday, err = s.Deals.CountCreatedSince(ctx, kind, "", since); err != nil {
			return d, err
		}
		if ks.DealsOfTheDay, err = s.DOTD.CountActive(ctx, kind); err != nil {
			return d, err
		}
		d.Kinds = append(d.Kinds, ks)
	}
	return d, nil
}
