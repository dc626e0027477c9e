package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dealcore/internal/clients"
	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

// Named report ranges. An empty name with explicit start/end uses those instead.
const (
	RangeToday      = "TODAY"
	RangeYesterday  = "YESTERDAY"
	RangeLast7Days  = "LAST_7_DAYS"
	RangeLast30Days = "LAST_30_DAYS"
	RangeThisMonth  = "THIS_MONTH"
	RangeLastMonth  = "LAST_MONTH"
)

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ResolveRange turns a named range or an explicit RFC3339 pair into calendar
// days in loc. With neither, the last seven days are used.
func ResolveRange(now time.Time, loc *time.Location, name, start, end string) (DateRange, error) {
	n := now.In(loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	if name == "" && (start != "" || end != "") {
		s, err1 := time.Parse(time.RFC3339, start)
		e, err2 := time.Parse(time.RFC3339, end)
		if err1 != nil || err2 != nil {
			return DateRange{}, domain.ErrInvalidDateRange.With("start and end must both be RFC3339")
		}
		if e.Before(s) {
			return DateRange{}, domain.ErrInvalidDateRange.With("end is before start")
		}
		return DateRange{Start: s.In(loc), End: e.In(loc)}, nil
	}
	switch strings.ToUpper(name) {
	case RangeToday:
		return DateRange{today, today}, nil
	case RangeYesterday:
		y := today.AddDate(0, 0, -1)
		return DateRange{y, y}, nil
	case "", RangeLast7Days:
		return DateRange{today.AddDate(0, 0, -6), today}, nil
	case RangeLast30Days:
		return DateRange{today.AddDate(0, 0, -29), today}, nil
	case RangeThisMonth:
		return DateRange{today.AddDate(0, 0, 1-today.Day()), today}, nil
	case RangeLastMonth:
		first := today.AddDate(0, 0, 1-today.Day())
		return DateRange{first.AddDate(0, -1, 0), first.AddDate(0, 0, -1)}, nil
	}
	return DateRange{}, domain.ErrInvalidDateRange.With("unknown range %q", name)
}

type ReportQuery struct {
	Range  string
	Start  string
	End    string
	Limit  int
	Offset int
}

type TopDeal struct {
	domain.DealIndex
	Views int64 `json:"views"`
}

type TopCategory struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Views      int64  `json:"views"`
}

// ReportService ranks deals and categories by analytics event counts and
// enriches the ids from local data.
type ReportService struct {
	Analytics Analytics
	Deals     *repos.DealIndexRepo
	Cats      *repos.CategoryRepo
	Clock     clock.Clock
	Loc       *time.Location
}

func NewReportService(store *repos.Store, a Analytics, c clock.Clock, loc *time.Location) *ReportService {
	return &ReportService{
		Analytics: a,
		Deals:     repos.NewDealIndexRepo(store.DB),
		Cats:      repos.NewCategoryRepo(store.DB),
		Clock:     c,
		Loc:       loc,
	}
}

func (s *ReportService) run(ctx context.Context, q ReportQuery, dimension, event string) ([]clients.ReportRow, error) {
	r, err := ResolveRange(s.Clock.Now(), s.Loc, q.Range, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	rows, err := s.Analytics.RunReport(ctx, clients.ReportRequest{
		StartDate:  r.Start.Format(domain.DateLayout),
		EndDate:    r.End.Format(domain.DateLayout),
		Dimensions: []string{dimension},
		Metrics:    []string{"eventCount"},
		Filters:    map[string]string{"eventName": event},
		Limit:      q.Limit,
		Offset:     q.Offset,
		OrderBy:    "-eventCount",
	})
	if err != nil {
		return nil, fmt.Errorf("run %s report: %w", event, err)
	}
	return rows, nil
}

// TopDeals returns the most viewed deals that are still live, in ranking order.
func (s *ReportService) TopDeals(ctx context.Context, q ReportQuery) ([]TopDeal, error) {
	rows, err := s.run(ctx, q, "dealId", "deal_view")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Dimensions["dealId"])
	}
	live, err := s.Deals.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := []TopDeal{}
	for _, r := range rows {
		d, ok := live[r.Dimensions["dealId"]]
		if !ok {
			continue
		}
		out = append(out, TopDeal{DealIndex: d, Views: r.Metrics["eventCount"]})
	}
	return out, nil
}

func (s *ReportService) TopCategories(ctx context.Context, q ReportQuery) ([]TopCategory, error) {
	rows, err := s.run(ctx, q, "categoryId", "category_view")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Dimensions["categoryId"])
	}
	names, err := s.Cats.Names(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := []TopCategory{}
	for _, r := range rows {
		id := r.Dimensions["categoryId"]
		name, ok := names[id]
		if !ok {
			continue
		}
		out = append(out, TopCategory{CategoryID: id, Name: name, Views: r.Metrics["eventCount"]})
	}
	return out, nil
}
