package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

// DefaultDealCodeTemplate renders e.g. 261016M0001.
const DefaultDealCodeTemplate = "{YY}{MM}{DD}{T}{NNNN}"

// DealCodeService issues human-readable deal codes: a date prefix, an
// owner-kind letter and a counter that restarts every calendar day.
type DealCodeService struct {
	Clock    clock.Clock
	Loc      *time.Location
	Template string
}

func NewDealCodeService(c clock.Clock, loc *time.Location, template string) *DealCodeService {
	if template == "" {
		template = DefaultDealCodeTemplate
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DealCodeService{Clock: c, Loc: loc, Template: template}
}

// Generate reserves the next number for kind on today's date and records the
// code. The counter increment is a single atomic statement, so concurrent
// callers never observe the same number.
func (s *DealCodeService) Generate(ctx context.Context, tx *sqlx.Tx, kind domain.OwnerKind) (string, error) {
	codes := repos.NewDealCodeRepo(tx)
	now := s.Clock.Now()
	day := clock.Today(s.Clock, s.Loc)
	date := day.Format(domain.DateLayout)

	n, err := codes.Next(ctx, date, kind.Letter())
	if err != nil {
		return "", err
	}
	code := s.Format(day, kind, n)
	if err := codes.Record(ctx, domain.DealCode{
		Code:                code,
		DealDate:            date,
		DealNumberForTheDay: n,
		DealType:            kind.Letter(),
		CreatedAt:           domain.NewTime(now),
	}); err != nil {
		return "", fmt.Errorf("record deal code %s: %w", code, err)
	}
	return code, nil
}

// Format substitutes the template tokens.
func (s *DealCodeService) Format(day time.Time, kind domain.OwnerKind, n int) string {
	r := strings.NewReplacer(
		"{YYYY}", day.Format("2006"),
		"{YY}", day.Format("06"),
		"{MM}", day.Format("01"),
		"{DD}", day.Format("02"),
		"{T}", kind.Letter(),
		"{NNNN}", fmt.Sprintf("%04d", n),
	)
	return r.Replace(s.Template)
}
