package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealcore/internal/clients"
	"dealcore/internal/domain"
)

// ProfileService is the external system of record for merchant, bank and user identity.
type ProfileService interface {
	MerchantByID(ctx context.Context, token, id string) (domain.Profile, error)
	BankByID(ctx context.Context, token, id string) (domain.Profile, error)
	BulkMerchantInfo(ctx context.Context, ids []string, toUserType domain.OwnerKind) (map[string]domain.Profile, error)
	UserByID(ctx context.Context, token, id string) (domain.User, error)
	BulkUserInfo(ctx context.Context, ids []string) (map[string]domain.User, error)
	TodaySummary(ctx context.Context, userID, userType string) (domain.TodaySummary, error)
}

type Notifier interface {
	SendMail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, mobileNo, message string) error
}

type Analytics interface {
	RunReport(ctx context.Context, req clients.ReportRequest) ([]clients.ReportRow, error)
}

var (
	_ ProfileService = (*clients.ProfileClient)(nil)
	_ Notifier       = (*clients.NotificationClient)(nil)
	_ Analytics      = (*clients.AnalyticsClient)(nil)
)

// Caller carries the identity headers of a write request. Admin is set by the
// transport from the configured admin ids, never from a header.
type Caller struct {
	UserID    string
	AuthToken string
	Location  *time.Location
	Admin     bool
}

// ownerProfile verifies a merchant or bank with the profile service.
func ownerProfile(ctx context.Context, p ProfileService, kind domain.OwnerKind, token, id string) (domain.Profile, error) {
	if kind == domain.OwnerBank {
		return p.BankByID(ctx, token, id)
	}
	return p.MerchantByID(ctx, token, id)
}

func newID(prefix string) string { return prefix + "-" + uuid.NewString() }

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// namesInOrder returns the names of ids in ids order.
func namesInOrder(ids []string, names map[string]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, names[id])
	}
	return out
}
