package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"dealcore/internal/domain"
	"dealcore/internal/http/handlers"
)

var adminHeaders = map[string]string{
	handlers.HeaderUserID:    "ADMIN-1",
	handlers.HeaderTimeZone:  "Asia/Dhaka",
	handlers.HeaderAuthToken: "tok",
}

func createPendingDeal(t *testing.T, ta *testApp) dealJSON {
	t.Helper()
	resp := ta.do(t, "POST", "/api/v1/categories", map[string]any{"name": "Food"}, adminHeaders)
	mustStatus(t, resp, http.StatusCreated)
	cat := decode[struct {
		ID string `json:"id"`
	}](t, resp)

	now := ta.clock.Now()
	resp = ta.do(t, "POST", "/api/v1/deals", map[string]any{
		"ownerKind":           "MERCHANT",
		"ownerId":             "M-1",
		"title":               "Half price pizza",
		"price":               "1000",
		"deductionType":       "PERCENTAGE",
		"deductionPercentage": "50",
		"validFrom":           now.Add(24 * time.Hour).Format(time.RFC3339),
		"expiredOn":           now.Add(10 * 24 * time.Hour).Format(time.RFC3339),
		"categoryIds":         []string{cat.ID},
	}, writerHeaders)
	mustStatus(t, resp, http.StatusCreated)
	return decode[dealJSON](t, resp)
}

// A merchant cannot approve its own deal; the attempt is logged and the deal
// stays PENDING.
func TestApprovalRequiresAdmin(t *testing.T) {
	ta := newTestApp(t, nil)
	d := createPendingDeal(t, ta)

	entries := captureAccessLogs(t, func() {
		resp := ta.do(t, "POST", "/api/v1/deals/"+d.ID+"/approval", map[string]any{"status": "APPROVED"}, writerHeaders)
		expectCode(t, resp, domain.ErrUnsupportedUserType)
	})
	e, ok := findAction(entries, "access.denied.admin")
	if !ok {
		t.Fatalf("expected access.denied.admin log; got %+v", entries)
	}
	if e.Level != "warn" || e.UserID != "M-1" {
		t.Fatalf("unexpected security entry %+v", e)
	}

	resp := ta.do(t, "GET", "/api/v1/deals/"+d.ID, nil, writerHeaders)
	mustStatus(t, resp, http.StatusOK)
	if got := decode[dealJSON](t, resp); got.ApprovalStatus != "PENDING" {
		t.Fatalf("deal should still be PENDING, got %s", got.ApprovalStatus)
	}

	resp = ta.do(t, "POST", "/api/v1/deals/"+d.ID+"/approval", map[string]any{"status": "APPROVED"}, adminHeaders)
	mustStatus(t, resp, http.StatusOK)
}

func TestAdminJobsRequireAdmin(t *testing.T) {
	ta := newTestApp(t, nil)
	for _, path := range []string{"/api/v1/admin/jobs/deals-of-the-day", "/api/v1/admin/jobs/reconcile"} {
		expectCode(t, ta.do(t, "POST", path, nil, writerHeaders), domain.ErrUnsupportedUserType)
		mustStatus(t, ta.do(t, "POST", path, nil, adminHeaders), http.StatusOK)
	}
}

func TestDealForAnotherMerchantIsRefused(t *testing.T) {
	ta := newTestApp(t, nil)
	now := ta.clock.Now()
	resp := ta.do(t, "POST", "/api/v1/deals", map[string]any{
		"ownerKind":           "MERCHANT",
		"ownerId":             "M-2",
		"title":               "Not mine",
		"price":               "1000",
		"deductionType":       "PERCENTAGE",
		"deductionPercentage": "10",
		"validFrom":           now.Add(24 * time.Hour).Format(time.RFC3339),
		"expiredOn":           now.Add(10 * 24 * time.Hour).Format(time.RFC3339),
	}, writerHeaders)
	expectCode(t, resp, domain.ErrNotOwner)
}
