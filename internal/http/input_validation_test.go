package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dealcore/internal/domain"
	"dealcore/internal/http/handlers"
)

func expectCode(t *testing.T, resp *http.Response, want *domain.Error) {
	t.Helper()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if e := decode[errorEnvelope](t, resp); e.ErrorCode != want.Code {
		t.Fatalf("expected code %d, got %+v", want.Code, e)
	}
}

// Writes need User-Id and a resolvable Time-Zone; some also need Auth-Token.
func TestWriteRoutesRequireIdentityHeaders(t *testing.T) {
	ta := newTestApp(t, nil)
	body := map[string]any{"name": "Food"}

	resp := ta.do(t, "POST", "/api/v1/categories", body, nil)
	expectCode(t, resp, domain.ErrMissingHeader)

	resp = ta.do(t, "POST", "/api/v1/categories", body, map[string]string{handlers.HeaderUserID: "ADMIN-1"})
	expectCode(t, resp, domain.ErrMissingHeader)

	resp = ta.do(t, "POST", "/api/v1/categories", body, map[string]string{
		handlers.HeaderUserID: "ADMIN-1", handlers.HeaderTimeZone: "Mars/Olympus",
	})
	expectCode(t, resp, domain.ErrMissingHeader)

	resp = ta.do(t, "POST", "/api/v1/categories", body, map[string]string{
		handlers.HeaderUserID: "ADMIN-1", handlers.HeaderTimeZone: "Asia/Dhaka",
	})
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d body=%s", resp.StatusCode, b)
	}

	// deal creation calls the profile service, so the token is mandatory
	resp = ta.do(t, "POST", "/api/v1/deals", map[string]any{}, map[string]string{
		handlers.HeaderUserID: "M-1", handlers.HeaderTimeZone: "Asia/Dhaka",
	})
	expectCode(t, resp, domain.ErrMissingHeader)
}

func TestQueryValidation(t *testing.T) {
	ta := newTestApp(t, nil)

	expectCode(t, ta.do(t, "GET", "/api/v1/deals/search?size=251", nil, nil), domain.ErrInvalidPagination)
	expectCode(t, ta.do(t, "GET", "/api/v1/deals/search?page=-1", nil, nil), domain.ErrInvalidPagination)
	expectCode(t, ta.do(t, "GET", "/api/v1/deals/search?searchTerm=%3Cscript%3E", nil, nil), domain.ErrInvalidSearchTerm)
	// LIKE wildcards never reach the query
	expectCode(t, ta.do(t, "GET", "/api/v1/deals/search?searchTerm=pi_za", nil, nil), domain.ErrInvalidSearchTerm)
	expectCode(t, ta.do(t, "GET", "/api/v1/deals/search?categoryId=a%27b", nil, nil), domain.ErrValidation)
	expectCode(t, ta.do(t, "GET", "/api/v1/reports/top-deals?limit=500", nil, nil), domain.ErrInvalidPagination)
	expectCode(t, ta.do(t, "GET", "/api/v1/reports/top-deals?range=FOREVER", nil, nil), domain.ErrInvalidDateRange)

	// category and brand together has no merchant query
	resp := ta.do(t, "GET", "/api/v1/merchant-mappings/search?categoryId=CAT-1&brandId=BR-1", nil, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unanticipated filter, got %d", resp.StatusCode)
	}

	resp = ta.do(t, "GET", "/api/v1/deals/search?categoryId=ALL&searchTerm=ALL&size=250", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ALL sentinels should be accepted, got %d", resp.StatusCode)
	}
}

func TestMalformedBodyIsValidationError(t *testing.T) {
	ta := newTestApp(t, nil)
	req := httptest.NewRequest("POST", "/api/v1/brands", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handlers.HeaderUserID, "ADMIN-1")
	req.Header.Set(handlers.HeaderTimeZone, "UTC")
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	expectCode(t, resp, domain.ErrValidation)
}

// The dashboard escapes the request id it echoes back.
func TestDashboardEscapesEchoedText(t *testing.T) {
	ta := newTestApp(t, nil)
	req := httptest.NewRequest("GET", "/dashboard/summary", nil)
	req.Header.Set("X-Request-ID", "<script>alert(1)</script>")
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, s)
	}
	if strings.Contains(s, "<script>alert(1)</script>") {
		t.Fatalf("found unescaped script tag in output")
	}
	if !strings.Contains(s, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("escaped script not found; output=%s", s)
	}
	if !strings.Contains(s, "10 Mar 2026") {
		t.Fatalf("dashboard date missing; output=%s", s)
	}
}
