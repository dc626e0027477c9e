package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"dealcore/internal/clients/clientstest"
	"dealcore/internal/clock"
	"dealcore/internal/config"
	"dealcore/internal/http/handlers"
	"dealcore/internal/repos"
)

type testApp struct {
	app      *fiber.App
	deps     *handlers.Deps
	clock    *clock.FakeClock
	profiles *clientstest.Profiles
	notifier *clientstest.Notifier
}

// newTestApp wires the real routes against in-memory sqlite and fake
// downstream services. writeLimit may be nil.
func newTestApp(t *testing.T, writeLimit fiber.Handler) *testApp {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ta := &testApp{
		clock:    clock.NewFake(time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)),
		profiles: clientstest.NewProfiles(),
		notifier: &clientstest.Notifier{},
	}
	ta.profiles.AddMerchant("M-1", "Pizza Palace")
	ta.profiles.AddBank("B-1", "City Bank")

	cfg := config.Config{
		SchedulerTimezone:  "Asia/Dhaka",
		DealsOfTheDayLimit: 5,
		ReconcilePageSize:  10,
		AdminUserIDs:       []string{"ADMIN-1"},
	}
	ta.deps = handlers.NewDeps(db, cfg, handlers.External{
		Profiles:  ta.profiles,
		Notifier:  ta.notifier,
		Analytics: &clientstest.Analytics{},
		Clock:     ta.clock,
	})

	engine := html.New("../../web/templates", ".html")
	ta.app = fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	ta.app.Server().MaxRequestBodySize = 1 << 20
	ta.app.Use(requestid.New())
	ta.deps.Routes(ta.app.Group("/api/v1"), writeLimit)
	ta.app.Get("/dashboard/summary", ta.deps.ReportHandler.Dashboard)
	t.Cleanup(ta.deps.Approval.Wait)
	return ta
}

var writerHeaders = map[string]string{
	handlers.HeaderUserID:    "M-1",
	handlers.HeaderTimeZone:  "Asia/Dhaka",
	handlers.HeaderAuthToken: "tok",
}

func (ta *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

type errorEnvelope struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	ErrorCode int    `json:"errorCode"`
}
