package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcore/internal/domain"
)

func profileServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/merchants/M-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("Auth-Token"))
		_ = json.NewEncoder(w).Encode(domain.Profile{MerchantID: "M-1", Name: "Pizza Palace", Active: true})
	})
	mux.HandleFunc("/merchants/bulk", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			IDs        []string `json:"ids"`
			ToUserType string   `json:"toUserType"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		out := map[string]domain.Profile{}
		for _, id := range in.IDs {
			if id != "M-9" {
				out[id] = domain.Profile{MerchantID: id, Name: in.ToUserType + " " + id}
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/banks/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such bank"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad user", http.StatusBadRequest)
	})
	mux.HandleFunc("/summary/today", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProfileClientDecodesProfiles(t *testing.T) {
	c := NewProfileClient(profileServer(t).URL, 2*time.Second)

	p, err := c.MerchantByID(context.Background(), "tok", "M-1")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Palace", p.Name)
	assert.True(t, p.Active)

	bulk, err := c.BulkMerchantInfo(context.Background(), []string{"M-1", "M-9"}, domain.OwnerMerchant)
	require.NoError(t, err)
	assert.Len(t, bulk, 1)
	assert.Equal(t, "MERCHANT M-1", bulk["M-1"].Name)
}

func TestProfileClientMapsRejections(t *testing.T) {
	c := NewProfileClient(profileServer(t).URL, 2*time.Second)

	_, err := c.BankByID(context.Background(), "tok", "B-9")
	assert.ErrorIs(t, err, domain.ErrInvalidBank)

	_, err = c.UserByID(context.Background(), "tok", "U-9")
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = c.TodaySummary(context.Background(), "U-1", "MERCHANT")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "profile", se.Service)
}

func TestClientHonoursCancelledContext(t *testing.T) {
	c := NewProfileClient(profileServer(t).URL, 2*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.MerchantByID(ctx, "tok", "M-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotificationAndAnalyticsClients(t *testing.T) {
	var mail map[string]string
	var report ReportRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/send-mail", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&mail))
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/send-sms", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/reports:run", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&report))
		_, _ = w.Write([]byte(`{"rows":[{"dimensions":{"dealId":"D-1"},"metrics":{"eventCount":12}}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	n := NewNotificationClient(srv.URL, time.Second)
	require.NoError(t, n.SendMail(context.Background(), "a@b.example", "hi", "body"))
	assert.Equal(t, "a@b.example", mail["to"])
	assert.Error(t, n.SendSMS(context.Background(), "01711000000", "hi"))

	a := NewAnalyticsClient(srv.URL, time.Second)
	rows, err := a.RunReport(context.Background(), ReportRequest{StartDate: "2026-03-01", EndDate: "2026-03-10", Limit: 5})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 12, rows[0].Metrics["eventCount"])
	assert.Equal(t, 5, report.Limit)
}
