package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// failingTransport simulates a transport level failure.
type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection failed")
}

func TestNewTogglService(t *testing.T) {
	tests := []struct {
		name    string
		opts    TogglOpts
		wantErr bool
	}{
		{"valid credentials", TogglOpts{APIToken: "token", Email: "me@example.com"}, false},
		{"missing token", TogglOpts{Email: "me@example.com"}, true},
		{"missing email", TogglOpts{APIToken: "token"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTogglService(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTogglService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTogglService_Workspaces(t *testing.T) {
	t.Run("authenticates with basic auth", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			want := "Basic " + base64.StdEncoding.EncodeToString([]byte("secret:api_token"))
			if got := r.Header.Get("Authorization"); got != want {
				t.Errorf("expected authorization %q, got %q", want, got)
			}
			if r.URL.Path != "/workspaces" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id": 77, "name": "Acme"}]`))
		}))
		defer server.Close()

		svc, err := NewTogglService(TogglOpts{APIToken: "secret", Email: "me@example.com", BaseURL: server.URL, ReportsURL: server.URL})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		workspaces, err := svc.Workspaces(context.Background())
		if err != nil {
			t.Fatalf("Workspaces failed: %v", err)
		}
		if len(workspaces) != 1 || workspaces[0].ID != 77 || workspaces[0].Name != "Acme" {
			t.Errorf("unexpected workspaces: %+v", workspaces)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		svc, _ := NewTogglService(TogglOpts{APIToken: "secret", Email: "me@example.com", BaseURL: server.URL})
		if _, err := svc.Workspaces(context.Background()); err == nil {
			t.Error("expected error for 403 response")
		}
	})

	t.Run("network error", func(t *testing.T) {
		client := &http.Client{Transport: failingTransport{}}
		svc, _ := NewTogglService(TogglOpts{APIToken: "secret", Email: "me@example.com", HTTPClient: client})
		if _, err := svc.Workspaces(context.Background()); err == nil {
			t.Error("expected error for failed request")
		}
	})
}

func TestTogglService_DetailedReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/details" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("workspace_id") != "77" {
			t.Errorf("unexpected workspace_id %s", query.Get("workspace_id"))
		}
		if query.Get("user_agent") != "me@example.com" {
			t.Errorf("expected email as user_agent, got %s", query.Get("user_agent"))
		}
		if query.Get("page") != "2" {
			t.Errorf("unexpected page %s", query.Get("page"))
		}
		if query.Get("since") != "2015-01-01" || query.Get("until") != "2015-12-31" {
			t.Errorf("unexpected range %s..%s", query.Get("since"), query.Get("until"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_count": 120, "per_page": 50, "data": [{"id": 1, "description": "work"}]}`))
	}))
	defer server.Close()

	svc, err := NewTogglService(TogglOpts{APIToken: "secret", Email: "me@example.com", BaseURL: server.URL, ReportsURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	report, err := svc.DetailedReport(context.Background(), 77, 2015, 2)
	if err != nil {
		t.Fatalf("DetailedReport failed: %v", err)
	}
	if report.TotalCount != 120 || report.PerPage != 50 {
		t.Errorf("unexpected pagination fields: %+v", report)
	}
	if got := report.TotalPages(); got != 3 {
		t.Errorf("expected 3 pages, got %d", got)
	}
	if len(report.Data) != 1 || report.Data[0].Description != "work" {
		t.Errorf("unexpected data: %+v", report.Data)
	}
}

func TestTogglService_DateRangeForYear(t *testing.T) {
	svc, _ := NewTogglService(TogglOpts{APIToken: "secret", Email: "me@example.com"})
	svc.now = func() time.Time {
		return time.Date(2017, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	t.Run("past year spans january through december", func(t *testing.T) {
		since, until := svc.dateRangeForYear(2015)
		if since != "2015-01-01" || until != "2015-12-31" {
			t.Errorf("unexpected range %s..%s", since, until)
		}
	})

	t.Run("current year ends today", func(t *testing.T) {
		since, until := svc.dateRangeForYear(2017)
		if since != "2017-01-01" || until != "2017-06-15" {
			t.Errorf("unexpected range %s..%s", since, until)
		}
	})
}

func TestDetailedReport_TotalPages(t *testing.T) {
	tests := []struct {
		name       string
		totalCount int
		perPage    int
		want       int
	}{
		{"exact multiple", 100, 50, 2},
		{"partial last page", 101, 50, 3},
		{"single page", 10, 50, 1},
		{"empty report", 0, 50, 0},
		{"missing per_page", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := DetailedReport{TotalCount: tt.totalCount, PerPage: tt.perPage}
			if got := report.TotalPages(); got != tt.want {
				t.Errorf("TotalPages() = %d, want %d", got, tt.want)
			}
		})
	}
}
