package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/t2c/internal/models"
)

func newTestClockify(t *testing.T, handler http.HandlerFunc) (*ClockifyService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewClockifyService(ClockifyOpts{APIToken: "secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, server
}

func TestNewClockifyService(t *testing.T) {
	if _, err := NewClockifyService(ClockifyOpts{}); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewClockifyService(ClockifyOpts{APIToken: "secret"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClockifyService_Workspaces(t *testing.T) {
	svc, _ := newTestClockify(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("expected X-Api-Key header, got %q", got)
		}
		if r.URL.Path != "/workspaces/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "cw1", "name": "Acme"}]`))
	})

	workspaces, err := svc.Workspaces(context.Background())
	if err != nil {
		t.Fatalf("Workspaces failed: %v", err)
	}
	if len(workspaces) != 1 || workspaces[0].ID != "cw1" {
		t.Errorf("unexpected workspaces: %+v", workspaces)
	}
}

func TestClockifyService_Entities(t *testing.T) {
	tests := []struct {
		name     string
		group    models.EntityGroup
		wantPath string
	}{
		{"clients", models.Clients, "/workspaces/cw1/clients/"},
		{"projects", models.Projects, "/workspaces/cw1/projects/"},
		{"tags", models.Tags, "/workspaces/cw1/tags/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestClockify(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.wantPath {
					t.Errorf("expected path %s, got %s", tt.wantPath, r.URL.Path)
				}
				if tt.group == models.Projects && r.URL.Query().Get("limit") != "200" {
					t.Errorf("expected project page limit of 200, got %q", r.URL.Query().Get("limit"))
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`[{"id": "e1", "name": "First"}, {"id": "e2", "name": "Second"}]`))
			})

			entities, err := svc.Entities(context.Background(), "cw1", tt.group)
			if err != nil {
				t.Fatalf("Entities failed: %v", err)
			}
			if len(entities) != 2 || entities[0].ID != "e1" || entities[1].Name != "Second" {
				t.Errorf("unexpected entities: %+v", entities)
			}
		})
	}

	t.Run("time entries skip the API", func(t *testing.T) {
		called := false
		svc, _ := newTestClockify(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		entities, err := svc.Entities(context.Background(), "cw1", models.TimeEntries)
		if err != nil {
			t.Fatalf("Entities failed: %v", err)
		}
		if entities != nil {
			t.Errorf("expected nil entities, got %+v", entities)
		}
		if called {
			t.Error("expected no API call for time entries")
		}
	})
}

func TestClockifyService_Create(t *testing.T) {
	t.Run("client", func(t *testing.T) {
		svc, _ := newTestClockify(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/workspaces/cw1/clients/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var payload models.CreateClientRequest
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload.Name != "Initech" {
				t.Errorf("unexpected payload name %q", payload.Name)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "c1", "name": "Initech"}`))
		})

		created, err := svc.CreateClient(context.Background(), "cw1", models.CreateClientRequest{Name: "Initech"})
		if err != nil {
			t.Fatalf("CreateClient failed: %v", err)
		}
		if created.ID != "c1" {
			t.Errorf("unexpected created entity: %+v", created)
		}
	})

	t.Run("project payload", func(t *testing.T) {
		svc, _ := newTestClockify(t, func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload["clientId"] != "c1" {
				t.Errorf("expected clientId c1, got %v", payload["clientId"])
			}
			if payload["isPublic"] != false {
				t.Errorf("expected isPublic false, got %v", payload["isPublic"])
			}
			if payload["estimate"] != "0" {
				t.Errorf("expected estimate \"0\", got %v", payload["estimate"])
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "p1", "name": "Website"}`))
		})

		_, err := svc.CreateProject(context.Background(), "cw1", models.CreateProjectRequest{
			Name:     "Website",
			ClientID: "c1",
			Estimate: "0",
			Color:    "#06aaf5",
			Billable: true,
		})
		if err != nil {
			t.Fatalf("CreateProject failed: %v", err)
		}
	})

	t.Run("time entry payload", func(t *testing.T) {
		start := time.Date(2016, 5, 1, 9, 0, 0, 0, time.UTC)
		svc, _ := newTestClockify(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/workspaces/cw1/timeEntries/" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload["projectId"] != "p1" {
				t.Errorf("expected projectId p1, got %v", payload["projectId"])
			}
			if payload["taskId"] != "" {
				t.Errorf("expected empty taskId, got %v", payload["taskId"])
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "te1"}`))
		})

		_, err := svc.CreateTimeEntry(context.Background(), "cw1", models.CreateTimeEntryRequest{
			Start:       start,
			End:         start.Add(time.Hour),
			Description: "work",
			ProjectID:   "p1",
			TagIDs:      []string{"t1"},
		})
		if err != nil {
			t.Fatalf("CreateTimeEntry failed: %v", err)
		}
	})

	t.Run("error status", func(t *testing.T) {
		svc, _ := newTestClockify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		if _, err := svc.CreateTag(context.Background(), "cw1", models.CreateTagRequest{Name: "x"}); err == nil {
			t.Error("expected error for 429 response")
		}
	})
}
