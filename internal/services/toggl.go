// Toggl API client (source side, read only).
//
// Entity endpoints follow the v8 API, time entries come from the v2 reports
// API (paginated detailed report).
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/t2c/internal/models"
)

const (
	defaultTogglBaseURL   = "https://www.toggl.com/api/v8"
	defaultReportsBaseURL = "https://toggl.com/reports/api/v2"
)

// TogglWorkspace represents a workspace record from the Toggl API.
type TogglWorkspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DetailedReport is one page of the Toggl detailed report.
type DetailedReport struct {
	TotalCount int                     `json:"total_count"`
	PerPage    int                     `json:"per_page"`
	Data       []models.TogglTimeEntry `json:"data"`
}

// TotalPages derives the page count from the first page's pagination header
// fields.
func (r *DetailedReport) TotalPages() int {
	if r.PerPage <= 0 {
		return 0
	}
	return (r.TotalCount + r.PerPage - 1) / r.PerPage
}

// TogglService provides read access to the Toggl API.
type TogglService struct {
	baseURL    string
	reportsURL string
	apiToken   string
	email      string
	httpClient *http.Client
	now        func() time.Time
}

// TogglOpts contains configuration options for creating a TogglService.
type TogglOpts struct {
	APIToken   string
	Email      string // requester identity for the reports API (user_agent)
	BaseURL    string
	ReportsURL string
	HTTPClient *http.Client
}

// NewTogglService creates a new Toggl client with the given API token and
// requester email.
func NewTogglService(opts TogglOpts) (*TogglService, error) {
	if opts.APIToken == "" {
		return nil, fmt.Errorf("missing api_token in credentials")
	}
	if opts.Email == "" {
		return nil, fmt.Errorf("missing email for the reports user_agent parameter")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultTogglBaseURL
	}
	if opts.ReportsURL == "" {
		opts.ReportsURL = defaultReportsBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &TogglService{
		baseURL:    opts.BaseURL,
		reportsURL: opts.ReportsURL,
		apiToken:   opts.APIToken,
		email:      opts.Email,
		httpClient: opts.HTTPClient,
		now:        time.Now,
	}, nil
}

func (t *TogglService) Name() string {
	return "Toggl"
}

// doRequest performs an authenticated GET against a Toggl API and decodes the
// JSON response into result.
func (t *TogglService) doRequest(ctx context.Context, fullURL string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(t.apiToken + ":api_token"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("toggl API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Workspaces retrieves all workspaces visible to the configured token.
func (t *TogglService) Workspaces(ctx context.Context) ([]TogglWorkspace, error) {
	var workspaces []TogglWorkspace
	if err := t.doRequest(ctx, t.baseURL+"/workspaces", &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Clients retrieves all clients in a workspace.
func (t *TogglService) Clients(ctx context.Context, workspaceID int64) ([]models.TogglClient, error) {
	var clients []models.TogglClient
	endpoint := fmt.Sprintf("%s/workspaces/%d/clients", t.baseURL, workspaceID)
	if err := t.doRequest(ctx, endpoint, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Projects retrieves all projects in a workspace.
func (t *TogglService) Projects(ctx context.Context, workspaceID int64) ([]models.TogglProject, error) {
	var projects []models.TogglProject
	endpoint := fmt.Sprintf("%s/workspaces/%d/projects", t.baseURL, workspaceID)
	if err := t.doRequest(ctx, endpoint, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// DetailedReport retrieves one page of the detailed time entry report for a
// workspace, bounded to the given year.
func (t *TogglService) DetailedReport(ctx context.Context, workspaceID int64, year, page int) (*DetailedReport, error) {
	since, until := t.dateRangeForYear(year)

	query := url.Values{}
	query.Set("workspace_id", fmt.Sprintf("%d", workspaceID))
	query.Set("user_agent", t.email)
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("since", since)
	query.Set("until", until)

	var report DetailedReport
	endpoint := t.reportsURL + "/details?" + query.Encode()
	if err := t.doRequest(ctx, endpoint, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// dateRangeForYear returns the since/until range for a report year: the whole
// year for past years, January 1st through today for the current year.
func (t *TogglService) dateRangeForYear(year int) (since, until string) {
	now := t.now()
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if year == now.Year() {
		last = now
	}
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}
