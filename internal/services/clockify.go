// Clockify API client (destination side).
//
// List and create endpoints are per workspace; every request authenticates
// with the X-Api-Key header.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/t2c/internal/models"
)

const defaultClockifyBaseURL = "https://api.clockify.me/api"

// projectPageLimit is passed to the project list endpoint, the only group
// endpoint that supports a page size parameter.
const projectPageLimit = 200

// ClockifyService provides access to the Clockify API.
type ClockifyService struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// ClockifyOpts contains configuration options for creating a ClockifyService.
type ClockifyOpts struct {
	APIToken   string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClockifyService creates a new Clockify client with the given API token.
func NewClockifyService(opts ClockifyOpts) (*ClockifyService, error) {
	if opts.APIToken == "" {
		return nil, fmt.Errorf("missing api_token in credentials")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultClockifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &ClockifyService{
		baseURL:    opts.BaseURL,
		apiToken:   opts.APIToken,
		httpClient: opts.HTTPClient,
	}, nil
}

func (c *ClockifyService) Name() string {
	return "Clockify"
}

// doRequest performs an authenticated HTTP request to the Clockify API.
// A non-nil body is encoded as JSON.
func (c *ClockifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := c.baseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("clockify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Workspaces retrieves all workspaces visible to the configured token.
func (c *ClockifyService) Workspaces(ctx context.Context) ([]models.ClockifyWorkspace, error) {
	var workspaces []models.ClockifyWorkspace
	if err := c.doRequest(ctx, http.MethodGet, "/workspaces/", nil, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Entities retrieves all records of one entity group in a workspace as
// id/name pairs. Time entries are not name addressable and always yield an
// empty result without an API call.
func (c *ClockifyService) Entities(ctx context.Context, workspaceID string, group models.EntityGroup) ([]models.ClockifyEntity, error) {
	var endpoint string
	switch group {
	case models.Clients:
		endpoint = fmt.Sprintf("/workspaces/%s/clients/", workspaceID)
	case models.Projects:
		endpoint = fmt.Sprintf("/workspaces/%s/projects/?limit=%d", workspaceID, projectPageLimit)
	case models.Tags:
		endpoint = fmt.Sprintf("/workspaces/%s/tags/", workspaceID)
	case models.TimeEntries:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown entity group %d", group)
	}

	var entities []models.ClockifyEntity
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// CreateClient creates a client in a workspace and returns the created record.
func (c *ClockifyService) CreateClient(ctx context.Context, workspaceID string, payload models.CreateClientRequest) (*models.ClockifyEntity, error) {
	var created models.ClockifyEntity
	endpoint := fmt.Sprintf("/workspaces/%s/clients/", workspaceID)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateProject creates a project in a workspace and returns the created record.
func (c *ClockifyService) CreateProject(ctx context.Context, workspaceID string, payload models.CreateProjectRequest) (*models.ClockifyEntity, error) {
	var created models.ClockifyEntity
	endpoint := fmt.Sprintf("/workspaces/%s/projects/", workspaceID)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateTag creates a tag in a workspace and returns the created record.
func (c *ClockifyService) CreateTag(ctx context.Context, workspaceID string, payload models.CreateTagRequest) (*models.ClockifyEntity, error) {
	var created models.ClockifyEntity
	endpoint := fmt.Sprintf("/workspaces/%s/tags/", workspaceID)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateTimeEntry creates a time entry in a workspace.
func (c *ClockifyService) CreateTimeEntry(ctx context.Context, workspaceID string, payload models.CreateTimeEntryRequest) (*models.ClockifyEntity, error) {
	var created models.ClockifyEntity
	endpoint := fmt.Sprintf("/workspaces/%s/timeEntries/", workspaceID)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
