// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/services"
)

// MockSource is a test double for [tasks.Source]. Nil function fields return
// zero values.
type MockSource struct {
	WorkspacesFn func(ctx context.Context) ([]services.TogglWorkspace, error)
	ClientsFn    func(ctx context.Context, workspaceID int64) ([]models.TogglClient, error)
	ProjectsFn   func(ctx context.Context, workspaceID int64) ([]models.TogglProject, error)
	ReportFn     func(ctx context.Context, workspaceID int64, year, page int) (*services.DetailedReport, error)
}

func (m *MockSource) Workspaces(ctx context.Context) ([]services.TogglWorkspace, error) {
	if m.WorkspacesFn == nil {
		return nil, nil
	}
	return m.WorkspacesFn(ctx)
}

func (m *MockSource) Clients(ctx context.Context, workspaceID int64) ([]models.TogglClient, error) {
	if m.ClientsFn == nil {
		return nil, nil
	}
	return m.ClientsFn(ctx, workspaceID)
}

func (m *MockSource) Projects(ctx context.Context, workspaceID int64) ([]models.TogglProject, error) {
	if m.ProjectsFn == nil {
		return nil, nil
	}
	return m.ProjectsFn(ctx, workspaceID)
}

func (m *MockSource) DetailedReport(ctx context.Context, workspaceID int64, year, page int) (*services.DetailedReport, error) {
	if m.ReportFn == nil {
		return &services.DetailedReport{}, nil
	}
	return m.ReportFn(ctx, workspaceID, year, page)
}

// MockDestination is an in-memory test double for [tasks.Destination].
// Created entities become visible to subsequent Entities calls, mirroring how
// the real API behaves between index reloads.
type MockDestination struct {
	mu            sync.Mutex
	WorkspaceList []models.ClockifyWorkspace
	Existing      map[string]map[models.EntityGroup][]models.ClockifyEntity
	FailNames     map[string]bool // creation requests with these names (or descriptions) error
	WorkspacesErr error
	ListErr       error
	Projects      []models.CreateProjectRequest
	TimeEntries   []models.CreateTimeEntryRequest
	Calls         map[models.EntityGroup]int
	nextID        int
}

func NewMockDestination(workspaces ...models.ClockifyWorkspace) *MockDestination {
	return &MockDestination{
		WorkspaceList: workspaces,
		Existing:      make(map[string]map[models.EntityGroup][]models.ClockifyEntity),
		FailNames:     make(map[string]bool),
		Calls:         make(map[models.EntityGroup]int),
	}
}

// Seed registers pre-existing destination entities by name.
func (m *MockDestination) Seed(workspaceID string, group models.EntityGroup, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		m.nextID++
		m.store(workspaceID, group, models.ClockifyEntity{
			ID:   fmt.Sprintf("%s-%d", group, m.nextID),
			Name: name,
		})
	}
}

func (m *MockDestination) store(workspaceID string, group models.EntityGroup, entity models.ClockifyEntity) {
	if m.Existing[workspaceID] == nil {
		m.Existing[workspaceID] = make(map[models.EntityGroup][]models.ClockifyEntity)
	}
	m.Existing[workspaceID][group] = append(m.Existing[workspaceID][group], entity)
}

func (m *MockDestination) Workspaces(ctx context.Context) ([]models.ClockifyWorkspace, error) {
	if m.WorkspacesErr != nil {
		return nil, m.WorkspacesErr
	}
	return m.WorkspaceList, nil
}

func (m *MockDestination) Entities(ctx context.Context, workspaceID string, group models.EntityGroup) ([]models.ClockifyEntity, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ClockifyEntity(nil), m.Existing[workspaceID][group]...), nil
}

func (m *MockDestination) create(workspaceID string, group models.EntityGroup, name string) (*models.ClockifyEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[group]++
	if m.FailNames[name] {
		return nil, errors.New("creation rejected")
	}
	m.nextID++
	entity := models.ClockifyEntity{ID: fmt.Sprintf("%s-%d", group, m.nextID), Name: name}
	m.store(workspaceID, group, entity)
	return &entity, nil
}

func (m *MockDestination) CreateClient(ctx context.Context, workspaceID string, payload models.CreateClientRequest) (*models.ClockifyEntity, error) {
	return m.create(workspaceID, models.Clients, payload.Name)
}

func (m *MockDestination) CreateProject(ctx context.Context, workspaceID string, payload models.CreateProjectRequest) (*models.ClockifyEntity, error) {
	entity, err := m.create(workspaceID, models.Projects, payload.Name)
	if err == nil {
		m.mu.Lock()
		m.Projects = append(m.Projects, payload)
		m.mu.Unlock()
	}
	return entity, err
}

func (m *MockDestination) CreateTag(ctx context.Context, workspaceID string, payload models.CreateTagRequest) (*models.ClockifyEntity, error) {
	return m.create(workspaceID, models.Tags, payload.Name)
}

func (m *MockDestination) CreateTimeEntry(ctx context.Context, workspaceID string, payload models.CreateTimeEntryRequest) (*models.ClockifyEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[models.TimeEntries]++
	if m.FailNames[payload.Description] {
		return nil, errors.New("creation rejected")
	}
	m.TimeEntries = append(m.TimeEntries, payload)
	m.nextID++
	return &models.ClockifyEntity{ID: fmt.Sprintf("entry-%d", m.nextID)}, nil
}

// Created returns the names present for a group in a workspace, in insertion order.
func (m *MockDestination) Created(workspaceID string, group models.EntityGroup) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, entity := range m.Existing[workspaceID][group] {
		names = append(names, entity.Name)
	}
	return names
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
