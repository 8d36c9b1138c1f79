package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/services"
	"github.com/desertthunder/t2c/internal/shared"
	tu "github.com/desertthunder/t2c/internal/testing"
)

func fastExtractOpts() ExtractOpts {
	return ExtractOpts{ReportPause: time.Millisecond}
}

func TestExtractor_BuildSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("paginates the detailed report", func(t *testing.T) {
		start := time.Date(2015, 3, 1, 8, 0, 0, 0, time.UTC)
		entriesByPage := map[int][]models.TogglTimeEntry{
			1: {
				{ID: 1, Description: "a", Start: start, Project: "Website"},
				{ID: 2, Description: "b", Start: start.Add(time.Hour), Project: "Website"},
			},
			2: {
				{ID: 3, Description: "c", Start: start.Add(2 * time.Hour), Tags: []string{"deep-work"}},
				{ID: 4, Description: "d", Start: start.Add(3 * time.Hour), Tags: []string{"admin", "deep-work"}},
			},
			3: {
				{ID: 5, Description: "e", Start: start.Add(4 * time.Hour)},
			},
		}

		var fetchedPages []int
		source := &tu.MockSource{
			WorkspacesFn: func(ctx context.Context) ([]services.TogglWorkspace, error) {
				return []services.TogglWorkspace{{ID: 77, Name: "Acme"}}, nil
			},
			ClientsFn: func(ctx context.Context, workspaceID int64) ([]models.TogglClient, error) {
				return []models.TogglClient{{ID: 11, WID: workspaceID, Name: "Initech"}}, nil
			},
			ProjectsFn: func(ctx context.Context, workspaceID int64) ([]models.TogglProject, error) {
				return []models.TogglProject{{ID: 21, WID: workspaceID, Name: "Website"}}, nil
			},
			ReportFn: func(ctx context.Context, workspaceID int64, year, page int) (*services.DetailedReport, error) {
				fetchedPages = append(fetchedPages, page)
				return &services.DetailedReport{TotalCount: 5, PerPage: 2, Data: entriesByPage[page]}, nil
			},
		}

		extractor := NewExtractor(source, fastExtractOpts(), nil)
		snapshot, err := extractor.BuildSnapshot(ctx, nil, []shared.WorkspaceConfig{{Name: "Acme", Years: []int{2015}}})
		if err != nil {
			t.Fatalf("BuildSnapshot failed: %v", err)
		}

		if len(fetchedPages) != 3 {
			t.Fatalf("expected 3 page fetches, got %v", fetchedPages)
		}

		entities, ok := snapshot["Acme"]
		if !ok {
			t.Fatal("expected snapshot keyed by workspace name")
		}
		if len(entities.TimeEntries) != 5 {
			t.Fatalf("expected 5 merged entries, got %d", len(entities.TimeEntries))
		}

		// Entries are sorted by start timestamp, newest first.
		for i := 1; i < len(entities.TimeEntries); i++ {
			if entities.TimeEntries[i].Start.After(entities.TimeEntries[i-1].Start) {
				t.Errorf("entries not sorted descending at index %d", i)
			}
		}

		if len(entities.Clients) != 1 || len(entities.Projects) != 1 {
			t.Errorf("expected 1 client and 1 project, got %d and %d", len(entities.Clients), len(entities.Projects))
		}
	})

	t.Run("derives deduplicated tags from entries", func(t *testing.T) {
		source := &tu.MockSource{
			WorkspacesFn: func(ctx context.Context) ([]services.TogglWorkspace, error) {
				return []services.TogglWorkspace{{ID: 77, Name: "Acme"}}, nil
			},
			ReportFn: func(ctx context.Context, workspaceID int64, year, page int) (*services.DetailedReport, error) {
				return &services.DetailedReport{TotalCount: 3, PerPage: 10, Data: []models.TogglTimeEntry{
					{ID: 1, Tags: []string{"writing", "admin"}},
					{ID: 2, Tags: []string{"admin", ""}},
					{ID: 3},
				}}, nil
			},
		}

		extractor := NewExtractor(source, fastExtractOpts(), nil)
		snapshot, err := extractor.BuildSnapshot(ctx, nil, []shared.WorkspaceConfig{{Name: "Acme", Years: []int{2015}}})
		if err != nil {
			t.Fatalf("BuildSnapshot failed: %v", err)
		}

		tags := snapshot["Acme"].Tags
		if len(tags) != 2 {
			t.Fatalf("expected 2 distinct tags, got %d", len(tags))
		}
		if tags[0].Name != "admin" || tags[1].Name != "writing" {
			t.Errorf("expected alphabetical tag order, got %v", tags)
		}
	})

	t.Run("merges entries across configured years", func(t *testing.T) {
		var fetchedYears []int
		source := &tu.MockSource{
			WorkspacesFn: func(ctx context.Context) ([]services.TogglWorkspace, error) {
				return []services.TogglWorkspace{{ID: 77, Name: "Acme"}}, nil
			},
			ReportFn: func(ctx context.Context, workspaceID int64, year, page int) (*services.DetailedReport, error) {
				fetchedYears = append(fetchedYears, year)
				return &services.DetailedReport{TotalCount: 1, PerPage: 10, Data: []models.TogglTimeEntry{
					{ID: int64(year), Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)},
				}}, nil
			},
		}

		extractor := NewExtractor(source, fastExtractOpts(), nil)
		snapshot, err := extractor.BuildSnapshot(ctx, nil, []shared.WorkspaceConfig{{Name: "Acme", Years: []int{2015, 2016}}})
		if err != nil {
			t.Fatalf("BuildSnapshot failed: %v", err)
		}

		if len(fetchedYears) != 2 {
			t.Fatalf("expected a report per year, got %v", fetchedYears)
		}
		entries := snapshot["Acme"].TimeEntries
		if len(entries) != 2 {
			t.Fatalf("expected 2 merged entries, got %d", len(entries))
		}
		if entries[0].ID != 2016 {
			t.Errorf("expected the 2016 entry first, got %d", entries[0].ID)
		}
	})

	t.Run("unknown workspace name is fatal", func(t *testing.T) {
		source := &tu.MockSource{
			WorkspacesFn: func(ctx context.Context) ([]services.TogglWorkspace, error) {
				return []services.TogglWorkspace{{ID: 77, Name: "Other"}}, nil
			},
		}

		extractor := NewExtractor(source, fastExtractOpts(), nil)
		_, err := extractor.BuildSnapshot(ctx, nil, []shared.WorkspaceConfig{{Name: "Acme", Years: []int{2015}}})
		if !errors.Is(err, shared.ErrWorkspaceNotFound) {
			t.Errorf("expected ErrWorkspaceNotFound, got %v", err)
		}
	})

	t.Run("report errors abort the extraction", func(t *testing.T) {
		source := &tu.MockSource{
			WorkspacesFn: func(ctx context.Context) ([]services.TogglWorkspace, error) {
				return []services.TogglWorkspace{{ID: 77, Name: "Acme"}}, nil
			},
			ReportFn: func(ctx context.Context, workspaceID int64, year, page int) (*services.DetailedReport, error) {
				return nil, errors.New("rate limited")
			},
		}

		extractor := NewExtractor(source, fastExtractOpts(), nil)
		_, err := extractor.BuildSnapshot(ctx, nil, []shared.WorkspaceConfig{{Name: "Acme", Years: []int{2015}}})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("nil source", func(t *testing.T) {
		extractor := NewExtractor(nil, fastExtractOpts(), nil)
		_, err := extractor.BuildSnapshot(ctx, nil, nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
