package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/services"
	"github.com/desertthunder/t2c/internal/shared"
)

// DefaultReportPause spaces the detailed report page fetches. The reports
// API tolerates roughly one request per second.
const DefaultReportPause = time.Second

// Source is the Toggl surface the extractor reads from. The concrete
// implementation lives in internal/services; tests substitute a fake.
type Source interface {
	Workspaces(ctx context.Context) ([]services.TogglWorkspace, error)
	Clients(ctx context.Context, workspaceID int64) ([]models.TogglClient, error)
	Projects(ctx context.Context, workspaceID int64) ([]models.TogglProject, error)
	DetailedReport(ctx context.Context, workspaceID int64, year, page int) (*services.DetailedReport, error)
}

// ExtractOpts tunes the extractor.
type ExtractOpts struct {
	ReportPause time.Duration // Pause between report page fetches (default 1s)
}

// Extractor pulls the configured workspaces out of Toggl and collates the
// result into a [models.Snapshot].
type Extractor struct {
	toggl  Source
	opts   ExtractOpts
	logger *log.Logger
}

// NewExtractor creates a new Extractor over a Toggl client.
func NewExtractor(toggl Source, opts ExtractOpts, logger *log.Logger) *Extractor {
	if opts.ReportPause <= 0 {
		opts.ReportPause = DefaultReportPause
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Extractor{toggl: toggl, opts: opts, logger: logger}
}

func (x *Extractor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// BuildSnapshot fetches clients, projects and time entries for every
// configured workspace that exists on Toggl and returns them keyed by
// workspace name. Unlike the transfer phase, extraction errors are fatal: a
// partial snapshot would silently narrow the transfer.
func (x *Extractor) BuildSnapshot(ctx context.Context, progress chan<- ProgressUpdate, workspaces []shared.WorkspaceConfig) (models.Snapshot, error) {
	if x.toggl == nil {
		return nil, fmt.Errorf("%w: Toggl service not initialized", shared.ErrServiceUnavailable)
	}

	remote, err := x.toggl.Workspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing Toggl workspaces: %v", shared.ErrAPIRequest, err)
	}

	// Pair configured workspaces with their Toggl ids by exact name.
	type sourceWorkspace struct {
		ws models.Workspace
		id int64
	}
	matched := make([]sourceWorkspace, 0, len(workspaces))
	for _, rw := range remote {
		for _, cw := range workspaces {
			if cw.Name == rw.Name {
				matched = append(matched, sourceWorkspace{
					ws: models.Workspace{
						Name:     rw.Name,
						RemoteID: fmt.Sprintf("%d", rw.ID),
						Years:    cw.Years,
					},
					id: rw.ID,
				})
			}
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: none of the configured workspaces exist on Toggl", shared.ErrWorkspaceNotFound)
	}
	x.sendProgress(progress, matchWorkspacesUpdate(len(matched)))

	snapshot := make(models.Snapshot, len(matched))
	for _, src := range matched {
		ws, id := src.ws, src.id

		x.sendProgress(progress, fetchEntitiesUpdate(1, 2, ws.Name, models.Clients))
		clients, err := x.toggl.Clients(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching clients for %s: %v", shared.ErrAPIRequest, ws.Name, err)
		}

		x.sendProgress(progress, fetchEntitiesUpdate(2, 2, ws.Name, models.Projects))
		projects, err := x.toggl.Projects(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching projects for %s: %v", shared.ErrAPIRequest, ws.Name, err)
		}

		entries, err := x.timeEntriesForWorkspace(ctx, progress, ws, id)
		if err != nil {
			return nil, err
		}

		snapshot[ws.Name] = models.WorkspaceEntities{
			Clients:     clients,
			Projects:    projects,
			Tags:        deriveTags(entries),
			TimeEntries: entries,
		}
		x.logger.Info("extracted workspace",
			"workspace", ws.Name,
			"clients", len(clients),
			"projects", len(projects),
			"entries", len(entries))
	}

	return snapshot, nil
}

// timeEntriesForWorkspace fetches the detailed report for every configured
// year, merges the pages and sorts the result by start timestamp descending.
//
// Page 1 discovers the pagination shape (per_page and total_count); the
// remaining pages are fetched sequentially with a fixed pacing delay because
// the reports endpoint is rate limited.
func (x *Extractor) timeEntriesForWorkspace(ctx context.Context, progress chan<- ProgressUpdate, ws models.Workspace, id int64) ([]models.TogglTimeEntry, error) {
	limiter := pauseLimiter(x.opts.ReportPause)

	var merged []models.TogglTimeEntry
	for _, year := range ws.Years {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		first, err := x.toggl.DetailedReport(ctx, id, year, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching report for %s (%d): %v", shared.ErrAPIRequest, ws.Name, year, err)
		}

		totalPages := first.TotalPages()
		x.sendProgress(progress, fetchReportUpdate(1, totalPages, ws.Name, year))
		merged = append(merged, first.Data...)

		for page := 2; page <= totalPages; page++ {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
			report, err := x.toggl.DetailedReport(ctx, id, year, page)
			if err != nil {
				return nil, fmt.Errorf("%w: fetching report page %d for %s (%d): %v", shared.ErrAPIRequest, page, ws.Name, year, err)
			}
			x.sendProgress(progress, fetchReportUpdate(page, totalPages, ws.Name, year))
			merged = append(merged, report.Data...)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.After(merged[j].Start)
	})
	return merged, nil
}

// deriveTags flattens and deduplicates the tag names referenced across all
// entries. Toggl's detailed report does not expose tags as a listable
// entity, so the entries themselves are the source of truth.
func deriveTags(entries []models.TogglTimeEntry) []models.TogglTag {
	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		for _, name := range entry.Tags {
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	tags := make([]models.TogglTag, 0, len(names))
	for _, name := range names {
		tags = append(tags, models.TogglTag{Name: name})
	}
	return tags
}
