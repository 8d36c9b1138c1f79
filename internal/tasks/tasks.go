package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/shared"
	"golang.org/x/time/rate"
)

// Default pacing for the Clockify creation endpoints. Low-volume entity
// groups are created one at a time with a pause between requests; time
// entries are submitted in concurrent bursts with a longer cooldown.
const (
	DefaultBatchSize  = 25
	DefaultEntryPause = time.Second
	DefaultBatchPause = 5 * time.Second
	DefaultStepPause  = time.Second
)

// GroupResult summarizes one entity group's transfer within a workspace.
//
// Created counts successful creation calls, Skipped counts source records
// dropped because a reference never resolved (a time entry whose project is
// absent from the name index), Failed counts creation calls that errored.
// Failed entities are not retried within a run; re-running the transfer picks
// them up again because they are still absent by name.
type GroupResult struct {
	Group   models.EntityGroup `json:"group"`
	Created int                `json:"created"`
	Skipped int                `json:"skipped"`
	Failed  int                `json:"failed"`
}

// WorkspaceResult summarizes all four entity groups for one workspace.
type WorkspaceResult struct {
	Workspace models.Workspace `json:"workspace"`
	Groups    []GroupResult    `json:"groups"`
}

// TransferRunResult contains all data from a full transfer run.
type TransferRunResult struct {
	RunID      string            `json:"runId"`
	Workspaces []WorkspaceResult `json:"workspaces"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// Totals sums the group results across all workspaces.
func (r *TransferRunResult) Totals() GroupResult {
	var total GroupResult
	for _, ws := range r.Workspaces {
		for _, g := range ws.Groups {
			total.Created += g.Created
			total.Skipped += g.Skipped
			total.Failed += g.Failed
		}
	}
	return total
}

// Destination is the Clockify surface the engine drives. The concrete
// implementation lives in internal/services; tests substitute a fake.
type Destination interface {
	Workspaces(ctx context.Context) ([]models.ClockifyWorkspace, error)
	Entities(ctx context.Context, workspaceID string, group models.EntityGroup) ([]models.ClockifyEntity, error)
	CreateClient(ctx context.Context, workspaceID string, payload models.CreateClientRequest) (*models.ClockifyEntity, error)
	CreateProject(ctx context.Context, workspaceID string, payload models.CreateProjectRequest) (*models.ClockifyEntity, error)
	CreateTag(ctx context.Context, workspaceID string, payload models.CreateTagRequest) (*models.ClockifyEntity, error)
	CreateTimeEntry(ctx context.Context, workspaceID string, payload models.CreateTimeEntryRequest) (*models.ClockifyEntity, error)
}

// TransferOpts tunes the engine's batching and pacing.
type TransferOpts struct {
	BatchSize      int           // Time entries per batch (default 25)
	EntryPause     time.Duration // Pause between single entity creations (default 1s)
	BatchPause     time.Duration // Cooldown between time entry batches (default 5s)
	StepPause      time.Duration // Pause between the per-workspace steps (default 1s)
	WorkspaceNames []string      // Restrict the run to these workspace names; empty means every snapshot workspace
}

func (o TransferOpts) withDefaults() TransferOpts {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.EntryPause <= 0 {
		o.EntryPause = DefaultEntryPause
	}
	if o.BatchPause <= 0 {
		o.BatchPause = DefaultBatchPause
	}
	if o.StepPause <= 0 {
		o.StepPause = DefaultStepPause
	}
	return o
}

// pauseLimiter converts a fixed pause into a limiter that admits the first
// call immediately and spaces the rest. A zero pause disables pacing, which
// keeps tests fast.
func pauseLimiter(pause time.Duration) *rate.Limiter {
	if pause <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(pause), 1)
}

// TransferEngine reconciles a Toggl snapshot against a Clockify account.
//
// The engine holds per-group name indexes and a batch counter for the
// workspace currently being processed. That state is rebuilt at every
// workspace boundary and is not safe for concurrent use; workspaces are
// processed strictly one after another.
type TransferEngine struct {
	clockify   Destination
	snapshot   models.Snapshot
	opts       TransferOpts
	logger     *log.Logger
	indexes    map[models.EntityGroup]models.NameIndex
	batchIndex int
}

// NewTransferEngine creates a new TransferEngine over an immutable snapshot.
func NewTransferEngine(clockify Destination, snapshot models.Snapshot, opts TransferOpts, logger *log.Logger) *TransferEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TransferEngine{
		clockify: clockify,
		snapshot: snapshot,
		opts:     opts.withDefaults(),
		logger:   logger,
		indexes:  make(map[models.EntityGroup]models.NameIndex),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TransferEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Index returns the current name index for a group. The map is shared with
// the engine; callers must treat it as read only.
func (e *TransferEngine) Index(group models.EntityGroup) models.NameIndex {
	return e.indexes[group]
}

// LoadEntitiesByName fetches every destination entity of the group in the
// workspace and reduces the result into the engine's name→id index for that
// group. Later records silently overwrite earlier ones on duplicate names.
func (e *TransferEngine) LoadEntitiesByName(ctx context.Context, ws models.Workspace, group models.EntityGroup) error {
	entities, err := e.clockify.Entities(ctx, ws.RemoteID, group)
	if err != nil {
		return fmt.Errorf("%w: listing %s in %s: %v", shared.ErrAPIRequest, group, ws.Name, err)
	}

	index := make(models.NameIndex, len(entities))
	for _, entity := range entities {
		index[entity.Name] = entity.ID
	}
	e.indexes[group] = index
	return nil
}

// transferEntities creates every source record of a group whose name is
// missing from the destination. Records are submitted one at a time with a
// fixed pause between requests; individual failures are logged, counted and
// never retried. After the last submission the group's name index is
// reloaded so dependent groups see the new ids.
func transferEntities[S any](
	ctx context.Context,
	e *TransferEngine,
	progress chan<- ProgressUpdate,
	ws models.Workspace,
	group models.EntityGroup,
	records []S,
	name func(S) string,
	create func(context.Context, S) error,
) (GroupResult, error) {
	result := GroupResult{Group: group}
	existing := e.indexes[group]

	var toCreate []S
	for _, record := range records {
		if _, ok := existing[name(record)]; !ok {
			toCreate = append(toCreate, record)
		}
	}
	if len(toCreate) == 0 {
		return result, nil
	}

	limiter := pauseLimiter(e.opts.EntryPause)
	for i, record := range toCreate {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}
		e.sendProgress(progress, createEntitiesUpdate(i+1, len(toCreate), group, name(record)))

		if err := create(ctx, record); err != nil {
			// Best effort: the entity stays absent on the destination and a
			// later run will attempt it again.
			e.logger.Warn("creation failed", "workspace", ws.Name, "group", group.String(), "name", name(record), "error", err)
			result.Failed++
			continue
		}
		result.Created++
	}

	if err := e.LoadEntitiesByName(ctx, ws, group); err != nil {
		return result, err
	}
	e.sendProgress(progress, loadIndexUpdate(ws.Name, group, len(e.indexes[group])))
	return result, nil
}

// TransferClients creates the workspace's missing clients on Clockify.
func (e *TransferEngine) TransferClients(ctx context.Context, progress chan<- ProgressUpdate, ws models.Workspace) (GroupResult, error) {
	entities := e.snapshot[ws.Name]
	return transferEntities(ctx, e, progress, ws, models.Clients, entities.Clients,
		func(c models.TogglClient) string { return c.Name },
		func(ctx context.Context, c models.TogglClient) error {
			_, err := e.clockify.CreateClient(ctx, ws.RemoteID, models.CreateClientRequest{Name: c.Name})
			return err
		})
}

// TransferProjects creates the workspace's missing projects on Clockify.
//
// A project's client reference resolves through two hops: the Toggl client id
// becomes a client name via the snapshot, and the name becomes a Clockify id
// via the client index. Either hop failing yields an empty client reference,
// not an error.
func (e *TransferEngine) TransferProjects(ctx context.Context, progress chan<- ProgressUpdate, ws models.Workspace) (GroupResult, error) {
	entities := e.snapshot[ws.Name]

	clientNamesByID := make(map[int64]string, len(entities.Clients))
	for _, c := range entities.Clients {
		clientNamesByID[c.ID] = c.Name
	}

	return transferEntities(ctx, e, progress, ws, models.Projects, entities.Projects,
		func(p models.TogglProject) string { return p.Name },
		func(ctx context.Context, p models.TogglProject) error {
			payload := models.CreateProjectRequest{
				Name:     p.Name,
				ClientID: e.indexes[models.Clients][clientNamesByID[p.CID]],
				IsPublic: false,
				Estimate: "0",
				Color:    p.HexColor,
				Billable: p.Billable,
			}
			_, err := e.clockify.CreateProject(ctx, ws.RemoteID, payload)
			return err
		})
}

// TransferTags creates the workspace's missing tags on Clockify.
func (e *TransferEngine) TransferTags(ctx context.Context, progress chan<- ProgressUpdate, ws models.Workspace) (GroupResult, error) {
	entities := e.snapshot[ws.Name]
	return transferEntities(ctx, e, progress, ws, models.Tags, entities.Tags,
		func(t models.TogglTag) string { return t.Name },
		func(ctx context.Context, t models.TogglTag) error {
			_, err := e.clockify.CreateTag(ctx, ws.RemoteID, models.CreateTagRequest{Name: t.Name})
			return err
		})
}

// buildTimeEntryPayloads maps the workspace's source entries to creation
// payloads, dropping entries whose project name does not resolve to a
// Clockify project id. Unresolved tag names are dropped from an entry's tag
// list without dropping the entry.
func (e *TransferEngine) buildTimeEntryPayloads(ws models.Workspace) (valid []models.CreateTimeEntryRequest, skipped int) {
	projects := e.indexes[models.Projects]
	tags := e.indexes[models.Tags]

	for _, entry := range e.snapshot[ws.Name].TimeEntries {
		projectID := projects[entry.Project]
		if projectID == "" {
			skipped++
			continue
		}

		tagIDs := []string{}
		for _, tagName := range entry.Tags {
			if id := tags[tagName]; id != "" {
				tagIDs = append(tagIDs, id)
			}
		}

		valid = append(valid, models.CreateTimeEntryRequest{
			Start:       entry.Start,
			End:         entry.End,
			Billable:    entry.IsBillable,
			Description: entry.Description,
			ProjectID:   projectID,
			TaskID:      "",
			TagIDs:      tagIDs,
		})
	}
	return valid, skipped
}

// TransferTimeEntries submits the workspace's transferable time entries in
// fixed-size batches. All requests within a batch run concurrently and the
// engine waits for the whole batch before pausing and moving to the next one;
// there is no pause after the final batch. The batch counter restarts at
// every workspace.
func (e *TransferEngine) TransferTimeEntries(ctx context.Context, progress chan<- ProgressUpdate, ws models.Workspace) (GroupResult, error) {
	result := GroupResult{Group: models.TimeEntries}

	valid, skipped := e.buildTimeEntryPayloads(ws)
	result.Skipped = skipped
	if len(valid) == 0 {
		return result, nil
	}

	batchCount := (len(valid) + e.opts.BatchSize - 1) / e.opts.BatchSize
	limiter := pauseLimiter(e.opts.BatchPause)

	e.batchIndex = 0
	for e.batchIndex < batchCount {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		start := e.batchIndex * e.opts.BatchSize
		end := min(start+e.opts.BatchSize, len(valid))
		batch := valid[start:end]

		e.sendProgress(progress, createBatchUpdate(e.batchIndex+1, batchCount, len(batch)))

		var failed atomic.Int64
		var wg sync.WaitGroup
		for _, payload := range batch {
			wg.Add(1)
			go func(payload models.CreateTimeEntryRequest) {
				defer wg.Done()
				if _, err := e.clockify.CreateTimeEntry(ctx, ws.RemoteID, payload); err != nil {
					e.logger.Warn("time entry creation failed", "workspace", ws.Name, "start", payload.Start, "error", err)
					failed.Add(1)
				}
			}(payload)
		}
		wg.Wait()

		result.Failed += int(failed.Load())
		result.Created += len(batch) - int(failed.Load())
		e.batchIndex++
	}

	return result, nil
}

// matchWorkspaces intersects the destination's workspaces with the configured
// names (exact, case sensitive). An empty restriction list falls back to the
// snapshot's workspace names, so only workspaces present on both sides ever
// transfer.
func (e *TransferEngine) matchWorkspaces(destination []models.ClockifyWorkspace) []models.Workspace {
	wanted := make(map[string]bool, len(e.opts.WorkspaceNames))
	for _, name := range e.opts.WorkspaceNames {
		wanted[name] = true
	}

	var matched []models.Workspace
	for _, cw := range destination {
		if len(wanted) > 0 && !wanted[cw.Name] {
			continue
		}
		if _, ok := e.snapshot[cw.Name]; !ok {
			continue
		}
		matched = append(matched, models.Workspace{Name: cw.Name, RemoteID: cw.ID})
	}
	return matched
}

// Run performs the full snapshot → Clockify transfer.
//
// Workspaces are processed sequentially: per-group name indexes and the
// batch counter are rebuilt at each boundary, then clients, projects, tags
// and time entries transfer in that fixed order with a short pause between
// steps. Per-request failures never abort the run; fatal errors (workspace
// mismatch, index loads, context cancellation) do.
func (e *TransferEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*TransferRunResult, error) {
	if e.clockify == nil {
		return nil, fmt.Errorf("%w: Clockify service not initialized", shared.ErrServiceUnavailable)
	}
	if len(e.snapshot) == 0 {
		return nil, shared.ErrEmptySnapshot
	}

	destination, err := e.clockify.Workspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing Clockify workspaces: %v", shared.ErrAPIRequest, err)
	}

	matched := e.matchWorkspaces(destination)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: check that workspace names match exactly (matching is case sensitive)", shared.ErrNoMatchingWorkspace)
	}
	e.sendProgress(progress, matchWorkspacesUpdate(len(matched)))

	result := &TransferRunResult{
		RunID:     shared.GenerateID(),
		StartedAt: time.Now(),
	}

	steps := []struct {
		group    models.EntityGroup
		transfer func(context.Context, chan<- ProgressUpdate, models.Workspace) (GroupResult, error)
	}{
		{models.Clients, e.TransferClients},
		{models.Projects, e.TransferProjects},
		{models.Tags, e.TransferTags},
		{models.TimeEntries, e.TransferTimeEntries},
	}

	stepLimiter := pauseLimiter(e.opts.StepPause)
	for i, ws := range matched {
		e.indexes = make(map[models.EntityGroup]models.NameIndex)
		e.batchIndex = 0
		e.logger.Info("transferring workspace", "workspace", ws.Name, "clockify_id", ws.RemoteID)

		for _, group := range models.Groups {
			if err := stepLimiter.Wait(ctx); err != nil {
				return result, err
			}
			if err := e.LoadEntitiesByName(ctx, ws, group); err != nil {
				return result, err
			}
			e.sendProgress(progress, loadIndexUpdate(ws.Name, group, len(e.indexes[group])))
		}

		wsResult := WorkspaceResult{Workspace: ws}
		for _, step := range steps {
			if err := stepLimiter.Wait(ctx); err != nil {
				return result, err
			}
			groupResult, err := step.transfer(ctx, progress, ws)
			if err != nil {
				return result, err
			}
			wsResult.Groups = append(wsResult.Groups, groupResult)
		}

		result.Workspaces = append(result.Workspaces, wsResult)
		e.sendProgress(progress, workspaceCompleteUpdate(i+1, len(matched), ws.Name, wsResult))
	}

	result.FinishedAt = time.Now()
	return result, nil
}
