package tasks

import (
	"fmt"

	"github.com/desertthunder/t2c/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	MatchWorkspaces Phase = iota
	FetchEntities
	FetchReport
	LoadIndex
	CreateEntities
	CreateBatch
	WorkspaceComplete
)

func (p Phase) String() string {
	switch p {
	case MatchWorkspaces:
		return "match_workspaces"
	case FetchEntities:
		return "fetch_entities"
	case FetchReport:
		return "fetch_report"
	case LoadIndex:
		return "load_index"
	case CreateEntities:
		return "create_entities"
	case CreateBatch:
		return "create_batch"
	case WorkspaceComplete:
		return "workspace_complete"
	default:
		return ""
	}
}

func matchWorkspacesUpdate(matched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchWorkspaces,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Matched %d workspace(s) by name", matched),
	}
}

func fetchEntitiesUpdate(step, total int, workspace string, group models.EntityGroup) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntities,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s for workspace %s...", group, workspace),
	}
}

func fetchReportUpdate(page, total int, workspace string, year int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReport,
		Step:    page,
		Total:   total,
		Message: fmt.Sprintf("Fetching report page %d/%d for %s (%d)...", page, total, workspace, year),
	}
}

func loadIndexUpdate(workspace string, group models.EntityGroup, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadIndex,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d %s name(s) for workspace %s", size, group, workspace),
	}
}

func createEntitiesUpdate(step, total int, group models.EntityGroup, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateEntities,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating %s %d/%d (%s)...", group, step, total, name),
	}
}

func createBatchUpdate(batch, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateBatch,
		Step:    batch,
		Total:   total,
		Message: fmt.Sprintf("Submitting time entry batch %d/%d (%d entries)...", batch, total, size),
	}
}

func workspaceCompleteUpdate(step, total int, workspace string, result WorkspaceResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WorkspaceComplete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Workspace %s complete", workspace),
		Data:    result,
	}
}
