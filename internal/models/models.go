package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the migration tool.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// EntityGroup enumerates the transferable entity kinds.
//
// The declaration order is the dependency order: projects reference client
// ids and time entries reference project and tag ids, so groups must be
// created in this sequence.
type EntityGroup int

const (
	Clients EntityGroup = iota
	Projects
	Tags
	TimeEntries
)

// Groups lists all entity groups in creation order.
var Groups = []EntityGroup{Clients, Projects, Tags, TimeEntries}

func (g EntityGroup) String() string {
	switch g {
	case Clients:
		return "clients"
	case Projects:
		return "projects"
	case Tags:
		return "tags"
	case TimeEntries:
		return "timeEntries"
	default:
		return ""
	}
}

// Workspace is a matched workspace handle: the name shared by both services,
// the Clockify-native id, and the years configured for source extraction.
//
// Identity is by Name. RemoteID differs between Toggl and Clockify and must
// never be assumed equal across services.
type Workspace struct {
	Name     string `json:"name"`
	RemoteID string `json:"remoteId"`
	Years    []int  `json:"years,omitempty"`
}

// NameIndex maps entity names to Clockify-native identifiers for one
// (workspace, entity group) pair.
type NameIndex map[string]string

// TogglClient is a client record from the Toggl API.
type TogglClient struct {
	ID   int64  `json:"id"`
	WID  int64  `json:"wid"`
	Name string `json:"name"`
}

// TogglProject is a project record from the Toggl API.
type TogglProject struct {
	ID        int64  `json:"id"`
	WID       int64  `json:"wid"`
	CID       int64  `json:"cid,omitempty"`
	Name      string `json:"name"`
	Billable  bool   `json:"billable"`
	IsPrivate bool   `json:"is_private"`
	Active    bool   `json:"active"`
	HexColor  string `json:"hex_color"`
}

// TogglTag is a tag name referenced by time entries. Toggl's detailed report
// carries tags only as name lists, so the extractor derives these records by
// deduplicating every entry's tag list.
type TogglTag struct {
	Name string `json:"name"`
}

// TogglTimeEntry is one row of the Toggl detailed report.
type TogglTimeEntry struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Dur         int64     `json:"dur"`
	User        string    `json:"user"`
	Client      string    `json:"client,omitempty"`
	Project     string    `json:"project"`
	IsBillable  bool      `json:"is_billable"`
	Tags        []string  `json:"tags"`
}

// WorkspaceEntities holds everything extracted from one Toggl workspace.
type WorkspaceEntities struct {
	Clients     []TogglClient    `json:"clients"`
	Projects    []TogglProject   `json:"projects"`
	Tags        []TogglTag       `json:"tags"`
	TimeEntries []TogglTimeEntry `json:"timeEntries"`
}

// Snapshot is the full extracted Toggl dataset keyed by workspace name.
//
// A snapshot is read once at the start of a transfer run and held immutable
// for its duration; it is the sole hand-off artifact between the extraction
// and transfer phases.
type Snapshot map[string]WorkspaceEntities

// ClockifyWorkspace is a workspace record from the Clockify API.
type ClockifyWorkspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClockifyEntity is the common shape of Clockify list responses for clients,
// projects and tags: a destination-native id plus a name.
type ClockifyEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateClientRequest is the payload for the Clockify client creation endpoint.
type CreateClientRequest struct {
	Name string `json:"name"`
}

// CreateProjectRequest is the payload for the Clockify project creation endpoint.
type CreateProjectRequest struct {
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
	IsPublic bool   `json:"isPublic"`
	Estimate string `json:"estimate"`
	Color    string `json:"color"`
	Billable bool   `json:"billable"`
}

// CreateTagRequest is the payload for the Clockify tag creation endpoint.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// CreateTimeEntryRequest is the payload for the Clockify time entry creation endpoint.
type CreateTimeEntryRequest struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Billable    bool      `json:"billable"`
	Description string    `json:"description"`
	ProjectID   string    `json:"projectId"`
	TaskID      string    `json:"taskId"`
	TagIDs      []string  `json:"tagIds"`
}

// RunRecord is a persisted summary of one (workspace, entity group) transfer
// step: how many entities were created, skipped because a reference never
// resolved, or lost to a failed creation call.
type RunRecord struct {
	RecordID  string
	RunID     string
	Workspace string
	Group     string
	Created   int
	Skipped   int
	Failed    int
	StartedAt time.Time
	Updated   time.Time
}

func (r *RunRecord) ID() string           { return r.RecordID }
func (r *RunRecord) CreatedAt() time.Time { return r.StartedAt }
func (r *RunRecord) UpdatedAt() time.Time { return r.Updated }

// SetID assigns the record identifier, normally a generated UUID.
func (r *RunRecord) SetID(id string) { r.RecordID = id }

// Validate checks if the record's data is valid.
func (r *RunRecord) Validate() error {
	if r.RecordID == "" {
		return fmt.Errorf("run record is missing an id")
	}
	if r.RunID == "" {
		return fmt.Errorf("run record is missing a run id")
	}
	if r.Workspace == "" {
		return fmt.Errorf("run record is missing a workspace name")
	}
	if r.Group == "" {
		return fmt.Errorf("run record is missing an entity group")
	}
	if r.Created < 0 || r.Skipped < 0 || r.Failed < 0 {
		return fmt.Errorf("run record counts must not be negative")
	}
	return nil
}
