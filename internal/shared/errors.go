package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")
	ErrWorkspaceNotFound   = fmt.Errorf("workspace not found")
	ErrNoMatchingWorkspace = fmt.Errorf("no configured workspace matches a Clockify workspace")

	// Snapshot errors
	ErrSnapshotNotFound = fmt.Errorf("snapshot file not found")
	ErrEmptySnapshot    = fmt.Errorf("snapshot contains no workspaces")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
