// Package services implements HTTP clients for the two time tracking APIs.
//
// [TogglService] is the read-only source: workspaces, clients, projects and
// the paginated detailed report endpoint. [ClockifyService] is the
// destination: per-workspace list and create endpoints for clients,
// projects, tags and time entries.
//
// Both clients authenticate with static tokens (Toggl uses basic auth with
// token:api_token, Clockify uses the X-Api-Key header) and decode JSON
// responses into the types defined in internal/models.
package services
