// Package tasks implements the migration operations between Toggl and Clockify.
//
// [Extractor] pulls workspaces, clients, projects and time entries out of
// Toggl into a [models.Snapshot]. [TransferEngine] reconciles a snapshot
// against the current state of a Clockify account: it loads name→id lookup
// tables per entity group, creates whatever is missing in dependency order
// (clients, projects, tags, time entries) and paces every creation request
// against the destination's rate limits.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks
