// Package models defines domain entities and persistence interfaces for the t2c migration tool.
//
// The package contains three categories of types:
//
// 1. Source records: raw Toggl data as it appears in the JSON snapshot
//   - [TogglClient], [TogglProject], [TogglTag], [TogglTimeEntry]
//   - [WorkspaceEntities] : all entities extracted for one workspace
//   - [Snapshot] : the full extracted dataset keyed by workspace name
//
// 2. Destination records: Clockify DTOs and creation payloads
//   - [ClockifyWorkspace], [ClockifyEntity]
//   - [CreateClientRequest], [CreateProjectRequest], [CreateTagRequest], [CreateTimeEntryRequest]
//
// 3. Persistent entities: database-backed models with lifecycle management
//   - [RunRecord] : one persisted transfer run summary per workspace and entity group
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
