// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for workspace migration:
//  1. [WorkspaceListView] : Browse the snapshot's workspaces
//  2. [ConfirmView] : Confirm the transfer for the selected workspace
//  3. [TransferView] : Monitor real-time progress updates
//  4. [ResultView] : Display per-group created/skipped/failed counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the TransferEngine, providing non-blocking status reporting during transfers.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
