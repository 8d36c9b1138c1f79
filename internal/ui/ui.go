package ui

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	WorkspaceListView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	snapshot     models.Snapshot
	clockify     tasks.Destination
	opts         tasks.TransferOpts
	logger       *log.Logger
	width        int
	height       int
	wsList       list.Model
	selected     string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.TransferRunResult
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.yes, k.no},
		{k.restart, k.quit},
	}
}

// workspaceItem wraps a snapshot workspace to implement list.Item.
type workspaceItem struct {
	name     string
	entities models.WorkspaceEntities
}

func (i workspaceItem) FilterValue() string { return i.name }
func (i workspaceItem) Title() string       { return i.name }
func (i workspaceItem) Description() string {
	return fmt.Sprintf("%d clients • %d projects • %d tags • %d time entries",
		len(i.entities.Clients), len(i.entities.Projects), len(i.entities.Tags), len(i.entities.TimeEntries))
}

type progressUpdateMsg tasks.ProgressUpdate

type transferCompleteMsg struct {
	result *tasks.TransferRunResult
	err    error
}

// NewModel creates a new TUI model over a loaded snapshot.
func NewModel(ctx context.Context, snapshot models.Snapshot, clockify tasks.Destination, opts tasks.TransferOpts, logger *log.Logger) *Model {
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = workspaceItem{name: name, entities: snapshot[name]}
	}
	wsList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	wsList.Title = "Toggl Workspaces"

	return &Model{
		ctx:      ctx,
		view:     WorkspaceListView,
		snapshot: snapshot,
		clockify: clockify,
		opts:     opts,
		logger:   logger,
		wsList:   wsList,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init is a no-op; the workspace list is built from the snapshot up front.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.wsList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case WorkspaceListView:
			return m.handleWorkspaceListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case transferCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case WorkspaceListView:
		return m.renderWorkspaceList()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleWorkspaceListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.wsList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(workspaceItem); ok {
				m.selected = item.name
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.wsList, cmd = m.wsList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = WorkspaceListView
		return m, nil
	case "y":
		m.view = TransferView
		return m, m.startTransfer()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = WorkspaceListView
		m.selected = ""
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == WorkspaceListView {
		m.wsList, cmd = m.wsList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startTransfer() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	opts := m.opts
	opts.WorkspaceNames = []string{m.selected}
	engine := tasks.NewTransferEngine(m.clockify, m.snapshot, opts, m.logger)

	progressChan := m.progressChan
	go func() {
		result, err := engine.Run(m.ctx, progressChan)
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return transferCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return transferCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderWorkspaceList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.wsList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	entities := m.snapshot[m.selected]
	title := styles.title.Render(fmt.Sprintf("Transfer '%s' to Clockify?", m.selected))
	info := fmt.Sprintf("\nClients: %d\nProjects: %d\nTags: %d\nTime entries: %d\n",
		len(entities.Clients), len(entities.Projects), len(entities.Tags), len(entities.TimeEntries))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render(fmt.Sprintf("Transferring '%s'", m.selected))

	var phase string
	switch m.progress.Phase {
	case tasks.MatchWorkspaces:
		phase = "Matching workspaces..."
	case tasks.LoadIndex:
		phase = "Loading destination entities..."
	case tasks.CreateEntities:
		phase = fmt.Sprintf("Creating entities (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreateBatch:
		phase = fmt.Sprintf("Submitting batch %d/%d", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Transfer failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Transfer Complete!")

	var body string
	for _, ws := range m.result.Workspaces {
		body += fmt.Sprintf("\n%s", ws.Workspace.Name)
		for _, group := range ws.Groups {
			line := fmt.Sprintf("\n  %s: %d created, %d skipped, %d failed",
				group.Group, group.Created, group.Skipped, group.Failed)
			if group.Failed > 0 {
				line = styles.warn.Render(line)
			}
			body += line
		}
	}

	totals := m.result.Totals()
	body += fmt.Sprintf("\n\nTotals: %d created, %d skipped, %d failed\n", totals.Created, totals.Skipped, totals.Failed)

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, body, helpView)
}
