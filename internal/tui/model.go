// Package tui is the interactive terminal view over one query controller.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thushan/runstatus/internal/controller"
	"github.com/thushan/runstatus/internal/core/domain"
	"github.com/thushan/runstatus/internal/render"
	"github.com/thushan/runstatus/pkg/format"
)

// Controller is the part of the query controller the view drives
type Controller interface {
	Resource() string
	Snapshot() domain.Snapshot
	Update(ctx context.Context, ch controller.Change) error
	Refresh(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan controller.Event, func())
}

const (
	fieldID = iota
	fieldDataProvider
	fieldReferenceTime
	fieldLimit
	fieldTable
)

const (
	tickInterval = time.Second
	chromeHeight = 7
	minTableRows = 3
	inputWidth   = 24
)

var fieldLabels = [...]string{"id", "data provider", "reference time", "limit"}

// Model is the bubbletea model for the interactive view
type Model struct {
	ctx         context.Context
	ctrl        Controller
	now         func() time.Time
	events      <-chan controller.Event
	unsubscribe func()
	inputs      []textinput.Model
	columns     []render.Column
	snap        domain.Snapshot
	inputErr    string
	table       table.Model
	focus       int
	width       int
	height      int
	busy        bool
	quitting    bool
}

type Options struct {
	Now     func() time.Time
	Columns []render.Column
	Width   int
	Height  int
}

func New(ctx context.Context, ctrl Controller, opts Options) *Model {
	columns := opts.Columns
	if len(columns) == 0 {
		// the defaults always parse
		columns, _ = render.ParseColumns(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	snap := ctrl.Snapshot()
	events, unsubscribe := ctrl.Subscribe(ctx)

	m := &Model{
		ctx:         ctx,
		ctrl:        ctrl,
		now:         now,
		events:      events,
		unsubscribe: unsubscribe,
		columns:     columns,
		snap:        snap,
		width:       opts.Width,
		height:      opts.Height,
	}

	values := [...]string{snap.Filter.ID, snap.Filter.DataProvider, snap.Filter.ReferenceTime, strconv.Itoa(snap.Filter.Limit)}
	for i, label := range fieldLabels {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = label
		ti.CharLimit = 256
		ti.Width = inputWidth
		ti.SetValue(values[i])
		m.inputs = append(m.inputs, ti)
	}
	m.inputs[fieldID].Focus()

	m.table = table.New(
		table.WithColumns(m.tableColumns()),
		table.WithRows(m.tableRows()),
		table.WithHeight(m.tableHeight()),
	)

	return m
}

func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(textinput.Blink, m.waitForEvent(), m.refresh(), tick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(m.tableColumns())
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		// the event may be stale if the bus dropped some, the controller never is
		m.snap = m.ctrl.Snapshot()
		m.table.SetRows(m.tableRows())
		return m, m.waitForEvent()

	case commitDoneMsg:
		m.busy = false
		if errors.Is(msg.err, domain.ErrInvalidLimit) {
			m.inputErr = msg.err.Error()
		}
		m.snap = m.ctrl.Snapshot()
		m.table.SetRows(m.tableRows())
		return m, nil

	case tickMsg:
		return m, tick()
	}

	return m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit
	case "tab":
		return m, m.setFocus((m.focus + 1) % (fieldTable + 1))
	case "shift+tab":
		return m, m.setFocus((m.focus + fieldTable) % (fieldTable + 1))
	case "ctrl+r":
		m.busy = true
		return m, m.refresh()
	case "enter":
		if m.focus == fieldTable {
			break
		}
		return m, m.commit(m.focus)
	}

	return m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == fieldTable {
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(next int) tea.Cmd {
	if m.focus == fieldTable {
		m.table.Blur()
	} else {
		m.inputs[m.focus].Blur()
	}
	m.focus = next
	if next == fieldTable {
		m.table.Focus()
		return nil
	}
	return m.inputs[next].Focus()
}

// commit turns the value of one input into a controller change
func (m *Model) commit(field int) tea.Cmd {
	value := strings.TrimSpace(m.inputs[field].Value())
	m.inputErr = ""

	var ch controller.Change
	switch field {
	case fieldID:
		ch.Filter.ID = domain.Set(value)
	case fieldDataProvider:
		ch.Filter.DataProvider = domain.Set(value)
	case fieldReferenceTime:
		ch.Filter.ReferenceTime = domain.Set(value)
	case fieldLimit:
		n, err := strconv.Atoi(value)
		if err != nil {
			m.inputErr = "limit: " + domain.ErrInvalidLimit.Error()
			return nil
		}
		ch.Limit = &n
	}

	m.busy = true
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return commitDoneMsg{err: ctrl.Update(ctx, ch)}
	}
}

func (m *Model) refresh() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return commitDoneMsg{err: ctrl.Refresh(ctx)}
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) tableColumns() []table.Column {
	width := m.width
	if width <= 0 {
		width = 120
	}
	colWidth := max(8, width/len(m.columns)-2)

	cols := make([]table.Column, len(m.columns))
	for i, c := range m.columns {
		cols[i] = table.Column{Title: c.Title(), Width: colWidth}
	}
	return cols
}

func (m *Model) tableRows() []table.Row {
	rows := make([]table.Row, 0, len(m.snap.Runs))
	for _, run := range m.snap.Runs {
		row := make(table.Row, len(m.columns))
		for i, c := range m.columns {
			row[i] = c.Value(run)
		}
		rows = append(rows, row)
	}
	return rows
}

func (m *Model) tableHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(minTableRows, m.height-chromeHeight)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	title := TitleStyle.Render("runstatus · " + m.ctrl.Resource())

	fields := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		label := LabelStyle
		if i == m.focus {
			label = FocusedLabelStyle
		}
		fields[i] = InputStyle.Render(label.Render(fieldLabels[i]+": ") + in.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, fields...),
		m.table.View(),
		m.statusLine(),
		m.errorLine(),
		MutedStyle.Render("tab next field · enter apply · ctrl+r refresh · esc quit"),
	)
}

func (m *Model) statusLine() string {
	parts := []string{
		format.Shown(len(m.snap.Runs), m.snap.TotalCount),
		"refreshed " + format.TimeAgo(m.snap.RefreshedAt, m.now()),
	}
	if m.busy {
		parts = append(parts, "loading")
	}
	line := StatusBarStyle.Render(strings.Join(parts, " · "))
	if m.snap.IsStale() {
		line += " " + StaleStyle.Render("stale")
	}
	return line
}

func (m *Model) errorLine() string {
	switch {
	case m.inputErr != "":
		return ErrorStyle.Render(m.inputErr)
	case m.snap.Err != nil:
		return ErrorStyle.Render(m.snap.Err.Error())
	}
	return ""
}

// Run drives the interactive view until the user quits or ctx ends
func Run(ctx context.Context, ctrl Controller, opts Options) error {
	m := New(ctx, ctrl, opts)
	defer m.unsubscribe()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
