package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/tablero/internal/domain"
	"github.com/hylla/tablero/internal/drag"
)

// Service is the board surface the model drives.
type Service interface {
	Board() *domain.Board
	AddTask(context.Context, domain.ColumnID, string) (domain.Task, error)
	DeleteTask(context.Context, string) bool
	ToggleComplete(context.Context, string) (domain.Task, bool)
	MoveTask(context.Context, string, domain.ColumnID, domain.ColumnID, int) (bool, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeGrab
	modeTaskInfo
)

// screen rows; mouse coordinates are zero-based.
const (
	tabRow     = 1
	listTop    = 3
	// status line + help line
	footerRows = 2
)

// hitKind classifies what a pointer position lands on.
type hitKind int

const (
	hitNone hitKind = iota
	hitTab
	hitList
)

// hit is the result of mapping a screen cell onto the board.
type hit struct {
	kind   hitKind
	column domain.ColumnID
	index  int
}

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	status string

	help help.Model
	keys keyMap

	layout     Layout
	thresholds drag.Thresholds
	columns    []domain.ColumnDef
	board      *domain.Board

	focus   *drag.FocusController
	session *drag.Session

	selectedTask       int
	pendingFocusTaskID string

	mode      inputMode
	taskInput textinput.Model
	grabIndex int
	dragHover hit
	infoTask  string

	markdown *markdownRenderer
	copyText func(string) error
}

// boardLoadedMsg carries a fresh board copy.
type boardLoadedMsg struct {
	board *domain.Board
}

// actionMsg reports the result of a service call.
type actionMsg struct {
	status      string
	err         error
	focusTaskID string
	reload      bool
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	taskInput := textinput.New()
	taskInput.Prompt = "nueva tarea: "
	taskInput.Placeholder = "describe the task"
	taskInput.CharLimit = 200

	m := Model{
		svc:        svc,
		status:     "loading...",
		help:       h,
		keys:       newKeyMap(),
		layout:     LayoutTabs,
		thresholds: drag.DefaultThresholds(),
		taskInput:  taskInput,
		markdown:   newMarkdownRenderer("dark"),
		copyText:   systemClipboard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}

	m.board = svc.Board()
	m.columns = m.board.Columns()
	ids := make([]domain.ColumnID, 0, len(m.columns))
	for _, col := range m.columns {
		ids = append(ids, col.ID)
	}
	focus, err := drag.NewFocusController(ids, m.thresholds)
	if err != nil {
		// Board always has columns and thresholds were validated by the option.
		panic(fmt.Sprintf("tui: focus controller: %v", err))
	}
	m.focus = focus
	m.session = drag.NewSession(svc, focus)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadBoard
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		// Edge stepping only applies while one column is on screen.
		if m.layout == LayoutTabs {
			m.focus.SetViewportWidth(float64(msg.Width))
		}
		m.help.SetWidth(max(0, msg.Width-2))
		return m, nil

	case boardLoadedMsg:
		m.board = msg.board
		if m.pendingFocusTaskID != "" {
			if col, idx, ok := m.board.Locate(m.pendingFocusTaskID); ok && !m.session.Active() {
				m.focus.Select(col)
				m.selectedTask = idx
			}
			m.pendingFocusTaskID = ""
		}
		m.clampSelection()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.reload {
			return m, m.loadBoard
		}
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeAddTask:
			return m.handleAddModeKey(msg)
		case modeGrab:
			return m.handleGrabModeKey(msg)
		case modeTaskInfo:
			return m.handleTaskInfoKey(msg)
		default:
			return m.handleNormalModeKey(msg)
		}

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		if m.mode == modeAddTask {
			var cmd tea.Cmd
			m.taskInput, cmd = m.taskInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// loadBoard loads required data for the current operation.
func (m Model) loadBoard() tea.Msg {
	return boardLoadedMsg{board: m.svc.Board()}
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.session.Active() {
		return m.handlePointerDragKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		m.help.ShowAll = false
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloaded"
		return m, m.loadBoard
	case key.Matches(msg, m.keys.columnLeft):
		m.stepColumn(-1)
		return m, nil
	case key.Matches(msg, m.keys.columnRight):
		m.stepColumn(1)
		return m, nil
	case key.Matches(msg, m.keys.nextColumn):
		m.cycleColumn(1)
		return m, nil
	case key.Matches(msg, m.keys.prevColumn):
		m.cycleColumn(-1)
		return m, nil
	case key.Matches(msg, m.keys.selectColumn):
		idx := int(msg.Code - '1')
		if idx >= 0 && idx < len(m.columns) {
			m.focus.Select(m.columns[idx].ID)
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.taskUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.taskDown):
		if m.selectedTask < len(m.activeTasks())-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		m.mode = modeAddTask
		m.taskInput.SetValue("")
		m.status = "new task"
		cmd := m.taskInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.toggleTask):
		task, ok := m.selectedTaskInActiveColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.toggleTaskCmd(task.ID)
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInActiveColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.deleteTaskCmd(task.ID)
	case key.Matches(msg, m.keys.grabTask):
		return m.startGrab()
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInActiveColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskInfo
		m.infoTask = task.ID
		m.status = "task info"
		return m, nil
	case key.Matches(msg, m.keys.copyTask):
		task, ok := m.selectedTaskInActiveColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if err := m.copyText(task.Text); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied " + truncate(task.Text, 32)
		return m, nil
	default:
		return m, nil
	}
}

// handleAddModeKey handles add mode key.
func (m Model) handleAddModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.taskInput.Blur()
		m.status = "cancelled"
		return m, nil
	case "enter":
		text := m.taskInput.Value()
		m.mode = modeNone
		m.taskInput.Blur()
		return m, m.addTaskCmd(text)
	}
	var cmd tea.Cmd
	m.taskInput, cmd = m.taskInput.Update(msg)
	return m, cmd
}

// handleGrabModeKey moves a held task with the keyboard.
func (m Model) handleGrabModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		return m.cancelDrag(), nil
	case key.Matches(msg, m.keys.dropTask):
		return m.resolveDrag(m.session.EndInActive(context.Background(), m.grabIndex))
	case key.Matches(msg, m.keys.columnLeft):
		m.hoverStep(-1)
		return m, nil
	case key.Matches(msg, m.keys.columnRight):
		m.hoverStep(1)
		return m, nil
	case key.Matches(msg, m.keys.taskUp):
		if m.grabIndex > 0 {
			m.grabIndex--
		}
		return m, nil
	case key.Matches(msg, m.keys.taskDown):
		if m.grabIndex < m.maxGrabIndex() {
			m.grabIndex++
		}
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m.cancelDrag(), tea.Quit
	default:
		return m, nil
	}
}

// handlePointerDragKey handles keys while a mouse drag is live. Only cancel
// and quit apply; the pointer owns the drop.
func (m Model) handlePointerDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		return m.cancelDrag(), nil
	case key.Matches(msg, m.keys.quit):
		return m.cancelDrag(), tea.Quit
	default:
		return m, nil
	}
}

// cancelDrag abandons the live gesture and restores the pre-drag focus.
func (m Model) cancelDrag() Model {
	if _, err := m.session.Cancel(); err != nil {
		m.status = "error: " + err.Error()
	} else {
		m.status = "move cancelled"
	}
	m.mode = modeNone
	m.dragHover = hit{}
	m.clampSelection()
	return m
}

// handleTaskInfoKey closes the details overlay.
func (m Model) handleTaskInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit) && msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.copyTask):
		if task, ok := m.board.Task(m.infoTask); ok {
			if err := m.copyText(task.Text); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "copied " + truncate(task.Text, 32)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.taskInfo), msg.String() == "q":
		m.mode = modeNone
		m.infoTask = ""
		m.status = "ready"
		return m, nil
	default:
		return m, nil
	}
}

// startGrab begins a keyboard drag of the selected task.
func (m Model) startGrab() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInActiveColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	if err := m.session.Start(task.ID, m.focus.Active(), m.selectedTask); err != nil {
		m.status = "error: " + err.Error()
		return m, nil
	}
	m.mode = modeGrab
	m.grabIndex = m.selectedTask
	m.status = "moving " + truncate(task.Text, 32)
	return m, nil
}

// hoverStep moves the held task's target column and keeps the index in range.
func (m *Model) hoverStep(delta int) {
	idx := m.focus.ActiveIndex() + delta
	if idx < 0 || idx >= len(m.columns) {
		return
	}
	if _, err := m.session.Hover(m.columns[idx].ID); err != nil {
		m.status = "error: " + err.Error()
		return
	}
	m.grabIndex = clamp(m.grabIndex, 0, m.maxGrabIndex())
}

// maxGrabIndex is the tail position of the focused column for the held task.
func (m Model) maxGrabIndex() int {
	n := len(m.board.Tasks(m.focus.Active()))
	if g, ok := m.session.Gesture(); ok && g.OriginColumn == m.focus.Active() {
		n--
	}
	return max(n, 0)
}

// resolveDrag reports the outcome of ending the live gesture.
func (m Model) resolveDrag(out drag.Outcome, err error) (tea.Model, tea.Cmd) {
	m.mode = modeNone
	m.dragHover = hit{}
	if err != nil {
		m.status = "error: " + err.Error()
		return m, m.loadBoard
	}
	switch {
	case out.Cancelled:
		m.status = "move cancelled"
		return m, nil
	case out.Moved:
		m.status = "moved " + out.Gesture.TaskID
		m.pendingFocusTaskID = out.Gesture.TaskID
		return m, m.loadBoard
	default:
		m.status = "ready"
		return m, nil
	}
}

// handleMouseClick selects a tab or picks up the task under the pointer.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || m.help.ShowAll || (m.mode != modeNone && m.mode != modeGrab) {
		return m, nil
	}
	if m.session.Active() {
		return m, nil
	}
	h := m.hitTest(msg.X, msg.Y)
	switch h.kind {
	case hitTab:
		m.focus.Select(h.column)
		m.selectedTask = 0
		return m, nil
	case hitList:
		tasks := m.board.Tasks(h.column)
		if h.index >= len(tasks) {
			m.focus.Select(h.column)
			m.clampSelection()
			return m, nil
		}
		m.focus.Select(h.column)
		m.selectedTask = h.index
		if err := m.session.StartAt(tasks[h.index].ID, h.column, h.index, float64(msg.X)); err != nil {
			m.status = "error: " + err.Error()
			return m, nil
		}
		m.dragHover = h
		return m, nil
	default:
		return m, nil
	}
}

// handleMouseMotion feeds pointer motion to the live gesture.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.session.Active() || m.mode == modeGrab {
		return m, nil
	}
	h := m.hitTest(msg.X, msg.Y)
	if _, err := m.session.Update(float64(msg.X)); err != nil {
		m.status = "error: " + err.Error()
	}
	if h.kind == hitTab || (m.layout == LayoutColumns && h.kind == hitList) {
		_, _ = m.session.Hover(h.column)
	}
	// The focused column may have changed under the pointer.
	m.dragHover = m.hitTest(msg.X, msg.Y)
	return m, nil
}

// handleMouseRelease drops the held task at the release point.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.session.Active() || m.mode == modeGrab {
		return m, nil
	}
	ctx := context.Background()
	h := m.hitTest(msg.X, msg.Y)
	switch {
	case h.kind == hitList && m.layout == LayoutTabs:
		return m.resolveDrag(m.session.EndInActive(ctx, h.index))
	case h.kind == hitList:
		return m.resolveDrag(m.session.End(ctx, &drag.Target{Column: h.column, Index: h.index}))
	case h.kind == hitTab:
		return m.resolveDrag(m.session.End(ctx, &drag.Target{Column: h.column, Index: len(m.board.Tasks(h.column))}))
	default:
		return m.resolveDrag(m.session.End(ctx, nil))
	}
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(m.activeTasks())-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// hitTest maps a zero-based screen cell onto a tab or a list slot. List slots
// past the last task resolve to the column tail.
func (m Model) hitTest(x, y int) hit {
	if len(m.columns) == 0 || x < 0 || y < 0 {
		return hit{}
	}
	if y == tabRow {
		return hit{kind: hitTab, column: m.columns[m.segmentAt(x)].ID}
	}
	if y < listTop || y >= listTop+m.listHeight() {
		return hit{}
	}
	column := m.focus.Active()
	if m.layout == LayoutColumns {
		column = m.columns[m.segmentAt(x)].ID
	}
	tasks := m.board.Tasks(column)
	idx := y - listTop + m.scrollFor(column)
	return hit{kind: hitList, column: column, index: min(idx, len(tasks))}
}

// segmentWidth is the width each tab or column cell gets.
func (m Model) segmentWidth() int {
	if len(m.columns) == 0 {
		return 0
	}
	return max(m.width/len(m.columns), 1)
}

// segmentAt returns the column index whose cell covers x.
func (m Model) segmentAt(x int) int {
	return clamp(x/m.segmentWidth(), 0, len(m.columns)-1)
}

// listHeight is the number of task rows that fit on screen.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return max(m.longestColumn(), 1)
	}
	return max(m.height-listTop-footerRows, 1)
}

// scrollFor returns the first visible task row of column.
func (m Model) scrollFor(column domain.ColumnID) int {
	if column != m.focus.Active() {
		return 0
	}
	rows := m.listHeight()
	if m.selectedTask >= rows {
		return m.selectedTask - rows + 1
	}
	return 0
}

func (m Model) longestColumn() int {
	n := 0
	for _, col := range m.columns {
		n = max(n, len(m.board.Tasks(col.ID)))
	}
	return n
}

// stepColumn moves focus one column without wrapping.
func (m *Model) stepColumn(delta int) {
	if m.focus.Step(delta) {
		m.selectedTask = 0
	}
}

// cycleColumn moves focus one column, wrapping at the ends.
func (m *Model) cycleColumn(delta int) {
	n := len(m.columns)
	if n == 0 {
		return
	}
	idx := ((m.focus.ActiveIndex()+delta)%n + n) % n
	m.focus.Select(m.columns[idx].ID)
	m.selectedTask = 0
}

// activeTasks returns the focused column's tasks.
func (m Model) activeTasks() []domain.Task {
	return m.board.Tasks(m.focus.Active())
}

// selectedTaskInActiveColumn returns the highlighted task.
func (m Model) selectedTaskInActiveColumn() (domain.Task, bool) {
	tasks := m.activeTasks()
	if m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

// clampSelection clamps selection into the focused column.
func (m *Model) clampSelection() {
	m.selectedTask = clamp(m.selectedTask, 0, len(m.activeTasks())-1)
}

func (m Model) columnName(id domain.ColumnID) string {
	for _, col := range m.columns {
		if col.ID == id {
			return col.Name
		}
	}
	return string(id)
}

// addTaskCmd adds text to the default column.
func (m Model) addTaskCmd(text string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.svc.AddTask(context.Background(), "", text)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidText) {
				return actionMsg{err: errors.New("task text is required")}
			}
			return actionMsg{err: err}
		}
		return actionMsg{status: "task added", reload: true, focusTaskID: task.ID}
	}
}

// toggleTaskCmd flips completion of taskID.
func (m Model) toggleTaskCmd(taskID string) tea.Cmd {
	return func() tea.Msg {
		task, ok := m.svc.ToggleComplete(context.Background(), taskID)
		if !ok {
			return actionMsg{status: "task not found", reload: true}
		}
		status := "marked pending"
		if task.Completed {
			status = "marked done"
		}
		return actionMsg{status: status, reload: true}
	}
}

// deleteTaskCmd removes taskID.
func (m Model) deleteTaskCmd(taskID string) tea.Cmd {
	return func() tea.Msg {
		if !m.svc.DeleteTask(context.Background(), taskID) {
			return actionMsg{status: "task not found", reload: true}
		}
		return actionMsg{status: "task deleted", reload: true}
	}
}

// render builds the full screen.
func (m Model) render() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render("tablero") + statusStyle.Render("  ["+m.modeLabel()+"]")
	if g, ok := m.session.Gesture(); ok {
		if task, found := m.board.Task(g.TaskID); found {
			header += statusStyle.Render("  holding: " + truncate(task.Text, 32))
		}
		switch m.focus.ArmedZone() {
		case drag.ZoneLeft:
			header += statusStyle.Render("  ◂")
		case drag.ZoneRight:
			header += statusStyle.Render("  ▸")
		}
	}

	lines := []string{header, m.renderTabs(accent, muted), lipgloss.NewStyle().Foreground(dim).Render(strings.Repeat("─", max(m.width, 1)))}
	if m.layout == LayoutColumns {
		lines = append(lines, m.renderColumnRows(accent, muted)...)
	} else {
		lines = append(lines, m.renderListRows(m.focus.Active(), max(m.width, 1), accent, muted)...)
	}

	status := m.status
	if m.mode == modeAddTask {
		status = m.taskInput.View()
	}
	var helpLine string
	switch {
	case m.mode == modeGrab:
		helpLine = m.help.View(grabKeyMap{keys: m.keys})
	case m.session.Active():
		helpLine = m.help.View(pointerDragKeyMap{keys: m.keys})
	default:
		helpLine = m.help.View(m.keys)
	}
	content := strings.Join(lines, "\n") + "\n" + statusStyle.Render(status) + "\n" + lipgloss.NewStyle().Foreground(muted).Render(helpLine)

	if m.mode == modeTaskInfo {
		if overlay := m.renderTaskInfo(accent); overlay != "" {
			content = overlayOnContent(content, overlay, max(1, m.width), max(1, m.height))
		}
	}
	return content
}

// renderTabs draws the tab strip; every entry doubles as a drop zone.
func (m Model) renderTabs(accent, muted color.Color) string {
	seg := m.segmentWidth()
	active := lipgloss.NewStyle().Bold(true).Foreground(accent)
	inactive := lipgloss.NewStyle().Foreground(muted)
	hover := lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(accent)

	parts := make([]string, 0, len(m.columns))
	for _, col := range m.columns {
		label := fmt.Sprintf("%s (%d)", col.Name, len(m.board.Tasks(col.ID)))
		style := inactive
		switch {
		case m.session.Active() && m.dragHover.kind == hitTab && m.dragHover.column == col.ID:
			style = hover
		case col.ID == m.focus.Active():
			style = active
			label = "[" + label + "]"
		}
		parts = append(parts, style.Width(seg).MaxWidth(seg).Render(truncate(label, seg)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderListRows draws one column's visible rows padded to the list height.
func (m Model) renderListRows(column domain.ColumnID, width int, accent, muted color.Color) []string {
	tasks := m.board.Tasks(column)
	rows := m.listHeight()
	top := m.scrollFor(column)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(muted).Strikethrough(true)
	dropStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	gesture, holding := m.session.Gesture()

	out := make([]string, 0, rows)
	if len(tasks) == 0 {
		out = append(out, lipgloss.NewStyle().Foreground(muted).Render(truncate("(vacío)", width)))
	}
	for i := top; i < len(tasks) && len(out) < rows; i++ {
		task := tasks[i]
		check := "[ ]"
		if task.Completed {
			check = "[x]"
		}
		prefix := "  "
		focused := column == m.focus.Active() && i == m.selectedTask
		if focused && !holding {
			prefix = "│ "
		}
		if m.dropMarkerAt(column, i) {
			prefix = "▸ "
		}
		line := truncate(prefix+check+" "+task.Text, width)
		switch {
		case m.dropMarkerAt(column, i):
			line = dropStyle.Render(line)
		case holding && task.ID == gesture.TaskID:
			line = lipgloss.NewStyle().Foreground(muted).Italic(true).Render(line)
		case focused && !holding:
			line = selectedStyle.Render(line)
		case task.Completed:
			line = doneStyle.Render(line)
		}
		out = append(out, line)
	}
	if m.dropMarkerAt(column, len(tasks)) && len(out) < rows {
		out = append(out, dropStyle.Render(truncate("▸ ···", width)))
	}
	for len(out) < rows {
		out = append(out, "")
	}
	return out
}

// dropMarkerAt reports whether the drop indicator sits at row idx of column.
func (m Model) dropMarkerAt(column domain.ColumnID, idx int) bool {
	if !m.session.Active() {
		return false
	}
	if m.mode == modeGrab {
		return column == m.focus.Active() && idx == m.grabIndex
	}
	return m.dragHover.kind == hitList && m.dragHover.column == column && m.dragHover.index == idx
}

// renderColumnRows lays every column side by side.
func (m Model) renderColumnRows(accent, muted color.Color) []string {
	seg := m.segmentWidth()
	cells := make([][]string, 0, len(m.columns))
	for _, col := range m.columns {
		cells = append(cells, m.renderListRows(col.ID, max(seg-1, 1), accent, muted))
	}
	rows := m.listHeight()
	out := make([]string, 0, rows)
	cell := lipgloss.NewStyle().Width(seg).MaxWidth(seg)
	for r := 0; r < rows; r++ {
		parts := make([]string, 0, len(cells))
		for _, colRows := range cells {
			parts = append(parts, cell.Render(colRows[r]))
		}
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}
	return out
}

// taskMarkdown describes one task for the details overlay.
func (m Model) taskMarkdown(taskID string) string {
	task, ok := m.board.Task(taskID)
	if !ok {
		return ""
	}
	col, idx, _ := m.board.Locate(taskID)
	state := "pendiente"
	if task.Completed {
		state = "hecha"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", task.Text)
	fmt.Fprintf(&b, "- **column:** %s\n", m.columnName(col))
	fmt.Fprintf(&b, "- **position:** %d of %d\n", idx+1, len(m.board.Tasks(col)))
	fmt.Fprintf(&b, "- **state:** %s\n", state)
	fmt.Fprintf(&b, "- **id:** `%s`\n", task.ID)
	return b.String()
}

// renderTaskInfo renders the details overlay.
func (m Model) renderTaskInfo(accent color.Color) string {
	md := m.taskMarkdown(m.infoTask)
	if md == "" {
		return ""
	}
	width := clamp(m.width-8, 24, 80)
	body := m.markdown.render(md, width-4)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width).
		Render(body + "\n\nesc close • y copy")
}

// modeLabel handles mode label.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddTask:
		return "add"
	case modeGrab:
		return "move"
	case modeTaskInfo:
		return "info"
	}
	if m.session.Active() {
		return "drag"
	}
	if m.layout == LayoutColumns {
		return "columns"
	}
	return m.columnName(m.focus.Active())
}

// BoardMarkdown renders board as a markdown document, one section per column.
func BoardMarkdown(board *domain.Board) string {
	var b strings.Builder
	b.WriteString("# tablero\n")
	for _, col := range board.Columns() {
		tasks := board.Tasks(col.ID)
		fmt.Fprintf(&b, "\n## %s (%d)\n\n", col.Name, len(tasks))
		if len(tasks) == 0 {
			b.WriteString("_vacío_\n")
			continue
		}
		for _, task := range tasks {
			mark := " "
			if task.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, task.Text)
		}
	}
	return b.String()
}

// RenderMarkdown renders markdown for a terminal of the given width.
func RenderMarkdown(markdown string, width int) string {
	return newMarkdownRenderer("dark").render(markdown, width)
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
