package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	reload       key.Binding
	toggleHelp   key.Binding
	columnLeft   key.Binding
	columnRight  key.Binding
	nextColumn   key.Binding
	prevColumn   key.Binding
	taskUp       key.Binding
	taskDown     key.Binding
	addTask      key.Binding
	toggleTask   key.Binding
	deleteTask   key.Binding
	grabTask     key.Binding
	dropTask     key.Binding
	cancel       key.Binding
	taskInfo     key.Binding
	copyTask     key.Binding
	selectColumn key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		columnLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		columnRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		nextColumn:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next column")),
		prevColumn:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous column")),
		taskUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		taskDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		toggleTask:   key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "toggle done")),
		deleteTask:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete task")),
		grabTask:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab task")),
		dropTask:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop here")),
		cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		taskInfo:     key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		copyTask:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		selectColumn: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "jump to column")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.toggleTask, k.deleteTask, k.grabTask, k.nextColumn, k.taskInfo, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.toggleTask, k.deleteTask, k.taskInfo, k.copyTask, k.reload, k.toggleHelp, k.quit},
		{k.columnLeft, k.columnRight, k.nextColumn, k.prevColumn, k.selectColumn, k.taskUp, k.taskDown},
		{k.grabTask, k.dropTask, k.cancel},
	}
}

// grabKeyMap is the reduced help shown while a task is held.
type grabKeyMap struct {
	keys keyMap
}

// ShortHelp handles short help.
func (g grabKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{g.keys.columnLeft, g.keys.columnRight, g.keys.taskUp, g.keys.taskDown, g.keys.dropTask, g.keys.cancel}
}

// FullHelp handles full help.
func (g grabKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{g.ShortHelp()}
}

// pointerDragKeyMap is the help shown while the mouse holds a task.
type pointerDragKeyMap struct {
	keys keyMap
}

// ShortHelp handles short help.
func (p pointerDragKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{p.keys.cancel, p.keys.quit}
}

// FullHelp handles full help.
func (p pointerDragKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{p.ShortHelp()}
}
