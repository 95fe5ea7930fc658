package domain

import (
	"fmt"
	"slices"
)

// Board is the ordered set of columns and the single owner of every task.
type Board struct {
	columns []Column
	index   map[ColumnID]int
}

// NewBoard constructs an empty board over a fixed column set.
func NewBoard(defs []ColumnDef) (*Board, error) {
	if len(defs) == 0 {
		return nil, validationErr(ErrNoColumns)
	}
	b := &Board{
		columns: make([]Column, 0, len(defs)),
		index:   make(map[ColumnID]int, len(defs)),
	}
	for _, raw := range defs {
		def, err := NewColumnDef(string(raw.ID), raw.Name)
		if err != nil {
			return nil, err
		}
		if _, ok := b.index[def.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrValidation, def.ID)
		}
		b.index[def.ID] = len(b.columns)
		b.columns = append(b.columns, Column{ColumnDef: def, Tasks: []Task{}})
	}
	return b, nil
}

// Columns returns the fixed column definitions in display order.
func (b *Board) Columns() []ColumnDef {
	out := make([]ColumnDef, 0, len(b.columns))
	for _, col := range b.columns {
		out = append(out, col.ColumnDef)
	}
	return out
}

// DefaultColumn returns the column that receives new tasks.
func (b *Board) DefaultColumn() ColumnID {
	return b.columns[0].ID
}

// HasColumn reports whether id belongs to the fixed column set.
func (b *Board) HasColumn(id ColumnID) bool {
	_, ok := b.index[id]
	return ok
}

// Column returns a copy of one column.
func (b *Board) Column(id ColumnID) (Column, bool) {
	idx, ok := b.index[id]
	if !ok {
		return Column{}, false
	}
	return b.columns[idx].clone(), true
}

// Tasks returns a copy of the ordered tasks stored in one column.
func (b *Board) Tasks(id ColumnID) []Task {
	col, ok := b.Column(id)
	if !ok {
		return nil
	}
	return col.Tasks
}

// Len returns the total number of tasks across all columns.
func (b *Board) Len() int {
	total := 0
	for _, col := range b.columns {
		total += len(col.Tasks)
	}
	return total
}

// Locate resolves a task's current column and index by identity.
func (b *Board) Locate(taskID string) (ColumnID, int, bool) {
	for _, col := range b.columns {
		if idx := col.indexOf(taskID); idx >= 0 {
			return col.ID, idx, true
		}
	}
	return "", -1, false
}

// Task returns a copy of the task with the given id.
func (b *Board) Task(taskID string) (Task, bool) {
	colID, idx, ok := b.Locate(taskID)
	if !ok {
		return Task{}, false
	}
	return b.columns[b.index[colID]].Tasks[idx], true
}

// Append adds task at the tail of column. Ids must stay unique board-wide.
func (b *Board) Append(column ColumnID, task Task) error {
	idx, ok := b.index[column]
	if !ok {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrUnknownColumn, column)
	}
	if _, _, exists := b.Locate(task.ID); exists {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrDuplicateID, task.ID)
	}
	b.columns[idx].Tasks = append(b.columns[idx].Tasks, task)
	return nil
}

// Delete removes the task with taskID from whichever column holds it.
func (b *Board) Delete(taskID string) bool {
	colID, idx, ok := b.Locate(taskID)
	if !ok {
		return false
	}
	col := &b.columns[b.index[colID]]
	col.Tasks = slices.Delete(col.Tasks, idx, idx+1)
	return true
}

// Toggle flips the completion flag of the task with taskID.
func (b *Board) Toggle(taskID string) (Task, bool) {
	colID, idx, ok := b.Locate(taskID)
	if !ok {
		return Task{}, false
	}
	task := &b.columns[b.index[colID]].Tasks[idx]
	task.Toggle()
	return *task, true
}

// Move relocates taskID from one column to a target index in another (or
// the same) column. The task is looked up by id inside from; the target index
// is clamped against the destination after removal. It reports whether the
// board changed: a missing task or a move onto the current slot is a no-op.
func (b *Board) Move(taskID string, from, to ColumnID, targetIndex int) (bool, error) {
	fromIdx, ok := b.index[from]
	if !ok {
		return false, fmt.Errorf("%w: %w %q", ErrValidation, ErrUnknownColumn, from)
	}
	toIdx, ok := b.index[to]
	if !ok {
		return false, fmt.Errorf("%w: %w %q", ErrValidation, ErrUnknownColumn, to)
	}

	src := &b.columns[fromIdx]
	pos := src.indexOf(taskID)
	if pos < 0 {
		return false, nil
	}
	task := src.Tasks[pos]
	src.Tasks = slices.Delete(src.Tasks, pos, pos+1)

	dst := &b.columns[toIdx]
	insertAt := clampIndex(targetIndex, len(dst.Tasks))
	dst.Tasks = slices.Insert(dst.Tasks, insertAt, task)
	return fromIdx != toIdx || insertAt != pos, nil
}

// Clone returns a deep copy that shares no task storage with b.
func (b *Board) Clone() *Board {
	out := &Board{
		columns: make([]Column, 0, len(b.columns)),
		index:   make(map[ColumnID]int, len(b.index)),
	}
	for idx, col := range b.columns {
		out.columns = append(out.columns, col.clone())
		out.index[col.ID] = idx
	}
	return out
}

// Equal reports whether both boards hold the same columns, order and fields.
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.columns) != len(other.columns) {
		return false
	}
	for idx := range b.columns {
		left, right := b.columns[idx], other.columns[idx]
		if left.ColumnDef != right.ColumnDef || !slices.Equal(left.Tasks, right.Tasks) {
			return false
		}
	}
	return true
}

// clampIndex clamps idx into [0, length].
func clampIndex(idx, length int) int {
	if idx < 0 {
		return 0
	}
	if idx > length {
		return length
	}
	return idx
}
