package domain

import (
	"fmt"
	"strings"
)

// ColumnID names one of the board's fixed columns.
type ColumnID string

// ColumnDef describes one column of the fixed, ordered column set.
type ColumnDef struct {
	ID   ColumnID
	Name string
}

// NewColumnDef constructs a normalized column definition.
func NewColumnDef(id, name string) (ColumnDef, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	name = strings.TrimSpace(name)
	if id == "" {
		return ColumnDef{}, validationErr(ErrInvalidID)
	}
	if name == "" {
		name = id
	}
	return ColumnDef{ID: ColumnID(id), Name: name}, nil
}

// Column holds one column definition and its ordered tasks.
type Column struct {
	ColumnDef
	Tasks []Task
}

// Len reports the number of tasks in the column.
func (c Column) Len() int {
	return len(c.Tasks)
}

// indexOf returns the position of taskID inside the column, or -1.
func (c Column) indexOf(taskID string) int {
	for idx := range c.Tasks {
		if c.Tasks[idx].ID == taskID {
			return idx
		}
	}
	return -1
}

func (c Column) clone() Column {
	out := Column{ColumnDef: c.ColumnDef}
	out.Tasks = append(make([]Task, 0, len(c.Tasks)), c.Tasks...)
	return out
}

// validationErr tags a specific failure as a validation error.
func validationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
