package domain

import (
	"errors"
	"testing"
)

func TestNewTaskValidation(t *testing.T) {
	task, err := NewTask(" t1 ", "  Write docs  ")
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.ID != "t1" || task.Text != "Write docs" || task.Completed {
		t.Fatalf("unexpected task %#v", task)
	}

	if _, err := NewTask("", "text"); !errors.Is(err, ErrInvalidID) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrInvalidID validation error, got %v", err)
	}
	if _, err := NewTask("t1", "   "); !errors.Is(err, ErrInvalidText) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrInvalidText validation error, got %v", err)
	}
}

func TestTaskToggle(t *testing.T) {
	task, _ := NewTask("t1", "text")
	task.Toggle()
	if !task.Completed {
		t.Fatal("expected completed after first toggle")
	}
	task.Toggle()
	if task.Completed {
		t.Fatal("expected open after second toggle")
	}
}

func TestNewColumnDefNormalizes(t *testing.T) {
	def, err := NewColumnDef("  TODO ", "")
	if err != nil {
		t.Fatalf("NewColumnDef() error = %v", err)
	}
	if def.ID != "todo" || def.Name != "todo" {
		t.Fatalf("unexpected column def %#v", def)
	}
	if _, err := NewColumnDef(" ", "Name"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestNewBoardValidation(t *testing.T) {
	if _, err := NewBoard(nil); !errors.Is(err, ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
	_, err := NewBoard([]ColumnDef{{ID: "todo"}, {ID: "TODO"}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate column validation error, got %v", err)
	}
}

func TestSeedBoard(t *testing.T) {
	b, err := SeedBoard(DefaultColumns())
	if err != nil {
		t.Fatalf("SeedBoard() error = %v", err)
	}
	want := map[ColumnID][]string{
		"todo":    {"t1", "t2"},
		"proceso": {"t3"},
		"done":    {"t4"},
	}
	for col, ids := range want {
		assertColumnIDs(t, b, col, ids...)
	}
	if b.DefaultColumn() != "todo" {
		t.Fatalf("unexpected default column %q", b.DefaultColumn())
	}
}

func TestSeedBoardFewerColumns(t *testing.T) {
	b, err := SeedBoard([]ColumnDef{{ID: "open"}, {ID: "closed"}})
	if err != nil {
		t.Fatalf("SeedBoard() error = %v", err)
	}
	assertColumnIDs(t, b, "open", "t1", "t2")
	assertColumnIDs(t, b, "closed", "t3", "t4")
}
