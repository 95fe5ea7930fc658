package app

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/hylla/tablero/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "tablero.snapshot.v1"

// Snapshot is the serialized board: each column id mapped to its ordered tasks.
type Snapshot struct {
	Version string                    `json:"version"`
	Columns map[string][]SnapshotTask `json:"columns"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// SnapshotFromBoard captures every column of board in order.
func SnapshotFromBoard(board *domain.Board) Snapshot {
	defs := board.Columns()
	snap := Snapshot{
		Version: SnapshotVersion,
		Columns: make(map[string][]SnapshotTask, len(defs)),
	}
	for _, def := range defs {
		tasks := board.Tasks(def.ID)
		out := make([]SnapshotTask, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, SnapshotTask{ID: task.ID, Text: task.Text, Completed: task.Completed})
		}
		snap.Columns[string(def.ID)] = out
	}
	return snap
}

// Validate checks the snapshot against the fixed column set: every column
// present, no extras, non-empty ids and text, ids unique board-wide.
func (s Snapshot) Validate(defs []domain.ColumnDef) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	if len(s.Columns) != len(defs) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidSnapshot, len(defs), len(s.Columns))
	}
	seen := map[string]struct{}{}
	for _, def := range defs {
		tasks, ok := s.Columns[string(def.ID)]
		if !ok {
			return fmt.Errorf("%w: missing column %q", ErrInvalidSnapshot, def.ID)
		}
		for i, task := range tasks {
			id := strings.TrimSpace(task.ID)
			if id == "" {
				return fmt.Errorf("%w: columns[%q][%d].id is required", ErrInvalidSnapshot, def.ID, i)
			}
			if strings.TrimSpace(task.Text) == "" {
				return fmt.Errorf("%w: columns[%q][%d].text is required", ErrInvalidSnapshot, def.ID, i)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: duplicate task id %q", ErrInvalidSnapshot, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

// ToBoard rebuilds a board over defs from the snapshot.
func (s Snapshot) ToBoard(defs []domain.ColumnDef) (*domain.Board, error) {
	if err := s.Validate(defs); err != nil {
		return nil, err
	}
	board, err := domain.NewBoard(defs)
	if err != nil {
		return nil, err
	}
	for _, def := range board.Columns() {
		for _, st := range s.Columns[string(def.ID)] {
			task, err := domain.NewTask(st.ID, st.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
			}
			task.Completed = st.Completed
			if err := board.Append(def.ID, task); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
			}
		}
	}
	return board, nil
}

// EncodeSnapshot serializes snap with sorted column keys.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	if snap.Version == "" {
		snap.Version = SnapshotVersion
	}
	data, err := sonic.ConfigStd.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses either the versioned envelope or a bare
// column-to-tasks mapping written without one.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var probe map[string]sonic.NoCopyRawMessage
	if err := sonic.ConfigStd.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if probe == nil {
		return Snapshot{}, fmt.Errorf("%w: empty document", ErrInvalidSnapshot)
	}

	if _, ok := probe["version"]; ok {
		var snap Snapshot
		if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		if snap.Version != SnapshotVersion {
			return Snapshot{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, snap.Version)
		}
		if snap.Columns == nil {
			return Snapshot{}, fmt.Errorf("%w: columns are required", ErrInvalidSnapshot)
		}
		return snap, nil
	}

	snap := Snapshot{Version: SnapshotVersion, Columns: make(map[string][]SnapshotTask, len(probe))}
	for name, raw := range probe {
		var tasks []SnapshotTask
		if err := sonic.ConfigStd.Unmarshal(raw, &tasks); err != nil {
			return Snapshot{}, fmt.Errorf("%w: column %q: %w", ErrInvalidSnapshot, name, err)
		}
		if tasks == nil {
			tasks = []SnapshotTask{}
		}
		snap.Columns[name] = tasks
	}
	return snap, nil
}
