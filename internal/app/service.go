package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hylla/tablero/internal/domain"
)

const tracerName = "github.com/hylla/tablero/internal/app"

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// LoadSource reports where the board came from on Load.
type LoadSource string

// LoadSourceSnapshot and related constants define package defaults.
const (
	LoadSourceSnapshot  LoadSource = "snapshot"
	LoadSourceSeed      LoadSource = "seed"
	LoadSourceRecovered LoadSource = "recovered"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	Columns []domain.ColumnDef
	Logger  *log.Logger
	// SyncWrites saves inside each mutation instead of on the background writer.
	SyncWrites bool
}

// Service owns the board and hands snapshots to the persister after every
// mutation. It is safe for concurrent use.
type Service struct {
	mu     sync.Mutex
	board  *domain.Board
	defs   []domain.ColumnDef
	store  SnapshotPersister
	idGen  IDGenerator
	logger *log.Logger
	tracer trace.Tracer
	writer *snapshotWriter
	closed bool
}

// NewService constructs a service holding the seed board. store may be nil
// for an in-memory board.
func NewService(store SnapshotPersister, idGen IDGenerator, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = uuid.NewString
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	defs := sanitizeColumns(cfg.Columns)
	if len(defs) == 0 {
		defs = domain.DefaultColumns()
	}
	board, err := domain.SeedBoard(defs)
	if err != nil {
		logger.Warn("column set rejected; using defaults", "err", err)
		defs = domain.DefaultColumns()
		board, _ = domain.SeedBoard(defs)
	}

	s := &Service{
		board:  board,
		defs:   board.Columns(),
		store:  store,
		idGen:  idGen,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
	if store != nil && !cfg.SyncWrites {
		s.writer = newSnapshotWriter(store, logger)
	}
	return s
}

// Load replaces the board with the persisted snapshot, or with seed data when
// nothing usable is stored. Storage and decode failures are logged, not returned.
func (s *Service) Load(ctx context.Context) (LoadSource, error) {
	ctx, span := s.tracer.Start(ctx, "board.load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	source := LoadSourceSeed
	var board *domain.Board
	if s.store != nil {
		data, found, err := s.store.Load(ctx)
		switch {
		case err != nil:
			s.logger.Warn("snapshot load failed; using seed data", "err", err)
			source = LoadSourceRecovered
		case found:
			board, err = decodeBoard(data, s.defs)
			if err != nil {
				s.logger.Warn("stored snapshot unusable; using seed data", "bytes", len(data), "err", err)
				source = LoadSourceRecovered
			} else {
				source = LoadSourceSnapshot
			}
		}
	}
	if board == nil {
		seed, err := domain.SeedBoard(s.defs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		board = seed
	}
	s.board = board
	span.SetAttributes(
		attribute.String("board.source", string(source)),
		attribute.Int("board.tasks", board.Len()),
	)
	s.logger.Info("board loaded", "source", source, "tasks", board.Len())
	return source, nil
}

// Board returns a deep copy of the current board.
func (s *Service) Board() *domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Columns returns the ordered column definitions.
func (s *Service) Columns() []domain.ColumnDef {
	return append([]domain.ColumnDef(nil), s.defs...)
}

// Locate finds the column and position currently holding taskID.
func (s *Service) Locate(taskID string) (domain.ColumnID, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Locate(taskID)
}

// AddTask appends a new task to the tail of column. An empty column means
// the default (first) column.
func (s *Service) AddTask(ctx context.Context, column domain.ColumnID, text string) (domain.Task, error) {
	_, span := s.tracer.Start(ctx, "board.add")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		span.SetStatus(codes.Error, ErrClosed.Error())
		return domain.Task{}, ErrClosed
	}
	if column == "" {
		column = s.board.DefaultColumn()
	}
	span.SetAttributes(attribute.String("board.column", string(column)))

	task, err := domain.NewTask(s.idGen(), text)
	if err == nil {
		err = s.board.Append(column, task)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Task{}, err
	}
	span.SetAttributes(attribute.String("task.id", task.ID))
	s.persistLocked(ctx)
	return task, nil
}

// DeleteTask removes taskID wherever it lives. Unknown ids and a closed
// service are a no-op.
func (s *Service) DeleteTask(ctx context.Context, taskID string) bool {
	_, span := s.tracer.Start(ctx, "board.delete", trace.WithAttributes(attribute.String("task.id", taskID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("delete after close ignored", "task", taskID)
		return false
	}
	removed := s.board.Delete(taskID)
	span.SetAttributes(attribute.Bool("board.changed", removed))
	if removed {
		s.persistLocked(ctx)
	}
	return removed
}

// ToggleComplete flips the completed flag of taskID. Unknown ids and a closed
// service are a no-op.
func (s *Service) ToggleComplete(ctx context.Context, taskID string) (domain.Task, bool) {
	_, span := s.tracer.Start(ctx, "board.toggle", trace.WithAttributes(attribute.String("task.id", taskID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("toggle after close ignored", "task", taskID)
		return domain.Task{}, false
	}
	task, ok := s.board.Toggle(taskID)
	span.SetAttributes(attribute.Bool("board.changed", ok))
	if ok {
		span.SetAttributes(attribute.Bool("task.completed", task.Completed))
		s.persistLocked(ctx)
	}
	return task, ok
}

// MoveTask relocates taskID from one column to targetIndex of another (or
// the same) column. Indexes are clamped; a task missing from the source
// column is a no-op.
func (s *Service) MoveTask(ctx context.Context, taskID string, from, to domain.ColumnID, targetIndex int) (bool, error) {
	_, span := s.tracer.Start(ctx, "board.move", trace.WithAttributes(
		attribute.String("task.id", taskID),
		attribute.String("board.from", string(from)),
		attribute.String("board.to", string(to)),
		attribute.Int("board.target_index", targetIndex),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		span.SetStatus(codes.Error, ErrClosed.Error())
		return false, ErrClosed
	}
	changed, err := s.board.Move(taskID, from, to, targetIndex)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	span.SetAttributes(attribute.Bool("board.changed", changed))
	if changed {
		s.persistLocked(ctx)
	}
	return changed, nil
}

// ExportSnapshot returns the current board in its serialized shape.
func (s *Service) ExportSnapshot(ctx context.Context) Snapshot {
	_, span := s.tracer.Start(ctx, "board.export")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return SnapshotFromBoard(s.board)
}

// ImportSnapshot replaces the whole board with snap after validating it.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	_, span := s.tracer.Start(ctx, "board.import")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	board, err := snap.ToBoard(s.defs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.board = board
	span.SetAttributes(attribute.Int("board.tasks", board.Len()))
	s.persistLocked(ctx)
	return nil
}

// Reset replaces the board with seed data and persists it.
func (s *Service) Reset(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "board.reset")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	board, err := domain.SeedBoard(s.defs)
	if err != nil {
		return err
	}
	s.board = board
	s.persistLocked(ctx)
	return nil
}

// Close flushes the last pending snapshot and stops the background writer.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	writer := s.writer
	s.mu.Unlock()

	if writer == nil {
		return nil
	}
	if err := writer.stop(ctx); err != nil {
		return fmt.Errorf("flush snapshot writer: %w", err)
	}
	return nil
}

// persistLocked hands the current board to the persister. Callers hold s.mu
// and have checked s.closed.
func (s *Service) persistLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	data, err := EncodeSnapshot(SnapshotFromBoard(s.board))
	if err != nil {
		s.logger.Error("snapshot encode failed", "err", err)
		return
	}
	if s.writer != nil {
		s.writer.submit(data)
		return
	}
	if err := s.store.Save(context.WithoutCancel(ctx), data); err != nil {
		s.logger.Error("snapshot save failed", "bytes", len(data), "err", err)
	}
}

func decodeBoard(data []byte, defs []domain.ColumnDef) (*domain.Board, error) {
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return snap.ToBoard(defs)
}

// sanitizeColumns drops blank and duplicate column ids, keeping first occurrence.
func sanitizeColumns(in []domain.ColumnDef) []domain.ColumnDef {
	out := make([]domain.ColumnDef, 0, len(in))
	seen := map[domain.ColumnID]struct{}{}
	for _, raw := range in {
		def, err := domain.NewColumnDef(string(raw.ID), strings.TrimSpace(raw.Name))
		if err != nil {
			continue
		}
		if _, ok := seen[def.ID]; ok {
			continue
		}
		seen[def.ID] = struct{}{}
		out = append(out, def)
	}
	return out
}
