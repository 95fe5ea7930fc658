package drag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/tablero/internal/domain"
)

// ErrInvalidState reports a transition the session cannot take from its current state.
var ErrInvalidState = errors.New("invalid drag session state")

// State names the drag session lifecycle states.
type State int

// StateIdle and related constants define the session lifecycle.
const (
	StateIdle State = iota
	StateActive
	StateResolving
	StateCancelled
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateResolving:
		return "resolving"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mover applies the single board mutation a resolved gesture produces.
type Mover interface {
	MoveTask(ctx context.Context, taskID string, from, to domain.ColumnID, targetIndex int) (bool, error)
}

// Target is a resolved drop destination.
type Target struct {
	Column domain.ColumnID
	Index  int
}

// Gesture describes the in-progress relocation.
type Gesture struct {
	TaskID       string
	OriginColumn domain.ColumnID
	OriginIndex  int
	PointerX     *float64
}

// Outcome reports how a gesture resolved.
type Outcome struct {
	Gesture   Gesture
	Target    *Target
	Moved     bool
	Cancelled bool
}

// Session is the drag state machine. At most one gesture is live at a time;
// the board is only touched when End resolves a gesture with a target.
type Session struct {
	mover       Mover
	focus       *FocusController
	state       State
	gesture     Gesture
	originFocus domain.ColumnID
}

// NewSession constructs an idle session. focus may be nil when the
// presentation shows every column at once.
func NewSession(mover Mover, focus *FocusController) *Session {
	return &Session{mover: mover, focus: focus}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Active reports whether a gesture is in progress.
func (s *Session) Active() bool {
	return s.state == StateActive
}

// Gesture returns the live gesture, if any.
func (s *Session) Gesture() (Gesture, bool) {
	if s.state != StateActive {
		return Gesture{}, false
	}
	g := s.gesture
	if g.PointerX != nil {
		x := *g.PointerX
		g.PointerX = &x
	}
	return g, true
}

// Start begins a gesture for taskID picked up at originColumn/originIndex.
func (s *Session) Start(taskID string, originColumn domain.ColumnID, originIndex int) error {
	if s.state == StateActive {
		return fmt.Errorf("%w: gesture for %q already active", ErrInvalidState, s.gesture.TaskID)
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidID)
	}
	s.gesture = Gesture{
		TaskID:       taskID,
		OriginColumn: originColumn,
		OriginIndex:  originIndex,
	}
	if s.focus != nil {
		s.originFocus = s.focus.Active()
		s.focus.Reset()
	}
	s.state = StateActive
	return nil
}

// StartAt begins a pointer gesture picked up at pointerX. The band under the
// pickup point counts as already crossed.
func (s *Session) StartAt(taskID string, originColumn domain.ColumnID, originIndex int, pointerX float64) error {
	if err := s.Start(taskID, originColumn, originIndex); err != nil {
		return err
	}
	x := pointerX
	s.gesture.PointerX = &x
	if s.focus != nil {
		s.focus.Arm(x)
	}
	return nil
}

// Update records the pointer position and forwards it to the focus
// controller. It reports whether focus moved.
func (s *Session) Update(pointerX float64) (bool, error) {
	if s.state != StateActive {
		return false, fmt.Errorf("%w: update while %s", ErrInvalidState, s.state)
	}
	x := pointerX
	s.gesture.PointerX = &x
	if s.focus == nil {
		return false, nil
	}
	return s.focus.Observe(x), nil
}

// Hover focuses the column whose drop zone the pointer is over.
func (s *Session) Hover(column domain.ColumnID) (bool, error) {
	if s.state != StateActive {
		return false, fmt.Errorf("%w: hover while %s", ErrInvalidState, s.state)
	}
	if s.focus == nil || s.focus.Active() == column {
		return false, nil
	}
	return s.focus.Select(column), nil
}

// End resolves the gesture. A nil target means the pointer was released
// outside every drop zone and the gesture resolves as a cancel.
func (s *Session) End(ctx context.Context, target *Target) (Outcome, error) {
	if s.state != StateActive {
		return Outcome{}, fmt.Errorf("%w: end while %s", ErrInvalidState, s.state)
	}
	if target == nil {
		return s.cancel(), nil
	}

	s.state = StateResolving
	g := s.gesture
	dest := *target
	moved, err := s.mover.MoveTask(ctx, g.TaskID, g.OriginColumn, dest.Column, dest.Index)
	s.finish()
	if err != nil {
		return Outcome{Gesture: g, Target: &dest}, err
	}
	return Outcome{Gesture: g, Target: &dest, Moved: moved}, nil
}

// EndInActive drops into the focused column at index, which is how a
// one-column presentation resolves a release over its visible list.
func (s *Session) EndInActive(ctx context.Context, index int) (Outcome, error) {
	if s.state != StateActive {
		return Outcome{}, fmt.Errorf("%w: end while %s", ErrInvalidState, s.state)
	}
	if s.focus == nil {
		return s.End(ctx, nil)
	}
	return s.End(ctx, &Target{Column: s.focus.Active(), Index: index})
}

// Cancel abandons the gesture and restores the pre-gesture focus.
func (s *Session) Cancel() (Outcome, error) {
	if s.state != StateActive {
		return Outcome{}, fmt.Errorf("%w: cancel while %s", ErrInvalidState, s.state)
	}
	return s.cancel(), nil
}

func (s *Session) cancel() Outcome {
	s.state = StateCancelled
	g := s.gesture
	if s.focus != nil {
		s.focus.Select(s.originFocus)
	}
	s.finish()
	return Outcome{Gesture: g, Cancelled: true}
}

// finish returns the session to idle and drops the gesture.
func (s *Session) finish() {
	if s.focus != nil {
		s.focus.Reset()
	}
	s.gesture = Gesture{}
	s.originFocus = ""
	s.state = StateIdle
}
