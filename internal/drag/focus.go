package drag

import (
	"fmt"

	"github.com/hylla/tablero/internal/domain"
)

// Thresholds holds the viewport fractions that trigger a focus step.
type Thresholds struct {
	Left  float64
	Right float64
}

// DefaultThresholds returns the stock quarter-width edges.
func DefaultThresholds() Thresholds {
	return Thresholds{Left: 0.25, Right: 0.75}
}

// Validate checks Left in (0, 0.5] and Right in [0.5, 1).
func (t Thresholds) Validate() error {
	if t.Left <= 0 || t.Left > 0.5 {
		return fmt.Errorf("%w: left threshold %v outside (0, 0.5]", domain.ErrValidation, t.Left)
	}
	if t.Right < 0.5 || t.Right >= 1 {
		return fmt.Errorf("%w: right threshold %v outside [0.5, 1)", domain.ErrValidation, t.Right)
	}
	return nil
}

// Zone classifies a pointer position against the thresholds.
type Zone int

// ZoneNeutral and related constants name the three horizontal bands.
const (
	ZoneNeutral Zone = iota
	ZoneLeft
	ZoneRight
)

// FocusController tracks the single active column of a one-column
// presentation and steps it while a drag crosses a screen edge.
type FocusController struct {
	columns    []domain.ColumnID
	active     int
	thresholds Thresholds
	width      float64
	zone       Zone
}

// NewFocusController constructs a controller focused on the first column.
func NewFocusController(columns []domain.ColumnID, thresholds Thresholds) (*FocusController, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrNoColumns)
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &FocusController{
		columns:    append([]domain.ColumnID(nil), columns...),
		thresholds: thresholds,
	}, nil
}

// Active returns the focused column.
func (f *FocusController) Active() domain.ColumnID {
	return f.columns[f.active]
}

// ActiveIndex returns the focused column position.
func (f *FocusController) ActiveIndex() int {
	return f.active
}

// Columns returns the ordered column ids.
func (f *FocusController) Columns() []domain.ColumnID {
	return append([]domain.ColumnID(nil), f.columns...)
}

// Select focuses id directly, as a tab click does.
func (f *FocusController) Select(id domain.ColumnID) bool {
	for idx, col := range f.columns {
		if col == id {
			f.active = idx
			return true
		}
	}
	return false
}

// Step moves focus by delta columns, stopping at either end.
func (f *FocusController) Step(delta int) bool {
	next := min(max(f.active+delta, 0), len(f.columns)-1)
	if next == f.active {
		return false
	}
	f.active = next
	return true
}

// SetViewportWidth records the width pointer positions are measured against.
func (f *FocusController) SetViewportWidth(width float64) {
	f.width = width
}

// ViewportWidth returns the recorded viewport width.
func (f *FocusController) ViewportWidth() float64 {
	return f.width
}

// Classify maps x to its band for the current viewport.
func (f *FocusController) Classify(x float64) Zone {
	if f.width <= 0 {
		return ZoneNeutral
	}
	switch {
	case x < f.width*f.thresholds.Left:
		return ZoneLeft
	case x > f.width*f.thresholds.Right:
		return ZoneRight
	default:
		return ZoneNeutral
	}
}

// Observe handles one pointer update. Entering an edge band steps focus once;
// the band must be left through the neutral band before it fires again.
func (f *FocusController) Observe(x float64) bool {
	zone := f.Classify(x)
	if zone == f.zone {
		return false
	}
	f.zone = zone
	switch zone {
	case ZoneLeft:
		return f.Step(-1)
	case ZoneRight:
		return f.Step(1)
	default:
		return false
	}
}

// Arm records the band under x without stepping, so a gesture that begins
// inside an edge band must leave it before that edge can fire.
func (f *FocusController) Arm(x float64) Zone {
	f.zone = f.Classify(x)
	return f.zone
}

// ArmedZone returns the band the last pointer update landed in.
func (f *FocusController) ArmedZone() Zone {
	return f.zone
}

// Reset forgets the last crossing so the next gesture starts unarmed.
func (f *FocusController) Reset() {
	f.zone = ZoneNeutral
}
