package drag

import (
	"errors"
	"testing"

	"github.com/hylla/tablero/internal/domain"
)

var testColumns = []domain.ColumnID{"todo", "proceso", "done"}

func newTestFocus(t *testing.T, width float64) *FocusController {
	t.Helper()
	f, err := NewFocusController(testColumns, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewFocusController() error = %v", err)
	}
	f.SetViewportWidth(width)
	return f
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Thresholds
		ok   bool
	}{
		{name: "default", in: DefaultThresholds(), ok: true},
		{name: "half split", in: Thresholds{Left: 0.5, Right: 0.5}, ok: true},
		{name: "zero left", in: Thresholds{Left: 0, Right: 0.75}},
		{name: "left past half", in: Thresholds{Left: 0.6, Right: 0.75}},
		{name: "right below half", in: Thresholds{Left: 0.25, Right: 0.4}},
		{name: "right at edge", in: Thresholds{Left: 0.25, Right: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewFocusControllerRequiresColumns(t *testing.T) {
	if _, err := NewFocusController(nil, DefaultThresholds()); !errors.Is(err, domain.ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
}

func TestFocusObserveStepsOncePerCrossing(t *testing.T) {
	f := newTestFocus(t, 100)
	f.Select("done")

	for i := 0; i < 5; i++ {
		f.Observe(10)
	}
	if f.Active() != "proceso" {
		t.Fatalf("expected one step to proceso, got %q", f.Active())
	}

	f.Observe(50)
	if f.Active() != "proceso" {
		t.Fatalf("neutral band must not move focus, got %q", f.Active())
	}
	if !f.Observe(20) {
		t.Fatal("expected second crossing to step")
	}
	if f.Active() != "todo" {
		t.Fatalf("expected todo after second crossing, got %q", f.Active())
	}
	f.Observe(50)
	if f.Observe(5) {
		t.Fatal("expected no step past the first column")
	}
}

func TestFocusObserveRightEdge(t *testing.T) {
	f := newTestFocus(t, 80)
	if !f.Observe(79) {
		t.Fatal("expected step right")
	}
	if f.Active() != "proceso" {
		t.Fatalf("unexpected active %q", f.Active())
	}
	// Jumping straight across the board is a fresh crossing.
	if !f.Observe(1) {
		t.Fatal("expected step left after jumping bands")
	}
	if f.Active() != "todo" {
		t.Fatalf("unexpected active %q", f.Active())
	}
}

func TestFocusObserveBoundariesAreExclusive(t *testing.T) {
	f := newTestFocus(t, 100)
	f.Select("proceso")
	if f.Observe(25) || f.Observe(75) {
		t.Fatal("points exactly on a threshold stay neutral")
	}
	if f.Active() != "proceso" {
		t.Fatalf("unexpected active %q", f.Active())
	}
}

func TestFocusObserveWithoutViewport(t *testing.T) {
	f := newTestFocus(t, 0)
	f.Select("proceso")
	if f.Observe(0) {
		t.Fatal("expected no step without a known viewport width")
	}
}

func TestFocusSelectAndStep(t *testing.T) {
	f := newTestFocus(t, 100)
	if f.Select("archive") {
		t.Fatal("expected unknown column select to fail")
	}
	if !f.Select("done") || f.ActiveIndex() != 2 {
		t.Fatalf("unexpected active index %d", f.ActiveIndex())
	}
	if f.Step(1) {
		t.Fatal("expected step past the last column to report false")
	}
	if !f.Step(-2) || f.Active() != "todo" {
		t.Fatalf("unexpected active %q", f.Active())
	}
}

func TestFocusArmSuppressesStartingBand(t *testing.T) {
	f := newTestFocus(t, 100)
	f.Select("proceso")

	if zone := f.Arm(5); zone != ZoneLeft {
		t.Fatalf("Arm(5) = %v, want ZoneLeft", zone)
	}
	for _, x := range []float64{6, 9, 2} {
		if f.Observe(x) {
			t.Fatalf("Observe(%v) stepped while still in the armed band", x)
		}
	}
	if f.Active() != "proceso" {
		t.Fatalf("expected focus to stay on proceso, got %q", f.Active())
	}
	f.Observe(50)
	if !f.Observe(10) || f.Active() != "todo" {
		t.Fatalf("expected re-entry to step to todo, got %q", f.Active())
	}
}
