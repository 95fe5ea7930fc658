package tui

import (
	"github.com/atotto/clipboard"

	"github.com/hylla/tablero/internal/drag"
)

// Layout selects how columns are laid out on screen.
type Layout string

// LayoutTabs and related constants define package defaults.
const (
	LayoutTabs    Layout = "tabs"
	LayoutColumns Layout = "columns"
)

type Option func(*Model)

// WithLayout picks tabs (one visible column) or side-by-side columns.
func WithLayout(layout Layout) Option {
	return func(m *Model) {
		switch layout {
		case LayoutTabs, LayoutColumns:
			m.layout = layout
		}
	}
}

// WithThresholds sets the edge fractions that switch tabs during a drag.
func WithThresholds(th drag.Thresholds) Option {
	return func(m *Model) {
		if th.Validate() == nil {
			m.thresholds = th
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}
