package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmorrow/cognitrack/internal/constants"
)

// Color is a symbolic tag from the fixed palette. It is persisted with the
// habit but only interpreted by the presentation layer.
type Color string

const (
	ColorEmerald Color = "emerald"
	ColorBlue    Color = "blue"
	ColorViolet  Color = "violet"
	ColorCyan    Color = "cyan"
	ColorAmber   Color = "amber"
	ColorRose    Color = "rose"
	ColorSlate   Color = "slate"
)

// Palette returns the fixed set of habit colors.
func Palette() []Color {
	return []Color{ColorEmerald, ColorBlue, ColorViolet, ColorCyan, ColorAmber, ColorRose, ColorSlate}
}

// Valid reports whether c is part of the palette.
func (c Color) Valid() bool {
	for _, p := range Palette() {
		if c == p {
			return true
		}
	}
	return false
}

var (
	ErrEmptyHabitName = errors.New("habit name cannot be empty")
	ErrInvalidColor   = errors.New("color is not part of the palette")
	ErrInvalidHabitID = errors.New("invalid habit id")
)

// Habit represents a recurring behavior to track. Habits are immutable once
// created except for deletion, which cascades to their completions.
type Habit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     Color  `json:"color"`
	Icon      string `json:"icon"` // empty means no icon; the remote store rejects omitted fields
	CreatedAt string `json:"createdAt"` // YYYY-MM-DD
}

// NewHabit creates a habit with a fresh id, created today.
func NewHabit(name string, color Color, icon string, today time.Time) (Habit, error) {
	h := Habit{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Color:     color,
		Icon:      icon,
		CreatedAt: today.Format(constants.DateFormat),
	}
	if err := h.Validate(); err != nil {
		return Habit{}, err
	}
	return h, nil
}

// Validate checks the invariants a habit must hold before it is persisted.
func (h Habit) Validate() error {
	if h.ID == "" || strings.Contains(h.ID, constants.CompletionKeySeparator) {
		// The separator would make completion document keys ambiguous.
		return fmt.Errorf("%w: %q", ErrInvalidHabitID, h.ID)
	}
	if h.Name == "" {
		return ErrEmptyHabitName
	}
	if !h.Color.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColor, h.Color)
	}
	return nil
}

// HabitCompletion records a habit's status on one calendar day. At most one
// record exists per (HabitID, Date) pair.
type HabitCompletion struct {
	HabitID   string `json:"habitId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}

// Key derives the deterministic remote document key for the completion.
func (c HabitCompletion) Key() string {
	return CompletionKey(c.HabitID, c.Date)
}

// CompletionKey joins a habit id and a date into a remote document key.
func CompletionKey(habitID, date string) string {
	return habitID + constants.CompletionKeySeparator + date
}
