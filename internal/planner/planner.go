// Package planner manages the per-device time-slot assignments of habits.
// Slots live only in the local cache and are never synchronized remotely.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmorrow/cognitrack/internal/cache"
	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/models"
)

var ErrEmptyHabitID = errors.New("habit id cannot be empty")

type Planner struct {
	cache cache.Store
}

func New(store cache.Store) *Planner {
	return &Planner{cache: store}
}

// Assign places a habit into the slot at (date, timeOfDay), replacing any
// previous assignment.
func (p *Planner) Assign(date, timeOfDay, habitID string) error {
	if habitID == "" {
		return ErrEmptyHabitID
	}
	if err := validateSlot(date, timeOfDay); err != nil {
		return err
	}

	slots, err := p.cache.Slots()
	if err != nil {
		return fmt.Errorf("failed to load planner slots: %w", err)
	}
	slots.Assign(date, timeOfDay, habitID)
	return p.cache.SaveSlots(slots)
}

// Clear empties the slot at (date, timeOfDay).
func (p *Planner) Clear(date, timeOfDay string) error {
	if err := validateSlot(date, timeOfDay); err != nil {
		return err
	}

	slots, err := p.cache.Slots()
	if err != nil {
		return fmt.Errorf("failed to load planner slots: %w", err)
	}
	slots.Clear(date, timeOfDay)
	return p.cache.SaveSlots(slots)
}

// Day returns the assignments for one date, keyed by time-of-day. The map
// is empty when nothing is planned.
func (p *Planner) Day(date string) (map[string]string, error) {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}

	slots, err := p.cache.Slots()
	if err != nil {
		return nil, fmt.Errorf("failed to load planner slots: %w", err)
	}
	day := make(map[string]string, len(slots[date]))
	for tod, habitID := range slots[date] {
		day[tod] = habitID
	}
	return day, nil
}

// All returns every assignment on this device.
func (p *Planner) All() (models.SlotMap, error) {
	return p.cache.Slots()
}

func validateSlot(date, timeOfDay string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	if _, err := time.Parse(constants.TimeFormat, timeOfDay); err != nil {
		return fmt.Errorf("invalid time %q (expected HH:MM)", timeOfDay)
	}
	return nil
}
