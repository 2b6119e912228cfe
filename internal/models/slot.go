package models

// SlotMap holds the planner assignments for a device: date -> time-of-day ->
// habit id. Slots are device-local and never synchronized remotely, so no
// cross-device consistency is guaranteed.
type SlotMap map[string]map[string]string

// Assign places a habit into the slot at (date, timeOfDay), replacing any
// previous assignment.
func (m SlotMap) Assign(date, timeOfDay, habitID string) {
	if m[date] == nil {
		m[date] = make(map[string]string)
	}
	m[date][timeOfDay] = habitID
}

// Clear empties the slot at (date, timeOfDay). Empty days are dropped.
func (m SlotMap) Clear(date, timeOfDay string) {
	day, ok := m[date]
	if !ok {
		return
	}
	delete(day, timeOfDay)
	if len(day) == 0 {
		delete(m, date)
	}
}

// PruneHabit removes every assignment referencing the given habit. Returns
// the number of slots cleared.
func (m SlotMap) PruneHabit(habitID string) int {
	pruned := 0
	for date, day := range m {
		for tod, id := range day {
			if id == habitID {
				delete(day, tod)
				pruned++
			}
		}
		if len(day) == 0 {
			delete(m, date)
		}
	}
	return pruned
}
