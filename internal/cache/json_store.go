package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/logger"
	"github.com/jmorrow/cognitrack/internal/models"
)

// JSONStore persists the cache as a single JSON file mapping string keys to
// JSON-serialized values.
type JSONStore struct {
	path string
	kv   map[string]json.RawMessage
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.kv = make(map[string]json.RawMessage)
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.kv = make(map[string]json.RawMessage)
			return nil
		}
		return fmt.Errorf("failed to read cache: %w", err)
	}

	s.kv = make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &s.kv); err != nil {
		// A corrupted cache falls back to an empty data set rather than
		// taking the application down.
		logger.Warn("Cache file is corrupted, starting from an empty data set", "path", s.path, "error", err)
		s.kv = make(map[string]json.RawMessage)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.kv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (s *JSONStore) get(key string, v any) (bool, error) {
	if s.kv == nil {
		return false, ErrNotLoaded
	}
	raw, ok := s.kv[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Warn("Cache value is corrupted, treating as unset", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *JSONStore) put(key string, v any) error {
	if s.kv == nil {
		return ErrNotLoaded
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	s.kv[key] = raw
	return s.save()
}

func (s *JSONStore) Habits() ([]models.Habit, bool, error) {
	var habits []models.Habit
	found, err := s.get(constants.CacheKeyHabits, &habits)
	return habits, found, err
}

func (s *JSONStore) SaveHabits(habits []models.Habit) error {
	if habits == nil {
		habits = []models.Habit{}
	}
	return s.put(constants.CacheKeyHabits, habits)
}

func (s *JSONStore) Completions() ([]models.HabitCompletion, bool, error) {
	var completions []models.HabitCompletion
	found, err := s.get(constants.CacheKeyCompletions, &completions)
	return completions, found, err
}

func (s *JSONStore) SaveCompletions(completions []models.HabitCompletion) error {
	if completions == nil {
		completions = []models.HabitCompletion{}
	}
	return s.put(constants.CacheKeyCompletions, completions)
}

func (s *JSONStore) Slots() (models.SlotMap, error) {
	slots := make(models.SlotMap)
	if _, err := s.get(constants.CacheKeyPlanner, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *JSONStore) SaveSlots(slots models.SlotMap) error {
	if slots == nil {
		slots = make(models.SlotMap)
	}
	return s.put(constants.CacheKeyPlanner, slots)
}

func (s *JSONStore) APIKey() (string, bool, error) {
	var key string
	found, err := s.get(constants.CacheKeyAPIKey, &key)
	return key, found, err
}

func (s *JSONStore) SaveAPIKey(key string) error {
	return s.put(constants.CacheKeyAPIKey, key)
}

func (s *JSONStore) DeleteAPIKey() error {
	if s.kv == nil {
		return ErrNotLoaded
	}
	delete(s.kv, constants.CacheKeyAPIKey)
	return s.save()
}
