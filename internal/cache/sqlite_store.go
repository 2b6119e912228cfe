package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/logger"
	"github.com/jmorrow/cognitrack/internal/models"
)

// SQLiteStore persists the cache in a single-table SQLite database,
// key-value with JSON-serialized values like the JSON provider.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create cache table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	return s.Init()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) get(key string, v any) (bool, error) {
	if s.db == nil {
		return false, ErrNotLoaded
	}
	var raw string
	err := s.db.QueryRow("SELECT value FROM cache WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Warn("Cache value is corrupted, treating as unset", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *SQLiteStore) put(key string, v any) error {
	if s.db == nil {
		return ErrNotLoaded
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	_, err = s.db.Exec(`INSERT INTO cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Habits() ([]models.Habit, bool, error) {
	var habits []models.Habit
	found, err := s.get(constants.CacheKeyHabits, &habits)
	return habits, found, err
}

func (s *SQLiteStore) SaveHabits(habits []models.Habit) error {
	if habits == nil {
		habits = []models.Habit{}
	}
	return s.put(constants.CacheKeyHabits, habits)
}

func (s *SQLiteStore) Completions() ([]models.HabitCompletion, bool, error) {
	var completions []models.HabitCompletion
	found, err := s.get(constants.CacheKeyCompletions, &completions)
	return completions, found, err
}

func (s *SQLiteStore) SaveCompletions(completions []models.HabitCompletion) error {
	if completions == nil {
		completions = []models.HabitCompletion{}
	}
	return s.put(constants.CacheKeyCompletions, completions)
}

func (s *SQLiteStore) Slots() (models.SlotMap, error) {
	slots := make(models.SlotMap)
	if _, err := s.get(constants.CacheKeyPlanner, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *SQLiteStore) SaveSlots(slots models.SlotMap) error {
	if slots == nil {
		slots = make(models.SlotMap)
	}
	return s.put(constants.CacheKeyPlanner, slots)
}

func (s *SQLiteStore) APIKey() (string, bool, error) {
	var key string
	found, err := s.get(constants.CacheKeyAPIKey, &key)
	return key, found, err
}

func (s *SQLiteStore) SaveAPIKey(key string) error {
	return s.put(constants.CacheKeyAPIKey, key)
}

func (s *SQLiteStore) DeleteAPIKey() error {
	if s.db == nil {
		return ErrNotLoaded
	}
	_, err := s.db.Exec("DELETE FROM cache WHERE key = ?", constants.CacheKeyAPIKey)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}
