package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/models"
)

// Session is the persisted identity of the current CLI user. Successive
// invocations stay signed in until SignOut removes the file.
type Session struct {
	User models.User `json:"user"`
}

// SaveSession writes the session file under dir, creating the directory if
// needed.
func SaveSession(dir string, user models.User) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := json.MarshalIndent(Session{User: user}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(sessionPath(dir), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads the persisted session. A missing file means signed out
// and returns (nil, nil).
func LoadSession(dir string) (*models.User, error) {
	data, err := os.ReadFile(sessionPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	if sess.User.UID == "" {
		return nil, nil
	}
	return &sess.User, nil
}

// ClearSession removes the session file. Clearing an absent session is not
// an error.
func ClearSession(dir string) error {
	if err := os.Remove(sessionPath(dir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func sessionPath(dir string) string {
	return filepath.Join(dir, constants.SessionFileName)
}
