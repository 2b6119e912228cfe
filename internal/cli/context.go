package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmorrow/cognitrack/internal/auth"
	"github.com/jmorrow/cognitrack/internal/cache"
	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/models"
	"github.com/jmorrow/cognitrack/internal/planner"
	"github.com/jmorrow/cognitrack/internal/remote"
	"github.com/jmorrow/cognitrack/internal/sync"
)

const remoteEnvVar = "COGNITRACK_REMOTE"

// Context carries the wired application collaborators into command Run
// methods.
type Context struct {
	Engine    *sync.Engine
	Planner   *planner.Planner
	Cache     cache.Store
	Remote    remote.Store
	Auth      *auth.Client
	ConfigDir string
}

// Today returns the current calendar day in the standard format.
func (c *Context) Today() string {
	return time.Now().Format(constants.DateFormat)
}

// RequireAuth fails when no identity provider was configured.
func (c *Context) RequireAuth() error {
	if c.Auth == nil || c.Remote == nil {
		return fmt.Errorf("no remote configured; set --remote or %s", remoteEnvVar)
	}
	return nil
}

// FindHabit resolves a habit by exact id or case-insensitive name.
func (c *Context) FindHabit(ref string) (models.Habit, error) {
	habits := c.Engine.Habits()
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("no habit named %q", ref)
}
