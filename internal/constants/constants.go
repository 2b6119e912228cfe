package constants

const (
	AppName           = "cognitrack"
	DefaultConfigDir  = "~/.config/cognitrack"
	DefaultCachePath  = "~/.config/cognitrack/cognitrack.json"
	SessionFileName   = "session.json"
	Version           = "v0.3.0"

	// DateFormat is the standard calendar-day format used throughout the
	// application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time-of-day format used by planner slots (HH:MM)
	TimeFormat = "15:04"

	// Local cache keys. Values are JSON-serialized.
	CacheKeyHabits      = "cognitrack_habits"
	CacheKeyCompletions = "cognitrack_completions"
	CacheKeyPlanner     = "cognitrack_planner"
	CacheKeyAPIKey      = "cognitrack_api_key"

	// KeyringInsightUser is the keyring account name for the insight-service
	// credential
	KeyringInsightUser = "insight-api-key"

	// CompletionKeySeparator joins habit id and date into a deterministic
	// remote document key. Habit ids must never contain it.
	CompletionKeySeparator = "_"

	// StreakLookbackDays bounds the backward walk when computing streaks
	StreakLookbackDays = 365

	// WeeklyWindowDays is the size of the rolling completion histogram
	WeeklyWindowDays = 7
)
