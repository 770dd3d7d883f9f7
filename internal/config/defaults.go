package config

// Storage defaults
const (
	DefaultStorageDir = ".planner"
	DefaultStorageKey = "campus-life-planner-data"
)

// Planner defaults
const (
	DefaultWeeklyTargetHours = 20.0
	DefaultSampleData        = true
	DefaultSortField         = "dueDate"
	DefaultSortDirection     = "asc"
)

// DefaultSearchFields are the task fields searched when none are configured.
var DefaultSearchFields = []string{"title", "tag"}

// Export defaults
const (
	DefaultExportFilename = "campus-life-planner-data.json"
)

// Log defaults
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)
