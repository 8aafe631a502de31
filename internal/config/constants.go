package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./readinglog.db"

	// DefaultStateFilePath is used when STORAGE_BACKEND=file
	DefaultStateFilePath = "./reading-state.json"

	// DefaultStorageKey names the single slot holding the reading state
	DefaultStorageKey = "reading_state_v1"

	DefaultCatalogBaseURL = "https://openlibrary.org"
	DefaultCoversBaseURL  = "https://covers.openlibrary.org"

	DefaultExportSchedule = "0 * * * *"
)
