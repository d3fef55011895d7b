package config

// Default paths used when no environment override is set.
const (
	// DefaultDatabasePath is the default path for the main catalog database.
	DefaultDatabasePath = "./kitsu-engine.db"

	// DefaultMediaRoot is where localized posters and other assets land.
	DefaultMediaRoot = "./media"
)
