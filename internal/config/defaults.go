package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Visits: VisitsConfig{
			Limit: 100,
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			Path:       "~/.config/backstage/visits",
			SQLiteFile: "visits.db",
			VisitsFile: "visits.json",
		},
	}
}
