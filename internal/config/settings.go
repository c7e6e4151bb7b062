package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the runtime settings of the server, read from the
// environment (and a .env file loaded by main).
type Settings struct {
	Addr          string
	DataDir       string
	UploadDir     string
	ModelDir      string
	DBPath        string
	SessionCookie string
}

// LoadSettings reads the settings and creates the data directories.
func LoadSettings() (*Settings, error) {
	dataDir := getenv("MIERIO_DATA_DIR", "user_data")
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", dataDir, err)
	}

	s := &Settings{
		Addr:          getenv("MIERIO_ADDR", ":8080"),
		DataDir:       absData,
		UploadDir:     filepath.Join(absData, "uploads"),
		ModelDir:      filepath.Join(absData, "settings", "json"),
		DBPath:        getenv("MIERIO_DB_PATH", filepath.Join(absData, "workspaces.db")),
		SessionCookie: getenv("MIERIO_SESSION_COOKIE", "mierio_session"),
	}

	for _, dir := range []string{s.UploadDir, s.ModelDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return s, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
