package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvDataDir overrides the configured OpenCode storage directory.
const EnvDataDir = "OPENCODE_DATA_DIR"

// LoadEnv loads the first .env file found in the working directory or the
// config directory. Variables already set in the process environment are
// never overwritten. It returns the file that was loaded, if any.
func LoadEnv() string {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			continue
		}
		return path
	}
	return ""
}

func envPaths() []string {
	paths := []string{".env"}
	if wd, err := os.Getwd(); err == nil {
		paths[0] = filepath.Join(wd, ".env")
	}
	return append(paths, filepath.Join(Dir(), ".env"))
}
