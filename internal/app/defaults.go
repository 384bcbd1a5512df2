package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"legalgist/internal/config"
)

// Defaults holds the default locations of gist's files.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - GIST_CONFIG_PATH: config file location (default: ~/.config/gist.toml)
//   - GIST_HOME: base directory for gist data (default: ~/.local/share/gist)
func GetDefaults() (*Defaults, error) {
	homeDir, homeErr := os.UserHomeDir()

	configPath := os.Getenv("GIST_CONFIG_PATH")
	if configPath == "" {
		if homeErr != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", homeErr)
		}
		configPath = filepath.Join(homeDir, ".config", "gist.toml")
	}

	baseDir := os.Getenv("GIST_HOME")
	if baseDir == "" {
		if homeErr != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", homeErr)
		}
		baseDir = filepath.Join(homeDir, ".local", "share", "gist")
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadEnv loads variables from the given .env files. Missing files are
// skipped and variables already set in the environment are kept.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ConfiguredAPIKey returns the first non-empty key of: the key linked into
// the binary, GEMINI_API_KEY from the environment, llm.api_key from cfg.
func ConfiguredAPIKey(linked string, cfg *config.Config) string {
	for _, k := range []string{linked, os.Getenv("GEMINI_API_KEY"), cfg.LLM.APIKey} {
		if k = strings.TrimSpace(k); k != "" {
			return k
		}
	}
	return ""
}
