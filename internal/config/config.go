package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for gist.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Storage    StorageConfig    `toml:"storage"`
	Encryption EncryptionConfig `toml:"encryption"`
	Staging    StagingConfig    `toml:"staging"`
	LLM        LLMConfig        `toml:"llm"`
}

// StorageConfig selects the key-value backend holding conversations, the
// identity and the cached API key.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "sqlite", "badger", "bolt" or "s3"

	// Local path used by the filesystem, sqlite, badger and bolt backends.
	// A directory for filesystem and badger, a file for sqlite and bolt.
	Path string `toml:"path,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// Optional S3-compatible endpoint and static credentials. Without
	// credentials the default AWS credential chain is used.
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig controls at-rest encryption of stored values.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// StagingConfig represents configuration for the attachment staging area.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StagingConfig struct {
	Type       string `toml:"type"`                  // "memory" or "filesystem"
	StagingDir string `toml:"staging_dir,omitempty"` // only used for type=filesystem
	MaxSize    int64  `toml:"max_size"`              // max total staged bytes; defaults to 64MB
}

// LLMConfig selects the transport used to reach the model.
type LLMConfig struct {
	Transport string `toml:"transport"` // "rest" (default) or "genai"
	Model     string `toml:"model,omitempty"`
	BaseURL   string `toml:"base_url,omitempty"` // only used for transport=rest
	APIKey    string `toml:"api_key,omitempty"`
}

// NewConfig creates a Config rooted at baseDir with filesystem storage and
// in-memory staging.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type: "filesystem",
			Path: filepath.Join(baseDir, "storage"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "gist.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "gist.key"),
		},
		Staging: StagingConfig{Type: "memory"},
		LLM:     LLMConfig{Transport: "rest"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
