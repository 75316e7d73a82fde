// Package config handles the XDG configuration directory, its files, and the
// optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todolist"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// Storage backends.
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	// Storage selects and tunes the durable slot.
	Storage Storage `yaml:"storage"`

	// Remote configures the Google Tasks mirror.
	Remote Remote `yaml:"remote"`

	// Logger is set by the dispatcher from Debug. Nil means discard.
	Logger *slog.Logger `yaml:"-"`
}

// Storage configures the durable slot.
type Storage struct {
	// Backend is "sqlite" or "memory". Memory keeps the list only while the
	// process runs, so it suits tui and watch.
	Backend string `yaml:"backend"`

	// Path is the SQLite database file, relative to Dir unless absolute.
	Path string `yaml:"path"`

	// Key is the slot key holding the list.
	Key string `yaml:"key"`

	// QuotaBytes caps the stored size. 0 disables the cap.
	QuotaBytes int `yaml:"quota_bytes"`

	// PollInterval is how often other sessions' writes are checked for.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Remote configures the Google Tasks mirror.
type Remote struct {
	// List is the title of the Google Tasks list used by push and pull.
	List string `yaml:"list"`
}

// Defaults returns the built-in settings.
func Defaults() (Storage, Remote) {
	storage := Storage{
		Backend:      BackendSQLite,
		Path:         "todolist.db",
		Key:          "todoListState",
		QuotaBytes:   5 << 20,
		PollInterval: 500 * time.Millisecond,
	}
	remote := Remote{List: "Todo List"}
	return storage, remote
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todolist or $HOME/.config/todolist.
// Settings start from Defaults; call Load to apply config.yaml.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	storage, remote := Defaults()
	return &Config{Dir: dir, Storage: storage, Remote: remote}, nil
}

// Load reads config.yaml from the config directory, if present, over the
// current settings and validates the result.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, os.ErrNotExist) {
		return c.validate()
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid %s: unknown storage backend: %q", ConfigFile, c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("invalid %s: storage key must not be empty", ConfigFile)
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("invalid %s: quota_bytes must not be negative", ConfigFile)
	}
	if c.Storage.PollInterval < 0 {
		return fmt.Errorf("invalid %s: poll_interval must not be negative", ConfigFile)
	}
	if c.Storage.Backend == BackendSQLite && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("invalid %s: storage path must not be empty", ConfigFile)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(c.Dir, c.Storage.Path)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// Log returns the configured logger, or one that discards everything.
func (c *Config) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// NewLogger returns a debug-level text logger on w when debug is set, and a
// discarding logger otherwise.
func NewLogger(debug bool, w io.Writer) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
