package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/zametka/internal/storage"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Storage  StorageConfig     `yaml:"storage"`
	Snapshot SnapshotConfig    `yaml:"snapshot"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Snapshot.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// StorageConfig points at the directory holding one JSON file per note.
type StorageConfig struct {
	Path   string `yaml:"path"`
	Digits int    `yaml:"digits"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Digits, validation.Required, validation.Min(1), validation.Max(storage.MaxDigits)),
	)
}

// SnapshotConfig holds the SQLite mirror used by export and watch.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the snapshot configuration.
func (c *SnapshotConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// String summarises the effective settings for logs.
func (c *Config) String() string {
	return fmt.Sprintf("storage=%s digits=%d snapshot=%s log_level=%s",
		c.Storage.Path, c.Storage.Digits, c.Snapshot.Path, c.App.LogLevel)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Storage: StorageConfig{
			Path:   ".data.d",
			Digits: storage.DefaultDigits,
		},
		Snapshot: SnapshotConfig{
			Path: "./zametka.db",
		},
	}
}
