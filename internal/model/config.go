package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GatewayConfig holds the connection settings for the remote document
// store.
type GatewayConfig struct {
	// Endpoint is the root URL of the hosted document store API.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProjectID identifies the hosted project.
	ProjectID string `mapstructure:"project_id" yaml:"project_id"`

	// DatabaseID is the database holding the task collections.
	DatabaseID string `mapstructure:"database_id" yaml:"database_id"`

	// TasksCollection is the collection ID for task documents.
	TasksCollection string `mapstructure:"tasks_collection" yaml:"tasks_collection"`

	// CompletionsCollection is the collection ID for completion records.
	CompletionsCollection string `mapstructure:"completions_collection" yaml:"completions_collection"`
}

// ReminderConfig holds local reminder scheduling preferences.
type ReminderConfig struct {
	// DueHour is the local hour of day (0-23) a due-date reminder
	// fires at.
	DueHour int `mapstructure:"due_hour" yaml:"due_hour"`

	// SnoozeMinutes is the offset applied by the snooze action.
	SnoozeMinutes int `mapstructure:"snooze_minutes" yaml:"snooze_minutes"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Gateway  GatewayConfig  `mapstructure:"gateway" yaml:"gateway"`
	Reminder ReminderConfig `mapstructure:"reminder" yaml:"reminder"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`

	// DBPath is the location of the local reminder queue database.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskdue/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskdue", "config.yaml")
}

// defaultDBPath returns the default reminder queue location next to the
// config file.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "reminders.db")
	}
	return filepath.Join(home, ".config", "taskdue", "reminders.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Gateway: GatewayConfig{
			Endpoint:              "https://cloud.appwrite.io/v1",
			TasksCollection:       "tasks",
			CompletionsCollection: "completions",
		},
		Reminder: ReminderConfig{
			DueHour:       9,
			SnoozeMinutes: 10,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		DBPath: defaultDBPath(),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("gateway.endpoint", "https://cloud.appwrite.io/v1")
	v.SetDefault("gateway.tasks_collection", "tasks")
	v.SetDefault("gateway.completions_collection", "completions")
	v.SetDefault("reminder.due_hour", 9)
	v.SetDefault("reminder.snooze_minutes", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("db_path", defaultDBPath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("gateway", cfg.Gateway)
	v.Set("reminder", cfg.Reminder)
	v.Set("log", cfg.Log)
	v.Set("db_path", cfg.DBPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
