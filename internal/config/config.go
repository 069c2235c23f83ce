// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Schedule  ScheduleConfig  `toml:"schedule"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	LLM       LLMConfig       `toml:"llm"`
	Storage   StorageConfig   `toml:"storage"`
	Log       LogConfig       `toml:"log"`
	UI        UIConfig        `toml:"ui"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "dark" or "light"
}

// ScheduleConfig holds study-hours settings.
type ScheduleConfig struct {
	StudyDays []string `toml:"study_days"` // e.g., ["monday", "tuesday", ...]
	DayStart  string   `toml:"day_start"`  // e.g., "09:00"
	DayEnd    string   `toml:"day_end"`    // e.g., "21:00"
}

// SchedulerConfig holds the conflict search policy.
type SchedulerConfig struct {
	BufferMinutes   int `toml:"buffer_minutes"`   // gap after a conflicting task
	MaxAttempts     int `toml:"max_attempts"`     // search bound
	DefaultDuration int `toml:"default_duration"` // minutes, when --duration is omitted
}

// Buffer returns the buffer as a time.Duration.
func (s SchedulerConfig) Buffer() time.Duration {
	return time.Duration(s.BufferMinutes) * time.Minute
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "openai", "lmstudio", "ollama"
	Model    string `toml:"model"`    // e.g., "gpt-4o-mini"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level    string `toml:"level"`    // "debug", "info", "warn", "error"
	Encoding string `toml:"encoding"` // "console" or "json"
	File     string `toml:"file"`     // empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			StudyDays: []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
			DayStart:  "08:00",
			DayEnd:    "22:00",
		},
		Scheduler: SchedulerConfig{
			BufferMinutes:   5,
			MaxAttempts:     100,
			DefaultDuration: 30,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			BaseURL:  "",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Level:    "warn",
			Encoding: "console",
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "studydesk.db"
	}
	return filepath.Join(home, ".local", "share", "studydesk", "studydesk.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "studydesk", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
// A .env file in the working directory is read first so overrides can live there.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads variables from a dotenv file if it exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("STUDYDESK_DAY_START"); v != "" {
		cfg.Schedule.DayStart = v
	}
	if v := os.Getenv("STUDYDESK_DAY_END"); v != "" {
		cfg.Schedule.DayEnd = v
	}
	if v := os.Getenv("STUDYDESK_STUDY_DAYS"); v != "" {
		days := strings.Split(v, ",")
		for i, d := range days {
			days[i] = strings.TrimSpace(d)
		}
		cfg.Schedule.StudyDays = days
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"STUDYDESK_BUFFER_MINUTES", &cfg.Scheduler.BufferMinutes},
		{"STUDYDESK_MAX_ATTEMPTS", &cfg.Scheduler.MaxAttempts},
		{"STUDYDESK_DEFAULT_DURATION", &cfg.Scheduler.DefaultDuration},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", e.name, v)
		}
		*e.dst = n
	}

	if v := os.Getenv("STUDYDESK_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("STUDYDESK_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("STUDYDESK_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("STUDYDESK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("STUDYDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STUDYDESK_LOG_ENCODING"); v != "" {
		cfg.Log.Encoding = v
	}
	if v := os.Getenv("STUDYDESK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	if v := os.Getenv("STUDYDESK_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateTime(c.Schedule.DayStart, "day_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.DayEnd, "day_end"); err != nil {
		return err
	}
	if c.Schedule.DayStart >= c.Schedule.DayEnd {
		return errors.New("day_start must be before day_end")
	}

	if len(c.Schedule.StudyDays) == 0 {
		return errors.New("at least one study day must be configured")
	}
	for _, day := range c.Schedule.StudyDays {
		if !isValidWeekday(day) {
			return fmt.Errorf("invalid study day: %s", day)
		}
	}

	if c.Scheduler.BufferMinutes < 0 {
		return errors.New("buffer_minutes cannot be negative")
	}
	if c.Scheduler.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	if c.Scheduler.DefaultDuration < 1 {
		return errors.New("default_duration must be at least 1")
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}

	switch strings.ToLower(c.Log.Encoding) {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log encoding: %s", c.Log.Encoding)
	}

	switch strings.ToLower(c.UI.Theme) {
	case "", "dark", "light":
	default:
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if _, err := time.Parse("15:04", t); err != nil {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

var validWeekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

func isValidWeekday(day string) bool {
	return validWeekdays[strings.ToLower(strings.TrimSpace(day))]
}

// IsStudyDay returns true if the given weekday name is a configured study day.
func (c *Config) IsStudyDay(weekday string) bool {
	weekday = strings.ToLower(weekday)
	for _, d := range c.Schedule.StudyDays {
		if strings.ToLower(strings.TrimSpace(d)) == weekday {
			return true
		}
	}
	return false
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
