package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Forecast source kinds.
const (
	ForecastSourceFiles = "files"
	ForecastSourceHTTP  = "http"
)

// Snapshot source kinds.
const (
	SnapshotSourceCSV      = "csv"
	SnapshotSourceXLSX     = "xlsx"
	SnapshotSourcePostgres = "postgres"
)

// ForecastConfig selects where per-model forecast tables come from.
type ForecastConfig struct {
	Source  string   `yaml:"source,omitempty" validate:"omitempty,oneof=files http"`
	Dir     string   `yaml:"dir,omitempty"`
	BaseURL string   `yaml:"baseURL,omitempty" validate:"omitempty,url"`
	Models  []string `yaml:"models,omitempty"`
}

// SnapshotConfig selects where inventory and staffing snapshots come from.
type SnapshotConfig struct {
	Source        string `yaml:"source,omitempty" validate:"omitempty,oneof=csv xlsx postgres"`
	InventoryPath string `yaml:"inventoryPath,omitempty"`
	StaffingPath  string `yaml:"staffingPath,omitempty"`
	PostgresURL   string `yaml:"postgresURL,omitempty"`
}

// RosterSheetConfig points at the Google Sheet holding the live on-call
// roster. When enabled it overrides the staffing snapshot's on-call columns.
type RosterSheetConfig struct {
	Enabled       bool   `yaml:"enabled,omitempty"`
	SpreadsheetID string `yaml:"spreadsheetID,omitempty"`
	Tab           string `yaml:"tab,omitempty"`
}

// SurgeContextConfig carries the ambient surge signals that cannot be derived
// from the calendar: air quality and epidemic alerts, plus manual overrides
// for the calendar-derived signals.
type SurgeContextConfig struct {
	AQI           float64 `yaml:"aqi,omitempty" validate:"omitempty,min=0"`
	EventType     string  `yaml:"eventType,omitempty"`
	Season        string  `yaml:"season,omitempty"`
	EpidemicAlert bool    `yaml:"epidemicAlert,omitempty"`
	DiseaseName   string  `yaml:"diseaseName,omitempty"`
}

// SurgeWindow defines one recurring surge window on the calendar.
type SurgeWindow struct {
	Label        string `yaml:"label" validate:"required"`
	Kind         string `yaml:"kind" validate:"required,oneof=festival season"`
	RRule        string `yaml:"rrule" validate:"required"`
	DurationDays int    `yaml:"durationDays,omitempty" validate:"omitempty,min=1"`
}

// Config represents the application configuration
type Config struct {
	DataDir              string             `yaml:"dataDir,omitempty"`
	OutputDir            string             `yaml:"outputDir,omitempty"`
	BufferMultiplier     float64            `yaml:"bufferMultiplier,omitempty" validate:"omitempty,gt=1"`
	TargetDepartment     string             `yaml:"targetDepartment,omitempty"`
	Forecast             ForecastConfig     `yaml:"forecast,omitempty"`
	Snapshots            SnapshotConfig     `yaml:"snapshots,omitempty"`
	RosterSheet          RosterSheetConfig  `yaml:"rosterSheet,omitempty"`
	DepartmentPriorities map[string]int     `yaml:"departmentPriorities,omitempty" validate:"omitempty,dive,min=1,max=9"`
	SurgeContext         SurgeContextConfig `yaml:"surgeContext,omitempty"`
	SurgeCalendar        []SurgeWindow      `yaml:"surgeCalendar,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from surgeplan_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads and validates the configuration with an environment suffix
// For example, env="prod" will look for "surgeplan_config.prod.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills the optional sections so the rest of the application
// never has to re-check them.
func (cfg *Config) applyDefaults() {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.BufferMultiplier == 0 {
		cfg.BufferMultiplier = 1.2
	}
	if cfg.TargetDepartment == "" {
		cfg.TargetDepartment = "Emergency"
	}

	if cfg.Forecast.Source == "" {
		cfg.Forecast.Source = ForecastSourceFiles
	}
	if cfg.Forecast.Dir == "" {
		cfg.Forecast.Dir = cfg.DataDir
	}
	if len(cfg.Forecast.Models) == 0 {
		cfg.Forecast.Models = []string{"lightgbm", "xgboost", "random_forest"}
	}

	if cfg.Snapshots.Source == "" {
		cfg.Snapshots.Source = SnapshotSourceCSV
	}
	if cfg.Snapshots.InventoryPath == "" {
		cfg.Snapshots.InventoryPath = filepath.Join(cfg.DataDir, "supply_inventory.csv")
	}
	if cfg.Snapshots.StaffingPath == "" {
		cfg.Snapshots.StaffingPath = filepath.Join(cfg.DataDir, "staff_availability.csv")
	}

	if len(cfg.DepartmentPriorities) == 0 {
		cfg.DepartmentPriorities = map[string]int{
			"Emergency":   1,
			"ICU":         1,
			"Surgery":     2,
			"OPD":         4,
			"Dermatology": 5,
		}
	}
}

// Validate validates the configuration struct, the source-specific required
// fields, and the rrule syntax of every calendar window
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Forecast.Source == ForecastSourceHTTP && cfg.Forecast.BaseURL == "" {
		return fmt.Errorf("config validation failed: forecast.baseURL is required when forecast.source is %q", ForecastSourceHTTP)
	}

	if cfg.Snapshots.Source == SnapshotSourcePostgres && cfg.Snapshots.PostgresURL == "" {
		return fmt.Errorf("config validation failed: snapshots.postgresURL is required when snapshots.source is %q", SnapshotSourcePostgres)
	}

	if cfg.RosterSheet.Enabled && (cfg.RosterSheet.SpreadsheetID == "" || cfg.RosterSheet.Tab == "") {
		return fmt.Errorf("config validation failed: rosterSheet.spreadsheetID and rosterSheet.tab are required when the roster sheet is enabled")
	}

	// Validate rrule syntax for each calendar window
	for i, window := range cfg.SurgeCalendar {
		if _, err := rrule.StrToRRule(window.RRule); err != nil {
			return fmt.Errorf("invalid rrule in surgeCalendar[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for the config file in current directory and home directory
// An environment-suffixed file takes precedence over the plain one
func findConfigFile(env string) (string, error) {
	candidates := []string{"surgeplan_config.yaml"}
	if env != "" {
		candidates = []string{fmt.Sprintf("surgeplan_config.%s.yaml", env), "surgeplan_config.yaml"}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, name := range candidates {
		// Check current directory
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}

		// Check home directory
		homePath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homePath); err == nil {
			return homePath, nil
		}
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
