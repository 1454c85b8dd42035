package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DataDir:          "./data",
		OutputDir:        "./output",
		BufferMultiplier: 1.2,
		TargetDepartment: "Emergency",
		Forecast: ForecastConfig{
			Source: ForecastSourceFiles,
			Dir:    "./data",
			Models: []string{"lightgbm", "xgboost"},
		},
		Snapshots: SnapshotConfig{
			Source:        SnapshotSourceCSV,
			InventoryPath: "./data/supply_inventory.csv",
			StaffingPath:  "./data/staff_availability.csv",
		},
		DepartmentPriorities: map[string]int{
			"Emergency": 1,
			"ICU":       1,
			"OPD":       4,
		},
		SurgeContext: SurgeContextConfig{
			AQI: 180,
		},
		SurgeCalendar: []SurgeWindow{
			{
				Label:        "Diwali",
				Kind:         "festival",
				RRule:        "FREQ=YEARLY;BYMONTH=10;BYMONTHDAY=20",
				DurationDays: 3,
			},
			{
				Label:        "Monsoon",
				Kind:         "season",
				RRule:        "FREQ=YEARLY;BYMONTH=6;BYMONTHDAY=1",
				DurationDays: 122,
			},
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_InvalidForecastSource(t *testing.T) {
	cfg := validConfig()
	cfg.Forecast.Source = "ftp"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidSnapshotSource(t *testing.T) {
	cfg := validConfig()
	cfg.Snapshots.Source = "sqlite"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_BufferMultiplierMustExceedOne(t *testing.T) {
	cfg := validConfig()
	cfg.BufferMultiplier = 1.0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_HTTPForecastRequiresBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Forecast.Source = ForecastSourceHTTP
	cfg.Forecast.BaseURL = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast.baseURL is required")
}

func TestValidate_PostgresSnapshotsRequireURL(t *testing.T) {
	cfg := validConfig()
	cfg.Snapshots.Source = SnapshotSourcePostgres
	cfg.Snapshots.PostgresURL = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshots.postgresURL is required")
}

func TestValidate_EnabledRosterSheetRequiresIDAndTab(t *testing.T) {
	cfg := validConfig()
	cfg.RosterSheet = RosterSheetConfig{
		Enabled:       true,
		SpreadsheetID: "1abc",
		// Missing Tab
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rosterSheet.spreadsheetID and rosterSheet.tab are required")
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.SurgeCalendar[1].RRule = "FREQ=BANANA"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in surgeCalendar[1]")
}

func TestValidate_WindowMissingLabel(t *testing.T) {
	cfg := validConfig()
	cfg.SurgeCalendar[0].Label = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_WindowKindMustBeFestivalOrSeason(t *testing.T) {
	cfg := validConfig()
	cfg.SurgeCalendar[0].Kind = "weather"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_DepartmentPriorityOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.DepartmentPriorities["Emergency"] = 0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	configContent := `dataDir: /srv/surgeplan/data
outputDir: /srv/surgeplan/output
bufferMultiplier: 1.5
targetDepartment: ICU
forecast:
  source: http
  baseURL: https://forecasts.hospital.example.com
  models:
    - lightgbm
    - xgboost
snapshots:
  source: csv
  inventoryPath: /srv/surgeplan/data/supply_inventory.csv
  staffingPath: /srv/surgeplan/data/staff_availability.csv
departmentPriorities:
  Emergency: 1
  ICU: 1
  Surgery: 2
surgeContext:
  aqi: 210.5
  epidemicAlert: true
  diseaseName: dengue
surgeCalendar:
  - label: Diwali
    kind: festival
    rrule: FREQ=YEARLY;BYMONTH=10;BYMONTHDAY=20
    durationDays: 3
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "surgeplan_config.yaml")
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)

	require.NoError(t, err)
	assert.Equal(t, "/srv/surgeplan/data", cfg.DataDir)
	assert.Equal(t, "/srv/surgeplan/output", cfg.OutputDir)
	assert.Equal(t, 1.5, cfg.BufferMultiplier)
	assert.Equal(t, "ICU", cfg.TargetDepartment)
	assert.Equal(t, ForecastSourceHTTP, cfg.Forecast.Source)
	assert.Equal(t, "https://forecasts.hospital.example.com", cfg.Forecast.BaseURL)
	assert.Equal(t, []string{"lightgbm", "xgboost"}, cfg.Forecast.Models)
	assert.Equal(t, 210.5, cfg.SurgeContext.AQI)
	assert.True(t, cfg.SurgeContext.EpidemicAlert)
	assert.Equal(t, "dengue", cfg.SurgeContext.DiseaseName)
	require.Len(t, cfg.SurgeCalendar, 1)
	assert.Equal(t, "Diwali", cfg.SurgeCalendar[0].Label)
	assert.Equal(t, 3, cfg.SurgeCalendar[0].DurationDays)
}

func TestLoadFromPath_MinimalConfigGetsDefaults(t *testing.T) {
	configContent := `surgeContext:
  aqi: 95
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "surgeplan_config.yaml")
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)

	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, 1.2, cfg.BufferMultiplier)
	assert.Equal(t, "Emergency", cfg.TargetDepartment)
	assert.Equal(t, ForecastSourceFiles, cfg.Forecast.Source)
	assert.Equal(t, "./data", cfg.Forecast.Dir)
	assert.Equal(t, []string{"lightgbm", "xgboost", "random_forest"}, cfg.Forecast.Models)
	assert.Equal(t, SnapshotSourceCSV, cfg.Snapshots.Source)
	assert.Equal(t, filepath.Join("./data", "supply_inventory.csv"), cfg.Snapshots.InventoryPath)
	assert.Equal(t, filepath.Join("./data", "staff_availability.csv"), cfg.Snapshots.StaffingPath)
	assert.Equal(t, 1, cfg.DepartmentPriorities["Emergency"])
	assert.Equal(t, 4, cfg.DepartmentPriorities["OPD"])
	assert.Equal(t, 95.0, cfg.SurgeContext.AQI)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	configContent := `dataDir: ./data
  badIndent: true
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "surgeplan_config.yaml")
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_InvalidRRule(t *testing.T) {
	configContent := `surgeCalendar:
  - label: Diwali
    kind: festival
    rrule: NOT-A-RULE
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "surgeplan_config.yaml")
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in surgeCalendar[0]")
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
