package forecastclient

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/pkg/core/forecast"
)

var forecastHeader = []string{"date", "forecast", "lower_ci", "upper_ci"}

// FileSource reads forecast tables dropped by the modelling pipeline as
// {model}_forecast_7day.csv files in a single directory.
type FileSource struct {
	dir    string
	logger *zap.Logger
}

// NewFileSource creates a source reading forecast CSVs from dir.
func NewFileSource(dir string, logger *zap.Logger) *FileSource {
	return &FileSource{
		dir:    dir,
		logger: logger,
	}
}

// LoadForecasts reads the forecast CSV for each requested model. Models with
// no file present are skipped with a warning.
func (s *FileSource) LoadForecasts(ctx context.Context, models []string) ([]forecast.ModelForecast, error) {
	forecasts := make([]forecast.ModelForecast, 0, len(models))

	for _, model := range models {
		path := filepath.Join(s.dir, fmt.Sprintf("%s_forecast_7day.csv", model))

		points, err := readForecastFile(path)
		if os.IsNotExist(err) {
			s.logger.Warn("Forecast file not found, skipping model",
				zap.String("model", model),
				zap.String("path", path),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load forecast for model %s: %w", model, err)
		}

		forecasts = append(forecasts, forecast.ModelForecast{
			Model:  model,
			Points: points,
		})

		s.logger.Debug("Loaded forecast file",
			zap.String("model", model),
			zap.Int("points", len(points)),
		)
	}

	return forecasts, nil
}

func readForecastFile(path string) ([]forecast.Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("forecast CSV must have header and at least one data row")
	}

	if !headerMatches(records[0], forecastHeader) {
		return nil, fmt.Errorf("forecast CSV header mismatch. Expected: %v, Got: %v", forecastHeader, records[0])
	}

	points := make([]forecast.Point, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(forecastHeader) {
			return nil, fmt.Errorf("forecast CSV row %d: expected %d columns, got %d", i+2, len(forecastHeader), len(record))
		}

		point, err := parseForecastRecord(record)
		if err != nil {
			return nil, fmt.Errorf("forecast CSV row %d: %w", i+2, err)
		}

		points = append(points, point)
	}

	return points, nil
}

func parseForecastRecord(record []string) (forecast.Point, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return forecast.Point{}, fmt.Errorf("invalid date: %s", record[0])
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return forecast.Point{}, fmt.Errorf("invalid forecast: %s", record[1])
	}

	lower, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return forecast.Point{}, fmt.Errorf("invalid lower_ci: %s", record[2])
	}

	upper, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return forecast.Point{}, fmt.Errorf("invalid upper_ci: %s", record[3])
	}

	return forecast.Point{
		Date:     date,
		Forecast: value,
		Lower:    lower,
		Upper:    upper,
	}, nil
}

func headerMatches(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}
