// Package forecastclient loads per-model patient forecast tables from either
// the local forecast drop directory or the forecasting service's HTTP API.
// Missing models are skipped with a warning so the consensus builder can work
// with whatever subset is available.
package forecastclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/pkg/core/forecast"
)

// forecastRow is the wire format shared by the CSV files and the HTTP API.
type forecastRow struct {
	Date     string  `json:"date"`
	Forecast float64 `json:"forecast"`
	LowerCI  float64 `json:"lower_ci"`
	UpperCI  float64 `json:"upper_ci"`
}

// HTTPSource fetches forecasts from the forecasting service.
type HTTPSource struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewHTTPSource creates a client for the forecasting service at baseURL.
func NewHTTPSource(baseURL string, logger *zap.Logger) *HTTPSource {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &HTTPSource{
		httpClient: client,
		logger:     logger,
	}
}

// LoadForecasts fetches the forecast table for each requested model. Models
// the service does not know are skipped with a warning.
func (s *HTTPSource) LoadForecasts(ctx context.Context, models []string) ([]forecast.ModelForecast, error) {
	forecasts := make([]forecast.ModelForecast, 0, len(models))

	for _, model := range models {
		var rows []forecastRow
		resp, err := s.httpClient.R().
			SetContext(ctx).
			SetResult(&rows).
			Get("/forecasts/" + model)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch forecast for model %s: %w", model, err)
		}

		if resp.StatusCode() == http.StatusNotFound {
			s.logger.Warn("Forecast model not available, skipping",
				zap.String("model", model),
			)
			continue
		}

		if !resp.IsSuccess() {
			return nil, fmt.Errorf("forecast service returned %d for model %s", resp.StatusCode(), model)
		}

		points, err := parseRows(rows)
		if err != nil {
			return nil, fmt.Errorf("invalid forecast payload for model %s: %w", model, err)
		}

		forecasts = append(forecasts, forecast.ModelForecast{
			Model:  model,
			Points: points,
		})

		s.logger.Debug("Loaded forecast from service",
			zap.String("model", model),
			zap.Int("points", len(points)),
		)
	}

	return forecasts, nil
}

func parseRows(rows []forecastRow) ([]forecast.Point, error) {
	points := make([]forecast.Point, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", i+1, row.Date)
		}
		points = append(points, forecast.Point{
			Date:     date,
			Forecast: row.Forecast,
			Lower:    row.LowerCI,
			Upper:    row.UpperCI,
		})
	}
	return points, nil
}
