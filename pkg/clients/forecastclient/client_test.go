package forecastclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPSource_LoadForecasts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forecasts/lightgbm":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"date": "2026-10-20", "forecast": 100, "lower_ci": 90, "upper_ci": 110},
				{"date": "2026-10-21", "forecast": 120, "lower_ci": 105, "upper_ci": 135}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, zap.NewNop())
	forecasts, err := source.LoadForecasts(context.Background(), []string{"lightgbm", "xgboost"})

	require.NoError(t, err)
	require.Len(t, forecasts, 1)
	assert.Equal(t, "lightgbm", forecasts[0].Model)
	require.Len(t, forecasts[0].Points, 2)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), forecasts[0].Points[0].Date)
	assert.Equal(t, 100.0, forecasts[0].Points[0].Forecast)
	assert.Equal(t, 90.0, forecasts[0].Points[0].Lower)
	assert.Equal(t, 110.0, forecasts[0].Points[0].Upper)
	assert.Equal(t, 135.0, forecasts[0].Points[1].Upper)
}

func TestHTTPSource_AllModelsMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, zap.NewNop())
	forecasts, err := source.LoadForecasts(context.Background(), []string{"lightgbm", "xgboost"})

	require.NoError(t, err)
	assert.Empty(t, forecasts)
}

func TestHTTPSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, zap.NewNop())
	_, err := source.LoadForecasts(context.Background(), []string{"lightgbm"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast service returned 500")
}

func TestHTTPSource_InvalidDateInPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"date": "next tuesday", "forecast": 100, "lower_ci": 90, "upper_ci": 110}]`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, zap.NewNop())
	_, err := source.LoadForecasts(context.Background(), []string{"lightgbm"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid forecast payload for model lightgbm")
}
