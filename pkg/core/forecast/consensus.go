// Package forecast reduces per-model demand forecasts into a single consensus
// series with a derived confidence score.
package forecast

import (
	"errors"
	"sort"
	"time"
)

// Fallback values used when no model forecasts are available. The engine
// plans for a moderate surge a week out rather than aborting the run.
const (
	fallbackPeakDemand = 100
	fallbackConfidence = 0.5
	fallbackLeadDays   = 7
)

// ErrNoForecastData is returned when no model produced any forecast points.
// Callers are expected to recover with FallbackConsensus instead of aborting.
var ErrNoForecastData = errors.New("no forecast data available")

// Point is one model's prediction for a single date, with its confidence
// interval bounds.
type Point struct {
	Date     time.Time
	Forecast float64
	Lower    float64
	Upper    float64
}

// ModelForecast is the full series produced by one forecasting model.
type ModelForecast struct {
	Model  string
	Points []Point
}

// ConsensusPoint is the merged prediction for a single date: the mean of all
// model point forecasts with the widest interval any model reported.
type ConsensusPoint struct {
	Date     time.Time
	Forecast float64
	Lower    float64
	Upper    float64
}

// Width returns the size of the consensus confidence interval.
func (p ConsensusPoint) Width() float64 {
	return p.Upper - p.Lower
}

// Consensus is the merged forecast across all models. Points are sorted by
// date ascending and non-empty.
type Consensus struct {
	Points     []ConsensusPoint
	Confidence float64
	ModelCount int
}

// BuildConsensus merges per-model forecast series into one. For each date the
// point forecast is the arithmetic mean across models, the lower bound is the
// minimum and the upper bound the maximum any model reported, deliberately
// widening the interval. Models are expected to cover the same date range;
// dates missing from a model are averaged over the models that have them.
func BuildConsensus(models []ModelForecast) (*Consensus, error) {
	type accumulator struct {
		date  time.Time
		sum   float64
		count int
		lower float64
		upper float64
	}

	byDate := make(map[string]*accumulator)
	for _, model := range models {
		for _, point := range model.Points {
			key := point.Date.UTC().Format("2006-01-02")
			acc, ok := byDate[key]
			if !ok {
				acc = &accumulator{
					date:  normalizeDate(point.Date),
					lower: point.Lower,
					upper: point.Upper,
				}
				byDate[key] = acc
			} else {
				if point.Lower < acc.lower {
					acc.lower = point.Lower
				}
				if point.Upper > acc.upper {
					acc.upper = point.Upper
				}
			}
			acc.sum += point.Forecast
			acc.count++
		}
	}

	if len(byDate) == 0 {
		return nil, ErrNoForecastData
	}

	points := make([]ConsensusPoint, 0, len(byDate))
	for _, acc := range byDate {
		points = append(points, ConsensusPoint{
			Date:     acc.date,
			Forecast: acc.sum / float64(acc.count),
			Lower:    acc.lower,
			Upper:    acc.upper,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return &Consensus{
		Points:     points,
		Confidence: confidenceFor(points),
		ModelCount: len(models),
	}, nil
}

// confidenceFor scores how much the consensus can be trusted: wider intervals
// relative to the forecast level reduce confidence monotonically. The result
// is bounded in (0, 1]. A non-positive mean forecast makes the relative width
// meaningless, so confidence degrades to the neutral fallback value.
func confidenceFor(points []ConsensusPoint) float64 {
	var sumForecast, sumWidth float64
	for _, point := range points {
		sumForecast += point.Forecast
		sumWidth += point.Width()
	}

	meanForecast := sumForecast / float64(len(points))
	if meanForecast <= 0 {
		return fallbackConfidence
	}

	meanWidth := sumWidth / float64(len(points))
	if meanWidth < 0 {
		meanWidth = 0
	}
	return 1 / (1 + meanWidth/meanForecast)
}

// Peak returns the date with the highest consensus forecast. The earliest
// date wins a tie.
func (c *Consensus) Peak() ConsensusPoint {
	if len(c.Points) == 0 {
		return ConsensusPoint{}
	}
	peak := c.Points[0]
	for _, point := range c.Points[1:] {
		if point.Forecast > peak.Forecast {
			peak = point
		}
	}
	return peak
}

// FallbackConsensus builds the conservative default used when model forecasts
// are unavailable: a single peak of 100 patients one week from now at neutral
// confidence.
func FallbackConsensus(now time.Time) *Consensus {
	date := normalizeDate(now.AddDate(0, 0, fallbackLeadDays))
	return &Consensus{
		Points: []ConsensusPoint{{
			Date:     date,
			Forecast: fallbackPeakDemand,
			Lower:    fallbackPeakDemand,
			Upper:    fallbackPeakDemand,
		}},
		Confidence: fallbackConfidence,
		ModelCount: 0,
	}
}

func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
