package inventory

import (
	"sort"
	"time"
)

// Observation is one historical stock reading for a SKU. Snapshot sources
// produce a series of these spanning multiple snapshot dates.
type Observation struct {
	SKU  string
	Date time.Time
	Qty  int
}

// DailyConsumption summarizes the recent drawdown rate for one SKU.
type DailyConsumption struct {
	SKU            string
	MeanDailyUnits float64
	Days           int
}

// DeriveConsumption computes the mean daily drawdown per SKU over the last
// windowDays of observations. Restock days, where stock rises, are excluded
// from the mean. SKUs with no drawdown days are omitted.
func DeriveConsumption(observations []Observation, windowDays int) []DailyConsumption {
	if len(observations) == 0 {
		return nil
	}

	var latest time.Time
	for _, obs := range observations {
		if obs.Date.After(latest) {
			latest = obs.Date
		}
	}
	cutoff := latest.AddDate(0, 0, -windowDays)

	bySKU := make(map[string][]Observation)
	for _, obs := range observations {
		if obs.Date.Before(cutoff) {
			continue
		}
		bySKU[obs.SKU] = append(bySKU[obs.SKU], obs)
	}

	skus := make([]string, 0, len(bySKU))
	for sku := range bySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	consumption := make([]DailyConsumption, 0, len(skus))
	for _, sku := range skus {
		series := bySKU[sku]
		sort.Slice(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})

		var total int
		var days int
		for i := 1; i < len(series); i++ {
			drawdown := series[i-1].Qty - series[i].Qty
			if drawdown <= 0 {
				continue
			}
			total += drawdown
			days++
		}

		if days == 0 {
			continue
		}

		consumption = append(consumption, DailyConsumption{
			SKU:            sku,
			MeanDailyUnits: float64(total) / float64(days),
			Days:           days,
		})
	}

	return consumption
}
