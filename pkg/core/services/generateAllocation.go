// Package services orchestrates the allocation pipeline: forecast consensus,
// condition resolution, inventory gap analysis, the staffing cascade, and
// directive compilation. Each service is a plain function taking its data
// sources as interfaces so commands and tests can swap them freely.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/internal/config"
	"github.com/dpatkar/surgeplan/pkg/core/catalog"
	"github.com/dpatkar/surgeplan/pkg/core/directive"
	"github.com/dpatkar/surgeplan/pkg/core/forecast"
	"github.com/dpatkar/surgeplan/pkg/core/inventory"
	"github.com/dpatkar/surgeplan/pkg/core/staffing"
)

// Consumption history window and the demand multiple that makes a SKU worth
// flagging to operators.
const (
	consumptionWindowDays = 30
	demandSpikeFactor     = 3.0
)

// ForecastSource loads per-model forecast series.
type ForecastSource interface {
	LoadForecasts(ctx context.Context, models []string) ([]forecast.ModelForecast, error)
}

// SnapshotSource loads the current inventory and staffing snapshots plus the
// snapshot history backing consumption rates.
type SnapshotSource interface {
	LoadInventory(ctx context.Context) ([]inventory.StockRecord, error)
	LoadRoster(ctx context.Context) ([]staffing.RosterEntry, error)
	LoadConsumption(ctx context.Context, days int) ([]inventory.DailyConsumption, error)
}

// RosterSource loads the live on-call roster maintained outside the nightly
// snapshot exports.
type RosterSource interface {
	LoadRoster(ctx context.Context) ([]staffing.RosterEntry, error)
}

// DirectiveStore persists compiled directive documents.
type DirectiveStore interface {
	Save(doc *directive.Document, at time.Time) (string, error)
	SaveAs(doc *directive.Document, path string) error
}

// ConsumptionInsight flags one SKU whose surge demand dwarfs its trailing
// consumption, a cue that the forecast deserves a second look.
type ConsumptionInsight struct {
	SKU             string
	ItemName        string
	PredictedDemand int
	NormalUsage     float64 // units consumed over an equal pre-surge window
	Factor          float64
}

// AllocationResult carries everything one allocation run produced, for the
// CLI to display. The persisted document is the contract; the rest is
// operator context.
type AllocationResult struct {
	RunID               string
	Condition           catalog.ConditionType
	ConditionDetected   bool // true when the condition came from auto-detection
	PeakDate            time.Time
	PeakDemand          int
	DaysUntilSurge      int
	Confidence          float64
	ModelCount          int
	FallbackForecast    bool
	Document            *directive.Document
	OutputPath          string
	Electives           []staffing.ElectiveRecommendation
	ConsumptionInsights []ConsumptionInsight
}

// GenerateAllocation runs the complete allocation pipeline and writes the
// directive document. Forecast and snapshot failures degrade the run instead
// of aborting it: a missing forecast falls back to a conservative default
// surge, and a missing snapshot plans from empty stock or roster, which the
// analyzers escalate on their own.
func GenerateAllocation(
	ctx context.Context,
	forecasts ForecastSource,
	snapshots SnapshotSource,
	roster RosterSource,
	store DirectiveStore,
	kb *catalog.KnowledgeBase,
	calendar *catalog.SurgeCalendar,
	cfg *config.Config,
	logger *zap.Logger,
	condition string,
	department string,
	outputPath string,
	now time.Time,
) (*AllocationResult, error) {
	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))
	logger.Debug("Starting allocation run",
		zap.String("condition", condition),
		zap.String("department", department))

	if department == "" {
		department = cfg.TargetDepartment
	}

	// Step 1: Build the consensus forecast
	consensus, fallback := loadConsensus(ctx, forecasts, cfg.Forecast.Models, now, logger)
	peak := consensus.Peak()
	peakDemand := int(peak.Forecast)
	days := daysUntilSurge(now, peak.Date)

	logger.Debug("Consensus forecast ready",
		zap.Int("models", consensus.ModelCount),
		zap.Int("peak_demand", peakDemand),
		zap.String("peak_date", peak.Date.Format("2006-01-02")),
		zap.Float64("confidence", consensus.Confidence),
		zap.Bool("fallback", fallback))

	// Step 2: Resolve the surge condition
	resolved, detected, err := resolveCondition(condition, kb, calendar, cfg, peak.Date)
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved surge condition",
		zap.String("condition", string(resolved)),
		zap.Bool("detected", detected))

	// Step 3: Scale the condition's resource profile to the peak
	requirements, err := kb.TotalRequirements(resolved, peakDemand)
	if err != nil {
		return nil, fmt.Errorf("failed to compute requirements: %w", err)
	}

	// Step 4: Load snapshots. Failures leave empty data; the analyzers turn
	// empty stock into critical alerts and an empty roster into the cascade.
	stock, err := snapshots.LoadInventory(ctx)
	if err != nil {
		logger.Warn("Inventory snapshot unavailable, planning with empty stock", zap.Error(err))
		stock = nil
	}
	rosterEntries, err := snapshots.LoadRoster(ctx)
	if err != nil {
		logger.Warn("Staffing snapshot unavailable, planning with empty roster", zap.Error(err))
		rosterEntries = nil
	}
	if roster != nil {
		sheetEntries, err := roster.LoadRoster(ctx)
		if err != nil {
			logger.Warn("On-call roster unavailable, using snapshot roster only", zap.Error(err))
		} else {
			rosterEntries = mergeRoster(rosterEntries, sheetEntries)
			logger.Debug("Merged live on-call roster", zap.Int("rows", len(sheetEntries)))
		}
	}

	// Step 5: Inventory gap analysis
	analyzer := inventory.NewAnalyzer(stock, cfg.BufferMultiplier)
	inventoryResults := analyzer.Analyze(requirements.Inventory, days)
	logger.Debug("Generated inventory actions", zap.Int("count", len(inventoryResults)))

	// Step 6: Staffing cascade
	optimizer := staffing.NewOptimizer(rosterEntries, cfg.DepartmentPriorities)
	staffingResults := optimizer.PlanActions(requirements.Staffing, department)
	logger.Debug("Generated staffing actions", zap.Int("count", len(staffingResults)))

	// Electives are advisory extras keyed off the worst staffing urgency;
	// they ride along in the result but never enter the directive contract.
	severity := maxStaffingUrgency(staffingResults)
	electives := staffing.RecommendElectiveReductions(peak.Date, severity)

	insights := consumptionInsights(ctx, snapshots, requirements.Inventory, days, logger)

	// Step 7: Compile and persist the directive
	doc := directive.Compile(directive.CompileInput{
		GeneratedAt:       now,
		SurgeDate:         peak.Date,
		Condition:         resolved,
		PredictedPatients: peakDemand,
		Confidence:        consensus.Confidence,
		InventoryResults:  inventoryResults,
		StaffingResults:   staffingResults,
	})

	path := outputPath
	if path == "" {
		path, err = store.Save(doc, now)
	} else {
		err = store.SaveAs(doc, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save directive: %w", err)
	}

	logger.Debug("Allocation run completed",
		zap.String("output", path),
		zap.Int("inventory_actions", len(doc.LogisticsActionPlan.InventoryActions)),
		zap.Int("staffing_actions", len(doc.LogisticsActionPlan.StaffingActions)),
		zap.Strings("advisories", doc.LogisticsActionPlan.OperationalAdvisories))

	return &AllocationResult{
		RunID:               runID,
		Condition:           resolved,
		ConditionDetected:   detected,
		PeakDate:            peak.Date,
		PeakDemand:          peakDemand,
		DaysUntilSurge:      days,
		Confidence:          consensus.Confidence,
		ModelCount:          consensus.ModelCount,
		FallbackForecast:    fallback,
		Document:            doc,
		OutputPath:          path,
		Electives:           electives,
		ConsumptionInsights: insights,
	}, nil
}

// loadConsensus builds the consensus forecast, degrading to the conservative
// fallback on any source or data failure.
func loadConsensus(ctx context.Context, forecasts ForecastSource, models []string, now time.Time, logger *zap.Logger) (*forecast.Consensus, bool) {
	series, err := forecasts.LoadForecasts(ctx, models)
	if err != nil {
		logger.Warn("Forecast load failed, using fallback forecast", zap.Error(err))
		return forecast.FallbackConsensus(now), true
	}

	consensus, err := forecast.BuildConsensus(series)
	if err != nil {
		logger.Warn("No forecast data available, using fallback forecast", zap.Error(err))
		return forecast.FallbackConsensus(now), true
	}

	return consensus, false
}

// resolveCondition turns the CLI condition argument into a concrete condition
// type. Empty and "auto" trigger detection from the surge calendar and the
// configured ambient context; anything else must name a known condition.
func resolveCondition(arg string, kb *catalog.KnowledgeBase, calendar *catalog.SurgeCalendar, cfg *config.Config, peakDate time.Time) (catalog.ConditionType, bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(arg))
	if normalized != "" && normalized != "auto" {
		condition, ok := catalog.ParseCondition(normalized)
		if !ok {
			return "", false, fmt.Errorf("unknown condition %q (expected auto or one of: %s)",
				arg, strings.Join(catalog.ConditionAliases(), ", "))
		}
		return condition, false, nil
	}

	return kb.DetectCondition(surgeContextFor(calendar, cfg, peakDate)), true, nil
}

// surgeContextFor assembles the detection signals for a date: the calendar
// supplies festival and season windows, the config supplies ambient readings
// and may override the calendar-derived signals.
func surgeContextFor(calendar *catalog.SurgeCalendar, cfg *config.Config, date time.Time) catalog.SurgeContext {
	var sc catalog.SurgeContext
	if calendar != nil {
		sc = calendar.ContextForDate(date)
	}

	sc.AQI = cfg.SurgeContext.AQI
	sc.EpidemicAlert = cfg.SurgeContext.EpidemicAlert
	sc.DiseaseName = cfg.SurgeContext.DiseaseName
	if cfg.SurgeContext.EventType != "" {
		sc.EventType = cfg.SurgeContext.EventType
	}
	if cfg.SurgeContext.Season != "" {
		sc.Season = cfg.SurgeContext.Season
	}

	return sc
}

// mergeRoster overlays the live on-call roster onto the snapshot roster.
// Matching role and department rows get their on-call IDs replaced; rows the
// snapshot does not know about are appended whole.
func mergeRoster(snapshot, sheet []staffing.RosterEntry) []staffing.RosterEntry {
	merged := make([]staffing.RosterEntry, len(snapshot))
	copy(merged, snapshot)

	index := make(map[string]int, len(merged))
	for i, entry := range merged {
		index[rosterKey(entry)] = i
	}

	for _, entry := range sheet {
		if i, ok := index[rosterKey(entry)]; ok {
			merged[i].OnCallIDs = entry.OnCallIDs
			continue
		}
		index[rosterKey(entry)] = len(merged)
		merged = append(merged, entry)
	}

	return merged
}

func rosterKey(entry staffing.RosterEntry) string {
	return string(entry.Role) + "|" + entry.Department
}

// daysUntilSurge counts whole days between now and the surge peak, floored
// at one so lead time comparisons stay meaningful for a same-day surge.
func daysUntilSurge(now, peakDate time.Time) int {
	days := int(peakDate.Sub(now).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

func maxStaffingUrgency(results []staffing.Result) float64 {
	var max float64
	for _, result := range results {
		if result.UrgencyScore > max {
			max = result.UrgencyScore
		}
	}
	return max
}

// consumptionInsights compares each required item's surge demand against its
// trailing consumption over an equal window. History being unavailable is not
// a degradation worth warning about; insights are advisory only.
func consumptionInsights(ctx context.Context, snapshots SnapshotSource, items []catalog.ItemRequirement, days int, logger *zap.Logger) []ConsumptionInsight {
	rates, err := snapshots.LoadConsumption(ctx, consumptionWindowDays)
	if err != nil {
		logger.Debug("Consumption history unavailable", zap.Error(err))
		return nil
	}

	bySKU := make(map[string]inventory.DailyConsumption, len(rates))
	for _, rate := range rates {
		bySKU[rate.SKU] = rate
	}

	var insights []ConsumptionInsight
	for _, item := range items {
		rate, ok := bySKU[item.SKU]
		if !ok || rate.MeanDailyUnits <= 0 {
			continue
		}

		normal := rate.MeanDailyUnits * float64(days)
		factor := float64(item.RequiredUnits) / normal
		if factor < demandSpikeFactor {
			continue
		}

		insights = append(insights, ConsumptionInsight{
			SKU:             item.SKU,
			ItemName:        item.ItemName,
			PredictedDemand: item.RequiredUnits,
			NormalUsage:     normal,
			Factor:          factor,
		})
		logger.Debug("Demand far above trailing consumption",
			zap.String("sku", item.SKU),
			zap.Int("predicted_demand", item.RequiredUnits),
			zap.Float64("normal_usage", normal))
	}

	return insights
}
