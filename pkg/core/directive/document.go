// Package directive compiles allocation results into the logistics action
// plan document and manages its JSON persistence.
package directive

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dpatkar/surgeplan/pkg/core/catalog"
	"github.com/dpatkar/surgeplan/pkg/core/inventory"
	"github.com/dpatkar/surgeplan/pkg/core/staffing"
)

// Advisory thresholds. Confidence below the first triggers a monitoring
// advisory; action urgency above the second counts as critical.
const (
	lowConfidenceThreshold   = 0.6
	criticalUrgencyThreshold = 0.8
)

// Document is the directive file written at the end of an allocation run.
// Field names are the output contract consumed by the dashboard backend.
type Document struct {
	LogisticsActionPlan Plan `json:"logistics_action_plan"`
}

// Plan is the body of the directive.
type Plan struct {
	GenerationTimestamp   string            `json:"generation_timestamp"`
	Date                  string            `json:"date"`
	SurgeContext          string            `json:"surge_context"`
	PredictedPatientCount int               `json:"predicted_patient_count"`
	ForecastConfidence    float64           `json:"forecast_confidence"`
	InventoryActions      []InventoryAction `json:"inventory_actions"`
	StaffingActions       []StaffingAction  `json:"staffing_actions"`
	OperationalAdvisories []string          `json:"operational_advisories"`
	SummaryStatistics     SummaryStatistics `json:"summary_statistics"`
}

// InventoryAction is one purchase-order-shaped entry of the plan.
type InventoryAction struct {
	ItemName        string  `json:"item_name"`
	SKU             string  `json:"sku"`
	CurrentStock    int     `json:"current_stock"`
	PredictedDemand int     `json:"predicted_demand"`
	Action          string  `json:"action"`
	Quantity        int     `json:"quantity"`
	Priority        string  `json:"priority"`
	VendorID        string  `json:"vendor_id"`
	UrgencyScore    float64 `json:"urgency_score"`
	Notes           string  `json:"notes"`
}

// StaffingAction is one staffing entry of the plan. Source department and
// personnel lists only appear on the actions that carry them.
type StaffingAction struct {
	Role               string   `json:"role"`
	CurrentRosterCount int      `json:"current_roster_count"`
	RequiredCount      int      `json:"required_count"`
	Deficit            int      `json:"deficit"`
	Action             string   `json:"action"`
	Priority           string   `json:"priority"`
	TargetDept         string   `json:"target_dept"`
	Count              int      `json:"count"`
	UrgencyScore       float64  `json:"urgency_score"`
	Notes              string   `json:"notes"`
	SourceDept         string   `json:"source_dept,omitempty"`
	TargetPersonnelIDs []string `json:"target_personnel_ids,omitempty"`
}

// SummaryStatistics aggregates both action lists.
type SummaryStatistics struct {
	Inventory inventory.Summary `json:"inventory"`
	Staffing  staffing.Summary  `json:"staffing"`
}

// CompileInput carries everything one allocation run produced.
type CompileInput struct {
	GeneratedAt       time.Time
	SurgeDate         time.Time
	Condition         catalog.ConditionType
	PredictedPatients int
	Confidence        float64
	InventoryResults  []inventory.Result
	StaffingResults   []staffing.Result
}

// Compile assembles the directive document. Only purchase orders and
// emergency loans become inventory entries; no-action and critical-alert
// items appear in the summary counts alone. Staffing entries exclude
// NO_ACTION. Compilation is deterministic: identical inputs produce identical
// documents apart from the generation timestamp.
func Compile(in CompileInput) *Document {
	invActions := make([]InventoryAction, 0, len(in.InventoryResults))
	for _, result := range in.InventoryResults {
		if !result.Action.NeedsOrder() {
			continue
		}
		invActions = append(invActions, InventoryAction{
			ItemName:        result.ItemName,
			SKU:             result.SKU,
			CurrentStock:    result.CurrentStock,
			PredictedDemand: result.PredictedDemand,
			Action:          string(result.Action),
			Quantity:        result.Quantity,
			Priority:        strings.ToUpper(string(result.Priority)),
			VendorID:        result.VendorID,
			UrgencyScore:    round3(result.UrgencyScore),
			Notes:           result.Notes,
		})
	}

	staffActions := make([]StaffingAction, 0, len(in.StaffingResults))
	for _, result := range in.StaffingResults {
		if result.Action == staffing.ActionNoAction {
			continue
		}
		staffActions = append(staffActions, StaffingAction{
			Role:               string(result.Role),
			CurrentRosterCount: result.CurrentRosterCount,
			RequiredCount:      result.RequiredCount,
			Deficit:            result.Deficit,
			Action:             string(result.Action),
			Priority:           strings.ToUpper(string(result.Priority)),
			TargetDept:         result.TargetDept,
			Count:              result.Count,
			UrgencyScore:       round3(result.UrgencyScore),
			Notes:              result.Notes,
			SourceDept:         result.SourceDept,
			TargetPersonnelIDs: result.TargetPersonnelIDs,
		})
	}

	return &Document{
		LogisticsActionPlan: Plan{
			GenerationTimestamp:   in.GeneratedAt.Format(time.RFC3339),
			Date:                  in.SurgeDate.Format("2006-01-02"),
			SurgeContext:          string(in.Condition),
			PredictedPatientCount: in.PredictedPatients,
			ForecastConfidence:    round3(in.Confidence),
			InventoryActions:      invActions,
			StaffingActions:       staffActions,
			OperationalAdvisories: compileAdvisories(in.Confidence, in.InventoryResults, in.StaffingResults),
			SummaryStatistics: SummaryStatistics{
				Inventory: inventory.Summarize(in.InventoryResults),
				Staffing:  staffing.Summarize(in.StaffingResults),
			},
		},
	}
}

// compileAdvisories derives operator warnings from the aggregate severity of
// the run. Criticality counts consider every evaluated result, not just the
// entries surfaced in the plan.
func compileAdvisories(confidence float64, invResults []inventory.Result, staffResults []staffing.Result) []string {
	advisories := []string{}

	if confidence < lowConfidenceThreshold {
		advisories = append(advisories, "Low forecast confidence. Monitor situation closely.")
	}

	criticalItems := 0
	for _, result := range invResults {
		if result.UrgencyScore > criticalUrgencyThreshold {
			criticalItems++
		}
	}
	if criticalItems > 0 {
		advisories = append(advisories, fmt.Sprintf("CRITICAL: %d inventory items require immediate attention.", criticalItems))
	}

	criticalRoles := 0
	for _, result := range staffResults {
		if result.UrgencyScore > criticalUrgencyThreshold {
			criticalRoles++
		}
	}
	if criticalRoles > 0 {
		advisories = append(advisories, fmt.Sprintf("CRITICAL: %d staffing roles have severe shortages.", criticalRoles))
	}

	return advisories
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
