package services

import (
	"fmt"
	"strings"
)

const (
	summaryWidth   = 80
	topActionLimit = 5
)

// FormatSummary renders the operator-facing report for one allocation run:
// the directive's headline numbers, the top actions by urgency, advisories,
// and the advisory-only extras (electives, consumption anomalies).
func FormatSummary(result *AllocationResult) string {
	plan := result.Document.LogisticsActionPlan
	rule := strings.Repeat("=", summaryWidth)
	divider := strings.Repeat("-", summaryWidth)

	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "%sALLOCATION SUMMARY\n", strings.Repeat(" ", 25))
	fmt.Fprintf(&b, "%s\n", rule)

	fmt.Fprintf(&b, "\nSurge Context: %s\n", plan.SurgeContext)
	fmt.Fprintf(&b, "Predicted Patients: %d\n", plan.PredictedPatientCount)
	fmt.Fprintf(&b, "Forecast Confidence: %.1f%%\n", plan.ForecastConfidence*100)
	fmt.Fprintf(&b, "Target Date: %s\n", plan.Date)

	fmt.Fprintf(&b, "\n%s\nINVENTORY ACTIONS\n%s\n", divider, divider)
	inv := plan.SummaryStatistics.Inventory
	fmt.Fprintf(&b, "Total Items Analyzed: %d\n", inv.TotalItemsAnalyzed)
	fmt.Fprintf(&b, "Items Needing Action: %d\n", inv.ItemsNeedingAction)
	fmt.Fprintf(&b, "Purchase Orders: %d\n", inv.PurchaseOrdersGenerated)
	fmt.Fprintf(&b, "Critical Alerts: %d\n", inv.CriticalAlerts)
	fmt.Fprintf(&b, "Emergency Loans: %d\n", inv.EmergencyLoansRequired)

	if len(plan.InventoryActions) > 0 {
		b.WriteString("\nTop Priority Items:\n")
		for _, action := range plan.InventoryActions[:capAt(len(plan.InventoryActions), topActionLimit)] {
			fmt.Fprintf(&b, "  - %s: %s (%s)\n", action.ItemName, action.Action, action.Priority)
		}
	}

	fmt.Fprintf(&b, "\n%s\nSTAFFING ACTIONS\n%s\n", divider, divider)
	staff := plan.SummaryStatistics.Staffing
	fmt.Fprintf(&b, "Total Roles Analyzed: %d\n", staff.TotalRolesAnalyzed)
	fmt.Fprintf(&b, "Roles Needing Action: %d\n", staff.RolesNeedingAction)
	fmt.Fprintf(&b, "Internal Reallocations: %d\n", staff.InternalReallocations)
	fmt.Fprintf(&b, "On-Call Activations: %d\n", staff.OnCallActivations)
	fmt.Fprintf(&b, "Agency Requests: %d\n", staff.AgencyRequests)
	fmt.Fprintf(&b, "Critical Shortages: %d\n", staff.CriticalShortages)

	if len(plan.StaffingActions) > 0 {
		b.WriteString("\nTop Priority Actions:\n")
		for _, action := range plan.StaffingActions[:capAt(len(plan.StaffingActions), topActionLimit)] {
			fmt.Fprintf(&b, "  - %s: %s (%s)\n", action.Role, action.Action, action.Priority)
		}
	}

	if len(plan.OperationalAdvisories) > 0 {
		fmt.Fprintf(&b, "\n%s\nOPERATIONAL ADVISORIES\n%s\n", divider, divider)
		for _, advisory := range plan.OperationalAdvisories {
			fmt.Fprintf(&b, "  [!] %s\n", advisory)
		}
	}

	if len(result.Electives) > 0 {
		fmt.Fprintf(&b, "\n%s\nELECTIVE PROCEDURE RECOMMENDATIONS\n%s\n", divider, divider)
		for _, elective := range result.Electives {
			fmt.Fprintf(&b, "  - %s\n", elective.Recommendation)
		}
	}

	if len(result.ConsumptionInsights) > 0 {
		fmt.Fprintf(&b, "\n%s\nCONSUMPTION ANOMALIES\n%s\n", divider, divider)
		for _, insight := range result.ConsumptionInsights {
			fmt.Fprintf(&b, "  - %s: predicted demand %d is %.1fx trailing consumption\n",
				insight.ItemName, insight.PredictedDemand, insight.Factor)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)

	return b.String()
}

func capAt(n, limit int) int {
	if n > limit {
		return limit
	}
	return n
}
