package staffing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpatkar/surgeplan/pkg/core/catalog"
)

var testPriorities = map[string]int{
	"Emergency":   1,
	"ICU":         1,
	"Surgery":     2,
	"OPD":         4,
	"Dermatology": 5,
}

func TestStaffingGap(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleGeneralNurse, Department: "Emergency", AvailableCount: 15},
	}, testPriorities)

	assert.Equal(t, 5, optimizer.StaffingGap(catalog.RoleGeneralNurse, "Emergency", 10))
	assert.Equal(t, -5, optimizer.StaffingGap(catalog.RoleGeneralNurse, "Emergency", 20))
	// Missing roster entries count as zero staff
	assert.Equal(t, -4, optimizer.StaffingGap(catalog.RolePulmonologist, "Emergency", 4))
}

func TestNewOptimizer_DuplicateRowsReplaceInPlace(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleGeneralNurse, Department: "Emergency", AvailableCount: 10},
		{Role: catalog.RoleGeneralNurse, Department: "Emergency", AvailableCount: 12},
	}, testPriorities)

	assert.Equal(t, 0, optimizer.StaffingGap(catalog.RoleGeneralNurse, "Emergency", 12))
}

func TestPlanActions_NoShortage(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RolePulmonologist, Department: "Emergency", AvailableCount: 10},
	}, testPriorities)

	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RolePulmonologist, RequiredCount: 6, Priority: catalog.PriorityHigh, OnCallAcceptable: true},
	}, "Emergency")

	require.Len(t, results, 1)
	result := results[0]
	assert.Equal(t, ActionNoAction, result.Action)
	assert.Equal(t, 0, result.Deficit)
	assert.Equal(t, 10, result.CurrentRosterCount)
	assert.Equal(t, 6, result.RequiredCount)
	assert.Equal(t, "Adequate staffing available.", result.Notes)
	assert.Equal(t, 0.0, result.UrgencyScore)
}

func TestPlanActions_InternalReallocation(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleGeneralNurse, Department: "Emergency", AvailableCount: 5},
		{Role: catalog.RoleGeneralNurse, Department: "Dermatology", AvailableCount: 3},
		{Role: catalog.RoleGeneralNurse, Department: "OPD", AvailableCount: 4},
	}, testPriorities)

	// Deficit 3: Dermatology can spare 2 of 3, OPD tops up the last 1
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RoleGeneralNurse, RequiredCount: 8, Priority: catalog.PriorityHigh},
	}, "Emergency")

	require.Len(t, results, 2)
	assert.Equal(t, ActionReallocate, results[0].Action)
	assert.Equal(t, "Dermatology", results[0].SourceDept)
	assert.Equal(t, 2, results[0].Count)
	assert.Equal(t, "Reallocate 2 general_nurse(s) from Dermatology to Emergency.", results[0].Notes)

	assert.Equal(t, ActionReallocate, results[1].Action)
	assert.Equal(t, "OPD", results[1].SourceDept)
	assert.Equal(t, 1, results[1].Count)

	for _, result := range results {
		assert.Equal(t, 3, result.Deficit)
		assert.Equal(t, 5, result.CurrentRosterCount)
		// Severity 3/8*0.5 + high 0.35
		assert.InDelta(t, 0.5375, result.UrgencyScore, 0.0001)
	}
}

func TestPlanActions_ReallocationNeverEmptiesSource(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleTriageNurse, Department: "Emergency", AvailableCount: 2},
		{Role: catalog.RoleTriageNurse, Department: "OPD", AvailableCount: 1},
		{Role: catalog.RoleTriageNurse, Department: "Dermatology", AvailableCount: 2},
	}, testPriorities)

	// OPD's single nurse cannot move; Dermatology spares exactly 1
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RoleTriageNurse, RequiredCount: 3, Priority: catalog.PriorityCritical},
	}, "Emergency")

	require.Len(t, results, 1)
	assert.Equal(t, ActionReallocate, results[0].Action)
	assert.Equal(t, "Dermatology", results[0].SourceDept)
	assert.Equal(t, 1, results[0].Count)
}

func TestPlanActions_ReallocationAllOrNothing(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RolePhlebotomist, Department: "Emergency", AvailableCount: 1},
		{Role: catalog.RolePhlebotomist, Department: "OPD", AvailableCount: 3},
	}, testPriorities)

	// Deficit 5, OPD can only spare 2: no partial reallocation happens and
	// the medium priority role lands in critical shortage
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RolePhlebotomist, RequiredCount: 6, Priority: catalog.PriorityMedium},
	}, "Emergency")

	require.Len(t, results, 1)
	result := results[0]
	assert.Equal(t, ActionCriticalShortage, result.Action)
	assert.Equal(t, 5, result.Deficit)
	assert.Equal(t, 5, result.Count)
	assert.Equal(t, "CRITICAL: Cannot fulfill phlebotomist requirement. Shortage of 5 staff.", result.Notes)
	assert.Equal(t, 1.0, result.UrgencyScore)
}

func TestPlanActions_ReallocationOnlyFromLowerPriority(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleICUNurse, Department: "Emergency", AvailableCount: 2},
		{Role: catalog.RoleICUNurse, Department: "ICU", AvailableCount: 10},
	}, testPriorities)

	// ICU shares priority 1 with Emergency, so its nurses stay put
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RoleICUNurse, RequiredCount: 4, Priority: catalog.PriorityLow},
	}, "Emergency")

	require.Len(t, results, 1)
	assert.Equal(t, ActionCriticalShortage, results[0].Action)
}

func TestPlanActions_OnCallActivation(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RolePulmonologist, Department: "Emergency", AvailableCount: 2, OnCallIDs: []string{"DR_SHARMA_01", "DR_GUPTA_02"}},
		{Role: catalog.RolePulmonologist, Department: "OPD", AvailableCount: 1, OnCallIDs: []string{"DR_PATEL_05"}},
	}, testPriorities)

	// Deficit 2, three on-call pulmonologists available across departments
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RolePulmonologist, RequiredCount: 4, Priority: catalog.PriorityHigh, OnCallAcceptable: true},
	}, "Emergency")

	require.Len(t, results, 1)
	result := results[0]
	assert.Equal(t, ActionActivateOnCall, result.Action)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, []string{"DR_SHARMA_01", "DR_GUPTA_02"}, result.TargetPersonnelIDs)
	assert.Equal(t, "Activate 2 on-call pulmonologist(s). Send automated notifications.", result.Notes)
	// Severity 2/4*0.5 + high 0.35
	assert.InDelta(t, 0.6, result.UrgencyScore, 0.0001)
}

func TestPlanActions_OnCallNotAcceptable(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleTriageNurse, Department: "Emergency", AvailableCount: 1, OnCallIDs: []string{"RN_01", "RN_02", "RN_03"}},
	}, testPriorities)

	// Plenty of on-call nurses, but the requirement forbids using them
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RoleTriageNurse, RequiredCount: 3, Priority: catalog.PriorityCritical},
	}, "Emergency")

	require.Len(t, results, 1)
	assert.Equal(t, ActionRequestAgency, results[0].Action)
	assert.Equal(t, 2, results[0].Count)
}

func TestPlanActions_PartialOnCallWithAgencyTopUp(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RolePulmonologist, Department: "Emergency", AvailableCount: 2, OnCallIDs: []string{"DR_A", "DR_B", "DR_C"}},
	}, testPriorities)

	// Required 6, current 2: deficit 4. Only 3 on-call, so the high priority
	// role activates all 3 and requests 1 agency pulmonologist for the rest.
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RolePulmonologist, RequiredCount: 6, Priority: catalog.PriorityHigh, OnCallAcceptable: true},
	}, "Emergency")

	require.Len(t, results, 2)

	onCall := results[0]
	assert.Equal(t, ActionActivateOnCall, onCall.Action)
	assert.Equal(t, 3, onCall.Count)
	assert.Equal(t, []string{"DR_A", "DR_B", "DR_C"}, onCall.TargetPersonnelIDs)
	assert.Equal(t, 4, onCall.Deficit)

	agency := results[1]
	assert.Equal(t, ActionRequestAgency, agency.Action)
	assert.Equal(t, 1, agency.Count)
	assert.Equal(t, 4, agency.Deficit)
	assert.Equal(t, "Request 1 temporary agency pulmonologist(s). High cost option.", agency.Notes)

	// Both actions score from the full deficit: 4/6*0.5 + 0.35
	assert.InDelta(t, 0.6833, onCall.UrgencyScore, 0.001)
	assert.Equal(t, onCall.UrgencyScore, agency.UrgencyScore)
}

func TestPlanActions_InsufficientOnCallLowPriority(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleGeneralPhysician, Department: "Emergency", AvailableCount: 1, OnCallIDs: []string{"DR_X"}},
	}, testPriorities)

	// Medium priority cannot fall back to agency, so a partial activation
	// would not resolve anything: the full deficit goes to critical shortage
	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RoleGeneralPhysician, RequiredCount: 4, Priority: catalog.PriorityMedium, OnCallAcceptable: true},
	}, "Emergency")

	require.Len(t, results, 1)
	result := results[0]
	assert.Equal(t, ActionCriticalShortage, result.Action)
	assert.Equal(t, 3, result.Deficit)
	assert.Equal(t, 3, result.Count)
	assert.Empty(t, result.TargetPersonnelIDs)
	assert.Equal(t, 1.0, result.UrgencyScore)
}

func TestPlanActions_MissingRosterEntry(t *testing.T) {
	optimizer := NewOptimizer(nil, testPriorities)

	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RoleAnesthetist, RequiredCount: 2, Priority: catalog.PriorityHigh, OnCallAcceptable: true},
	}, "Emergency")

	require.Len(t, results, 1)
	result := results[0]
	assert.Equal(t, ActionRequestAgency, result.Action)
	assert.Equal(t, 0, result.CurrentRosterCount)
	assert.Equal(t, 2, result.Deficit)
	assert.Equal(t, 2, result.Count)
}

func TestPlanActions_SortedByUrgencyDescending(t *testing.T) {
	optimizer := NewOptimizer([]RosterEntry{
		{Role: catalog.RoleGeneralNurse, Department: "Emergency", AvailableCount: 40},
		{Role: catalog.RolePhlebotomist, Department: "Emergency", AvailableCount: 1},
		{Role: catalog.RoleGeneralPhysician, Department: "Emergency", AvailableCount: 4, OnCallIDs: []string{"DR_1", "DR_2", "DR_3", "DR_4"}},
	}, testPriorities)

	results := optimizer.PlanActions([]catalog.RoleRequirement{
		{Role: catalog.RoleGeneralNurse, RequiredCount: 30, Priority: catalog.PriorityHigh},
		{Role: catalog.RoleGeneralPhysician, RequiredCount: 6, Priority: catalog.PriorityHigh, OnCallAcceptable: true},
		{Role: catalog.RolePhlebotomist, RequiredCount: 5, Priority: catalog.PriorityLow},
	}, "Emergency")

	require.Len(t, results, 3)
	// Critical shortage is forced to 1.0 and leads; the on-call activation
	// (2/6*0.5 + 0.35 = 0.517) beats the satisfied nurse requirement (0.0)
	assert.Equal(t, ActionCriticalShortage, results[0].Action)
	assert.Equal(t, catalog.RolePhlebotomist, results[0].Role)
	assert.Equal(t, ActionActivateOnCall, results[1].Action)
	assert.Equal(t, ActionNoAction, results[2].Action)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].UrgencyScore, results[i].UrgencyScore)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Action: ActionNoAction},
		{Action: ActionReallocate},
		{Action: ActionReallocate},
		{Action: ActionActivateOnCall},
		{Action: ActionRequestAgency},
		{Action: ActionCriticalShortage},
	}

	summary := Summarize(results)
	assert.Equal(t, 6, summary.TotalRolesAnalyzed)
	assert.Equal(t, 5, summary.RolesNeedingAction)
	assert.Equal(t, 2, summary.InternalReallocations)
	assert.Equal(t, 1, summary.OnCallActivations)
	assert.Equal(t, 1, summary.AgencyRequests)
	assert.Equal(t, 1, summary.CriticalShortages)
}

func TestRecommendElectiveReductions(t *testing.T) {
	surgeDate := time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, RecommendElectiveReductions(surgeDate, 0.69))

	recommendations := RecommendElectiveReductions(surgeDate, 0.7)
	require.Len(t, recommendations, 4)

	first := recommendations[0]
	assert.Equal(t, "Cosmetic Surgery", first.ProcedureType)
	assert.Equal(t, "Plastic Surgery", first.Department)
	assert.Equal(t, 2, first.BedsFreed)
	assert.Equal(t, 3, first.StaffFreed)
	assert.Equal(t, surgeDate, first.ScheduledDate)
	assert.Equal(t, "Recommend rescheduling Cosmetic Surgery to free 2 bed(s) and 3 staff.", first.Recommendation)
}
