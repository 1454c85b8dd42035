// Package staffing implements the tiered mitigation cascade that closes
// per-role headcount deficits: internal reallocation first, then on-call
// activation, then agency requests, before declaring a critical shortage.
package staffing

import (
	"fmt"
	"sort"

	"github.com/dpatkar/surgeplan/pkg/core/catalog"
)

// Urgency scoring weights. Deficit severity and priority each contribute up
// to half of the score.
const deficitSeverityWeight = 0.5

var priorityWeights = map[catalog.Priority]float64{
	catalog.PriorityCritical: 0.5,
	catalog.PriorityHigh:     0.35,
	catalog.PriorityMedium:   0.2,
	catalog.PriorityLow:      0.1,
}

const defaultPriorityWeight = 0.2

// Departments without a configured priority rank in the middle of the 1-5
// scale (1 = highest).
const defaultDepartmentPriority = 3

// Optimizer resolves staffing deficits for one allocation run. The roster is
// the run's private working copy; build a fresh optimizer per run.
type Optimizer struct {
	entries        []RosterEntry
	index          map[string]int
	deptPriorities map[string]int
}

// NewOptimizer indexes a staffing snapshot by role and department. Duplicate
// role/department rows replace earlier ones in place, keeping first-seen
// iteration order.
func NewOptimizer(entries []RosterEntry, departmentPriorities map[string]int) *Optimizer {
	o := &Optimizer{
		index:          make(map[string]int, len(entries)),
		deptPriorities: departmentPriorities,
	}
	for _, entry := range entries {
		key := rosterKey(entry.Role, entry.Department)
		if i, ok := o.index[key]; ok {
			o.entries[i] = entry
			continue
		}
		o.index[key] = len(o.entries)
		o.entries = append(o.entries, entry)
	}
	return o
}

func rosterKey(role catalog.StaffRole, department string) string {
	return string(role) + "|" + department
}

func (o *Optimizer) availableCount(role catalog.StaffRole, department string) int {
	if i, ok := o.index[rosterKey(role, department)]; ok {
		return o.entries[i].AvailableCount
	}
	return 0
}

// StaffingGap returns current minus required for a role in a department.
// Negative means shortage. A missing roster entry counts as zero staff.
func (o *Optimizer) StaffingGap(role catalog.StaffRole, department string, requiredCount int) int {
	return o.availableCount(role, department) - requiredCount
}

func (o *Optimizer) departmentPriority(department string) int {
	if priority, ok := o.deptPriorities[department]; ok {
		return priority
	}
	return defaultDepartmentPriority
}

// reallocationSource is one department offering staff for reallocation.
type reallocationSource struct {
	department string
	count      int
}

// findReallocationSources walks the roster in snapshot order looking for
// departments that hold the same role at a strictly lower operational
// priority (higher number) than the target. A source is never emptied below
// one remaining staff member. The search stops once the need is covered.
func (o *Optimizer) findReallocationSources(role catalog.StaffRole, targetDept string, needed int) []reallocationSource {
	targetPriority := o.departmentPriority(targetDept)

	var sources []reallocationSource
	remaining := needed
	for _, entry := range o.entries {
		if entry.Role != role || entry.Department == targetDept {
			continue
		}
		if o.departmentPriority(entry.Department) <= targetPriority {
			continue
		}

		canMove := entry.AvailableCount - 1
		if canMove <= 0 {
			continue
		}
		move := canMove
		if move > remaining {
			move = remaining
		}

		sources = append(sources, reallocationSource{department: entry.Department, count: move})
		remaining -= move
		if remaining <= 0 {
			break
		}
	}
	return sources
}

// onCallIDs collects the role's on-call personnel across all departments in
// snapshot order.
func (o *Optimizer) onCallIDs(role catalog.StaffRole) []string {
	var ids []string
	for _, entry := range o.entries {
		if entry.Role == role {
			ids = append(ids, entry.OnCallIDs...)
		}
	}
	return ids
}

// roleState tracks one role's deficit as it moves through the cascade tiers.
type roleState struct {
	req        catalog.RoleRequirement
	targetDept string
	current    int
	deficit    int // the full shortfall, fixed at cascade entry
	remaining  int // the part no tier has covered yet
}

// cascadeTiers are attempted in this fixed order for every role with a
// shortage. Each tier emits the actions it can contribute and reduces the
// remaining need; evaluation stops when nothing remains.
var cascadeTiers = []func(*Optimizer, *roleState) []Result{
	(*Optimizer).tryReallocation,
	(*Optimizer).tryOnCall,
	(*Optimizer).tryAgency,
	(*Optimizer).declareShortage,
}

// PlanActions evaluates every required role against the roster. Roles without
// a shortage emit NO_ACTION; the rest run the mitigation cascade. Every
// requirement yields at least one result. Results are sorted by urgency
// descending, stable on ties.
func (o *Optimizer) PlanActions(requirements []catalog.RoleRequirement, targetDept string) []Result {
	var results []Result

	for _, req := range requirements {
		current := o.availableCount(req.Role, targetDept)
		deficit := req.RequiredCount - current

		if deficit <= 0 {
			results = append(results, Result{
				Role:               req.Role,
				CurrentRosterCount: current,
				RequiredCount:      req.RequiredCount,
				Deficit:            0,
				Action:             ActionNoAction,
				Priority:           req.Priority,
				TargetDept:         targetDept,
				Notes:              "Adequate staffing available.",
				UrgencyScore:       0.0,
			})
			continue
		}

		state := &roleState{
			req:        req,
			targetDept: targetDept,
			current:    current,
			deficit:    deficit,
			remaining:  deficit,
		}
		for _, tier := range cascadeTiers {
			results = append(results, tier(o, state)...)
			if state.remaining <= 0 {
				break
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].UrgencyScore > results[j].UrgencyScore
	})

	return results
}

// result fills the fields every cascade action shares.
func (st *roleState) result(action Action) Result {
	return Result{
		Role:               st.req.Role,
		CurrentRosterCount: st.current,
		RequiredCount:      st.req.RequiredCount,
		Deficit:            st.deficit,
		Action:             action,
		Priority:           st.req.Priority,
		TargetDept:         st.targetDept,
		UrgencyScore:       urgencyScore(st.deficit, st.req.RequiredCount, st.req.Priority),
	}
}

// tryReallocation covers the deficit by pulling staff from lower priority
// departments. All or nothing: partial coverage would strand staff away from
// their home department without resolving the shortage, so insufficient
// sources contribute nothing and the cascade moves on.
func (o *Optimizer) tryReallocation(st *roleState) []Result {
	sources := o.findReallocationSources(st.req.Role, st.targetDept, st.remaining)

	total := 0
	for _, source := range sources {
		total += source.count
	}
	if len(sources) == 0 || total < st.remaining {
		return nil
	}

	results := make([]Result, 0, len(sources))
	for _, source := range sources {
		result := st.result(ActionReallocate)
		result.SourceDept = source.department
		result.Count = source.count
		result.Notes = fmt.Sprintf("Reallocate %d %s(s) from %s to %s.", source.count, st.req.Role, source.department, st.targetDept)
		results = append(results, result)
	}
	st.remaining = 0
	return results
}

// tryOnCall activates registered on-call staff when the requirement permits
// it. Full coverage resolves the role outright. A partial activation is only
// worthwhile for critical and high priority roles, where the agency tier can
// cover the remainder; for lower priorities an insufficient pool is left to
// the shortage tier untouched.
func (o *Optimizer) tryOnCall(st *roleState) []Result {
	if !st.req.OnCallAcceptable {
		return nil
	}

	ids := o.onCallIDs(st.req.Role)
	if len(ids) == 0 {
		return nil
	}

	activate := st.remaining
	if len(ids) < st.remaining {
		if !agencyEligible(st.req.Priority) {
			return nil
		}
		activate = len(ids)
	}

	result := st.result(ActionActivateOnCall)
	result.Count = activate
	result.TargetPersonnelIDs = ids[:activate]
	result.Notes = fmt.Sprintf("Activate %d on-call %s(s). Send automated notifications.", activate, st.req.Role)
	st.remaining -= activate
	return []Result{result}
}

// tryAgency requests temporary agency staff for whatever the earlier tiers
// could not cover. Reserved for critical and high priority roles.
func (o *Optimizer) tryAgency(st *roleState) []Result {
	if !agencyEligible(st.req.Priority) {
		return nil
	}

	result := st.result(ActionRequestAgency)
	result.Count = st.remaining
	result.Notes = fmt.Sprintf("Request %d temporary agency %s(s). High cost option.", st.remaining, st.req.Role)
	st.remaining = 0
	return []Result{result}
}

// declareShortage is the terminal tier: the deficit cannot be mitigated.
// Urgency is forced to the maximum regardless of the scoring formula.
func (o *Optimizer) declareShortage(st *roleState) []Result {
	result := st.result(ActionCriticalShortage)
	result.Count = st.remaining
	result.Notes = fmt.Sprintf("CRITICAL: Cannot fulfill %s requirement. Shortage of %d staff.", st.req.Role, st.deficit)
	result.UrgencyScore = 1.0
	st.remaining = 0
	return []Result{result}
}

func agencyEligible(priority catalog.Priority) bool {
	return priority == catalog.PriorityCritical || priority == catalog.PriorityHigh
}

// urgencyScore blends deficit severity (0-0.5) and requirement priority
// (0-0.5) into a [0,1] score.
func urgencyScore(deficit, required int, priority catalog.Priority) float64 {
	severity := float64(deficit) / float64(required) * deficitSeverityWeight
	if severity > deficitSeverityWeight {
		severity = deficitSeverityWeight
	}
	if severity < 0 {
		severity = 0
	}

	weight, ok := priorityWeights[priority]
	if !ok {
		weight = defaultPriorityWeight
	}

	return severity + weight
}

// Summary aggregates one run's staffing decisions. Counts are per action
// entry, so a role covered by two reallocation sources counts twice under
// reallocations.
type Summary struct {
	TotalRolesAnalyzed    int `json:"total_roles_analyzed"`
	RolesNeedingAction    int `json:"roles_needing_action"`
	InternalReallocations int `json:"internal_reallocations"`
	OnCallActivations     int `json:"on_call_activations"`
	AgencyRequests        int `json:"agency_requests"`
	CriticalShortages     int `json:"critical_shortages"`
}

// Summarize counts actions by type.
func Summarize(results []Result) Summary {
	summary := Summary{TotalRolesAnalyzed: len(results)}
	for _, result := range results {
		switch result.Action {
		case ActionReallocate:
			summary.InternalReallocations++
		case ActionActivateOnCall:
			summary.OnCallActivations++
		case ActionRequestAgency:
			summary.AgencyRequests++
		case ActionCriticalShortage:
			summary.CriticalShortages++
		default:
			continue
		}
		summary.RolesNeedingAction++
	}
	return summary
}
