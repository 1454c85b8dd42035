package staffing

import (
	"strings"
	"time"

	"github.com/dpatkar/surgeplan/pkg/core/catalog"
)

// Action is one tier of the staffing mitigation cascade.
type Action string

const (
	ActionNoAction         Action = "NO_ACTION"
	ActionReallocate       Action = "REALLOCATE"
	ActionActivateOnCall   Action = "ACTIVATE_ON_CALL"
	ActionRequestAgency    Action = "REQUEST_AGENCY"
	ActionCriticalShortage Action = "CRITICAL_SHORTAGE"
)

// RosterEntry is one row of the staffing snapshot: staff of one role in one
// department, with the personnel registered for emergency callback.
type RosterEntry struct {
	Role           catalog.StaffRole
	Department     string
	AvailableCount int
	OnCallIDs      []string
}

// Result is the optimizer's decision for one role. A role produces several
// results when multiple mitigations combine to cover its deficit, e.g. a
// partial on-call activation topped up by an agency request. Results are
// never mutated after creation.
type Result struct {
	Role               catalog.StaffRole
	CurrentRosterCount int
	RequiredCount      int
	Deficit            int
	Action             Action
	Priority           catalog.Priority
	SourceDept         string // set only for REALLOCATE
	TargetDept         string
	Count              int
	TargetPersonnelIDs []string // set only for ACTIVATE_ON_CALL
	Notes              string
	UrgencyScore       float64
}

// ElectiveRecommendation advises rescheduling one elective procedure to free
// beds and staff ahead of a surge. Advisory only, never auto-applied.
type ElectiveRecommendation struct {
	ProcedureType  string
	ScheduledDate  time.Time
	Department     string
	BedsFreed      int
	StaffFreed     int
	Recommendation string
}

// ParseOnCallIDs parses the semicolon-joined personnel ID list used by
// snapshot exports and roster sheets.
func ParseOnCallIDs(cell string) []string {
	var ids []string
	for _, id := range strings.Split(cell, ";") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
