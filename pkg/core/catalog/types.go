package catalog

// ConditionType identifies the kind of demand surge driving an allocation run
type ConditionType string

const (
	ConditionRespiratorySurge  ConditionType = "respiratory_surge"
	ConditionBurnTrauma        ConditionType = "burn_trauma"
	ConditionDengueOutbreak    ConditionType = "dengue_outbreak"
	ConditionCardiacEmergency  ConditionType = "cardiac_emergency"
	ConditionTraumaSurge       ConditionType = "trauma_surge"
	ConditionInfectiousDisease ConditionType = "infectious_disease"
	ConditionGeneralSurge      ConditionType = "general_surge"
)

func (c ConditionType) IsValid() bool {
	switch c {
	case ConditionRespiratorySurge, ConditionBurnTrauma, ConditionDengueOutbreak,
		ConditionCardiacEmergency, ConditionTraumaSurge, ConditionInfectiousDisease,
		ConditionGeneralSurge:
		return true
	}
	return false
}

// StaffRole identifies a medical staff role
type StaffRole string

const (
	RolePulmonologist        StaffRole = "pulmonologist"
	RoleRespiratoryTherapist StaffRole = "respiratory_therapist"
	RolePlasticSurgeon       StaffRole = "plastic_surgeon"
	RoleTriageNurse          StaffRole = "triage_nurse"
	RolePhlebotomist         StaffRole = "phlebotomist"
	RoleGeneralPhysician     StaffRole = "general_physician"
	RoleCardiologist         StaffRole = "cardiologist"
	RoleEmergencyPhysician   StaffRole = "emergency_physician"
	RoleICUNurse             StaffRole = "icu_nurse"
	RoleGeneralNurse         StaffRole = "general_nurse"
	RoleAnesthetist          StaffRole = "anesthetist"
)

func (r StaffRole) IsValid() bool {
	switch r {
	case RolePulmonologist, RoleRespiratoryTherapist, RolePlasticSurgeon,
		RoleTriageNurse, RolePhlebotomist, RoleGeneralPhysician, RoleCardiologist,
		RoleEmergencyPhysician, RoleICUNurse, RoleGeneralNurse, RoleAnesthetist:
		return true
	}
	return false
}

// Priority ranks how important a requirement is when scoring urgency
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// StaffingRequirement describes how many staff of one role a condition needs
type StaffingRequirement struct {
	Role             StaffRole
	Ratio            float64 // staff per patient
	Priority         Priority
	OnCallAcceptable bool
}

// InventoryRequirement describes per-patient consumption of one supply item
type InventoryRequirement struct {
	ItemName        string
	SKU             string
	UnitsPerPatient float64
	UnitType        string
	Priority        Priority
	LeadTimeDays    int
	VendorID        string
}

// ConditionMapping is the full resource profile for one surge condition
type ConditionMapping struct {
	Condition        ConditionType
	Name             string
	Description      string
	Staffing         []StaffingRequirement
	Inventory        []InventoryRequirement
	VolumeMultiplier float64
}

// RoleRequirement is a staffing requirement scaled to a patient count
type RoleRequirement struct {
	Role             StaffRole
	RequiredCount    int
	Priority         Priority
	OnCallAcceptable bool
}

// ItemRequirement is an inventory requirement scaled to a patient count
type ItemRequirement struct {
	SKU           string
	ItemName      string
	RequiredUnits int
	UnitType      string
	Priority      Priority
	LeadTimeDays  int
	VendorID      string
}

// Requirements holds the scaled staffing and inventory demands for one run.
// Both slices preserve catalogue order so downstream output is deterministic.
type Requirements struct {
	Condition         ConditionType
	PredictedPatients int
	Staffing          []RoleRequirement
	Inventory         []ItemRequirement
}
