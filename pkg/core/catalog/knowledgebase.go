package catalog

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownCondition is returned when a condition cannot be resolved by the
// knowledge base. This is a configuration error, not a recoverable one.
var ErrUnknownCondition = errors.New("unknown surge condition")

// KnowledgeBase maps surge conditions to their resource profiles. It is built
// once at startup and never mutated, so it is safe to share across runs.
type KnowledgeBase struct {
	mappings map[ConditionType]ConditionMapping
	order    []ConditionType
}

// NewKnowledgeBase builds the knowledge base with the standard condition
// catalogue. Conditions without a dedicated mapping (cardiac, trauma,
// infectious) resolve to the general surge profile.
func NewKnowledgeBase() *KnowledgeBase {
	kb := &KnowledgeBase{
		mappings: make(map[ConditionType]ConditionMapping),
	}

	kb.add(ConditionMapping{
		Condition:   ConditionRespiratorySurge,
		Name:        "Respiratory Surge",
		Description: "Surge in respiratory conditions due to air pollution/smog",
		Staffing: []StaffingRequirement{
			{Role: RolePulmonologist, Ratio: 0.05, Priority: PriorityHigh, OnCallAcceptable: true},
			{Role: RoleRespiratoryTherapist, Ratio: 0.1, Priority: PriorityCritical},
			{Role: RoleGeneralNurse, Ratio: 0.25, Priority: PriorityCritical},
		},
		Inventory: []InventoryRequirement{
			{ItemName: "Nebulizer Masks", SKU: "MED-NEB-001", UnitsPerPatient: 2.0, UnitType: "units", Priority: PriorityCritical, LeadTimeDays: 1, VendorID: "MEDEQUIP_A"},
			{ItemName: "Albuterol Sulfate Inhalation Solution", SKU: "MED-ALB-500", UnitsPerPatient: 3.0, UnitType: "vials", Priority: PriorityCritical, LeadTimeDays: 2, VendorID: "PHARMA_CORP_A"},
			{ItemName: "Oxygen Cylinders (Type D)", SKU: "MED-OXY-D", UnitsPerPatient: 0.5, UnitType: "cylinders", Priority: PriorityCritical, LeadTimeDays: 2, VendorID: "MEDGAS_SUPPLY"},
			{ItemName: "N95 Respirator Masks", SKU: "PPE-N95-001", UnitsPerPatient: 5.0, UnitType: "masks", Priority: PriorityHigh, LeadTimeDays: 1, VendorID: "PPE_DIRECT"},
			{ItemName: "Pulse Oximeters", SKU: "MED-PULOX-01", UnitsPerPatient: 0.1, UnitType: "units", Priority: PriorityMedium, LeadTimeDays: 3, VendorID: "MEDEQUIP_A"},
		},
		VolumeMultiplier: 1.3,
	})

	kb.add(ConditionMapping{
		Condition:   ConditionBurnTrauma,
		Name:        "Burn Trauma Surge",
		Description: "Surge in burn injuries during festivals (Diwali)",
		Staffing: []StaffingRequirement{
			{Role: RolePlasticSurgeon, Ratio: 0.1, Priority: PriorityCritical, OnCallAcceptable: true},
			{Role: RoleTriageNurse, Ratio: 0.4, Priority: PriorityCritical},
			{Role: RoleAnesthetist, Ratio: 0.05, Priority: PriorityHigh, OnCallAcceptable: true},
		},
		Inventory: []InventoryRequirement{
			{ItemName: "Silver Sulfadiazine Cream 500g", SKU: "MED-SSD-500", UnitsPerPatient: 1.5, UnitType: "tubes", Priority: PriorityCritical, LeadTimeDays: 2, VendorID: "PHARMA_CORP_A"},
			{ItemName: "Sterile Gauze Pads (4x4)", SKU: "MED-GAU-44", UnitsPerPatient: 20.0, UnitType: "pads", Priority: PriorityCritical, LeadTimeDays: 1, VendorID: "SURGICAL_SUPPLY"},
			{ItemName: "IV Fluids - Lactated Ringer's 1L", SKU: "MED-LR-1000", UnitsPerPatient: 3.0, UnitType: "bags", Priority: PriorityCritical, LeadTimeDays: 1, VendorID: "PHARMA_CORP_B"},
			{ItemName: "Burn Dressing Kits", SKU: "MED-BURN-KIT", UnitsPerPatient: 2.0, UnitType: "kits", Priority: PriorityHigh, LeadTimeDays: 2, VendorID: "SURGICAL_SUPPLY"},
			{ItemName: "Morphine Sulfate 10mg/ml", SKU: "MED-MOR-10", UnitsPerPatient: 2.0, UnitType: "vials", Priority: PriorityHigh, LeadTimeDays: 3, VendorID: "PHARMA_CORP_A"},
		},
		VolumeMultiplier: 1.5,
	})

	kb.add(ConditionMapping{
		Condition:   ConditionDengueOutbreak,
		Name:        "Dengue Outbreak",
		Description: "Dengue fever outbreak during monsoon season",
		Staffing: []StaffingRequirement{
			{Role: RolePhlebotomist, Ratio: 0.1, Priority: PriorityHigh},
			{Role: RoleGeneralPhysician, Ratio: 0.05, Priority: PriorityHigh, OnCallAcceptable: true},
			{Role: RoleGeneralNurse, Ratio: 0.2, Priority: PriorityHigh},
		},
		Inventory: []InventoryRequirement{
			{ItemName: "Platelet Concentrate Kits", SKU: "MED-PLT-KIT", UnitsPerPatient: 0.3, UnitType: "units", Priority: PriorityCritical, LeadTimeDays: 1, VendorID: "BLOOD_BANK"},
			{ItemName: "IV Paracetamol 1g/100ml", SKU: "MED-PARA-IV", UnitsPerPatient: 4.0, UnitType: "vials", Priority: PriorityHigh, LeadTimeDays: 2, VendorID: "PHARMA_CORP_B"},
			{ItemName: "NS1 Dengue Antigen Test Kits", SKU: "LAB-DEN-NS1", UnitsPerPatient: 1.0, UnitType: "kits", Priority: PriorityHigh, LeadTimeDays: 2, VendorID: "LAB_DIAGNOSTICS"},
			{ItemName: "Mosquito Nets (Hospital Grade)", SKU: "PPE-MOSQ-NET", UnitsPerPatient: 0.5, UnitType: "nets", Priority: PriorityMedium, LeadTimeDays: 3, VendorID: "PPE_DIRECT"},
			{ItemName: "IV Saline 0.9% 1L", SKU: "MED-SAL-1000", UnitsPerPatient: 5.0, UnitType: "bags", Priority: PriorityHigh, LeadTimeDays: 1, VendorID: "PHARMA_CORP_B"},
		},
		VolumeMultiplier: 1.4,
	})

	kb.add(ConditionMapping{
		Condition:   ConditionGeneralSurge,
		Name:        "General Patient Surge",
		Description: "General increase in patient volume",
		Staffing: []StaffingRequirement{
			{Role: RoleGeneralPhysician, Ratio: 0.05, Priority: PriorityHigh, OnCallAcceptable: true},
			{Role: RoleGeneralNurse, Ratio: 0.25, Priority: PriorityHigh},
		},
		Inventory: []InventoryRequirement{
			{ItemName: "Disposable Syringes 5ml", SKU: "MED-SYR-5", UnitsPerPatient: 3.0, UnitType: "syringes", Priority: PriorityMedium, LeadTimeDays: 1, VendorID: "SURGICAL_SUPPLY"},
			{ItemName: "Surgical Gloves (Latex)", SKU: "PPE-GLV-LAT", UnitsPerPatient: 10.0, UnitType: "pairs", Priority: PriorityMedium, LeadTimeDays: 1, VendorID: "PPE_DIRECT"},
			{ItemName: "IV Cannula 20G", SKU: "MED-CAN-20", UnitsPerPatient: 1.0, UnitType: "units", Priority: PriorityMedium, LeadTimeDays: 2, VendorID: "SURGICAL_SUPPLY"},
		},
		VolumeMultiplier: 1.0,
	})

	return kb
}

func (kb *KnowledgeBase) add(mapping ConditionMapping) {
	kb.mappings[mapping.Condition] = mapping
	kb.order = append(kb.order, mapping.Condition)
}

// Mapping resolves the resource profile for a condition. Valid conditions
// without a dedicated profile fall back to the general surge mapping; an
// invalid condition is a configuration error.
func (kb *KnowledgeBase) Mapping(condition ConditionType) (ConditionMapping, error) {
	if !condition.IsValid() {
		return ConditionMapping{}, fmt.Errorf("%w: %q", ErrUnknownCondition, condition)
	}
	if mapping, ok := kb.mappings[condition]; ok {
		return mapping, nil
	}
	return kb.mappings[ConditionGeneralSurge], nil
}

// Mappings returns the dedicated condition profiles in catalogue order.
func (kb *KnowledgeBase) Mappings() []ConditionMapping {
	mappings := make([]ConditionMapping, 0, len(kb.order))
	for _, condition := range kb.order {
		mappings = append(mappings, kb.mappings[condition])
	}
	return mappings
}

// TotalRequirements scales a condition's resource profile to a predicted
// patient count. Counts round up and are never below one: if a role or item
// applies to the condition at all, at least one unit of it is required.
func (kb *KnowledgeBase) TotalRequirements(condition ConditionType, predictedPatients int) (*Requirements, error) {
	mapping, err := kb.Mapping(condition)
	if err != nil {
		return nil, err
	}

	reqs := &Requirements{
		Condition:         condition,
		PredictedPatients: predictedPatients,
		Staffing:          make([]RoleRequirement, 0, len(mapping.Staffing)),
		Inventory:         make([]ItemRequirement, 0, len(mapping.Inventory)),
	}

	for _, staff := range mapping.Staffing {
		reqs.Staffing = append(reqs.Staffing, RoleRequirement{
			Role:             staff.Role,
			RequiredCount:    scaleToPatients(predictedPatients, staff.Ratio),
			Priority:         staff.Priority,
			OnCallAcceptable: staff.OnCallAcceptable,
		})
	}

	for _, item := range mapping.Inventory {
		reqs.Inventory = append(reqs.Inventory, ItemRequirement{
			SKU:           item.SKU,
			ItemName:      item.ItemName,
			RequiredUnits: scaleToPatients(predictedPatients, item.UnitsPerPatient),
			UnitType:      item.UnitType,
			Priority:      item.Priority,
			LeadTimeDays:  item.LeadTimeDays,
			VendorID:      item.VendorID,
		})
	}

	return reqs, nil
}

// scaleToPatients applies a per-patient ratio, rounding up with a floor of 1.
func scaleToPatients(patients int, ratio float64) int {
	count := int(math.Ceil(float64(patients) * ratio))
	if count < 1 {
		return 1
	}
	return count
}
