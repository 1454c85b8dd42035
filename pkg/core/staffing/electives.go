package staffing

import (
	"fmt"
	"time"
)

// Surge severity below this threshold does not justify disrupting scheduled
// procedures.
const electiveSeverityThreshold = 0.7

var electiveProcedures = []struct {
	procedureType string
	department    string
	beds          int
	staff         int
}{
	{"Cosmetic Surgery", "Plastic Surgery", 2, 3},
	{"Knee Replacement", "Orthopedics", 1, 2},
	{"Cataract Surgery", "Ophthalmology", 1, 2},
	{"Hernia Repair", "General Surgery", 1, 2},
}

// RecommendElectiveReductions lists elective procedures worth rescheduling to
// free beds and staff ahead of a severe surge. Severity below 0.7 produces no
// recommendations.
func RecommendElectiveReductions(surgeDate time.Time, surgeSeverity float64) []ElectiveRecommendation {
	if surgeSeverity < electiveSeverityThreshold {
		return nil
	}

	recommendations := make([]ElectiveRecommendation, 0, len(electiveProcedures))
	for _, procedure := range electiveProcedures {
		recommendations = append(recommendations, ElectiveRecommendation{
			ProcedureType:  procedure.procedureType,
			ScheduledDate:  surgeDate,
			Department:     procedure.department,
			BedsFreed:      procedure.beds,
			StaffFreed:     procedure.staff,
			Recommendation: fmt.Sprintf("Recommend rescheduling %s to free %d bed(s) and %d staff.", procedure.procedureType, procedure.beds, procedure.staff),
		})
	}
	return recommendations
}
