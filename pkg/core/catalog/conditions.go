package catalog

import "strings"

// SurgeContext carries the environmental signals used to detect which surge
// condition is most likely for a target date.
type SurgeContext struct {
	AQI           float64
	EventType     string // e.g. "diwali", "holi", "festival"
	Season        string // e.g. "monsoon", "winter"
	EpidemicAlert bool
	DiseaseName   string
}

// detectionRule is one entry in the ordered rule list. Conditions are not
// mutually exclusive, so the first matching rule wins and rule order must
// never be rearranged.
type detectionRule struct {
	name      string
	condition ConditionType
	matches   func(SurgeContext) bool
}

var detectionRules = []detectionRule{
	{
		name:      "high AQI",
		condition: ConditionRespiratorySurge,
		matches: func(sc SurgeContext) bool {
			return sc.AQI > 150
		},
	},
	{
		name:      "festival event",
		condition: ConditionBurnTrauma,
		matches: func(sc SurgeContext) bool {
			switch strings.ToLower(sc.EventType) {
			case "festival", "diwali", "holi":
				return true
			}
			return false
		},
	},
	{
		name:      "monsoon dengue alert",
		condition: ConditionDengueOutbreak,
		matches: func(sc SurgeContext) bool {
			if strings.ToLower(sc.Season) != "monsoon" || !sc.EpidemicAlert {
				return false
			}
			switch strings.ToLower(sc.DiseaseName) {
			case "dengue", "dengue fever":
				return true
			}
			return false
		},
	},
}

// DetectCondition evaluates the ordered rule list against the context and
// returns the first matching condition, defaulting to a general surge.
func (kb *KnowledgeBase) DetectCondition(sc SurgeContext) ConditionType {
	for _, rule := range detectionRules {
		if rule.matches(sc) {
			return rule.condition
		}
	}
	return ConditionGeneralSurge
}

// conditionAliases maps CLI-friendly short names to condition types.
var conditionAliases = map[string]ConditionType{
	"respiratory": ConditionRespiratorySurge,
	"burn":        ConditionBurnTrauma,
	"dengue":      ConditionDengueOutbreak,
	"cardiac":     ConditionCardiacEmergency,
	"trauma":      ConditionTraumaSurge,
	"infectious":  ConditionInfectiousDisease,
	"general":     ConditionGeneralSurge,
}

// ParseCondition resolves a condition from either its short alias
// ("respiratory") or its full value ("respiratory_surge").
func ParseCondition(s string) (ConditionType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if condition, ok := conditionAliases[normalized]; ok {
		return condition, true
	}
	condition := ConditionType(normalized)
	if condition.IsValid() {
		return condition, true
	}
	return "", false
}

// ConditionAliases returns the supported short names in a stable order.
func ConditionAliases() []string {
	return []string{"respiratory", "burn", "dengue", "cardiac", "trauma", "infectious", "general"}
}
