package inventory

import "github.com/dpatkar/surgeplan/pkg/core/catalog"

// Action is the procurement decision for one SKU.
type Action string

const (
	ActionNoAction      Action = "NO_ACTION"
	ActionGeneratePO    Action = "GENERATE_PO"
	ActionEmergencyLoan Action = "EMERGENCY_LOAN"
	ActionCriticalAlert Action = "CRITICAL_ALERT"
)

// NeedsOrder reports whether the action results in units being ordered.
func (a Action) NeedsOrder() bool {
	return a == ActionGeneratePO || a == ActionEmergencyLoan
}

// DefaultVendorID is assigned to stock records whose snapshot row carries no
// vendor, so purchase orders always have a routable vendor.
const DefaultVendorID = "DEFAULT_VENDOR"

// StockRecord is one row of the inventory snapshot handed to the analyzer.
type StockRecord struct {
	SKU          string
	ItemName     string
	QtyOnHand    int
	ReorderLevel int
	LeadTimeDays int
	VendorID     string
}

// Status is the per-SKU working state for one allocation run, built fresh
// from a snapshot and discarded afterwards.
type Status struct {
	SKU          string
	CurrentStock int
	ReorderLevel int
	SafetyBuffer int
	LeadTimeDays int
	VendorID     string
}

// Result is the analyzer's decision for one SKU. Results are never mutated
// after creation.
type Result struct {
	SKU             string
	ItemName        string
	CurrentStock    int
	PredictedDemand int
	StockGap        int
	Action          Action
	Quantity        int
	Priority        catalog.Priority
	VendorID        string
	UrgencyScore    float64
	Notes           string
}
