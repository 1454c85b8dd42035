package snapshotclient

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dpatkar/surgeplan/pkg/core/catalog"
	"github.com/dpatkar/surgeplan/pkg/core/inventory"
	"github.com/dpatkar/surgeplan/pkg/core/staffing"
)

// Canonical snapshot columns. CSV files must match these exactly; XLSX
// sheets may order columns freely as long as all of them are present.
var (
	inventoryHeader = []string{"item_code", "item_name", "snapshot_date", "qty_on_hand", "reorder_level", "estimated_lead_days", "vendor_id"}
	staffingHeader  = []string{"role", "department_id", "snapshot_date", "available_count", "on_call_ids"}
)

// stockRecordsFromRows filters rows to the most recent snapshot date and
// parses them. Rows must be in inventoryHeader column order.
func stockRecordsFromRows(rows [][]string) ([]inventory.StockRecord, string, error) {
	latest, err := latestSnapshotDate(rows, 2)
	if err != nil {
		return nil, "", err
	}

	records := make([]inventory.StockRecord, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row[2]) != latest {
			continue
		}
		record, err := parseStockRecord(row)
		if err != nil {
			return nil, "", fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, record)
	}

	return records, latest, nil
}

// rosterFromRows filters rows to the most recent snapshot date and parses
// them. Rows must be in staffingHeader column order.
func rosterFromRows(rows [][]string) ([]staffing.RosterEntry, string, error) {
	latest, err := latestSnapshotDate(rows, 2)
	if err != nil {
		return nil, "", err
	}

	entries := make([]staffing.RosterEntry, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row[2]) != latest {
			continue
		}
		entry, err := parseRosterEntry(row)
		if err != nil {
			return nil, "", fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}

	return entries, latest, nil
}

// observationsFromRows keeps every row for consumption analysis.
func observationsFromRows(rows [][]string) ([]inventory.Observation, error) {
	observations := make([]inventory.Observation, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid snapshot_date %q", i+2, row[2])
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid qty_on_hand: %s", i+2, row[3])
		}
		observations = append(observations, inventory.Observation{
			SKU:  strings.TrimSpace(row[0]),
			Date: date,
			Qty:  qty,
		})
	}
	return observations, nil
}

func parseStockRecord(row []string) (inventory.StockRecord, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return inventory.StockRecord{}, fmt.Errorf("invalid qty_on_hand: %s", row[3])
	}

	reorder, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return inventory.StockRecord{}, fmt.Errorf("invalid reorder_level: %s", row[4])
	}

	leadDays, err := strconv.Atoi(strings.TrimSpace(row[5]))
	if err != nil {
		return inventory.StockRecord{}, fmt.Errorf("invalid estimated_lead_days: %s", row[5])
	}

	vendor := strings.TrimSpace(row[6])
	if vendor == "" {
		vendor = inventory.DefaultVendorID
	}

	return inventory.StockRecord{
		SKU:          strings.TrimSpace(row[0]),
		ItemName:     strings.TrimSpace(row[1]),
		QtyOnHand:    qty,
		ReorderLevel: reorder,
		LeadTimeDays: leadDays,
		VendorID:     vendor,
	}, nil
}

func parseRosterEntry(row []string) (staffing.RosterEntry, error) {
	available, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return staffing.RosterEntry{}, fmt.Errorf("invalid available_count: %s", row[3])
	}

	return staffing.RosterEntry{
		Role:           catalog.StaffRole(strings.TrimSpace(row[0])),
		Department:     strings.TrimSpace(row[1]),
		AvailableCount: available,
		OnCallIDs:      staffing.ParseOnCallIDs(row[4]),
	}, nil
}

// latestSnapshotDate finds the maximum snapshot_date across all rows. ISO
// dates compare correctly as strings.
func latestSnapshotDate(rows [][]string, column int) (string, error) {
	var latest string
	for i, row := range rows {
		date := strings.TrimSpace(row[column])
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return "", fmt.Errorf("row %d: invalid snapshot_date %q", i+2, row[column])
		}
		if date > latest {
			latest = date
		}
	}
	return latest, nil
}
