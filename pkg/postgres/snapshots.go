package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/pkg/core/catalog"
	"github.com/dpatkar/surgeplan/pkg/core/inventory"
	"github.com/dpatkar/surgeplan/pkg/core/staffing"
)

// LoadInventory returns the stock records of the most recent snapshot.
func (db *DB) LoadInventory(ctx context.Context) ([]inventory.StockRecord, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT item_code, item_name, snapshot_date, qty_on_hand, reorder_level, estimated_lead_days, vendor_id
		FROM supply_inventory
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM supply_inventory)
		ORDER BY item_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory snapshot: %w", err)
	}
	defer rows.Close()

	var records []inventory.StockRecord
	var snapshotDate time.Time
	for rows.Next() {
		var record inventory.StockRecord
		var vendorID *string
		if err := rows.Scan(&record.SKU, &record.ItemName, &snapshotDate, &record.QtyOnHand, &record.ReorderLevel, &record.LeadTimeDays, &vendorID); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		record.VendorID = inventory.DefaultVendorID
		if vendorID != nil && *vendorID != "" {
			record.VendorID = *vendorID
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory rows: %w", err)
	}

	db.logger.Debug("Loaded inventory snapshot",
		zap.String("snapshot_date", formatSnapshotDate(snapshotDate)),
		zap.Int("items", len(records)),
	)

	return records, nil
}

// LoadRoster returns the staffing roster of the most recent snapshot.
// Ordering by department and role keeps on-call activation deterministic.
func (db *DB) LoadRoster(ctx context.Context) ([]staffing.RosterEntry, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT role, department_id, snapshot_date, available_count, on_call_ids
		FROM staff_availability
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM staff_availability)
		ORDER BY department_id, role
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staffing snapshot: %w", err)
	}
	defer rows.Close()

	var entries []staffing.RosterEntry
	var snapshotDate time.Time
	for rows.Next() {
		var role, onCallIDs string
		var entry staffing.RosterEntry
		if err := rows.Scan(&role, &entry.Department, &snapshotDate, &entry.AvailableCount, &onCallIDs); err != nil {
			return nil, fmt.Errorf("failed to scan staffing row: %w", err)
		}
		entry.Role = catalog.StaffRole(role)
		entry.OnCallIDs = staffing.ParseOnCallIDs(onCallIDs)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staffing rows: %w", err)
	}

	db.logger.Debug("Loaded staffing snapshot",
		zap.String("snapshot_date", formatSnapshotDate(snapshotDate)),
		zap.Int("roles", len(entries)),
	)

	return entries, nil
}

// LoadConsumption derives per-SKU daily consumption over the trailing window
// from successive inventory snapshots.
func (db *DB) LoadConsumption(ctx context.Context, days int) ([]inventory.DailyConsumption, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT item_code, snapshot_date, qty_on_hand
		FROM supply_inventory
		WHERE snapshot_date >= (SELECT MAX(snapshot_date) FROM supply_inventory) - $1 * INTERVAL '1 day'
		ORDER BY item_code, snapshot_date
	`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query consumption history: %w", err)
	}
	defer rows.Close()

	var observations []inventory.Observation
	for rows.Next() {
		var obs inventory.Observation
		if err := rows.Scan(&obs.SKU, &obs.Date, &obs.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan consumption row: %w", err)
		}
		observations = append(observations, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating consumption rows: %w", err)
	}

	return inventory.DeriveConsumption(observations, days), nil
}

// formatSnapshotDate renders a snapshot date for logs. The zero value means
// the table held no rows.
func formatSnapshotDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format("2006-01-02")
}
