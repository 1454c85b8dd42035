// Package snapshotclient loads point-in-time inventory and staffing
// snapshots from hospital exports. Snapshots accumulate one row set per day;
// every loader filters down to the most recent snapshot date so the engine
// always plans from the latest picture.
package snapshotclient

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/pkg/core/inventory"
	"github.com/dpatkar/surgeplan/pkg/core/staffing"
)

// CSVSource reads snapshots from the hospital's nightly CSV exports.
type CSVSource struct {
	inventoryPath string
	staffingPath  string
	logger        *zap.Logger
}

// NewCSVSource creates a source reading the given inventory and staffing
// export files.
func NewCSVSource(inventoryPath, staffingPath string, logger *zap.Logger) *CSVSource {
	return &CSVSource{
		inventoryPath: inventoryPath,
		staffingPath:  staffingPath,
		logger:        logger,
	}
}

// LoadInventory returns the stock records of the most recent snapshot.
func (s *CSVSource) LoadInventory(ctx context.Context) ([]inventory.StockRecord, error) {
	rows, err := readCSVFile(s.inventoryPath, inventoryHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory snapshot: %w", err)
	}

	records, latest, err := stockRecordsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory snapshot: %w", err)
	}

	s.logger.Debug("Loaded inventory snapshot",
		zap.String("snapshot_date", latest),
		zap.Int("items", len(records)),
	)

	return records, nil
}

// LoadRoster returns the staffing roster of the most recent snapshot.
func (s *CSVSource) LoadRoster(ctx context.Context) ([]staffing.RosterEntry, error) {
	rows, err := readCSVFile(s.staffingPath, staffingHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to load staffing snapshot: %w", err)
	}

	entries, latest, err := rosterFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load staffing snapshot: %w", err)
	}

	s.logger.Debug("Loaded staffing snapshot",
		zap.String("snapshot_date", latest),
		zap.Int("roles", len(entries)),
	)

	return entries, nil
}

// LoadConsumption derives per-SKU daily consumption over the trailing window
// from successive inventory snapshots.
func (s *CSVSource) LoadConsumption(ctx context.Context, days int) ([]inventory.DailyConsumption, error) {
	rows, err := readCSVFile(s.inventoryPath, inventoryHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption history: %w", err)
	}

	observations, err := observationsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption history: %w", err)
	}

	return inventory.DeriveConsumption(observations, days), nil
}

func readCSVFile(path string, header []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("snapshot CSV must have header and at least one data row")
	}

	if !headerMatches(records[0], header) {
		return nil, fmt.Errorf("snapshot CSV header mismatch. Expected: %v, Got: %v", header, records[0])
	}

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("snapshot CSV row %d: expected %d columns, got %d", i+2, len(header), len(record))
		}
	}

	return records[1:], nil
}

func headerMatches(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}
