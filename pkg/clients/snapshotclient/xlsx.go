package snapshotclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/pkg/core/inventory"
	"github.com/dpatkar/surgeplan/pkg/core/staffing"
)

// XLSXSource reads snapshots from spreadsheet exports. Only the first sheet
// of each workbook is read. Columns are matched by header name, so the
// spreadsheet may order or intersperse them freely.
type XLSXSource struct {
	inventoryPath string
	staffingPath  string
	logger        *zap.Logger
}

// NewXLSXSource creates a source reading the given inventory and staffing
// workbooks.
func NewXLSXSource(inventoryPath, staffingPath string, logger *zap.Logger) *XLSXSource {
	return &XLSXSource{
		inventoryPath: inventoryPath,
		staffingPath:  staffingPath,
		logger:        logger,
	}
}

// LoadInventory returns the stock records of the most recent snapshot.
func (s *XLSXSource) LoadInventory(ctx context.Context) ([]inventory.StockRecord, error) {
	rows, err := readXLSXFile(s.inventoryPath, inventoryHeader)
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
func (s *XLSXSource) LoadRoster(ctx context.Context) ([]staffing.RosterEntry, error) {
	rows, err := readXLSXFile(s.staffingPath, staffingHeader)
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
func (s *XLSXSource) LoadConsumption(ctx context.Context, days int) ([]inventory.DailyConsumption, error) {
	rows, err := readXLSXFile(s.inventoryPath, inventoryHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption history: %w", err)
	}

	observations, err := observationsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption history: %w", err)
	}

	return inventory.DeriveConsumption(observations, days), nil
}

// readXLSXFile reads the first sheet of a workbook and reorders its columns
// into canonical header order.
func readXLSXFile(path string, header []string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s must have header and at least one data row", sheetName)
	}

	headerMap := make(map[string]int)
	for i, h := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}

	indexes := make([]int, len(header))
	for i, col := range header {
		idx, ok := headerMap[col]
		if !ok {
			return nil, fmt.Errorf("sheet %s is missing column %q", sheetName, col)
		}
		indexes[i] = idx
	}

	// GetRows trims trailing empty cells, so short rows are padded with
	// empty strings rather than rejected.
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make([]string, len(header))
		for i, idx := range indexes {
			if idx < len(row) {
				record[i] = row[idx]
			}
		}
		records = append(records, record)
	}

	return records, nil
}
