package sheetsclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dpatkar/surgeplan/internal/config"
	"github.com/dpatkar/surgeplan/pkg/core/catalog"
	"github.com/dpatkar/surgeplan/pkg/core/staffing"
)

// Expected column names in the on-call roster sheet. On-Call IDs holds a
// semicolon-joined personnel ID list.
var rosterFields = []string{
	"Role",
	"Department",
	"Available Count",
	"On-Call IDs",
}

// FetchRoster retrieves and parses the on-call roster from the configured
// spreadsheet tab.
func (c *Client) FetchRoster(cfg *config.Config) ([]staffing.RosterEntry, error) {
	values, err := c.GetValues(cfg.RosterSheet.SpreadsheetID, cfg.RosterSheet.Tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("roster sheet is empty")
	}

	entries, err := parseRoster(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	return entries, nil
}

// RosterSource adapts a Client to the engine's roster source shape so the
// sheet can stand in for the staffing snapshot.
type RosterSource struct {
	client *Client
	cfg    *config.Config
}

// NewRosterSource creates a roster source backed by the configured sheet.
func NewRosterSource(client *Client, cfg *config.Config) *RosterSource {
	return &RosterSource{
		client: client,
		cfg:    cfg,
	}
}

// LoadRoster fetches the live roster from the sheet.
func (s *RosterSource) LoadRoster(ctx context.Context) ([]staffing.RosterEntry, error) {
	return s.client.FetchRoster(s.cfg)
}

// parseRoster converts raw spreadsheet data into RosterEntry structs
func parseRoster(raw [][]interface{}) ([]staffing.RosterEntry, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	// Build field index map from header row
	fieldIndexes := make(map[string]int)
	headerRow := raw[0]

	for _, field := range rosterFields {
		index := -1
		for i, cell := range headerRow {
			if cellStr, ok := cell.(string); ok && strings.TrimSpace(cellStr) == field {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		fieldIndexes[field] = index
	}

	// Helper to get field value from row
	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[field]
		if !ok {
			return ""
		}
		if index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return str
		}
		return ""
	}

	// Parse data rows
	entries := make([]staffing.RosterEntry, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		role := strings.TrimSpace(getField("Role", row))
		// Skip empty rows (rows with no role)
		if role == "" {
			continue
		}

		countCell := strings.TrimSpace(getField("Available Count", row))
		available, err := strconv.Atoi(countCell)
		if err != nil {
			return nil, fmt.Errorf("invalid available count %q in row %d", countCell, i+1)
		}

		entry := staffing.RosterEntry{
			Role:           catalog.StaffRole(role),
			Department:     strings.TrimSpace(getField("Department", row)),
			AvailableCount: available,
			OnCallIDs:      staffing.ParseOnCallIDs(getField("On-Call IDs", row)),
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
