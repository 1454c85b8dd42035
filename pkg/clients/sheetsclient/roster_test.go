package sheetsclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpatkar/surgeplan/pkg/core/catalog"
)

func TestParseRoster(t *testing.T) {
	raw := [][]interface{}{
		{"Role", "Department", "Available Count", "On-Call IDs"},
		{"pulmonologist", "Emergency", "2", "EMP-001;EMP-002"},
		{"general_nurse", "OPD", "15", ""},
		{"icu_nurse", "ICU", "8"},
	}

	entries, err := parseRoster(raw)

	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, catalog.StaffRole("pulmonologist"), entries[0].Role)
	assert.Equal(t, "Emergency", entries[0].Department)
	assert.Equal(t, 2, entries[0].AvailableCount)
	assert.Equal(t, []string{"EMP-001", "EMP-002"}, entries[0].OnCallIDs)

	assert.Equal(t, catalog.StaffRole("general_nurse"), entries[1].Role)
	assert.Empty(t, entries[1].OnCallIDs)

	// Short row: trailing cells default to empty
	assert.Equal(t, 8, entries[2].AvailableCount)
	assert.Empty(t, entries[2].OnCallIDs)
}

func TestParseRoster_SkipsEmptyRows(t *testing.T) {
	raw := [][]interface{}{
		{"Role", "Department", "Available Count", "On-Call IDs"},
		{"", "", "", ""},
		{"pulmonologist", "Emergency", "2", ""},
	}

	entries, err := parseRoster(raw)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, catalog.StaffRole("pulmonologist"), entries[0].Role)
}

func TestParseRoster_ColumnOrderIndependent(t *testing.T) {
	raw := [][]interface{}{
		{"On-Call IDs", "Available Count", "Role", "Department"},
		{"EMP-009", "4", "plastic_surgeon", "Surgery"},
	}

	entries, err := parseRoster(raw)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, catalog.StaffRole("plastic_surgeon"), entries[0].Role)
	assert.Equal(t, "Surgery", entries[0].Department)
	assert.Equal(t, 4, entries[0].AvailableCount)
	assert.Equal(t, []string{"EMP-009"}, entries[0].OnCallIDs)
}

func TestParseRoster_MissingHeaderField(t *testing.T) {
	raw := [][]interface{}{
		{"Role", "Department", "Available Count"},
		{"pulmonologist", "Emergency", "2"},
	}

	_, err := parseRoster(raw)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field in header: On-Call IDs")
}

func TestParseRoster_InvalidAvailableCount(t *testing.T) {
	raw := [][]interface{}{
		{"Role", "Department", "Available Count", "On-Call IDs"},
		{"pulmonologist", "Emergency", "two", ""},
	}

	_, err := parseRoster(raw)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid available count "two" in row 2`)
}
