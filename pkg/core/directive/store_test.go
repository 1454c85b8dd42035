package directive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())
	doc := Compile(sampleInput())

	path, err := store.Save(doc, time.Date(2026, 10, 18, 9, 15, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "allocation_output_20261018_091500.json", filepath.Base(path))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestStore_Latest(t *testing.T) {
	store := NewStore(t.TempDir())

	older := Compile(sampleInput())
	_, err := store.Save(older, time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	newerInput := sampleInput()
	newerInput.PredictedPatients = 200
	newer := Compile(newerInput)
	newerPath, err := store.Save(newer, time.Date(2026, 10, 18, 9, 15, 0, 0, time.UTC))
	require.NoError(t, err)

	doc, path, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, newerPath, path)
	assert.Equal(t, 200, doc.LogisticsActionPlan.PredictedPatientCount)

	paths, err := store.List()
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestStore_LatestEmpty(t *testing.T) {
	store := NewStore(t.TempDir())

	_, _, err := store.Latest()
	assert.ErrorIs(t, err, ErrNoDirectives)
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "out", "allocations"))

	_, err := store.Save(Compile(sampleInput()), time.Date(2026, 10, 18, 9, 15, 0, 0, time.UTC))
	require.NoError(t, err)

	paths, err := store.List()
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestOverview(t *testing.T) {
	doc := Compile(sampleInput())

	overview := doc.Overview()
	assert.Equal(t, "2026-10-18T09:15:00Z", overview.Timestamp)
	assert.Equal(t, "2026-10-21", overview.Date)
	assert.Equal(t, "respiratory_surge", overview.SurgeContext)
	assert.Equal(t, 143, overview.PredictedPatients)

	// Three surfaced actions: pulmonologist twice (8 required, 2 current)
	// and the nurse reallocation (36 required, 20 current)
	assert.Equal(t, 52, overview.TotalStaffNeeded)
	assert.Equal(t, 24, overview.CurrentStaff)
	assert.Equal(t, 28, overview.StaffShortage)

	require.Len(t, overview.Departments, 1)
	emergency := overview.Departments[0]
	assert.Equal(t, "Emergency", emergency.Department)
	assert.Equal(t, 52, emergency.StaffNeeded)
	require.Len(t, emergency.Roles, 3)
	assert.Equal(t, "pulmonologist", emergency.Roles[0].Role)
	assert.Equal(t, 8, emergency.Roles[0].Count)
	assert.Equal(t, "ACTIVATE_ON_CALL", emergency.Roles[0].Action)
}

func TestOverview_NoShortageClampsToZero(t *testing.T) {
	doc := &Document{
		LogisticsActionPlan: Plan{
			StaffingActions: []StaffingAction{
				{Role: "general_nurse", RequiredCount: 10, CurrentRosterCount: 14, TargetDept: "ICU", Action: "REALLOCATE"},
			},
		},
	}

	overview := doc.Overview()
	assert.Equal(t, 10, overview.TotalStaffNeeded)
	assert.Equal(t, 14, overview.CurrentStaff)
	assert.Equal(t, 0, overview.StaffShortage)
}
