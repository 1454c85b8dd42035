package directive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	filePrefix     = "allocation_output_"
	fileTimeLayout = "20060102_150405"
)

// ErrNoDirectives is returned when the store directory holds no directive
// files yet.
var ErrNoDirectives = errors.New("no allocation directives found")

// Store reads and writes directive documents in one directory.
type Store struct {
	dir string
}

// NewStore points a store at a directory. The directory is created on the
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the document under a timestamped name and returns the path.
func (s *Store) Save(doc *Document, at time.Time) (string, error) {
	name := fmt.Sprintf("%s%s.json", filePrefix, at.Format(fileTimeLayout))
	path := filepath.Join(s.dir, name)
	if err := s.SaveAs(doc, path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveAs writes the document as indented JSON to an explicit path.
func (s *Store) SaveAs(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal directive: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write directive: %w", err)
	}
	return nil
}

// List returns directive paths sorted by name ascending. The timestamped
// naming makes name order chronological.
func (s *Store) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list directives: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Latest loads the most recently generated directive and returns it with its
// path.
func (s *Store) Latest() (*Document, string, error) {
	paths, err := s.List()
	if err != nil {
		return nil, "", err
	}
	if len(paths) == 0 {
		return nil, "", ErrNoDirectives
	}

	path := paths[len(paths)-1]
	doc, err := s.Load(path)
	if err != nil {
		return nil, "", err
	}
	return doc, path, nil
}

// Load reads one directive document from disk.
func (s *Store) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directive: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse directive %s: %w", filepath.Base(path), err)
	}
	return &doc, nil
}

// Overview condenses a directive for operator review: aggregate staffing
// totals plus the per-department breakdown of incoming staff.
type Overview struct {
	Timestamp         string
	Date              string
	SurgeContext      string
	PredictedPatients int
	TotalStaffNeeded  int
	CurrentStaff      int
	StaffShortage     int
	Departments       []DepartmentAllocation
}

// DepartmentAllocation groups staffing actions by their target department.
type DepartmentAllocation struct {
	Department  string
	StaffNeeded int
	Roles       []RoleAllocation
}

// RoleAllocation is one staffing action as seen in a department breakdown.
type RoleAllocation struct {
	Role   string
	Count  int
	Action string
}

// Overview derives the aggregate view of this document. Totals sum over the
// surfaced staffing actions, so a role mitigated by several actions counts
// once per action, mirroring how the dashboard reads these files.
func (d *Document) Overview() Overview {
	plan := d.LogisticsActionPlan

	overview := Overview{
		Timestamp:         plan.GenerationTimestamp,
		Date:              plan.Date,
		SurgeContext:      plan.SurgeContext,
		PredictedPatients: plan.PredictedPatientCount,
	}

	index := make(map[string]int)
	for _, action := range plan.StaffingActions {
		overview.TotalStaffNeeded += action.RequiredCount
		overview.CurrentStaff += action.CurrentRosterCount

		i, ok := index[action.TargetDept]
		if !ok {
			i = len(overview.Departments)
			index[action.TargetDept] = i
			overview.Departments = append(overview.Departments, DepartmentAllocation{Department: action.TargetDept})
		}
		overview.Departments[i].StaffNeeded += action.RequiredCount
		overview.Departments[i].Roles = append(overview.Departments[i].Roles, RoleAllocation{
			Role:   action.Role,
			Count:  action.RequiredCount,
			Action: action.Action,
		})
	}

	if shortage := overview.TotalStaffNeeded - overview.CurrentStaff; shortage > 0 {
		overview.StaffShortage = shortage
	}

	return overview
}
