/*
Package factory provides JSON to Go organisation configuration conversion.

PURPOSE:
  Converts an organisation's JSON configuration (leave types, their
  allocation categories, employees and opening balances) into the typed
  structures the composer and the store work with. HR edits JSON; the
  factory validates it and fills in defaults.

JSON SCHEMA:
  {
    "org_id": "acme",
    "leave_types": [
      {"id": "cp", "name": "Congés payés", "code": "CP", "color": "#2563eb", "category": "paid"},
      {"id": "ss", "name": "Congé sans solde", "code": "SS"}
    ],
    "employees": [
      {"id": "alice", "name": "Alice Martin", "email": "alice@acme.test",
       "balances": {"cp": 12.5}}
    ]
  }

DEFAULTS:
  - A leave type without "category" is classified from its name and code.
  - Unknown categories, duplicate ids and balances for unconfigured types
    are rejected with a *generic.ValidationError.

USAGE:
  f := NewConfigFactory()
  cfg, err := f.ParseOrgConfig(jsonString)
  store.SaveOrgConfig(ctx, cfg)

SEE ALSO:
  - leave/category.go: classification heuristic
  - store/sqlite/sqlite.go: persistence of the parsed config
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// OrgConfigJSON is the JSON representation of an organisation's setup.
type OrgConfigJSON struct {
	OrgID      string          `json:"org_id"`
	LeaveTypes []LeaveTypeJSON `json:"leave_types"`
	Employees  []EmployeeJSON  `json:"employees,omitempty"`
}

// LeaveTypeJSON represents one configured leave type.
type LeaveTypeJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Color    string `json:"color,omitempty"`
	Category string `json:"category,omitempty"` // paid, unpaid, remote, sickness, other
}

// EmployeeJSON represents an employee with opening balances keyed by leave type id.
type EmployeeJSON struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Email    string             `json:"email,omitempty"`
	Balances map[string]float64 `json:"balances,omitempty"`
}

// =============================================================================
// PARSED CONFIG
// =============================================================================

// OrgConfig is a validated organisation configuration.
type OrgConfig struct {
	OrgID      string
	LeaveTypes []leave.LeaveType
	Categories leave.CategoryTable
	Employees  []Employee
}

// Employee is a configured employee with opening balances.
type Employee struct {
	ID       string
	OrgID    string
	Name     string
	Email    string
	Balances []EmployeeBalance
}

// EmployeeBalance is one opening balance.
type EmployeeBalance struct {
	LeaveTypeID string
	Balance     generic.Amount
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts JSON configuration to Go structs.
type ConfigFactory struct{}

// NewConfigFactory creates a new config factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseOrgConfig parses a JSON string into an OrgConfig.
func (f *ConfigFactory) ParseOrgConfig(jsonStr string) (*OrgConfig, error) {
	var cj OrgConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON validates an OrgConfigJSON and converts it.
func (f *ConfigFactory) FromJSON(cj OrgConfigJSON) (*OrgConfig, error) {
	orgID := strings.TrimSpace(cj.OrgID)
	if orgID == "" {
		return nil, &generic.ValidationError{Field: "org_id", Message: "required"}
	}

	cfg := &OrgConfig{
		OrgID:      orgID,
		Categories: make(leave.CategoryTable, len(cj.LeaveTypes)),
	}

	seen := make(map[string]bool, len(cj.LeaveTypes))
	for i, lt := range cj.LeaveTypes {
		parsed, category, err := parseLeaveType(i, lt)
		if err != nil {
			return nil, err
		}
		if seen[parsed.ID] {
			return nil, &generic.ValidationError{
				Field:   fmt.Sprintf("leave_types[%d].id", i),
				Message: fmt.Sprintf("duplicate leave type %q", parsed.ID),
			}
		}
		seen[parsed.ID] = true
		cfg.LeaveTypes = append(cfg.LeaveTypes, parsed)
		cfg.Categories[parsed.ID] = category
	}

	employees := make(map[string]bool, len(cj.Employees))
	for i, ej := range cj.Employees {
		emp, err := parseEmployee(i, ej, orgID, seen)
		if err != nil {
			return nil, err
		}
		if employees[emp.ID] {
			return nil, &generic.ValidationError{
				Field:   fmt.Sprintf("employees[%d].id", i),
				Message: fmt.Sprintf("duplicate employee %q", emp.ID),
			}
		}
		employees[emp.ID] = true
		cfg.Employees = append(cfg.Employees, emp)
	}

	return cfg, nil
}

// ToJSON converts an OrgConfig back to its JSON form.
func (f *ConfigFactory) ToJSON(cfg *OrgConfig) OrgConfigJSON {
	cj := OrgConfigJSON{OrgID: cfg.OrgID}
	for _, lt := range cfg.LeaveTypes {
		cj.LeaveTypes = append(cj.LeaveTypes, LeaveTypeJSON{
			ID:       lt.ID,
			Name:     lt.Name,
			Code:     lt.Code,
			Color:    lt.Color,
			Category: string(cfg.Categories.Category(lt.ID)),
		})
	}
	for _, emp := range cfg.Employees {
		ej := EmployeeJSON{ID: emp.ID, Name: emp.Name, Email: emp.Email}
		if len(emp.Balances) > 0 {
			ej.Balances = make(map[string]float64, len(emp.Balances))
			for _, b := range emp.Balances {
				ej.Balances[b.LeaveTypeID] = b.Balance.Float64()
			}
		}
		cj.Employees = append(cj.Employees, ej)
	}
	return cj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseLeaveType(i int, lt LeaveTypeJSON) (leave.LeaveType, leave.LeaveCategory, error) {
	id := strings.TrimSpace(lt.ID)
	if id == "" {
		return leave.LeaveType{}, "", &generic.ValidationError{Field: fmt.Sprintf("leave_types[%d].id", i), Message: "required"}
	}
	name := strings.TrimSpace(lt.Name)
	if name == "" {
		return leave.LeaveType{}, "", &generic.ValidationError{Field: fmt.Sprintf("leave_types[%d].name", i), Message: "required"}
	}

	parsed := leave.LeaveType{ID: id, Name: name, Code: strings.TrimSpace(lt.Code), Color: lt.Color}

	if lt.Category == "" {
		return parsed, leave.Classify(parsed.Name, parsed.Code), nil
	}
	category, err := leave.ParseCategory(lt.Category)
	if err != nil {
		return leave.LeaveType{}, "", &generic.ValidationError{
			Field:   fmt.Sprintf("leave_types[%d].category", i),
			Message: err.Error(),
		}
	}
	return parsed, category, nil
}

func parseEmployee(i int, ej EmployeeJSON, orgID string, leaveTypes map[string]bool) (Employee, error) {
	id := strings.TrimSpace(ej.ID)
	if id == "" {
		return Employee{}, &generic.ValidationError{Field: fmt.Sprintf("employees[%d].id", i), Message: "required"}
	}

	emp := Employee{ID: id, OrgID: orgID, Name: ej.Name, Email: ej.Email}
	if emp.Name == "" {
		emp.Name = id
	}

	for typeID, days := range ej.Balances {
		if !leaveTypes[typeID] {
			return Employee{}, &generic.ValidationError{
				Field:   fmt.Sprintf("employees[%d].balances.%s", i, typeID),
				Message: "unknown leave type",
			}
		}
		emp.Balances = append(emp.Balances, EmployeeBalance{LeaveTypeID: typeID, Balance: generic.Days(days)})
	}
	// Map order must not leak into stored data
	sort.Slice(emp.Balances, func(a, b int) bool {
		return emp.Balances[a].LeaveTypeID < emp.Balances[b].LeaveTypeID
	})
	return emp, nil
}
