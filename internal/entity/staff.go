package entity

import (
	"fmt"
	"time"
)

// EmploymentStatus is a staff member's employment state.
type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "active"
	StatusOnLeave    EmploymentStatus = "on_leave"
	StatusProbation  EmploymentStatus = "probation"
	StatusTerminated EmploymentStatus = "terminated"
)

var employmentStatuses = map[EmploymentStatus]struct{}{
	StatusActive:     {},
	StatusOnLeave:    {},
	StatusProbation:  {},
	StatusTerminated: {},
}

// ParseEmploymentStatus matches s against the fixed vocabulary. Unknown
// tags fail.
func ParseEmploymentStatus(s string) (EmploymentStatus, error) {
	st := EmploymentStatus(s)
	if _, ok := employmentStatuses[st]; !ok {
		return "", fmt.Errorf("unknown employment status %q", s)
	}
	return st, nil
}

// Staff is one non-doctor hospital employee.
type Staff struct {
	ID          string           `json:"id"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	DateOfBirth time.Time        `json:"dateOfBirth"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Position    string           `json:"position"`
	Department  string           `json:"department"`
	Status      EmploymentStatus `json:"status"`
}

// Age is derived from the date of birth and is never persisted.
func (s Staff) Age(now time.Time) int {
	years := now.Year() - s.DateOfBirth.Year()
	if now.YearDay() < s.DateOfBirth.YearDay() {
		years--
	}
	return years
}

// DecodeStaff builds a Staff from an untyped record.
func DecodeStaff(rec Record, id string) (Staff, error) {
	var s Staff
	var err error

	if s.FirstName, err = requiredString(KindStaff, rec, id, "firstName"); err != nil {
		return Staff{}, err
	}
	if s.LastName, err = requiredString(KindStaff, rec, id, "lastName"); err != nil {
		return Staff{}, err
	}
	if s.Email, err = requiredString(KindStaff, rec, id, "email"); err != nil {
		return Staff{}, err
	}
	if s.DateOfBirth, err = requiredDate(KindStaff, rec, id, "dateOfBirth"); err != nil {
		return Staff{}, err
	}
	if s.Position, err = requiredString(KindStaff, rec, id, "position"); err != nil {
		return Staff{}, err
	}

	tag, err := requiredString(KindStaff, rec, id, "status")
	if err != nil {
		return Staff{}, err
	}
	if s.Status, err = ParseEmploymentStatus(tag); err != nil {
		return Staff{}, decodeErr(KindStaff, id, "status", err.Error())
	}

	s.ID = id
	s.Phone = optionalString(rec, "phone")
	s.Department = optionalString(rec, "department")
	return s, nil
}

// Encode converts the staff member back to its wire record. Age is derived
// and deliberately absent.
func (s Staff) Encode() Record {
	return Record{
		"firstName":   s.FirstName,
		"lastName":    s.LastName,
		"email":       s.Email,
		"dateOfBirth": s.DateOfBirth.Format(dateLayout),
		"phone":       s.Phone,
		"position":    s.Position,
		"department":  s.Department,
		"status":      string(s.Status),
	}
}

// StaffCodec wires Staff into the generic store plumbing.
var StaffCodec = Codec[Staff]{
	Kind:    KindStaff,
	Decode:  DecodeStaff,
	Encode:  Staff.Encode,
	Key:     func(s Staff) string { return s.ID },
	WithKey: func(s Staff, id string) Staff { s.ID = id; return s },
}
