package entity

import (
	"fmt"
	"time"
)

// Designation is a doctor's speciality. It determines the consultation
// interval and fee schedule; those are derived here and never stored, so
// they cannot drift from the designation.
type Designation string

const (
	GeneralPractitioner Designation = "general_practitioner"
	Pediatrician        Designation = "pediatrician"
	Cardiologist        Designation = "cardiologist"
	Dermatologist       Designation = "dermatologist"
	Neurologist         Designation = "neurologist"
	Orthopedist         Designation = "orthopedist"
	Psychiatrist        Designation = "psychiatrist"
)

var designationSchedule = map[Designation]struct {
	interval time.Duration
	fee      int
}{
	GeneralPractitioner: {15 * time.Minute, 3000},
	Pediatrician:        {20 * time.Minute, 4000},
	Cardiologist:        {30 * time.Minute, 9000},
	Dermatologist:       {20 * time.Minute, 6000},
	Neurologist:         {30 * time.Minute, 10000},
	Orthopedist:         {25 * time.Minute, 7500},
	Psychiatrist:        {45 * time.Minute, 8500},
}

// ParseDesignation matches s against the fixed vocabulary. Unknown tags fail.
func ParseDesignation(s string) (Designation, error) {
	d := Designation(s)
	if _, ok := designationSchedule[d]; !ok {
		return "", fmt.Errorf("unknown designation %q", s)
	}
	return d, nil
}

// ConsultationInterval is the slot length for appointments with this
// designation.
func (d Designation) ConsultationInterval() time.Duration {
	return designationSchedule[d].interval
}

// ConsultationFee is the consultation charge in currency minor units.
func (d Designation) ConsultationFee() int {
	return designationSchedule[d].fee
}

// TimeOfDay is a wall-clock time with minute precision, encoded as "HH:MM".
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseTimeOfDay parses "HH:MM" on a 24-hour clock.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ShiftWindow is a doctor's daily working window.
type ShiftWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Doctor is one practicing doctor.
type Doctor struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	DateOfBirth time.Time   `json:"dateOfBirth"`
	Shift       ShiftWindow `json:"shift"`
	Designation Designation `json:"designation"`
}

// DecodeDoctor builds a Doctor from an untyped record.
func DecodeDoctor(rec Record, id string) (Doctor, error) {
	var d Doctor
	var err error

	if d.FirstName, err = requiredString(KindDoctor, rec, id, "firstName"); err != nil {
		return Doctor{}, err
	}
	if d.LastName, err = requiredString(KindDoctor, rec, id, "lastName"); err != nil {
		return Doctor{}, err
	}
	if d.Email, err = requiredString(KindDoctor, rec, id, "email"); err != nil {
		return Doctor{}, err
	}
	if d.DateOfBirth, err = requiredDate(KindDoctor, rec, id, "dateOfBirth"); err != nil {
		return Doctor{}, err
	}

	tag, err := requiredString(KindDoctor, rec, id, "designation")
	if err != nil {
		return Doctor{}, err
	}
	if d.Designation, err = ParseDesignation(tag); err != nil {
		return Doctor{}, decodeErr(KindDoctor, id, "designation", err.Error())
	}

	start, err := requiredString(KindDoctor, rec, id, "shiftStart")
	if err != nil {
		return Doctor{}, err
	}
	if d.Shift.Start, err = ParseTimeOfDay(start); err != nil {
		return Doctor{}, decodeErr(KindDoctor, id, "shiftStart", err.Error())
	}
	end, err := requiredString(KindDoctor, rec, id, "shiftEnd")
	if err != nil {
		return Doctor{}, err
	}
	if d.Shift.End, err = ParseTimeOfDay(end); err != nil {
		return Doctor{}, decodeErr(KindDoctor, id, "shiftEnd", err.Error())
	}

	d.ID = id
	d.Phone = optionalString(rec, "phone")
	return d, nil
}

// Encode converts the doctor back to its wire record. The fee and interval
// are intentionally absent: they are derived from the designation.
func (d Doctor) Encode() Record {
	return Record{
		"firstName":   d.FirstName,
		"lastName":    d.LastName,
		"email":       d.Email,
		"phone":       d.Phone,
		"dateOfBirth": d.DateOfBirth.Format(dateLayout),
		"shiftStart":  d.Shift.Start.String(),
		"shiftEnd":    d.Shift.End.String(),
		"designation": string(d.Designation),
	}
}

// DoctorCodec wires Doctor into the generic store plumbing.
var DoctorCodec = Codec[Doctor]{
	Kind:    KindDoctor,
	Decode:  DecodeDoctor,
	Encode:  Doctor.Encode,
	Key:     func(d Doctor) string { return d.ID },
	WithKey: func(d Doctor, id string) Doctor { d.ID = id; return d },
}
