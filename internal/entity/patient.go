package entity

import "time"

// Patient is one registered patient user.
type Patient struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	DateOfBirth    time.Time `json:"dateOfBirth"`
	Gender         string    `json:"gender"`
	BloodType      string    `json:"bloodType"`
	EmergencyPhone string    `json:"emergencyPhone"`
}

// DecodePatient builds a Patient from an untyped record.
func DecodePatient(rec Record, id string) (Patient, error) {
	var p Patient
	var err error

	if p.FirstName, err = requiredString(KindPatient, rec, id, "firstName"); err != nil {
		return Patient{}, err
	}
	if p.LastName, err = requiredString(KindPatient, rec, id, "lastName"); err != nil {
		return Patient{}, err
	}
	if p.Email, err = requiredString(KindPatient, rec, id, "email"); err != nil {
		return Patient{}, err
	}
	if p.DateOfBirth, err = requiredDate(KindPatient, rec, id, "dateOfBirth"); err != nil {
		return Patient{}, err
	}

	p.ID = id
	p.Gender = optionalString(rec, "gender")
	p.BloodType = optionalString(rec, "bloodType")
	p.EmergencyPhone = optionalString(rec, "emergencyPhone")
	return p, nil
}

// Encode converts the patient back to its wire record.
func (p Patient) Encode() Record {
	return Record{
		"firstName":      p.FirstName,
		"lastName":       p.LastName,
		"email":          p.Email,
		"dateOfBirth":    p.DateOfBirth.Format(dateLayout),
		"gender":         p.Gender,
		"bloodType":      p.BloodType,
		"emergencyPhone": p.EmergencyPhone,
	}
}

// PatientCodec wires Patient into the generic store plumbing.
var PatientCodec = Codec[Patient]{
	Kind:    KindPatient,
	Decode:  DecodePatient,
	Encode:  Patient.Encode,
	Key:     func(p Patient) string { return p.ID },
	WithKey: func(p Patient, id string) Patient { p.ID = id; return p },
}
