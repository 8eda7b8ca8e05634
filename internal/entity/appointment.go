package entity

import "time"

// Appointment links a patient to a doctor for one booked slot. Appointments
// are created by the scheduling flow and afterwards only mutated to attach
// a prescription; the platform never hard-deletes them.
//
// PatientID and DoctorID are plain key references. The store does not
// enforce referential integrity: deleting a referenced doctor or patient
// leaves the appointment dangling and readers must tolerate that.
type Appointment struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patientId"`
	DoctorID     string    `json:"doctorId"`
	Date         time.Time `json:"date"`
	Slot         string    `json:"slot"`
	Prescription string    `json:"prescription,omitempty"`
}

// DecodeAppointment builds an Appointment from an untyped record. The date
// travels as numeric epoch milliseconds, unlike the person records.
func DecodeAppointment(rec Record, id string) (Appointment, error) {
	var a Appointment
	var err error

	if a.PatientID, err = requiredString(KindAppointment, rec, id, "patientId"); err != nil {
		return Appointment{}, err
	}
	if a.DoctorID, err = requiredString(KindAppointment, rec, id, "doctorId"); err != nil {
		return Appointment{}, err
	}
	if a.Date, err = requiredEpochMillis(KindAppointment, rec, id, "date"); err != nil {
		return Appointment{}, err
	}
	if a.Slot, err = requiredString(KindAppointment, rec, id, "slot"); err != nil {
		return Appointment{}, err
	}

	a.ID = id
	a.Prescription = optionalString(rec, "prescription")
	return a, nil
}

// Encode converts the appointment back to its wire record.
func (a Appointment) Encode() Record {
	rec := Record{
		"patientId": a.PatientID,
		"doctorId":  a.DoctorID,
		"date":      float64(a.Date.UnixMilli()),
		"slot":      a.Slot,
	}
	if a.Prescription != "" {
		rec["prescription"] = a.Prescription
	}
	return rec
}

// AppointmentCodec wires Appointment into the generic store plumbing.
var AppointmentCodec = Codec[Appointment]{
	Kind:    KindAppointment,
	Decode:  DecodeAppointment,
	Encode:  Appointment.Encode,
	Key:     func(a Appointment) string { return a.ID },
	WithKey: func(a Appointment, id string) Appointment { a.ID = id; return a },
}
