// Package store implements the synchronized entity store: typed collection
// caches kept current by remote snapshot subscriptions, write-through
// mutations, and a typed change notifier for observers.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/hospsync/internal/entity"
	"stealthcompany.com/hospsync/internal/remote"
)

// Store owns the five entity collections. Construct one at the composition
// root and hand it to consumers; there is no hidden global instance.
type Store struct {
	remote   remote.Store
	notifier *Notifier

	Hospitals    *Collection[entity.Hospital]
	Doctors      *Collection[entity.Doctor]
	Patients     *Collection[entity.Patient]
	Staff        *Collection[entity.Staff]
	Appointments *Collection[entity.Appointment]
}

// New builds a store on top of the given remote store.
func New(r remote.Store) *Store {
	n := NewNotifier()
	return &Store{
		remote:       r,
		notifier:     n,
		Hospitals:    newCollection(entity.HospitalCodec, r, n),
		Doctors:      newCollection(entity.DoctorCodec, r, n),
		Patients:     newCollection(entity.PatientCodec, r, n),
		Staff:        newCollection(entity.StaffCodec, r, n),
		Appointments: newCollection(entity.AppointmentCodec, r, n),
	}
}

// Notifier returns the change hub observers register with.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// SubscribeAll opens the long-lived subscription for every collection,
// including the unfiltered appointment stream. On failure the collections
// already subscribed are torn down again.
func (s *Store) SubscribeAll(ctx context.Context) error {
	subs := []struct {
		name      string
		subscribe func() error
	}{
		{"hospitals", func() error { return s.Hospitals.Subscribe(ctx) }},
		{"doctors", func() error { return s.Doctors.Subscribe(ctx) }},
		{"patients", func() error { return s.Patients.Subscribe(ctx) }},
		{"staff", func() error { return s.Staff.Subscribe(ctx) }},
		{"appointments", func() error { return s.Appointments.Subscribe(ctx) }},
	}

	for _, sub := range subs {
		if err := sub.subscribe(); err != nil {
			s.Unsubscribe()
			return fmt.Errorf("failed to subscribe %s: %w", sub.name, err)
		}
	}
	return nil
}

// SubscribeAppointmentsForDoctor scopes the appointment subscription to the
// appointments of one doctor, mirroring the remote store's restricted
// query form. Used when the signed-in user is a doctor.
func (s *Store) SubscribeAppointmentsForDoctor(ctx context.Context, doctorID string) error {
	return s.Appointments.subscribe(ctx, &remote.Filter{Field: "doctorId", Value: doctorID})
}

// Unsubscribe tears down every live subscription. Caches keep their
// last-known-good contents.
func (s *Store) Unsubscribe() {
	s.Hospitals.Unsubscribe()
	s.Doctors.Unsubscribe()
	s.Patients.Unsubscribe()
	s.Staff.Unsubscribe()
	s.Appointments.Unsubscribe()
}

// AttachPrescription writes only the prescription field of the appointment
// and then refreshes the appointment collection, the one partial-write
// mutation the platform performs.
func (s *Store) AttachPrescription(ctx context.Context, appointmentID, prescription string) error {
	return s.Appointments.SetField(ctx, appointmentID, "prescription", prescription)
}

// AppointmentDetail is an appointment with its references resolved against
// the patient and doctor caches at read time. Either reference may be nil:
// the store does not enforce referential integrity, so an appointment can
// outlive the records it points at.
type AppointmentDetail struct {
	Appointment entity.Appointment `json:"appointment"`
	Patient     *entity.Patient    `json:"patient,omitempty"`
	Doctor      *entity.Doctor     `json:"doctor,omitempty"`
}

// AppointmentDetail resolves one appointment's foreign keys.
func (s *Store) AppointmentDetail(id string) (AppointmentDetail, bool) {
	a, ok := s.Appointments.Get(id)
	if !ok {
		return AppointmentDetail{}, false
	}

	detail := AppointmentDetail{Appointment: a}
	if p, ok := s.Patients.Get(a.PatientID); ok {
		detail.Patient = &p
	}
	if d, ok := s.Doctors.Get(a.DoctorID); ok {
		detail.Doctor = &d
	}
	return detail, true
}

// AppointmentsForDoctor returns the cached appointments referencing the
// doctor.
func (s *Store) AppointmentsForDoctor(doctorID string) []entity.Appointment {
	var out []entity.Appointment
	for _, a := range s.Appointments.List() {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out
}

// AppointmentsForPatient returns the cached appointments referencing the
// patient.
func (s *Store) AppointmentsForPatient(patientID string) []entity.Appointment {
	var out []entity.Appointment
	for _, a := range s.Appointments.List() {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out
}

// DeleteDoctor deletes a doctor. Appointments referencing the doctor are
// left in place and dangle; the count is logged so operators can see it
// happen.
func (s *Store) DeleteDoctor(ctx context.Context, id string) error {
	if n := len(s.AppointmentsForDoctor(id)); n > 0 {
		log.Warn().
			Str("doctor_id", id).
			Int("appointments", n).
			Msg("Deleting doctor still referenced by appointments")
	}
	return s.Doctors.Delete(ctx, id)
}

// DeletePatient deletes a patient, tolerating dangling appointment
// references the same way DeleteDoctor does.
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	if n := len(s.AppointmentsForPatient(id)); n > 0 {
		log.Warn().
			Str("patient_id", id).
			Int("appointments", n).
			Msg("Deleting patient still referenced by appointments")
	}
	return s.Patients.Delete(ctx, id)
}
