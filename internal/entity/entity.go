// Package entity defines the typed entities held by the synchronized store
// and the codecs that translate them to and from the untyped records of the
// remote hierarchical store.
package entity

// Kind identifies one entity collection. Its string value is the remote
// path the collection lives under.
type Kind string

const (
	KindHospital    Kind = "hospitals"
	KindDoctor      Kind = "doctors"
	KindPatient     Kind = "patient_users"
	KindStaff       Kind = "staffs"
	KindAppointment Kind = "appointments"
)

// Kinds returns every collection kind the store manages.
func Kinds() []Kind {
	return []Kind{KindHospital, KindDoctor, KindPatient, KindStaff, KindAppointment}
}

// Path returns the remote store path for the collection.
func (k Kind) Path() string {
	return string(k)
}

// Record is the untyped wire shape of one entity as the remote store
// delivers and accepts it.
type Record = map[string]any

// Codec bundles the translation functions for one entity kind so the store
// plumbing can stay generic over kinds.
type Codec[T any] struct {
	Kind   Kind
	Decode func(rec Record, id string) (T, error)
	Encode func(e T) Record
	Key    func(e T) string
	// WithKey returns a copy of the entity carrying the given identifier.
	WithKey func(e T, id string) T
}
