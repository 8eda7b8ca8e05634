package api

import (
	"github.com/gorilla/mux"
	"stealthcompany.com/hospsync/internal/metrics"
	"stealthcompany.com/hospsync/internal/store"
)

// Server serves the synchronized store over HTTP for admin clients. Reads
// come straight from the collection caches; writes go through the mutation
// gateway.
type Server struct {
	store *store.Store
}

// NewServer wraps a store.
func NewServer(s *store.Store) *Server {
	return &Server{store: s}
}

// Routes configures and returns the HTTP router
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()

	r.Use(metrics.MetricsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/hospitals", listHandler(s.store.Hospitals)).Methods("GET")
	r.HandleFunc("/hospitals/{id}", getHandler(s.store.Hospitals)).Methods("GET")
	r.HandleFunc("/hospitals", createHandler(s.store.Hospitals)).Methods("POST")
	r.HandleFunc("/hospitals/{id}", updateHandler(s.store.Hospitals)).Methods("PUT")
	r.HandleFunc("/hospitals/{id}", deleteHandler(s.store.Hospitals.Delete)).Methods("DELETE")

	r.HandleFunc("/doctors", listHandler(s.store.Doctors)).Methods("GET")
	r.HandleFunc("/doctors/{id}", getHandler(s.store.Doctors)).Methods("GET")
	r.HandleFunc("/doctors", createHandler(s.store.Doctors)).Methods("POST")
	r.HandleFunc("/doctors/{id}", updateHandler(s.store.Doctors)).Methods("PUT")
	r.HandleFunc("/doctors/{id}", deleteHandler(s.store.DeleteDoctor)).Methods("DELETE")

	r.HandleFunc("/patients", listHandler(s.store.Patients)).Methods("GET")
	r.HandleFunc("/patients/{id}", getHandler(s.store.Patients)).Methods("GET")
	r.HandleFunc("/patients", createHandler(s.store.Patients)).Methods("POST")
	r.HandleFunc("/patients/{id}", updateHandler(s.store.Patients)).Methods("PUT")
	r.HandleFunc("/patients/{id}", deleteHandler(s.store.DeletePatient)).Methods("DELETE")

	r.HandleFunc("/staff", listHandler(s.store.Staff)).Methods("GET")
	r.HandleFunc("/staff/{id}", getHandler(s.store.Staff)).Methods("GET")
	r.HandleFunc("/staff", createHandler(s.store.Staff)).Methods("POST")
	r.HandleFunc("/staff/{id}", updateHandler(s.store.Staff)).Methods("PUT")
	r.HandleFunc("/staff/{id}", deleteHandler(s.store.Staff.Delete)).Methods("DELETE")

	// Appointments are never hard-deleted; the only partial mutation is
	// attaching a prescription.
	r.HandleFunc("/appointments", listHandler(s.store.Appointments)).Methods("GET")
	r.HandleFunc("/appointments/{id}", getHandler(s.store.Appointments)).Methods("GET")
	r.HandleFunc("/appointments/{id}/detail", s.AppointmentDetailHandler).Methods("GET")
	r.HandleFunc("/appointments", createHandler(s.store.Appointments)).Methods("POST")
	r.HandleFunc("/appointments/{id}/prescription", s.AttachPrescriptionHandler).Methods("POST")

	return r
}
