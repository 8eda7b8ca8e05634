package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/hospsync/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HealthHandler reports the subscription state of every collection.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "ok",
		"hospitals":    s.store.Hospitals.State().String(),
		"doctors":      s.store.Doctors.State().String(),
		"patients":     s.store.Patients.State().String(),
		"staff":        s.store.Staff.State().String(),
		"appointments": s.store.Appointments.State().String(),
	})
}

// listHandler serves a whole collection from the cache.
func listHandler[T any](c *store.Collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entities := c.List()
		writeJSON(w, http.StatusOK, map[string]any{
			"data":  entities,
			"count": len(entities),
		})
	}
}

// getHandler serves one cached entity by identifier.
func getHandler[T any](c *store.Collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		e, ok := c.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// createHandler persists a new entity through the mutation gateway.
func createHandler[T any](c *store.Collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e T
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		created, err := c.Create(r.Context(), e)
		if err != nil {
			log.Error().
				Err(err).
				Str("collection", c.Kind().Path()).
				Msg("Create failed")
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// updateHandler overwrites the entity at the URL identifier.
func updateHandler[T any](c *store.Collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var e T
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if bodyID := c.Key(e); bodyID != "" && bodyID != id {
			writeError(w, http.StatusBadRequest, "identifier in body does not match URL")
			return
		}
		e = c.WithKey(e, id)

		if err := c.Update(r.Context(), e); err != nil {
			log.Error().
				Err(err).
				Str("collection", c.Kind().Path()).
				Str("id", id).
				Msg("Update failed")
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// deleteHandler removes the entity at the URL identifier. Doctor and
// patient routes pass the store-level delete that logs dangling
// appointment references.
func deleteHandler(del func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := del(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrMissingID) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error().
				Err(err).
				Str("id", id).
				Msg("Delete failed")
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// AppointmentDetailHandler serves one appointment with its patient and
// doctor references resolved. Either reference may be absent.
func (s *Server) AppointmentDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	detail, ok := s.store.AppointmentDetail(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// AttachPrescriptionHandler attaches a prescription to an appointment.
func (s *Server) AttachPrescriptionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Prescription string `json:"prescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prescription == "" {
		writeError(w, http.StatusUnprocessableEntity, "prescription must not be empty")
		return
	}

	if err := s.store.AttachPrescription(r.Context(), id, req.Prescription); err != nil {
		log.Error().
			Err(err).
			Str("appointment_id", id).
			Msg("Failed to attach prescription")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
