package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"stealthcompany.com/hospsync/internal/entity"
	"stealthcompany.com/hospsync/internal/remote"
	"stealthcompany.com/hospsync/internal/store"
)

// stubRemote is a minimal write-only remote.Store; the handlers under test
// read from the cache the gateway fills.
type stubRemote struct {
	mu      sync.Mutex
	data    map[string]map[string]map[string]any
	nextKey int
	failAll bool
}

func newStubRemote() *stubRemote {
	return &stubRemote{data: make(map[string]map[string]map[string]any)}
}

func (s *stubRemote) Subscribe(ctx context.Context, path string, filter *remote.Filter) (remote.Subscription, error) {
	return nil, errors.New("not supported in tests")
}

func (s *stubRemote) Fetch(ctx context.Context, path string, filter *remote.Filter) (remote.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := remote.Snapshot{}
	for k, rec := range s.data[path] {
		snap[k] = rec
	}
	return snap, nil
}

func (s *stubRemote) Write(ctx context.Context, path, key string, rec map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errors.New("transport error")
	}
	if s.data[path] == nil {
		s.data[path] = make(map[string]map[string]any)
	}
	s.data[path][key] = rec
	return nil
}

func (s *stubRemote) WriteField(ctx context.Context, path, key, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errors.New("transport error")
	}
	rec, ok := s.data[path][key]
	if !ok {
		return errors.New("record not found")
	}
	rec[field] = value
	return nil
}

func (s *stubRemote) Delete(ctx context.Context, path, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errors.New("transport error")
	}
	delete(s.data[path], key)
	return nil
}

func (s *stubRemote) GenerateKey(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextKey++
	return fmt.Sprintf("key-%d", s.nextKey)
}

func newTestServer(t *testing.T) (*stubRemote, *store.Store, http.Handler) {
	t.Helper()
	f := newStubRemote()
	st := store.New(f)
	return f, st, NewServer(st).Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func testPatientBody() entity.Patient {
	return entity.Patient{
		FirstName:   "Lee",
		LastName:    "Tran",
		Email:       "lee.tran@example.com",
		DateOfBirth: time.Date(1992, time.November, 21, 0, 0, 0, 0, time.UTC),
		BloodType:   "O+",
	}
}

func TestCreateAndGetPatient(t *testing.T) {
	_, _, srv := newTestServer(t)

	rr := doRequest(t, srv, "POST", "/patients", testPatientBody())
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created entity.Patient
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created patient has no identifier")
	}

	rr = doRequest(t, srv, "GET", "/patients/"+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var got entity.Patient
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Email != "lee.tran@example.com" {
		t.Errorf("unexpected patient: %+v", got)
	}
}

func TestGetUnknownEntityReturns404(t *testing.T) {
	_, _, srv := newTestServer(t)

	rr := doRequest(t, srv, "GET", "/doctors/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestListServesFromCache(t *testing.T) {
	_, _, srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		p := testPatientBody()
		p.Email = fmt.Sprintf("p%d@example.com", i)
		if rr := doRequest(t, srv, "POST", "/patients", p); rr.Code != http.StatusCreated {
			t.Fatalf("create %d failed: %d", i, rr.Code)
		}
	}

	rr := doRequest(t, srv, "GET", "/patients", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("expected 3 patients, got %d", resp.Count)
	}
}

func TestUpdateRejectsMismatchedID(t *testing.T) {
	_, _, srv := newTestServer(t)

	rr := doRequest(t, srv, "POST", "/patients", testPatientBody())
	var created entity.Patient
	json.NewDecoder(rr.Body).Decode(&created)

	created.ID = "someone-else"
	rr = doRequest(t, srv, "PUT", "/patients/other-id", created)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for mismatched identifiers, got %d", rr.Code)
	}
}

func TestCreateFailureSurfacesError(t *testing.T) {
	f, _, srv := newTestServer(t)
	f.mu.Lock()
	f.failAll = true
	f.mu.Unlock()

	rr := doRequest(t, srv, "POST", "/patients", testPatientBody())
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502 on transport failure, got %d", rr.Code)
	}
}

func TestAttachPrescription(t *testing.T) {
	_, st, srv := newTestServer(t)

	appt, err := st.Appointments.Create(context.Background(), entity.Appointment{
		PatientID: "p1",
		DoctorID:  "d1",
		Date:      time.Date(2026, time.September, 14, 10, 30, 0, 0, time.UTC),
		Slot:      "10:30-11:00",
	})
	if err != nil {
		t.Fatalf("create appointment failed: %v", err)
	}

	rr := doRequest(t, srv, "POST", "/appointments/"+appt.ID+"/prescription",
		map[string]string{"prescription": "amoxicillin 500mg"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	got, ok := st.Appointments.Get(appt.ID)
	if !ok || got.Prescription != "amoxicillin 500mg" {
		t.Errorf("prescription not attached: %+v (ok=%v)", got, ok)
	}

	rr = doRequest(t, srv, "POST", "/appointments/"+appt.ID+"/prescription",
		map[string]string{"prescription": ""})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for empty prescription, got %d", rr.Code)
	}
}

func TestHealthReportsStates(t *testing.T) {
	_, _, srv := newTestServer(t)

	rr := doRequest(t, srv, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["doctors"] != "unsubscribed" {
		t.Errorf("expected unsubscribed doctors collection, got %q", resp["doctors"])
	}
}
