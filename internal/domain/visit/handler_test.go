package visit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

func newTestHandler(knownPatients ...uuid.UUID) (*Handler, *echo.Echo) {
	svc, _ := newTestService(knownPatients...)
	return NewHandler(svc), echo.New()
}

// asRole stamps the request context the way the auth middleware would.
func asRole(req *http.Request, role string) *http.Request {
	ctx := auth.WithActor(req.Context(), "test-user", role)
	return req.WithContext(ctx)
}

func TestHandler_CreateVisit(t *testing.T) {
	pid := uuid.New()
	h, e := newTestHandler(pid)

	body := `{"patient_id":"` + pid.String() + `","reason":"checkup"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/visits", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(asRole(req, auth.RoleSecretary), rec)

	if err := h.CreateVisit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var v Visit
	json.Unmarshal(rec.Body.Bytes(), &v)
	if v.CreatedBy != auth.RoleSecretary {
		t.Errorf("expected created_by secretary, got %q", v.CreatedBy)
	}
	if v.Status != StatusScheduled {
		t.Errorf("expected Scheduled, got %q", v.Status)
	}
}

func TestHandler_CreateVisit_UnknownPatient(t *testing.T) {
	h, e := newTestHandler()

	body := `{"patient_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/visits", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(asRole(req, auth.RoleSecretary), rec)

	err := h.CreateVisit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown patient, got %v", err)
	}
}

func TestHandler_GetVisit(t *testing.T) {
	pid := uuid.New()
	h, e := newTestHandler(pid)

	v := &Visit{PatientID: pid}
	h.svc.CreateVisit(nil, v, auth.RoleSecretary)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(v.ID.String())

	if err := h.GetVisit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var got WithStatus
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.EffectiveStatus != StatusScheduled {
		t.Errorf("expected effective Scheduled, got %q", got.EffectiveStatus)
	}
}

func TestHandler_GetVisit_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetVisit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_ListVisits_RequiresFilter(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListVisits(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without patient_id or date, got %v", err)
	}
}

func TestHandler_RescheduleVisit(t *testing.T) {
	pid := uuid.New()
	h, e := newTestHandler(pid)

	v := &Visit{PatientID: pid}
	h.svc.CreateVisit(nil, v, auth.RoleSecretary)

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"date":"2024-02-01"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(v.ID.String())

	if err := h.RescheduleVisit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got Visit
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusRescheduled {
		t.Errorf("expected Rescheduled, got %q", got.Status)
	}
}

func TestHandler_CancelThenUncancelConflicts(t *testing.T) {
	pid := uuid.New()
	h, e := newTestHandler(pid)

	v := &Visit{PatientID: pid}
	h.svc.CreateVisit(nil, v, auth.RoleSecretary)

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(v.ID.String())
	if err := h.CancelVisit(c); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"Scheduled"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(v.ID.String())

	err := h.UpdateVisit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409 for un-cancel, got %v", err)
	}
}

func TestHandler_CompleteWithDiagnosis(t *testing.T) {
	pid := uuid.New()
	h, e := newTestHandler(pid)

	v := &Visit{PatientID: pid}
	h.svc.CreateVisit(nil, v, auth.RoleSecretary)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"diagnosis":"flu","notes":"rest"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(v.ID.String())

	if err := h.CompleteWithDiagnosis(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got Visit
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusCompleted {
		t.Errorf("expected Completed, got %q", got.Status)
	}
	if got.Diagnosis == nil || got.Diagnosis.Diagnosis != "flu" {
		t.Error("expected current diagnosis flu")
	}
}

func TestHandler_RemoveDiagnosis_Unknown(t *testing.T) {
	pid := uuid.New()
	h, e := newTestHandler(pid)

	v := &Visit{PatientID: pid}
	h.svc.CreateVisit(nil, v, auth.RoleSecretary)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "diagnosisId")
	c.SetParamValues(v.ID.String(), uuid.NewString())

	err := h.RemoveDiagnosis(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown diagnosis, got %v", err)
	}
}
