package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/service"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// fakeDataAPI is an in-memory DataAPI backed by canned data.
type fakeDataAPI struct {
	patients      []upstream.Patient
	pregnancies   []upstream.Pregnancy
	visits        []upstream.Visit
	immunizations []upstream.Immunization
	reminders     []upstream.Reminder
	voiceNotes    []upstream.VoiceNote
	audit         []upstream.AuditRecord

	completedReminders []int
	completeErr        error
	listErr            error
}

func (f *fakeDataAPI) ListPatients(_ context.Context, _, q string) ([]upstream.Patient, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if q == "" {
		return f.patients, nil
	}
	matched := make([]upstream.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		if p.Name == q || p.Phone == q {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (f *fakeDataAPI) GetPatient(_ context.Context, _ string, id int) (upstream.Patient, error) {
	for _, p := range f.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return upstream.Patient{}, &upstream.APIError{Status: http.StatusNotFound, Message: "patient not found"}
}

func (f *fakeDataAPI) CreatePatient(
	_ context.Context,
	_ string,
	req upstream.CreatePatientRequest,
) (upstream.Patient, error) {
	p := upstream.Patient{ID: len(f.patients) + 1, Name: req.Name, GenderID: req.GenderID}
	f.patients = append(f.patients, p)
	return p, nil
}

func (f *fakeDataAPI) ListPregnancies(context.Context, string) ([]upstream.Pregnancy, error) {
	return f.pregnancies, f.listErr
}

func (f *fakeDataAPI) CreatePregnancy(
	_ context.Context,
	_ string,
	req upstream.CreatePregnancyRequest,
) (upstream.Pregnancy, error) {
	p := upstream.Pregnancy{ID: len(f.pregnancies) + 1, PatientID: req.PatientID, StartDate: req.StartDate}
	f.pregnancies = append(f.pregnancies, p)
	return p, nil
}

func (f *fakeDataAPI) ListVisits(context.Context, string) ([]upstream.Visit, error) {
	return f.visits, f.listErr
}

func (f *fakeDataAPI) CreateVisit(_ context.Context, _ string, req upstream.CreateVisitRequest) (upstream.Visit, error) {
	v := upstream.Visit{ID: len(f.visits) + 1, PatientID: req.PatientID, VisitDate: req.VisitDate}
	f.visits = append(f.visits, v)
	return v, nil
}

func (f *fakeDataAPI) ListImmunizations(context.Context, string) ([]upstream.Immunization, error) {
	return f.immunizations, f.listErr
}

func (f *fakeDataAPI) CreateImmunization(
	_ context.Context,
	_ string,
	req upstream.CreateImmunizationRequest,
) (upstream.Immunization, error) {
	im := upstream.Immunization{ID: len(f.immunizations) + 1, PatientID: req.PatientID, VaccineID: req.VaccineID}
	f.immunizations = append(f.immunizations, im)
	return im, nil
}

func (f *fakeDataAPI) ListMyReminders(context.Context, string) ([]upstream.Reminder, error) {
	return f.reminders, f.listErr
}

func (f *fakeDataAPI) CompleteReminder(_ context.Context, _ string, id int) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completedReminders = append(f.completedReminders, id)
	return nil
}

func (f *fakeDataAPI) ListVoiceNotes(context.Context, string) ([]upstream.VoiceNote, error) {
	return f.voiceNotes, f.listErr
}

func (f *fakeDataAPI) ListAuditRecords(context.Context, string) ([]upstream.AuditRecord, error) {
	return f.audit, f.listErr
}

// fakeLookups serves a fixed Set and reports loaded.
type fakeLookups struct {
	set    lookup.Set
	loaded bool
}

func (f *fakeLookups) Ensure(context.Context, string) error { return nil }
func (f *fakeLookups) Loaded() bool                         { return f.loaded }
func (f *fakeLookups) Tables() lookup.Set                   { return f.set }
func (f *fakeLookups) Name(c lookup.Category, id int) string {
	return f.set.Name(c, id)
}

func testLookupSet() lookup.Set {
	return lookup.Set{
		Genders:       []lookup.Item{{ID: 1, Name: "Female"}, {ID: 2, Name: "Male"}},
		Roles:         []lookup.Item{{ID: 1, Name: "ASHA"}},
		Facilities:    []lookup.Item{{ID: 3, Name: "PHC Rampur"}},
		Villages:      []lookup.Item{{ID: 4, Name: "Rampur"}},
		RiskLevels:    []lookup.Item{{ID: 1, Name: "Low"}, {ID: 2, Name: "High"}},
		VisitTypes:    []lookup.Item{{ID: 1, Name: "ANC checkup"}},
		Vaccines:      []lookup.Item{{ID: 1, Name: "BCG"}},
		ReminderTypes: []lookup.Item{{ID: 1, Name: "Immunization due"}},
		PregnancyStatuses: []lookup.Item{
			{ID: 1, Name: "Active"},
			{ID: 2, Name: "Delivered"},
		},
		ImmunizationStatuses: []lookup.Item{{ID: 1, Name: "Given"}},
	}
}

func newTestUIHandlers(t *testing.T, api *fakeDataAPI) *UIHandlers {
	t.Helper()
	return &UIHandlers{
		T:       newTestRenderer(t),
		API:     api,
		Lookups: &fakeLookups{set: testLookupSet(), loaded: true},
	}
}

// authed attaches a logged-in session, as RequireAuthBrowser would.
func authed(r *http.Request) *http.Request {
	return r.WithContext(SetSessionInContext(r.Context(), testSession("sess-1")))
}

func TestPatientsPage_RendersRowsWithLookupNames(t *testing.T) {
	api := &fakeDataAPI{patients: []upstream.Patient{
		{ID: 1, Name: "Sita Devi", GenderID: 1, DOB: "1996-04-12", Phone: "9876543210"},
	}}
	h := newTestUIHandlers(t, api)

	req := authed(httptest.NewRequest(http.MethodGet, "/patients", nil))
	w := httptest.NewRecorder()

	h.Patients(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Sita Devi")
	assert.Contains(t, body, "Female")
}

func TestPatientsPage_HTMXReturnsPartialWithOOBTitle(t *testing.T) {
	api := &fakeDataAPI{patients: []upstream.Patient{{ID: 1, Name: "Sita Devi", GenderID: 1}}}
	h := newTestUIHandlers(t, api)

	req := authed(httptest.NewRequest(http.MethodGet, "/patients", nil))
	req.Header.Set("Hx-Request", "true")
	w := httptest.NewRecorder()

	h.Patients(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `<title>ASHA Companion - Patients</title>`)
	assert.Contains(t, body, `hx-swap-oob="outerHTML"`)
	assert.Contains(t, body, "Sita Devi")
	assert.Contains(t, w.Header().Get("Hx-Trigger"), "nav:activate")
}

func TestPatientsPage_UpstreamFailureShowsErrorBanner(t *testing.T) {
	api := &fakeDataAPI{listErr: errors.New("upstream down")}
	h := newTestUIHandlers(t, api)

	req := authed(httptest.NewRequest(http.MethodGet, "/patients", nil))
	w := httptest.NewRecorder()

	h.Patients(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to load patients.")
}

func TestPatientView_UnknownIDRenders404(t *testing.T) {
	h := newTestUIHandlers(t, &fakeDataAPI{})

	req := authed(httptest.NewRequest(http.MethodGet, "/patients/99", nil))
	req.Header.Set("Accept", "text/html")
	req.SetPathValue("id", "99")
	w := httptest.NewRecorder()

	h.PatientView(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatientCreate_InvalidFormRerendersWithErrors(t *testing.T) {
	api := &fakeDataAPI{}
	h := newTestUIHandlers(t, api)

	req := authed(postForm("/patients", url.Values{"name": {""}, "gender_id": {"0"}}))
	w := httptest.NewRecorder()

	h.PatientCreate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please fix the errors below.")
	assert.Empty(t, api.patients, "nothing should be created on validation failure")
}

func TestPatientCreate_RedirectsToNewPatient(t *testing.T) {
	api := &fakeDataAPI{}
	h := newTestUIHandlers(t, api)

	req := authed(postForm("/patients", url.Values{
		"name":      {"Sita Devi"},
		"gender_id": {"1"},
	}))
	w := httptest.NewRecorder()

	h.PatientCreate(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/patients/1", w.Header().Get("Location"))
	require.Len(t, api.patients, 1)
	assert.Equal(t, "Sita Devi", api.patients[0].Name)
}

func TestDashboard_AggregatesCountsAndDueReminders(t *testing.T) {
	api := &fakeDataAPI{
		patients:    []upstream.Patient{{ID: 1, Name: "Sita Devi", GenderID: 1}},
		pregnancies: []upstream.Pregnancy{{ID: 1, PatientID: 1, StartDate: "2026-01-10"}},
		reminders: []upstream.Reminder{
			{ID: 1, PatientName: "Sita Devi", ReminderTypeID: 1, DueDate: "2026-09-05"},
			{ID: 2, PatientName: "Radha", ReminderTypeID: 1, DueDate: "2026-09-02", CompletedAt: "2026-08-30"},
		},
	}
	h := newTestUIHandlers(t, api)

	req := authed(httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()

	h.Index(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	// Only the open reminder shows in the due panel
	assert.Contains(t, body, "Sita Devi")
	assert.NotContains(t, body, "Radha")
	assert.Contains(t, body, "Immunization due")
}

func TestReminderComplete_HTMXTriggersToastAndRedirect(t *testing.T) {
	api := &fakeDataAPI{reminders: []upstream.Reminder{{ID: 5, ReminderTypeID: 1, DueDate: "2026-09-03"}}}
	h := newTestUIHandlers(t, api)

	req := authed(httptest.NewRequest(http.MethodPost, "/reminders/5/complete", nil))
	req.Header.Set("Hx-Request", "true")
	req.SetPathValue("id", "5")
	w := httptest.NewRecorder()

	h.ReminderComplete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/reminders", w.Header().Get("Hx-Redirect"))
	assert.Contains(t, w.Header().Get("Hx-Trigger"), "showToast")
	assert.Equal(t, []int{5}, api.completedReminders)
}

func TestReminderComplete_UpstreamNotFoundRenders404(t *testing.T) {
	api := &fakeDataAPI{completeErr: &upstream.APIError{Status: http.StatusNotFound}}
	h := newTestUIHandlers(t, api)

	req := authed(httptest.NewRequest(http.MethodPost, "/reminders/9/complete", nil))
	req.Header.Set("Accept", "text/html")
	req.SetPathValue("id", "9")
	w := httptest.NewRecorder()

	h.ReminderComplete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoiceNotesPage_RendersRecordings(t *testing.T) {
	api := &fakeDataAPI{voiceNotes: []upstream.VoiceNote{
		{ID: 1, PatientID: 1, PatientName: "Sita Devi", VisitID: 4, RecordedAt: "2026-08-20", Transcript: "BP normal, advised iron tablets"},
		{ID: 2, PatientID: 2, RecordedAt: "2026-08-21"},
	}}
	h := newTestUIHandlers(t, api)

	req := authed(httptest.NewRequest(http.MethodGet, "/voice-notes", nil))
	w := httptest.NewRecorder()

	h.VoiceNotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Sita Devi")
	assert.Contains(t, body, "#4")
	assert.Contains(t, body, "20 Aug 2026")
	assert.Contains(t, body, "BP normal, advised iron tablets")
	assert.Contains(t, body, "No transcript")
}

func TestVoiceNotesPage_EmptyAndFailureStates(t *testing.T) {
	h := newTestUIHandlers(t, &fakeDataAPI{})
	req := authed(httptest.NewRequest(http.MethodGet, "/voice-notes", nil))
	w := httptest.NewRecorder()

	h.VoiceNotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No voice notes found.")

	h = newTestUIHandlers(t, &fakeDataAPI{listErr: errors.New("upstream down")})
	w = httptest.NewRecorder()

	h.VoiceNotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to load voice notes.")
}

func TestVisitsPage_PaginatesPresentationally(t *testing.T) {
	visits := make([]upstream.Visit, 0, 15)
	for i := 1; i <= 15; i++ {
		visits = append(visits, upstream.Visit{ID: i, PatientName: "Patient", VisitTypeID: 1, VisitDate: "2026-08-01"})
	}
	h := newTestUIHandlers(t, &fakeDataAPI{visits: visits})

	req := authed(httptest.NewRequest(http.MethodGet, "/visits?page=2", nil))
	w := httptest.NewRecorder()

	h.Visits(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Showing 11&ndash;15 of 15")
	assert.Contains(t, body, "Previous")
	assert.NotContains(t, body, ">Next<")
}

type failingLookupSource struct{ err error }

func (f failingLookupSource) FetchLookups(context.Context, string) (map[string]any, error) {
	return nil, f.err
}

func TestLookupBootstrapFailure_LogsOnce(t *testing.T) {
	var buf bytes.Buffer
	h := &UIHandlers{
		Lookups: service.NewLookupService(failingLookupSource{err: errors.New("upstream down")}),
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	}

	h.ensureLookups(authed(httptest.NewRequest(http.MethodGet, "/patients", nil)))

	assert.Equal(t, 1, strings.Count(buf.String(), "lookup bootstrap deferred"),
		"a failed bootstrap is logged by the navigation that triggered it, nowhere else")
	assert.Contains(t, buf.String(), "upstream down")
}

func TestPregnancyForm_DisablesSubmitUntilLookupsLoad(t *testing.T) {
	h := &UIHandlers{
		T:       newTestRenderer(t),
		API:     &fakeDataAPI{},
		Lookups: &fakeLookups{loaded: false},
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/pregnancies/new", nil))
	w := httptest.NewRecorder()

	h.PregnancyNew(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Reference data is still loading")
	assert.Contains(t, body, "disabled")
}
