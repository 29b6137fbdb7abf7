package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// PatientRow is a patient shaped for list rendering, with lookup ids resolved
// to display names.
type PatientRow struct {
	ID         int
	Name       string
	GenderName string
	DOB        string
	Phone      string
	AbhaID     string
}

// Patients serves the patient list with optional search.
// GET /patients?q=<search>.
func (h *UIHandlers) Patients(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	query := r.URL.Query()
	q := query.Get("q")
	pageNum, pageSize := getPageParams(query)
	meta := PageMeta{Title: "ASHA Companion - Patients", PageTitle: "Patients", CurrentPage: PagePatients}

	patients, err := h.API.ListPatients(r.Context(), BearerFromContext(r.Context()), q)
	if err != nil {
		h.logger().Error("failed to load patients", "error", err)
		data := h.NewTemplateData(r, meta).
			WithError("Unable to load patients.").
			With("Query", q).
			Build()
		h.renderPage(w, r, data)
		return
	}

	window, pd := paginateSlice(patients, pageOpts{Page: pageNum, PageSize: pageSize})
	pd.BasePath = "/patients"

	data := h.NewTemplateData(r, meta).
		WithPagination(pd).
		With("Patients", h.patientRows(window)).
		With("Query", q).
		Build()
	h.renderPage(w, r, data)
}

func (h *UIHandlers) patientRows(patients []upstream.Patient) []PatientRow {
	rows := make([]PatientRow, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, PatientRow{
			ID:         p.ID,
			Name:       p.Name,
			GenderName: h.Lookups.Name(lookup.CategoryGenders, p.GenderID),
			DOB:        p.DOB,
			Phone:      p.Phone,
			AbhaID:     p.AbhaID,
		})
	}
	return rows
}

// PatientView serves one patient's detail page.
// GET /patients/{id}.
func (h *UIHandlers) PatientView(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return
	}

	meta := PageMeta{Title: "ASHA Companion - Patient", PageTitle: "Patient", CurrentPage: PagePatientView}
	patient, err := h.API.GetPatient(r.Context(), BearerFromContext(r.Context()), id)
	if err != nil {
		if upstream.IsStatus(err, http.StatusNotFound) {
			h.NotFound(w, r)
			return
		}
		h.logger().Error("failed to load patient", "id", id, "error", err)
		data := h.NewTemplateData(r, meta).WithError("Unable to load this patient.").Build()
		h.renderPage(w, r, data)
		return
	}

	builder := h.NewTemplateData(r, meta).
		With("Patient", patient).
		With("GenderName", h.Lookups.Name(lookup.CategoryGenders, patient.GenderID))
	if patient.Address != nil {
		builder.With("VillageName", h.Lookups.Name(lookup.CategoryVillages, patient.Address.VillageID))
	}
	h.renderPage(w, r, builder.Build())
}

// patientForm carries the patient registration fields.
type patientForm struct {
	Name     string `form:"name"      validate:"required"`
	GenderID int    `form:"gender_id" validate:"required,gt=0"`
	DOB      string `form:"dob"       validate:"omitempty,datetime=2006-01-02"`
	Phone    string `form:"phone"     validate:"omitempty,min=10"`
	AbhaID   string `form:"abha_id"   validate:"omitempty"`
	Line1    string `form:"line1"     validate:"omitempty"`
	Pincode  string `form:"pincode"   validate:"omitempty,len=6,numeric"`
	Village  int    `form:"village_id" validate:"omitempty,gt=0"`
}

// PatientNew renders the create form.
// GET /patients/new.
func (h *UIHandlers) PatientNew(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)
	h.renderPatientForm(w, r, patientForm{}, nil)
}

func (h *UIHandlers) renderPatientForm(
	w http.ResponseWriter,
	r *http.Request,
	form patientForm,
	errs map[string]string,
) {
	meta := PageMeta{Title: "ASHA Companion - New patient", PageTitle: "Register patient", CurrentPage: PagePatientForm}
	tables := h.Lookups.Tables()
	builder := h.NewTemplateData(r, meta).
		WithFieldErrors(errs).
		With("Mode", string(FormModeCreate)).
		With("Form", form).
		With("Genders", tables.Genders).
		With("Villages", tables.Villages)
	if len(errs) > 0 {
		builder.WithError(errMsgFixBelow)
	}
	h.renderPage(w, r, builder.Build())
}

// PatientCreate registers a patient from the submitted form.
// POST /patients.
func (h *UIHandlers) PatientCreate(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	if err := r.ParseForm(); err != nil {
		h.renderPatientForm(w, r, patientForm{}, map[string]string{"form": "Invalid form submission."})
		return
	}

	form := patientForm{
		Name:     formValue(r, "name"),
		GenderID: formInt(r, "gender_id"),
		DOB:      formValue(r, "dob"),
		Phone:    formValue(r, "phone"),
		AbhaID:   formValue(r, "abha_id"),
		Line1:    formValue(r, "line1"),
		Pincode:  formValue(r, "pincode"),
		Village:  formInt(r, "village_id"),
	}
	if errs := validateForm(form); len(errs) > 0 {
		h.renderPatientForm(w, r, form, errs)
		return
	}

	req := upstream.CreatePatientRequest{
		Name:     form.Name,
		GenderID: form.GenderID,
		DOB:      form.DOB,
		Phone:    form.Phone,
		AbhaID:   form.AbhaID,
	}
	if form.Line1 != "" || form.Pincode != "" || form.Village > 0 {
		req.Address = &upstream.Address{
			Line1:     form.Line1,
			Pincode:   form.Pincode,
			VillageID: form.Village,
		}
	}

	patient, err := h.API.CreatePatient(r.Context(), BearerFromContext(r.Context()), req)
	if err != nil {
		h.logger().Error("failed to create patient", "error", err)
		h.renderPatientForm(w, r, form, map[string]string{"form": upstreamFormError(err)})
		return
	}

	target := "/patients/" + strconv.Itoa(patient.ID)
	if IsHTMX(r) {
		HTMX(w).Redirect(target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// upstreamFormError turns an API rejection into a form-level message,
// preferring the server's own wording for client errors.
func upstreamFormError(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Unable to save. Please try again."
}
