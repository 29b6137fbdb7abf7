package httpx

import (
	"net/http"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// ImmunizationRow is an immunization shaped for list rendering.
type ImmunizationRow struct {
	ID          int
	PatientName string
	VaccineName string
	DoseNumber  int
	DateGiven   string
	DueDate     string
	StatusName  string
}

// Immunizations serves the immunization list.
// GET /immunizations.
func (h *UIHandlers) Immunizations(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	pageNum, pageSize := getPageParams(r.URL.Query())
	meta := PageMeta{
		Title:       "ASHA Companion - Immunizations",
		PageTitle:   "Immunizations",
		CurrentPage: PageImmunizations,
	}

	immunizations, err := h.API.ListImmunizations(r.Context(), BearerFromContext(r.Context()))
	if err != nil {
		h.logger().Error("failed to load immunizations", "error", err)
		h.renderPage(w, r, h.NewTemplateData(r, meta).WithError("Unable to load immunizations.").Build())
		return
	}

	window, pd := paginateSlice(immunizations, pageOpts{Page: pageNum, PageSize: pageSize})
	pd.BasePath = "/immunizations"

	data := h.NewTemplateData(r, meta).
		WithPagination(pd).
		With("Immunizations", h.immunizationRows(window)).
		Build()
	h.renderPage(w, r, data)
}

func (h *UIHandlers) immunizationRows(immunizations []upstream.Immunization) []ImmunizationRow {
	rows := make([]ImmunizationRow, 0, len(immunizations))
	for _, im := range immunizations {
		rows = append(rows, ImmunizationRow{
			ID:          im.ID,
			PatientName: im.PatientName,
			VaccineName: h.Lookups.Name(lookup.CategoryVaccines, im.VaccineID),
			DoseNumber:  im.DoseNumber,
			DateGiven:   im.DateGiven,
			DueDate:     im.DueDate,
			StatusName:  h.Lookups.Name(lookup.CategoryImmunizationStatuses, im.ImmunizationStatusID),
		})
	}
	return rows
}

// immunizationForm carries the record-dose fields.
type immunizationForm struct {
	PatientID            int    `form:"patient_id"             validate:"required,gt=0"`
	VaccineID            int    `form:"vaccine_id"             validate:"required,gt=0"`
	DoseNumber           int    `form:"dose_number"            validate:"required,gt=0"`
	DateGiven            string `form:"date_given"             validate:"required,datetime=2006-01-02"`
	DueDate              string `form:"due_date"               validate:"omitempty,datetime=2006-01-02"`
	ImmunizationStatusID int    `form:"immunization_status_id" validate:"omitempty,gt=0"`
}

// ImmunizationNew renders the create form.
// GET /immunizations/new.
func (h *UIHandlers) ImmunizationNew(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)
	h.renderImmunizationForm(w, r, immunizationForm{}, nil)
}

func (h *UIHandlers) renderImmunizationForm(
	w http.ResponseWriter,
	r *http.Request,
	form immunizationForm,
	errs map[string]string,
) {
	meta := PageMeta{
		Title:       "ASHA Companion - New immunization",
		PageTitle:   "Record immunization",
		CurrentPage: PageImmunizationForm,
	}
	tables := h.Lookups.Tables()
	builder := h.NewTemplateData(r, meta).
		WithFieldErrors(errs).
		With("Mode", string(FormModeCreate)).
		With("Form", form).
		With("Patients", h.patientOptions(r)).
		With("Vaccines", tables.Vaccines).
		With("ImmunizationStatuses", tables.ImmunizationStatuses)
	if len(errs) > 0 {
		builder.WithError(errMsgFixBelow)
	}
	h.renderPage(w, r, builder.Build())
}

// ImmunizationCreate records a dose from the submitted form.
// POST /immunizations.
func (h *UIHandlers) ImmunizationCreate(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	if err := r.ParseForm(); err != nil {
		h.renderImmunizationForm(w, r, immunizationForm{}, map[string]string{"form": "Invalid form submission."})
		return
	}

	form := immunizationForm{
		PatientID:            formInt(r, "patient_id"),
		VaccineID:            formInt(r, "vaccine_id"),
		DoseNumber:           formInt(r, "dose_number"),
		DateGiven:            formValue(r, "date_given"),
		DueDate:              formValue(r, "due_date"),
		ImmunizationStatusID: formInt(r, "immunization_status_id"),
	}
	if errs := validateForm(form); len(errs) > 0 {
		h.renderImmunizationForm(w, r, form, errs)
		return
	}

	req := upstream.CreateImmunizationRequest{
		PatientID:            form.PatientID,
		VaccineID:            form.VaccineID,
		DoseNumber:           form.DoseNumber,
		DateGiven:            form.DateGiven,
		DueDate:              form.DueDate,
		ImmunizationStatusID: form.ImmunizationStatusID,
	}
	if _, err := h.API.CreateImmunization(r.Context(), BearerFromContext(r.Context()), req); err != nil {
		h.logger().Error("failed to create immunization", "error", err)
		h.renderImmunizationForm(w, r, form, map[string]string{"form": upstreamFormError(err)})
		return
	}

	if IsHTMX(r) {
		HTMX(w).Redirect("/immunizations")
		return
	}
	http.Redirect(w, r, "/immunizations", http.StatusSeeOther)
}
