package httpx

import (
	"net/http"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// PregnancyRow is a pregnancy shaped for list rendering.
type PregnancyRow struct {
	ID          int
	PatientName string
	StartDate   string
	EDD         string
	RiskName    string
	StatusName  string
	HighRisk    bool
}

// Pregnancies serves the pregnancy list.
// GET /pregnancies.
func (h *UIHandlers) Pregnancies(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	pageNum, pageSize := getPageParams(r.URL.Query())
	meta := PageMeta{Title: "ASHA Companion - Pregnancies", PageTitle: "Pregnancies", CurrentPage: PagePregnancies}

	pregnancies, err := h.API.ListPregnancies(r.Context(), BearerFromContext(r.Context()))
	if err != nil {
		h.logger().Error("failed to load pregnancies", "error", err)
		h.renderPage(w, r, h.NewTemplateData(r, meta).WithError("Unable to load pregnancies.").Build())
		return
	}

	window, pd := paginateSlice(pregnancies, pageOpts{Page: pageNum, PageSize: pageSize})
	pd.BasePath = "/pregnancies"

	data := h.NewTemplateData(r, meta).
		WithPagination(pd).
		With("Pregnancies", h.pregnancyRows(window)).
		Build()
	h.renderPage(w, r, data)
}

func (h *UIHandlers) pregnancyRows(pregnancies []upstream.Pregnancy) []PregnancyRow {
	rows := make([]PregnancyRow, 0, len(pregnancies))
	for _, p := range pregnancies {
		riskName := h.Lookups.Name(lookup.CategoryRiskLevels, p.RiskLevelID)
		rows = append(rows, PregnancyRow{
			ID:          p.ID,
			PatientName: p.PatientName,
			StartDate:   p.StartDate,
			EDD:         p.EDD,
			RiskName:    riskName,
			StatusName:  h.Lookups.Name(lookup.CategoryPregnancyStatuses, p.PregnancyStatusID),
			HighRisk:    riskName == "High",
		})
	}
	return rows
}

// pregnancyForm carries the create-pregnancy fields.
type pregnancyForm struct {
	PatientID         int    `form:"patient_id"          validate:"required,gt=0"`
	StartDate         string `form:"start_date"          validate:"required,datetime=2006-01-02"`
	EDD               string `form:"edd"                 validate:"omitempty,datetime=2006-01-02"`
	RiskLevelID       int    `form:"risk_level_id"       validate:"omitempty,gt=0"`
	PregnancyStatusID int    `form:"pregnancy_status_id" validate:"omitempty,gt=0"`
}

// PregnancyNew renders the create form.
// GET /pregnancies/new.
func (h *UIHandlers) PregnancyNew(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)
	h.renderPregnancyForm(w, r, pregnancyForm{}, nil)
}

func (h *UIHandlers) renderPregnancyForm(
	w http.ResponseWriter,
	r *http.Request,
	form pregnancyForm,
	errs map[string]string,
) {
	meta := PageMeta{
		Title:       "ASHA Companion - New pregnancy",
		PageTitle:   "Open pregnancy record",
		CurrentPage: PagePregnancyForm,
	}
	tables := h.Lookups.Tables()
	builder := h.NewTemplateData(r, meta).
		WithFieldErrors(errs).
		With("Mode", string(FormModeCreate)).
		With("Form", form).
		With("Patients", h.patientOptions(r)).
		With("RiskLevels", tables.RiskLevels).
		With("PregnancyStatuses", tables.PregnancyStatuses)
	if len(errs) > 0 {
		builder.WithError(errMsgFixBelow)
	}
	h.renderPage(w, r, builder.Build())
}

// patientOptions fetches patients for the patient dropdown on create forms.
// A fetch failure degrades to an empty list; the form still renders.
func (h *UIHandlers) patientOptions(r *http.Request) []upstream.Patient {
	patients, err := h.API.ListPatients(r.Context(), BearerFromContext(r.Context()), "")
	if err != nil {
		h.logger().Warn("failed to load patients for form", "error", err)
		return []upstream.Patient{}
	}
	return patients
}

// PregnancyCreate opens a pregnancy record from the submitted form.
// POST /pregnancies.
func (h *UIHandlers) PregnancyCreate(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	if err := r.ParseForm(); err != nil {
		h.renderPregnancyForm(w, r, pregnancyForm{}, map[string]string{"form": "Invalid form submission."})
		return
	}

	form := pregnancyForm{
		PatientID:         formInt(r, "patient_id"),
		StartDate:         formValue(r, "start_date"),
		EDD:               formValue(r, "edd"),
		RiskLevelID:       formInt(r, "risk_level_id"),
		PregnancyStatusID: formInt(r, "pregnancy_status_id"),
	}
	if errs := validateForm(form); len(errs) > 0 {
		h.renderPregnancyForm(w, r, form, errs)
		return
	}

	req := upstream.CreatePregnancyRequest{
		PatientID:         form.PatientID,
		StartDate:         form.StartDate,
		EDD:               form.EDD,
		RiskLevelID:       form.RiskLevelID,
		PregnancyStatusID: form.PregnancyStatusID,
	}
	if _, err := h.API.CreatePregnancy(r.Context(), BearerFromContext(r.Context()), req); err != nil {
		h.logger().Error("failed to create pregnancy", "error", err)
		h.renderPregnancyForm(w, r, form, map[string]string{"form": upstreamFormError(err)})
		return
	}

	if IsHTMX(r) {
		HTMX(w).Redirect("/pregnancies")
		return
	}
	http.Redirect(w, r, "/pregnancies", http.StatusSeeOther)
}
