package httpx

import (
	"net/http"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// VisitRow is a visit shaped for list rendering.
type VisitRow struct {
	ID          int
	PatientName string
	TypeName    string
	VisitDate   string
	Notes       string
}

// Visits serves the visit list.
// GET /visits.
func (h *UIHandlers) Visits(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	pageNum, pageSize := getPageParams(r.URL.Query())
	meta := PageMeta{Title: "ASHA Companion - Visits", PageTitle: "Visits", CurrentPage: PageVisits}

	visits, err := h.API.ListVisits(r.Context(), BearerFromContext(r.Context()))
	if err != nil {
		h.logger().Error("failed to load visits", "error", err)
		h.renderPage(w, r, h.NewTemplateData(r, meta).WithError("Unable to load visits.").Build())
		return
	}

	window, pd := paginateSlice(visits, pageOpts{Page: pageNum, PageSize: pageSize})
	pd.BasePath = "/visits"

	data := h.NewTemplateData(r, meta).
		WithPagination(pd).
		With("Visits", h.visitRows(window)).
		Build()
	h.renderPage(w, r, data)
}

func (h *UIHandlers) visitRows(visits []upstream.Visit) []VisitRow {
	rows := make([]VisitRow, 0, len(visits))
	for _, v := range visits {
		rows = append(rows, VisitRow{
			ID:          v.ID,
			PatientName: v.PatientName,
			TypeName:    h.Lookups.Name(lookup.CategoryVisitTypes, v.VisitTypeID),
			VisitDate:   v.VisitDate,
			Notes:       v.Notes,
		})
	}
	return rows
}

// visitForm carries the record-visit fields.
type visitForm struct {
	PatientID   int    `form:"patient_id"    validate:"required,gt=0"`
	VisitTypeID int    `form:"visit_type_id" validate:"required,gt=0"`
	VisitDate   string `form:"visit_date"    validate:"required,datetime=2006-01-02"`
	Notes       string `form:"notes"         validate:"omitempty,max=2000"`
}

// VisitNew renders the create form.
// GET /visits/new.
func (h *UIHandlers) VisitNew(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)
	h.renderVisitForm(w, r, visitForm{}, nil)
}

func (h *UIHandlers) renderVisitForm(
	w http.ResponseWriter,
	r *http.Request,
	form visitForm,
	errs map[string]string,
) {
	meta := PageMeta{Title: "ASHA Companion - New visit", PageTitle: "Record visit", CurrentPage: PageVisitForm}
	builder := h.NewTemplateData(r, meta).
		WithFieldErrors(errs).
		With("Mode", string(FormModeCreate)).
		With("Form", form).
		With("Patients", h.patientOptions(r)).
		With("VisitTypes", h.Lookups.Tables().VisitTypes)
	if len(errs) > 0 {
		builder.WithError(errMsgFixBelow)
	}
	h.renderPage(w, r, builder.Build())
}

// VisitCreate records a visit from the submitted form.
// POST /visits.
func (h *UIHandlers) VisitCreate(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	if err := r.ParseForm(); err != nil {
		h.renderVisitForm(w, r, visitForm{}, map[string]string{"form": "Invalid form submission."})
		return
	}

	form := visitForm{
		PatientID:   formInt(r, "patient_id"),
		VisitTypeID: formInt(r, "visit_type_id"),
		VisitDate:   formValue(r, "visit_date"),
		Notes:       formValue(r, "notes"),
	}
	if errs := validateForm(form); len(errs) > 0 {
		h.renderVisitForm(w, r, form, errs)
		return
	}

	req := upstream.CreateVisitRequest{
		PatientID:   form.PatientID,
		VisitTypeID: form.VisitTypeID,
		VisitDate:   form.VisitDate,
		Notes:       form.Notes,
	}
	if _, err := h.API.CreateVisit(r.Context(), BearerFromContext(r.Context()), req); err != nil {
		h.logger().Error("failed to create visit", "error", err)
		h.renderVisitForm(w, r, form, map[string]string{"form": upstreamFormError(err)})
		return
	}

	if IsHTMX(r) {
		HTMX(w).Redirect("/visits")
		return
	}
	http.Redirect(w, r, "/visits", http.StatusSeeOther)
}
