package httpx

import (
	"net/http"
	"strconv"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// ReminderRow is a reminder shaped for list rendering.
type ReminderRow struct {
	ID          int
	PatientName string
	TypeName    string
	DueDate     string
	Notes       string
	Completed   bool
}

// Reminders serves the logged-in worker's reminder list.
// GET /reminders.
func (h *UIHandlers) Reminders(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	meta := PageMeta{Title: "ASHA Companion - Reminders", PageTitle: "My reminders", CurrentPage: PageReminders}

	reminders, err := h.API.ListMyReminders(r.Context(), BearerFromContext(r.Context()))
	if err != nil {
		h.logger().Error("failed to load reminders", "error", err)
		h.renderPage(w, r, h.NewTemplateData(r, meta).WithError("Unable to load reminders.").Build())
		return
	}

	rows := make([]ReminderRow, 0, len(reminders))
	for _, rem := range reminders {
		rows = append(rows, ReminderRow{
			ID:          rem.ID,
			PatientName: rem.PatientName,
			TypeName:    h.Lookups.Name(lookup.CategoryReminderTypes, rem.ReminderTypeID),
			DueDate:     rem.DueDate,
			Notes:       rem.Notes,
			Completed:   rem.Completed(),
		})
	}

	data := h.NewTemplateData(r, meta).With("Reminders", rows).Build()
	h.renderPage(w, r, data)
}

// ReminderComplete marks a reminder done and returns to the list.
// POST /reminders/{id}/complete.
func (h *UIHandlers) ReminderComplete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return
	}

	if err := h.API.CompleteReminder(r.Context(), BearerFromContext(r.Context()), id); err != nil {
		if upstream.IsStatus(err, http.StatusNotFound) {
			h.NotFound(w, r)
			return
		}
		h.logger().Error("failed to complete reminder", "id", id, "error", err)
		http.Error(w, "Unable to complete reminder.", http.StatusInternalServerError)
		return
	}

	if IsHTMX(r) {
		HTMX(w).Trigger("showToast", map[string]any{
			"message": "Reminder completed.",
			"type":    "success",
		}).Redirect("/reminders")
		return
	}
	http.Redirect(w, r, "/reminders", http.StatusSeeOther)
}
