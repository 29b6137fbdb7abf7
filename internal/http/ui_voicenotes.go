package httpx

import (
	"net/http"
)

// VoiceNotes serves the recorded voice memo list.
// GET /voice-notes.
func (h *UIHandlers) VoiceNotes(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	pageNum, pageSize := getPageParams(r.URL.Query())
	meta := PageMeta{Title: "ASHA Companion - Voice notes", PageTitle: "Voice notes", CurrentPage: PageVoiceNotes}

	notes, err := h.API.ListVoiceNotes(r.Context(), BearerFromContext(r.Context()))
	if err != nil {
		h.logger().Error("failed to load voice notes", "error", err)
		h.renderPage(w, r, h.NewTemplateData(r, meta).WithError("Unable to load voice notes.").Build())
		return
	}

	window, pd := paginateSlice(notes, pageOpts{Page: pageNum, PageSize: pageSize})
	pd.BasePath = "/voice-notes"

	data := h.NewTemplateData(r, meta).
		WithPagination(pd).
		With("Notes", window).
		Build()
	h.renderPage(w, r, data)
}
