package httpx

import (
	"net/http"
)

// Audit serves the audit trail page.
// GET /audit.
func (h *UIHandlers) Audit(w http.ResponseWriter, r *http.Request) {
	h.ensureLookups(r)

	pageNum, pageSize := getPageParams(r.URL.Query())
	meta := PageMeta{Title: "ASHA Companion - Audit log", PageTitle: "Audit log", CurrentPage: PageAudit}

	records, err := h.API.ListAuditRecords(r.Context(), BearerFromContext(r.Context()))
	if err != nil {
		h.logger().Error("failed to load audit records", "error", err)
		h.renderPage(w, r, h.NewTemplateData(r, meta).WithError("Unable to load the audit log.").Build())
		return
	}

	window, pd := paginateSlice(records, pageOpts{Page: pageNum, PageSize: pageSize})
	pd.BasePath = "/audit"

	data := h.NewTemplateData(r, meta).
		WithPagination(pd).
		With("Records", window).
		Build()
	h.renderPage(w, r, data)
}
