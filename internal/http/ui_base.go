package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/service"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

const errMsgFixBelow = "Please fix the errors below."

// DataAPI is the slice of the EHR API client the UI pages consume.
type DataAPI interface {
	ListPatients(ctx context.Context, token, q string) ([]upstream.Patient, error)
	GetPatient(ctx context.Context, token string, id int) (upstream.Patient, error)
	CreatePatient(ctx context.Context, token string, req upstream.CreatePatientRequest) (upstream.Patient, error)
	ListPregnancies(ctx context.Context, token string) ([]upstream.Pregnancy, error)
	CreatePregnancy(ctx context.Context, token string, req upstream.CreatePregnancyRequest) (upstream.Pregnancy, error)
	ListVisits(ctx context.Context, token string) ([]upstream.Visit, error)
	CreateVisit(ctx context.Context, token string, req upstream.CreateVisitRequest) (upstream.Visit, error)
	ListImmunizations(ctx context.Context, token string) ([]upstream.Immunization, error)
	CreateImmunization(
		ctx context.Context,
		token string,
		req upstream.CreateImmunizationRequest,
	) (upstream.Immunization, error)
	ListMyReminders(ctx context.Context, token string) ([]upstream.Reminder, error)
	CompleteReminder(ctx context.Context, token string, id int) error
	ListVoiceNotes(ctx context.Context, token string) ([]upstream.VoiceNote, error)
	ListAuditRecords(ctx context.Context, token string) ([]upstream.AuditRecord, error)
}

// LookupProvider exposes the cached reference tables to page handlers.
type LookupProvider interface {
	Ensure(ctx context.Context, token string) error
	Loaded() bool
	Tables() lookup.Set
	Name(c lookup.Category, id int) string
}

// Compile-time interface assertions to ensure concrete types satisfy their UI interfaces.
var (
	_ DataAPI         = (*upstream.Client)(nil)
	_ LookupProvider  = (*service.LookupService)(nil)
	_ SessionResolver = (*service.AuthService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T       *TemplateRenderer
	API     DataAPI
	Lookups LookupProvider
	IsDev   bool // Development mode flag for enhanced error reporting
	Logger  *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// ensureLookups triggers the one-time reference-data bootstrap for an
// authenticated navigation. Failure is non-fatal: pages render with
// dropdowns unavailable and the next navigation retries.
func (h *UIHandlers) ensureLookups(r *http.Request) {
	if h.Lookups == nil {
		return
	}
	token := BearerFromContext(r.Context())
	if token == "" {
		return
	}
	if err := h.Lookups.Ensure(r.Context(), token); err != nil {
		h.logger().WarnContext(r.Context(), "lookup bootstrap deferred", "error", err)
	}
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// basePageData constructs the common page data map with user context.
func (h *UIHandlers) basePageData(r *http.Request, meta PageMeta) map[string]any {
	data := map[string]any{
		"Title":           meta.Title,
		"PageTitle":       meta.PageTitle,
		"CurrentPage":     meta.CurrentPage,
		"IsAuthenticated": false,
		"LookupsLoaded":   h.Lookups != nil && h.Lookups.Loaded(),
	}

	if session := GetSessionFromContext(r.Context()); session != nil {
		data["IsAuthenticated"] = true
		data["User"] = session.Identity
		if h.Lookups != nil {
			data["RoleName"] = h.Lookups.Name(lookup.CategoryRoles, session.Identity.RoleID)
			if session.Identity.FacilityID != nil {
				data["FacilityName"] = h.Lookups.Name(lookup.CategoryFacilities, *session.Identity.FacilityID)
			}
		}
	}

	return data
}

// PageSpec defines metadata and an optional fetch for page-specific data.
type PageSpec struct {
	Meta  PageMeta
	Fetch func(ctx context.Context, data map[string]any) error
}

// Page builds base data, optionally fetches content data, and renders.
func (h *UIHandlers) Page(w http.ResponseWriter, r *http.Request, spec PageSpec) {
	h.ensureLookups(r)
	data := h.basePageData(r, spec.Meta)
	if spec.Fetch != nil {
		if err := spec.Fetch(r.Context(), data); err != nil {
			h.logger().Error("failed to load page data",
				"page", spec.Meta.CurrentPage, "error", err)
			markPageError(data)
		}
	}
	h.renderPage(w, r, data)
}

// renderPage renders a page with proper HTMX partial support.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	// Handle full page requests first (early return) to reduce nesting
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	// For HTMX requests, render the content plus out-of-band header updates
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Hint client JS to update nav active state based on current path
	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})

	title, _ := data["Title"].(string)
	pageTitle, _ := data["PageTitle"].(string)
	currentPage, _ := data["CurrentPage"].(string)

	// Include a <title> element so htmx updates document.title on partial swaps
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}

	// Out-of-band update for the header title
	headerHTML := `<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` +
		html.EscapeString(pageTitle) + `</h1>`
	if _, err := w.Write([]byte(headerHTML)); err != nil {
		h.logger().Error("failed to write partial header title", "error", err)
		return
	}

	if err := h.T.t.ExecuteTemplate(w, ContentTemplateFor(currentPage), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
		return
	}
}

func markPageError(data map[string]any) {
	data["Error"] = true
	if _, ok := data["ErrorMessage"]; ok {
		return
	}
	data["ErrorMessage"] = "An unexpected error occurred. Please try again."
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	// In dev mode, show detailed error in the response
	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		errHTML := html.EscapeString(err.Error())
		pathHTML := html.EscapeString(r.URL.Path)
		contextHTML := html.EscapeString(context)
		if _, writeErr := w.Write([]byte(`
			<div style="padding: 20px; background: #fee; border: 2px solid #c33; border-radius: 4px; margin: 20px; font-family: monospace;">
				<h2 style="color: #c33; margin-top: 0;">Template Rendering Error</h2>
				<p><strong>Context:</strong> ` + contextHTML + `</p>
				<p><strong>Path:</strong> ` + pathHTML + `</p>
				<pre style="background: #fff; padding: 10px; border: 1px solid #ccc; overflow-x: auto;">` + errHTML + `</pre>
			</div>
		`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	// In production, show generic error
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// getPageParams parses pagination params from URL query with sane defaults.
func getPageParams(q url.Values) (int, int) {
	page := 1
	pageSize := 10
	if p := q.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}
	if s := q.Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}

// pageOpts represents pagination options for list views.
type pageOpts struct {
	Page     int
	PageSize int
}

// paginateSlice windows an already-fetched list. The API returns full result
// sets, so pagination here is purely presentational.
func paginateSlice[T any](items []T, p pageOpts) ([]T, PaginationData) {
	page := p.Page
	if page <= 0 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	total := len(items)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pd := PaginationData{
		Page:       page,
		PageSize:   pageSize,
		HasPrev:    page > 1,
		HasNext:    end < total,
		TotalCount: total,
	}
	if end > start {
		pd.StartIndex = start + 1
		pd.EndIndex = end
	}
	return items[start:end], pd
}

// buildPageURL returns a URL with page and page_size set, preserving other query params.
// basePath should be the path without query string (e.g., "/patients", "/visits").
func buildPageURL(basePath string, q url.Values, p pageOpts) string {
	qq := make(url.Values, len(q))
	for k, v := range q {
		// drop transient/htmx params and empty keys
		if strings.HasPrefix(k, "hx-") || strings.HasPrefix(k, "hx_") {
			continue
		}
		if len(v) == 0 {
			continue
		}
		tmp := make([]string, 0, len(v))
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			qq[k] = tmp
		}
	}
	qq.Set("page", strconv.Itoa(p.Page))
	qq.Set("page_size", strconv.Itoa(p.PageSize))
	if enc := qq.Encode(); enc != "" {
		return basePath + "?" + enc
	}
	return basePath
}
