package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/auth"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/service"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// AuthUIService defines the auth operations the login/register pages need.
type AuthUIService interface {
	Login(ctx context.Context, phone, password string) (domainauth.Session, error)
	Restore(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Register(ctx context.Context, req upstream.RegisterRequest) error
}

var _ AuthUIService = (*service.AuthService)(nil)

// AuthHandlers provides HTTP handlers for authentication pages and endpoints.
type AuthHandlers struct {
	Svc          AuthUIService
	Lookups      LookupProvider
	T            *TemplateRenderer
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginForm carries the credential exchange fields.
type loginForm struct {
	Phone    string `form:"phone"    validate:"required"`
	Password string `form:"password" validate:"required"`
}

// registerForm carries the account creation fields.
type registerForm struct {
	Name       string `form:"name"        validate:"required"`
	Phone      string `form:"phone"       validate:"required,min=10"`
	Password   string `form:"password"    validate:"required,min=6"`
	RoleID     int    `form:"role_id"     validate:"required,gt=0"`
	FacilityID int    `form:"facility_id" validate:"omitempty,gt=0"`
}

// LoginPage renders the login form.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in: skip the form entirely
	if session := h.restoreFromCookie(r); session != nil {
		http.Redirect(w, r, safeRedirectPath(r.URL.Query().Get("redirect_uri")), http.StatusSeeOther)
		return
	}

	h.renderLoginPage(w, r, loginPageData{
		RedirectURI: safeRedirectPath(r.URL.Query().Get("redirect_uri")),
		Registered:  r.URL.Query().Get("registered") == "1",
	})
}

// loginPageData groups login template fields (≤3 params rule).
type loginPageData struct {
	Phone       string
	RedirectURI string
	Registered  bool
	Error       string
	Errors      map[string]string
}

func (h *AuthHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, d loginPageData) {
	if d.Errors == nil {
		d.Errors = map[string]string{}
	}
	data := map[string]any{
		"Title":       "Sign in - ASHA Companion",
		"Phone":       d.Phone,
		"RedirectURI": d.RedirectURI,
		"Registered":  d.Registered,
		"Errors":      d.Errors,
	}
	if d.Error != "" {
		data["Error"] = true
		data["ErrorMessage"] = d.Error
	}
	h.renderStandalone(w, r, "login-page", data)
}

// LoginSubmit performs the credential exchange and establishes the session.
// POST /auth/login.
func (h *AuthHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginPage(w, r, loginPageData{Error: "Invalid form submission."})
		return
	}

	form := loginForm{Phone: formValue(r, "phone"), Password: r.PostFormValue("password")}
	redirectURI := safeRedirectPath(formValue(r, "redirect_uri"))

	if errs := validateForm(form); len(errs) > 0 {
		h.renderLoginPage(w, r, loginPageData{
			Phone:       form.Phone,
			RedirectURI: redirectURI,
			Error:       errMsgFixBelow,
			Errors:      errs,
		})
		return
	}

	session, err := h.Svc.Login(r.Context(), form.Phone, form.Password)
	if err != nil {
		h.logger().InfoContext(r.Context(), "login rejected", "error", err)
		h.renderLoginPage(w, r, loginPageData{
			Phone:       form.Phone,
			RedirectURI: redirectURI,
			Error:       "Sign in failed. Check your phone number and password.",
		})
		return
	}

	h.setSessionCookie(w, r, session)
	if IsHTMX(r) {
		HTMX(w).Redirect(redirectURI)
		return
	}
	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}

// RegisterPage renders the account creation form.
// GET /auth/register.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegisterPage(w, r, map[string]any{})
}

func (h *AuthHandlers) renderRegisterPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	// Reference tables back the role/facility dropdowns. Registration happens
	// pre-auth, so the bootstrap runs without a credential here.
	if h.Lookups != nil {
		if err := h.Lookups.Ensure(r.Context(), ""); err != nil {
			h.logger().WarnContext(r.Context(), "lookup bootstrap deferred", "error", err)
		}
	}

	data["Title"] = "Create account - ASHA Companion"
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	if h.Lookups != nil {
		data["LookupsLoaded"] = h.Lookups.Loaded()
		data["Roles"] = h.Lookups.Tables().Roles
		data["Facilities"] = h.Lookups.Tables().Facilities
	}
	h.renderStandalone(w, r, "register-page", data)
}

// RegisterSubmit creates the account upstream and routes back to login.
// POST /auth/register.
func (h *AuthHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegisterPage(w, r, map[string]any{"Error": true, "ErrorMessage": "Invalid form submission."})
		return
	}

	form := registerForm{
		Name:       formValue(r, "name"),
		Phone:      formValue(r, "phone"),
		Password:   r.PostFormValue("password"),
		RoleID:     formInt(r, "role_id"),
		FacilityID: formInt(r, "facility_id"),
	}

	if errs := validateForm(form); len(errs) > 0 {
		h.renderRegisterPage(w, r, map[string]any{
			"Error": true, "ErrorMessage": errMsgFixBelow,
			"Errors": errs, "Form": form,
		})
		return
	}

	req := upstream.RegisterRequest{
		Name:       form.Name,
		Phone:      form.Phone,
		Password:   form.Password,
		RoleID:     form.RoleID,
		FacilityID: form.FacilityID,
	}
	if err := h.Svc.Register(r.Context(), req); err != nil {
		h.logger().WarnContext(r.Context(), "registration failed", "error", err)
		msg := "Registration failed. Please try again."
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			msg = apiErr.Message
		}
		h.renderRegisterPage(w, r, map[string]any{
			"Error": true, "ErrorMessage": msg, "Form": form,
		})
		return
	}

	http.Redirect(w, r, "/auth/login?registered=1", http.StatusSeeOther)
}

// Logout clears the session server-side and on the client.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie("session_id"); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, "session_id")

	// Where the user should land after re-auth
	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	u := url.URL{Path: "/auth/signed-out"}
	q := url.Values{}
	q.Set("redirect_uri", redirectURI)
	u.RawQuery = q.Encode()
	signedOutURL := u.String()

	// AJAX/HTMX requests get a JSON payload; regular requests redirect
	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("Hx-Request"), "true") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signedOutURL,
		})
		return
	}

	http.Redirect(w, r, signedOutURL, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session := h.restoreFromCookie(r)
	if session == nil {
		// Clear any stale cookie so the browser stops presenting it
		if _, err := r.Cookie("session_id"); err == nil {
			h.clearCookie(w, r, "session_id")
		}
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	user := map[string]any{
		"id":    session.Identity.UserID,
		"name":  session.Identity.Name,
		"phone": session.Identity.Phone,
		"role":  h.roleName(session.Identity.RoleID),
	}
	if session.Identity.FacilityID != nil {
		user["facility_id"] = *session.Identity.FacilityID
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
		"expires_at":    session.ExpiresAt,
	})
}

func (h *AuthHandlers) roleName(roleID int) string {
	if h.Lookups == nil {
		return ""
	}
	return h.Lookups.Name(lookup.CategoryRoles, roleID)
}

// restoreFromCookie loads the session named by the session_id cookie, or nil.
func (h *AuthHandlers) restoreFromCookie(r *http.Request) *domainauth.Session {
	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		return nil
	}
	session, err := h.Svc.Restore(r.Context(), sessionCookie.Value)
	if err != nil {
		h.logger().WarnContext(r.Context(), "session restore failed", "error", err)
		return nil
	}
	return session
}

// renderStandalone renders a full-page template outside the app layout
// (login, register, signed-out), buffering to avoid partial writes on error.
func (h *AuthHandlers) renderStandalone(w http.ResponseWriter, _ *http.Request, name string, data map[string]any) {
	if h.T == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	var buf bytes.Buffer
	if err := h.T.t.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger().Error("template execution failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger().Error("failed to write response", "template", name, "error", err)
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting
// cookies to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
