package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/auth"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// mockAuthUI is a test double for AuthUIService.
type mockAuthUI struct {
	loginFunc    func(ctx context.Context, phone, password string) (domainauth.Session, error)
	restoreFunc  func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc   func(ctx context.Context, sessionID string) error
	registerFunc func(ctx context.Context, req upstream.RegisterRequest) error

	loggedOut []string
}

func (m *mockAuthUI) Login(ctx context.Context, phone, password string) (domainauth.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, phone, password)
	}
	return domainauth.Session{
		ID:        "sess-1",
		Identity:  domainauth.Identity{UserID: 7, Name: "Asha Worker", Phone: phone, RoleID: 1},
		Token:     "bearer-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *mockAuthUI) Restore(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.restoreFunc != nil {
		return m.restoreFunc(ctx, sessionID)
	}
	return nil, nil //nolint:nilnil // logged out, not an error
}

func (m *mockAuthUI) Logout(ctx context.Context, sessionID string) error {
	m.loggedOut = append(m.loggedOut, sessionID)
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthUI) Register(ctx context.Context, req upstream.RegisterRequest) error {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil
}

// newTestRenderer parses the real templates from disk so handler tests render
// what production renders.
func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
	})
	require.NoError(t, err)
	return tr
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginSubmit_SetsCookieAndRedirects(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthUI{}}

	req := postForm("/auth/login", url.Values{
		"phone":        {"9876543210"},
		"password":     {"secret"},
		"redirect_uri": {"/patients"},
	})
	w := httptest.NewRecorder()

	handlers.LoginSubmit(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/patients", w.Header().Get("Location"))

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.Equal(t, "sess-1", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Positive(t, cookies[0].MaxAge)
}

func TestLoginSubmit_HTMXUsesHxRedirect(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthUI{}}

	req := postForm("/auth/login", url.Values{
		"phone":    {"9876543210"},
		"password": {"secret"},
	})
	req.Header.Set("Hx-Request", "true")
	w := httptest.NewRecorder()

	handlers.LoginSubmit(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/", w.Header().Get("Hx-Redirect"))
}

func TestLoginSubmit_RejectedCredentialsRerenderForm(t *testing.T) {
	svc := &mockAuthUI{
		loginFunc: func(context.Context, string, string) (domainauth.Session, error) {
			return domainauth.Session{}, assertableError("bad credentials")
		},
	}
	handlers := &AuthHandlers{Svc: svc, T: newTestRenderer(t)}

	req := postForm("/auth/login", url.Values{
		"phone":    {"9876543210"},
		"password": {"wrong"},
	})
	w := httptest.NewRecorder()

	handlers.LoginSubmit(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Sign in failed")
	// The phone number survives the round trip so the user only retypes the password
	assert.Contains(t, body, "9876543210")
	// No session cookie on failure
	resp := w.Result()
	defer resp.Body.Close()
	assert.Empty(t, resp.Cookies())
}

func TestLoginSubmit_MissingFieldsShowValidationErrors(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthUI{}, T: newTestRenderer(t)}

	req := postForm("/auth/login", url.Values{"phone": {""}})
	w := httptest.NewRecorder()

	handlers.LoginSubmit(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please fix the errors below.")
}

func TestLoginPage_RedirectsWhenAlreadySignedIn(t *testing.T) {
	svc := &mockAuthUI{
		restoreFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			return &domainauth.Session{ID: sessionID, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	handlers := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/visits", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	w := httptest.NewRecorder()

	handlers.LoginPage(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/visits", w.Header().Get("Location"))
}

func TestLogout_ClearsServerAndClientState(t *testing.T) {
	svc := &mockAuthUI{}
	handlers := &AuthHandlers{Svc: svc}

	req := postForm("/auth/logout", url.Values{"redirect_uri": {"/patients"}})
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	w := httptest.NewRecorder()

	handlers.Logout(w, req)

	assert.Equal(t, []string{"sess-1"}, svc.loggedOut)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/signed-out?redirect_uri=%2Fpatients", w.Header().Get("Location"))

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestLogout_IsIdempotentWithoutCookie(t *testing.T) {
	svc := &mockAuthUI{}
	handlers := &AuthHandlers{Svc: svc}

	req := postForm("/auth/logout", url.Values{})
	w := httptest.NewRecorder()

	handlers.Logout(w, req)

	assert.Empty(t, svc.loggedOut)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLogout_AJAXGetsJSONRedirect(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthUI{}}

	req := postForm("/auth/logout", url.Values{})
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	handlers.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect_to"`)
	assert.Contains(t, w.Body.String(), "/auth/signed-out")
}

func TestStatus_ReportsAuthenticatedUser(t *testing.T) {
	facility := 3
	svc := &mockAuthUI{
		restoreFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			return &domainauth.Session{
				ID: sessionID,
				Identity: domainauth.Identity{
					UserID:     7,
					Name:       "Asha Worker",
					Phone:      "9876543210",
					RoleID:     1,
					FacilityID: &facility,
				},
				Token:     "tok",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	handlers := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	w := httptest.NewRecorder()

	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"authenticated":true`)
	assert.Contains(t, body, `"Asha Worker"`)
	assert.Contains(t, body, `"facility_id":3`)
}

func TestStatus_AnonymousClearsStaleCookie(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthUI{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale"})
	w := httptest.NewRecorder()

	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

// assertableError is a trivial error type for table-driven doubles.
type assertableError string

func (e assertableError) Error() string { return string(e) }
