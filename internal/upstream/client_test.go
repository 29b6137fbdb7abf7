package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: ""}, nil)
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "not-a-url"}, nil)
	assert.Error(t, err)
}

func TestGetAttachesBearerCredential(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Patient{})
	})

	_, err := c.ListPatients(context.Background(), "tok123", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestLoginSendsNoCredential(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(LoginResult{
			Token: "tok123",
			User:  map[string]any{"user_id": 1, "name": "A", "role_id": 2},
		})
	})

	result, err := c.Login(context.Background(), "9990001111", "secret")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "tok123", result.Token)
}

func TestListPatientsPassesSearchQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode([]Patient{{ID: 1, Name: "Geeta Devi"}})
	})

	patients, err := c.ListPatients(context.Background(), "tok", "  geeta ")
	require.NoError(t, err)
	assert.Equal(t, "geeta", gotQuery)
	require.Len(t, patients, 1)
	assert.Equal(t, "Geeta Devi", patients[0].Name)
}

func TestErrorResponsesBecomeAPIErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	})

	_, err := c.Login(context.Background(), "9990001111", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestCompleteReminderUsesPatch(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.CompleteReminder(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/reminders/42", gotPath)
}

func TestFetchLookupsReturnsRawPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookups", r.URL.Path)
		_, _ = w.Write([]byte(`{"vaccines": [{"vaccine_id": "7", "name": "BCG"}]}`))
	})

	raw, err := c.FetchLookups(context.Background(), "tok")
	require.NoError(t, err)
	vaccines, ok := raw["vaccines"].([]any)
	require.True(t, ok)
	assert.Len(t, vaccines, 1)
}
