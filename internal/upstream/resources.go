package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Resource methods, one small wrapper per API route the UI consumes.

// Login exchanges phone/password for a bearer credential and raw user object.
// No credential is attached; this is the one unauthenticated call besides
// Register.
func (c *Client) Login(ctx context.Context, phone, password string) (LoginResult, error) {
	var result LoginResult
	err := c.Post(ctx, MutateParams{
		Path: "/auth/login",
		Body: map[string]string{"phone": phone, "password": password},
	}, &result)
	return result, err
}

// Register creates a worker account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Post(ctx, MutateParams{Path: "/auth/register", Body: req}, nil)
}

// FetchLookups retrieves the combined reference-data payload. The shape
// varies per category, so it is returned raw for the lookup domain to
// normalize.
func (c *Client) FetchLookups(ctx context.Context, token string) (map[string]any, error) {
	var raw map[string]any
	if err := c.Get(ctx, GetParams{Path: "/lookups", Token: token}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListPatients returns patients, optionally filtered by the q search term.
func (c *Client) ListPatients(ctx context.Context, token, q string) ([]Patient, error) {
	var query url.Values
	if strings.TrimSpace(q) != "" {
		query = url.Values{"q": []string{strings.TrimSpace(q)}}
	}
	var patients []Patient
	err := c.Get(ctx, GetParams{Path: "/patients", Query: query, Token: token}, &patients)
	return patients, err
}

// GetPatient fetches one patient by id.
func (c *Client) GetPatient(ctx context.Context, token string, id int) (Patient, error) {
	var patient Patient
	err := c.Get(ctx, GetParams{Path: "/patients/" + strconv.Itoa(id), Token: token}, &patient)
	return patient, err
}

// CreatePatient registers a patient and returns the created record.
func (c *Client) CreatePatient(ctx context.Context, token string, req CreatePatientRequest) (Patient, error) {
	var patient Patient
	err := c.Post(ctx, MutateParams{Path: "/patients", Token: token, Body: req}, &patient)
	return patient, err
}

// ListPregnancies returns all pregnancies visible to the caller.
func (c *Client) ListPregnancies(ctx context.Context, token string) ([]Pregnancy, error) {
	var pregnancies []Pregnancy
	err := c.Get(ctx, GetParams{Path: "/pregnancies", Token: token}, &pregnancies)
	return pregnancies, err
}

// CreatePregnancy opens a pregnancy record.
func (c *Client) CreatePregnancy(ctx context.Context, token string, req CreatePregnancyRequest) (Pregnancy, error) {
	var pregnancy Pregnancy
	err := c.Post(ctx, MutateParams{Path: "/pregnancies", Token: token, Body: req}, &pregnancy)
	return pregnancy, err
}

// ListVisits returns all visits visible to the caller.
func (c *Client) ListVisits(ctx context.Context, token string) ([]Visit, error) {
	var visits []Visit
	err := c.Get(ctx, GetParams{Path: "/visits", Token: token}, &visits)
	return visits, err
}

// CreateVisit records a visit.
func (c *Client) CreateVisit(ctx context.Context, token string, req CreateVisitRequest) (Visit, error) {
	var visit Visit
	err := c.Post(ctx, MutateParams{Path: "/visits", Token: token, Body: req}, &visit)
	return visit, err
}

// ListImmunizations returns all immunizations visible to the caller.
func (c *Client) ListImmunizations(ctx context.Context, token string) ([]Immunization, error) {
	var immunizations []Immunization
	err := c.Get(ctx, GetParams{Path: "/immunizations", Token: token}, &immunizations)
	return immunizations, err
}

// CreateImmunization records a dose.
func (c *Client) CreateImmunization(
	ctx context.Context,
	token string,
	req CreateImmunizationRequest,
) (Immunization, error) {
	var immunization Immunization
	err := c.Post(ctx, MutateParams{Path: "/immunizations", Token: token, Body: req}, &immunization)
	return immunization, err
}

// ListMyReminders returns the logged-in worker's reminders.
func (c *Client) ListMyReminders(ctx context.Context, token string) ([]Reminder, error) {
	var reminders []Reminder
	err := c.Get(ctx, GetParams{Path: "/reminders/my", Token: token}, &reminders)
	return reminders, err
}

// CompleteReminder marks a reminder done via partial update.
func (c *Client) CompleteReminder(ctx context.Context, token string, id int) error {
	path := fmt.Sprintf("/reminders/%d", id)
	return c.Patch(ctx, MutateParams{
		Path:  path,
		Token: token,
		Body:  map[string]bool{"completed": true},
	}, nil)
}

// ListVoiceNotes returns the recorded voice memos visible to the caller.
func (c *Client) ListVoiceNotes(ctx context.Context, token string) ([]VoiceNote, error) {
	var notes []VoiceNote
	err := c.Get(ctx, GetParams{Path: "/voice", Token: token}, &notes)
	return notes, err
}

// ListAuditRecords returns the audit trail.
func (c *Client) ListAuditRecords(ctx context.Context, token string) ([]AuditRecord, error) {
	var records []AuditRecord
	err := c.Get(ctx, GetParams{Path: "/audit", Token: token}, &records)
	return records, err
}
