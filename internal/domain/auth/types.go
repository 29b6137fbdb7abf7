package auth

// Package auth contains domain-level types for identities and sessions.
// It is pure and free of transport/adapter concerns.

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Identity is the normalized profile of an authenticated health worker as
// returned by the upstream EHR API. RoleID and FacilityID reference lookup
// tables; FacilityID is optional (district/admin accounts have none).
type Identity struct {
	UserID     int    `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	RoleID     int    `json:"role_id"`
	FacilityID *int   `json:"facility_id,omitempty"`
}

// Session is the server-side record kept for an authenticated browser.
// ID is an opaque cookie value; Token is the upstream bearer credential.
// Identity and Token are always persisted and cleared together.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrMalformedIdentity is returned when an upstream user payload cannot be
// normalized into an Identity.
var ErrMalformedIdentity = errors.New("malformed identity payload")

// Accepted field-name variants per canonical attribute. The upstream API has
// shipped two naming conventions over time; both are accepted and normalized
// here, mirroring the login response contract.
var (
	userIDKeys   = []string{"user_id", "id"}
	roleIDKeys   = []string{"role_id", "roleId", "role"}
	facilityKeys = []string{"facility_id", "facilityId"}
)

// IdentityFromPayload normalizes a raw upstream user object into an Identity.
// Numeric identifiers are coerced to int regardless of whether the server
// sent them as JSON numbers or strings. A payload without a resolvable user
// id or role id is malformed.
func IdentityFromPayload(raw map[string]any) (Identity, error) {
	if raw == nil {
		return Identity{}, ErrMalformedIdentity
	}

	userID, ok := firstInt(raw, userIDKeys)
	if !ok {
		return Identity{}, ErrMalformedIdentity
	}
	roleID, ok := firstInt(raw, roleIDKeys)
	if !ok {
		return Identity{}, ErrMalformedIdentity
	}

	ident := Identity{
		UserID: userID,
		Name:   stringField(raw, "name"),
		Phone:  stringField(raw, "phone"),
		RoleID: roleID,
	}
	if fid, present := firstInt(raw, facilityKeys); present {
		ident.FacilityID = &fid
	}
	return ident, nil
}

// firstInt returns the first key present in raw that coerces to an int.
func firstInt(raw map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		v, present := raw[k]
		if !present || v == nil {
			continue
		}
		if n, ok := coerceInt(v); ok {
			return n, true
		}
	}
	return 0, false
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func stringField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}
