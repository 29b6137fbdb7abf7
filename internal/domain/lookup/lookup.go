// Package lookup normalizes the reference/enumeration data served by the
// upstream EHR API. Every form dropdown in the UI is fed from one of the
// tables defined here.
package lookup

import (
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Item is the canonical {id, name} shape of one reference entry.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Category identifies one reference table in the upstream lookups payload.
type Category string

// The ten reference categories served by the combined lookups resource.
const (
	CategoryGenders              Category = "genders"
	CategoryRoles                Category = "roles"
	CategoryFacilities           Category = "facilities"
	CategoryVillages             Category = "villages"
	CategoryPregnancyStatuses    Category = "pregnancy_statuses"
	CategoryRiskLevels           Category = "risk_levels"
	CategoryVaccines             Category = "vaccines"
	CategoryReminderTypes        Category = "reminder_types"
	CategoryVisitTypes           Category = "visit_types"
	CategoryImmunizationStatuses Category = "immunization_statuses"
)

// Categories lists all recognized categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryGenders,
		CategoryRoles,
		CategoryFacilities,
		CategoryVillages,
		CategoryPregnancyStatuses,
		CategoryRiskLevels,
		CategoryVaccines,
		CategoryReminderTypes,
		CategoryVisitTypes,
		CategoryImmunizationStatuses,
	}
}

// idKeys maps each category to its identifier keys in priority order. Some
// API builds key entries with a category-specific column name, others with a
// generic "id"; the first key present on the entry wins, even when its value
// does not coerce to a usable id.
var idKeys = map[Category][]string{
	CategoryGenders:              {"gender_id", "id"},
	CategoryRoles:                {"role_id", "id"},
	CategoryFacilities:           {"facility_id", "id"},
	CategoryVillages:             {"village_id", "id"},
	CategoryPregnancyStatuses:    {"pregnancy_status_id", "id"},
	CategoryRiskLevels:           {"risk_level_id", "id"},
	CategoryVaccines:             {"vaccine_id", "id"},
	CategoryReminderTypes:        {"reminder_type_id", "id"},
	CategoryVisitTypes:           {"visit_type_id", "id"},
	CategoryImmunizationStatuses: {"immunization_status_id", "id"},
}

// Set holds all ten normalized lookup tables. A Set is always populated as a
// whole from one upstream payload; tables are never partially filled.
type Set struct {
	Genders              []Item
	Roles                []Item
	Facilities           []Item
	Villages             []Item
	PregnancyStatuses    []Item
	RiskLevels           []Item
	Vaccines             []Item
	ReminderTypes        []Item
	VisitTypes           []Item
	ImmunizationStatuses []Item
}

// Table returns the normalized table for the given category.
func (s Set) Table(c Category) []Item {
	switch c {
	case CategoryGenders:
		return s.Genders
	case CategoryRoles:
		return s.Roles
	case CategoryFacilities:
		return s.Facilities
	case CategoryVillages:
		return s.Villages
	case CategoryPregnancyStatuses:
		return s.PregnancyStatuses
	case CategoryRiskLevels:
		return s.RiskLevels
	case CategoryVaccines:
		return s.Vaccines
	case CategoryReminderTypes:
		return s.ReminderTypes
	case CategoryVisitTypes:
		return s.VisitTypes
	case CategoryImmunizationStatuses:
		return s.ImmunizationStatuses
	default:
		return nil
	}
}

// Name resolves an id within a category to its display name. Unknown ids
// render as the numeric id so tables never show blanks.
func (s Set) Name(c Category, id int) string {
	for _, it := range s.Table(c) {
		if it.ID == id {
			return it.Name
		}
	}
	return "#" + strconv.Itoa(id)
}

// Normalize converts a raw lookups payload into a Set. Missing or non-array
// categories become empty tables; this never fails. Entry ids are resolved
// via the category's key-priority expression and coerced to int with a zero
// fallback.
func Normalize(raw map[string]any) Set {
	return Set{
		Genders:              normalizeCategory(raw, CategoryGenders),
		Roles:                normalizeCategory(raw, CategoryRoles),
		Facilities:           normalizeCategory(raw, CategoryFacilities),
		Villages:             normalizeCategory(raw, CategoryVillages),
		PregnancyStatuses:    normalizeCategory(raw, CategoryPregnancyStatuses),
		RiskLevels:           normalizeCategory(raw, CategoryRiskLevels),
		Vaccines:             normalizeCategory(raw, CategoryVaccines),
		ReminderTypes:        normalizeCategory(raw, CategoryReminderTypes),
		VisitTypes:           normalizeCategory(raw, CategoryVisitTypes),
		ImmunizationStatuses: normalizeCategory(raw, CategoryImmunizationStatuses),
	}
}

func normalizeCategory(raw map[string]any, c Category) []Item {
	entries, ok := raw[string(c)].([]any)
	if !ok {
		return []Item{}
	}

	keys := idKeys[c]
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		entry, entryOK := e.(map[string]any)
		if !entryOK {
			continue
		}
		items = append(items, Item{
			ID:   resolveID(keys, entry),
			Name: entryName(entry),
		})
	}
	return items
}

// resolveID tries each identifier key in priority order and coerces the first
// present (non-null) value to int. Presence is decided before coercion: an
// empty or unparseable value under the winning key yields 0 rather than
// falling through to the next key. Nothing present also yields 0.
func resolveID(keys []string, entry map[string]any) int {
	for _, key := range keys {
		v, err := jmespath.Search(key, entry)
		if err != nil || v == nil {
			continue
		}
		return coerceID(v)
	}
	return 0
}

func coerceID(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func entryName(entry map[string]any) string {
	if s, ok := entry["name"].(string); ok {
		return s
	}
	return ""
}
