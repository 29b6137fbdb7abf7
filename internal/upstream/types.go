package upstream

// Wire types for the EHR API resources consumed by the UI. Create payloads
// mirror what the API's validation layer accepts; list/detail shapes keep the
// fields the pages actually render.

// Address is the nested postal block on a patient record.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	Pincode    string `json:"pincode,omitempty"`
	VillageID  int    `json:"village_id,omitempty"`
	FacilityID int    `json:"facility_id,omitempty"`
}

// Patient is one registered person.
type Patient struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	GenderID int      `json:"gender_id"`
	DOB      string   `json:"dob,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	AbhaID   string   `json:"abha_id,omitempty"`
	Address  *Address `json:"address,omitempty"`
}

// CreatePatientRequest registers a new patient.
type CreatePatientRequest struct {
	Name     string   `json:"name"`
	GenderID int      `json:"gender_id"`
	DOB      string   `json:"dob,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	AbhaID   string   `json:"abha_id,omitempty"`
	Address  *Address `json:"address,omitempty"`
}

// Pregnancy is one tracked pregnancy.
type Pregnancy struct {
	ID                int    `json:"id"`
	PatientID         int    `json:"patient_id"`
	PatientName       string `json:"patient_name,omitempty"`
	StartDate         string `json:"start_date"`
	EDD               string `json:"edd,omitempty"`
	RiskLevelID       int    `json:"risk_level_id,omitempty"`
	PregnancyStatusID int    `json:"pregnancy_status_id,omitempty"`
}

// CreatePregnancyRequest opens a pregnancy record.
type CreatePregnancyRequest struct {
	PatientID         int    `json:"patient_id"`
	StartDate         string `json:"start_date"`
	EDD               string `json:"edd,omitempty"`
	RiskLevelID       int    `json:"risk_level_id,omitempty"`
	PregnancyStatusID int    `json:"pregnancy_status_id,omitempty"`
}

// Visit is one home/facility visit.
type Visit struct {
	ID          int    `json:"id"`
	PatientID   int    `json:"patient_id"`
	PatientName string `json:"patient_name,omitempty"`
	VisitTypeID int    `json:"visit_type_id"`
	VisitDate   string `json:"visit_date"`
	Notes       string `json:"notes,omitempty"`
}

// CreateVisitRequest records a visit.
type CreateVisitRequest struct {
	PatientID   int    `json:"patient_id"`
	VisitTypeID int    `json:"visit_type_id"`
	VisitDate   string `json:"visit_date"`
	Notes       string `json:"notes,omitempty"`
}

// Immunization is one administered or scheduled dose.
type Immunization struct {
	ID                   int    `json:"id"`
	PatientID            int    `json:"patient_id"`
	PatientName          string `json:"patient_name,omitempty"`
	VaccineID            int    `json:"vaccine_id"`
	DoseNumber           int    `json:"dose_number"`
	DateGiven            string `json:"date_given"`
	DueDate              string `json:"due_date,omitempty"`
	ImmunizationStatusID int    `json:"immunization_status_id,omitempty"`
}

// CreateImmunizationRequest records a dose.
type CreateImmunizationRequest struct {
	PatientID            int    `json:"patient_id"`
	VaccineID            int    `json:"vaccine_id"`
	DoseNumber           int    `json:"dose_number"`
	DateGiven            string `json:"date_given"`
	DueDate              string `json:"due_date,omitempty"`
	ImmunizationStatusID int    `json:"immunization_status_id,omitempty"`
}

// Reminder is one follow-up owed by the logged-in worker.
type Reminder struct {
	ID             int    `json:"id"`
	PatientID      int    `json:"patient_id"`
	PatientName    string `json:"patient_name,omitempty"`
	ReminderTypeID int    `json:"reminder_type_id"`
	DueDate        string `json:"due_date"`
	Notes          string `json:"notes,omitempty"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

// Completed reports whether the reminder has been closed out.
func (r Reminder) Completed() bool { return r.CompletedAt != "" }

// VoiceNote is one recorded voice memo, attached to a patient and
// optionally to the visit it was taken during.
type VoiceNote struct {
	ID          int    `json:"id"`
	PatientID   int    `json:"patient_id,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
	VisitID     int    `json:"visit_id,omitempty"`
	RecordedAt  string `json:"recorded_at"`
	Transcript  string `json:"transcript,omitempty"`
}

// AuditRecord is one entry in the API's audit trail.
type AuditRecord struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	EntityID  int    `json:"entity_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// RegisterRequest creates a worker account.
type RegisterRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	RoleID     int    `json:"role_id"`
	FacilityID int    `json:"facility_id,omitempty"`
}

// LoginResult is the raw authentication exchange response. User stays
// untyped because the API has shipped more than one field-name convention;
// normalization happens in the auth domain.
type LoginResult struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}
