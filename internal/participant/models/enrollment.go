package models

// EnrollmentStatus is the outcome keyword of an enrollment attempt. These are
// wire values: the store returns them from Enroll and the error envelope
// carries them verbatim.
type EnrollmentStatus string

const (
	StatusSuccess         EnrollmentStatus = "SUCCESS"
	StatusRecordNotFound  EnrollmentStatus = "RECORD_NOT_FOUND"
	StatusAlreadyEnrolled EnrollmentStatus = "ALREADY_ENROLLED"
	StatusIneligibleAge   EnrollmentStatus = "INELIGIBLE_AGE"
	StatusInternalError   EnrollmentStatus = "INTERNAL_SERVER_ERROR"
)

// Enrollment is a time-bounded link between one participant and one program.
// It is created only through the enrollment workflow and never updated after
// creation; it disappears only via participant/program cascade.
type Enrollment struct {
	ID             int64  `json:"enrollmentId"`
	StartDate      Date   `json:"startDate"`
	ExpirationDate *Date  `json:"expirationDate"`
	ParticipantID  int64  `json:"participantId"`
	ProgramCode    string `json:"programCode"`
	Audit
}

// IsActive reports whether the enrollment is active as of the given date:
// no expiration, or an expiration strictly after asOf.
func (e Enrollment) IsActive(asOf Date) bool {
	return e.ExpirationDate == nil || e.ExpirationDate.After(asOf.Time)
}

// EnrollmentRecord is an enrollment joined with the program fields the
// enrollment projection exposes.
type EnrollmentRecord struct {
	Enrollment
	ProgramName    string `json:"programName"`
	EligibilityAge *int   `json:"eligibilityAge"`
}
