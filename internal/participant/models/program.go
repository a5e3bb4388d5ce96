package models

// ProgramType is a named offering participants can enroll in. The short code
// string is its natural key.
//
// EligibilityAge is the minimum participant age (completed years) required to
// enroll; nil means no minimum. EnrollmentTermDays defines how long a new
// enrollment lasts: nil means open-ended (no expiration date), otherwise the
// expiration is the start date plus that many days.
type ProgramType struct {
	Code               string `json:"programCode"`
	Name               string `json:"programName"`
	EligibilityAge     *int   `json:"eligibilityAge"`
	EnrollmentTermDays *int   `json:"enrollmentTermDays"`
	Audit
}
