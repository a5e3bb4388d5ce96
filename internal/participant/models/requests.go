package models

// ParticipantRequest creates or updates a participant profile. ParticipantID
// is ignored on create; on update the path parameter wins.
type ParticipantRequest struct {
	ParticipantID    *int64 `json:"participantId,omitempty"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	DOB              Date   `json:"dob"`
	EnrollmentStatus string `json:"enrollmentStatus"`
}

// EnrollmentRequest asks to enroll a participant into a program. UserID is the
// acting user recorded on the enrollment's audit fields.
type EnrollmentRequest struct {
	ParticipantID int64  `json:"participantId"`
	ProgramCode   string `json:"programCode"`
	UserID        string `json:"userId"`
}
