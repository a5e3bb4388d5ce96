package models

import "time"

// ParticipantResponse is the participant projection returned by every read and
// write endpoint. Audit fields stay server-side.
type ParticipantResponse struct {
	ParticipantID    int64  `json:"participantId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	DOB              Date   `json:"dob"`
	EnrollmentStatus string `json:"enrollmentStatus"`
}

// ToResponse projects a participant entity onto its response shape.
func (p *Participant) ToResponse() ParticipantResponse {
	return ParticipantResponse{
		ParticipantID:    p.ID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		DOB:              p.DOB,
		EnrollmentStatus: p.EnrollmentStatus,
	}
}

// EnrollmentResponse is the enrollment projection, enriched with the fields of
// the program it belongs to.
type EnrollmentResponse struct {
	EnrollmentID   int64  `json:"enrollmentId"`
	StartDate      Date   `json:"startDate"`
	ExpirationDate *Date  `json:"expirationDate"`
	ProgramName    string `json:"programName"`
	ProgramCode    string `json:"programCode"`
	EligibilityAge *int   `json:"eligibilityAge"`
}

// ToResponse projects an enrollment record onto its response shape.
func (r EnrollmentRecord) ToResponse() EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID:   r.ID,
		StartDate:      r.StartDate,
		ExpirationDate: r.ExpirationDate,
		ProgramName:    r.ProgramName,
		ProgramCode:    r.ProgramCode,
		EligibilityAge: r.EligibilityAge,
	}
}

// ErrorResponse is the envelope for every non-2xx reply: the status keyword,
// a human-readable message, and when the failure happened.
type ErrorResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
