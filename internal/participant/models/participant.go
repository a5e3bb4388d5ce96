package models

import "time"

// Audit captures who created or last changed a record and when. Stores stamp
// these on write; they never travel on response DTOs.
type Audit struct {
	CreatedBy string     `json:"createdBy,omitempty"`
	CreatedOn time.Time  `json:"createdOn,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedOn *time.Time `json:"updatedOn,omitempty"`
}

// Participant is the aggregate root for a person profile.
//
// Invariants:
//   - Email is unique across all participants (case-insensitive)
//   - A participant owns its enrollments: deleting the participant deletes them
//   - EnrollmentStatus is a free-text lifecycle category (ACTIVE/INACTIVE/PENDING
//     by convention, not enforced)
//
// Enrollments are referenced by participant ID from the enrollments table, not
// embedded here, so there is no cyclic ownership between participant, program
// and enrollment.
type Participant struct {
	ID               int64  `json:"participantId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	DOB              Date   `json:"dob"`
	EnrollmentStatus string `json:"enrollmentStatus"`
	Audit
}
