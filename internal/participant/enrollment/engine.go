// Package enrollment holds the eligibility decision logic as a pure function.
// The original system buried these rules in a database stored procedure; here
// they are explicit so they can be tested without persistence and re-run by
// stores under their own transaction boundary.
package enrollment

import (
	"time"

	"participant-service/internal/participant/models"
)

// Decision is the outcome of evaluating an enrollment attempt. On SUCCESS it
// carries the proposed start and expiration dates for the new enrollment row.
type Decision struct {
	Status         models.EnrollmentStatus
	StartDate      models.Date
	ExpirationDate *models.Date
}

// Evaluate decides whether the participant may enroll in the program as of
// the given date. Rules run in a fixed order and the first failure wins:
//
//  1. participant and program must exist
//  2. no active enrollment may exist for the pair
//  3. the participant must meet the program's eligibility age, if set
//
// pairEnrollments must be the participant's enrollments in this specific
// program. Evaluate has no side effects; callers that persist the decision
// must re-run it under the same lock or transaction as the insert.
func Evaluate(p *models.Participant, program *models.ProgramType, pairEnrollments []models.Enrollment, asOf time.Time) Decision {
	if p == nil || program == nil {
		return Decision{Status: models.StatusRecordNotFound}
	}

	asOfDate := models.DateOf(asOf)
	for _, e := range pairEnrollments {
		if e.IsActive(asOfDate) {
			return Decision{Status: models.StatusAlreadyEnrolled}
		}
	}

	if program.EligibilityAge != nil && Age(p.DOB, asOfDate) < *program.EligibilityAge {
		return Decision{Status: models.StatusIneligibleAge}
	}

	dec := Decision{
		Status:    models.StatusSuccess,
		StartDate: asOfDate,
	}
	if program.EnrollmentTermDays != nil {
		exp := asOfDate.AddDays(*program.EnrollmentTermDays)
		dec.ExpirationDate = &exp
	}
	return dec
}

// Age returns the number of completed years between dob and asOf. A birthday
// that has not yet occurred in asOf's year rounds down.
func Age(dob, asOf models.Date) int {
	years := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() ||
		(asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return years
}
