package handler

import (
	"time"

	"github.com/asaskevich/govalidator"

	"participant-service/internal/participant/models"
	derrors "participant-service/pkg/domain-errors"
)

// validateParticipantRequest rejects malformed bodies before they reach the
// service. Field limits mirror the persisted schema.
func validateParticipantRequest(req models.ParticipantRequest) error {
	if !govalidator.StringLength(req.FirstName, "1", "50") {
		return derrors.New(derrors.CodeBadRequest, "first name is required and must be at most 50 characters")
	}
	if !govalidator.StringLength(req.LastName, "1", "50") {
		return derrors.New(derrors.CodeBadRequest, "last name is required and must be at most 50 characters")
	}
	if !govalidator.StringLength(req.Email, "1", "100") || !govalidator.IsEmail(req.Email) {
		return derrors.New(derrors.CodeBadRequest, "a valid email address is required")
	}
	if req.DOB.IsZero() {
		return derrors.New(derrors.CodeBadRequest, "date of birth is required")
	}
	if !req.DOB.Before(time.Now()) {
		return derrors.New(derrors.CodeBadRequest, "date of birth must be in the past")
	}
	if !govalidator.StringLength(req.EnrollmentStatus, "1", "20") {
		return derrors.New(derrors.CodeBadRequest, "enrollment status is required and must be at most 20 characters")
	}
	return nil
}

func validateEnrollmentRequest(req models.EnrollmentRequest) error {
	if req.ParticipantID <= 0 {
		return derrors.New(derrors.CodeBadRequest, "participantId must be a positive integer")
	}
	if !govalidator.StringLength(req.ProgramCode, "1", "20") {
		return derrors.New(derrors.CodeBadRequest, "programCode is required and must be at most 20 characters")
	}
	if !govalidator.StringLength(req.UserID, "1", "50") {
		return derrors.New(derrors.CodeBadRequest, "userId is required and must be at most 50 characters")
	}
	return nil
}
