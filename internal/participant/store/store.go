// Package store is the persistence gateway for participants, programs and
// enrollments. Two implementations exist: InMemory for tests and
// dependency-free boots, Postgres for production. Both enforce the same
// contract: lookups return sentinel.ErrNotFound, unique-email violations
// return sentinel.ErrAlreadyUsed, and Enroll reports business outcomes as
// status values rather than errors.
package store

import (
	"context"
	"time"

	"participant-service/internal/participant/models"
)

// Store is the gateway contract the service orchestrates against.
type Store interface {
	// CreateParticipant persists a new participant, assigning its ID and
	// stamping audit fields. Returns sentinel.ErrAlreadyUsed when the email
	// is taken.
	CreateParticipant(ctx context.Context, p *models.Participant) error
	FindParticipantByID(ctx context.Context, id int64) (*models.Participant, error)
	FindAllParticipants(ctx context.Context) ([]models.Participant, error)
	// FindParticipantsByStatus matches the status field by case-insensitive
	// substring. An empty result is not an error.
	FindParticipantsByStatus(ctx context.Context, status string) ([]models.Participant, error)
	// UpdateParticipant rewrites the profile fields of an existing participant.
	// Returns sentinel.ErrNotFound for unknown IDs and sentinel.ErrAlreadyUsed
	// when the new email belongs to another participant.
	UpdateParticipant(ctx context.Context, p *models.Participant) error
	// DeleteParticipant removes the participant and cascades to its enrollments.
	DeleteParticipant(ctx context.Context, id int64) error
	ParticipantEmailExists(ctx context.Context, email string) (bool, error)

	FindProgramByCode(ctx context.Context, code string) (*models.ProgramType, error)

	// FindEnrollmentsByParticipant returns all of a participant's enrollments
	// joined with their program fields, without filtering by activity.
	FindEnrollmentsByParticipant(ctx context.Context, participantID int64) ([]models.EnrollmentRecord, error)

	// Enroll atomically re-validates the participant/program pair, runs the
	// eligibility rules and inserts the enrollment row on success. The
	// duplicate check and the insert are serialized per pair: two concurrent
	// calls for the same pair cannot both succeed. Business-rule failures come
	// back as a non-SUCCESS status with a nil error; only infrastructure
	// failures return an error.
	Enroll(ctx context.Context, participantID int64, programCode, userID string, asOf time.Time) (models.EnrollmentStatus, error)
}
