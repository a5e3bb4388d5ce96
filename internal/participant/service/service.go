// Package service orchestrates the participant and enrollment workflows:
// it loads entities through the store, applies the outcome taxonomy, and
// raises coded domain errors for the transport layer to translate.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"participant-service/internal/participant/models"
	"participant-service/internal/participant/store"
	"participant-service/internal/platform/metrics"
	"participant-service/internal/platform/middleware"
	derrors "participant-service/pkg/domain-errors"
	"participant-service/pkg/platform/sentinel"
)

// Service coordinates participant CRUD and the enrollment workflow.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

// WithMetrics attaches Prometheus counters to service outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the wall clock; age and active-enrollment checks depend
// on "now", so tests inject a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new participant. Fails with EMAIL_EXISTS when the email
// is already in use.
func (s *Service) Create(ctx context.Context, req models.ParticipantRequest) (*models.Participant, error) {
	exists, err := s.store.ParticipantEmailExists(ctx, req.Email)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to check email")
	}
	if exists {
		return nil, derrors.New(derrors.CodeEmailExists, "email is already registered")
	}

	p := &models.Participant{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		DOB:              req.DOB,
		EnrollmentStatus: req.EnrollmentStatus,
		Audit:            models.Audit{CreatedBy: actor(ctx)},
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		// The store enforces uniqueness under its own lock; a concurrent
		// create can still lose the race after the check above.
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, derrors.New(derrors.CodeEmailExists, "email is already registered")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create participant")
	}

	s.incrementParticipantsCreated()
	return p, nil
}

func (s *Service) GetAll(ctx context.Context) ([]models.Participant, error) {
	participants, err := s.store.FindAllParticipants(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list participants")
	}
	return participants, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	p, err := s.store.FindParticipantByID(ctx, id)
	if err != nil {
		return nil, wrapParticipantErr(err)
	}
	return p, nil
}

// UpdateByID rewrites the participant's profile fields. The path ID wins over
// any ID carried in the request body.
func (s *Service) UpdateByID(ctx context.Context, id int64, req models.ParticipantRequest) (*models.Participant, error) {
	existing, err := s.store.FindParticipantByID(ctx, id)
	if err != nil {
		return nil, wrapParticipantErr(err)
	}

	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.Email = req.Email
	existing.DOB = req.DOB
	existing.EnrollmentStatus = req.EnrollmentStatus
	existing.UpdatedBy = actor(ctx)

	if err := s.store.UpdateParticipant(ctx, existing); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, derrors.New(derrors.CodeEmailExists, "email is already registered")
		}
		return nil, wrapParticipantErr(err)
	}
	return existing, nil
}

// DeleteByID removes the participant; its enrollments cascade with it.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.store.DeleteParticipant(ctx, id); err != nil {
		return wrapParticipantErr(err)
	}
	return nil
}

// ProcessEnrollment runs the atomic enroll operation and maps any non-SUCCESS
// status to a domain error carrying that status as its code. The state machine
// is terminal either way: callers resubmit rather than retry here.
func (s *Service) ProcessEnrollment(ctx context.Context, req models.EnrollmentRequest) (models.EnrollmentStatus, error) {
	s.logger.InfoContext(ctx, "enrollment attempt",
		"participant_id", req.ParticipantID,
		"program_code", req.ProgramCode,
		"user_id", req.UserID,
	)
	s.incrementEnrollmentAttempts()

	status, err := s.store.Enroll(ctx, req.ParticipantID, req.ProgramCode, req.UserID, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "enrollment failed",
			"participant_id", req.ParticipantID,
			"program_code", req.ProgramCode,
			"error", err,
		)
		s.observeEnrollmentOutcome(models.StatusInternalError)
		return models.StatusInternalError, derrors.Wrap(err, derrors.CodeInternal, "enrollment failed")
	}

	s.logger.InfoContext(ctx, "enrollment result",
		"participant_id", req.ParticipantID,
		"program_code", req.ProgramCode,
		"status", string(status),
	)
	s.observeEnrollmentOutcome(status)

	if status != models.StatusSuccess {
		return status, derrors.New(statusCode(status), "business rule violation occurred during enrollment")
	}
	return status, nil
}

// GetActiveEnrollments returns the participant's enrollments whose expiration
// date is absent or strictly after today.
func (s *Service) GetActiveEnrollments(ctx context.Context, participantID int64) ([]models.EnrollmentRecord, error) {
	if _, err := s.store.FindParticipantByID(ctx, participantID); err != nil {
		return nil, wrapParticipantErr(err)
	}

	all, err := s.store.FindEnrollmentsByParticipant(ctx, participantID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list enrollments")
	}

	today := models.DateOf(s.now())
	active := []models.EnrollmentRecord{}
	for _, rec := range all {
		if rec.IsActive(today) {
			active = append(active, rec)
		}
	}
	return active, nil
}

// FindByStatus matches participants by case-insensitive substring on their
// status field. An empty result is a valid answer, never an error.
func (s *Service) FindByStatus(ctx context.Context, status string) ([]models.Participant, error) {
	participants, err := s.store.FindParticipantsByStatus(ctx, status)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to search participants")
	}
	return participants, nil
}

// actor resolves the audit identity for a mutation: the authenticated subject
// when the request carried one, "system" otherwise.
func actor(ctx context.Context) string {
	if subject := middleware.GetSubject(ctx); subject != "" {
		return subject
	}
	return "system"
}

func wrapParticipantErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return derrors.New(derrors.CodeRecordNotFound, "participant not found")
	}
	return derrors.Wrap(err, derrors.CodeInternal, "participant store failure")
}

// statusCode maps a store status keyword onto the matching domain error code.
func statusCode(status models.EnrollmentStatus) derrors.Code {
	switch status {
	case models.StatusRecordNotFound:
		return derrors.CodeRecordNotFound
	case models.StatusAlreadyEnrolled:
		return derrors.CodeAlreadyEnrolled
	case models.StatusIneligibleAge:
		return derrors.CodeIneligibleAge
	default:
		return derrors.CodeInternal
	}
}

func (s *Service) incrementParticipantsCreated() {
	if s.metrics != nil {
		s.metrics.IncrementParticipantsCreated()
	}
}

func (s *Service) incrementEnrollmentAttempts() {
	if s.metrics != nil {
		s.metrics.IncrementEnrollmentAttempts()
	}
}

func (s *Service) observeEnrollmentOutcome(status models.EnrollmentStatus) {
	if s.metrics != nil {
		s.metrics.ObserveEnrollmentOutcome(string(status))
	}
}
