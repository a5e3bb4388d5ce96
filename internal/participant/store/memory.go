package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"participant-service/internal/participant/enrollment"
	"participant-service/internal/participant/models"
	"participant-service/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. The write lock held across
// Enroll's evaluate-then-insert gives the same per-pair serialization the
// Postgres store gets from row locking.
type InMemory struct {
	mu              sync.RWMutex
	participants    map[int64]models.Participant
	programs        map[string]models.ProgramType
	enrollments     map[int64]models.Enrollment
	nextParticipant int64
	nextEnrollment  int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		participants: make(map[int64]models.Participant),
		programs:     make(map[string]models.ProgramType),
		enrollments:  make(map[int64]models.Enrollment),
	}
}

// SeedProgram registers a program type. Programs are read-only through the
// Store contract; seeding is for boot wiring and tests.
func (s *InMemory) SeedProgram(p models.ProgramType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedOn = time.Now().UTC()
	if p.CreatedBy == "" {
		p.CreatedBy = "system"
	}
	s.programs[p.Code] = p
}

func (s *InMemory) CreateParticipant(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(p.Email, 0) {
		return sentinel.ErrAlreadyUsed
	}

	s.nextParticipant++
	p.ID = s.nextParticipant
	p.CreatedOn = time.Now().UTC()
	if p.CreatedBy == "" {
		p.CreatedBy = "system"
	}
	s.participants[p.ID] = *p
	return nil
}

func (s *InMemory) FindParticipantByID(_ context.Context, id int64) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindAllParticipants(_ context.Context) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	return out, nil
}

func (s *InMemory) FindParticipantsByStatus(_ context.Context, status string) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(status)
	out := []models.Participant{}
	for _, p := range s.participants {
		if strings.Contains(strings.ToLower(p.EnrollmentStatus), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *InMemory) UpdateParticipant(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.participants[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if s.emailTakenLocked(p.Email, p.ID) {
		return sentinel.ErrAlreadyUsed
	}

	now := time.Now().UTC()
	p.CreatedBy = existing.CreatedBy
	p.CreatedOn = existing.CreatedOn
	p.UpdatedOn = &now
	s.participants[p.ID] = *p
	return nil
}

func (s *InMemory) DeleteParticipant(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.participants, id)
	// Cascade: a participant owns its enrollments.
	for eid, e := range s.enrollments {
		if e.ParticipantID == id {
			delete(s.enrollments, eid)
		}
	}
	return nil
}

func (s *InMemory) ParticipantEmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailTakenLocked(email, 0), nil
}

func (s *InMemory) FindProgramByCode(_ context.Context, code string) (*models.ProgramType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindEnrollmentsByParticipant(_ context.Context, participantID int64) ([]models.EnrollmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.EnrollmentRecord{}
	for _, e := range s.enrollments {
		if e.ParticipantID != participantID {
			continue
		}
		rec := models.EnrollmentRecord{Enrollment: e}
		if prog, ok := s.programs[e.ProgramCode]; ok {
			rec.ProgramName = prog.Name
			rec.EligibilityAge = prog.EligibilityAge
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *InMemory) Enroll(_ context.Context, participantID int64, programCode, userID string, asOf time.Time) (models.EnrollmentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p *models.Participant
	if found, ok := s.participants[participantID]; ok {
		p = &found
	}
	var program *models.ProgramType
	if found, ok := s.programs[programCode]; ok {
		program = &found
	}

	var pair []models.Enrollment
	for _, e := range s.enrollments {
		if e.ParticipantID == participantID && e.ProgramCode == programCode {
			pair = append(pair, e)
		}
	}

	dec := enrollment.Evaluate(p, program, pair, asOf)
	if dec.Status != models.StatusSuccess {
		return dec.Status, nil
	}

	s.nextEnrollment++
	s.enrollments[s.nextEnrollment] = models.Enrollment{
		ID:             s.nextEnrollment,
		StartDate:      dec.StartDate,
		ExpirationDate: dec.ExpirationDate,
		ParticipantID:  participantID,
		ProgramCode:    programCode,
		Audit: models.Audit{
			CreatedBy: userID,
			CreatedOn: time.Now().UTC(),
		},
	}
	return models.StatusSuccess, nil
}

func (s *InMemory) emailTakenLocked(email string, excludeID int64) bool {
	for _, p := range s.participants {
		if p.ID != excludeID && strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}
