package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"participant-service/internal/participant/enrollment"
	"participant-service/internal/participant/models"
	"participant-service/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// Postgres implements Store on database/sql. Enroll takes a row lock on the
// participant for the duration of its transaction, which serializes the
// duplicate check and the insert per (participant, program) pair.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const participantColumns = `participant_id, first_name, last_name, email, dob, enrollment_status,
	created_by, created_on, updated_by, updated_on`

func (s *Postgres) CreateParticipant(ctx context.Context, p *models.Participant) error {
	stampCreate(p)
	query := `
		INSERT INTO participants (first_name, last_name, email, dob, enrollment_status, created_by, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING participant_id
	`
	err := s.db.QueryRowContext(ctx, query,
		p.FirstName, p.LastName, p.Email, p.DOB, p.EnrollmentStatus, p.CreatedBy, p.CreatedOn,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *Postgres) FindParticipantByID(ctx context.Context, id int64) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE participant_id = $1`
	p, err := scanParticipant(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query participant: %w", err)
	}
	return p, nil
}

func (s *Postgres) FindAllParticipants(ctx context.Context) ([]models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants ORDER BY participant_id`
	return s.queryParticipants(ctx, query)
}

func (s *Postgres) FindParticipantsByStatus(ctx context.Context, status string) ([]models.Participant, error) {
	// Case-insensitive substring match, preserved from the original search
	// semantics: "active" also matches "INACTIVE".
	query := `SELECT ` + participantColumns + `
		FROM participants
		WHERE enrollment_status ILIKE '%' || $1 || '%'
		ORDER BY participant_id`
	return s.queryParticipants(ctx, query, status)
}

func (s *Postgres) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	now := time.Now().UTC()
	p.UpdatedOn = &now
	query := `
		UPDATE participants
		SET first_name = $1, last_name = $2, email = $3, dob = $4,
		    enrollment_status = $5, updated_by = $6, updated_on = $7
		WHERE participant_id = $8
	`
	res, err := s.db.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.Email, p.DOB, p.EnrollmentStatus, p.UpdatedBy, p.UpdatedOn, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update participant rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteParticipant(ctx context.Context, id int64) error {
	// Enrollments go with the participant via ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE participant_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ParticipantEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE lower(email) = lower($1))`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query email exists: %w", err)
	}
	return exists, nil
}

func (s *Postgres) FindProgramByCode(ctx context.Context, code string) (*models.ProgramType, error) {
	query := `
		SELECT program_code, program_name, eligibility_age, enrollment_term_days
		FROM program_types
		WHERE program_code = $1
	`
	var p models.ProgramType
	err := s.db.QueryRowContext(ctx, query, code).Scan(&p.Code, &p.Name, &p.EligibilityAge, &p.EnrollmentTermDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query program: %w", err)
	}
	return &p, nil
}

func (s *Postgres) FindEnrollmentsByParticipant(ctx context.Context, participantID int64) ([]models.EnrollmentRecord, error) {
	query := `
		SELECT e.enrollment_id, e.start_date, e.expiration_date, e.participant_id, e.program_code,
		       p.program_name, p.eligibility_age
		FROM enrollments e
		JOIN program_types p ON p.program_code = e.program_code
		WHERE e.participant_id = $1
		ORDER BY e.enrollment_id
	`
	rows, err := s.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	out := []models.EnrollmentRecord{}
	for rows.Next() {
		var rec models.EnrollmentRecord
		var expiration sql.Null[models.Date]
		err := rows.Scan(
			&rec.ID, &rec.StartDate, &expiration, &rec.ParticipantID, &rec.ProgramCode,
			&rec.ProgramName, &rec.EligibilityAge,
		)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		if expiration.Valid {
			rec.ExpirationDate = &expiration.V
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return out, nil
}

// Enroll re-validates and inserts within a single transaction. The
// SELECT ... FOR UPDATE on the participant row blocks a concurrent Enroll for
// the same participant until this transaction commits, so the duplicate check
// always sees the latest committed state for the pair.
func (s *Postgres) Enroll(ctx context.Context, participantID int64, programCode, userID string, asOf time.Time) (models.EnrollmentStatus, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.StatusInternalError, fmt.Errorf("begin enroll tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var p models.Participant
	err = tx.QueryRowContext(ctx,
		`SELECT participant_id, dob FROM participants WHERE participant_id = $1 FOR UPDATE`,
		participantID,
	).Scan(&p.ID, &p.DOB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StatusRecordNotFound, nil
	}
	if err != nil {
		return models.StatusInternalError, fmt.Errorf("lock participant: %w", err)
	}

	var program models.ProgramType
	err = tx.QueryRowContext(ctx,
		`SELECT program_code, eligibility_age, enrollment_term_days FROM program_types WHERE program_code = $1`,
		programCode,
	).Scan(&program.Code, &program.EligibilityAge, &program.EnrollmentTermDays)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StatusRecordNotFound, nil
	}
	if err != nil {
		return models.StatusInternalError, fmt.Errorf("query program: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT enrollment_id, start_date, expiration_date FROM enrollments
		 WHERE participant_id = $1 AND program_code = $2`,
		participantID, programCode,
	)
	if err != nil {
		return models.StatusInternalError, fmt.Errorf("query pair enrollments: %w", err)
	}
	var pair []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		var expiration sql.Null[models.Date]
		if err := rows.Scan(&e.ID, &e.StartDate, &expiration); err != nil {
			rows.Close()
			return models.StatusInternalError, fmt.Errorf("scan pair enrollment: %w", err)
		}
		if expiration.Valid {
			e.ExpirationDate = &expiration.V
		}
		pair = append(pair, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.StatusInternalError, fmt.Errorf("iterate pair enrollments: %w", err)
	}

	dec := enrollment.Evaluate(&p, &program, pair, asOf)
	if dec.Status != models.StatusSuccess {
		return dec.Status, nil
	}

	var expiration any
	if dec.ExpirationDate != nil {
		expiration = *dec.ExpirationDate
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO enrollments (start_date, expiration_date, participant_id, program_code, created_by, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		dec.StartDate, expiration, participantID, programCode, userID, time.Now().UTC(),
	)
	if err != nil {
		return models.StatusInternalError, fmt.Errorf("insert enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.StatusInternalError, fmt.Errorf("commit enroll tx: %w", err)
	}
	return models.StatusSuccess, nil
}

func (s *Postgres) queryParticipants(ctx context.Context, query string, args ...any) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	out := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	var createdBy, updatedBy sql.NullString
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.DOB, &p.EnrollmentStatus,
		&createdBy, &p.CreatedOn, &updatedBy, &p.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = createdBy.String
	p.UpdatedBy = updatedBy.String
	return &p, nil
}

func stampCreate(p *models.Participant) {
	p.CreatedOn = time.Now().UTC()
	if p.CreatedBy == "" {
		p.CreatedBy = "system"
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
