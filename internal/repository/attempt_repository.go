package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/repository/models"
	"quizhive/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func toDomainAttempt(m *models.Attempt) *domain.Attempt {
	if m == nil {
		return nil
	}
	return &domain.Attempt{
		ID:          m.ID,
		QuizID:      m.QuizID,
		UserID:      m.UserID,
		StartTime:   m.StartTime,
		SubmittedAt: util.NullTimeToPtr(m.SubmittedAt),
		Answers:     m.Answers,
		Score:       util.NullInt64ToIntPtr(m.Score),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomainAttempt(a *domain.Attempt) *models.Attempt {
	if a == nil {
		return nil
	}
	return &models.Attempt{
		ID:          a.ID,
		QuizID:      a.QuizID,
		UserID:      a.UserID,
		StartTime:   a.StartTime,
		SubmittedAt: util.TimePtrToNullTime(a.SubmittedAt),
		Answers:     a.Answers,
		Score:       util.IntPtrToNullInt64(a.Score),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

const attemptColumns = `id, quiz_id, user_id, start_time, submitted_at, answers, score, created_at, updated_at`

// CreateAttempt inserts a new in-progress attempt row.
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	m := fromDomainAttempt(attempt)
	if m.StartTime.IsZero() {
		m.StartTime = time.Now()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	query := `INSERT INTO attempts (id, quiz_id, user_id, start_time, submitted_at, answers, score, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.ID, m.QuizID, m.UserID, m.StartTime, m.SubmittedAt, m.Answers, m.Score, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetAttemptByID retrieves an attempt by its ID.
func (r *sqlxAttemptRepository) GetAttemptByID(ctx context.Context, id string) (*domain.Attempt, error) {
	var m models.Attempt
	query := fmt.Sprintf(`SELECT %s FROM attempts WHERE id = :1`, attemptColumns)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt by id: %w", err)
	}
	return toDomainAttempt(&m), nil
}

// CountAttempts counts all attempts for one (user, quiz) pair,
// submitted or not. Abandoned attempts still count against the quota.
func (r *sqlxAttemptRepository) CountAttempts(ctx context.Context, userID, quizID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attempts WHERE user_id = :1 AND quiz_id = :2`

	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, userID, quizID); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// SubmitAttempt records answers, score and submitted_at in one update.
// The submitted_at IS NULL guard makes submission a one-way transition:
// a second submit updates no rows and returns false.
func (r *sqlxAttemptRepository) SubmitAttempt(ctx context.Context, attempt *domain.Attempt) (bool, error) {
	m := fromDomainAttempt(attempt)
	m.UpdatedAt = time.Now()

	query := `UPDATE attempts SET answers = :1, score = :2, submitted_at = :3, updated_at = :4
	          WHERE id = :5 AND submitted_at IS NULL`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.Answers, m.Score, m.SubmittedAt, m.UpdatedAt, m.ID)
	if err != nil {
		return false, fmt.Errorf("failed to submit attempt: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for submit: %w", err)
	}
	return rows > 0, nil
}

// UpdateScore overwrites the score unconditionally (manual grading).
func (r *sqlxAttemptRepository) UpdateScore(ctx context.Context, attemptID string, score int) error {
	query := `UPDATE attempts SET score = :1, updated_at = :2 WHERE id = :3`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, score, time.Now(), attemptID)
	if err != nil {
		return fmt.Errorf("failed to update attempt score: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.NewAttemptNotFoundError(attemptID)
	}
	return nil
}

// GetAttemptsByUserID returns a user's attempts, newest first,
// optionally restricted to submitted ones (user-facing reads).
func (r *sqlxAttemptRepository) GetAttemptsByUserID(ctx context.Context, userID string, submittedOnly bool) ([]domain.Attempt, error) {
	query := fmt.Sprintf(`SELECT %s FROM attempts WHERE user_id = :1`, attemptColumns)
	if submittedOnly {
		query += ` AND submitted_at IS NOT NULL`
	}
	query += ` ORDER BY start_time DESC`

	var ms []models.Attempt
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ms, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get attempts by user id: %w", err)
	}

	attempts := make([]domain.Attempt, 0, len(ms))
	for i := range ms {
		attempts = append(attempts, *toDomainAttempt(&ms[i]))
	}
	return attempts, nil
}

// GetAttemptsByQuizID returns every attempt for one quiz, newest first.
func (r *sqlxAttemptRepository) GetAttemptsByQuizID(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	query := fmt.Sprintf(`SELECT %s FROM attempts WHERE quiz_id = :1 ORDER BY start_time DESC`, attemptColumns)

	var ms []models.Attempt
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ms, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get attempts by quiz id: %w", err)
	}

	attempts := make([]domain.Attempt, 0, len(ms))
	for i := range ms {
		attempts = append(attempts, *toDomainAttempt(&ms[i]))
	}
	return attempts, nil
}

// DeleteAttemptsByQuizID removes all attempts of one quiz; used by the
// cascading quiz delete.
func (r *sqlxAttemptRepository) DeleteAttemptsByQuizID(ctx context.Context, quizID string) error {
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM attempts WHERE quiz_id = :1`, quizID); err != nil {
		return fmt.Errorf("failed to delete attempts for quiz: %w", err)
	}
	return nil
}
