package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/repository/models"
	"quizhive/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description.String,
		TimeLimitMinutes: util.NullInt64ToIntPtr(m.TimeLimitMinutes),
		AttemptsAllowed:  util.NullInt64ToIntPtr(m.AttemptsAllowed),
		Published:        m.Published != 0,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		DeletedAt:        util.NullTimeToPtr(m.DeletedAt),
	}
}

func fromDomainQuiz(q *domain.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	published := 0
	if q.Published {
		published = 1
	}
	return &models.Quiz{
		ID:               q.ID,
		Title:            q.Title,
		Description:      util.StringToNullString(q.Description),
		TimeLimitMinutes: util.IntPtrToNullInt64(q.TimeLimitMinutes),
		AttemptsAllowed:  util.IntPtrToNullInt64(q.AttemptsAllowed),
		Published:        published,
		CreatedBy:        q.CreatedBy,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
		DeletedAt:        util.TimePtrToNullTime(q.DeletedAt),
	}
}

const quizColumns = `id, title, description, time_limit_minutes, attempts_allowed, published, created_by, created_at, updated_at, deleted_at`

// CreateQuiz inserts a new quiz row.
func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	m := fromDomainQuiz(quiz)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	query := `INSERT INTO quizzes (id, title, description, time_limit_minutes, attempts_allowed, published, created_by, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.ID, m.Title, m.Description, m.TimeLimitMinutes, m.AttemptsAllowed, m.Published, m.CreatedBy, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (r *sqlxQuizRepository) getQuiz(ctx context.Context, id string, forUpdate bool) (*domain.Quiz, error) {
	var m models.Quiz
	query := fmt.Sprintf(`SELECT %s FROM quizzes WHERE id = :1 AND deleted_at IS NULL`, quizColumns)
	if forUpdate {
		query += ` FOR UPDATE`
	}

	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}
	return toDomainQuiz(&m), nil
}

// GetQuizByID retrieves a quiz by its ID.
func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	return r.getQuiz(ctx, id, false)
}

// GetQuizByIDForUpdate reads the quiz row with a row lock. The lock
// serializes concurrent attempt starts per quiz; callers must hold a
// transaction (via TransactionManager) for the lock to mean anything.
func (r *sqlxQuizRepository) GetQuizByIDForUpdate(ctx context.Context, id string) (*domain.Quiz, error) {
	return r.getQuiz(ctx, id, true)
}

// UpdateQuiz updates the mutable fields of a quiz row.
func (r *sqlxQuizRepository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	m := fromDomainQuiz(quiz)
	m.UpdatedAt = time.Now()

	query := `UPDATE quizzes SET title = :1, description = :2, time_limit_minutes = :3, attempts_allowed = :4, published = :5, updated_at = :6
	          WHERE id = :7 AND deleted_at IS NULL`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.Title, m.Description, m.TimeLimitMinutes, m.AttemptsAllowed, m.Published, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.NewQuizNotFoundError(m.ID)
	}
	return nil
}

// DeleteQuiz soft-deletes a quiz row. Cascading removal of questions
// and attempts is the service's job, inside one transaction.
func (r *sqlxQuizRepository) DeleteQuiz(ctx context.Context, id string) error {
	query := `UPDATE quizzes SET deleted_at = :1, updated_at = :2 WHERE id = :3 AND deleted_at IS NULL`

	now := time.Now()
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.NewQuizNotFoundError(id)
	}
	return nil
}

// ListQuizzes returns quizzes, optionally restricted to published ones
// and/or to one creator.
func (r *sqlxQuizRepository) ListQuizzes(ctx context.Context, publishedOnly bool, createdBy string) ([]domain.Quiz, error) {
	var (
		clauses = []string{"deleted_at IS NULL"}
		args    []interface{}
		argIdx  = 1
	)
	if publishedOnly {
		clauses = append(clauses, "published = 1")
	}
	if createdBy != "" {
		clauses = append(clauses, fmt.Sprintf("created_by = :%d", argIdx))
		args = append(args, createdBy)
		argIdx++
	}

	query := fmt.Sprintf(`SELECT %s FROM quizzes WHERE %s ORDER BY created_at DESC`,
		quizColumns, strings.Join(clauses, " AND "))

	var ms []models.Quiz
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ms, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]domain.Quiz, 0, len(ms))
	for i := range ms {
		quizzes = append(quizzes, *toDomainQuiz(&ms[i]))
	}
	return quizzes, nil
}
