package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxQuestionRepository implements domain.QuestionRepository using sqlx.
type sqlxQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionRepository creates a new instance of sqlxQuestionRepository.
func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &sqlxQuestionRepository{db: db}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:            m.ID,
		QuizID:        m.QuizID,
		Text:          m.Text,
		Type:          domain.QuestionType(m.QType),
		Options:       m.Options,
		CorrectAnswer: m.CorrectAnswer.V,
		Points:        m.Points,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromDomainQuestion(q *domain.Question) *models.Question {
	if q == nil {
		return nil
	}
	return &models.Question{
		ID:            q.ID,
		QuizID:        q.QuizID,
		Text:          q.Text,
		QType:         string(q.Type),
		Options:       models.StringSlice(q.Options),
		CorrectAnswer: models.JSONValue{V: q.CorrectAnswer},
		Points:        q.Points,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

const questionColumns = `id, quiz_id, text, qtype, options, correct_answer, points, created_at, updated_at`

// CreateQuestion inserts a new question row.
func (r *sqlxQuestionRepository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	m := fromDomainQuestion(question)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	query := `INSERT INTO questions (id, quiz_id, text, qtype, options, correct_answer, points, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.ID, m.QuizID, m.Text, m.QType, m.Options, m.CorrectAnswer, m.Points, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// GetQuestionByID retrieves a question by its ID.
func (r *sqlxQuestionRepository) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	var m models.Question
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE id = :1`, questionColumns)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question by id: %w", err)
	}
	return toDomainQuestion(&m), nil
}

// GetQuestionsByQuizID returns all questions of one quiz in creation order.
func (r *sqlxQuestionRepository) GetQuestionsByQuizID(ctx context.Context, quizID string) ([]domain.Question, error) {
	var ms []models.Question
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE quiz_id = :1 ORDER BY created_at`, questionColumns)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ms, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get questions by quiz id: %w", err)
	}

	questions := make([]domain.Question, 0, len(ms))
	for i := range ms {
		questions = append(questions, *toDomainQuestion(&ms[i]))
	}
	return questions, nil
}

// CountQuestionsByQuizID counts the questions of one quiz.
func (r *sqlxQuestionRepository) CountQuestionsByQuizID(ctx context.Context, quizID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM questions WHERE quiz_id = :1`

	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, quizID); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// UpdateQuestion updates the mutable fields of a question row.
func (r *sqlxQuestionRepository) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	m := fromDomainQuestion(question)
	m.UpdatedAt = time.Now()

	query := `UPDATE questions SET text = :1, qtype = :2, options = :3, correct_answer = :4, points = :5, updated_at = :6
	          WHERE id = :7`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.Text, m.QType, m.Options, m.CorrectAnswer, m.Points, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("Question not found with ID: %s", m.ID))
	}
	return nil
}

// DeleteQuestion removes a question row.
func (r *sqlxQuestionRepository) DeleteQuestion(ctx context.Context, id string) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM questions WHERE id = :1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("Question not found with ID: %s", id))
	}
	return nil
}

// DeleteQuestionsByQuizID removes all questions of one quiz; used by
// the cascading quiz delete.
func (r *sqlxQuestionRepository) DeleteQuestionsByQuizID(ctx context.Context, quizID string) error {
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM questions WHERE quiz_id = :1`, quizID); err != nil {
		return fmt.Errorf("failed to delete questions for quiz: %w", err)
	}
	return nil
}
