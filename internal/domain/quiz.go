package domain

import (
	"context"
	"time"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "truefalse"
	QuestionShort     QuestionType = "short"
)

// IsValid reports whether the question type is supported.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionShort:
		return true
	}
	return false
}

// Quiz represents a quiz in the domain.
type Quiz struct {
	ID          string
	Title       string
	Description string
	// TimeLimitMinutes is nil when the quiz is untimed.
	TimeLimitMinutes *int
	// AttemptsAllowed is nil (or zero) when attempts are unlimited.
	AttemptsAllowed *int
	Published        bool
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// NewQuiz creates a new Quiz instance owned by the given user.
func NewQuiz(title, description, createdBy string) *Quiz {
	now := time.Now()
	return &Quiz{
		Title:       title,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return NewInvalidInputError("title is required")
	}
	if q.TimeLimitMinutes != nil && *q.TimeLimitMinutes <= 0 {
		return NewInvalidInputError("time_limit must be a positive number of minutes")
	}
	if q.AttemptsAllowed != nil && *q.AttemptsAllowed < 0 {
		return NewInvalidInputError("attempts_allowed must not be negative")
	}
	return nil
}

// HasAttemptLimit reports whether the quiz caps attempts per user.
// A nil or zero attempts_allowed means unlimited.
func (q *Quiz) HasAttemptLimit() bool {
	return q.AttemptsAllowed != nil && *q.AttemptsAllowed > 0
}

// Question represents one question belonging to exactly one quiz.
type Question struct {
	ID     string
	QuizID string
	Text   string
	Type   QuestionType
	// Options is the ordered choice list for mcq/truefalse questions;
	// empty for free-text questions.
	Options []string
	// CorrectAnswer is a string or a []string (multi-select), decoded
	// from its stored JSON form.
	CorrectAnswer interface{}
	Points        int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewQuestion creates a new Question instance
func NewQuestion(quizID, text string, qtype QuestionType) *Question {
	now := time.Now()
	return &Question{
		QuizID:    quizID,
		Text:      text,
		Type:      qtype,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.QuizID == "" {
		return NewInvalidInputError("quiz_id is required")
	}
	if q.Text == "" {
		return NewInvalidInputError("text is required")
	}
	if !q.Type.IsValid() {
		return NewInvalidInputError("type must be one of mcq, truefalse, short")
	}
	if q.Type != QuestionShort && len(q.Options) == 0 {
		return NewInvalidInputError("options are required for choice questions")
	}
	if q.Type == QuestionShort && len(q.Options) > 0 {
		return NewInvalidInputError("options are not allowed for free-text questions")
	}
	if len(CanonicalizeAnswer(q.CorrectAnswer)) == 0 {
		return NewInvalidInputError("correct_answer is required")
	}
	if q.Points < 0 {
		return NewInvalidInputError("points must not be negative")
	}
	return nil
}

// PointsOrDefault returns the question weight, defaulting to 1 when unset.
func (q *Question) PointsOrDefault() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// QuizRepository defines the interface for quiz persistence.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	// GetQuizByIDForUpdate reads the quiz row with a row lock so the
	// attempt quota check-then-insert is serialized per quiz. Must be
	// called inside a transaction.
	GetQuizByIDForUpdate(ctx context.Context, id string) (*Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzes(ctx context.Context, publishedOnly bool, createdBy string) ([]Quiz, error)
}

// QuestionRepository defines the interface for question persistence.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestionByID(ctx context.Context, id string) (*Question, error)
	GetQuestionsByQuizID(ctx context.Context, quizID string) ([]Question, error)
	CountQuestionsByQuizID(ctx context.Context, quizID string) (int, error)
	UpdateQuestion(ctx context.Context, question *Question) error
	DeleteQuestion(ctx context.Context, id string) error
	DeleteQuestionsByQuizID(ctx context.Context, quizID string) error
}
