package domain

import (
	"context"
	"time"
)

// Attempt represents one instance of a user taking a quiz, tracked
// from start to (optional) submission.
type Attempt struct {
	ID     string
	QuizID string
	UserID string
	// StartTime is set once at creation and is the authoritative basis
	// for time-limit enforcement; client-reported elapsed time is
	// never trusted.
	StartTime time.Time
	// SubmittedAt is nil while the attempt is in progress. Submission
	// is a one-way transition.
	SubmittedAt *time.Time
	// Answers maps question id to the submitted answer (a string or an
	// array of strings). Nil until submission.
	Answers map[string]interface{}
	// Score is nil until auto-grading at submission or a manual
	// override sets it.
	Score     *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAttempt creates a new in-progress Attempt.
func NewAttempt(quizID, userID string) *Attempt {
	now := time.Now()
	return &Attempt{
		QuizID:    quizID,
		UserID:    userID,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsSubmitted reports whether the one-way submission transition happened.
func (a *Attempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// ElapsedMinutes returns the fractional minutes since the attempt started.
func (a *Attempt) ElapsedMinutes(now time.Time) float64 {
	return now.Sub(a.StartTime).Minutes()
}

// LeaderboardEntry is one row of the per-quiz ranked list.
type LeaderboardEntry struct {
	UserID      string
	Username    string
	Score       int
	SubmittedAt time.Time
}

// QuizAnalytics aggregates submitted attempts for one quiz.
type QuizAnalytics struct {
	QuizID       string
	AttemptCount int
	AverageScore float64
}

// UserReportRow is one submitted attempt joined with its quiz for the
// per-user report.
type UserReportRow struct {
	AttemptID      string
	QuizID         string
	QuizTitle      string
	Score          int
	TotalQuestions int
	StartTime      time.Time
	SubmittedAt    time.Time
}

// AttemptRepository defines the interface for attempt persistence.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	GetAttemptByID(ctx context.Context, id string) (*Attempt, error)
	// CountAttempts counts attempts for one (user, quiz) pair
	// regardless of submission status; abandoned attempts still count
	// against the quota.
	CountAttempts(ctx context.Context, userID, quizID string) (int, error)
	// SubmitAttempt writes answers, score and submitted_at in one
	// update guarded by submitted_at IS NULL. It returns false when no
	// row was updated (already submitted).
	SubmitAttempt(ctx context.Context, attempt *Attempt) (bool, error)
	// UpdateScore overwrites the score unconditionally (manual grading).
	UpdateScore(ctx context.Context, attemptID string, score int) error
	GetAttemptsByUserID(ctx context.Context, userID string, submittedOnly bool) ([]Attempt, error)
	GetAttemptsByQuizID(ctx context.Context, quizID string) ([]Attempt, error)
	DeleteAttemptsByQuizID(ctx context.Context, quizID string) error
}

// ReportRepository defines the read paths for reporting. These are
// pure joins/filters over attempts, quizzes, questions and users,
// restricted to submitted attempts.
type ReportRepository interface {
	GetLeaderboard(ctx context.Context, quizID string, limit int) ([]LeaderboardEntry, error)
	GetQuizAnalytics(ctx context.Context, quizID string) (*QuizAnalytics, error)
	GetUserReport(ctx context.Context, userID string) ([]UserReportRow, error)
}

// TransactionManager runs a function within one storage transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
