package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quizhive/internal/domain"

	"github.com/jmoiron/sqlx"
)

// sqlxReportRepository implements domain.ReportRepository. The read
// paths are plain joins over attempts, quizzes, questions and users,
// restricted to submitted attempts.
type sqlxReportRepository struct {
	db *sqlx.DB
}

// NewSQLXReportRepository creates a new instance of sqlxReportRepository.
func NewSQLXReportRepository(db *sqlx.DB) domain.ReportRepository {
	return &sqlxReportRepository{db: db}
}

// GetLeaderboard returns each user's best submitted score on one quiz,
// ranked by score descending with earliest submission winning ties.
func (r *sqlxReportRepository) GetLeaderboard(ctx context.Context, quizID string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	// ROW_NUMBER keeps one row per user: their best score, earliest
	// submission first on equal scores.
	query := `SELECT user_id, username, score, submitted_at FROM (
	            SELECT a.user_id, u.username, a.score, a.submitted_at,
	                   ROW_NUMBER() OVER (PARTITION BY a.user_id ORDER BY a.score DESC, a.submitted_at ASC) AS rn
	            FROM attempts a
	            JOIN users u ON a.user_id = u.id
	            WHERE a.quiz_id = :1 AND a.submitted_at IS NOT NULL AND a.score IS NOT NULL
	          ) WHERE rn = 1
	          ORDER BY score DESC, submitted_at ASC
	          FETCH FIRST :2 ROWS ONLY`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Score, &e.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard rows: %w", err)
	}
	return entries, nil
}

// GetQuizAnalytics aggregates submitted attempts for one quiz.
func (r *sqlxReportRepository) GetQuizAnalytics(ctx context.Context, quizID string) (*domain.QuizAnalytics, error) {
	query := `SELECT COUNT(*), COALESCE(AVG(score), 0)
	          FROM attempts
	          WHERE quiz_id = :1 AND submitted_at IS NOT NULL AND score IS NOT NULL`

	analytics := &domain.QuizAnalytics{QuizID: quizID}
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz analytics: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&analytics.AttemptCount, &analytics.AverageScore); err != nil {
			return nil, fmt.Errorf("failed to scan quiz analytics: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quiz analytics: %w", err)
	}
	return analytics, nil
}

// GetUserReport returns one user's submitted attempts joined with quiz
// titles and question counts, newest submission first.
func (r *sqlxReportRepository) GetUserReport(ctx context.Context, userID string) ([]domain.UserReportRow, error) {
	query := `SELECT a.id, a.quiz_id, q.title, a.score, a.start_time, a.submitted_at,
	                 (SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = a.quiz_id) AS total_questions
	          FROM attempts a
	          JOIN quizzes q ON a.quiz_id = q.id
	          WHERE a.user_id = :1 AND a.submitted_at IS NOT NULL
	          ORDER BY a.submitted_at DESC`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user report: %w", err)
	}
	defer rows.Close()

	var report []domain.UserReportRow
	for rows.Next() {
		var (
			rrow        domain.UserReportRow
			score       sql.NullInt64
			submittedAt time.Time
		)
		if err := rows.Scan(&rrow.AttemptID, &rrow.QuizID, &rrow.QuizTitle, &score, &rrow.StartTime, &submittedAt, &rrow.TotalQuestions); err != nil {
			return nil, fmt.Errorf("failed to scan user report row: %w", err)
		}
		if score.Valid {
			rrow.Score = int(score.Int64)
		}
		rrow.SubmittedAt = submittedAt
		report = append(report, rrow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user report rows: %w", err)
	}
	return report, nil
}
