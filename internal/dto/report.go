package dto

import "time"

// LeaderboardEntryResponse is one ranked row for a quiz. Rows are
// ordered by score descending, earliest submission first on ties.
type LeaderboardEntryResponse struct {
	Rank        int       `json:"rank"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// LeaderboardResponse is the per-quiz ranked list.
// @Description Per-quiz leaderboard
type LeaderboardResponse struct {
	QuizID  string                     `json:"quiz_id"`
	Entries []LeaderboardEntryResponse `json:"entries"`
}

// AnalyticsResponse aggregates submitted attempts for one quiz.
// @Description Per-quiz aggregate analytics
type AnalyticsResponse struct {
	QuizID       string  `json:"quiz_id"`
	AttemptCount int     `json:"attempt_count"`
	AverageScore float64 `json:"average_score"`
}

// UserReportRowResponse is one submitted attempt in the caller's report.
type UserReportRowResponse struct {
	AttemptID      string    `json:"attempt_id"`
	QuizID         string    `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// UserReportResponse is the caller's submitted-attempt report.
// @Description Per-user report of submitted attempts
type UserReportResponse struct {
	UserID string                  `json:"user_id"`
	Rows   []UserReportRowResponse `json:"rows"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
