package dto

import "time"

// StartAttemptResponse is returned when a new attempt is created.
// @Description Newly created attempt
type StartAttemptResponse struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quiz_id"`
	StartTime time.Time `json:"start_time"`
}

// SubmitAttemptRequest carries the answers mapping for submission.
// Values are strings or arrays of strings keyed by question id.
// @Description Request body for submitting an attempt
type SubmitAttemptRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

// GradeOverrideRequest carries a manually assigned score.
// @Description Request body for a manual grade override
type GradeOverrideRequest struct {
	Score *int `json:"score"`
}

// AttemptResponse represents an attempt in API responses.
// @Description Attempt state
type AttemptResponse struct {
	ID          string                 `json:"id"`
	QuizID      string                 `json:"quiz_id"`
	UserID      string                 `json:"user_id"`
	StartTime   time.Time              `json:"start_time"`
	SubmittedAt *time.Time             `json:"submitted_at,omitempty"`
	Answers     map[string]interface{} `json:"answers,omitempty"`
	Score       *int                   `json:"score,omitempty"`
}

// AttemptDetailResponse is an attempt joined with its quiz title and
// the attempting user's username, for teacher/staff review.
type AttemptDetailResponse struct {
	AttemptResponse
	QuizTitle string `json:"quiz_title"`
	Username  string `json:"username"`
}

// AttemptListResponse wraps a list of attempts.
type AttemptListResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
	Total    int               `json:"total"`
}

// QuizAttemptsResponse lists all attempts for one quiz with usernames.
type QuizAttemptsResponse struct {
	QuizID   string                  `json:"quiz_id"`
	Attempts []AttemptDetailResponse `json:"attempts"`
	Total    int                     `json:"total"`
}
