package dto

import "time"

// CreateQuizRequest is the body for creating a quiz.
// @Description Request body for creating a quiz
type CreateQuizRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// TimeLimitMinutes of nil means no time limit.
	TimeLimitMinutes *int `json:"time_limit_minutes"`
	// AttemptsAllowed of nil or 0 means unlimited attempts.
	AttemptsAllowed *int `json:"attempts_allowed"`
	Published       bool `json:"published"`
}

// UpdateQuizRequest is the body for updating a quiz. Fields mirror
// CreateQuizRequest; the whole record is replaced.
type UpdateQuizRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	TimeLimitMinutes *int   `json:"time_limit_minutes"`
	AttemptsAllowed  *int   `json:"attempts_allowed"`
	Published        bool   `json:"published"`
}

// QuizResponse represents a quiz in API responses.
// @Description Quiz information
type QuizResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`
	AttemptsAllowed  *int      `json:"attempts_allowed,omitempty"`
	Published        bool      `json:"published"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// QuizListResponse wraps a list of quizzes.
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
	Total   int            `json:"total"`
}

// QuestionRequest is the body for creating or updating a question.
// @Description Request body for a question
type QuestionRequest struct {
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
	// CorrectAnswer is a string or an array of strings.
	CorrectAnswer interface{} `json:"correct_answer"`
	Points        int         `json:"points"`
}

// QuestionResponse represents a question in API responses. The correct
// answer is only included for teacher/staff callers.
type QuestionResponse struct {
	ID            string      `json:"id"`
	QuizID        string      `json:"quiz_id"`
	Text          string      `json:"text"`
	Type          string      `json:"type"`
	Options       []string    `json:"options,omitempty"`
	CorrectAnswer interface{} `json:"correct_answer,omitempty"`
	Points        int         `json:"points"`
}

// QuestionListResponse wraps a quiz's questions.
type QuestionListResponse struct {
	QuizID    string             `json:"quiz_id"`
	Questions []QuestionResponse `json:"questions"`
	Total     int                `json:"total"`
}
