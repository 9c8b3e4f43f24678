package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a []string as a JSON array in a CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	bytesToParse, err := clobBytes(value)
	if err != nil {
		return fmt.Errorf("StringSlice Scan: %w", err)
	}
	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}

	return json.Unmarshal(bytesToParse, s)
}

// JSONValue stores an arbitrary JSON value (a string or an array of
// strings in this schema) in a CLOB column. It preserves the decoded
// shape so answer comparison sees exactly what was stored.
type JSONValue struct {
	V interface{}
}

// Value implements the driver.Valuer interface
func (j JSONValue) Value() (driver.Value, error) {
	if j.V == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (j *JSONValue) Scan(value interface{}) error {
	if value == nil {
		j.V = nil
		return nil
	}

	bytesToParse, err := clobBytes(value)
	if err != nil {
		return fmt.Errorf("JSONValue Scan: %w", err)
	}
	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		j.V = nil
		return nil
	}

	return json.Unmarshal(bytesToParse, &j.V)
}

// AnswerMap stores the question-id -> answer mapping of a submission
// as a JSON object in a CLOB column. A nil map round-trips as NULL so
// unsubmitted attempts stay distinguishable from empty submissions.
type AnswerMap map[string]interface{}

// Value implements the driver.Valuer interface
func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (m *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytesToParse, err := clobBytes(value)
	if err != nil {
		return fmt.Errorf("AnswerMap Scan: %w", err)
	}
	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*m = nil
		return nil
	}

	return json.Unmarshal(bytesToParse, m)
}

func clobBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported type " + fmt.Sprintf("%T", value))
	}
}

// User represents a user row.
type User struct {
	ID           string         `db:"ID"` // ULID
	Username     string         `db:"USERNAME"`
	PasswordHash sql.NullString `db:"PASSWORD_HASH"` // bcrypt; NULL for OAuth-only accounts
	GoogleID     sql.NullString `db:"GOOGLE_ID"`
	Email        sql.NullString `db:"EMAIL"`
	Role         string         `db:"ROLE"`
	CreatedAt    time.Time      `db:"CREATED_AT"`
	UpdatedAt    time.Time      `db:"UPDATED_AT"`
	DeletedAt    sql.NullTime   `db:"DELETED_AT"`
}

func (User) TableName() string {
	return "users"
}

// Quiz represents a quiz row.
type Quiz struct {
	ID               string         `db:"ID"` // ULID
	Title            string         `db:"TITLE"`
	Description      sql.NullString `db:"DESCRIPTION"`
	TimeLimitMinutes sql.NullInt64  `db:"TIME_LIMIT_MINUTES"` // NULL means untimed
	AttemptsAllowed  sql.NullInt64  `db:"ATTEMPTS_ALLOWED"`   // NULL/0 means unlimited
	Published        int            `db:"PUBLISHED"`
	CreatedBy        string         `db:"CREATED_BY"`
	CreatedAt        time.Time      `db:"CREATED_AT"`
	UpdatedAt        time.Time      `db:"UPDATED_AT"`
	DeletedAt        sql.NullTime   `db:"DELETED_AT"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question represents a question row.
type Question struct {
	ID            string      `db:"ID"` // ULID
	QuizID        string      `db:"QUIZ_ID"`
	Text          string      `db:"TEXT"`
	QType         string      `db:"QTYPE"`
	Options       StringSlice `db:"OPTIONS"`        // JSON array CLOB; empty for free-text
	CorrectAnswer JSONValue   `db:"CORRECT_ANSWER"` // JSON string or array CLOB
	Points        int         `db:"POINTS"`
	CreatedAt     time.Time   `db:"CREATED_AT"`
	UpdatedAt     time.Time   `db:"UPDATED_AT"`
}

func (Question) TableName() string {
	return "questions"
}

// Attempt represents an attempt row.
type Attempt struct {
	ID          string        `db:"ID"` // ULID
	QuizID      string        `db:"QUIZ_ID"`
	UserID      string        `db:"USER_ID"`
	StartTime   time.Time     `db:"START_TIME"`
	SubmittedAt sql.NullTime  `db:"SUBMITTED_AT"` // NULL while in progress
	Answers     AnswerMap     `db:"ANSWERS"`      // JSON object CLOB; NULL until submission
	Score       sql.NullInt64 `db:"SCORE"`        // NULL until graded
	CreatedAt   time.Time     `db:"CREATED_AT"`
	UpdatedAt   time.Time     `db:"UPDATED_AT"`
}

func (Attempt) TableName() string {
	return "attempts"
}
