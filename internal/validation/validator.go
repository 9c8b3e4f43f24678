package validation

import (
	"strings"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/util"
)

const (
	maxTitleLength    = 200
	maxUsernameLength = 50
	maxAnswerCount    = 200
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID validates a path id parameter as a ULID.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !util.IsULID(id) {
		errors = append(errors, domain.NewInvalidFormatError(field, id))
	}
	return errors
}

// ValidateRegisterRequest validates the registration request
func (v *Validator) ValidateRegisterRequest(req *dto.RegisterRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Username) == "" {
		errors = append(errors, domain.NewMissingFieldError("username"))
	} else if len(req.Username) > maxUsernameLength {
		errors = append(errors, domain.NewOutOfRangeError("username", len(req.Username), 1, maxUsernameLength))
	}

	if req.Password == "" {
		errors = append(errors, domain.NewMissingFieldError("password"))
	} else if len(req.Password) < 8 {
		errors = append(errors, domain.NewOutOfRangeError("password", len(req.Password), 8, 72))
	} else if len(req.Password) > 72 {
		// bcrypt truncates beyond 72 bytes
		errors = append(errors, domain.NewOutOfRangeError("password", len(req.Password), 8, 72))
	}

	return errors
}

// ValidateCreateQuizRequest validates the quiz creation/update fields
func (v *Validator) ValidateCreateQuizRequest(title string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(title) == "" {
		errors = append(errors, domain.NewMissingFieldError("title"))
	} else if len(title) > maxTitleLength {
		errors = append(errors, domain.NewOutOfRangeError("title", len(title), 1, maxTitleLength))
	}
	return errors
}

// ValidateSubmitAttemptRequest validates the submission body shape.
// Answer values must be strings or arrays of strings; grading rules
// beyond shape live in the domain.
func (v *Validator) ValidateSubmitAttemptRequest(req *dto.SubmitAttemptRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if req == nil || req.Answers == nil {
		errors = append(errors, domain.NewMissingFieldError("answers"))
		return errors
	}
	if len(req.Answers) > maxAnswerCount {
		errors = append(errors, domain.NewOutOfRangeError("answers", len(req.Answers), 0, maxAnswerCount))
	}

	for questionID, value := range req.Answers {
		if !isValidAnswerValue(value) {
			errors = append(errors, domain.NewInvalidFormatError("answers."+questionID, value))
		}
	}
	return errors
}

// isValidAnswerValue accepts JSON scalars and flat arrays of scalars.
func isValidAnswerValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string, bool, float64, int:
		return true
	case []interface{}:
		for _, elem := range v {
			switch elem.(type) {
			case string, bool, float64, int:
			default:
				return false
			}
		}
		return true
	case []string:
		return true
	}
	return false
}
