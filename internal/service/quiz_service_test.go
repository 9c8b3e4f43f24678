package service

import (
	"context"
	"testing"

	"quizhive/internal/domain"
	"quizhive/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func teacherIdentity(userID string) domain.Identity {
	return domain.Identity{UserID: userID, Username: "teacher-" + userID, Role: domain.RoleTeacher}
}

func newQuizServiceForTest(quizRepo *MockQuizRepository, questionRepo *MockQuestionRepository, attemptRepo *MockAttemptRepository) QuizService {
	return NewQuizService(quizRepo, questionRepo, attemptRepo, passthroughTxManager{})
}

func TestCreateQuiz_Success(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := newQuizServiceForTest(quizRepo, new(MockQuestionRepository), new(MockAttemptRepository))

	quizRepo.On("CreateQuiz", mock.Anything, mock.AnythingOfType("*domain.Quiz")).Return(nil)

	resp, err := svc.CreateQuiz(context.Background(), teacherIdentity("teacher1"), &dto.CreateQuizRequest{
		Title:            "Capitals",
		TimeLimitMinutes: intPtr(10),
		AttemptsAllowed:  intPtr(3),
		Published:        true,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "teacher1", resp.CreatedBy)
	assert.Equal(t, 3, *resp.AttemptsAllowed)
}

func TestCreateQuiz_InvalidTimeLimit(t *testing.T) {
	svc := newQuizServiceForTest(new(MockQuizRepository), new(MockQuestionRepository), new(MockAttemptRepository))

	_, err := svc.CreateQuiz(context.Background(), teacherIdentity("teacher1"), &dto.CreateQuizRequest{
		Title:            "Capitals",
		TimeLimitMinutes: intPtr(0),
	})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestUpdateQuiz_OnlyCreatorOrAdmin(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := newQuizServiceForTest(quizRepo, new(MockQuestionRepository), new(MockAttemptRepository))

	quiz := &domain.Quiz{ID: "quiz1", Title: "Capitals", CreatedBy: "teacher1", Published: true}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)

	_, err := svc.UpdateQuiz(context.Background(), teacherIdentity("other"), "quiz1", &dto.UpdateQuizRequest{Title: "Hijacked"})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeForbidden, domainErr.Code)
	quizRepo.AssertNotCalled(t, "UpdateQuiz", mock.Anything, mock.Anything)
}

func TestDeleteQuiz_Cascades(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, attemptRepo)

	quiz := &domain.Quiz{ID: "quiz1", Title: "Capitals", CreatedBy: "teacher1"}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)
	attemptRepo.On("DeleteAttemptsByQuizID", mock.Anything, "quiz1").Return(nil)
	questionRepo.On("DeleteQuestionsByQuizID", mock.Anything, "quiz1").Return(nil)
	quizRepo.On("DeleteQuiz", mock.Anything, "quiz1").Return(nil)

	err := svc.DeleteQuiz(context.Background(), teacherIdentity("teacher1"), "quiz1")

	assert.NoError(t, err)
	quizRepo.AssertExpectations(t)
	questionRepo.AssertExpectations(t)
	attemptRepo.AssertExpectations(t)
}

func TestListQuizzes_StudentSeesPublishedOnly(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := newQuizServiceForTest(quizRepo, new(MockQuestionRepository), new(MockAttemptRepository))

	published := []domain.Quiz{{ID: "quiz1", Title: "Capitals", Published: true}}
	quizRepo.On("ListQuizzes", mock.Anything, true, "").Return(published, nil)

	resp, err := svc.ListQuizzes(context.Background(), studentIdentity("user1"))

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	quizRepo.AssertExpectations(t)
}

func TestCreateQuestion_Validation(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := newQuizServiceForTest(quizRepo, new(MockQuestionRepository), new(MockAttemptRepository))

	quiz := &domain.Quiz{ID: "quiz1", Title: "Capitals", CreatedBy: "teacher1"}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)

	// mcq without options is rejected.
	_, err := svc.CreateQuestion(context.Background(), teacherIdentity("teacher1"), "quiz1", &dto.QuestionRequest{
		Text: "Capital of France?", Type: "mcq", CorrectAnswer: "Paris",
	})
	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestGetQuestions_StripsAnswersForStudents(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, new(MockAttemptRepository))

	quiz := &domain.Quiz{ID: "quiz1", Title: "Capitals", CreatedBy: "teacher1", Published: true}
	questions := []domain.Question{
		{ID: "q1", QuizID: "quiz1", Text: "Capital of France?", Type: domain.QuestionMCQ, Options: []string{"Paris", "London"}, CorrectAnswer: "Paris"},
	}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)
	questionRepo.On("GetQuestionsByQuizID", mock.Anything, "quiz1").Return(questions, nil)

	resp, err := svc.GetQuestions(context.Background(), studentIdentity("user1"), "quiz1")

	assert.NoError(t, err)
	assert.Len(t, resp.Questions, 1)
	assert.Nil(t, resp.Questions[0].CorrectAnswer)

	// The creator gets the answers back.
	resp, err = svc.GetQuestions(context.Background(), teacherIdentity("teacher1"), "quiz1")
	assert.NoError(t, err)
	assert.Equal(t, "Paris", resp.Questions[0].CorrectAnswer)
}
