package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/middleware"
	"quizhive/internal/util"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAttemptService mocks service.AttemptService.
type MockAttemptService struct {
	mock.Mock
}

func (m *MockAttemptService) Start(ctx context.Context, caller domain.Identity, quizID string) (*dto.StartAttemptResponse, error) {
	args := m.Called(ctx, caller, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StartAttemptResponse), args.Error(1)
}

func (m *MockAttemptService) Submit(ctx context.Context, caller domain.Identity, attemptID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	args := m.Called(ctx, caller, attemptID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttemptResponse), args.Error(1)
}

func (m *MockAttemptService) OverrideScore(ctx context.Context, caller domain.Identity, attemptID string, req *dto.GradeOverrideRequest) (*dto.AttemptResponse, error) {
	args := m.Called(ctx, caller, attemptID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttemptResponse), args.Error(1)
}

func (m *MockAttemptService) GetMyAttempts(ctx context.Context, caller domain.Identity) (*dto.AttemptListResponse, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttemptListResponse), args.Error(1)
}

func (m *MockAttemptService) GetAttempt(ctx context.Context, caller domain.Identity, attemptID string) (*dto.AttemptDetailResponse, error) {
	args := m.Called(ctx, caller, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttemptDetailResponse), args.Error(1)
}

func (m *MockAttemptService) GetQuizAttempts(ctx context.Context, caller domain.Identity, quizID string) (*dto.QuizAttemptsResponse, error) {
	args := m.Called(ctx, caller, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuizAttemptsResponse), args.Error(1)
}

// injectIdentity fakes the session middleware for handler tests.
func injectIdentity(identity domain.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("identity", identity)
		return c.Next()
	}
}

func newAttemptTestApp(svc *MockAttemptService, identity domain.Identity) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	h := NewAttemptHandler(svc, validation.NewValidator())

	app.Use(injectIdentity(identity))
	app.Post("/api/attempts/start/:quizId", h.Start)
	app.Post("/api/attempts/submit/:attemptId", h.Submit)
	app.Put("/api/attempts/:attemptId/grade", h.OverrideGrade)
	app.Get("/api/attempts", h.ListMine)
	return app
}

func student() domain.Identity {
	return domain.Identity{UserID: "user1", Username: "alice", Role: domain.RoleStudent}
}

func TestAttemptHandler_Start_Created(t *testing.T) {
	svc := new(MockAttemptService)
	app := newAttemptTestApp(svc, student())

	quizID := util.NewULID()
	svc.On("Start", mock.Anything, student(), quizID).Return(&dto.StartAttemptResponse{
		ID: util.NewULID(), QuizID: quizID, StartTime: time.Now(),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/attempts/start/"+quizID, nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body dto.StartAttemptResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, quizID, body.QuizID)
}

func TestAttemptHandler_Start_QuotaExceeded(t *testing.T) {
	svc := new(MockAttemptService)
	app := newAttemptTestApp(svc, student())

	quizID := util.NewULID()
	svc.On("Start", mock.Anything, student(), quizID).Return(nil, domain.NewQuotaExceededError(3))

	req := httptest.NewRequest(http.MethodPost, "/api/attempts/start/"+quizID, nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), string(domain.CodeQuotaExceeded))
}

func TestAttemptHandler_Start_BadQuizID(t *testing.T) {
	svc := new(MockAttemptService)
	app := newAttemptTestApp(svc, student())

	req := httptest.NewRequest(http.MethodPost, "/api/attempts/start/not-a-ulid", nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptHandler_Submit_Success(t *testing.T) {
	svc := new(MockAttemptService)
	app := newAttemptTestApp(svc, student())

	attemptID := util.NewULID()
	score := 3
	now := time.Now()
	svc.On("Submit", mock.Anything, student(), attemptID, mock.AnythingOfType("*dto.SubmitAttemptRequest")).
		Return(&dto.AttemptResponse{ID: attemptID, Score: &score, SubmittedAt: &now}, nil)

	payload, _ := json.Marshal(dto.SubmitAttemptRequest{Answers: map[string]interface{}{"q1": "Paris"}})
	req := httptest.NewRequest(http.MethodPost, "/api/attempts/submit/"+attemptID, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.AttemptResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, *body.Score)
}

func TestAttemptHandler_Submit_TimeLimitExceeded(t *testing.T) {
	svc := new(MockAttemptService)
	app := newAttemptTestApp(svc, student())

	attemptID := util.NewULID()
	svc.On("Submit", mock.Anything, student(), attemptID, mock.AnythingOfType("*dto.SubmitAttemptRequest")).
		Return(nil, domain.NewTimeLimitExceededError(10))

	payload, _ := json.Marshal(dto.SubmitAttemptRequest{Answers: map[string]interface{}{}})
	req := httptest.NewRequest(http.MethodPost, "/api/attempts/submit/"+attemptID, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), string(domain.CodeTimeLimitExceeded))
}

func TestAttemptHandler_Submit_MissingAnswers(t *testing.T) {
	svc := new(MockAttemptService)
	app := newAttemptTestApp(svc, student())

	attemptID := util.NewULID()
	req := httptest.NewRequest(http.MethodPost, "/api/attempts/submit/"+attemptID, bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptHandler_OverrideGrade(t *testing.T) {
	svc := new(MockAttemptService)
	grader := domain.Identity{UserID: "teacher1", Username: "prof", Role: domain.RoleTeacher}
	app := newAttemptTestApp(svc, grader)

	attemptID := util.NewULID()
	score := 8
	svc.On("OverrideScore", mock.Anything, grader, attemptID, mock.AnythingOfType("*dto.GradeOverrideRequest")).
		Return(&dto.AttemptResponse{ID: attemptID, Score: &score}, nil)

	payload, _ := json.Marshal(dto.GradeOverrideRequest{Score: &score})
	req := httptest.NewRequest(http.MethodPut, "/api/attempts/"+attemptID+"/grade", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAttemptHandler_ListMine(t *testing.T) {
	svc := new(MockAttemptService)
	app := newAttemptTestApp(svc, student())

	svc.On("GetMyAttempts", mock.Anything, student()).Return(&dto.AttemptListResponse{Total: 0, Attempts: []dto.AttemptResponse{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/attempts", nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
