package handler

import (
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/middleware"
	"quizhive/internal/service"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AttemptHandler handles attempt lifecycle HTTP requests.
type AttemptHandler struct {
	service   service.AttemptService
	validator *validation.Validator
}

// NewAttemptHandler creates a new AttemptHandler instance.
func NewAttemptHandler(service service.AttemptService, validator *validation.Validator) *AttemptHandler {
	return &AttemptHandler{service: service, validator: validator}
}

func callerIdentity(c *fiber.Ctx) (domain.Identity, error) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, domain.NewUnauthorizedError("not logged in")
	}
	return identity, nil
}

// Start godoc
// @Summary Start a quiz attempt
// @Description Creates a new in-progress attempt, enforcing the quiz's attempt quota
// @Tags attempts
// @Accept json
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Success 201 {object} dto.StartAttemptResponse
// @Failure 403 {object} middleware.ErrorResponse "Attempt quota exhausted"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /attempts/start/{quizId} [post]
func (h *AttemptHandler) Start(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Start(c.UserContext(), caller, quizID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Submit godoc
// @Summary Submit a quiz attempt
// @Description Grades the submitted answers and closes the attempt; rejected after the quiz's time limit
// @Tags attempts
// @Accept json
// @Produce json
// @Param attemptId path string true "Attempt ID"
// @Param request body dto.SubmitAttemptRequest true "Answers keyed by question id"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse "Time limit exceeded"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /attempts/submit/{attemptId} [post]
func (h *AttemptHandler) Submit(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	attemptID := c.Params("attemptId")
	if errs := h.validator.ValidateID("attempt_id", attemptID); len(errs) > 0 {
		return errs
	}

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateSubmitAttemptRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Submit(c.UserContext(), caller, attemptID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// OverrideGrade godoc
// @Summary Manually override an attempt's score
// @Description Overwrites the auto-graded score with a manually assigned one
// @Tags attempts
// @Accept json
// @Produce json
// @Param attemptId path string true "Attempt ID"
// @Param request body dto.GradeOverrideRequest true "New score"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /attempts/{attemptId}/grade [put]
func (h *AttemptHandler) OverrideGrade(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	attemptID := c.Params("attemptId")
	if errs := h.validator.ValidateID("attempt_id", attemptID); len(errs) > 0 {
		return errs
	}

	var req dto.GradeOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.OverrideScore(c.UserContext(), caller, attemptID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListMine godoc
// @Summary List the caller's submitted attempts
// @Tags attempts
// @Produce json
// @Success 200 {object} dto.AttemptListResponse
// @Router /attempts [get]
func (h *AttemptHandler) ListMine(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	resp, err := h.service.GetMyAttempts(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get one attempt with quiz and user context
// @Tags attempts
// @Produce json
// @Param attemptId path string true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /attempts/{attemptId} [get]
func (h *AttemptHandler) Get(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	attemptID := c.Params("attemptId")
	if errs := h.validator.ValidateID("attempt_id", attemptID); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GetAttempt(c.UserContext(), caller, attemptID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListByQuiz godoc
// @Summary List all attempts for one quiz
// @Tags attempts
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} dto.QuizAttemptsResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /attempts/quiz/{quizId} [get]
func (h *AttemptHandler) ListByQuiz(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GetQuizAttempts(c.UserContext(), caller, quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
