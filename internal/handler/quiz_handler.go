package handler

import (
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/service"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz and question management HTTP requests.
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance.
func NewQuizHandler(service service.QuizService, validator *validation.Validator) *QuizHandler {
	return &QuizHandler{service: service, validator: validator}
}

// List godoc
// @Summary List quizzes visible to the caller
// @Tags quizzes
// @Produce json
// @Success 200 {object} dto.QuizListResponse
// @Router /quizzes [get]
func (h *QuizHandler) List(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	resp, err := h.service.ListQuizzes(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get one quiz
// @Tags quizzes
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId} [get]
func (h *QuizHandler) Get(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GetQuiz(c.UserContext(), caller, quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Create godoc
// @Summary Create a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Quiz fields"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) Create(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateCreateQuizRequest(req.Title); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.CreateQuiz(c.UserContext(), caller, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update godoc
// @Summary Update a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Param request body dto.UpdateQuizRequest true "Quiz fields"
// @Success 200 {object} dto.QuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId} [put]
func (h *QuizHandler) Update(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateCreateQuizRequest(req.Title); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.UpdateQuiz(c.UserContext(), caller, quizID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a quiz and everything under it
// @Tags quizzes
// @Param quizId path string true "Quiz ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId} [delete]
func (h *QuizHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	if err := h.service.DeleteQuiz(c.UserContext(), caller, quizID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateQuestion godoc
// @Summary Add a question to a quiz
// @Tags questions
// @Accept json
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Param request body dto.QuestionRequest true "Question fields"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId}/questions [post]
func (h *QuizHandler) CreateQuestion(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.CreateQuestion(c.UserContext(), caller, quizID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListQuestions godoc
// @Summary List a quiz's questions
// @Description Correct answers are included only for callers who can manage the quiz
// @Tags questions
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} dto.QuestionListResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId}/questions [get]
func (h *QuizHandler) ListQuestions(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GetQuestions(c.UserContext(), caller, quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Param questionId path string true "Question ID"
// @Param request body dto.QuestionRequest true "Question fields"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{questionId} [put]
func (h *QuizHandler) UpdateQuestion(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	questionID := c.Params("questionId")
	if errs := h.validator.ValidateID("question_id", questionID); len(errs) > 0 {
		return errs
	}

	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.UpdateQuestion(c.UserContext(), caller, questionID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Param questionId path string true "Question ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{questionId} [delete]
func (h *QuizHandler) DeleteQuestion(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	questionID := c.Params("questionId")
	if errs := h.validator.ValidateID("question_id", questionID); len(errs) > 0 {
		return errs
	}

	if err := h.service.DeleteQuestion(c.UserContext(), caller, questionID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
