package handler

import (
	"quizhive/internal/domain"
	"quizhive/internal/service"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles the reporting and export HTTP requests.
type ReportHandler struct {
	service   service.ReportService
	validator *validation.Validator
}

// NewReportHandler creates a new ReportHandler instance.
func NewReportHandler(service service.ReportService, validator *validation.Validator) *ReportHandler {
	return &ReportHandler{service: service, validator: validator}
}

// Leaderboard godoc
// @Summary Per-quiz leaderboard
// @Description Best submitted score per user, ranked; ties break on earliest submission
// @Tags reports
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /reports/leaderboard/{quizId} [get]
func (h *ReportHandler) Leaderboard(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GetLeaderboard(c.UserContext(), caller, quizID, c.QueryInt("limit"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Analytics godoc
// @Summary Per-quiz aggregate analytics
// @Tags reports
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /reports/analytics/{quizId} [get]
func (h *ReportHandler) Analytics(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	quizID := c.Params("quizId")
	if errs := h.validator.ValidateID("quiz_id", quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GetQuizAnalytics(c.UserContext(), caller, quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UserReport godoc
// @Summary The caller's submitted-attempt report
// @Tags reports
// @Produce json
// @Success 200 {object} dto.UserReportResponse
// @Router /reports/user [get]
func (h *ReportHandler) UserReport(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	resp, err := h.service.GetUserReport(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ExportUserReport godoc
// @Summary Download the caller's report as CSV or PDF
// @Tags reports
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} middleware.ErrorResponse
// @Router /reports/user/export [get]
func (h *ReportHandler) ExportUserReport(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	switch c.Query("format") {
	case "csv":
		data, err := h.service.ExportUserReportCSV(c.UserContext(), caller)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="quiz-report.csv"`)
		return c.Send(data)
	case "pdf":
		data, err := h.service.ExportUserReportPDF(c.UserContext(), caller)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="quiz-report.pdf"`)
		return c.Send(data)
	default:
		return domain.NewInvalidInputError("format must be csv or pdf")
	}
}
