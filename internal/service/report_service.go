package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"quizhive/internal/cache"
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultLeaderboardLimit = 50
	leaderboardCacheTTL     = 5 * time.Minute
)

// ReportService defines the reporting reads and exports. All of them
// see submitted attempts only.
type ReportService interface {
	GetLeaderboard(ctx context.Context, caller domain.Identity, quizID string, limit int) (*dto.LeaderboardResponse, error)
	GetQuizAnalytics(ctx context.Context, caller domain.Identity, quizID string) (*dto.AnalyticsResponse, error)
	GetUserReport(ctx context.Context, caller domain.Identity) (*dto.UserReportResponse, error)
	ExportUserReportCSV(ctx context.Context, caller domain.Identity) ([]byte, error)
	ExportUserReportPDF(ctx context.Context, caller domain.Identity) ([]byte, error)
}

type reportServiceImpl struct {
	reportRepo  domain.ReportRepository
	quizRepo    domain.QuizRepository
	cacheClient domain.Cache
	sfGroup     singleflight.Group
}

// NewReportService creates a new instance of ReportService.
func NewReportService(reportRepo domain.ReportRepository, quizRepo domain.QuizRepository, cacheClient domain.Cache) ReportService {
	return &reportServiceImpl{
		reportRepo:  reportRepo,
		quizRepo:    quizRepo,
		cacheClient: cacheClient,
	}
}

// GetLeaderboard returns the ranked list for one quiz. The computed
// list is cached in Redis; concurrent cache misses for the same quiz
// collapse into one database read via singleflight.
func (s *reportServiceImpl) GetLeaderboard(ctx context.Context, caller domain.Identity, quizID string, limit int) (*dto.LeaderboardResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if !visibleQuiz(quiz, caller) {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	cacheKey := cache.LeaderboardKey(quizID)
	if s.cacheClient != nil {
		if cached, err := s.cacheClient.Get(ctx, cacheKey); err == nil {
			var resp dto.LeaderboardResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			logger.Get().Warn("Failed to decode cached leaderboard", zap.String("quizID", quizID))
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Leaderboard cache read failed", zap.Error(err), zap.String("quizID", quizID))
		}
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		entries, err := s.reportRepo.GetLeaderboard(ctx, quizID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load leaderboard: %w", err)
		}

		resp := &dto.LeaderboardResponse{
			QuizID:  quizID,
			Entries: make([]dto.LeaderboardEntryResponse, 0, len(entries)),
		}
		for i, e := range entries {
			resp.Entries = append(resp.Entries, dto.LeaderboardEntryResponse{
				Rank:        i + 1,
				Username:    e.Username,
				Score:       e.Score,
				SubmittedAt: e.SubmittedAt,
			})
		}

		if s.cacheClient != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.cacheClient.Set(ctx, cacheKey, string(payload), leaderboardCacheTTL); err != nil {
					logger.Get().Warn("Failed to cache leaderboard", zap.Error(err), zap.String("quizID", quizID))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp, ok := res.(*dto.LeaderboardResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected type from leaderboard singleflight: %T", res)
	}
	return resp, nil
}

func (s *reportServiceImpl) GetQuizAnalytics(ctx context.Context, caller domain.Identity, quizID string) (*dto.AnalyticsResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if !visibleQuiz(quiz, caller) {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	analytics, err := s.reportRepo.GetQuizAnalytics(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz analytics: %w", err)
	}
	return &dto.AnalyticsResponse{
		QuizID:       analytics.QuizID,
		AttemptCount: analytics.AttemptCount,
		AverageScore: analytics.AverageScore,
	}, nil
}

// GetUserReport returns the caller's submitted attempts with quiz
// titles and percentages.
func (s *reportServiceImpl) GetUserReport(ctx context.Context, caller domain.Identity) (*dto.UserReportResponse, error) {
	rows, err := s.reportRepo.GetUserReport(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user report: %w", err)
	}

	resp := &dto.UserReportResponse{
		UserID: caller.UserID,
		Rows:   make([]dto.UserReportRowResponse, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, dto.UserReportRowResponse{
			AttemptID:      r.AttemptID,
			QuizID:         r.QuizID,
			QuizTitle:      r.QuizTitle,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     percentage(r.Score, r.TotalQuestions),
			SubmittedAt:    r.SubmittedAt,
		})
	}
	return resp, nil
}

// ExportUserReportCSV renders the caller's report as CSV.
func (s *reportServiceImpl) ExportUserReportCSV(ctx context.Context, caller domain.Identity) ([]byte, error) {
	report, err := s.GetUserReport(ctx, caller)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"attempt_id", "quiz_title", "score", "total_questions", "percentage", "submitted_at"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range report.Rows {
		record := []string{
			row.AttemptID,
			row.QuizTitle,
			strconv.Itoa(row.Score),
			strconv.Itoa(row.TotalQuestions),
			strconv.FormatFloat(row.Percentage, 'f', 1, 64),
			row.SubmittedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportUserReportPDF renders the caller's report as a one-page-per-
// overflow PDF table.
func (s *reportServiceImpl) ExportUserReportPDF(ctx context.Context, caller domain.Identity) ([]byte, error) {
	report, err := s.GetUserReport(ctx, caller)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Quiz Report for %s", caller.Username))
	pdf.Ln(14)

	headers := []string{"Quiz", "Score", "Questions", "Percent", "Submitted"}
	widths := []float64{70, 20, 25, 20, 55}

	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range report.Rows {
		cells := []string{
			row.QuizTitle,
			strconv.Itoa(row.Score),
			strconv.Itoa(row.TotalQuestions),
			strconv.FormatFloat(row.Percentage, 'f', 1, 64),
			row.SubmittedAt.Format("2006-01-02 15:04"),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 8, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func percentage(score, totalQuestions int) float64 {
	if totalQuestions <= 0 {
		return 0
	}
	return float64(score) / float64(totalQuestions) * 100
}
