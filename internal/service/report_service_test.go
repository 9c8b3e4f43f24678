package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"quizhive/internal/cache"
	"quizhive/internal/domain"
	"quizhive/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetLeaderboard_CacheMissThenFill(t *testing.T) {
	reportRepo := new(MockReportRepository)
	quizRepo := new(MockQuizRepository)
	cacheClient := new(MockCache)
	svc := NewReportService(reportRepo, quizRepo, cacheClient)

	quiz := &domain.Quiz{ID: "quiz1", Title: "Capitals", Published: true}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)

	now := time.Now()
	entries := []domain.LeaderboardEntry{
		{UserID: "user1", Username: "alice", Score: 9, SubmittedAt: now.Add(-time.Hour)},
		{UserID: "user2", Username: "bob", Score: 9, SubmittedAt: now},
	}
	key := cache.LeaderboardKey("quiz1")
	cacheClient.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss)
	reportRepo.On("GetLeaderboard", mock.Anything, "quiz1", 10).Return(entries, nil)
	cacheClient.On("Set", mock.Anything, key, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil)

	resp, err := svc.GetLeaderboard(context.Background(), studentIdentity("user1"), "quiz1", 10)

	assert.NoError(t, err)
	assert.Len(t, resp.Entries, 2)
	// Equal scores rank by earliest submission.
	assert.Equal(t, 1, resp.Entries[0].Rank)
	assert.Equal(t, "alice", resp.Entries[0].Username)
	assert.Equal(t, 2, resp.Entries[1].Rank)
	cacheClient.AssertExpectations(t)
}

func TestGetLeaderboard_CacheHitSkipsRepository(t *testing.T) {
	reportRepo := new(MockReportRepository)
	quizRepo := new(MockQuizRepository)
	cacheClient := new(MockCache)
	svc := NewReportService(reportRepo, quizRepo, cacheClient)

	quiz := &domain.Quiz{ID: "quiz1", Published: true}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)

	cached, _ := json.Marshal(dto.LeaderboardResponse{
		QuizID:  "quiz1",
		Entries: []dto.LeaderboardEntryResponse{{Rank: 1, Username: "alice", Score: 9}},
	})
	cacheClient.On("Get", mock.Anything, cache.LeaderboardKey("quiz1")).Return(string(cached), nil)

	resp, err := svc.GetLeaderboard(context.Background(), studentIdentity("user1"), "quiz1", 10)

	assert.NoError(t, err)
	assert.Len(t, resp.Entries, 1)
	reportRepo.AssertNotCalled(t, "GetLeaderboard", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetQuizAnalytics(t *testing.T) {
	reportRepo := new(MockReportRepository)
	quizRepo := new(MockQuizRepository)
	svc := NewReportService(reportRepo, quizRepo, nil)

	quiz := &domain.Quiz{ID: "quiz1", Published: true}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)
	reportRepo.On("GetQuizAnalytics", mock.Anything, "quiz1").Return(&domain.QuizAnalytics{
		QuizID: "quiz1", AttemptCount: 4, AverageScore: 6.5,
	}, nil)

	resp, err := svc.GetQuizAnalytics(context.Background(), studentIdentity("user1"), "quiz1")

	assert.NoError(t, err)
	assert.Equal(t, 4, resp.AttemptCount)
	assert.Equal(t, 6.5, resp.AverageScore)
}

func TestGetUserReport_Percentage(t *testing.T) {
	reportRepo := new(MockReportRepository)
	svc := NewReportService(reportRepo, new(MockQuizRepository), nil)

	now := time.Now()
	rows := []domain.UserReportRow{
		{AttemptID: "attempt1", QuizID: "quiz1", QuizTitle: "Capitals", Score: 3, TotalQuestions: 4, SubmittedAt: now},
		{AttemptID: "attempt2", QuizID: "quiz2", QuizTitle: "Empty", Score: 0, TotalQuestions: 0, SubmittedAt: now},
	}
	reportRepo.On("GetUserReport", mock.Anything, "user1").Return(rows, nil)

	resp, err := svc.GetUserReport(context.Background(), studentIdentity("user1"))

	assert.NoError(t, err)
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, 75.0, resp.Rows[0].Percentage)
	// A quiz without questions must not divide by zero.
	assert.Equal(t, 0.0, resp.Rows[1].Percentage)
}

func TestExportUserReportCSV(t *testing.T) {
	reportRepo := new(MockReportRepository)
	svc := NewReportService(reportRepo, new(MockQuizRepository), nil)

	now := time.Now()
	rows := []domain.UserReportRow{
		{AttemptID: "attempt1", QuizID: "quiz1", QuizTitle: "Capitals, Advanced", Score: 3, TotalQuestions: 4, SubmittedAt: now},
	}
	reportRepo.On("GetUserReport", mock.Anything, "user1").Return(rows, nil)

	data, err := svc.ExportUserReportCSV(context.Background(), studentIdentity("user1"))
	assert.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "attempt_id", records[0][0])
	// The comma in the title survives quoting.
	assert.Equal(t, "Capitals, Advanced", records[1][1])
	assert.Equal(t, "75.0", records[1][4])
}

func TestExportUserReportPDF(t *testing.T) {
	reportRepo := new(MockReportRepository)
	svc := NewReportService(reportRepo, new(MockQuizRepository), nil)

	reportRepo.On("GetUserReport", mock.Anything, "user1").Return([]domain.UserReportRow{
		{AttemptID: "attempt1", QuizID: "quiz1", QuizTitle: "Capitals", Score: 3, TotalQuestions: 4, SubmittedAt: time.Now()},
	}, nil)

	data, err := svc.ExportUserReportPDF(context.Background(), studentIdentity("user1"))
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGetLeaderboard_QuizNotFound(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := NewReportService(new(MockReportRepository), quizRepo, nil)

	quizRepo.On("GetQuizByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.GetLeaderboard(context.Background(), studentIdentity("user1"), "missing", 10)

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
}
