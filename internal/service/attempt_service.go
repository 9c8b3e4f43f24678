package service

import (
	"context"
	"fmt"
	"time"

	"quizhive/internal/cache"
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"
	"quizhive/internal/util"

	"go.uber.org/zap"
)

// AttemptService defines the attempt lifecycle operations: start with
// quota enforcement, submit with time-limit enforcement and
// auto-grading, manual grade override, and the read paths around them.
type AttemptService interface {
	Start(ctx context.Context, caller domain.Identity, quizID string) (*dto.StartAttemptResponse, error)
	Submit(ctx context.Context, caller domain.Identity, attemptID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	OverrideScore(ctx context.Context, caller domain.Identity, attemptID string, req *dto.GradeOverrideRequest) (*dto.AttemptResponse, error)
	GetMyAttempts(ctx context.Context, caller domain.Identity) (*dto.AttemptListResponse, error)
	GetAttempt(ctx context.Context, caller domain.Identity, attemptID string) (*dto.AttemptDetailResponse, error)
	GetQuizAttempts(ctx context.Context, caller domain.Identity, quizID string) (*dto.QuizAttemptsResponse, error)
}

type attemptServiceImpl struct {
	quizRepo     domain.QuizRepository
	questionRepo domain.QuestionRepository
	attemptRepo  domain.AttemptRepository
	userRepo     domain.UserRepository
	txManager    domain.TransactionManager
	cacheClient  domain.Cache
}

// NewAttemptService creates a new instance of AttemptService.
func NewAttemptService(
	quizRepo domain.QuizRepository,
	questionRepo domain.QuestionRepository,
	attemptRepo domain.AttemptRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	cacheClient domain.Cache,
) AttemptService {
	return &attemptServiceImpl{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		cacheClient:  cacheClient,
	}
}

// visibleQuiz applies the visibility rule: unpublished quizzes exist
// only for their creator and staff. Everyone else gets not-found, not
// forbidden, so unpublished quizzes are not enumerable.
func visibleQuiz(quiz *domain.Quiz, caller domain.Identity) bool {
	if quiz == nil {
		return false
	}
	return quiz.Published || caller.Role.IsStaff() || quiz.CreatedBy == caller.UserID
}

// Start creates a new in-progress attempt. The quota check and the
// insert run in one transaction holding a row lock on the quiz, so
// concurrent starts for the same quiz cannot both pass the quota
// check. Attempts count against the quota whether submitted or not.
func (s *attemptServiceImpl) Start(ctx context.Context, caller domain.Identity, quizID string) (*dto.StartAttemptResponse, error) {
	var created *domain.Attempt

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		quiz, err := s.quizRepo.GetQuizByIDForUpdate(txCtx, quizID)
		if err != nil {
			return fmt.Errorf("failed to load quiz for attempt start: %w", err)
		}
		if !visibleQuiz(quiz, caller) {
			return domain.NewQuizNotFoundError(quizID)
		}

		if quiz.HasAttemptLimit() {
			count, err := s.attemptRepo.CountAttempts(txCtx, caller.UserID, quizID)
			if err != nil {
				return fmt.Errorf("failed to count attempts: %w", err)
			}
			if count >= *quiz.AttemptsAllowed {
				return domain.NewQuotaExceededError(*quiz.AttemptsAllowed)
			}
		}

		attempt := domain.NewAttempt(quizID, caller.UserID)
		attempt.ID = util.NewULID()
		if err := s.attemptRepo.CreateAttempt(txCtx, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		created = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Attempt started",
		zap.String("attemptID", created.ID),
		zap.String("quizID", quizID),
		zap.String("userID", caller.UserID))

	return &dto.StartAttemptResponse{
		ID:        created.ID,
		QuizID:    created.QuizID,
		StartTime: created.StartTime,
	}, nil
}

// Submit grades the answers against the quiz's questions and records
// answers, score and submitted_at in one guarded update. The time
// limit is enforced against the server-side start_time; a late submit
// writes nothing and the attempt stays open.
func (s *attemptServiceImpl) Submit(ctx context.Context, caller domain.Identity, attemptID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return nil, domain.NewAttemptNotFoundError(attemptID)
	}
	if attempt.UserID != caller.UserID {
		return nil, domain.NewForbiddenError("only the attempt owner may submit")
	}
	if attempt.IsSubmitted() {
		return nil, domain.NewAlreadySubmittedError(attemptID)
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz for submission: %w", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(attempt.QuizID)
	}

	now := time.Now()
	if quiz.TimeLimitMinutes != nil {
		if attempt.ElapsedMinutes(now) > float64(*quiz.TimeLimitMinutes) {
			return nil, domain.NewTimeLimitExceededError(*quiz.TimeLimitMinutes)
		}
	}

	questions, err := s.questionRepo.GetQuestionsByQuizID(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for grading: %w", err)
	}

	answers := req.Answers
	if answers == nil {
		// An empty submission is still a submission; an empty map
		// keeps it distinguishable from an unsubmitted NULL.
		answers = map[string]interface{}{}
	}
	score := domain.GradeAnswers(questions, answers)

	attempt.Answers = answers
	attempt.Score = &score
	attempt.SubmittedAt = &now

	updated, err := s.attemptRepo.SubmitAttempt(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}
	if !updated {
		// Lost a race with another submit of the same attempt.
		return nil, domain.NewAlreadySubmittedError(attemptID)
	}

	s.invalidateLeaderboard(ctx, attempt.QuizID)

	logger.Get().Info("Attempt submitted",
		zap.String("attemptID", attempt.ID),
		zap.String("quizID", attempt.QuizID),
		zap.Int("score", score))

	return toAttemptResponse(attempt), nil
}

// OverrideScore overwrites the score with a manually assigned one. It
// applies to submitted and in-progress attempts alike and repeating
// the same override is a no-op.
func (s *attemptServiceImpl) OverrideScore(ctx context.Context, caller domain.Identity, attemptID string, req *dto.GradeOverrideRequest) (*dto.AttemptResponse, error) {
	if req == nil || req.Score == nil {
		return nil, domain.NewInvalidInputError("score is required")
	}
	if *req.Score < 0 {
		return nil, domain.NewInvalidInputError("score must not be negative")
	}

	attempt, err := s.attemptRepo.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return nil, domain.NewAttemptNotFoundError(attemptID)
	}

	if err := s.attemptRepo.UpdateScore(ctx, attemptID, *req.Score); err != nil {
		return nil, err
	}
	attempt.Score = req.Score

	s.invalidateLeaderboard(ctx, attempt.QuizID)

	logger.Get().Info("Attempt score overridden",
		zap.String("attemptID", attemptID),
		zap.Int("score", *req.Score),
		zap.String("gradedBy", caller.UserID))

	return toAttemptResponse(attempt), nil
}

// GetMyAttempts returns the caller's submitted attempts, newest first.
// In-progress attempts are never listed back to the user.
func (s *attemptServiceImpl) GetMyAttempts(ctx context.Context, caller domain.Identity) (*dto.AttemptListResponse, error) {
	attempts, err := s.attemptRepo.GetAttemptsByUserID(ctx, caller.UserID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	resp := &dto.AttemptListResponse{
		Attempts: make([]dto.AttemptResponse, 0, len(attempts)),
		Total:    len(attempts),
	}
	for i := range attempts {
		resp.Attempts = append(resp.Attempts, *toAttemptResponse(&attempts[i]))
	}
	return resp, nil
}

// GetAttempt returns one attempt with quiz title and username for
// review. Owners may read their own attempt; anyone else needs staff.
func (s *attemptServiceImpl) GetAttempt(ctx context.Context, caller domain.Identity, attemptID string) (*dto.AttemptDetailResponse, error) {
	attempt, err := s.attemptRepo.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return nil, domain.NewAttemptNotFoundError(attemptID)
	}
	if attempt.UserID != caller.UserID && !caller.Role.IsStaff() {
		return nil, domain.NewForbiddenError("not allowed to view this attempt")
	}

	detail := &dto.AttemptDetailResponse{AttemptResponse: *toAttemptResponse(attempt)}

	if quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID); err == nil && quiz != nil {
		detail.QuizTitle = quiz.Title
	}
	if user, err := s.userRepo.GetUserByID(ctx, attempt.UserID); err == nil && user != nil {
		detail.Username = user.Username
	}
	return detail, nil
}

// GetQuizAttempts returns every attempt for one quiz, for staff review.
func (s *attemptServiceImpl) GetQuizAttempts(ctx context.Context, caller domain.Identity, quizID string) (*dto.QuizAttemptsResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	if !visibleQuiz(quiz, caller) {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	attempts, err := s.attemptRepo.GetAttemptsByQuizID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}

	usernames := map[string]string{}
	resp := &dto.QuizAttemptsResponse{
		QuizID:   quizID,
		Attempts: make([]dto.AttemptDetailResponse, 0, len(attempts)),
		Total:    len(attempts),
	}
	for i := range attempts {
		a := &attempts[i]
		name, ok := usernames[a.UserID]
		if !ok {
			if user, err := s.userRepo.GetUserByID(ctx, a.UserID); err == nil && user != nil {
				name = user.Username
			}
			usernames[a.UserID] = name
		}
		resp.Attempts = append(resp.Attempts, dto.AttemptDetailResponse{
			AttemptResponse: *toAttemptResponse(a),
			QuizTitle:       quiz.Title,
			Username:        name,
		})
	}
	return resp, nil
}

// invalidateLeaderboard drops the cached leaderboard after anything
// that changes a score. Cache failures do not fail the write path.
func (s *attemptServiceImpl) invalidateLeaderboard(ctx context.Context, quizID string) {
	if s.cacheClient == nil {
		return
	}
	if err := s.cacheClient.Delete(ctx, cache.LeaderboardKey(quizID)); err != nil {
		logger.Get().Warn("Failed to invalidate leaderboard cache",
			zap.String("quizID", quizID), zap.Error(err))
	}
}

func toAttemptResponse(a *domain.Attempt) *dto.AttemptResponse {
	return &dto.AttemptResponse{
		ID:          a.ID,
		QuizID:      a.QuizID,
		UserID:      a.UserID,
		StartTime:   a.StartTime,
		SubmittedAt: a.SubmittedAt,
		Answers:     a.Answers,
		Score:       a.Score,
	}
}
