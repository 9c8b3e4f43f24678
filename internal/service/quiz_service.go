package service

import (
	"context"
	"fmt"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"
	"quizhive/internal/util"

	"go.uber.org/zap"
)

// QuizService defines quiz and question management operations.
type QuizService interface {
	CreateQuiz(ctx context.Context, caller domain.Identity, req *dto.CreateQuizRequest) (*dto.QuizResponse, error)
	GetQuiz(ctx context.Context, caller domain.Identity, quizID string) (*dto.QuizResponse, error)
	UpdateQuiz(ctx context.Context, caller domain.Identity, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, caller domain.Identity, quizID string) error
	ListQuizzes(ctx context.Context, caller domain.Identity) (*dto.QuizListResponse, error)

	CreateQuestion(ctx context.Context, caller domain.Identity, quizID string, req *dto.QuestionRequest) (*dto.QuestionResponse, error)
	GetQuestions(ctx context.Context, caller domain.Identity, quizID string) (*dto.QuestionListResponse, error)
	UpdateQuestion(ctx context.Context, caller domain.Identity, questionID string, req *dto.QuestionRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, caller domain.Identity, questionID string) error
}

type quizServiceImpl struct {
	quizRepo     domain.QuizRepository
	questionRepo domain.QuestionRepository
	attemptRepo  domain.AttemptRepository
	txManager    domain.TransactionManager
}

// NewQuizService creates a new instance of QuizService.
func NewQuizService(
	quizRepo domain.QuizRepository,
	questionRepo domain.QuestionRepository,
	attemptRepo domain.AttemptRepository,
	txManager domain.TransactionManager,
) QuizService {
	return &quizServiceImpl{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		txManager:    txManager,
	}
}

// canManageQuiz reports whether the caller may modify the quiz.
// Admins can modify any quiz, teachers and staff only their own.
func canManageQuiz(quiz *domain.Quiz, caller domain.Identity) bool {
	return caller.Role == domain.RoleAdmin || quiz.CreatedBy == caller.UserID
}

func (s *quizServiceImpl) CreateQuiz(ctx context.Context, caller domain.Identity, req *dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	quiz := domain.NewQuiz(req.Title, req.Description, caller.UserID)
	quiz.ID = util.NewULID()
	quiz.TimeLimitMinutes = req.TimeLimitMinutes
	quiz.AttemptsAllowed = req.AttemptsAllowed
	quiz.Published = req.Published

	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	if err := s.quizRepo.CreateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	logger.Get().Info("Quiz created",
		zap.String("quizID", quiz.ID),
		zap.String("createdBy", caller.UserID))

	return toQuizResponse(quiz), nil
}

func (s *quizServiceImpl) GetQuiz(ctx context.Context, caller domain.Identity, quizID string) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if !visibleQuiz(quiz, caller) {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return toQuizResponse(quiz), nil
}

func (s *quizServiceImpl) UpdateQuiz(ctx context.Context, caller domain.Identity, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if !canManageQuiz(quiz, caller) {
		return nil, domain.NewForbiddenError("only the quiz creator or an admin may modify it")
	}

	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.TimeLimitMinutes = req.TimeLimitMinutes
	quiz.AttemptsAllowed = req.AttemptsAllowed
	quiz.Published = req.Published

	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	if err := s.quizRepo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	return toQuizResponse(quiz), nil
}

// DeleteQuiz removes the quiz, its questions and its attempts in one
// transaction so a half-deleted quiz can never be observed.
func (s *quizServiceImpl) DeleteQuiz(ctx context.Context, caller domain.Identity, quizID string) error {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(quizID)
	}
	if !canManageQuiz(quiz, caller) {
		return domain.NewForbiddenError("only the quiz creator or an admin may delete it")
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.attemptRepo.DeleteAttemptsByQuizID(txCtx, quizID); err != nil {
			return err
		}
		if err := s.questionRepo.DeleteQuestionsByQuizID(txCtx, quizID); err != nil {
			return err
		}
		return s.quizRepo.DeleteQuiz(txCtx, quizID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	logger.Get().Info("Quiz deleted",
		zap.String("quizID", quizID),
		zap.String("deletedBy", caller.UserID))
	return nil
}

// ListQuizzes applies role-based listing: students see published
// quizzes, teachers and staff additionally their own unpublished ones,
// admins see everything.
func (s *quizServiceImpl) ListQuizzes(ctx context.Context, caller domain.Identity) (*dto.QuizListResponse, error) {
	var (
		quizzes []domain.Quiz
		err     error
	)
	switch {
	case caller.Role == domain.RoleAdmin:
		quizzes, err = s.quizRepo.ListQuizzes(ctx, false, "")
	case caller.Role.IsStaff():
		quizzes, err = s.quizRepo.ListQuizzes(ctx, false, caller.UserID)
		if err == nil {
			published, perr := s.quizRepo.ListQuizzes(ctx, true, "")
			if perr != nil {
				err = perr
			} else {
				quizzes = mergeQuizzes(quizzes, published)
			}
		}
	default:
		quizzes, err = s.quizRepo.ListQuizzes(ctx, true, "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	resp := &dto.QuizListResponse{
		Quizzes: make([]dto.QuizResponse, 0, len(quizzes)),
		Total:   len(quizzes),
	}
	for i := range quizzes {
		resp.Quizzes = append(resp.Quizzes, *toQuizResponse(&quizzes[i]))
	}
	return resp, nil
}

func mergeQuizzes(a, b []domain.Quiz) []domain.Quiz {
	seen := make(map[string]bool, len(a))
	for i := range a {
		seen[a[i].ID] = true
	}
	for i := range b {
		if !seen[b[i].ID] {
			a = append(a, b[i])
		}
	}
	return a
}

func (s *quizServiceImpl) CreateQuestion(ctx context.Context, caller domain.Identity, quizID string, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if !canManageQuiz(quiz, caller) {
		return nil, domain.NewForbiddenError("only the quiz creator or an admin may add questions")
	}

	question := domain.NewQuestion(quizID, req.Text, domain.QuestionType(req.Type))
	question.ID = util.NewULID()
	question.Options = req.Options
	question.CorrectAnswer = req.CorrectAnswer
	question.Points = req.Points

	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := s.questionRepo.CreateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return toQuestionResponse(question, true), nil
}

// GetQuestions lists a quiz's questions. The correct answers are
// stripped unless the caller may manage the quiz.
func (s *quizServiceImpl) GetQuestions(ctx context.Context, caller domain.Identity, quizID string) (*dto.QuestionListResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if !visibleQuiz(quiz, caller) {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	questions, err := s.questionRepo.GetQuestionsByQuizID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	withAnswers := canManageQuiz(quiz, caller)
	resp := &dto.QuestionListResponse{
		QuizID:    quizID,
		Questions: make([]dto.QuestionResponse, 0, len(questions)),
		Total:     len(questions),
	}
	for i := range questions {
		resp.Questions = append(resp.Questions, *toQuestionResponse(&questions[i], withAnswers))
	}
	return resp, nil
}

func (s *quizServiceImpl) UpdateQuestion(ctx context.Context, caller domain.Identity, questionID string, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	question, quiz, err := s.getQuestionWithQuiz(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !canManageQuiz(quiz, caller) {
		return nil, domain.NewForbiddenError("only the quiz creator or an admin may modify questions")
	}

	question.Text = req.Text
	question.Type = domain.QuestionType(req.Type)
	question.Options = req.Options
	question.CorrectAnswer = req.CorrectAnswer
	question.Points = req.Points

	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := s.questionRepo.UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return toQuestionResponse(question, true), nil
}

func (s *quizServiceImpl) DeleteQuestion(ctx context.Context, caller domain.Identity, questionID string) error {
	question, quiz, err := s.getQuestionWithQuiz(ctx, questionID)
	if err != nil {
		return err
	}
	if !canManageQuiz(quiz, caller) {
		return domain.NewForbiddenError("only the quiz creator or an admin may delete questions")
	}

	if err := s.questionRepo.DeleteQuestion(ctx, question.ID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

func (s *quizServiceImpl) getQuestionWithQuiz(ctx context.Context, questionID string) (*domain.Question, *domain.Quiz, error) {
	question, err := s.questionRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, nil, domain.NewNotFoundError("question not found")
	}
	quiz, err := s.quizRepo.GetQuizByID(ctx, question.QuizID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get quiz for question: %w", err)
	}
	if quiz == nil {
		return nil, nil, domain.NewQuizNotFoundError(question.QuizID)
	}
	return question, quiz, nil
}

func toQuizResponse(q *domain.Quiz) *dto.QuizResponse {
	return &dto.QuizResponse{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		TimeLimitMinutes: q.TimeLimitMinutes,
		AttemptsAllowed:  q.AttemptsAllowed,
		Published:        q.Published,
		CreatedBy:        q.CreatedBy,
		CreatedAt:        q.CreatedAt,
	}
}

func toQuestionResponse(q *domain.Question, withAnswer bool) *dto.QuestionResponse {
	resp := &dto.QuestionResponse{
		ID:      q.ID,
		QuizID:  q.QuizID,
		Text:    q.Text,
		Type:    string(q.Type),
		Options: q.Options,
		Points:  q.PointsOrDefault(),
	}
	if withAnswer {
		resp.CorrectAnswer = q.CorrectAnswer
	}
	return resp
}
