package service

import (
	"context"
	"fmt"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"

	"go.uber.org/zap"
)

// UserService defines the admin-facing user management operations.
type UserService interface {
	ListUsers(ctx context.Context) (*dto.UserListResponse, error)
	UpdateRole(ctx context.Context, caller domain.Identity, userID string, req *dto.UpdateRoleRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, caller domain.Identity, userID string) error
}

type userServiceImpl struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) ListUsers(ctx context.Context) (*dto.UserListResponse, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	resp := &dto.UserListResponse{
		Users: make([]dto.UserResponse, 0, len(users)),
		Total: len(users),
	}
	for i := range users {
		resp.Users = append(resp.Users, *toUserResponse(&users[i]))
	}
	return resp, nil
}

func (s *userServiceImpl) UpdateRole(ctx context.Context, caller domain.Identity, userID string, req *dto.UpdateRoleRequest) (*dto.UserResponse, error) {
	role := domain.Role(req.Role)
	if !role.IsValid() {
		return nil, domain.NewInvalidInputError("role must be one of student, teacher, staff, admin")
	}
	if userID == caller.UserID && role != domain.RoleAdmin {
		// Admins cannot demote themselves; the system would be
		// left without a way to undo it.
		return nil, domain.NewInvalidInputError("cannot change your own role")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found")
	}

	user.Role = role
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	logger.Get().Info("User role changed",
		zap.String("userID", userID),
		zap.String("role", req.Role),
		zap.String("changedBy", caller.UserID))

	return toUserResponse(user), nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, caller domain.Identity, userID string) error {
	if userID == caller.UserID {
		return domain.NewInvalidInputError("cannot delete your own account")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.NewNotFoundError("user not found")
	}

	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.Get().Info("User deleted",
		zap.String("userID", userID),
		zap.String("deletedBy", caller.UserID))
	return nil
}
