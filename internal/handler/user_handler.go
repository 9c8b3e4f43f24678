package handler

import (
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/service"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles the admin user management HTTP requests.
type UserHandler struct {
	service   service.UserService
	validator *validation.Validator
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(service service.UserService, validator *validation.Validator) *UserHandler {
	return &UserHandler{service: service, validator: validator}
}

// List godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Success 200 {object} dto.UserListResponse
// @Router /admin/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	resp, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/users/{userId}/role [put]
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	userID := c.Params("userId")
	if errs := h.validator.ValidateID("user_id", userID); len(errs) > 0 {
		return errs
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.service.UpdateRole(c.UserContext(), caller, userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a user
// @Tags admin
// @Param userId path string true "User ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/users/{userId} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	userID := c.Params("userId")
	if errs := h.validator.ValidateID("user_id", userID); len(errs) > 0 {
		return errs
	}

	if err := h.service.DeleteUser(c.UserContext(), caller, userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
