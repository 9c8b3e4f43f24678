package handler

import (
	"time"

	"quizhive/internal/config"
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/service"
	"quizhive/internal/util"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "quizhive_oauth_state"

// AuthHandler handles registration, login and the OAuth flow.
type AuthHandler struct {
	service    service.AuthService
	validator  *validation.Validator
	sessionCfg config.SessionConfig
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(service service.AuthService, validator *validation.Validator, sessionCfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: service, validator: validator, sessionCfg: sessionCfg}
}

func (h *AuthHandler) sessionCookie(sessionID string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    sessionID,
		Expires:  time.Now().Add(h.sessionCfg.TTL),
		HTTPOnly: true,
		Secure:   h.sessionCfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	}
}

// Register godoc
// @Summary Register a new student account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Credentials"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateRegisterRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login godoc
// @Summary Log in with username and password
// @Description Sets the session cookie on success
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	sessionID, resp, err := h.service.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}

	c.Cookie(h.sessionCookie(sessionID))
	return c.JSON(resp)
}

// Logout godoc
// @Summary Log out and destroy the session
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(h.sessionCfg.CookieName)
	if err := h.service.Logout(c.UserContext(), sessionID); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// GoogleLogin godoc
// @Summary Redirect to Google's consent screen
// @Tags auth
// @Success 302
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state := util.NewULID()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   h.sessionCfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.Redirect(h.service.GetGoogleLoginURL(state), fiber.StatusFound)
}

// GoogleCallback godoc
// @Summary Handle the Google OAuth callback
// @Description Provisions a student account on first login and sets the session cookie
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "Opaque state"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookie)

	sessionID, resp, err := h.service.HandleGoogleCallback(c.UserContext(), code, receivedState, expectedState)
	if err != nil {
		if err == service.ErrInvalidAuthState {
			return domain.NewUnauthorizedError("oauth state mismatch")
		}
		return err
	}

	// One-shot state cookie.
	c.Cookie(&fiber.Cookie{
		Name:    oauthStateCookie,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})
	c.Cookie(h.sessionCookie(sessionID))
	return c.JSON(resp)
}
