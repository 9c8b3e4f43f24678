package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizhive/internal/cache"
	"quizhive/internal/config"
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"
	"quizhive/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from google")
)

// AuthService defines registration, login and session management.
// Sessions are opaque ULIDs stored server-side with a TTL; the HTTP
// layer carries only the id in an HttpOnly cookie.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (*dto.SessionData, error)

	GetGoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (string, *dto.LoginResponse, error)
}

type authServiceImpl struct {
	userRepo     domain.UserRepository
	cacheClient  domain.Cache
	oauth2Config *oauth2.Config
	sessionCfg   config.SessionConfig
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, cacheClient domain.Cache, cfg *config.Config) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		cacheClient: cacheClient,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleOAuth.ClientID,
			ClientSecret: cfg.GoogleOAuth.ClientSecret,
			RedirectURL:  cfg.GoogleOAuth.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		sessionCfg: cfg.Session,
	}
}

// Register creates a new student account with a bcrypt-hashed password.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.NewInvalidInputError("username and password are required")
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, domain.NewInvalidInputError("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(req.Username, string(hash))
	user.ID = util.NewULID()
	user.Email = req.Email

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Get().Info("User registered",
		zap.String("userID", user.ID),
		zap.String("username", user.Username))

	return toUserResponse(user), nil
}

// Login verifies the password and creates a server-side session. The
// returned session id goes into the cookie; nothing user-identifying
// is stored client-side.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.LoginResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	// Same error for unknown user and wrong password.
	if user == nil || user.PasswordHash == "" {
		return "", nil, domain.NewUnauthorizedError("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, domain.NewUnauthorizedError("invalid username or password")
	}

	sessionID, err := s.createSession(ctx, user)
	if err != nil {
		return "", nil, err
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return sessionID, &dto.LoginResponse{User: *toUserResponse(user)}, nil
}

// Logout destroys the server-side session. Unknown session ids are a
// no-op so logout is idempotent.
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.cacheClient.Delete(ctx, cache.SessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// GetSession resolves a session id to its stored identity payload.
func (s *authServiceImpl) GetSession(ctx context.Context, sessionID string) (*dto.SessionData, error) {
	if sessionID == "" {
		return nil, domain.NewUnauthorizedError("not logged in")
	}
	raw, err := s.cacheClient.Get(ctx, cache.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewUnauthorizedError("session expired or invalid")
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data dto.SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to decode session payload: %w", err)
	}
	return &data, nil
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// HandleGoogleCallback exchanges the authorization code, provisions a
// student account on first login and creates a session.
func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (string, *dto.LoginResponse, error) {
	if expectedState == "" || receivedState != expectedState {
		return "", nil, ErrInvalidAuthState
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	client := s.oauth2Config.Client(ctx, googleToken)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	var userInfo dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return "", nil, errors.New("google user info is incomplete")
	}

	user, err := s.userRepo.GetUserByGoogleID(ctx, userInfo.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up google user: %w", err)
	}

	if user == nil {
		user = domain.NewUser(googleUsername(userInfo), "")
		user.ID = util.NewULID()
		user.GoogleID = userInfo.ID
		user.Email = userInfo.Email
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return "", nil, fmt.Errorf("failed to create user: %w", err)
		}
		logger.Get().Info("New user created via Google OAuth",
			zap.String("userID", user.ID), zap.String("email", user.Email))
	} else if user.Email != userInfo.Email {
		// Google is the source of truth for the email.
		user.Email = userInfo.Email
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return "", nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	sessionID, err := s.createSession(ctx, user)
	if err != nil {
		return "", nil, err
	}

	logger.Get().Info("User logged in via Google OAuth", zap.String("userID", user.ID))
	return sessionID, &dto.LoginResponse{User: *toUserResponse(user)}, nil
}

// googleUsername derives a username for a first-time OAuth login.
// The google id suffix keeps it unique without a second round trip.
func googleUsername(info dto.GoogleUserInfo) string {
	base := info.Name
	if base == "" {
		base = info.Email
	}
	return fmt.Sprintf("%s-%s", base, info.ID)
}

func (s *authServiceImpl) createSession(ctx context.Context, user *domain.User) (string, error) {
	payload, err := json.Marshal(dto.SessionData{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode session payload: %w", err)
	}

	sessionID := util.NewULID()
	if err := s.cacheClient.Set(ctx, cache.SessionKey(sessionID), string(payload), s.sessionCfg.TTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, nil
}

func toUserResponse(u *domain.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
