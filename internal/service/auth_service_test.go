package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"quizhive/internal/cache"
	"quizhive/internal/config"
	"quizhive/internal/domain"
	"quizhive/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func authTestConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			CookieName: "quizhive_session",
			TTL:        time.Hour,
		},
	}
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockCache), authTestConfig())

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, nil)
	userRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Password: "s3cret", Email: "alice@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, string(domain.RoleStudent), resp.Role)

	// The stored hash must verify against the original password.
	created := userRepo.Calls[1].Arguments.Get(1).(*domain.User)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cret")))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockCache), authTestConfig())

	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(&domain.User{ID: "user1", Username: "alice"}, nil)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "alice", Password: "pw"})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
	userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), new(MockCache), authTestConfig())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "alice"})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	cacheClient := new(MockCache)
	svc := NewAuthService(userRepo, cacheClient, authTestConfig())

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	user := &domain.User{ID: "user1", Username: "alice", PasswordHash: string(hash), Role: domain.RoleStudent}
	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)

	var storedPayload string
	cacheClient.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string"), time.Hour).
		Run(func(args mock.Arguments) { storedPayload = args.String(2) }).
		Return(nil)

	sessionID, resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "s3cret"})

	assert.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, "user1", resp.User.ID)

	var data dto.SessionData
	assert.NoError(t, json.Unmarshal([]byte(storedPayload), &data))
	assert.Equal(t, "user1", data.UserID)
	assert.Equal(t, "student", data.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockCache), authTestConfig())

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	user := &domain.User{ID: "user1", Username: "alice", PasswordHash: string(hash)}
	userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)

	_, _, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "wrong"})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUnauthorized, domainErr.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockCache), authTestConfig())

	userRepo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, nil)

	_, _, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ghost", Password: "pw"})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUnauthorized, domainErr.Code)
}

func TestGetSession(t *testing.T) {
	cacheClient := new(MockCache)
	svc := NewAuthService(new(MockUserRepository), cacheClient, authTestConfig())

	payload, _ := json.Marshal(dto.SessionData{UserID: "user1", Username: "alice", Role: "student"})
	cacheClient.On("Get", mock.Anything, cache.SessionKey("sess1")).Return(string(payload), nil)

	data, err := svc.GetSession(context.Background(), "sess1")

	assert.NoError(t, err)
	assert.Equal(t, "user1", data.UserID)
	assert.Equal(t, "alice", data.Username)
}

func TestGetSession_Expired(t *testing.T) {
	cacheClient := new(MockCache)
	svc := NewAuthService(new(MockUserRepository), cacheClient, authTestConfig())

	cacheClient.On("Get", mock.Anything, cache.SessionKey("stale")).Return("", domain.ErrCacheMiss)

	_, err := svc.GetSession(context.Background(), "stale")

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUnauthorized, domainErr.Code)
}

func TestLogout(t *testing.T) {
	cacheClient := new(MockCache)
	svc := NewAuthService(new(MockUserRepository), cacheClient, authTestConfig())

	cacheClient.On("Delete", mock.Anything, cache.SessionKey("sess1")).Return(nil)

	assert.NoError(t, svc.Logout(context.Background(), "sess1"))
	// Logging out without a session is a no-op, not an error.
	assert.NoError(t, svc.Logout(context.Background(), ""))
	cacheClient.AssertExpectations(t)
}
