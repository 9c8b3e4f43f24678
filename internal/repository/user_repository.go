package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/repository/models"
	"quizhive/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash.String,
		GoogleID:     m.GoogleID.String,
		Email:        m.Email.String,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		DeletedAt:    util.NullTimeToPtr(m.DeletedAt),
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: util.StringToNullString(u.PasswordHash),
		GoogleID:     util.StringToNullString(u.GoogleID),
		Email:        util.StringToNullString(u.Email),
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		DeletedAt:    util.TimePtrToNullTime(u.DeletedAt),
	}
}

const userColumns = `id, username, password_hash, google_id, email, role, created_at, updated_at, deleted_at`

// CreateUser inserts a new user row.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	m := fromDomainUser(user)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	query := `INSERT INTO users (id, username, password_hash, google_id, email, role, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.ID, m.Username, m.PasswordHash, m.GoogleID, m.Email, m.Role, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) getUserWhere(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	var m models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s AND deleted_at IS NULL`, userColumns, where)

	err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found is not an error at this layer
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&m), nil
}

// GetUserByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getUserWhere(ctx, "id = :1", userID)
}

// GetUserByUsername retrieves a user by their unique username.
func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUserWhere(ctx, "username = :1", username)
}

// GetUserByGoogleID retrieves a user by their Google ID.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getUserWhere(ctx, "google_id = :1", googleID)
}

// UpdateUser updates the mutable fields of a user row.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	m := fromDomainUser(user)
	m.UpdatedAt = time.Now()

	query := `UPDATE users SET username = :1, password_hash = :2, google_id = :3, email = :4, role = :5, updated_at = :6
	          WHERE id = :7 AND deleted_at IS NULL`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.Username, m.PasswordHash, m.GoogleID, m.Email, m.Role, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("User not found with ID: %s", m.ID))
	}
	return nil
}

// DeleteUser soft-deletes a user row.
func (r *sqlxUserRepository) DeleteUser(ctx context.Context, userID string) error {
	query := `UPDATE users SET deleted_at = :1, updated_at = :2 WHERE id = :3 AND deleted_at IS NULL`

	now := time.Now()
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, now, now, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("User not found with ID: %s", userID))
	}
	return nil
}

// ListUsers returns all non-deleted users ordered by creation.
func (r *sqlxUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var ms []models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE deleted_at IS NULL ORDER BY created_at`, userColumns)

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ms, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, 0, len(ms))
	for i := range ms {
		users = append(users, *toDomainUser(&ms[i]))
	}
	return users, nil
}
