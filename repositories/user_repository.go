package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
)

// UserRepository interface defines user database operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, role, password_hash, created_at`

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user %s not found", id)
	}
	if err != nil {
		return nil, storeError(err, "failed to get user")
	}
	return user, nil
}

// GetByEmail retrieves a user by their unique email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user with email %s not found", email)
	}
	if err != nil {
		return nil, storeError(err, "failed to get user by email")
	}
	return user, nil
}

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.CreatedAt = utc(user.CreatedAt)

	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, string(user.Role), user.PasswordHash, user.CreatedAt,
	)
	return storeError(err, "failed to create user")
}

// Count returns the total number of users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, storeError(err, "failed to count users")
	}
	return count, nil
}

// DeleteAll removes every user. Only used by the demo reset.
func (r *userRepository) DeleteAll(ctx context.Context) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM users`)
	return storeError(err, "failed to delete users")
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}
