package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/psisco/zakladki/internal/models"
)

const userColumns = `id, username, email, password_hash, account_type, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.AccountType,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.db.QueryRow(ctx, query, id))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q.db.QueryRow(ctx, query, email))
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(q.db.QueryRow(ctx, query, username))
}

type CreateUserParams struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, account_type)
		VALUES ($1, $2, $3, $4, 'free')
		RETURNING ` + userColumns
	user, err := scanUser(q.db.QueryRow(ctx, query, arg.ID, arg.Username, arg.Email, arg.PasswordHash))
	if err != nil {
		if uniqueViolation(err, "users_email_key") {
			return nil, ErrEmailTaken
		}
		if uniqueViolation(err, "users_username_key") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// RegisterUser creates a user after checking email and username
// uniqueness. The checks and the insert run in one transaction so two
// concurrent registrations cannot both pass the pre-check and commit.
func (s *Store) RegisterUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	var user *models.User
	err := s.ExecTx(ctx, func(q *Queries) error {
		existing, err := q.GetUserByEmail(ctx, arg.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailTaken
		}

		existing, err = q.GetUserByUsername(ctx, arg.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUsernameTaken
		}

		user, err = q.CreateUser(ctx, arg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
