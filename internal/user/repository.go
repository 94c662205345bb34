package user

import (
	"context"
	"database/sql"
	"errors"
	"user_auth_service/internal/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

const pgUniqueViolation = "23505"

type UserRepository struct{}

// UserRepositoryInterface is the record store contract: at most one record
// exists per username, enforced by the unique constraint on the users table.
type UserRepositoryInterface interface {
	List(ctx context.Context, db *sql.DB) ([]*User, error)
	GetByUsername(ctx context.Context, db *sql.DB, username string) (*User, error)
	FindByUsername(ctx context.Context, db *sql.DB, username string) ([]*User, error)
	Insert(ctx context.Context, db *sql.DB, user *User) error
	Upsert(ctx context.Context, db *sql.DB, key string, user *User) error
	DeleteByUsername(ctx context.Context, db *sql.DB, username string) error
}

func NewUserRepository() UserRepositoryInterface {
	return &UserRepository{}
}

// List returns every record in store order.
func (r *UserRepository) List(ctx context.Context, db *sql.DB) ([]*User, error) {
	query := `
		SELECT username, displayname, password, admin
		FROM users
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.DisplayName, &u.Password, &u.Admin); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// GetByUsername retrieves exactly one record by username.
func (r *UserRepository) GetByUsername(ctx context.Context, db *sql.DB, username string) (*User, error) {
	query := `
		SELECT username, displayname, password, admin
		FROM users
		WHERE username = $1
	`

	user := &User{}
	err := db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.DisplayName,
		&user.Password,
		&user.Admin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.WithField("username", username).Warn("User not found")
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user by username")
		return nil, err
	}

	return user, nil
}

// FindByUsername returns all records matching username. The unique constraint
// means at most one, but the contract is a collection.
func (r *UserRepository) FindByUsername(ctx context.Context, db *sql.DB, username string) ([]*User, error) {
	query := `
		SELECT username, displayname, password, admin
		FROM users
		WHERE username = $1
	`

	rows, err := db.QueryContext(ctx, query, username)
	if err != nil {
		logrus.WithError(err).Error("Failed to find users by username")
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.DisplayName, &u.Password, &u.Admin); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// Insert creates a new record. A duplicate username surfaces as
// ErrDuplicateUsername, reported by the store's unique constraint.
func (r *UserRepository) Insert(ctx context.Context, db *sql.DB, user *User) error {
	query := `
		INSERT INTO users (username, displayname, password, admin)
		VALUES ($1, $2, $3, $4)
	`

	_, err := db.ExecContext(ctx, query, user.Username, user.DisplayName, user.Password, user.Admin)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			logrus.WithField("username", user.Username).Warn("Duplicate username on insert")
			return ErrDuplicateUsername
		}
		logrus.WithError(err).Error("Failed to create user")
		return err
	}

	logrus.WithField("username", user.Username).Info("User created successfully")
	return nil
}

// Upsert replaces all fields of the record matched by key, or inserts a new
// record when no row matches. Update-or-create, never "not found".
func (r *UserRepository) Upsert(ctx context.Context, db *sql.DB, key string, user *User) error {
	return utils.WithTransaction(ctx, db, func(tx *sql.Tx) error {
		updateQuery := `
			UPDATE users
			SET username = $1, displayname = $2, password = $3, admin = $4
			WHERE username = $5
		`

		result, err := tx.ExecContext(ctx, updateQuery, user.Username, user.DisplayName, user.Password, user.Admin, key)
		if err != nil {
			logrus.WithError(err).Error("Failed to update user")
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected > 0 {
			logrus.WithField("username", user.Username).Info("User updated successfully")
			return nil
		}

		insertQuery := `
			INSERT INTO users (username, displayname, password, admin)
			VALUES ($1, $2, $3, $4)
		`

		if _, err := tx.ExecContext(ctx, insertQuery, user.Username, user.DisplayName, user.Password, user.Admin); err != nil {
			logrus.WithError(err).Error("Failed to insert user on upsert")
			return err
		}

		logrus.WithField("username", user.Username).Info("User inserted on upsert")
		return nil
	})
}

// DeleteByUsername removes the record matching username. Removing nothing is
// not an error; the caller cannot distinguish "removed one" from "removed none".
func (r *UserRepository) DeleteByUsername(ctx context.Context, db *sql.DB, username string) error {
	query := `
		DELETE FROM users
		WHERE username = $1
	`

	if _, err := db.ExecContext(ctx, query, username); err != nil {
		logrus.WithError(err).Error("Failed to delete user")
		return err
	}

	logrus.WithField("username", username).Info("User delete executed")
	return nil
}
