package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

const userColumns = `id, name, email, password, phone, role, picture_object_key, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &u.Role, &u.PictureObjectKey, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserPostgres) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.ClientRole
	}
	user.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO users (id, name, email, password, phone, role, picture_object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Phone, user.Role, user.PictureObjectKey, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.ErrUserExists
		}
		return nil, storageErr("failed to insert user", err)
	}
	return &user, nil
}

func (r *UserPostgres) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, storageErr("failed to get user", err)
	}
	return user, nil
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, storageErr("failed to get user by email", err)
	}
	return user, nil
}

func (r *UserPostgres) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, storageErr("failed to query users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageErr("failed to scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate users", err)
	}
	return users, nil
}

func (r *UserPostgres) UpdateUser(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE users
		   SET name  = COALESCE($2, name),
		       phone = COALESCE($3, phone),
		       email = COALESCE($4, email)
		 WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, upd.Name, upd.Phone, upd.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, app_errors.ErrUserExists
		}
		return nil, storageErr("failed to update user", err)
	}
	return user, nil
}

// SetPicture stores the new object key and returns the previous one.
func (r *UserPostgres) SetPicture(ctx context.Context, id uuid.UUID, objectKey string) (string, error) {
	query := `
		UPDATE users u
		   SET picture_object_key = $2
		  FROM (SELECT picture_object_key FROM users WHERE id = $1 FOR UPDATE) old
		 WHERE u.id = $1
		RETURNING old.picture_object_key
	`
	var previous string
	if err := r.db.QueryRow(ctx, query, id, objectKey).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", app_errors.ErrUserNotFound
		}
		return "", storageErr("failed to set picture", err)
	}
	return previous, nil
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return storageErr("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes the user; enrollments, answers and exam results cascade.
func (r *UserPostgres) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return storageErr("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}
