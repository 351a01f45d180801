package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

const userColumns = `id, email, password_hash, full_name, created_at`

func (r repo) InsertUser(ctx context.Context, u core.User) (core.User, error) {
	q := `
		INSERT INTO users(email, password_hash, full_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var out core.User
	err := r.q.QueryRowxContext(ctx, q, u.Email, u.PasswordHash, u.FullName, u.CreatedAt).StructScan(&out)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrUserAlreadyExists
		}
		return core.User{}, storageErr("insert user", err)
	}
	return out, nil
}

func (r repo) GetUser(ctx context.Context, id int64) (core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u core.User
	if err := r.q.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, storageErr("get user", err)
	}
	return u, nil
}

func (r repo) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u core.User
	if err := r.q.GetContext(ctx, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, storageErr("get user by email", err)
	}
	return u, nil
}
