package auth

import (
	"context"

	"github.com/example/burger-helsinki/internal/db"
)

// UserRepo keeps staff accounts in the users table.
type UserRepo struct{ db db.Querier }

func NewUserRepo(d db.Querier) *UserRepo { return &UserRepo{db: d} }

func (r *UserRepo) Insert(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO users(username, password_bcrypt) VALUES ($1,$2)
RETURNING id`, username, passwordHash).Scan(&id)
	return id, db.WrapNotFound(err)
}

func (r *UserRepo) PasswordHash(ctx context.Context, username string) (int64, string, error) {
	var id int64
	var hash string
	err := r.db.QueryRow(ctx, `SELECT id, password_bcrypt FROM users WHERE username=$1`, username).Scan(&id, &hash)
	if err != nil {
		return 0, "", db.WrapNotFound(err)
	}
	return id, hash, nil
}
