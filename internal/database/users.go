package database

import (
	"context"
)

const getUserByUserID = `
SELECT id, user_id, hashed_password, created_at
FROM users
WHERE user_id = $1
`

func (q *Queries) GetUserByUserID(ctx context.Context, userID string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUserByUserID, userID).
		Scan(&u.ID, &u.UserID, &u.HashedPassword, &u.CreatedAt)
	return u, err
}

const createUser = `
INSERT INTO users (user_id, hashed_password)
VALUES ($1, $2)
RETURNING id, user_id, hashed_password, created_at
`

type CreateUserParams struct {
	UserID         string
	HashedPassword string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, createUser, arg.UserID, arg.HashedPassword).
		Scan(&u.ID, &u.UserID, &u.HashedPassword, &u.CreatedAt)
	return u, err
}
