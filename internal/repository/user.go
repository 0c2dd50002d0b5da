package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const upsertUserByPhone = `
INSERT INTO users (id, name, email, phone_number)
VALUES ($1, $2, $3, $4)
ON CONFLICT (phone_number) DO UPDATE SET updated_at = now()
RETURNING id, name, email, phone_number, created_at, updated_at
`

// UpsertUserByPhone creates the user on first sign-in and returns the
// existing row on subsequent ones. Name and email are only applied on
// insert so a returning user keeps whatever profile they already have.
func (q *Queries) UpsertUserByPhone(
	c context.Context,
	name string,
	email string,
	phoneNumber string,
) (User, error) {
	user := User{}
	err := q.pool.QueryRow(c, upsertUserByPhone, uuid.New(), name, email, phoneNumber).
		Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("failed upserting user by phone with error=%w", err)
	}
	return user, nil
}

const findUserByPhone = `
SELECT id, name, email, phone_number, created_at, updated_at
FROM users
WHERE phone_number = $1
`

func (q *Queries) FindByPhoneNumber(c context.Context, phoneNumber string) (User, error) {
	user := User{}
	err := q.pool.QueryRow(c, findUserByPhone, phoneNumber).
		Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("failed finding user by phone with error=%w", err)
	}
	return user, nil
}
