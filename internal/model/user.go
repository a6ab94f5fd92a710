package model

import (
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type SignUpInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

// UpdateUserRequest — обновление пользователя. AccountIDs задает новый список
// счетов, которые должны принадлежать пользователю; nil — не трогать счета.
type UpdateUserRequest struct {
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	AccountIDs []uuid.UUID `json:"account_ids"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (u *SignUpInput) Validate() error {
	if !emailPattern.MatchString(u.Email) {
		return fmt.Errorf("invalid email format")
	}
	return validatePassword(u.Password)
}

// validatePassword требует не менее 8 символов и хотя бы по одному символу
// каждого класса: верхний регистр, нижний регистр, цифра, спецсимвол.
func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return fmt.Errorf("password must contain at least one uppercase letter, one lowercase letter, one number and one special character")
	}
	return nil
}
