package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrNameAlreadyExists  = errors.New("display name already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrNameTooLong        = errors.New("display name is too long (max 50 chars)")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
)

const MaxNameLen = 50

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name,omitempty" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	XP           int       `json:"xp" db:"xp"`
	Level        int       `json:"level" db:"level"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func NewUser(id, email, name string) (*User, error) {

	email = strings.TrimSpace(email)

	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}

	now := time.Now().UTC()
	return &User{
		ID:        id,
		Email:     strings.ToLower(email),
		Name:      name,
		XP:        0,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateProfile applies new account settings with the same validation rules
// as NewUser. Uniqueness of the new email and name is the repository's job.
func (u *User) UpdateProfile(email, name string) error {
	email = strings.TrimSpace(email)
	if !isValidEmail(email) {
		return ErrInvalidEmail
	}

	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLen {
		return ErrNameTooLong
	}

	u.Email = strings.ToLower(email)
	u.Name = name
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) SetPassword(plainPassword string) error {
	if utf8.RuneCountInString(plainPassword) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), 12)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) CheckPassword(plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainPassword))
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
