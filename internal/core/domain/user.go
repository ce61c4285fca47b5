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
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("not enough diamonds")
)

// User is both the account identity and the wallet. Every account owns
// exactly one wallet: Diamonds and LastMissionReset live on the user row
// and are created with the account, so the balance can never exist apart
// from its owner.
type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`

	Diamonds         int        `json:"diamonds" db:"diamonds"`
	LastMissionReset *time.Time `json:"last_mission_reset,omitempty" db:"last_mission_reset"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewUser(id, email string) (*User, error) {
	email = strings.TrimSpace(email)

	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	return &User{
		ID:        id,
		Email:     strings.ToLower(email),
		Diamonds:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
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

// Credit adds diamonds to the wallet. The caller is responsible for
// persisting the user in the same transaction as the event that earned
// the reward.
func (u *User) Credit(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	u.Diamonds += amount
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Debit removes diamonds from the wallet. The balance never goes
// negative: an overdraw fails before any state changes.
func (u *User) Debit(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if u.Diamonds < amount {
		return ErrInsufficientFunds
	}
	u.Diamonds -= amount
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// MissionBatchCurrent reports whether the user's mission batch was last
// reset on the same calendar day as now.
func (u *User) MissionBatchCurrent(now time.Time) bool {
	return u.LastMissionReset != nil && SameDay(*u.LastMissionReset, now)
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
