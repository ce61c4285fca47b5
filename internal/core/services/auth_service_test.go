package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/grovelab/grove-engine/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func newAuthFixture() (*services.AuthService, *mockUserRepo) {
	repo := newMockUserRepo()
	tokens := services.NewTokenService("test-secret", "grove-test", time.Hour, repo)
	return services.NewAuthService(repo, tokens), repo
}

func TestAuthService_Register(t *testing.T) {
	t.Run("Success: account starts with an empty wallet", func(t *testing.T) {
		svc, repo := newAuthFixture()

		user, err := svc.Register(context.Background(), services.RegisterInput{
			Email:    "new@example.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, user.Diamonds)
		assert.Nil(t, user.LastMissionReset)
		assert.NotEmpty(t, user.PasswordHash)

		stored, err := repo.GetByEmail(context.Background(), "new@example.com")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
	})

	t.Run("Error: duplicate email", func(t *testing.T) {
		svc, _ := newAuthFixture()

		input := services.RegisterInput{Email: "dup@example.com", Password: "password123"}
		_, err := svc.Register(context.Background(), input)
		assert.NoError(t, err)

		_, err = svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("Error: weak password", func(t *testing.T) {
		svc, repo := newAuthFixture()

		_, err := svc.Register(context.Background(), services.RegisterInput{
			Email:    "weak@example.com",
			Password: "short",
		})

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Empty(t, repo.store)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("Success: returns a token that validates", func(t *testing.T) {
		svc, repo := newAuthFixture()
		tokens := services.NewTokenService("test-secret", "grove-test", time.Hour, repo)

		user, _ := svc.Register(context.Background(), services.RegisterInput{
			Email:    "login@example.com",
			Password: "password123",
		})

		result, err := svc.Login(context.Background(), services.LoginInput{
			Email:    "login@example.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, user.ID, result.User.ID)

		subject, err := tokens.ValidateToken(result.Token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, subject)
	})

	t.Run("Error: wrong password", func(t *testing.T) {
		svc, _ := newAuthFixture()

		_, _ = svc.Register(context.Background(), services.RegisterInput{
			Email:    "login@example.com",
			Password: "password123",
		})

		_, err := svc.Login(context.Background(), services.LoginInput{
			Email:    "login@example.com",
			Password: "wrong-password",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Error: unknown email does not leak existence", func(t *testing.T) {
		svc, _ := newAuthFixture()

		_, err := svc.Login(context.Background(), services.LoginInput{
			Email:    "ghost@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
