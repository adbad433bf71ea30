package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/password"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
	"github.com/magabrotheeeer/tour-reservations/internal/services/auth"
)

func newHasher(t *testing.T) *password.Hasher {
	h, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestCredentialStore_Register(t *testing.T) {
	tests := []struct {
		name       string
		input      auth.RegisterInput
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:  "successful registration normalizes email",
			input: auth.RegisterInput{Email: "  Anna@Example.com ", Password: "password123", IsOperator: true},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "anna@example.com").Return(nil, models.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return u.Email == "anna@example.com" &&
						u.PasswordHash != "" && u.PasswordHash != "password123" &&
						u.IsOperator && !u.IsVerified
				})).Return(&models.User{UUID: "uid-1", Email: "anna@example.com", IsOperator: true}, nil).Once()
			},
		},
		{
			name:  "duplicate email found up front",
			input: auth.RegisterInput{Email: "anna@example.com", Password: "password123"},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "anna@example.com").Return(&models.User{UUID: "uid-1"}, nil).Once()
			},
			wantErr: models.ErrDuplicateEmail,
		},
		{
			name:  "duplicate email caught by unique index",
			input: auth.RegisterInput{Email: "anna@example.com", Password: "password123"},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "anna@example.com").Return(nil, models.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).Return(nil, models.ErrDuplicateEmail).Once()
			},
			wantErr: models.ErrDuplicateEmail,
		},
		{
			name:       "empty password",
			input:      auth.RegisterInput{Email: "anna@example.com"},
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			store := auth.NewCredentialStore(repo, newHasher(t), discardLogger())

			user, err := store.Register(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-1", user.UUID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCredentialStore_Verify(t *testing.T) {
	hasher := newHasher(t)
	hash, err := hasher.GetHash("correct-password")
	require.NoError(t, err)
	stored := &models.User{UUID: "uid-1", Email: "anna@example.com", PasswordHash: hash}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:     "correct password",
			email:    "ANNA@example.com",
			password: "correct-password",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "anna@example.com").Return(stored, nil).Once()
				r.On("TouchLastAccess", mock.Anything, "uid-1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:     "wrong password",
			email:    "anna@example.com",
			password: "wrong-password",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "anna@example.com").Return(stored, nil).Once()
			},
			wantErr: models.ErrAuthenticationFailed,
		},
		{
			name:     "unknown email gives the same error",
			email:    "nobody@example.com",
			password: "correct-password",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: models.ErrAuthenticationFailed,
		},
		{
			name:     "storage failure is not an authentication failure",
			email:    "anna@example.com",
			password: "correct-password",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "anna@example.com").Return(nil, errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
		{
			name:     "last access failure does not fail login",
			email:    "anna@example.com",
			password: "correct-password",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "anna@example.com").Return(stored, nil).Once()
				r.On("TouchLastAccess", mock.Anything, "uid-1", mock.Anything).Return(errors.New("timeout")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			store := auth.NewCredentialStore(repo, hasher, discardLogger())

			user, err := store.Verify(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
				assert.Equal(t, "uid-1", user.UUID)
			case errors.Is(tt.wantErr, models.ErrAuthenticationFailed):
				assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
				assert.Nil(t, user)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.NotErrorIs(t, err, models.ErrAuthenticationFailed)
			}
			repo.AssertExpectations(t)
		})
	}
}
