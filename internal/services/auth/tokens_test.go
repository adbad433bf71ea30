package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
	"github.com/magabrotheeeer/tour-reservations/internal/services/auth"
)

type authFixture struct {
	users   *memoryUsers
	creds   *auth.CredentialStore
	maker   *jwt.MakerImpl
	service *auth.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	users := newMemoryUsers()
	creds := auth.NewCredentialStore(users, newHasher(t), discardLogger())
	maker := jwt.NewJWTMaker("test-secret", 30*time.Minute, 168*time.Hour)
	return &authFixture{
		users:   users,
		creds:   creds,
		maker:   maker,
		service: auth.NewAuthService(creds, users, maker, newMemoryRevoker(), discardLogger()),
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := range 5 {
		email := fmt.Sprintf("user%d@example.com", i)
		pw := fmt.Sprintf("password-%d", i)

		registered, err := f.creds.Register(ctx, auth.RegisterInput{Email: email, Password: pw, IsOperator: i%2 == 0})
		require.NoError(t, err)

		pair, user, err := f.service.Login(ctx, email, pw)
		require.NoError(t, err)
		assert.Equal(t, registered.UUID, user.UUID)
		assert.Equal(t, jwt.TokenTypeBearer, pair.TokenType)
		assert.Equal(t, int64((30 * time.Minute).Seconds()), pair.ExpiresIn)

		claims, err := f.maker.VerifyKind(pair.AccessToken, jwt.KindAccess)
		require.NoError(t, err)
		assert.Equal(t, registered.UUID, claims.Subject)
		assert.Equal(t, email, claims.Email)
		assert.Equal(t, i%2 == 0, claims.IsOperator)
		assert.False(t, claims.IsVerified)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.creds.Register(ctx, auth.RegisterInput{Email: "anna@example.com", Password: "right-password"})
	require.NoError(t, err)

	for _, email := range []string{"anna@example.com", "ghost@example.com"} {
		pair, user, err := f.service.Login(ctx, email, "wrong-password")
		assert.ErrorIs(t, err, models.ErrAuthenticationFailed, email)
		assert.Nil(t, pair)
		assert.Nil(t, user)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.creds.Register(ctx, auth.RegisterInput{Email: "anna@example.com", Password: "password"})
	require.NoError(t, err)
	pair, user, err := f.service.Login(ctx, "anna@example.com", "password")
	require.NoError(t, err)

	t.Run("access token is rejected", func(t *testing.T) {
		_, err := f.service.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := f.service.Refresh(ctx, "not-a-token")
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	var rotated *jwt.TokenPair
	t.Run("refresh token mints a new pair", func(t *testing.T) {
		rotated, err = f.service.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		claims, err := f.maker.VerifyKind(rotated.AccessToken, jwt.KindAccess)
		require.NoError(t, err)
		assert.Equal(t, user.UUID, claims.Subject)
	})

	t.Run("used refresh token cannot be replayed", func(t *testing.T) {
		_, err := f.service.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		require.NoError(t, f.service.Logout(ctx, rotated.RefreshToken))
		require.NoError(t, f.service.Logout(ctx, rotated.RefreshToken), "logout is idempotent")

		_, err := f.service.Refresh(ctx, rotated.RefreshToken)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("logout with access token is rejected", func(t *testing.T) {
		assert.ErrorIs(t, f.service.Logout(ctx, pair.AccessToken), models.ErrTokenInvalid)
	})
}

func TestAuthService_RefreshPicksUpRoleChange(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.creds.Register(ctx, auth.RegisterInput{Email: "anna@example.com", Password: "password"})
	require.NoError(t, err)
	pair, _, err := f.service.Login(ctx, "anna@example.com", "password")
	require.NoError(t, err)

	f.users.mu.Lock()
	f.users.byID[registered.UUID].IsOperator = true
	f.users.byID[registered.UUID].IsVerified = true
	f.users.mu.Unlock()

	rotated, err := f.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := f.maker.Verify(rotated.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsOperator)
	assert.True(t, claims.IsVerified)
}

func TestAuthService_RefreshDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.creds.Register(ctx, auth.RegisterInput{Email: "anna@example.com", Password: "password"})
	require.NoError(t, err)
	pair, _, err := f.service.Login(ctx, "anna@example.com", "password")
	require.NoError(t, err)

	f.users.delete(registered.UUID)

	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestAuthService_RefreshRevokerFailure(t *testing.T) {
	users := newMemoryUsers()
	creds := auth.NewCredentialStore(users, newHasher(t), discardLogger())
	maker := jwt.NewJWTMaker("test-secret", time.Minute, time.Hour)
	revoker := new(RevokerMock)
	service := auth.NewAuthService(creds, users, maker, revoker, discardLogger())
	ctx := context.Background()

	_, err := creds.Register(ctx, auth.RegisterInput{Email: "anna@example.com", Password: "password"})
	require.NoError(t, err)
	pair, _, err := service.Login(ctx, "anna@example.com", "password")
	require.NoError(t, err)

	revoker.On("RevokeToken", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(false, errors.New("redis down")).Once()

	_, err = service.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrTokenInvalid)
	revoker.AssertExpectations(t)
}

// flakyIssuer отказывает в выпуске пары, пока выставлен fail.
type flakyIssuer struct {
	*jwt.MakerImpl
	fail bool
}

func (m *flakyIssuer) Issue(user *models.User) (*jwt.TokenPair, error) {
	if m.fail {
		return nil, errors.New("signing unavailable")
	}
	return m.MakerImpl.Issue(user)
}

func TestAuthService_RefreshIssueFailureKeepsToken(t *testing.T) {
	users := newMemoryUsers()
	creds := auth.NewCredentialStore(users, newHasher(t), discardLogger())
	maker := &flakyIssuer{MakerImpl: jwt.NewJWTMaker("test-secret", time.Minute, time.Hour)}
	revoker := new(RevokerMock)
	service := auth.NewAuthService(creds, users, maker, revoker, discardLogger())
	ctx := context.Background()

	_, err := creds.Register(ctx, auth.RegisterInput{Email: "anna@example.com", Password: "password"})
	require.NoError(t, err)
	pair, _, err := service.Login(ctx, "anna@example.com", "password")
	require.NoError(t, err)

	maker.fail = true
	_, err = service.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrTokenInvalid)
	revoker.AssertNotCalled(t, "RevokeToken", mock.Anything, mock.Anything, mock.Anything)

	maker.fail = false
	revoker.On("RevokeToken", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).
		Return(true, nil).Once()
	rotated, err := service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	revoker.AssertExpectations(t)
}
