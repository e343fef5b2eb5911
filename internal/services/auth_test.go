package services

import (
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type AuthSuite struct {
	serviceSuite
	now time.Time
	a   *Authenticator
}

func (s *AuthSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.now = time.Now().UTC()
	s.a = NewAuthenticator(s.db, AuthConfig{
		SessionDuration: time.Hour,
		Secret:          []byte("test-secret"),
		BcryptCost:      auth.MinCost,
	}, nil, func() time.Time { return s.now })
}

func (s *AuthSuite) TestAuthenticateWithStoredHash() {
	session, err := s.a.Authenticate(s.ctx, "alice@example.com", "testpassword")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.alice.ID, session.UserID)
	assert.NotEmpty(s.T(), session.Token)
	assert.Equal(s.T(), s.now.Add(time.Hour), session.ExpiresAt)
	require.NotNil(s.T(), session.User)
	assert.Equal(s.T(), s.alice.ID, session.User.ID)

	user, err := s.a.CurrentUser(s.ctx, session.Token)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), user)
	assert.Equal(s.T(), "alice@example.com", user.Email)
}

func (s *AuthSuite) TestAuthenticateFailuresAreUniform() {
	_, wrongPassword := s.a.Authenticate(s.ctx, "alice@example.com", "wrong")
	_, unknownEmail := s.a.Authenticate(s.ctx, "nobody@example.com", "testpassword")

	assert.ErrorIs(s.T(), wrongPassword, models.ErrAuth)
	assert.ErrorIs(s.T(), wrongPassword, models.ErrInvalidCredentials)
	assert.Equal(s.T(), wrongPassword, unknownEmail)
}

func (s *AuthSuite) TestSessionTokenIsNotStoredInPlainText() {
	session, err := s.a.Authenticate(s.ctx, "alice@example.com", "testpassword")
	require.NoError(s.T(), err)

	_, err = s.db.ValidateSession(s.ctx, session.Token, s.now)
	assert.Error(s.T(), err, "raw token must not be a valid key")
}

func (s *AuthSuite) TestRegister() {
	user, err := s.a.Register(s.ctx, " Carol ", "carol@example.com", "secret1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Carol", user.Name)
	assert.NotEqual(s.T(), "secret1", user.PasswordHash)

	_, err = s.a.Authenticate(s.ctx, "carol@example.com", "secret1")
	assert.NoError(s.T(), err)
}

func (s *AuthSuite) TestRegisterDuplicateEmail() {
	_, err := s.a.Register(s.ctx, "Another Alice", "alice@example.com", "secret1")
	assert.ErrorIs(s.T(), err, models.ErrEmailTaken)
	assert.ErrorIs(s.T(), err, models.ErrAuth)

	// Exact match only.
	_, err = s.a.Register(s.ctx, "Upper Alice", "ALICE@example.com", "secret1")
	assert.NoError(s.T(), err)
}

func (s *AuthSuite) TestRegisterValidation() {
	cases := []struct{ name, email, password string }{
		{"", "x@example.com", "secret1"},
		{"X", "", "secret1"},
		{"X", "not-an-email", "secret1"},
		{"X", "x@example.com", "short"},
	}
	for _, c := range cases {
		_, err := s.a.Register(s.ctx, c.name, c.email, c.password)
		assert.ErrorIs(s.T(), err, models.ErrValidation, "%+v", c)
	}
}

func (s *AuthSuite) TestCurrentUserWithoutSession() {
	user, err := s.a.CurrentUser(s.ctx, "")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), user)

	user, err = s.a.CurrentUser(s.ctx, "deadbeef")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), user)
}

func (s *AuthSuite) TestLogoutInvalidatesImmediately() {
	session, err := s.a.Authenticate(s.ctx, "alice@example.com", "testpassword")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.a.Logout(s.ctx, session.Token))

	user, err := s.a.CurrentUser(s.ctx, session.Token)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), user)
}

func (s *AuthSuite) TestResolveRenewsPastHalfLife() {
	session, err := s.a.Authenticate(s.ctx, "alice@example.com", "testpassword")
	require.NoError(s.T(), err)

	resolved, err := s.a.Resolve(s.ctx, session.Token)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), resolved)
	assert.False(s.T(), resolved.Renewed, "fresh session is not renewed")

	s.now = s.now.Add(40 * time.Minute)
	resolved, err = s.a.Resolve(s.ctx, session.Token)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), resolved)
	assert.True(s.T(), resolved.Renewed)
	assert.Equal(s.T(), s.now.Add(time.Hour), resolved.ExpiresAt)
}

func (s *AuthSuite) TestResolveExpired() {
	session, err := s.a.Authenticate(s.ctx, "alice@example.com", "testpassword")
	require.NoError(s.T(), err)

	s.now = s.now.Add(2 * time.Hour)
	resolved, err := s.a.Resolve(s.ctx, session.Token)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), resolved)
}

func (s *AuthSuite) TestPurgeExpired() {
	_, err := s.a.Authenticate(s.ctx, "alice@example.com", "testpassword")
	require.NoError(s.T(), err)

	n, err := s.a.PurgeExpired(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), n, "live session survives")

	s.now = s.now.Add(2 * time.Hour)
	n, err = s.a.PurgeExpired(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)
}

func (s *AuthSuite) TestSessionsFollowInjectedClock() {
	// A clock far behind wall time must still see its own sessions as live.
	s.now = time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	session, err := s.a.Authenticate(s.ctx, "alice@example.com", "testpassword")
	require.NoError(s.T(), err)

	resolved, err := s.a.Resolve(s.ctx, session.Token)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), resolved)
	assert.True(s.T(), resolved.LastActivity.Equal(s.now))

	s.now = s.now.Add(40 * time.Minute)
	resolved, err = s.a.Resolve(s.ctx, session.Token)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), resolved)
	require.True(s.T(), resolved.Renewed)

	info, err := s.db.ValidateSession(s.ctx, s.a.hash(session.Token), s.now)
	require.NoError(s.T(), err)
	assert.True(s.T(), info.LastActivity.Equal(s.now))
	assert.True(s.T(), info.ExpiresAt.Equal(s.now.Add(time.Hour)))

	n, err := s.a.PurgeExpired(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), n)
}

func (s *AuthSuite) TestEnsureBootstrapUser() {
	created, err := s.a.EnsureBootstrapUser(s.ctx, "Admin", "admin@example.com", "admin123")
	require.NoError(s.T(), err)
	assert.False(s.T(), created, "users already exist")

	require.NoError(s.T(), s.db.DeleteUser(s.ctx, s.alice.ID))
	require.NoError(s.T(), s.db.DeleteUser(s.ctx, s.bob.ID))

	created, err = s.a.EnsureBootstrapUser(s.ctx, "Admin", "admin@example.com", "admin123")
	require.NoError(s.T(), err)
	assert.True(s.T(), created)

	_, err = s.a.Authenticate(s.ctx, "admin@example.com", "admin123")
	assert.NoError(s.T(), err)
}
