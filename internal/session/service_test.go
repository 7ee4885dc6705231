package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session/repo"
	userentity "github.com/ovaphlow/pitchfork/service-kiosk/internal/user/entity"
)

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MsgLoginSuccess, res.Message)
	assert.Equal(t, f.userID, res.UserID)
	require.NotEmpty(t, res.Token)

	claims, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", claims["sub"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, exp.Sub(iat.Time))

	sess, err := f.svc.Lookup(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.userID, sess.UserID)
	assert.True(t, sess.ExpiresAt.Equal(t0.Add(30*time.Minute)))
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Login(context.Background(), "  Alice@X.com ", "correct-horse")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestLogin_FailuresShareOneMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct{ email, password string }{
		{"alice@x.com", "wrongpw"},
		{"nobody@x.com", "correct-horse"},
		{"", ""},
		{"alice@x.com", ""},
	}
	for _, tc := range cases {
		res, err := f.svc.Login(ctx, tc.email, tc.password)
		assert.Nil(t, res, "%s/%s", tc.email, tc.password)
		fe, ok := failure.As(err)
		require.True(t, ok, "%s/%s: %v", tc.email, tc.password, err)
		assert.Equal(t, failure.KindAuth, fe.Kind)
		assert.Equal(t, MsgInvalidCredentials, fe.Message)
	}
	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type brokenAuth struct{}

func (brokenAuth) AuthenticatePassword(context.Context, string, string) (*userentity.User, error) {
	return nil, errors.New("connection refused")
}

func TestLogin_PersistenceErrorIsNotAnAuthFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.repo, brokenAuth{}, f.issuer, 0, f.clock)
	_, err := svc.Login(context.Background(), "alice@x.com", "correct-horse")
	require.Error(t, err)
	assert.Equal(t, failure.Kind(""), failure.KindOf(err))
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)

	out, err := f.svc.Logout(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, MsgLogoutSuccess, out.Message)

	_, err = f.repo.Find(ctx, repo.HashToken(res.Token))
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = f.svc.Lookup(ctx, res.Token)
	assert.Equal(t, failure.KindAuth, failure.KindOf(err))
}

func TestLogout_TokenDeletedASecondAgo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)
	_, err = f.svc.Logout(ctx, res.Token)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	out, err := f.svc.Logout(ctx, res.Token)
	assert.Nil(t, out)
	fe, ok := failure.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgInvalidSession, fe.Message)
}

func TestLogout_ExpiredSessionIsKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	_, err = f.svc.Logout(ctx, res.Token)
	fe, ok := failure.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgInvalidSession, fe.Message)

	sess, err := f.repo.Find(ctx, repo.HashToken(res.Token))
	require.NoError(t, err, "expired session stays until the sweeper runs")
	assert.False(t, sess.ActiveAt(f.clock.Now()))
}

func TestLogout_UnknownAndEmptyTokens(t *testing.T) {
	f := newFixture(t)
	for _, tok := range []string{"", "   ", "not-a-token"} {
		_, err := f.svc.Logout(context.Background(), tok)
		assert.Equal(t, failure.KindAuth, failure.KindOf(err), "token %q", tok)
	}
}

func TestPurgeExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	fresh, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)

	f.clock.Advance(15 * time.Minute)
	n, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.repo.Find(ctx, repo.HashToken(old.Token))
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = f.svc.Lookup(ctx, fresh.Token)
	assert.NoError(t, err)
}

func TestLogout_ConcurrentCallsRevokeOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := f.svc.Logout(ctx, res.Token)
			errs <- err
		}()
	}
	var ok, denied int
	for i := 0; i < n; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case failure.KindOf(err) == failure.KindAuth:
			denied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, denied)
}

func TestRevoke_RemovesExpiredSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Login(ctx, "alice@x.com", "correct-horse")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	require.NoError(t, f.svc.Revoke(ctx, res.Token))
	_, err = f.repo.Find(ctx, repo.HashToken(res.Token))
	assert.ErrorIs(t, err, repo.ErrNotFound)

	assert.NoError(t, f.svc.Revoke(ctx, res.Token))
	assert.Equal(t, failure.KindValidation, failure.KindOf(f.svc.Revoke(ctx, " ")))
}
