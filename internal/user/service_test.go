package user

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-kiosk/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

var t0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*UserService, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(t0)
	svc := NewUserService(testutil.OpenDB(t), BcryptHasher{Cost: bcrypt.MinCost}, utilities.NewIDGenerator(5), clock)
	require.NoError(t, svc.Repo().EnsureTable(context.Background()))
	return svc, clock
}

func TestSignupAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	u, err := svc.SignupUser(ctx, " Bob@Example.com ", "hunter2", "")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.Equal(t, entity.DefaultRole, u.Role)
	assert.NotEqual(t, "hunter2", u.PasswordHash)

	got, err := svc.AuthenticatePassword(ctx, "BOB@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.AuthenticatePassword(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.AuthenticatePassword(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.AuthenticatePassword(ctx, "", "hunter2")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestSignupRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SignupUser(ctx, "", "pw", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SignupUser(ctx, "a@x.com", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignupUser(ctx, "a@x.com", "pw", "Admin")
	require.NoError(t, err)
	_, err = svc.SignupUser(ctx, "A@x.com", "pw2", "")
	assert.ErrorIs(t, err, userrepo.ErrEmailTaken)
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.SignupUser(ctx, "a@x.com", "old", "")
	require.NoError(t, err)

	require.NoError(t, svc.SetPassword(ctx, "a@x.com", "new"))
	_, err = svc.AuthenticatePassword(ctx, "a@x.com", "old")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.AuthenticatePassword(ctx, "a@x.com", "new")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.SetPassword(ctx, "missing@x.com", "pw"), userrepo.ErrNotFound)
}

func TestUpdatePermissions_FirstRoleWins(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)
	u, err := svc.SignupUser(ctx, "a@x.com", "pw", "")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	res, err := svc.UpdatePermissions(ctx, u.ID, []string{"Admin", "Viewer"})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, u.ID, res.UserID)
	assert.Equal(t, []string{"Admin", "Viewer"}, res.UpdatedPermissions)

	stored, err := svc.Repo().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", stored.Role)
	assert.True(t, t0.Add(time.Minute).Equal(stored.UpdatedAt))
}

func TestUpdatePermissions_EmptyListKeepsRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	u, err := svc.SignupUser(ctx, "a@x.com", "pw", "Operator")
	require.NoError(t, err)

	res, err := svc.UpdatePermissions(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []string{}, res.UpdatedPermissions)

	stored, err := svc.Repo().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Operator", stored.Role)
}

func TestUpdatePermissions_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	for _, perms := range [][]string{{"Admin"}, {}} {
		_, err := svc.UpdatePermissions(ctx, "999", perms)
		fe, ok := failure.As(err)
		require.True(t, ok)
		assert.Equal(t, failure.KindNotFound, fe.Kind)
		assert.Equal(t, StatusUserNotFound, fe.Message)
	}
	_, err := svc.Repo().GetByID(ctx, "999")
	assert.ErrorIs(t, err, userrepo.ErrNotFound)
}
