package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/token"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/user"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

var t0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	users  *user.UserService
	repo   *repo.SessionRepo
	issuer *token.Issuer
	clock  *clockwork.FakeClock
	userID string
}

// newFixture seeds alice@x.com / correct-horse and returns a wired service.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.OpenDB(t)
	clock := clockwork.NewFakeClockAt(t0)

	users := user.NewUserService(db, user.BcryptHasher{Cost: bcrypt.MinCost}, utilities.NewIDGenerator(7), clock)
	require.NoError(t, users.Repo().EnsureTable(ctx))
	u, err := users.SignupUser(ctx, "alice@x.com", "correct-horse", "")
	require.NoError(t, err)

	r := repo.NewSessionRepo(db)
	require.NoError(t, r.EnsureTable(ctx))

	issuer, err := token.NewIssuer(token.Config{Secret: []byte("session-test-secret")}, clock)
	require.NoError(t, err)

	return &fixture{
		svc:    NewService(r, users, issuer, 30*time.Minute, clock),
		users:  users,
		repo:   r,
		issuer: issuer,
		clock:  clock,
		userID: u.ID,
	}
}
