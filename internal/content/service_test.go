package content

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/content/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

var t0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *clockwork.FakeClock) {
	t.Helper()
	r := repo.NewContentRepo(testutil.OpenDB(t))
	require.NoError(t, r.EnsureTable(context.Background()))
	clock := clockwork.NewFakeClockAt(t0)
	return NewService(r, utilities.NewIDGenerator(3), clock), clock
}

func stamp(t time.Time) string { return t.Format(time.RFC3339) }

func TestUpsert_SameSlotUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first, err := svc.Upsert(ctx, UpsertInput{
		KioskID: "k1", Title: "Promo", Body: "v1", ContentType: "text",
		ScheduledTime: stamp(t0.Add(-time.Hour)), IsActive: true,
	})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, MsgContentAdded, first.Message)

	second, err := svc.Upsert(ctx, UpsertInput{
		KioskID: "k1", Title: "Promo", Body: "v2", ContentType: "html",
		ScheduledTime: stamp(t0.Add(time.Hour)), IsActive: false,
	})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, MsgContentUpdated, second.Message)
	assert.Equal(t, first.ContentID, second.ContentID)

	n, err := svc.Repo().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	c, err := svc.Slot(ctx, "k1", "Promo")
	require.NoError(t, err)
	assert.Equal(t, "v2", c.Body)
	assert.Equal(t, "html", c.ContentType)
	assert.False(t, c.IsActive)
	assert.True(t, t0.Add(time.Hour).Equal(c.ScheduledTime))
}

func TestUpsert_DistinctSlots(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a, err := svc.Upsert(ctx, UpsertInput{KioskID: "k1", Title: "Promo", ScheduledTime: stamp(t0), IsActive: true})
	require.NoError(t, err)
	b, err := svc.Upsert(ctx, UpsertInput{KioskID: "k2", Title: "Promo", ScheduledTime: stamp(t0), IsActive: true})
	require.NoError(t, err)
	assert.True(t, b.Created)
	assert.NotEqual(t, a.ContentID, b.ContentID)
}

func TestUpsert_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	cases := map[string]UpsertInput{
		"no kiosk": {Title: "Promo", ScheduledTime: stamp(t0)},
		"no title": {KioskID: "k1", Title: "  ", ScheduledTime: stamp(t0)},
		"bad time": {KioskID: "k1", Title: "Promo", ScheduledTime: "next tuesday"},
	}
	for name, in := range cases {
		_, err := svc.Upsert(ctx, in)
		assert.Equal(t, failure.KindValidation, failure.KindOf(err), name)
	}
	n, err := svc.Repo().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpsert_ConcurrentWritesKeepOneRow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	const writers = 8
	results := make([]*UpsertResult, writers)
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			res, err := svc.Upsert(ctx, UpsertInput{
				KioskID: "k1", Title: "Promo", Body: fmt.Sprintf("v%d", i),
				ScheduledTime: stamp(t0), IsActive: true,
			})
			results[i] = res
			return err
		})
	}
	require.NoError(t, g.Wait())

	created := 0
	for _, r := range results {
		if r.Created {
			created++
		}
		assert.Equal(t, results[0].ContentID, r.ContentID)
	}
	assert.Equal(t, 1, created)
	n, err := svc.Repo().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDue(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)
	seed := []UpsertInput{
		{KioskID: "k1", Title: "hour-ago", ScheduledTime: stamp(t0.Add(-time.Hour)), IsActive: true},
		{KioskID: "k1", Title: "two-hours-ago", ScheduledTime: stamp(t0.Add(-2 * time.Hour)), IsActive: true},
		{KioskID: "k1", Title: "now", ScheduledTime: stamp(t0), IsActive: true},
		{KioskID: "k1", Title: "inactive", ScheduledTime: stamp(t0.Add(-3 * time.Hour)), IsActive: false},
		{KioskID: "k1", Title: "later", ScheduledTime: stamp(t0.Add(time.Hour)), IsActive: true},
		{KioskID: "k2", Title: "other-kiosk", ScheduledTime: stamp(t0.Add(-30 * time.Minute)), IsActive: true},
	}
	for _, in := range seed {
		_, err := svc.Upsert(ctx, in)
		require.NoError(t, err)
	}

	titles := func(kiosk string) []string {
		items, err := svc.Due(ctx, kiosk)
		require.NoError(t, err)
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Title)
		}
		return out
	}

	assert.Equal(t, []string{"two-hours-ago", "hour-ago", "now"}, titles("k1"))
	assert.Equal(t, []string{"two-hours-ago", "hour-ago", "other-kiosk", "now"}, titles(""))
	assert.Empty(t, titles("k9"))

	clock.Advance(90 * time.Minute)
	assert.Equal(t, []string{"two-hours-ago", "hour-ago", "now", "later"}, titles("k1"))
}

func TestSlotNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Slot(context.Background(), "k1", "missing")
	assert.Equal(t, failure.KindNotFound, failure.KindOf(err))
}
