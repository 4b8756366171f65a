package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"AvisoBot/internal/models"
	"AvisoBot/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(uid models.UserID, step models.Step) *models.Session {
	return &models.Session{
		UserID:    uid,
		Step:      step,
		Draft:     models.DraftReport{ID: "r-" + string(uid), Unit: "A-9"},
		StartedAt: time.Date(2024, 2, 29, 14, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 2, 29, 14, 0, 0, 0, time.UTC),
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	cfg := cache.DefaultConfig()
	local, err := NewStore(BackendLocal, cfg, time.Hour)
	require.NoError(t, err)
	goc, err := NewStore(BackendGoCache, cfg, time.Hour)
	require.NoError(t, err)
	return map[string]Store{
		"memory":  NewMemoryStore(),
		"local":   local,
		"gocache": goc,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := st.Get(ctx, "nobody")
			require.NoError(t, err)
			assert.False(t, found)

			s := newSession("u1", models.StepAwaitMonth)
			require.NoError(t, st.Put(ctx, s))

			got, found, err := st.Get(ctx, "u1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, models.StepAwaitMonth, got.Step)
			assert.Equal(t, "A-9", got.Draft.Unit)

			// the returned value is a copy
			got.Draft.Unit = "A-5"
			again, _, err := st.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "A-9", again.Draft.Unit)

			// mutating after Put does not leak into the store
			s.Step = models.StepAwaitDay
			again, _, _ = st.Get(ctx, "u1")
			assert.Equal(t, models.StepAwaitMonth, again.Step)

			require.NoError(t, st.Remove(ctx, "u1"))
			_, found, err = st.Get(ctx, "u1")
			require.NoError(t, err)
			assert.False(t, found)

			// removing an absent session is a no-op
			assert.NoError(t, st.Remove(ctx, "u1"))
			assert.ErrorIs(t, st.Put(ctx, &models.Session{}), ErrInvalidSession)
		})
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					uid := models.UserID(fmt.Sprintf("u%d", i))
					for step := models.StepAwaitUnit; step <= models.StepAwaitDestination; step++ {
						s := newSession(uid, step)
						s.Draft.Address = string(uid)
						assert.NoError(t, st.Put(ctx, s))
					}
				}(i)
			}
			wg.Wait()

			for i := 0; i < 32; i++ {
				uid := models.UserID(fmt.Sprintf("u%d", i))
				got, found, err := st.Get(ctx, uid)
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, models.StepAwaitDestination, got.Step)
				assert.Equal(t, string(uid), got.Draft.Address)
			}
		})
	}
}

func TestLocalStoreNeverEvictsLiveSessions(t *testing.T) {
	ctx := context.Background()
	cfg := cache.DefaultConfig()
	cfg.Local.MaxSize = 3
	st, err := NewStore(BackendLocal, cfg, time.Hour)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, st.Put(ctx, newSession(models.UserID(fmt.Sprintf("u%d", i)), models.StepAwaitDestination)))
	}
	for i := 0; i < 4; i++ {
		got, found, err := st.Get(ctx, models.UserID(fmt.Sprintf("u%d", i)))
		require.NoError(t, err)
		require.True(t, found, "u%d evicted", i)
		assert.Equal(t, models.StepAwaitDestination, got.Step)
	}
}

func TestNewStoreRejectsUnknownBackend(t *testing.T) {
	_, err := NewStore("etcd", cache.DefaultConfig(), time.Hour)
	assert.Error(t, err)
}

func TestMemorySweep(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	base := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

	old := newSession("old", models.StepAwaitDay)
	old.UpdatedAt = base.Add(-7 * time.Hour)
	fresh := newSession("fresh", models.StepAwaitDay)
	fresh.UpdatedAt = base.Add(-time.Hour)
	require.NoError(t, st.Put(ctx, old))
	require.NoError(t, st.Put(ctx, fresh))

	SweepJob(st, 6*time.Hour, func() time.Time { return base }).Run(ctx)

	assert.Equal(t, 1, st.Len())
	_, found, _ := st.Get(ctx, "fresh")
	assert.True(t, found)
	_, found, _ = st.Get(ctx, "old")
	assert.False(t, found)
}

type brokenCache struct{ cache.Cache }

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return []byte("{not json"), true, nil
}

func TestCacheStoreRejectsCorruptEntry(t *testing.T) {
	st := NewCacheStore(brokenCache{}, time.Hour)
	_, found, err := st.Get(context.Background(), "u1")
	assert.Error(t, err)
	assert.False(t, found)
}
