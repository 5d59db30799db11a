package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/idol-catalog/internal/infrastructure/memory"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

func TestSeeder_RunIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	ev := &recordingEvents{}
	s := NewSeeder(store.Idols(), store.Users(), ev, helpers.NopLogger())
	ctx := context.Background()

	rep, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{IdolsCreated: 2, UsersCreated: 8}, rep)

	rep, err = s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{IdolsSkipped: 2}, rep)
	assert.Len(t, ev.types(), 2)

	aespa, err := store.Idols().FindByName(ctx, "aespa")
	require.NoError(t, err)
	require.NotNil(t, aespa)
	assert.Equal(t, 3, aespa.CntMember)

	nj, err := store.Idols().FindByName(ctx, "newJeans")
	require.NoError(t, err)
	require.NotNil(t, nj)
	assert.Equal(t, 5, nj.CntMember)

	recent, err := store.Idols().FindAllRecent(ctx, 0, 12)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSeeder_MembersCanLogIn(t *testing.T) {
	store := memory.NewStore()
	s := NewSeeder(store.Idols(), store.Users(), nil, nil)
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	u, err := store.Users().FindByUsername(context.Background(), "karina")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, "1234", u.Password)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "1234"))
	assert.True(t, u.HasRole("USER"))
}

type mutexLocker struct {
	mu    sync.Mutex
	calls int
}

func (l *mutexLocker) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return fn(ctx)
}

func TestSeeder_ConcurrentRunsUnderLockInsertOnce(t *testing.T) {
	store := memory.NewStore()
	lock := &mutexLocker{}
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := NewSeeder(store.Idols(), store.Users(), nil, nil)
			s.Lock = lock
			_, err := s.Run(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 4, lock.calls)
	recent, err := store.Idols().FindAllRecent(ctx, 0, 12)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
