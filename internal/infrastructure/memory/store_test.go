package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/internal/domain/entity"
)

func seedIdols(t *testing.T, repo *IdolRepository, n int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		idol := entity.NewIdol(fmt.Sprintf("idol-%02d", i))
		// Shuffle creation times so insertion order differs from recency.
		idol.CreatedAt = base.Add(time.Duration((i*7)%n) * time.Minute)
		_, err := repo.Save(context.Background(), idol)
		require.NoError(t, err)
	}
}

func TestFindAllRecent_SortedAndBounded(t *testing.T) {
	repo := NewStore().Idols()
	seedIdols(t, repo, 20)

	idols, err := repo.FindAllRecent(context.Background(), 0, 12)
	require.NoError(t, err)
	require.Len(t, idols, 12)
	for i := 1; i < len(idols); i++ {
		assert.False(t, idols[i].CreatedAt.After(idols[i-1].CreatedAt), "index %d out of order", i)
	}

	again, err := repo.FindAllRecent(context.Background(), 0, 12)
	require.NoError(t, err)
	assert.Equal(t, idols[0].ID, again[0].ID)

	rest, err := repo.FindAllRecent(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Len(t, rest, 8)

	empty, err := repo.FindAllRecent(context.Background(), 5, 12)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindAllRecent_OverflowingPageIsEmpty(t *testing.T) {
	repo := NewStore().Idols()
	seedIdols(t, repo, 3)

	idols, err := repo.FindAllRecent(context.Background(), 768614336404564651, 12)
	require.NoError(t, err)
	assert.Empty(t, idols)
}

func TestSave_RoundTripKeepsBackReferences(t *testing.T) {
	repo := NewStore().Idols()
	idol := entity.NewIdol("aespa")
	for _, n := range []string{"karina", "giselle", "winter"} {
		require.NoError(t, idol.AddMember(&entity.Member{Name: n, UserName: n}))
	}
	saved, err := repo.Save(context.Background(), idol)
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.CntMember)
	require.Len(t, got.Members, 3)
	for _, m := range got.Members {
		owner, ok := m.IdolID()
		assert.True(t, ok)
		assert.Equal(t, saved.ID, owner)
	}
	assert.Equal(t, "karina", got.Members[0].Name)
}

func TestUpdate_MissingID(t *testing.T) {
	repo := NewStore().Idols()
	_, err := repo.Update(context.Background(), 3, func(*entity.Idol) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.FindByID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteByID_CascadesAndIsIdempotent(t *testing.T) {
	store := NewStore()
	repo := store.Idols()
	idol := entity.NewIdol("aespa")
	require.NoError(t, idol.AddMember(&entity.Member{Name: "karina"}))
	saved, err := repo.Save(context.Background(), idol)
	require.NoError(t, err)
	memberID := saved.Members[0].ID

	detached, err := store.Members().Create(context.Background(), &entity.Member{Name: "solo"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(context.Background(), saved.ID))
	require.NoError(t, repo.DeleteByID(context.Background(), saved.ID))

	m, err := store.Members().FindByID(context.Background(), memberID)
	assert.NoError(t, err)
	assert.Nil(t, m)

	m, err = store.Members().FindByID(context.Background(), detached.ID)
	assert.NoError(t, err)
	assert.NotNil(t, m)
}

func TestUserRepository_CreateIsIdempotent(t *testing.T) {
	users := NewStore().Users()
	u, created, err := users.Create(context.Background(), &entity.User{Username: "karina", Password: "h1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{entity.RoleUser}, u.Roles)

	u, created, err = users.Create(context.Background(), &entity.User{Username: "karina", Password: "h2"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "h1", u.Password)

	missing, err := users.FindByUsername(context.Background(), "Karina")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
