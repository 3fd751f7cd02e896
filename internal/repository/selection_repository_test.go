package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quick-event-planner/internal/models"
	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
)

func sampleSelection(t *testing.T) *models.Selection {
	t.Helper()
	a, err := ical.ParseDate("2024-02-29")
	require.NoError(t, err)
	b, err := ical.ParseDate("2024-03-01")
	require.NoError(t, err)
	return &models.Selection{
		ID:        "sel-1",
		Dates:     []ical.Date{a, b},
		ViewYear:  2024,
		ViewMonth: time.March,
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newRedisRepo(t *testing.T) (*SelectionRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSelectionRepository(client, nil), srv
}

func TestSelectionRepositoryRoundTrip(t *testing.T) {
	repo, srv := newRedisRepo(t)
	ctx := context.Background()
	sel := sampleSelection(t)

	require.NoError(t, repo.Save(ctx, sel, time.Hour))
	assert.True(t, srv.Exists("planner:selection:sel-1"))
	assert.Equal(t, time.Hour, srv.TTL("planner:selection:sel-1"))

	got, err := repo.Get(ctx, "sel-1")
	require.NoError(t, err)
	assert.Equal(t, sel.Dates, got.Dates)
	assert.Equal(t, time.March, got.ViewMonth)
	assert.True(t, sel.UpdatedAt.Equal(got.UpdatedAt))
}

func TestSelectionRepositoryExpiry(t *testing.T) {
	repo, srv := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSelection(t), time.Minute))
	srv.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "sel-1")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestSelectionRepositoryDelete(t *testing.T) {
	repo, srv := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSelection(t), time.Minute))
	require.NoError(t, repo.Delete(ctx, "sel-1"))
	assert.False(t, srv.Exists("planner:selection:sel-1"))
	require.NoError(t, repo.Delete(ctx, "missing"))
}

func TestSelectionRepositoryCorruptPayload(t *testing.T) {
	repo, srv := newRedisRepo(t)
	require.NoError(t, srv.Set("planner:selection:bad", "{not json"))

	_, err := repo.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestSelectionRepositoryWithoutClient(t *testing.T) {
	repo := NewSelectionRepository(nil, nil)
	_, err := repo.Get(context.Background(), "x")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Error(t, repo.Save(context.Background(), sampleSelection(t), time.Minute))
	assert.NoError(t, repo.Close())
}
