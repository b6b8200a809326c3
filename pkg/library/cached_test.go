package library

import (
	"context"
	"testing"
	"time"

	"bookservice/pkg/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingLibrary struct {
	*Memory
	bookReads int
}

func (c *countingLibrary) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	c.bookReads++
	return c.Memory.GetBookByID(ctx, id)
}

func setupCache(t *testing.T) (*Cached, *countingLibrary, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	next := &countingLibrary{Memory: NewMemory(DefaultData())}
	return NewCached(next, client, time.Minute, zap.NewNop()), next, mr
}

func TestCachedServesRepeatedReads(t *testing.T) {
	cache, next, mr := setupCache(t)
	ctx := context.Background()

	first, err := cache.GetBookByID(ctx, 1)
	require.NoError(t, err)
	second, err := cache.GetBookByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, next.bookReads)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.AuthorIDs(), second.AuthorIDs())
	assert.True(t, mr.Exists("catalog:g0:book:1"))

	ttl := mr.TTL("catalog:g0:book:1")
	assert.Equal(t, time.Minute, ttl)
}

func TestCachedWriteBumpsGeneration(t *testing.T) {
	cache, next, mr := setupCache(t)
	ctx := context.Background()

	_, err := cache.GetBookByID(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, cache.UpdateAuthor(ctx, 3, 1))
	gen, err := mr.Get(generationKey)
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	book, err := cache.GetBookByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, next.bookReads)
	assert.Equal(t, []int{1, 2, 5, 3}, book.AuthorIDs())
	assert.True(t, mr.Exists("catalog:g1:book:1"))
}

func TestCachedFailedWriteKeepsGeneration(t *testing.T) {
	cache, _, mr := setupCache(t)
	ctx := context.Background()

	_, err := cache.RemoveGenre(ctx, 1)
	assert.ErrorIs(t, err, ErrInUse)
	assert.False(t, mr.Exists(generationKey))
}

func TestCachedDoesNotCacheNotFound(t *testing.T) {
	cache, next, _ := setupCache(t)
	ctx := context.Background()

	_, err := cache.GetBookByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cache.GetBookByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 2, next.bookReads)
}

func TestCachedFallsThroughWhenRedisIsDown(t *testing.T) {
	cache, next, mr := setupCache(t)
	ctx := context.Background()

	mr.Close()

	book, err := cache.GetBookByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Book1", book.Name)
	assert.Equal(t, 1, next.bookReads)

	_, err = cache.AddGenre(ctx, models.Genre{ID: 9, Name: "Poetry"})
	assert.NoError(t, err)
}
