package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicwatch/civicwatch/internal/application/place/dto"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

func newTestPlacesCache(t *testing.T) (*RedisPlacesCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPlacesCache(client, logger.NewNop()), mr
}

func TestRedisPlacesCache_RoundTrip(t *testing.T) {
	c, mr := newTestPlacesCache(t)
	ctx := context.Background()

	got, err := c.Get(ctx, true)
	require.NoError(t, err)
	assert.Nil(t, got)

	places := &dto.PlacesDTO{
		Barangays:  []dto.BarangayDTO{{ID: 1, Name: "Poblacion", IsAvailable: true}},
		IssueTypes: []dto.IssueTypeDTO{{ID: 2, Name: "Fire", Priority: "High"}},
	}
	require.NoError(t, c.Set(ctx, true, places))

	got, err = c.Get(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Poblacion", got.Barangays[0].Name)
	assert.Equal(t, "High", got.IssueTypes[0].Priority)

	ttl := mr.TTL(placesKeyPrefix + "available")
	assert.GreaterOrEqual(t, ttl, basePlacesTTL)
	assert.Less(t, ttl, basePlacesTTL+placesTTLJitter)

	miss, err := c.Get(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestRedisPlacesCache_Invalidate(t *testing.T) {
	c, mr := newTestPlacesCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, true, &dto.PlacesDTO{}))
	require.NoError(t, c.Set(ctx, false, &dto.PlacesDTO{}))
	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(placesKeyPrefix+"available"))
	assert.False(t, mr.Exists(placesKeyPrefix+"all"))
}

func TestRedisPlacesCache_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestPlacesCache(t)
	require.NoError(t, mr.Set(placesKeyPrefix+"all", "{not json"))

	got, err := c.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(placesKeyPrefix+"all"))
}

func TestRedisPlacesCache_ServerDown(t *testing.T) {
	c, mr := newTestPlacesCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), true)
	assert.Error(t, err)
}
