package adapter

import (
	"context"
	"testing"
	"time"

	"quizhive/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisCacheAdapter_GetSetDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(client)
	ctx := context.Background()

	mock.ExpectSet("k1", "v1", time.Minute).SetVal("OK")
	err := cacheAdapter.Set(ctx, "k1", "v1", time.Minute)
	assert.NoError(t, err)

	mock.ExpectGet("k1").SetVal("v1")
	val, err := cacheAdapter.Get(ctx, "k1")
	assert.NoError(t, err)
	assert.Equal(t, "v1", val)

	mock.ExpectDel("k1").SetVal(1)
	assert.NoError(t, cacheAdapter.Delete(ctx, "k1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(client)

	mock.ExpectGet("missing").RedisNil()
	_, err := cacheAdapter.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_Expire(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(client)

	mock.ExpectExpire("k1", time.Hour).SetVal(true)
	assert.NoError(t, cacheAdapter.Expire(context.Background(), "k1", time.Hour))

	assert.NoError(t, mock.ExpectationsWereMet())
}
