// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrcatalog/internal/metrics"
	"attrcatalog/internal/models"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		client.Del(ctx, TreeKey)
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sampleTree() []models.TreeNode {
	root := uuid.New()
	return []models.TreeNode{{
		ID:   root,
		Name: "Food",
		Slug: "food",
		Children: []models.TreeNode{{
			ID:       uuid.New(),
			Name:     "Dairy",
			Slug:     "dairy",
			ParentID: &root,
			IsLeaf:   true,
			Counts:   models.TreeCounts{AttributesDirect: 2, Products: 5},
			Children: []models.TreeNode{},
		}},
	}}
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), host, port, "")
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)
}

func TestNilTreeCacheAlwaysLoads(t *testing.T) {
	var tc *TreeCache
	ctx := context.Background()

	_, ok := tc.Get(ctx)
	assert.False(t, ok)
	tc.Set(ctx, sampleTree())
	tc.Invalidate(ctx)

	calls := 0
	load := func(context.Context) ([]models.TreeNode, error) {
		calls++
		return sampleTree(), nil
	}
	for i := 0; i < 2; i++ {
		tree, err := tc.GetOrLoad(ctx, load)
		require.NoError(t, err)
		assert.Len(t, tree, 1)
	}
	assert.Equal(t, 2, calls)
}

func TestTreeCacheWithoutClientCountsMisses(t *testing.T) {
	m := metrics.NewCollector()
	tc := NewTreeCache(nil, 0, m)
	assert.Equal(t, DefaultTreeTTL, tc.ttl)

	_, err := tc.GetOrLoad(context.Background(), func(context.Context) ([]models.TreeNode, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreeCacheMisses))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TreeCacheHits))
}

func TestTreeCacheLoadErrorIsNotCached(t *testing.T) {
	tc := NewTreeCache(nil, time.Minute, nil)
	boom := errors.New("boom")

	_, err := tc.GetOrLoad(context.Background(), func(context.Context) ([]models.TreeNode, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestTreeCacheSetGetInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	tc := NewTreeCache(client, time.Minute, nil)
	ctx := context.Background()

	_, ok := tc.Get(ctx)
	require.False(t, ok)

	want := sampleTree()
	tc.Set(ctx, want)

	got, ok := tc.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)

	tc.Invalidate(ctx)
	_, ok = tc.Get(ctx)
	assert.False(t, ok)
}

func TestTreeCacheGetOrLoadHits(t *testing.T) {
	client := testValkeyClient(t)
	m := metrics.NewCollector()
	tc := NewTreeCache(client, time.Minute, m)
	ctx := context.Background()
	tc.Invalidate(ctx)

	calls := 0
	load := func(context.Context) ([]models.TreeNode, error) {
		calls++
		return sampleTree(), nil
	}
	for i := 0; i < 3; i++ {
		_, err := tc.GetOrLoad(ctx, load)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TreeCacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreeCacheMisses))
}

func TestTreeCacheTTL(t *testing.T) {
	client := testValkeyClient(t)
	tc := NewTreeCache(client, 30*time.Second, nil)
	ctx := context.Background()

	tc.Set(ctx, sampleTree())
	ttl, err := client.TTL(ctx, TreeKey).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= 30*time.Second, "ttl = %v", ttl)
}

func TestTreeCacheCorruptEntryIsMiss(t *testing.T) {
	client := testValkeyClient(t)
	tc := NewTreeCache(client, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, TreeKey, "not json", time.Minute).Err())
	_, ok := tc.Get(ctx)
	assert.False(t, ok)
}
