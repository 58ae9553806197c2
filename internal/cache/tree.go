// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"attrcatalog/internal/metrics"
	"attrcatalog/internal/models"
)

const (
	// TreeKey is the Valkey key holding the serialised category tree.
	TreeKey = "catalog:tree"

	// DefaultTreeTTL is how long a cached tree stays valid without writes.
	DefaultTreeTTL = 5 * time.Minute
)

// TreeCache caches the nested category tree in Valkey. A nil *TreeCache,
// or one without a client, never hits and never stores, so the service
// runs unchanged when Valkey is not configured. Cache errors are logged
// and treated as misses.
type TreeCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Collector
}

// NewTreeCache creates a tree cache backed by client. m may be nil.
func NewTreeCache(client *redis.Client, ttl time.Duration, m *metrics.Collector) *TreeCache {
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl, metrics: m}
}

func (tc *TreeCache) enabled() bool {
	return tc != nil && tc.client != nil
}

// Get returns the cached tree, if any.
func (tc *TreeCache) Get(ctx context.Context) ([]models.TreeNode, bool) {
	if !tc.enabled() {
		return nil, false
	}
	val, err := tc.client.Get(ctx, TreeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "error", err)
		return nil, false
	}
	var tree []models.TreeNode
	if err := json.Unmarshal(val, &tree); err != nil {
		slog.Warn("tree cache decode error", "error", err)
		return nil, false
	}
	return tree, true
}

// Set stores the tree with the configured TTL.
func (tc *TreeCache) Set(ctx context.Context, tree []models.TreeNode) {
	if !tc.enabled() {
		return
	}
	b, err := json.Marshal(tree)
	if err != nil {
		slog.Warn("tree cache encode error", "error", err)
		return
	}
	if err := tc.client.Set(ctx, TreeKey, b, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "error", err)
	}
}

// Invalidate drops the cached tree. Every write that changes categories,
// direct links or product placement calls it.
func (tc *TreeCache) Invalidate(ctx context.Context) {
	if !tc.enabled() {
		return
	}
	if err := tc.client.Del(ctx, TreeKey).Err(); err != nil {
		slog.Warn("tree cache invalidate error", "error", err)
		return
	}
	slog.Debug("tree cache invalidated")
}

// GetOrLoad returns the cached tree or builds it with load and caches it.
func (tc *TreeCache) GetOrLoad(ctx context.Context, load func(context.Context) ([]models.TreeNode, error)) ([]models.TreeNode, error) {
	if tree, ok := tc.Get(ctx); ok {
		tc.metricsOrNil().TreeCacheHit()
		return tree, nil
	}
	tc.metricsOrNil().TreeCacheMiss()

	tree, err := load(ctx)
	if err != nil {
		return nil, err
	}
	tc.Set(ctx, tree)
	return tree, nil
}

func (tc *TreeCache) metricsOrNil() *metrics.Collector {
	if tc == nil {
		return nil
	}
	return tc.metrics
}
