package prommetrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/admin"
	"github.com/karupanerura/named-cache/expiration"
	"github.com/karupanerura/named-cache/locator"
	"github.com/karupanerura/named-cache/metrics/prommetrics"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}
	return byName
}

func find(t *testing.T, mf *dto.MetricFamily, labels map[string]string) *dto.Metric {
	t.Helper()
	require.NotNil(t, mf)

	for _, m := range mf.GetMetric() {
		matched := 0
		for _, lp := range m.GetLabel() {
			if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
				matched++
			}
		}
		if matched == len(labels) {
			return m
		}
	}
	t.Fatalf("%s has no series with %v", mf.GetName(), labels)
	return nil
}

func TestCacheMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := prommetrics.NewCacheMetrics(reg)
	c := namedcache.NewCache("users", expiration.Never(), namedcache.WithMetrics(m))

	_, err := namedcache.Get(c, "alice", func() (string, error) { return "Alice", nil })
	require.NoError(t, err)
	_, err = namedcache.Get(c, "alice", func() (string, error) { return "unused", nil })
	require.NoError(t, err)
	_, err = namedcache.Get(c, "bob", func() (string, error) { return "", errors.New("boom") })
	require.Error(t, err)

	c.Clear("alice")
	c.ClearAll()

	families := gather(t, reg)
	cache := map[string]string{"cache": "users"}

	assert.GreaterOrEqual(t, find(t, families["namedcache_hits_total"], cache).GetCounter().GetValue(), 1.0)
	assert.GreaterOrEqual(t, find(t, families["namedcache_misses_total"], cache).GetCounter().GetValue(), 2.0)
	assert.Equal(t, uint64(2), find(t, families["namedcache_populate_duration_seconds"], cache).GetHistogram().GetSampleCount())
	assert.Equal(t, 1.0, find(t, families["namedcache_populate_errors_total"], cache).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, families["namedcache_clears_total"], map[string]string{"cache": "users", "scope": "item"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, families["namedcache_clears_total"], map[string]string{"cache": "users", "scope": "all"}).GetCounter().GetValue())
}

func TestCacheMetrics_Populated(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := prommetrics.NewCacheMetrics(reg)
	m.Populated("slow", 1500*time.Millisecond, nil)

	h := find(t, gather(t, reg)["namedcache_populate_duration_seconds"], map[string]string{"cache": "slow"}).GetHistogram()
	assert.Equal(t, uint64(1), h.GetSampleCount())
	assert.InDelta(t, 1.5, h.GetSampleSum(), 1e-9)
}

func TestCacheMetrics_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	prommetrics.NewCacheMetrics(reg)
	assert.Panics(t, func() { prommetrics.NewCacheMetrics(reg) })
}

func TestAdminMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := prommetrics.NewAdminMetrics(reg)

	caches := locator.New()
	caches.Register(namedcache.NewCache("users", expiration.Never()))
	r := admin.New(caches, admin.WithMetrics(m))

	ctx := context.Background()
	require.NoError(t, r.RegisterItem(ctx, admin.ItemDescriptor{
		CacheName: "users",
		ItemKey:   "alice",
		Producer:  admin.ProducerFunc(func(context.Context) (string, error) { return "Alice", nil }),
	}, true))
	require.NoError(t, r.RefreshItem(ctx, "users", "alice"))
	require.Error(t, r.RefreshItem(ctx, "users", "bob"))
	require.Error(t, r.ClearCache("users"))

	ops := gather(t, reg)["namedcache_admin_operations_total"]
	assert.Equal(t, 1.0, find(t, ops, map[string]string{"op": admin.OpRegisterItem, "cache": "users", "result": "ok"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, ops, map[string]string{"op": admin.OpRefreshItem, "cache": "users", "result": "ok"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, ops, map[string]string{"op": admin.OpRefreshItem, "cache": "users", "result": "error"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, ops, map[string]string{"op": admin.OpClearCache, "cache": "users", "result": "error"}).GetCounter().GetValue())
}
