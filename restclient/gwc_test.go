// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"context"
	"errors"
	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-geoserver/gwc"
	"github.com/diffeo/go-geoserver/restclient"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/big"
	"testing"
	"time"
)

func enabled(b bool) *bool { return &b }

func cacheRoads(t *testing.T, g *restclient.GWC) {
	require.NoError(t, g.PutLayer(context.Background(), &gwc.Layer{
		Name:        "topp:roads",
		Enabled:     enabled(true),
		MimeFormats: []string{"image/png"},
		GridSubsets: []gwc.GridSubset{{GridSetName: "EPSG:4326"}},
	}))
}

func TestGWCLayers(t *testing.T) {
	ctx := context.Background()
	_, client := newFake(t, restclient.Config{})
	g := client.GWC()
	cacheRoads(t, g)

	names, err := g.Layers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"topp:roads"}, names)

	layer, err := g.Layer(ctx, "topp:roads")
	require.NoError(t, err)
	assert.Equal(t, []string{"image/png"}, layer.MimeFormats)
	if assert.NotNil(t, layer.Enabled) {
		assert.True(t, *layer.Enabled)
	}

	require.NoError(t, g.DeleteLayer(ctx, "topp:roads"))
	_, err = g.Layer(ctx, "topp:roads")
	assert.True(t, restdata.IsNotFound(err))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, restclient.Config{})
	fake.SeedPolls = 2
	g := client.GWC()
	cacheRoads(t, g)

	req := &gwc.SeedRequest{
		Layer:       "topp:roads",
		SRS:         4326,
		ZoomStart:   0,
		ZoomStop:    8,
		Format:      "image/png",
		Type:        gwc.Seed,
		ThreadCount: 2,
	}
	require.NoError(t, g.Seed(ctx, req))
	seeds := fake.Seeds()
	if assert.Len(t, seeds, 1) {
		assert.Equal(t, "topp:roads", seeds[0].Layer)
		assert.Equal(t, 8, seeds[0].ZoomStop)
		assert.Equal(t, gwc.Seed, seeds[0].Type)
	}

	tasks, err := g.Status(ctx, "topp:roads")
	require.NoError(t, err)
	if assert.Len(t, tasks, 1) {
		assert.True(t, tasks[0].Active())
		assert.Equal(t, int64(100), tasks[0].TilesTotal)
	}
	tasks, err = g.Status(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	err = g.Seed(ctx, &gwc.SeedRequest{Layer: "nothing", Type: gwc.Seed, Format: "image/png"})
	assert.True(t, restdata.IsNotFound(err))
}

func TestKill(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, restclient.Config{})
	fake.SeedPolls = 100
	g := client.GWC()
	cacheRoads(t, g)
	req := &gwc.SeedRequest{Layer: "topp:roads", Type: gwc.Reseed, Format: "image/png"}
	require.NoError(t, g.Seed(ctx, req))
	require.NoError(t, g.Seed(ctx, req))

	require.NoError(t, g.Kill(ctx, "topp:roads", restclient.KillPending))
	tasks, err := g.Status(ctx, "topp:roads")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	require.NoError(t, g.Kill(ctx, "", restclient.KillAll))
	tasks, err = g.Status(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestWaitForSeed(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	fake, client := newFake(t, restclient.Config{}, restclient.WithClock(mock))
	fake.SeedPolls = 4
	g := client.GWC()
	cacheRoads(t, g)
	require.NoError(t, g.Seed(ctx, &gwc.SeedRequest{Layer: "topp:roads", Type: gwc.Seed, Format: "image/png"}))

	done := make(chan error, 1)
	go func() {
		done <- g.WaitForSeed(ctx, "topp:roads", 5*time.Second)
	}()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case err := <-done:
			assert.NoError(t, err)
			tasks, err := g.Status(ctx, "topp:roads")
			assert.NoError(t, err)
			assert.Empty(t, tasks)
			return
		case <-deadline:
			t.Fatal("seed never finished")
		default:
			mock.Add(5 * time.Second)
		}
	}
}

func TestWaitForSeedInterval(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, restclient.Config{}, restclient.WithClock(clock.NewMock()))
	g := client.GWC()
	cacheRoads(t, g)
	require.NoError(t, g.Seed(ctx, &gwc.SeedRequest{Layer: "topp:roads", Type: gwc.Seed, Format: "image/png"}))

	for _, interval := range []time.Duration{0, -time.Second} {
		err := g.WaitForSeed(ctx, "topp:roads", interval)
		assert.True(t, errors.Is(err, restclient.ErrInvalidInterval), "%v: %v", interval, err)
	}
	assert.Len(t, fake.Seeds(), 1)
}

func TestWaitForSeedCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake, client := newFake(t, restclient.Config{}, restclient.WithClock(clock.NewMock()))
	fake.SeedPolls = 1000
	g := client.GWC()
	cacheRoads(t, g)
	require.NoError(t, g.Seed(ctx, &gwc.SeedRequest{Layer: "topp:roads", Type: gwc.Seed, Format: "image/png"}))

	done := make(chan error, 1)
	go func() {
		done <- g.WaitForSeed(ctx, "topp:roads", time.Minute)
	}()
	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "%v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("WaitForSeed ignored cancellation")
	}
}

func TestTruncateAndReload(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, restclient.Config{})
	g := client.GWC()
	cacheRoads(t, g)

	require.NoError(t, g.TruncateLayer(ctx, "topp:roads"))
	assert.Equal(t, []string{"topp:roads"}, fake.Truncated())
	assert.True(t, restdata.IsNotFound(g.TruncateLayer(ctx, "nothing")))

	require.NoError(t, g.Reload(ctx))
	assert.Equal(t, 1, fake.GWCReloads())
}

func TestDiskQuota(t *testing.T) {
	ctx := context.Background()
	_, client := newFake(t, restclient.Config{})
	g := client.GWC()

	global, err := gwc.QuotaOf("2", gwc.GiB)
	require.NoError(t, err)
	freq := 10
	require.NoError(t, g.SetDiskQuota(ctx, &gwc.DiskQuotaConfig{
		Enabled:                    enabled(true),
		CacheCleanUpFrequency:      &freq,
		CacheCleanUpUnits:          "SECONDS",
		GlobalExpirationPolicyName: gwc.LFU,
		GlobalQuota:                &global,
	}))

	cfg, err := g.DiskQuota(ctx)
	require.NoError(t, err)
	if assert.NotNil(t, cfg.Enabled) {
		assert.True(t, *cfg.Enabled)
	}
	assert.Equal(t, gwc.LFU, cfg.GlobalExpirationPolicyName)
	if assert.NotNil(t, cfg.GlobalQuota) {
		assert.Equal(t, "2 GiB", cfg.GlobalQuota.String())
	}

	// A partial JSON update leaves the rest alone
	layerQuota := gwc.NewQuota(big.NewInt(512 * 1024 * 1024))
	require.NoError(t, g.SetDiskQuotaJSON(ctx, &gwc.DiskQuotaConfig{
		Enabled: enabled(false),
		LayerQuotas: []gwc.LayerQuota{
			{Layer: "topp:roads", ExpirationPolicyName: gwc.LRU, Quota: &layerQuota},
		},
	}))
	cfg, err = g.DiskQuotaJSON(ctx)
	require.NoError(t, err)
	if assert.NotNil(t, cfg.Enabled) {
		assert.False(t, *cfg.Enabled)
	}
	if assert.NotNil(t, cfg.CacheCleanUpFrequency) {
		assert.Equal(t, 10, *cfg.CacheCleanUpFrequency)
	}
	lq, ok := cfg.LayerQuota("topp:roads")
	if assert.True(t, ok) && assert.NotNil(t, lq.Quota) {
		assert.Equal(t, "512 MiB", lq.Quota.String())
	}
}
