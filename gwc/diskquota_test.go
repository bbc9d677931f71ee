// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package gwc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolp(b bool) *bool { return &b }
func intp(n int) *int    { return &n }

func quotap(t *testing.T, value string, unit StorageUnit) *Quota {
	q := mustQuota(t, value, unit)
	return &q
}

func sampleDiskQuota(t *testing.T) *DiskQuotaConfig {
	return &DiskQuotaConfig{
		Enabled:                    boolp(true),
		CacheCleanUpFrequency:      intp(10),
		CacheCleanUpUnits:          "SECONDS",
		MaxConcurrentCleanUps:      intp(2),
		GlobalExpirationPolicyName: LFU,
		GlobalQuota:                quotap(t, "500", MiB),
		LayerQuotas: []LayerQuota{
			{Layer: "topp:states", ExpirationPolicyName: LRU, Quota: quotap(t, "100", GiB)},
			{Layer: "topp:roads"},
		},
	}
}

// assertSameDiskQuota compares quotas by value, since big.Int zero
// values need not be reflect.DeepEqual.
func assertSameDiskQuota(t *testing.T, expected, actual *DiskQuotaConfig) {
	assert.Equal(t, expected.Enabled, actual.Enabled)
	assert.Equal(t, expected.CacheCleanUpFrequency, actual.CacheCleanUpFrequency)
	assert.Equal(t, expected.CacheCleanUpUnits, actual.CacheCleanUpUnits)
	assert.Equal(t, expected.MaxConcurrentCleanUps, actual.MaxConcurrentCleanUps)
	assert.Equal(t, expected.GlobalExpirationPolicyName, actual.GlobalExpirationPolicyName)
	if expected.GlobalQuota == nil {
		assert.Nil(t, actual.GlobalQuota)
	} else if assert.NotNil(t, actual.GlobalQuota) {
		assert.Equal(t, 0, expected.GlobalQuota.Cmp(*actual.GlobalQuota))
	}
	if assert.Len(t, actual.LayerQuotas, len(expected.LayerQuotas)) {
		for i, lq := range expected.LayerQuotas {
			other := actual.LayerQuotas[i]
			assert.Equal(t, lq.Layer, other.Layer)
			assert.Equal(t, lq.ExpirationPolicyName, other.ExpirationPolicyName)
			if lq.Quota == nil {
				assert.Nil(t, other.Quota)
			} else if assert.NotNil(t, other.Quota) {
				assert.Equal(t, 0, lq.Quota.Cmp(*other.Quota))
			}
		}
	}
}

func TestDiskQuotaXML(t *testing.T) {
	c := &DiskQuotaConfig{
		Enabled:                    boolp(true),
		GlobalExpirationPolicyName: LFU,
		GlobalQuota:                quotap(t, "500", MiB),
	}
	data, err := c.XML()
	if assert.NoError(t, err) {
		assert.Equal(t,
			"<gwcQuotaConfiguration>"+
				"<enabled>true</enabled>"+
				"<globalExpirationPolicyName>LFU</globalExpirationPolicyName>"+
				"<globalQuota><value>500</value><units>MiB</units></globalQuota>"+
				"</gwcQuotaConfiguration>",
			string(data))
	}
}

func TestDiskQuotaXMLRoundTrip(t *testing.T) {
	c := sampleDiskQuota(t)
	require.NoError(t, c.Validate())

	data, err := c.XML()
	require.NoError(t, err)
	back, err := DecodeDiskQuota(data)
	require.NoError(t, err)
	assertSameDiskQuota(t, c, back)
}

func TestDiskQuotaJSONRoundTrip(t *testing.T) {
	c := sampleDiskQuota(t)
	data, err := c.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gwcQuotaConfiguration"`)
	assert.Contains(t, string(data), `"value":"500"`)

	back, err := DecodeDiskQuotaJSON(data)
	require.NoError(t, err)
	assertSameDiskQuota(t, c, back)
}

func TestDecodeDiskQuotaServerDocument(t *testing.T) {
	doc := `<gwcQuotaConfiguration>
  <enabled>false</enabled>
  <cacheCleanUpFrequency>5</cacheCleanUpFrequency>
  <cacheCleanUpUnits>SECONDS</cacheCleanUpUnits>
  <maxConcurrentCleanUps>2</maxConcurrentCleanUps>
  <globalExpirationPolicyName>LFU</globalExpirationPolicyName>
  <globalQuota>
    <value>
      0.48828125
    </value>
    <units>GiB</units>
  </globalQuota>
  <layerQuotas/>
</gwcQuotaConfiguration>`
	c, err := DecodeDiskQuota([]byte(doc))
	require.NoError(t, err)
	if assert.NotNil(t, c.Enabled) {
		assert.False(t, *c.Enabled)
	}
	assert.Equal(t, intp(5), c.CacheCleanUpFrequency)
	assert.Equal(t, "SECONDS", c.CacheCleanUpUnits)
	if assert.NotNil(t, c.GlobalQuota) {
		assert.Equal(t, "500 MiB", c.GlobalQuota.String())
	}
	assert.Empty(t, c.LayerQuotas)
}

func TestDecodeDiskQuotaErrors(t *testing.T) {
	_, err := DecodeDiskQuota([]byte("<gwcQuotaConfiguration><globalQuota><units>MiB</units></globalQuota></gwcQuotaConfiguration>"))
	assert.True(t, errors.Is(err, ErrInvalidQuota))

	_, err = DecodeDiskQuota([]byte("<gwcQuotaConfiguration><globalQuota><value>1</value><units>furlongs</units></globalQuota></gwcQuotaConfiguration>"))
	assert.True(t, errors.Is(err, ErrInvalidUnit))

	_, err = DecodeDiskQuota([]byte("<gwcQuotaConfiguration><maxConcurrentCleanUps>many</maxConcurrentCleanUps></gwcQuotaConfiguration>"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestDiskQuotaValidate(t *testing.T) {
	assert.NoError(t, (&DiskQuotaConfig{}).Validate())

	bad := []*DiskQuotaConfig{
		{GlobalExpirationPolicyName: "FIFO"},
		{CacheCleanUpFrequency: intp(-1)},
		{MaxConcurrentCleanUps: intp(0)},
		{LayerQuotas: []LayerQuota{{ExpirationPolicyName: LRU}}},
	}
	for _, c := range bad {
		assert.True(t, errors.Is(c.Validate(), ErrInvalidConfig), "%+v", c)
	}
}

func TestLayerQuotaLookup(t *testing.T) {
	c := &DiskQuotaConfig{}
	_, ok := c.LayerQuota("topp:states")
	assert.False(t, ok)

	c.SetLayerQuota(LayerQuota{Layer: "topp:states", Quota: quotap(t, "1", GiB)})
	c.SetLayerQuota(LayerQuota{Layer: "topp:roads"})
	c.SetLayerQuota(LayerQuota{Layer: "topp:states", Quota: quotap(t, "2", GiB)})
	assert.Len(t, c.LayerQuotas, 2)

	lq, ok := c.LayerQuota("topp:states")
	if assert.True(t, ok) && assert.NotNil(t, lq.Quota) {
		assert.Equal(t, "2 GiB", lq.Quota.String())
	}
}

func TestDiskQuotaUpdate(t *testing.T) {
	cfg := sampleDiskQuota(t)
	cfg.Update(&DiskQuotaConfig{
		Enabled:     boolp(false),
		GlobalQuota: quotap(t, "2", GiB),
		LayerQuotas: []LayerQuota{
			{Layer: "topp:roads", Quota: quotap(t, "1", GiB)},
			{Layer: "sf:streams"},
		},
	})
	assert.False(t, *cfg.Enabled)
	assert.Equal(t, 10, *cfg.CacheCleanUpFrequency)
	assert.Equal(t, LFU, cfg.GlobalExpirationPolicyName)
	assert.Equal(t, "2 GiB", cfg.GlobalQuota.String())
	assert.Len(t, cfg.LayerQuotas, 3)
	roads, ok := cfg.LayerQuota("topp:roads")
	if assert.True(t, ok) && assert.NotNil(t, roads.Quota) {
		assert.Equal(t, "1 GiB", roads.Quota.String())
	}
}
