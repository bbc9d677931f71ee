// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package gwc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
)

// ExpirationPolicy names how tiles are evicted once a quota is hit.
type ExpirationPolicy string

// Expiration policies supported by GeoWebCache.
const (
	LFU ExpirationPolicy = "LFU"
	LRU ExpirationPolicy = "LRU"
)

// Valid reports whether p is a known policy.
func (p ExpirationPolicy) Valid() bool {
	return p == LFU || p == LRU
}

// DiskQuotaConfig is the GeoWebCache disk quota configuration.  Nil
// fields are left out of the encoded document, so a partial config
// can be PUT to change only some settings.
type DiskQuotaConfig struct {
	Enabled                    *bool
	CacheCleanUpFrequency      *int
	CacheCleanUpUnits          string // a java.util.concurrent.TimeUnit name, e.g. SECONDS
	MaxConcurrentCleanUps      *int
	GlobalExpirationPolicyName ExpirationPolicy
	GlobalQuota                *Quota
	LayerQuotas                []LayerQuota
}

// LayerQuota limits the storage used by one cached layer.
type LayerQuota struct {
	Layer                string
	ExpirationPolicyName ExpirationPolicy
	Quota                *Quota
}

// Validate checks enumerated fields and ranges.
func (c *DiskQuotaConfig) Validate() error {
	if c.GlobalExpirationPolicyName != "" && !c.GlobalExpirationPolicyName.Valid() {
		return fmt.Errorf("%w: expiration policy %q", ErrInvalidConfig, c.GlobalExpirationPolicyName)
	}
	if c.CacheCleanUpFrequency != nil && *c.CacheCleanUpFrequency < 0 {
		return fmt.Errorf("%w: negative cleanup frequency", ErrInvalidConfig)
	}
	if c.MaxConcurrentCleanUps != nil && *c.MaxConcurrentCleanUps < 1 {
		return fmt.Errorf("%w: maxConcurrentCleanUps must be positive", ErrInvalidConfig)
	}
	if c.GlobalQuota != nil && c.GlobalQuota.Bytes().Sign() < 0 {
		return fmt.Errorf("%w: negative global quota", ErrInvalidConfig)
	}
	for _, lq := range c.LayerQuotas {
		if lq.Layer == "" {
			return fmt.Errorf("%w: layer quota without a layer", ErrInvalidConfig)
		}
		if lq.ExpirationPolicyName != "" && !lq.ExpirationPolicyName.Valid() {
			return fmt.Errorf("%w: expiration policy %q for %s", ErrInvalidConfig, lq.ExpirationPolicyName, lq.Layer)
		}
	}
	return nil
}

// LayerQuota returns the quota entry for layer, if any.
func (c *DiskQuotaConfig) LayerQuota(layer string) (LayerQuota, bool) {
	for _, lq := range c.LayerQuotas {
		if lq.Layer == layer {
			return lq, true
		}
	}
	return LayerQuota{}, false
}

// SetLayerQuota adds or replaces the quota entry for lq.Layer.
func (c *DiskQuotaConfig) SetLayerQuota(lq LayerQuota) {
	for i := range c.LayerQuotas {
		if c.LayerQuotas[i].Layer == lq.Layer {
			c.LayerQuotas[i] = lq
			return
		}
	}
	c.LayerQuotas = append(c.LayerQuotas, lq)
}

// Update copies the fields set in other into c, the way GeoWebCache
// applies a partial document.  Layer quotas are replaced by layer.
func (c *DiskQuotaConfig) Update(other *DiskQuotaConfig) {
	if other.Enabled != nil {
		c.Enabled = other.Enabled
	}
	if other.CacheCleanUpFrequency != nil {
		c.CacheCleanUpFrequency = other.CacheCleanUpFrequency
	}
	if other.CacheCleanUpUnits != "" {
		c.CacheCleanUpUnits = other.CacheCleanUpUnits
	}
	if other.MaxConcurrentCleanUps != nil {
		c.MaxConcurrentCleanUps = other.MaxConcurrentCleanUps
	}
	if other.GlobalExpirationPolicyName != "" {
		c.GlobalExpirationPolicyName = other.GlobalExpirationPolicyName
	}
	if other.GlobalQuota != nil {
		c.GlobalQuota = other.GlobalQuota
	}
	for _, lq := range other.LayerQuotas {
		c.SetLayerQuota(lq)
	}
}

// QuotaElement encodes q as <tag><value/><units/></tag>, with the value
// written exactly in its best-fit unit.
func QuotaElement(tag string, q Quota) *etree.Element {
	e := etree.NewElement(tag)
	value, unit := q.Value()
	xmltree.Set(e, "value", value)
	xmltree.Set(e, "units", unit.String())
	return e
}

// QuotaFromElement decodes the inverse of QuotaElement.  A missing unit
// means bytes.
func QuotaFromElement(e *etree.Element) (Quota, error) {
	value, ok := xmltree.Get(e, "value")
	if !ok {
		return Quota{}, fmt.Errorf("%w: <%s> has no value", ErrInvalidQuota, e.Tag)
	}
	unit := B
	if units, ok := xmltree.Get(e, "units"); ok && units != "" {
		var err error
		if unit, err = ParseStorageUnit(units); err != nil {
			return Quota{}, err
		}
	}
	return QuotaOf(value, unit)
}

// Element encodes the configuration as <gwcQuotaConfiguration>.
func (c *DiskQuotaConfig) Element() *etree.Element {
	root := etree.NewElement("gwcQuotaConfiguration")
	if c.Enabled != nil {
		xmltree.Set(root, "enabled", strconv.FormatBool(*c.Enabled))
	}
	if c.CacheCleanUpFrequency != nil {
		xmltree.Set(root, "cacheCleanUpFrequency", strconv.Itoa(*c.CacheCleanUpFrequency))
	}
	if c.CacheCleanUpUnits != "" {
		xmltree.Set(root, "cacheCleanUpUnits", c.CacheCleanUpUnits)
	}
	if c.MaxConcurrentCleanUps != nil {
		xmltree.Set(root, "maxConcurrentCleanUps", strconv.Itoa(*c.MaxConcurrentCleanUps))
	}
	if c.GlobalExpirationPolicyName != "" {
		xmltree.Set(root, "globalExpirationPolicyName", string(c.GlobalExpirationPolicyName))
	}
	if c.GlobalQuota != nil {
		root.AddChild(QuotaElement("globalQuota", *c.GlobalQuota))
	}
	if len(c.LayerQuotas) > 0 {
		list := root.CreateElement("layerQuotas")
		for _, lq := range c.LayerQuotas {
			entry := list.CreateElement("LayerQuota")
			xmltree.Set(entry, "layer", lq.Layer)
			if lq.ExpirationPolicyName != "" {
				xmltree.Set(entry, "expirationPolicyName", string(lq.ExpirationPolicyName))
			}
			if lq.Quota != nil {
				entry.AddChild(QuotaElement("quota", *lq.Quota))
			}
		}
	}
	return root
}

// XML encodes the configuration document.
func (c *DiskQuotaConfig) XML() ([]byte, error) {
	return xmltree.Write(c.Element(), 0)
}

// DecodeDiskQuota parses a <gwcQuotaConfiguration> document.
func DecodeDiskQuota(data []byte) (*DiskQuotaConfig, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, err
	}
	return DiskQuotaFromElement(root)
}

// DiskQuotaFromElement decodes an already-parsed configuration.
func DiskQuotaFromElement(root *etree.Element) (*DiskQuotaConfig, error) {
	c := &DiskQuotaConfig{}
	var err error
	if v, ok := xmltree.Get(root, "enabled"); ok {
		b := v == "true"
		c.Enabled = &b
	}
	if c.CacheCleanUpFrequency, err = optionalInt(root, "cacheCleanUpFrequency"); err != nil {
		return nil, err
	}
	c.CacheCleanUpUnits, _ = xmltree.Get(root, "cacheCleanUpUnits")
	if c.MaxConcurrentCleanUps, err = optionalInt(root, "maxConcurrentCleanUps"); err != nil {
		return nil, err
	}
	policy, _ := xmltree.Get(root, "globalExpirationPolicyName")
	c.GlobalExpirationPolicyName = ExpirationPolicy(policy)
	if e := root.SelectElement("globalQuota"); e != nil {
		q, err := QuotaFromElement(e)
		if err != nil {
			return nil, err
		}
		c.GlobalQuota = &q
	}
	for _, e := range xmltree.Search(root, xmltree.Name("LayerQuota"), 2) {
		lq := LayerQuota{}
		lq.Layer, _ = xmltree.Get(e, "layer")
		policy, _ := xmltree.Get(e, "expirationPolicyName")
		lq.ExpirationPolicyName = ExpirationPolicy(policy)
		if qe := e.SelectElement("quota"); qe != nil {
			q, err := QuotaFromElement(qe)
			if err != nil {
				return nil, err
			}
			lq.Quota = &q
		}
		c.LayerQuotas = append(c.LayerQuotas, lq)
	}
	return c, nil
}

// The JSON form mirrors the XML one, wrapped in a single
// "gwcQuotaConfiguration" key.
type diskQuotaJSON struct {
	Config diskQuotaBodyJSON `json:"gwcQuotaConfiguration"`
}

type diskQuotaBodyJSON struct {
	Enabled                    *bool            `json:"enabled,omitempty"`
	CacheCleanUpFrequency      *int             `json:"cacheCleanUpFrequency,omitempty"`
	CacheCleanUpUnits          string           `json:"cacheCleanUpUnits,omitempty"`
	MaxConcurrentCleanUps      *int             `json:"maxConcurrentCleanUps,omitempty"`
	GlobalExpirationPolicyName string           `json:"globalExpirationPolicyName,omitempty"`
	GlobalQuota                *quotaJSON       `json:"globalQuota,omitempty"`
	LayerQuotas                []layerQuotaJSON `json:"layerQuotas,omitempty"`
}

type quotaJSON struct {
	// Value is a decimal string so that huge quotas survive
	// clients that parse JSON numbers as doubles.
	Value string `json:"value"`
	Units string `json:"units"`
}

type layerQuotaJSON struct {
	Layer                string     `json:"layer"`
	ExpirationPolicyName string     `json:"expirationPolicyName,omitempty"`
	Quota                *quotaJSON `json:"quota,omitempty"`
}

func toQuotaJSON(q *Quota) *quotaJSON {
	if q == nil {
		return nil
	}
	value, unit := q.Value()
	return &quotaJSON{Value: value, Units: unit.String()}
}

func fromQuotaJSON(q *quotaJSON) (*Quota, error) {
	if q == nil {
		return nil, nil
	}
	unit := B
	if q.Units != "" {
		var err error
		if unit, err = ParseStorageUnit(q.Units); err != nil {
			return nil, err
		}
	}
	quota, err := QuotaOf(q.Value, unit)
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// JSON encodes the configuration in its JSON form.
func (c *DiskQuotaConfig) JSON() ([]byte, error) {
	body := diskQuotaBodyJSON{
		Enabled:                    c.Enabled,
		CacheCleanUpFrequency:      c.CacheCleanUpFrequency,
		CacheCleanUpUnits:          c.CacheCleanUpUnits,
		MaxConcurrentCleanUps:      c.MaxConcurrentCleanUps,
		GlobalExpirationPolicyName: string(c.GlobalExpirationPolicyName),
		GlobalQuota:                toQuotaJSON(c.GlobalQuota),
	}
	for _, lq := range c.LayerQuotas {
		body.LayerQuotas = append(body.LayerQuotas, layerQuotaJSON{
			Layer:                lq.Layer,
			ExpirationPolicyName: string(lq.ExpirationPolicyName),
			Quota:                toQuotaJSON(lq.Quota),
		})
	}
	var buf bytes.Buffer
	err := restdata.EncodeJSON(&buf, diskQuotaJSON{Config: body})
	return buf.Bytes(), err
}

// DecodeDiskQuotaJSON parses the JSON form of the configuration.
func DecodeDiskQuotaJSON(data []byte) (*DiskQuotaConfig, error) {
	var doc diskQuotaJSON
	if err := restdata.DecodeJSON(bytes.NewReader(data), &doc); err != nil {
		return nil, err
	}
	body := doc.Config
	c := &DiskQuotaConfig{
		Enabled:                    body.Enabled,
		CacheCleanUpFrequency:      body.CacheCleanUpFrequency,
		CacheCleanUpUnits:          body.CacheCleanUpUnits,
		MaxConcurrentCleanUps:      body.MaxConcurrentCleanUps,
		GlobalExpirationPolicyName: ExpirationPolicy(body.GlobalExpirationPolicyName),
	}
	var err error
	if c.GlobalQuota, err = fromQuotaJSON(body.GlobalQuota); err != nil {
		return nil, err
	}
	for _, lqj := range body.LayerQuotas {
		lq := LayerQuota{
			Layer:                lqj.Layer,
			ExpirationPolicyName: ExpirationPolicy(lqj.ExpirationPolicyName),
		}
		if lq.Quota, err = fromQuotaJSON(lqj.Quota); err != nil {
			return nil, err
		}
		c.LayerQuotas = append(c.LayerQuotas, lq)
	}
	return c, nil
}

func optionalInt(root *etree.Element, path string) (*int, error) {
	v, ok := xmltree.Get(root, path)
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%w: <%s> %q", ErrInvalidConfig, path, v)
	}
	return &n, nil
}
