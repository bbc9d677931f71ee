// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package manifest describes a GeoServer configuration declaratively
// and applies it through the REST client.  A manifest is a YAML file:
//
//	workspaces:
//	  - name: topp
//	    uri: http://example.com/topp
//	stores:
//	  - name: db
//	    workspace: topp
//	    kind: postgis
//	    url: postgres://gis@db/gis?sslmode=disable
//	styles:
//	  - name: roads
//	    workspace: topp
//	    file: styles/roads.sld
//	defaults:
//	  srs: EPSG:4326
//	  queryable: true
//	layers:
//	  - name: roads
//	    workspace: topp
//	    store: db
//	    default_style: topp:roads
//	cache:
//	  - layer: topp:roads
//	    formats: [image/png]
//	    expire: 1h
//
// Every layer is filled in from defaults where it leaves a field
// unset.  Apply creates what is missing and updates what exists.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"time"

	"dario.cat/mergo"
	"github.com/diffeo/go-geoserver/encoder"
	"github.com/diffeo/go-geoserver/gwc"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

// ErrInvalidManifest is returned, wrapped, for manifests that cannot
// be applied.
var ErrInvalidManifest = errors.New("invalid manifest")

// Store kinds.
const (
	PostGIS     = "postgis"
	Shapefile   = "shapefile"
	Directory   = "directory"
	GeoTIFF     = "geotiff"
	ImageMosaic = "imagemosaic"
	WorldImage  = "worldimage"
	ArcGrid     = "arcgrid"
)

var dataStoreTypes = map[string]string{
	PostGIS:   encoder.PostGISType,
	Shapefile: encoder.ShapefileType,
	Directory: encoder.ShapefileDirectoryType,
}

var coverageStoreTypes = map[string]string{
	GeoTIFF:     encoder.GeoTIFFType,
	ImageMosaic: encoder.ImageMosaicType,
	WorldImage:  encoder.WorldImageType,
	ArcGrid:     encoder.ArcGridType,
}

// builtinStyles ship with every GeoServer.
var builtinStyles = map[string]bool{
	"generic": true,
	"point":   true,
	"line":    true,
	"polygon": true,
	"raster":  true,
}

// Workspace declares a workspace and, if URI is set, its namespace URI.
type Workspace struct {
	Name string `mapstructure:"name"`
	URI  string `mapstructure:"uri"`
}

// Store declares a data store or coverage store.
type Store struct {
	Name        string `mapstructure:"name"`
	Workspace   string `mapstructure:"workspace"`
	Kind        string `mapstructure:"kind"`
	URL         string `mapstructure:"url"`
	Charset     string `mapstructure:"charset"`
	Description string `mapstructure:"description"`
}

// IsCoverage reports whether the store holds rasters.
func (s Store) IsCoverage() bool {
	_, ok := coverageStoreTypes[s.Kind]
	return ok
}

// Style declares a style whose SLD document is in File, relative to the
// manifest, or inline in SLD.
type Style struct {
	Name      string `mapstructure:"name"`
	Workspace string `mapstructure:"workspace"`
	File      string `mapstructure:"file"`
	SLD       string `mapstructure:"sld"`
}

// Layer declares a published feature type or coverage.
type Layer struct {
	Name            string   `mapstructure:"name"`
	Workspace       string   `mapstructure:"workspace"`
	Store           string   `mapstructure:"store"`
	NativeName      string   `mapstructure:"native_name"`
	Title           string   `mapstructure:"title"`
	Abstract        string   `mapstructure:"abstract"`
	SRS             string   `mapstructure:"srs"`
	Keywords        []string `mapstructure:"keywords"`
	DefaultStyle    string   `mapstructure:"default_style"`
	Styles          []string `mapstructure:"styles"`
	Enabled         *bool    `mapstructure:"enabled"`
	Queryable       *bool    `mapstructure:"queryable"`
	Attribution     string   `mapstructure:"attribution"`
	AttributionHref string   `mapstructure:"attribution_href"`
}

// QualifiedName is the workspace:name of the layer.
func (l Layer) QualifiedName() string {
	return restdata.QualifiedName(l.Workspace, l.Name)
}

// LayerGroup declares a layer group, global if Workspace is empty.
type LayerGroup struct {
	Name      string   `mapstructure:"name"`
	Workspace string   `mapstructure:"workspace"`
	Title     string   `mapstructure:"title"`
	Mode      string   `mapstructure:"mode"`
	Layers    []string `mapstructure:"layers"`
}

// CachedLayer declares the GeoWebCache settings of a layer.
type CachedLayer struct {
	Layer     string        `mapstructure:"layer"`
	Enabled   *bool         `mapstructure:"enabled"`
	Formats   []string      `mapstructure:"formats"`
	GridSets  []string      `mapstructure:"grid_sets"`
	MetaTiles int           `mapstructure:"meta_tiles"`
	Expire    time.Duration `mapstructure:"expire"`
}

// DiskQuota declares the GeoWebCache disk quota.  Quotas are written
// like "500 MiB" or "2GB".
type DiskQuota struct {
	Enabled               *bool             `mapstructure:"enabled"`
	Policy                string            `mapstructure:"policy"`
	Global                string            `mapstructure:"global"`
	CleanupFrequency      time.Duration     `mapstructure:"cleanup_frequency"`
	MaxConcurrentCleanups int               `mapstructure:"max_concurrent_cleanups"`
	Layers                map[string]string `mapstructure:"layers"`
}

// Manifest is a complete declarative configuration.
type Manifest struct {
	Workspaces  []Workspace   `mapstructure:"workspaces"`
	Stores      []Store       `mapstructure:"stores"`
	Styles      []Style       `mapstructure:"styles"`
	Defaults    Layer         `mapstructure:"defaults"`
	Layers      []Layer       `mapstructure:"layers"`
	LayerGroups []LayerGroup  `mapstructure:"layer_groups"`
	Cache       []CachedLayer `mapstructure:"cache"`
	DiskQuota   *DiskQuota    `mapstructure:"disk_quota"`

	// Dir is where style files are looked up.
	Dir string `mapstructure:"-"`
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes a manifest and fills in layer defaults.  It does not
// validate it.
func Parse(data []byte) (*Manifest, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	m := &Manifest{}
	if raw == nil {
		return m, nil
	}
	config := mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringKeys,
		),
		ErrorUnused: true,
		Result:      m,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	for i := range m.Layers {
		// Without dereferencing, an explicit false is not empty
		if err := mergo.Merge(&m.Layers[i], m.Defaults, mergo.WithoutDereference); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// stringKeys is a mapstructure decode hook that turns the
// interface-keyed maps YAML produces into string-keyed ones.
func stringKeys(from, to reflect.Type, data interface{}) (interface{}, error) {
	in, ok := data.(map[interface{}]interface{})
	if !ok {
		return data, nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		key, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("non-string key %v", k)
		}
		out[key] = v
	}
	return out, nil
}

// SLDBody returns the style document.
func (m *Manifest) SLDBody(s Style) ([]byte, error) {
	if s.SLD != "" {
		return []byte(s.SLD), nil
	}
	path := s.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.Dir, path)
	}
	return ioutil.ReadFile(path)
}

func (m *Manifest) store(workspace, name string) (Store, bool) {
	for _, s := range m.Stores {
		if s.Workspace == workspace && s.Name == name {
			return s, true
		}
	}
	return Store{}, false
}

// Validate checks that names are present and unique and that every
// reference points at something declared in the manifest.
func (m *Manifest) Validate() error {
	var errs []string
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}
	seen := make(map[string]bool)
	unique := func(kind, key string) {
		if seen[kind+" "+key] {
			fail("duplicate %s %q", kind, key)
		}
		seen[kind+" "+key] = true
	}
	workspace := func(kind, name, ws string) {
		if ws != "" && !seen["workspace "+ws] {
			fail("%s %q: undeclared workspace %q", kind, name, ws)
		}
	}

	for _, w := range m.Workspaces {
		if w.Name == "" {
			fail("workspace without a name")
			continue
		}
		unique("workspace", w.Name)
	}

	for _, s := range m.Stores {
		if s.Name == "" || s.Workspace == "" {
			fail("store %q needs a name and a workspace", s.Name)
			continue
		}
		unique("store", restdata.QualifiedName(s.Workspace, s.Name))
		workspace("store", s.Name, s.Workspace)
		_, data := dataStoreTypes[s.Kind]
		if !data && !s.IsCoverage() {
			fail("store %q: unknown kind %q", s.Name, s.Kind)
		}
		if s.Kind == PostGIS {
			if _, err := encoder.PostGISParamsFromURL(s.URL); err != nil {
				fail("store %q: %v", s.Name, err)
			}
		} else if s.URL == "" {
			fail("store %q needs a url", s.Name)
		}
	}

	for _, s := range m.Styles {
		if s.Name == "" {
			fail("style without a name")
			continue
		}
		unique("style", restdata.QualifiedName(s.Workspace, s.Name))
		workspace("style", s.Name, s.Workspace)
		if (s.File == "") == (s.SLD == "") {
			fail("style %q needs exactly one of file and sld", s.Name)
		}
	}
	style := func(kind, name, ref string) {
		if ref == "" || builtinStyles[ref] || seen["style "+ref] {
			return
		}
		fail("%s %q: undeclared style %q", kind, name, ref)
	}

	for _, l := range m.Layers {
		if l.Name == "" || l.Workspace == "" || l.Store == "" {
			fail("layer %q needs a name, a workspace, and a store", l.Name)
			continue
		}
		unique("layer", l.QualifiedName())
		if _, ok := m.store(l.Workspace, l.Store); !ok {
			fail("layer %q: undeclared store %q", l.Name, l.Store)
		}
		style("layer", l.Name, l.DefaultStyle)
		for _, s := range l.Styles {
			style("layer", l.Name, s)
		}
	}

	for _, g := range m.LayerGroups {
		if g.Name == "" {
			fail("layer group without a name")
			continue
		}
		workspace("layer group", g.Name, g.Workspace)
		if g.Mode != "" && !encoder.LayerGroupMode(g.Mode).Valid() {
			fail("layer group %q: unknown mode %q", g.Name, g.Mode)
		}
		if len(g.Layers) == 0 {
			fail("layer group %q is empty", g.Name)
		}
		for _, name := range g.Layers {
			if !seen["layer "+name] && !seen["layer group "+name] {
				fail("layer group %q: undeclared member %q", g.Name, name)
			}
		}
		// Members must come earlier, so a group cannot contain itself.
		unique("layer group", restdata.QualifiedName(g.Workspace, g.Name))
	}

	for _, c := range m.Cache {
		if !seen["layer "+c.Layer] && !seen["layer group "+c.Layer] {
			fail("cache: undeclared layer %q", c.Layer)
		}
		if c.MetaTiles < 0 || c.Expire < 0 {
			fail("cache %q: negative setting", c.Layer)
		}
	}

	if q := m.DiskQuota; q != nil {
		if _, err := q.config(); err != nil {
			fail("disk quota: %v", err)
		}
		for layer := range q.Layers {
			if !seen["layer "+layer] && !seen["layer group "+layer] {
				fail("disk quota: undeclared layer %q", layer)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for i, e := range errs {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(e)
	}
	return fmt.Errorf("%w: %s", ErrInvalidManifest, buf.String())
}

// config builds the GeoWebCache disk quota document.
func (q *DiskQuota) config() (*gwc.DiskQuotaConfig, error) {
	cfg := &gwc.DiskQuotaConfig{
		Enabled:                    q.Enabled,
		GlobalExpirationPolicyName: gwc.ExpirationPolicy(q.Policy),
	}
	if q.Global != "" {
		quota, err := gwc.ParseQuota(q.Global)
		if err != nil {
			return nil, err
		}
		cfg.GlobalQuota = &quota
	}
	if q.CleanupFrequency > 0 {
		seconds := int(q.CleanupFrequency / time.Second)
		cfg.CacheCleanUpFrequency = &seconds
		cfg.CacheCleanUpUnits = "SECONDS"
	}
	if q.MaxConcurrentCleanups > 0 {
		n := q.MaxConcurrentCleanups
		cfg.MaxConcurrentCleanUps = &n
	}
	for layer, s := range q.Layers {
		quota, err := gwc.ParseQuota(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", layer, err)
		}
		cfg.SetLayerQuota(gwc.LayerQuota{Layer: layer, Quota: &quota})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
