// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package encoder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// ErrInvalidStore is returned when store connection details cannot be
// understood.
var ErrInvalidStore = errors.New("invalid store configuration")

// Data store types with dedicated constructors.
const (
	PostGISType            = "PostGIS"
	ShapefileType          = "Shapefile"
	ShapefileDirectoryType = "Directory of spatial files (shapefiles)"
)

// Coverage store types.
const (
	GeoTIFFType      = "GeoTIFF"
	ImageMosaicType  = "ImageMosaic"
	ImagePyramidType = "ImagePyramid"
	WorldImageType   = "WorldImage"
	ArcGridType      = "ArcGrid"
)

// DataStore is a <dataStore> document for vector data.
type DataStore struct {
	*PropertyEncoder
}

// NewDataStore creates a data store document.  The connection
// parameters are left empty; see Param and the typed constructors.
func NewDataStore(name string) *DataStore {
	d := &DataStore{NewPropertyEncoder("dataStore")}
	d.Set("name", name)
	return d
}

// SetDescription sets the free-text description.
func (d *DataStore) SetDescription(description string) {
	d.Set("description", description)
}

// SetType sets the store type, such as PostGISType.
func (d *DataStore) SetType(storeType string) {
	d.Set("type", storeType)
}

// SetEnabled enables or disables the store.
func (d *DataStore) SetEnabled(enabled bool) {
	d.SetBool("enabled", enabled)
}

// ConnectionParameters returns the store's connection parameter map.
func (d *DataStore) ConnectionParameters() EntryList {
	return NewEntryList(d.root, "connectionParameters")
}

// Param sets one connection parameter.
func (d *DataStore) Param(key, value string) {
	d.ConnectionParameters().Set(key, value)
}

// PostGISParams are the connection settings of a PostGIS store.  Zero
// values are left to the server's defaults.
type PostGISParams struct {
	Host     string
	Port     int
	Database string
	Schema   string
	User     string
	Password string
	SSLMode  string

	ExposePrimaryKeys *bool
	LooseBBox         *bool
	MinConnections    int
	MaxConnections    int
	FetchSize         int
	Timeout           int // seconds

	// JNDI names a container-managed connection pool instead of
	// host/port/user credentials.
	JNDI string
}

// PostGISParamsFromURL reads connection settings from a URL such as
// postgres://user:pass@db:5432/gis?schema=public&sslmode=disable.
func PostGISParamsFromURL(url string) (PostGISParams, error) {
	var p PostGISParams
	conninfo, err := pq.ParseURL(url)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidStore, err)
	}
	for key, value := range parseConninfo(conninfo) {
		switch key {
		case "host":
			p.Host = value
		case "port":
			if p.Port, err = strconv.Atoi(value); err != nil {
				return p, fmt.Errorf("%w: port %q", ErrInvalidStore, value)
			}
		case "dbname":
			p.Database = value
		case "user":
			p.User = value
		case "password":
			p.Password = value
		case "schema", "currentSchema", "search_path":
			p.Schema = value
		case "sslmode":
			p.SSLMode = value
		case "connect_timeout":
			if p.Timeout, err = strconv.Atoi(value); err != nil {
				return p, fmt.Errorf("%w: connect_timeout %q", ErrInvalidStore, value)
			}
		}
	}
	return p, nil
}

// parseConninfo splits the "k=v k2=v2" form produced by pq.ParseURL,
// in which spaces, quotes and backslashes in values are escaped with a
// backslash.
func parseConninfo(s string) map[string]string {
	out := make(map[string]string)
	var token strings.Builder
	flush := func() {
		if kv := strings.SplitN(token.String(), "=", 2); len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
		token.Reset()
	}
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			token.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ' ':
			flush()
		default:
			token.WriteRune(r)
		}
	}
	flush()
	return out
}

// NewPostGISDataStore creates a PostGIS data store document.
func NewPostGISDataStore(name string, p PostGISParams) *DataStore {
	d := NewDataStore(name)
	d.SetType(PostGISType)
	d.SetEnabled(true)
	params := d.ConnectionParameters()
	params.Set("dbtype", "postgis")
	if p.JNDI != "" {
		params.Set("jndiReferenceName", p.JNDI)
	}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	setInt := func(key string, n int) {
		if n > 0 {
			params.Set(key, strconv.Itoa(n))
		}
	}
	setBool := func(key string, b *bool) {
		if b != nil {
			params.Set(key, strconv.FormatBool(*b))
		}
	}
	set("host", p.Host)
	setInt("port", p.Port)
	set("database", p.Database)
	set("schema", p.Schema)
	set("user", p.User)
	set("passwd", p.Password)
	set("SSL mode", strings.ToUpper(p.SSLMode))
	setBool("Expose primary keys", p.ExposePrimaryKeys)
	setBool("Loose bbox", p.LooseBBox)
	setInt("min connections", p.MinConnections)
	setInt("max connections", p.MaxConnections)
	setInt("fetch size", p.FetchSize)
	setInt("Connection timeout", p.Timeout)
	return d
}

// NewShapefileDataStore creates a store for a single shapefile.  url is
// usually relative to the data directory, as in
// "file:data/shapefiles/states.shp".  An empty charset keeps the
// server's default.
func NewShapefileDataStore(name, url, charset string) *DataStore {
	d := NewDataStore(name)
	d.SetType(ShapefileType)
	d.SetEnabled(true)
	d.Param("url", url)
	if charset != "" {
		d.Param("charset", charset)
	}
	return d
}

// NewShapefileDirectoryDataStore creates a store publishing every
// shapefile in a directory.
func NewShapefileDirectoryDataStore(name, url string) *DataStore {
	d := NewDataStore(name)
	d.SetType(ShapefileDirectoryType)
	d.SetEnabled(true)
	d.Param("url", url)
	d.Param("fstype", "shape")
	return d
}

// CoverageStore is a <coverageStore> document for raster data.
type CoverageStore struct {
	*PropertyEncoder
}

// NewCoverageStore creates a coverage store document of the given
// type, such as GeoTIFFType.
func NewCoverageStore(name, storeType string) *CoverageStore {
	c := &CoverageStore{NewPropertyEncoder("coverageStore")}
	c.Set("name", name)
	if storeType != "" {
		c.Set("type", storeType)
	}
	return c
}

// SetDescription sets the free-text description.
func (c *CoverageStore) SetDescription(description string) {
	c.Set("description", description)
}

// SetURL sets the location of the raster data, for instance
// "file:data/dem.tif".
func (c *CoverageStore) SetURL(url string) {
	c.Set("url", url)
}

// SetEnabled enables or disables the store.
func (c *CoverageStore) SetEnabled(enabled bool) {
	c.SetBool("enabled", enabled)
}
