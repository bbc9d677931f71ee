// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package encoder

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/xmltree"
)

// ProjectionPolicy says how GeoServer reconciles the native and
// declared coordinate reference systems of a resource.
type ProjectionPolicy string

// Projection policies.
const (
	ForceDeclared       ProjectionPolicy = "FORCE_DECLARED"
	ReprojectToDeclared ProjectionPolicy = "REPROJECT_TO_DECLARED"
	NoneProjection      ProjectionPolicy = "NONE"
)

// Keyword is a resource keyword with an optional language and
// vocabulary.
type Keyword struct {
	Value      string
	Language   string
	Vocabulary string
}

// String renders k the way the catalog stores it,
// value\@language=en\;\@vocabulary=v\;
func (k Keyword) String() string {
	s := k.Value
	if k.Language != "" {
		s += `\@language=` + k.Language + `\;`
	}
	if k.Vocabulary != "" {
		s += `\@vocabulary=` + k.Vocabulary + `\;`
	}
	return s
}

// ParseKeyword is the inverse of Keyword.String.
func ParseKeyword(s string) Keyword {
	parts := strings.Split(strings.TrimSpace(s), `\@`)
	k := Keyword{Value: parts[0]}
	for _, part := range parts[1:] {
		part = strings.TrimSuffix(part, `\;`)
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "language":
			k.Language = kv[1]
		case "vocabulary":
			k.Vocabulary = kv[1]
		}
	}
	return k
}

// Presentation says how dimension values are advertised in
// capabilities documents.
type Presentation string

// Dimension presentations.
const (
	PresentList               Presentation = "LIST"
	PresentContinuousInterval Presentation = "CONTINUOUS_INTERVAL"
	PresentDiscreteInterval   Presentation = "DISCRETE_INTERVAL"
)

// DefaultValueStrategy chooses a dimension value when a request
// does not name one.
type DefaultValueStrategy string

// Default value strategies.
const (
	DefaultMinimum DefaultValueStrategy = "MINIMUM"
	DefaultMaximum DefaultValueStrategy = "MAXIMUM"
	DefaultNearest DefaultValueStrategy = "NEAREST"
	DefaultFixed   DefaultValueStrategy = "FIXED"
)

// Metadata keys of the built-in dimensions.
const (
	TimeDimension      = "time"
	ElevationDimension = "elevation"
)

// CustomDimensionKey returns the metadata key of a custom raster
// dimension.
func CustomDimensionKey(name string) string {
	return "custom_dimension_" + strings.ToUpper(name)
}

// Dimension is the <dimensionInfo> metadata of a time, elevation, or
// custom dimension.
type Dimension struct {
	Enabled      bool
	Attribute    string
	EndAttribute string
	Presentation Presentation
	// Resolution applies to DISCRETE_INTERVAL presentation, in
	// milliseconds for time and in units otherwise.
	Resolution      string
	Units           string
	UnitSymbol      string
	DefaultStrategy DefaultValueStrategy
	ReferenceValue  string
	NearestMatch    *bool
}

// Element encodes the dimension as <dimensionInfo>.
func (d Dimension) Element() *etree.Element {
	e := etree.NewElement("dimensionInfo")
	xmltree.Set(e, "enabled", strconv.FormatBool(d.Enabled))
	if d.Attribute != "" {
		xmltree.Set(e, "attribute", d.Attribute)
	}
	if d.EndAttribute != "" {
		xmltree.Set(e, "endAttribute", d.EndAttribute)
	}
	if d.Presentation != "" {
		xmltree.Set(e, "presentation", string(d.Presentation))
	}
	if d.Resolution != "" {
		xmltree.Set(e, "resolution", d.Resolution)
	}
	if d.Units != "" {
		xmltree.Set(e, "units", d.Units)
	}
	if d.UnitSymbol != "" {
		xmltree.Set(e, "unitSymbol", d.UnitSymbol)
	}
	if d.DefaultStrategy != "" {
		xmltree.Set(e, "defaultValue/strategy", string(d.DefaultStrategy))
		if d.ReferenceValue != "" {
			xmltree.Set(e, "defaultValue/referenceValue", d.ReferenceValue)
		}
	}
	if d.NearestMatch != nil {
		xmltree.Set(e, "nearestMatchEnabled", strconv.FormatBool(*d.NearestMatch))
	}
	return e
}

// MetadataLink points at an external metadata record.
type MetadataLink struct {
	Type         string // MIME type, e.g. text/xml
	MetadataType string // e.g. ISO19115:2003, FGDC, TC211
	Content      string // URL
	About        string
}

// Element encodes the link as <metadataLink>.
func (m MetadataLink) Element() *etree.Element {
	e := etree.NewElement("metadataLink")
	xmltree.Set(e, "type", m.Type)
	if m.About != "" {
		xmltree.Set(e, "about", m.About)
	}
	xmltree.Set(e, "metadataType", m.MetadataType)
	xmltree.Set(e, "content", m.Content)
	return e
}

// Attribute describes one feature type attribute.
type Attribute struct {
	Name      string
	MinOccurs int
	MaxOccurs int
	Nillable  bool
	Binding   string // Java class, e.g. java.lang.String
	Length    int
}

// Element encodes the attribute as <attribute>.
func (a Attribute) Element() *etree.Element {
	e := etree.NewElement("attribute")
	xmltree.Set(e, "name", a.Name)
	xmltree.Set(e, "minOccurs", strconv.Itoa(a.MinOccurs))
	xmltree.Set(e, "maxOccurs", strconv.Itoa(a.MaxOccurs))
	xmltree.Set(e, "nillable", strconv.FormatBool(a.Nillable))
	if a.Binding != "" {
		xmltree.Set(e, "binding", a.Binding)
	}
	if a.Length > 0 {
		xmltree.Set(e, "length", strconv.Itoa(a.Length))
	}
	return e
}

// VirtualTableKey is the metadata key holding a SQL view.
const VirtualTableKey = "JDBC_VIRTUAL_TABLE"

// VirtualTableGeometry declares the geometry column of a SQL view.
type VirtualTableGeometry struct {
	Name string
	Type string // Point, LineString, Polygon, Geometry, ...
	SRID int
}

// VirtualTableParameter is a %name% substitution in the view's SQL.
type VirtualTableParameter struct {
	Name            string
	DefaultValue    string
	RegexpValidator string
}

// VirtualTable is a SQL view published as a feature type.
type VirtualTable struct {
	Name       string
	SQL        string
	EscapeSQL  bool
	KeyColumn  string
	Geometry   *VirtualTableGeometry
	Parameters []VirtualTableParameter
}

// Element encodes the view as <virtualTable>.
func (v VirtualTable) Element() *etree.Element {
	e := etree.NewElement("virtualTable")
	xmltree.Set(e, "name", v.Name)
	xmltree.Set(e, "sql", v.SQL)
	xmltree.Set(e, "escapeSql", strconv.FormatBool(v.EscapeSQL))
	if v.KeyColumn != "" {
		xmltree.Set(e, "keyColumn", v.KeyColumn)
	}
	if g := v.Geometry; g != nil {
		geom := e.CreateElement("geometry")
		xmltree.Set(geom, "name", g.Name)
		xmltree.Set(geom, "type", g.Type)
		xmltree.Set(geom, "srid", strconv.Itoa(g.SRID))
	}
	for _, p := range v.Parameters {
		param := e.CreateElement("parameter")
		xmltree.Set(param, "name", p.Name)
		if p.DefaultValue != "" {
			xmltree.Set(param, "defaultValue", p.DefaultValue)
		}
		if p.RegexpValidator != "" {
			xmltree.Set(param, "regexpValidator", p.RegexpValidator)
		}
	}
	return e
}

// CoverageDimension describes one band of a coverage.
type CoverageDimension struct {
	Name        string
	Description string
	Min, Max    string // range; "-inf" and "inf" are allowed
	NullValues  []float64
	Unit        string
	Type        string // sample type, e.g. REAL_32BITS
}

// Element encodes the band as <coverageDimension>.
func (c CoverageDimension) Element() *etree.Element {
	e := etree.NewElement("coverageDimension")
	xmltree.Set(e, "name", c.Name)
	if c.Description != "" {
		xmltree.Set(e, "description", c.Description)
	}
	if c.Min != "" || c.Max != "" {
		xmltree.Set(e, "range/min", c.Min)
		xmltree.Set(e, "range/max", c.Max)
	}
	if len(c.NullValues) > 0 {
		nulls := e.CreateElement("nullValues")
		for _, v := range c.NullValues {
			nulls.CreateElement("double").SetText(formatFloat(v))
		}
	}
	if c.Unit != "" {
		xmltree.Set(e, "unit", c.Unit)
	}
	if c.Type != "" {
		xmltree.Set(e, "dimensionType/name", c.Type)
	}
	return e
}

// Resource is a <featureType> or <coverage> document.  The two share
// most of their properties; the coverage-only setters have no effect
// on a GeoServer feature type and vice versa.
type Resource struct {
	*PropertyEncoder
}

// NewFeatureType creates a feature type document.
func NewFeatureType(name string) *Resource {
	return newResource("featureType", name)
}

// NewCoverage creates a coverage document.
func NewCoverage(name string) *Resource {
	return newResource("coverage", name)
}

func newResource(tag, name string) *Resource {
	r := &Resource{NewPropertyEncoder(tag)}
	r.Set("name", name)
	return r
}

// IsCoverage reports whether r is a coverage rather than a feature
// type.
func (r *Resource) IsCoverage() bool {
	return r.root.Tag == "coverage"
}

// SetName sets the published name.
func (r *Resource) SetName(name string) { r.Set("name", name) }

// SetNativeName sets the name of the underlying table, file, or
// coverage.
func (r *Resource) SetNativeName(name string) { r.Set("nativeName", name) }

// SetTitle sets the human-readable title.
func (r *Resource) SetTitle(title string) { r.Set("title", title) }

// SetAbstract sets the description.
func (r *Resource) SetAbstract(abstract string) { r.Set("abstract", abstract) }

// SetSRS sets the declared SRS, e.g. "EPSG:4326".
func (r *Resource) SetSRS(srs string) { r.Set("srs", srs) }

// SetNativeCRS sets the native CRS as an EPSG code or WKT.
func (r *Resource) SetNativeCRS(crs string) { r.Set("nativeCRS", crs) }

// SetProjectionPolicy chooses how native and declared SRS interact.
func (r *Resource) SetProjectionPolicy(policy ProjectionPolicy) {
	r.Set("projectionPolicy", string(policy))
}

// SetEnabled enables or disables the resource.
func (r *Resource) SetEnabled(enabled bool) { r.SetBool("enabled", enabled) }

// SetAdvertised controls whether the resource is listed in
// capabilities documents.
func (r *Resource) SetAdvertised(advertised bool) { r.SetBool("advertised", advertised) }

// SetNativeBoundingBox sets the bounds in the native CRS.
func (r *Resource) SetNativeBoundingBox(b BBox) {
	r.SetChild(b.Element("nativeBoundingBox"))
}

// SetLatLonBoundingBox sets the bounds in EPSG:4326.
func (r *Resource) SetLatLonBoundingBox(b BBox) {
	if b.CRS == "" {
		b.CRS = "EPSG:4326"
	}
	r.SetChild(b.Element("latLonBoundingBox"))
}

// SetKeywords replaces the keyword list.
func (r *Resource) SetKeywords(keywords ...Keyword) {
	r.Unset("keywords")
	list := r.root.CreateElement("keywords")
	for _, k := range keywords {
		list.CreateElement("string").SetText(k.String())
	}
}

// AddKeyword appends one keyword.
func (r *Resource) AddKeyword(k Keyword) {
	xmltree.Ensure(r.root, "keywords").CreateElement("string").SetText(k.String())
}

// Metadata returns the resource's metadata map.
func (r *Resource) Metadata() EntryList {
	return NewEntryList(r.root, "metadata")
}

// SetDimension configures a dimension under its metadata key, such as
// TimeDimension or CustomDimensionKey("depth").
func (r *Resource) SetDimension(key string, d Dimension) {
	r.Metadata().SetElement(key, d.Element())
}

// SetMetadataLinks replaces the metadata links.
func (r *Resource) SetMetadataLinks(links ...MetadataLink) {
	r.Unset("metadataLinks")
	list := r.root.CreateElement("metadataLinks")
	for _, link := range links {
		list.AddChild(link.Element())
	}
}

// SetVirtualTable publishes a SQL view.  The resource's native name
// should match the view name.
func (r *Resource) SetVirtualTable(v VirtualTable) {
	r.Metadata().SetElement(VirtualTableKey, v.Element())
}

// SetAttributes replaces the attribute list of a feature type.
func (r *Resource) SetAttributes(attrs ...Attribute) {
	r.Unset("attributes")
	list := r.root.CreateElement("attributes")
	for _, a := range attrs {
		list.AddChild(a.Element())
	}
}

// SetCQLFilter restricts a feature type to matching features.
func (r *Resource) SetCQLFilter(filter string) { r.Set("cqlFilter", filter) }

// SetMaxFeatures caps the features returned per request.
func (r *Resource) SetMaxFeatures(n int) { r.SetInt("maxFeatures", n) }

// SetNumDecimals sets the coordinate precision of GML output.
func (r *Resource) SetNumDecimals(n int) { r.SetInt("numDecimals", n) }

// SetNativeCoverageName selects one coverage of a multi-coverage
// store.
func (r *Resource) SetNativeCoverageName(name string) { r.Set("nativeCoverageName", name) }

// SetSupportedFormats replaces the output formats of a coverage.
func (r *Resource) SetSupportedFormats(formats ...string) {
	r.setStrings("supportedFormats", formats)
}

// SetRequestSRS replaces the SRS list accepted in coverage requests.
func (r *Resource) SetRequestSRS(srs ...string) {
	r.setStrings("requestSRS", srs)
}

// SetResponseSRS replaces the SRS list offered in coverage responses.
func (r *Resource) SetResponseSRS(srs ...string) {
	r.setStrings("responseSRS", srs)
}

func (r *Resource) setStrings(tag string, values []string) {
	r.Unset(tag)
	list := r.root.CreateElement(tag)
	for _, v := range values {
		list.CreateElement("string").SetText(v)
	}
}

// SetCoverageParameter sets a reader parameter of a coverage, such as
// InputTransparentColor or USE_JAI_IMAGEREAD.
func (r *Resource) SetCoverageParameter(key, value string) {
	params := xmltree.Ensure(r.root, "parameters")
	for _, entry := range params.SelectElements("entry") {
		kv := entry.SelectElements("string")
		if len(kv) >= 1 && strings.TrimSpace(kv[0].Text()) == key {
			params.RemoveChild(entry)
		}
	}
	entry := params.CreateElement("entry")
	entry.CreateElement("string").SetText(key)
	entry.CreateElement("string").SetText(value)
}

// SetCoverageDimensions replaces the band descriptions of a coverage.
func (r *Resource) SetCoverageDimensions(dims ...CoverageDimension) {
	r.Unset("dimensions")
	list := r.root.CreateElement("dimensions")
	for _, d := range dims {
		list.AddChild(d.Element())
	}
}
