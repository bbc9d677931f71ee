// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package decoder

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/encoder"
	"github.com/diffeo/go-geoserver/xmltree"
)

// Resource is a decoded <featureType> or <coverage>.
type Resource struct {
	Document
}

// DecodeResource parses a <featureType> or <coverage> document.
func DecodeResource(data []byte) (*Resource, error) {
	d, err := parseAs(data, "featureType", "coverage")
	if err != nil {
		return nil, err
	}
	return &Resource{d}, nil
}

// IsCoverage reports whether r is a coverage.
func (r *Resource) IsCoverage() bool { return r.root.Tag == "coverage" }

// NativeName returns the name of the underlying table, file, or
// coverage.
func (r *Resource) NativeName() string { return r.Text("nativeName") }

// Title returns the human-readable title.
func (r *Resource) Title() string { return r.Text("title") }

// Abstract returns the description.
func (r *Resource) Abstract() string { return r.Text("abstract") }

// SRS returns the declared SRS.
func (r *Resource) SRS() string { return r.Text("srs") }

// NativeCRS returns the native CRS, usually as WKT.
func (r *Resource) NativeCRS() string { return r.Text("nativeCRS") }

// ProjectionPolicy returns the projection policy.
func (r *Resource) ProjectionPolicy() encoder.ProjectionPolicy {
	return encoder.ProjectionPolicy(r.Text("projectionPolicy"))
}

// Enabled reports whether the resource is enabled.
func (r *Resource) Enabled() *bool { return r.Bool("enabled") }

// Namespace returns the namespace prefix of the resource.
func (r *Resource) Namespace() string { return r.Text("namespace/name") }

// Store returns the name of the store holding the resource, qualified
// with its workspace as GeoServer reports it.
func (r *Resource) Store() string { return r.Text("store/name") }

// NativeBoundingBox returns the bounds in the native CRS.
func (r *Resource) NativeBoundingBox() *encoder.BBox { return r.BBox("nativeBoundingBox") }

// LatLonBoundingBox returns the bounds in EPSG:4326.
func (r *Resource) LatLonBoundingBox() *encoder.BBox { return r.BBox("latLonBoundingBox") }

// Keywords returns the keywords with their languages and vocabularies.
func (r *Resource) Keywords() []encoder.Keyword {
	var keywords []encoder.Keyword
	for _, s := range r.Strings("keywords") {
		keywords = append(keywords, encoder.ParseKeyword(s))
	}
	return keywords
}

func (r *Resource) metadataEntry(key string) *etree.Element {
	md := xmltree.Find(r.root, "metadata")
	if md == nil {
		return nil
	}
	return xmltree.Contains(md, xmltree.EntryKey(key), 1)
}

// Dimension returns the dimension configured under key, or nil.
func (r *Resource) Dimension(key string) *encoder.Dimension {
	entry := r.metadataEntry(key)
	if entry == nil {
		return nil
	}
	info := entry.SelectElement("dimensionInfo")
	if info == nil {
		return nil
	}
	return dimensionFromElement(info)
}

// Dimensions returns every configured dimension by metadata key.
func (r *Resource) Dimensions() map[string]encoder.Dimension {
	dims := make(map[string]encoder.Dimension)
	md := xmltree.Find(r.root, "metadata")
	if md == nil {
		return dims
	}
	for _, entry := range md.SelectElements("entry") {
		if info := entry.SelectElement("dimensionInfo"); info != nil {
			dims[entry.SelectAttrValue("key", "")] = *dimensionFromElement(info)
		}
	}
	return dims
}

func dimensionFromElement(e *etree.Element) *encoder.Dimension {
	d := Document{root: e}
	dim := &encoder.Dimension{
		Attribute:       d.Text("attribute"),
		EndAttribute:    d.Text("endAttribute"),
		Presentation:    encoder.Presentation(d.Text("presentation")),
		Resolution:      d.Text("resolution"),
		Units:           d.Text("units"),
		UnitSymbol:      d.Text("unitSymbol"),
		DefaultStrategy: encoder.DefaultValueStrategy(d.Text("defaultValue/strategy")),
		ReferenceValue:  d.Text("defaultValue/referenceValue"),
		NearestMatch:    d.Bool("nearestMatchEnabled"),
	}
	if enabled := d.Bool("enabled"); enabled != nil {
		dim.Enabled = *enabled
	}
	return dim
}

// VirtualTable returns the SQL view behind a feature type, or nil.
func (r *Resource) VirtualTable() *encoder.VirtualTable {
	entry := r.metadataEntry(encoder.VirtualTableKey)
	if entry == nil {
		return nil
	}
	e := entry.SelectElement("virtualTable")
	if e == nil {
		return nil
	}
	d := Document{root: e}
	v := &encoder.VirtualTable{
		Name:      d.Text("name"),
		SQL:       d.Text("sql"),
		KeyColumn: d.Text("keyColumn"),
	}
	if escape := d.Bool("escapeSql"); escape != nil {
		v.EscapeSQL = *escape
	}
	if g := e.SelectElement("geometry"); g != nil {
		gd := Document{root: g}
		v.Geometry = &encoder.VirtualTableGeometry{Name: gd.Text("name"), Type: gd.Text("type")}
		if srid := gd.Int("srid"); srid != nil {
			v.Geometry.SRID = *srid
		}
	}
	for _, p := range e.SelectElements("parameter") {
		pd := Document{root: p}
		v.Parameters = append(v.Parameters, encoder.VirtualTableParameter{
			Name:            pd.Text("name"),
			DefaultValue:    pd.Text("defaultValue"),
			RegexpValidator: pd.Text("regexpValidator"),
		})
	}
	return v
}

// MetadataLinks returns the metadata links.
func (r *Resource) MetadataLinks() []encoder.MetadataLink {
	var links []encoder.MetadataLink
	for _, e := range xmltree.Search(r.root, xmltree.Name("metadataLink"), 2) {
		d := Document{root: e}
		links = append(links, encoder.MetadataLink{
			Type:         d.Text("type"),
			MetadataType: d.Text("metadataType"),
			Content:      d.Text("content"),
			About:        d.Text("about"),
		})
	}
	return links
}

// Attributes returns the attributes of a feature type.
func (r *Resource) Attributes() []encoder.Attribute {
	var attrs []encoder.Attribute
	for _, e := range xmltree.Search(r.root, xmltree.Name("attribute"), 2) {
		d := Document{root: e}
		a := encoder.Attribute{
			Name:    d.Text("name"),
			Binding: d.Text("binding"),
		}
		if n := d.Int("minOccurs"); n != nil {
			a.MinOccurs = *n
		}
		if n := d.Int("maxOccurs"); n != nil {
			a.MaxOccurs = *n
		}
		if b := d.Bool("nillable"); b != nil {
			a.Nillable = *b
		}
		if n := d.Int("length"); n != nil {
			a.Length = *n
		}
		attrs = append(attrs, a)
	}
	return attrs
}

// CoverageParameters returns the reader parameters of a coverage.
func (r *Resource) CoverageParameters() map[string]string {
	params := xmltree.Find(r.root, "parameters")
	if params == nil {
		return nil
	}
	out := make(map[string]string)
	for _, entry := range params.SelectElements("entry") {
		kv := entry.ChildElements()
		switch len(kv) {
		case 1:
			out[strings.TrimSpace(kv[0].Text())] = ""
		case 2:
			out[strings.TrimSpace(kv[0].Text())] = strings.TrimSpace(kv[1].Text())
		}
	}
	return out
}

// CoverageDimensions returns the band descriptions of a coverage.
func (r *Resource) CoverageDimensions() []encoder.CoverageDimension {
	var dims []encoder.CoverageDimension
	for _, e := range xmltree.Search(r.root, xmltree.Name("coverageDimension"), 2) {
		d := Document{root: e}
		dim := encoder.CoverageDimension{
			Name:        d.Text("name"),
			Description: d.Text("description"),
			Min:         d.Text("range/min"),
			Max:         d.Text("range/max"),
			Unit:        d.Text("unit"),
			Type:        d.Text("dimensionType/name"),
		}
		for _, s := range d.Strings("nullValues") {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				dim.NullValues = append(dim.NullValues, f)
			}
		}
		dims = append(dims, dim)
	}
	return dims
}

// SupportedFormats returns the output formats of a coverage.
func (r *Resource) SupportedFormats() []string { return r.Strings("supportedFormats") }
