// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package encoder

import (
	"bytes"
	"strconv"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
)

// StyleRef names a style, optionally in a workspace.
type StyleRef struct {
	Name      string
	Workspace string
}

func (s StyleRef) element(tag string) *etree.Element {
	e := etree.NewElement(tag)
	xmltree.Set(e, "name", s.Name)
	if s.Workspace != "" {
		xmltree.Set(e, "workspace", s.Workspace)
	}
	return e
}

// Attribution credits the data provider of a layer.
type Attribution struct {
	Title      string
	Href       string
	LogoURL    string
	LogoType   string
	LogoWidth  int
	LogoHeight int
}

// AuthorityURL names an authority that issues layer identifiers.
type AuthorityURL struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// Identifier is a layer identifier issued by a named authority.
type Identifier struct {
	Authority  string `json:"authority"`
	Identifier string `json:"identifier"`
}

// Layer is a <layer> document, the published view of a feature type
// or coverage.
type Layer struct {
	*PropertyEncoder
}

// NewLayer creates a layer document.  Layers are created by
// publishing a resource, so this is normally used for updates.
func NewLayer(name string) *Layer {
	l := &Layer{NewPropertyEncoder("layer")}
	l.Set("name", name)
	return l
}

// SetDefaultStyle sets the style used when a request names none.
func (l *Layer) SetDefaultStyle(style StyleRef) {
	l.SetChild(style.element("defaultStyle"))
}

// SetStyles replaces the alternate styles.
func (l *Layer) SetStyles(styles ...StyleRef) {
	l.Unset("styles")
	list := l.root.CreateElement("styles")
	for _, s := range styles {
		list.AddChild(s.element("style"))
	}
}

// SetEnabled enables or disables the layer.
func (l *Layer) SetEnabled(enabled bool) { l.SetBool("enabled", enabled) }

// SetQueryable controls GetFeatureInfo support.
func (l *Layer) SetQueryable(queryable bool) { l.SetBool("queryable", queryable) }

// SetOpaque marks the layer as covering everything beneath it.
func (l *Layer) SetOpaque(opaque bool) { l.SetBool("opaque", opaque) }

// SetAdvertised controls whether the layer is listed in capabilities
// documents.
func (l *Layer) SetAdvertised(advertised bool) { l.SetBool("advertised", advertised) }

// SetPath sets the WMS capabilities tree path, e.g. "/roads/major".
func (l *Layer) SetPath(path string) { l.Set("path", path) }

// SetAttribution replaces the attribution.
func (l *Layer) SetAttribution(a Attribution) {
	e := etree.NewElement("attribution")
	if a.Title != "" {
		xmltree.Set(e, "title", a.Title)
	}
	if a.Href != "" {
		xmltree.Set(e, "href", a.Href)
	}
	if a.LogoURL != "" {
		xmltree.Set(e, "logoURL", a.LogoURL)
	}
	if a.LogoType != "" {
		xmltree.Set(e, "logoType", a.LogoType)
	}
	if a.LogoWidth > 0 {
		xmltree.Set(e, "logoWidth", strconv.Itoa(a.LogoWidth))
	}
	if a.LogoHeight > 0 {
		xmltree.Set(e, "logoHeight", strconv.Itoa(a.LogoHeight))
	}
	l.SetChild(e)
}

// Metadata returns the layer's metadata map.
func (l *Layer) Metadata() EntryList {
	return NewEntryList(l.root, "metadata")
}

// SetAuthorityURLs replaces the authority URLs.  They are written both
// as <authorityURLs> and as a JSON "authorityURLs" metadata entry,
// which is where servers before 2.4 look.
func (l *Layer) SetAuthorityURLs(urls ...AuthorityURL) error {
	l.Unset("authorityURLs")
	list := l.root.CreateElement("authorityURLs")
	for _, u := range urls {
		e := list.CreateElement("AuthorityURL")
		xmltree.Set(e, "name", u.Name)
		xmltree.Set(e, "href", u.Href)
	}
	if urls == nil {
		urls = []AuthorityURL{}
	}
	return l.setJSONMetadata("authorityURLs", urls)
}

// SetIdentifiers replaces the identifiers, in the same two places as
// SetAuthorityURLs.
func (l *Layer) SetIdentifiers(ids ...Identifier) error {
	l.Unset("identifiers")
	list := l.root.CreateElement("identifiers")
	for _, id := range ids {
		e := list.CreateElement("Identifier")
		xmltree.Set(e, "authority", id.Authority)
		xmltree.Set(e, "identifier", id.Identifier)
	}
	if ids == nil {
		ids = []Identifier{}
	}
	return l.setJSONMetadata("identifiers", ids)
}

func (l *Layer) setJSONMetadata(key string, v interface{}) error {
	var buf bytes.Buffer
	if err := restdata.EncodeJSON(&buf, v); err != nil {
		return err
	}
	l.Metadata().Set(key, buf.String())
	return nil
}

// LayerGroupMode says how a layer group is rendered and advertised.
type LayerGroupMode string

// Layer group modes.
const (
	ModeSingle           LayerGroupMode = "SINGLE"
	ModeNamed            LayerGroupMode = "NAMED"
	ModeContainer        LayerGroupMode = "CONTAINER"
	ModeEarthObservation LayerGroupMode = "EO"
)

// Valid reports whether m is a known mode.
func (m LayerGroupMode) Valid() bool {
	switch m {
	case ModeSingle, ModeNamed, ModeContainer, ModeEarthObservation:
		return true
	}
	return false
}

// Publishable is a member of a layer group: a layer or a nested group,
// drawn with an optional style.
type Publishable struct {
	Name  string
	Group bool
	Style string
}

// LayerGroup is a <layerGroup> document.
type LayerGroup struct {
	*PropertyEncoder
}

// NewLayerGroup creates a layer group document.
func NewLayerGroup(name string) *LayerGroup {
	g := &LayerGroup{NewPropertyEncoder("layerGroup")}
	g.Set("name", name)
	return g
}

// SetTitle sets the human-readable title.
func (g *LayerGroup) SetTitle(title string) { g.Set("title", title) }

// SetAbstract sets the description.
func (g *LayerGroup) SetAbstract(abstract string) { g.Set("abstract", abstract) }

// SetMode sets the group mode.
func (g *LayerGroup) SetMode(mode LayerGroupMode) { g.Set("mode", string(mode)) }

// SetBounds sets the group's bounding box.
func (g *LayerGroup) SetBounds(b BBox) {
	g.SetChild(b.Element("bounds"))
}

// AddLayer appends a layer, drawn with style ("" for its default).
func (g *LayerGroup) AddLayer(name, style string) {
	g.add(Publishable{Name: name, Style: style})
}

// AddLayerGroup appends a nested layer group.
func (g *LayerGroup) AddLayerGroup(name, style string) {
	g.add(Publishable{Name: name, Group: true, Style: style})
}

// SetPublishables replaces the members of the group.
func (g *LayerGroup) SetPublishables(members ...Publishable) {
	g.Unset("publishables")
	g.Unset("styles")
	for _, m := range members {
		g.add(m)
	}
}

// The <styles> list runs parallel to <publishables>, with an empty
// <style/> for members drawn with their default.
func (g *LayerGroup) add(p Publishable) {
	published := xmltree.Ensure(g.root, "publishables").CreateElement("published")
	kind := "layer"
	if p.Group {
		kind = "layerGroup"
	}
	published.CreateAttr("type", kind)
	xmltree.Set(published, "name", p.Name)

	style := xmltree.Ensure(g.root, "styles").CreateElement("style")
	if p.Style != "" {
		xmltree.Set(style, "name", p.Style)
	}
}

// Style is a <style> catalog entry.  The style body itself (SLD or
// another format) is uploaded separately.
type Style struct {
	*PropertyEncoder
}

// NewStyle creates a style entry referring to the given file name in
// the styles directory.
func NewStyle(name, filename string) *Style {
	s := &Style{NewPropertyEncoder("style")}
	s.Set("name", name)
	if filename != "" {
		s.Set("filename", filename)
	}
	return s
}

// SetFormat sets the style language, e.g. "sld", "css", or "ysld".
func (s *Style) SetFormat(format string) { s.Set("format", format) }

// SetLanguageVersion sets the version of the style language, e.g.
// "1.0.0" or "1.1.0" for SLD.
func (s *Style) SetLanguageVersion(version string) {
	s.Set("languageVersion/version", version)
}
