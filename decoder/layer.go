// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package decoder

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/encoder"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
)

// Layer is a decoded <layer>.
type Layer struct {
	Document
}

// DecodeLayer parses a <layer> document.
func DecodeLayer(data []byte) (*Layer, error) {
	d, err := parseAs(data, "layer")
	if err != nil {
		return nil, err
	}
	return &Layer{d}, nil
}

// Type returns VECTOR, RASTER, REMOTE, or WMS.
func (l *Layer) Type() string { return l.Text("type") }

// Path returns the WMS capabilities tree path.
func (l *Layer) Path() string { return l.Text("path") }

// ResourceName returns the qualified name of the published resource.
func (l *Layer) ResourceName() string { return l.Text("resource/name") }

// ResourceClass returns "featureType" or "coverage".
func (l *Layer) ResourceClass() string {
	if e := xmltree.Find(l.root, "resource"); e != nil {
		return e.SelectAttrValue("class", "")
	}
	return ""
}

// ResourceHref returns the REST URL of the published resource, from
// its atom:link.
func (l *Layer) ResourceHref() string {
	return linkHref(xmltree.Find(l.root, "resource"))
}

func linkHref(e *etree.Element) string {
	if e == nil {
		return ""
	}
	link := xmltree.Contains(e, xmltree.Name("atom:link"), 1)
	if link == nil {
		return ""
	}
	return link.SelectAttrValue("href", "")
}

// Enabled reports whether the layer is enabled.
func (l *Layer) Enabled() *bool { return l.Bool("enabled") }

// Queryable reports whether GetFeatureInfo is supported.
func (l *Layer) Queryable() *bool { return l.Bool("queryable") }

// Opaque reports whether the layer is opaque.
func (l *Layer) Opaque() *bool { return l.Bool("opaque") }

// Advertised reports whether the layer appears in capabilities.
func (l *Layer) Advertised() *bool { return l.Bool("advertised") }

// Styles referenced by layers either carry a <workspace> or are named
// "workspace:style".
func styleRef(e *etree.Element) encoder.StyleRef {
	d := Document{root: e}
	name := d.Text("name")
	ws := d.Workspace()
	if ws == "" {
		ws = d.Text("workspace")
	}
	if ws == "" {
		ws, name = restdata.SplitQualifiedName(name)
	} else {
		name = strings.TrimPrefix(name, ws+":")
	}
	return encoder.StyleRef{Name: name, Workspace: ws}
}

// DefaultStyle returns the default style, or nil.
func (l *Layer) DefaultStyle() *encoder.StyleRef {
	e := xmltree.Find(l.root, "defaultStyle")
	if e == nil {
		return nil
	}
	ref := styleRef(e)
	return &ref
}

// Styles returns the alternate styles.
func (l *Layer) Styles() []encoder.StyleRef {
	var refs []encoder.StyleRef
	for _, e := range xmltree.Search(l.root, xmltree.Name("style"), 2) {
		if e.Parent().Tag == "styles" {
			refs = append(refs, styleRef(e))
		}
	}
	return refs
}

// Attribution returns the attribution, or nil.
func (l *Layer) Attribution() *encoder.Attribution {
	e := xmltree.Find(l.root, "attribution")
	if e == nil {
		return nil
	}
	d := Document{root: e}
	a := &encoder.Attribution{
		Title:    d.Text("title"),
		Href:     d.Text("href"),
		LogoURL:  d.Text("logoURL"),
		LogoType: d.Text("logoType"),
	}
	if n := d.Int("logoWidth"); n != nil {
		a.LogoWidth = *n
	}
	if n := d.Int("logoHeight"); n != nil {
		a.LogoHeight = *n
	}
	return a
}

// metadataJSON decodes a JSON-valued metadata entry into out and
// reports whether there was one.
func (l *Layer) metadataJSON(key string, out interface{}) bool {
	raw, ok := l.Entries("metadata")[key]
	if !ok || raw == "" {
		return false
	}
	return restdata.DecodeJSON(strings.NewReader(raw), out) == nil
}

// AuthorityURLs returns the authority URLs, falling back to the JSON
// metadata entry older servers use.
func (l *Layer) AuthorityURLs() []encoder.AuthorityURL {
	var urls []encoder.AuthorityURL
	for _, e := range xmltree.Search(l.root, xmltree.Name("AuthorityURL"), 2) {
		d := Document{root: e}
		urls = append(urls, encoder.AuthorityURL{Name: d.Text("name"), Href: d.Text("href")})
	}
	if urls == nil {
		l.metadataJSON("authorityURLs", &urls)
	}
	return urls
}

// Identifiers returns the layer identifiers, falling back to the JSON
// metadata entry older servers use.
func (l *Layer) Identifiers() []encoder.Identifier {
	var ids []encoder.Identifier
	for _, e := range xmltree.Search(l.root, xmltree.Name("Identifier"), 2) {
		d := Document{root: e}
		ids = append(ids, encoder.Identifier{Authority: d.Text("authority"), Identifier: d.Text("identifier")})
	}
	if ids == nil {
		l.metadataJSON("identifiers", &ids)
	}
	return ids
}

// LayerGroup is a decoded <layerGroup>.
type LayerGroup struct {
	Document
}

// DecodeLayerGroup parses a <layerGroup> document.
func DecodeLayerGroup(data []byte) (*LayerGroup, error) {
	d, err := parseAs(data, "layerGroup")
	if err != nil {
		return nil, err
	}
	return &LayerGroup{d}, nil
}

// Title returns the human-readable title.
func (g *LayerGroup) Title() string { return g.Text("title") }

// Abstract returns the description.
func (g *LayerGroup) Abstract() string { return g.Text("abstract") }

// Mode returns the group mode; servers that omit it mean SINGLE.
func (g *LayerGroup) Mode() encoder.LayerGroupMode {
	if m := g.Text("mode"); m != "" {
		return encoder.LayerGroupMode(m)
	}
	return encoder.ModeSingle
}

// Bounds returns the group's bounding box, or nil.
func (g *LayerGroup) Bounds() *encoder.BBox { return g.BBox("bounds") }

// Publishables returns the members of the group with their styles.
// Servers before 2.3 list members as <layers><layer>.
func (g *LayerGroup) Publishables() []encoder.Publishable {
	var members []encoder.Publishable
	if list := xmltree.Find(g.root, "publishables"); list != nil {
		for _, e := range list.SelectElements("published") {
			members = append(members, encoder.Publishable{
				Name:  Document{root: e}.Name(),
				Group: e.SelectAttrValue("type", "layer") == "layerGroup",
			})
		}
	} else if list := xmltree.Find(g.root, "layers"); list != nil {
		for _, e := range list.SelectElements("layer") {
			members = append(members, encoder.Publishable{Name: Document{root: e}.Name()})
		}
	}
	if styles := xmltree.Find(g.root, "styles"); styles != nil {
		for i, e := range styles.SelectElements("style") {
			if i < len(members) {
				members[i].Style = Document{root: e}.Name()
			}
		}
	}
	return members
}
