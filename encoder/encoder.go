// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package encoder builds the XML documents the GeoServer REST API
// accepts when creating or updating catalog objects.
//
// Every encoder wraps a single root element and exposes setters for
// the properties GeoServer understands.  Properties are written by
// slash-separated path, so an encoder only contains what was actually
// set; PUTting it to an existing object changes only those properties.
// The typed setters are conveniences over PropertyEncoder.Set, which
// remains available for anything they do not cover:
//
//	ft := encoder.NewFeatureType("roads")
//	ft.SetTitle("Roads")
//	ft.Set("maxFeatures", "500")
//	body, err := ft.XML()
//
// The value types here (BBox, Keyword, Dimension, and so on) are also
// what the decoder package returns.
package encoder

import (
	"sort"
	"strconv"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/xmltree"
)

// PropertyEncoder holds one configuration document.
type PropertyEncoder struct {
	root *etree.Element
}

// NewPropertyEncoder creates an empty document with the given root tag.
func NewPropertyEncoder(tag string) *PropertyEncoder {
	return &PropertyEncoder{root: etree.NewElement(tag)}
}

// Wrap adopts an existing element, for instance one returned by the
// decoder, so that it can be modified and sent back.
func Wrap(root *etree.Element) *PropertyEncoder {
	return &PropertyEncoder{root: root}
}

// Root returns the document's root element.
func (p *PropertyEncoder) Root() *etree.Element {
	return p.root
}

// Set writes text at path, creating elements as needed.
func (p *PropertyEncoder) Set(path, text string) *etree.Element {
	return xmltree.Set(p.root, path, text)
}

// SetBool writes "true" or "false" at path.
func (p *PropertyEncoder) SetBool(path string, b bool) *etree.Element {
	return p.Set(path, strconv.FormatBool(b))
}

// SetInt writes a decimal integer at path.
func (p *PropertyEncoder) SetInt(path string, n int) *etree.Element {
	return p.Set(path, strconv.Itoa(n))
}

// SetFloat writes f at path in its shortest exact form.
func (p *PropertyEncoder) SetFloat(path string, f float64) *etree.Element {
	return p.Set(path, formatFloat(f))
}

// SetChild adds child under the root, replacing any same-tag child.
func (p *PropertyEncoder) SetChild(child *etree.Element) *etree.Element {
	return xmltree.SetChild(p.root, child)
}

// Unset removes the element at path, reporting whether it was there.
func (p *PropertyEncoder) Unset(path string) bool {
	return xmltree.Unset(p.root, path)
}

// Get returns the trimmed text at path.
func (p *PropertyEncoder) Get(path string) (string, bool) {
	return xmltree.Get(p.root, path)
}

// XML serializes the document.
func (p *PropertyEncoder) XML() ([]byte, error) {
	return xmltree.Write(p.root, 0)
}

// String returns the document as a string, for logging.
func (p *PropertyEncoder) String() string {
	return xmltree.String(p.root)
}

// EntryList edits a GeoServer map property, a list of
// <entry key="k">value</entry> children.
type EntryList struct {
	parent *etree.Element
}

// NewEntryList returns the map under path, creating it if needed.
func NewEntryList(root *etree.Element, path string) EntryList {
	return EntryList{parent: xmltree.Ensure(root, path)}
}

// Element returns the element holding the entries.
func (l EntryList) Element() *etree.Element {
	return l.parent
}

func (l EntryList) entry(key string) *etree.Element {
	return xmltree.Contains(l.parent, xmltree.EntryKey(key), 1)
}

// Set stores a text value under key, replacing any previous value.
func (l EntryList) Set(key, value string) *etree.Element {
	e := l.entry(key)
	if e == nil {
		e = l.parent.CreateElement("entry")
		e.CreateAttr("key", key)
	}
	for _, child := range e.ChildElements() {
		e.RemoveChild(child)
	}
	e.SetText(value)
	return e
}

// SetElement stores an element value under key, replacing any previous
// value.
func (l EntryList) SetElement(key string, value *etree.Element) *etree.Element {
	e := l.Set(key, "")
	if parent := value.Parent(); parent != nil {
		parent.RemoveChild(value)
	}
	e.AddChild(value)
	return e
}

// Get returns the trimmed text stored under key.
func (l EntryList) Get(key string) (string, bool) {
	e := l.entry(key)
	if e == nil {
		return "", false
	}
	return xmltree.Get(e, "")
}

// Lookup returns the entry element for key, or nil.
func (l EntryList) Lookup(key string) *etree.Element {
	return l.entry(key)
}

// Remove deletes the entry for key.
func (l EntryList) Remove(key string) bool {
	return xmltree.Remove(l.parent, xmltree.EntryKey(key), 1) > 0
}

// Keys returns the entry keys in sorted order.
func (l EntryList) Keys() []string {
	var keys []string
	for _, e := range l.parent.SelectElements("entry") {
		if key := e.SelectAttrValue("key", ""); key != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Map returns the text values of all entries.
func (l EntryList) Map() map[string]string {
	m := make(map[string]string)
	for _, key := range l.Keys() {
		m[key], _ = l.Get(key)
	}
	return m
}

// BBox is a bounding box in some coordinate reference system.
type BBox struct {
	MinX, MaxX, MinY, MaxY float64
	CRS                    string
}

// Element encodes b as <tag><minx/><maxx/><miny/><maxy/><crs/></tag>.
func (b BBox) Element(tag string) *etree.Element {
	e := etree.NewElement(tag)
	xmltree.Set(e, "minx", formatFloat(b.MinX))
	xmltree.Set(e, "maxx", formatFloat(b.MaxX))
	xmltree.Set(e, "miny", formatFloat(b.MinY))
	xmltree.Set(e, "maxy", formatFloat(b.MaxY))
	if b.CRS != "" {
		xmltree.Set(e, "crs", b.CRS)
	}
	return e
}

// SetWorkspace points an object at its workspace,
// <workspace><name>ws</name></workspace>.
func (p *PropertyEncoder) SetWorkspace(workspace string) {
	p.Set("workspace/name", workspace)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
