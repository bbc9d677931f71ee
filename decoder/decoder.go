// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package decoder reads the XML documents returned by the GeoServer
// REST API.
//
// Decoded objects are read-only views over the parsed element tree.
// Accessors never fail: a missing string property is "", and a missing
// boolean, number, or structure is nil.  Parsing itself fails only on
// malformed XML or a document whose root is not the expected element.
package decoder

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/encoder"
	"github.com/diffeo/go-geoserver/xmltree"
)

// ErrUnexpectedDocument is returned when a document's root element is
// not the one the decoder expects.
var ErrUnexpectedDocument = errors.New("unexpected document")

// Document is a parsed response.
type Document struct {
	root *etree.Element
}

// Parse reads any XML document.
func Parse(data []byte) (Document, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return Document{}, err
	}
	return Document{root: root}, nil
}

func parseAs(data []byte, tags ...string) (Document, error) {
	d, err := Parse(data)
	if err != nil {
		return d, err
	}
	for _, tag := range tags {
		if d.root.Tag == tag {
			return d, nil
		}
	}
	return Document{}, fmt.Errorf("%w: got <%s>, want <%s>", ErrUnexpectedDocument, d.root.Tag, tags[0])
}

// Root returns the root element.  Changes to it are visible through
// the accessors, so a decoded document can be edited with
// encoder.Wrap and sent back.
func (d Document) Root() *etree.Element {
	return d.root
}

// Lookup returns the trimmed text at path and whether it exists.
func (d Document) Lookup(path string) (string, bool) {
	if d.root == nil {
		return "", false
	}
	return xmltree.Get(d.root, path)
}

// Text returns the trimmed text at path, or "".
func (d Document) Text(path string) string {
	s, _ := d.Lookup(path)
	return s
}

// Bool returns the boolean at path, or nil.
func (d Document) Bool(path string) *bool {
	s, ok := d.Lookup(path)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// Int returns the integer at path, or nil.
func (d Document) Int(path string) *int {
	s, ok := d.Lookup(path)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// Float returns the number at path, or nil.
func (d Document) Float(path string) *float64 {
	s, ok := d.Lookup(path)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Strings returns the text of every child of the element at path.
func (d Document) Strings(path string) []string {
	if d.root == nil {
		return nil
	}
	e := xmltree.Find(d.root, path)
	if e == nil {
		return nil
	}
	var out []string
	for _, child := range e.ChildElements() {
		s, _ := xmltree.Get(child, "")
		out = append(out, s)
	}
	return out
}

// Entries returns the <entry key="k">v</entry> map at path, or nil.
func (d Document) Entries(path string) map[string]string {
	if d.root == nil || xmltree.Find(d.root, path) == nil {
		return nil
	}
	return encoder.NewEntryList(d.root, path).Map()
}

// BBox returns the bounding box at path, or nil if it is missing or
// any coordinate is not a number.
func (d Document) BBox(path string) *encoder.BBox {
	if d.root == nil {
		return nil
	}
	e := xmltree.Find(d.root, path)
	if e == nil {
		return nil
	}
	return bboxFromElement(e)
}

func bboxFromElement(e *etree.Element) *encoder.BBox {
	sub := Document{root: e}
	minx, maxx := sub.Float("minx"), sub.Float("maxx")
	miny, maxy := sub.Float("miny"), sub.Float("maxy")
	if minx == nil || maxx == nil || miny == nil || maxy == nil {
		return nil
	}
	return &encoder.BBox{
		MinX: *minx,
		MaxX: *maxx,
		MinY: *miny,
		MaxY: *maxy,
		CRS:  sub.Text("crs"),
	}
}

// Name returns the object's <name>.
func (d Document) Name() string {
	return d.Text("name")
}

// Workspace returns the name of the object's workspace, if it has one.
func (d Document) Workspace() string {
	return d.Text("workspace/name")
}

// Names parses a listing such as <workspaces> or <layers> and returns
// the name of each item.  Items are either elements with a <name>
// child or, as in feature type listings with list=available, plain
// <string> elements.  An empty listing is not an error.
func Names(data []byte) ([]string, error) {
	d, err := Parse(data)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, item := range d.root.ChildElements() {
		if name, ok := xmltree.Get(item, "name"); ok {
			names = append(names, name)
		} else if len(item.ChildElements()) == 0 {
			if text, _ := xmltree.Get(item, ""); text != "" {
				names = append(names, text)
			}
		}
	}
	return names, nil
}
