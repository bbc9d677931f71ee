// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package xmltree provides small helpers over github.com/beevik/etree
// element trees: filtered search and removal, and slash-separated path
// access to nested properties.  Every encoder and decoder in this
// module is built on these.
//
// A path is a sequence of element tags separated by "/", for instance
// "nativeBoundingBox/minx".  Namespace prefixes are part of the tag,
// so "atom:link" is a valid path segment.
package xmltree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrMalformed is returned (wrapped) from Parse when the input is not a
// well-formed XML document with a root element.
var ErrMalformed = errors.New("malformed XML document")

// Unlimited can be passed as a depth to search the whole subtree.
const Unlimited = -1

// Filter decides whether an element matches.
type Filter func(*etree.Element) bool

// Name matches elements with the given tag.
func Name(tag string) Filter {
	return func(e *etree.Element) bool {
		return e.FullTag() == tag || (e.Space == "" && e.Tag == tag)
	}
}

// NameValue matches elements with the given tag whose trimmed text is
// value.
func NameValue(tag, value string) Filter {
	name := Name(tag)
	return func(e *etree.Element) bool {
		return name(e) && strings.TrimSpace(e.Text()) == value
	}
}

// EntryKey matches <entry key="..."> elements as used by GeoServer
// for connection parameters and metadata maps.
func EntryKey(key string) Filter {
	return func(e *etree.Element) bool {
		return e.Tag == "entry" && e.SelectAttrValue("key", "") == key
	}
}

// Attr matches elements carrying an attribute with the given value.
func Attr(key, value string) Filter {
	return func(e *etree.Element) bool {
		a := e.SelectAttr(key)
		return a != nil && a.Value == value
	}
}

// And matches when every filter matches.
func And(filters ...Filter) Filter {
	return func(e *etree.Element) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}
}

// Or matches when any filter matches.
func Or(filters ...Filter) Filter {
	return func(e *etree.Element) bool {
		for _, f := range filters {
			if f(e) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f Filter) Filter {
	return func(e *etree.Element) bool {
		return !f(e)
	}
}

// Search returns every descendant of root matching filter, in document
// order.  depth limits how far down the tree to look: 1 examines only
// direct children, and Unlimited (or any negative value) examines the
// whole subtree.  root itself is never returned.
func Search(root *etree.Element, filter Filter, depth int) []*etree.Element {
	var found []*etree.Element
	walk(root, depth, func(e *etree.Element) step {
		if filter(e) {
			found = append(found, e)
		}
		return descend
	})
	return found
}

// Contains returns the first descendant of root matching filter within
// depth, or nil.
func Contains(root *etree.Element, filter Filter, depth int) *etree.Element {
	var found *etree.Element
	walk(root, depth, func(e *etree.Element) step {
		if filter(e) {
			found = e
			return stop
		}
		return descend
	})
	return found
}

// Remove detaches every descendant of root matching filter within depth
// and returns how many were removed.  Matches nested inside other
// matches go away with their ancestor and are not counted.
func Remove(root *etree.Element, filter Filter, depth int) int {
	var victims []*etree.Element
	walk(root, depth, func(e *etree.Element) step {
		if filter(e) {
			victims = append(victims, e)
			return prune
		}
		return descend
	})
	for _, e := range victims {
		e.Parent().RemoveChild(e)
	}
	return len(victims)
}

type step int

const (
	descend step = iota
	prune
	stop
)

// walk visits the descendants of root depth-first, returning false
// once a visit has asked to stop.
func walk(root *etree.Element, depth int, visit func(*etree.Element) step) bool {
	if root == nil || depth == 0 {
		return true
	}
	for _, child := range root.ChildElements() {
		switch visit(child) {
		case stop:
			return false
		case prune:
			continue
		}
		if !walk(child, depth-1, visit) {
			return false
		}
	}
	return true
}

// Set assigns text to the element at path under root, creating any
// missing elements along the way, and returns the leaf.  An existing
// leaf keeps its attributes and position; only its text changes.
func Set(root *etree.Element, path, text string) *etree.Element {
	leaf := Ensure(root, path)
	leaf.SetText(text)
	return leaf
}

// Ensure returns the element at path under root, creating any missing
// elements.  An empty path returns root.
func Ensure(root *etree.Element, path string) *etree.Element {
	current := root
	for _, tag := range split(path) {
		next := current.SelectElement(tag)
		if next == nil {
			next = current.CreateElement(tag)
		}
		current = next
	}
	return current
}

// Find returns the element at path under root, or nil if any element
// along the path is missing.
func Find(root *etree.Element, path string) *etree.Element {
	current := root
	for _, tag := range split(path) {
		if current == nil {
			return nil
		}
		current = current.SelectElement(tag)
	}
	return current
}

// Get returns the trimmed text of the element at path and whether that
// element exists.
func Get(root *etree.Element, path string) (string, bool) {
	e := Find(root, path)
	if e == nil {
		return "", false
	}
	return strings.TrimSpace(e.Text()), true
}

// Unset removes the element at path and reports whether it existed.
func Unset(root *etree.Element, path string) bool {
	e := Find(root, path)
	if e == nil || e == root {
		return false
	}
	e.Parent().RemoveChild(e)
	return true
}

// SetChild adds child under root, replacing the first existing child
// with the same tag in place.  child is detached from any previous
// parent first.
func SetChild(root, child *etree.Element) *etree.Element {
	if parent := child.Parent(); parent != nil {
		parent.RemoveChild(child)
	}
	if old := root.SelectElement(child.FullTag()); old != nil {
		index := old.Index()
		root.RemoveChild(old)
		root.InsertChildAt(index, child)
		return child
	}
	root.AddChild(child)
	return child
}

// Parse reads a complete XML document and returns its root element.
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	return root, nil
}

// Write serializes root as a standalone document.  If indent is
// positive the output is pretty-printed with that many spaces.  root
// is copied, so it stays attached to its tree.
func Write(root *etree.Element, indent int) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(root.Copy())
	if indent > 0 {
		doc.Indent(indent)
	}
	return doc.WriteToBytes()
}

// String is Write without indentation, for logging and tests.
func String(root *etree.Element) string {
	b, err := Write(root, 0)
	if err != nil {
		return ""
	}
	return string(b)
}

func split(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
