// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package gwc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/xmltree"
)

// GridSubset restricts a cached layer to part of a grid set.
type GridSubset struct {
	GridSetName string
	Extent      *Bounds
	ZoomStart   *int
	ZoomStop    *int
}

// Layer is the tile caching configuration of one GeoServer layer, the
// <GeoServerLayer> document of gwc/rest/layers.
type Layer struct {
	ID              string
	Name            string
	Enabled         *bool
	InMemoryCached  *bool
	MimeFormats     []string
	GridSubsets     []GridSubset
	MetaWidth       int
	MetaHeight      int
	ExpireCache     *int
	ExpireClients   *int
	Gutter          *int
	AutoCacheStyles *bool
}

// Validate checks the layer before it is sent.
func (l *Layer) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: cached layer needs a name", ErrInvalidConfig)
	}
	if l.MetaWidth < 0 || l.MetaHeight < 0 {
		return fmt.Errorf("%w: negative metatile size", ErrInvalidConfig)
	}
	for _, gs := range l.GridSubsets {
		if gs.GridSetName == "" {
			return fmt.Errorf("%w: grid subset without a grid set", ErrInvalidConfig)
		}
		if gs.ZoomStart != nil && gs.ZoomStop != nil && *gs.ZoomStop < *gs.ZoomStart {
			return fmt.Errorf("%w: grid subset %s zoom range", ErrInvalidConfig, gs.GridSetName)
		}
	}
	return nil
}

func setBool(root *etree.Element, path string, b *bool) {
	if b != nil {
		xmltree.Set(root, path, strconv.FormatBool(*b))
	}
}

func setInt(root *etree.Element, path string, n *int) {
	if n != nil {
		xmltree.Set(root, path, strconv.Itoa(*n))
	}
}

func getBool(root *etree.Element, path string) *bool {
	v, ok := xmltree.Get(root, path)
	if !ok || v == "" {
		return nil
	}
	b := v == "true"
	return &b
}

// Element encodes the layer as <GeoServerLayer>.
func (l *Layer) Element() *etree.Element {
	root := etree.NewElement("GeoServerLayer")
	if l.ID != "" {
		xmltree.Set(root, "id", l.ID)
	}
	setBool(root, "enabled", l.Enabled)
	setBool(root, "inMemoryCached", l.InMemoryCached)
	xmltree.Set(root, "name", l.Name)
	if len(l.MimeFormats) > 0 {
		formats := root.CreateElement("mimeFormats")
		for _, f := range l.MimeFormats {
			formats.CreateElement("string").SetText(f)
		}
	}
	if len(l.GridSubsets) > 0 {
		subsets := root.CreateElement("gridSubsets")
		for _, gs := range l.GridSubsets {
			e := subsets.CreateElement("gridSubset")
			xmltree.Set(e, "gridSetName", gs.GridSetName)
			if gs.Extent != nil {
				e.AddChild(gs.Extent.element("extent"))
			}
			setInt(e, "zoomStart", gs.ZoomStart)
			setInt(e, "zoomStop", gs.ZoomStop)
		}
	}
	if l.MetaWidth > 0 && l.MetaHeight > 0 {
		meta := root.CreateElement("metaWidthHeight")
		meta.CreateElement("int").SetText(strconv.Itoa(l.MetaWidth))
		meta.CreateElement("int").SetText(strconv.Itoa(l.MetaHeight))
	}
	setInt(root, "expireCache", l.ExpireCache)
	setInt(root, "expireClients", l.ExpireClients)
	setInt(root, "gutter", l.Gutter)
	setBool(root, "autoCacheStyles", l.AutoCacheStyles)
	return root
}

// XML validates and encodes the layer.
func (l *Layer) XML() ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return xmltree.Write(l.Element(), 0)
}

// DecodeLayer parses a <GeoServerLayer> (or <wmsLayer>) document.
func DecodeLayer(data []byte) (*Layer, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, err
	}
	l := &Layer{}
	l.ID, _ = xmltree.Get(root, "id")
	l.Name, _ = xmltree.Get(root, "name")
	l.Enabled = getBool(root, "enabled")
	l.InMemoryCached = getBool(root, "inMemoryCached")
	l.AutoCacheStyles = getBool(root, "autoCacheStyles")
	for _, f := range xmltree.Search(root, xmltree.Name("string"), 2) {
		if f.Parent().Tag == "mimeFormats" {
			l.MimeFormats = append(l.MimeFormats, strings.TrimSpace(f.Text()))
		}
	}
	for _, e := range xmltree.Search(root, xmltree.Name("gridSubset"), 2) {
		gs := GridSubset{}
		gs.GridSetName, _ = xmltree.Get(e, "gridSetName")
		if ext := e.SelectElement("extent"); ext != nil {
			if gs.Extent, err = boundsFromElement(ext); err != nil {
				return nil, err
			}
		}
		if gs.ZoomStart, err = optionalInt(e, "zoomStart"); err != nil {
			return nil, err
		}
		if gs.ZoomStop, err = optionalInt(e, "zoomStop"); err != nil {
			return nil, err
		}
		l.GridSubsets = append(l.GridSubsets, gs)
	}
	if meta := root.SelectElement("metaWidthHeight"); meta != nil {
		ints := meta.SelectElements("int")
		if len(ints) == 2 {
			l.MetaWidth, _ = strconv.Atoi(strings.TrimSpace(ints[0].Text()))
			l.MetaHeight, _ = strconv.Atoi(strings.TrimSpace(ints[1].Text()))
		}
	}
	for path, dst := range map[string]**int{
		"expireCache":   &l.ExpireCache,
		"expireClients": &l.ExpireClients,
		"gutter":        &l.Gutter,
	} {
		if *dst, err = optionalInt(root, path); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// DecodeLayerNames parses the <layers> listing of cached layers.
func DecodeLayerNames(data []byte) ([]string, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range xmltree.Search(root, xmltree.Name("layer"), 1) {
		if name, ok := xmltree.Get(e, "name"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
