// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package encoder

import (
	"strings"
	"testing"

	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerStyles(t *testing.T) {
	l := NewLayer("topp:roads")
	l.SetDefaultStyle(StyleRef{Name: "line"})
	l.SetDefaultStyle(StyleRef{Name: "roads", Workspace: "topp"})
	l.SetStyles(StyleRef{Name: "line"}, StyleRef{Name: "roads_labels", Workspace: "topp"})
	l.SetEnabled(true)
	l.SetQueryable(false)

	assertXML(t,
		"<layer><name>topp:roads</name>"+
			"<defaultStyle><name>roads</name><workspace>topp</workspace></defaultStyle>"+
			"<styles><style><name>line</name></style>"+
			"<style><name>roads_labels</name><workspace>topp</workspace></style></styles>"+
			"<enabled>true</enabled><queryable>false</queryable></layer>",
		l.PropertyEncoder)
}

func TestLayerAttribution(t *testing.T) {
	l := NewLayer("roads")
	l.SetAttribution(Attribution{
		Title:      "OpenStreetMap contributors",
		Href:       "http://www.openstreetmap.org/copyright",
		LogoURL:    "http://example.com/osm.png",
		LogoType:   "image/png",
		LogoWidth:  64,
		LogoHeight: 32,
	})
	root := l.Root()
	v, _ := xmltree.Get(root, "attribution/logoWidth")
	assert.Equal(t, "64", v)
	v, _ = xmltree.Get(root, "attribution/title")
	assert.Equal(t, "OpenStreetMap contributors", v)

	l.SetAttribution(Attribution{Title: "OSM"})
	assert.Len(t, root.SelectElements("attribution"), 1)
	_, ok := xmltree.Get(root, "attribution/logoWidth")
	assert.False(t, ok)
}

func TestLayerIdentifiers(t *testing.T) {
	l := NewLayer("roads")
	urls := []AuthorityURL{{Name: "ngs", Href: "http://www.ngs.noaa.gov"}}
	ids := []Identifier{{Authority: "ngs", Identifier: "roads-2016"}}
	require.NoError(t, l.SetAuthorityURLs(urls...))
	require.NoError(t, l.SetIdentifiers(ids...))

	root := l.Root()
	v, _ := xmltree.Get(root, "authorityURLs/AuthorityURL/href")
	assert.Equal(t, "http://www.ngs.noaa.gov", v)
	v, _ = xmltree.Get(root, "identifiers/Identifier/identifier")
	assert.Equal(t, "roads-2016", v)

	raw, ok := l.Metadata().Get("authorityURLs")
	if assert.True(t, ok) {
		var decoded []AuthorityURL
		require.NoError(t, restdata.DecodeJSON(strings.NewReader(raw), &decoded))
		assert.Equal(t, urls, decoded)
	}
	raw, ok = l.Metadata().Get("identifiers")
	if assert.True(t, ok) {
		var decoded []Identifier
		require.NoError(t, restdata.DecodeJSON(strings.NewReader(raw), &decoded))
		assert.Equal(t, ids, decoded)
	}

	require.NoError(t, l.SetIdentifiers())
	raw, _ = l.Metadata().Get("identifiers")
	assert.Equal(t, "[]", raw)
	assert.Empty(t, xmltree.Search(root, xmltree.Name("Identifier"), xmltree.Unlimited))
}

func TestLayerGroup(t *testing.T) {
	g := NewLayerGroup("base")
	g.SetMode(ModeNamed)
	g.SetTitle("Base map")
	g.AddLayer("topp:states", "population")
	g.AddLayer("topp:roads", "")
	g.AddLayerGroup("labels", "")
	g.SetBounds(BBox{MinX: -180, MaxX: 180, MinY: -90, MaxY: 90, CRS: "EPSG:4326"})

	published := xmltree.Search(g.Root(), xmltree.Name("published"), 2)
	styles := xmltree.Search(g.Root(), xmltree.Name("style"), 2)
	if assert.Len(t, published, 3) && assert.Len(t, styles, 3) {
		assert.Equal(t, "layer", published[0].SelectAttrValue("type", ""))
		assert.Equal(t, "layerGroup", published[2].SelectAttrValue("type", ""))
		v, _ := xmltree.Get(styles[0], "name")
		assert.Equal(t, "population", v)
		assert.Empty(t, styles[1].ChildElements())
	}
	v, _ := g.Get("bounds/crs")
	assert.Equal(t, "EPSG:4326", v)

	g.SetPublishables(Publishable{Name: "topp:roads"})
	assert.Len(t, xmltree.Search(g.Root(), xmltree.Name("published"), 2), 1)
	assert.Len(t, xmltree.Search(g.Root(), xmltree.Name("style"), 2), 1)

	assert.True(t, ModeEarthObservation.Valid())
	assert.False(t, LayerGroupMode("STACKED").Valid())
}

func TestStyle(t *testing.T) {
	s := NewStyle("roads", "roads.sld")
	s.SetFormat("sld")
	s.SetLanguageVersion("1.0.0")
	s.SetWorkspace("topp")
	assertXML(t,
		"<style><name>roads</name><filename>roads.sld</filename><format>sld</format>"+
			"<languageVersion><version>1.0.0</version></languageVersion>"+
			"<workspace><name>topp</name></workspace></style>",
		s.PropertyEncoder)
}
