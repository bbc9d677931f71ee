// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package decoder

import (
	"testing"

	"github.com/diffeo/go-geoserver/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statesLayer = `<layer>
  <name>states</name>
  <path>/</path>
  <type>VECTOR</type>
  <defaultStyle>
    <name>population</name>
    <atom:link xmlns:atom="http://www.w3.org/2005/Atom" rel="alternate" href="http://localhost:8080/geoserver/rest/styles/population.xml" type="application/xml"/>
  </defaultStyle>
  <styles class="linked-hash-set">
    <style>
      <name>topp:pophatch</name>
      <workspace>topp</workspace>
    </style>
    <style>
      <name>polygon</name>
    </style>
  </styles>
  <resource class="featureType">
    <name>topp:states</name>
    <atom:link xmlns:atom="http://www.w3.org/2005/Atom" rel="alternate" href="http://localhost:8080/geoserver/rest/workspaces/topp/datastores/states_shapefile/featuretypes/states.xml" type="application/xml"/>
  </resource>
  <enabled>true</enabled>
  <queryable>true</queryable>
  <opaque>false</opaque>
  <attribution>
    <title>US Census Bureau</title>
    <logoWidth>0</logoWidth>
    <logoHeight>0</logoHeight>
  </attribution>
  <metadata>
    <entry key="identifiers">[{"authority":"census","identifier":"states-2010"}]</entry>
  </metadata>
</layer>`

func TestLayer(t *testing.T) {
	l, err := DecodeLayer([]byte(statesLayer))
	require.NoError(t, err)

	assert.Equal(t, "states", l.Name())
	assert.Equal(t, "VECTOR", l.Type())
	assert.Equal(t, "/", l.Path())
	assert.Equal(t, "topp:states", l.ResourceName())
	assert.Equal(t, "featureType", l.ResourceClass())
	assert.Equal(t,
		"http://localhost:8080/geoserver/rest/workspaces/topp/datastores/states_shapefile/featuretypes/states.xml",
		l.ResourceHref())

	assert.Equal(t, &encoder.StyleRef{Name: "population"}, l.DefaultStyle())
	assert.Equal(t, []encoder.StyleRef{
		{Name: "pophatch", Workspace: "topp"},
		{Name: "polygon"},
	}, l.Styles())

	assert.True(t, *l.Enabled())
	assert.True(t, *l.Queryable())
	assert.False(t, *l.Opaque())
	assert.Nil(t, l.Advertised())

	assert.Equal(t, &encoder.Attribution{Title: "US Census Bureau"}, l.Attribution())

	// Identifiers only exist as JSON metadata in this document.
	assert.Equal(t, []encoder.Identifier{{Authority: "census", Identifier: "states-2010"}}, l.Identifiers())
	assert.Nil(t, l.AuthorityURLs())
}

func TestEncodedLayerRoundTrip(t *testing.T) {
	enc := encoder.NewLayer("roads")
	enc.SetDefaultStyle(encoder.StyleRef{Name: "roads", Workspace: "osm"})
	enc.SetStyles(encoder.StyleRef{Name: "line"})
	enc.SetAttribution(encoder.Attribution{Title: "OSM", Href: "http://osm.org", LogoWidth: 20, LogoHeight: 10})
	urls := []encoder.AuthorityURL{{Name: "osm", Href: "http://osm.org/authority"}}
	ids := []encoder.Identifier{{Authority: "osm", Identifier: "roads"}}
	require.NoError(t, enc.SetAuthorityURLs(urls...))
	require.NoError(t, enc.SetIdentifiers(ids...))
	data, err := enc.XML()
	require.NoError(t, err)

	l, err := DecodeLayer(data)
	require.NoError(t, err)
	assert.Equal(t, &encoder.StyleRef{Name: "roads", Workspace: "osm"}, l.DefaultStyle())
	assert.Equal(t, []encoder.StyleRef{{Name: "line"}}, l.Styles())
	assert.Equal(t, &encoder.Attribution{Title: "OSM", Href: "http://osm.org", LogoWidth: 20, LogoHeight: 10}, l.Attribution())
	assert.Equal(t, urls, l.AuthorityURLs())
	assert.Equal(t, ids, l.Identifiers())
	assert.Nil(t, l.Enabled())
}

func TestLayerGroup(t *testing.T) {
	enc := encoder.NewLayerGroup("base")
	enc.SetMode(encoder.ModeContainer)
	enc.SetTitle("Base map")
	enc.SetWorkspace("topp")
	enc.AddLayer("topp:states", "population")
	enc.AddLayerGroup("labels", "")
	enc.SetBounds(encoder.BBox{MinX: -180, MaxX: 180, MinY: -90, MaxY: 90, CRS: "EPSG:4326"})
	data, err := enc.XML()
	require.NoError(t, err)

	g, err := DecodeLayerGroup(data)
	require.NoError(t, err)
	assert.Equal(t, "base", g.Name())
	assert.Equal(t, "topp", g.Workspace())
	assert.Equal(t, "Base map", g.Title())
	assert.Equal(t, encoder.ModeContainer, g.Mode())
	assert.Equal(t, []encoder.Publishable{
		{Name: "topp:states", Style: "population"},
		{Name: "labels", Group: true},
	}, g.Publishables())
	assert.Equal(t, &encoder.BBox{MinX: -180, MaxX: 180, MinY: -90, MaxY: 90, CRS: "EPSG:4326"}, g.Bounds())
}

func TestLegacyLayerGroup(t *testing.T) {
	doc := `<layerGroup>
  <name>tasmania</name>
  <layers>
    <layer><name>tasmania_state_boundaries</name></layer>
    <layer><name>tasmania_water_bodies</name></layer>
  </layers>
  <styles>
    <style><name>green</name></style>
    <style/>
  </styles>
</layerGroup>`
	g, err := DecodeLayerGroup([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, encoder.ModeSingle, g.Mode())
	assert.Equal(t, []encoder.Publishable{
		{Name: "tasmania_state_boundaries", Style: "green"},
		{Name: "tasmania_water_bodies"},
	}, g.Publishables())
	assert.Nil(t, g.Bounds())
}
