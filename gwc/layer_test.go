// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package gwc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverLayer = `<GeoServerLayer>
  <id>LayerInfoImpl--570ae188:124761b8d78:-7fd0</id>
  <enabled>true</enabled>
  <inMemoryCached>false</inMemoryCached>
  <name>topp:states</name>
  <mimeFormats>
    <string>image/png</string>
    <string>image/jpeg</string>
  </mimeFormats>
  <gridSubsets>
    <gridSubset>
      <gridSetName>EPSG:4326</gridSetName>
      <extent>
        <coords>
          <double>-180.0</double>
          <double>-90.0</double>
          <double>180.0</double>
          <double>90.0</double>
        </coords>
      </extent>
      <zoomStart>0</zoomStart>
      <zoomStop>14</zoomStop>
    </gridSubset>
    <gridSubset>
      <gridSetName>EPSG:900913</gridSetName>
    </gridSubset>
  </gridSubsets>
  <metaWidthHeight>
    <int>4</int>
    <int>4</int>
  </metaWidthHeight>
  <expireCache>0</expireCache>
  <expireClients>0</expireClients>
  <gutter>0</gutter>
  <autoCacheStyles>true</autoCacheStyles>
</GeoServerLayer>`

func TestDecodeLayer(t *testing.T) {
	l, err := DecodeLayer([]byte(serverLayer))
	require.NoError(t, err)

	assert.Equal(t, "topp:states", l.Name)
	assert.Equal(t, boolp(true), l.Enabled)
	assert.Equal(t, boolp(false), l.InMemoryCached)
	assert.Equal(t, []string{"image/png", "image/jpeg"}, l.MimeFormats)
	assert.Equal(t, 4, l.MetaWidth)
	assert.Equal(t, 4, l.MetaHeight)
	assert.Equal(t, intp(0), l.Gutter)
	assert.Equal(t, boolp(true), l.AutoCacheStyles)

	if assert.Len(t, l.GridSubsets, 2) {
		gs := l.GridSubsets[0]
		assert.Equal(t, "EPSG:4326", gs.GridSetName)
		assert.Equal(t, &Bounds{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90}, gs.Extent)
		assert.Equal(t, intp(14), gs.ZoomStop)

		assert.Nil(t, l.GridSubsets[1].Extent)
		assert.Nil(t, l.GridSubsets[1].ZoomStart)
	}
}

func TestLayerRoundTrip(t *testing.T) {
	l, err := DecodeLayer([]byte(serverLayer))
	require.NoError(t, err)

	data, err := l.XML()
	require.NoError(t, err)
	back, err := DecodeLayer(data)
	require.NoError(t, err)
	assert.Equal(t, l, back)
}

func TestLayerValidate(t *testing.T) {
	bad := []Layer{
		{},
		{Name: "roads", MetaWidth: -1},
		{Name: "roads", GridSubsets: []GridSubset{{}}},
		{Name: "roads", GridSubsets: []GridSubset{{GridSetName: "EPSG:4326", ZoomStart: intp(5), ZoomStop: intp(2)}}},
	}
	for _, l := range bad {
		_, err := l.XML()
		assert.True(t, errors.Is(err, ErrInvalidConfig), "%+v", l)
	}
}

func TestDecodeLayerNames(t *testing.T) {
	names, err := DecodeLayerNames([]byte(`<layers>
  <layer><name>topp:states</name></layer>
  <layer><name>topp:roads</name></layer>
</layers>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"topp:states", "topp:roads"}, names)

	_, err = DecodeLayerNames([]byte("<layers"))
	assert.Error(t, err)
}
