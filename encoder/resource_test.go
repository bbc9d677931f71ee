// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package encoder

import (
	"testing"

	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/stretchr/testify/assert"
)

func TestKeyword(t *testing.T) {
	tests := []struct {
		Keyword Keyword
		Text    string
	}{
		{Keyword{Value: "roads"}, `roads`},
		{Keyword{Value: "roads", Language: "en"}, `roads\@language=en\;`},
		{Keyword{Value: "roads", Vocabulary: "gemet"}, `roads\@vocabulary=gemet\;`},
		{Keyword{Value: "routes", Language: "fr", Vocabulary: "gemet"}, `routes\@language=fr\;\@vocabulary=gemet\;`},
	}
	for _, test := range tests {
		assert.Equal(t, test.Text, test.Keyword.String())
		assert.Equal(t, test.Keyword, ParseKeyword(test.Text))
	}
}

func TestFeatureType(t *testing.T) {
	ft := NewFeatureType("roads")
	assert.False(t, ft.IsCoverage())
	ft.SetNativeName("osm_roads")
	ft.SetTitle("Roads")
	ft.SetSRS("EPSG:3857")
	ft.SetProjectionPolicy(ForceDeclared)
	ft.SetKeywords(Keyword{Value: "roads"}, Keyword{Value: "transport", Language: "en"})
	ft.AddKeyword(Keyword{Value: "osm"})
	ft.SetNativeBoundingBox(BBox{MinX: -20037508.34, MaxX: 20037508.34, MinY: -20037508.34, MaxY: 20037508.34, CRS: "EPSG:3857"})
	ft.SetLatLonBoundingBox(BBox{MinX: -180, MaxX: 180, MinY: -85, MaxY: 85})

	root := ft.Root()
	v, _ := xmltree.Get(root, "projectionPolicy")
	assert.Equal(t, "FORCE_DECLARED", v)
	keywords := xmltree.Search(root, xmltree.Name("string"), 2)
	if assert.Len(t, keywords, 3) {
		assert.Equal(t, `transport\@language=en\;`, keywords[1].Text())
	}
	v, _ = xmltree.Get(root, "nativeBoundingBox/minx")
	assert.Equal(t, "-20037508.34", v)
	v, _ = xmltree.Get(root, "latLonBoundingBox/crs")
	assert.Equal(t, "EPSG:4326", v)

	// Replacing the bounding box does not duplicate it.
	ft.SetLatLonBoundingBox(BBox{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10})
	assert.Len(t, root.SelectElements("latLonBoundingBox"), 1)
	v, _ = xmltree.Get(root, "latLonBoundingBox/maxx")
	assert.Equal(t, "10", v)

	ft.SetKeywords()
	assert.Empty(t, xmltree.Search(root, xmltree.Name("string"), 2))
}

func TestDimension(t *testing.T) {
	nearest := true
	ft := NewFeatureType("observations")
	ft.SetDimension(TimeDimension, Dimension{
		Enabled:         true,
		Attribute:       "observed",
		Presentation:    PresentDiscreteInterval,
		Resolution:      "86400000",
		Units:           "ISO8601",
		DefaultStrategy: DefaultNearest,
		ReferenceValue:  "2016-01-01T00:00:00Z",
		NearestMatch:    &nearest,
	})
	ft.SetDimension(ElevationDimension, Dimension{Enabled: false})

	time := ft.Metadata().Lookup("time")
	if assert.NotNil(t, time) {
		for path, expected := range map[string]string{
			"dimensionInfo/enabled":                     "true",
			"dimensionInfo/attribute":                   "observed",
			"dimensionInfo/presentation":                "DISCRETE_INTERVAL",
			"dimensionInfo/resolution":                  "86400000",
			"dimensionInfo/units":                       "ISO8601",
			"dimensionInfo/defaultValue/strategy":       "NEAREST",
			"dimensionInfo/defaultValue/referenceValue": "2016-01-01T00:00:00Z",
			"dimensionInfo/nearestMatchEnabled":         "true",
		} {
			v, ok := xmltree.Get(time, path)
			assert.True(t, ok, path)
			assert.Equal(t, expected, v, path)
		}
	}

	// Reconfiguring replaces rather than appends.
	ft.SetDimension(TimeDimension, Dimension{Enabled: false})
	assert.Len(t, ft.Metadata().Keys(), 2)
	assert.Len(t, xmltree.Search(ft.Root(), xmltree.Name("dimensionInfo"), xmltree.Unlimited), 2)

	assert.Equal(t, "custom_dimension_DEPTH", CustomDimensionKey("depth"))
}

func TestVirtualTable(t *testing.T) {
	ft := NewFeatureType("popular_roads")
	ft.SetVirtualTable(VirtualTable{
		Name:      "popular_roads",
		SQL:       "select * from roads where traffic > %min%",
		KeyColumn: "id",
		Geometry:  &VirtualTableGeometry{Name: "geom", Type: "LineString", SRID: 4326},
		Parameters: []VirtualTableParameter{
			{Name: "min", DefaultValue: "1000", RegexpValidator: `^[\d]+$`},
		},
	})

	entry := ft.Metadata().Lookup(VirtualTableKey)
	if assert.NotNil(t, entry) {
		v, _ := xmltree.Get(entry, "virtualTable/sql")
		assert.Equal(t, "select * from roads where traffic > %min%", v)
		v, _ = xmltree.Get(entry, "virtualTable/escapeSql")
		assert.Equal(t, "false", v)
		v, _ = xmltree.Get(entry, "virtualTable/geometry/srid")
		assert.Equal(t, "4326", v)
		v, _ = xmltree.Get(entry, "virtualTable/parameter/regexpValidator")
		assert.Equal(t, `^[\d]+$`, v)
	}

	data, err := ft.XML()
	if assert.NoError(t, err) {
		assert.Contains(t, string(data), "traffic &gt; %min%")
	}
}

func TestAttributesAndLinks(t *testing.T) {
	ft := NewFeatureType("roads")
	ft.SetAttributes(
		Attribute{Name: "geom", MinOccurs: 0, MaxOccurs: 1, Nillable: true, Binding: "org.locationtech.jts.geom.LineString"},
		Attribute{Name: "name", MinOccurs: 1, MaxOccurs: 1, Binding: "java.lang.String", Length: 80},
	)
	ft.SetMetadataLinks(MetadataLink{Type: "text/xml", MetadataType: "ISO19115:2003", Content: "http://example.com/roads.xml"})

	attrs := xmltree.Search(ft.Root(), xmltree.Name("attribute"), 2)
	if assert.Len(t, attrs, 2) {
		v, _ := xmltree.Get(attrs[1], "length")
		assert.Equal(t, "80", v)
		_, ok := xmltree.Get(attrs[0], "length")
		assert.False(t, ok)
	}
	v, _ := xmltree.Get(ft.Root(), "metadataLinks/metadataLink/metadataType")
	assert.Equal(t, "ISO19115:2003", v)

	ft.SetAttributes()
	assert.Empty(t, xmltree.Search(ft.Root(), xmltree.Name("attribute"), 2))
}

func TestCoverage(t *testing.T) {
	c := NewCoverage("dem")
	assert.True(t, c.IsCoverage())
	c.SetNativeCoverageName("dem")
	c.SetSupportedFormats("GeoTIFF", "PNG")
	c.SetRequestSRS("EPSG:4326")
	c.SetCoverageParameter("InputTransparentColor", "")
	c.SetCoverageParameter("USE_JAI_IMAGEREAD", "true")
	c.SetCoverageParameter("USE_JAI_IMAGEREAD", "false")
	c.SetCoverageDimensions(CoverageDimension{
		Name:       "GRAY_INDEX",
		Min:        "-inf",
		Max:        "inf",
		NullValues: []float64{-9999},
		Unit:       "m",
		Type:       "REAL_32BITS",
	})

	entries := xmltree.Search(c.Root(), xmltree.Name("entry"), 2)
	if assert.Len(t, entries, 2) {
		kv := entries[1].SelectElements("string")
		assert.Equal(t, "USE_JAI_IMAGEREAD", kv[0].Text())
		assert.Equal(t, "false", kv[1].Text())
	}
	assert.Len(t, xmltree.Search(c.Root(), xmltree.Name("string"), 2), 3)

	dim := xmltree.Find(c.Root(), "dimensions/coverageDimension")
	if assert.NotNil(t, dim) {
		v, _ := xmltree.Get(dim, "nullValues/double")
		assert.Equal(t, "-9999", v)
		v, _ = xmltree.Get(dim, "dimensionType/name")
		assert.Equal(t, "REAL_32BITS", v)
		v, _ = xmltree.Get(dim, "range/min")
		assert.Equal(t, "-inf", v)
	}
}
