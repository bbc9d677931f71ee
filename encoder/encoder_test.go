// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package encoder

import (
	"strings"
	"testing"

	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertXML(t *testing.T, expected string, p *PropertyEncoder) {
	data, err := p.XML()
	if assert.NoError(t, err) {
		assert.Equal(t, expected, string(data))
	}
}

func TestPropertyEncoder(t *testing.T) {
	p := NewPropertyEncoder("featureType")
	p.Set("name", "roads")
	p.SetInt("maxFeatures", 10)
	p.SetFloat("nativeBoundingBox/minx", -90.5)
	p.SetBool("enabled", false)
	assertXML(t,
		"<featureType><name>roads</name><maxFeatures>10</maxFeatures>"+
			"<nativeBoundingBox><minx>-90.5</minx></nativeBoundingBox>"+
			"<enabled>false</enabled></featureType>",
		p)

	v, ok := p.Get("nativeBoundingBox/minx")
	assert.True(t, ok)
	assert.Equal(t, "-90.5", v)

	assert.True(t, p.Unset("nativeBoundingBox"))
	assert.False(t, p.Unset("nativeBoundingBox"))
	_, ok = p.Get("nativeBoundingBox/minx")
	assert.False(t, ok)

	// Overwriting keeps the element in place.
	p.Set("name", "streets")
	assert.Equal(t, "name", p.Root().ChildElements()[0].Tag)
	assert.Equal(t, "streets", p.Root().ChildElements()[0].Text())
}

func TestWrap(t *testing.T) {
	root, err := xmltree.Parse([]byte("<workspace><name>topp</name></workspace>"))
	require.NoError(t, err)
	p := Wrap(root)
	p.Set("name", "sf")
	assert.Equal(t, "<workspace><name>sf</name></workspace>", p.String())
}

func TestEntryList(t *testing.T) {
	p := NewPropertyEncoder("dataStore")
	params := NewEntryList(p.Root(), "connectionParameters")
	params.Set("port", "5432")
	params.Set("host", "localhost")
	params.Set("port", "5433")

	assert.Equal(t, []string{"host", "port"}, params.Keys())
	assert.Equal(t, map[string]string{"host": "localhost", "port": "5433"}, params.Map())
	assert.Len(t, params.Element().SelectElements("entry"), 2)

	v, ok := params.Get("port")
	assert.True(t, ok)
	assert.Equal(t, "5433", v)
	_, ok = params.Get("user")
	assert.False(t, ok)

	assert.True(t, params.Remove("host"))
	assert.False(t, params.Remove("host"))
	assertXML(t, `<dataStore><connectionParameters><entry key="port">5433</entry></connectionParameters></dataStore>`, p)

	// A second EntryList over the same path edits the same map.
	NewEntryList(p.Root(), "connectionParameters").Set("user", "gis")
	assert.Equal(t, []string{"port", "user"}, params.Keys())
}

func TestEntryListElementValue(t *testing.T) {
	p := NewPropertyEncoder("coverage")
	md := NewEntryList(p.Root(), "metadata")
	md.Set("time", "placeholder")
	md.SetElement("time", Dimension{Enabled: true}.Element())

	entry := md.Lookup("time")
	if assert.NotNil(t, entry) {
		assert.Equal(t, "", strings.TrimSpace(entry.Text()))
		v, ok := xmltree.Get(entry, "dimensionInfo/enabled")
		assert.True(t, ok)
		assert.Equal(t, "true", v)
	}

	// Replacing an element value with text drops the element.
	md.Set("time", "plain")
	v, _ := md.Get("time")
	assert.Equal(t, "plain", v)
	assert.Nil(t, xmltree.Find(md.Lookup("time"), "dimensionInfo"))
}

func TestWorkspaceAndNamespace(t *testing.T) {
	assertXML(t, "<workspace><name>topp</name></workspace>", NewWorkspace("topp").PropertyEncoder)

	ns := NewNamespace("topp", "http://www.openplans.org/topp")
	ns.SetIsolated(true)
	assertXML(t,
		"<namespace><prefix>topp</prefix><uri>http://www.openplans.org/topp</uri><isolated>true</isolated></namespace>",
		ns.PropertyEncoder)
}
