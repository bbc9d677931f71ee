// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package xmltree

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeXML = `<dataStore>
  <name>roads</name>
  <connectionParameters>
    <entry key="host">localhost</entry>
    <entry key="port">5432</entry>
    <entry key="schema">public</entry>
  </connectionParameters>
  <featureTypes>
    <featureType><name>a</name></featureType>
    <featureType><name>b</name></featureType>
  </featureTypes>
</dataStore>`

func mustParse(t *testing.T, s string) *etree.Element {
	root, err := Parse([]byte(s))
	require.NoError(t, err)
	return root
}

func TestSearchDepth(t *testing.T) {
	root := mustParse(t, storeXML)

	assert.Len(t, Search(root, Name("name"), 1), 1)
	assert.Len(t, Search(root, Name("name"), Unlimited), 3)
	assert.Len(t, Search(root, Name("name"), 3), 3)
	assert.Len(t, Search(root, Name("name"), 2), 1)
	assert.Empty(t, Search(root, Name("name"), 0))

	names := Search(root, Name("featureType"), Unlimited)
	if assert.Len(t, names, 2) {
		a, _ := Get(names[0], "name")
		b, _ := Get(names[1], "name")
		assert.Equal(t, "a", a)
		assert.Equal(t, "b", b)
	}
}

func TestSearchNeverMatchesRoot(t *testing.T) {
	root := mustParse(t, `<name><name>inner</name></name>`)
	found := Search(root, Name("name"), Unlimited)
	if assert.Len(t, found, 1) {
		assert.Equal(t, "inner", found[0].Text())
	}
}

func TestContains(t *testing.T) {
	root := mustParse(t, storeXML)

	entry := Contains(root, EntryKey("port"), Unlimited)
	if assert.NotNil(t, entry) {
		assert.Equal(t, "5432", entry.Text())
	}
	assert.Nil(t, Contains(root, EntryKey("port"), 1))
	assert.Nil(t, Contains(root, EntryKey("passwd"), Unlimited))

	b := Contains(root, NameValue("name", "b"), Unlimited)
	if assert.NotNil(t, b) {
		assert.Equal(t, "featureType", b.Parent().Tag)
	}
}

func TestRemove(t *testing.T) {
	root := mustParse(t, storeXML)

	n := Remove(root, Or(EntryKey("host"), EntryKey("schema")), Unlimited)
	assert.Equal(t, 2, n)
	remaining := Search(root, Name("entry"), Unlimited)
	if assert.Len(t, remaining, 1) {
		assert.Equal(t, "port", remaining[0].SelectAttrValue("key", ""))
	}

	// Removing the container takes the nested names with it.
	n = Remove(root, Name("featureTypes"), Unlimited)
	assert.Equal(t, 1, n)
	assert.Len(t, Search(root, Name("name"), Unlimited), 1)

	assert.Equal(t, 0, Remove(root, Name("nothing"), Unlimited))
}

func TestFilters(t *testing.T) {
	root := mustParse(t, `<r><a x="1">one</a><a x="2">two</a><b x="1"/></r>`)

	assert.Len(t, Search(root, Attr("x", "1"), 1), 2)
	assert.Len(t, Search(root, And(Name("a"), Attr("x", "1")), 1), 1)
	assert.Len(t, Search(root, Not(Name("a")), 1), 1)
}

func TestNamespacedName(t *testing.T) {
	root := mustParse(t, `<workspaces><workspace><name>topp</name>`+
		`<atom:link xmlns:atom="http://www.w3.org/2005/Atom" rel="alternate" href="http://x/topp.xml"/>`+
		`</workspace></workspaces>`)
	link := Contains(root, Name("atom:link"), Unlimited)
	if assert.NotNil(t, link) {
		assert.Equal(t, "http://x/topp.xml", link.SelectAttrValue("href", ""))
	}
}

func TestSetAndGet(t *testing.T) {
	root := etree.NewElement("featureType")

	Set(root, "name", "roads")
	Set(root, "nativeBoundingBox/minx", "-180")
	Set(root, "nativeBoundingBox/maxx", "180")
	Set(root, "nativeBoundingBox/minx", "-90")

	v, ok := Get(root, "nativeBoundingBox/minx")
	assert.True(t, ok)
	assert.Equal(t, "-90", v)
	assert.Len(t, root.SelectElements("nativeBoundingBox"), 1)
	assert.Len(t, Find(root, "nativeBoundingBox").ChildElements(), 2)

	_, ok = Get(root, "nativeBoundingBox/crs")
	assert.False(t, ok)
	assert.Nil(t, Find(root, "missing/deeper"))

	assert.Equal(t,
		`<featureType><name>roads</name><nativeBoundingBox><minx>-90</minx><maxx>180</maxx></nativeBoundingBox></featureType>`,
		String(root))
}

func TestUnset(t *testing.T) {
	root := etree.NewElement("layer")
	Set(root, "enabled", "true")
	Set(root, "attribution/title", "OSM")

	assert.True(t, Unset(root, "attribution/title"))
	assert.False(t, Unset(root, "attribution/title"))
	assert.NotNil(t, Find(root, "attribution"))
	assert.True(t, Unset(root, "enabled"))
	assert.False(t, Unset(root, ""))
}

func TestSetChild(t *testing.T) {
	root := etree.NewElement("layer")
	Set(root, "name", "roads")
	Set(root, "defaultStyle/name", "line")
	Set(root, "enabled", "true")

	style := etree.NewElement("defaultStyle")
	Set(style, "name", "polygon")
	SetChild(root, style)

	children := root.ChildElements()
	if assert.Len(t, children, 3) {
		assert.Equal(t, "defaultStyle", children[1].Tag)
	}
	v, _ := Get(root, "defaultStyle/name")
	assert.Equal(t, "polygon", v)

	extra := etree.NewElement("queryable")
	extra.SetText("false")
	SetChild(root, extra)
	assert.Len(t, root.ChildElements(), 4)
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{"", "just text", "<workspace"} {
		_, err := Parse([]byte(input))
		if assert.Error(t, err, "input %q", input) {
			assert.True(t, errors.Is(err, ErrMalformed), "input %q", input)
		}
	}
}

func TestWriteLeavesTreeAttached(t *testing.T) {
	root := mustParse(t, storeXML)
	params := Find(root, "connectionParameters")

	out, err := Write(params, 0)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<entry key="host">localhost</entry>`)
	assert.True(t, params.Parent() == root)

	pretty, err := Write(etree.NewElement("workspace"), 2)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "<workspace/>")
}
