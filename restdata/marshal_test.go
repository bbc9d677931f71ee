// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalMediaType(t *testing.T) {
	tests := []struct {
		ContentType string
		Canonical   string
		Unsupported bool
	}{
		{"application/xml", XMLMediaType, false},
		{"text/xml; charset=UTF-8", XMLMediaType, false},
		{SLDMediaType, XMLMediaType, false},
		{"application/json", JSONMediaType, false},
		{"text/json", JSONMediaType, false},
		{"text/html", "", true},
		{"", "", true},
	}
	for _, test := range tests {
		actual, err := CanonicalMediaType(test.ContentType)
		if test.Unsupported {
			assert.IsType(t, ErrUnsupportedMediaType{}, err, test.ContentType)
			assert.Equal(t, http.StatusUnsupportedMediaType, StatusCode(err))
		} else if assert.NoError(t, err, test.ContentType) {
			assert.Equal(t, test.Canonical, actual)
		}
	}
}

func TestDecodeXML(t *testing.T) {
	var root *etree.Element
	err := Decode("application/xml", strings.NewReader("<workspace><name>topp</name></workspace>"), &root)
	if assert.NoError(t, err) && assert.NotNil(t, root) {
		assert.Equal(t, "workspace", root.Tag)
	}

	var notElement map[string]interface{}
	err = Decode("application/xml", strings.NewReader("<workspace/>"), &notElement)
	assert.IsType(t, ErrUnsupportedMediaType{}, err)
}

func TestJSONRoundTrip(t *testing.T) {
	type record struct {
		Name    string   `json:"name"`
		Enabled bool     `json:"enabled"`
		Tags    []string `json:"tags,omitempty"`
	}
	in := record{Name: "roads", Enabled: true, Tags: []string{"a", "b"}}

	var buf bytes.Buffer
	if !assert.NoError(t, EncodeJSON(&buf, in)) {
		return
	}
	var out record
	if assert.NoError(t, Decode("application/json; charset=UTF-8", &buf, &out)) {
		assert.Equal(t, in, out)
	}

	var generic interface{}
	if assert.NoError(t, DecodeJSON(strings.NewReader(`{"a":{"b":1}}`), &generic)) {
		m, ok := generic.(map[string]interface{})
		if assert.True(t, ok) {
			assert.IsType(t, map[string]interface{}{}, m["a"])
		}
	}
}

func TestStatusCode(t *testing.T) {
	base := errors.New("no such layer")
	assert.True(t, IsNotFound(ErrNotFound{Err: base}))
	assert.True(t, errors.Is(ErrNotFound{Err: base}, base))
	assert.False(t, IsNotFound(ErrBadRequest{Err: base}))
	assert.Equal(t, http.StatusConflict, StatusCode(ErrConflict{Err: base}))
	assert.Equal(t, 0, StatusCode(base))
	assert.Equal(t, 0, StatusCode(nil))
}
