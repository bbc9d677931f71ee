// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"io/ioutil"
	"mime"
	"reflect"

	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/ugorji/go/codec"
)

var typeMap = map[string]string{
	XMLMediaType:      XMLMediaType,
	TextXMLMediaType:  XMLMediaType,
	SLDMediaType:      XMLMediaType,
	SEMediaType:       XMLMediaType,
	JSONMediaType:     JSONMediaType,
	TextJSONMediaType: JSONMediaType,
}

// CanonicalMediaType reduces a Content-Type: header to either
// XMLMediaType or JSONMediaType.  Anything else is an
// ErrUnsupportedMediaType.
func CanonicalMediaType(contentType string) (string, error) {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", err
	}
	canonical, known := typeMap[mediaType]
	if !known {
		return "", ErrUnsupportedMediaType{Type: mediaType}
	}
	return canonical, nil
}

func jsonHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return h
}

// DecodeJSON decodes a JSON document into out, which must be of
// pointer type.
func DecodeJSON(r io.Reader, out interface{}) error {
	return codec.NewDecoder(r, jsonHandle()).Decode(out)
}

// EncodeJSON writes v as JSON.
func EncodeJSON(w io.Writer, v interface{}) error {
	return codec.NewEncoder(w, jsonHandle()).Encode(v)
}

// Decode tries to decode an object from a reader, such as an HTTP
// request or response.  JSON bodies are decoded into out, which must
// be of pointer type.  XML bodies require out to be a
// **etree.Element, which receives the document root.
func Decode(contentType string, r io.Reader, out interface{}) error {
	mediaType, err := CanonicalMediaType(contentType)
	if err != nil {
		return err
	}

	switch mediaType {
	case JSONMediaType:
		return DecodeJSON(r, out)
	case XMLMediaType:
		root, isElement := out.(**etree.Element)
		if !isElement {
			return ErrUnsupportedMediaType{Type: mediaType}
		}
		data, err := ioutil.ReadAll(r)
		if err != nil {
			return err
		}
		*root, err = xmltree.Parse(data)
		return err
	}
	return ErrUnsupportedMediaType{Type: mediaType}
}
