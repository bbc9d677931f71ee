// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package decoder

import (
	"github.com/diffeo/go-geoserver/xmltree"
)

// Workspace is a decoded <workspace>.
type Workspace struct {
	Document
}

// DecodeWorkspace parses a <workspace> document.
func DecodeWorkspace(data []byte) (*Workspace, error) {
	d, err := parseAs(data, "workspace")
	if err != nil {
		return nil, err
	}
	return &Workspace{d}, nil
}

// Isolated reports whether the workspace is isolated, or nil on
// servers that do not say.
func (w *Workspace) Isolated() *bool { return w.Bool("isolated") }

// Namespace is a decoded <namespace>.
type Namespace struct {
	Document
}

// DecodeNamespace parses a <namespace> document.
func DecodeNamespace(data []byte) (*Namespace, error) {
	d, err := parseAs(data, "namespace")
	if err != nil {
		return nil, err
	}
	return &Namespace{d}, nil
}

// Prefix returns the namespace prefix, which is also the workspace
// name.
func (n *Namespace) Prefix() string { return n.Text("prefix") }

// URI returns the namespace URI.
func (n *Namespace) URI() string { return n.Text("uri") }

// Isolated reports whether the namespace is isolated.
func (n *Namespace) Isolated() *bool { return n.Bool("isolated") }

// DataStore is a decoded <dataStore>.
type DataStore struct {
	Document
}

// DecodeDataStore parses a <dataStore> document.
func DecodeDataStore(data []byte) (*DataStore, error) {
	d, err := parseAs(data, "dataStore")
	if err != nil {
		return nil, err
	}
	return &DataStore{d}, nil
}

// Type returns the store type, e.g. "PostGIS".
func (s *DataStore) Type() string { return s.Text("type") }

// Description returns the free-text description.
func (s *DataStore) Description() string { return s.Text("description") }

// Enabled reports whether the store is enabled.
func (s *DataStore) Enabled() *bool { return s.Bool("enabled") }

// ConnectionParameters returns the connection parameter map.  Secret
// values such as passwords come back encrypted, if at all.
func (s *DataStore) ConnectionParameters() map[string]string {
	return s.Entries("connectionParameters")
}

// CoverageStore is a decoded <coverageStore>.
type CoverageStore struct {
	Document
}

// DecodeCoverageStore parses a <coverageStore> document.
func DecodeCoverageStore(data []byte) (*CoverageStore, error) {
	d, err := parseAs(data, "coverageStore")
	if err != nil {
		return nil, err
	}
	return &CoverageStore{d}, nil
}

// Type returns the store type, e.g. "GeoTIFF".
func (s *CoverageStore) Type() string { return s.Text("type") }

// Description returns the free-text description.
func (s *CoverageStore) Description() string { return s.Text("description") }

// URL returns the location of the raster data.
func (s *CoverageStore) URL() string { return s.Text("url") }

// Enabled reports whether the store is enabled.
func (s *CoverageStore) Enabled() *bool { return s.Bool("enabled") }

// Style is a decoded <style> catalog entry.
type Style struct {
	Document
}

// DecodeStyle parses a <style> document.
func DecodeStyle(data []byte) (*Style, error) {
	d, err := parseAs(data, "style")
	if err != nil {
		return nil, err
	}
	return &Style{d}, nil
}

// Filename returns the style body's file name in the styles directory.
func (s *Style) Filename() string { return s.Text("filename") }

// Format returns the style language, "sld" if the server omits it.
func (s *Style) Format() string {
	if f := s.Text("format"); f != "" {
		return f
	}
	return "sld"
}

// LanguageVersion returns the style language version, e.g. "1.0.0".
func (s *Style) LanguageVersion() string { return s.Text("languageVersion/version") }

// Version is the decoded <about> version report.
type Version struct {
	Document
}

// DecodeVersion parses the response of rest/about/version.
func DecodeVersion(data []byte) (*Version, error) {
	d, err := parseAs(data, "about")
	if err != nil {
		return nil, err
	}
	return &Version{d}, nil
}

// Component returns the version of a named component, such as
// "GeoServer", "GeoTools", or "GeoWebCache", or "" if it is not
// listed.
func (v *Version) Component(name string) string {
	resource := xmltree.Contains(v.root, xmltree.And(xmltree.Name("resource"), xmltree.Attr("name", name)), 1)
	if resource == nil {
		return ""
	}
	s, _ := xmltree.Get(resource, "Version")
	return s
}

// GeoServer returns the GeoServer version.
func (v *Version) GeoServer() string {
	return v.Component("GeoServer")
}

// Components lists the reported components in document order.
func (v *Version) Components() []string {
	var names []string
	for _, r := range xmltree.Search(v.root, xmltree.Name("resource"), 1) {
		names = append(names, r.SelectAttrValue("name", ""))
	}
	return names
}
