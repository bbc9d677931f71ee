// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the wire-level vocabulary shared by the
// restclient package and the geoservertest fake server: media types,
// URI templates for the GeoServer and GeoWebCache REST resources, JSON
// codecs, and errors that map onto HTTP status codes.
//
// API Usage
//
// All paths are RFC 6570 URI templates relative to the GeoServer base
// URL, e.g. http://localhost:8080/geoserver/.  Names are filled in with
// simple expansion, so characters outside the unreserved set are
// percent-encoded.  Optional query parameters use the {?name} form and
// are dropped when not provided:
//
//     rest/workspaces/{workspace}.xml{?recurse}
//
// expands with workspace "topp" and recurse true to
//
//     rest/workspaces/topp.xml?recurse=true
//
// Most GeoServer resources are exchanged as XML; the .xml suffix
// selects that representation regardless of Accept headers.  The
// GeoWebCache disk quota and seed status resources are also available
// as JSON.
//
// Layers are addressed by qualified name, "workspace:layer".  See
// QualifiedName.
//
// Errors
//
// GeoServer reports errors as plain text bodies with an HTTP error
// status.  404 Not Found is the only status a client routinely needs
// to distinguish; ErrNotFound wraps it.
package restdata

// Media types used by the GeoServer REST API.
const (
	XMLMediaType      = "application/xml"
	TextXMLMediaType  = "text/xml"
	JSONMediaType     = "application/json"
	TextJSONMediaType = "text/json"
	SLDMediaType      = "application/vnd.ogc.sld+xml"
	SEMediaType       = "application/vnd.ogc.se+xml"
	ZipMediaType      = "application/zip"
	TextMediaType     = "text/plain"
	TIFFMediaType     = "image/tiff"
	FormMediaType     = "application/x-www-form-urlencoded"
)

// GeoServer catalog resources.
const (
	AboutVersionPath = "rest/about/version.xml"
	ReloadPath       = "rest/reload"
	ResetPath        = "rest/reset"

	WorkspacesPath = "rest/workspaces.xml"
	WorkspacePath  = "rest/workspaces/{workspace}.xml{?recurse}"
	NamespacesPath = "rest/namespaces.xml"
	NamespacePath  = "rest/namespaces/{prefix}.xml"

	DataStoresPath    = "rest/workspaces/{workspace}/datastores.xml"
	DataStorePath     = "rest/workspaces/{workspace}/datastores/{store}.xml{?recurse}"
	DataStoreFilePath = "rest/workspaces/{workspace}/datastores/{store}/{method}.{extension}{?configure,update,charset,filename}"
	FeatureTypesPath  = "rest/workspaces/{workspace}/datastores/{store}/featuretypes.xml{?list}"
	FeatureTypePath   = "rest/workspaces/{workspace}/datastores/{store}/featuretypes/{featuretype}.xml{?recurse}"

	CoverageStoresPath    = "rest/workspaces/{workspace}/coveragestores.xml"
	CoverageStorePath     = "rest/workspaces/{workspace}/coveragestores/{store}.xml{?recurse,purge}"
	CoverageStoreFilePath = "rest/workspaces/{workspace}/coveragestores/{store}/{method}.{format}{?configure,coverageName,update}"
	CoveragesPath         = "rest/workspaces/{workspace}/coveragestores/{store}/coverages.xml"
	CoveragePath          = "rest/workspaces/{workspace}/coveragestores/{store}/coverages/{coverage}.xml{?recurse}"

	LayersPath          = "rest/layers.xml"
	LayerPath           = "rest/layers/{layer}.xml{?recurse}"
	WorkspaceLayersPath = "rest/workspaces/{workspace}/layers.xml"

	LayerGroupsPath          = "rest/layergroups.xml"
	LayerGroupPath           = "rest/layergroups/{group}.xml"
	WorkspaceLayerGroupsPath = "rest/workspaces/{workspace}/layergroups.xml"
	WorkspaceLayerGroupPath  = "rest/workspaces/{workspace}/layergroups/{group}.xml"

	StylesPath                = "rest/styles.xml{?name,raw}"
	StylePath                 = "rest/styles/{style}.xml{?purge,recurse}"
	StyleBodyPath             = "rest/styles/{style}.sld{?raw}"
	StyleContentPath          = "rest/styles/{style}{?raw}"
	WorkspaceStylesPath       = "rest/workspaces/{workspace}/styles.xml{?name,raw}"
	WorkspaceStylePath        = "rest/workspaces/{workspace}/styles/{style}.xml{?purge,recurse}"
	WorkspaceStyleBodyPath    = "rest/workspaces/{workspace}/styles/{style}.sld{?raw}"
	WorkspaceStyleContentPath = "rest/workspaces/{workspace}/styles/{style}{?raw}"
)

// GeoWebCache resources, under the same base URL.
const (
	GWCLayersPath     = "gwc/rest/layers.xml"
	GWCLayerPath      = "gwc/rest/layers/{layer}.xml"
	GWCSeedPath       = "gwc/rest/seed/{layer}.xml"
	GWCSeedStatusPath = "gwc/rest/seed/{layer}.json"
	GWCAllSeedPath    = "gwc/rest/seed.json"
	GWCKillPath       = "gwc/rest/seed"
	GWCLayerKillPath  = "gwc/rest/seed/{layer}"
	GWCTruncatePath   = "gwc/rest/masstruncate"
	GWCDiskQuotaPath  = "gwc/rest/diskquota.{format}"
	GWCReloadPath     = "gwc/rest/reload"
)

// Upload methods for the store file endpoints.
const (
	UploadFile     = "file"
	UploadURL      = "url"
	UploadExternal = "external"
)
