// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file holds the operations that change the catalog.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/diffeo/go-geoserver/encoder"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
	"io"
	"strings"
)

// ErrWrongResource is returned when a coverage is given where a feature
// type is expected, or the reverse.
var ErrWrongResource = errors.New("wrong kind of resource")

// flag adds a "true" query parameter to v if b is set.
func flag(v vars, name string, b bool) vars {
	if b {
		v[name] = "true"
	}
	return v
}

// CreateWorkspace creates an empty workspace.  GeoServer creates a
// namespace of the same name with a default URI.
func (c *Client) CreateWorkspace(ctx context.Context, name string) error {
	return c.PostTo(ctx, restdata.WorkspacesPath, nil, encoder.NewWorkspace(name), nil)
}

// CreateNamespace creates a namespace and its workspace, with an
// explicit URI.
func (c *Client) CreateNamespace(ctx context.Context, prefix, uri string) error {
	return c.PostTo(ctx, restdata.NamespacesPath, nil, encoder.NewNamespace(prefix, uri), nil)
}

// UpdateNamespace changes the URI of a namespace.
func (c *Client) UpdateNamespace(ctx context.Context, prefix, uri string) error {
	return c.PutTo(ctx, restdata.NamespacePath, vars{"prefix": prefix}, encoder.NewNamespace(prefix, uri), nil)
}

// RemoveWorkspace deletes a workspace.  Unless recurse is set the
// server refuses to delete a workspace that still has contents.
func (c *Client) RemoveWorkspace(ctx context.Context, name string, recurse bool) error {
	return c.DeleteAt(ctx, restdata.WorkspacePath, flag(vars{"workspace": name}, "recurse", recurse))
}

// CreateDataStore creates a data store in a workspace.
func (c *Client) CreateDataStore(ctx context.Context, workspace string, store *encoder.DataStore) error {
	return c.PostTo(ctx, restdata.DataStoresPath, vars{"workspace": workspace}, store, nil)
}

// UpdateDataStore changes the fields set in store.
func (c *Client) UpdateDataStore(ctx context.Context, workspace, name string, store *encoder.DataStore) error {
	return c.PutTo(ctx, restdata.DataStorePath, vars{"workspace": workspace, "store": name}, store, nil)
}

// RemoveDataStore deletes a data store, and with recurse its feature
// types and layers.
func (c *Client) RemoveDataStore(ctx context.Context, workspace, name string, recurse bool) error {
	return c.DeleteAt(ctx, restdata.DataStorePath,
		flag(vars{"workspace": workspace, "store": name}, "recurse", recurse))
}

// CreateCoverageStore creates a coverage store in a workspace.
func (c *Client) CreateCoverageStore(ctx context.Context, workspace string, store *encoder.CoverageStore) error {
	return c.PostTo(ctx, restdata.CoverageStoresPath, vars{"workspace": workspace}, store, nil)
}

// UpdateCoverageStore changes the fields set in store.
func (c *Client) UpdateCoverageStore(ctx context.Context, workspace, name string, store *encoder.CoverageStore) error {
	return c.PutTo(ctx, restdata.CoverageStorePath, vars{"workspace": workspace, "store": name}, store, nil)
}

// Purge says what happens to the files behind a deleted coverage
// store.
type Purge string

// Purge modes.
const (
	PurgeNone     Purge = "none"
	PurgeMetadata Purge = "metadata"
	PurgeAll      Purge = "all"
)

// RemoveCoverageStore deletes a coverage store, and with recurse its
// coverages and layers.
func (c *Client) RemoveCoverageStore(ctx context.Context, workspace, name string, recurse bool, purge Purge) error {
	v := flag(vars{"workspace": workspace, "store": name}, "recurse", recurse)
	if purge != "" {
		v["purge"] = string(purge)
	}
	return c.DeleteAt(ctx, restdata.CoverageStorePath, v)
}

// PublishFeatureType creates a feature type from a table or file in a
// data store, which also publishes it as a layer.
func (c *Client) PublishFeatureType(ctx context.Context, workspace, store string, ft *encoder.Resource) error {
	if ft.IsCoverage() {
		return ErrWrongResource
	}
	return c.PostTo(ctx, restdata.FeatureTypesPath, vars{"workspace": workspace, "store": store}, ft, nil)
}

// PublishDBLayer publishes a database table and then configures the
// resulting layer, if layer is not nil.
func (c *Client) PublishDBLayer(ctx context.Context, workspace, store string, ft *encoder.Resource, layer *encoder.Layer) error {
	if err := c.PublishFeatureType(ctx, workspace, store, ft); err != nil {
		return err
	}
	if layer == nil {
		return nil
	}
	name, _ := ft.Get("name")
	return c.ConfigureLayer(ctx, workspace, name, layer)
}

// UpdateFeatureType changes the fields set in ft.
func (c *Client) UpdateFeatureType(ctx context.Context, workspace, store, name string, ft *encoder.Resource) error {
	if ft.IsCoverage() {
		return ErrWrongResource
	}
	return c.PutTo(ctx, restdata.FeatureTypePath,
		vars{"workspace": workspace, "store": store, "featuretype": name}, ft, nil)
}

// UnpublishFeatureType removes the layer publishing a feature type and
// then the feature type itself.  The table or file is untouched.
func (c *Client) UnpublishFeatureType(ctx context.Context, workspace, store, name string) error {
	if err := c.RemoveLayer(ctx, workspace, name); err != nil && !restdata.IsNotFound(err) {
		return err
	}
	return c.DeleteAt(ctx, restdata.FeatureTypePath,
		vars{"workspace": workspace, "store": store, "featuretype": name})
}

// PublishCoverage creates a coverage from a coverage store, and
// configures its layer if layer is not nil.
func (c *Client) PublishCoverage(ctx context.Context, workspace, store string, cov *encoder.Resource, layer *encoder.Layer) error {
	if !cov.IsCoverage() {
		return ErrWrongResource
	}
	err := c.PostTo(ctx, restdata.CoveragesPath, vars{"workspace": workspace, "store": store}, cov, nil)
	if err != nil || layer == nil {
		return err
	}
	name, _ := cov.Get("name")
	return c.ConfigureLayer(ctx, workspace, name, layer)
}

// UpdateCoverage changes the fields set in cov.
func (c *Client) UpdateCoverage(ctx context.Context, workspace, store, name string, cov *encoder.Resource) error {
	if !cov.IsCoverage() {
		return ErrWrongResource
	}
	return c.PutTo(ctx, restdata.CoveragePath,
		vars{"workspace": workspace, "store": store, "coverage": name}, cov, nil)
}

// UnpublishCoverage removes the layer publishing a coverage and then
// the coverage itself.
func (c *Client) UnpublishCoverage(ctx context.Context, workspace, store, name string) error {
	if err := c.RemoveLayer(ctx, workspace, name); err != nil && !restdata.IsNotFound(err) {
		return err
	}
	return c.DeleteAt(ctx, restdata.CoveragePath,
		vars{"workspace": workspace, "store": store, "coverage": name})
}

// ConfigureLayer changes the publishing settings of a layer.
func (c *Client) ConfigureLayer(ctx context.Context, workspace, name string, layer *encoder.Layer) error {
	return c.PutTo(ctx, restdata.LayerPath, vars{"layer": restdata.QualifiedName(workspace, name)}, layer, nil)
}

// RemoveLayer deletes a layer but not the resource behind it.
func (c *Client) RemoveLayer(ctx context.Context, workspace, name string) error {
	return c.DeleteAt(ctx, restdata.LayerPath, vars{"layer": restdata.QualifiedName(workspace, name)})
}

// CreateLayerGroup creates a layer group, global if workspace is
// empty.
func (c *Client) CreateLayerGroup(ctx context.Context, workspace string, group *encoder.LayerGroup) error {
	return c.PostTo(ctx, scoped(workspace, restdata.LayerGroupsPath, restdata.WorkspaceLayerGroupsPath),
		vars{"workspace": workspace}, group, nil)
}

// UpdateLayerGroup changes the fields set in group.
func (c *Client) UpdateLayerGroup(ctx context.Context, workspace, name string, group *encoder.LayerGroup) error {
	return c.PutTo(ctx, scoped(workspace, restdata.LayerGroupPath, restdata.WorkspaceLayerGroupPath),
		vars{"workspace": workspace, "group": name}, group, nil)
}

// RemoveLayerGroup deletes a layer group but not its members.
func (c *Client) RemoveLayerGroup(ctx context.Context, workspace, name string) error {
	return c.DeleteAt(ctx, scoped(workspace, restdata.LayerGroupPath, restdata.WorkspaceLayerGroupPath),
		vars{"workspace": workspace, "group": name})
}

// StyleMediaType returns the media type to send a style document as:
// SLD 1.1 documents are Symbology Encoding, anything else is SLD 1.0.
func StyleMediaType(sld []byte) string {
	root, err := xmltree.Parse(sld)
	if err == nil && root.SelectAttrValue("version", "") == "1.1.0" {
		return restdata.SEMediaType
	}
	return restdata.SLDMediaType
}

// CreateStyle creates a catalog entry for a style whose file is
// already on the server.
func (c *Client) CreateStyle(ctx context.Context, workspace string, style *encoder.Style) error {
	return c.PostTo(ctx, scoped(workspace, restdata.StylesPath, restdata.WorkspaceStylesPath),
		vars{"workspace": workspace}, style, nil)
}

// PublishStyle uploads an SLD document as a new style called name.
func (c *Client) PublishStyle(ctx context.Context, workspace, name string, sld []byte) error {
	return c.PostTo(ctx, scoped(workspace, restdata.StylesPath, restdata.WorkspaceStylesPath),
		vars{"workspace": workspace, "name": name},
		payload{ContentType: StyleMediaType(sld), Body: bytes.NewReader(sld)}, nil)
}

// UpdateStyle replaces the SLD document of an existing style.
func (c *Client) UpdateStyle(ctx context.Context, workspace, name string, sld []byte) error {
	return c.PutTo(ctx, scoped(workspace, restdata.StyleContentPath, restdata.WorkspaceStyleContentPath),
		vars{"workspace": workspace, "style": name, "raw": "true"},
		payload{ContentType: StyleMediaType(sld), Body: bytes.NewReader(sld)}, nil)
}

// UpdateStyleInfo changes the catalog entry of a style.
func (c *Client) UpdateStyleInfo(ctx context.Context, workspace, name string, style *encoder.Style) error {
	return c.PutTo(ctx, scoped(workspace, restdata.StylePath, restdata.WorkspaceStylePath),
		vars{"workspace": workspace, "style": name}, style, nil)
}

// RemoveStyle deletes a style.  With purge the SLD file is deleted
// from the server's data directory too.
func (c *Client) RemoveStyle(ctx context.Context, workspace, name string, purge bool) error {
	return c.DeleteAt(ctx, scoped(workspace, restdata.StylePath, restdata.WorkspaceStylePath),
		flag(vars{"workspace": workspace, "style": name}, "purge", purge))
}

// Configure values for uploads.
const (
	ConfigureFirst = "first"
	ConfigureNone  = "none"
	ConfigureAll   = "all"
)

// Update values for uploads.
const (
	UpdateAppend    = "append"
	UpdateOverwrite = "overwrite"
)

// UploadOptions are the query parameters of a file upload.  Empty
// fields are left to the server's defaults.
type UploadOptions struct {
	// Configure says which of the uploaded resources to publish.
	Configure string

	// Update says whether an existing store is appended to or
	// replaced.
	Update string

	// Charset is the character set of shapefile attributes.
	Charset string

	// Filename names the feature type created from a shapefile.
	Filename string

	// CoverageName names the coverage created from a raster.
	CoverageName string
}

func (o UploadOptions) query(v vars) vars {
	for name, value := range map[string]string{
		"configure":    o.Configure,
		"update":       o.Update,
		"charset":      o.Charset,
		"filename":     o.Filename,
		"coverageName": o.CoverageName,
	} {
		if value != "" {
			v[name] = value
		}
	}
	return v
}

// externalURL turns a server-side path into the body of an external
// upload.
func externalURL(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path
}

// UploadShapefile uploads a zipped shapefile into a data store,
// creating the store if needed.
func (c *Client) UploadShapefile(ctx context.Context, workspace, store string, zip io.Reader, opts UploadOptions) error {
	return c.PutTo(ctx, restdata.DataStoreFilePath,
		opts.query(vars{"workspace": workspace, "store": store, "method": restdata.UploadFile, "extension": "shp"}),
		payload{ContentType: restdata.ZipMediaType, Body: zip}, nil)
}

// UploadExternalShapefile publishes a shapefile already on the
// server's file system.
func (c *Client) UploadExternalShapefile(ctx context.Context, workspace, store, path string, opts UploadOptions) error {
	return c.PutTo(ctx, restdata.DataStoreFilePath,
		opts.query(vars{"workspace": workspace, "store": store, "method": restdata.UploadExternal, "extension": "shp"}),
		payload{ContentType: restdata.TextMediaType, Body: strings.NewReader(externalURL(path))}, nil)
}

// PublishShapefile uploads a zipped shapefile as the layer name, then
// declares its SRS and default style if they are given.
func (c *Client) PublishShapefile(ctx context.Context, workspace, store, name string, zip io.Reader, srs, defaultStyle string) error {
	opts := UploadOptions{Configure: ConfigureFirst, Filename: name}
	if err := c.UploadShapefile(ctx, workspace, store, zip, opts); err != nil {
		return err
	}
	if srs != "" {
		ft := encoder.NewFeatureType(name)
		ft.SetSRS(srs)
		ft.SetProjectionPolicy(encoder.ForceDeclared)
		if err := c.UpdateFeatureType(ctx, workspace, store, name, ft); err != nil {
			return fmt.Errorf("setting SRS of %s: %w", name, err)
		}
	}
	if defaultStyle != "" {
		layer := encoder.NewLayer(name)
		ws, style := restdata.SplitQualifiedName(defaultStyle)
		layer.SetDefaultStyle(encoder.StyleRef{Name: style, Workspace: ws})
		if err := c.ConfigureLayer(ctx, workspace, name, layer); err != nil {
			return fmt.Errorf("setting style of %s: %w", name, err)
		}
	}
	return nil
}

// UploadGeoTIFF uploads a GeoTIFF into a coverage store, creating the
// store if needed.
func (c *Client) UploadGeoTIFF(ctx context.Context, workspace, store string, tiff io.Reader, opts UploadOptions) error {
	return c.PutTo(ctx, restdata.CoverageStoreFilePath,
		opts.query(vars{"workspace": workspace, "store": store, "method": restdata.UploadFile, "format": "geotiff"}),
		payload{ContentType: restdata.TIFFMediaType, Body: tiff}, nil)
}

// PublishExternalGeoTIFF publishes a GeoTIFF already on the server's
// file system.
func (c *Client) PublishExternalGeoTIFF(ctx context.Context, workspace, store, path string, opts UploadOptions) error {
	return c.PutTo(ctx, restdata.CoverageStoreFilePath,
		opts.query(vars{"workspace": workspace, "store": store, "method": restdata.UploadExternal, "format": "geotiff"}),
		payload{ContentType: restdata.TextMediaType, Body: strings.NewReader(externalURL(path))}, nil)
}
