// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file holds the read-only catalog operations.

import (
	"context"
	"github.com/diffeo/go-geoserver/decoder"
	"github.com/diffeo/go-geoserver/restdata"
	"net/http"
	"strings"
)

// vars is shorthand for template variables.
type vars = map[string]interface{}

// scoped picks the workspace form of a path when workspace is set.
func scoped(workspace, global, inWorkspace string) string {
	if workspace == "" {
		return global
	}
	return inWorkspace
}

// fetch retrieves the raw body of a document.
func (c *Client) fetch(ctx context.Context, template string, v vars) ([]byte, error) {
	var data []byte
	err := c.GetFrom(ctx, template, v, &data)
	return data, err
}

// names retrieves a listing and returns the names in it.
func (c *Client) names(ctx context.Context, template string, v vars) ([]string, error) {
	data, err := c.fetch(ctx, template, v)
	if err != nil {
		return nil, err
	}
	return decoder.Names(data)
}

// Workspaces returns the names of all workspaces.
func (c *Client) Workspaces(ctx context.Context) ([]string, error) {
	return c.names(ctx, restdata.WorkspacesPath, nil)
}

// Workspace fetches one workspace.
func (c *Client) Workspace(ctx context.Context, name string) (*decoder.Workspace, error) {
	data, err := c.fetch(ctx, restdata.WorkspacePath, vars{"workspace": name})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeWorkspace(data)
}

// WorkspaceExists reports whether a workspace exists.
func (c *Client) WorkspaceExists(ctx context.Context, name string) (bool, error) {
	return c.existsAt(ctx, restdata.WorkspacePath, vars{"workspace": name})
}

// Namespaces returns the prefixes of all namespaces.
func (c *Client) Namespaces(ctx context.Context) ([]string, error) {
	return c.names(ctx, restdata.NamespacesPath, nil)
}

// Namespace fetches one namespace.
func (c *Client) Namespace(ctx context.Context, prefix string) (*decoder.Namespace, error) {
	data, err := c.fetch(ctx, restdata.NamespacePath, vars{"prefix": prefix})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeNamespace(data)
}

// DataStores returns the names of the data stores in a workspace.
func (c *Client) DataStores(ctx context.Context, workspace string) ([]string, error) {
	return c.names(ctx, restdata.DataStoresPath, vars{"workspace": workspace})
}

// DataStore fetches one data store.
func (c *Client) DataStore(ctx context.Context, workspace, name string) (*decoder.DataStore, error) {
	data, err := c.fetch(ctx, restdata.DataStorePath, vars{"workspace": workspace, "store": name})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeDataStore(data)
}

// DataStoreExists reports whether a data store exists.
func (c *Client) DataStoreExists(ctx context.Context, workspace, name string) (bool, error) {
	return c.existsAt(ctx, restdata.DataStorePath, vars{"workspace": workspace, "store": name})
}

// CoverageStores returns the names of the coverage stores in a
// workspace.
func (c *Client) CoverageStores(ctx context.Context, workspace string) ([]string, error) {
	return c.names(ctx, restdata.CoverageStoresPath, vars{"workspace": workspace})
}

// CoverageStore fetches one coverage store.
func (c *Client) CoverageStore(ctx context.Context, workspace, name string) (*decoder.CoverageStore, error) {
	data, err := c.fetch(ctx, restdata.CoverageStorePath, vars{"workspace": workspace, "store": name})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeCoverageStore(data)
}

// CoverageStoreExists reports whether a coverage store exists.
func (c *Client) CoverageStoreExists(ctx context.Context, workspace, name string) (bool, error) {
	return c.existsAt(ctx, restdata.CoverageStorePath, vars{"workspace": workspace, "store": name})
}

// FeatureTypes returns the names of the feature types published from
// a data store.
func (c *Client) FeatureTypes(ctx context.Context, workspace, store string) ([]string, error) {
	return c.names(ctx, restdata.FeatureTypesPath, vars{"workspace": workspace, "store": store})
}

// AvailableFeatureTypes returns the names of the tables or files in a
// data store that are not yet published.
func (c *Client) AvailableFeatureTypes(ctx context.Context, workspace, store string) ([]string, error) {
	return c.names(ctx, restdata.FeatureTypesPath, vars{"workspace": workspace, "store": store, "list": "available"})
}

// FeatureType fetches one feature type.
func (c *Client) FeatureType(ctx context.Context, workspace, store, name string) (*decoder.Resource, error) {
	data, err := c.fetch(ctx, restdata.FeatureTypePath, vars{"workspace": workspace, "store": store, "featuretype": name})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeResource(data)
}

// FeatureTypeExists reports whether a feature type exists.
func (c *Client) FeatureTypeExists(ctx context.Context, workspace, store, name string) (bool, error) {
	return c.existsAt(ctx, restdata.FeatureTypePath, vars{"workspace": workspace, "store": store, "featuretype": name})
}

// Coverages returns the names of the coverages published from a
// coverage store.
func (c *Client) Coverages(ctx context.Context, workspace, store string) ([]string, error) {
	return c.names(ctx, restdata.CoveragesPath, vars{"workspace": workspace, "store": store})
}

// Coverage fetches one coverage.
func (c *Client) Coverage(ctx context.Context, workspace, store, name string) (*decoder.Resource, error) {
	data, err := c.fetch(ctx, restdata.CoveragePath, vars{"workspace": workspace, "store": store, "coverage": name})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeResource(data)
}

// CoverageExists reports whether a coverage exists.
func (c *Client) CoverageExists(ctx context.Context, workspace, store, name string) (bool, error) {
	return c.existsAt(ctx, restdata.CoveragePath, vars{"workspace": workspace, "store": store, "coverage": name})
}

// Layers returns the qualified names of all layers, or of the layers
// in one workspace.
func (c *Client) Layers(ctx context.Context, workspace string) ([]string, error) {
	if workspace == "" {
		return c.names(ctx, restdata.LayersPath, nil)
	}
	return c.names(ctx, restdata.WorkspaceLayersPath, vars{"workspace": workspace})
}

// Layer fetches one layer.  workspace may be empty for layers whose
// names are unique across workspaces.
func (c *Client) Layer(ctx context.Context, workspace, name string) (*decoder.Layer, error) {
	data, err := c.fetch(ctx, restdata.LayerPath, vars{"layer": restdata.QualifiedName(workspace, name)})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeLayer(data)
}

// LayerExists reports whether a layer exists.
func (c *Client) LayerExists(ctx context.Context, workspace, name string) (bool, error) {
	return c.existsAt(ctx, restdata.LayerPath, vars{"layer": restdata.QualifiedName(workspace, name)})
}

// Resource fetches the feature type or coverage a layer publishes.
func (c *Client) Resource(ctx context.Context, layer *decoder.Layer) (*decoder.Resource, error) {
	href := layer.ResourceHref()
	if href == "" {
		return nil, restdata.ErrNotFound{Err: decoder.ErrUnexpectedDocument}
	}
	// The server writes links with its own idea of its address,
	// which may not be ours behind a proxy
	if i := strings.Index(href, "/rest/"); i >= 0 {
		href = href[i+1:]
	}
	u, err := c.URL.Parse(href)
	if err != nil {
		return nil, err
	}
	var data []byte
	if err := c.Do(ctx, http.MethodGet, u, nil, &data); err != nil {
		return nil, err
	}
	return decoder.DecodeResource(data)
}

// LayerGroups returns the names of the global layer groups, or of the
// layer groups in one workspace.
func (c *Client) LayerGroups(ctx context.Context, workspace string) ([]string, error) {
	return c.names(ctx, scoped(workspace, restdata.LayerGroupsPath, restdata.WorkspaceLayerGroupsPath),
		vars{"workspace": workspace})
}

// LayerGroup fetches one layer group.
func (c *Client) LayerGroup(ctx context.Context, workspace, name string) (*decoder.LayerGroup, error) {
	data, err := c.fetch(ctx, scoped(workspace, restdata.LayerGroupPath, restdata.WorkspaceLayerGroupPath),
		vars{"workspace": workspace, "group": name})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeLayerGroup(data)
}

// LayerGroupExists reports whether a layer group exists.
func (c *Client) LayerGroupExists(ctx context.Context, workspace, name string) (bool, error) {
	return c.existsAt(ctx, scoped(workspace, restdata.LayerGroupPath, restdata.WorkspaceLayerGroupPath),
		vars{"workspace": workspace, "group": name})
}

// Styles returns the names of the global styles, or of the styles in
// one workspace.
func (c *Client) Styles(ctx context.Context, workspace string) ([]string, error) {
	return c.names(ctx, scoped(workspace, restdata.StylesPath, restdata.WorkspaceStylesPath),
		vars{"workspace": workspace})
}

// Style fetches the catalog entry of a style.
func (c *Client) Style(ctx context.Context, workspace, name string) (*decoder.Style, error) {
	data, err := c.fetch(ctx, scoped(workspace, restdata.StylePath, restdata.WorkspaceStylePath),
		vars{"workspace": workspace, "style": name})
	if err != nil {
		return nil, err
	}
	return decoder.DecodeStyle(data)
}

// StyleExists reports whether a style exists.
func (c *Client) StyleExists(ctx context.Context, workspace, name string) (bool, error) {
	return c.existsAt(ctx, scoped(workspace, restdata.StylePath, restdata.WorkspaceStylePath),
		vars{"workspace": workspace, "style": name})
}

// SLD fetches the style document itself.
func (c *Client) SLD(ctx context.Context, workspace, name string) ([]byte, error) {
	return c.fetch(ctx, scoped(workspace, restdata.StyleBodyPath, restdata.WorkspaceStyleBodyPath),
		vars{"workspace": workspace, "style": name})
}
