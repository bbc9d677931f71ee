// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package manifest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/diffeo/go-geoserver/encoder"
	"github.com/diffeo/go-geoserver/gwc"
	"github.com/diffeo/go-geoserver/restclient"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/sirupsen/logrus"
)

// Action is what Apply did to one catalog object.
type Action string

// Actions in a Report.
const (
	Created Action = "created"
	Updated Action = "updated"
	Failed  Action = "failed"
)

// Result records what happened to one object.
type Result struct {
	Kind   string
	Name   string
	Action Action
	Err    error
}

// Report lists the results of Apply in the order objects were visited.
type Report []Result

// Failed returns the results that did not succeed.
func (r Report) Failed() Report {
	var failed Report
	for _, result := range r {
		if result.Action == Failed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Count returns how many results had action a.
func (r Report) Count(a Action) int {
	n := 0
	for _, result := range r {
		if result.Action == a {
			n++
		}
	}
	return n
}

// applier carries one run of Apply.
type applier struct {
	m      *Manifest
	client *restclient.Client
	log    logrus.FieldLogger
	report Report
	// failed holds the qualified names of objects that could not be
	// applied, so objects depending on them are skipped
	failed map[string]bool
}

// Apply makes the server match the manifest.  Objects are visited
// dependency first: workspaces, stores, styles, layers, layer groups,
// then tile caching.  Missing objects are created and existing ones
// updated; nothing is deleted.  A failure is recorded and Apply moves
// on, skipping whatever depends on the failed object.  The returned
// error is non-nil if the manifest is invalid or anything failed.
func (m *Manifest) Apply(ctx context.Context, client *restclient.Client, log logrus.FieldLogger) (Report, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	a := &applier{
		m:      m,
		client: client,
		log:    log,
		failed: make(map[string]bool),
	}
	for _, w := range m.Workspaces {
		a.record("workspace", w.Name, a.workspace(ctx, w))
	}
	for _, s := range m.Stores {
		a.record("store", restdata.QualifiedName(s.Workspace, s.Name), a.store(ctx, s))
	}
	for _, s := range m.Styles {
		a.record("style", restdata.QualifiedName(s.Workspace, s.Name), a.style(ctx, s))
	}
	for _, l := range m.Layers {
		st := restdata.QualifiedName(l.Workspace, l.Store)
		if a.failed["store "+st] {
			a.record("layer", l.QualifiedName(), skipped(st))
			continue
		}
		a.record("layer", l.QualifiedName(), a.layer(ctx, l))
	}
	for _, g := range m.LayerGroups {
		a.record("layer group", restdata.QualifiedName(g.Workspace, g.Name), a.layerGroup(ctx, g))
	}
	for _, c := range m.Cache {
		a.record("cache", c.Layer, a.cache(ctx, c))
	}
	if m.DiskQuota != nil {
		a.record("disk quota", "", a.diskQuota(ctx))
	}

	failed := a.report.Failed()
	if len(failed) == 0 {
		return a.report, nil
	}
	names := make([]string, len(failed))
	for i, result := range failed {
		names[i] = result.Kind + " " + result.Name
	}
	return a.report, fmt.Errorf("%d of %d objects failed: %s",
		len(failed), len(a.report), strings.Join(names, ", "))
}

// outcome is what an apply step returns: whether the object already
// existed, and any error.
type outcome struct {
	existed bool
	err     error
}

type errSkipped string

func (e errSkipped) Error() string {
	return "depends on failed " + string(e)
}

func skipped(name string) outcome {
	return outcome{err: errSkipped(name)}
}

func (a *applier) record(kind, name string, o outcome) {
	result := Result{Kind: kind, Name: name, Err: o.err}
	entry := a.log.WithFields(logrus.Fields{"kind": kind, "name": name})
	switch {
	case o.err != nil:
		result.Action = Failed
		a.failed[kind+" "+name] = true
		entry.WithError(o.err).Warn("failed to apply")
	case o.existed:
		result.Action = Updated
		entry.Info("updated")
	default:
		result.Action = Created
		entry.Info("created")
	}
	a.report = append(a.report, result)
}

func (a *applier) workspace(ctx context.Context, w Workspace) outcome {
	exists, err := a.client.WorkspaceExists(ctx, w.Name)
	if err != nil {
		return outcome{err: err}
	}
	if !exists {
		if err := a.client.CreateWorkspace(ctx, w.Name); err != nil {
			return outcome{err: err}
		}
	}
	if w.URI != "" {
		err = a.client.UpdateNamespace(ctx, w.Name, w.URI)
	}
	return outcome{existed: exists, err: err}
}

func (a *applier) store(ctx context.Context, s Store) outcome {
	if a.failed["workspace "+s.Workspace] {
		return skipped(s.Workspace)
	}
	if s.IsCoverage() {
		cs := encoder.NewCoverageStore(s.Name, coverageStoreTypes[s.Kind])
		cs.SetURL(s.URL)
		if s.Description != "" {
			cs.SetDescription(s.Description)
		}
		exists, err := a.client.CoverageStoreExists(ctx, s.Workspace, s.Name)
		if err != nil {
			return outcome{err: err}
		}
		if exists {
			err = a.client.UpdateCoverageStore(ctx, s.Workspace, s.Name, cs)
		} else {
			err = a.client.CreateCoverageStore(ctx, s.Workspace, cs)
		}
		return outcome{existed: exists, err: err}
	}

	var ds *encoder.DataStore
	switch s.Kind {
	case PostGIS:
		params, err := encoder.PostGISParamsFromURL(s.URL)
		if err != nil {
			return outcome{err: err}
		}
		ds = encoder.NewPostGISDataStore(s.Name, params)
	case Shapefile:
		ds = encoder.NewShapefileDataStore(s.Name, s.URL, s.Charset)
	default:
		ds = encoder.NewShapefileDirectoryDataStore(s.Name, s.URL)
	}
	if s.Description != "" {
		ds.SetDescription(s.Description)
	}
	exists, err := a.client.DataStoreExists(ctx, s.Workspace, s.Name)
	if err != nil {
		return outcome{err: err}
	}
	if exists {
		err = a.client.UpdateDataStore(ctx, s.Workspace, s.Name, ds)
	} else {
		err = a.client.CreateDataStore(ctx, s.Workspace, ds)
	}
	return outcome{existed: exists, err: err}
}

func (a *applier) style(ctx context.Context, s Style) outcome {
	if s.Workspace != "" && a.failed["workspace "+s.Workspace] {
		return skipped(s.Workspace)
	}
	sld, err := a.m.SLDBody(s)
	if err != nil {
		return outcome{err: err}
	}
	exists, err := a.client.StyleExists(ctx, s.Workspace, s.Name)
	if err != nil {
		return outcome{err: err}
	}
	if exists {
		err = a.client.UpdateStyle(ctx, s.Workspace, s.Name, sld)
	} else {
		err = a.client.PublishStyle(ctx, s.Workspace, s.Name, sld)
	}
	return outcome{existed: exists, err: err}
}

func styleRef(qualified string) encoder.StyleRef {
	ws, name := restdata.SplitQualifiedName(qualified)
	return encoder.StyleRef{Name: name, Workspace: ws}
}

// layerDocuments builds the resource and layer documents for l.
func layerDocuments(l Layer, coverage bool) (*encoder.Resource, *encoder.Layer) {
	var res *encoder.Resource
	if coverage {
		res = encoder.NewCoverage(l.Name)
	} else {
		res = encoder.NewFeatureType(l.Name)
	}
	if l.NativeName != "" {
		res.SetNativeName(l.NativeName)
	}
	if l.Title != "" {
		res.SetTitle(l.Title)
	}
	if l.Abstract != "" {
		res.SetAbstract(l.Abstract)
	}
	if l.SRS != "" {
		res.SetSRS(l.SRS)
		res.SetProjectionPolicy(encoder.ForceDeclared)
	}
	if len(l.Keywords) > 0 {
		keywords := make([]encoder.Keyword, len(l.Keywords))
		for i, k := range l.Keywords {
			keywords[i] = encoder.ParseKeyword(k)
		}
		res.SetKeywords(keywords...)
	}
	if l.Enabled != nil {
		res.SetEnabled(*l.Enabled)
	}

	layer := encoder.NewLayer(l.Name)
	if l.DefaultStyle != "" {
		layer.SetDefaultStyle(styleRef(l.DefaultStyle))
	}
	if len(l.Styles) > 0 {
		refs := make([]encoder.StyleRef, len(l.Styles))
		for i, s := range l.Styles {
			refs[i] = styleRef(s)
		}
		layer.SetStyles(refs...)
	}
	if l.Enabled != nil {
		layer.SetEnabled(*l.Enabled)
	}
	if l.Queryable != nil {
		layer.SetQueryable(*l.Queryable)
	}
	if l.Attribution != "" || l.AttributionHref != "" {
		layer.SetAttribution(encoder.Attribution{Title: l.Attribution, Href: l.AttributionHref})
	}
	return res, layer
}

func (a *applier) layer(ctx context.Context, l Layer) outcome {
	for _, s := range append([]string{l.DefaultStyle}, l.Styles...) {
		if a.failed["style "+s] {
			return skipped(s)
		}
	}
	store, _ := a.m.store(l.Workspace, l.Store)
	res, layer := layerDocuments(l, store.IsCoverage())
	exists, err := a.client.LayerExists(ctx, l.Workspace, l.Name)
	if err != nil {
		return outcome{err: err}
	}
	switch {
	case exists && store.IsCoverage():
		err = a.client.UpdateCoverage(ctx, l.Workspace, l.Store, l.Name, res)
	case exists:
		err = a.client.UpdateFeatureType(ctx, l.Workspace, l.Store, l.Name, res)
	case store.IsCoverage():
		err = a.client.PublishCoverage(ctx, l.Workspace, l.Store, res, layer)
	default:
		err = a.client.PublishDBLayer(ctx, l.Workspace, l.Store, res, layer)
	}
	if err == nil && exists {
		err = a.client.ConfigureLayer(ctx, l.Workspace, l.Name, layer)
	}
	return outcome{existed: exists, err: err}
}

func (a *applier) layerGroup(ctx context.Context, g LayerGroup) outcome {
	if g.Workspace != "" && a.failed["workspace "+g.Workspace] {
		return skipped(g.Workspace)
	}
	group := encoder.NewLayerGroup(g.Name)
	if g.Title != "" {
		group.SetTitle(g.Title)
	}
	mode := encoder.ModeSingle
	if g.Mode != "" {
		mode = encoder.LayerGroupMode(g.Mode)
	}
	group.SetMode(mode)
	for _, member := range g.Layers {
		switch {
		case a.failed["layer "+member]:
			return skipped(member)
		case a.failed["layer group "+member]:
			return skipped(member)
		case a.m.isLayerGroup(member):
			group.AddLayerGroup(member, "")
		default:
			group.AddLayer(member, "")
		}
	}
	exists, err := a.client.LayerGroupExists(ctx, g.Workspace, g.Name)
	if err != nil {
		return outcome{err: err}
	}
	if exists {
		err = a.client.UpdateLayerGroup(ctx, g.Workspace, g.Name, group)
	} else {
		err = a.client.CreateLayerGroup(ctx, g.Workspace, group)
	}
	return outcome{existed: exists, err: err}
}

func (m *Manifest) isLayerGroup(name string) bool {
	for _, g := range m.LayerGroups {
		if restdata.QualifiedName(g.Workspace, g.Name) == name {
			return true
		}
	}
	return false
}

// gwcLayer builds the tile caching document for c.
func gwcLayer(c CachedLayer) *gwc.Layer {
	layer := &gwc.Layer{
		Name:        c.Layer,
		Enabled:     c.Enabled,
		MimeFormats: c.Formats,
		MetaWidth:   c.MetaTiles,
		MetaHeight:  c.MetaTiles,
	}
	for _, gs := range c.GridSets {
		layer.GridSubsets = append(layer.GridSubsets, gwc.GridSubset{GridSetName: gs})
	}
	if c.Expire > 0 {
		seconds := int(c.Expire / time.Second)
		layer.ExpireCache = &seconds
		layer.ExpireClients = &seconds
	}
	return layer
}

func (a *applier) cache(ctx context.Context, c CachedLayer) outcome {
	if a.failed["layer "+c.Layer] || a.failed["layer group "+c.Layer] {
		return skipped(c.Layer)
	}
	g := a.client.GWC()
	_, err := g.Layer(ctx, c.Layer)
	exists := err == nil
	if err != nil && !restdata.IsNotFound(err) {
		return outcome{err: err}
	}
	return outcome{existed: exists, err: g.PutLayer(ctx, gwcLayer(c))}
}

func (a *applier) diskQuota(ctx context.Context) outcome {
	cfg, err := a.m.DiskQuota.config()
	if err != nil {
		return outcome{err: err}
	}
	// Layer quotas are applied in a stable order
	sort.Slice(cfg.LayerQuotas, func(i, j int) bool {
		return cfg.LayerQuotas[i].Layer < cfg.LayerQuotas[j].Layer
	})
	return outcome{existed: true, err: a.client.GWC().SetDiskQuota(ctx, cfg)}
}
