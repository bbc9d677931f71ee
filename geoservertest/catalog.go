// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package geoservertest

import (
	"fmt"
	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/gorilla/mux"
	"mime"
	"path"
	"sort"
	"strings"
)

// kind describes one family of catalog documents.
type kind struct {
	Tag       string // document root, e.g. "dataStore"
	ListTag   string // listing root, e.g. "dataStores"
	NameField string // child holding the name
	NoCreate  bool   // created only as a side effect
}

var (
	workspaceKind     = kind{Tag: "workspace", ListTag: "workspaces", NameField: "name"}
	namespaceKind     = kind{Tag: "namespace", ListTag: "namespaces", NameField: "prefix"}
	dataStoreKind     = kind{Tag: "dataStore", ListTag: "dataStores", NameField: "name"}
	featureTypeKind   = kind{Tag: "featureType", ListTag: "featureTypes", NameField: "name"}
	coverageStoreKind = kind{Tag: "coverageStore", ListTag: "coverageStores", NameField: "name"}
	coverageKind      = kind{Tag: "coverage", ListTag: "coverages", NameField: "name"}
	layerKind         = kind{Tag: "layer", ListTag: "layers", NameField: "name", NoCreate: true}
	layerGroupKind    = kind{Tag: "layerGroup", ListTag: "layerGroups", NameField: "name"}
	styleKind         = kind{Tag: "style", ListTag: "styles", NameField: "name"}
)

func workspaceKey(workspace string) string { return "workspaces/" + workspace }

func dataStoreKey(workspace, store string) string {
	return workspaceKey(workspace) + "/datastores/" + store
}

func coverageStoreKey(workspace, store string) string {
	return workspaceKey(workspace) + "/coveragestores/" + store
}

func layerKey(workspace, name string) string {
	return "layers/" + restdata.QualifiedName(workspace, name)
}

func styleKey(workspace, name string) string {
	if workspace == "" {
		return "styles/" + name
	}
	return workspaceKey(workspace) + "/styles/" + name
}

// expand fills the {var} parts of a route template with the values
// mux matched.
func expand(template string, vars map[string]string) string {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// href is the URL GeoServer would link to a document by.
func (s *Server) href(r *request, key string) string {
	return "http://" + r.Host + ContextPath + "/rest/" + key + ".xml"
}

func (s *Server) atomLink(r *request, parent *etree.Element, key string) {
	link := parent.CreateElement("atom:link")
	link.CreateAttr("xmlns:atom", "http://www.w3.org/2005/Atom")
	link.CreateAttr("rel", "alternate")
	link.CreateAttr("href", s.href(r, key))
	link.CreateAttr("type", restdata.XMLMediaType)
}

func (s *Server) populateCatalog(r *mux.Router) {
	r.Path("/rest/about/version.xml").Name("version").Handler(&resourceHandler{
		Server: s,
		Get:    s.version,
	})
	r.Path("/rest/reload").Name("reload").Handler(&resourceHandler{
		Server: s,
		Post:   s.reload,
		Put:    s.reload,
	})
	r.Path("/rest/reset").Name("reset").Handler(&resourceHandler{
		Server: s,
		Post:   s.reset,
		Put:    s.reset,
	})

	s.collection(r, "workspaces", workspaceKind)
	s.collection(r, "namespaces", namespaceKind)

	r.Path("/rest/workspaces/{workspace}/datastores/{store}/{method:file|url|external}.{extension}").
		Name("dataStoreUpload").
		Handler(&resourceHandler{Server: s, Put: s.uploadDataStore})
	s.collection(r, "workspaces/{workspace}/datastores", dataStoreKind)
	s.collection(r, "workspaces/{workspace}/datastores/{store}/featuretypes", featureTypeKind)

	r.Path("/rest/workspaces/{workspace}/coveragestores/{store}/{method:file|url|external}.{format}").
		Name("coverageStoreUpload").
		Handler(&resourceHandler{Server: s, Put: s.uploadCoverageStore})
	s.collection(r, "workspaces/{workspace}/coveragestores", coverageStoreKind)
	s.collection(r, "workspaces/{workspace}/coveragestores/{store}/coverages", coverageKind)

	r.Path("/rest/workspaces/{workspace}/layers.xml").Name("workspaceLayers").Handler(&resourceHandler{
		Server: s,
		Get:    s.workspaceLayers,
	})
	s.collection(r, "layers", layerKind)

	s.collection(r, "layergroups", layerGroupKind)
	s.collection(r, "workspaces/{workspace}/layergroups", layerGroupKind)

	for _, base := range []string{"styles", "workspaces/{workspace}/styles"} {
		s.collection(r, base, styleKind)
		r.Path("/rest/" + base + "/{name}.sld").Handler(&resourceHandler{
			Server: s,
			Get:    s.getStyleBody(base),
		})
		r.Path("/rest/" + base + "/{name}").Handler(&resourceHandler{
			Server: s,
			Put:    s.putStyleBody(base),
		})
	}
}

// collection registers the listing path of a family of documents and
// the path of each document.
func (s *Server) collection(r *mux.Router, base string, k kind) {
	list := &resourceHandler{Server: s, Get: s.list(base, k)}
	if !k.NoCreate {
		list.Post = s.create(base, k)
	}
	r.Path("/rest/" + base + ".xml").Handler(list)
	r.Path("/rest/" + base + "/{name}.xml").Handler(&resourceHandler{
		Server: s,
		Get:    s.get(base),
		Put:    s.update(base, k),
		Delete: s.remove(base),
	})
}

// parentExists checks that the workspace or store a collection lives
// in is there.
func (s *Server) parentExists(collection string) error {
	parent := path.Dir(collection)
	if parent == "." {
		return nil
	}
	if _, ok := s.catalog[parent]; !ok {
		return notFound("No such %s", parent)
	}
	return nil
}

func (s *Server) list(base string, k kind) handlerFunc {
	return func(r *request) (interface{}, error) {
		collection := expand(base, r.Vars)
		if err := s.parentExists(collection); err != nil {
			return nil, err
		}
		if r.Query.Get("list") == "available" {
			return s.availableList(collection), nil
		}
		root := etree.NewElement(k.ListTag)
		for _, key := range s.children(collection) {
			item := root.CreateElement(k.Tag)
			xmltree.Set(item, "name", path.Base(key))
			s.atomLink(r, item, key)
		}
		return root, nil
	}
}

// availableList lists the declared tables of a data store that have no
// feature type yet.
func (s *Server) availableList(collection string) *etree.Element {
	root := etree.NewElement("list")
	for _, name := range s.available[path.Dir(collection)] {
		if _, published := s.catalog[collection+"/"+name]; !published {
			root.CreateElement("featureTypeName").SetText(name)
		}
	}
	return root
}

func (s *Server) workspaceLayers(r *request) (interface{}, error) {
	ws := r.Vars["workspace"]
	if _, ok := s.catalog[workspaceKey(ws)]; !ok {
		return nil, notFound("No such workspace: %s", ws)
	}
	root := etree.NewElement("layers")
	for _, key := range s.children("layers") {
		if w, name := restdata.SplitQualifiedName(path.Base(key)); w == ws {
			item := root.CreateElement("layer")
			xmltree.Set(item, "name", name)
			s.atomLink(r, item, key)
		}
	}
	return root, nil
}

func isStyleMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mediaType == restdata.SLDMediaType || mediaType == restdata.SEMediaType)
}

func (s *Server) create(base string, k kind) handlerFunc {
	return func(r *request) (interface{}, error) {
		collection := expand(base, r.Vars)
		if err := s.parentExists(collection); err != nil {
			return nil, err
		}
		if k.Tag == styleKind.Tag && isStyleMediaType(r.ContentType) {
			return s.createStyleFromBody(r, collection)
		}
		e, err := r.Element()
		if err != nil {
			return nil, err
		}
		if e.Tag != k.Tag {
			return nil, badRequest("Expected <%s>, got <%s>", k.Tag, e.Tag)
		}
		name, _ := xmltree.Get(e, k.NameField)
		if name == "" {
			return nil, badRequest("%s has no %s", k.Tag, k.NameField)
		}
		key := collection + "/" + name
		if _, exists := s.catalog[key]; exists {
			return nil, restdata.ErrConflict{Err: fmt.Errorf("%s '%s' already exists", k.Tag, name)}
		}
		s.catalog[key] = e
		s.created(r, key, e)
		return responseCreated{Location: s.href(r, key)}, nil
	}
}

// created does the bookkeeping GeoServer does when a document is
// added.
func (s *Server) created(r *request, key string, e *etree.Element) {
	parts := strings.Split(key, "/")
	switch e.Tag {
	case workspaceKind.Tag:
		ns := "namespaces/" + parts[1]
		if _, ok := s.catalog[ns]; !ok {
			doc := etree.NewElement(namespaceKind.Tag)
			xmltree.Set(doc, "prefix", parts[1])
			xmltree.Set(doc, "uri", "http://"+parts[1])
			s.catalog[ns] = doc
		}
	case namespaceKind.Tag:
		ws := workspaceKey(parts[1])
		if _, ok := s.catalog[ws]; !ok {
			doc := etree.NewElement(workspaceKind.Tag)
			xmltree.Set(doc, "name", parts[1])
			s.catalog[ws] = doc
		}
	case featureTypeKind.Tag, coverageKind.Tag:
		s.publish(r, key, e)
	case styleKind.Tag:
		if _, ok := xmltree.Get(e, "filename"); !ok {
			xmltree.Set(e, "filename", path.Base(key)+".sld")
		}
		fallthrough
	default:
		if parts[0] == "workspaces" && len(parts) > 2 {
			xmltree.Set(e, "workspace/name", parts[1])
		}
		if e.Tag == dataStoreKind.Tag || e.Tag == coverageStoreKind.Tag {
			if _, ok := xmltree.Get(e, "enabled"); !ok {
				xmltree.Set(e, "enabled", "true")
			}
		}
	}
}

// publish fills in a new feature type or coverage and creates the
// layer that publishes it.  key is
// workspaces/{ws}/datastores/{store}/featuretypes/{name} or the
// coverage equivalent.
func (s *Server) publish(r *request, key string, e *etree.Element) {
	parts := strings.Split(key, "/")
	ws, store, name := parts[1], parts[3], parts[5]
	if _, ok := xmltree.Get(e, "nativeName"); !ok {
		xmltree.Set(e, "nativeName", name)
	}
	xmltree.Set(e, "namespace/name", ws)
	storeElem := xmltree.Ensure(e, "store")
	if e.Tag == coverageKind.Tag {
		storeElem.CreateAttr("class", coverageStoreKind.Tag)
	} else {
		storeElem.CreateAttr("class", dataStoreKind.Tag)
	}
	xmltree.Set(storeElem, "name", restdata.QualifiedName(ws, store))
	if _, ok := xmltree.Get(e, "enabled"); !ok {
		xmltree.Set(e, "enabled", "true")
	}

	lkey := layerKey(ws, name)
	if _, exists := s.catalog[lkey]; exists {
		return
	}
	layer := etree.NewElement(layerKind.Tag)
	xmltree.Set(layer, "name", name)
	if e.Tag == coverageKind.Tag {
		xmltree.Set(layer, "type", "RASTER")
		xmltree.Set(layer, "defaultStyle/name", "raster")
	} else {
		xmltree.Set(layer, "type", "VECTOR")
		xmltree.Set(layer, "defaultStyle/name", "generic")
	}
	res := layer.CreateElement("resource")
	res.CreateAttr("class", e.Tag)
	xmltree.Set(res, "name", restdata.QualifiedName(ws, name))
	s.atomLink(r, res, key)
	xmltree.Set(layer, "enabled", "true")
	s.catalog[lkey] = layer
}

func (s *Server) lookup(base string, r *request) (string, *etree.Element, error) {
	key := expand(base, r.Vars) + "/" + r.Vars["name"]
	e, ok := s.catalog[key]
	if !ok {
		return key, nil, notFound("No such resource: %s", key)
	}
	return key, e, nil
}

func (s *Server) get(base string) handlerFunc {
	return func(r *request) (interface{}, error) {
		_, e, err := s.lookup(base, r)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

func (s *Server) update(base string, k kind) handlerFunc {
	return func(r *request) (interface{}, error) {
		_, existing, err := s.lookup(base, r)
		if err != nil {
			return nil, err
		}
		e, err := r.Element()
		if err != nil {
			return nil, err
		}
		if e.Tag != k.Tag {
			return nil, badRequest("Expected <%s>, got <%s>", k.Tag, e.Tag)
		}
		for _, child := range e.ChildElements() {
			xmltree.SetChild(existing, child.Copy())
		}
		return nil, nil
	}
}

// dependents returns the keys that go away with key when it is deleted
// recursively.
func (s *Server) dependents(key string, e *etree.Element) []string {
	parts := strings.Split(key, "/")
	var keys []string
	switch e.Tag {
	case workspaceKind.Tag, namespaceKind.Tag:
		ws := parts[1]
		keys = append(keys, s.descendants(workspaceKey(ws))...)
		for _, lkey := range s.children("layers") {
			if w, _ := restdata.SplitQualifiedName(path.Base(lkey)); w == ws {
				keys = append(keys, lkey)
			}
		}
	case dataStoreKind.Tag, coverageStoreKind.Tag:
		for _, rkey := range s.descendants(key) {
			keys = append(keys, rkey)
			if lkey := layerKey(parts[1], path.Base(rkey)); s.catalog[lkey] != nil {
				keys = append(keys, lkey)
			}
		}
	case featureTypeKind.Tag, coverageKind.Tag:
		if lkey := layerKey(parts[1], parts[5]); s.catalog[lkey] != nil {
			keys = append(keys, lkey)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *Server) remove(base string) handlerFunc {
	return func(r *request) (interface{}, error) {
		key, e, err := s.lookup(base, r)
		if err != nil {
			return nil, err
		}
		dependents := s.dependents(key, e)
		if len(dependents) > 0 && !r.BoolParam("recurse", false) {
			return nil, errForbidden{Text: fmt.Sprintf("%s is not empty", key)}
		}
		for _, dep := range dependents {
			s.delete(dep)
		}
		s.delete(key)
		switch e.Tag {
		case workspaceKind.Tag:
			s.delete("namespaces/" + path.Base(key))
		case namespaceKind.Tag:
			s.delete(workspaceKey(path.Base(key)))
		case styleKind.Tag:
			if r.BoolParam("purge", false) {
				s.purged = append(s.purged, key)
			}
		}
		return nil, nil
	}
}

func (s *Server) delete(key string) {
	delete(s.catalog, key)
	delete(s.styles, key)
}

// createStyleFromBody creates a style from a POSTed SLD document,
// named by the name query parameter.
func (s *Server) createStyleFromBody(r *request, collection string) (interface{}, error) {
	name := r.Query.Get("name")
	if name == "" {
		return nil, badRequest("Style name must be given")
	}
	if _, err := xmltree.Parse(r.Body); err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	key := collection + "/" + name
	if _, exists := s.catalog[key]; exists {
		return nil, restdata.ErrConflict{Err: fmt.Errorf("style '%s' already exists", name)}
	}
	e := etree.NewElement(styleKind.Tag)
	xmltree.Set(e, "name", name)
	xmltree.Set(e, "format", "sld")
	s.catalog[key] = e
	s.created(r, key, e)
	s.setStyleBody(key, e, r)
	return responseCreated{Location: s.href(r, key)}, nil
}

func (s *Server) setStyleBody(key string, e *etree.Element, r *request) {
	mediaType, _, _ := mime.ParseMediaType(r.ContentType)
	version := "1.0.0"
	if mediaType == restdata.SEMediaType {
		version = "1.1.0"
	}
	xmltree.Set(e, "languageVersion/version", version)
	s.styles[key] = document{ContentType: mediaType, Body: r.Body}
}

func (s *Server) getStyleBody(base string) handlerFunc {
	return func(r *request) (interface{}, error) {
		key, _, err := s.lookup(base, r)
		if err != nil {
			return nil, err
		}
		doc, ok := s.styles[key]
		if !ok {
			return nil, notFound("No SLD for %s", key)
		}
		return doc, nil
	}
}

func (s *Server) putStyleBody(base string) handlerFunc {
	return func(r *request) (interface{}, error) {
		key, e, err := s.lookup(base, r)
		if err != nil {
			return nil, err
		}
		if !isStyleMediaType(r.ContentType) {
			return nil, restdata.ErrUnsupportedMediaType{Type: r.ContentType}
		}
		if _, err := xmltree.Parse(r.Body); err != nil {
			return nil, restdata.ErrBadRequest{Err: err}
		}
		s.setStyleBody(key, e, r)
		return nil, nil
	}
}

func (s *Server) version(r *request) (interface{}, error) {
	root := etree.NewElement("about")
	for _, component := range []struct{ Name, Version string }{
		{"GeoServer", s.Version},
		{"GeoWebCache", "1.10.1"},
	} {
		res := root.CreateElement("resource")
		res.CreateAttr("name", component.Name)
		xmltree.Set(res, "Version", component.Version)
	}
	return root, nil
}

func (s *Server) reload(r *request) (interface{}, error) {
	s.reloads++
	return nil, nil
}

func (s *Server) reset(r *request) (interface{}, error) {
	s.resets++
	return nil, nil
}

func (s *Server) recordUpload(r *request, extension string) {
	query := make(map[string]string)
	for k := range r.Query {
		query[k] = r.Query.Get(k)
	}
	s.uploads = append(s.uploads, Upload{
		Workspace:   r.Vars["workspace"],
		Store:       r.Vars["store"],
		Method:      r.Vars["method"],
		Extension:   extension,
		ContentType: r.ContentType,
		Query:       query,
		Body:        r.Body,
	})
}

// upload creates the store a file is sent to, if needed, and publishes
// a resource called name from it unless configure=none.
func (s *Server) upload(r *request, storeKey, resources string, storeKind, resourceKind kind, storeType, name string) (interface{}, error) {
	ws := r.Vars["workspace"]
	if _, ok := s.catalog[workspaceKey(ws)]; !ok {
		return nil, notFound("No such workspace: %s", ws)
	}
	if r.Vars["method"] != "file" {
		if len(r.Body) == 0 {
			return nil, badRequest("No file location given")
		}
	}
	if _, ok := s.catalog[storeKey]; !ok {
		store := etree.NewElement(storeKind.Tag)
		xmltree.Set(store, "name", r.Vars["store"])
		xmltree.Set(store, "type", storeType)
		location := string(r.Body)
		if r.Vars["method"] == "file" {
			location = "file:data/" + ws + "/" + r.Vars["store"]
		}
		if storeKind.Tag == dataStoreKind.Tag {
			entry := xmltree.Ensure(store, "connectionParameters").CreateElement("entry")
			entry.CreateAttr("key", "url")
			entry.SetText(location)
		} else {
			xmltree.Set(store, "url", location)
		}
		s.catalog[storeKey] = store
		s.created(r, storeKey, store)
	}
	if r.Query.Get("configure") == "none" {
		return responseCreated{Location: s.href(r, storeKey)}, nil
	}
	key := storeKey + "/" + resources + "/" + name
	if _, ok := s.catalog[key]; !ok {
		resource := etree.NewElement(resourceKind.Tag)
		xmltree.Set(resource, "name", name)
		s.catalog[key] = resource
		s.created(r, key, resource)
	}
	return responseCreated{Location: s.href(r, key)}, nil
}

func (s *Server) uploadDataStore(r *request) (interface{}, error) {
	s.recordUpload(r, r.Vars["extension"])
	name := r.Query.Get("filename")
	if name == "" {
		name = r.Vars["store"]
	}
	storeType := "Shapefile"
	if r.Vars["extension"] != "shp" {
		storeType = r.Vars["extension"]
	}
	return s.upload(r, dataStoreKey(r.Vars["workspace"], r.Vars["store"]), "featuretypes",
		dataStoreKind, featureTypeKind, storeType, name)
}

func (s *Server) uploadCoverageStore(r *request) (interface{}, error) {
	s.recordUpload(r, r.Vars["format"])
	name := r.Query.Get("coverageName")
	if name == "" {
		name = r.Vars["store"]
	}
	storeType := "GeoTIFF"
	if r.Vars["format"] != "geotiff" {
		storeType = r.Vars["format"]
	}
	return s.upload(r, coverageStoreKey(r.Vars["workspace"], r.Vars["store"]), "coverages",
		coverageStoreKind, coverageKind, storeType, name)
}
