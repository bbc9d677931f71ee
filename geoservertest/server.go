// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package geoservertest provides an in-memory imitation of the
// GeoServer and GeoWebCache REST APIs for tests.  It stores the XML
// documents posted to it and answers with them, keeping just enough
// of GeoServer's bookkeeping (namespaces follow workspaces, publishing
// a feature type creates its layer, recursive deletes) for client code
// to be exercised end to end.
//
// A typical test starts an httptest server at the GeoServer context
// path:
//
//     fake := geoservertest.New()
//     server := httptest.NewServer(fake)
//     defer server.Close()
//     client, err := restclient.New(restclient.Config{
//         URL: server.URL + geoservertest.ContextPath,
//     })
package geoservertest

import (
	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/gwc"
	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// ContextPath is where the fake server mounts the web application.
const ContextPath = "/geoserver"

// Request records the interesting parts of one request the server
// saw.
type Request struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	RequestID   string
}

// Upload records a file sent to a store.
type Upload struct {
	Workspace   string
	Store       string
	Method      string // file, url, or external
	Extension   string // shp, geotiff, ...
	ContentType string
	Query       map[string]string
	Body        []byte
}

// Server is the fake GeoServer.  Its exported fields may be changed
// before it starts serving.
type Server struct {
	// Username and Password, if Username is set, must be sent as
	// HTTP basic authentication.
	Username string
	Password string

	// Version is reported as the GeoServer version.
	Version string

	// SeedPolls is the number of status requests a seed task
	// stays running for.
	SeedPolls int

	lock    sync.Mutex
	handler http.Handler

	requests  []Request
	catalog   map[string]*etree.Element
	styles    map[string]document
	available map[string][]string
	uploads   []Upload
	purged    []string
	reloads   int
	resets    int

	gwcLayers  map[string]*etree.Element
	seeds      []gwc.SeedRequest
	tasks      map[string][]*task
	nextTask   int64
	truncated  []string
	quota      *gwc.DiskQuotaConfig
	gwcReloads int
}

// New creates an empty fake server.
func New() *Server {
	s := &Server{
		Version:   "2.10.1",
		SeedPolls: 1,
		catalog:   make(map[string]*etree.Element),
		styles:    make(map[string]document),
		available: make(map[string][]string),
		gwcLayers: make(map[string]*etree.Element),
		tasks:     make(map[string][]*task),
		quota:     &gwc.DiskQuotaConfig{},
	}
	r := mux.NewRouter()
	s.PopulateRouter(r.PathPrefix(ContextPath).Subrouter())

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	n := negroni.New(recovery)
	n.UseHandler(r)
	s.handler = n
	return s
}

// PopulateRouter adds all of the fake GeoServer paths to a router,
// which should already be at the context path.
func (s *Server) PopulateRouter(r *mux.Router) {
	s.populateCatalog(r)
	s.populateGWC(r)
}

// ServeHTTP checks credentials, records the request, and dispatches
// it.
func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	s.lock.Lock()
	s.requests = append(s.requests, Request{
		Method:      req.Method,
		Path:        req.URL.Path,
		Query:       req.URL.RawQuery,
		ContentType: req.Header.Get("Content-Type"),
		RequestID:   req.Header.Get("X-Request-Id"),
	})
	username, password := s.Username, s.Password
	s.lock.Unlock()

	if username != "" {
		user, pass, ok := req.BasicAuth()
		if !ok || user != username || pass != password {
			resp.Header().Set("WWW-Authenticate", `Basic realm="GeoServer Realm"`)
			http.Error(resp, "HTTP Status 401 - Bad credentials", http.StatusUnauthorized)
			return
		}
	}
	s.handler.ServeHTTP(resp, req)
}

// Requests returns every request seen so far.
func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Request(nil), s.requests...)
}

// Document returns a copy of the catalog document at key, for
// instance "workspaces/topp/datastores/nyc" or "layers/topp:states",
// or nil.
func (s *Server) Document(key string) *etree.Element {
	s.lock.Lock()
	defer s.lock.Unlock()
	if e, ok := s.catalog[key]; ok {
		return e.Copy()
	}
	return nil
}

// Keys returns the sorted keys of every catalog document.
func (s *Server) Keys() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	keys := make([]string, 0, len(s.catalog))
	for k := range s.catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StyleBody returns the SLD document of a style and its media type.
// workspace is empty for global styles.
func (s *Server) StyleBody(workspace, name string) ([]byte, string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	doc := s.styles[styleKey(workspace, name)]
	return doc.Body, doc.ContentType
}

// Purged returns the keys of styles deleted with purge.
func (s *Server) Purged() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.purged...)
}

// SetAvailable declares tables or files in a data store that could be
// published.
func (s *Server) SetAvailable(workspace, store string, names ...string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.available[dataStoreKey(workspace, store)] = names
}

// Uploads returns every file uploaded so far.
func (s *Server) Uploads() []Upload {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// Reloads returns the number of catalog reloads and resets.
func (s *Server) Reloads() (reloads, resets int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.reloads, s.resets
}

// Seeds returns every seed request received.
func (s *Server) Seeds() []gwc.SeedRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]gwc.SeedRequest(nil), s.seeds...)
}

// Truncated returns the layers mass-truncated so far.
func (s *Server) Truncated() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.truncated...)
}

// GWCReloads returns the number of GeoWebCache configuration reloads.
func (s *Server) GWCReloads() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.gwcReloads
}

// children returns the keys directly under key, sorted.
func (s *Server) children(key string) []string {
	var keys []string
	for k := range s.catalog {
		if k[:strings.LastIndex(k, "/")+1] == key+"/" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// descendants returns every key below key.
func (s *Server) descendants(key string) []string {
	var keys []string
	for k := range s.catalog {
		if strings.HasPrefix(k, key+"/") {
			keys = append(keys, k)
		}
	}
	return keys
}
