// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package geoservertest

import (
	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/gwc"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/gorilla/mux"
	"net/url"
	"sort"
)

// task is a seed task that finishes after a number of status polls.
type task struct {
	gwc.SeedTask
	polls int
}

func (s *Server) populateGWC(r *mux.Router) {
	r.Path("/gwc/rest/layers.xml").Handler(&resourceHandler{
		Server: s,
		Get:    s.gwcListLayers,
	})
	r.Path("/gwc/rest/layers/{layer}.xml").Handler(&resourceHandler{
		Server: s,
		Get:    s.gwcGetLayer,
		Put:    s.gwcPutLayer,
		Delete: s.gwcDeleteLayer,
	})

	r.Path("/gwc/rest/seed.json").Handler(&resourceHandler{
		Server: s,
		Get:    s.seedStatus,
	})
	r.Path("/gwc/rest/seed").Handler(&resourceHandler{
		Server: s,
		Post:   s.killTasks,
	})
	r.Path("/gwc/rest/seed/{layer}.xml").Handler(&resourceHandler{
		Server: s,
		Post:   s.seed,
	})
	r.Path("/gwc/rest/seed/{layer}.json").Handler(&resourceHandler{
		Server: s,
		Get:    s.seedStatus,
	})
	r.Path("/gwc/rest/seed/{layer}").Handler(&resourceHandler{
		Server: s,
		Post:   s.killTasks,
	})

	r.Path("/gwc/rest/masstruncate").Handler(&resourceHandler{
		Server: s,
		Post:   s.massTruncate,
	})
	r.Path("/gwc/rest/diskquota.{format:xml|json}").Handler(&resourceHandler{
		Server: s,
		Get:    s.getDiskQuota,
		Put:    s.putDiskQuota,
	})
	r.Path("/gwc/rest/reload").Handler(&resourceHandler{
		Server: s,
		Post:   s.gwcReload,
	})
}

func (s *Server) gwcListLayers(r *request) (interface{}, error) {
	names := make([]string, 0, len(s.gwcLayers))
	for name := range s.gwcLayers {
		names = append(names, name)
	}
	sort.Strings(names)
	root := etree.NewElement("layers")
	for _, name := range names {
		xmltree.Set(root.CreateElement("layer"), "name", name)
	}
	return root, nil
}

func (s *Server) gwcGetLayer(r *request) (interface{}, error) {
	e, ok := s.gwcLayers[r.Vars["layer"]]
	if !ok {
		return nil, notFound("Unknown layer: %s", r.Vars["layer"])
	}
	return e, nil
}

func (s *Server) gwcPutLayer(r *request) (interface{}, error) {
	layer, err := gwc.DecodeLayer(r.Body)
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	if layer.Name != r.Vars["layer"] {
		return nil, badRequest("Layer name %q does not match %q", layer.Name, r.Vars["layer"])
	}
	e, err := r.Element()
	if err != nil {
		return nil, err
	}
	s.gwcLayers[layer.Name] = e
	return nil, nil
}

func (s *Server) gwcDeleteLayer(r *request) (interface{}, error) {
	name := r.Vars["layer"]
	if _, ok := s.gwcLayers[name]; !ok {
		return nil, notFound("Unknown layer: %s", name)
	}
	delete(s.gwcLayers, name)
	delete(s.tasks, name)
	return nil, nil
}

// cached says whether GeoWebCache knows a layer, either configured
// directly or as a published GeoServer layer.
func (s *Server) cached(name string) bool {
	if _, ok := s.gwcLayers[name]; ok {
		return true
	}
	_, ok := s.catalog["layers/"+name]
	return ok
}

func (s *Server) seed(r *request) (interface{}, error) {
	name := r.Vars["layer"]
	if !s.cached(name) {
		return nil, notFound("Unknown layer: %s", name)
	}
	req, err := gwc.DecodeSeedRequest(r.Body)
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	if req.Layer == "" {
		req.Layer = name
	}
	s.seeds = append(s.seeds, *req)

	s.nextTask++
	t := &task{
		SeedTask: gwc.SeedTask{
			TilesTotal:    100,
			TimeRemaining: -1,
			ID:            s.nextTask,
			Status:        gwc.Running,
		},
		polls: s.SeedPolls,
	}
	if len(s.tasks[name]) > 0 {
		t.Status = gwc.Pending
	}
	s.tasks[name] = append(s.tasks[name], t)
	return nil, nil
}

// advance moves a layer's tasks along by one poll, dropping finished
// ones, and returns the tasks still alive.
func (s *Server) advance(name string) []gwc.SeedTask {
	var (
		alive  []*task
		report []gwc.SeedTask
	)
	for _, t := range s.tasks[name] {
		if t.Status == gwc.Running {
			t.polls--
			if t.polls <= 0 {
				continue
			}
			t.TilesDone = t.TilesTotal - t.TilesTotal/int64(t.polls+1)
		}
		alive = append(alive, t)
	}
	if len(alive) > 0 && alive[0].Status == gwc.Pending {
		alive[0].Status = gwc.Running
	}
	if len(alive) == 0 {
		delete(s.tasks, name)
	} else {
		s.tasks[name] = alive
	}
	for _, t := range alive {
		report = append(report, t.SeedTask)
	}
	return report
}

func (s *Server) seedStatus(r *request) (interface{}, error) {
	var report []gwc.SeedTask
	if name, ok := r.Vars["layer"]; ok {
		if !s.cached(name) {
			return nil, notFound("Unknown layer: %s", name)
		}
		report = s.advance(name)
	} else {
		names := make([]string, 0, len(s.tasks))
		for name := range s.tasks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			report = append(report, s.advance(name)...)
		}
	}
	data, err := gwc.EncodeSeedStatus(report)
	if err != nil {
		return nil, err
	}
	return document{ContentType: restdata.JSONMediaType, Body: data}, nil
}

func (s *Server) killTasks(r *request) (interface{}, error) {
	form, err := url.ParseQuery(string(r.Body))
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	mode := form.Get("kill_all")
	var want func(*task) bool
	switch mode {
	case "all":
		want = func(*task) bool { return true }
	case "running":
		want = func(t *task) bool { return t.Status == gwc.Running }
	case "pending":
		want = func(t *task) bool { return t.Status == gwc.Pending }
	default:
		return nil, badRequest("Unknown kill_all value %q", mode)
	}

	names := []string{r.Vars["layer"]}
	if names[0] == "" {
		names = names[:0]
		for name := range s.tasks {
			names = append(names, name)
		}
	}
	for _, name := range names {
		var alive []*task
		for _, t := range s.tasks[name] {
			if !want(t) {
				alive = append(alive, t)
			}
		}
		if len(alive) == 0 {
			delete(s.tasks, name)
		} else {
			s.tasks[name] = alive
		}
	}
	return nil, nil
}

func (s *Server) massTruncate(r *request) (interface{}, error) {
	e, err := r.Element()
	if err != nil {
		return nil, err
	}
	if e.Tag != "truncateLayer" {
		return nil, badRequest("Unknown mass truncate request <%s>", e.Tag)
	}
	name, _ := xmltree.Get(e, "layerName")
	if !s.cached(name) {
		return nil, notFound("Unknown layer: %s", name)
	}
	s.truncated = append(s.truncated, name)
	return nil, nil
}

func (s *Server) getDiskQuota(r *request) (interface{}, error) {
	var (
		data []byte
		err  error
	)
	contentType := restdata.XMLMediaType
	if r.Vars["format"] == "json" {
		contentType = restdata.JSONMediaType
		data, err = s.quota.JSON()
	} else {
		data, err = s.quota.XML()
	}
	if err != nil {
		return nil, err
	}
	return document{ContentType: contentType, Body: data}, nil
}

func (s *Server) putDiskQuota(r *request) (interface{}, error) {
	var (
		cfg *gwc.DiskQuotaConfig
		err error
	)
	if r.Vars["format"] == "json" {
		cfg, err = gwc.DecodeDiskQuotaJSON(r.Body)
	} else {
		cfg, err = gwc.DecodeDiskQuota(r.Body)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	s.quota.Update(cfg)
	return nil, nil
}

func (s *Server) gwcReload(r *request) (interface{}, error) {
	form, err := url.ParseQuery(string(r.Body))
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	if form.Get("reload_configuration") == "" {
		return nil, badRequest("reload_configuration not given")
	}
	s.gwcReloads++
	return nil, nil
}
