// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package geoservertest

// This file contains a small REST skeleton: a handler per resource
// with one function per HTTP method, and a standard way to turn their
// results into responses.

import (
	"errors"
	"fmt"
	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/gorilla/mux"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
)

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// errForbidden is GeoServer's answer to deleting something that is
// still in use.
type errForbidden struct {
	Text string
}

func (e errForbidden) Error() string {
	return e.Text
}

func (e errForbidden) HTTPStatus() int {
	return http.StatusForbidden
}

func notFound(format string, args ...interface{}) error {
	return restdata.ErrNotFound{Err: fmt.Errorf(format, args...)}
}

func badRequest(format string, args ...interface{}) error {
	return restdata.ErrBadRequest{Err: fmt.Errorf(format, args...)}
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
type responseCreated struct {
	// Location holds the canonical URL to the newly created resource.
	Location string
}

// document is a response body that is not an XML element.
type document struct {
	ContentType string
	Body        []byte
}

// request holds everything a handler needs from the HTTP request.
type request struct {
	Method      string
	Vars        map[string]string
	Query       url.Values
	ContentType string
	Body        []byte
	Host        string
}

// BoolParam returns a boolean query parameter, or def if it is absent
// or unparseable.
func (r *request) BoolParam(name string, def bool) bool {
	value := r.Query.Get(name)
	if value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}

// Element parses the request body as XML.
func (r *request) Element() (*etree.Element, error) {
	root, err := xmltree.Parse(r.Body)
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	return root, nil
}

type handlerFunc func(*request) (interface{}, error)

type resourceHandler struct {
	// Server is locked around every handler call.
	Server *Server

	Get    handlerFunc
	Put    handlerFunc
	Post   handlerFunc
	Delete handlerFunc
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		out    interface{}
		err    error
		status int
	)

	body, err := ioutil.ReadAll(req.Body)
	r := &request{
		Method:      req.Method,
		Vars:        mux.Vars(req),
		Query:       req.URL.Query(),
		ContentType: req.Header.Get("Content-Type"),
		Body:        body,
		Host:        req.Host,
	}
	if err != nil {
		err = restdata.ErrBadRequest{Err: err}
	}

	// Actually call the handler method
	if err == nil {
		// We will return this if the method is unexpected or
		// we don't have a handler for it
		err = errMethodNotAllowed{Method: req.Method}
		var handler handlerFunc
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			handler = h.Get
		case http.MethodPut:
			handler = h.Put
		case http.MethodPost:
			handler = h.Post
		case http.MethodDelete:
			handler = h.Delete
		}
		if handler != nil {
			h.Server.lock.Lock()
			out, err = handler(r)
			h.Server.lock.Unlock()
		}
	}

	// Fix up the final result based on what we know.
	var data []byte
	contentType := restdata.XMLMediaType
	if err != nil {
		status = http.StatusInternalServerError
		var errS restdata.ErrorStatus
		if errors.As(err, &errS) {
			status = errS.HTTPStatus()
		}
		contentType = restdata.TextMediaType
		data = []byte(err.Error())
	} else {
		status = http.StatusOK
		switch v := out.(type) {
		case nil:
			status = http.StatusNoContent
		case responseCreated:
			status = http.StatusCreated
			resp.Header().Set("Location", v.Location)
			contentType = restdata.TextMediaType
			data = []byte(v.Location)
		case *etree.Element:
			data, err = xmltree.Write(v, 2)
		case document:
			contentType, data = v.ContentType, v.Body
		default:
			err = fmt.Errorf("unexpected response %T", out)
		}
		if err != nil {
			status = http.StatusInternalServerError
			contentType = restdata.TextMediaType
			data = []byte(err.Error())
		}
	}

	// Actually send the response
	if data != nil {
		resp.Header().Set("Content-Type", contentType)
	}
	resp.WriteHeader(status)
	if data != nil && req.Method != http.MethodHead {
		// Once the status line is out there is nothing better
		// to do with a write error
		_, _ = resp.Write(data)
	}
}
