// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"context"
	"fmt"
	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/diffeo/go-geoserver/xmltree"
	"github.com/jtacoma/uritemplates"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
)

// xmlDocument is any request body that can render itself as XML, such
// as the types in the encoder package.
type xmlDocument interface {
	XML() ([]byte, error)
}

// payload is a request body that is sent verbatim.
type payload struct {
	ContentType string
	Body        io.Reader
}

// resource is any object that has a URL and a way to reach it.
type resource struct {
	URL *url.URL
	*transport
}

// Template expands a URI template with vars and resolves the result
// against the resource's URL.  Values are strings; anything else is
// formatted by the template library.
func (r *resource) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	// Build the template object
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}

	// Expand the template to produce a string
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}

	// Return the parsed URL of the result, relative to ourselves
	return r.URL.Parse(expanded)
}

// Do performs some HTTP action.  in may be nil, an xmlDocument, an
// *etree.Element, or a payload; it is sent as the request body.  out
// may be nil, a *[]byte receiving the raw body, a **etree.Element
// receiving the parsed XML document, or any other pointer that the
// JSON body is decoded into.
func (r *resource) Do(ctx context.Context, method string, url *url.URL, in, out interface{}) (err error) {
	// Set up the body, if there is one
	var (
		body        io.Reader
		contentType string
	)
	switch v := in.(type) {
	case nil:
	case xmlDocument:
		data, err := v.XML()
		if err != nil {
			return err
		}
		body, contentType = bytes.NewReader(data), restdata.XMLMediaType
	case *etree.Element:
		data, err := xmltree.Write(v, 0)
		if err != nil {
			return err
		}
		body, contentType = bytes.NewReader(data), restdata.XMLMediaType
	case payload:
		body, contentType = v.Body, v.ContentType
	default:
		return fmt.Errorf("restclient: cannot send a %T", in)
	}

	key := url.String()
	if method == http.MethodGet && r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			r.log.WithField("url", key).Debug("cached response")
			return decodeBody(cached.ContentType, cached.Body, out)
		}
	}

	// Create the request and set headers
	req, err := http.NewRequest(method, key, body)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	switch out.(type) {
	case nil, *[]byte:
	case **etree.Element:
		req.Header.Set("Accept", restdata.XMLMediaType)
	default:
		req.Header.Set("Accept", restdata.JSONMediaType)
	}
	requestID := uuid.NewV4().String()
	req.Header.Set("X-Request-Id", requestID)
	if r.username != "" {
		req.SetBasicAuth(r.username, r.password)
	}

	// Actually do the request
	start := r.clock.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.metrics.observe(method, 0, r.clock.Now().Sub(start))
		return err
	}

	// Always collect the entire body; it may be cached, and error
	// responses carry their message in it
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()
	data, err := ioutil.ReadAll(resp.Body)
	elapsed := r.clock.Now().Sub(start)
	r.metrics.observe(method, resp.StatusCode, elapsed)
	r.log.WithFields(logrus.Fields{
		"method":     method,
		"url":        key,
		"status":     resp.StatusCode,
		"request_id": requestID,
		"duration":   elapsed,
	}).Debug("geoserver request")
	if err != nil {
		return err
	}

	// Check the response code
	if err = checkHTTPStatus(resp, data); err != nil {
		return err
	}

	responseType := resp.Header.Get("Content-Type")
	if r.cache != nil {
		if method == http.MethodGet {
			r.cache.Put(&cachedResponse{URL: key, ContentType: responseType, Body: data})
		} else {
			r.cache.Purge()
		}
	}

	return decodeBody(responseType, data, out)
}

func decodeBody(contentType string, data []byte, out interface{}) error {
	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v = data
		return nil
	case **etree.Element:
		root, err := xmltree.Parse(data)
		if err != nil {
			return err
		}
		*v = root
		return nil
	}
	return restdata.Decode(contentType, bytes.NewReader(data), out)
}

// Get retrieves the resource from its own URL.
func (r *resource) Get(ctx context.Context, out interface{}) error {
	return r.Do(ctx, http.MethodGet, r.URL, nil, out)
}

// GetFrom retrieves a resource from some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.
func (r *resource) GetFrom(ctx context.Context, template string, vars map[string]interface{}, out interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do(ctx, http.MethodGet, url, nil, out)
	}
	return err
}

// PutTo updates a resource at some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.
func (r *resource) PutTo(ctx context.Context, template string, vars map[string]interface{}, in, out interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do(ctx, http.MethodPut, url, in, out)
	}
	return err
}

// PostTo submits data to a service at some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.
func (r *resource) PostTo(ctx context.Context, template string, vars map[string]interface{}, in, out interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do(ctx, http.MethodPost, url, in, out)
	}
	return err
}

// DeleteAt deletes the resource at some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.
func (r *resource) DeleteAt(ctx context.Context, template string, vars map[string]interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do(ctx, http.MethodDelete, url, nil, nil)
	}
	return err
}

// existsAt fetches a resource and reports whether it is there.  A 404
// is not an error.
func (r *resource) existsAt(ctx context.Context, template string, vars map[string]interface{}) (bool, error) {
	var root *etree.Element
	err := r.GetFrom(ctx, template, vars, &root)
	if restdata.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint.
type ErrorHTTP struct {
	// Response holds a pointer to the failing HTTP response.
	Response *http.Response

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string
}

func (e ErrorHTTP) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return e.Response.Status
	}
	return e.Response.Status + ": " + body
}

// HTTPStatus returns the status code of the response.
func (e ErrorHTTP) HTTPStatus() int {
	return e.Response.StatusCode
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.  A 404 is wrapped in restdata.ErrNotFound.
func checkHTTPStatus(resp *http.Response, body []byte) error {
	if len(resp.Status) > 0 && resp.Status[0] == '2' {
		return nil
	}
	err := ErrorHTTP{Response: resp, Body: string(body)}
	if resp.StatusCode == http.StatusNotFound {
		return restdata.ErrNotFound{Err: err}
	}
	return err
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
