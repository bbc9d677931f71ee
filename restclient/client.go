// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient talks to the GeoServer REST API.  Call New() with
// the base URL of the GeoServer web application; for instance,
//
//     c, err := restclient.New(restclient.Config{
//         URL:      "http://localhost:8080/geoserver/",
//         Username: "admin",
//         Password: "geoserver",
//     })
//
// Reading methods return (value, error), where a missing object is a
// restdata.ErrNotFound error; the Exists-style methods turn that into
// false.  Publishing methods take documents built with the encoder
// package.  The GeoWebCache REST API lives under the same base URL and
// is reached through GWC().
package restclient

import (
	"context"
	"errors"
	"github.com/benbjohnson/clock"
	"github.com/beevik/etree"
	"github.com/diffeo/go-geoserver/decoder"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoURL is returned from New if the configuration has no usable
// server URL.
var ErrNoURL = errors.New("no GeoServer URL")

// Config describes how to reach a GeoServer.
type Config struct {
	// URL is the base URL of the web application, for instance
	// http://localhost:8080/geoserver.
	URL string `mapstructure:"url" yaml:"url"`

	// Username and Password are sent as HTTP basic
	// authentication if Username is non-empty.
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Timeout bounds each request; zero means no limit.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// CacheSize is the number of GET responses to keep; zero
	// disables caching.
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`
}

// transport holds everything requests share.
type transport struct {
	client   *http.Client
	username string
	password string
	log      logrus.FieldLogger
	metrics  *metrics
	cache    *lru
	clock    clock.Clock

	registerer prometheus.Registerer
}

// Option customizes a client.
type Option func(*transport)

// WithHTTPClient sends requests through client instead of a new
// client built from the configured timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(t *transport) { t.client = client }
}

// WithLogger logs requests to log at debug level.  The default is the
// logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(t *transport) { t.log = log }
}

// WithRegisterer records request metrics in reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(t *transport) { t.registerer = reg }
}

// WithClock uses clk for timing requests and polling seed tasks.
func WithClock(clk clock.Clock) Option {
	return func(t *transport) { t.clock = clk }
}

// Client is a connection to one GeoServer.
type Client struct {
	resource
	gwc *GWC
}

// New creates a client for the server described by cfg.  It does not
// contact the server.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, ErrNoURL
	}
	// Templates are relative, so the base must look like a directory
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	t := &transport{
		username: cfg.Username,
		password: cfg.Password,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: cfg.Timeout}
	}
	if t.log == nil {
		t.log = logrus.StandardLogger()
	}
	if t.clock == nil {
		t.clock = clock.New()
	}
	if t.registerer != nil {
		if t.metrics, err = newMetrics(t.registerer); err != nil {
			return nil, err
		}
	}
	if cfg.CacheSize > 0 {
		t.cache = newLRU(cfg.CacheSize)
	}

	c := &Client{resource: resource{URL: base, transport: t}}
	// Seed status changes on its own, so GeoWebCache is never cached
	gt := *t
	gt.cache = nil
	c.gwc = &GWC{resource: resource{URL: base, transport: &gt}}
	return c, nil
}

// BaseURL returns the server URL requests are relative to.
func (c *Client) BaseURL() string {
	return c.URL.String()
}

// GWC returns the GeoWebCache client sharing this connection.
func (c *Client) GWC() *GWC {
	return c.gwc
}

// Exists checks that the server answers with the configured
// credentials.  An unreachable server is false with an error; a server
// that answers with an error status is false without one.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	var root *etree.Element
	err := c.GetFrom(ctx, restdata.AboutVersionPath, nil, &root)
	if err == nil {
		return true, nil
	}
	if restdata.StatusCode(err) != 0 {
		return false, nil
	}
	return false, err
}

// Version returns the server's component versions.
func (c *Client) Version(ctx context.Context) (*decoder.Version, error) {
	var data []byte
	if err := c.GetFrom(ctx, restdata.AboutVersionPath, nil, &data); err != nil {
		return nil, err
	}
	return decoder.DecodeVersion(data)
}

// Reload rereads the catalog and configuration from disk.
func (c *Client) Reload(ctx context.Context) error {
	return c.PostTo(ctx, restdata.ReloadPath, nil, nil, nil)
}

// Reset clears the server's resource caches.
func (c *Client) Reset(ctx context.Context) error {
	return c.PostTo(ctx, restdata.ResetPath, nil, nil, nil)
}
