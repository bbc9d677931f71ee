// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"context"
	"errors"
	"github.com/diffeo/go-geoserver/geoservertest"
	"github.com/diffeo/go-geoserver/restclient"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newFake starts a fake GeoServer and returns a client pointed at it.
func newFake(t *testing.T, cfg restclient.Config, opts ...restclient.Option) (*geoservertest.Server, *restclient.Client) {
	fake := geoservertest.New()
	fake.Username = cfg.Username
	fake.Password = cfg.Password
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg.URL = server.URL + geoservertest.ContextPath
	client, err := restclient.New(cfg, opts...)
	require.NoError(t, err)
	return fake, client
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New(restclient.Config{})
	assert.Equal(t, restclient.ErrNoURL, err)
}

func TestBadURL(t *testing.T) {
	for _, u := range []string{"localhost:8080", "ftp://example.com/geoserver", "http:///geoserver"} {
		_, err := restclient.New(restclient.Config{URL: u})
		assert.Error(t, err, u)
	}
}

func TestBaseURL(t *testing.T) {
	client, err := restclient.New(restclient.Config{URL: "http://localhost:8080/geoserver"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/geoserver/", client.BaseURL())
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	_, client := newFake(t, restclient.Config{Username: "admin", Password: "geoserver"})
	ok, err := client.Exists(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)

	version, err := client.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.10.1", version.GeoServer())
}

func TestBadCredentials(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, restclient.Config{Username: "admin", Password: "wrong"})
	fake.Password = "geoserver"

	ok, err := client.Exists(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = client.Workspaces(ctx)
	assert.Equal(t, http.StatusUnauthorized, restdata.StatusCode(err))
}

func TestUnreachable(t *testing.T) {
	server := httptest.NewServer(geoservertest.New())
	url := server.URL + geoservertest.ContextPath
	server.Close()

	client, err := restclient.New(restclient.Config{URL: url})
	require.NoError(t, err)
	ok, err := client.Exists(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRequestHeaders(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	fake, client := newFake(t, restclient.Config{}, restclient.WithLogger(logger))

	require.NoError(t, client.CreateWorkspace(ctx, "topp"))
	_, err := client.Workspaces(ctx)
	require.NoError(t, err)

	requests := fake.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, restdata.XMLMediaType, requests[0].ContentType)
	assert.NotEmpty(t, requests[0].RequestID)
	assert.NotEqual(t, requests[0].RequestID, requests[1].RequestID)

	require.Len(t, hook.AllEntries(), 2)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, requests[1].RequestID, entry.Data["request_id"])
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	_, client := newFake(t, restclient.Config{}, restclient.WithRegisterer(reg))

	_, err := client.Workspaces(ctx)
	require.NoError(t, err)
	_, err = client.Workspace(ctx, "missing")
	assert.True(t, restdata.IsNotFound(err))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := make(map[string]float64)
	for _, family := range families {
		if family.GetName() != "diffeo_geoserver_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "code" {
					counts[label.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"200": 1, "404": 1}, counts)

	// A second client on the same registry shares the collectors
	_, err = restclient.New(restclient.Config{URL: client.BaseURL()}, restclient.WithRegisterer(reg))
	assert.NoError(t, err)
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, restclient.Config{CacheSize: 8})

	require.NoError(t, client.CreateWorkspace(ctx, "topp"))
	for i := 0; i < 3; i++ {
		names, err := client.Workspaces(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"topp"}, names)
	}
	assert.Len(t, fake.Requests(), 2)

	// Any write invalidates the cache
	require.NoError(t, client.CreateWorkspace(ctx, "sf"))
	names, err := client.Workspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sf", "topp"}, names)
	assert.Len(t, fake.Requests(), 4)
}

func TestReloadReset(t *testing.T) {
	ctx := context.Background()
	fake, client := newFake(t, restclient.Config{})
	require.NoError(t, client.Reload(ctx))
	require.NoError(t, client.Reset(ctx))
	require.NoError(t, client.Reset(ctx))
	reloads, resets := fake.Reloads()
	assert.Equal(t, 1, reloads)
	assert.Equal(t, 2, resets)
}

func TestErrorBody(t *testing.T) {
	ctx := context.Background()
	_, client := newFake(t, restclient.Config{})
	require.NoError(t, client.CreateWorkspace(ctx, "topp"))
	err := client.CreateWorkspace(ctx, "topp")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, restdata.StatusCode(err))
	assert.Contains(t, err.Error(), "already exists")

	var httpErr restclient.ErrorHTTP
	if assert.True(t, errors.As(err, &httpErr)) {
		assert.Equal(t, http.StatusConflict, httpErr.HTTPStatus())
	}
}
