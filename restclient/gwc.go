// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"errors"
	"fmt"
	"github.com/diffeo/go-geoserver/gwc"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/sirupsen/logrus"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidInterval is returned by WaitForSeed for a non-positive
// polling interval.
var ErrInvalidInterval = errors.New("polling interval must be positive")

// GWC is a client for the GeoWebCache REST API embedded in GeoServer.
type GWC struct {
	resource
}

// Layers returns the names of the cached layers.
func (g *GWC) Layers(ctx context.Context) ([]string, error) {
	var data []byte
	if err := g.GetFrom(ctx, restdata.GWCLayersPath, nil, &data); err != nil {
		return nil, err
	}
	return gwc.DecodeLayerNames(data)
}

// Layer fetches the caching configuration of a layer.
func (g *GWC) Layer(ctx context.Context, name string) (*gwc.Layer, error) {
	var data []byte
	if err := g.GetFrom(ctx, restdata.GWCLayerPath, vars{"layer": name}, &data); err != nil {
		return nil, err
	}
	return gwc.DecodeLayer(data)
}

// PutLayer creates or replaces the caching configuration of a layer.
func (g *GWC) PutLayer(ctx context.Context, layer *gwc.Layer) error {
	return g.PutTo(ctx, restdata.GWCLayerPath, vars{"layer": layer.Name}, layer, nil)
}

// DeleteLayer removes a layer from the cache configuration and drops
// its tiles.
func (g *GWC) DeleteLayer(ctx context.Context, name string) error {
	return g.DeleteAt(ctx, restdata.GWCLayerPath, vars{"layer": name})
}

// Seed starts a seed, reseed, or truncate task.
func (g *GWC) Seed(ctx context.Context, req *gwc.SeedRequest) error {
	return g.PostTo(ctx, restdata.GWCSeedPath, vars{"layer": req.Layer}, req, nil)
}

// Status returns the seed tasks of a layer, or of every layer if
// layer is empty.
func (g *GWC) Status(ctx context.Context, layer string) ([]gwc.SeedTask, error) {
	var (
		data []byte
		err  error
	)
	if layer == "" {
		err = g.GetFrom(ctx, restdata.GWCAllSeedPath, nil, &data)
	} else {
		err = g.GetFrom(ctx, restdata.GWCSeedStatusPath, vars{"layer": layer}, &data)
	}
	if err != nil {
		return nil, err
	}
	return gwc.DecodeSeedStatus(data)
}

// KillMode selects the tasks Kill stops.
type KillMode string

// Kill modes.
const (
	KillAll     KillMode = "all"
	KillRunning KillMode = "running"
	KillPending KillMode = "pending"
)

// Kill stops the seed tasks of a layer, or of every layer if layer is
// empty.
func (g *GWC) Kill(ctx context.Context, layer string, mode KillMode) error {
	form := url.Values{"kill_all": {string(mode)}}
	body := payload{ContentType: restdata.FormMediaType, Body: strings.NewReader(form.Encode())}
	if layer == "" {
		return g.PostTo(ctx, restdata.GWCKillPath, nil, body, nil)
	}
	return g.PostTo(ctx, restdata.GWCLayerKillPath, vars{"layer": layer}, body, nil)
}

// TruncateLayer drops every cached tile of a layer.
func (g *GWC) TruncateLayer(ctx context.Context, layer string) error {
	return g.PostTo(ctx, restdata.GWCTruncatePath, nil, gwc.TruncateLayerElement(layer), nil)
}

// DiskQuota fetches the disk quota configuration.
func (g *GWC) DiskQuota(ctx context.Context) (*gwc.DiskQuotaConfig, error) {
	var data []byte
	if err := g.GetFrom(ctx, restdata.GWCDiskQuotaPath, vars{"format": "xml"}, &data); err != nil {
		return nil, err
	}
	return gwc.DecodeDiskQuota(data)
}

// SetDiskQuota changes the fields set in cfg.
func (g *GWC) SetDiskQuota(ctx context.Context, cfg *gwc.DiskQuotaConfig) error {
	return g.PutTo(ctx, restdata.GWCDiskQuotaPath, vars{"format": "xml"}, cfg, nil)
}

// DiskQuotaJSON fetches the disk quota configuration in its JSON
// form.
func (g *GWC) DiskQuotaJSON(ctx context.Context) (*gwc.DiskQuotaConfig, error) {
	var data []byte
	if err := g.GetFrom(ctx, restdata.GWCDiskQuotaPath, vars{"format": "json"}, &data); err != nil {
		return nil, err
	}
	return gwc.DecodeDiskQuotaJSON(data)
}

// SetDiskQuotaJSON changes the fields set in cfg, sending JSON.
func (g *GWC) SetDiskQuotaJSON(ctx context.Context, cfg *gwc.DiskQuotaConfig) error {
	data, err := cfg.JSON()
	if err != nil {
		return err
	}
	return g.PutTo(ctx, restdata.GWCDiskQuotaPath, vars{"format": "json"},
		payload{ContentType: restdata.JSONMediaType, Body: strings.NewReader(string(data))}, nil)
}

// Reload rereads the GeoWebCache configuration.
func (g *GWC) Reload(ctx context.Context) error {
	form := url.Values{"reload_configuration": {"1"}}
	return g.PostTo(ctx, restdata.GWCReloadPath, nil,
		payload{ContentType: restdata.FormMediaType, Body: strings.NewReader(form.Encode())}, nil)
}

// WaitForSeed polls the seed status of a layer every interval until
// it has no pending or running tasks.  It returns early with the
// context's error if ctx ends first.
func (g *GWC) WaitForSeed(ctx context.Context, layer string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	ticker := g.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		tasks, err := g.Status(ctx, layer)
		if err != nil {
			return err
		}
		active := 0
		for _, task := range tasks {
			if task.Active() {
				active++
			}
		}
		if active == 0 {
			return nil
		}
		g.log.WithFields(logrus.Fields{
			"layer": layer,
			"tasks": active,
		}).Debug("waiting for seed tasks")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
