// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"fmt"
	"github.com/diffeo/go-geoserver/gwc"
	"github.com/diffeo/go-geoserver/restclient"
	"github.com/urfave/cli"
	"sort"
	"strconv"
	"strings"
	"time"
)

// parseBounds reads "minx,miny,maxx,maxy".
func parseBounds(s string) (*gwc.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bounds %q: want minx,miny,maxx,maxy", s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bounds %q: %v", s, err)
		}
		v[i] = f
	}
	return &gwc.Bounds{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}, nil
}

// parsePairs reads KEY=VALUE arguments.
func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("%q is not KEY=VALUE", pair)
		}
		out[kv[0]] = kv[1]
	}
	return out, nil
}

func seedCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:      "seed",
		Usage:     "seed, reseed, or truncate cached tiles of a layer",
		ArgsUsage: "layer",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "type",
				Value: string(gwc.Seed),
				Usage: "seed, reseed, or truncate",
			},
			cli.StringFlag{
				Name:  "format",
				Value: "image/png",
				Usage: "tile MIME type",
			},
			cli.IntFlag{
				Name:  "srs",
				Value: 4326,
				Usage: "EPSG code of the grid set",
			},
			cli.StringFlag{
				Name:  "gridset",
				Usage: "grid set name, in place of --srs",
			},
			cli.IntFlag{
				Name:  "zoom-start",
				Usage: "first zoom level",
			},
			cli.IntFlag{
				Name:  "zoom-stop",
				Value: 10,
				Usage: "last zoom level",
			},
			cli.IntFlag{
				Name:  "threads",
				Value: 1,
				Usage: "seeding threads",
			},
			cli.StringFlag{
				Name:  "bounds",
				Usage: "minx,miny,maxx,maxy to limit the range",
			},
			cli.StringSliceFlag{
				Name:  "param",
				Usage: "KEY=VALUE parameter filter value, repeatable",
			},
			cli.BoolFlag{
				Name:  "wait",
				Usage: "wait until the layer has no pending or running tasks",
			},
			cli.DurationFlag{
				Name:  "interval",
				Value: 5 * time.Second,
				Usage: "how often to poll with --wait",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errUsage
			}
			req := &gwc.SeedRequest{
				Layer:       c.Args().First(),
				GridSetID:   c.String("gridset"),
				ZoomStart:   c.Int("zoom-start"),
				ZoomStop:    c.Int("zoom-stop"),
				Format:      c.String("format"),
				Type:        gwc.SeedType(c.String("type")),
				ThreadCount: c.Int("threads"),
			}
			if req.GridSetID == "" {
				req.SRS = c.Int("srs")
			}
			if b := c.String("bounds"); b != "" {
				bounds, err := parseBounds(b)
				if err != nil {
					return err
				}
				req.Bounds = bounds
			}
			params, err := parsePairs(c.StringSlice("param"))
			if err != nil {
				return err
			}
			req.Parameters = params

			if c.Bool("wait") && c.Duration("interval") <= 0 {
				return fmt.Errorf("%w: %v", restclient.ErrInvalidInterval, c.Duration("interval"))
			}

			ctx := context.Background()
			client := g.Client.GWC()
			if err := client.Seed(ctx, req); err != nil {
				return err
			}
			if !c.Bool("wait") {
				return nil
			}
			return client.WaitForSeed(ctx, req.Layer, c.Duration("interval"))
		},
	}
}

func statusCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:      "status",
		Usage:     "print the seed tasks of a layer, or of every layer",
		ArgsUsage: "[layer]",
		Action: func(c *cli.Context) error {
			tasks, err := g.Client.GWC().Status(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			for _, t := range tasks {
				fmt.Fprintf(g.Out, "%d\t%s\t%d/%d\t%ds\n",
					t.ID, t.Status, t.TilesDone, t.TilesTotal, t.TimeRemaining)
			}
			return nil
		},
	}
}

func killCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:      "kill",
		Usage:     "stop seed tasks of a layer, or of every layer",
		ArgsUsage: "[layer]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "tasks",
				Value: string(restclient.KillAll),
				Usage: "all, running, or pending",
			},
		},
		Action: func(c *cli.Context) error {
			mode := restclient.KillMode(c.String("tasks"))
			switch mode {
			case restclient.KillAll, restclient.KillRunning, restclient.KillPending:
			default:
				return fmt.Errorf("unknown task selection %q", mode)
			}
			return g.Client.GWC().Kill(context.Background(), c.Args().First(), mode)
		},
	}
}

func truncateCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:      "truncate",
		Usage:     "drop every cached tile of some layers",
		ArgsUsage: "layer...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errUsage
			}
			for _, layer := range c.Args() {
				if err := g.Client.GWC().TruncateLayer(context.Background(), layer); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printQuota(g *gsconfig, cfg *gwc.DiskQuotaConfig) {
	if cfg.Enabled != nil {
		fmt.Fprintf(g.Out, "enabled\t%v\n", *cfg.Enabled)
	}
	if cfg.GlobalExpirationPolicyName != "" {
		fmt.Fprintf(g.Out, "policy\t%s\n", cfg.GlobalExpirationPolicyName)
	}
	if cfg.GlobalQuota != nil {
		fmt.Fprintf(g.Out, "global\t%s\n", cfg.GlobalQuota)
	}
	if cfg.CacheCleanUpFrequency != nil {
		fmt.Fprintf(g.Out, "cleanup\t%d %s\n", *cfg.CacheCleanUpFrequency, cfg.CacheCleanUpUnits)
	}
	for _, lq := range cfg.LayerQuotas {
		quota := "-"
		if lq.Quota != nil {
			quota = lq.Quota.String()
		}
		fmt.Fprintf(g.Out, "layer %s\t%s\n", lq.Layer, quota)
	}
}

func quotaCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:  "quota",
		Usage: "show or change the tile cache disk quota",
		Subcommands: []cli.Command{
			{
				Name:  "get",
				Usage: "print the disk quota configuration",
				Action: func(c *cli.Context) error {
					cfg, err := g.Client.GWC().DiskQuota(context.Background())
					if err != nil {
						return err
					}
					printQuota(g, cfg)
					return nil
				},
			},
			{
				Name:  "set",
				Usage: "change part of the disk quota configuration",
				Flags: []cli.Flag{
					cli.BoolTFlag{
						Name:  "enabled",
						Usage: "enforce the quota; --enabled=false turns it off",
					},
					cli.StringFlag{
						Name:  "global",
						Usage: "global quota, e.g. \"2 GiB\"",
					},
					cli.StringFlag{
						Name:  "policy",
						Usage: "LFU or LRU",
					},
					cli.StringSliceFlag{
						Name:  "layer",
						Usage: "LAYER=QUOTA per-layer quota, repeatable",
					},
				},
				Action: func(c *cli.Context) error {
					cfg := &gwc.DiskQuotaConfig{
						GlobalExpirationPolicyName: gwc.ExpirationPolicy(c.String("policy")),
					}
					if c.IsSet("enabled") {
						enabled := c.BoolT("enabled")
						cfg.Enabled = &enabled
					}
					if s := c.String("global"); s != "" {
						q, err := gwc.ParseQuota(s)
						if err != nil {
							return err
						}
						cfg.GlobalQuota = &q
					}
					layers, err := parsePairs(c.StringSlice("layer"))
					if err != nil {
						return err
					}
					names := make([]string, 0, len(layers))
					for layer := range layers {
						names = append(names, layer)
					}
					sort.Strings(names)
					for _, layer := range names {
						q, err := gwc.ParseQuota(layers[layer])
						if err != nil {
							return fmt.Errorf("%s: %w", layer, err)
						}
						cfg.SetLayerQuota(gwc.LayerQuota{Layer: layer, Quota: &q})
					}
					if err := cfg.Validate(); err != nil {
						return err
					}
					return g.Client.GWC().SetDiskQuota(context.Background(), cfg)
				},
			},
		},
	}
}
