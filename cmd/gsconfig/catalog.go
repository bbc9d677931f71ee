// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/diffeo/go-geoserver/restclient"
	"github.com/diffeo/go-geoserver/restdata"
	"github.com/urfave/cli"
	"sort"
)

var errUsage = errors.New("wrong number of arguments")

var workspaceFlag = cli.StringFlag{
	Name:  "workspace, w",
	Usage: "workspace to look in",
}

var storeFlag = cli.StringFlag{
	Name:  "store, s",
	Usage: "data store or coverage store to look in",
}

var recurseFlag = cli.BoolFlag{
	Name:  "recurse, r",
	Usage: "also delete everything the object contains",
}

func versionCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:  "version",
		Usage: "print the server's component versions",
		Action: func(c *cli.Context) error {
			v, err := g.Client.Version(context.Background())
			if err != nil {
				return err
			}
			for _, name := range v.Components() {
				fmt.Fprintf(g.Out, "%s\t%s\n", name, v.Component(name))
			}
			return nil
		},
	}
}

// lister fetches one kind of name list.
type lister func(ctx context.Context, client *restclient.Client, workspace, store string) ([]string, error)

var listers = map[string]lister{
	"workspaces": func(ctx context.Context, client *restclient.Client, _, _ string) ([]string, error) {
		return client.Workspaces(ctx)
	},
	"namespaces": func(ctx context.Context, client *restclient.Client, _, _ string) ([]string, error) {
		return client.Namespaces(ctx)
	},
	"datastores": func(ctx context.Context, client *restclient.Client, ws, _ string) ([]string, error) {
		return client.DataStores(ctx, ws)
	},
	"coveragestores": func(ctx context.Context, client *restclient.Client, ws, _ string) ([]string, error) {
		return client.CoverageStores(ctx, ws)
	},
	"featuretypes": func(ctx context.Context, client *restclient.Client, ws, store string) ([]string, error) {
		return client.FeatureTypes(ctx, ws, store)
	},
	"available": func(ctx context.Context, client *restclient.Client, ws, store string) ([]string, error) {
		return client.AvailableFeatureTypes(ctx, ws, store)
	},
	"coverages": func(ctx context.Context, client *restclient.Client, ws, store string) ([]string, error) {
		return client.Coverages(ctx, ws, store)
	},
	"layers": func(ctx context.Context, client *restclient.Client, ws, _ string) ([]string, error) {
		return client.Layers(ctx, ws)
	},
	"layergroups": func(ctx context.Context, client *restclient.Client, ws, _ string) ([]string, error) {
		return client.LayerGroups(ctx, ws)
	},
	"styles": func(ctx context.Context, client *restclient.Client, ws, _ string) ([]string, error) {
		return client.Styles(ctx, ws)
	},
	"cached": func(ctx context.Context, client *restclient.Client, _, _ string) ([]string, error) {
		return client.GWC().Layers(ctx)
	},
}

func kinds() []string {
	var names []string
	for name := range listers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func listCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:      "list",
		Usage:     "print the names of one kind of object",
		ArgsUsage: fmt.Sprintf("%v", kinds()),
		Flags:     []cli.Flag{workspaceFlag, storeFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errUsage
			}
			list, ok := listers[c.Args().First()]
			if !ok {
				return fmt.Errorf("unknown kind %q, want one of %v", c.Args().First(), kinds())
			}
			names, err := list(context.Background(), g.Client, c.String("workspace"), c.String("store"))
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(g.Out, name)
			}
			return nil
		},
	}
}

func deleteCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:  "delete",
		Usage: "delete a catalog object",
		Subcommands: []cli.Command{
			{
				Name:      "workspace",
				ArgsUsage: "name",
				Flags:     []cli.Flag{recurseFlag},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errUsage
					}
					return g.Client.RemoveWorkspace(context.Background(), c.Args().First(), c.Bool("recurse"))
				},
			},
			{
				Name:      "datastore",
				ArgsUsage: "workspace:name",
				Flags:     []cli.Flag{recurseFlag},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errUsage
					}
					ws, name := restdata.SplitQualifiedName(c.Args().First())
					return g.Client.RemoveDataStore(context.Background(), ws, name, c.Bool("recurse"))
				},
			},
			{
				Name:      "coveragestore",
				ArgsUsage: "workspace:name",
				Flags: []cli.Flag{
					recurseFlag,
					cli.BoolFlag{
						Name:  "purge",
						Usage: "also delete the raster files",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errUsage
					}
					purge := restclient.PurgeNone
					if c.Bool("purge") {
						purge = restclient.PurgeAll
					}
					ws, name := restdata.SplitQualifiedName(c.Args().First())
					return g.Client.RemoveCoverageStore(context.Background(), ws, name, c.Bool("recurse"), purge)
				},
			},
			{
				Name:      "layer",
				ArgsUsage: "workspace:name",
				Flags:     []cli.Flag{storeFlag},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errUsage
					}
					return deleteLayer(g, c.Args().First(), c.String("store"))
				},
			},
			{
				Name:      "layergroup",
				ArgsUsage: "[workspace:]name",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errUsage
					}
					ws, name := restdata.SplitQualifiedName(c.Args().First())
					return g.Client.RemoveLayerGroup(context.Background(), ws, name)
				},
			},
			{
				Name:      "style",
				ArgsUsage: "[workspace:]name",
				Flags: []cli.Flag{
					cli.BoolFlag{
						Name:  "purge",
						Usage: "also delete the SLD file",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errUsage
					}
					ws, name := restdata.SplitQualifiedName(c.Args().First())
					return g.Client.RemoveStyle(context.Background(), ws, name, c.Bool("purge"))
				},
			},
		},
	}
}

// deleteLayer unpublishes a layer.  Without a store only the layer
// goes; with one, its feature type or coverage goes too.
func deleteLayer(g *gsconfig, qualified, store string) error {
	ctx := context.Background()
	ws, name := restdata.SplitQualifiedName(qualified)
	if store == "" {
		return g.Client.RemoveLayer(ctx, ws, name)
	}
	layer, err := g.Client.Layer(ctx, ws, name)
	if err != nil {
		return err
	}
	if layer.Type() == "RASTER" {
		return g.Client.UnpublishCoverage(ctx, ws, store, name)
	}
	return g.Client.UnpublishFeatureType(ctx, ws, store, name)
}

func reloadCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:  "reload",
		Usage: "reread the catalog and configuration from disk",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "reset",
				Usage: "only clear the resource caches",
			},
			cli.BoolFlag{
				Name:  "gwc",
				Usage: "also reload the GeoWebCache configuration",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			var err error
			if c.Bool("reset") {
				err = g.Client.Reset(ctx)
			} else {
				err = g.Client.Reload(ctx)
			}
			if err == nil && c.Bool("gwc") {
				err = g.Client.GWC().Reload(ctx)
			}
			return err
		},
	}
}
