// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"fmt"
	"github.com/diffeo/go-geoserver/manifest"
	"github.com/urfave/cli"
)

func applyCommand(g *gsconfig) cli.Command {
	return cli.Command{
		Name:      "apply",
		Usage:     "create or update everything a manifest describes",
		ArgsUsage: "manifest.yaml",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "check",
				Usage: "only validate the manifest",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errUsage
			}
			m, err := manifest.Load(c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool("check") {
				return m.Validate()
			}
			report, err := m.Apply(context.Background(), g.Client, g.Log)
			for _, result := range report {
				name := result.Kind
				if result.Name != "" {
					name += " " + result.Name
				}
				if result.Err != nil {
					fmt.Fprintf(g.Out, "%s\t%s: %v\n", result.Action, name, result.Err)
				} else {
					fmt.Fprintf(g.Out, "%s\t%s\n", result.Action, name)
				}
			}
			return err
		},
	}
}
