// Copyright (c) 2026, Verdant Labs.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/verdantlabs/plantgate/pkg/api"
	"github.com/verdantlabs/plantgate/pkg/auth"
)

const versionDefault = "dev"

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "plantgate",
		Usage:   "plant identification gateway",
		Version: version,
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
			versionCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to optional YAML config file",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return api.Serve(ctx, c.String("config"))
		},
	}
}

// tokenCommand mints a caller credential. Token issuance is normally
// external; this exists for development and testing.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer credential for a caller",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "subject",
				Aliases:  []string{"s"},
				Usage:    "subject identifier embedded in the credential",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "credential lifetime",
				Value: time.Hour,
			},
			&cli.StringFlag{
				Name:    "secret",
				Usage:   "shared HMAC secret",
				Sources: cli.EnvVars("JWT_SECRET_KEY"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			secret := c.String("secret")
			if secret == "" {
				return fmt.Errorf("a secret is required (flag --secret or env JWT_SECRET_KEY)")
			}
			token, err := auth.Sign(secret, c.String("subject"), c.Duration("ttl"), nil)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print build information",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Printf("plantgate %s (commit %s, built %s)\n", version, commit, date)
			return nil
		},
	}
}
