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

package api

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/verdantlabs/plantgate/pkg/auth"
	"github.com/verdantlabs/plantgate/pkg/cache"
	"github.com/verdantlabs/plantgate/pkg/config"
	"github.com/verdantlabs/plantgate/pkg/defaults"
	"github.com/verdantlabs/plantgate/pkg/gateway"
	"github.com/verdantlabs/plantgate/pkg/logging"
	"github.com/verdantlabs/plantgate/pkg/plantnet"
	"github.com/verdantlabs/plantgate/pkg/ratelimit"
	"github.com/verdantlabs/plantgate/pkg/server"
	"github.com/verdantlabs/plantgate/pkg/upload"
)

const (
	name           = "plantgate-server"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/verdantlabs/plantgate/pkg/api.version=1.0.0"
	version = versionDefault
)

// Serve starts the gateway and blocks until shutdown. It loads
// configuration, assembles the identification pipeline, and handles
// graceful shutdown. configPath may be empty.
func Serve(ctx context.Context, configPath string) error {
	logging.SetDefaultStructuredLogger(name, version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slog.Info("starting",
		"name", name,
		"version", version,
		"cacheTTL", cfg.CacheTTL.String(),
		"rateWindow", cfg.RateWindow.String(),
		"rateLimit", cfg.RateLimit,
		"resultLanguage", cfg.ResultLanguage,
	)

	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	results := cache.New(cfg.CacheTTL, nil)
	upstream := plantnet.New(cfg.ProviderEndpoint, cfg.ProviderAPIKey,
		plantnet.WithLanguage(cfg.ResultLanguage),
		plantnet.WithTimeout(cfg.UpstreamTimeout),
		plantnet.WithRetries(cfg.UpstreamRetries),
	)

	pipeline := gateway.New(
		auth.NewVerifier(cfg.JWTSecret, nil),
		limiter,
		upload.NewValidator(defaults.MaxImages, defaults.MaxUploadBytes),
		results,
		upstream,
		nil,
	)

	r := map[string]http.HandlerFunc{
		"/api/identify": pipeline.HandleIdentify,
	}

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandlers(r),
		server.WithAddress(cfg.Address, cfg.Port),
	)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Background sweeps for expired cache entries and stale rate windows
	g.Go(func() error {
		results.Run(gctx, defaults.ResultCacheSweepInterval)
		return nil
	})
	g.Go(func() error {
		limiter.Run(gctx, defaults.RateWindowSweepInterval)
		return nil
	})

	g.Go(func() error {
		return s.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
