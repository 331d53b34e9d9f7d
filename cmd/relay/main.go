// Copyright (c) 2026-present the Firefly Framework authors
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

// Command relay runs the filtering reverse proxy: requests pass an
// ordered, pattern-gated filter chain before being forwarded to the
// configured upstream.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/deep-rent/nexus/app"

	"github.com/fireflyframework/pyfly-sub003/internal/chain"
	"github.com/fireflyframework/pyfly-sub003/internal/config"
	"github.com/fireflyframework/pyfly-sub003/internal/filters"
	"github.com/fireflyframework/pyfly-sub003/internal/health"
	"github.com/fireflyframework/pyfly-sub003/internal/logger"
	"github.com/fireflyframework/pyfly-sub003/internal/proxy"
	"github.com/fireflyframework/pyfly-sub003/internal/rules"
	"github.com/fireflyframework/pyfly-sub003/internal/server"
	"github.com/fireflyframework/pyfly-sub003/internal/token"
)

// version is stamped by the build.
var version = "dev"

func main() {
	path := flag.String(
		"config",
		"",
		"Path to the YAML configuration file",
	)
	ver := flag.Bool("v", false, "Print the version and exit")
	flag.Parse()

	if *ver {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	runnable := func(ctx context.Context) error {
		fwd, err := proxy.New(cfg.Upstream)
		if err != nil {
			return fmt.Errorf("proxy: %w", err)
		}

		checks := health.NewRegistry()
		checks.Add("upstream", health.NewUpstream(fwd.Target()))

		opts := filters.Options{
			Logger: log,
			Secret: cfg.Upstream.Secret,
			Gates:  cfg.Filters,
		}
		if cfg.Token.Keys != (config.Keys{}) {
			keys, err := token.NewProvider(ctx, cfg.Token.Keys)
			if err != nil {
				return fmt.Errorf("key provider: %w", err)
			}
			opts.Parser = token.NewParserWithKeys(keys,
				token.WithIssuer(cfg.Token.Issuer),
				token.WithAudience(cfg.Token.Audience),
				token.WithLeeway(time.Duration(cfg.Token.Leeway)*time.Second),
			)
			checks.Add("keys", health.CheckerFunc(func(ctx context.Context) error {
				_, err := keys.Keys(ctx)
				return err
			}))
		}
		if len(cfg.Rules) > 0 {
			engine, err := rules.Compile(cfg.Rules)
			if err != nil {
				return fmt.Errorf("rules: %w", err)
			}
			opts.Engine = engine
		}

		registry := chain.NewRegistry()
		if err := filters.Register(registry, opts); err != nil {
			return fmt.Errorf("filters: %w", err)
		}

		srv := server.New(
			cfg.Server,
			server.NewDispatcher(registry.Build(fwd.Forward), log),
			checks,
		)

		errs := make(chan error, 1)
		go func() { errs <- srv.Start() }()

		log.Info("relay started",
			"version", version,
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"upstream", cfg.Upstream.Target,
			"filters", registry.Len(),
		)

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			10*time.Second,
		)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}

	if err := app.Run(runnable, app.WithLogger(log)); err != nil {
		log.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
