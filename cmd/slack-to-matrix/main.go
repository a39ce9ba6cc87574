// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command slack-to-matrix is a stateless webhook translator: it accepts
// Slack-format notification payloads, converts the block/attachment tree
// and mrkdwn text into plain text plus safe HTML, and relays the result
// to the destination encoded in the request path (or straight to a
// Matrix room when configured with homeserver credentials).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.mau.fi/util/exerrors"

	"github.com/aiku/slack-to-matrix/pkg/server"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.StringP("config", "c", "", "path to the YAML config file")
	version := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *version {
		fmt.Printf("slack-to-matrix %s (%s) built at %s\n", Tag, Commit, BuildTime)
		return
	}

	cfg := exerrors.Must(server.LoadConfig(*configPath))
	log := exerrors.Must(cfg.Logging.Compile())
	srv := exerrors.Must(server.New(cfg, *log))

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
