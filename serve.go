// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/sitetime/auth"
	"github.com/danielhkuo/sitetime/cliparse"
	"github.com/danielhkuo/sitetime/filestore"
	"github.com/danielhkuo/sitetime/handlers"
	"github.com/danielhkuo/sitetime/logging"
	"github.com/danielhkuo/sitetime/realtime"
	"github.com/danielhkuo/sitetime/router"
	"github.com/danielhkuo/sitetime/store"
	"github.com/danielhkuo/sitetime/supervisor"
	"github.com/danielhkuo/sitetime/syncer"
)

func initLogging(cfg cliparse.LogConfig) {
	logging.Init(logging.Config{Level: cfg.Level, Format: cfg.Format})
	slog.SetDefault(logging.NewSlogLogger())
}

type ServeCmd struct{}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, conn, closeDB, err := g.setup()
	if err != nil {
		return err
	}
	defer closeDB()

	tokens, err := auth.NewManager(cfg.Auth.Secret)
	if err != nil {
		return err
	}

	files, err := filestore.Open(cfg.Uploads.Dir, cfg.Uploads.AllowedExtensions, cfg.Sync.Endpoint != "")
	if err != nil {
		return err
	}
	defer files.Close()

	var photos handlers.PhotoForwarder
	fwd, err := syncer.NewPhotos(cfg.Sync, files)
	switch {
	case err == nil:
		photos = fwd
	case errors.Is(err, syncer.ErrDisabled):
		slog.Info("photo forwarding disabled")
	default:
		return err
	}

	bus := realtime.NewBus(slog.Default())
	defer bus.Close()
	hub := realtime.NewHub()

	srv := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router.NewRouter(router.Deps{
			Config:   cfg,
			Store:    store.New(conn),
			Tokens:   tokens,
			Files:    files,
			Notifier: bus,
			Hub:      hub,
			Photos:   photos,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.New(slog.Default(), cfg.Server.ShutdownTimeout)
	tree.AddRealtime(supervisor.Func{Name: "hub", Run: hub.Run})
	tree.AddRealtime(supervisor.Func{Name: "bus-forwarder", Run: func(ctx context.Context) error {
		return bus.Forward(ctx, hub)
	}})
	tree.AddAPI(supervisor.NewHTTPService(srv, cfg.Server.ShutdownTimeout))

	slog.Info("listening", "port", cfg.Server.Port, "database", cfg.Database.Driver, "uploads", cfg.Uploads.Dir, "pending_queue", files.Queueing())
	err = tree.Serve(g.ctx)
	if g.ctx.Err() != nil {
		slog.Info("server stopped")
		return nil
	}
	return err
}
