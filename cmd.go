// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/danielhkuo/sitetime/cliparse"
	"github.com/danielhkuo/sitetime/db"
	"github.com/danielhkuo/sitetime/filestore"
	"github.com/danielhkuo/sitetime/logging"
	"github.com/danielhkuo/sitetime/store"
	"github.com/danielhkuo/sitetime/syncer"
)

type CLI struct {
	Config string `help:"Config file path." short:"c" type:"path"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP and realtime server."`
	Sync    SyncCmd    `cmd:"" help:"Inspect and drive synchronization."`
	APIKey  APIKeyCmd  `cmd:"" name:"apikey" help:"Manage API keys."`
	Version VersionCmd `cmd:"" help:"Print the version."`
}

// Globals is passed to every command's Run.
type Globals struct {
	Config string
	ctx    context.Context
	out    io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.out != nil {
		return g.out
	}
	return os.Stdout
}

// setup loads the configuration, initializes logging and opens the migrated
// database. The returned func closes the connection.
func (g *Globals) setup() (cliparse.Config, *gorm.DB, func(), error) {
	cfg, err := cliparse.Load(g.Config)
	if err != nil {
		return cliparse.Config{}, nil, nil, err
	}
	initLogging(cfg.Log)

	conn, err := db.Open(cfg.Database, logging.Logger())
	if err != nil {
		return cliparse.Config{}, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := db.Setup(g.ctx, conn); err != nil {
		closeDB()
		return cliparse.Config{}, nil, nil, err
	}
	return cfg, conn, closeDB, nil
}

type SyncCmd struct {
	Records SyncRecordsCmd `cmd:"" help:"Print unsynced records as JSON."`
	Mark    SyncMarkCmd    `cmd:"" help:"Mark a record as synced."`
	Photos  SyncPhotosCmd  `cmd:"" help:"Forward queued photos once."`
}

type SyncRecordsCmd struct{}

func (c *SyncRecordsCmd) Run(g *Globals) error {
	_, conn, closeDB, err := g.setup()
	if err != nil {
		return err
	}
	defer closeDB()

	records, err := store.New(conn).ListUnsyncedRecords(g.ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(g.stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

type SyncMarkCmd struct {
	ID string `arg:"" help:"Record id."`
}

func (c *SyncMarkCmd) Run(g *Globals) error {
	_, conn, closeDB, err := g.setup()
	if err != nil {
		return err
	}
	defer closeDB()

	ok, err := store.New(conn).MarkRecordSynced(g.ctx, c.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("record %q not found", c.ID)
	}
	fmt.Fprintf(g.stdout(), "marked %s synced\n", c.ID)
	return nil
}

type SyncPhotosCmd struct{}

func (c *SyncPhotosCmd) Run(g *Globals) error {
	cfg, _, closeDB, err := g.setup()
	if err != nil {
		return err
	}
	defer closeDB()

	files, err := filestore.Open(cfg.Uploads.Dir, cfg.Uploads.AllowedExtensions, cfg.Sync.Endpoint != "")
	if err != nil {
		return err
	}
	defer files.Close()

	photos, err := syncer.NewPhotos(cfg.Sync, files)
	if errors.Is(err, syncer.ErrDisabled) {
		return errors.New("sync.endpoint is not configured")
	}
	if err != nil {
		return err
	}

	res, err := photos.Run(g.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "processed %d, forwarded %d, failed %d\n", res.Processed, res.Forwarded, res.Failed)
	return nil
}

type APIKeyCmd struct {
	List   APIKeyListCmd   `cmd:"" help:"List API keys."`
	Add    APIKeyAddCmd    `cmd:"" help:"Add an API key."`
	Remove APIKeyRemoveCmd `cmd:"" help:"Remove an API key."`
}

type APIKeyListCmd struct{}

func (c *APIKeyListCmd) Run(g *Globals) error {
	_, conn, closeDB, err := g.setup()
	if err != nil {
		return err
	}
	defer closeDB()

	keys, err := store.New(conn).ListAPIKeys(g.ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintf(g.stdout(), "%s\t%s\n", k.Key, k.Description)
	}
	return nil
}

type APIKeyAddCmd struct {
	Key         string `arg:"" help:"Key value."`
	Description string `help:"What the key is for."`
}

func (c *APIKeyAddCmd) Run(g *Globals) error {
	_, conn, closeDB, err := g.setup()
	if err != nil {
		return err
	}
	defer closeDB()

	ok, err := store.New(conn).AddAPIKey(g.ctx, c.Key, c.Description)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("api key %q already exists", c.Key)
	}
	fmt.Fprintln(g.stdout(), "added")
	return nil
}

type APIKeyRemoveCmd struct {
	Key string `arg:"" help:"Key value."`
}

func (c *APIKeyRemoveCmd) Run(g *Globals) error {
	_, conn, closeDB, err := g.setup()
	if err != nil {
		return err
	}
	defer closeDB()

	ok, err := store.New(conn).RemoveAPIKey(g.ctx, c.Key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("api key %q not found", c.Key)
	}
	fmt.Fprintln(g.stdout(), "removed")
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintln(g.stdout(), version)
	return nil
}
