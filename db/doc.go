// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the relational store and owns its schema.

# Opening

	conn, err := db.Open(cfg.Database, logging.Logger())
	if err != nil {
		return err
	}
	if err := db.Setup(ctx, conn); err != nil {
		return err
	}

Two drivers are supported: sqlite (default, pure Go) and postgres (lib/pq).

# Tables

  - workers: unique name
  - projects: unique name
  - photos: relative file path, owning project
  - records: time entries referencing a worker and a project
  - api_keys: pre-shared keys for service tokens

# Relationships

	project 1──* photo
	worker  1──* record
	project 1──* record

Foreign key constraints are not created. Deleting a worker or project
leaves its records in place.

# Seeding

When api_keys is empty, two placeholder keys are inserted.
*/
package db
