// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the sitetime command.

sitetime is the backend for a construction-site time tracking app: workers
log shifts against projects, attach site photos, and an office tool pulls
unsynced records. Connected clients receive change notifications over a
websocket.

# Starting the Server

	JWT_SECRET=... sitetime serve

serve is the default command. Configuration comes from defaults, an optional
YAML file (-c, or sitetime.yaml when present) and the environment
(SITETIME_SECTION__KEY, plus PORT, DATABASE_URL, DATABASE_TYPE, JWT_SECRET,
UPLOAD_FOLDER and LOG_LEVEL). A .env file is loaded first if present.

# Other Commands

	sitetime sync records        - Print unsynced records
	sitetime sync mark <id>      - Mark a record synced
	sitetime sync photos         - Forward queued photos once
	sitetime apikey list
	sitetime apikey add <key> [--description=...]
	sitetime apikey remove <key>
	sitetime version

# Architecture

  - handlers: HTTP request handlers
  - router: chi routes and middleware stack
  - middleware: logging, metrics, bearer auth, JSON helpers
  - auth: JWT issue and validation
  - store: gorm-backed persistence operations
  - db: connection, schema, seeding
  - filestore: photo files and the pending upload queue
  - syncer: photo forwarding to the ingestion endpoint
  - realtime: websocket hub and event bus
  - supervisor: suture tree for long-running services
  - metrics, logging, cliparse: ambient concerns

See package documentation for each component.
*/
package main
