// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse loads and validates the service configuration.

# Loading

	cfg, err := cliparse.Load(path)

Layers, later ones winning:

 1. built-in defaults
 2. YAML file (path, or ./sitetime.yaml when path is empty and it exists)
 3. environment variables

LoadDotEnv reads a .env file into the environment first when one exists.

# Environment

Any key can be set with the SITETIME_ prefix, using a double underscore for
nesting: SITETIME_SYNC__ENDPOINT sets sync.endpoint. List values are comma
separated. These plain names are also honoured:

	PORT, DATABASE_URL, DATABASE_TYPE, JWT_SECRET, UPLOAD_FOLDER, LOG_LEVEL

# Config Fields

  - server.port (5000), server.shutdown_timeout (10s)
  - database.driver (sqlite|postgres), database.url (work_records.db)
  - auth.secret (required, at least 16 characters), auth.login_rate_limit (20/min)
  - uploads.dir (uploads), uploads.max_size (16MB), uploads.allowed_extensions
  - cors.allowed_origins (*)
  - sync.endpoint (empty disables forwarding), sync.timeout, sync.rate
  - sync.oauth.token_url, client_id, client_secret, scopes
  - log.level (info), log.format (json|console)
*/
package cliparse
