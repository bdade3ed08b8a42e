// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package logging configures the process-wide zerolog logger.

Call sites elsewhere use log/slog; main installs the bridge once:

	logging.Init(logging.Config{Level: "info", Format: "json"})
	slog.SetDefault(logging.NewSlogLogger())

GormLogger routes gorm's SQL tracing through the same logger.
*/
package logging
