// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package supervisor runs the long-lived parts of the server under a suture
tree.

	tree := supervisor.New(slog.Default(), cfg.Server.ShutdownTimeout)
	tree.AddRealtime(supervisor.Func{Name: "hub", Run: hub.Run})
	tree.AddAPI(supervisor.NewHTTPService(srv, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)

Supervisor events (restarts, backoff, timeouts) are logged through slog via
sutureslog.
*/
package supervisor
