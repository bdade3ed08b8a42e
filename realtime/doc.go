// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime pushes change events to connected websocket clients.

Handlers call Bus.Notify after a mutation commits. A forwarder started with
Bus.Forward hands each event to the Hub, which writes it to every client as

	{"type": "update_workers", "data": ["Alice", "Bob"]}

Delivery is best effort. There is no acknowledgement, no replay for clients
that connect later and no ordering guarantee relative to HTTP reads. Slow
clients are disconnected rather than buffered.

On connect every client receives a "message" event with
{"data": "Connected to server."}. Clients never send application messages.
*/
package realtime
