// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the sitetime API.

# Route Registration

NewRouter builds a chi router from its dependencies:

	h := router.NewRouter(router.Deps{Config: cfg, Store: s, Tokens: tokens, ...})

Every request passes through request IDs, panic recovery, access logging,
Prometheus metrics and CORS.

# Endpoints

Open:

	GET  /health    - Liveness
	GET  /ready     - Database reachable
	GET  /          - Banner
	GET  /metrics   - Prometheus exposition
	POST /login     - Worker name to token (rate limited per IP)
	POST /get_token - X-Api-Key to service token (rate limited per IP)

Token protected (Authorization: Bearer <token>):

	GET  /workers, /projects
	POST   /add_worker, /add_project, /add_record, /mark_synced
	DELETE /remove_worker, /remove_project, /remove_record
	GET  /records_all, /records/{project}, /records_unsynced
	POST /upload_photo, /process_photos
	GET  /project_photos/{project}, /download_photo/{path...}

Realtime:

	GET /ws - Websocket; accepts ?token= when no Authorization header is sent
*/
package router
