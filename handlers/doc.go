// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the sitetime API.

# Handler Types

Each handler is a struct over the store and whatever else it needs:

  - AuthHandler: name login and API key exchange
  - EntityHandler: worker and project lists
  - RecordHandler: time records and their sync flag
  - PhotoHandler: photo upload, listing and download
  - SyncHandler: manual photo forwarding pass

	records := handlers.NewRecordHandler(store, notifier)

# Notifications

Mutations call Notifier.Notify after the change is committed. In the server
the notifier is a realtime.Bus, so connected websocket clients see
update_workers, update_projects, new_record, update_records and
update_project_photos events.

# Errors

Domain rejections (unknown worker, duplicate name, missing field) are 4xx
with a message clients display as is. Storage failures are logged and
returned as a generic 500.
*/
package handlers
