// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - LoginRequest: name
  - WorkerRequest: worker
  - ProjectRequest: project
  - RecordIDRequest: id
  - NewRecord: the nine required record fields plus optional id and synced

# Response Types

Mutations answer with an explicit status field next to the HTTP code:

  - StatusResponse: status, message
  - WorkersResponse / ProjectsResponse: status plus the full current list
  - UploadPhotoResponse: status, filename (relative path)
  - TokenResponse: token
  - ErrorResponse: status ("error"), error, message

# Domain Types

  - Record: a time entry with worker and project resolved to names
  - APIKey: key and description

# Realtime Payloads

  - ProjectPhotosEvent: project, photos
  - RecordRemovedEvent: id
  - GreetingEvent: data
*/
package models
