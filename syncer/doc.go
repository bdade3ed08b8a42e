// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package syncer forwards queued photo uploads to an external ingestion
endpoint.

A pass is triggered manually (POST /process_photos or "sitetime sync
photos"); nothing runs in the background. Each queued file is POSTed as
multipart field "file", with the project name in field "project". Only a
200 answer removes the file from the queue. Failed files stay queued for the
next pass.

Outbound calls are rate limited (sync.rate per second) and wrapped in a
circuit breaker that opens after five consecutive transport or 5xx
failures. Non-200 answers below 500 count as rejections and do not trip it.
*/
package syncer
