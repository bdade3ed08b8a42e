// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitetime_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitetime_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Realtime
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitetime_ws_connections_active",
			Help: "Current number of connected realtime clients",
		},
	)

	WSEventsBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitetime_ws_events_broadcast_total",
			Help: "Total number of events broadcast to realtime clients",
		},
		[]string{"event"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitetime_ws_messages_dropped_total",
			Help: "Messages dropped because a client or the hub buffer was full",
		},
	)

	// Sync
	SyncPhotosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitetime_sync_photos_total",
			Help: "Photo forwarding attempts by outcome",
		},
		[]string{"result"},
	)

	SyncPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitetime_sync_pass_duration_seconds",
			Help:    "Duration of one photo forwarding pass",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	// Uploads
	PhotoUploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitetime_photo_upload_bytes_total",
			Help: "Total bytes of stored photo uploads",
		},
	)
)

// RecordAPIRequest records one served request. route is the matched route
// pattern, not the raw path.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordBroadcast counts an event fanned out to clients.
func RecordBroadcast(event string) {
	WSEventsBroadcast.WithLabelValues(event).Inc()
}

// RecordSyncPhoto counts one forwarding attempt; result is "forwarded",
// "failed" or "rejected".
func RecordSyncPhoto(result string) {
	SyncPhotosTotal.WithLabelValues(result).Inc()
}
