// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/sitetime/cliparse"
	"github.com/danielhkuo/sitetime/filestore"
	"github.com/danielhkuo/sitetime/metrics"
)

// ErrDisabled is returned when no ingestion endpoint is configured.
var ErrDisabled = errors.New("photo forwarding is not configured")

// Queue is the pending photo queue.
type Queue interface {
	Pending() ([]filestore.PendingFile, error)
	OpenPending(filestore.PendingFile) (io.ReadCloser, error)
	RemovePending(filestore.PendingFile) error
}

// Result summarizes one forwarding pass.
type Result struct {
	Processed int `json:"processed_files"`
	Forwarded int `json:"forwarded"`
	Failed    int `json:"failed"`
}

// errRejected marks a response the endpoint answered but did not accept.
// It does not count against the circuit breaker.
type errRejected struct{ status int }

func (e errRejected) Error() string {
	return fmt.Sprintf("endpoint answered %d", e.status)
}

// Photos forwards queued uploads to the ingestion endpoint one at a time.
// A file is deleted from the queue only after the endpoint answers 200.
type Photos struct {
	queue    Queue
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[int]
}

// NewPhotos builds a forwarder from cfg. When cfg.OAuth.TokenURL is set,
// requests carry a client-credentials bearer token.
func NewPhotos(cfg cliparse.SyncConfig, queue Queue) (*Photos, error) {
	if cfg.Endpoint == "" {
		return nil, ErrDisabled
	}

	base := &http.Client{Timeout: cfg.Timeout}
	client := base
	if cfg.OAuth.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			TokenURL:     cfg.OAuth.TokenURL,
			Scopes:       cfg.OAuth.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = cc.Client(ctx)
		client.Timeout = cfg.Timeout
	}

	r := rate.Inf
	if cfg.Rate > 0 {
		r = rate.Limit(cfg.Rate)
	}

	return &Photos{
		queue:    queue,
		endpoint: cfg.Endpoint,
		client:   client,
		limiter:  rate.NewLimiter(r, 1),
		breaker:  newBreaker(),
	}, nil
}

func newBreaker() *gobreaker.CircuitBreaker[int] {
	return gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        "photo-ingest",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var rejected errRejected
			return err == nil || errors.As(err, &rejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Run makes one pass over the queue. A failed file stays queued and does
// not stop the pass. The returned error is only set when the queue itself
// cannot be read or ctx ends.
func (p *Photos) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	defer func() { metrics.SyncPassDuration.Observe(time.Since(start).Seconds()) }()

	var res Result
	files, err := p.queue.Pending()
	if err != nil {
		return res, err
	}

	for _, f := range files {
		if err := p.limiter.Wait(ctx); err != nil {
			return res, err
		}
		res.Processed++

		if err := p.forward(ctx, f); err != nil {
			res.Failed++
			var rejected errRejected
			if errors.As(err, &rejected) {
				metrics.RecordSyncPhoto("rejected")
			} else {
				metrics.RecordSyncPhoto("failed")
			}
			slog.Warn("failed to forward photo", "project", f.Project, "file", f.Name, "error", err)
			continue
		}

		if err := p.queue.RemovePending(f); err != nil {
			// delivered but still queued; it will be sent again next pass
			slog.Error("failed to dequeue forwarded photo", "file", f.Name, "error", err)
		}
		res.Forwarded++
		metrics.RecordSyncPhoto("forwarded")
	}

	slog.Info("photo forwarding pass complete",
		"processed", res.Processed,
		"forwarded", res.Forwarded,
		"failed", res.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Photos) forward(ctx context.Context, f filestore.PendingFile) error {
	body, contentType, err := p.encode(f)
	if err != nil {
		return err
	}

	_, err = p.breaker.Execute(func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := p.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.StatusCode, nil
		case resp.StatusCode >= http.StatusInternalServerError:
			return resp.StatusCode, fmt.Errorf("endpoint answered %d", resp.StatusCode)
		default:
			return resp.StatusCode, errRejected{status: resp.StatusCode}
		}
	})
	return err
}

func (p *Photos) encode(f filestore.PendingFile) ([]byte, string, error) {
	src, err := p.queue.OpenPending(f)
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("project", f.Project); err != nil {
		return nil, "", err
	}
	part, err := mw.CreateFormFile("file", f.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
