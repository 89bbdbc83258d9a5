package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Mid-D-Man/SubashaVentures-sub003/internal/interaction"
	logpkg "github.com/Mid-D-Man/SubashaVentures-sub003/pkg/log"
)

// DefaultTimeout bounds a delivery attempt when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxDiagnosticBytes caps how much of an error response body is carried
// into the returned error.
const maxDiagnosticBytes = 512

// Options configure a Client.
type Options struct {
	// IngestURL is the batch ingestion endpoint.
	IngestURL string
	// Timeout bounds one delivery attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
	Logger     logpkg.Logger
}

// Client posts batches to the ingestion endpoint.
type Client struct {
	url     string
	timeout time.Duration
	httpc   *http.Client
	logger  logpkg.Logger
}

// New returns a Client for the given endpoint.
func New(opts Options) (*Client, error) {
	if opts.IngestURL == "" {
		return nil, errors.New("delivery: IngestURL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Client{
		url:     opts.IngestURL,
		timeout: timeout,
		httpc:   httpc,
		logger:  logger.WithComponent("delivery"),
	}, nil
}

// batchPayload is the wire form of one delivery.
type batchPayload struct {
	Interactions   []interaction.Event `json:"interactions"`
	BatchTimestamp time.Time           `json:"batchTimestamp"`
	BatchID        string              `json:"batchId"`
}

// Deliver posts the batch with the given bearer token. Any 2xx status
// is success. Transport errors and non-2xx statuses return an error;
// the Client never retries and never touches the pending queue.
func (c *Client) Deliver(ctx context.Context, batch interaction.Batch, accessToken string) error {
	body, err := json.Marshal(batchPayload{
		Interactions:   batch.Events,
		BatchTimestamp: batch.SnapshotAt,
		BatchID:        batch.ID,
	})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBytes))
		excerpt = bytes.TrimSpace(excerpt)
		if len(excerpt) > 0 {
			return fmt.Errorf("ingest endpoint returned %s: %s", resp.Status, excerpt)
		}
		return fmt.Errorf("ingest endpoint returned %s", resp.Status)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	c.logger.Debug("batch delivered",
		logpkg.String("batch_id", batch.ID),
		logpkg.Int("events", len(batch.Events)),
		logpkg.Int64("dur_ms", time.Since(start).Milliseconds()))
	return nil
}
