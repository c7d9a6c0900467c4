// Package connectivity answers whether the device currently has outbound
// network reachability.
package connectivity

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is a HEAD-friendly, highly available check target.
// A 204 response counts as success.
const DefaultEndpoint = "https://clients3.google.com/generate_204"

// DefaultTimeout bounds a single reachability attempt.
const DefaultTimeout = 5 * time.Second

// Probe issues one bounded HEAD request per call. It never retries and
// never returns an error: any failure reads as offline.
type Probe struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	log      *zap.Logger
}

// New constructs a probe. Empty endpoint and non-positive timeout fall back
// to the defaults.
func New(endpoint string, timeout time.Duration, log *zap.Logger) *Probe {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Probe{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{},
		log:      log,
	}
}

// Online reports outbound reachability. A failed, timed-out or non-2xx
// response counts as offline.
func (p *Probe) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.endpoint, nil)
	if err != nil {
		p.log.Debug("connectivity: bad endpoint", zap.String("endpoint", p.endpoint), zap.Error(err))
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug("connectivity: request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.log.Debug("connectivity: non-success status", zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}
