package runner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
)

const (
	defaultWaitTimeout  = 30 * time.Second
	defaultWaitInterval = 500 * time.Millisecond
)

// waitForService polls a URL until it returns the expected status code,
// the timeout passes or ctx ends.
func (r *Runner) waitForService(ctx context.Context, cfg *parser.WaitFor, resolve func(string) string) error {
	if cfg == nil {
		return nil
	}

	url := resolve(cfg.URL)
	timeout := durationMs(cfg.Timeout, defaultWaitTimeout)
	interval := durationMs(cfg.Interval, defaultWaitInterval)
	expectedStatus := cfg.Status
	if expectedStatus == 0 {
		expectedStatus = http.StatusOK
	}

	r.logger.Debug("waiting for service",
		zap.String("url", url), zap.Int("status", expectedStatus), zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	var lastStatus int
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := r.fetcher.Fetch(ctx, url, nil)
		if err == nil {
			lastStatus = resp.StatusCode
			if resp.StatusCode == expectedStatus {
				r.logger.Debug("service ready", zap.String("url", url), zap.Int("status", resp.StatusCode))
				return nil
			}
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastStatus != 0 {
				return fmt.Errorf("service %s not ready after %v: got status %d, expected %d",
					url, timeout, lastStatus, expectedStatus)
			}
			return fmt.Errorf("service %s not ready after %v: %w", url, timeout, lastErr)
		case <-ticker.C:
		}
	}
}

func durationMs(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
