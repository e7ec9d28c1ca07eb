// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil executes GitHub API requests with optional backoff on
// rate limiting.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests override
// it to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps a server-supplied Retry-After delay.
var MaxRetryAfter = time.Minute

// DoWithRetry executes req. With maxRetries <= 0 the response is returned
// as-is, whatever its status. With maxRetries > 0 an HTTP 429 is retried
// up to maxRetries times, waiting for the Retry-After header when present
// and otherwise RetryBaseDelay doubled per attempt. Each wait is reported
// on w when w is not nil.
//
// If ctx is cancelled during a wait DoWithRetry returns ctx.Err(). After
// the last retry the final 429 response is returned for the caller to
// classify.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, w io.Writer) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(resp, attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if w != nil {
			fmt.Fprintf(w, "  rate limited, retrying in %v (attempt %d/%d)\n", wait, attempt+1, maxRetries)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoff(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return min(time.Duration(secs)*time.Second, MaxRetryAfter)
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
