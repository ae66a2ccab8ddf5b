package httpx

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusError carries a non-2xx response status through the error chain so
// retry decisions can be made without keeping the response body around.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

func IsRetryableHTTPStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() || netErr.Temporary() {
			return true
		}
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

func JitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

// RetryLinearly runs fn up to attempts times, sleeping step, 2*step, 3*step...
// between tries. Only retryable errors are retried; anything else is returned
// immediately. Used for single-record operations against external stores.
func RetryLinearly(ctx context.Context, attempts int, step time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryableError(lastErr) {
			return lastErr
		}
		if i < attempts-1 {
			select {
			case <-time.After(JitterSleep(time.Duration(i+1) * step)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
