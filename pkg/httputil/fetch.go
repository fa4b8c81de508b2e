package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/observability"
)

// maxBody caps a downloaded file. The World Bank CSV files are well below
// one megabyte.
const maxBody = 32 << 20

// Option configures [Fetch].
type Option func(*fetchOptions)

type fetchOptions struct {
	attempts int
	delay    time.Duration
}

// WithBackoff overrides the number of attempts and the first retry delay.
func WithBackoff(attempts int, delay time.Duration) Option {
	return func(o *fetchOptions) {
		o.attempts = attempts
		o.delay = delay
	}
}

// Fetch downloads url and returns the response body.
func Fetch(ctx context.Context, client *http.Client, url string, opts ...Option) ([]byte, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	o := fetchOptions{attempts: DefaultAttempts, delay: DefaultDelay}
	for _, opt := range opts {
		opt(&o)
	}

	var body []byte
	err := Retry(ctx, o.attempts, o.delay, func() error {
		var err error
		body, err = get(ctx, client, url)
		return err
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
	}
	return body, nil
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s not found", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "GET %s: %s", url, resp.Status)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.New(errors.ErrCodeNetwork, "GET %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read body of %s: %w", url, err)}
	}
	if len(body) > maxBody {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is larger than %d bytes", url, maxBody)
	}
	return body, nil
}
