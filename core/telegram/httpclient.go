package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/m3rciful/filmbot/core/logger"
	"github.com/m3rciful/filmbot/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 2 * time.Second

	// getUpdates holds the connection for the long-poll timeout, so the
	// header deadline must outlast it.
	responseHeaderSlack = 5 * time.Second
)

// HTTPClientOptions tunes the Bot API client. Zero values use the defaults.
type HTTPClientOptions struct {
	LongPollTimeout time.Duration
	Retries         int
	Backoff         time.Duration
	// Transport replaces the pooled transport; tests inject fakes here.
	Transport http.RoundTripper
}

// BuildHTTPClient returns an HTTP client for Bot API calls that retries
// transient dial and timeout failures.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	pollTimeout := opts.LongPollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultLongPollTimeout
	}
	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       defaultIdleConnTimeout,
			TLSHandshakeTimeout:   defaultTLSHandshake,
			ResponseHeaderTimeout: pollTimeout + responseHeaderSlack,
			ExpectContinueTimeout: time.Second,
		}
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = defaultRetryAttempts
	}
	backoff := opts.Backoff
	if backoff < 0 {
		backoff = 0
	} else if backoff == 0 {
		backoff = defaultRetryBackoff
	}

	timeout := defaultClientTimeout
	if floor := pollTimeout + 2*responseHeaderSlack; timeout < floor {
		timeout = floor
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			base:       base,
			maxRetries: retries,
			backoff:    backoff,
		},
	}
}

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempts := t.maxRetries + 1
	// The request path carries the bot token; only the method name is logged.
	method := path.Base(req.URL.Path)
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		currReq := req
		if attempt > 1 {
			currReq = req.Clone(req.Context())
			if req.Body != nil && req.Body != http.NoBody {
				if req.GetBody == nil {
					return nil, lastErr
				}
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				currReq.Body = body
			}
		}

		resp, err := t.base.RoundTrip(currReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}

		delay := t.backoff * time.Duration(attempt)
		logger.Debug(req.Context(), "tg.http", "api.retry",
			slog.String("method", method),
			slog.Int("attempt", attempt),
			slog.String("error_kind", netutil.Classify(err)),
			slog.Duration("backoff", delay),
		)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}
