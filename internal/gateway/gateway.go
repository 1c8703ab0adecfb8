// Package gateway talks to the external payment processors. Processor
// answers are reported as a Result; an error means the gateway itself is
// misconfigured.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("processor not configured")

// Failure classifies why an initiation did not go through.
type Failure string

const (
	FailureNone      Failure = ""
	FailureRejected  Failure = "rejected"
	FailureTransport Failure = "transport"
	FailureTimeout   Failure = "timeout"
)

// Result is what a processor said about an initiation request.
type Result struct {
	Accepted       bool
	ExternalID     string
	ExternalStatus string
	HTTPStatus     int
	Request        []byte
	RawBody        []byte
	CheckoutURL    string
	Failure        Failure
	// Detail is a human readable reason for a failed call.
	Detail string
}

const maxResponseBytes = 1 << 20

// client is the HTTP plumbing shared by the processor adapters.
type client struct {
	http    *http.Client
	baseURL string
	token   string
	timeout time.Duration
}

func newClient(baseURL, token string, timeout time.Duration) client {
	return client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
	}
}

// call sends payload (if any) as JSON and returns the raw exchange. Only
// failures to reach the processor are reported through Result.Failure.
func (c client) call(ctx context.Context, method, path string, payload any) Result {
	var res Result

	var body io.Reader

	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			res.Failure = FailureTransport
			res.Detail = fmt.Sprintf("encoding request: %v", err)

			return res
		}

		res.Request = b
		body = bytes.NewReader(b)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		res.Failure = FailureTransport
		res.Detail = fmt.Sprintf("creating request: %v", err)

		return res
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		res.Failure = classify(err)
		res.Detail = err.Error()

		return res
	}
	defer resp.Body.Close()

	res.HTTPStatus = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		res.Failure = classify(err)
		res.Detail = fmt.Sprintf("reading response: %v", err)

		return res
	}

	res.RawBody = raw

	return res
}

func classify(err error) Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	return FailureTransport
}

func success(status int) bool {
	return status >= 200 && status < 300
}
