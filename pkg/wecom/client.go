// Copyright 2024 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wecom delivers messages to a WeCom group robot webhook.
package wecom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abcxyz/github-webhook-notifier/pkg/message"
)

const (
	// DefaultTimeout bounds the whole request, including reading the response.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of the response body is kept.
	maxResponseBytes = 1 << 20
)

// Result is the outcome of a single delivery attempt.
type Result struct {
	// Success is true when the robot accepted the message.
	Success bool

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Body is the raw response body, if any.
	Body string

	// ErrCode and ErrMsg come from the robot's JSON response. ErrCode is nil
	// when the response did not carry one.
	ErrCode *int
	ErrMsg  string

	// Reason describes why the delivery failed. It is empty on success.
	Reason string
}

// Diagnostic returns a single line describing the result, suitable for logs.
func (r *Result) Diagnostic() string {
	if r.Success {
		return fmt.Sprintf("message accepted (status %d)", r.StatusCode)
	}

	parts := []string{r.Reason}
	if r.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status %d", r.StatusCode))
	}
	if r.ErrCode != nil {
		parts = append(parts, fmt.Sprintf("errcode %d", *r.ErrCode))
	}
	if r.ErrMsg != "" {
		parts = append(parts, fmt.Sprintf("errmsg %q", r.ErrMsg))
	} else if r.Body != "" {
		parts = append(parts, fmt.Sprintf("body %q", r.Body))
	}
	return strings.Join(parts, ", ")
}

// robotResponse is the JSON body the robot replies with.
type robotResponse struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Client posts messages to a robot webhook. Use NewClient to create one.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// Option configures a Client.
type Option func(c *Client) *Client

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) *Client {
		c.httpClient = hc
		return c
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) *Client {
		c.timeout = d
		return c
	}
}

// WithUserAgent sets the User-Agent header on requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) *Client {
		c.userAgent = ua
		return c
	}
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		c = opt(c)
	}
	return c
}

// Send makes exactly one attempt to post the payload to webhookURL. It never
// returns an error: transport, HTTP and robot level failures are all reported
// through the returned Result. The URL carries the robot key, so it is never
// included in the result.
func (c *Client) Send(ctx context.Context, webhookURL string, payload *message.Payload) *Result {
	if webhookURL == "" {
		return &Result{Reason: "webhook url is empty"}
	}
	if payload == nil {
		return &Result{Reason: "no payload to send"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &Result{Reason: fmt.Sprintf("failed to encode payload: %s", err)}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		// The error text from url.Parse would echo the URL.
		return &Result{Reason: "failed to build request: invalid webhook url"}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Result{Reason: transportReason(err)}
	}
	defer resp.Body.Close()

	result := &Result{StatusCode: resp.StatusCode}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	result.Body = strings.TrimSpace(string(b))
	if err != nil {
		result.Reason = fmt.Sprintf("failed to read response: %s", transportReason(err))
		return result
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Reason = "unexpected response status"
		return result
	}

	// A 2xx body that is not JSON, or JSON without errcode, counts as accepted.
	var rr robotResponse
	if err := json.Unmarshal(b, &rr); err == nil {
		result.ErrCode = rr.ErrCode
		result.ErrMsg = rr.ErrMsg
		if rr.ErrCode != nil && *rr.ErrCode != 0 {
			result.Reason = "robot rejected message"
			return result
		}
	}

	result.Success = true
	return result
}

// transportReason describes a network error without the request URL, which
// *url.Error would otherwise include.
func transportReason(err error) string {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Sprintf("request failed: %s", uerr.Err)
	}
	return fmt.Sprintf("request failed: %s", err)
}
