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

// Package notifier turns one GitHub event into one robot message delivery.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abcxyz/pkg/logging"

	"github.com/abcxyz/github-webhook-notifier/pkg/events"
	"github.com/abcxyz/github-webhook-notifier/pkg/message"
	"github.com/abcxyz/github-webhook-notifier/pkg/wecom"
)

var (
	// ErrConfig is returned for missing or invalid configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrDelivery is returned for a failed delivery when the config asks
	// for delivery failures to be fatal.
	ErrDelivery = errors.New("failed to deliver notification")
)

// Status describes what a run did.
type Status string

const (
	StatusDelivered   Status = "delivered"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
	StatusUnknownKind Status = "unknown_kind"
)

// Outcome is the result of a run that did not return an error.
type Outcome struct {
	Status Status

	// Kind is set when the event name is a known kind.
	Kind events.Kind

	// Result is set when a delivery was attempted.
	Result *wecom.Result
}

// Sender delivers a payload. *wecom.Client implements it.
type Sender interface {
	Send(ctx context.Context, webhookURL string, payload *message.Payload) *wecom.Result
}

// Notifier runs a single notification.
type Notifier struct {
	cfg    Config
	sender Sender
}

// New creates a Notifier. The config is copied.
func New(cfg Config, sender Sender) *Notifier {
	return &Notifier{
		cfg:    cfg,
		sender: sender,
	}
}

// Run reads the event, and if its kind is accepted, formats and delivers it.
// Unknown and filtered kinds are not errors. Configuration, parse and missing
// field errors are returned without any delivery attempt.
func (n *Notifier) Run(ctx context.Context) (*Outcome, error) {
	logger := logging.FromContext(ctx)

	if err := n.cfg.Validate(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(n.cfg.EventPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read event file: %w", events.ErrParse, err)
	}
	if err := events.CheckJSON(raw); err != nil {
		return nil, err
	}

	accepted, unknown := n.cfg.AcceptedKinds()
	if len(unknown) > 0 {
		logger.WarnContext(ctx, "ignoring unknown event types in configuration",
			"unknown", unknown)
	}
	logger.InfoContext(ctx, "processing event",
		"event_name", n.cfg.EventName,
		"accepted", accepted.String())

	kind, ok := events.ParseKind(n.cfg.EventName)
	if !ok {
		logger.WarnContext(ctx, "unhandled event type, nothing to send",
			"event_name", n.cfg.EventName)
		return &Outcome{Status: StatusUnknownKind}, nil
	}

	if !accepted.Contains(kind) {
		logger.InfoContext(ctx, "event type is not in the configured list, skipping",
			"event_name", kind)
		return &Outcome{Status: StatusSkipped, Kind: kind}, nil
	}

	ev, err := events.Decode(kind, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", kind, err)
	}

	payload, err := message.Format(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to format %s event: %w", kind, err)
	}
	logger.DebugContext(ctx, "formatted message",
		"msgtype", payload.MsgType,
		"content", payload.Content())

	result := n.sender.Send(ctx, n.cfg.WebhookURL, payload)
	if result.Success {
		logger.InfoContext(ctx, "notification sent",
			"event_name", kind,
			"status", result.StatusCode)
		return &Outcome{Status: StatusDelivered, Kind: kind, Result: result}, nil
	}

	logger.ErrorContext(ctx, "failed to send notification",
		"event_name", kind,
		"reason", result.Reason,
		"status", result.StatusCode,
		"body", result.Body)

	outcome := &Outcome{Status: StatusFailed, Kind: kind, Result: result}
	if n.cfg.FailOnDeliveryError {
		return outcome, fmt.Errorf("%w: %s", ErrDelivery, result.Diagnostic())
	}
	return outcome, nil
}
