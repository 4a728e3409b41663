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

package notifier

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/abcxyz/pkg/cli"

	"github.com/abcxyz/github-webhook-notifier/pkg/events"
)

// DefaultEventTypes is the accepted set when none is configured.
const DefaultEventTypes = "push,pull_request,issues,release"

// Config is read once at startup and passed by value to the Notifier.
type Config struct {
	// WebhookURL is the robot webhook, including its key. It may also be a
	// Secret Manager reference, which is resolved before the Notifier runs.
	WebhookURL string

	// EventTypes is the comma separated list of accepted event kinds.
	EventTypes string

	// EventPath is the file holding the event payload.
	EventPath string

	// EventName is the kind of the event in EventPath.
	EventName string

	// FailOnDeliveryError makes a failed delivery an error for the caller.
	// When false, a failed delivery is only logged.
	FailOnDeliveryError bool
}

// Validate validates the config after load.
func (cfg *Config) Validate() error {
	var merr error

	if cfg.WebhookURL == "" {
		merr = errors.Join(merr, fmt.Errorf("INPUT_WECHAT_WEBHOOK_URL is required"))
	}

	if cfg.EventPath == "" {
		merr = errors.Join(merr, fmt.Errorf("GITHUB_EVENT_PATH is required"))
	}

	if cfg.EventName == "" {
		merr = errors.Join(merr, fmt.Errorf("GITHUB_EVENT_NAME is required"))
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrConfig, merr)
	}
	return nil
}

// AcceptedKinds parses EventTypes. Unknown names are returned so they can be
// reported.
func (cfg *Config) AcceptedKinds() (events.KindSet, []string) {
	return events.ParseKindSet(cfg.EventTypes)
}

// LogValue implements slog.LogValuer and keeps the webhook URL out of logs.
func (cfg Config) LogValue() slog.Value {
	webhook := ""
	if cfg.WebhookURL != "" {
		webhook = "<redacted>"
	}
	return slog.GroupValue(
		slog.String("webhook_url", webhook),
		slog.String("event_types", cfg.EventTypes),
		slog.String("event_path", cfg.EventPath),
		slog.String("event_name", cfg.EventName),
		slog.Bool("fail_on_delivery_error", cfg.FailOnDeliveryError),
	)
}

// ToFlags binds the config to the give [cli.FlagSet] and returns it.
func (cfg *Config) ToFlags(set *cli.FlagSet) *cli.FlagSet {
	f := set.NewSection("NOTIFY OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "webhook-url",
		Target:  &cfg.WebhookURL,
		EnvVar:  "INPUT_WECHAT_WEBHOOK_URL",
		Example: "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=...",
		Usage: `The WeCom group robot webhook URL. A value of the form ` +
			`sm://projects/*/secrets/*/versions/* is read from Secret Manager.`,
	})

	f.StringVar(&cli.StringVar{
		Name:    "event-types",
		Target:  &cfg.EventTypes,
		EnvVar:  "INPUT_EVENT_TYPES",
		Default: DefaultEventTypes,
		Usage:   `Comma separated list of event kinds to notify on.`,
	})

	f.BoolVar(&cli.BoolVar{
		Name:    "fail-on-error",
		Target:  &cfg.FailOnDeliveryError,
		EnvVar:  "INPUT_FAIL_ON_ERROR",
		Default: false,
		Usage:   `Exit with a non-zero status when the message could not be delivered.`,
	})

	g := set.NewSection("EVENT OPTIONS")

	g.StringVar(&cli.StringVar{
		Name:   "event-path",
		Target: &cfg.EventPath,
		EnvVar: "GITHUB_EVENT_PATH",
		Usage:  `Path to the JSON file with the event payload.`,
	})

	g.StringVar(&cli.StringVar{
		Name:   "event-name",
		Target: &cfg.EventName,
		EnvVar: "GITHUB_EVENT_NAME",
		Usage:  `Name of the event in the payload file, such as "push" or "issues".`,
	})

	return set
}
