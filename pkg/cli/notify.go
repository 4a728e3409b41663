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

package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/abcxyz/github-webhook-notifier/pkg/notifier"
	"github.com/abcxyz/github-webhook-notifier/pkg/secrets"
	"github.com/abcxyz/github-webhook-notifier/pkg/version"
	"github.com/abcxyz/github-webhook-notifier/pkg/wecom"
	"github.com/abcxyz/pkg/cli"
	"github.com/abcxyz/pkg/logging"
)

var _ cli.Command = (*NotifyCommand)(nil)

// NotifyCommand sends a notification for the GitHub event that triggered the
// workflow. It is meant to run as a GitHub Action step, reading the action
// inputs and the runner's event variables from the environment.
type NotifyCommand struct {
	cli.BaseCommand

	cfg *notifier.Config

	// testFlagSetOpts is only used for testing.
	testFlagSetOpts []cli.Option

	// testSender is only used for testing.
	testSender notifier.Sender

	// testResolveSecret is only used for testing.
	testResolveSecret func(ctx context.Context, value string) (string, error)
}

func (c *NotifyCommand) Desc() string {
	return `Send a chat notification for a GitHub event`
}

func (c *NotifyCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options]

  Send a WeCom group robot notification for the GitHub event in
  GITHUB_EVENT_PATH. Events whose kind is not accepted are skipped.
`
}

func (c *NotifyCommand) Flags() *cli.FlagSet {
	c.cfg = &notifier.Config{}
	set := cli.NewFlagSet(c.testFlagSetOpts...)
	return c.cfg.ToFlags(set)
}

func (c *NotifyCommand) Run(ctx context.Context, args []string) error {
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("invocation_id", uuid.NewString()))

	n, err := c.RunUnstarted(ctx, args)
	if err != nil {
		return err
	}

	outcome, err := n.Run(ctx)
	if err != nil {
		return err //nolint:wrapcheck // Want passthrough
	}
	logging.FromContext(ctx).DebugContext(ctx, "notifier finished", "status", outcome.Status)
	return nil
}

// RunUnstarted parses and validates the configuration and builds the notifier
// without running it.
func (c *NotifyCommand) RunUnstarted(ctx context.Context, args []string) (*notifier.Notifier, error) {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	args = f.Args()
	if len(args) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %q", args)
	}

	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "notifier starting",
		"name", version.Name,
		"commit", version.Commit,
		"version", version.Version)

	if err := c.cfg.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // Already wraps notifier.ErrConfig
	}
	logger.DebugContext(ctx, "loaded configuration", "config", *c.cfg)

	resolve := secrets.Resolve
	if c.testResolveSecret != nil {
		resolve = c.testResolveSecret
	}

	cfg := *c.cfg
	webhookURL, err := resolve(ctx, cfg.WebhookURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve webhook url: %w", notifier.ErrConfig, err)
	}
	if webhookURL == "" {
		return nil, fmt.Errorf("%w: resolved webhook url is empty", notifier.ErrConfig)
	}
	cfg.WebhookURL = webhookURL

	var sender notifier.Sender = newWeComClient()
	if c.testSender != nil {
		sender = c.testSender
	}

	return notifier.New(cfg, sender), nil
}

func newWeComClient() *wecom.Client {
	agent := fmt.Sprintf("abcxyz:github-webhook-notifier/%s", version.Version)
	return wecom.NewClient(wecom.WithUserAgent(agent))
}
