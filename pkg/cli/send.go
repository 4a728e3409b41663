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
	"strings"

	"github.com/abcxyz/github-webhook-notifier/pkg/message"
	"github.com/abcxyz/github-webhook-notifier/pkg/notifier"
	"github.com/abcxyz/github-webhook-notifier/pkg/secrets"
	"github.com/abcxyz/pkg/cli"
	"github.com/abcxyz/pkg/logging"
)

var _ cli.Command = (*SendCommand)(nil)

// SendCommand posts a one-off message to the robot. It is used to check that a
// webhook URL works before wiring it into a workflow.
type SendCommand struct {
	cli.BaseCommand

	flagWebhookURL string
	flagMarkdown   bool

	// testFlagSetOpts is only used for testing.
	testFlagSetOpts []cli.Option

	// testSender is only used for testing.
	testSender notifier.Sender

	// testResolveSecret is only used for testing.
	testResolveSecret func(ctx context.Context, value string) (string, error)
}

func (c *SendCommand) Desc() string {
	return `Send a test message to a WeCom group robot`
}

func (c *SendCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options] MESSAGE...

  Send MESSAGE to the robot webhook as a single text message.
`
}

func (c *SendCommand) Flags() *cli.FlagSet {
	set := cli.NewFlagSet(c.testFlagSetOpts...)

	f := set.NewSection("SEND OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:   "webhook-url",
		Target: &c.flagWebhookURL,
		EnvVar: "INPUT_WECHAT_WEBHOOK_URL",
		Usage:  `The WeCom group robot webhook URL, or an sm:// Secret Manager reference.`,
	})

	f.BoolVar(&cli.BoolVar{
		Name:    "markdown",
		Target:  &c.flagMarkdown,
		Default: false,
		Usage:   `Send the message as markdown instead of plain text.`,
	})

	return set
}

func (c *SendCommand) Run(ctx context.Context, args []string) error {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	text := strings.TrimSpace(strings.Join(f.Args(), " "))
	if text == "" {
		return fmt.Errorf("expected a message to send")
	}
	if c.flagWebhookURL == "" {
		return fmt.Errorf("%w: INPUT_WECHAT_WEBHOOK_URL is required", notifier.ErrConfig)
	}

	resolve := secrets.Resolve
	if c.testResolveSecret != nil {
		resolve = c.testResolveSecret
	}
	webhookURL, err := resolve(ctx, c.flagWebhookURL)
	if err != nil {
		return fmt.Errorf("%w: failed to resolve webhook url: %w", notifier.ErrConfig, err)
	}

	payload := message.Text(text)
	if c.flagMarkdown {
		payload = message.Markdown(text)
	}

	var sender notifier.Sender = newWeComClient()
	if c.testSender != nil {
		sender = c.testSender
	}

	result := sender.Send(ctx, webhookURL, payload)
	if !result.Success {
		return fmt.Errorf("%w: %s", notifier.ErrDelivery, result.Diagnostic())
	}

	logging.FromContext(ctx).InfoContext(ctx, "message sent", "msgtype", payload.MsgType)
	c.Outf("%s", result.Diagnostic())
	return nil
}
