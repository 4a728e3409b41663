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

// Entry point of the application.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abcxyz/github-webhook-notifier/pkg/actions"
	"github.com/abcxyz/github-webhook-notifier/pkg/cli"
	"github.com/abcxyz/pkg/logging"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer done()

	logger := newLogger()
	ctx = logging.WithLogger(ctx, logger)

	if err := realMain(ctx); err != nil {
		done()
		logger.ErrorContext(ctx, err.Error())
		os.Exit(1)
	}
}

// newLogger writes workflow commands when running as an Actions step, and
// falls back to the regular environment driven logger elsewhere.
func newLogger() *slog.Logger {
	if actions.IsActions(os.LookupEnv) {
		return actions.NewLogger(os.Stdout, os.LookupEnv)
	}
	return logging.NewFromEnv("NOTIFIER_")
}

// realMain runs the CLI. With no arguments it runs the notify command, which
// is how the action invokes it.
func realMain(ctx context.Context) error {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"notify"}
	}
	return cli.Run(ctx, args) //nolint:wrapcheck // Want passthrough
}
