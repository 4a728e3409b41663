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
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/abcxyz/pkg/testutil"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name: "missing_webhook_url",
			cfg: &Config{
				EventPath: "/github/workflow/event.json",
				EventName: "push",
			},
			wantErr: "INPUT_WECHAT_WEBHOOK_URL is required",
		},
		{
			name: "missing_event_path",
			cfg: &Config{
				WebhookURL: "https://example.com/hook",
				EventName:  "push",
			},
			wantErr: "GITHUB_EVENT_PATH is required",
		},
		{
			name: "missing_event_name",
			cfg: &Config{
				WebhookURL: "https://example.com/hook",
				EventPath:  "/github/workflow/event.json",
			},
			wantErr: "GITHUB_EVENT_NAME is required",
		},
		{
			name: "success",
			cfg: &Config{
				WebhookURL: "https://example.com/hook",
				EventPath:  "/github/workflow/event.json",
				EventName:  "push",
			},
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.Validate()
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Errorf("Process(%+v) got unexpected err: %s", tc.name, diff)
			}
			if err != nil && !errors.Is(err, ErrConfig) {
				t.Errorf("Validate() error = %v, want wrapped %v", err, ErrConfig)
			}
		})
	}
}

func TestConfig_Validate_ReportsAll(t *testing.T) {
	t.Parallel()

	err := (&Config{}).Validate()
	for _, want := range []string{
		"INPUT_WECHAT_WEBHOOK_URL is required",
		"GITHUB_EVENT_PATH is required",
		"GITHUB_EVENT_NAME is required",
	} {
		if diff := testutil.DiffErrString(err, want); diff != "" {
			t.Error(diff)
		}
	}
}

func TestConfig_LogValue(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&b, nil))
	logger.Info("loaded configuration", "config", Config{
		WebhookURL: "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=very-secret",
		EventName:  "push",
	})

	if strings.Contains(b.String(), "very-secret") {
		t.Errorf("log output leaked the webhook key: %s", b.String())
	}
	if !strings.Contains(b.String(), "<redacted>") {
		t.Errorf("log output does not show redacted url: %s", b.String())
	}
}
