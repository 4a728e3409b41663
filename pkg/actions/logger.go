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

package actions

import (
	"io"
	"log/slog"
)

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// IsActions reports whether the process runs inside a GitHub Actions job.
func IsActions(lookup LookupEnvFunc) bool {
	v, _ := lookup("GITHUB_ACTIONS")
	return v == "true"
}

// NewLogger returns a logger writing workflow commands to w. Debug records are
// only written when the runner has step debugging enabled.
func NewLogger(w io.Writer, lookup LookupEnvFunc) *slog.Logger {
	level := slog.LevelInfo
	if v, _ := lookup("RUNNER_DEBUG"); v == "1" {
		level = slog.LevelDebug
	}
	return slog.New(NewHandler(w, level))
}
