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

package events

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadFixture(tb testing.TB, kind Kind) map[string]any {
	tb.Helper()

	b, err := os.ReadFile(filepath.Join("testdata", string(kind)+".json"))
	if err != nil {
		tb.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		tb.Fatal(err)
	}
	return m
}

func mustMarshal(tb testing.TB, v any) []byte {
	tb.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		tb.Fatal(err)
	}
	return b
}

// deleteKey removes the value at the given object path.
func deleteKey(m map[string]any, path ...string) {
	for _, k := range path[:len(path)-1] {
		m = m[k].(map[string]any)
	}
	delete(m, path[len(path)-1])
}

func lastCommit(m map[string]any) map[string]any {
	commits := m["commits"].([]any)
	return commits[len(commits)-1].(map[string]any)
}

var testRepo = Repository{
	FullName: "octo-org/hello-world",
	HTMLURL:  "https://github.com/octo-org/hello-world",
}

func TestDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		kind Kind
		want Event
	}{
		{
			name: "push",
			kind: KindPush,
			want: &Push{
				Repository: testRepo,
				Ref:        "refs/heads/main",
				Pusher:     "octocat",
				CompareURL: "https://github.com/octo-org/hello-world/compare/1111111...abcdef1",
				Commits: []Commit{
					{
						ID:        "0123456789abcdef0123456789abcdef01234567",
						Message:   "chore: bump deps",
						Committer: "bob",
					},
					{
						ID:        "abcdef1234567890",
						Message:   "fix: bug\nmore detail",
						Committer: "alice",
					},
				},
			},
		},
		{
			name: "pull_request",
			kind: KindPullRequest,
			want: &PullRequest{
				Repository: testRepo,
				Action:     "closed",
				Sender:     "maintainer",
				Title:      "Add retry budget",
				HTMLURL:    "https://github.com/octo-org/hello-world/pull/42",
				Number:     42,
				State:      "closed",
				Merged:     true,
				HeadRef:    "feature/retry-budget",
				BaseRef:    "develop",
				Author:     "pr-author",
			},
		},
		{
			name: "issues",
			kind: KindIssues,
			want: &Issue{
				Repository: testRepo,
				Action:     "labeled",
				Sender:     "triager",
				Title:      "Crash on empty config",
				HTMLURL:    "https://github.com/octo-org/hello-world/issues/7",
				Number:     7,
				State:      "open",
				Author:     "issue-author",
			},
		},
		{
			name: "release",
			kind: KindRelease,
			want: &Release{
				Repository: testRepo,
				Action:     "published",
				Sender:     "release-bot",
				Name:       "",
				HTMLURL:    "https://github.com/octo-org/hello-world/releases/tag/v1.2.0-rc.1",
				TagName:    "v1.2.0-rc.1",
				Prerelease: true,
			},
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			raw := mustMarshal(t, loadFixture(t, tc.kind))
			got, err := Decode(tc.kind, raw)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Decode(%s) mismatch (-want, +got):\n%s", tc.kind, diff)
			}
			if got, want := got.Kind(), tc.kind; got != want {
				t.Errorf("Kind() = %q, want %q", got, want)
			}
		})
	}
}

func TestDecode_MissingField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind   Kind
		path   string
		mutate func(m map[string]any)
	}{
		{KindPush, "repository", func(m map[string]any) { deleteKey(m, "repository") }},
		{KindPush, "repository.full_name", func(m map[string]any) { deleteKey(m, "repository", "full_name") }},
		{KindPush, "repository.html_url", func(m map[string]any) { deleteKey(m, "repository", "html_url") }},
		{KindPush, "pusher", func(m map[string]any) { deleteKey(m, "pusher") }},
		{KindPush, "pusher.name", func(m map[string]any) { deleteKey(m, "pusher", "name") }},
		{KindPush, "commits", func(m map[string]any) { deleteKey(m, "commits") }},
		{KindPush, "commits", func(m map[string]any) { m["commits"] = []any{} }},
		{KindPush, "commits[1].message", func(m map[string]any) { delete(lastCommit(m), "message") }},
		{KindPush, "commits[1].committer", func(m map[string]any) { delete(lastCommit(m), "committer") }},
		{KindPush, "commits[1].committer.name", func(m map[string]any) {
			delete(lastCommit(m)["committer"].(map[string]any), "name")
		}},
		{KindPush, "commits[1].id", func(m map[string]any) { delete(lastCommit(m), "id") }},
		{KindPush, "compare", func(m map[string]any) { deleteKey(m, "compare") }},
		{KindPush, "ref", func(m map[string]any) { deleteKey(m, "ref") }},

		{KindPullRequest, "repository", func(m map[string]any) { deleteKey(m, "repository") }},
		{KindPullRequest, "pull_request", func(m map[string]any) { deleteKey(m, "pull_request") }},
		{KindPullRequest, "pull_request.title", func(m map[string]any) { deleteKey(m, "pull_request", "title") }},
		{KindPullRequest, "pull_request.html_url", func(m map[string]any) { deleteKey(m, "pull_request", "html_url") }},
		{KindPullRequest, "pull_request.number", func(m map[string]any) { deleteKey(m, "pull_request", "number") }},
		{KindPullRequest, "pull_request.state", func(m map[string]any) { deleteKey(m, "pull_request", "state") }},
		{KindPullRequest, "pull_request.merged", func(m map[string]any) { deleteKey(m, "pull_request", "merged") }},
		{KindPullRequest, "pull_request.head", func(m map[string]any) { deleteKey(m, "pull_request", "head") }},
		{KindPullRequest, "pull_request.head.ref", func(m map[string]any) { deleteKey(m, "pull_request", "head", "ref") }},
		{KindPullRequest, "pull_request.base.ref", func(m map[string]any) { deleteKey(m, "pull_request", "base", "ref") }},
		{KindPullRequest, "pull_request.user.login", func(m map[string]any) { deleteKey(m, "pull_request", "user", "login") }},
		{KindPullRequest, "action", func(m map[string]any) { deleteKey(m, "action") }},
		{KindPullRequest, "sender", func(m map[string]any) { deleteKey(m, "sender") }},

		{KindIssues, "issue", func(m map[string]any) { deleteKey(m, "issue") }},
		{KindIssues, "issue.title", func(m map[string]any) { deleteKey(m, "issue", "title") }},
		{KindIssues, "issue.number", func(m map[string]any) { deleteKey(m, "issue", "number") }},
		{KindIssues, "issue.state", func(m map[string]any) { deleteKey(m, "issue", "state") }},
		{KindIssues, "issue.user", func(m map[string]any) { deleteKey(m, "issue", "user") }},
		{KindIssues, "action", func(m map[string]any) { deleteKey(m, "action") }},
		{KindIssues, "sender.login", func(m map[string]any) { deleteKey(m, "sender", "login") }},

		{KindRelease, "release", func(m map[string]any) { deleteKey(m, "release") }},
		{KindRelease, "release.html_url", func(m map[string]any) { deleteKey(m, "release", "html_url") }},
		{KindRelease, "release.tag_name", func(m map[string]any) { deleteKey(m, "release", "tag_name") }},
		{KindRelease, "release.prerelease", func(m map[string]any) { deleteKey(m, "release", "prerelease") }},
		{KindRelease, "repository.full_name", func(m map[string]any) { deleteKey(m, "repository", "full_name") }},
		{KindRelease, "action", func(m map[string]any) { deleteKey(m, "action") }},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(string(tc.kind)+"/"+tc.path, func(t *testing.T) {
			t.Parallel()

			m := loadFixture(t, tc.kind)
			tc.mutate(m)

			ev, err := Decode(tc.kind, mustMarshal(t, m))
			if ev != nil {
				t.Errorf("Decode returned event %#v, want nil", ev)
			}

			var mfe *MissingFieldError
			if !errors.As(err, &mfe) {
				t.Fatalf("Decode error = %v, want *MissingFieldError", err)
			}
			if got, want := mfe.Path, tc.path; got != want {
				t.Errorf("missing path = %q, want %q", got, want)
			}
			if got, want := mfe.Kind, tc.kind; got != want {
				t.Errorf("missing kind = %q, want %q", got, want)
			}
		})
	}
}

func TestDecode_ReleaseWithoutName(t *testing.T) {
	t.Parallel()

	m := loadFixture(t, KindRelease)
	deleteKey(m, "release", "name")

	ev, err := Decode(KindRelease, mustMarshal(t, m))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ev.(*Release).DisplayName(), "v1.2.0-rc.1"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}
}

func TestDecode_ParseError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		kind Kind
		raw  string
	}{
		{name: "not_json", kind: KindPush, raw: `{"ref": `},
		{name: "array", kind: KindPush, raw: `[]`},
		{name: "null", kind: KindIssues, raw: `null`},
		{name: "empty", kind: KindRelease, raw: ``},
		{name: "wrong_type", kind: KindPullRequest, raw: `{"pull_request": {"number": "seven"}}`},
		{name: "unsupported_kind", kind: Kind("workflow_run_typo"), raw: `{}`},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Decode(tc.kind, []byte(tc.raw)); !errors.Is(err, ErrParse) {
				t.Errorf("Decode error = %v, want %v", err, ErrParse)
			}
		})
	}
}

func TestCheckJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "object", raw: `{"ref": "refs/heads/main"}`},
		{name: "array", raw: `[1, 2]`},
		{name: "null", raw: `null`},
		{name: "string", raw: `"push"`},
		{name: "truncated", raw: `{"ref": `, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
		{name: "not_json", raw: `not json`, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := CheckJSON([]byte(tc.raw))
			if got := err != nil; got != tc.wantErr {
				t.Fatalf("CheckJSON error = %v, want error %t", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrParse) {
				t.Errorf("CheckJSON error = %v, want %v", err, ErrParse)
			}
		})
	}
}

func TestRelease_DisplayName(t *testing.T) {
	t.Parallel()

	if got, want := (&Release{Name: "Spring", TagName: "v2"}).DisplayName(), "Spring"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}
	if got, want := (&Release{TagName: "v2"}).DisplayName(), "v2"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}
}

func TestPush_Latest(t *testing.T) {
	t.Parallel()

	p := &Push{Commits: []Commit{{ID: "old"}, {ID: "new"}}}
	if got, want := p.Latest().ID, "new"; got != want {
		t.Errorf("Latest().ID = %q, want %q", got, want)
	}
}
