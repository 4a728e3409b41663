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
	"fmt"

	"github.com/google/go-github/v56/github"
)

// CheckJSON reports whether raw is well formed JSON of any shape. It runs
// before the kind is known, so filtered and unknown events may carry any JSON
// value.
func CheckJSON(raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("%w: event file is not valid JSON", ErrParse)
	}
	return nil
}

// Validate checks that raw is a JSON object. It does not look at any field.
func Validate(raw []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	if obj == nil {
		return fmt.Errorf("%w: payload is not a JSON object", ErrParse)
	}
	return nil
}

// Decode parses raw as an event of the given kind and extracts the fields
// needed to render a notification. A required field that is absent yields a
// *MissingFieldError.
func Decode(kind Kind, raw []byte) (Event, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}

	parsed, err := github.ParseWebHook(string(kind), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	switch e := parsed.(type) {
	case *github.PushEvent:
		return decodePush(e)
	case *github.PullRequestEvent:
		return decodePullRequest(e)
	case *github.IssuesEvent:
		return decodeIssue(e)
	case *github.ReleaseEvent:
		return decodeRelease(e)
	}
	return nil, fmt.Errorf("%w: unsupported event kind %q", ErrParse, kind)
}

func decodePush(e *github.PushEvent) (Event, error) {
	f := &fields{kind: KindPush}

	out := &Push{}
	if f.require("repository", e.Repo != nil) {
		out.Repository = Repository{
			FullName: f.str("repository.full_name", e.Repo.FullName),
			HTMLURL:  f.str("repository.html_url", e.Repo.HTMLURL),
		}
	}
	if f.require("pusher", e.Pusher != nil) {
		out.Pusher = f.str("pusher.name", e.Pusher.Name)
	}
	if f.require("commits", len(e.Commits) > 0) {
		last := len(e.Commits) - 1
		out.Commits = make([]Commit, 0, len(e.Commits))
		for i, c := range e.Commits {
			if i != last {
				out.Commits = append(out.Commits, Commit{
					ID:        c.GetID(),
					Message:   c.GetMessage(),
					Committer: c.GetCommitter().GetName(),
				})
				continue
			}
			out.Commits = append(out.Commits, f.commit(fmt.Sprintf("commits[%d]", i), c))
		}
	}
	out.CompareURL = f.str("compare", e.Compare)
	out.Ref = f.str("ref", e.Ref)

	if err := f.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodePullRequest(e *github.PullRequestEvent) (Event, error) {
	f := &fields{kind: KindPullRequest}

	out := &PullRequest{
		Repository: f.repository(e.Repo),
	}
	if pr := e.PullRequest; f.require("pull_request", pr != nil) {
		out.Title = f.str("pull_request.title", pr.Title)
		out.HTMLURL = f.str("pull_request.html_url", pr.HTMLURL)
		out.Number = f.num("pull_request.number", pr.Number)
		out.State = f.str("pull_request.state", pr.State)
		out.Merged = f.flag("pull_request.merged", pr.Merged)
		if f.require("pull_request.head", pr.Head != nil) {
			out.HeadRef = f.str("pull_request.head.ref", pr.Head.Ref)
		}
		if f.require("pull_request.base", pr.Base != nil) {
			out.BaseRef = f.str("pull_request.base.ref", pr.Base.Ref)
		}
		out.Author = f.login("pull_request.user", pr.User)
	}
	out.Action = f.str("action", e.Action)
	out.Sender = f.login("sender", e.Sender)

	if err := f.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeIssue(e *github.IssuesEvent) (Event, error) {
	f := &fields{kind: KindIssues}

	out := &Issue{
		Repository: f.repository(e.Repo),
	}
	if issue := e.Issue; f.require("issue", issue != nil) {
		out.Title = f.str("issue.title", issue.Title)
		out.HTMLURL = f.str("issue.html_url", issue.HTMLURL)
		out.Number = f.num("issue.number", issue.Number)
		out.State = f.str("issue.state", issue.State)
		out.Author = f.login("issue.user", issue.User)
	}
	out.Action = f.str("action", e.Action)
	out.Sender = f.login("sender", e.Sender)

	if err := f.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRelease(e *github.ReleaseEvent) (Event, error) {
	f := &fields{kind: KindRelease}

	out := &Release{
		Repository: f.repository(e.Repo),
	}
	if rel := e.Release; f.require("release", rel != nil) {
		out.Name = rel.GetName()
		out.HTMLURL = f.str("release.html_url", rel.HTMLURL)
		out.TagName = f.str("release.tag_name", rel.TagName)
		out.Prerelease = f.flag("release.prerelease", rel.Prerelease)
	}
	out.Action = f.str("action", e.Action)
	out.Sender = f.login("sender", e.Sender)

	if err := f.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fields records the first required field found missing while copying values
// out of a go-github event.
type fields struct {
	kind    Kind
	missing string
}

func (f *fields) require(path string, ok bool) bool {
	if !ok && f.missing == "" {
		f.missing = path
	}
	return ok
}

func (f *fields) str(path string, v *string) string {
	if !f.require(path, v != nil) {
		return ""
	}
	return *v
}

func (f *fields) num(path string, v *int) int {
	if !f.require(path, v != nil) {
		return 0
	}
	return *v
}

func (f *fields) flag(path string, v *bool) bool {
	if !f.require(path, v != nil) {
		return false
	}
	return *v
}

func (f *fields) login(path string, u *github.User) string {
	if !f.require(path, u != nil) {
		return ""
	}
	return f.str(path+".login", u.Login)
}

func (f *fields) repository(r *github.Repository) Repository {
	if !f.require("repository", r != nil) {
		return Repository{}
	}
	return Repository{
		FullName: f.str("repository.full_name", r.FullName),
		HTMLURL:  f.str("repository.html_url", r.HTMLURL),
	}
}

func (f *fields) commit(path string, c *github.HeadCommit) Commit {
	if !f.require(path, c != nil) {
		return Commit{}
	}
	out := Commit{
		Message: f.str(path+".message", c.Message),
	}
	if f.require(path+".committer", c.Committer != nil) {
		out.Committer = f.str(path+".committer.name", c.Committer.Name)
	}
	out.ID = f.str(path+".id", c.ID)
	return out
}

func (f *fields) err() error {
	if f.missing == "" {
		return nil
	}
	return &MissingFieldError{Kind: f.kind, Path: f.missing}
}
