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

// Package events decodes GitHub event payloads into the small set of fields a
// chat notification needs.
package events

import (
	"errors"
	"fmt"
)

// ErrParse is returned when the event payload is not a JSON object or does not
// match the shape of its kind.
var ErrParse = errors.New("failed to parse event payload")

// MissingFieldError reports a required field that is absent from the event
// payload. Path uses the payload's JSON names, for example
// "pull_request.head.ref" or "commits[2].id".
type MissingFieldError struct {
	Kind Kind
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s event is missing required field %q", e.Kind, e.Path)
}

// Event is one decoded GitHub event. The concrete type is one of *Push,
// *PullRequest, *Issue or *Release.
type Event interface {
	Kind() Kind
}

// Repository identifies the repository an event belongs to.
type Repository struct {
	FullName string
	HTMLURL  string
}

// Commit is a single pushed commit.
type Commit struct {
	ID        string
	Message   string
	Committer string
}

// Push is a "push" event.
type Push struct {
	Repository Repository
	Ref        string
	Pusher     string
	CompareURL string

	// Commits are ordered oldest first, as GitHub sends them. There is always
	// at least one.
	Commits []Commit
}

func (*Push) Kind() Kind { return KindPush }

// Latest returns the most recent pushed commit.
func (p *Push) Latest() Commit {
	return p.Commits[len(p.Commits)-1]
}

// PullRequest is a "pull_request" event.
type PullRequest struct {
	Repository Repository
	Action     string
	Sender     string

	Title   string
	HTMLURL string
	Number  int
	State   string
	Merged  bool
	HeadRef string
	BaseRef string
	Author  string
}

func (*PullRequest) Kind() Kind { return KindPullRequest }

// Issue is an "issues" event.
type Issue struct {
	Repository Repository
	Action     string
	Sender     string

	Title   string
	HTMLURL string
	Number  int
	State   string
	Author  string
}

func (*Issue) Kind() Kind { return KindIssues }

// Release is a "release" event.
type Release struct {
	Repository Repository
	Action     string
	Sender     string

	// Name may be empty, in which case DisplayName falls back to the tag.
	Name       string
	HTMLURL    string
	TagName    string
	Prerelease bool
}

func (*Release) Kind() Kind { return KindRelease }

// DisplayName is the release name, or the tag when the release is unnamed.
func (r *Release) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.TagName
}
