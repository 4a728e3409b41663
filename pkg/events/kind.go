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
	"strings"
)

// Kind is the GitHub event name that selects a notification template. The
// values match the X-Github-Event header and GITHUB_EVENT_NAME.
type Kind string

const (
	KindPush        Kind = "push"
	KindPullRequest Kind = "pull_request"
	KindIssues      Kind = "issues"
	KindRelease     Kind = "release"
)

// AllKinds lists every supported kind in display order.
var AllKinds = []Kind{KindPush, KindPullRequest, KindIssues, KindRelease}

// ParseKind returns the Kind for the given event name. The boolean is false
// for event names that have no template, which callers treat as "nothing to
// send" rather than an error.
func ParseKind(name string) (Kind, bool) {
	switch k := Kind(strings.TrimSpace(name)); k {
	case KindPush, KindPullRequest, KindIssues, KindRelease:
		return k, true
	default:
		return "", false
	}
}

func (k Kind) String() string {
	return string(k)
}

// KindSet is the set of kinds a deployment wants to be notified about.
type KindSet map[Kind]struct{}

// NewKindSet builds a set from the given kinds.
func NewKindSet(kinds ...Kind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// ParseKindSet parses a comma separated list of event names. Blank entries
// are ignored. Names that are not a known kind are returned in unknown so
// the caller can warn about them. A list with no entries at all yields every
// kind.
func ParseKindSet(list string) (set KindSet, unknown []string) {
	set = make(KindSet, len(AllKinds))
	seen := 0
	for _, raw := range strings.Split(list, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		seen++

		k, ok := ParseKind(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		set[k] = struct{}{}
	}

	if seen == 0 {
		return NewKindSet(AllKinds...), nil
	}
	return set, unknown
}

// Contains reports whether k is in the set.
func (s KindSet) Contains(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Kinds returns the members of the set in display order.
func (s KindSet) Kinds() []Kind {
	out := make([]Kind, 0, len(s))
	for _, k := range AllKinds {
		if s.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}

// String renders the set the same way it is configured.
func (s KindSet) String() string {
	kinds := s.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ",")
}
