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

package message

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/abcxyz/github-webhook-notifier/pkg/events"
)

// shortIDLen is how much of a commit id is shown. It is for display only and
// is not guaranteed to be unique.
const shortIDLen = 7

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Option("missingkey=error").
		Funcs(funcMap()).
		ParseFS(templateFS, "templates/*.md.tmpl"))

func funcMap() template.FuncMap {
	f := sprig.TxtFuncMap()
	delete(f, "env")
	delete(f, "expandenv")

	f["firstLine"] = firstLine
	f["shortID"] = shortID
	f["pullRequestPhrase"] = PullRequestPhrase
	f["issuePhrase"] = IssuePhrase
	f["releasePhrase"] = ReleasePhrase
	return f
}

// Format renders the event as a markdown payload. The output depends only on
// the event, so formatting the same event twice yields identical content.
func Format(ev events.Event) (*Payload, error) {
	if ev == nil {
		return nil, fmt.Errorf("no event to format")
	}

	name := string(ev.Kind()) + ".md.tmpl"
	var b bytes.Buffer
	if err := templates.ExecuteTemplate(&b, name, ev); err != nil {
		return nil, fmt.Errorf("failed to render %s message: %w", ev.Kind(), err)
	}
	return Markdown(strings.TrimRight(b.String(), "\n")), nil
}

// firstLine returns s up to the first line boundary. Besides CR and LF, the
// vertical tab, form feed, file/group/record separators, NEL and the Unicode
// line and paragraph separators all end a line.
func firstLine(s string) string {
	if i := strings.IndexFunc(s, isLineBoundary); i >= 0 {
		return s[:i]
	}
	return s
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func shortID(id string) string {
	r := []rune(id)
	if len(r) <= shortIDLen {
		return id
	}
	return string(r[:shortIDLen])
}
