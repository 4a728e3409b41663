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

// Package message renders GitHub events into WeCom group robot messages.
package message

// MsgType is the "msgtype" discriminator of the robot message envelope.
type MsgType string

const (
	MsgTypeMarkdown MsgType = "markdown"
	MsgTypeText     MsgType = "text"
)

// Payload is the JSON body posted to the robot webhook. Exactly one of
// Markdown or Text is set, matching MsgType.
type Payload struct {
	MsgType  MsgType  `json:"msgtype"`
	Markdown *Content `json:"markdown,omitempty"`
	Text     *Content `json:"text,omitempty"`
}

// Content holds the rendered message body.
type Content struct {
	Content string `json:"content"`
}

// Markdown builds a markdown payload.
func Markdown(content string) *Payload {
	return &Payload{
		MsgType:  MsgTypeMarkdown,
		Markdown: &Content{Content: content},
	}
}

// Text builds a plain text payload.
func Text(content string) *Payload {
	return &Payload{
		MsgType: MsgTypeText,
		Text:    &Content{Content: content},
	}
}

// Content returns the body of the payload regardless of its type.
func (p *Payload) Content() string {
	switch p.MsgType {
	case MsgTypeMarkdown:
		if p.Markdown != nil {
			return p.Markdown.Content
		}
	case MsgTypeText:
		if p.Text != nil {
			return p.Text.Content
		}
	}
	return ""
}
