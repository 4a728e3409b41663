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

// actionSuffix turns a raw action into a phrase when no table entry exists,
// e.g. "assigned" becomes "assigned了".
const actionSuffix = "了"

var issueActions = map[string]string{
	"opened":    "创建了",
	"edited":    "编辑了",
	"closed":    "关闭了",
	"reopened":  "重新打开了",
	"labeled":   "添加了标签",
	"unlabeled": "移除了标签",
}

var releaseActions = map[string]string{
	"published":   "发布了",
	"created":     "创建了",
	"edited":      "编辑了",
	"deleted":     "删除了",
	"prereleased": "发布了预发布版本",
	"released":    "正式发布了",
}

// PullRequestPhrase returns the phrase for a pull request action. A closed
// pull request that was merged reads as merged.
func PullRequestPhrase(action string, merged bool) string {
	switch action {
	case "opened":
		return "创建了"
	case "synchronize":
		return "更新了"
	case "closed":
		if merged {
			return "合并了"
		}
		return "关闭了"
	case "reopened":
		return "重新打开了"
	}
	return action + actionSuffix
}

// IssuePhrase returns the phrase for an issue action.
func IssuePhrase(action string) string {
	return lookupPhrase(issueActions, action)
}

// ReleasePhrase returns the phrase for a release action.
func ReleasePhrase(action string) string {
	return lookupPhrase(releaseActions, action)
}

func lookupPhrase(table map[string]string, action string) string {
	if phrase, ok := table[action]; ok {
		return phrase
	}
	return action + actionSuffix
}
