package agent

import (
	"regexp"
	"strings"
)

var (
	// jsonBlockPattern 匹配 markdown 代码块中的JSON对象: ```json { ... } ```
	jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// jsonObjectPattern 匹配任意JSON对象（贪婪）
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	// trailingCommaPattern 匹配 ] 或 } 前多余的逗号
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON 从模型的回复中取出JSON对象，容忍代码块包裹和多余的逗号。找不到时返回空串。
func ExtractJSON(content string) string {
	var raw string
	if m := jsonBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = jsonObjectPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(strings.TrimSpace(raw), "$1")
}
