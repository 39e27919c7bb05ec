package prompt

import "strings"

// stripFences removes a surrounding markdown code block, whatever language
// tag follows the opening fence.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && !strings.ContainsAny(t[:nl], "{}") {
		t = t[nl+1:]
	}
	if end := strings.LastIndex(t, "```"); end >= 0 {
		t = t[:end]
	}
	return strings.TrimSpace(t)
}

// jsonObject returns the outermost {...} span of raw, or "" when there is none.
func jsonObject(raw string) string {
	t := stripFences(raw)
	start := strings.IndexByte(t, '{')
	end := strings.LastIndexByte(t, '}')
	if start < 0 || end < start {
		return ""
	}
	return t[start : end+1]
}
