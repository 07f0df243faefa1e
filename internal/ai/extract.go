package ai

import "strings"

// ExtractCode pulls the first fenced code block out of a model response.
// The language tag after the opening fence, if any, is ignored.
func ExtractCode(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// Skip the language tag up to the first newline.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine != "" && !strings.ContainsAny(firstLine, " =(") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	code := strings.TrimSpace(rest[:end])
	if code == "" {
		return "", false
	}
	return code + "\n", true
}
