package parse

import "strings"

const fence = "```"

// StripFences removes surrounding whitespace and a markdown code fence, if
// the text is wrapped in one. The opening fence may carry a language tag
// such as ```json.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, fence) {
		return s
	}

	s = strings.TrimPrefix(s, fence)
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the rest of the opening fence line (language tag)
		s = s[nl+1:]
	} else {
		// single line: ```json5 {...}```, the payload starts at the first bracket
		if i := strings.IndexAny(s, "{["); i >= 0 {
			s = s[i:]
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}
