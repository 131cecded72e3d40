package util

import "strings"

// ExtractSnippet returns up to maxLines lines of context around the
// [start,end] line range (1-based).
func ExtractSnippet(content string, start, end, maxLines int) string {
	if maxLines <= 0 {
		maxLines = 8
	}
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	s := start - 1
	e := end - 1
	s = max(0, s-maxLines/2)
	e = min(len(lines)-1, e+maxLines/2)
	if s > e {
		return ""
	}
	return strings.Join(lines[s:e+1], "\n")
}
