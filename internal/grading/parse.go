package grading

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAnswers extracts an item-number -> answer mapping from a raw answer
// sheet. Each useful line reads "<number> <answer>", the first whitespace run
// separating the two. Blank lines, lines without a second token and lines
// whose first token is not an integer are skipped: a partially garbled sheet
// must still grade. Item numbers are not range-checked here; out-of-range
// entries simply never match an item.
func ParseAnswers(text string) map[int]string {
	parsed := make(map[int]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		i := strings.IndexFunc(line, unicode.IsSpace)
		if i < 0 {
			continue
		}
		num, err := strconv.Atoi(line[:i])
		if err != nil {
			continue
		}
		answer := strings.TrimSpace(line[i:])
		if answer == "" {
			continue
		}
		parsed[num] = answer
	}
	return parsed
}
