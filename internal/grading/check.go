package grading

import (
	"math"
	"strconv"
	"strings"
)

// Question type identifiers as stored on items.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeMultipleAnswer = "multiple_answer"
	TypeTrueFalse      = "true_false"
	TypeFillNumber     = "fill_number"
	TypeFillText       = "fill_text"
	TypeDragDrop       = "drag_drop"
)

// numericTolerance is the absolute tolerance accepted on fill_number items.
const numericTolerance = 0.01

// checker decides whether a normalized student answer matches the key.
type checker func(student, correct string) bool

var checkers = map[string]checker{
	TypeMultipleChoice: exactMatch,
	TypeMultipleAnswer: exactMatch, // "AC", "BD": opaque string, no partial credit
	TypeTrueFalse:      exactMatch, // per-statement strings like "DSDS"
	TypeFillText:       exactMatch,
	TypeDragDrop:       exactMatch,
	TypeFillNumber:     numericMatch,
}

// Check grades one answer against an item's key. Both sides are trimmed and
// upper-cased before comparison. Empty answers and unknown question types
// never match.
func Check(student, correct, questionType string) bool {
	s := strings.ToUpper(strings.TrimSpace(student))
	c := strings.ToUpper(strings.TrimSpace(correct))
	if s == "" || c == "" {
		return false
	}
	ck, ok := checkers[questionType]
	if !ok {
		return false
	}
	return ck(s, c)
}

func exactMatch(student, correct string) bool { return student == correct }

// numericMatch parses both sides as reals; unparseable text is a non-match,
// not an error.
func numericMatch(student, correct string) bool {
	sv, err := strconv.ParseFloat(student, 64)
	if err != nil {
		return false
	}
	cv, err := strconv.ParseFloat(correct, 64)
	if err != nil {
		return false
	}
	return math.Abs(sv-cv) < numericTolerance
}
