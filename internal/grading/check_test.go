package grading

import "testing"

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		student string
		correct string
		qType   string
		want    bool
	}{
		{name: "mc exact", student: "A", correct: "A", qType: TypeMultipleChoice, want: true},
		{name: "mc wrong", student: "B", correct: "A", qType: TypeMultipleChoice, want: false},
		{name: "mc case insensitive", student: "a", correct: "A", qType: TypeMultipleChoice, want: true},
		{name: "mc whitespace insensitive", student: "  A ", correct: "A", qType: TypeMultipleChoice, want: true},
		{name: "mc empty student", student: "", correct: "A", qType: TypeMultipleChoice, want: false},
		{name: "mc empty key", student: "A", correct: "", qType: TypeMultipleChoice, want: false},

		{name: "multi answer exact", student: "ac", correct: "AC", qType: TypeMultipleAnswer, want: true},
		{name: "multi answer no partial credit", student: "A", correct: "AC", qType: TypeMultipleAnswer, want: false},

		{name: "true false string", student: "dsds", correct: "DSDS", qType: TypeTrueFalse, want: true},
		{name: "true false one off", student: "DSDD", correct: "DSDS", qType: TypeTrueFalse, want: false},

		{name: "fill text", student: " hanoi ", correct: "Hanoi", qType: TypeFillText, want: true},
		{name: "drag drop", student: "1-2-3", correct: "1-2-3", qType: TypeDragDrop, want: true},

		{name: "number within tolerance", student: "7.004", correct: "7.00", qType: TypeFillNumber, want: true},
		{name: "number outside tolerance", student: "7.05", correct: "7.00", qType: TypeFillNumber, want: false},
		{name: "number exact", student: "42", correct: "42", qType: TypeFillNumber, want: true},
		{name: "number negative", student: "-1.999", correct: "-2", qType: TypeFillNumber, want: true},
		{name: "number unparseable student", student: "seven", correct: "7", qType: TypeFillNumber, want: false},
		{name: "number unparseable key", student: "7", correct: "n/a", qType: TypeFillNumber, want: false},

		{name: "unknown type fails closed", student: "A", correct: "A", qType: "essay", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Check(tc.student, tc.correct, tc.qType); got != tc.want {
				t.Fatalf("Check(%q,%q,%q)=%v, want %v", tc.student, tc.correct, tc.qType, got, tc.want)
			}
		})
	}
}
