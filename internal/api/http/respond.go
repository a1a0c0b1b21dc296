package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/exam-metrics/raschd/internal/exam"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, exam.ErrExamNotFound), errors.Is(err, exam.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, exam.ErrExamExists), errors.Is(err, exam.ErrQuestionCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
