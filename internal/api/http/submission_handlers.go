package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exam-metrics/raschd/internal/exam"
)

func SubmitHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exam.SubmitInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ExamCode == "" || req.StudentName == "" || req.StudentCode == "" {
			http.Error(w, "exam_code, student_name and student_code required", http.StatusBadRequest)
			return
		}
		sub, err := svc.SubmitAnswers(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, sub)
	}
}

// GetResultHandler serves one student's scored attempt with per-item detail
// and ranking.
func GetResultHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentCode := chi.URLParam(r, "studentCode")
		examCode := chi.URLParam(r, "examCode")
		view, err := svc.Result(r.Context(), examCode, studentCode)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, view)
	}
}
