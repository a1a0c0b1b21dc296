package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exam-metrics/raschd/internal/exam"
)

func CreateExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exam.CreateExamInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		ex, err := svc.CreateExam(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, ex)
	}
}

func ListExamsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListExams(r.Context())
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, list)
	}
}

// GetExamHandler serves the exam with its items, answer keys stripped.
func GetExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "examCode")
		ex, err := svc.GetExam(r.Context(), code, false)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, ex)
	}
}

func DeleteExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "examCode")
		if err := svc.DeleteExam(r.Context(), code); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RecalibrateExamHandler triggers the on-demand calibration pass. Below the
// sample-size gate it reports skipped=true rather than an error.
func RecalibrateExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "examCode")
		diffs, err := svc.RecalibrateExam(r.Context(), code)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, struct {
			Skipped      bool            `json:"skipped"`
			Difficulties map[int]float64 `json:"difficulties,omitempty"`
		}{Skipped: diffs == nil, Difficulties: diffs})
	}
}
