package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exam-metrics/raschd/internal/exam"
)

// StatisticsHandler serves the exam overview, per-item statistics, theta
// histogram and part averages.
func StatisticsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "examCode")
		stats, err := svc.Statistics(r.Context(), code)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, stats)
	}
}
