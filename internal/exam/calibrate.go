package exam

import "github.com/exam-metrics/raschd/internal/grading"

// MinCalibrationSubmissions gates recalibration: below this sample size a
// single script would swing item difficulties, so the pass is skipped.
const MinCalibrationSubmissions = 5

// Recalibrate re-derives every item's difficulty from the stored submission
// pool. Each stored answer map is re-graded against the item (grading is
// cheap, and re-grading keeps calibration independent of whatever happened
// at submit time); the new difficulty is the mean total theta of examinees
// who answered it correctly, 0.0 when nobody did.
//
// Returns nil when fewer than MinCalibrationSubmissions exist (a no-op, not
// an error). Stored per-submission thetas and scores are never touched, so
// the pass is idempotent and can always be re-run from durable data.
func Recalibrate(questions []Question, subs []Submission) map[int]float64 {
	if len(subs) < MinCalibrationSubmissions {
		return nil
	}
	out := make(map[int]float64, len(questions))
	for _, q := range questions {
		sum := 0.0
		n := 0
		for _, s := range subs {
			if grading.Check(s.Answers[q.Number], q.CorrectAnswer, q.Type) {
				sum += s.TotalTheta
				n++
			}
		}
		if n == 0 {
			out[q.Number] = 0.0
			continue
		}
		out[q.Number] = sum / float64(n)
	}
	return out
}
