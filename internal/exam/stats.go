package exam

import (
	"math"
	"sort"

	"github.com/exam-metrics/raschd/internal/irt"
)

const histogramBins = 20

// ThetaBin is one histogram bucket; Theta is the bin midpoint rounded to one
// decimal.
type ThetaBin struct {
	Theta float64 `json:"theta"`
	Count int     `json:"count"`
}

// Histogram buckets total thetas into 20 equal-width bins over [-3,3].
// Bins include their left edge; the final bin also includes its right edge,
// so a theta of exactly 3 lands in the last bin. Values outside the interval
// are dropped.
func Histogram(thetas []float64) []ThetaBin {
	lo, hi := irt.DefaultThetaMin, irt.DefaultThetaMax
	width := (hi - lo) / histogramBins
	bins := make([]ThetaBin, histogramBins)
	for i := range bins {
		mid := lo + (float64(i)+0.5)*width
		bins[i].Theta = math.Round(mid*10) / 10
	}
	for _, th := range thetas {
		if th < lo || th > hi {
			continue
		}
		idx := int((th - lo) / width)
		if idx == histogramBins {
			idx = histogramBins - 1
		}
		bins[idx].Count++
	}
	return bins
}

// Ranking places one submission among all submissions for its exam.
type Ranking struct {
	Position      int `json:"position"`
	TotalStudents int `json:"total_students"`
	Percentile    int `json:"percentile"`
}

// Rank orders submissions by total score descending (stable: ties keep their
// first-seen order) and returns the 1-based position and percentile of the
// target submission.
func Rank(subs []Submission, submissionID string) (Ranking, error) {
	if len(subs) == 0 {
		return Ranking{}, ErrSubmissionNotFound
	}
	sorted := make([]Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalScore > sorted[j].TotalScore
	})
	n := len(sorted)
	for i, s := range sorted {
		if s.ID == submissionID {
			pos := i + 1
			pct := int(math.Round(float64(n-pos+1) / float64(n) * 100))
			return Ranking{Position: pos, TotalStudents: n, Percentile: pct}, nil
		}
	}
	return Ranking{}, ErrSubmissionNotFound
}

// ReliabilityEstimator supplies the reliability figure on the overview.
type ReliabilityEstimator interface {
	Reliability(subs []Submission) float64
}

// FixedReliability reports a constant. It stands in until a real split-half
// or Cronbach's alpha computation replaces it.
type FixedReliability float64

func (f FixedReliability) Reliability([]Submission) float64 { return float64(f) }

// DefaultReliability is the placeholder figure reported for every exam.
const DefaultReliability = FixedReliability(0.85)

// Overview summarizes an exam's submission pool.
type Overview struct {
	TotalStudents int     `json:"total_students"`
	AvgScore      float64 `json:"avg_score"`
	AvgTheta      float64 `json:"avg_theta"`
	Reliability   float64 `json:"reliability"`
}

// QuestionReport pairs an item with its running statistics.
type QuestionReport struct {
	Question    Question     `json:"question"`
	Statistics  QuestionStat `json:"statistics"`
	CorrectRate float64      `json:"correct_rate"`
}

// PartAverage is the mean part score across all submissions for one part.
type PartAverage struct {
	Part     int     `json:"part"`
	From     int     `json:"from"`
	To       int     `json:"to"`
	AvgScore float64 `json:"avg_score"`
	Count    int     `json:"count"`
}

// Statistics is the full reporting view for one exam.
type Statistics struct {
	Exam           Exam             `json:"exam"`
	Overview       Overview         `json:"overview"`
	Questions      []QuestionReport `json:"question_stats"`
	ThetaHistogram []ThetaBin       `json:"theta_distribution"`
	PartAverages   []PartAverage    `json:"part_scores"`
}

// Aggregate assembles the statistics view from stored items, counters and
// submissions. Pure; callers provide a consistent snapshot.
func Aggregate(ex Exam, questions []Question, stats []QuestionStat, subs []Submission, rel ReliabilityEstimator) Statistics {
	if rel == nil {
		rel = DefaultReliability
	}

	statByNumber := make(map[int]QuestionStat, len(stats))
	for _, s := range stats {
		statByNumber[s.QuestionNumber] = s
	}
	reports := make([]QuestionReport, 0, len(questions))
	for _, q := range questions {
		st := statByNumber[q.Number]
		st.QuestionNumber = q.Number
		reports = append(reports, QuestionReport{
			Question:    q,
			Statistics:  st,
			CorrectRate: st.CorrectRate(),
		})
	}

	n := len(subs)
	ov := Overview{TotalStudents: n, Reliability: rel.Reliability(subs)}
	thetas := make([]float64, 0, n)
	if n > 0 {
		var sumScore, sumTheta float64
		for _, s := range subs {
			sumScore += s.TotalScore
			sumTheta += s.TotalTheta
			thetas = append(thetas, s.TotalTheta)
		}
		ov.AvgScore = math.Round(sumScore/float64(n)*10) / 10
		ov.AvgTheta = math.Round(sumTheta/float64(n)*100) / 100
	}

	parts := make([]PartAverage, 0, len(ex.PartDivision))
	if n > 0 {
		from := 1
		for i, size := range ex.PartDivision {
			sum := 0.0
			for _, s := range subs {
				if i < len(s.PartScores) {
					sum += s.PartScores[i]
				}
			}
			parts = append(parts, PartAverage{
				Part:     i + 1,
				From:     from,
				To:       from + size - 1,
				AvgScore: sum / float64(n),
				Count:    n,
			})
			from += size
		}
	}

	return Statistics{
		Exam:           ex,
		Overview:       ov,
		Questions:      reports,
		ThetaHistogram: Histogram(thetas),
		PartAverages:   parts,
	}
}
