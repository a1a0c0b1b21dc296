package exam

import (
	"github.com/exam-metrics/raschd/internal/grading"
	"github.com/exam-metrics/raschd/internal/irt"
)

// Result bundles everything Process derives from one raw answer sheet.
type Result struct {
	Responses  []int `json:"responses"` // 0/1 per item, exam order
	PartThetas []float64
	PartScores []float64
	TotalTheta float64
	TotalScore float64
	Answers    map[int]string // parsed sheet, persisted for later recalibration
}

// Processor grades raw answer sheets and scores them on the theta scale.
type Processor struct {
	est *irt.Estimator
}

// NewProcessor wires a processor around the given estimator. A nil estimator
// gets the default [-3,3] bounds.
func NewProcessor(est *irt.Estimator) *Processor {
	if est == nil {
		est = irt.NewEstimator()
	}
	return &Processor{est: est}
}

// Estimator exposes the underlying estimator for score normalization.
func (p *Processor) Estimator() *irt.Estimator { return p.est }

// Process parses and grades one answer sheet against the exam's items in
// order, then estimates ability independently for each contiguous part and
// for the whole sheet. questions must be sorted by number and the division
// must cover them exactly; a mismatch rejects the operation outright rather
// than producing a degraded score. No storage side effects.
func (p *Processor) Process(rawText string, questions []Question, parts PartDivision) (Result, error) {
	if err := parts.Validate(len(questions)); err != nil {
		return Result{}, err
	}

	answers := grading.ParseAnswers(rawText)
	responses := make([]int, len(questions))
	difficulties := make([]float64, len(questions))
	for i, q := range questions {
		if grading.Check(answers[q.Number], q.CorrectAnswer, q.Type) {
			responses[i] = 1
		}
		difficulties[i] = q.Difficulty
	}

	res := Result{
		Responses:  responses,
		PartThetas: make([]float64, 0, len(parts)),
		PartScores: make([]float64, 0, len(parts)),
		Answers:    answers,
	}
	start := 0
	for _, size := range parts {
		end := start + size
		theta := p.est.Estimate(responses[start:end], difficulties[start:end])
		res.PartThetas = append(res.PartThetas, theta)
		res.PartScores = append(res.PartScores, p.est.Scale(theta))
		start = end
	}
	res.TotalTheta = p.est.Estimate(responses, difficulties)
	res.TotalScore = p.est.Scale(res.TotalTheta)
	return res, nil
}

// PartOf returns the 1-based part a question number falls into, or 0 when
// the number is outside the division.
func (d PartDivision) PartOf(number int) int {
	limit := 0
	for i, size := range d {
		limit += size
		if number <= limit {
			if number < 1 {
				return 0
			}
			return i + 1
		}
	}
	return 0
}
