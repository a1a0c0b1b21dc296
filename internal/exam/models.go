package exam

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTotalQuestions is the item count exams carry unless configured
// otherwise at creation time.
const DefaultTotalQuestions = 100

// PartDivision is the ordered list of contiguous part sizes an exam's items
// are split into for per-part ability estimation.
type PartDivision []int

// DefaultPartDivision returns the standard 40-20-40 split.
func DefaultPartDivision() PartDivision { return PartDivision{40, 20, 40} }

// ParsePartDivision parses a dashed division like "40-20-40". Divisions are
// parsed once at exam creation, never at scoring time.
func ParsePartDivision(s string) (PartDivision, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	div := make(PartDivision, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid part division %q", s)
		}
		div = append(div, n)
	}
	if len(div) == 0 {
		return nil, fmt.Errorf("invalid part division %q", s)
	}
	return div, nil
}

// Validate checks that the parts cover exactly total items.
func (d PartDivision) Validate(total int) error {
	if len(d) == 0 {
		return fmt.Errorf("empty part division")
	}
	sum := 0
	for _, n := range d {
		sum += n
	}
	if sum != total {
		return fmt.Errorf("part division sums to %d, exam has %d questions", sum, total)
	}
	return nil
}

// String renders the dashed form stored on the exam record.
func (d PartDivision) String() string {
	parts := make([]string, len(d))
	for i, n := range d {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

type Exam struct {
	ID             string       `json:"id"`
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	TotalQuestions int          `json:"total_questions"`
	PartDivision   PartDivision `json:"part_division"`
	CreatedAt      int64        `json:"created_at,omitempty"`

	Questions []Question `json:"questions,omitempty"`
}

// Question is one exam item. Difficulty is the 1PL b-parameter; it starts at
// 0.0 and is only ever rewritten by recalibration.
type Question struct {
	ExamID        string  `json:"exam_id,omitempty"`
	Number        int     `json:"number"`
	Type          string  `json:"type"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
	Difficulty    float64 `json:"difficulty"`
}

// Submission is one scored attempt. Thetas and scores are fixed at submit
// time; later recalibration never rewrites them.
type Submission struct {
	ID          string         `json:"id"`
	ExamID      string         `json:"exam_id"`
	StudentName string         `json:"student_name"`
	StudentCode string         `json:"student_code"`
	Answers     map[int]string `json:"answers"`
	PartThetas  []float64      `json:"part_thetas"`
	PartScores  []float64      `json:"part_scores"`
	TotalTheta  float64        `json:"total_theta"`
	TotalScore  float64        `json:"total_score"`
	CreatedAt   int64          `json:"created_at,omitempty"`
}

// QuestionStat carries the running counters attached to one item. Counters
// only grow while the exam lives; correct never exceeds attempts.
type QuestionStat struct {
	ExamID          string  `json:"exam_id,omitempty"`
	QuestionNumber  int     `json:"question_number"`
	TotalAttempts   int     `json:"total_attempts"`
	CorrectAttempts int     `json:"correct_attempts"`
	OptionA         int     `json:"option_a_count"`
	OptionB         int     `json:"option_b_count"`
	OptionC         int     `json:"option_c_count"`
	OptionD         int     `json:"option_d_count"`
	AverageTheta    float64 `json:"average_theta"`
}

// CorrectRate returns correct/attempts, 0 for an unattempted item.
func (s QuestionStat) CorrectRate() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.CorrectAttempts) / float64(s.TotalAttempts)
}
