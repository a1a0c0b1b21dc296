package exam

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/exam-metrics/raschd/internal/eventlog"
	"github.com/exam-metrics/raschd/internal/grading"
	"github.com/exam-metrics/raschd/internal/storage"
)

// EventSink matches eventlog.Repo. A nil sink disables event recording.
type EventSink interface {
	Append(ctx context.Context, typ, key string, payload any) error
}

// Service orchestrates scoring, persistence, statistics and recalibration.
// Statistic counters and difficulty updates are read-modify-write on shared
// rows, so everything that mutates them runs under a per-exam mutex.
type Service struct {
	store  Store
	proc   *Processor
	rel    ReliabilityEstimator
	events EventSink
	sheets storage.BlobStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type ServiceOption func(*Service)

func WithEventSink(es EventSink) ServiceOption {
	return func(s *Service) { s.events = es }
}

func WithSheetArchive(bs storage.BlobStore) ServiceOption {
	return func(s *Service) { s.sheets = bs }
}

func WithReliability(r ReliabilityEstimator) ServiceOption {
	return func(s *Service) { s.rel = r }
}

func NewService(store Store, proc *Processor, opts ...ServiceOption) *Service {
	if proc == nil {
		proc = NewProcessor(nil)
	}
	s := &Service{
		store: store,
		proc:  proc,
		rel:   DefaultReliability,
		locks: map[string]*sync.Mutex{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// lockFor returns the mutex serializing counter updates and recalibration
// for one exam.
func (s *Service) lockFor(examID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[examID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[examID] = l
	}
	return l
}

type CreateExamInput struct {
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	TotalQuestions int        `json:"total_questions"`
	PartDivision   string     `json:"part_division"`
	Questions      []Question `json:"questions"`
}

// CreateExam validates and persists a new exam with its items. The part
// division is parsed and checked against the total here, once, so scoring
// never deals with a malformed division.
func (s *Service) CreateExam(ctx context.Context, in CreateExamInput) (Exam, error) {
	if strings.TrimSpace(in.Code) == "" || strings.TrimSpace(in.Name) == "" {
		return Exam{}, fmt.Errorf("exam code and name required")
	}
	total := in.TotalQuestions
	if total == 0 {
		total = DefaultTotalQuestions
	}
	var div PartDivision
	if strings.TrimSpace(in.PartDivision) == "" {
		div = DefaultPartDivision()
	} else {
		var err error
		if div, err = ParsePartDivision(in.PartDivision); err != nil {
			return Exam{}, err
		}
	}
	if err := div.Validate(total); err != nil {
		return Exam{}, err
	}

	e := Exam{
		ID:             uuid.NewString(),
		Code:           strings.TrimSpace(in.Code),
		Name:           strings.TrimSpace(in.Name),
		TotalQuestions: total,
		PartDivision:   div,
		Questions:      in.Questions,
	}
	if err := s.store.PutExam(ctx, e); err != nil {
		return Exam{}, err
	}
	return e, nil
}

// GetExam loads an exam with its items. Answer keys are stripped unless
// includeKeys is set; students only ever see the key-less view.
func (s *Service) GetExam(ctx context.Context, code string, includeKeys bool) (Exam, error) {
	ex, err := s.store.GetExam(ctx, code)
	if err != nil {
		return Exam{}, err
	}
	questions, err := s.store.QuestionsForExam(ctx, ex.ID)
	if err != nil {
		return Exam{}, err
	}
	if !includeKeys {
		for i := range questions {
			questions[i].CorrectAnswer = ""
		}
	}
	ex.Questions = questions
	return ex, nil
}

func (s *Service) ListExams(ctx context.Context) ([]Exam, error) {
	return s.store.ListExams(ctx)
}

func (s *Service) DeleteExam(ctx context.Context, code string) error {
	return s.store.DeleteExam(ctx, code)
}

type SubmitInput struct {
	ExamCode    string `json:"exam_code"`
	StudentName string `json:"student_name"`
	StudentCode string `json:"student_code"`
	Answers     string `json:"answers"` // raw sheet text, one "<number> <answer>" per line
}

// SubmitAnswers scores one attempt end to end: grade, estimate theta per
// part and overall, persist atomically with the statistic increments, then
// run the calibration pass. Scoring always yields a result for degenerate
// sheets (neutral theta); only structural violations and unknown exams are
// rejected.
func (s *Service) SubmitAnswers(ctx context.Context, in SubmitInput) (Submission, error) {
	if strings.TrimSpace(in.StudentName) == "" || strings.TrimSpace(in.StudentCode) == "" {
		return Submission{}, fmt.Errorf("student name and code required")
	}
	ex, err := s.store.GetExam(ctx, in.ExamCode)
	if err != nil {
		return Submission{}, err
	}
	questions, err := s.store.QuestionsForExam(ctx, ex.ID)
	if err != nil {
		return Submission{}, err
	}
	if len(questions) != ex.TotalQuestions {
		return Submission{}, fmt.Errorf("%w: exam %s has %d of %d questions",
			ErrQuestionCount, ex.Code, len(questions), ex.TotalQuestions)
	}

	res, err := s.proc.Process(in.Answers, questions, ex.PartDivision)
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{
		ID:          uuid.NewString(),
		ExamID:      ex.ID,
		StudentName: strings.TrimSpace(in.StudentName),
		StudentCode: strings.TrimSpace(in.StudentCode),
		Answers:     res.Answers,
		PartThetas:  res.PartThetas,
		PartScores:  res.PartScores,
		TotalTheta:  res.TotalTheta,
		TotalScore:  res.TotalScore,
	}

	lock := s.lockFor(ex.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.SaveSubmission(ctx, sub, res.Responses, questions); err != nil {
		return Submission{}, err
	}

	if s.sheets != nil {
		key := path.Join("sheets", ex.Code, sub.ID+".txt")
		if _, err := s.sheets.Put(key, strings.NewReader(in.Answers)); err != nil {
			log.Printf("archive sheet %s: %v", key, err)
		}
	}
	if s.events != nil {
		if err := s.events.Append(ctx, eventlog.TypeSubmissionScored, sub.ID, sub); err != nil {
			log.Printf("append %s event: %v", eventlog.TypeSubmissionScored, err)
		}
	}

	// The calibration pass rides on rows that are already durable. A failure
	// here never touches the submission just committed; the pass is
	// idempotent and re-run on the next submit or on demand.
	if _, err := s.runCalibration(ctx, ex, questions); err != nil {
		log.Printf("recalibrate exam %s: %v", ex.Code, err)
	}
	return sub, nil
}

// RecalibrateExam re-runs the calibration pass for one exam on demand.
// Returns nil difficulties when the pool is below the sample-size gate.
func (s *Service) RecalibrateExam(ctx context.Context, examCode string) (map[int]float64, error) {
	ex, err := s.store.GetExam(ctx, examCode)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.QuestionsForExam(ctx, ex.ID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(ex.ID)
	lock.Lock()
	defer lock.Unlock()
	return s.runCalibration(ctx, ex, questions)
}

// runCalibration must be called with the exam lock held.
func (s *Service) runCalibration(ctx context.Context, ex Exam, questions []Question) (map[int]float64, error) {
	subs, err := s.store.SubmissionsForExam(ctx, ex.ID)
	if err != nil {
		return nil, err
	}
	diffs := Recalibrate(questions, subs)
	if diffs == nil {
		return nil, nil
	}
	if err := s.store.SaveDifficulties(ctx, ex.ID, diffs); err != nil {
		return nil, err
	}
	if s.events != nil {
		if err := s.events.Append(ctx, eventlog.TypeExamRecalibrated, ex.ID, diffs); err != nil {
			log.Printf("append %s event: %v", eventlog.TypeExamRecalibrated, err)
		}
	}
	return diffs, nil
}

// QuestionDetail is the per-item breakdown on a result view.
type QuestionDetail struct {
	Number        int     `json:"question_number"`
	StudentAnswer string  `json:"student_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	Part          int     `json:"part"`
	Difficulty    float64 `json:"difficulty"`
}

// ResultView is a scored submission with its per-item detail and ranking.
type ResultView struct {
	Submission Submission       `json:"submission"`
	ExamCode   string           `json:"exam_code"`
	ExamName   string           `json:"exam_name"`
	Questions  []QuestionDetail `json:"question_details"`
	Ranking    Ranking          `json:"ranking"`
}

// Result assembles the detailed view of one student's attempt. Answers are
// re-graded against the current items; the stored thetas and scores stay as
// committed at submit time.
func (s *Service) Result(ctx context.Context, examCode, studentCode string) (ResultView, error) {
	ex, err := s.store.GetExam(ctx, examCode)
	if err != nil {
		return ResultView{}, err
	}
	sub, err := s.store.GetSubmission(ctx, ex.ID, studentCode)
	if err != nil {
		return ResultView{}, err
	}
	questions, err := s.store.QuestionsForExam(ctx, ex.ID)
	if err != nil {
		return ResultView{}, err
	}

	details := make([]QuestionDetail, 0, len(questions))
	for _, q := range questions {
		ans := sub.Answers[q.Number]
		details = append(details, QuestionDetail{
			Number:        q.Number,
			StudentAnswer: ans,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     grading.Check(ans, q.CorrectAnswer, q.Type),
			Part:          ex.PartDivision.PartOf(q.Number),
			Difficulty:    q.Difficulty,
		})
	}

	subs, err := s.store.SubmissionsForExam(ctx, ex.ID)
	if err != nil {
		return ResultView{}, err
	}
	ranking, err := Rank(subs, sub.ID)
	if err != nil {
		return ResultView{}, err
	}

	return ResultView{
		Submission: sub,
		ExamCode:   ex.Code,
		ExamName:   ex.Name,
		Questions:  details,
		Ranking:    ranking,
	}, nil
}

// Statistics assembles the reporting view for one exam from a consistent
// snapshot of its items, counters and submissions.
func (s *Service) Statistics(ctx context.Context, examCode string) (Statistics, error) {
	ex, err := s.store.GetExam(ctx, examCode)
	if err != nil {
		return Statistics{}, err
	}

	lock := s.lockFor(ex.ID)
	lock.Lock()
	defer lock.Unlock()

	questions, err := s.store.QuestionsForExam(ctx, ex.ID)
	if err != nil {
		return Statistics{}, err
	}
	stats, err := s.store.StatsForExam(ctx, ex.ID)
	if err != nil {
		return Statistics{}, err
	}
	subs, err := s.store.SubmissionsForExam(ctx, ex.ID)
	if err != nil {
		return Statistics{}, err
	}
	return Aggregate(ex, questions, stats, subs, s.rel), nil
}
