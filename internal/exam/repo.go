package exam

import (
	"context"
	"errors"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrExamExists         = errors.New("exam code already exists")
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrQuestionCount marks a structural violation: the exam does not carry
	// exactly its configured number of items. Scoring is rejected outright.
	ErrQuestionCount = errors.New("exam question count mismatch")
)

// Store is the persistence collaborator for exams, items, submissions and
// per-item counters. SaveSubmission must be atomic: the submission row and
// every statistic increment commit together or not at all.
type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, code string) (Exam, error)
	ListExams(ctx context.Context) ([]Exam, error)
	DeleteExam(ctx context.Context, code string) error

	// QuestionsForExam returns items ordered by number, answer keys included.
	QuestionsForExam(ctx context.Context, examID string) ([]Question, error)

	// SaveSubmission persists the scored attempt and applies the statistic
	// increments derived from responses (0/1 per question, exam order).
	SaveSubmission(ctx context.Context, sub Submission, responses []int, questions []Question) error
	GetSubmission(ctx context.Context, examID, studentCode string) (Submission, error)
	SubmissionsForExam(ctx context.Context, examID string) ([]Submission, error)

	SaveDifficulties(ctx context.Context, examID string, difficulties map[int]float64) error
	StatsForExam(ctx context.Context, examID string) ([]QuestionStat, error)
}
