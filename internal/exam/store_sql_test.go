package exam_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/exam-metrics/raschd/internal/db"
	"github.com/exam-metrics/raschd/internal/exam"
	"github.com/exam-metrics/raschd/internal/grading"
)

func openTestStore(t *testing.T) *exam.SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "store_test.db") + "?_pragma=foreign_keys(1)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return exam.NewSQLStore(dbh)
}

func testExam() exam.Exam {
	return exam.Exam{
		ID:             "ex-1",
		Code:           "MATH01",
		Name:           "Math mock exam",
		TotalQuestions: 4,
		PartDivision:   exam.PartDivision{2, 2},
		Questions: []exam.Question{
			{Number: 1, Type: grading.TypeMultipleChoice, CorrectAnswer: "A"},
			{Number: 2, Type: grading.TypeMultipleChoice, CorrectAnswer: "B", Difficulty: 0.3},
			{Number: 3, Type: grading.TypeFillNumber, CorrectAnswer: "7.5"},
			{Number: 4, Type: grading.TypeTrueFalse, CorrectAnswer: "DSDS"},
		},
	}
}

func TestSQLStoreExamRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.PutExam(ctx, testExam()); err != nil {
		t.Fatalf("PutExam: %v", err)
	}
	if err := store.PutExam(ctx, testExam()); !errors.Is(err, exam.ErrExamExists) {
		t.Fatalf("duplicate PutExam err=%v, want ErrExamExists", err)
	}

	got, err := store.GetExam(ctx, "MATH01")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if got.ID != "ex-1" || got.Name != "Math mock exam" || got.TotalQuestions != 4 {
		t.Fatalf("GetExam=%+v", got)
	}
	if got.PartDivision.String() != "2-2" {
		t.Fatalf("part division=%v", got.PartDivision)
	}

	if _, err := store.GetExam(ctx, "NOPE"); !errors.Is(err, exam.ErrExamNotFound) {
		t.Fatalf("missing exam err=%v, want ErrExamNotFound", err)
	}

	qs, err := store.QuestionsForExam(ctx, "ex-1")
	if err != nil {
		t.Fatalf("QuestionsForExam: %v", err)
	}
	if len(qs) != 4 || qs[0].Number != 1 || qs[3].Number != 4 {
		t.Fatalf("questions=%+v", qs)
	}
	if qs[1].Difficulty != 0.3 {
		t.Fatalf("question 2 difficulty=%v", qs[1].Difficulty)
	}

	list, err := store.ListExams(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListExams=%v err=%v", list, err)
	}
}

func TestSQLStoreSubmissionAndStats(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.PutExam(ctx, testExam()); err != nil {
		t.Fatalf("PutExam: %v", err)
	}
	qs, err := store.QuestionsForExam(ctx, "ex-1")
	if err != nil {
		t.Fatalf("QuestionsForExam: %v", err)
	}

	sub := exam.Submission{
		ID:          "sub-1",
		ExamID:      "ex-1",
		StudentName: "An",
		StudentCode: "S001",
		Answers:     map[int]string{1: "A", 2: "C", 3: "7.5", 4: "DSDS"},
		PartThetas:  []float64{1.2, -0.4},
		PartScores:  []float64{70, 43.3},
		TotalTheta:  0.8,
		TotalScore:  63.3,
	}
	if err := store.SaveSubmission(ctx, sub, []int{1, 0, 1, 1}, qs); err != nil {
		t.Fatalf("SaveSubmission: %v", err)
	}

	got, err := store.GetSubmission(ctx, "ex-1", "S001")
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if got.ID != "sub-1" || got.Answers[2] != "C" || got.TotalTheta != 0.8 {
		t.Fatalf("GetSubmission=%+v", got)
	}
	if len(got.PartThetas) != 2 || got.PartThetas[0] != 1.2 {
		t.Fatalf("part thetas=%v", got.PartThetas)
	}
	if _, err := store.GetSubmission(ctx, "ex-1", "S999"); !errors.Is(err, exam.ErrSubmissionNotFound) {
		t.Fatalf("missing submission err=%v", err)
	}

	stats, err := store.StatsForExam(ctx, "ex-1")
	if err != nil {
		t.Fatalf("StatsForExam: %v", err)
	}
	if len(stats) != 4 {
		t.Fatalf("stats=%+v", stats)
	}
	// Item 1: attempted, correct, option A tallied, average theta seeded.
	if stats[0].TotalAttempts != 1 || stats[0].CorrectAttempts != 1 || stats[0].OptionA != 1 {
		t.Fatalf("item 1 stats=%+v", stats[0])
	}
	if math.Abs(stats[0].AverageTheta-0.8) > 1e-9 {
		t.Fatalf("item 1 average theta=%v, want 0.8", stats[0].AverageTheta)
	}
	// Item 2: attempted, wrong, option C tallied, average theta untouched.
	if stats[1].CorrectAttempts != 0 || stats[1].OptionC != 1 || stats[1].AverageTheta != 0 {
		t.Fatalf("item 2 stats=%+v", stats[1])
	}
	// Item 3 is fill_number: no option tallies even though answered.
	if stats[2].OptionA+stats[2].OptionB+stats[2].OptionC+stats[2].OptionD != 0 {
		t.Fatalf("item 3 option counts=%+v", stats[2])
	}

	// Second correct responder moves the running mean.
	sub2 := sub
	sub2.ID = "sub-2"
	sub2.StudentCode = "S002"
	sub2.TotalTheta = 1.2
	if err := store.SaveSubmission(ctx, sub2, []int{1, 0, 1, 1}, qs); err != nil {
		t.Fatalf("SaveSubmission 2: %v", err)
	}
	stats, _ = store.StatsForExam(ctx, "ex-1")
	if math.Abs(stats[0].AverageTheta-1.0) > 1e-9 {
		t.Fatalf("item 1 running average=%v, want 1.0", stats[0].AverageTheta)
	}

	subs, err := store.SubmissionsForExam(ctx, "ex-1")
	if err != nil || len(subs) != 2 {
		t.Fatalf("SubmissionsForExam=%v err=%v", subs, err)
	}
}

func TestSQLStoreDifficultiesAndCascade(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.PutExam(ctx, testExam()); err != nil {
		t.Fatalf("PutExam: %v", err)
	}

	if err := store.SaveDifficulties(ctx, "ex-1", map[int]float64{1: 0.75, 3: -1.1}); err != nil {
		t.Fatalf("SaveDifficulties: %v", err)
	}
	qs, _ := store.QuestionsForExam(ctx, "ex-1")
	if qs[0].Difficulty != 0.75 || qs[2].Difficulty != -1.1 {
		t.Fatalf("difficulties not persisted: %+v", qs)
	}
	if qs[1].Difficulty != 0.3 {
		t.Fatalf("untouched difficulty changed: %+v", qs[1])
	}

	if err := store.DeleteExam(ctx, "MATH01"); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}
	if _, err := store.GetExam(ctx, "MATH01"); !errors.Is(err, exam.ErrExamNotFound) {
		t.Fatalf("deleted exam still readable: %v", err)
	}
	qs, err := store.QuestionsForExam(ctx, "ex-1")
	if err != nil {
		t.Fatalf("QuestionsForExam after delete: %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("questions survived cascade: %+v", qs)
	}
	if err := store.DeleteExam(ctx, "MATH01"); !errors.Is(err, exam.ErrExamNotFound) {
		t.Fatalf("double delete err=%v", err)
	}
}
