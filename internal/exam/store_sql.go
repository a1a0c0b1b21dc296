package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/exam-metrics/raschd/internal/grading"
)

// SQLStore persists the domain over database/sql; works against sqlite
// (modernc) and postgres (pgx stdlib) with the same statements.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	var exist int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE code=$1`, e.Code).Scan(&exist)
	switch {
	case err == nil:
		return ErrExamExists
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exams (id,code,name,total_questions,part_division,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.Code, e.Name, e.TotalQuestions, e.PartDivision.String(), time.Now().Unix()); err != nil {
		return err
	}
	for _, q := range e.Questions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (exam_id,question_number,question_type,correct_answer,difficulty)
			 VALUES ($1,$2,$3,$4,$5)`,
			e.ID, q.Number, q.Type, q.CorrectAnswer, q.Difficulty); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO question_stats (exam_id,question_number) VALUES ($1,$2)`,
			e.ID, q.Number); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetExam(ctx context.Context, code string) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,code,name,total_questions,part_division,created_at FROM exams WHERE code=$1`, code)
	var e Exam
	var division string
	if err := row.Scan(&e.ID, &e.Code, &e.Name, &e.TotalQuestions, &division, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	div, err := ParsePartDivision(division)
	if err != nil {
		return Exam{}, err
	}
	e.PartDivision = div
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context) ([]Exam, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,code,name,total_questions,part_division,created_at FROM exams ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exam
	for rows.Next() {
		var e Exam
		var division string
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.TotalQuestions, &division, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.PartDivision, err = ParsePartDivision(division); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteExam(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exams WHERE code=$1`, code)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrExamNotFound
	}
	return nil
}

func (s *SQLStore) QuestionsForExam(ctx context.Context, examID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exam_id,question_number,question_type,correct_answer,difficulty
		 FROM questions WHERE exam_id=$1 ORDER BY question_number`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ExamID, &q.Number, &q.Type, &q.CorrectAnswer, &q.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// SaveSubmission writes the attempt and the derived statistic increments in
// one transaction. Callers serialize per exam; the counter updates here are
// read-modify-write on shared rows.
func (s *SQLStore) SaveSubmission(ctx context.Context, sub Submission, responses []int, questions []Question) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return err
	}
	partThetas, err := json.Marshal(sub.PartThetas)
	if err != nil {
		return err
	}
	partScores, err := json.Marshal(sub.PartScores)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (id,exam_id,student_name,student_code,answers_json,
		   part_thetas_json,part_scores_json,total_theta,total_score,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sub.ID, sub.ExamID, sub.StudentName, sub.StudentCode, string(answers),
		string(partThetas), string(partScores), sub.TotalTheta, sub.TotalScore,
		time.Now().Unix()); err != nil {
		return err
	}

	for i, q := range questions {
		correct := 0
		if i < len(responses) && responses[i] == 1 {
			correct = 1
		}
		var a, b, c, d int
		if q.Type == grading.TypeMultipleChoice {
			switch strings.ToUpper(strings.TrimSpace(sub.Answers[q.Number])) {
			case "A":
				a = 1
			case "B":
				b = 1
			case "C":
				c = 1
			case "D":
				d = 1
			}
		}
		// average_theta is the running mean theta of correct responders; the
		// expression reads the pre-update counters.
		if _, err := tx.ExecContext(ctx,
			`UPDATE question_stats SET
			   total_attempts = total_attempts + 1,
			   correct_attempts = correct_attempts + $1,
			   option_a_count = option_a_count + $2,
			   option_b_count = option_b_count + $3,
			   option_c_count = option_c_count + $4,
			   option_d_count = option_d_count + $5,
			   average_theta = CASE WHEN $6 = 1
			     THEN (average_theta * correct_attempts + $7) / (correct_attempts + 1)
			     ELSE average_theta END
			 WHERE exam_id = $8 AND question_number = $9`,
			correct, a, b, c, d, correct, sub.TotalTheta, sub.ExamID, q.Number); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetSubmission(ctx context.Context, examID, studentCode string) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,exam_id,student_name,student_code,answers_json,part_thetas_json,
		   part_scores_json,total_theta,total_score,created_at
		 FROM submissions WHERE exam_id=$1 AND student_code=$2
		 ORDER BY created_at LIMIT 1`, examID, studentCode)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, err
}

func (s *SQLStore) SubmissionsForExam(ctx context.Context, examID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,exam_id,student_name,student_code,answers_json,part_thetas_json,
		   part_scores_json,total_theta,total_score,created_at
		 FROM submissions WHERE exam_id=$1 ORDER BY created_at, id`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveDifficulties(ctx context.Context, examID string, difficulties map[int]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for number, b := range difficulties {
		if _, err := tx.ExecContext(ctx,
			`UPDATE questions SET difficulty=$1 WHERE exam_id=$2 AND question_number=$3`,
			b, examID, number); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) StatsForExam(ctx context.Context, examID string) ([]QuestionStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exam_id,question_number,total_attempts,correct_attempts,
		   option_a_count,option_b_count,option_c_count,option_d_count,average_theta
		 FROM question_stats WHERE exam_id=$1 ORDER BY question_number`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuestionStat
	for rows.Next() {
		var st QuestionStat
		if err := rows.Scan(&st.ExamID, &st.QuestionNumber, &st.TotalAttempts, &st.CorrectAttempts,
			&st.OptionA, &st.OptionB, &st.OptionC, &st.OptionD, &st.AverageTheta); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var answers, partThetas, partScores string
	if err := row.Scan(&sub.ID, &sub.ExamID, &sub.StudentName, &sub.StudentCode,
		&answers, &partThetas, &partScores, &sub.TotalTheta, &sub.TotalScore, &sub.CreatedAt); err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
		sub.Answers = map[int]string{}
	}
	if err := json.Unmarshal([]byte(partThetas), &sub.PartThetas); err != nil {
		sub.PartThetas = nil
	}
	if err := json.Unmarshal([]byte(partScores), &sub.PartScores); err != nil {
		sub.PartScores = nil
	}
	return sub, nil
}
