package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types appended by the scoring service.
const (
	TypeSubmissionScored = "submission.scored"
	TypeExamRecalibrated = "exam.recalibrated"
)

// Repo appends to the append-only event_log table. Recalibration treats item
// difficulties as derived state; the log plus the submission rows are the
// durable record everything can be recomputed from.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Append marshals payload to JSON and appends one event keyed by a natural
// key (submission ID, exam ID).
func (r *Repo) Append(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	return err
}
