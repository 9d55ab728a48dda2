package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jask/wayshell/internal/database"
	"github.com/jask/wayshell/internal/script"
)

// HistoryEntry is one evaluated script query.
type HistoryEntry struct {
	Seq       int64
	QueryID   string
	Kind      string
	Code      string
	Output    string
	Result    string
	Error     *string
	CreatedAt time.Time
}

// HistoryRepo handles the script_history table. It satisfies script.Recorder.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

var _ script.Recorder = (*HistoryRepo)(nil)

// Record stores q and the engine's response. Returned values are kept tab
// separated, the way print joins its arguments.
func (r *HistoryRepo) Record(ctx context.Context, q script.Query, resp script.Response) error {
	var errText *string
	if resp.Err != nil {
		s := resp.Err.Error()
		errText = &s
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO script_history(query_id, kind, code, output, result, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`, q.ID, q.Kind.String(), q.Code, resp.Output, strings.Join(resp.Values, "\t"), errText,
		database.Now())
	return err
}

// Recent returns up to limit entries, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT seq, query_id, kind, code, output, result, error, created_at
	FROM script_history
	ORDER BY seq DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Seq, &e.QueryID, &e.Kind, &e.Code, &e.Output, &e.Result, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ByQueryID returns the entry for id, or nil when none was recorded.
func (r *HistoryRepo) ByQueryID(ctx context.Context, id string) (*HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT seq, query_id, kind, code, output, result, error, created_at
	FROM script_history WHERE query_id = ?`, id)
	var e HistoryEntry
	if err := row.Scan(&e.Seq, &e.QueryID, &e.Kind, &e.Code, &e.Output, &e.Result, &e.Error, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Prune keeps the newest keep entries and deletes the rest. It reports how
// many rows were removed.
func (r *HistoryRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	var removed int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var total int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM script_history`).Scan(&total); err != nil {
			return err
		}
		if total <= int64(keep) {
			return nil
		}
		res, err := tx.ExecContext(ctx, `
		DELETE FROM script_history
		WHERE seq NOT IN (SELECT seq FROM script_history ORDER BY seq DESC LIMIT ?)`, keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}
