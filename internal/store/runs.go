package store

import (
	"context"
	"time"
)

// Run is one entry of the run log.
type Run struct {
	ID        string
	Started   time.Time
	Finished  time.Time
	Succeeded int64
	Failed    int64
}

// SaveRun writes r, replacing an entry with the same id.
func (ss *Session) SaveRun(ctx context.Context, r Run) error {
	tx, err := ss.conn.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin run", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id=?`, r.ID); err != nil {
		return unavailable("replace run", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Started.UTC(), r.Finished.UTC(), r.Succeeded, r.Failed); err != nil {
		return unavailable("insert run", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit run", err)
	}
	return nil
}

// Runs returns the run log, most recent first.
func (ss *Session) Runs(ctx context.Context) ([]Run, error) {
	rows, err := ss.conn.QueryContext(ctx,
		`SELECT run_id, started, finished, succeeded, failed FROM runs ORDER BY started DESC, run_id`)
	if err != nil {
		return nil, unavailable("query runs", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Started, &r.Finished, &r.Succeeded, &r.Failed); err != nil {
			return nil, unavailable("scan run", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate runs", err)
	}
	return out, nil
}
