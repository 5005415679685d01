package store

import (
	"context"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
)

// WriteCoverage replaces the coverage rows of scope for program.
func (ss *Session) WriteCoverage(ctx context.Context, scope consensus.Scope, program string, rows []coverage.Row) error {
	tx, err := ss.conn.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin coverage", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM coverage WHERE sample=? AND library_name=? AND run_id=? AND program=?`,
		scope.Sample, scope.Library, scope.RunID, program); err != nil {
		return unavailable("clear coverage", err)
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO coverage VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			scope.Sample, scope.Library, scope.RunID, r.Amplicon, program,
			r.Chrom, r.Start, r.End, r.NumReads, r.MeanCoverage); err != nil {
			return unavailable("insert coverage", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit coverage", err)
	}
	return nil
}

// Coverage returns the coverage rows of scope for program ordered by
// amplicon.
func (ss *Session) Coverage(ctx context.Context, scope consensus.Scope, program string) ([]coverage.Row, error) {
	rows, err := ss.conn.QueryContext(ctx, `SELECT amplicon, chrom, start_pos, end_pos, num_reads, mean_coverage
		FROM coverage
		WHERE sample=? AND library_name=? AND run_id=? AND program=?
		ORDER BY amplicon`,
		scope.Sample, scope.Library, scope.RunID, program)
	if err != nil {
		return nil, unavailable("query coverage", err)
	}
	defer rows.Close()

	var out []coverage.Row
	for rows.Next() {
		var r coverage.Row
		if err := rows.Scan(&r.Amplicon, &r.Chrom, &r.Start, &r.End, &r.NumReads, &r.MeanCoverage); err != nil {
			return nil, unavailable("scan coverage", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate coverage", err)
	}
	return out, nil
}
