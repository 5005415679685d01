package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/tier"
)

// Entry is a stored consensus record with the tier it was assigned when
// written. Filtered and off-target records carry tier "None".
type Entry struct {
	Record     *consensus.Record
	Assignment tier.Assignment
}

// Filter restricts a query. Empty fields match everything.
type Filter struct {
	Sample  string
	Library string
	RunID   string
	Chrom   string
	Gene    string
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(col, val string) {
		if val != "" {
			conds = append(conds, col+"=?")
			args = append(args, val)
		}
	}
	add("sample", f.Sample)
	add("library_name", f.Library)
	add("run_id", f.RunID)
	add("chrom", f.Chrom)
	add("gene", f.Gene)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// payload is the JSON form of a record. Caller records are keyed by caller
// name so they decode into their concrete types.
type payload struct {
	Record    *consensus.Record          `json:"record"`
	PerCaller map[string]json.RawMessage `json:"per_caller"`
}

func encodeRecord(rec *consensus.Record) (string, error) {
	p := payload{Record: rec, PerCaller: make(map[string]json.RawMessage, len(rec.PerCaller))}
	for name, cr := range rec.PerCaller {
		raw, err := json.Marshal(cr)
		if err != nil {
			return "", fmt.Errorf("encode %s record: %w", name, err)
		}
		p.PerCaller[name] = raw
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode record %s: %w", rec.Key, err)
	}
	return string(b), nil
}

func decodeRecord(s string) (*consensus.Record, error) {
	var p payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if p.Record == nil {
		return nil, fmt.Errorf("decode record: empty payload")
	}
	rec := p.Record
	rec.PerCaller = make(map[string]caller.Record, len(p.PerCaller))
	for name, raw := range p.PerCaller {
		cr, err := caller.New(name)
		if err != nil {
			return nil, fmt.Errorf("decode record %s: %w", rec.Key, err)
		}
		if err := json.Unmarshal(raw, cr); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", name, err)
		}
		rec.PerCaller[name] = cr
	}
	return rec, nil
}

// row returns the column values of e in table order.
func row(e Entry) ([]driver.Value, error) {
	rec := e.Record
	body, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	return []driver.Value{
		rec.Key.Chrom, rec.Key.Pos(), rec.Key.Start, rec.Key.End, rec.Key.Ref, rec.Key.Alt,
		rec.Scope.Sample, rec.Scope.Library, rec.Scope.RunID, rec.Scope.ReferenceGenome,
		strings.Join(rec.CallerNames(), ","),
		rec.MaxSomaticAlleleFraction, rec.MinDepth, rec.MaxDepth,
		rec.Effect.Gene, rec.Effect.AAChange, rec.Effect.Severity.String(),
		strings.Join(rec.COSMIC.IDs, ","), rec.ClinVar.Pathogenic,
		rec.PopulationMaxAlleleFrequency,
		strings.Join(rec.AmpliconMembership, ","),
		e.Assignment.Tier.String(), outcome(e.Assignment),
		body,
	}, nil
}

func outcome(a tier.Assignment) string {
	if a.Tier == tier.TierNone {
		return consensus.None
	}
	return a.Outcome.String()
}

const insertVariant = `INSERT INTO variants VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Put writes one entry, replacing any stored record with the same locus and
// sample scope.
func (ss *Session) Put(ctx context.Context, e Entry) error {
	vals, err := row(e)
	if err != nil {
		return err
	}
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}

	tx, err := ss.conn.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin put", err)
	}
	defer tx.Rollback()

	k, sc := e.Record.Key, e.Record.Scope
	if _, err := tx.ExecContext(ctx, `DELETE FROM variants
		WHERE chrom=? AND start_pos=? AND ref=? AND alt=? AND sample=? AND library_name=? AND run_id=?`,
		k.Chrom, k.Start, k.Ref, k.Alt, sc.Sample, sc.Library, sc.RunID); err != nil {
		return unavailable("replace variant", err)
	}
	if _, err := tx.ExecContext(ctx, insertVariant, args...); err != nil {
		return unavailable("insert variant", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit put", err)
	}
	return nil
}

// DeleteSample removes every variant and coverage row of scope.
func (ss *Session) DeleteSample(ctx context.Context, scope consensus.Scope) error {
	for _, table := range []string{"variants", "coverage"} {
		if _, err := ss.conn.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE sample=? AND library_name=? AND run_id=?",
			scope.Sample, scope.Library, scope.RunID); err != nil {
			return unavailable("delete sample", err)
		}
	}
	return nil
}

// WriteSample replaces the stored variants of scope with entries, batch
// inserting them through the Appender API. Entries with the same locus keep
// the last one.
func (ss *Session) WriteSample(ctx context.Context, scope consensus.Scope, entries []Entry) error {
	if _, err := ss.conn.ExecContext(ctx,
		"DELETE FROM variants WHERE sample=? AND library_name=? AND run_id=?",
		scope.Sample, scope.Library, scope.RunID); err != nil {
		return unavailable("clear sample", err)
	}
	if len(entries) == 0 {
		return nil
	}

	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.Record.Key.ID()] = i
	}

	var appender *goduckdb.Appender
	if err := ss.conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variants")
		return err
	}); err != nil {
		return unavailable("create appender", err)
	}
	defer appender.Close()

	for i, e := range entries {
		if last[e.Record.Key.ID()] != i {
			continue
		}
		vals, err := row(e)
		if err != nil {
			return err
		}
		if err := appender.AppendRow(vals...); err != nil {
			return unavailable("append variant", err)
		}
	}
	if err := appender.Flush(); err != nil {
		return unavailable("flush variants", err)
	}
	ss.logger.Debug("wrote sample variants",
		zap.String("sample", scope.Sample),
		zap.String("library", scope.Library),
		zap.Int("records", len(last)))
	return nil
}

// Query returns the stored entries matching f ordered by chrom, pos, ref,
// alt, sample, library and run.
func (ss *Session) Query(ctx context.Context, f Filter) ([]Entry, error) {
	where, args := f.where()
	rows, err := ss.conn.QueryContext(ctx, `SELECT tier, outcome, payload FROM variants`+where+
		` ORDER BY chrom, pos, ref, alt, sample, library_name, run_id`, args...)
	if err != nil {
		return nil, unavailable("query variants", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var tierName, outcomeName, body string
		if err := rows.Scan(&tierName, &outcomeName, &body); err != nil {
			return nil, unavailable("scan variant", err)
		}
		rec, err := decodeRecord(body)
		if err != nil {
			return nil, err
		}
		e := Entry{Record: rec}
		if e.Assignment.Tier, err = tier.ParseTier(tierName); err != nil {
			return nil, fmt.Errorf("stored record %s: %w", rec.Key, err)
		}
		if outcomeName == "FAIL" {
			e.Assignment.Outcome = tier.Fail
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate variants", err)
	}
	return out, nil
}

// Samples lists the distinct sample scopes with stored variants for runID,
// or for every run when runID is empty.
func (ss *Session) Samples(ctx context.Context, runID string) ([]consensus.Scope, error) {
	q := `SELECT DISTINCT sample, library_name, run_id, reference_genome FROM variants`
	var args []any
	if runID != "" {
		q += ` WHERE run_id=?`
		args = append(args, runID)
	}
	q += ` ORDER BY sample, library_name, run_id`

	rows, err := ss.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query samples", err)
	}
	defer rows.Close()

	var out []consensus.Scope
	for rows.Next() {
		var sc consensus.Scope
		if err := rows.Scan(&sc.Sample, &sc.Library, &sc.RunID, &sc.ReferenceGenome); err != nil {
			return nil, unavailable("scan sample", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate samples", err)
	}
	return out, nil
}
