// Package reconcile merges per-caller records for a locus into a consensus
// record with cross-caller aggregates.
package reconcile

import (
	"fmt"

	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/locus"
)

// JoinInconsistencyError reports that the annotated source lists a caller
// for a locus that the caller's own VCF does not contain.
type JoinInconsistencyError struct {
	Key    locus.Key
	Caller string
}

func (e *JoinInconsistencyError) Error() string {
	return fmt.Sprintf("caller %s has no record for %s", e.Caller, e.Key)
}

// Reconcile builds the consensus record for key from the records of every
// caller in callers. The caller list is authoritative: a listed caller
// without a record for key is a JoinInconsistencyError. Duplicate and empty
// caller names are ignored. An empty caller set yields the sentinel
// aggregates.
func Reconcile(key locus.Key, scope consensus.Scope, callers []string, lookups caller.Lookups) (*consensus.Record, error) {
	rec := consensus.New(key, scope)

	first := true
	for _, name := range callers {
		if name == "" {
			continue
		}
		if _, seen := rec.PerCaller[name]; seen {
			continue
		}

		cr, ok := lookups[name][key]
		if !ok {
			return nil, &JoinInconsistencyError{Key: key, Caller: name}
		}
		rec.Callers = append(rec.Callers, name)
		rec.PerCaller[name] = cr

		af, dp := cr.AlleleFraction(), cr.Depth()
		if first {
			rec.MaxSomaticAlleleFraction = af
			rec.MinDepth = dp
			rec.MaxDepth = dp
			first = false
			continue
		}
		if af > rec.MaxSomaticAlleleFraction {
			rec.MaxSomaticAlleleFraction = af
		}
		if dp < rec.MinDepth {
			rec.MinDepth = dp
		}
		if dp > rec.MaxDepth {
			rec.MaxDepth = dp
		}
	}

	return rec, nil
}
