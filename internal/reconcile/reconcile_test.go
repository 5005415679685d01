package reconcile

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/locus"
)

var braf = locus.NewKey("7", 140453137, "A", "T")

func TestReconcile_Example(t *testing.T) {
	lookups := caller.Lookups{
		caller.Mutect:  {braf: &caller.MutectRecord{DP: 210, FA: "0.32"}},
		caller.VarDict: {braf: &caller.VarDictRecord{DP: 250, AF: "0.29"}},
	}

	rec, err := Reconcile(braf, consensus.Scope{Sample: "S1"}, []string{"mutect", "vardict"}, lookups)
	require.NoError(t, err)

	assert.Equal(t, 0.32, rec.MaxSomaticAlleleFraction)
	assert.Equal(t, int64(210), rec.MinDepth)
	assert.Equal(t, int64(250), rec.MaxDepth)
	assert.Equal(t, []string{"mutect", "vardict"}, rec.Callers)
	assert.Len(t, rec.PerCaller, 2)
	assert.Equal(t, "S1", rec.Scope.Sample)
}

func TestReconcile_EmptyCallerSet(t *testing.T) {
	for _, callers := range [][]string{nil, {}, {""}} {
		rec, err := Reconcile(braf, consensus.Scope{}, callers, caller.Lookups{})
		require.NoError(t, err)

		assert.Equal(t, -1.0, rec.MaxSomaticAlleleFraction)
		assert.Equal(t, int64(-1), rec.MinDepth)
		assert.Equal(t, int64(-1), rec.MaxDepth)
		assert.Empty(t, rec.Callers)
	}
}

func TestReconcile_JoinInconsistency(t *testing.T) {
	lookups := caller.Lookups{
		caller.Mutect: {braf: &caller.MutectRecord{DP: 210, FA: "0.32"}},
		// vardict saw a different locus only
		caller.VarDict: {locus.NewKey("7", 140453136, "A", "T"): &caller.VarDictRecord{DP: 250}},
	}

	_, err := Reconcile(braf, consensus.Scope{}, []string{"mutect", "vardict"}, lookups)
	require.Error(t, err)

	var jie *JoinInconsistencyError
	require.True(t, errors.As(err, &jie))
	assert.Equal(t, "vardict", jie.Caller)
	assert.Equal(t, braf, jie.Key)
	assert.Contains(t, err.Error(), "chr7:140453136-140453137 A>T")
}

func TestReconcile_MissingCallerLookup(t *testing.T) {
	_, err := Reconcile(braf, consensus.Scope{}, []string{"pindel"}, caller.Lookups{})

	var jie *JoinInconsistencyError
	require.True(t, errors.As(err, &jie))
	assert.Equal(t, "pindel", jie.Caller)
}

func TestReconcile_DuplicateCallerNames(t *testing.T) {
	lookups := caller.Lookups{
		caller.Mutect: {braf: &caller.MutectRecord{DP: 210, FA: "0.32"}},
	}

	rec, err := Reconcile(braf, consensus.Scope{}, []string{"mutect", "mutect"}, lookups)
	require.NoError(t, err)
	assert.Equal(t, []string{"mutect"}, rec.Callers)
}

func TestReconcile_SentinelMemberValues(t *testing.T) {
	// A caller that reported the locus but no depth keeps its sentinel in the min.
	lookups := caller.Lookups{
		caller.Mutect:  {braf: &caller.MutectRecord{DP: caller.MissingDepth, AltDepth: caller.MissingDepth}},
		caller.VarDict: {braf: &caller.VarDictRecord{DP: 250, AF: "0.29"}},
	}

	rec, err := Reconcile(braf, consensus.Scope{}, []string{"mutect", "vardict"}, lookups)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rec.MinDepth)
	assert.Equal(t, int64(250), rec.MaxDepth)
	assert.Equal(t, 0.29, rec.MaxSomaticAlleleFraction)
}

// Randomized caller subsets: join completeness and aggregate bounds.
func TestReconcile_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		lookups := caller.Lookups{}
		var present []string
		for _, name := range caller.All {
			if rng.Intn(2) == 0 {
				continue
			}
			present = append(present, name)
			lookups[name] = caller.Lookup{braf: randomRecord(rng, name)}
		}

		// Ask for a random subset of all callers, so some requests miss.
		var requested []string
		for _, name := range caller.All {
			if rng.Intn(2) == 0 {
				requested = append(requested, name)
			}
		}

		rec, err := Reconcile(braf, consensus.Scope{}, requested, lookups)

		missing := false
		for _, name := range requested {
			if _, ok := lookups[name]; !ok {
				missing = true
			}
		}
		if missing {
			var jie *JoinInconsistencyError
			require.True(t, errors.As(err, &jie), "iteration %d", iter)
			continue
		}
		require.NoError(t, err, "iteration %d", iter)

		if len(requested) == 0 {
			assert.Equal(t, -1.0, rec.MaxSomaticAlleleFraction)
			continue
		}

		maxAF := -2.0
		minDP, maxDP := int64(1<<62), int64(-2)
		for _, name := range requested {
			cr := lookups[name][braf]
			if cr.AlleleFraction() > maxAF {
				maxAF = cr.AlleleFraction()
			}
			if cr.Depth() < minDP {
				minDP = cr.Depth()
			}
			if cr.Depth() > maxDP {
				maxDP = cr.Depth()
			}
		}

		assert.LessOrEqual(t, rec.MinDepth, rec.MaxDepth)
		assert.Equal(t, minDP, rec.MinDepth)
		assert.Equal(t, maxDP, rec.MaxDepth)
		assert.Equal(t, maxAF, rec.MaxSomaticAlleleFraction)
		assert.ElementsMatch(t, requested, rec.Callers)
	}
}

func randomRecord(rng *rand.Rand, name string) caller.Record {
	dp := int64(rng.Intn(1000) + 1)
	alt := int64(rng.Intn(int(dp) + 1))
	switch name {
	case caller.Mutect:
		return &caller.MutectRecord{DP: dp, FA: strconv.FormatFloat(rng.Float64(), 'f', 4, 64)}
	case caller.VarDict:
		return &caller.VarDictRecord{DP: dp, VD: alt}
	case caller.FreeBayes:
		return &caller.FreeBayesRecord{DP: dp, AO: alt}
	case caller.Scalpel:
		return &caller.ScalpelRecord{DP: dp, AltDepth: alt}
	case caller.Platypus:
		return &caller.PlatypusRecord{TC: dp, TR: alt}
	default:
		return &caller.PindelRecord{DP: dp, AltDepth: alt}
	}
}
