package tier

import (
	"strings"

	"github.com/inodb/vibe-tier/internal/consensus"
)

// Bucket identifies one of the six report buckets.
type Bucket struct {
	Tier    Tier
	Outcome Outcome
}

// Ordered lists the six buckets in report order.
var Ordered = []Bucket{
	{Tier1, Pass}, {Tier1, Fail},
	{Tier3, Pass}, {Tier3, Fail},
	{Tier4, Pass}, {Tier4, Fail},
}

// Name returns the file-name form of the bucket, e.g. "tier1_pass".
func (b Bucket) Name() string {
	if b.Tier == TierNone {
		return "none"
	}
	return strings.ToLower(b.Tier.String() + "_" + b.Outcome.String())
}

// Counts is the per-bucket record count for one sample or a whole run.
type Counts struct {
	Buckets            map[Bucket]int
	OffTarget          int
	PopulationFiltered int
}

// NewCounts returns zeroed counts.
func NewCounts() Counts {
	c := Counts{Buckets: make(map[Bucket]int, len(Ordered))}
	for _, b := range Ordered {
		c.Buckets[b] = 0
	}
	return c
}

// Merge adds other into c.
func (c *Counts) Merge(other Counts) {
	if c.Buckets == nil {
		*c = NewCounts()
	}
	for b, n := range other.Buckets {
		c.Buckets[b] += n
	}
	c.OffTarget += other.OffTarget
	c.PopulationFiltered += other.PopulationFiltered
}

// Total returns the number of tiered records.
func (c Counts) Total() int {
	n := 0
	for _, v := range c.Buckets {
		n += v
	}
	return n
}

// Buckets collects the tiered records of one sample pass.
type Buckets struct {
	th                 Thresholds
	records            map[Bucket][]*consensus.Record
	offTarget          int
	populationFiltered int
}

// NewBuckets creates empty buckets using th.
func NewBuckets(th Thresholds) *Buckets {
	return &Buckets{th: th, records: make(map[Bucket][]*consensus.Record, len(Ordered))}
}

// Thresholds returns the thresholds the buckets classify with.
func (b *Buckets) Thresholds() Thresholds {
	return b.th
}

// Add applies the population pre-filter and the classifier to rec and files
// it. The returned assignment has TierNone when rec was filtered or off-target.
// The population filter runs first, so a common off-target record is counted
// as population-filtered and not as off-target.
func (b *Buckets) Add(rec *consensus.Record) Assignment {
	if !RetainedByPopulation(rec, b.th) {
		b.populationFiltered++
		return Assignment{}
	}
	a, ok := Classify(rec, b.th)
	if !ok {
		b.offTarget++
		return Assignment{}
	}
	key := Bucket(a)
	b.records[key] = append(b.records[key], rec)
	return a
}

// Records returns the records in bucket in insertion order.
func (b *Buckets) Records(bucket Bucket) []*consensus.Record {
	return b.records[bucket]
}

// Counts returns the current counts.
func (b *Buckets) Counts() Counts {
	c := NewCounts()
	for k, recs := range b.records {
		c.Buckets[k] = len(recs)
	}
	c.OffTarget = b.offTarget
	c.PopulationFiltered = b.populationFiltered
	return c
}
