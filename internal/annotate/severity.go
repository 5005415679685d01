// Package annotate enriches consensus records from the INFO block of a
// multi-caller annotated VCF.
package annotate

import "github.com/inodb/vibe-tier/internal/consensus"

// Impact classes as written by snpEff in the Annotation_Impact column.
const (
	ImpactHigh     = "HIGH"
	ImpactModerate = "MODERATE"
	ImpactLow      = "LOW"
	ImpactModifier = "MODIFIER"
)

// Consequence types (Sequence Ontology terms).
const (
	// HIGH severity
	ConsequenceStopGained          = "stop_gained"
	ConsequenceFrameshiftVariant   = "frameshift_variant"
	ConsequenceStopLost            = "stop_lost"
	ConsequenceStartLost           = "start_lost"
	ConsequenceSpliceAcceptor      = "splice_acceptor_variant"
	ConsequenceSpliceDonor         = "splice_donor_variant"
	ConsequenceExonLoss            = "exon_loss_variant"
	ConsequenceTranscriptAblation  = "transcript_ablation"
	ConsequenceRareAminoAcid       = "rare_amino_acid_variant"
	ConsequenceChromosomeNumberVar = "chromosome_number_variation"

	// MED severity
	ConsequenceMissenseVariant        = "missense_variant"
	ConsequenceInframeInsertion       = "inframe_insertion"
	ConsequenceInframeDeletion        = "inframe_deletion"
	ConsequenceConservativeInframeIn  = "conservative_inframe_insertion"
	ConsequenceConservativeInframeDel = "conservative_inframe_deletion"
	ConsequenceDisruptiveInframeIn    = "disruptive_inframe_insertion"
	ConsequenceDisruptiveInframeDel   = "disruptive_inframe_deletion"
	ConsequenceProteinAltering        = "protein_altering_variant"
	ConsequenceSpliceRegion           = "splice_region_variant"
	Consequence5PrimeUTRTruncation    = "5_prime_UTR_truncation"
	Consequence3PrimeUTRTruncation    = "3_prime_UTR_truncation"
	ConsequenceRegulatoryAblation     = "regulatory_region_ablation"
	ConsequenceTFBSAblation           = "TFBS_ablation"

	// LOW severity
	ConsequenceSynonymousVariant     = "synonymous_variant"
	ConsequenceStopRetained          = "stop_retained_variant"
	ConsequenceStartRetained         = "start_retained_variant"
	ConsequenceInitiatorCodon        = "initiator_codon_variant"
	ConsequenceCodingSequenceVariant = "coding_sequence_variant"
	ConsequenceIntronVariant         = "intron_variant"
	Consequence5PrimeUTR             = "5_prime_UTR_variant"
	Consequence3PrimeUTR             = "3_prime_UTR_variant"
	ConsequenceUpstreamGene          = "upstream_gene_variant"
	ConsequenceDownstreamGene        = "downstream_gene_variant"
	ConsequenceIntergenicVariant     = "intergenic_variant"
	ConsequenceIntergenicRegion      = "intergenic_region"
	ConsequenceNonCodingExon         = "non_coding_transcript_exon_variant"
)

// consequenceOrder ranks known terms from most to least severe. Earlier
// entries outrank later ones within the same severity.
var consequenceOrder = []string{
	ConsequenceChromosomeNumberVar,
	ConsequenceTranscriptAblation,
	ConsequenceExonLoss,
	ConsequenceFrameshiftVariant,
	ConsequenceStopGained,
	ConsequenceStopLost,
	ConsequenceStartLost,
	ConsequenceSpliceAcceptor,
	ConsequenceSpliceDonor,
	ConsequenceRareAminoAcid,
	ConsequenceDisruptiveInframeDel,
	ConsequenceDisruptiveInframeIn,
	ConsequenceConservativeInframeDel,
	ConsequenceConservativeInframeIn,
	ConsequenceInframeDeletion,
	ConsequenceInframeInsertion,
	ConsequenceMissenseVariant,
	ConsequenceProteinAltering,
	ConsequenceSpliceRegion,
	Consequence5PrimeUTRTruncation,
	Consequence3PrimeUTRTruncation,
	ConsequenceRegulatoryAblation,
	ConsequenceTFBSAblation,
	ConsequenceInitiatorCodon,
	ConsequenceStartRetained,
	ConsequenceStopRetained,
	ConsequenceSynonymousVariant,
	ConsequenceCodingSequenceVariant,
	Consequence5PrimeUTR,
	Consequence3PrimeUTR,
	ConsequenceNonCodingExon,
	ConsequenceIntronVariant,
	ConsequenceUpstreamGene,
	ConsequenceDownstreamGene,
	ConsequenceIntergenicVariant,
	ConsequenceIntergenicRegion,
}

var consequenceSeverity = map[string]consensus.Severity{
	ConsequenceChromosomeNumberVar:    consensus.SeverityHigh,
	ConsequenceTranscriptAblation:     consensus.SeverityHigh,
	ConsequenceExonLoss:               consensus.SeverityHigh,
	ConsequenceFrameshiftVariant:      consensus.SeverityHigh,
	ConsequenceStopGained:             consensus.SeverityHigh,
	ConsequenceStopLost:               consensus.SeverityHigh,
	ConsequenceStartLost:              consensus.SeverityHigh,
	ConsequenceSpliceAcceptor:         consensus.SeverityHigh,
	ConsequenceSpliceDonor:            consensus.SeverityHigh,
	ConsequenceRareAminoAcid:          consensus.SeverityHigh,
	ConsequenceDisruptiveInframeDel:   consensus.SeverityMed,
	ConsequenceDisruptiveInframeIn:    consensus.SeverityMed,
	ConsequenceConservativeInframeDel: consensus.SeverityMed,
	ConsequenceConservativeInframeIn:  consensus.SeverityMed,
	ConsequenceInframeDeletion:        consensus.SeverityMed,
	ConsequenceInframeInsertion:       consensus.SeverityMed,
	ConsequenceMissenseVariant:        consensus.SeverityMed,
	ConsequenceProteinAltering:        consensus.SeverityMed,
	ConsequenceSpliceRegion:           consensus.SeverityMed,
	Consequence5PrimeUTRTruncation:    consensus.SeverityMed,
	Consequence3PrimeUTRTruncation:    consensus.SeverityMed,
	ConsequenceRegulatoryAblation:     consensus.SeverityMed,
	ConsequenceTFBSAblation:           consensus.SeverityMed,
}

var consequenceRank = func() map[string]int {
	m := make(map[string]int, len(consequenceOrder))
	for i, c := range consequenceOrder {
		m[c] = len(consequenceOrder) - i
	}
	return m
}()

// ImpactRank returns numeric rank for impact comparison (higher = more severe).
func ImpactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactModerate:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// SeverityForImpact maps a snpEff impact class onto the severity ordinal.
func SeverityForImpact(impact string) consensus.Severity {
	switch impact {
	case ImpactHigh:
		return consensus.SeverityHigh
	case ImpactModerate:
		return consensus.SeverityMed
	}
	return consensus.SeverityLow
}

// GetSeverity returns the severity of the most severe known term in
// consequences. Known terms not listed as HIGH or MED are LOW. When no term
// is known the impact class decides.
func GetSeverity(consequences []string, impact string) consensus.Severity {
	best, known := consensus.SeverityLow, false
	for _, term := range consequences {
		if _, ok := consequenceRank[term]; !ok {
			continue
		}
		known = true
		if s := consequenceSeverity[term]; s > best {
			best = s
		}
	}
	if !known {
		return SeverityForImpact(impact)
	}
	return best
}

// ConsequenceRank ranks a term against the table above; unknown terms rank 0.
func ConsequenceRank(term string) int {
	return consequenceRank[term]
}
