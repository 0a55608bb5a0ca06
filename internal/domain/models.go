package domain

import (
	"fmt"
	"math"
	"sort"
)

// PhasingHeuristic tags allele tables whose diplotypes are assigned by taking the first
// two distinct heterozygous alleles in input order. It is not haplotype phasing.
const PhasingHeuristic = "heuristic_first_two_distinct"

// AlleleDefinition describes one star allele of a gene.
type AlleleDefinition struct {
	Allele        string        `json:"allele"`
	RsIDs         []string      `json:"rsids"`
	Function      FunctionClass `json:"function"`
	ActivityScore float64       `json:"activity_score"`
	Description   string        `json:"description"`
}

// ScoreBand maps activity scores up to UpTo (inclusive when Inclusive is set) to a
// phenotype. Bands are evaluated in order; the first match wins.
type ScoreBand struct {
	UpTo      float64   `json:"up_to"`
	Inclusive bool      `json:"inclusive"`
	Phenotype Phenotype `json:"phenotype"`
}

func (b ScoreBand) contains(score float64) bool {
	if b.Inclusive {
		return score <= b.UpTo
	}
	return score < b.UpTo
}

// DefaultScoreBands is the ladder used by tables that define no thresholds of their own.
var DefaultScoreBands = []ScoreBand{
	{UpTo: 0, Inclusive: true, Phenotype: POOR_METABOLIZER},
	{UpTo: 1, Inclusive: false, Phenotype: INTERMEDIATE_METABOLIZER},
	{UpTo: 2, Inclusive: true, Phenotype: NORMAL_METABOLIZER},
	{UpTo: math.Inf(1), Inclusive: true, Phenotype: ULTRARAPID_METABOLIZER},
}

// GeneAlleleTable is the immutable star-allele definition set of one gene.
type GeneAlleleTable struct {
	Gene            Gene               `json:"gene"`
	ReferenceAllele string             `json:"reference_allele"`
	Alleles         []AlleleDefinition `json:"alleles"`
	Bands           []ScoreBand        `json:"-"`
	Guideline       string             `json:"guideline"`
	PhasingMethod   string             `json:"phasing_method"`

	byRsID   map[string]string
	byAllele map[string]AlleleDefinition
}

// NewGeneAlleleTable validates the definitions and builds the rsID reverse lookup.
// Every rsID in the lookup comes from exactly one allele definition.
func NewGeneAlleleTable(gene Gene, referenceAllele string, alleles []AlleleDefinition, bands []ScoreBand, guideline string) (*GeneAlleleTable, error) {
	if !gene.IsValid() || gene.Kind() != STAR_ALLELE_GENE {
		return nil, fmt.Errorf("%w: %s is not a star-allele gene", ErrInvalidReference, gene)
	}

	t := &GeneAlleleTable{
		Gene:            gene,
		ReferenceAllele: referenceAllele,
		Alleles:         alleles,
		Bands:           bands,
		Guideline:       guideline,
		PhasingMethod:   PhasingHeuristic,
		byRsID:          make(map[string]string),
		byAllele:        make(map[string]AlleleDefinition, len(alleles)),
	}

	for _, def := range alleles {
		if def.Allele == "" {
			return nil, fmt.Errorf("%w: %s has an unnamed allele", ErrInvalidReference, gene)
		}
		if _, dup := t.byAllele[def.Allele]; dup {
			return nil, fmt.Errorf("%w: %s allele %s defined twice", ErrInvalidReference, gene, def.Allele)
		}
		if !def.Function.IsValid() {
			return nil, fmt.Errorf("%w: %s allele %s has function %q", ErrInvalidReference, gene, def.Allele, def.Function)
		}
		if def.ActivityScore < 0 {
			return nil, fmt.Errorf("%w: %s allele %s has negative activity score", ErrInvalidReference, gene, def.Allele)
		}
		t.byAllele[def.Allele] = def

		for _, rs := range def.RsIDs {
			if prev, dup := t.byRsID[rs]; dup {
				return nil, fmt.Errorf("%w: %s rsID %s defines both %s and %s", ErrInvalidReference, gene, rs, prev, def.Allele)
			}
			t.byRsID[rs] = def.Allele
		}
	}

	if _, ok := t.byAllele[referenceAllele]; !ok {
		return nil, fmt.Errorf("%w: %s reference allele %q is not defined", ErrInvalidReference, gene, referenceAllele)
	}

	for i := 1; i < len(bands); i++ {
		if bands[i].UpTo < bands[i-1].UpTo {
			return nil, fmt.Errorf("%w: %s score bands are not ascending", ErrInvalidReference, gene)
		}
	}

	return t, nil
}

// AlleleForRsID returns the allele defined by a reference-SNP id.
func (t *GeneAlleleTable) AlleleForRsID(rsID string) (string, bool) {
	allele, ok := t.byRsID[rsID]
	return allele, ok
}

// Definition returns the definition of an allele label.
func (t *GeneAlleleTable) Definition(allele string) (AlleleDefinition, bool) {
	def, ok := t.byAllele[allele]
	return def, ok
}

// ActivityScore returns the allele's activity score. Unlisted alleles score as normal
// function (1.0).
func (t *GeneAlleleTable) ActivityScore(allele string) float64 {
	if def, ok := t.byAllele[allele]; ok {
		return def.ActivityScore
	}
	return 1.0
}

// PhenotypeForScore maps an activity score through the gene's bands, or the default
// ladder when the table has none.
func (t *GeneAlleleTable) PhenotypeForScore(score float64) Phenotype {
	bands := t.Bands
	if len(bands) == 0 {
		bands = DefaultScoreBands
	}
	for _, b := range bands {
		if b.contains(score) {
			return b.Phenotype
		}
	}
	return PHENOTYPE_UNKNOWN
}

// RsIDs returns the defining reference-SNP ids in sorted order.
func (t *GeneAlleleTable) RsIDs() []string {
	ids := make([]string, 0, len(t.byRsID))
	for rs := range t.byRsID {
		ids = append(ids, rs)
	}
	sort.Strings(ids)
	return ids
}

// SNPRole tells how a SNP gene modifies the composite dose.
type SNPRole string

const (
	SENSITIVITY_ROLE SNPRole = "sensitivity"
	EFFICIENCY_ROLE  SNPRole = "efficiency"
)

// SNPInterpretation is the fixed meaning of one normalized biallelic genotype.
type SNPInterpretation struct {
	Genotype     string   `json:"genotype"`
	Display      string   `json:"display"`
	Zygosity     Zygosity `json:"zygosity"`
	Effect       string   `json:"effect"`
	DoseModifier string   `json:"dose_modifier"`
}

// SNPGeneTable interprets the single defining marker of a non-star-allele gene.
type SNPGeneTable struct {
	Gene            Gene                `json:"gene"`
	RsID            string              `json:"rsid"`
	Variant         string              `json:"variant"`
	Role            SNPRole             `json:"role"`
	Guideline       string              `json:"guideline"`
	Interpretations []SNPInterpretation `json:"interpretations"`
}

// Interpret looks up a normalized genotype ("0/0", "0/1", "1/1").
func (t SNPGeneTable) Interpret(genotype string) (SNPInterpretation, bool) {
	for _, in := range t.Interpretations {
		if in.Genotype == genotype {
			return in, true
		}
	}
	return SNPInterpretation{}, false
}

// ReferenceInterpretation returns the homozygous-reference entry.
func (t SNPGeneTable) ReferenceInterpretation() SNPInterpretation {
	for _, in := range t.Interpretations {
		if in.Zygosity == HOMOZYGOUS_REFERENCE {
			return in
		}
	}
	return SNPInterpretation{Genotype: "0/0", Zygosity: HOMOZYGOUS_REFERENCE, Effect: "normal", DoseModifier: "no dose change"}
}

// AlleleCandidate is one allele call emitted from a surviving variant record.
type AlleleCandidate struct {
	Allele   string   `json:"allele"`
	Zygosity Zygosity `json:"zygosity"`
	SourceID string   `json:"source_id"`
}

// DiplotypeResult is the two-allele call for one star-allele gene.
type DiplotypeResult struct {
	Gene                 Gene              `json:"gene"`
	Allele1              string            `json:"allele1"`
	Allele2              string            `json:"allele2"`
	Diplotype            string            `json:"diplotype"`
	ActivityScore        float64           `json:"activity_score"`
	Phenotype            Phenotype         `json:"phenotype"`
	Confidence           float64           `json:"confidence"`
	Candidates           []AlleleCandidate `json:"allele_candidates"`
	ContributingVariants []VariantRecord   `json:"contributing_variants"`
	Guideline            string            `json:"guideline"`
	PhasingAmbiguous     bool              `json:"phasing_ambiguous"`
}

// SNPGeneResult is the interpretation of one SNP gene's defining marker.
type SNPGeneResult struct {
	Gene                 Gene            `json:"gene"`
	RsID                 string          `json:"rsid"`
	Genotype             string          `json:"genotype"`
	Display              string          `json:"display"`
	Zygosity             Zygosity        `json:"zygosity"`
	Effect               string          `json:"effect"`
	DoseModifier         string          `json:"dose_modifier"`
	Detected             bool            `json:"detected"`
	ContributingVariants []VariantRecord `json:"contributing_variants"`
	Guideline            string          `json:"guideline,omitempty"`
}

// CompositeFlags are the inputs of the composite risk decision table.
type CompositeFlags struct {
	PoorMetabolizer         bool `json:"poor_metabolizer"`
	IntermediateMetabolizer bool `json:"intermediate_metabolizer"`
	Sensitized              bool `json:"sensitized"`
}

// CompositeResult combines one star-allele call and two SNP calls for a single drug.
type CompositeResult struct {
	Drug                  Drug            `json:"drug"`
	Primary               DiplotypeResult `json:"primary"`
	Sensitivity           SNPGeneResult   `json:"sensitivity"`
	Efficiency            SNPGeneResult   `json:"efficiency"`
	DoseAdjustmentPercent int             `json:"dose_adjustment_percent"`
	DoseStrategy          string          `json:"dose_strategy"`
	Flags                 CompositeFlags  `json:"flags"`
	Risk                  RiskLevel       `json:"risk"`
	MissingMarkers        []string        `json:"missing_markers,omitempty"`
}

// ClinicalRecommendation is the structured guidance attached to a rule.
type ClinicalRecommendation struct {
	DosingGuidance       string   `json:"dosing_guidance"`
	Monitoring           []string `json:"monitoring"`
	Alternatives         []string `json:"alternatives"`
	EvidenceLevel        string   `json:"evidence_level"`
	ImplementationStatus string   `json:"implementation_status"`
}

// RiskRule is the outcome for one (drug, phenotype) pair.
type RiskRule struct {
	Drug           Drug                   `json:"drug"`
	Phenotype      Phenotype              `json:"phenotype"`
	Label          RiskLabel              `json:"risk_label"`
	Severity       Severity               `json:"severity"`
	BaseConfidence float64                `json:"base_confidence"`
	Recommendation ClinicalRecommendation `json:"recommendation"`
}

// DrugRuleTable holds the rules of one drug keyed by the primary gene's phenotype.
// Composite drugs also list their modifier genes.
type DrugRuleTable struct {
	Drug          Drug                   `json:"drug"`
	PrimaryGene   Gene                   `json:"primary_gene"`
	ModifierGenes []Gene                 `json:"modifier_genes,omitempty"`
	Guideline     string                 `json:"guideline"`
	Rules         map[Phenotype]RiskRule `json:"rules"`
}

// IsComposite reports whether the drug needs the multi-gene caller.
func (t DrugRuleTable) IsComposite() bool {
	return len(t.ModifierGenes) > 0
}

// Lookup returns the rule for a phenotype, falling back to the Normal rule when the
// phenotype has no entry. fellBack reports whether the fallback was taken.
func (t DrugRuleTable) Lookup(p Phenotype) (rule RiskRule, fellBack bool, ok bool) {
	if r, found := t.Rules[p]; found {
		return r, false, true
	}
	if r, found := t.Rules[NORMAL_METABOLIZER]; found {
		return r, true, true
	}
	return RiskRule{}, false, false
}

// InteractionEntry is one row of the static drug-drug interaction table.
type InteractionEntry struct {
	DrugA     Drug      `json:"drug_a"`
	DrugB     Drug      `json:"drug_b"`
	Severity  RiskLevel `json:"severity"`
	Mechanism string    `json:"mechanism"`
}

// Involves reports whether the entry matches the unordered pair (a, b).
func (e InteractionEntry) Involves(a, b Drug) bool {
	return (e.DrugA == a && e.DrugB == b) || (e.DrugA == b && e.DrugB == a)
}
