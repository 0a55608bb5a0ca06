package service

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/pkg/vcf"
)

const (
	baseConfidence         = 0.7
	perVariantConfidence   = 0.05
	maxVariantConfidence   = 0.15
	candidateConfidence    = 0.1
	maxDiplotypeConfidence = 0.95
	unknownGeneConfidence  = 0.3
	unknownAllele          = "Unknown"
	unknownActivityScore   = -1
)

// DiplotypeCaller infers star-allele diplotypes and SNP genotypes from variant records.
// Diplotypes for multiple heterozygous alleles use the first two distinct alleles in input
// order; this is a heuristic, not haplotype phasing, and results are flagged as ambiguous.
type DiplotypeCaller struct {
	logger   *logrus.Logger
	registry *reference.Registry
}

var _ domain.GenotypeCaller = (*DiplotypeCaller)(nil)

// NewDiplotypeCaller creates a new diplotype caller
func NewDiplotypeCaller(logger *logrus.Logger, registry *reference.Registry) *DiplotypeCaller {
	return &DiplotypeCaller{
		logger:   logger,
		registry: registry,
	}
}

// CallDiplotype returns the two-allele call for gene. Genes without a star-allele table
// get the Unknown sentinel rather than an error.
func (c *DiplotypeCaller) CallDiplotype(gene domain.Gene, variants []domain.VariantRecord) domain.DiplotypeResult {
	table, ok := c.registry.AlleleTable(gene)
	if !ok {
		c.logger.WithField("gene", gene).Debug("No allele table for gene, returning unknown diplotype")
		return unknownDiplotype(gene)
	}

	contributing := selectGeneRecords(table, variants)
	candidates := identifyAlleles(table, contributing)
	allele1, allele2, ambiguous := assignDiplotype(table.ReferenceAllele, candidates)

	score := table.ActivityScore(allele1) + table.ActivityScore(allele2)
	phenotype := table.PhenotypeForScore(score)

	result := domain.DiplotypeResult{
		Gene:                 gene,
		Allele1:              allele1,
		Allele2:              allele2,
		Diplotype:            CanonicalDiplotype(allele1, allele2),
		ActivityScore:        score,
		Phenotype:            phenotype,
		Confidence:           diplotypeConfidence(len(contributing), len(candidates)),
		Candidates:           candidates,
		ContributingVariants: contributing,
		Guideline:            table.Guideline,
		PhasingAmbiguous:     ambiguous,
	}

	c.logger.WithFields(logrus.Fields{
		"gene":           gene,
		"diplotype":      result.Diplotype,
		"activity_score": score,
		"phenotype":      phenotype,
		"contributing":   len(contributing),
		"ambiguous":      ambiguous,
	}).Debug("Called diplotype")

	return result
}

// selectGeneRecords keeps records that belong to the gene and carry a non-reference
// genotype. A homozygous-reference record never contributes, whatever its annotations.
func selectGeneRecords(table *domain.GeneAlleleTable, variants []domain.VariantRecord) []domain.VariantRecord {
	selected := make([]domain.VariantRecord, 0)
	for _, v := range variants {
		_, defining := table.AlleleForRsID(v.RsID)
		sameGene := strings.EqualFold(v.Gene, string(table.Gene))
		if !defining && !sameGene {
			continue
		}
		if vcf.IsHomozygousReference(v.Genotype) {
			continue
		}
		selected = append(selected, v)
	}
	return selected
}

func identifyAlleles(table *domain.GeneAlleleTable, records []domain.VariantRecord) []domain.AlleleCandidate {
	candidates := make([]domain.AlleleCandidate, 0)
	for _, v := range records {
		allele, ok := table.AlleleForRsID(v.RsID)
		if !ok {
			continue
		}
		// Anything other than two equal components, missing calls included, is
		// heterozygous.
		zygosity := domain.HETEROZYGOUS
		if parts := vcf.SplitGenotype(v.Genotype); len(parts) == 2 && parts[0] == parts[1] {
			zygosity = domain.HOMOZYGOUS
		}
		candidates = append(candidates, domain.AlleleCandidate{
			Allele:   allele,
			Zygosity: zygosity,
			SourceID: v.RsID,
		})
	}
	return candidates
}

// assignDiplotype applies the assignment rules in priority order. ambiguous is set when
// two or more distinct heterozygous alleles had to be paired without phase information.
func assignDiplotype(reference string, candidates []domain.AlleleCandidate) (string, string, bool) {
	if len(candidates) == 0 {
		return reference, reference, false
	}

	for _, c := range candidates {
		if c.Zygosity == domain.HOMOZYGOUS {
			return c.Allele, c.Allele, false
		}
	}

	distinct := make([]string, 0, 2)
	for _, c := range candidates {
		if !containsString(distinct, c.Allele) {
			distinct = append(distinct, c.Allele)
		}
	}

	if len(distinct) == 1 {
		return reference, distinct[0], false
	}
	return distinct[0], distinct[1], true
}

func diplotypeConfidence(contributing, candidates int) float64 {
	confidence := baseConfidence
	confidence += minFloat(float64(contributing)*perVariantConfidence, maxVariantConfidence)
	if candidates > 0 {
		confidence += candidateConfidence
	}
	return domain.ClampConfidence(minFloat(confidence, maxDiplotypeConfidence))
}

// CanonicalDiplotype orders two allele labels by their numeric part and joins them
// with "/". Labels with equal numbers keep lexical order.
func CanonicalDiplotype(a, b string) string {
	alleles := []string{a, b}
	sort.SliceStable(alleles, func(i, j int) bool {
		ni, nj := alleleNumber(alleles[i]), alleleNumber(alleles[j])
		if ni != nj {
			return ni < nj
		}
		return alleles[i] < alleles[j]
	})
	return alleles[0] + "/" + alleles[1]
}

func alleleNumber(label string) int {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, label)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func unknownDiplotype(gene domain.Gene) domain.DiplotypeResult {
	return domain.DiplotypeResult{
		Gene:                 gene,
		Allele1:              unknownAllele,
		Allele2:              unknownAllele,
		Diplotype:            unknownAllele + "/" + unknownAllele,
		ActivityScore:        unknownActivityScore,
		Phenotype:            domain.PHENOTYPE_UNKNOWN,
		Confidence:           unknownGeneConfidence,
		Candidates:           []domain.AlleleCandidate{},
		ContributingVariants: []domain.VariantRecord{},
	}
}

// CallSNPGene interprets the defining marker of a SNP gene. An absent or
// homozygous-reference marker reads as the reference genotype; Detected tells the two
// apart. Unlisted genotypes are reported as indeterminate.
func (c *DiplotypeCaller) CallSNPGene(gene domain.Gene, variants []domain.VariantRecord) domain.SNPGeneResult {
	table, ok := c.registry.SNPTable(gene)
	if !ok {
		return domain.SNPGeneResult{
			Gene:                 gene,
			Display:              "indeterminate",
			Zygosity:             domain.ZYGOSITY_UNKNOWN,
			Effect:               "no SNP interpretation table for gene",
			DoseModifier:         "unable to determine",
			ContributingVariants: []domain.VariantRecord{},
		}
	}

	result := domain.SNPGeneResult{
		Gene:                 gene,
		RsID:                 table.RsID,
		Guideline:            table.Guideline,
		ContributingVariants: []domain.VariantRecord{},
	}

	record, found := findMarker(table.RsID, variants)
	if !found {
		applyInterpretation(&result, table.ReferenceInterpretation())
		return result
	}

	result.Detected = true
	result.Genotype = record.Genotype
	if vcf.IsHomozygousReference(record.Genotype) {
		applyInterpretation(&result, table.ReferenceInterpretation())
		return result
	}

	result.ContributingVariants = []domain.VariantRecord{record}
	normalized, diploid := vcf.NormalizeGenotype(record.Genotype)
	interpretation, known := table.Interpret(normalized)
	if !diploid || !known {
		c.logger.WithFields(logrus.Fields{
			"gene":     gene,
			"rsid":     table.RsID,
			"genotype": record.Genotype,
		}).Debug("Genotype not in SNP interpretation table")
		result.Display = "indeterminate"
		result.Zygosity = domain.ZYGOSITY_UNKNOWN
		result.Effect = "indeterminate genotype"
		result.DoseModifier = "unable to determine"
		return result
	}

	applyInterpretation(&result, interpretation)
	return result
}

func findMarker(rsID string, variants []domain.VariantRecord) (domain.VariantRecord, bool) {
	for _, v := range variants {
		if v.RsID == rsID {
			return v, true
		}
	}
	return domain.VariantRecord{}, false
}

func applyInterpretation(result *domain.SNPGeneResult, in domain.SNPInterpretation) {
	result.Display = in.Display
	result.Zygosity = in.Zygosity
	result.Effect = in.Effect
	result.DoseModifier = in.DoseModifier
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
