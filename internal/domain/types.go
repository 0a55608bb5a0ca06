// Package domain contains core business entities and types for pharmacogenomic risk
// classification: star-allele diplotypes, metabolizer phenotypes and the drug risk labels
// derived from them following CPIC (Clinical Pharmacogenetics Implementation Consortium)
// guidelines.
//
// Reference: Caudle et al. (2017) Standardizing CYP2D6 genotype to phenotype translation.
// Clin Transl Sci. 10(4):211-219. doi: 10.1111/cts.12456
package domain

import (
	"math"
	"strings"
)

// Gene is a pharmacogene supported by the reference tables.
type Gene string

const (
	CYP2D6  Gene = "CYP2D6"
	CYP2C19 Gene = "CYP2C19"
	CYP2C9  Gene = "CYP2C9"
	SLCO1B1 Gene = "SLCO1B1"
	TPMT    Gene = "TPMT"
	DPYD    Gene = "DPYD"
	VKORC1  Gene = "VKORC1"
	CYP4F2  Gene = "CYP4F2"
)

// GeneKind tells how a gene's genotype is named.
type GeneKind string

const (
	STAR_ALLELE_GENE GeneKind = "STAR_ALLELE"
	SNP_GENE         GeneKind = "SNP"
)

// AllGenes returns every supported gene in reporting order.
func AllGenes() []Gene {
	return []Gene{CYP2D6, CYP2C19, CYP2C9, SLCO1B1, TPMT, DPYD, VKORC1, CYP4F2}
}

// ParseGene normalizes a free-form gene symbol. The second return is false for
// genes outside the supported set.
func ParseGene(symbol string) (Gene, bool) {
	g := Gene(strings.ToUpper(strings.TrimSpace(symbol)))
	return g, g.IsValid()
}

// IsValid reports whether the gene is part of the supported set.
func (g Gene) IsValid() bool {
	switch g {
	case CYP2D6, CYP2C19, CYP2C9, SLCO1B1, TPMT, DPYD, VKORC1, CYP4F2:
		return true
	default:
		return false
	}
}

// Kind returns the nomenclature used for the gene.
func (g Gene) Kind() GeneKind {
	switch g {
	case VKORC1, CYP4F2:
		return SNP_GENE
	default:
		return STAR_ALLELE_GENE
	}
}

// String returns the HGNC symbol.
func (g Gene) String() string {
	return string(g)
}

// Drug is a medication with a pharmacogenomic rule table.
type Drug string

const (
	CODEINE      Drug = "CODEINE"
	PAROXETINE   Drug = "PAROXETINE"
	CLOPIDOGREL  Drug = "CLOPIDOGREL"
	OMEPRAZOLE   Drug = "OMEPRAZOLE"
	WARFARIN     Drug = "WARFARIN"
	SIMVASTATIN  Drug = "SIMVASTATIN"
	AZATHIOPRINE Drug = "AZATHIOPRINE"
	FLUOROURACIL Drug = "FLUOROURACIL"
)

// AllDrugs returns every supported drug in reporting order.
func AllDrugs() []Drug {
	return []Drug{CODEINE, PAROXETINE, CLOPIDOGREL, OMEPRAZOLE, WARFARIN, SIMVASTATIN, AZATHIOPRINE, FLUOROURACIL}
}

// ParseDrug normalizes a free-form drug identifier.
func ParseDrug(name string) (Drug, bool) {
	d := Drug(strings.ToUpper(strings.TrimSpace(name)))
	return d, d.IsValid()
}

// IsValid reports whether the drug is part of the supported set.
func (d Drug) IsValid() bool {
	switch d {
	case CODEINE, PAROXETINE, CLOPIDOGREL, OMEPRAZOLE, WARFARIN, SIMVASTATIN, AZATHIOPRINE, FLUOROURACIL:
		return true
	default:
		return false
	}
}

// String returns the drug identifier.
func (d Drug) String() string {
	return string(d)
}

// Phenotype is the metabolic capability class inferred from an activity score.
type Phenotype string

const (
	POOR_METABOLIZER         Phenotype = "Poor"
	INTERMEDIATE_METABOLIZER Phenotype = "Intermediate"
	NORMAL_METABOLIZER       Phenotype = "Normal"
	RAPID_METABOLIZER        Phenotype = "Rapid"
	ULTRARAPID_METABOLIZER   Phenotype = "Ultrarapid"
	PHENOTYPE_UNKNOWN        Phenotype = "Unknown"
)

// AllPhenotypes returns the known phenotype classes, Unknown excluded.
func AllPhenotypes() []Phenotype {
	return []Phenotype{POOR_METABOLIZER, INTERMEDIATE_METABOLIZER, NORMAL_METABOLIZER, RAPID_METABOLIZER, ULTRARAPID_METABOLIZER}
}

// IsValid reports whether the phenotype is a known class. Unknown is a valid value
// but carries no activity information; see IsKnown.
func (p Phenotype) IsValid() bool {
	switch p {
	case POOR_METABOLIZER, INTERMEDIATE_METABOLIZER, NORMAL_METABOLIZER, RAPID_METABOLIZER, ULTRARAPID_METABOLIZER, PHENOTYPE_UNKNOWN:
		return true
	default:
		return false
	}
}

// IsKnown reports whether the phenotype can drive a rule lookup.
func (p Phenotype) IsKnown() bool {
	return p.IsValid() && p != PHENOTYPE_UNKNOWN
}

// Abbreviation returns the CPIC short form (PM, IM, NM, RM, UM).
func (p Phenotype) Abbreviation() string {
	switch p {
	case POOR_METABOLIZER:
		return "PM"
	case INTERMEDIATE_METABOLIZER:
		return "IM"
	case NORMAL_METABOLIZER:
		return "NM"
	case RAPID_METABOLIZER:
		return "RM"
	case ULTRARAPID_METABOLIZER:
		return "UM"
	default:
		return "Unknown"
	}
}

// Label returns the display form, e.g. "Poor Metabolizer".
func (p Phenotype) Label() string {
	if !p.IsKnown() {
		return string(PHENOTYPE_UNKNOWN)
	}
	return string(p) + " Metabolizer"
}

// String returns the phenotype class.
func (p Phenotype) String() string {
	return string(p)
}

// FunctionClass is the functional consequence of a star allele.
type FunctionClass string

const (
	NORMAL_FUNCTION    FunctionClass = "normal"
	DECREASED_FUNCTION FunctionClass = "decreased"
	NO_FUNCTION        FunctionClass = "no_function"
	INCREASED_FUNCTION FunctionClass = "increased"
)

// IsValid validates the function class.
func (fc FunctionClass) IsValid() bool {
	switch fc {
	case NORMAL_FUNCTION, DECREASED_FUNCTION, NO_FUNCTION, INCREASED_FUNCTION:
		return true
	default:
		return false
	}
}

// RiskLabel is the clinical risk classification for a drug given a phenotype.
type RiskLabel string

const (
	SAFE          RiskLabel = "SAFE"
	ADJUST_DOSAGE RiskLabel = "ADJUST_DOSAGE"
	TOXIC         RiskLabel = "TOXIC"
	INEFFECTIVE   RiskLabel = "INEFFECTIVE"
	RISK_UNKNOWN  RiskLabel = "UNKNOWN"
)

// IsValid validates the risk label.
func (r RiskLabel) IsValid() bool {
	switch r {
	case SAFE, ADJUST_DOSAGE, TOXIC, INEFFECTIVE, RISK_UNKNOWN:
		return true
	default:
		return false
	}
}

// RequiresClinicalAction determines if the label calls for a prescribing change.
func (r RiskLabel) RequiresClinicalAction() bool {
	switch r {
	case ADJUST_DOSAGE, TOXIC, INEFFECTIVE:
		return true
	case SAFE:
		return false
	default:
		return true // conservative for UNKNOWN
	}
}

// String returns the label.
func (r RiskLabel) String() string {
	return string(r)
}

// Severity grades the clinical consequence of a risk label.
type Severity string

const (
	SEVERITY_NONE     Severity = "none"
	SEVERITY_LOW      Severity = "low"
	SEVERITY_MODERATE Severity = "moderate"
	SEVERITY_HIGH     Severity = "high"
	SEVERITY_CRITICAL Severity = "critical"
)

// IsValid validates the severity.
func (s Severity) IsValid() bool {
	return s.Rank() >= 0
}

// Rank orders severities from none (0) to critical (4); -1 for invalid values.
func (s Severity) Rank() int {
	switch s {
	case SEVERITY_NONE:
		return 0
	case SEVERITY_LOW:
		return 1
	case SEVERITY_MODERATE:
		return 2
	case SEVERITY_HIGH:
		return 3
	case SEVERITY_CRITICAL:
		return 4
	default:
		return -1
	}
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// String returns the severity.
func (s Severity) String() string {
	return string(s)
}

// RiskLevel is the coarse patient-level risk used for composite calls, drug-drug
// interactions and the overall multi-drug risk.
type RiskLevel string

const (
	LEVEL_LOW               RiskLevel = "LOW"
	LEVEL_MODERATE          RiskLevel = "MODERATE"
	LEVEL_HIGH              RiskLevel = "HIGH"
	LEVEL_SEVERE            RiskLevel = "SEVERE"
	LEVEL_INSUFFICIENT_DATA RiskLevel = "INSUFFICIENT_DATA"
)

// IsValid validates the risk level.
func (l RiskLevel) IsValid() bool {
	switch l {
	case LEVEL_LOW, LEVEL_MODERATE, LEVEL_HIGH, LEVEL_SEVERE, LEVEL_INSUFFICIENT_DATA:
		return true
	default:
		return false
	}
}

// Rank orders the graded levels LOW..SEVERE as 0..3. INSUFFICIENT_DATA is not
// graded and ranks -1.
func (l RiskLevel) Rank() int {
	switch l {
	case LEVEL_LOW:
		return 0
	case LEVEL_MODERATE:
		return 1
	case LEVEL_HIGH:
		return 2
	case LEVEL_SEVERE:
		return 3
	default:
		return -1
	}
}

// String returns the level.
func (l RiskLevel) String() string {
	return string(l)
}

// MaxRiskLevel returns the higher graded level of a and b.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Zygosity describes the two genotype components at a position.
type Zygosity string

const (
	HOMOZYGOUS_REFERENCE Zygosity = "homozygous_reference"
	HETEROZYGOUS         Zygosity = "heterozygous"
	HOMOZYGOUS           Zygosity = "homozygous"
	ZYGOSITY_UNKNOWN     Zygosity = "unknown"
)

// IsVariant reports whether at least one alternate allele is carried.
func (z Zygosity) IsVariant() bool {
	return z == HETEROZYGOUS || z == HOMOZYGOUS
}

// ClampConfidence bounds a confidence value to [0, 1].
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
