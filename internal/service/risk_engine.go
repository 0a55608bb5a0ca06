package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/pkg/vcf"
)

const insufficientEvidenceConfidence = 0.4

// RiskEngine maps a drug and a metabolizer phenotype to a risk label, severity and
// clinical recommendation using the CPIC-derived rule tables.
type RiskEngine struct {
	logger   *logrus.Logger
	registry *reference.Registry
}

var _ domain.RiskAssessor = (*RiskEngine)(nil)

// NewRiskEngine creates a new risk engine
func NewRiskEngine(logger *logrus.Logger, registry *reference.Registry) *RiskEngine {
	return &RiskEngine{
		logger:   logger,
		registry: registry,
	}
}

// AssessRisk looks up the rule for (drug, phenotype). A nil or Unknown phenotype yields
// UNKNOWN rather than a guessed label. Phenotypes with no drug-specific entry use the
// drug's Normal rule and are flagged with RuleFallback.
func (e *RiskEngine) AssessRisk(drug domain.Drug, phenotype *domain.Phenotype, phenotypeConfidence float64, contributing []domain.VariantRecord, diplotype string) domain.RiskResult {
	table, hasTable := e.registry.DrugTable(drug)

	profile := domain.PharmacogenomicProfile{
		PrimaryGene:      table.PrimaryGene,
		Diplotype:        diplotype,
		Phenotype:        domain.PHENOTYPE_UNKNOWN,
		DetectedVariants: detectedVariants(contributing),
	}

	if !hasTable || phenotype == nil || !phenotype.IsKnown() {
		e.logger.WithField("drug", drug).Debug("No phenotype available, returning unknown risk")
		return insufficientEvidence(profile)
	}
	profile.Phenotype = *phenotype

	rule, fellBack, ok := table.Lookup(*phenotype)
	if !ok {
		return insufficientEvidence(profile)
	}
	if fellBack {
		e.logger.WithFields(logrus.Fields{
			"drug":      drug,
			"phenotype": *phenotype,
		}).Warn("No rule for phenotype, using Normal rule")
	}

	return domain.RiskResult{
		Assessment: domain.RiskAssessment{
			RiskLabel:       rule.Label,
			ConfidenceScore: domain.ClampConfidence(rule.BaseConfidence * phenotypeConfidence),
			Severity:        rule.Severity,
			RuleFallback:    fellBack,
		},
		Profile:        profile,
		Recommendation: cloneRecommendation(rule.Recommendation),
	}
}

// AssessComposite maps a composite risk level to its rule. Confidence scales with the
// primary gene's diplotype confidence.
func (e *RiskEngine) AssessComposite(composite domain.CompositeResult) domain.RiskResult {
	contributing := make([]domain.VariantRecord, 0, len(composite.Primary.ContributingVariants)+2)
	contributing = append(contributing, composite.Primary.ContributingVariants...)
	contributing = append(contributing, composite.Sensitivity.ContributingVariants...)
	contributing = append(contributing, composite.Efficiency.ContributingVariants...)

	profile := domain.PharmacogenomicProfile{
		PrimaryGene:      composite.Primary.Gene,
		Diplotype:        composite.Primary.Diplotype,
		Phenotype:        composite.Primary.Phenotype,
		DetectedVariants: detectedVariants(contributing),
	}

	rule, ok := e.registry.CompositeRule(composite.Drug, composite.Risk)
	if !ok {
		return insufficientEvidence(profile)
	}

	recommendation := cloneRecommendation(rule.Recommendation)
	if composite.Risk != domain.LEVEL_INSUFFICIENT_DATA {
		recommendation.DosingGuidance = fmt.Sprintf("%s (%d%% reduction from standard dose; %s %s, %s %s). %s",
			composite.DoseStrategy, composite.DoseAdjustmentPercent,
			composite.Sensitivity.Gene, composite.Sensitivity.Display,
			composite.Efficiency.Gene, composite.Efficiency.Display,
			rule.Recommendation.DosingGuidance)
	}

	return domain.RiskResult{
		Assessment: domain.RiskAssessment{
			RiskLabel:       rule.Label,
			ConfidenceScore: domain.ClampConfidence(rule.BaseConfidence * composite.Primary.Confidence),
			Severity:        rule.Severity,
		},
		Profile:        profile,
		Recommendation: recommendation,
	}
}

func insufficientEvidence(profile domain.PharmacogenomicProfile) domain.RiskResult {
	return domain.RiskResult{
		Assessment: domain.RiskAssessment{
			RiskLabel:       domain.RISK_UNKNOWN,
			ConfidenceScore: insufficientEvidenceConfidence,
			Severity:        domain.SEVERITY_NONE,
		},
		Profile: profile,
		Recommendation: domain.ClinicalRecommendation{
			DosingGuidance:       "Insufficient pharmacogenomic evidence to guide dosing; follow standard clinical practice.",
			Monitoring:           []string{"Clinical response"},
			Alternatives:         []string{},
			EvidenceLevel:        "none",
			ImplementationStatus: "not actionable",
		},
	}
}

// detectedVariants echoes only records with a non-reference genotype.
func detectedVariants(records []domain.VariantRecord) []domain.DetectedVariant {
	out := make([]domain.DetectedVariant, 0, len(records))
	for _, v := range records {
		if vcf.IsHomozygousReference(v.Genotype) {
			continue
		}
		dv := domain.NewDetectedVariant(v)
		dv.Zygosity = vcf.Zygosity(v.Genotype)
		out = append(out, dv)
	}
	return out
}

func cloneRecommendation(r domain.ClinicalRecommendation) domain.ClinicalRecommendation {
	r.Monitoring = append([]string{}, r.Monitoring...)
	r.Alternatives = append([]string{}, r.Alternatives...)
	return r
}
