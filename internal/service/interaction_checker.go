package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
)

// InteractionChecker applies the pairwise interaction table and the phenoconversion
// heuristic to a multi-drug request.
type InteractionChecker struct {
	logger   *logrus.Logger
	registry *reference.Registry
}

// NewInteractionChecker creates a new interaction checker
func NewInteractionChecker(logger *logrus.Logger, registry *reference.Registry) *InteractionChecker {
	return &InteractionChecker{
		logger:   logger,
		registry: registry,
	}
}

// Check reports known interactions among drugs, whether phenoconversion is possible and
// the overall patient risk across the per-drug analyses. Findings use the table's pair
// orientation so the report does not depend on request order.
func (c *InteractionChecker) Check(drugs []domain.Drug, analyses []domain.DrugAnalysis) domain.InteractionReport {
	report := domain.InteractionReport{
		Interactions: []domain.InteractionFinding{},
	}

	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			entry, ok := c.registry.Interaction(drugs[i], drugs[j])
			if !ok {
				continue
			}
			report.Interactions = append(report.Interactions, domain.InteractionFinding{
				DrugA:     entry.DrugA,
				DrugB:     entry.DrugB,
				Severity:  entry.Severity,
				Mechanism: entry.Mechanism,
			})
		}
	}

	for _, d := range drugs {
		gene, ok := c.registry.InhibitedGene(d)
		if !ok {
			continue
		}
		report.Inhibitors = append(report.Inhibitors, d)
		if !containsGene(report.InhibitedGenes, gene) {
			report.InhibitedGenes = append(report.InhibitedGenes, gene)
		}
	}

	poor := false
	for _, a := range analyses {
		if strings.Contains(string(a.Profile.Phenotype), string(domain.POOR_METABOLIZER)) {
			poor = true
			break
		}
	}
	report.PhenoconversionRisk = len(report.Inhibitors) > 0 && poor

	report.OverallRisk = OverallRisk(analyses, report.Interactions)

	c.logger.WithFields(logrus.Fields{
		"drugs":           len(drugs),
		"interactions":    len(report.Interactions),
		"phenoconversion": report.PhenoconversionRisk,
		"inhibited_genes": report.InhibitedGenes,
		"overall_risk":    report.OverallRisk,
	}).Debug("Checked drug interactions")

	return report
}

// OverallRisk starts from the highest individual severity and escalates: to SEVERE for
// any HIGH or SEVERE interaction, to HIGH for any individual severity of HIGH or above,
// to MODERATE for any individual MODERATE or any interaction at all.
func OverallRisk(analyses []domain.DrugAnalysis, interactions []domain.InteractionFinding) domain.RiskLevel {
	maxSeverity := domain.SEVERITY_NONE
	for _, a := range analyses {
		if a.RiskAssessment.Severity.Rank() > maxSeverity.Rank() {
			maxSeverity = a.RiskAssessment.Severity
		}
	}

	overall := severityLevel(maxSeverity)

	for _, in := range interactions {
		if in.Severity.Rank() >= domain.LEVEL_HIGH.Rank() {
			return domain.LEVEL_SEVERE
		}
	}
	if maxSeverity.AtLeast(domain.SEVERITY_HIGH) {
		overall = domain.MaxRiskLevel(overall, domain.LEVEL_HIGH)
	}
	if maxSeverity.AtLeast(domain.SEVERITY_MODERATE) || len(interactions) > 0 {
		overall = domain.MaxRiskLevel(overall, domain.LEVEL_MODERATE)
	}
	return overall
}

func severityLevel(s domain.Severity) domain.RiskLevel {
	switch s {
	case domain.SEVERITY_CRITICAL:
		return domain.LEVEL_SEVERE
	case domain.SEVERITY_HIGH:
		return domain.LEVEL_HIGH
	case domain.SEVERITY_MODERATE:
		return domain.LEVEL_MODERATE
	default:
		return domain.LEVEL_LOW
	}
}

func containsGene(genes []domain.Gene, g domain.Gene) bool {
	for _, x := range genes {
		if x == g {
			return true
		}
	}
	return false
}
