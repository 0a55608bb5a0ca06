package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

func analysisWith(drug domain.Drug, phenotype domain.Phenotype, severity domain.Severity) domain.DrugAnalysis {
	return domain.DrugAnalysis{
		Drug:           drug,
		RiskAssessment: domain.RiskAssessment{Severity: severity},
		Profile:        domain.PharmacogenomicProfile{Phenotype: phenotype},
	}
}

func TestInteractionChecker_OrderIndependent(t *testing.T) {
	checker := NewInteractionChecker(testLogger(), testRegistry(t))

	orders := [][]domain.Drug{
		{domain.CLOPIDOGREL, domain.OMEPRAZOLE},
		{domain.OMEPRAZOLE, domain.CLOPIDOGREL},
	}
	for _, drugs := range orders {
		report := checker.Check(drugs, nil)

		require.Len(t, report.Interactions, 1)
		assert.Equal(t, domain.CLOPIDOGREL, report.Interactions[0].DrugA)
		assert.Equal(t, domain.OMEPRAZOLE, report.Interactions[0].DrugB)
		assert.Equal(t, domain.LEVEL_HIGH, report.Interactions[0].Severity)
	}
}

func TestInteractionChecker_Phenoconversion(t *testing.T) {
	checker := NewInteractionChecker(testLogger(), testRegistry(t))

	tests := []struct {
		name     string
		drugs    []domain.Drug
		analyses []domain.DrugAnalysis
		want     bool
	}{
		{
			name:  "inhibitor with poor metabolizer",
			drugs: []domain.Drug{domain.CODEINE, domain.PAROXETINE},
			analyses: []domain.DrugAnalysis{
				analysisWith(domain.CODEINE, domain.POOR_METABOLIZER, domain.SEVERITY_HIGH),
				analysisWith(domain.PAROXETINE, domain.POOR_METABOLIZER, domain.SEVERITY_MODERATE),
			},
			want: true,
		},
		{
			name:  "inhibitor without poor metabolizer",
			drugs: []domain.Drug{domain.CODEINE, domain.PAROXETINE},
			analyses: []domain.DrugAnalysis{
				analysisWith(domain.CODEINE, domain.NORMAL_METABOLIZER, domain.SEVERITY_NONE),
				analysisWith(domain.PAROXETINE, domain.NORMAL_METABOLIZER, domain.SEVERITY_NONE),
			},
			want: false,
		},
		{
			name:  "poor metabolizer without inhibitor",
			drugs: []domain.Drug{domain.CODEINE, domain.SIMVASTATIN},
			analyses: []domain.DrugAnalysis{
				analysisWith(domain.CODEINE, domain.POOR_METABOLIZER, domain.SEVERITY_HIGH),
				analysisWith(domain.SIMVASTATIN, domain.NORMAL_METABOLIZER, domain.SEVERITY_NONE),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := checker.Check(tt.drugs, tt.analyses)
			assert.Equal(t, tt.want, report.PhenoconversionRisk)
		})
	}
}

func TestInteractionChecker_InhibitedGenes(t *testing.T) {
	checker := NewInteractionChecker(testLogger(), testRegistry(t))

	drugs := []domain.Drug{domain.CODEINE, domain.PAROXETINE, domain.OMEPRAZOLE}
	analyses := []domain.DrugAnalysis{
		analysisWith(domain.CODEINE, domain.NORMAL_METABOLIZER, domain.SEVERITY_NONE),
		analysisWith(domain.PAROXETINE, domain.NORMAL_METABOLIZER, domain.SEVERITY_NONE),
		analysisWith(domain.OMEPRAZOLE, domain.NORMAL_METABOLIZER, domain.SEVERITY_NONE),
	}

	report := checker.Check(drugs, analyses)
	assert.Equal(t, []domain.Drug{domain.PAROXETINE, domain.OMEPRAZOLE}, report.Inhibitors)
	assert.Equal(t, []domain.Gene{domain.CYP2D6, domain.CYP2C19}, report.InhibitedGenes)

	report = checker.Check([]domain.Drug{domain.CODEINE, domain.SIMVASTATIN}, analyses[:1])
	assert.Empty(t, report.Inhibitors)
	assert.Empty(t, report.InhibitedGenes)
}

func TestOverallRisk(t *testing.T) {
	tests := []struct {
		name         string
		severities   []domain.Severity
		interactions []domain.InteractionFinding
		want         domain.RiskLevel
	}{
		{"all safe", []domain.Severity{domain.SEVERITY_NONE, domain.SEVERITY_NONE}, nil, domain.LEVEL_LOW},
		{"low severity", []domain.Severity{domain.SEVERITY_LOW}, nil, domain.LEVEL_LOW},
		{"moderate severity", []domain.Severity{domain.SEVERITY_MODERATE}, nil, domain.LEVEL_MODERATE},
		{"high severity", []domain.Severity{domain.SEVERITY_HIGH}, nil, domain.LEVEL_HIGH},
		{"critical severity", []domain.Severity{domain.SEVERITY_CRITICAL}, nil, domain.LEVEL_SEVERE},
		{"any interaction raises to moderate", []domain.Severity{domain.SEVERITY_NONE},
			[]domain.InteractionFinding{{Severity: domain.LEVEL_LOW}}, domain.LEVEL_MODERATE},
		{"high interaction is severe", []domain.Severity{domain.SEVERITY_NONE},
			[]domain.InteractionFinding{{Severity: domain.LEVEL_HIGH}}, domain.LEVEL_SEVERE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyses := make([]domain.DrugAnalysis, 0, len(tt.severities))
			for _, s := range tt.severities {
				analyses = append(analyses, analysisWith(domain.CODEINE, domain.NORMAL_METABOLIZER, s))
			}
			assert.Equal(t, tt.want, OverallRisk(analyses, tt.interactions))
		})
	}
}
