package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

func TestNew_BuildsValidRegistry(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	assert.Equal(t, Version, r.Version())

	for _, g := range domain.AllGenes() {
		switch g.Kind() {
		case domain.STAR_ALLELE_GENE:
			table, ok := r.AlleleTable(g)
			require.True(t, ok, "allele table for %s", g)
			assert.Equal(t, "*1", table.ReferenceAllele)
			assert.Equal(t, domain.PhasingHeuristic, table.PhasingMethod)
			assert.NotEmpty(t, table.Guideline)
		case domain.SNP_GENE:
			_, ok := r.SNPTable(g)
			assert.True(t, ok, "SNP table for %s", g)
		}
	}
}

func TestDefault_IsShared(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b := MustDefault()
	assert.Same(t, a, b)
}

func TestEveryDrugHasRules(t *testing.T) {
	r := MustDefault()

	for _, d := range domain.AllDrugs() {
		t.Run(string(d), func(t *testing.T) {
			table, ok := r.DrugTable(d)
			require.True(t, ok)

			_, ok = r.AlleleTable(table.PrimaryGene)
			assert.True(t, ok, "primary gene %s has an allele table", table.PrimaryGene)

			for _, ph := range []domain.Phenotype{domain.POOR_METABOLIZER, domain.INTERMEDIATE_METABOLIZER, domain.NORMAL_METABOLIZER} {
				rule, fellBack, ok := table.Lookup(ph)
				require.True(t, ok)
				assert.False(t, fellBack, "%s has an explicit %s rule", d, ph)
				assert.GreaterOrEqual(t, rule.BaseConfidence, 0.0)
				assert.LessOrEqual(t, rule.BaseConfidence, 1.0)
				assert.NotNil(t, rule.Recommendation.Monitoring)
				assert.NotNil(t, rule.Recommendation.Alternatives)
			}
		})
	}
}

func TestRepresentativeRules(t *testing.T) {
	r := MustDefault()

	tests := []struct {
		drug       domain.Drug
		phenotype  domain.Phenotype
		label      domain.RiskLabel
		severity   domain.Severity
		confidence float64
	}{
		{domain.CODEINE, domain.POOR_METABOLIZER, domain.INEFFECTIVE, domain.SEVERITY_HIGH, 0.95},
		{domain.CODEINE, domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.9},
		{domain.CODEINE, domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.95},
		{domain.CODEINE, domain.ULTRARAPID_METABOLIZER, domain.TOXIC, domain.SEVERITY_CRITICAL, 0.95},
		{domain.CLOPIDOGREL, domain.POOR_METABOLIZER, domain.INEFFECTIVE, domain.SEVERITY_HIGH, 0.95},
		{domain.CLOPIDOGREL, domain.INTERMEDIATE_METABOLIZER, domain.INEFFECTIVE, domain.SEVERITY_MODERATE, 0.9},
		{domain.CLOPIDOGREL, domain.RAPID_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.9},
		{domain.AZATHIOPRINE, domain.POOR_METABOLIZER, domain.TOXIC, domain.SEVERITY_CRITICAL, 0.95},
		{domain.AZATHIOPRINE, domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_HIGH, 0.9},
		{domain.FLUOROURACIL, domain.POOR_METABOLIZER, domain.TOXIC, domain.SEVERITY_CRITICAL, 0.95},
		{domain.SIMVASTATIN, domain.POOR_METABOLIZER, domain.TOXIC, domain.SEVERITY_HIGH, 0.9},
		{domain.SIMVASTATIN, domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.9},
	}

	for _, tt := range tests {
		t.Run(string(tt.drug)+"/"+string(tt.phenotype), func(t *testing.T) {
			table, _ := r.DrugTable(tt.drug)
			rule, _, ok := table.Lookup(tt.phenotype)
			require.True(t, ok)
			assert.Equal(t, tt.label, rule.Label)
			assert.Equal(t, tt.severity, rule.Severity)
			assert.InDelta(t, tt.confidence, rule.BaseConfidence, 1e-9)
			assert.Equal(t, tt.drug, rule.Drug)
		})
	}
}

func TestCompositeRules(t *testing.T) {
	r := MustDefault()

	table, _ := r.DrugTable(domain.WARFARIN)
	assert.True(t, table.IsComposite())
	assert.Equal(t, []domain.Gene{domain.VKORC1, domain.CYP4F2}, table.ModifierGenes)

	tests := []struct {
		level    domain.RiskLevel
		label    domain.RiskLabel
		severity domain.Severity
		conf     float64
	}{
		{domain.LEVEL_SEVERE, domain.TOXIC, domain.SEVERITY_CRITICAL, 0.9},
		{domain.LEVEL_HIGH, domain.ADJUST_DOSAGE, domain.SEVERITY_HIGH, 0.9},
		{domain.LEVEL_MODERATE, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.85},
		{domain.LEVEL_LOW, domain.SAFE, domain.SEVERITY_LOW, 0.9},
		{domain.LEVEL_INSUFFICIENT_DATA, domain.RISK_UNKNOWN, domain.SEVERITY_NONE, 0.4},
	}

	for _, tt := range tests {
		rule, ok := r.CompositeRule(domain.WARFARIN, tt.level)
		require.True(t, ok, tt.level)
		assert.Equal(t, tt.label, rule.Label)
		assert.Equal(t, tt.severity, rule.Severity)
		assert.InDelta(t, tt.conf, rule.BaseConfidence, 1e-9)
	}

	_, ok := r.CompositeRule(domain.CODEINE, domain.LEVEL_LOW)
	assert.False(t, ok)
}

func TestInteractionLookupIsOrderIndependent(t *testing.T) {
	r := MustDefault()

	ab, ok := r.Interaction(domain.CLOPIDOGREL, domain.OMEPRAZOLE)
	require.True(t, ok)
	ba, ok := r.Interaction(domain.OMEPRAZOLE, domain.CLOPIDOGREL)
	require.True(t, ok)
	assert.Equal(t, ab, ba)
	assert.Equal(t, domain.LEVEL_HIGH, ab.Severity)

	sev, ok := r.Interaction(domain.FLUOROURACIL, domain.WARFARIN)
	require.True(t, ok)
	assert.Equal(t, domain.LEVEL_SEVERE, sev.Severity)

	_, ok = r.Interaction(domain.CODEINE, domain.SIMVASTATIN)
	assert.False(t, ok)

	assert.Len(t, r.Interactions(), 7)
}

func TestInhibitorsAndAllowList(t *testing.T) {
	r := MustDefault()

	inhibitors := map[domain.Drug]domain.Gene{
		domain.PAROXETINE:   domain.CYP2D6,
		domain.OMEPRAZOLE:   domain.CYP2C19,
		domain.FLUOROURACIL: domain.CYP2C9,
	}
	for drug, want := range inhibitors {
		g, ok := r.InhibitedGene(drug)
		assert.True(t, ok, drug)
		assert.Equal(t, want, g, drug)
	}
	_, ok := r.InhibitedGene(domain.CODEINE)
	assert.False(t, ok)

	for _, rs := range []string{"rs3892097", "rs4244285", "rs1057910", "rs4149056", "rs1142345", "rs3918290", "rs9923231", "rs2108622"} {
		assert.True(t, r.IsAllowListed(rs), rs)
	}
	assert.False(t, r.IsAllowListed("rs80357906"))

	// every allow-listed rsID resolves through some gene table
	for _, rs := range r.AllowList() {
		found := false
		for _, g := range domain.AllGenes() {
			if table, ok := r.AlleleTable(g); ok {
				if _, hit := table.AlleleForRsID(rs); hit {
					found = true
				}
			}
			if table, ok := r.SNPTable(g); ok && table.RsID == rs {
				found = true
			}
		}
		assert.True(t, found, rs)
	}
}

func TestListings(t *testing.T) {
	r := MustDefault()

	genes := r.Genes()
	require.Len(t, genes, len(domain.AllGenes()))
	assert.Equal(t, domain.CYP2D6, genes[0].Gene)
	assert.Contains(t, genes[0].Alleles, "*4")
	assert.Equal(t, []string{"rs9923231"}, genes[6].RsIDs)

	drugs := r.Drugs()
	require.Len(t, drugs, len(domain.AllDrugs()))
	for _, d := range drugs {
		if d.Drug == domain.PAROXETINE {
			assert.Equal(t, domain.CYP2D6, d.Inhibits)
		}
		if d.Drug == domain.WARFARIN {
			assert.Equal(t, domain.CYP2C9, d.PrimaryGene)
			assert.Len(t, d.ModifierGenes, 2)
		}
	}
}
