package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

func TestDiplotypeCaller_CallDiplotype(t *testing.T) {
	caller := NewDiplotypeCaller(testLogger(), testRegistry(t))

	tests := []struct {
		name          string
		gene          domain.Gene
		variants      []domain.VariantRecord
		wantDiplotype string
		wantScore     float64
		wantPhenotype domain.Phenotype
		wantAmbiguous bool
	}{
		{
			name:          "no variants gives reference diplotype",
			gene:          domain.CYP2D6,
			wantDiplotype: "*1/*1",
			wantScore:     2.0,
			wantPhenotype: domain.NORMAL_METABOLIZER,
		},
		{
			name:          "homozygous no-function allele",
			gene:          domain.CYP2C19,
			variants:      []domain.VariantRecord{record("CYP2C19", "rs4244285", "1/1")},
			wantDiplotype: "*2/*2",
			wantScore:     0,
			wantPhenotype: domain.POOR_METABOLIZER,
		},
		{
			name:          "single heterozygous no-function allele",
			gene:          domain.CYP2D6,
			variants:      []domain.VariantRecord{record("CYP2D6", "rs3892097", "0/1")},
			wantDiplotype: "*1/*4",
			wantScore:     1.0,
			wantPhenotype: domain.INTERMEDIATE_METABOLIZER,
		},
		{
			name: "two heterozygous alleles use first two distinct",
			gene: domain.CYP2D6,
			variants: []domain.VariantRecord{
				record("CYP2D6", "rs28371725", "0|1"),
				record("CYP2D6", "rs3892097", "1|0"),
				record("CYP2D6", "rs1065852", "0/1"),
			},
			wantDiplotype: "*4/*41",
			wantScore:     0.5,
			wantPhenotype: domain.INTERMEDIATE_METABOLIZER,
			wantAmbiguous: true,
		},
		{
			name: "repeated heterozygous allele counts once",
			gene: domain.CYP2D6,
			variants: []domain.VariantRecord{
				record("CYP2D6", "rs16947", "0/1"),
				record("CYP2D6", "rs1135840", "0/1"),
			},
			wantDiplotype: "*1/*2",
			wantScore:     2.0,
			wantPhenotype: domain.NORMAL_METABOLIZER,
		},
		{
			name:          "increased function allele",
			gene:          domain.CYP2C19,
			variants:      []domain.VariantRecord{record("CYP2C19", "rs12248560", "1/1")},
			wantDiplotype: "*17/*17",
			wantScore:     3.0,
			wantPhenotype: domain.ULTRARAPID_METABOLIZER,
		},
		{
			name:          "missing call splits into two equal components",
			gene:          domain.CYP2D6,
			variants:      []domain.VariantRecord{record("CYP2D6", "rs3892097", "./.")},
			wantDiplotype: "*4/*4",
			wantScore:     0,
			wantPhenotype: domain.POOR_METABOLIZER,
		},
		{
			name:          "phased missing call",
			gene:          domain.CYP2D6,
			variants:      []domain.VariantRecord{record("CYP2D6", "rs3892097", ".|.")},
			wantDiplotype: "*4/*4",
			wantScore:     0,
			wantPhenotype: domain.POOR_METABOLIZER,
		},
		{
			name:          "haploid genotype treated as heterozygous",
			gene:          domain.CYP2D6,
			variants:      []domain.VariantRecord{record("CYP2D6", "rs3892097", "1")},
			wantDiplotype: "*1/*4",
			wantScore:     1.0,
			wantPhenotype: domain.INTERMEDIATE_METABOLIZER,
		},
		{
			name:          "empty genotype treated as heterozygous",
			gene:          domain.CYP2D6,
			variants:      []domain.VariantRecord{record("CYP2D6", "rs3892097", "")},
			wantDiplotype: "*1/*4",
			wantScore:     1.0,
			wantPhenotype: domain.INTERMEDIATE_METABOLIZER,
		},
		{
			name:          "homozygous reference ignored whatever the annotation",
			gene:          domain.CYP2D6,
			variants:      []domain.VariantRecord{record("CYP2D6", "rs3892097", "0|0")},
			wantDiplotype: "*1/*1",
			wantScore:     2.0,
			wantPhenotype: domain.NORMAL_METABOLIZER,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := caller.CallDiplotype(tt.gene, tt.variants)

			assert.Equal(t, tt.wantDiplotype, result.Diplotype)
			assert.InDelta(t, tt.wantScore, result.ActivityScore, 1e-9)
			assert.Equal(t, tt.wantPhenotype, result.Phenotype)
			assert.Equal(t, tt.wantAmbiguous, result.PhasingAmbiguous)
			assert.NotEmpty(t, result.Allele1)
			assert.NotEmpty(t, result.Allele2)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestDiplotypeCaller_UnsupportedGene(t *testing.T) {
	caller := NewDiplotypeCaller(testLogger(), testRegistry(t))

	result := caller.CallDiplotype(domain.VKORC1, []domain.VariantRecord{record("VKORC1", "rs9923231", "1/1")})

	assert.Equal(t, "Unknown/Unknown", result.Diplotype)
	assert.Equal(t, domain.PHENOTYPE_UNKNOWN, result.Phenotype)
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
}

func TestDiplotypeCaller_Confidence(t *testing.T) {
	caller := NewDiplotypeCaller(testLogger(), testRegistry(t))

	none := caller.CallDiplotype(domain.CYP2D6, nil)
	assert.InDelta(t, 0.7, none.Confidence, 1e-9)

	one := caller.CallDiplotype(domain.CYP2D6, []domain.VariantRecord{record("CYP2D6", "rs3892097", "0/1")})
	assert.InDelta(t, 0.85, one.Confidence, 1e-9)

	many := caller.CallDiplotype(domain.CYP2D6, []domain.VariantRecord{
		record("CYP2D6", "rs3892097", "0/1"),
		record("CYP2D6", "rs1065852", "0/1"),
		record("CYP2D6", "rs28371725", "0/1"),
		record("CYP2D6", "rs5030655", "0/1"),
		record("CYP2D6", "rs16947", "0/1"),
	})
	assert.InDelta(t, 0.95, many.Confidence, 1e-9)
}

// Gene-annotated records without a defining rsID still count toward confidence but never
// toward allele assignment.
func TestDiplotypeCaller_UndefinedGeneVariant(t *testing.T) {
	caller := NewDiplotypeCaller(testLogger(), testRegistry(t))

	result := caller.CallDiplotype(domain.CYP2D6, []domain.VariantRecord{record("CYP2D6", "rs999999", "0/1")})

	assert.Equal(t, "*1/*1", result.Diplotype)
	assert.Empty(t, result.Candidates)
	require.Len(t, result.ContributingVariants, 1)
	assert.InDelta(t, 0.75, result.Confidence, 1e-9)
}

func TestDiplotypeCaller_ActivityScoreAdditivity(t *testing.T) {
	registry := testRegistry(t)
	caller := NewDiplotypeCaller(testLogger(), registry)
	checker := NewConsistencyChecker(registry)

	for _, gene := range domain.AllGenes() {
		table, ok := registry.AlleleTable(gene)
		if !ok {
			continue
		}
		for _, rsID := range table.RsIDs() {
			for _, gt := range []string{"0/1", "1/1", "1|0", "./."} {
				result := caller.CallDiplotype(gene, []domain.VariantRecord{record(string(gene), rsID, gt)})
				want := table.ActivityScore(result.Allele1) + table.ActivityScore(result.Allele2)
				assert.InDelta(t, want, result.ActivityScore, 1e-9, "%s %s %s", gene, rsID, gt)
				assert.Empty(t, checker.Check(gene, result), "%s %s %s", gene, rsID, gt)
			}
		}
	}
}

func TestCanonicalDiplotype(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"*4", "*1", "*1/*4"},
		{"*41", "*4", "*4/*41"},
		{"*10", "*2", "*2/*10"},
		{"*3C", "*3B", "*3B/*3C"},
		{"*1", "*1", "*1/*1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalDiplotype(tt.a, tt.b))
	}
}

func TestDiplotypeCaller_CallSNPGene(t *testing.T) {
	caller := NewDiplotypeCaller(testLogger(), testRegistry(t))

	tests := []struct {
		name         string
		variants     []domain.VariantRecord
		wantDetected bool
		wantDisplay  string
		wantZygosity domain.Zygosity
	}{
		{
			name:         "absent marker reads as reference",
			wantDisplay:  "G/G",
			wantZygosity: domain.HOMOZYGOUS_REFERENCE,
		},
		{
			name:         "homozygous reference",
			variants:     []domain.VariantRecord{record("VKORC1", "rs9923231", "0|0")},
			wantDetected: true,
			wantDisplay:  "G/G",
			wantZygosity: domain.HOMOZYGOUS_REFERENCE,
		},
		{
			name:         "heterozygous phased reverse order",
			variants:     []domain.VariantRecord{record("VKORC1", "rs9923231", "1|0")},
			wantDetected: true,
			wantDisplay:  "G/A",
			wantZygosity: domain.HETEROZYGOUS,
		},
		{
			name:         "homozygous alternate",
			variants:     []domain.VariantRecord{record("VKORC1", "rs9923231", "1/1")},
			wantDetected: true,
			wantDisplay:  "A/A",
			wantZygosity: domain.HOMOZYGOUS,
		},
		{
			name:         "unlisted genotype is indeterminate",
			variants:     []domain.VariantRecord{record("VKORC1", "rs9923231", "1/2")},
			wantDetected: true,
			wantDisplay:  "indeterminate",
			wantZygosity: domain.ZYGOSITY_UNKNOWN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := caller.CallSNPGene(domain.VKORC1, tt.variants)

			assert.Equal(t, "rs9923231", result.RsID)
			assert.Equal(t, tt.wantDetected, result.Detected)
			assert.Equal(t, tt.wantDisplay, result.Display)
			assert.Equal(t, tt.wantZygosity, result.Zygosity)
		})
	}
}
