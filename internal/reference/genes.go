package reference

import (
	"math"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

var inf = math.Inf(1)

func normalRef(description string) domain.AlleleDefinition {
	return domain.AlleleDefinition{
		Allele:        "*1",
		Function:      domain.NORMAL_FUNCTION,
		ActivityScore: 1.0,
		Description:   description,
	}
}

type alleleTableDef struct {
	gene      domain.Gene
	alleles   []domain.AlleleDefinition
	bands     []domain.ScoreBand
	guideline string
}

// starAlleleTables lists every star-allele gene. Score bands follow the CPIC
// genotype-to-phenotype translation for each gene.
var starAlleleTables = []alleleTableDef{
	{
		gene: domain.CYP2D6,
		alleles: []domain.AlleleDefinition{
			normalRef("Reference allele, normal function"),
			{Allele: "*2", RsIDs: []string{"rs16947", "rs1135840"}, Function: domain.NORMAL_FUNCTION, ActivityScore: 1.0, Description: "R296C/S486T, normal function"},
			{Allele: "*3", RsIDs: []string{"rs35742686"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "2549delA frameshift"},
			{Allele: "*4", RsIDs: []string{"rs3892097"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "1846G>A splicing defect"},
			{Allele: "*6", RsIDs: []string{"rs5030655"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "1707delT frameshift"},
			{Allele: "*9", RsIDs: []string{"rs5030656"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "K281del"},
			{Allele: "*10", RsIDs: []string{"rs1065852"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.25, Description: "P34S, unstable enzyme"},
			{Allele: "*17", RsIDs: []string{"rs28371706"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "T107I"},
			{Allele: "*41", RsIDs: []string{"rs28371725"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "2988G>A splicing defect"},
		},
		bands: []domain.ScoreBand{
			{UpTo: 0, Inclusive: true, Phenotype: domain.POOR_METABOLIZER},
			{UpTo: 1.25, Phenotype: domain.INTERMEDIATE_METABOLIZER},
			{UpTo: 2.25, Inclusive: true, Phenotype: domain.NORMAL_METABOLIZER},
			{UpTo: inf, Inclusive: true, Phenotype: domain.ULTRARAPID_METABOLIZER},
		},
		guideline: "CPIC Guideline for CYP2D6, OPRM1, and COMT Genotypes and Select Opioid Therapy (2021)",
	},
	{
		gene: domain.CYP2C19,
		alleles: []domain.AlleleDefinition{
			normalRef("Reference allele, normal function"),
			{Allele: "*2", RsIDs: []string{"rs4244285"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "681G>A splicing defect"},
			{Allele: "*3", RsIDs: []string{"rs4986893"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "636G>A premature stop"},
			{Allele: "*17", RsIDs: []string{"rs12248560"}, Function: domain.INCREASED_FUNCTION, ActivityScore: 1.5, Description: "-806C>T increased transcription"},
		},
		bands: []domain.ScoreBand{
			{UpTo: 0, Inclusive: true, Phenotype: domain.POOR_METABOLIZER},
			{UpTo: 2, Phenotype: domain.INTERMEDIATE_METABOLIZER},
			{UpTo: 2, Inclusive: true, Phenotype: domain.NORMAL_METABOLIZER},
			{UpTo: 3, Phenotype: domain.RAPID_METABOLIZER},
			{UpTo: inf, Inclusive: true, Phenotype: domain.ULTRARAPID_METABOLIZER},
		},
		guideline: "CPIC Guideline for CYP2C19 Genotype and Clopidogrel Therapy (2022)",
	},
	{
		gene: domain.CYP2C9,
		alleles: []domain.AlleleDefinition{
			normalRef("Reference allele, normal function"),
			{Allele: "*2", RsIDs: []string{"rs1799853"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "R144C"},
			{Allele: "*3", RsIDs: []string{"rs1057910"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "I359L"},
			{Allele: "*5", RsIDs: []string{"rs28371686"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "D360E"},
			{Allele: "*6", RsIDs: []string{"rs9332131"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "818delA frameshift"},
			{Allele: "*8", RsIDs: []string{"rs7900194"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "R150H"},
			{Allele: "*11", RsIDs: []string{"rs28371685"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "R335W"},
		},
		bands: []domain.ScoreBand{
			{UpTo: 0.5, Inclusive: true, Phenotype: domain.POOR_METABOLIZER},
			{UpTo: 2, Phenotype: domain.INTERMEDIATE_METABOLIZER},
			{UpTo: inf, Inclusive: true, Phenotype: domain.NORMAL_METABOLIZER},
		},
		guideline: "CPIC Guideline for Pharmacogenetics-Guided Warfarin Dosing (2017)",
	},
	{
		gene: domain.SLCO1B1,
		alleles: []domain.AlleleDefinition{
			normalRef("Reference allele, normal function"),
			{Allele: "*5", RsIDs: []string{"rs4149056"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "V174A, reduced hepatic uptake"},
			{Allele: "*37", RsIDs: []string{"rs2306283"}, Function: domain.NORMAL_FUNCTION, ActivityScore: 1.0, Description: "N130D"},
		},
		bands: []domain.ScoreBand{
			{UpTo: 0, Inclusive: true, Phenotype: domain.POOR_METABOLIZER},
			{UpTo: 2, Phenotype: domain.INTERMEDIATE_METABOLIZER},
			{UpTo: inf, Inclusive: true, Phenotype: domain.NORMAL_METABOLIZER},
		},
		guideline: "CPIC Guideline for SLCO1B1, ABCG2, and CYP2C9 Genotypes and Statin-Associated Musculoskeletal Symptoms (2022)",
	},
	{
		gene: domain.TPMT,
		alleles: []domain.AlleleDefinition{
			normalRef("Reference allele, normal function"),
			{Allele: "*2", RsIDs: []string{"rs1800462"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "A80P"},
			{Allele: "*3B", RsIDs: []string{"rs1800460"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "A154T"},
			{Allele: "*3C", RsIDs: []string{"rs1142345"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "Y240C"},
			{Allele: "*8", RsIDs: []string{"rs56161402"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "R215H"},
		},
		bands: []domain.ScoreBand{
			{UpTo: 0.5, Inclusive: true, Phenotype: domain.POOR_METABOLIZER},
			{UpTo: 1.5, Phenotype: domain.INTERMEDIATE_METABOLIZER},
			{UpTo: inf, Inclusive: true, Phenotype: domain.NORMAL_METABOLIZER},
		},
		guideline: "CPIC Guideline for Thiopurine Dosing Based on TPMT and NUDT15 Genotypes (2018)",
	},
	{
		gene: domain.DPYD,
		alleles: []domain.AlleleDefinition{
			normalRef("Reference allele, normal function"),
			{Allele: "*2A", RsIDs: []string{"rs3918290"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "IVS14+1G>A exon 14 skipping"},
			{Allele: "*13", RsIDs: []string{"rs55886062"}, Function: domain.NO_FUNCTION, ActivityScore: 0, Description: "I560S"},
			{Allele: "c.2846A>T", RsIDs: []string{"rs67376798"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "D949V"},
			{Allele: "HapB3", RsIDs: []string{"rs56038477"}, Function: domain.DECREASED_FUNCTION, ActivityScore: 0.5, Description: "c.1236G>A haplotype B3"},
		},
		bands: []domain.ScoreBand{
			{UpTo: 0.5, Inclusive: true, Phenotype: domain.POOR_METABOLIZER},
			{UpTo: 2, Phenotype: domain.INTERMEDIATE_METABOLIZER},
			{UpTo: inf, Inclusive: true, Phenotype: domain.NORMAL_METABOLIZER},
		},
		guideline: "CPIC Guideline for Fluoropyrimidines and DPYD Genotype (2017)",
	},
}

// snpGeneTables lists the genes named by a single biallelic marker.
var snpGeneTables = []domain.SNPGeneTable{
	{
		Gene:      domain.VKORC1,
		RsID:      "rs9923231",
		Variant:   "c.-1639G>A",
		Role:      domain.SENSITIVITY_ROLE,
		Guideline: "CPIC Guideline for Pharmacogenetics-Guided Warfarin Dosing (2017)",
		Interpretations: []domain.SNPInterpretation{
			{Genotype: "0/0", Display: "G/G", Zygosity: domain.HOMOZYGOUS_REFERENCE, Effect: "normal warfarin sensitivity", DoseModifier: "no dose change"},
			{Genotype: "0/1", Display: "G/A", Zygosity: domain.HETEROZYGOUS, Effect: "increased warfarin sensitivity", DoseModifier: "reduce dose ~25%"},
			{Genotype: "1/1", Display: "A/A", Zygosity: domain.HOMOZYGOUS, Effect: "high warfarin sensitivity", DoseModifier: "reduce dose ~50%"},
		},
	},
	{
		Gene:      domain.CYP4F2,
		RsID:      "rs2108622",
		Variant:   "*3 (V433M)",
		Role:      domain.EFFICIENCY_ROLE,
		Guideline: "CPIC Guideline for Pharmacogenetics-Guided Warfarin Dosing (2017)",
		Interpretations: []domain.SNPInterpretation{
			{Genotype: "0/0", Display: "C/C", Zygosity: domain.HOMOZYGOUS_REFERENCE, Effect: "normal vitamin K clearance", DoseModifier: "no dose change"},
			{Genotype: "0/1", Display: "C/T", Zygosity: domain.HETEROZYGOUS, Effect: "reduced vitamin K clearance", DoseModifier: "increase dose ~5%"},
			{Genotype: "1/1", Display: "T/T", Zygosity: domain.HOMOZYGOUS, Effect: "markedly reduced vitamin K clearance", DoseModifier: "increase dose ~10%"},
		},
	},
}
