package reference

import (
	"github.com/pgx-risk-mcp-server/internal/domain"
)

const (
	evidenceA = "CPIC A"
	evidenceB = "CPIC B"

	statusActionable    = "actionable"
	statusInformative   = "informative"
	statusNotActionable = "not actionable"
)

func rec(guidance string, monitoring, alternatives []string, evidence, status string) domain.ClinicalRecommendation {
	if monitoring == nil {
		monitoring = []string{}
	}
	if alternatives == nil {
		alternatives = []string{}
	}
	return domain.ClinicalRecommendation{
		DosingGuidance:       guidance,
		Monitoring:           monitoring,
		Alternatives:         alternatives,
		EvidenceLevel:        evidence,
		ImplementationStatus: status,
	}
}

func standardDosing(monitoring ...string) domain.ClinicalRecommendation {
	return rec("Use label-recommended dosing.", monitoring, nil, evidenceA, statusNotActionable)
}

type ruleRow struct {
	phenotype  domain.Phenotype
	label      domain.RiskLabel
	severity   domain.Severity
	confidence float64
	rec        domain.ClinicalRecommendation
}

type drugTableDef struct {
	drug      domain.Drug
	gene      domain.Gene
	modifiers []domain.Gene
	guideline string
	rows      []ruleRow
}

var (
	opioidAlternatives   = []string{"Morphine", "Hydromorphone", "Non-opioid analgesics"}
	antiplateletAlts     = []string{"Prasugrel", "Ticagrelor"}
	ssriAlternatives     = []string{"Sertraline", "Citalopram"}
	statinAlternatives   = []string{"Rosuvastatin", "Pravastatin", "Fluvastatin"}
	thiopurineAlts       = []string{"Non-thiopurine immunosuppressant"}
	fluoropyrimidineAlts = []string{"Non-fluoropyrimidine regimen"}
	anticoagulantAlts    = []string{"Apixaban", "Rivaroxaban", "Dabigatran"}
)

var drugRuleTables = []drugTableDef{
	{
		drug:      domain.CODEINE,
		gene:      domain.CYP2D6,
		guideline: "CPIC Guideline for CYP2D6, OPRM1, and COMT Genotypes and Select Opioid Therapy (2021)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.INEFFECTIVE, domain.SEVERITY_HIGH, 0.95,
				rec("Avoid codeine; little or no conversion to morphine gives inadequate analgesia.", []string{"Pain control"}, opioidAlternatives, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.9,
				rec("Use label-recommended dosing; if response is inadequate switch to a non-tramadol opioid.", []string{"Pain control", "Opioid response"}, opioidAlternatives, evidenceA, statusActionable)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.95, standardDosing()},
			{domain.ULTRARAPID_METABOLIZER, domain.TOXIC, domain.SEVERITY_CRITICAL, 0.95,
				rec("Avoid codeine; rapid morphine formation risks life-threatening respiratory depression.", []string{"Respiratory rate", "Sedation"}, opioidAlternatives, evidenceA, statusActionable)},
		},
	},
	{
		drug:      domain.PAROXETINE,
		gene:      domain.CYP2D6,
		guideline: "CPIC Guideline for CYP2D6, CYP2C19, CYP2B6, SLC6A4, and HTR2A Genotypes and SSRI/SNRI Antidepressants (2023)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.9,
				rec("Consider a 50% reduction of the starting dose and slower titration.", []string{"Adverse effects", "Plasma concentration"}, ssriAlternatives, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.SAFE, domain.SEVERITY_LOW, 0.85,
				rec("Initiate standard starting dose; titrate more slowly.", []string{"Adverse effects"}, nil, evidenceB, statusInformative)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.95, standardDosing()},
			{domain.ULTRARAPID_METABOLIZER, domain.INEFFECTIVE, domain.SEVERITY_MODERATE, 0.85,
				rec("Select an antidepressant not predominantly metabolized by CYP2D6.", []string{"Therapeutic response"}, ssriAlternatives, evidenceA, statusActionable)},
		},
	},
	{
		drug:      domain.CLOPIDOGREL,
		gene:      domain.CYP2C19,
		guideline: "CPIC Guideline for CYP2C19 Genotype and Clopidogrel Therapy (2022)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.INEFFECTIVE, domain.SEVERITY_HIGH, 0.95,
				rec("Avoid clopidogrel; prodrug activation is absent. Use an alternative antiplatelet agent.", []string{"Platelet reactivity", "Thrombotic events"}, antiplateletAlts, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.INEFFECTIVE, domain.SEVERITY_MODERATE, 0.9,
				rec("Avoid standard-dose clopidogrel if possible; prefer an alternative antiplatelet agent.", []string{"Platelet reactivity"}, antiplateletAlts, evidenceA, statusActionable)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.95, standardDosing()},
			{domain.RAPID_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.9, standardDosing()},
			{domain.ULTRARAPID_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.9, standardDosing("Bleeding")},
		},
	},
	{
		drug:      domain.OMEPRAZOLE,
		gene:      domain.CYP2C19,
		guideline: "CPIC Guideline for CYP2C19 and Proton Pump Inhibitor Dosing (2020)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_LOW, 0.85,
				rec("For chronic therapy beyond 12 weeks consider a 50% daily dose reduction.", []string{"Long-term adverse effects"}, nil, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.85,
				rec("Initiate standard starting dose; consider 50% reduction for chronic therapy once efficacy is achieved.", nil, nil, evidenceB, statusInformative)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.9, standardDosing()},
			{domain.RAPID_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_LOW, 0.85,
				rec("Increase starting daily dose by 50% to 100%.", []string{"Therapeutic response"}, nil, evidenceA, statusActionable)},
			{domain.ULTRARAPID_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.85,
				rec("Increase starting daily dose by 100%; monitor for treatment failure.", []string{"Therapeutic response"}, []string{"Rabeprazole"}, evidenceA, statusActionable)},
		},
	},
	{
		drug:      domain.WARFARIN,
		gene:      domain.CYP2C9,
		modifiers: []domain.Gene{domain.VKORC1, domain.CYP4F2},
		guideline: "CPIC Guideline for Pharmacogenetics-Guided Warfarin Dosing (2017)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_HIGH, 0.85,
				rec("Reduce starting dose substantially and titrate to INR.", []string{"INR", "Bleeding"}, anticoagulantAlts, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.85,
				rec("Reduce starting dose and titrate to INR.", []string{"INR"}, nil, evidenceA, statusActionable)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.9, standardDosing("INR")},
		},
	},
	{
		drug:      domain.SIMVASTATIN,
		gene:      domain.SLCO1B1,
		guideline: "CPIC Guideline for SLCO1B1, ABCG2, and CYP2C9 Genotypes and Statin-Associated Musculoskeletal Symptoms (2022)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.TOXIC, domain.SEVERITY_HIGH, 0.9,
				rec("Prescribe an alternative statin; simvastatin exposure raises myopathy risk.", []string{"Creatine kinase", "Muscle symptoms"}, statinAlternatives, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.9,
				rec("Limit simvastatin to 20 mg/day or prescribe an alternative statin.", []string{"Muscle symptoms"}, statinAlternatives, evidenceA, statusActionable)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.95, standardDosing()},
		},
	},
	{
		drug:      domain.AZATHIOPRINE,
		gene:      domain.TPMT,
		guideline: "CPIC Guideline for Thiopurine Dosing Based on TPMT and NUDT15 Genotypes (2018)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.TOXIC, domain.SEVERITY_CRITICAL, 0.95,
				rec("Consider a non-thiopurine agent; if used, reduce daily dose 10-fold and dose three times weekly.", []string{"Complete blood count", "Myelosuppression"}, thiopurineAlts, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_HIGH, 0.9,
				rec("Start at 30% to 80% of the normal dose and adjust to myelosuppression.", []string{"Complete blood count"}, nil, evidenceA, statusActionable)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.95, standardDosing("Complete blood count")},
		},
	},
	{
		drug:      domain.FLUOROURACIL,
		gene:      domain.DPYD,
		guideline: "CPIC Guideline for Fluoropyrimidines and DPYD Genotype (2017)",
		rows: []ruleRow{
			{domain.POOR_METABOLIZER, domain.TOXIC, domain.SEVERITY_CRITICAL, 0.95,
				rec("Avoid fluorouracil; complete DPD deficiency risks fatal toxicity.", []string{"Neutropenia", "Mucositis"}, fluoropyrimidineAlts, evidenceA, statusActionable)},
			{domain.INTERMEDIATE_METABOLIZER, domain.ADJUST_DOSAGE, domain.SEVERITY_HIGH, 0.9,
				rec("Reduce starting dose by 50% and titrate on toxicity.", []string{"Neutropenia", "Diarrhea"}, nil, evidenceA, statusActionable)},
			{domain.NORMAL_METABOLIZER, domain.SAFE, domain.SEVERITY_NONE, 0.95, standardDosing()},
		},
	},
}

// compositeRules map the WARFARIN composite risk to a rule. They supersede the
// CYP2C9-only rows above whenever the composite caller runs.
var compositeRules = map[domain.Drug][]struct {
	level domain.RiskLevel
	row   ruleRow
}{
	domain.WARFARIN: {
		{domain.LEVEL_SEVERE, ruleRow{"", domain.TOXIC, domain.SEVERITY_CRITICAL, 0.9,
			rec("Major bleeding risk at standard doses; use an alternative anticoagulant or a major dose reduction with close INR control.", []string{"INR", "Bleeding"}, anticoagulantAlts, evidenceA, statusActionable)}},
		{domain.LEVEL_HIGH, ruleRow{"", domain.ADJUST_DOSAGE, domain.SEVERITY_HIGH, 0.9,
			rec("Reduce starting dose and titrate to INR.", []string{"INR", "Bleeding"}, anticoagulantAlts, evidenceA, statusActionable)}},
		{domain.LEVEL_MODERATE, ruleRow{"", domain.ADJUST_DOSAGE, domain.SEVERITY_MODERATE, 0.85,
			rec("Adjust starting dose using a genotype-guided dosing algorithm.", []string{"INR"}, nil, evidenceA, statusActionable)}},
		{domain.LEVEL_LOW, ruleRow{"", domain.SAFE, domain.SEVERITY_LOW, 0.9,
			rec("Standard dosing; titrate to INR.", []string{"INR"}, nil, evidenceA, statusNotActionable)}},
		{domain.LEVEL_INSUFFICIENT_DATA, ruleRow{"", domain.RISK_UNKNOWN, domain.SEVERITY_NONE, 0.4,
			rec("Insufficient genotype data for genotype-guided dosing; dose clinically and titrate to INR.", []string{"INR"}, nil, evidenceA, statusInformative)}},
	},
}
