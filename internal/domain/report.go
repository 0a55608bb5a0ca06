package domain

// RiskAssessment is the risk engine's verdict for one drug.
type RiskAssessment struct {
	RiskLabel       RiskLabel `json:"risk_label"`
	ConfidenceScore float64   `json:"confidence_score"`
	Severity        Severity  `json:"severity"`
	// RuleFallback is set when the phenotype had no drug-specific entry and the
	// Normal rule was applied instead.
	RuleFallback bool `json:"rule_fallback,omitempty"`
}

// DetectedVariant is the report view of a variant record used in calling.
type DetectedVariant struct {
	RsID       string   `json:"rsid"`
	Gene       string   `json:"gene,omitempty"`
	StarAllele string   `json:"star_allele,omitempty"`
	Chromosome string   `json:"chromosome"`
	Position   int64    `json:"position"`
	Genotype   string   `json:"genotype"`
	Zygosity   Zygosity `json:"zygosity,omitempty"`
	LineNumber int      `json:"line_number"`
}

// NewDetectedVariant projects a record into its report view.
func NewDetectedVariant(v VariantRecord) DetectedVariant {
	rs := v.RsID
	if rs == "" {
		rs = v.ID
	}
	return DetectedVariant{
		RsID:       rs,
		Gene:       v.Gene,
		StarAllele: v.StarAllele,
		Chromosome: v.Chromosome,
		Position:   v.Position,
		Genotype:   v.Genotype,
		LineNumber: v.LineNumber,
	}
}

// PharmacogenomicProfile echoes the genotype evidence behind a risk assessment.
type PharmacogenomicProfile struct {
	PrimaryGene      Gene              `json:"primary_gene"`
	Diplotype        string            `json:"diplotype"`
	Phenotype        Phenotype         `json:"phenotype"`
	DetectedVariants []DetectedVariant `json:"detected_variants"`
}

// RiskResult is the complete output of the risk engine.
type RiskResult struct {
	Assessment     RiskAssessment         `json:"risk_assessment"`
	Profile        PharmacogenomicProfile `json:"pharmacogenomic_profile"`
	Recommendation ClinicalRecommendation `json:"clinical_recommendation"`
}

// DrugAnalysis is the per-drug section of an analysis report.
type DrugAnalysis struct {
	Drug           Drug                   `json:"drug"`
	RiskAssessment RiskAssessment         `json:"risk_assessment"`
	Profile        PharmacogenomicProfile `json:"pharmacogenomic_profile"`
	Recommendation ClinicalRecommendation `json:"clinical_recommendation"`
	Diplotype      *DiplotypeResult       `json:"diplotype,omitempty"`
	Composite      *CompositeResult       `json:"composite,omitempty"`
}

// InteractionFinding is one detected pair among the requested drugs.
type InteractionFinding struct {
	DrugA     Drug      `json:"drug_a"`
	DrugB     Drug      `json:"drug_b"`
	Severity  RiskLevel `json:"severity"`
	Mechanism string    `json:"mechanism"`
}

// InteractionReport is the multi-drug section of an analysis report.
type InteractionReport struct {
	Interactions        []InteractionFinding `json:"interactions"`
	PhenoconversionRisk bool                 `json:"phenoconversion_risk"`
	Inhibitors          []Drug               `json:"inhibitors,omitempty"`
	InhibitedGenes      []Gene               `json:"inhibited_genes,omitempty"`
	OverallRisk         RiskLevel            `json:"overall_risk"`
}

// ParseSummary is the parser outcome carried in a report. Variants are omitted.
type ParseSummary struct {
	Success  bool        `json:"success"`
	Errors   []string    `json:"errors"`
	Metadata VCFMetadata `json:"metadata"`
}

// QualityMetrics summarizes how much evidence backed the report.
type QualityMetrics struct {
	VariantsParsed    int     `json:"variants_parsed"`
	RelevantVariants  int     `json:"relevant_variants"`
	GenesCalled       int     `json:"genes_called"`
	ParseErrors       int     `json:"parse_errors"`
	MeanConfidence    float64 `json:"mean_confidence"`
	UnknownRiskLabels int     `json:"unknown_risk_labels"`
}

// AnalysisRequest is the input of a full pharmacogenomic analysis.
type AnalysisRequest struct {
	PatientID  string   `json:"patient_id"`
	VCFContent string   `json:"vcf_content"`
	Drugs      []string `json:"drugs"`
}

// AnalysisReport is the deterministic result of an analysis. It holds no timestamps or
// generated identifiers so identical requests produce identical reports.
type AnalysisReport struct {
	PatientID        string             `json:"patient_id"`
	ReferenceVersion string             `json:"reference_version"`
	Parse            ParseSummary       `json:"parse"`
	Drugs            []DrugAnalysis     `json:"drugs"`
	Interactions     *InteractionReport `json:"interactions,omitempty"`
	Quality          QualityMetrics     `json:"quality_metrics"`
}
