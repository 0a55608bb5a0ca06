package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/pkg/vcf"
)

// Analyzer runs the full pipeline: parse once, call genes per drug, assess risk, then
// check interactions for multi-drug requests. Analyzer holds no per-request state and may
// be shared between goroutines.
type Analyzer struct {
	logger       *logrus.Logger
	registry     *reference.Registry
	parser       domain.VariantParser
	caller       *DiplotypeCaller
	composite    *CompositeCaller
	engine       *RiskEngine
	interactions *InteractionChecker
	consistency  *ConsistencyChecker
	validator    *RequestValidator
	relevance    *vcf.RelevanceFilter
}

var _ domain.PharmacogenomicAnalyzer = (*Analyzer)(nil)

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithParser replaces the default variant file parser.
func WithParser(p domain.VariantParser) AnalyzerOption {
	return func(a *Analyzer) {
		a.parser = p
	}
}

// WithLimits sets the request limits enforced by Analyze.
func WithLimits(maxDrugs int, maxVCFBytes int64) AnalyzerOption {
	return func(a *Analyzer) {
		a.validator = NewRequestValidator(maxDrugs, maxVCFBytes)
	}
}

// NewAnalyzer wires the pipeline components around a reference registry.
func NewAnalyzer(logger *logrus.Logger, registry *reference.Registry, opts ...AnalyzerOption) *Analyzer {
	caller := NewDiplotypeCaller(logger, registry)

	genes := make([]string, 0, len(domain.AllGenes()))
	for _, g := range domain.AllGenes() {
		genes = append(genes, string(g))
	}

	a := &Analyzer{
		logger:       logger,
		registry:     registry,
		parser:       vcf.NewParser(),
		caller:       caller,
		composite:    NewCompositeCaller(logger, registry, caller),
		engine:       NewRiskEngine(logger, registry),
		interactions: NewInteractionChecker(logger, registry),
		consistency:  NewConsistencyChecker(registry),
		validator:    NewRequestValidator(0, 0),
		relevance:    vcf.NewRelevanceFilter(genes, registry),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry returns the reference data the analyzer uses.
func (a *Analyzer) Registry() *reference.Registry {
	return a.registry
}

// Caller returns the diplotype caller.
func (a *Analyzer) Caller() *DiplotypeCaller {
	return a.caller
}

// Interactions returns the interaction checker.
func (a *Analyzer) Interactions() *InteractionChecker {
	return a.interactions
}

// Validator returns the request validator.
func (a *Analyzer) Validator() *RequestValidator {
	return a.validator
}

// Parse runs the configured parser.
func (a *Analyzer) Parse(content string) *domain.ParseResult {
	return a.parser.Parse(content)
}

// Analyze validates the request and produces a deterministic report. Errors are returned
// only for invalid requests or a cancelled context; parse problems are reported in the
// report itself.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	drugs, err := a.validator.ParseDrugs(req.Drugs)
	if err != nil {
		return nil, fmt.Errorf("validating request: %w", err)
	}

	parsed := a.parser.Parse(req.VCFContent)
	relevant := a.relevance.FilterRelevant(parsed.Variants)

	a.logger.WithFields(logrus.Fields{
		"drugs":             len(drugs),
		"variants":          len(parsed.Variants),
		"relevant_variants": len(relevant),
		"parse_errors":      len(parsed.Errors),
	}).Debug("Parsed variant file")

	diplotypes := make(map[domain.Gene]domain.DiplotypeResult)
	callGene := func(gene domain.Gene) domain.DiplotypeResult {
		if r, ok := diplotypes[gene]; ok {
			return r
		}
		r := a.caller.CallDiplotype(gene, parsed.Variants)
		if issues := a.consistency.Check(gene, r); len(issues) > 0 {
			a.logger.WithFields(logrus.Fields{
				"gene":   gene,
				"issues": issues,
			}).Warn("Diplotype consistency check failed")
		}
		diplotypes[gene] = r
		return r
	}

	analyses := make([]domain.DrugAnalysis, 0, len(drugs))
	for _, drug := range drugs {
		analyses = append(analyses, a.analyzeDrug(drug, parsed.Variants, callGene))
	}

	report := &domain.AnalysisReport{
		PatientID:        req.PatientID,
		ReferenceVersion: a.registry.Version(),
		Parse: domain.ParseSummary{
			Success:  parsed.Success,
			Errors:   parsed.Errors,
			Metadata: parsed.Metadata,
		},
		Drugs: analyses,
	}

	if len(drugs) > 1 {
		interactions := a.interactions.Check(drugs, analyses)
		report.Interactions = &interactions
	}

	report.Quality = qualityMetrics(parsed, len(relevant), analyses, len(diplotypes))

	fields := logrus.Fields{
		"drugs":           len(drugs),
		"variants":        len(parsed.Variants),
		"mean_confidence": report.Quality.MeanConfidence,
	}
	if report.Interactions != nil {
		fields["overall_risk"] = report.Interactions.OverallRisk
	}
	a.logger.WithFields(fields).Info("Completed pharmacogenomic analysis")

	return report, nil
}

func (a *Analyzer) analyzeDrug(drug domain.Drug, variants []domain.VariantRecord, callGene func(domain.Gene) domain.DiplotypeResult) domain.DrugAnalysis {
	table, _ := a.registry.DrugTable(drug)

	if composite, ok := a.composite.Call(drug, variants, callGene); ok {
		primary := composite.Primary
		risk := a.engine.AssessComposite(composite)
		return domain.DrugAnalysis{
			Drug:           drug,
			RiskAssessment: risk.Assessment,
			Profile:        risk.Profile,
			Recommendation: risk.Recommendation,
			Diplotype:      &primary,
			Composite:      &composite,
		}
	}

	call := callGene(table.PrimaryGene)
	var phenotype *domain.Phenotype
	if call.Phenotype.IsKnown() {
		p := call.Phenotype
		phenotype = &p
	}
	risk := a.engine.AssessRisk(drug, phenotype, call.Confidence, call.ContributingVariants, call.Diplotype)

	return domain.DrugAnalysis{
		Drug:           drug,
		RiskAssessment: risk.Assessment,
		Profile:        risk.Profile,
		Recommendation: risk.Recommendation,
		Diplotype:      &call,
	}
}

func qualityMetrics(parsed *domain.ParseResult, relevant int, analyses []domain.DrugAnalysis, genesCalled int) domain.QualityMetrics {
	q := domain.QualityMetrics{
		VariantsParsed:   len(parsed.Variants),
		RelevantVariants: relevant,
		GenesCalled:      genesCalled,
		ParseErrors:      len(parsed.Errors),
	}
	if len(analyses) == 0 {
		return q
	}
	total := 0.0
	for _, a := range analyses {
		total += a.RiskAssessment.ConfidenceScore
		if a.RiskAssessment.RiskLabel == domain.RISK_UNKNOWN {
			q.UnknownRiskLabels++
		}
	}
	q.MeanConfidence = total / float64(len(analyses))
	return q
}
