package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/cache"
	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/internal/service"
)

// Tool and resource names
const (
	ToolAnalyze      = "analyze_pharmacogenomics"
	ToolDiplotype    = "call_diplotype"
	ToolInteractions = "check_interactions"
	ToolListSupport  = "list_supported"

	CatalogURI = "pgx://reference/catalog"
)

// AnalyzeParams defines parameters for the analyze_pharmacogenomics tool
type AnalyzeParams struct {
	PatientID  string   `json:"patient_id,omitempty" jsonschema:"patient identifier echoed into the report"`
	VCFContent string   `json:"vcf_content" jsonschema:"raw VCF text with a single sample column"`
	Drugs      []string `json:"drugs" jsonschema:"drug names to assess, case-insensitive"`
}

// AnalyzeResult defines the result structure for the analyze_pharmacogenomics tool
type AnalyzeResult struct {
	Cached bool                   `json:"cached"`
	Report *domain.AnalysisReport `json:"report"`
}

// DiplotypeParams defines parameters for the call_diplotype tool
type DiplotypeParams struct {
	Gene       string `json:"gene" jsonschema:"gene symbol such as CYP2D6 or VKORC1"`
	VCFContent string `json:"vcf_content" jsonschema:"raw VCF text with a single sample column"`
}

// DiplotypeResult carries exactly one of Diplotype or SNP
type DiplotypeResult struct {
	Gene      domain.Gene             `json:"gene"`
	Diplotype *domain.DiplotypeResult `json:"diplotype,omitempty"`
	SNP       *domain.SNPGeneResult   `json:"snp,omitempty"`
	Parse     domain.ParseSummary     `json:"parse"`
}

// InteractionParams defines parameters for the check_interactions tool. Without a VCF
// only the interaction table is consulted.
type InteractionParams struct {
	Drugs      []string `json:"drugs" jsonschema:"drug names to check pairwise"`
	VCFContent string   `json:"vcf_content,omitempty" jsonschema:"optional VCF used to assess phenoconversion and overall risk"`
}

// ListSupportedParams is empty; list_supported takes no arguments.
type ListSupportedParams struct{}

// Catalog lists everything the reference data covers
type Catalog struct {
	ReferenceVersion string                    `json:"reference_version"`
	Genes            []reference.GeneSummary   `json:"genes"`
	Drugs            []reference.DrugSummary   `json:"drugs"`
	Interactions     []domain.InteractionEntry `json:"interactions"`
	Markers          []string                  `json:"markers"`
}

// toolHandlers holds what the tools need from the rest of the service.
type toolHandlers struct {
	analyzer *service.Analyzer
	cache    domain.ReportCache
	timeout  time.Duration
	logger   *logrus.Logger
}

func (h *toolHandlers) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAnalyze,
		Description: "Assess pharmacogenomic risk for one or more drugs from a patient's VCF: diplotypes, phenotypes, risk labels, CPIC-style recommendations and drug-drug interactions.",
	}, h.handleAnalyze)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolDiplotype,
		Description: "Call the star-allele diplotype, activity score and phenotype for one gene, or the genotype for a single-marker gene.",
	}, h.handleDiplotype)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolInteractions,
		Description: "Check known drug-drug interactions and CYP2D6 inhibitor phenoconversion for a drug list.",
	}, h.handleInteractions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListSupport,
		Description: "List supported genes, drugs and interaction pairs with the reference data version.",
	}, h.handleListSupported)

	server.AddResource(&mcp.Resource{
		URI:         CatalogURI,
		Name:        "reference-catalog",
		Description: "Supported genes, drugs and interactions",
		MIMEType:    "application/json",
	}, h.handleCatalogResource)
}

// handleAnalyze handles the analyze_pharmacogenomics tool invocation
func (h *toolHandlers) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, params AnalyzeParams) (*mcp.CallToolResult, any, error) {
	h.logger.WithField("tool", ToolAnalyze).Info("Tool invoked")

	validator := h.analyzer.Validator()
	if err := validator.ValidateVCFContent(params.VCFContent); err != nil {
		return h.createErrorResult("Invalid vcf_content", err), nil, nil
	}
	drugs, err := validator.ParseDrugs(params.Drugs)
	if err != nil {
		return h.createErrorResult("Invalid drugs", err), nil, nil
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	key := cache.Key(h.analyzer.Registry().Version(), params.PatientID, params.VCFContent, drugs)
	if h.cache != nil {
		if report, ok := h.cache.Get(ctx, key); ok {
			result := AnalyzeResult{Cached: true, Report: report}
			return textResult(summarizeReport(report)), result, nil
		}
	}

	report, err := h.analyzer.Analyze(ctx, domain.AnalysisRequest{
		PatientID:  params.PatientID,
		VCFContent: params.VCFContent,
		Drugs:      drugNames(drugs),
	})
	if err != nil {
		return h.createErrorResult("Analysis failed", err), nil, nil
	}
	if h.cache != nil {
		h.cache.Set(ctx, key, report)
	}

	result := AnalyzeResult{Report: report}
	return textResult(summarizeReport(report)), result, nil
}

// handleDiplotype handles the call_diplotype tool invocation
func (h *toolHandlers) handleDiplotype(ctx context.Context, req *mcp.CallToolRequest, params DiplotypeParams) (*mcp.CallToolResult, any, error) {
	h.logger.WithField("tool", ToolDiplotype).Info("Tool invoked")

	validator := h.analyzer.Validator()
	gene, err := validator.ParseGene(params.Gene)
	if err != nil {
		return h.createErrorResult("Invalid gene", err), nil, nil
	}
	if err := validator.ValidateVCFContent(params.VCFContent); err != nil {
		return h.createErrorResult("Invalid vcf_content", err), nil, nil
	}

	parsed := h.analyzer.Parse(params.VCFContent)
	result := DiplotypeResult{
		Gene: gene,
		Parse: domain.ParseSummary{
			Success:  parsed.Success,
			Errors:   parsed.Errors,
			Metadata: parsed.Metadata,
		},
	}

	var text string
	if gene.Kind() == domain.SNP_GENE {
		r := h.analyzer.Caller().CallSNPGene(gene, parsed.Variants)
		result.SNP = &r
		text = fmt.Sprintf("%s %s: %s (%s)", gene, r.RsID, r.Display, r.Effect)
	} else {
		r := h.analyzer.Caller().CallDiplotype(gene, parsed.Variants)
		result.Diplotype = &r
		text = fmt.Sprintf("%s %s: activity score %.2f, %s (confidence %.2f)", gene, r.Diplotype, r.ActivityScore, r.Phenotype, r.Confidence)
	}

	return textResult(text), result, nil
}

// handleInteractions handles the check_interactions tool invocation
func (h *toolHandlers) handleInteractions(ctx context.Context, req *mcp.CallToolRequest, params InteractionParams) (*mcp.CallToolResult, any, error) {
	h.logger.WithField("tool", ToolInteractions).Info("Tool invoked")

	drugs, err := h.analyzer.Validator().ParseDrugs(params.Drugs)
	if err != nil {
		return h.createErrorResult("Invalid drugs", err), nil, nil
	}

	var analyses []domain.DrugAnalysis
	if strings.TrimSpace(params.VCFContent) != "" {
		report, err := h.analyzer.Analyze(ctx, domain.AnalysisRequest{
			VCFContent: params.VCFContent,
			Drugs:      drugNames(drugs),
		})
		if err != nil {
			return h.createErrorResult("Analysis failed", err), nil, nil
		}
		analyses = report.Drugs
	}

	result := h.analyzer.Interactions().Check(drugs, analyses)

	text := fmt.Sprintf("%d interaction(s) among %d drug(s); overall risk %s", len(result.Interactions), len(drugs), result.OverallRisk)
	if result.PhenoconversionRisk {
		text += "; phenoconversion risk"
	}
	return textResult(text), result, nil
}

// handleListSupported handles the list_supported tool invocation
func (h *toolHandlers) handleListSupported(ctx context.Context, req *mcp.CallToolRequest, _ ListSupportedParams) (*mcp.CallToolResult, any, error) {
	catalog := h.catalog()
	text := fmt.Sprintf("Reference %s: %d genes, %d drugs, %d interaction pairs",
		catalog.ReferenceVersion, len(catalog.Genes), len(catalog.Drugs), len(catalog.Interactions))
	return textResult(text), catalog, nil
}

func (h *toolHandlers) handleCatalogResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(h.catalog())
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: CatalogURI, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

func (h *toolHandlers) catalog() Catalog {
	registry := h.analyzer.Registry()
	return Catalog{
		ReferenceVersion: registry.Version(),
		Genes:            registry.Genes(),
		Drugs:            registry.Drugs(),
		Interactions:     registry.Interactions(),
		Markers:          registry.AllowList(),
	}
}

// createErrorResult creates a standardized error result for tool calls
func (h *toolHandlers) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	h.logger.WithError(err).Debug(message)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func summarizeReport(report *domain.AnalysisReport) string {
	parts := make([]string, 0, len(report.Drugs))
	for _, d := range report.Drugs {
		parts = append(parts, fmt.Sprintf("%s=%s", d.Drug, d.RiskAssessment.RiskLabel))
	}
	text := fmt.Sprintf("Analyzed %d drug(s): %s", len(report.Drugs), strings.Join(parts, ", "))
	if report.Interactions != nil {
		text += fmt.Sprintf("; overall risk %s", report.Interactions.OverallRisk)
	}
	return text
}

func drugNames(drugs []domain.Drug) []string {
	names := make([]string, 0, len(drugs))
	for _, d := range drugs {
		names = append(names, string(d))
	}
	return names
}
