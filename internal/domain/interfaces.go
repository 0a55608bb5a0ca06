package domain

import (
	"context"
)

// VariantParser turns raw variant file text into records and diagnostics
type VariantParser interface {
	Parse(content string) *ParseResult
}

// ReferenceData exposes the immutable pharmacogenomic reference tables
type ReferenceData interface {
	Version() string
	AlleleTable(gene Gene) (*GeneAlleleTable, bool)
	SNPTable(gene Gene) (SNPGeneTable, bool)
	DrugTable(drug Drug) (DrugRuleTable, bool)
	Interaction(a, b Drug) (InteractionEntry, bool)
	InhibitedGene(drug Drug) (Gene, bool)
	IsAllowListed(rsID string) bool
}

// GenotypeCaller infers diplotypes and SNP genotypes from parsed records
type GenotypeCaller interface {
	CallDiplotype(gene Gene, variants []VariantRecord) DiplotypeResult
	CallSNPGene(gene Gene, variants []VariantRecord) SNPGeneResult
}

// RiskAssessor maps a phenotype and drug to a risk label and recommendation
type RiskAssessor interface {
	AssessRisk(drug Drug, phenotype *Phenotype, phenotypeConfidence float64, contributing []VariantRecord, diplotype string) RiskResult
	AssessComposite(composite CompositeResult) RiskResult
}

// PharmacogenomicAnalyzer runs the full pipeline for one request
type PharmacogenomicAnalyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error)
}

// ReportCache stores finished analysis reports keyed by request fingerprint
type ReportCache interface {
	Get(ctx context.Context, key string) (*AnalysisReport, bool)
	Set(ctx context.Context, key string, report *AnalysisReport)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetCacheConfig() *CacheConfig
	Reload() error
	Validate() error
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
