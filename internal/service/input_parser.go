package service

import (
	"fmt"
	"strings"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

// DefaultMaxDrugsPerRequest caps the drug list when no limit is configured.
const DefaultMaxDrugsPerRequest = 10

// RequestValidator rejects malformed analysis requests before they reach the pipeline.
type RequestValidator struct {
	maxDrugs    int
	maxVCFBytes int64
}

// NewRequestValidator creates a validator. Non-positive limits use the defaults
// (no size limit for VCF content).
func NewRequestValidator(maxDrugs int, maxVCFBytes int64) *RequestValidator {
	if maxDrugs <= 0 {
		maxDrugs = DefaultMaxDrugsPerRequest
	}
	return &RequestValidator{
		maxDrugs:    maxDrugs,
		maxVCFBytes: maxVCFBytes,
	}
}

// ParseDrugs normalizes, de-duplicates and validates drug identifiers. Order of first
// appearance is kept.
func (v *RequestValidator) ParseDrugs(names []string) ([]domain.Drug, error) {
	drugs := make([]domain.Drug, 0, len(names))
	seen := make(map[domain.Drug]bool, len(names))

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		drug, ok := domain.ParseDrug(name)
		if !ok {
			return nil, domain.WrapValidationError("drugs", name, fmt.Errorf("%w: %s", domain.ErrUnsupportedDrug, strings.TrimSpace(name)))
		}
		if seen[drug] {
			continue
		}
		seen[drug] = true
		drugs = append(drugs, drug)
	}

	if len(drugs) == 0 {
		return nil, domain.WrapValidationError("drugs", names, domain.ErrEmptyDrugList)
	}
	if len(drugs) > v.maxDrugs {
		return nil, domain.WrapValidationError("drugs", len(drugs), fmt.Errorf("%w: %d exceeds limit of %d", domain.ErrTooManyDrugs, len(drugs), v.maxDrugs))
	}
	return drugs, nil
}

// ParseDrugList splits a comma-separated drug list, as sent by multipart forms.
func ParseDrugList(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateVCFContent checks the raw file is present and within the size limit. Format
// problems are left to the parser.
func (v *RequestValidator) ValidateVCFContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.WrapValidationError("vcf_content", "", domain.ErrEmptyInput)
	}
	if v.maxVCFBytes > 0 && int64(len(content)) > v.maxVCFBytes {
		return domain.WrapValidationError("vcf_content", len(content), fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrInputTooLarge, len(content), v.maxVCFBytes))
	}
	return nil
}

// ParseGene validates a gene symbol.
func (v *RequestValidator) ParseGene(symbol string) (domain.Gene, error) {
	gene, ok := domain.ParseGene(symbol)
	if !ok {
		return "", domain.WrapValidationError("gene", symbol, fmt.Errorf("%w: %s", domain.ErrUnsupportedGene, strings.TrimSpace(symbol)))
	}
	return gene, nil
}
