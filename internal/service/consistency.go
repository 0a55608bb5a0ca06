package service

import (
	"fmt"
	"math"

	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
)

const scoreTolerance = 1e-9

// ConsistencyChecker recomputes a diplotype's activity score and phenotype from its
// assigned alleles. A mismatch means the reference tables or the caller are defective;
// it is logged, never returned to clients.
type ConsistencyChecker struct {
	registry *reference.Registry
}

// NewConsistencyChecker creates a new consistency checker
func NewConsistencyChecker(registry *reference.Registry) *ConsistencyChecker {
	return &ConsistencyChecker{registry: registry}
}

// Check returns one message per violated invariant. Unknown sentinels are skipped.
func (c *ConsistencyChecker) Check(gene domain.Gene, result domain.DiplotypeResult) []string {
	table, ok := c.registry.AlleleTable(gene)
	if !ok || (result.Phenotype == domain.PHENOTYPE_UNKNOWN && result.ActivityScore == unknownActivityScore) {
		return nil
	}

	var issues []string

	if result.Allele1 == "" || result.Allele2 == "" {
		issues = append(issues, fmt.Sprintf("%s: diplotype %q does not carry two alleles", gene, result.Diplotype))
	}

	expectedScore := table.ActivityScore(result.Allele1) + table.ActivityScore(result.Allele2)
	if math.Abs(expectedScore-result.ActivityScore) > scoreTolerance {
		issues = append(issues, fmt.Sprintf("%s: activity score %.2f, expected %.2f from %s", gene, result.ActivityScore, expectedScore, result.Diplotype))
	}

	if expected := table.PhenotypeForScore(expectedScore); expected != result.Phenotype {
		issues = append(issues, fmt.Sprintf("%s: phenotype %s, expected %s for score %.2f", gene, result.Phenotype, expected, expectedScore))
	}

	if canonical := CanonicalDiplotype(result.Allele1, result.Allele2); canonical != result.Diplotype {
		issues = append(issues, fmt.Sprintf("%s: diplotype %q not canonical, expected %q", gene, result.Diplotype, canonical))
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		issues = append(issues, fmt.Sprintf("%s: confidence %.2f outside [0,1]", gene, result.Confidence))
	}

	return issues
}
