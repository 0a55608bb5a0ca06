package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

func TestConsistencyChecker_Check(t *testing.T) {
	registry := testRegistry(t)
	checker := NewConsistencyChecker(registry)
	caller := NewDiplotypeCaller(testLogger(), registry)

	good := caller.CallDiplotype(domain.CYP2D6, []domain.VariantRecord{record("CYP2D6", "rs3892097", "0/1")})
	assert.Empty(t, checker.Check(domain.CYP2D6, good))

	assert.Empty(t, checker.Check(domain.VKORC1, unknownDiplotype(domain.VKORC1)))

	badScore := good
	badScore.ActivityScore = 2.0
	assert.Len(t, checker.Check(domain.CYP2D6, badScore), 1)

	badPhenotype := good
	badPhenotype.Phenotype = domain.POOR_METABOLIZER
	assert.Len(t, checker.Check(domain.CYP2D6, badPhenotype), 1)

	badOrder := good
	badOrder.Diplotype = "*4/*1"
	assert.Len(t, checker.Check(domain.CYP2D6, badOrder), 1)

	badConfidence := good
	badConfidence.Confidence = 1.2
	assert.Len(t, checker.Check(domain.CYP2D6, badConfidence), 1)
}
