package service

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
)

const vcfHeader = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tPATIENT_001"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRegistry(t *testing.T) *reference.Registry {
	t.Helper()
	registry, err := reference.Default()
	require.NoError(t, err)
	return registry
}

// buildVCF renders a single-sample VCF. Each marker is "gene:rsid:genotype".
func buildVCF(markers ...string) string {
	lines := []string{"##fileformat=VCFv4.2", "##reference=GRCh38", vcfHeader}
	for i, m := range markers {
		parts := strings.SplitN(m, ":", 3)
		lines = append(lines, fmt.Sprintf("chr1\t%d\t%s\tG\tA\t50\tPASS\tGENE=%s\tGT\t%s", 1000+i, parts[1], parts[0], parts[2]))
	}
	return strings.Join(lines, "\n") + "\n"
}

func record(gene, rsID, genotype string) domain.VariantRecord {
	return domain.VariantRecord{
		Chromosome: "chr1",
		Position:   1000,
		ID:         rsID,
		Reference:  "G",
		Alternate:  "A",
		Gene:       gene,
		RsID:       rsID,
		Genotype:   genotype,
	}
}
