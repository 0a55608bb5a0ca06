package vcf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

func vcfLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

const testHeader = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tPATIENT_001"

func TestParse_FullFile(t *testing.T) {
	content := vcfLines(
		"##fileformat=VCFv4.2",
		"##reference=GRCh38",
		"##contig=<ID=chr22,length=50818468>",
		"##contig=<ID=chr10,length=133797422>",
		testHeader,
		"chr22\t42130692\trs3892097\tG\tA\t50\tPASS\tGENE=CYP2D6;STAR=*4;DB\tGT:DP\t0/1:35",
		"chr10\t94781859\t.\tG\tA\t.\tPASS\tGENE=CYP2C19;RS=rs4244285\tGT\t1|1",
	)

	result := NewParser().Parse(content)

	require.True(t, result.Success)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Variants, 2)

	first := result.Variants[0]
	assert.Equal(t, "chr22", first.Chromosome)
	assert.Equal(t, int64(42130692), first.Position)
	assert.Equal(t, "rs3892097", first.RsID)
	assert.Equal(t, "CYP2D6", first.Gene)
	assert.Equal(t, "*4", first.StarAllele)
	assert.Equal(t, "0/1", first.Genotype)
	assert.Equal(t, 6, first.LineNumber)
	db, ok := first.Info.Get("DB")
	assert.True(t, ok)
	assert.Equal(t, "true", db)

	second := result.Variants[1]
	assert.Equal(t, "rs4244285", second.RsID, "RS annotation wins over ID")
	assert.Equal(t, "1|1", second.Genotype)

	assert.Equal(t, "VCFv4.2", result.Metadata.FileFormat)
	assert.Equal(t, "GRCh38", result.Metadata.Reference)
	assert.Equal(t, []string{"chr22", "chr10"}, result.Metadata.Contigs)
	assert.Equal(t, []string{"PATIENT_001"}, result.Metadata.SampleIDs)
	assert.Equal(t, 7, result.Metadata.TotalLines)
	assert.Equal(t, 2, result.Metadata.ParsedLines)
	assert.Equal(t, 0, result.Metadata.SkippedLines)
}

func TestParse_FatalFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"blank lines only", "\n\n   \n"},
		{"header-less", vcfLines("##fileformat=VCFv4.2", "chr22\t1\trs1\tA\tG\t.\tPASS\t.")},
		{"missing required column", vcfLines("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER", "chr22\t1\trs1\tA\tG\t.\tPASS")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewParser().Parse(tt.content)

			assert.False(t, result.Success)
			assert.Empty(t, result.Variants)
			assert.NotEmpty(t, result.Errors)
		})
	}
}

func TestParse_PartialSuccess(t *testing.T) {
	content := vcfLines(
		testHeader,
		"chr22\t42130692\trs3892097\tG\tA\t50\tPASS\tGENE=CYP2D6\tGT\t0/1",
		"chr22\tnot-a-number\trs16947\tG\tA\t50\tPASS\t.\tGT\t0/1",
		"chr22\t42127941",
		"# trailing comment",
	)

	result := NewParser().Parse(content)

	assert.True(t, result.Success, "one good record is enough")
	assert.Len(t, result.Variants, 1)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "line 3")
	assert.Contains(t, result.Errors[0], "invalid position")
	assert.Contains(t, result.Errors[1], "line 4")
	assert.Equal(t, 2, result.Metadata.SkippedLines)
}

func TestParse_AllLinesBad(t *testing.T) {
	content := vcfLines(
		testHeader,
		"chr22\t1\trs1",
	)

	result := NewParser().Parse(content)

	assert.False(t, result.Success)
	assert.Empty(t, result.Variants)
	assert.Len(t, result.Errors, 1)
}

func TestParse_HeaderOnlyIsSuccess(t *testing.T) {
	result := NewParser().Parse(vcfLines("##fileformat=VCFv4.2", testHeader))

	assert.True(t, result.Success)
	assert.Empty(t, result.Variants)
	assert.Empty(t, result.Errors)
}

func TestParse_GenotypeSources(t *testing.T) {
	content := vcfLines(
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
		"chr16\t31096368\trs9923231\tC\tT\t.\tPASS\tGENE=VKORC1;GT=1/1",
		"chr19\t15879621\trs2108622\tC\tT\t.\tPASS\tGENE=CYP4F2",
	)

	result := NewParser().Parse(content)

	require.Len(t, result.Variants, 2)
	assert.Equal(t, "1/1", result.Variants[0].Genotype)
	assert.Empty(t, result.Variants[1].Genotype)
	assert.Nil(t, result.Metadata.SampleIDs)
}

func TestParse_FormatWithoutGTUsesInfo(t *testing.T) {
	content := vcfLines(
		testHeader,
		"chr16\t31096368\trs9923231\tC\tT\t.\tPASS\tGT=0/1\tDP\t40",
	)

	result := NewParser().Parse(content)

	require.Len(t, result.Variants, 1)
	assert.Equal(t, "0/1", result.Variants[0].Genotype)
}

func TestParse_WindowsLineEndingsAndPreambleNoise(t *testing.T) {
	content := "##fileformat=VCFv4.2\r\nstray line\r\n" + testHeader + "\r\n" +
		"chr22\t42130692\trs3892097\tG\tA\t50\tPASS\tGENE=CYP2D6\tGT\t0/1\r\n"

	result := NewParser().Parse(content)

	assert.True(t, result.Success)
	require.Len(t, result.Variants, 1)
	assert.Equal(t, "PATIENT_001", result.Metadata.SampleIDs[0])
	assert.Equal(t, "0/1", result.Variants[0].Genotype)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "before #CHROM header")
}

func TestParse_IDFallbackRequiresRsPrefix(t *testing.T) {
	content := vcfLines(
		testHeader,
		"chr1\t100\tCOSM123\tA\tG\t.\tPASS\t.\tGT\t0/1",
	)

	result := NewParser().Parse(content)

	require.Len(t, result.Variants, 1)
	assert.Empty(t, result.Variants[0].RsID)
	assert.False(t, result.Variants[0].HasRsID())
}

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.Annotations
	}{
		{"missing", ".", domain.Annotations{}},
		{"empty", "", domain.Annotations{}},
		{"pairs and flags", "GENE=TPMT;SOMATIC;AF=0.01;", domain.Annotations{
			{Key: "GENE", Value: "TPMT"},
			{Key: "SOMATIC", Value: "true"},
			{Key: "AF", Value: "0.01"},
		}},
		{"value with equals", "NOTE=a=b", domain.Annotations{{Key: "NOTE", Value: "a=b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseInfo(tt.input))
		})
	}
}
