package vcf

import (
	"strconv"
	"strings"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

// SplitGenotype splits a GT string on either the phased (|) or unphased (/) separator.
func SplitGenotype(gt string) []string {
	gt = strings.TrimSpace(gt)
	if gt == "" {
		return nil
	}
	return strings.FieldsFunc(gt, func(r rune) bool {
		return r == '|' || r == '/'
	})
}

// IsHomozygousReference reports whether gt is 0/0 or 0|0.
func IsHomozygousReference(gt string) bool {
	parts := SplitGenotype(gt)
	return len(parts) == 2 && parts[0] == "0" && parts[1] == "0"
}

// Zygosity classifies a diploid genotype. Genotypes that do not split into two
// components, or carry a missing call, are unknown.
func Zygosity(gt string) domain.Zygosity {
	parts := SplitGenotype(gt)
	if len(parts) != 2 || parts[0] == "." || parts[1] == "." {
		return domain.ZYGOSITY_UNKNOWN
	}
	switch {
	case parts[0] == "0" && parts[1] == "0":
		return domain.HOMOZYGOUS_REFERENCE
	case parts[0] == parts[1]:
		return domain.HOMOZYGOUS
	default:
		return domain.HETEROZYGOUS
	}
}

// NormalizeGenotype returns the unphased, ascending form of a diploid genotype so that
// 1|0, 0|1 and 1/0 all read 0/1. The second return is false when gt is not diploid.
func NormalizeGenotype(gt string) (string, bool) {
	parts := SplitGenotype(gt)
	if len(parts) != 2 {
		return "", false
	}
	a, b := parts[0], parts[1]
	if alleleIndexLess(b, a) {
		a, b = b, a
	}
	return a + "/" + b, true
}

func alleleIndexLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
