package vcf

import (
	"strings"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

// AllowList answers whether an rsID is a known pharmacogenetic marker.
type AllowList interface {
	IsAllowListed(rsID string) bool
}

// RelevanceFilter flags records that belong to a supported gene or carry an allow-listed
// rsID. It is advisory: gene callers do their own selection and never depend on it.
type RelevanceFilter struct {
	genes     map[string]struct{}
	allowList AllowList
}

// NewRelevanceFilter builds a filter from gene symbols and a marker allow-list.
func NewRelevanceFilter(genes []string, allowList AllowList) *RelevanceFilter {
	f := &RelevanceFilter{
		genes:     make(map[string]struct{}, len(genes)),
		allowList: allowList,
	}
	for _, g := range genes {
		f.genes[strings.ToUpper(g)] = struct{}{}
	}
	return f
}

// Relevant reports whether the record is pharmacogenetically relevant.
func (f *RelevanceFilter) Relevant(v domain.VariantRecord) bool {
	if _, ok := f.genes[strings.ToUpper(v.Gene)]; ok && v.Gene != "" {
		return true
	}
	return v.RsID != "" && f.allowList != nil && f.allowList.IsAllowListed(v.RsID)
}

// FilterRelevant returns the relevant records in input order. The input is not modified.
func (f *RelevanceFilter) FilterRelevant(variants []domain.VariantRecord) []domain.VariantRecord {
	out := make([]domain.VariantRecord, 0, len(variants))
	for _, v := range variants {
		if f.Relevant(v) {
			out = append(out, v)
		}
	}
	return out
}
