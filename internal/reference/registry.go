// Package reference holds the versioned pharmacogenomic reference tables: star-allele
// definitions, SNP interpretations, drug rule tables and the drug-drug interaction table.
// A Registry is built and validated once and is read-only afterwards, so it is safe for
// concurrent use without locking.
package reference

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

// Version identifies the reference data release.
const Version = "pgx-ref-2024.1"

var _ domain.ReferenceData = (*Registry)(nil)

// Registry is the immutable set of reference tables.
type Registry struct {
	version        string
	alleleTables   map[domain.Gene]*domain.GeneAlleleTable
	snpTables      map[domain.Gene]domain.SNPGeneTable
	drugTables     map[domain.Drug]domain.DrugRuleTable
	compositeRules map[domain.Drug]map[domain.RiskLevel]domain.RiskRule
	interactions   []domain.InteractionEntry
	inhibitors     map[domain.Drug]domain.Gene
	allowList      map[string]struct{}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the process-wide registry, building it on first use.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = New()
	})
	return defaultRegistry, defaultErr
}

// MustDefault is Default for callers that cannot proceed without reference data.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(fmt.Sprintf("reference data: %v", err))
	}
	return r
}

// New builds and validates a registry from the built-in tables.
func New() (*Registry, error) {
	r := &Registry{
		version:        Version,
		alleleTables:   make(map[domain.Gene]*domain.GeneAlleleTable),
		snpTables:      make(map[domain.Gene]domain.SNPGeneTable),
		drugTables:     make(map[domain.Drug]domain.DrugRuleTable),
		compositeRules: make(map[domain.Drug]map[domain.RiskLevel]domain.RiskRule),
		interactions:   interactionTable,
		inhibitors:     inhibitors,
		allowList:      make(map[string]struct{}),
	}

	for _, def := range starAlleleTables {
		table, err := domain.NewGeneAlleleTable(def.gene, "*1", def.alleles, def.bands, def.guideline)
		if err != nil {
			return nil, err
		}
		r.alleleTables[def.gene] = table
		for _, rs := range table.RsIDs() {
			r.allowList[rs] = struct{}{}
		}
	}

	for _, table := range snpGeneTables {
		r.snpTables[table.Gene] = table
		r.allowList[table.RsID] = struct{}{}
	}

	for _, def := range drugRuleTables {
		table := domain.DrugRuleTable{
			Drug:          def.drug,
			PrimaryGene:   def.gene,
			ModifierGenes: def.modifiers,
			Guideline:     def.guideline,
			Rules:         make(map[domain.Phenotype]domain.RiskRule, len(def.rows)),
		}
		for _, row := range def.rows {
			table.Rules[row.phenotype] = row.toRule(def.drug, row.phenotype)
		}
		r.drugTables[def.drug] = table
	}

	for drug, rows := range compositeRules {
		levels := make(map[domain.RiskLevel]domain.RiskRule, len(rows))
		for _, entry := range rows {
			levels[entry.level] = entry.row.toRule(drug, "")
		}
		r.compositeRules[drug] = levels
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (row ruleRow) toRule(drug domain.Drug, phenotype domain.Phenotype) domain.RiskRule {
	return domain.RiskRule{
		Drug:           drug,
		Phenotype:      phenotype,
		Label:          row.label,
		Severity:       row.severity,
		BaseConfidence: row.confidence,
		Recommendation: row.rec,
	}
}

func (r *Registry) validate() error {
	for _, gene := range domain.AllGenes() {
		switch gene.Kind() {
		case domain.STAR_ALLELE_GENE:
			if _, ok := r.alleleTables[gene]; !ok {
				return fmt.Errorf("%w: no allele table for %s", domain.ErrInvalidReference, gene)
			}
		case domain.SNP_GENE:
			table, ok := r.snpTables[gene]
			if !ok {
				return fmt.Errorf("%w: no SNP table for %s", domain.ErrInvalidReference, gene)
			}
			if _, ok := table.Interpret("0/0"); !ok {
				return fmt.Errorf("%w: %s has no reference genotype", domain.ErrInvalidReference, gene)
			}
		}
	}

	for _, drug := range domain.AllDrugs() {
		table, ok := r.drugTables[drug]
		if !ok {
			return fmt.Errorf("%w: no rule table for %s", domain.ErrInvalidReference, drug)
		}
		if _, ok := r.alleleTables[table.PrimaryGene]; !ok {
			return fmt.Errorf("%w: %s primary gene %s has no allele table", domain.ErrInvalidReference, drug, table.PrimaryGene)
		}
		if _, ok := table.Rules[domain.NORMAL_METABOLIZER]; !ok {
			return fmt.Errorf("%w: %s has no Normal rule", domain.ErrInvalidReference, drug)
		}
		for ph, rule := range table.Rules {
			if err := validateRule(rule); err != nil {
				return fmt.Errorf("%w: %s %s: %v", domain.ErrInvalidReference, drug, ph, err)
			}
		}
		if table.IsComposite() {
			for _, g := range table.ModifierGenes {
				if _, ok := r.snpTables[g]; !ok {
					return fmt.Errorf("%w: %s modifier %s has no SNP table", domain.ErrInvalidReference, drug, g)
				}
			}
			levels := r.compositeRules[drug]
			for _, level := range []domain.RiskLevel{domain.LEVEL_LOW, domain.LEVEL_MODERATE, domain.LEVEL_HIGH, domain.LEVEL_SEVERE, domain.LEVEL_INSUFFICIENT_DATA} {
				rule, ok := levels[level]
				if !ok {
					return fmt.Errorf("%w: %s has no composite rule for %s", domain.ErrInvalidReference, drug, level)
				}
				if err := validateRule(rule); err != nil {
					return fmt.Errorf("%w: %s composite %s: %v", domain.ErrInvalidReference, drug, level, err)
				}
			}
		}
	}

	seen := make(map[[2]domain.Drug]bool, len(r.interactions))
	for _, e := range r.interactions {
		if !e.DrugA.IsValid() || !e.DrugB.IsValid() || e.DrugA == e.DrugB {
			return fmt.Errorf("%w: bad interaction pair %s+%s", domain.ErrInvalidReference, e.DrugA, e.DrugB)
		}
		if e.Severity.Rank() < 0 {
			return fmt.Errorf("%w: interaction %s+%s has severity %q", domain.ErrInvalidReference, e.DrugA, e.DrugB, e.Severity)
		}
		key := pairKey(e.DrugA, e.DrugB)
		if seen[key] {
			return fmt.Errorf("%w: duplicate interaction %s+%s", domain.ErrInvalidReference, e.DrugA, e.DrugB)
		}
		seen[key] = true
	}
	return nil
}

func validateRule(rule domain.RiskRule) error {
	if !rule.Label.IsValid() {
		return fmt.Errorf("invalid label %q", rule.Label)
	}
	if !rule.Severity.IsValid() {
		return fmt.Errorf("invalid severity %q", rule.Severity)
	}
	if rule.BaseConfidence < 0 || rule.BaseConfidence > 1 {
		return fmt.Errorf("base confidence %v outside [0,1]", rule.BaseConfidence)
	}
	return nil
}

func pairKey(a, b domain.Drug) [2]domain.Drug {
	if b < a {
		a, b = b, a
	}
	return [2]domain.Drug{a, b}
}

// Version returns the reference data release identifier.
func (r *Registry) Version() string {
	return r.version
}

// AlleleTable returns the star-allele table of a gene.
func (r *Registry) AlleleTable(gene domain.Gene) (*domain.GeneAlleleTable, bool) {
	t, ok := r.alleleTables[gene]
	return t, ok
}

// SNPTable returns the SNP interpretation table of a gene.
func (r *Registry) SNPTable(gene domain.Gene) (domain.SNPGeneTable, bool) {
	t, ok := r.snpTables[gene]
	return t, ok
}

// DrugTable returns the rule table of a drug.
func (r *Registry) DrugTable(drug domain.Drug) (domain.DrugRuleTable, bool) {
	t, ok := r.drugTables[drug]
	return t, ok
}

// CompositeRule returns the rule for a composite drug at a given composite risk.
func (r *Registry) CompositeRule(drug domain.Drug, level domain.RiskLevel) (domain.RiskRule, bool) {
	rule, ok := r.compositeRules[drug][level]
	return rule, ok
}

// Interaction looks up an unordered drug pair.
func (r *Registry) Interaction(a, b domain.Drug) (domain.InteractionEntry, bool) {
	for _, e := range r.interactions {
		if e.Involves(a, b) {
			return e, true
		}
	}
	return domain.InteractionEntry{}, false
}

// Interactions returns a copy of the interaction table.
func (r *Registry) Interactions() []domain.InteractionEntry {
	out := make([]domain.InteractionEntry, len(r.interactions))
	copy(out, r.interactions)
	return out
}

// InhibitedGene returns the metabolizing gene a drug inhibits. The second return is
// false for drugs that inhibit nothing.
func (r *Registry) InhibitedGene(drug domain.Drug) (domain.Gene, bool) {
	g, ok := r.inhibitors[drug]
	return g, ok
}

// IsAllowListed reports whether the rsID defines an allele or SNP genotype.
func (r *Registry) IsAllowListed(rsID string) bool {
	_, ok := r.allowList[rsID]
	return ok
}

// AllowList returns every pharmacogenetic rsID in sorted order.
func (r *Registry) AllowList() []string {
	ids := make([]string, 0, len(r.allowList))
	for rs := range r.allowList {
		ids = append(ids, rs)
	}
	sort.Strings(ids)
	return ids
}

// GeneSummary describes a supported gene for listings.
type GeneSummary struct {
	Gene            domain.Gene     `json:"gene" yaml:"gene"`
	Kind            domain.GeneKind `json:"kind" yaml:"kind"`
	ReferenceAllele string          `json:"reference_allele,omitempty" yaml:"reference_allele,omitempty"`
	Alleles         []string        `json:"alleles,omitempty" yaml:"alleles,omitempty"`
	RsIDs           []string        `json:"rsids" yaml:"rsids"`
	PhasingMethod   string          `json:"phasing_method,omitempty" yaml:"phasing_method,omitempty"`
	Guideline       string          `json:"guideline" yaml:"guideline"`
}

// DrugSummary describes a supported drug for listings.
type DrugSummary struct {
	Drug          domain.Drug   `json:"drug" yaml:"drug"`
	PrimaryGene   domain.Gene   `json:"primary_gene" yaml:"primary_gene"`
	ModifierGenes []domain.Gene `json:"modifier_genes,omitempty" yaml:"modifier_genes,omitempty"`
	Inhibits      domain.Gene   `json:"inhibits,omitempty" yaml:"inhibits,omitempty"`
	Guideline     string        `json:"guideline" yaml:"guideline"`
}

// Genes lists the supported genes in reporting order.
func (r *Registry) Genes() []GeneSummary {
	out := make([]GeneSummary, 0, len(domain.AllGenes()))
	for _, g := range domain.AllGenes() {
		s := GeneSummary{Gene: g, Kind: g.Kind()}
		if t, ok := r.alleleTables[g]; ok {
			s.ReferenceAllele = t.ReferenceAllele
			s.RsIDs = t.RsIDs()
			s.PhasingMethod = t.PhasingMethod
			s.Guideline = t.Guideline
			for _, def := range t.Alleles {
				s.Alleles = append(s.Alleles, def.Allele)
			}
		}
		if t, ok := r.snpTables[g]; ok {
			s.RsIDs = []string{t.RsID}
			s.Guideline = t.Guideline
		}
		out = append(out, s)
	}
	return out
}

// Drugs lists the supported drugs in reporting order.
func (r *Registry) Drugs() []DrugSummary {
	out := make([]DrugSummary, 0, len(domain.AllDrugs()))
	for _, d := range domain.AllDrugs() {
		t := r.drugTables[d]
		s := DrugSummary{
			Drug:          d,
			PrimaryGene:   t.PrimaryGene,
			ModifierGenes: t.ModifierGenes,
			Guideline:     t.Guideline,
		}
		s.Inhibits = r.inhibitors[d]
		out = append(out, s)
	}
	return out
}
