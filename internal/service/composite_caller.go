package service

import (
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
)

// Dose strategy bands for the composite dose adjustment percentage.
const (
	StrategyMajorReduction    = "major dose reduction"
	StrategyModerateReduction = "moderate dose reduction"
	StrategyMinorReduction    = "minor dose reduction"
	StrategyStandard          = "standard dosing"
	StrategyInsufficientData  = "insufficient data"

	maxDoseAdjustment = 80
)

// CompositeCaller combines a star-allele gene call with its two SNP modifier genes into
// one dosing strategy and composite risk.
type CompositeCaller struct {
	logger   *logrus.Logger
	registry *reference.Registry
	caller   *DiplotypeCaller
}

// NewCompositeCaller creates a new composite caller
func NewCompositeCaller(logger *logrus.Logger, registry *reference.Registry, caller *DiplotypeCaller) *CompositeCaller {
	return &CompositeCaller{
		logger:   logger,
		registry: registry,
		caller:   caller,
	}
}

// Call runs the primary and modifier gene calls for a composite drug. callPrimary
// supplies the star-allele gene call, letting callers reuse one already made for the
// same variants; nil calls the gene directly. The second return is false when drug
// is not a composite drug.
func (c *CompositeCaller) Call(drug domain.Drug, variants []domain.VariantRecord, callPrimary func(domain.Gene) domain.DiplotypeResult) (domain.CompositeResult, bool) {
	table, ok := c.registry.DrugTable(drug)
	if !ok || !table.IsComposite() || len(table.ModifierGenes) != 2 {
		return domain.CompositeResult{}, false
	}
	if callPrimary == nil {
		callPrimary = func(g domain.Gene) domain.DiplotypeResult {
			return c.caller.CallDiplotype(g, variants)
		}
	}

	primary := callPrimary(table.PrimaryGene)
	sensitivity := c.caller.CallSNPGene(table.ModifierGenes[0], variants)
	efficiency := c.caller.CallSNPGene(table.ModifierGenes[1], variants)

	return c.combine(drug, primary, sensitivity, efficiency), true
}

// combine computes the dose adjustment and composite risk from finished gene calls.
// A modifier marker that was not detected, or whose genotype could not be interpreted,
// makes the result INSUFFICIENT_DATA instead of being read as wild type.
func (c *CompositeCaller) combine(drug domain.Drug, primary domain.DiplotypeResult, sensitivity, efficiency domain.SNPGeneResult) domain.CompositeResult {
	result := domain.CompositeResult{
		Drug:        drug,
		Primary:     primary,
		Sensitivity: sensitivity,
		Efficiency:  efficiency,
		Flags: domain.CompositeFlags{
			PoorMetabolizer:         primary.Phenotype == domain.POOR_METABOLIZER,
			IntermediateMetabolizer: primary.Phenotype == domain.INTERMEDIATE_METABOLIZER,
			Sensitized:              sensitivity.Zygosity.IsVariant(),
		},
	}

	for _, snp := range []domain.SNPGeneResult{sensitivity, efficiency} {
		if !snp.Detected || snp.Zygosity == domain.ZYGOSITY_UNKNOWN {
			result.MissingMarkers = append(result.MissingMarkers, snp.RsID)
		}
	}
	if !primary.Phenotype.IsKnown() {
		result.MissingMarkers = append(result.MissingMarkers, string(primary.Gene))
	}

	if len(result.MissingMarkers) > 0 {
		result.Risk = domain.LEVEL_INSUFFICIENT_DATA
		result.DoseStrategy = StrategyInsufficientData
		c.logger.WithFields(logrus.Fields{
			"drug":    drug,
			"missing": result.MissingMarkers,
		}).Debug("Composite call lacks required markers")
		return result
	}

	result.DoseAdjustmentPercent = doseAdjustment(primary.ActivityScore, sensitivity.Zygosity, efficiency.Zygosity)
	result.DoseStrategy = doseStrategy(result.DoseAdjustmentPercent)
	result.Risk = compositeRisk(result.Flags)

	c.logger.WithFields(logrus.Fields{
		"drug":            drug,
		"diplotype":       primary.Diplotype,
		"dose_adjustment": result.DoseAdjustmentPercent,
		"risk":            result.Risk,
	}).Debug("Combined composite call")

	return result
}

func doseAdjustment(primaryScore float64, sensitivity, efficiency domain.Zygosity) int {
	pct := 0
	switch {
	case primaryScore <= 0.5:
		pct = 60
	case primaryScore <= 1.5:
		pct = 25
	}

	switch sensitivity {
	case domain.HOMOZYGOUS:
		pct += 50
	case domain.HETEROZYGOUS:
		pct += 25
	}

	switch efficiency {
	case domain.HOMOZYGOUS:
		pct -= 10
	case domain.HETEROZYGOUS:
		pct -= 5
	}

	if pct < 0 {
		return 0
	}
	if pct > maxDoseAdjustment {
		return maxDoseAdjustment
	}
	return pct
}

func doseStrategy(pct int) string {
	switch {
	case pct >= 50:
		return StrategyMajorReduction
	case pct >= 25:
		return StrategyModerateReduction
	case pct > 0:
		return StrategyMinorReduction
	default:
		return StrategyStandard
	}
}

func compositeRisk(f domain.CompositeFlags) domain.RiskLevel {
	switch {
	case f.PoorMetabolizer && f.Sensitized:
		return domain.LEVEL_SEVERE
	case f.PoorMetabolizer, f.IntermediateMetabolizer && f.Sensitized:
		return domain.LEVEL_HIGH
	case f.IntermediateMetabolizer, f.Sensitized:
		return domain.LEVEL_MODERATE
	default:
		return domain.LEVEL_LOW
	}
}
