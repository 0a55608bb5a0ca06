package reference

import (
	"github.com/pgx-risk-mcp-server/internal/domain"
)

var interactionTable = []domain.InteractionEntry{
	{DrugA: domain.CLOPIDOGREL, DrugB: domain.OMEPRAZOLE, Severity: domain.LEVEL_HIGH,
		Mechanism: "Omeprazole inhibits CYP2C19 and blocks clopidogrel activation."},
	{DrugA: domain.CODEINE, DrugB: domain.PAROXETINE, Severity: domain.LEVEL_HIGH,
		Mechanism: "Paroxetine inhibits CYP2D6 and blocks morphine formation from codeine."},
	{DrugA: domain.WARFARIN, DrugB: domain.FLUOROURACIL, Severity: domain.LEVEL_SEVERE,
		Mechanism: "Fluorouracil inhibits CYP2C9 and raises warfarin exposure."},
	{DrugA: domain.WARFARIN, DrugB: domain.CLOPIDOGREL, Severity: domain.LEVEL_HIGH,
		Mechanism: "Additive bleeding risk from combined anticoagulant and antiplatelet therapy."},
	{DrugA: domain.WARFARIN, DrugB: domain.SIMVASTATIN, Severity: domain.LEVEL_MODERATE,
		Mechanism: "Competition for CYP3A4 and CYP2C9 may raise INR."},
	{DrugA: domain.WARFARIN, DrugB: domain.OMEPRAZOLE, Severity: domain.LEVEL_LOW,
		Mechanism: "Minor CYP2C19 competition; monitor INR."},
	{DrugA: domain.AZATHIOPRINE, DrugB: domain.WARFARIN, Severity: domain.LEVEL_MODERATE,
		Mechanism: "Azathioprine reduces the anticoagulant effect of warfarin."},
}

// inhibitors maps drugs that inhibit a metabolizing enzyme to the gene they inhibit.
var inhibitors = map[domain.Drug]domain.Gene{
	domain.PAROXETINE:   domain.CYP2D6,
	domain.OMEPRAZOLE:   domain.CYP2C19,
	domain.FLUOROURACIL: domain.CYP2C9,
}
