package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func testTable(t *testing.T, bands []ScoreBand) *GeneAlleleTable {
	t.Helper()
	table, err := NewGeneAlleleTable(CYP2D6, "*1", []AlleleDefinition{
		{Allele: "*1", Function: NORMAL_FUNCTION, ActivityScore: 1.0},
		{Allele: "*4", RsIDs: []string{"rs3892097"}, Function: NO_FUNCTION, ActivityScore: 0},
		{Allele: "*10", RsIDs: []string{"rs1065852"}, Function: DECREASED_FUNCTION, ActivityScore: 0.25},
	}, bands, "test guideline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func TestNewGeneAlleleTable(t *testing.T) {
	table := testTable(t, nil)

	if allele, ok := table.AlleleForRsID("rs3892097"); !ok || allele != "*4" {
		t.Errorf("Expected *4, got %s (%v)", allele, ok)
	}
	if _, ok := table.AlleleForRsID("rs0"); ok {
		t.Error("Expected unknown rsID to miss")
	}
	if table.PhasingMethod != PhasingHeuristic {
		t.Errorf("Expected phasing method %s, got %s", PhasingHeuristic, table.PhasingMethod)
	}
	if got := table.RsIDs(); len(got) != 2 || got[0] != "rs1065852" {
		t.Errorf("Expected sorted rsIDs, got %v", got)
	}
	if table.ActivityScore("*99") != 1.0 {
		t.Error("Expected unlisted allele to score 1.0")
	}

	// every rsID in the reverse lookup belongs to a definition
	for _, rs := range table.RsIDs() {
		allele, _ := table.AlleleForRsID(rs)
		def, ok := table.Definition(allele)
		if !ok {
			t.Fatalf("rsID %s maps to undefined allele %s", rs, allele)
		}
		found := false
		for _, id := range def.RsIDs {
			found = found || id == rs
		}
		if !found {
			t.Errorf("rsID %s not listed on allele %s", rs, allele)
		}
	}
}

func TestNewGeneAlleleTable_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		gene    Gene
		ref     string
		alleles []AlleleDefinition
	}{
		{
			name:    "SNP gene",
			gene:    VKORC1,
			ref:     "*1",
			alleles: []AlleleDefinition{{Allele: "*1", Function: NORMAL_FUNCTION, ActivityScore: 1}},
		},
		{
			name:    "missing reference allele",
			gene:    TPMT,
			ref:     "*1",
			alleles: []AlleleDefinition{{Allele: "*2", Function: NO_FUNCTION}},
		},
		{
			name: "duplicate rsID",
			gene: TPMT,
			ref:  "*1",
			alleles: []AlleleDefinition{
				{Allele: "*1", Function: NORMAL_FUNCTION, ActivityScore: 1},
				{Allele: "*2", RsIDs: []string{"rs1"}, Function: NO_FUNCTION},
				{Allele: "*3", RsIDs: []string{"rs1"}, Function: NO_FUNCTION},
			},
		},
		{
			name: "bad function class",
			gene: TPMT,
			ref:  "*1",
			alleles: []AlleleDefinition{
				{Allele: "*1", Function: "unknown", ActivityScore: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeneAlleleTable(tt.gene, tt.ref, tt.alleles, nil, "")
			if !errors.Is(err, ErrInvalidReference) {
				t.Errorf("Expected ErrInvalidReference, got %v", err)
			}
		})
	}
}

func TestPhenotypeForScore_DefaultLadder(t *testing.T) {
	table := testTable(t, nil)

	tests := []struct {
		score    float64
		expected Phenotype
	}{
		{0, POOR_METABOLIZER},
		{0.5, INTERMEDIATE_METABOLIZER},
		{1.0, NORMAL_METABOLIZER},
		{2.0, NORMAL_METABOLIZER},
		{2.5, ULTRARAPID_METABOLIZER},
	}

	for _, tt := range tests {
		if got := table.PhenotypeForScore(tt.score); got != tt.expected {
			t.Errorf("PhenotypeForScore(%v) = %s, expected %s", tt.score, got, tt.expected)
		}
	}
}

func TestPhenotypeForScore_GeneBands(t *testing.T) {
	table := testTable(t, []ScoreBand{
		{UpTo: 0, Inclusive: true, Phenotype: POOR_METABOLIZER},
		{UpTo: 1.25, Phenotype: INTERMEDIATE_METABOLIZER},
		{UpTo: 2.25, Inclusive: true, Phenotype: NORMAL_METABOLIZER},
		{UpTo: math.Inf(1), Inclusive: true, Phenotype: ULTRARAPID_METABOLIZER},
	})

	if got := table.PhenotypeForScore(1.0); got != INTERMEDIATE_METABOLIZER {
		t.Errorf("Expected Intermediate for 1.0, got %s", got)
	}
	if got := table.PhenotypeForScore(1.25); got != NORMAL_METABOLIZER {
		t.Errorf("Expected Normal for 1.25, got %s", got)
	}
	if got := table.PhenotypeForScore(3); got != ULTRARAPID_METABOLIZER {
		t.Errorf("Expected Ultrarapid for 3, got %s", got)
	}
}

func TestDrugRuleTableLookup(t *testing.T) {
	table := DrugRuleTable{
		Drug:        CODEINE,
		PrimaryGene: CYP2D6,
		Rules: map[Phenotype]RiskRule{
			NORMAL_METABOLIZER: {Label: SAFE},
			POOR_METABOLIZER:   {Label: INEFFECTIVE},
		},
	}

	rule, fellBack, ok := table.Lookup(POOR_METABOLIZER)
	if !ok || fellBack || rule.Label != INEFFECTIVE {
		t.Errorf("Expected direct INEFFECTIVE, got %s fellBack=%v ok=%v", rule.Label, fellBack, ok)
	}

	rule, fellBack, ok = table.Lookup(RAPID_METABOLIZER)
	if !ok || !fellBack || rule.Label != SAFE {
		t.Errorf("Expected fallback SAFE, got %s fellBack=%v ok=%v", rule.Label, fellBack, ok)
	}

	if _, _, ok := (DrugRuleTable{}).Lookup(POOR_METABOLIZER); ok {
		t.Error("Expected empty table to miss")
	}
}

func TestInteractionEntryInvolves(t *testing.T) {
	e := InteractionEntry{DrugA: CLOPIDOGREL, DrugB: OMEPRAZOLE}
	if !e.Involves(OMEPRAZOLE, CLOPIDOGREL) || !e.Involves(CLOPIDOGREL, OMEPRAZOLE) {
		t.Error("Expected pair to match in either order")
	}
	if e.Involves(CLOPIDOGREL, WARFARIN) {
		t.Error("Expected unrelated pair not to match")
	}
}

func TestAnnotationsOrderedJSON(t *testing.T) {
	info := Annotations{{Key: "GENE", Value: "CYP2D6"}, {Key: "AF", Value: "0.2"}, {Key: "DB", Value: "true"}}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"GENE":"CYP2D6","AF":"0.2","DB":"true"}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	if v, ok := info.Get("AF"); !ok || v != "0.2" {
		t.Errorf("Expected AF=0.2, got %s", v)
	}
	if _, ok := info.Get("RS"); ok {
		t.Error("Expected RS to be absent")
	}
}

func TestAnnotationsUnmarshalKeepsOrder(t *testing.T) {
	var info Annotations
	if err := json.Unmarshal([]byte(`{"GENE":"CYP2D6","AF":"0.2","DB":"true"}`), &info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Annotations{{Key: "GENE", Value: "CYP2D6"}, {Key: "AF", Value: "0.2"}, {Key: "DB", Value: "true"}}
	if len(info) != len(want) {
		t.Fatalf("Expected %d annotations, got %d", len(want), len(info))
	}
	for i := range want {
		if info[i] != want[i] {
			t.Errorf("annotation %d: expected %v, got %v", i, want[i], info[i])
		}
	}

	if err := json.Unmarshal([]byte(`["GENE"]`), &info); err == nil {
		t.Error("Expected error for non-object input")
	}
}
