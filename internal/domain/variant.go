package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Annotation is one key=value pair of a variant's INFO column.
type Annotation struct {
	Key   string
	Value string
}

// Annotations is the ordered INFO map of a variant record. Order follows the input.
type Annotations []Annotation

// Get returns the value for key and whether it was present.
func (a Annotations) Get(key string) (string, bool) {
	for _, kv := range a {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the annotations as a JSON object preserving input order.
func (a Annotations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
func (a *Annotations) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok != json.Delim('{') {
		return fmt.Errorf("annotations: expected object, got %v", tok)
	}

	out := Annotations{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("annotations: expected key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("annotations: value for %q: %w", key, err)
		}
		out = append(out, Annotation{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}

// VariantRecord is one data line of a variant file. Records are created by the parser
// and never mutated afterwards.
type VariantRecord struct {
	Chromosome string      `json:"chromosome"`
	Position   int64       `json:"position"`
	ID         string      `json:"id"`
	Reference  string      `json:"reference"`
	Alternate  string      `json:"alternate"`
	Quality    string      `json:"quality"`
	Filter     string      `json:"filter"`
	Info       Annotations `json:"info"`
	Genotype   string      `json:"genotype,omitempty"`
	Gene       string      `json:"gene,omitempty"`
	StarAllele string      `json:"star_allele,omitempty"`
	RsID       string      `json:"rsid,omitempty"`
	LineNumber int         `json:"line_number"`
}

// HasRsID reports whether the record resolved a reference-SNP id.
func (v VariantRecord) HasRsID() bool {
	return strings.HasPrefix(v.RsID, "rs")
}

// VCFMetadata summarizes the preamble and line accounting of a parsed file.
type VCFMetadata struct {
	FileFormat   string   `json:"fileformat,omitempty"`
	Reference    string   `json:"reference,omitempty"`
	Contigs      []string `json:"contigs,omitempty"`
	SampleIDs    []string `json:"sample_ids,omitempty"`
	TotalLines   int      `json:"total_lines"`
	ParsedLines  int      `json:"parsed_lines"`
	SkippedLines int      `json:"skipped_lines"`
}

// ParseResult carries every record that parsed plus the diagnostics for lines that did
// not. Success is true when there were no errors or at least one record was produced;
// callers must check Errors even on success.
type ParseResult struct {
	Variants []VariantRecord `json:"variants"`
	Errors   []string        `json:"errors"`
	Success  bool            `json:"success"`
	Metadata VCFMetadata     `json:"metadata"`
}
