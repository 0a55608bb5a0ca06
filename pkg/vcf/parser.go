// Package vcf reads tab-delimited variant call files into domain.VariantRecord values.
// Malformed data lines are collected as diagnostics; only a missing header row or
// missing required columns abort parsing.
package vcf

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

const (
	// HeaderToken starts the mandatory column header row.
	HeaderToken = "#CHROM"

	metaPrefix    = "##"
	fieldSep      = "\t"
	minDataFields = 8
	maxLineBytes  = 1 << 20
)

// Annotation keys copied onto the record when present.
const (
	InfoGene     = "GENE"
	InfoStar     = "STAR"
	InfoRsID     = "RS"
	InfoGenotype = "GT"
)

// RequiredColumns must all appear in the header row.
var RequiredColumns = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

// Parser converts raw variant file text into records. It holds no state between calls.
type Parser struct{}

// NewParser creates a new variant file parser
func NewParser() *Parser {
	return &Parser{}
}

type header struct {
	columns   map[string]int
	formatIdx int
	sampleIdx int
}

// Parse reads content and returns every record that parsed together with diagnostics.
func (p *Parser) Parse(content string) *domain.ParseResult {
	result := &domain.ParseResult{
		Variants: []domain.VariantRecord{},
		Errors:   []string{},
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var hdr *header
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.Metadata.TotalLines++

		if hdr == nil {
			switch {
			case strings.HasPrefix(line, metaPrefix):
				parseMetaLine(line, &result.Metadata)
			case strings.HasPrefix(line, HeaderToken):
				h, err := parseHeader(line)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
					return finish(result)
				}
				hdr = h
				result.Metadata.SampleIDs = sampleIDs(line, h)
			default:
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: data before %s header row", lineNo, HeaderToken))
				result.Metadata.SkippedLines++
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		record, err := parseDataLine(line, lineNo, hdr)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			result.Metadata.SkippedLines++
			continue
		}
		result.Variants = append(result.Variants, record)
		result.Metadata.ParsedLines++
	}

	if err := scanner.Err(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: read error: %v", lineNo+1, err))
	}

	if hdr == nil {
		result.Variants = []domain.VariantRecord{}
		result.Errors = append(result.Errors, fmt.Sprintf("missing %s header row", HeaderToken))
		result.Success = false
		return result
	}

	return finish(result)
}

func finish(result *domain.ParseResult) *domain.ParseResult {
	result.Success = len(result.Errors) == 0 || len(result.Variants) > 0
	return result
}

func parseMetaLine(line string, meta *domain.VCFMetadata) {
	body := strings.TrimPrefix(line, metaPrefix)
	key, value, ok := strings.Cut(body, "=")
	if !ok {
		return
	}
	switch key {
	case "fileformat":
		meta.FileFormat = value
	case "reference":
		meta.Reference = value
	case "contig":
		if id := structuredID(value); id != "" {
			meta.Contigs = append(meta.Contigs, id)
		}
	}
}

// structuredID extracts ID from a <ID=...,key=value> meta value.
func structuredID(value string) string {
	value = strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">")
	for _, part := range strings.Split(value, ",") {
		if k, v, ok := strings.Cut(part, "="); ok && k == "ID" {
			return v
		}
	}
	return ""
}

func parseHeader(line string) (*header, error) {
	fields := strings.Split(line, fieldSep)
	h := &header{
		columns:   make(map[string]int, len(fields)),
		formatIdx: -1,
		sampleIdx: -1,
	}
	for i, name := range fields {
		name = strings.TrimPrefix(strings.TrimSpace(name), "#")
		if _, seen := h.columns[name]; !seen {
			h.columns[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := h.columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header row missing required columns: %s", strings.Join(missing, ", "))
	}

	if idx, ok := h.columns["FORMAT"]; ok && idx+1 < len(fields) {
		h.formatIdx = idx
		h.sampleIdx = idx + 1
	}
	return h, nil
}

func sampleIDs(line string, h *header) []string {
	if h.sampleIdx < 0 {
		return nil
	}
	fields := strings.Split(line, fieldSep)
	ids := make([]string, 0, len(fields)-h.sampleIdx)
	for _, f := range fields[h.sampleIdx:] {
		ids = append(ids, strings.TrimSpace(f))
	}
	return ids
}

func parseDataLine(line string, lineNo int, h *header) (domain.VariantRecord, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) < minDataFields {
		return domain.VariantRecord{}, fmt.Errorf("expected at least %d fields, got %d", minDataFields, len(fields))
	}

	get := func(col string) string {
		idx := h.columns[col]
		if idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	pos, err := strconv.ParseInt(get("POS"), 10, 64)
	if err != nil || pos < 0 {
		return domain.VariantRecord{}, fmt.Errorf("invalid position %q", get("POS"))
	}

	record := domain.VariantRecord{
		Chromosome: get("CHROM"),
		Position:   pos,
		ID:         get("ID"),
		Reference:  get("REF"),
		Alternate:  get("ALT"),
		Quality:    get("QUAL"),
		Filter:     get("FILTER"),
		Info:       ParseInfo(get("INFO")),
		LineNumber: lineNo,
	}

	record.Genotype = sampleGenotype(fields, h)
	if record.Genotype == "" {
		record.Genotype, _ = record.Info.Get(InfoGenotype)
	}

	record.Gene, _ = record.Info.Get(InfoGene)
	record.StarAllele, _ = record.Info.Get(InfoStar)
	record.RsID, _ = record.Info.Get(InfoRsID)
	if record.RsID == "" && strings.HasPrefix(record.ID, "rs") {
		record.RsID = record.ID
	}

	return record, nil
}

func sampleGenotype(fields []string, h *header) string {
	if h.formatIdx < 0 || h.sampleIdx >= len(fields) {
		return ""
	}
	keys := strings.Split(strings.TrimSpace(fields[h.formatIdx]), ":")
	values := strings.Split(strings.TrimSpace(fields[h.sampleIdx]), ":")
	for i, k := range keys {
		if k == InfoGenotype && i < len(values) {
			return values[i]
		}
	}
	return ""
}

// ParseInfo splits an INFO column into ordered key=value pairs. Bare flags read "true".
func ParseInfo(info string) domain.Annotations {
	annotations := domain.Annotations{}
	if info == "" || info == "." {
		return annotations
	}
	for _, part := range strings.Split(info, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			value = "true"
		}
		annotations = append(annotations, domain.Annotation{Key: key, Value: value})
	}
	return annotations
}
