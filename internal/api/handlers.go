package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/cache"
	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/middleware"
	"github.com/pgx-risk-mcp-server/internal/service"
)

const serviceVersion = "1.0.0"

// AnalyzeRequest is the JSON body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	PatientID  string   `json:"patient_id"`
	VCFContent string   `json:"vcf_content"`
	Drugs      []string `json:"drugs"`
}

// AnalyzeResponse wraps a report with per-request metadata.
type AnalyzeResponse struct {
	RequestID   string                 `json:"request_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Cached      bool                   `json:"cached"`
	Report      *domain.AnalysisReport `json:"report"`
}

// DiplotypeRequest is the JSON body of POST /api/v1/diplotype.
type DiplotypeRequest struct {
	Gene       string `json:"gene"`
	VCFContent string `json:"vcf_content"`
}

// DiplotypeResponse carries exactly one of Diplotype or SNP depending on the gene kind.
type DiplotypeResponse struct {
	RequestID string                  `json:"request_id"`
	Gene      domain.Gene             `json:"gene"`
	Diplotype *domain.DiplotypeResult `json:"diplotype,omitempty"`
	SNP       *domain.SNPGeneResult   `json:"snp,omitempty"`
	Parse     domain.ParseSummary     `json:"parse"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"timestamp":         s.now().UTC(),
		"version":           serviceVersion,
		"reference_version": s.analyzer.Registry().Version(),
	})
}

func (s *Server) handleGenes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reference_version": s.analyzer.Registry().Version(),
		"genes":             s.analyzer.Registry().Genes(),
	})
}

func (s *Server) handleDrugs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reference_version": s.analyzer.Registry().Version(),
		"drugs":             s.analyzer.Registry().Drugs(),
	})
}

// handleAnalyze runs the full pipeline for a JSON or multipart request.
func (s *Server) handleAnalyze(c *gin.Context) {
	req, err := s.bindAnalyzeRequest(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	validator := s.analyzer.Validator()
	if err := validator.ValidateVCFContent(req.VCFContent); err != nil {
		s.respondError(c, err)
		return
	}
	drugs, err := validator.ParseDrugs(req.Drugs)
	if err != nil {
		s.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := cache.Key(s.analyzer.Registry().Version(), req.PatientID, req.VCFContent, drugs)
	if s.cache != nil {
		if report, ok := s.cache.Get(ctx, key); ok {
			s.respondReport(c, report, true)
			return
		}
	}

	names := make([]string, 0, len(drugs))
	for _, d := range drugs {
		names = append(names, string(d))
	}
	report, err := s.analyzer.Analyze(ctx, domain.AnalysisRequest{
		PatientID:  req.PatientID,
		VCFContent: req.VCFContent,
		Drugs:      names,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, report)
	}
	s.respondReport(c, report, false)
}

func (s *Server) bindAnalyzeRequest(c *gin.Context) (AnalyzeRequest, error) {
	var req AnalyzeRequest

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("vcf_file")
		if err != nil {
			if isTooLarge(err) {
				return req, err
			}
			return req, domain.NewValidationError("vcf_file", "multipart field vcf_file is required", nil)
		}
		f, err := header.Open()
		if err != nil {
			return req, err
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return req, err
		}
		req.VCFContent = string(content)
		req.PatientID = c.PostForm("patient_id")
		req.Drugs = service.ParseDrugList(c.PostForm("drugs"))
		return req, nil
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			return req, err
		}
		return req, domain.NewValidationError("body", "malformed JSON: "+err.Error(), nil)
	}
	return req, nil
}

func (s *Server) handleDiplotype(c *gin.Context) {
	var req DiplotypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			s.respondError(c, err)
			return
		}
		s.respondError(c, domain.NewValidationError("body", "malformed JSON: "+err.Error(), nil))
		return
	}

	validator := s.analyzer.Validator()
	gene, err := validator.ParseGene(req.Gene)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := validator.ValidateVCFContent(req.VCFContent); err != nil {
		s.respondError(c, err)
		return
	}

	parsed := s.analyzer.Parse(req.VCFContent)
	resp := DiplotypeResponse{
		RequestID: c.GetString(middleware.RequestIDKey),
		Gene:      gene,
		Parse: domain.ParseSummary{
			Success:  parsed.Success,
			Errors:   parsed.Errors,
			Metadata: parsed.Metadata,
		},
	}
	if gene.Kind() == domain.SNP_GENE {
		r := s.analyzer.Caller().CallSNPGene(gene, parsed.Variants)
		resp.SNP = &r
	} else {
		r := s.analyzer.Caller().CallDiplotype(gene, parsed.Variants)
		resp.Diplotype = &r
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) respondReport(c *gin.Context, report *domain.AnalysisReport, cached bool) {
	c.JSON(http.StatusOK, AnalyzeResponse{
		RequestID:   c.GetString(middleware.RequestIDKey),
		GeneratedAt: s.now().UTC(),
		Cached:      cached,
		Report:      report,
	})
}

// respondError maps pipeline errors to status codes. Internal details are logged, not
// returned.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString(middleware.RequestIDKey)

	var (
		status  int
		code    string
		message string
	)
	var ve *domain.ValidationError
	switch {
	case isTooLarge(err) || errors.Is(err, domain.ErrInputTooLarge):
		status, code, message = http.StatusRequestEntityTooLarge, domain.ErrCodePayloadTooBig, "Request body exceeds the upload limit"
	case errors.As(err, &ve):
		status, code, message = http.StatusBadRequest, domain.ErrCodeValidation, ve.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, domain.ErrCodeTimeout, "Analysis did not finish in time"
	default:
		status, code, message = http.StatusInternalServerError, domain.ErrCodeInternalServer, "Internal server error"
	}

	entry := s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     status,
		"code":       code,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": domain.NewAPIError(code, message, "", requestID)})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}
