package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pgx-risk-mcp-server/internal/config"
	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/internal/service"
)

// options are shared by every subcommand.
type options struct {
	configFile string
	format     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "pgxrisk",
		Short:         "Pharmacogenomic drug-risk classification from VCF files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to config.yaml (limits and logging); environment variables are used when empty")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "json", "Output format: json or yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newDiplotypeCmd(opts))
	root.AddCommand(newGenesCmd(opts))
	root.AddCommand(newDrugsCmd(opts))
	return root
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	var (
		vcfPath   string
		drugs     string
		patientID string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Assess drug risk for a patient VCF",
		Example: "  pgxrisk analyze --vcf patient.vcf --drugs codeine,warfarin\n" +
			"  pgxrisk analyze --vcf patient.vcf --drugs clopidogrel --format yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := opts.analyzer()
			if err != nil {
				return err
			}
			content, err := readVCF(vcfPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := analyzer.Validator().ValidateVCFContent(content); err != nil {
				return err
			}

			report, err := analyzer.Analyze(context.Background(), domain.AnalysisRequest{
				PatientID:  patientID,
				VCFContent: content,
				Drugs:      service.ParseDrugList(drugs),
			})
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&vcfPath, "vcf", "", "VCF file to analyze, or - for stdin")
	cmd.Flags().StringVar(&drugs, "drugs", "", "Comma-separated drug names")
	cmd.Flags().StringVar(&patientID, "patient-id", "", "Patient identifier echoed into the report")
	_ = cmd.MarkFlagRequired("vcf")
	_ = cmd.MarkFlagRequired("drugs")
	return cmd
}

func newDiplotypeCmd(opts *options) *cobra.Command {
	var (
		vcfPath string
		gene    string
	)

	cmd := &cobra.Command{
		Use:   "diplotype",
		Short: "Call the diplotype or genotype for one gene",
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := opts.analyzer()
			if err != nil {
				return err
			}
			g, err := analyzer.Validator().ParseGene(gene)
			if err != nil {
				return err
			}
			content, err := readVCF(vcfPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			parsed := analyzer.Parse(content)
			if g.Kind() == domain.SNP_GENE {
				return opts.write(cmd.OutOrStdout(), analyzer.Caller().CallSNPGene(g, parsed.Variants))
			}
			return opts.write(cmd.OutOrStdout(), analyzer.Caller().CallDiplotype(g, parsed.Variants))
		},
	}

	cmd.Flags().StringVar(&vcfPath, "vcf", "", "VCF file, or - for stdin")
	cmd.Flags().StringVar(&gene, "gene", "", "Gene symbol, e.g. CYP2C19")
	_ = cmd.MarkFlagRequired("vcf")
	_ = cmd.MarkFlagRequired("gene")
	return cmd
}

func newGenesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "genes",
		Short: "List supported genes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := reference.Default()
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), registry.Genes())
		},
	}
}

func newDrugsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "drugs",
		Short: "List supported drugs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := reference.Default()
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), registry.Drugs())
		},
	}
}

// analyzer builds the pipeline from --config when given, otherwise from PGX_* variables.
func (o *options) analyzer() (*service.Analyzer, error) {
	limits := config.LoadLiteConfig().AnalysisConfig()
	logging := domain.LoggingConfig{Level: o.logLevel, Format: "text", Output: "stderr"}

	if o.configFile != "" {
		manager, err := config.NewManagerWithFile(o.configFile)
		if err != nil {
			return nil, err
		}
		if err := manager.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		limits = manager.GetConfig().Analysis
	}

	logger := config.NewLogger(logging)
	registry, err := reference.Default()
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"max_drugs":     limits.MaxDrugsPerRequest,
		"max_vcf_bytes": limits.MaxVCFBytes,
	}).Debug("Analyzer configured")

	return service.NewAnalyzer(logger, registry, service.WithLimits(limits.MaxDrugsPerRequest, limits.MaxVCFBytes)), nil
}

func (o *options) write(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	switch strings.ToLower(o.format) {
	case "json":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "yml":
		out, err := jsonToYAML(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", o.format)
	}
}

// jsonToYAML re-encodes JSON as block-style YAML. Going through a yaml.Node keeps the
// json field names and their order.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("converting output to yaml: %w", err)
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func readVCF(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading VCF: %w", err)
	}
	return string(data), nil
}
