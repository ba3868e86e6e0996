package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/jobfit/internal/fetch"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/pipeline"
	"github.com/jonathan/jobfit/internal/profile"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate tailored documents from a profile file and a job description or posting URL",
	Long: "Tailor a candidate profile JSON file to a job description and write the rendered PDFs. " +
		"Runs through the same usage gate as the server, against the configured usage store.",
	RunE: runGenerate,
}

var (
	genProfilePath string
	genJobPath     string
	genJobURL      string
	genNoBrowser   bool
	genKinds       []string
	genOutDir      string
	genAccount     string
	genTier        string
	genVerbose     bool
	genWriteMarkup bool
)

func init() {
	generateCmd.Flags().StringVarP(&genProfilePath, "profile", "p", "", "Path to candidate profile JSON (required)")
	generateCmd.Flags().StringVarP(&genJobPath, "job", "j", "", "Path to job description text, or - for stdin")
	generateCmd.Flags().StringVar(&genJobURL, "job-url", "", "URL of a job posting to fetch instead of --job")
	generateCmd.Flags().BoolVar(&genNoBrowser, "no-browser", false, "Do not render short job pages in headless Chrome")
	generateCmd.Flags().StringSliceVarP(&genKinds, "kind", "k", []string{string(types.DocumentResume)}, "Documents to produce: resume, cover-letter")
	generateCmd.Flags().StringVarP(&genOutDir, "out", "o", ".", "Output directory")
	generateCmd.Flags().StringVar(&genAccount, "account", "local", "Account the generation is counted against")
	generateCmd.Flags().StringVar(&genTier, "tier", "", "Plan tier for the account (defaults to the configured default tier)")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print job details, usage and tailoring summaries")
	generateCmd.Flags().BoolVar(&genWriteMarkup, "markup", false, "Also write the HTML markup next to each PDF")

	_ = generateCmd.MarkFlagRequired("profile")
	generateCmd.MarkFlagsOneRequired("job", "job-url")
	generateCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	kinds, err := parseKinds(genKinds)
	if err != nil {
		return err
	}

	candidate, err := profile.LoadFile(genProfilePath)
	if err != nil {
		return err
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var jobText string
	if genJobURL != "" {
		var browser fetch.Browser
		if !genNoBrowser {
			browser = &fetch.ChromeBrowser{ExecPath: cfg.ChromePath, Timeout: time.Duration(cfg.RenderTimeout)}
		}
		jobText, err = fetch.NewJobFetcher(nil, browser, logger).JobDescription(ctx, genJobURL)
	} else {
		jobText, err = readJob(genJobPath, cmd.InOrStdin())
	}
	if err != nil {
		return err
	}

	profiles := profile.NewMemoryStore()
	if err := profiles.Save(ctx, genAccount, candidate); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger, profiles)
	if err != nil {
		return err
	}
	defer a.Close()
	if genTier != "" {
		a.tiers.Set(genAccount, genTier)
	}

	gen := a.generator(func(event pipeline.ProgressEvent) {
		logger.WithField("stage", event.Stage).Info(event.Message)
	})

	result, err := gen.Generate(ctx, genAccount, types.GenerateRequest{
		JobDescription: jobText,
		DocumentKinds:  kinds,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	if result.QuotaExceeded {
		printer.PrintUsage(result.Usage)
		return fmt.Errorf("monthly quota of %d generations reached for tier %s", result.Usage.MonthlyLimit, result.Usage.Tier)
	}
	if genVerbose {
		printer.PrintJobDetails(result.Job)
		printer.PrintUsage(result.Usage)
		printer.PrintTailoring(result.Tailored)
	}

	written, err := writeDocuments(genOutDir, result.Documents, genWriteMarkup)
	if err != nil {
		return err
	}
	for i, doc := range result.Documents {
		printer.PrintDocument(doc.Kind, written[i], doc.PageCount, len(doc.Content))
	}
	return nil
}

// parseKinds validates --kind values.
func parseKinds(values []string) ([]types.DocumentKind, error) {
	kinds := make([]types.DocumentKind, 0, len(values))
	for _, v := range values {
		kind := types.DocumentKind(strings.TrimSpace(strings.ToLower(v)))
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown document kind %q (want resume or cover-letter)", v)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// readJob reads the job description from path, or from stdin when path is "-".
func readJob(path string, stdin io.Reader) (string, error) {
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
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return string(data), nil
}

// writeDocuments writes each document's PDF (and optionally its markup) into
// dir and returns the PDF paths.
func writeDocuments(dir string, docs []pipeline.Document, withMarkup bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		path := filepath.Join(dir, doc.Filename)
		if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if withMarkup {
			markupPath := strings.TrimSuffix(path, ".pdf") + ".html"
			if err := os.WriteFile(markupPath, []byte(doc.Markup), 0o644); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", markupPath, err)
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}
