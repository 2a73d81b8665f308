package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ppiankov/graphaudit/internal/corpus"
	"github.com/ppiankov/graphaudit/internal/llm"
	"github.com/ppiankov/graphaudit/internal/model"
	"github.com/ppiankov/graphaudit/internal/nli"
	"github.com/ppiankov/graphaudit/internal/validate"
	"github.com/spf13/cobra"
)

var (
	valGraphragDir string
	valMethod      string
	valLimit       int
	valAll         bool
	valResume      bool
	valOutput      string
	valCacheDir    string
	valProvider    string
	valModel       string
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit indexed entities against their source texts",
	Long: `Validate loads the indexer's entity and text-unit tables and scores each
entity description against the source fragments it cites.

Methods:
  llm     one remote completion per entity (most accurate, costs tokens)
  nli     local entailment model, sentence by sentence (no API cost)
  hybrid  lexical overlap heuristic, LLM escalation only when uncertain

Results checkpoint periodically, so an interrupted run resumes with
--resume instead of starting over.

Example:
  graphaudit validate --graphrag-dir ./graphrag_output --limit 10
  graphaudit validate --method hybrid --all --resume
  graphaudit validate --method nli --output entities_report.csv`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&valGraphragDir, "graphrag-dir", "", "indexer project directory (default from config)")
	validateCmd.Flags().StringVar(&valMethod, "method", model.MethodHybrid, "validation method (llm, nli, hybrid)")
	validateCmd.Flags().IntVar(&valLimit, "limit", 10, "validate at most N entities")
	validateCmd.Flags().BoolVar(&valAll, "all", false, "validate every entity (overrides --limit)")
	validateCmd.Flags().BoolVar(&valResume, "resume", false, "skip entities already in the checkpoint")
	validateCmd.Flags().StringVar(&valOutput, "output", "validation_report.csv", "CSV report path")
	validateCmd.Flags().StringVar(&valCacheDir, "cache-dir", "", "checkpoint directory (default from config)")
	validateCmd.Flags().StringVar(&valProvider, "provider", "", "LLM provider override (groq, openai, anthropic, ollama)")
	validateCmd.Flags().StringVar(&valModel, "model", "", "LLM model override")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if valGraphragDir != "" {
		cfg.Paths.GraphragDir = valGraphragDir
	}
	if valCacheDir != "" {
		cfg.Paths.CacheDir = valCacheDir
	}
	if valProvider != "" {
		cfg.LLM.Provider = valProvider
	}
	if valModel != "" {
		cfg.LLM.Model = valModel
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputDir := indexOutputDir(cfg.Paths.GraphragDir)
	if verbose {
		fmt.Fprintf(os.Stderr, "Loading index output from %s\n", outputDir)
	}
	c, err := corpus.Load(outputDir)
	if err != nil {
		return fmt.Errorf("load index output: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d entities, %d text units\n", len(c.Entities), c.FragmentCount())
	}

	validator, cleanup, err := buildValidator(valMethod, c, cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer func() { _ = cleanup() }()
	}

	store, err := validate.NewCheckpointStore(cfg.Paths.CacheDir)
	if err != nil {
		return err
	}

	limit := valLimit
	if valAll {
		limit = 0
	}

	runner := validate.NewBatchRunner(validator, c.Entities, store, cfg.Validation)
	results, err := runner.Run(ctx, limit, valResume)
	if err != nil {
		return fmt.Errorf("validation run: %w", err)
	}

	generator := validate.NewReportGenerator()
	if err := generator.WriteCSV(results, valOutput); err != nil {
		return err
	}
	generator.Render(os.Stdout, generator.Summarize(results), valOutput)
	return nil
}

// indexOutputDir locates the indexer artifact tables: either directly under
// the project dir or in its output/ subdirectory, depending on how the
// project path was given.
func indexOutputDir(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, "entities.parquet")); err == nil {
		return dir
	}
	return filepath.Join(dir, "output")
}

// buildValidator constructs the scorer for the chosen method. The returned
// cleanup releases the NLI inference session when one was created.
func buildValidator(method string, c *corpus.Corpus, cfg *model.Config) (validate.Validator, func() error, error) {
	switch method {
	case model.MethodLLM:
		provider, err := newProvider(cfg, true)
		if err != nil {
			return nil, nil, err
		}
		return validate.NewLLMValidator(provider, c, cfg.Validation), nil, nil

	case model.MethodNLI:
		entail, cleanup, err := nli.NewLocalEntailment(cfg.NLI)
		if err != nil {
			return nil, nil, fmt.Errorf("load NLI model: %w", err)
		}
		return validate.NewNLIValidator(entail, c, cfg.Validation), cleanup, nil

	case model.MethodHybrid:
		// The hybrid scorer works without an LLM; it just loses the
		// escalation path.
		provider, err := newProvider(cfg, false)
		if err != nil {
			return nil, nil, err
		}
		return validate.NewHybridValidator(provider, c, cfg.Validation), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown method %q (supported: llm, nli, hybrid)", method)
	}
}

// newProvider builds the configured LLM provider. With required false a
// missing credential degrades to no provider instead of failing.
func newProvider(cfg *model.Config, required bool) (llm.Provider, error) {
	key, err := resolveAPIKey(cfg.LLM.Provider)
	if err != nil {
		if required {
			return nil, err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "LLM escalation disabled: %v\n", err)
		}
		return nil, nil
	}
	cfg.LLM.APIKey = key
	return llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
}
