package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ppiankov/graphaudit/internal/cache"
	"github.com/ppiankov/graphaudit/internal/indexer"
	"github.com/ppiankov/graphaudit/internal/ocr"
	"github.com/ppiankov/graphaudit/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runInputDir     string
	runGraphragDir  string
	runWorkers      int
	runNoClean      bool
	runNoCache      bool
	runFastSettings string
	runIndexerCmd   []string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the document pipeline: extract, clean, index",
	Long: `Run pushes every PDF in the input directory through text extraction
(with OCR fallback for scanned documents), cleans the text, and feeds it
to the external graph indexer.

Extraction results are cached by document content hash, so re-running the
pipeline skips unchanged documents. The run record is saved as
pipeline_results.json in the processed text directory.

Example:
  graphaudit run --input ./input --graphrag-dir ./graphrag_output
  graphaudit run --workers 4 --no-clean
  graphaudit run --indexer-cmd python3 --indexer-cmd -m --indexer-cmd graphrag`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInputDir, "input", "", "input PDF directory (default from config)")
	runCmd.Flags().StringVar(&runGraphragDir, "graphrag-dir", "", "indexer project directory (default from config)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "extraction workers (default from config)")
	runCmd.Flags().BoolVar(&runNoClean, "no-clean", false, "skip text cleanup")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "disable the extraction cache")
	runCmd.Flags().StringVar(&runFastSettings, "fast-settings", "settings_fast.yaml", "pre-tuned indexer settings file (empty to disable)")
	runCmd.Flags().StringArrayVar(&runIndexerCmd, "indexer-cmd", nil, "indexer command override, one token per flag")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runInputDir != "" {
		cfg.Paths.InputPDFDir = runInputDir
	}
	if runGraphragDir != "" {
		cfg.Paths.GraphragDir = runGraphragDir
	}
	if runWorkers > 0 {
		cfg.Concurrency.ExtractWorkers = runWorkers
	}
	if runNoClean {
		cfg.OCR.CleanText = false
	}
	if runNoCache {
		cfg.Cache.Enabled = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extractionCache cache.Cache
	if cfg.Cache.Enabled {
		extractionCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}
	client := ocr.NewClient(cfg.OCR, extractionCache)

	runner := indexer.NewRunner(cfg.Paths.GraphragDir)
	if len(runIndexerCmd) > 0 {
		runner.SetCommand(runIndexerCmd...)
	}

	orchestrator := pipeline.NewOrchestrator(cfg, client, runner)
	orchestrator.SetFastSettings(runFastSettings)

	result, runErr := orchestrator.Run(ctx)

	// The run record is written for failed runs too; that is where the
	// stage log lives.
	resultPath := filepath.Join(cfg.Paths.ProcessedTextDir, "pipeline_results.json")
	if result != nil {
		if err := result.Save(resultPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save run record: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Run record saved to %s\n", resultPath)
		}
	}

	return runErr
}
