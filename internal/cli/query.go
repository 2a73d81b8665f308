package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/graphaudit/internal/indexer"
	"github.com/spf13/cobra"
)

var (
	queryGraphragDir string
	queryMethod      string
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Query the indexed knowledge graph",
	Long: `Query runs one question against the indexed graph through the external
indexer's query interface.

Methods:
  global  community-level summarization across the whole graph
  local   entity-neighborhood answering for specific questions

Example:
  graphaudit query "What organizations are mentioned?"
  graphaudit query --method local "Who founded ACME Corp?"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryGraphragDir, "graphrag-dir", "", "indexer project directory (default from config)")
	queryCmd.Flags().StringVar(&queryMethod, "method", "global", "query method (global, local)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if queryGraphragDir != "" {
		cfg.Paths.GraphragDir = queryGraphragDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := indexer.NewRunner(cfg.Paths.GraphragDir)
	if runner.NeedsInit() {
		return fmt.Errorf("no index found under %s, run the pipeline first", cfg.Paths.GraphragDir)
	}

	answer, err := runner.Query(ctx, args[0], queryMethod)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
