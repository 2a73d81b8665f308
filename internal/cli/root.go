// Package cli wires the graphaudit commands: the document pipeline (run),
// entity validation (validate), graph queries (query), and environment
// checks (setup).
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/ppiankov/graphaudit/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "graphaudit",
	Short: "GraphAudit - knowledge-graph entity validation",
	Long: `GraphAudit builds a knowledge graph from PDF documents and audits the
entities the graph indexer extracted against the source text they cite.

Graph indexers paraphrase aggressively; some entity descriptions end up
fabricated. GraphAudit scores each entity description against its cited
source fragments (via a remote LLM, a local NLI model, or a hybrid
text-overlap heuristic) and reports which descriptions the sources do
not support.

A flagged entity means "the cited sources do not support this
description", not "this fact is false".`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("graphaudit v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.graphaudit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the .env file, the config file, and GRAPHAUDIT_* env vars
func initConfig() {
	// API keys usually live in a project-local .env; absence is fine.
	_ = godotenv.Load()

	if noColor {
		color.NoColor = true
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.graphaudit")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("GRAPHAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, and environment overrides.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.Output.Verbose = verbose
	cfg.Output.NoColor = noColor
	return cfg, nil
}

// resolveAPIKey reads the credential for a provider from the environment.
// Missing keys fail here, before any batch work starts.
func resolveAPIKey(provider string) (string, error) {
	var name string
	switch provider {
	case "groq":
		name = "GROQ_API_KEY"
	case "openai":
		name = "OPENAI_API_KEY"
	case "anthropic", "claude":
		name = "ANTHROPIC_API_KEY"
	default:
		// Local or disabled providers need no credential.
		return "", nil
	}

	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", name)
	}
	return key, nil
}
