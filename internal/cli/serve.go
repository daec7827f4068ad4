package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryan-2511/lexiclarus/internal/model"
	"github.com/aryan-2511/lexiclarus/internal/pipeline"
	"github.com/aryan-2511/lexiclarus/internal/server"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

var (
	addr           string
	requestTimeout time.Duration
	simplifierURL  string
	batchSize      int
	maxConcurrent  int64
	maxAttempts    int
	initialBackoff time.Duration
	tokenBudget    int
	llmProvider    string
	llmModel       string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis server",
	Long: `Serve starts the LexiClarus HTTP API:

  POST /analyze-document   multipart upload (PDF, DOCX, HTML, TXT)
  POST /ask-question       {"question": ..., "context": ...}
  GET  /                   health check

Example:
  lexiclarus serve --addr :8000 --simplifier-url https://example.hf.space
  lexiclarus serve --llm-provider openai --llm-model gpt-4o-mini`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	serveCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 5*time.Minute, "overall deadline per analysis request")

	serveCmd.Flags().StringVar(&simplifierURL, "simplifier-url", "", "base URL of the remote simplification endpoint")
	serveCmd.Flags().IntVar(&batchSize, "batch-size", 5, "clauses per simplification batch")
	serveCmd.Flags().Int64Var(&maxConcurrent, "max-concurrent", 5, "max in-flight simplifier calls")
	serveCmd.Flags().IntVar(&maxAttempts, "max-attempts", 3, "attempts per simplifier call")
	serveCmd.Flags().DurationVar(&initialBackoff, "backoff", time.Second, "initial retry backoff (doubles per attempt)")

	serveCmd.Flags().IntVar(&tokenBudget, "token-budget", 512, "token budget per segmentation chunk")

	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "generative provider (openai, anthropic, ollama; empty = heuristics)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "generative model name")

	// Bind flags to viper so env vars and config file can override
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.request_timeout", serveCmd.Flags().Lookup("request-timeout"))
	_ = viper.BindPFlag("simplifier.base_url", serveCmd.Flags().Lookup("simplifier-url"))
	_ = viper.BindPFlag("simplifier.batch_size", serveCmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("simplifier.max_concurrent", serveCmd.Flags().Lookup("max-concurrent"))
	_ = viper.BindPFlag("simplifier.max_attempts", serveCmd.Flags().Lookup("max-attempts"))
	_ = viper.BindPFlag("simplifier.initial_backoff", serveCmd.Flags().Lookup("backoff"))
	_ = viper.BindPFlag("chunking.token_budget", serveCmd.Flags().Lookup("token-budget"))
	_ = viper.BindPFlag("llm.provider", serveCmd.Flags().Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", serveCmd.Flags().Lookup("llm-model"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	logger.SetDefault(log)

	if cfg.Simplifier.BaseURL == "" {
		return fmt.Errorf("simplifier base URL is required (--simplifier-url or LEXICLARUS_SIMPLIFIER_BASE_URL)")
	}

	analyzer := pipeline.NewAnalyzer(cfg, log)
	srv := server.New(cfg, analyzer, log)
	return srv.Run()
}

// loadConfig merges defaults, config file, env vars and flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Provider API keys come from the conventional env vars when not set
	// explicitly.
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.Simplifier.Token == "" {
		cfg.Simplifier.Token = os.Getenv("HF_SPACE_TOKEN")
	}

	return cfg, nil
}
