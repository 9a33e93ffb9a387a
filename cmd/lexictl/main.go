package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/config"
	"github.com/ericksa/lexinegotiate/internal/logging"
	"github.com/ericksa/lexinegotiate/internal/provider"
)

var (
	verbose bool
	timeout time.Duration
	logger  *zap.Logger
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lexictl",
	Short: "LexiNegotiate - contract risk analysis from the terminal",
	Long: `lexictl sends a contract to Gemini for risk analysis and prints a
negotiation memo: risk score, clause breakdown, tiered strategy and email drafts.

The API key is read from LEXI_GEMINI_API_KEY, GEMINI_API_KEY or API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Gemini.APIKey == "" {
			return fmt.Errorf("no API key: set LEXI_GEMINI_API_KEY, GEMINI_API_KEY or API_KEY")
		}

		logger, err = logging.New(cliLogConfig(verbose))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// cliLogConfig keeps the terminal quiet unless --verbose is set.
func cliLogConfig(verbose bool) config.LogConfig {
	if verbose {
		return config.LogConfig{Level: "debug"}
	}
	return config.LogConfig{Level: "warn"}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a contract and print the negotiation memo",
	Long: `Analyzes pasted text and/or a photo or PDF of a contract.

Examples:
  lexictl analyze --file lease.pdf
  lexictl analyze --text "The tenant pays a 10% fee per day of delay." --share`,
	RunE: runAnalyze,
}

var speakCmd = &cobra.Command{
	Use:   "speak",
	Short: "Read a negotiation script aloud into a WAV file",
	RunE:  runSpeak,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	analyzeCmd.Flags().String("text", "", "Contract text")
	analyzeCmd.Flags().StringP("file", "f", "", "Contract file: image, PDF or plain text")
	analyzeCmd.Flags().String("clause", "", "Print the memo of a single clause")
	analyzeCmd.Flags().Bool("share", false, "Copy the share summary to the clipboard")
	analyzeCmd.Flags().String("url", "", "Link attached to the share summary")
	analyzeCmd.Flags().Bool("raw", false, "Print Markdown without terminal rendering")

	speakCmd.Flags().String("text", "", "Script to read (required)")
	speakCmd.Flags().StringP("out", "o", "script.wav", "Output WAV file")
	speakCmd.Flags().String("voice", "", "Prebuilt voice name (default from config)")
	_ = speakCmd.MarkFlagRequired("text")

	rootCmd.AddCommand(analyzeCmd, speakCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newGemini(ctx context.Context) (*provider.Gemini, error) {
	return provider.NewGemini(ctx, provider.GeminiOptions{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		AnalysisModel:  cfg.Gemini.AnalysisModel,
		ChatModel:      cfg.Gemini.ChatModel,
		SpeechModel:    cfg.Gemini.SpeechModel,
		ThinkingBudget: cfg.Gemini.ThinkingBudget,
		RequestTimeout: cfg.Gemini.RequestTimeout,
	}, logger)
}
