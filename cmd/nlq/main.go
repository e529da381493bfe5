package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"log-query-translator/config"
	"log-query-translator/internal/dto"
	"log-query-translator/internal/llm"
	"log-query-translator/internal/pipeline"
	"log-query-translator/internal/prompt"
	"log-query-translator/internal/service"
)

var (
	verbose bool
	timeout time.Duration
	fields  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nlq",
	Short: "Translate log questions into Elasticsearch queries from the terminal",
	Long: `nlq runs the same translation and repair pipelines as the HTTP service,
in-process, and prints the JSON response.

Model settings come from the environment or .env (LLM_PROVIDER, LLM_MODEL,
LLM_API_KEY, LLM_BASE_URL).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.DefaultContextLogger = &log.Logger
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per model call timeout (default: LLM_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&fields, "fields", "", `Index fields as JSON, e.g. '{"level":"keyword"}' or '["level","message"]'`)

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(fixCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newService builds the pipelines without the HTTP service's optional
// infrastructure.
func newService() (service.TranslationService, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		cfg.LLM.Timeout = timeout
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	// Field discovery stays off; use --fields instead.
	cfg.Fields.AutoDiscover = false

	model, err := llm.NewModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	invoker := llm.NewInvoker(model, cfg.LLM.Timeout)
	prompts := prompt.NewRegistry()

	return service.NewTranslationService(cfg,
		pipeline.NewTranslator(invoker, prompts),
		pipeline.NewRepairer(invoker, prompts),
		nil, nil), nil
}

// additionalContext seeds additional_context with --fields when given.
func additionalContext() (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if fields == "" {
		return out, nil
	}
	if !json.Valid([]byte(fields)) {
		return nil, fmt.Errorf("--fields is not valid JSON")
	}
	out[dto.ContextIndicesFields] = json.RawMessage(fields)
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
