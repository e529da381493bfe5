package main

import (
	"strings"

	"github.com/spf13/cobra"

	"log-query-translator/internal/dto"
)

var translateIndex string

// translateCmd runs the analysis, translation and optimization stages.
var translateCmd = &cobra.Command{
	Use:   "translate <question>",
	Short: "Translate a natural language question into an Elasticsearch query",
	Example: `  nlq translate "show me errors from payment-service in the last hour"
  nlq translate --index "app-*" --fields '{"level":"keyword","@timestamp":"date"}' "count warnings per host today"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateIndex, "index", dto.DefaultIndexPattern, "Index pattern to search")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	extra, err := additionalContext()
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}

	resp, err := svc.TranslateQuery(cmd.Context(), dto.QueryRequest{
		NaturalLanguageQuery: strings.Join(args, " "),
		IndexPattern:         translateIndex,
		AdditionalContext:    extra,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
