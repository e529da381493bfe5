package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"log-query-translator/internal/dto"
)

var (
	fixQuery string
	fixError string
)

// fixCmd repairs a query using the error Elasticsearch returned for it.
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair an Elasticsearch query that failed",
	Long: `Sends the failing query and its error through the repair stage. When the
repaired query cannot be read, a safe match_all query with size 1 is printed.`,
	Example: `  nlq fix --query '{"query":{"term":{"level":"ERROR"}}}' --error "field [level] is not aggregatable"`,
	Args:    cobra.NoArgs,
	RunE:    runFix,
}

func init() {
	fixCmd.Flags().StringVar(&fixQuery, "query", "", "Failing query (JSON text)")
	fixCmd.Flags().StringVar(&fixError, "error", "", "Error message returned for the query")
	_ = fixCmd.MarkFlagRequired("query")
	_ = fixCmd.MarkFlagRequired("error")
}

func runFix(cmd *cobra.Command, args []string) error {
	extra, err := additionalContext()
	if err != nil {
		return err
	}
	queryText, err := json.Marshal(fixQuery)
	if err != nil {
		return err
	}
	errorText, err := json.Marshal(fixError)
	if err != nil {
		return err
	}
	extra[dto.ContextDslQuery] = queryText
	extra[dto.ContextErrorMessage] = errorText

	svc, err := newService()
	if err != nil {
		return err
	}
	resp, err := svc.FixQuery(cmd.Context(), dto.QueryRequest{
		NaturalLanguageQuery: "repair query",
		AdditionalContext:    extra,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
