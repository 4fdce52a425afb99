package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/settings/query"
)

var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Run a jq expression over the effective tree",
	Long: `Evaluate a jq expression against the effective settings and print
each result as a JSON line.

  prefpane query '.ui.theme'
  prefpane query '[paths(type != "object")] | length'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	addDocumentFlags(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context())
	if err != nil {
		return err
	}

	results, err := query.Run(cmd.Context(), args[0], doc.Effective())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		line, err := json.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(line))
	}
	return nil
}
