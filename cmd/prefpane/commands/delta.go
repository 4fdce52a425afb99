package commands

import (
	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/settings/codec"
)

var deltaCmd = &cobra.Command{
	Use:   "delta",
	Short: "Print the minimal overrides tree",
	Long: `Print only the values that differ from the defaults. Writing this
tree back as an overrides file reproduces the document.`,
	RunE: runDelta,
}

func init() {
	addDocumentFlags(deltaCmd)
	addFormatFlag(deltaCmd)
}

func runDelta(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context())
	if err != nil {
		return err
	}

	out, err := codec.Export(outputFormat, doc.Delta())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
