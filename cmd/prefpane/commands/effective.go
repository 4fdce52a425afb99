package commands

import (
	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/settings/codec"
)

var effectiveCmd = &cobra.Command{
	Use:   "effective",
	Short: "Print the effective settings tree",
	Long: `Merge defaults and overrides and print the result. This is the view
an application reading its settings would see.`,
	RunE: runEffective,
}

func init() {
	addDocumentFlags(effectiveCmd)
	addFormatFlag(effectiveCmd)
}

func runEffective(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context())
	if err != nil {
		return err
	}

	out, err := codec.Export(outputFormat, doc.Effective())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
