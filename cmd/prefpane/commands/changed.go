package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var changedCustom bool

var changedCmd = &cobra.Command{
	Use:   "changed",
	Short: "List paths whose value differs from the default",
	RunE:  runChanged,
}

func init() {
	addDocumentFlags(changedCmd)
	changedCmd.Flags().BoolVar(&changedCustom, "custom", false, "List only paths with no default counterpart")
}

func runChanged(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context())
	if err != nil {
		return err
	}

	paths := doc.Changed()
	if changedCustom {
		paths = doc.Custom()
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
