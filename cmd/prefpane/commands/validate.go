package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/settings/schema"
)

var validateSchemaPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate settings against a JSON Schema",
	Long: `Check the overrides against the schema and print one line per
finding. With no overrides the defaults document itself is checked.`,
	RunE: runValidate,
}

func init() {
	addDocumentFlags(validateCmd)
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "JSON Schema file (built-in when omitted)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sch, err := loadSchema(ctx, validateSchemaPath)
	if err != nil {
		return err
	}

	subject, err := loadOverrides(ctx)
	if err != nil {
		return err
	}
	if len(overridePaths) == 0 {
		subject, err = readDocument(ctx, defaultsPath)
		if err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
	}

	res := schema.NewValidator(sch).Validate(subject)

	out := cmd.OutOrStdout()
	fail := color.New(color.FgRed, color.Bold).Sprint("FAIL")
	warn := color.New(color.FgYellow, color.Bold).Sprint("WARN")
	pass := color.New(color.FgGreen, color.Bold).Sprint("PASS")

	for _, e := range res.Errors {
		fmt.Fprintf(out, "%s %s: %s\n", fail, e.Path, e.Message)
	}
	for _, e := range res.Warnings {
		fmt.Fprintf(out, "%s %s: %s\n", warn, e.Path, e.Message)
	}

	if !res.Valid {
		return fmt.Errorf("%d validation errors", len(res.Errors))
	}
	fmt.Fprintf(out, "%s document is valid\n", pass)
	return nil
}
