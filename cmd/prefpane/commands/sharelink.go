package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/settings/codec"
)

var sharelinkCmd = &cobra.Command{
	Use:   "sharelink",
	Short: "Encode or decode settings share links",
}

var sharelinkEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode the document's delta as a share link token",
	RunE:  runSharelinkEncode,
}

var sharelinkDecodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Decode a share link token back into an overrides document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSharelinkDecode,
}

func init() {
	addDocumentFlags(sharelinkEncodeCmd)
	sharelinkCmd.AddCommand(sharelinkEncodeCmd)
	sharelinkCmd.AddCommand(sharelinkDecodeCmd)
}

func runSharelinkEncode(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context())
	if err != nil {
		return err
	}

	link, err := codec.EncodeShareLink(doc.Delta())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runSharelinkDecode(cmd *cobra.Command, args []string) error {
	overrides, err := codec.DecodeShareLink(args[0])
	if err != nil {
		return err
	}

	out, err := codec.EncodeDelta(overrides)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
