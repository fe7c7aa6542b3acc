package main

import (
	"fmt"

	"github.com/fadilmartias/skillwise/internal/config"
	"github.com/fadilmartias/skillwise/internal/util"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <resume.pdf>",
		Short: "Print the text of a résumé PDF",
		Long:  "Extract the text layer of a résumé PDF, falling back to tesseract OCR for scanned documents. The file is left in place.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := util.NewExtractor(config.LoadOCRConfig(), true).Extract(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
