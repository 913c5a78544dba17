package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/importer"
)

var templateOut string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the sample lead CSV template",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := importer.WriteTemplate(templateOut); err != nil {
			return eris.Wrap(err, "template: write")
		}
		fmt.Printf("Wrote %s\n", templateOut)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateOut, "out", "lead-template.csv", "output path")
	rootCmd.AddCommand(templateCmd)
}
