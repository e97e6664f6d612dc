package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCommand(app *appContext) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract Rutube links from text without downloading",
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := collectLinks(args, inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			for _, link := range links {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "File to extract links from (\"-\" for stdin)")

	return cmd
}
