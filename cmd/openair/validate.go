package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apkaudio/openair/internal/presentation/tui"
	"github.com/apkaudio/openair/internal/validator"
	"github.com/apkaudio/openair/pkg/adapters/jsondoc"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a panel document for defects",
	Long:  `Parses the panel document and reports every node the composition engine would skip: duplicate topics, empty path fragments, unknown widget types and inverted ranges.`,
	Run: func(cmd *cobra.Command, args []string) {
		panelPath, _ := cmd.Flags().GetString("panel")
		if !cmd.Flags().Changed("panel") && len(args) > 0 {
			panelPath = args[0]
		}
		if err := runValidate(panelPath); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(panelPath string) error {
	nodes, err := jsondoc.NewLoader(panelPath).Load()
	if err != nil {
		return err
	}

	report := validator.ValidateTree(nodes)

	render := tui.NewRenderer()
	out, err := render(report.Markdown())
	if err != nil {
		out = report.Markdown()
	}
	fmt.Print(out)

	if !report.OK() {
		return fmt.Errorf("%d defect(s) found", len(report.Issues))
	}
	return nil
}
