package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge/internal/doc"
	"github.com/paperforge/paperforge/internal/pipeline"
)

var (
	generatePapers   []string
	generateTemplate string
	generateKind     string
	generateOutput   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a LaTeX document from research papers",
	Long: `Generate an IEEE-style report or a Beamer slide deck from one or more
research paper PDFs and a format template PDF.

The rendered document is saved under the home exports directory
(~/.paperforge/exports by default).

Examples:
  paperforge generate -p paper1.pdf -p paper2.pdf -t format.pdf -k report
  paperforge generate -p paper.pdf -t format.pdf -k slides -o deck.tex`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := doc.ParseKind(generateKind)
		if err != nil {
			return err
		}

		logger := newLogger()
		mgr, h, err := loadRuntime()
		if err != nil {
			return err
		}

		p := pipeline.New(mgr.Get(), h, logger)
		res, err := p.RunAndSave(cmd.Context(), pipeline.Request{
			PaperPaths:   generatePapers,
			TemplatePath: generateTemplate,
			Kind:         kind,
		})
		if err != nil {
			return err
		}
		if res.Rendered.Empty() {
			return errors.New("generated document was empty, nothing saved")
		}

		if generateOutput != "" {
			if err := os.WriteFile(generateOutput, []byte(res.Rendered.LaTeX), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", generateOutput, err)
			}
			fmt.Printf("Wrote %s\n", generateOutput)
		}

		fmt.Printf("Run:       %s\n", res.RunID)
		fmt.Printf("Citations: %d\n", len(res.Citations))
		fmt.Printf("Saved:     %s\n", res.SavedPath)
		if res.Content.Fallback {
			fmt.Println("Note: the model reply could not be parsed; the document carries fallback content.")
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringArrayVarP(&generatePapers, "paper", "p", nil, "Research paper PDF (repeatable)")
	generateCmd.Flags().StringVarP(&generateTemplate, "template", "t", "", "Format template PDF")
	generateCmd.Flags().StringVarP(&generateKind, "kind", "k", "report", "Output kind: report or slides")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Also write the document to this path")
	generateCmd.MarkFlagRequired("paper")
	generateCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(generateCmd)
}
