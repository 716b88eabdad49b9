package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pdfquiz/internal/pdftext"
	"pdfquiz/internal/quiz"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a quiz text file and print the questions as JSON",
	Long: `Parse a generated quiz (blocks separated by a blank line, each ending in an
"Answer:" line) and print what the self-test would show. Use "-" to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Print the text extracted from the first pages of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().Int("pages", 0, "Number of pages to extract (default min(3, total))")
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	questions := quiz.Parse(string(data))
	if questions == nil {
		questions = []quiz.ParsedQuestion{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(questions)
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	doc, err := pdftext.Open(data)
	if err != nil {
		return err
	}
	pages, _ := cmd.Flags().GetInt("pages")
	if pages <= 0 {
		pages = pdftext.DefaultPages(doc.PageCount())
	}
	text, err := doc.ExtractText(pages)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d pages\n", pdftext.ClampPages(pages, doc.PageCount()), doc.PageCount())
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
