package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-formatter/internal/schemas"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/spf13/cobra"
)

var (
	renderIn      string
	renderFormats string
	renderOut     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a parsed resume record from a JSON file",
	Long:  "Render a ResumeRecord JSON file (as returned by the backend) without uploading anything. Use --in - to read stdin.",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderIn, "in", "i", "", "Path to ResumeRecord JSON (required)")
	renderCmd.Flags().StringVar(&renderFormats, "formats", "", "Comma-separated output formats: pdf, docx, html")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output directory (default from config)")
	_ = renderCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(renderCmd)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func runRender(cmd *cobra.Command, _ []string) error {
	formats, err := parseFormats(renderFormats, current.cfg.Formats)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, renderIn)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	if err := schemas.ValidateResumeRecord(data); err != nil {
		return err
	}
	var record types.ResumeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("failed to parse resume record: %w", err)
	}

	docs, err := current.renderer().RenderAll(cmd.Context(), &record, formats...)
	if err != nil {
		return err
	}
	dir := renderOut
	if dir == "" {
		dir = current.cfg.OutputDir
	}
	paths, err := writeDocuments(dir, docs)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", p)
	}
	return nil
}
