package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-formatter/internal/client"
	"github.com/jonathan/resume-formatter/internal/upload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	uploadBatch    bool
	uploadOut      string
	uploadFormats  string
	uploadNoRender bool
	uploadQuiet    bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload resumes and save the reformatted documents",
	Long: "Upload one resume (or several with --batch), follow backend processing, " +
		"and render each parsed record in the requested formats.",
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadBatch, "batch", false, "Upload all files as one batch")
	uploadCmd.Flags().StringVarP(&uploadOut, "out", "o", "", "Output directory (default from config)")
	uploadCmd.Flags().StringVar(&uploadFormats, "formats", "", "Comma-separated output formats: pdf, docx, html")
	uploadCmd.Flags().BoolVar(&uploadNoRender, "no-render", false, "Only print the parsed records")
	uploadCmd.Flags().BoolVarP(&uploadQuiet, "quiet", "q", false, "Do not draw the progress bar")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := current.requireLogin(); err != nil {
		return err
	}
	formats, err := parseFormats(uploadFormats, current.cfg.Formats)
	if err != nil {
		return err
	}

	mode := upload.ModeSingle
	if uploadBatch {
		mode = upload.ModeBatch
	}
	if !uploadBatch && len(args) > 1 {
		return fmt.Errorf("several files need --batch")
	}

	files := make([]client.File, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, client.File{Name: filepath.Base(path), Data: data})
	}
	if err := upload.ValidateFiles(mode, files); err != nil {
		return err
	}

	opts := upload.Options{
		PollInterval: current.cfg.PollInterval.Std(),
		PollTimeout:  current.cfg.PollTimeout.Std(),
		Logger:       current.logger,
	}
	if !uploadQuiet {
		opts.Observer = current.printer.PrintProgress
	}

	snap, err := upload.NewController(current.client, opts).Run(cmd.Context(), mode, files)
	if snap != nil {
		current.printer.PrintOutcome(*snap)
	}
	if err != nil {
		return err
	}

	if uploadNoRender {
		for _, doc := range snap.Documents {
			current.printer.PrintRecord(doc.Filename, &doc.Record)
		}
		return nil
	}

	dir := uploadOut
	if dir == "" {
		dir = current.cfg.OutputDir
	}
	renderer := current.renderer()
	for _, doc := range snap.Documents {
		rendered, err := renderer.RenderAll(cmd.Context(), &doc.Record, formats...)
		if err != nil {
			return fmt.Errorf("%s: %w", doc.Filename, err)
		}
		paths, err := writeDocuments(dir, rendered)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", p)
		}
		current.logger.Debug("rendered document", zap.String("source", doc.Filename), zap.Strings("paths", paths))
	}
	return nil
}
