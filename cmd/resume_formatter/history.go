package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-formatter/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyPage    int
	historyRows    int
	historyLimit   int
	historyJSON    bool
	historyFormats string
	historyOut     string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously processed resumes",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed resumes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one processed resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a processed resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyDownloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Render a processed resume again",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDownload,
}

func init() {
	historyListCmd.Flags().IntVar(&historyPage, "page", 1, "Page to show, starting at 1")
	historyListCmd.Flags().IntVar(&historyRows, "rows", history.RowsPerPageOptions[0], "Rows per page: 5, 10 or 25")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 0, "Entries to fetch (default from config)")

	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the parsed record as JSON")

	historyDownloadCmd.Flags().StringVar(&historyFormats, "formats", "", "Comma-separated output formats: pdf, docx, html")
	historyDownloadCmd.Flags().StringVarP(&historyOut, "out", "o", "", "Output directory (default from config)")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyDownloadCmd)
	rootCmd.AddCommand(historyCmd)
}

func newHistoryView() *history.View {
	limit := historyLimit
	if limit <= 0 {
		limit = current.cfg.HistoryLimit
	}
	return history.NewView(current.client, limit, current.logger)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if err := current.requireLogin(); err != nil {
		return err
	}
	rows := historyRows
	if !cmd.Flags().Changed("rows") {
		rows = current.cfg.RowsPerPage
	}

	view := newHistoryView()
	if err := view.SetRowsPerPage(rows); err != nil {
		return err
	}
	if err := view.Load(cmd.Context()); err != nil {
		return err
	}
	view.SetPage(historyPage - 1)
	current.printer.PrintHistory(view)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if err := current.requireLogin(); err != nil {
		return err
	}
	entry, err := newHistoryView().View(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entry.ResumeData)
	}
	current.printer.PrintHistoryEntry(entry)
	if entry.ResumeData != nil {
		current.printer.PrintRecord(entry.Filename, entry.ResumeData)
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if err := current.requireLogin(); err != nil {
		return err
	}
	if err := newHistoryView().Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
	return nil
}

func runHistoryDownload(cmd *cobra.Command, args []string) error {
	if err := current.requireLogin(); err != nil {
		return err
	}
	formats, err := parseFormats(historyFormats, current.cfg.Formats)
	if err != nil {
		return err
	}

	entry, err := newHistoryView().View(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if entry.ResumeData == nil {
		return fmt.Errorf("%w: %s has no resume data", history.ErrNotFound, args[0])
	}

	docs, err := current.renderer().RenderAll(cmd.Context(), entry.ResumeData, formats...)
	if err != nil {
		return err
	}
	dir := historyOut
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
