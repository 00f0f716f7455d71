// Package main provides the resume_formatter CLI: upload resumes for parsing,
// follow their progress, and turn the parsed records into PDF, DOCX or HTML.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_formatter",
	Short: "Upload resumes and reformat them into a standard layout",
	Long: "resume_formatter uploads PDF, DOC and DOCX resumes to the parsing backend, follows their progress, " +
		"and renders the parsed records as standardized PDF, DOCX or HTML documents.",
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { teardownApp() },
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
