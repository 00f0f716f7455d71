package upload

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-formatter/internal/client"
)

// AcceptedExtensions lists the file types the backend can process.
var AcceptedExtensions = []string{"pdf", "doc", "docx"}

// ValidationError rejects a selection before anything is sent.
type ValidationError struct {
	File    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// ValidateFiles checks file count and types for mode.
func ValidateFiles(mode Mode, files []client.File) error {
	switch mode {
	case ModeSingle:
		if len(files) != 1 {
			return &ValidationError{Message: fmt.Sprintf("single upload takes exactly one file, got %d", len(files))}
		}
	case ModeBatch:
		if len(files) == 0 {
			return &ValidationError{Message: "select at least one file"}
		}
		if len(files) > client.MaxBatchFiles {
			return &ValidationError{Message: fmt.Sprintf("batch upload takes at most %d files, got %d", client.MaxBatchFiles, len(files))}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("unknown upload mode %q", mode)}
	}

	for _, f := range files {
		if _, ok := client.ContentTypeFor(f.Name); !ok {
			return &ValidationError{
				File:    f.Name,
				Message: fmt.Sprintf("unsupported file type, expected one of %s", strings.Join(AcceptedExtensions, ", ")),
			}
		}
		if len(f.Data) == 0 {
			return &ValidationError{File: f.Name, Message: "file is empty"}
		}
	}
	return nil
}
