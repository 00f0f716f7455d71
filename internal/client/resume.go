package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-formatter/internal/types"
)

// MaxBatchFiles is the most files the backend accepts in one batch upload.
const MaxBatchFiles = 10

// contentTypes maps accepted resume extensions to the MIME type the backend
// expects on the multipart part. The backend checks both.
var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ContentTypeFor returns the MIME type for an accepted resume file name.
// The second result is false when the extension is not accepted.
func ContentTypeFor(filename string) (string, bool) {
	ct, ok := contentTypes[Extension(filename)]
	return ct, ok
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// File is a resume file staged for upload.
type File struct {
	Name string
	Data []byte
}

// ProgressFunc receives the number of request body bytes sent so far.
type ProgressFunc func(sent, total int64)

// Upload sends one file to POST /resume/upload.
func (c *Client) Upload(ctx context.Context, file File, onProgress ProgressFunc) (*types.UploadResponse, error) {
	var out types.UploadResponse
	if err := c.postMultipart(ctx, c.endpoint(nil, "resume", "upload"), "file", []File{file}, onProgress, &out); err != nil {
		return nil, err
	}
	if out.TaskID == "" {
		return nil, &RequestError{Method: http.MethodPost, Path: "/resume/upload", Message: "response carried no task_id"}
	}
	return &out, nil
}

// UploadMultiple sends up to MaxBatchFiles files to POST /resume/upload-multiple.
func (c *Client) UploadMultiple(ctx context.Context, files []File, onProgress ProgressFunc) (*types.BatchUploadResponse, error) {
	if len(files) == 0 || len(files) > MaxBatchFiles {
		return nil, fmt.Errorf("batch upload takes 1 to %d files, got %d", MaxBatchFiles, len(files))
	}
	var out types.BatchUploadResponse
	if err := c.postMultipart(ctx, c.endpoint(nil, "resume", "upload-multiple"), "files", files, onProgress, &out); err != nil {
		return nil, err
	}
	if out.BatchID == "" {
		return nil, &RequestError{Method: http.MethodPost, Path: "/resume/upload-multiple", Message: "response carried no batch_id"}
	}
	return &out, nil
}

// Progress polls GET /resume/progress/{task_id}.
func (c *Client) Progress(ctx context.Context, taskID string) (*types.ProgressResponse, error) {
	var out types.ProgressResponse
	if err := c.getJSON(ctx, c.endpoint(nil, "resume", "progress", taskID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BatchProgress polls GET /resume/batch-progress/{batch_id}.
func (c *Client) BatchProgress(ctx context.Context, batchID string) (*types.BatchProgressResponse, error) {
	var out types.BatchProgressResponse
	if err := c.getJSON(ctx, c.endpoint(nil, "resume", "batch-progress", batchID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists processed resumes, newest first as returned by the backend.
func (c *Client) History(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	var out []types.HistoryEntry
	if err := c.getJSON(ctx, c.endpoint(limitQuery(limit), "resume", "history"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HistoryEntry fetches one entry including its resume data.
func (c *Client) HistoryEntry(ctx context.Context, id string) (*types.HistoryEntry, error) {
	var out types.HistoryEntry
	if err := c.getJSON(ctx, c.endpoint(nil, "resume", "history", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteHistory removes one entry with DELETE /resume/history/{id}.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(nil, "resume", "history", id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, nil)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// postMultipart builds the form in memory so the total size is known and
// upload progress can be reported as the body is read.
func (c *Client) postMultipart(ctx context.Context, endpoint, field string, files []File, onProgress ProgressFunc, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, f := range files {
		ct, ok := ContentTypeFor(f.Name)
		if !ok {
			ct = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(f.Name))))
		header.Set("Content-Type", ct)

		part, err := mw.CreatePart(header)
		if err != nil {
			return fmt.Errorf("failed to create form part for %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write form part for %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	total := int64(body.Len())
	var reader io.Reader = &body
	if onProgress != nil {
		reader = &countingReader{r: &body, total: total, onProgress: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

type countingReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress ProgressFunc
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.sent += int64(n)
		cr.onProgress(cr.sent, cr.total)
	}
	return n, err
}
