package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-formatter/internal/client"
	"github.com/jonathan/resume-formatter/internal/history"
	"github.com/jonathan/resume-formatter/internal/rendering"
	"github.com/jonathan/resume-formatter/internal/schemas"
	"github.com/jonathan/resume-formatter/internal/server/middleware"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/jonathan/resume-formatter/internal/upload"
	"go.uber.org/zap"
)

const (
	maxRecordBytes  = 5 << 20
	maxUploadBytes  = 100 << 20
	maxUploadMemory = 32 << 20
)

// backend returns a client acting as the caller.
func (s *Server) backend(r *http.Request) *client.Client {
	return s.client.WithToken(middleware.Token(r.Context()))
}

// handleRender renders a posted ResumeRecord.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := rendering.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if err := schemas.ValidateResumeRecord(body); err != nil {
		s.writeError(w, r, err)
		return
	}

	var record types.ResumeRecord
	if err := json.Unmarshal(body, &record); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	s.writeDocument(w, r, format, &record)
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, format rendering.Format, record *types.ResumeRecord) {
	doc, err := s.renderer.Render(r.Context(), format, record)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	disposition := "attachment"
	if format == rendering.FormatHTML {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		s.logger.Warn("failed to write document", zap.Error(err))
	}
}

// handleUploadStream uploads the posted files and streams controller
// snapshots as SSE until the run ends.
func (s *Server) handleUploadStream(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "expected multipart/form-data: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	mode, err := upload.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "mode", Message: err.Error()})
		return
	}
	if r.URL.Query().Get("mode") == "" && len(r.MultipartForm.File["files"]) > 0 {
		mode = upload.ModeBatch
	}

	files, err := readFormFiles(r.MultipartForm)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := upload.ValidateFiles(mode, files); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer sse.Close()

	ctrl := upload.NewController(s.backend(r), upload.Options{
		PollInterval: s.pollInterval,
		PollTimeout:  s.pollTimeout,
		Logger:       s.logger.With(zap.String("request_id", middleware.GetRequestID(r.Context()))),
		Observer: func(snap upload.Snapshot) {
			if err := sse.WriteEvent(EventProgress, snap); err != nil {
				s.logger.Debug("progress event dropped", zap.Error(err))
			}
		},
	})

	snap, err := ctrl.Run(r.Context(), mode, files)
	switch {
	case r.Context().Err() != nil:
		// client went away
	case err != nil:
		sse.WriteError(publicMessage(err))
	default:
		sse.WriteComplete(snap)
	}
}

// readFormFiles collects the "file" and "files" parts.
func readFormFiles(form *multipart.Form) ([]client.File, error) {
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["file"]...)
	headers = append(headers, form.File["files"]...)

	files := make([]client.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, &ErrValidation{Field: fh.Filename, Message: err.Error()}
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, &ErrValidation{Field: fh.Filename, Message: err.Error()}
		}
		files = append(files, client.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

// historyPage is the paginated history listing.
type historyPage struct {
	Entries     []types.HistoryEntry `json:"entries"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	RowsPerPage int                  `json:"rows_per_page"`
	PageCount   int                  `json:"page_count"`
}

// handleListHistory lists history with ?page= (zero-based) and ?rows= (5, 10 or 25).
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := s.historyLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	view := history.NewView(s.backend(r), limit, s.logger)
	if v := q.Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, &ErrValidation{Field: "rows", Message: "must be an integer"})
			return
		}
		if err := view.SetRowsPerPage(n); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if err := view.Load(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, &ErrValidation{Field: "page", Message: "must be an integer"})
			return
		}
		view.SetPage(n)
	}

	entries := view.Visible()
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	s.jsonResponse(w, http.StatusOK, historyPage{
		Entries:     entries,
		Total:       view.Len(),
		Page:        view.Page(),
		RowsPerPage: view.RowsPerPage(),
		PageCount:   view.PageCount(),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := history.NewView(s.backend(r), s.historyLimit, s.logger).View(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := history.NewView(s.backend(r), s.historyLimit, s.logger).Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRenderHistory renders a stored record on demand.
func (s *Server) handleRenderHistory(w http.ResponseWriter, r *http.Request) {
	format, err := rendering.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entry, err := history.NewView(s.backend(r), s.historyLimit, s.logger).View(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entry.ResumeData == nil {
		s.writeError(w, r, fmt.Errorf("%w: entry has no resume data", history.ErrNotFound))
		return
	}

	s.writeDocument(w, r, format, entry.ResumeData)
}
