package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/resume-formatter/internal/client"
	"github.com/jonathan/resume-formatter/internal/types"
	"go.uber.org/zap"
)

// DefaultPollInterval is the delay between status polls.
const DefaultPollInterval = time.Second

var (
	// ErrBusy is returned when Run is called while a run is active or before Reset.
	ErrBusy = errors.New("upload controller is not idle")
	// ErrPollTimeout is returned when processing outlives Options.PollTimeout.
	ErrPollTimeout = errors.New("timed out waiting for the backend to finish processing")
)

// ProcessingError carries a failure reported by the backend itself.
type ProcessingError struct {
	ID      string
	Message string
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed: %s", e.Message)
}

// Backend is the subset of the REST client the controller drives.
type Backend interface {
	Upload(ctx context.Context, file client.File, onProgress client.ProgressFunc) (*types.UploadResponse, error)
	UploadMultiple(ctx context.Context, files []client.File, onProgress client.ProgressFunc) (*types.BatchUploadResponse, error)
	Progress(ctx context.Context, taskID string) (*types.ProgressResponse, error)
	BatchProgress(ctx context.Context, batchID string) (*types.BatchProgressResponse, error)
}

// FileStatus is the per-file sub-status of a batch.
type FileStatus struct {
	Filename string           `json:"filename"`
	TaskID   string           `json:"task_id,omitempty"`
	Status   types.TaskStatus `json:"status"`
	Progress int              `json:"progress"`
	Error    string           `json:"error,omitempty"`
}

// Document is a processed record together with the file it came from.
type Document struct {
	Filename string             `json:"filename"`
	Record   types.ResumeRecord `json:"record"`
}

// Snapshot is an immutable view of the controller published on every change.
type Snapshot struct {
	Mode           Mode         `json:"mode"`
	State          State        `json:"state"`
	Stage          string       `json:"stage,omitempty"`
	Progress       int          `json:"progress"`
	TaskID         string       `json:"task_id,omitempty"`
	BatchID        string       `json:"batch_id,omitempty"`
	Files          []FileStatus `json:"files,omitempty"`
	CompletedFiles int          `json:"completed_files,omitempty"`
	FailedFiles    int          `json:"failed_files,omitempty"`
	TotalFiles     int          `json:"total_files,omitempty"`
	Documents      []Document   `json:"documents,omitempty"`
	Error          string       `json:"error,omitempty"`
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Files = append([]FileStatus(nil), s.Files...)
	out.Documents = append([]Document(nil), s.Documents...)
	return out
}

// Observer receives every published snapshot. It must not block; upload
// transmission progress is reported from the HTTP transport's goroutine.
type Observer func(Snapshot)

// Options configures a Controller.
type Options struct {
	PollInterval time.Duration
	// PollTimeout bounds the processing phase; zero waits indefinitely.
	PollTimeout time.Duration
	Logger      *zap.Logger
	Observer    Observer
}

// Controller runs one upload at a time through idle, uploading, processing
// and a terminal completed or failed state.
type Controller struct {
	backend Backend
	opts    Options
	logger  *zap.Logger

	mu       sync.Mutex
	snapshot Snapshot
	progress monotonic
	cancel   context.CancelFunc
}

// NewController creates an idle controller.
func NewController(backend Backend, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		backend:  backend,
		opts:     opts,
		logger:   logger,
		snapshot: Snapshot{Mode: ModeSingle, State: StateIdle},
	}
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.clone()
}

// Reset abandons any active run and returns the controller to idle. A new
// Run is accepted once the abandoned one has returned.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.snapshot = Snapshot{Mode: c.snapshot.Mode, State: StateIdle}
	c.progress = monotonic{}
	snap := c.snapshot.clone()
	c.mu.Unlock()

	c.publish(snap)
}

// Run validates files, uploads them and polls until the backend finishes.
// Validation failures leave the controller idle. Cancelling ctx stops polling
// after the in-flight request and resets the controller; nothing is sent to
// the backend.
func (c *Controller) Run(ctx context.Context, mode Mode, files []client.File) (*Snapshot, error) {
	if err := ValidateFiles(mode, files); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.snapshot.State != StateIdle || c.cancel != nil {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.cancel = cancel
	c.snapshot = Snapshot{Mode: mode, State: StateIdle}
	c.progress = monotonic{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
	}()

	if err := c.transition(StateUploading, nil); err != nil {
		return nil, err
	}
	c.logger.Info("upload started", zap.String("mode", string(mode)), zap.Int("files", len(files)))

	var err error
	if mode == ModeBatch {
		err = c.runBatch(runCtx, files)
	} else {
		err = c.runSingle(runCtx, files[0])
	}

	if runCtx.Err() != nil && !c.Snapshot().State.Terminal() {
		c.logger.Info("upload abandoned")
		c.Reset()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, context.Canceled
	}

	snap := c.Snapshot()
	return &snap, err
}

func (c *Controller) runSingle(ctx context.Context, file client.File) error {
	resp, err := c.backend.Upload(ctx, file, c.transmitObserver(ModeSingle))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.transition(StateProcessing, func(s *Snapshot) {
		s.TaskID = resp.TaskID
		s.Stage = types.StageUpload
	}); err != nil {
		return err
	}

	return c.poll(ctx, func() (bool, error) {
		progress, err := c.backend.Progress(ctx, resp.TaskID)
		if err != nil {
			return true, c.fail(ctx, err)
		}
		return c.applySingle(ctx, file.Name, resp.TaskID, progress)
	})
}

func (c *Controller) applySingle(ctx context.Context, filename, taskID string, resp *types.ProgressResponse) (bool, error) {
	switch resp.Status {
	case types.TaskFailed:
		return true, c.fail(ctx, &ProcessingError{ID: taskID, Message: failureMessage(resp.Error)})
	case types.TaskCompleted:
		record, err := decodeRecord(resp.Data)
		if err != nil {
			return true, c.fail(ctx, &ProcessingError{ID: taskID, Message: err.Error()})
		}
		return true, c.transition(StateCompleted, func(s *Snapshot) {
			s.Stage = types.StageCompletion
			s.Progress = c.progress.advance(100)
			s.Documents = []Document{{Filename: filename, Record: *record}}
		})
	}

	return false, c.transition(StateProcessing, func(s *Snapshot) {
		if global, ok := StageProgress(resp.Stage, resp.Progress); ok {
			s.Stage = resp.Stage
			s.Progress = c.progress.advance(global)
		}
	})
}

func (c *Controller) runBatch(ctx context.Context, files []client.File) error {
	resp, err := c.backend.UploadMultiple(ctx, files, c.transmitObserver(ModeBatch))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.transition(StateProcessing, func(s *Snapshot) {
		s.BatchID = resp.BatchID
		s.TotalFiles = len(files)
		s.Progress = c.progress.advance(batchUploadEnd)
		s.Files = make([]FileStatus, len(files))
		for i, f := range files {
			s.Files[i] = FileStatus{Filename: f.Name, Status: types.TaskPending}
			if i < len(resp.TaskIDs) {
				s.Files[i].TaskID = resp.TaskIDs[i]
			}
		}
	}); err != nil {
		return err
	}

	return c.poll(ctx, func() (bool, error) {
		progress, err := c.backend.BatchProgress(ctx, resp.BatchID)
		if err != nil {
			return true, c.fail(ctx, err)
		}
		return c.applyBatch(ctx, resp.BatchID, progress)
	})
}

func (c *Controller) applyBatch(ctx context.Context, batchID string, resp *types.BatchProgressResponse) (bool, error) {
	statuses := make([]FileStatus, len(resp.Files))
	for i, f := range resp.Files {
		statuses[i] = FileStatus{
			Filename: f.Filename,
			TaskID:   f.TaskID,
			Status:   f.Status,
			Progress: clampPercent(f.Progress),
			Error:    f.Error,
		}
	}

	update := func(s *Snapshot) {
		if len(statuses) > 0 {
			s.Files = statuses
		}
		if resp.TotalFiles > 0 {
			s.TotalFiles = resp.TotalFiles
		}
		s.CompletedFiles = resp.CompletedFiles
		s.FailedFiles = resp.FailedFiles
		s.Progress = c.progress.advance(BatchProgress(resp.OverallProgress))
	}

	finished := resp.Status.Terminal() ||
		(resp.TotalFiles > 0 && resp.CompletedFiles+resp.FailedFiles >= resp.TotalFiles)
	if !finished {
		return false, c.transition(StateProcessing, update)
	}

	docs := make([]Document, 0, len(resp.Files))
	failed := resp.FailedFiles
	var firstError string
	for i, f := range resp.Files {
		switch f.Status {
		case types.TaskCompleted:
			record, err := decodeRecord(f.Data)
			if err != nil {
				statuses[i].Status = types.TaskFailed
				statuses[i].Error = err.Error()
				failed++
				if firstError == "" {
					firstError = fmt.Sprintf("%s: %s", f.Filename, err)
				}
				continue
			}
			docs = append(docs, Document{Filename: f.Filename, Record: *record})
		case types.TaskFailed:
			if firstError == "" && f.Error != "" {
				firstError = fmt.Sprintf("%s: %s", f.Filename, f.Error)
			}
		}
	}

	if len(docs) == 0 {
		return true, c.fail(ctx, &ProcessingError{ID: batchID, Message: failureMessage(firstError)}, update)
	}

	return true, c.transition(StateCompleted, func(s *Snapshot) {
		update(s)
		s.FailedFiles = failed
		s.CompletedFiles = len(docs)
		s.Progress = c.progress.advance(100)
		s.Documents = docs
	})
}

// poll calls step at a fixed interval until it reports done, ctx ends or
// the poll timeout elapses. One request is outstanding at a time.
func (c *Controller) poll(ctx context.Context, step func() (bool, error)) error {
	var deadline <-chan time.Time
	if c.opts.PollTimeout > 0 {
		timer := time.NewTimer(c.opts.PollTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	wait := time.NewTimer(c.opts.PollInterval)
	defer wait.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return c.fail(ctx, ErrPollTimeout)
		case <-wait.C:
		}

		done, err := step()
		if done || err != nil {
			return err
		}
		wait.Reset(c.opts.PollInterval)
	}
}

func (c *Controller) transmitObserver(mode Mode) client.ProgressFunc {
	return func(sent, total int64) {
		c.mu.Lock()
		if c.snapshot.State != StateUploading {
			c.mu.Unlock()
			return
		}
		before := c.snapshot.Progress
		c.snapshot.Stage = types.StageUpload
		c.snapshot.Progress = c.progress.advance(TransmitProgress(mode, sent, total))
		changed := c.snapshot.Progress != before
		snap := c.snapshot.clone()
		c.mu.Unlock()

		if changed {
			c.publish(snap)
		}
	}
}

// transition moves to next after applying mutate, then publishes.
func (c *Controller) transition(next State, mutate func(*Snapshot)) error {
	c.mu.Lock()
	from := c.snapshot.State
	if !from.CanTransition(next) {
		c.mu.Unlock()
		return &TransitionError{From: from, To: next}
	}
	if mutate != nil {
		mutate(&c.snapshot)
	}
	c.snapshot.State = next
	snap := c.snapshot.clone()
	c.mu.Unlock()

	if from != next {
		c.logger.Debug("upload state changed",
			zap.String("from", string(from)),
			zap.String("to", string(next)),
			zap.Int("progress", snap.Progress))
	}
	c.publish(snap)
	return nil
}

// fail moves to failed unless the run was abandoned, in which case the
// caller resets instead. It returns cause so call sites can propagate it.
func (c *Controller) fail(ctx context.Context, cause error, mutate ...func(*Snapshot)) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	message := cause.Error()
	var procErr *ProcessingError
	var httpErr *client.HTTPError
	switch {
	case errors.As(cause, &procErr):
		message = procErr.Message
	case errors.As(cause, &httpErr):
		message = httpErr.Message
	}

	if err := c.transition(StateFailed, func(s *Snapshot) {
		for _, m := range mutate {
			m(s)
		}
		s.Error = message
	}); err != nil {
		return errors.Join(cause, err)
	}
	c.logger.Warn("upload failed", zap.Error(cause))
	return cause
}

func (c *Controller) publish(s Snapshot) {
	if c.opts.Observer != nil {
		c.opts.Observer(s)
	}
}

func failureMessage(msg string) string {
	if msg == "" {
		return "the backend reported a failure without details"
	}
	return msg
}

func decodeRecord(raw json.RawMessage) (*types.ResumeRecord, error) {
	if !types.HasData(raw) {
		return nil, errors.New("processing completed without resume data")
	}
	var record types.ResumeRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unreadable resume data: %w", err)
	}
	return &record, nil
}
